package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ayushsubedi/anonymize-it/internal/config"
	"github.com/ayushsubedi/anonymize-it/internal/constants"
	"github.com/ayushsubedi/anonymize-it/internal/logger"
	apperrors "github.com/ayushsubedi/anonymize-it/pkg/errors"
)

type licenseResponse struct {
	License struct {
		IssuedTo string `json:"issued_to"`
	} `json:"license"`
}

// LicenseIssuedTo reads the issued_to name from the cluster license.
func (c *ElasticClient) LicenseIssuedTo(ctx context.Context) (string, error) {
	var resp licenseResponse
	if err := c.Do(ctx, http.MethodGet, "/_license", nil, &resp); err != nil {
		return "", fmt.Errorf("license lookup: %w", err)
	}
	return resp.License.IssuedTo, nil
}

// HashKeyResolver derives the masking hash key from the cluster license so
// that the same tenant hashes values identically across runs without the key
// ever being written down. On Elastic Cloud the license names the platform,
// not the tenant, so the resolver falls through to the deployments API and
// uses the deployment owner instead.
type HashKeyResolver struct {
	es     *ElasticClient
	cfg    config.CloudAPIConfig
	hc     *http.Client
	logger logger.Logger
}

func NewHashKeyResolver(es *ElasticClient, cfg config.CloudAPIConfig, log logger.Logger) *HashKeyResolver {
	return &HashKeyResolver{
		es:     es,
		cfg:    cfg,
		hc:     &http.Client{Timeout: constants.DefaultHTTPTimeout},
		logger: log,
	}
}

func (r *HashKeyResolver) Resolve(ctx context.Context) (string, error) {
	issuedTo, err := r.es.LicenseIssuedTo(ctx)
	if err != nil {
		return "", err
	}
	if issuedTo == "" {
		return "", apperrors.NewConfigError("hash key error: cluster license has no issued_to. Set pipeline.hash_key explicitly.")
	}

	if issuedTo == "Elastic Cloud" {
		return r.deploymentOwner(ctx)
	}

	// Self-managed licenses carry a parenthesized suffix after the
	// organization name; only the name feeds the hash key.
	if idx := strings.Index(issuedTo, " ("); idx > 0 {
		issuedTo = issuedTo[:idx]
	}
	return issuedTo, nil
}

type deploymentsResponse struct {
	Deployments []struct {
		ID string `json:"id"`
	} `json:"deployments"`
}

type deploymentResponse struct {
	Metadata struct {
		OwnerID string `json:"owner_id"`
	} `json:"metadata"`
}

// deploymentOwner lists the account's deployments, then fetches the first one
// and returns its owner id.
func (r *HashKeyResolver) deploymentOwner(ctx context.Context) (string, error) {
	if r.cfg.APIKey == "" {
		return "", apperrors.NewConfigError("hash key error: cloud deployment lookup requires cloud_api.api_key. Please check config.")
	}

	var deployments deploymentsResponse
	if err := r.cloudGet(ctx, r.cfg.URL, &deployments); err != nil {
		return "", err
	}
	if len(deployments.Deployments) == 0 || deployments.Deployments[0].ID == "" {
		return "", apperrors.NewCloudAPIError("No deployments found", nil)
	}

	var deployment deploymentResponse
	if err := r.cloudGet(ctx, strings.TrimRight(r.cfg.URL, "/")+"/"+deployments.Deployments[0].ID, &deployment); err != nil {
		return "", err
	}
	if deployment.Metadata.OwnerID == "" {
		return "", apperrors.NewCloudAPIError("Customer ID not found", nil)
	}

	return deployment.Metadata.OwnerID, nil
}

func (r *HashKeyResolver) cloudGet(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return apperrors.NewCloudAPIError("building deployments request", err)
	}
	req.Header.Set("Authorization", "ApiKey "+r.cfg.APIKey)

	resp, err := r.hc.Do(req)
	if err != nil {
		return apperrors.NewCloudAPIError("calling deployments API", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.NewCloudAPIError("reading deployments response", err)
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return apperrors.NewCloudAPIError("Deployment API Authentication failed", nil)
	}
	if resp.StatusCode < constants.HTTPStatusOKMin || resp.StatusCode > constants.HTTPStatusOKMax {
		return apperrors.NewCloudAPIError(fmt.Sprintf("deployments API returned status %d", resp.StatusCode), nil)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return apperrors.NewCloudAPIError("decoding deployments response", err)
	}
	return nil
}
