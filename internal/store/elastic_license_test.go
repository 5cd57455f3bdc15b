package store

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayushsubedi/anonymize-it/internal/config"
	"github.com/ayushsubedi/anonymize-it/internal/logger"
	apperrors "github.com/ayushsubedi/anonymize-it/pkg/errors"
)

func licenseServer(t *testing.T, issuedTo string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/_license", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"license":{"issued_to":"` + issuedTo + `"}}`))
	}))
}

func TestResolveSelfManagedLicense(t *testing.T) {
	srv := licenseServer(t, "Acme Corp (non-production environments)")
	defer srv.Close()

	client := NewElasticClient(srv.URL, config.PipelineConfig{}, logger.NopLogger())
	resolver := NewHashKeyResolver(client, config.CloudAPIConfig{}, logger.NopLogger())

	key, err := resolver.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", key)
}

func TestResolveLicenseWithoutSuffix(t *testing.T) {
	srv := licenseServer(t, "Acme Corp")
	defer srv.Close()

	client := NewElasticClient(srv.URL, config.PipelineConfig{}, logger.NopLogger())
	resolver := NewHashKeyResolver(client, config.CloudAPIConfig{}, logger.NopLogger())

	key, err := resolver.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", key)
}

func TestResolveEmptyLicense(t *testing.T) {
	srv := licenseServer(t, "")
	defer srv.Close()

	client := NewElasticClient(srv.URL, config.PipelineConfig{}, logger.NopLogger())
	resolver := NewHashKeyResolver(client, config.CloudAPIConfig{}, logger.NopLogger())

	_, err := resolver.Resolve(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsConfig(err))
}

func TestResolveElasticCloud(t *testing.T) {
	cloud := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "ApiKey test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/dep-1" {
			w.Write([]byte(`{"metadata":{"owner_id":"owner-123"}}`))
			return
		}
		w.Write([]byte(`{"deployments":[{"id":"dep-1"}]}`))
	}))
	defer cloud.Close()

	srv := licenseServer(t, "Elastic Cloud")
	defer srv.Close()

	client := NewElasticClient(srv.URL, config.PipelineConfig{}, logger.NopLogger())
	resolver := NewHashKeyResolver(client, config.CloudAPIConfig{URL: cloud.URL, APIKey: "test-key"}, logger.NopLogger())

	key, err := resolver.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "owner-123", key)
}

func TestResolveElasticCloudWithoutAPIKey(t *testing.T) {
	srv := licenseServer(t, "Elastic Cloud")
	defer srv.Close()

	client := NewElasticClient(srv.URL, config.PipelineConfig{}, logger.NopLogger())
	resolver := NewHashKeyResolver(client, config.CloudAPIConfig{URL: "http://unused"}, logger.NopLogger())

	_, err := resolver.Resolve(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsConfig(err))
}

func TestResolveElasticCloudAuthFailure(t *testing.T) {
	cloud := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer cloud.Close()

	srv := licenseServer(t, "Elastic Cloud")
	defer srv.Close()

	client := NewElasticClient(srv.URL, config.PipelineConfig{}, logger.NopLogger())
	resolver := NewHashKeyResolver(client, config.CloudAPIConfig{URL: cloud.URL, APIKey: "bad"}, logger.NopLogger())

	_, err := resolver.Resolve(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Deployment API Authentication failed")
}

func TestResolveElasticCloudNoDeployments(t *testing.T) {
	cloud := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"deployments":[]}`))
	}))
	defer cloud.Close()

	srv := licenseServer(t, "Elastic Cloud")
	defer srv.Close()

	client := NewElasticClient(srv.URL, config.PipelineConfig{}, logger.NopLogger())
	resolver := NewHashKeyResolver(client, config.CloudAPIConfig{URL: cloud.URL, APIKey: "k"}, logger.NopLogger())

	_, err := resolver.Resolve(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsCloudAPI(err))
}
