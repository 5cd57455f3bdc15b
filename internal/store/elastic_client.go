package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/ayushsubedi/anonymize-it/internal/config"
	"github.com/ayushsubedi/anonymize-it/internal/constants"
	"github.com/ayushsubedi/anonymize-it/internal/logger"
	"github.com/ayushsubedi/anonymize-it/pkg/circuitbreaker"
	"github.com/ayushsubedi/anonymize-it/pkg/metrics"
	"github.com/ayushsubedi/anonymize-it/pkg/retry"
)

// ElasticClient is a thin JSON-over-HTTP Elasticsearch client. Every call is
// rate limited, retried with backoff on transient failures, and guarded by a
// shared circuit breaker so a struggling cluster backs the pipeline off
// instead of melting down.
type ElasticClient struct {
	baseURL string
	hc      *http.Client
	limiter *rate.Limiter
	breaker *circuitbreaker.Wrapper
	policy  retry.Policy
	logger  logger.Logger
}

func NewElasticClient(addr string, pcfg config.PipelineConfig, log logger.Logger) *ElasticClient {
	timeout := pcfg.RequestTimeout
	if timeout <= 0 {
		timeout = constants.DefaultHTTPTimeout
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if pcfg.RequestsPerSec > 0 {
		burst := int(pcfg.RequestsPerSec)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(pcfg.RequestsPerSec), burst)
	}

	return &ElasticClient{
		baseURL: strings.TrimRight(addr, "/"),
		hc:      &http.Client{Timeout: timeout},
		limiter: limiter,
		breaker: circuitbreaker.NewWrapper(circuitbreaker.DefaultConfig("elasticsearch")),
		policy:  retry.DefaultPolicy(),
		logger:  log,
	}
}

// Do issues a single request and decodes the JSON response into out. Client
// errors (4xx) are fatal; 429 and 5xx are retried.
func (c *ElasticClient) Do(ctx context.Context, method, path string, body []byte, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	result, err := c.breaker.ExecuteWithContext(ctx, func() (interface{}, error) {
		var raw []byte
		err := retry.RetryWithCallback(ctx, c.policy, func() error {
			var attemptErr error
			raw, attemptErr = c.roundTrip(ctx, method, path, body)
			return attemptErr
		}, func(attempt int, err error, nextDelay time.Duration) {
			c.logger.Warnw("Retrying Elasticsearch request",
				"method", method,
				"path", path,
				"attempt", attempt,
				"next_delay", nextDelay,
				"error", err,
			)
		})
		return raw, err
	})
	c.breaker.RecordRequest(err == nil)
	if err != nil {
		return err
	}

	if out == nil {
		return nil
	}
	return json.Unmarshal(result.([]byte), out)
}

func (c *ElasticClient) roundTrip(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, retry.NewFatalError(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		metrics.RetryAttemptsTotal.WithLabelValues("elasticsearch_request").Inc()
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= constants.HTTPStatusOKMin && resp.StatusCode <= constants.HTTPStatusOKMax {
		return raw, nil
	}

	reqErr := fmt.Errorf("elasticsearch %s %s: status %d: %s", method, path, resp.StatusCode, truncate(raw, 512))
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
		metrics.RetryAttemptsTotal.WithLabelValues("elasticsearch_request").Inc()
		return nil, retry.NewRetryableError(reqErr)
	}
	return nil, retry.NewFatalError(reqErr)
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
