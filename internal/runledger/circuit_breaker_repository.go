package runledger

import (
	"context"
	"time"

	"github.com/sony/gobreaker"

	"github.com/ayushsubedi/anonymize-it/internal/config"
	"github.com/ayushsubedi/anonymize-it/pkg/circuitbreaker"
)

// CircuitBreakerRepository guards the Redis ledger so a dead cache cannot
// stall the whole pipeline; open-circuit calls fail fast and the service's
// fallback policy decides what happens to the record.
type CircuitBreakerRepository struct {
	inner   Repository
	breaker *circuitbreaker.Wrapper
}

func NewCircuitBreakerRepository(inner Repository, cfg config.CircuitBreakerConfig) *CircuitBreakerRepository {
	cbConfig := circuitbreaker.DefaultConfig("run-ledger")

	if cfg.MaxRequests > 0 {
		cbConfig.MaxRequests = cfg.MaxRequests
	}
	if cfg.Interval > 0 {
		cbConfig.Interval = cfg.Interval
	}
	if cfg.Timeout > 0 {
		cbConfig.Timeout = cfg.Timeout
	}
	if cfg.FailureRatio > 0 {
		minRequests := cfg.MinRequests
		if minRequests == 0 {
			minRequests = 3
		}
		cbConfig.ReadyToTrip = func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= uint32(minRequests) && failureRatio >= cfg.FailureRatio
		}
	}

	return &CircuitBreakerRepository{
		inner:   inner,
		breaker: circuitbreaker.NewWrapper(cbConfig),
	}
}

func (r *CircuitBreakerRepository) MarkWritten(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error) {
	result, err := r.breaker.ExecuteWithContext(ctx, func() (interface{}, error) {
		return r.inner.MarkWritten(ctx, key, value, ttl)
	})
	r.breaker.RecordRequest(err == nil)
	if err != nil {
		return false, err
	}
	return result.(bool), nil
}

func (r *CircuitBreakerRepository) LedgerSize(ctx context.Context, prefix string) (int, error) {
	result, err := r.breaker.ExecuteWithContext(ctx, func() (interface{}, error) {
		return r.inner.LedgerSize(ctx, prefix)
	})
	r.breaker.RecordRequest(err == nil)
	if err != nil {
		return 0, err
	}
	return result.(int), nil
}
