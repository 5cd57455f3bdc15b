package runledger

import (
	"context"
	"fmt"
	"time"

	"github.com/ayushsubedi/anonymize-it/internal/config"
	"github.com/ayushsubedi/anonymize-it/internal/constants"
	"github.com/ayushsubedi/anonymize-it/internal/logger"
	"github.com/ayushsubedi/anonymize-it/pkg/metrics"
)

type errorHandlingStatus int

const (
	errorHandlingFail errorHandlingStatus = iota
	errorHandlingAllow
)

// Service makes interrupted runs resumable: the first successful write of a
// document marks it in the ledger, and a restarted run skips documents that
// are already marked.
type Service struct {
	repo          Repository
	cfg           config.RunLedgerConfig
	runID         string
	logger        logger.Logger
	stopSizeGauge chan struct{}
	cancelGauge   context.CancelFunc
}

func NewService(repo Repository, cfg config.RunLedgerConfig, runID string, log logger.Logger) *Service {
	ctx, cancel := context.WithCancel(context.Background())

	s := &Service{
		repo:          repo,
		cfg:           cfg,
		runID:         runID,
		logger:        log,
		stopSizeGauge: make(chan struct{}),
		cancelGauge:   cancel,
	}

	go s.updateSizeGauge(ctx)

	return s
}

// FirstWrite marks docID as written and reports whether this run saw it for
// the first time. Ledger errors are resolved by the configured fallback:
// "allow" lets the document through (it may be written twice), "fail"
// surfaces the error so the host can abort cleanly.
func (s *Service) FirstWrite(ctx context.Context, docID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	key := s.key(docID)
	first, err := s.repo.MarkWritten(ctx, key, time.Now().Unix(), time.Duration(s.cfg.TTLSeconds)*time.Second)
	if err != nil {
		return s.handleLedgerError(ctx, err, docID)
	}

	return first, nil
}

func (s *Service) key(docID string) string {
	return constants.RunLedgerKeyPrefix + s.runID + ":" + docID
}

func (s *Service) handleLedgerError(ctx context.Context, err error, docID string) (bool, error) {
	if s.cfg.OnError == constants.FallbackAllow {
		metrics.FallbackUsageTotal.WithLabelValues("run_ledger", "allow_on_error", err.Error()).Inc()
		s.logger.WarnwCtx(ctx, "Run ledger error, writing document anyway (fallback: allow)",
			"error", err,
		)
		return true, nil
	}

	metrics.FallbackUsageTotal.WithLabelValues("run_ledger", "fail_on_error", err.Error()).Inc()
	return false, fmt.Errorf("run ledger error for document %s: %w", docID, err)
}

func (s *Service) updateSizeGauge(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if ctx.Err() != nil {
				return
			}
			size, err := s.repo.LedgerSize(ctx, constants.RunLedgerKeyPrefix+s.runID+":")
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				s.logger.Debugw("Failed to get run ledger size for metrics",
					"error", err,
				)
				continue
			}
			metrics.SetRunLedgerSize(size)
		case <-s.stopSizeGauge:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (s *Service) Stop() {
	if s.cancelGauge != nil {
		s.cancelGauge()
	}
	close(s.stopSizeGauge)
}
