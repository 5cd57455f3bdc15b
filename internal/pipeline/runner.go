// Package pipeline moves documents from the source store, through the
// anonymizer, into the destination store.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ayushsubedi/anonymize-it/internal/anonymizer"
	"github.com/ayushsubedi/anonymize-it/internal/config"
	"github.com/ayushsubedi/anonymize-it/internal/logger"
	"github.com/ayushsubedi/anonymize-it/internal/runledger"
	"github.com/ayushsubedi/anonymize-it/internal/store"
	"github.com/ayushsubedi/anonymize-it/pkg/batch"
	"github.com/ayushsubedi/anonymize-it/pkg/logging"
)

type State string

const (
	StatePending   State = "pending"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

// Status is a point-in-time snapshot of a run.
type Status struct {
	RunID      string     `json:"run_id"`
	State      State      `json:"state"`
	Read       int64      `json:"read"`
	Written    int64      `json:"written"`
	Skipped    int64      `json:"skipped"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Error      string     `json:"error,omitempty"`
}

// Runner owns one anonymization run. Reading and writing overlap through a
// bounded channel; a batch is written only after every document in it has
// been anonymized.
type Runner struct {
	reader store.Reader
	writer store.Writer
	anon   *anonymizer.Service
	ledger *runledger.Service
	cfg    config.PipelineConfig
	runID  string
	logger logger.Logger

	mu     sync.Mutex
	status Status
}

func NewRunner(reader store.Reader, writer store.Writer, anon *anonymizer.Service, ledger *runledger.Service, cfg config.PipelineConfig, runID string, log logger.Logger) *Runner {
	return &Runner{
		reader: reader,
		writer: writer,
		anon:   anon,
		ledger: ledger,
		cfg:    cfg,
		runID:  runID,
		logger: log,
		status: Status{RunID: runID, State: StatePending},
	}
}

// Status returns a copy of the current run status.
func (r *Runner) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

func (r *Runner) setState(state State, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	r.status.State = state
	switch state {
	case StateRunning:
		r.status.StartedAt = &now
	case StateCompleted, StateFailed:
		r.status.FinishedAt = &now
	}
	if err != nil {
		r.status.Error = err.Error()
	}
}

func (r *Runner) addProgress(read, written, skipped int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status.Read += read
	r.status.Written += written
	r.status.Skipped += skipped
}

// Run executes the pipeline to completion. It is not restartable; resuming an
// interrupted run means starting a new Runner with the same run ID so the run
// ledger can skip documents that were already written.
func (r *Runner) Run(ctx context.Context) error {
	ctx = logging.WithRunID(ctx, r.runID)
	r.setState(StateRunning, nil)

	err := r.run(ctx)
	if err != nil {
		r.setState(StateFailed, err)
		return err
	}

	r.setState(StateCompleted, nil)
	return nil
}

func (r *Runner) run(ctx context.Context) error {
	bufferSize := r.cfg.BufferSize
	if bufferSize < 1 {
		bufferSize = r.cfg.BatchSize
	}
	docs := make(chan store.Document, bufferSize)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := r.reader.Read(gCtx, docs); err != nil {
			return fmt.Errorf("reading from %s: %w", r.reader.Name(), err)
		}
		return nil
	})

	g.Go(func() error {
		defer func() {
			if err := r.writer.Close(); err != nil {
				r.logger.WarnwCtx(gCtx, "Failed to close writer", "error", err)
			}
		}()

		for group := range batch.Seq(batch.FromChan(docs), r.cfg.BatchSize) {
			if err := r.writeGroup(gCtx, group); err != nil {
				return err
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	status := r.Status()
	r.logger.InfowCtx(ctx, "Run complete",
		"read", status.Read,
		"written", status.Written,
		"skipped", status.Skipped,
	)
	return nil
}

func (r *Runner) writeGroup(ctx context.Context, group func(func(store.Document) bool)) error {
	out := make([]store.Document, 0, r.cfg.BatchSize)
	var read, skipped int64

	for doc := range group {
		read++

		if r.ledger != nil && doc.ID != "" {
			first, err := r.ledger.FirstWrite(ctx, doc.ID)
			if err != nil {
				return err
			}
			if !first {
				skipped++
				continue
			}
		}

		recCtx := logging.WithRecordID(ctx, doc.ID)
		out = append(out, store.Document{
			ID:     doc.ID,
			Source: r.anon.Anonymize(recCtx, doc.Source),
		})
	}

	if len(out) > 0 {
		if err := r.writer.WriteBatch(ctx, out); err != nil {
			return fmt.Errorf("writing to %s: %w", r.writer.Name(), err)
		}
	}

	r.addProgress(read, int64(len(out)), skipped)
	return nil
}
