package catalog

import (
	"context"
	"encoding/json"
	"iter"

	"github.com/ayushsubedi/anonymize-it/internal/logger"
	"github.com/ayushsubedi/anonymize-it/internal/store"
	"github.com/ayushsubedi/anonymize-it/pkg/metrics"
)

// Scanner pages through the distinct values of a field in the source index.
// It drives the composite aggregation cursor so callers see one flat stream.
type Scanner struct {
	client   *store.ElasticClient
	index    string
	query    json.RawMessage
	pageSize int
	logger   logger.Logger
}

func NewScanner(client *store.ElasticClient, index, query string, pageSize int, log logger.Logger) *Scanner {
	if pageSize < 1 {
		pageSize = 100
	}
	return &Scanner{
		client:   client,
		index:    index,
		query:    json.RawMessage(query),
		pageSize: pageSize,
		logger:   log,
	}
}

// Values streams the distinct values of field. The stream is lazy: a page is
// fetched only when the previous one has been consumed, and abandoning the
// stream stops paging. Fetch errors end the stream; the caller observes them
// through Err.
func (s *Scanner) Values(ctx context.Context, field string) (iter.Seq[string], func() error) {
	var scanErr error

	seq := func(yield func(string) bool) {
		after := ""
		for {
			page, err := s.client.DistinctValues(ctx, s.index, field, s.pageSize, s.query, after)
			if err != nil {
				scanErr = err
				return
			}
			metrics.ReaderPagesTotal.WithLabelValues("elasticsearch").Inc()

			for _, value := range page.Values {
				if !yield(value) {
					return
				}
			}

			if page.After == "" {
				return
			}
			after = page.After
		}
	}

	return seq, func() error { return scanErr }
}

// CollectValues drains Values into a slice, capped at limit when limit > 0.
func (s *Scanner) CollectValues(ctx context.Context, field string, limit int) ([]string, error) {
	seq, errFn := s.Values(ctx, field)

	var values []string
	for value := range seq {
		values = append(values, value)
		if limit > 0 && len(values) >= limit {
			break
		}
	}
	if err := errFn(); err != nil {
		return nil, err
	}
	return values, nil
}
