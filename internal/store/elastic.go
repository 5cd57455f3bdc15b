package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ayushsubedi/anonymize-it/internal/config"
	"github.com/ayushsubedi/anonymize-it/internal/logger"
	"github.com/ayushsubedi/anonymize-it/pkg/metrics"
)

const storeElasticsearch = "elasticsearch"

// ElasticReader streams documents out of an index with the scroll API.
type ElasticReader struct {
	client    *ElasticClient
	index     string
	query     json.RawMessage
	scrollTTL string
	pageSize  int
	logger    logger.Logger
}

func NewElasticReader(client *ElasticClient, index, query string, pcfg config.PipelineConfig, log logger.Logger) *ElasticReader {
	pageSize := pcfg.ScrollSize
	if pageSize < 1 {
		pageSize = 1000
	}
	scrollTTL := pcfg.ScrollKeepAlive
	if scrollTTL == "" {
		scrollTTL = "2m"
	}

	return &ElasticReader{
		client:    client,
		index:     index,
		query:     json.RawMessage(query),
		scrollTTL: scrollTTL,
		pageSize:  pageSize,
		logger:    log,
	}
}

func (r *ElasticReader) Name() string { return storeElasticsearch }

type scrollResponse struct {
	ScrollID string `json:"_scroll_id"`
	Hits     struct {
		Hits []struct {
			ID     string                 `json:"_id"`
			Source map[string]interface{} `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func (r *ElasticReader) Read(ctx context.Context, out chan<- Document) error {
	defer close(out)

	body := map[string]interface{}{"size": r.pageSize}
	if len(r.query) > 0 {
		body["query"] = r.query
	} else {
		body["query"] = map[string]interface{}{"match_all": map[string]interface{}{}}
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	var resp scrollResponse
	path := "/" + url.PathEscape(r.index) + "/_search?scroll=" + r.scrollTTL
	if err := r.client.Do(ctx, http.MethodPost, path, payload, &resp); err != nil {
		return fmt.Errorf("scroll open on %s: %w", r.index, err)
	}

	scrollID := resp.ScrollID
	defer r.clearScroll(scrollID)

	for len(resp.Hits.Hits) > 0 {
		metrics.ReaderPagesTotal.WithLabelValues(storeElasticsearch).Inc()

		for _, hit := range resp.Hits.Hits {
			select {
			case out <- Document{ID: hit.ID, Source: hit.Source}:
				metrics.ReaderRecordsTotal.WithLabelValues(storeElasticsearch).Inc()
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		payload, err = json.Marshal(map[string]interface{}{
			"scroll":    r.scrollTTL,
			"scroll_id": scrollID,
		})
		if err != nil {
			return err
		}

		resp = scrollResponse{}
		if err := r.client.Do(ctx, http.MethodPost, "/_search/scroll", payload, &resp); err != nil {
			return fmt.Errorf("scroll continue on %s: %w", r.index, err)
		}
		scrollID = resp.ScrollID
	}

	return nil
}

func (r *ElasticReader) clearScroll(scrollID string) {
	if scrollID == "" {
		return
	}
	payload, err := json.Marshal(map[string]interface{}{"scroll_id": scrollID})
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), r.client.hc.Timeout)
	defer cancel()
	if err := r.client.Do(ctx, http.MethodDelete, "/_search/scroll", payload, nil); err != nil {
		r.logger.Debugw("Failed to clear scroll context", "error", err)
	}
}

// ElasticWriter indexes documents with the bulk API. Document IDs are
// preserved so a resumed run overwrites instead of duplicating.
type ElasticWriter struct {
	client *ElasticClient
	index  string
	logger logger.Logger
}

func NewElasticWriter(client *ElasticClient, index string, log logger.Logger) *ElasticWriter {
	return &ElasticWriter{client: client, index: index, logger: log}
}

func (w *ElasticWriter) Name() string { return storeElasticsearch }

type bulkResponse struct {
	Errors bool `json:"errors"`
	Items  []map[string]struct {
		Status int `json:"status"`
		Error  *struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error"`
	} `json:"items"`
}

func (w *ElasticWriter) WriteBatch(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, doc := range docs {
		action := map[string]interface{}{"_index": w.index}
		if doc.ID != "" {
			action["_id"] = doc.ID
		}
		if err := enc.Encode(map[string]interface{}{"index": action}); err != nil {
			return err
		}
		if err := enc.Encode(doc.Source); err != nil {
			return err
		}
	}

	var resp bulkResponse
	if err := w.client.Do(ctx, http.MethodPost, "/_bulk", buf.Bytes(), &resp); err != nil {
		metrics.WriterBatchesTotal.WithLabelValues(storeElasticsearch, "error").Inc()
		return fmt.Errorf("bulk write to %s: %w", w.index, err)
	}

	if resp.Errors {
		metrics.WriterBatchesTotal.WithLabelValues(storeElasticsearch, "error").Inc()
		for _, item := range resp.Items {
			for _, result := range item {
				if result.Error != nil {
					return fmt.Errorf("bulk write to %s: %s: %s", w.index, result.Error.Type, result.Error.Reason)
				}
			}
		}
		return fmt.Errorf("bulk write to %s: partial failure", w.index)
	}

	metrics.WriterBatchesTotal.WithLabelValues(storeElasticsearch, "success").Inc()
	metrics.WriterRecordsTotal.WithLabelValues(storeElasticsearch).Add(float64(len(docs)))
	return nil
}

func (w *ElasticWriter) Close() error { return nil }
