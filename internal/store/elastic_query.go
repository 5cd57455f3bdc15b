package store

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// CompositeAggQuery builds a composite terms aggregation body that pages
// through the distinct values of a single field. The aggregation is named
// "my_buckets"; after resumes paging from the given cursor value, and query
// (a raw query clause) narrows the scanned documents when non-empty.
func CompositeAggQuery(field string, size int, query json.RawMessage, after string) ([]byte, error) {
	composite := map[string]interface{}{
		"size": size,
		"sources": []interface{}{
			map[string]interface{}{
				field: map[string]interface{}{
					"terms": map[string]interface{}{"field": field},
				},
			},
		},
	}
	if after != "" {
		composite["after"] = map[string]interface{}{field: after}
	}

	body := map[string]interface{}{
		"size": 0,
		"aggs": map[string]interface{}{
			"my_buckets": map[string]interface{}{
				"composite": composite,
			},
		},
	}
	if len(query) > 0 {
		body["query"] = query
	}

	return json.Marshal(body)
}

// ValuePage is one page of distinct field values. After is the paging cursor
// for the next call; empty means the page was the last one.
type ValuePage struct {
	Values []string
	After  string
}

type compositeAggResponse struct {
	Aggregations struct {
		MyBuckets struct {
			AfterKey map[string]interface{} `json:"after_key"`
			Buckets  []struct {
				Key map[string]interface{} `json:"key"`
			} `json:"buckets"`
		} `json:"my_buckets"`
	} `json:"aggregations"`
}

// DistinctValues fetches one page of distinct values for field from index.
func (c *ElasticClient) DistinctValues(ctx context.Context, index, field string, size int, query json.RawMessage, after string) (*ValuePage, error) {
	body, err := CompositeAggQuery(field, size, query, after)
	if err != nil {
		return nil, err
	}

	var resp compositeAggResponse
	if err := c.Do(ctx, http.MethodPost, "/"+url.PathEscape(index)+"/_search", body, &resp); err != nil {
		return nil, fmt.Errorf("distinct values for %s: %w", field, err)
	}

	page := &ValuePage{}
	for _, bucket := range resp.Aggregations.MyBuckets.Buckets {
		page.Values = append(page.Values, fmt.Sprintf("%v", bucket.Key[field]))
	}
	if len(page.Values) == size {
		if afterVal, ok := resp.Aggregations.MyBuckets.AfterKey[field]; ok {
			page.After = fmt.Sprintf("%v", afterVal)
		}
	}

	return page, nil
}
