package store

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayushsubedi/anonymize-it/internal/config"
	"github.com/ayushsubedi/anonymize-it/internal/logger"
)

func TestElasticReaderScroll(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/logs/_search":
			assert.Equal(t, "2m", r.URL.Query().Get("scroll"))
			w.Write([]byte(`{"_scroll_id":"s1","hits":{"hits":[{"_id":"1","_source":{"host":"a"}},{"_id":"2","_source":{"host":"b"}}]}}`))
		case r.Method == http.MethodPost && r.URL.Path == "/_search/scroll":
			var body map[string]interface{}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "s1", body["scroll_id"])
			w.Write([]byte(`{"_scroll_id":"s1","hits":{"hits":[]}}`))
		case r.Method == http.MethodDelete && r.URL.Path == "/_search/scroll":
			w.Write([]byte(`{"succeeded":true}`))
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
	}))
	defer srv.Close()

	client := NewElasticClient(srv.URL, config.PipelineConfig{}, logger.NopLogger())
	reader := NewElasticReader(client, "logs", "", config.PipelineConfig{ScrollSize: 2}, logger.NopLogger())

	out := make(chan Document, 4)
	require.NoError(t, reader.Read(context.Background(), out))

	var docs []Document
	for doc := range out {
		docs = append(docs, doc)
	}

	require.Len(t, docs, 2)
	assert.Equal(t, "1", docs[0].ID)
	assert.Equal(t, map[string]interface{}{"host": "a"}, docs[0].Source)
	assert.Equal(t, "2", docs[1].ID)
}

func TestElasticWriterBulk(t *testing.T) {
	var lines []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/_bulk", r.URL.Path)
		scanner := bufio.NewScanner(r.Body)
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"errors":false,"items":[]}`))
	}))
	defer srv.Close()

	client := NewElasticClient(srv.URL, config.PipelineConfig{}, logger.NopLogger())
	writer := NewElasticWriter(client, "out", logger.NopLogger())

	err := writer.WriteBatch(context.Background(), []Document{
		{ID: "1", Source: map[string]interface{}{"host": "a"}},
		{Source: map[string]interface{}{"host": "b"}},
	})
	require.NoError(t, err)

	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], `"_index":"out"`)
	assert.Contains(t, lines[0], `"_id":"1"`)
	assert.Contains(t, lines[1], `"host":"a"`)
	assert.False(t, strings.Contains(lines[2], `"_id"`))
}

func TestElasticWriterBulkPartialFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"errors":true,"items":[{"index":{"status":400,"error":{"type":"mapper_parsing_exception","reason":"bad field"}}}]}`))
	}))
	defer srv.Close()

	client := NewElasticClient(srv.URL, config.PipelineConfig{}, logger.NopLogger())
	writer := NewElasticWriter(client, "out", logger.NopLogger())

	err := writer.WriteBatch(context.Background(), []Document{
		{ID: "1", Source: map[string]interface{}{"host": "a"}},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "mapper_parsing_exception")
}

func TestElasticWriterEmptyBatch(t *testing.T) {
	writer := NewElasticWriter(nil, "out", logger.NopLogger())
	assert.NoError(t, writer.WriteBatch(context.Background(), nil))
}
