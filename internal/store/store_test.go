package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayushsubedi/anonymize-it/internal/config"
	"github.com/ayushsubedi/anonymize-it/internal/logger"
)

func TestNewReaderUnknownType(t *testing.T) {
	_, err := NewReader(config.SourceConfig{Type: "carrier-pigeon"}, config.PipelineConfig{}, logger.NopLogger())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown source type")
}

func TestNewReaderElasticsearch(t *testing.T) {
	reader, err := NewReader(config.SourceConfig{Type: "elasticsearch", Addr: "http://localhost:9200", Index: "logs"}, config.PipelineConfig{}, logger.NopLogger())

	require.NoError(t, err)
	assert.Equal(t, "elasticsearch", reader.Name())
}

func TestNewWriterUnknownType(t *testing.T) {
	_, err := NewWriter(config.DestConfig{Type: "carrier-pigeon"}, config.PipelineConfig{}, config.KafkaConfig{}, logger.NopLogger())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown dest type")
}

func TestNewWriterFiles(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		destType string
		wantName string
	}{
		{destType: "ndjson", wantName: "ndjson"},
		{destType: "json", wantName: "ndjson"},
		{destType: "csv", wantName: "csv"},
	}

	for _, tt := range tests {
		t.Run(tt.destType, func(t *testing.T) {
			writer, err := NewWriter(
				config.DestConfig{Type: tt.destType, Path: filepath.Join(dir, "out."+tt.destType)},
				config.PipelineConfig{Separator: "."},
				config.KafkaConfig{},
				logger.NopLogger(),
			)
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, writer.Name())
			assert.NoError(t, writer.Close())
		})
	}
}

func TestNewWriterKafkaRequiresBrokersAndTopic(t *testing.T) {
	_, err := NewWriter(config.DestConfig{Type: "kafka", Topic: "out"}, config.PipelineConfig{}, config.KafkaConfig{}, logger.NopLogger())
	assert.Error(t, err)

	_, err = NewWriter(config.DestConfig{Type: "kafka"}, config.PipelineConfig{}, config.KafkaConfig{Brokers: []string{"localhost:9092"}}, logger.NopLogger())
	assert.Error(t, err)

	writer, err := NewWriter(config.DestConfig{Type: "kafka", Topic: "out"}, config.PipelineConfig{}, config.KafkaConfig{Brokers: []string{"localhost:9092"}}, logger.NopLogger())
	require.NoError(t, err)
	assert.Equal(t, "kafka", writer.Name())
	assert.NoError(t, writer.Close())
}
