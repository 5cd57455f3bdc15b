// Package store connects the anonymization pipeline to its source and
// destination backends. Readers stream documents out of a store; writers
// persist anonymized documents in batches. The backend is selected by the
// job's source/dest type descriptor.
package store

import (
	"context"
	"fmt"

	"github.com/ayushsubedi/anonymize-it/internal/config"
	"github.com/ayushsubedi/anonymize-it/internal/logger"
)

// Document pairs a record with its store identity. Source is the generic
// nested-mapping record shape the anonymizer operates on.
type Document struct {
	ID     string
	Source map[string]interface{}
}

type Reader interface {
	// Read streams documents into out until the source is exhausted or ctx
	// is cancelled. Read closes out before returning.
	Read(ctx context.Context, out chan<- Document) error
	Name() string
}

type Writer interface {
	WriteBatch(ctx context.Context, docs []Document) error
	Close() error
	Name() string
}

func NewReader(src config.SourceConfig, pcfg config.PipelineConfig, log logger.Logger) (Reader, error) {
	switch src.Type {
	case "elasticsearch":
		client := NewElasticClient(src.Addr, pcfg, log)
		return NewElasticReader(client, src.Index, src.Query, pcfg, log), nil
	case "mongodb":
		return NewMongoReader(src, log)
	default:
		return nil, fmt.Errorf("unknown source type: %s", src.Type)
	}
}

func NewWriter(dst config.DestConfig, pcfg config.PipelineConfig, kafkaCfg config.KafkaConfig, log logger.Logger) (Writer, error) {
	switch dst.Type {
	case "elasticsearch":
		client := NewElasticClient(dst.Addr, pcfg, log)
		return NewElasticWriter(client, dst.Index, log), nil
	case "mongodb":
		return NewMongoWriter(dst, log)
	case "kafka":
		return NewKafkaWriter(kafkaCfg, dst.Topic, log)
	case "ndjson", "json":
		return NewNDJSONWriter(dst.Path)
	case "csv":
		return NewCSVWriter(dst.Path, pcfg.Separator)
	default:
		return nil, fmt.Errorf("unknown dest type: %s", dst.Type)
	}
}
