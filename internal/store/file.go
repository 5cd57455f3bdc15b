package store

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/ayushsubedi/anonymize-it/internal/anonymizer"
	"github.com/ayushsubedi/anonymize-it/pkg/metrics"
)

const (
	storeNDJSON = "ndjson"
	storeCSV    = "csv"
)

// NDJSONWriter appends one JSON object per line to a local file.
type NDJSONWriter struct {
	f   *os.File
	enc *json.Encoder
}

func NewNDJSONWriter(path string) (*NDJSONWriter, error) {
	if path == "" {
		return nil, fmt.Errorf("file destination requires dest.path")
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &NDJSONWriter{f: f, enc: json.NewEncoder(f)}, nil
}

func (w *NDJSONWriter) Name() string { return storeNDJSON }

func (w *NDJSONWriter) WriteBatch(ctx context.Context, docs []Document) error {
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := w.enc.Encode(doc.Source); err != nil {
			metrics.WriterBatchesTotal.WithLabelValues(storeNDJSON, "error").Inc()
			return fmt.Errorf("ndjson write: %w", err)
		}
	}
	metrics.WriterBatchesTotal.WithLabelValues(storeNDJSON, "success").Inc()
	metrics.WriterRecordsTotal.WithLabelValues(storeNDJSON).Add(float64(len(docs)))
	return nil
}

func (w *NDJSONWriter) Close() error {
	return w.f.Close()
}

// CSVWriter flattens each record to dotted-path columns. The header is fixed
// by the first batch; later records contribute only the columns it names.
type CSVWriter struct {
	f      *os.File
	cw     *csv.Writer
	sep    string
	header []string
}

func NewCSVWriter(path, sep string) (*CSVWriter, error) {
	if path == "" {
		return nil, fmt.Errorf("file destination requires dest.path")
	}
	if sep == "" {
		sep = "."
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &CSVWriter{f: f, cw: csv.NewWriter(f), sep: sep}, nil
}

func (w *CSVWriter) Name() string { return storeCSV }

func (w *CSVWriter) WriteBatch(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	flattened := make([]map[string]anonymizer.Value, 0, len(docs))
	for _, doc := range docs {
		flattened = append(flattened, anonymizer.Flatten(doc.Source, w.sep))
	}

	if w.header == nil {
		columns := make(map[string]struct{})
		for _, flat := range flattened {
			for path := range flat {
				columns[path] = struct{}{}
			}
		}
		w.header = make([]string, 0, len(columns))
		for path := range columns {
			w.header = append(w.header, path)
		}
		sort.Strings(w.header)
		if err := w.cw.Write(w.header); err != nil {
			return fmt.Errorf("csv header: %w", err)
		}
	}

	for _, flat := range flattened {
		if err := ctx.Err(); err != nil {
			return err
		}
		row := make([]string, len(w.header))
		for i, column := range w.header {
			value, ok := flat[column]
			if !ok {
				continue
			}
			row[i] = renderCell(value)
		}
		if err := w.cw.Write(row); err != nil {
			metrics.WriterBatchesTotal.WithLabelValues(storeCSV, "error").Inc()
			return fmt.Errorf("csv write: %w", err)
		}
	}
	w.cw.Flush()
	if err := w.cw.Error(); err != nil {
		metrics.WriterBatchesTotal.WithLabelValues(storeCSV, "error").Inc()
		return err
	}

	metrics.WriterBatchesTotal.WithLabelValues(storeCSV, "success").Inc()
	metrics.WriterRecordsTotal.WithLabelValues(storeCSV).Add(float64(len(docs)))
	return nil
}

func renderCell(value anonymizer.Value) string {
	if value.Kind() == anonymizer.KindSequence {
		raw, err := json.Marshal(value.Sequence())
		if err != nil {
			return fmt.Sprintf("%v", value.Sequence())
		}
		return string(raw)
	}
	return fmt.Sprintf("%v", value.Scalar())
}

func (w *CSVWriter) Close() error {
	w.cw.Flush()
	if err := w.cw.Error(); err != nil {
		w.f.Close()
		return err
	}
	return w.f.Close()
}
