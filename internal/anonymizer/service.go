package anonymizer

import (
	"context"
	"time"

	"github.com/ayushsubedi/anonymize-it/internal/config"
	"github.com/ayushsubedi/anonymize-it/internal/logger"
	"github.com/ayushsubedi/anonymize-it/pkg/metrics"
	"github.com/ayushsubedi/anonymize-it/pkg/tracing"
)

// Service applies one job's anonymization rules to records: flatten,
// classify every leaf, hash or drop according to the verdict, and fold the
// survivors back into the original nesting.
type Service struct {
	job        *config.Job
	classifier *Classifier
	hasher     *Hasher
	sep        string
	logger     logger.Logger
}

func NewService(job *config.Job, hashKey, sep string, log logger.Logger) *Service {
	if sep == "" {
		sep = "."
	}

	for _, w := range job.Warnings() {
		log.Warnw("Job configuration warning", "warning", w)
	}

	return &Service{
		job:        job,
		classifier: NewClassifier(job),
		hasher:     NewHasher(hashKey),
		sep:        sep,
		logger:     log,
	}
}

// Anonymize transforms one record. The input is not modified. Callers are
// responsible for ensuring the record is a well-formed nested mapping.
func (s *Service) Anonymize(ctx context.Context, record map[string]interface{}) map[string]interface{} {
	_, span := tracing.GetTracer("anonymizer-service").Start(ctx, "anonymizer.record")
	defer span.End()

	start := time.Now()

	flat := Flatten(record, s.sep)
	out := make(map[string]interface{}, len(flat))

	for path, v := range flat {
		disposition := s.classifier.Classify(path, v)
		metrics.FieldDispositionsTotal.WithLabelValues(disposition.String()).Inc()

		switch disposition {
		case Suppress:
			// Dropped paths never reach the output shape.
		case Mask:
			out[path] = s.mask(v)
		case Passthrough:
			out[path] = v.Raw()
		}
	}

	metrics.AnonymizedRecordsTotal.WithLabelValues("anonymized").Inc()
	metrics.ObserveAnonymizeDuration(time.Since(start))

	return Unflatten(out, s.sep)
}

// mask hashes a scalar, or every element of a sequence independently.
func (s *Service) mask(v Value) interface{} {
	switch v.Kind() {
	case KindSequence:
		seq := v.Sequence()
		masked := make([]interface{}, len(seq))
		for i, el := range seq {
			masked[i] = s.hasher.Hash(el)
		}
		return masked
	default:
		return s.hasher.Hash(v.Scalar())
	}
}
