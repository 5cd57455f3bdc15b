package anonymizer

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ayushsubedi/anonymize-it/internal/config"
)

// Disposition is the classifier's verdict for one flattened field.
type Disposition int

const (
	Passthrough Disposition = iota
	Mask
	Suppress
)

func (d Disposition) String() string {
	switch d {
	case Mask:
		return "mask"
	case Suppress:
		return "suppress"
	default:
		return "passthrough"
	}
}

// Classifier decides the disposition of a single flattened field from the
// job's explicit rules plus optional secret-pattern and keyword scanning.
// It holds no mutable state and is safe for concurrent use.
type Classifier struct {
	job *config.Job
}

func NewClassifier(job *config.Job) *Classifier {
	return &Classifier{job: job}
}

// Classify applies the rules in priority order, first match wins:
// explicit suppression, explicit masking, secret-pattern match, keyword
// match, then the include_rest default. Sequence-valued fields match when
// any element matches; the verdict covers the whole field.
func (c *Classifier) Classify(path string, v Value) Disposition {
	if c.job.IsSuppressed(path) {
		return Suppress
	}
	if c.job.IsMasked(path) {
		return Mask
	}
	if containsSecret(c.job.SecretPatterns, v) {
		return Mask
	}
	if containsKeyword(c.job.Keywords, v) {
		return Mask
	}
	if c.job.IncludeRest {
		return Passthrough
	}
	return Suppress
}

func containsSecret(patterns []*regexp.Regexp, v Value) bool {
	if len(patterns) == 0 {
		return false
	}
	for _, re := range patterns {
		if matchAny(v, re.MatchString) {
			return true
		}
	}
	return false
}

func containsKeyword(keywords []string, v Value) bool {
	for _, word := range keywords {
		if matchAny(v, func(s string) bool { return strings.Contains(s, word) }) {
			return true
		}
	}
	return false
}

func matchAny(v Value, match func(string) bool) bool {
	switch v.Kind() {
	case KindSequence:
		for _, el := range v.Sequence() {
			if match(stringify(el)) {
				return true
			}
		}
		return false
	default:
		return match(stringify(v.Scalar()))
	}
}

func stringify(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
