package config

import (
	"fmt"
	"regexp"

	apperrors "github.com/ayushsubedi/anonymize-it/pkg/errors"
)

// SourceConfig describes where records are read from. Type selects the
// reader implementation; the remaining fields are interpreted per type.
type SourceConfig struct {
	Type       string `mapstructure:"type"`
	Addr       string `mapstructure:"addr"`
	Index      string `mapstructure:"index"`
	Query      string `mapstructure:"query"`
	URI        string `mapstructure:"uri"`
	Database   string `mapstructure:"database"`
	Collection string `mapstructure:"collection"`
}

// DestConfig describes where anonymized records are written to.
type DestConfig struct {
	Type       string `mapstructure:"type"`
	Addr       string `mapstructure:"addr"`
	Index      string `mapstructure:"index"`
	URI        string `mapstructure:"uri"`
	Database   string `mapstructure:"database"`
	Collection string `mapstructure:"collection"`
	Topic      string `mapstructure:"topic"`
	Path       string `mapstructure:"path"`
}

type SensitiveConfig struct {
	Patterns []string `mapstructure:"patterns"`
	Keywords []string `mapstructure:"keywords"`
}

// JobConfig is the raw anonymization section as unmarshalled from the config
// file. ParseJob turns it into a validated, immutable Job.
type JobConfig struct {
	Source           *SourceConfig    `mapstructure:"source"`
	Dest             *DestConfig      `mapstructure:"dest"`
	Anonymization    string           `mapstructure:"anonymization"`
	MaskedFields     []string         `mapstructure:"include"`
	SuppressedFields []string         `mapstructure:"exclude"`
	IncludeRest      bool             `mapstructure:"include_rest"`
	Sensitive        *SensitiveConfig `mapstructure:"sensitive"`
}

// Job is the validated anonymization job. It is constructed once by ParseJob
// and never mutated afterwards; a single Job may be shared across workers.
type Job struct {
	Source            SourceConfig
	Dest              DestConfig
	AnonymizationType string
	MaskedFields      map[string]struct{}
	SuppressedFields  map[string]struct{}
	IncludeRest       bool
	SecretPatterns    []*regexp.Regexp
	Keywords          []string

	warnings []string
}

// Warnings reports non-fatal findings from parsing, such as an empty mask
// list. The run proceeds; the operator is expected to be informed.
func (j *Job) Warnings() []string {
	return j.warnings
}

func (j *Job) IsMasked(path string) bool {
	_, ok := j.MaskedFields[path]
	return ok
}

func (j *Job) IsSuppressed(path string) bool {
	_, ok := j.SuppressedFields[path]
	return ok
}

// Sensitive reports whether secret-pattern and keyword scanning is enabled
// for fields without an explicit rule.
func (j *Job) Sensitive() bool {
	return len(j.SecretPatterns) > 0 || len(j.Keywords) > 0
}

func ParseJob(raw JobConfig) (*Job, error) {
	if raw.Source == nil {
		return nil, apperrors.NewConfigError("source error: source not defined. Please check config.")
	}
	if raw.Dest == nil {
		return nil, apperrors.NewConfigError("destination error: dest not defined. Please check config.")
	}
	if raw.Source.Type == "" {
		return nil, apperrors.NewConfigError("source error: source type not defined. Please check config.")
	}
	if raw.Dest.Type == "" {
		return nil, apperrors.NewConfigError("destination error: dest type not defined. Please check config.")
	}

	job := &Job{
		Source:            *raw.Source,
		Dest:              *raw.Dest,
		AnonymizationType: raw.Anonymization,
		MaskedFields:      toSet(raw.MaskedFields),
		SuppressedFields:  toSet(raw.SuppressedFields),
		IncludeRest:       raw.IncludeRest,
	}

	if len(job.MaskedFields) == 0 {
		job.warnings = append(job.warnings, "no masked fields included in config. No data will be anonymized")
	}

	if raw.Sensitive != nil {
		for _, pattern := range raw.Sensitive.Patterns {
			re, err := regexp.Compile(pattern)
			if err != nil {
				return nil, apperrors.NewConfigError(fmt.Sprintf("sensitive error: invalid pattern %q: %v", pattern, err))
			}
			job.SecretPatterns = append(job.SecretPatterns, re)
		}
		job.Keywords = append([]string(nil), raw.Sensitive.Keywords...)
	}

	return job, nil
}

func toSet(fields []string) map[string]struct{} {
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}
