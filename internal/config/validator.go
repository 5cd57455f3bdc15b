package config

import (
	"fmt"
	"strings"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

func ValidateStatic(cfg *Config) error {
	var errors []error

	if err := validateServer(cfg.Server); err != nil {
		errors = append(errors, err)
	}

	if err := validatePipeline(cfg.Pipeline); err != nil {
		errors = append(errors, err)
	}

	if err := validateRunLedger(cfg.RunLedger, cfg.Database.Redis); err != nil {
		errors = append(errors, err)
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %v", errors)
	}

	return nil
}

func validateServer(cfg ServerConfig) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return &ValidationError{
			Field:   "server.port",
			Message: fmt.Sprintf("port must be between 1 and 65535, got %d", cfg.Port),
		}
	}

	if cfg.ReadTimeoutSeconds <= 0 {
		return &ValidationError{
			Field:   "server.read_timeout_seconds",
			Message: "read timeout must be positive",
		}
	}

	if cfg.WriteTimeoutSeconds <= 0 {
		return &ValidationError{
			Field:   "server.write_timeout_seconds",
			Message: "write timeout must be positive",
		}
	}

	return nil
}

func validatePipeline(cfg PipelineConfig) error {
	if cfg.BatchSize < 1 {
		return &ValidationError{
			Field:   "pipeline.batch_size",
			Message: fmt.Sprintf("batch size must be positive, got %d", cfg.BatchSize),
		}
	}

	if cfg.ScrollSize < 1 {
		return &ValidationError{
			Field:   "pipeline.scroll_size",
			Message: fmt.Sprintf("scroll size must be positive, got %d", cfg.ScrollSize),
		}
	}

	if len(cfg.Separator) != 1 {
		return &ValidationError{
			Field:   "pipeline.separator",
			Message: fmt.Sprintf("separator must be a single character, got %q", cfg.Separator),
		}
	}

	if cfg.RequestsPerSec < 0 {
		return &ValidationError{
			Field:   "pipeline.requests_per_sec",
			Message: "requests_per_sec must be non-negative",
		}
	}

	return nil
}

func validateRunLedger(cfg RunLedgerConfig, redis RedisConfig) error {
	if !cfg.Enabled {
		return nil
	}

	if redis.Host == "" {
		return &ValidationError{
			Field:   "database.redis.host",
			Message: "Redis host is required when the run ledger is enabled",
		}
	}

	if redis.Port < 1 || redis.Port > 65535 {
		return &ValidationError{
			Field:   "database.redis.port",
			Message: fmt.Sprintf("port must be between 1 and 65535, got %d", redis.Port),
		}
	}

	if cfg.TTLSeconds < 0 {
		return &ValidationError{
			Field:   "run_ledger.ttl_seconds",
			Message: "TTL must be non-negative",
		}
	}

	validOnError := map[string]bool{
		"allow": true, "fail": true,
	}
	if cfg.OnError != "" && !validOnError[strings.ToLower(cfg.OnError)] {
		return &ValidationError{
			Field:   "run_ledger.on_error",
			Message: fmt.Sprintf("invalid on_error value: %s (valid: allow, fail)", cfg.OnError),
		}
	}

	return nil
}
