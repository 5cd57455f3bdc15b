package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:                8080,
			ReadTimeoutSeconds:  10 * time.Second,
			WriteTimeoutSeconds: 10 * time.Second,
		},
		Pipeline: PipelineConfig{
			BatchSize:  1000,
			ScrollSize: 1000,
			Separator:  ".",
		},
	}
}

func TestValidateStaticValid(t *testing.T) {
	assert.NoError(t, ValidateStatic(validConfig()))
}

func TestValidateStatic(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{
			name:      "invalid port",
			mutate:    func(c *Config) { c.Server.Port = 0 },
			wantField: "server.port",
		},
		{
			name:      "zero read timeout",
			mutate:    func(c *Config) { c.Server.ReadTimeoutSeconds = 0 },
			wantField: "server.read_timeout_seconds",
		},
		{
			name:      "zero batch size",
			mutate:    func(c *Config) { c.Pipeline.BatchSize = 0 },
			wantField: "pipeline.batch_size",
		},
		{
			name:      "zero scroll size",
			mutate:    func(c *Config) { c.Pipeline.ScrollSize = 0 },
			wantField: "pipeline.scroll_size",
		},
		{
			name:      "multi character separator",
			mutate:    func(c *Config) { c.Pipeline.Separator = "::" },
			wantField: "pipeline.separator",
		},
		{
			name:      "negative request rate",
			mutate:    func(c *Config) { c.Pipeline.RequestsPerSec = -1 },
			wantField: "pipeline.requests_per_sec",
		},
		{
			name: "ledger enabled without redis host",
			mutate: func(c *Config) {
				c.RunLedger.Enabled = true
				c.Database.Redis.Port = 6379
			},
			wantField: "database.redis.host",
		},
		{
			name: "ledger with bad on_error",
			mutate: func(c *Config) {
				c.RunLedger.Enabled = true
				c.Database.Redis.Host = "localhost"
				c.Database.Redis.Port = 6379
				c.RunLedger.OnError = "ignore"
			},
			wantField: "run_ledger.on_error",
		},
		{
			name: "ledger with negative ttl",
			mutate: func(c *Config) {
				c.RunLedger.Enabled = true
				c.Database.Redis.Host = "localhost"
				c.Database.Redis.Port = 6379
				c.RunLedger.TTLSeconds = -1
			},
			wantField: "run_ledger.ttl_seconds",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := ValidateStatic(cfg)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantField)
		})
	}
}

func TestValidateStaticLedgerDisabledSkipsRedis(t *testing.T) {
	cfg := validConfig()
	cfg.RunLedger.Enabled = false

	assert.NoError(t, ValidateStatic(cfg))
}
