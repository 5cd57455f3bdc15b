package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigYAML = `
server:
  port: 8080
  read_timeout_seconds: 10s
  write_timeout_seconds: 10s

logging:
  level: debug

pipeline:
  batch_size: 500
  hash_key: test-key

anonymize:
  source:
    type: elasticsearch
    addr: http://localhost:9200
    index: logs
  dest:
    type: ndjson
    path: out.ndjson
  include:
    - user.email
  exclude:
    - user.ssn
  include_rest: true
  sensitive:
    patterns:
      - 'AKIA[0-9A-Z]{16}'
    keywords:
      - password
`

func writeTestConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeTestConfig(t, testConfigYAML))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 500, cfg.Pipeline.BatchSize)
	assert.Equal(t, "test-key", cfg.Pipeline.HashKey)

	require.NotNil(t, cfg.Anonymize.Source)
	assert.Equal(t, "elasticsearch", cfg.Anonymize.Source.Type)
	assert.Equal(t, "logs", cfg.Anonymize.Source.Index)
	require.NotNil(t, cfg.Anonymize.Dest)
	assert.Equal(t, "ndjson", cfg.Anonymize.Dest.Type)
	assert.Equal(t, []string{"user.email"}, cfg.Anonymize.MaskedFields)
	assert.Equal(t, []string{"user.ssn"}, cfg.Anonymize.SuppressedFields)
	assert.True(t, cfg.Anonymize.IncludeRest)
	require.NotNil(t, cfg.Anonymize.Sensitive)
	assert.Equal(t, []string{"password"}, cfg.Anonymize.Sensitive.Keywords)
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeTestConfig(t, testConfigYAML))
	require.NoError(t, err)

	assert.Equal(t, 1000, cfg.Pipeline.BufferSize)
	assert.Equal(t, 500, cfg.Pipeline.ScrollSize)
	assert.Equal(t, "1m", cfg.Pipeline.ScrollKeepAlive)
	assert.Equal(t, ".", cfg.Pipeline.Separator)
	assert.Equal(t, "fail", cfg.RunLedger.OnError)
	assert.Equal(t, "https://api.elastic-cloud.com/api/v1/deployments", cfg.CloudAPI.URL)
}

func TestLoadConfigNormalizesOnError(t *testing.T) {
	cfg, err := LoadConfig(writeTestConfig(t, testConfigYAML+`
runledger:
  on_error: Allow
`))
	require.NoError(t, err)

	assert.Equal(t, "allow", cfg.RunLedger.OnError)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadConfigInvalidValues(t *testing.T) {
	invalid := `
server:
  port: 0
  read_timeout_seconds: 10s
  write_timeout_seconds: 10s
`
	_, err := LoadConfig(writeTestConfig(t, invalid))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.port")
}
