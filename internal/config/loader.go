package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

func LoadConfig(configFile string) (*Config, error) {
	viper.Reset()

	viper.SetConfigType("yaml")
	viper.SetConfigFile(configFile)

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	bindEnvVariables()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := ValidateStatic(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

func bindEnvVariables() {
	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("server.read_timeout_seconds", "SERVER_READ_TIMEOUT_SECONDS")
	viper.BindEnv("server.write_timeout_seconds", "SERVER_WRITE_TIMEOUT_SECONDS")

	viper.BindEnv("database.redis.host", "DATABASE_REDIS_HOST")
	viper.BindEnv("database.redis.port", "DATABASE_REDIS_PORT")
	viper.BindEnv("database.redis.password", "DATABASE_REDIS_PASSWORD")
	viper.BindEnv("database.redis.db", "DATABASE_REDIS_DB")

	viper.BindEnv("kafka.brokers", "KAFKA_BROKERS")

	viper.BindEnv("logging.level", "LOGGING_LEVEL")
	viper.BindEnv("logging.format", "LOGGING_FORMAT")

	viper.BindEnv("pipeline.hash_key", "PIPELINE_HASH_KEY")
	viper.BindEnv("pipeline.run_id", "PIPELINE_RUN_ID")

	viper.BindEnv("cloudapi.url", "CLOUD_API_URL")
	viper.BindEnv("cloudapi.api_key", "CLOUD_API_KEY")

	viper.BindEnv("tracing.otlp.endpoint", "TRACING_OTLP_ENDPOINT")
	viper.BindEnv("tracing.otlp.insecure", "TRACING_OTLP_INSECURE")
	viper.BindEnv("tracing.enabled", "TRACING_ENABLED")
	viper.BindEnv("tracing.service_name", "TRACING_SERVICE_NAME")
}

func applyDefaults(cfg *Config) {
	if cfg.Pipeline.BatchSize == 0 {
		cfg.Pipeline.BatchSize = 1000
	}
	if cfg.Pipeline.BufferSize == 0 {
		cfg.Pipeline.BufferSize = 2 * cfg.Pipeline.BatchSize
	}
	if cfg.Pipeline.ScrollSize == 0 {
		cfg.Pipeline.ScrollSize = cfg.Pipeline.BatchSize
	}
	if cfg.Pipeline.ScrollKeepAlive == "" {
		cfg.Pipeline.ScrollKeepAlive = "1m"
	}
	if cfg.Pipeline.Separator == "" {
		cfg.Pipeline.Separator = "."
	}
	if cfg.CloudAPI.URL == "" {
		cfg.CloudAPI.URL = "https://api.elastic-cloud.com/api/v1/deployments"
	}
	// Validation accepts any casing; the ledger compares the normalized form.
	cfg.RunLedger.OnError = strings.ToLower(cfg.RunLedger.OnError)
	if cfg.RunLedger.OnError == "" {
		cfg.RunLedger.OnError = "fail"
	}
}

func applyEnvOverrides(cfg *Config) error {
	if brokersEnv := viper.GetString("KAFKA_BROKERS"); brokersEnv != "" {
		brokers := strings.Split(brokersEnv, ",")
		for i := range brokers {
			brokers[i] = strings.TrimSpace(brokers[i])
		}
		if len(brokers) > 0 && brokers[0] != "" {
			cfg.Kafka.Brokers = brokers
		}
	}

	if otlpEndpoint := viper.GetString("TRACING_OTLP_ENDPOINT"); otlpEndpoint != "" {
		cfg.Tracing.OTLP.Endpoint = otlpEndpoint
	}

	return nil
}
