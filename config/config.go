package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Environments
const (
	EnvironmentProduction = "production"
	EnvironmentBeta       = "beta"
	EnvironmentLoopback   = "loopback"
)

// EnvPrefix prefixes environment variable overrides, e.g. JNETCCE_JNET_USER_ID
const EnvPrefix = "JNETCCE"

// Load loads the configuration from file and environment. Without an explicit
// path a missing config file is not an error.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set default values
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".jnetcce"))
		}
		v.AddConfigPath("/etc/jnetcce/")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	cfg.JNET.Environment = NormalizeEnvironment(cfg.JNET.Environment)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values. Every key has a default so
// AutomaticEnv can override it during Unmarshal.
func setDefaults(v *viper.Viper) {
	// JNET defaults
	v.SetDefault("jnet.user_id", "")
	v.SetDefault("jnet.environment", EnvironmentBeta)
	v.SetDefault("jnet.endpoint", "")
	v.SetDefault("jnet.client_certificate", "")
	v.SetDefault("jnet.client_key", "")
	v.SetDefault("jnet.server_certificate", "")
	v.SetDefault("jnet.insecure_skip_verify", false)
	v.SetDefault("jnet.timeout", "60s")
	v.SetDefault("jnet.requests_per_second", 0)

	// Queue defaults
	v.SetDefault("queue.record_limit", 500)
	v.SetDefault("queue.grace_period", "5s")
	v.SetDefault("queue.poll_interval", "10s")
	v.SetDefault("queue.fetch_timeout", "100s")
	v.SetDefault("queue.tracking_ids", "date")

	// Archive defaults
	v.SetDefault("archive.enabled", false)
	v.SetDefault("archive.path", defaultArchivePath())

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)
}

func defaultArchivePath() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".jnetcce", "archive.db")
	}
	return "jnetcce.db"
}

// NormalizeEnvironment maps environment aliases such as jnet or test to their canonical name.
func NormalizeEnvironment(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "jnet", "prod", "production":
		return EnvironmentProduction
	case "beta", "test":
		return EnvironmentBeta
	case "loopback":
		return EnvironmentLoopback
	default:
		return env
	}
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	switch cfg.JNET.Environment {
	case EnvironmentProduction, EnvironmentBeta, EnvironmentLoopback:
	default:
		return fmt.Errorf("invalid jnet.environment: %s (must be 'production', 'beta' or 'loopback')", cfg.JNET.Environment)
	}

	if !cfg.JNET.IsLoopback() {
		if cfg.JNET.UserID == "" {
			return fmt.Errorf("jnet.user_id is required")
		}
		if (cfg.JNET.ClientCertificate == "") != (cfg.JNET.ClientKey == "") {
			return fmt.Errorf("jnet.client_certificate and jnet.client_key must be set together")
		}
	}

	if cfg.JNET.RequestsPerSecond < 0 {
		return fmt.Errorf("jnet.requests_per_second must not be negative")
	}

	if cfg.Queue.RecordLimit <= 0 {
		return fmt.Errorf("queue.record_limit must be positive")
	}
	if cfg.Queue.PollInterval <= 0 {
		return fmt.Errorf("queue.poll_interval must be positive")
	}
	if cfg.Queue.GracePeriod < 0 {
		return fmt.Errorf("queue.grace_period must not be negative")
	}
	if cfg.Queue.FetchTimeout <= 0 {
		return fmt.Errorf("queue.fetch_timeout must be positive")
	}

	validTrackingIDs := map[string]bool{
		"date": true,
		"uuid": true,
	}
	if !validTrackingIDs[cfg.Queue.TrackingIDs] {
		return fmt.Errorf("invalid queue.tracking_ids: %s (must be 'date' or 'uuid')", cfg.Queue.TrackingIDs)
	}

	if cfg.Archive.Enabled && cfg.Archive.Path == "" {
		return fmt.Errorf("archive.path is required when the archive is enabled")
	}

	for name, expression := range cfg.Filter {
		if strings.TrimSpace(expression) == "" {
			return fmt.Errorf("filter %q has an empty expression", name)
		}
	}

	// Validate logging level
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	// Validate logging format
	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	return nil
}
