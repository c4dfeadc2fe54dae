package config

import "time"

// Config represents the complete configuration structure
type Config struct {
	JNET    JNETConfig    `mapstructure:"jnet"`
	Queue   QueueConfig   `mapstructure:"queue"`
	Archive ArchiveConfig `mapstructure:"archive"`
	Filter  FilterConfig  `mapstructure:"filter"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// JNETConfig holds the endpoint and credentials
type JNETConfig struct {
	UserID             string        `mapstructure:"user_id"`
	Environment        string        `mapstructure:"environment"`
	Endpoint           string        `mapstructure:"endpoint"`
	ClientCertificate  string        `mapstructure:"client_certificate"`
	ClientKey          string        `mapstructure:"client_key"`
	ServerCertificate  string        `mapstructure:"server_certificate"`
	InsecureSkipVerify bool          `mapstructure:"insecure_skip_verify"`
	Timeout            time.Duration `mapstructure:"timeout"`
	RequestsPerSecond  float64       `mapstructure:"requests_per_second"`
}

// IsLoopback reports whether requests stay in-process
func (c JNETConfig) IsLoopback() bool {
	return c.Environment == EnvironmentLoopback
}

// QueueConfig controls polling
type QueueConfig struct {
	RecordLimit  int           `mapstructure:"record_limit"`
	GracePeriod  time.Duration `mapstructure:"grace_period"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
	TrackingIDs  string        `mapstructure:"tracking_ids"`
}

// ArchiveConfig controls the SQLite ledger and document archive
type ArchiveConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// FilterConfig maps names to status filter expressions
type FilterConfig map[string]string

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}
