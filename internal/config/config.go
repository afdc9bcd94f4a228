package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/newthinker/ampsync/internal/core"
	"github.com/spf13/viper"
)

type Config struct {
	Export  ExportConfig  `mapstructure:"export"`
	Local   LocalConfig   `mapstructure:"local"`
	Remote  RemoteConfig  `mapstructure:"remote"`
	Range   RangeConfig   `mapstructure:"range"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// ExportConfig holds the upstream analytics export endpoint settings.
type ExportConfig struct {
	URL          string  `mapstructure:"url"`
	APIKey       string  `mapstructure:"api_key"`
	SecretKey    string  `mapstructure:"secret_key"`
	DelaySeconds float64 `mapstructure:"delay_seconds"`
	MaxAttempts  int     `mapstructure:"max_attempts"`
}

// LocalConfig holds the local partition store settings.
type LocalConfig struct {
	DataDir string `mapstructure:"data_dir"`
}

// RemoteConfig holds durable store settings.
type RemoteConfig struct {
	Type   string   `mapstructure:"type"` // "s3" or "localfs"
	Prefix string   `mapstructure:"prefix"`
	Path   string   `mapstructure:"path"` // For localfs
	S3     S3Config `mapstructure:"s3"`   // For S3
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// RangeConfig controls the default fetch window when no explicit
// start/end is given on the command line.
type RangeConfig struct {
	LookbackHours int `mapstructure:"lookback_hours"`
	LagHours      int `mapstructure:"lag_hours"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Dir string `mapstructure:"dir"`
}

// MetricsConfig holds Pushgateway settings for end-of-run metrics.
type MetricsConfig struct {
	PushURL string `mapstructure:"push_url"`
	Job     string `mapstructure:"job"`
}

// Load reads configuration from file
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Support environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Export: ExportConfig{
			URL:          "https://analytics.eu.amplitude.com/api/2/export",
			DelaySeconds: 3,
			MaxAttempts:  5,
		},
		Local: LocalConfig{
			DataDir: "data",
		},
		Remote: RemoteConfig{
			Type:   "s3",
			Prefix: "python-import/",
			Path:   "s3_dev",
		},
		Range: RangeConfig{
			LookbackHours: 24,
			LagHours:      12,
		},
		Logging: LoggingConfig{
			Dir: "logs",
		},
		Metrics: MetricsConfig{
			Job: "ampsync",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Export.URL == "" {
		return core.WrapError(core.ErrConfigMissing,
			fmt.Errorf("export url is required"))
	}
	if c.Export.MaxAttempts < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("max_attempts must be at least 1, got %d", c.Export.MaxAttempts))
	}
	if c.Export.DelaySeconds < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("delay_seconds cannot be negative, got %f", c.Export.DelaySeconds))
	}
	if c.Range.LookbackHours < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("lookback_hours must be at least 1, got %d", c.Range.LookbackHours))
	}
	if c.Range.LagHours < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("lag_hours cannot be negative, got %d", c.Range.LagHours))
	}

	switch c.Remote.Type {
	case "s3":
		// An empty bucket is allowed: the fetch path treats the remote
		// store as optional and sync reports the missing bucket itself.
	case "localfs":
		if c.Remote.Path == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("path required when remote type is localfs"))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown remote type %q", c.Remote.Type))
	}

	return nil
}
