// Package config loads the pageflow server configuration from defaults, an
// optional YAML file and PAGEFLOW_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override (PAGEFLOW_SERVER_ADDR, ...).
const EnvPrefix = "PAGEFLOW"

// Config holds all configuration for the pageflow server.
type Config struct {
	Server struct {
		Addr            string        `mapstructure:"addr" validate:"required"`
		ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
	} `mapstructure:"server"`

	Log struct {
		Level  string `mapstructure:"level" validate:"oneof=debug info warn error DEBUG INFO WARN ERROR"`
		Format string `mapstructure:"format" validate:"oneof=text json"`
	} `mapstructure:"log"`

	Cache struct {
		Size int `mapstructure:"size" validate:"gte=0"`
	} `mapstructure:"cache"`

	Metrics struct {
		Enabled bool   `mapstructure:"enabled"`
		Path    string `mapstructure:"path" validate:"omitempty,startswith=/"`
	} `mapstructure:"metrics"`

	Redis struct {
		Enabled  bool   `mapstructure:"enabled"`
		Addr     string `mapstructure:"addr" validate:"required_if=Enabled true"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db" validate:"gte=0"`
		Stream   string `mapstructure:"stream"`
	} `mapstructure:"redis"`

	// Manifest is the path of the route manifest. Empty serves the built-in demo site.
	Manifest string `mapstructure:"manifest"`
}

var validate = validator.New()

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("cache.size", 256)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.stream", "pageflow:errors")
	v.SetDefault("manifest", "")
}

// Load reads the configuration. An empty path looks for pageflow.yaml in the
// working directory and ./config; a missing file is not an error then.
// An explicit path must exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("pageflow")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration values.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
