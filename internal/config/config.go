// Package config loads console configuration from file and environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds everything the console needs to reach the backend.
type Config struct {
	APIBaseURL     string        `mapstructure:"api_base_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	OperatorID     string        `mapstructure:"operator_id"`
	ForwarderID    string        `mapstructure:"forwarder_id"`
	DataDir        string        `mapstructure:"data_dir"`
}

// Load reads configuration from $STEVEDORE_CONFIG if set, otherwise from
// ~/.stevedore/config.yaml. A missing file is not an error; defaults and
// STEVEDORE_* environment variables still apply.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	v.SetDefault("api_base_url", "http://localhost:8080")
	v.SetDefault("request_timeout", 15*time.Second)
	v.SetDefault("data_dir", defaultDataDir())

	v.SetEnvPrefix("STEVEDORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path := os.Getenv("STEVEDORE_CONFIG"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else {
		v.AddConfigPath(defaultDataDir())
		v.SetConfigName("config")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !os.IsNotExist(err) {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if cfg.APIBaseURL == "" {
		return nil, fmt.Errorf("api_base_url must not be empty")
	}
	return &cfg, nil
}

// AuditLogPath returns the path of the session audit log under the data dir.
func (c *Config) AuditLogPath() string {
	return filepath.Join(c.DataDir, "audit.log")
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".stevedore"
	}
	return filepath.Join(home, ".stevedore")
}
