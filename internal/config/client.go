package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

const clientEnvPrefix = "FOCUSFLOW"

// ClientConfig configures focusctl. Values come from defaults, then the YAML
// file, then FOCUSFLOW_* environment variables.
type ClientConfig struct {
	ServerURL      string        `mapstructure:"server_url" yaml:"server_url"`
	DBPath         string        `mapstructure:"db_path" yaml:"db_path"`
	SyncInterval   time.Duration `mapstructure:"sync_interval" yaml:"sync_interval"`
	FetchLimit     int           `mapstructure:"fetch_limit" yaml:"fetch_limit"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
}

func ClientDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".focusflow"
	}
	return filepath.Join(home, ".focusflow")
}

func DefaultClientConfigPath() string {
	return filepath.Join(ClientDir(), "config.yaml")
}

// LoadClient reads the client configuration. A missing file at path is not
// an error; an empty path means DefaultClientConfigPath.
func LoadClient(path string) (ClientConfig, error) {
	v := viper.New()
	v.SetDefault("server_url", "http://localhost:8080")
	v.SetDefault("db_path", filepath.Join(ClientDir(), "focusflow.db"))
	v.SetDefault("sync_interval", 5*time.Minute)
	v.SetDefault("fetch_limit", 100)
	v.SetDefault("request_timeout", 10*time.Second)

	v.SetEnvPrefix(clientEnvPrefix)
	v.AutomaticEnv()

	if path == "" {
		path = DefaultClientConfigPath()
	}
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return ClientConfig{}, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return ClientConfig{}, fmt.Errorf("stat config %s: %w", path, err)
	}

	var cfg ClientConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return ClientConfig{}, fmt.Errorf("decode config: %w", err)
	}
	if cfg.FetchLimit <= 0 {
		cfg.FetchLimit = 100
	}
	return cfg, nil
}
