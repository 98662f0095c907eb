package config

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Config carries the server settings. Values come from setkv.yaml in the
// working directory, SETKV_* environment variables, then defaults.
type Config struct {
	Port                int    `mapstructure:"port"`
	SetMaxIntsetEntries int    `mapstructure:"set-max-intset-entries"`
	LogLevel            string `mapstructure:"log-level"`
	Databases           int    `mapstructure:"databases"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetDefault("port", 6380)
	v.SetDefault("set-max-intset-entries", 512)
	v.SetDefault("log-level", "info")
	v.SetDefault("databases", 1)

	v.SetConfigName("setkv")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetEnvPrefix("SETKV")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, errors.Wrap(err, "read config file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}
	if cfg.SetMaxIntsetEntries < 1 {
		return nil, errors.Errorf("set-max-intset-entries must be positive, got %d", cfg.SetMaxIntsetEntries)
	}
	return &cfg, nil
}
