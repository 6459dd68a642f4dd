package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

type Config struct {
	Database    string `mapstructure:"database"`
	Output      string `mapstructure:"output"`
	BackupDir   string `mapstructure:"backup_dir"`
	KeepBackups bool   `mapstructure:"keep_backups"`
	LogLevel    string `mapstructure:"log_level"`
	LogFormat   string `mapstructure:"log_format"`
}

// Load initializes and loads configuration from file
func Load(cfgFile string) (*Config, error) {
	// Set defaults
	viper.SetDefault("database", "uasset.db")
	viper.SetDefault("output", "extracted")
	viper.SetDefault("backup_dir", "")
	viper.SetDefault("keep_backups", true)
	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_format", "text")

	// Config file handling
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigName("uasset")
		viper.SetConfigType("yaml")
	}

	// Read config file (optional)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateLogLevel(cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("invalid logging configuration: %w", err)
	}
	if err := validateLogFormat(cfg.LogFormat); err != nil {
		return nil, fmt.Errorf("invalid logging configuration: %w", err)
	}

	return &cfg, nil
}

func validateLogLevel(level string) error {
	switch level {
	case "", "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("unknown log level: %s", level)
	}
}

func validateLogFormat(format string) error {
	switch format {
	case "", "text", "json":
		return nil
	default:
		return fmt.Errorf("unknown log format: %s", format)
	}
}
