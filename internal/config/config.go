package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration settings
type Config struct {
	// Project is the namespace every table row is scoped to
	Project string `yaml:"project" mapstructure:"project"`

	// Storage configuration
	Storage StorageConfig `yaml:"storage" mapstructure:"storage"`

	// Analysis limits
	Analysis AnalysisConfig `yaml:"analysis" mapstructure:"analysis"`
}

type StorageConfig struct {
	Type        string `yaml:"type" mapstructure:"type"` // "sqlite", "postgres"
	PostgresDSN string `yaml:"postgres_dsn" mapstructure:"postgres_dsn"`
	LocalPath   string `yaml:"local_path" mapstructure:"local_path"`
}

type AnalysisConfig struct {
	MaxCallDepth     int `yaml:"max_call_depth" mapstructure:"max_call_depth"`
	MaxBlastDepth    int `yaml:"max_blast_depth" mapstructure:"max_blast_depth"`
	MaxFiles         int `yaml:"max_files" mapstructure:"max_files"`
	OnDemandMaxFiles int `yaml:"on_demand_max_files" mapstructure:"on_demand_max_files"`
}

// Default returns default configuration
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	return &Config{
		Project: "default",
		Storage: StorageConfig{
			Type:      "sqlite",
			LocalPath: filepath.Join(homeDir, ".memograph", "local.db"),
		},
		Analysis: AnalysisConfig{
			MaxCallDepth:     4,
			MaxBlastDepth:    10,
			MaxFiles:         2000,
			OnDemandMaxFiles: 500,
		},
	}
}

// Load reads configuration from file and environment. A missing file falls
// back to defaults; MEMOGRAPH_* environment variables override either.
func Load(cfgFile string) (*Config, error) {
	// .env is optional
	godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".memograph")
		if homeDir, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(homeDir, ".memograph"))
		}
	}

	v.SetEnvPrefix("MEMOGRAPH")
	v.AutomaticEnv()

	defaults := Default()
	v.SetDefault("project", defaults.Project)
	v.SetDefault("storage.type", defaults.Storage.Type)
	v.SetDefault("storage.local_path", defaults.Storage.LocalPath)
	v.SetDefault("analysis.max_call_depth", defaults.Analysis.MaxCallDepth)
	v.SetDefault("analysis.max_blast_depth", defaults.Analysis.MaxBlastDepth)
	v.SetDefault("analysis.max_files", defaults.Analysis.MaxFiles)
	v.SetDefault("analysis.on_demand_max_files", defaults.Analysis.OnDemandMaxFiles)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	switch c.Storage.Type {
	case "sqlite":
		if c.Storage.LocalPath == "" {
			return fmt.Errorf("storage.local_path required for sqlite")
		}
	case "postgres":
		if c.Storage.PostgresDSN == "" {
			return fmt.Errorf("storage.postgres_dsn required for postgres")
		}
	default:
		return fmt.Errorf("unknown storage type %q", c.Storage.Type)
	}
	return nil
}
