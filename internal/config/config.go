// Package config provides configuration management for mdserve using Viper
// for flexible loading from files, environment variables, and command-line
// flags.
//
// Configuration sources in precedence order: command-line flags, MDSERVE_
// prefixed environment variables, and a .mdserve.yml file in the working
// directory.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Cache     CacheConfig     `yaml:"cache" mapstructure:"cache"`
	Documents DocumentsConfig `yaml:"documents" mapstructure:"documents"`
	LogLevel  string          `yaml:"log_level" mapstructure:"log_level"`

	// TargetPath is the positional CLI argument, never read from file.
	TargetPath string `yaml:"-" mapstructure:"-"`
}

type ServerConfig struct {
	Port int    `yaml:"port" mapstructure:"port"`
	Host string `yaml:"host" mapstructure:"host"`
}

type CacheConfig struct {
	// BudgetBytes bounds the archive content cache; least-recently-used
	// entries are evicted once decoded content exceeds it.
	BudgetBytes int64 `yaml:"budget_bytes" mapstructure:"budget_bytes"`
}

type DocumentsConfig struct {
	// Pattern filters which file names count as documents.
	Pattern string `yaml:"pattern" mapstructure:"pattern"`
	// IgnoreFile is the name of the per-root exclusion file.
	IgnoreFile string `yaml:"ignore_file" mapstructure:"ignore_file"`
	// PrecacheNames are base names warmed into the archive cache at open.
	PrecacheNames []string `yaml:"precache_names" mapstructure:"precache_names"`
}

// SetDefaults registers every configuration default with viper. Called once
// from the root command before any config file or env var is read.
func SetDefaults() {
	viper.SetDefault("server.port", 8888)
	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("cache.budget_bytes", int64(8*1024*1024))
	viper.SetDefault("documents.pattern", "*.md")
	viper.SetDefault("documents.ignore_file", ".mdignore")
	viper.SetDefault("documents.precache_names", []string{"readme.md", "index.md", "home.md"})
	viper.SetDefault("log_level", "info")
}

// Load unmarshals the merged viper state into a validated Config.
func Load() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Workaround for viper slice handling: explicit values win over the
	// zero slice the unmarshal can leave behind.
	if viper.IsSet("documents.precache_names") && len(config.Documents.PrecacheNames) == 0 {
		config.Documents.PrecacheNames = viper.GetStringSlice("documents.precache_names")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Default returns the built-in configuration without consulting viper.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: 8888, Host: "localhost"},
		Cache:  CacheConfig{BudgetBytes: 8 * 1024 * 1024},
		Documents: DocumentsConfig{
			Pattern:       "*.md",
			IgnoreFile:    ".mdignore",
			PrecacheNames: []string{"readme.md", "index.md", "home.md"},
		},
		LogLevel: "info",
	}
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d is out of range", c.Server.Port)
	}
	if c.Cache.BudgetBytes < 0 {
		return fmt.Errorf("cache.budget_bytes must not be negative")
	}
	if c.Documents.Pattern == "" {
		return fmt.Errorf("documents.pattern must not be empty")
	}
	return nil
}
