// Package config provides centralized configuration management using Viper.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration values for cpmflow.
type Config struct {
	Environment string `mapstructure:"environment" yaml:"environment"`
	APIKey      string `mapstructure:"api_key" yaml:"api_key"`

	APIDomain     string `mapstructure:"api_domain" yaml:"api_domain"`
	APIPath       string `mapstructure:"api_path" yaml:"api_path"`
	BaseURL       string `mapstructure:"base_url" yaml:"base_url,omitempty"`
	Authorization string `mapstructure:"authorization" yaml:"authorization"`
	APIVersion    string `mapstructure:"api_version" yaml:"api_version"`

	LiveReadProduct            bool `mapstructure:"live_read_product" yaml:"live_read_product"`
	ProductNameFromProductStep bool `mapstructure:"product_name_from_product_step" yaml:"product_name_from_product_step"`

	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
	LogFile  string `mapstructure:"log_file" yaml:"log_file,omitempty"`
}

// Default values applied before any file or env var is read.
const (
	DefaultAPIDomain     = "api.service.nhs.uk"
	DefaultAPIPath       = "connecting-party-manager"
	DefaultAuthorization = "letmein"
	DefaultAPIVersion    = "1"
	DefaultLogLevel      = "info"
)

// keys lists every config key; each is bound to CPMFLOW_<KEY>.
var keys = []string{
	"environment",
	"api_key",
	"api_domain",
	"api_path",
	"base_url",
	"authorization",
	"api_version",
	"live_read_product",
	"product_name_from_product_step",
	"log_level",
	"log_file",
}

// Load loads configuration with full precedence:
// CLI flags > ENV vars > project config > XDG global config > defaults
//
// Flags are applied by the caller on top of the returned Config.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigName("cpmflow")

	v.SetDefault("environment", "")
	v.SetDefault("api_key", "")
	v.SetDefault("api_domain", DefaultAPIDomain)
	v.SetDefault("api_path", DefaultAPIPath)
	v.SetDefault("base_url", "")
	v.SetDefault("authorization", DefaultAuthorization)
	v.SetDefault("api_version", DefaultAPIVersion)
	v.SetDefault("live_read_product", false)
	v.SetDefault("product_name_from_product_step", false)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("log_file", "")

	v.SetEnvPrefix("CPMFLOW")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Explicit bindings so bools parse and Unmarshal sees env-only keys.
	for _, key := range keys {
		if err := v.BindEnv(key, EnvName(key)); err != nil {
			return nil, fmt.Errorf("binding %s env: %w", key, err)
		}
	}

	globalPath := GlobalPath()
	if fileExists(globalPath) {
		v.SetConfigFile(globalPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading global config: %w", err)
		}
	}

	projectPath := ProjectPath()
	if fileExists(projectPath) {
		v.SetConfigFile(projectPath)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("merging project config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// EnvName returns the environment variable bound to a config key.
func EnvName(key string) string {
	return "CPMFLOW_" + strings.ToUpper(key)
}

// Validate checks values that would otherwise fail later at request time.
// Environment and API key are not required here; the wizard gates on them.
func (c *Config) Validate() error {
	var errs []error
	if c.BaseURL == "" && c.APIDomain == "" {
		errs = append(errs, errors.New("api_domain is required when base_url is not set"))
	}
	if c.BaseURL != "" {
		u, err := url.Parse(c.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("base_url %q is not an absolute URL", c.BaseURL))
		}
	}
	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("invalid log_level: %s", c.LogLevel))
	}
	return errors.Join(errs...)
}

// Exists returns true if any config file exists (global or project).
func Exists() bool {
	return fileExists(GlobalPath()) || fileExists(ProjectPath())
}

// GlobalPath returns the XDG global config path.
// Returns ~/.config/cpmflow/cpmflow.yml or $XDG_CONFIG_HOME/cpmflow/cpmflow.yml.
func GlobalPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "cpmflow", "cpmflow.yml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "cpmflow", "cpmflow.yml")
}

// ProjectPath returns the project-local config path.
func ProjectPath() string {
	return "cpmflow.yml"
}

// WriteGlobal writes the config to the XDG global location.
func WriteGlobal(cfg *Config) error {
	path := GlobalPath()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	return write(path, cfg)
}

// WriteProject writes the config to the project-local location.
func WriteProject(cfg *Config) error {
	return write(ProjectPath(), cfg)
}

func write(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	// The file can hold an API key.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// fileExists checks if a file exists.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
