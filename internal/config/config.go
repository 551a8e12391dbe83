// Copyright (c) 2026 Lorekeeper Team
// Lorekeeper - community record privacy vault
// This source code is licensed under the MIT license found in the LICENSE file.

// package config loads and persists the Lorekeeper configuration. Values are
// resolved from (lowest to highest precedence) built-in defaults, the
// lorekeeper.yaml config file, LOREKEEPER_* environment variables and
// command-line flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config is the application configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	Language string         `mapstructure:"language" yaml:"language"`
}

// DatabaseConfig selects the storage backend.
type DatabaseConfig struct {
	Type string `mapstructure:"type" yaml:"type"`
	DSN  string `mapstructure:"dsn" yaml:"dsn"`
}

// GetConfigPath returns the full path for the configuration file.
func GetConfigPath(system bool) (string, error) {
	dir, err := configDir(system)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "lorekeeper.yaml"), nil
}

// configDir picks the machine-wide or per-user configuration directory.
func configDir(system bool) (string, error) {
	if system {
		if runtime.GOOS == "windows" {
			return filepath.Join(os.Getenv("ProgramData"), "Lorekeeper"), nil
		}
		return "/etc/lorekeeper", nil
	}

	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("user config directory: %w", err)
	}
	return filepath.Join(base, "lorekeeper"), nil
}

// LoadConfig resolves the configuration for a command. An explicit config
// file path (from --config) takes precedence over the standard search
// locations; flags bound to the command override everything.
func LoadConfig[T any](cmd *cobra.Command, defaults map[string]any, explicitConfigPath *string) (T, error) {
	var c T
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	// LOREKEEPER_DATABASE_TYPE style environment overrides.
	v.SetEnvPrefix("lorekeeper")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AllowEmptyEnv(true)
	v.AutomaticEnv()

	v.SetConfigName("lorekeeper")
	v.SetConfigType("yaml")
	if explicitConfigPath != nil {
		v.SetConfigFile(*explicitConfigPath)
	}
	if userConfigPath, err := GetConfigPath(false); err == nil {
		v.AddConfigPath(filepath.Dir(userConfigPath))
	}
	if systemConfigPath, err := GetConfigPath(true); err == nil {
		v.AddConfigPath(filepath.Dir(systemConfigPath))
	}
	v.AddConfigPath(".") // Look for lorekeeper.yaml in current dir

	if err := v.ReadInConfig(); err != nil {
		// Running without a config file is fine; anything else is not.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return c, err
		}
	}

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return c, err
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}
	return c, nil
}

// WriteConfigFile persists the configuration as YAML at the standard path.
func WriteConfigFile[T any](c *T, system bool) error {
	path, err := GetConfigPath(system)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	// 0600: the config may carry DSN credentials.
	return os.WriteFile(path, data, 0600)
}
