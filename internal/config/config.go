// Copyright (c) 2026 Gitident Team
// Gitident - Git identity manager
// This source code is licensed under the MIT license found in the LICENSE file.

// Package config loads gitident settings from defaults, gitident.yaml,
// GITIDENT_* environment variables and command-line flags, in increasing
// order of precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the full settings tree.
type Config struct {
	Database struct {
		Type string `mapstructure:"type" yaml:"type"`
		Dsn  string `mapstructure:"dsn" yaml:"dsn"`
	} `mapstructure:"database" yaml:"database"`
	SSH struct {
		Dir        string `mapstructure:"dir" yaml:"dir"`
		ConfigPath string `mapstructure:"config_path" yaml:"config_path"`
		Probe      string `mapstructure:"probe" yaml:"probe"`
		KnownHosts string `mapstructure:"known_hosts" yaml:"known_hosts"`
	} `mapstructure:"ssh" yaml:"ssh"`
	Exec struct {
		Timeout string `mapstructure:"timeout" yaml:"timeout"`
	} `mapstructure:"exec" yaml:"exec"`
	Log struct {
		Level string `mapstructure:"level" yaml:"level"`
	} `mapstructure:"log" yaml:"log"`
	Server struct {
		Addr string `mapstructure:"addr" yaml:"addr"`
	} `mapstructure:"server" yaml:"server"`
	Language string `mapstructure:"language" yaml:"language"`
}

// ExecTimeout parses Exec.Timeout, falling back to 20s when unset or invalid.
func (c Config) ExecTimeout() time.Duration {
	d, err := time.ParseDuration(c.Exec.Timeout)
	if err != nil || d <= 0 {
		return 20 * time.Second
	}
	return d
}

// FlagKeys maps command-line flag names to config keys.
var FlagKeys = map[string]string{
	"db-type":    "database.type",
	"db":         "database.dsn",
	"ssh-dir":    "ssh.dir",
	"ssh-config": "ssh.config_path",
	"probe":      "ssh.probe",
	"timeout":    "exec.timeout",
	"log-level":  "log.level",
	"addr":       "server.addr",
	"lang":       "language",
}

// Defaults returns the built-in settings.
func Defaults() map[string]any {
	dsn := "gitident.db"
	if dir, err := os.UserConfigDir(); err == nil {
		dsn = filepath.Join(dir, "gitident", "gitident.db")
	}
	return map[string]any{
		"database.type":   "sqlite",
		"database.dsn":    dsn,
		"ssh.dir":         "~/.ssh",
		"ssh.config_path": "~/.ssh/config",
		"ssh.probe":       "exec",
		"ssh.known_hosts": "~/.ssh/known_hosts",
		"exec.timeout":    "20s",
		"log.level":       "info",
		"server.addr":     "127.0.0.1:8765",
		"language":        "en",
	}
}

// GetConfigPath returns the full path for the configuration file.
func GetConfigPath(system bool) (string, error) {
	var configDir string
	if system {
		switch runtime.GOOS {
		case "windows":
			configDir = filepath.Join(os.Getenv("ProgramData"), "Gitident")
		default:
			configDir = "/etc/gitident"
		}
	} else {
		dir, err := os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("could not get user config directory: %w", err)
		}
		configDir = filepath.Join(dir, "gitident")
	}
	return filepath.Join(configDir, "gitident.yaml"), nil
}

// LoadConfig resolves T from defaults, the first gitident.yaml found (or
// configFile when non-nil), the environment and cmd's flags.
func LoadConfig[T any](cmd *cobra.Command, defaults map[string]any, configFile *string) (T, error) {
	var c T
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName("gitident")
	v.SetConfigType("yaml")
	if configFile != nil && *configFile != "" {
		v.SetConfigFile(*configFile)
	}
	if p, err := GetConfigPath(false); err == nil {
		v.AddConfigPath(filepath.Dir(p))
	}
	if p, err := GetConfigPath(true); err == nil {
		v.AddConfigPath(filepath.Dir(p))
	}
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine; a broken one is not.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return c, err
		}
	}

	v.SetEnvPrefix("gitident")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cmd != nil {
		var bindErr error
		cmd.Flags().VisitAll(func(f *pflag.Flag) {
			if key, ok := FlagKeys[f.Name]; ok && bindErr == nil {
				bindErr = v.BindPFlag(key, f)
			}
		})
		if bindErr != nil {
			return c, bindErr
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}
	return c, nil
}

// Exists reports whether a user or system config file is present.
func Exists() bool {
	for _, system := range []bool{false, true} {
		if p, err := GetConfigPath(system); err == nil {
			if _, err := os.Stat(p); err == nil {
				return true
			}
		}
	}
	return false
}

// WriteConfigFile writes c to the user (or system) config path with mode 0600.
func WriteConfigFile[T any](c *T, system bool) (string, error) {
	path, err := GetConfigPath(system)
	if err != nil {
		return "", err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("could not create config directory %s: %w", dir, err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", err
	}
	return path, nil
}
