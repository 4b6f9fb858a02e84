// Copyright (c) 2026 Gitident Team
// Gitident - Git identity manager
// This source code is licensed under the MIT license found in the LICENSE file.

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"

	cfg "github.com/toeirei/gitident/internal/config"
)

// isolate points the user config dir at a temp dir and runs from another
// temp dir so no stray gitident.yaml is picked up.
func isolate(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmp)
	t.Setenv("HOME", tmp)
	wd, _ := os.Getwd()
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return tmp
}

func TestLoadConfig_Defaults(t *testing.T) {
	isolate(t)
	c, err := cfg.LoadConfig[cfg.Config](&cobra.Command{}, cfg.Defaults(), nil)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if c.Database.Type != "sqlite" || c.SSH.Probe != "exec" || c.Language != "en" {
		t.Errorf("unexpected defaults: %+v", c)
	}
	if c.ExecTimeout() != 20*time.Second {
		t.Errorf("ExecTimeout = %s", c.ExecTimeout())
	}
}

func TestLoadConfig_ReadsExplicitFile(t *testing.T) {
	isolate(t)
	file := filepath.Join(t.TempDir(), "cfg.yaml")
	yaml := "database:\n  type: postgres\n  dsn: postgresql://user@/db\nssh:\n  probe: native\nexec:\n  timeout: 5s\nlanguage: de\n"
	if err := os.WriteFile(file, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	c, err := cfg.LoadConfig[cfg.Config](&cobra.Command{}, cfg.Defaults(), &file)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if c.Database.Type != "postgres" || c.SSH.Probe != "native" || c.Language != "de" {
		t.Errorf("file values not applied: %+v", c)
	}
	if c.SSH.ConfigPath != "~/.ssh/config" {
		t.Errorf("defaults lost for keys absent from file: %q", c.SSH.ConfigPath)
	}
	if c.ExecTimeout() != 5*time.Second {
		t.Errorf("ExecTimeout = %s", c.ExecTimeout())
	}
}

func TestLoadConfig_EnvAndFlags(t *testing.T) {
	isolate(t)
	t.Setenv("GITIDENT_DATABASE_DSN", "/env/registry.db")
	t.Setenv("GITIDENT_LOG_LEVEL", "debug")

	cmd := &cobra.Command{}
	cmd.Flags().String("log-level", "", "")
	if err := cmd.Flags().Set("log-level", "warn"); err != nil {
		t.Fatal(err)
	}

	c, err := cfg.LoadConfig[cfg.Config](cmd, cfg.Defaults(), nil)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if c.Database.Dsn != "/env/registry.db" {
		t.Errorf("env not applied: dsn=%q", c.Database.Dsn)
	}
	if c.Log.Level != "warn" {
		t.Errorf("flag should beat env: level=%q", c.Log.Level)
	}
}

func TestWriteConfigFile_RoundTrip(t *testing.T) {
	isolate(t)
	if cfg.Exists() && os.Getenv("CI") == "" {
		t.Skip("system config present")
	}

	c := cfg.Config{}
	c.Database.Type = "sqlite"
	c.Database.Dsn = "/tmp/x.db"
	c.SSH.Probe = "native"
	c.Language = "de"

	path, err := cfg.WriteConfigFile(&c, false)
	if err != nil {
		t.Fatalf("WriteConfigFile: %v", err)
	}
	fi, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat %s: %v", path, err)
	}
	if fi.Mode().Perm() != 0o600 {
		t.Errorf("mode = %v", fi.Mode().Perm())
	}

	got, err := cfg.LoadConfig[cfg.Config](&cobra.Command{}, cfg.Defaults(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if got.SSH.Probe != "native" || got.Database.Dsn != "/tmp/x.db" || got.Language != "de" {
		t.Errorf("round trip = %+v", got)
	}
}
