// Copyright (c) 2026 Gitident Team
// Gitident - Git identity manager
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/toeirei/gitident/internal/testutil"
)

type cliEnv struct {
	dir  string
	base []string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	t.Setenv("HOME", dir)
	return &cliEnv{
		dir: dir,
		base: []string{
			"--db", filepath.Join(dir, "registry.db"),
			"--ssh-dir", filepath.Join(dir, ".ssh"),
			"--ssh-config", filepath.Join(dir, ".ssh", "config"),
			"--lang", "en",
			"--log-level", "error",
		},
	}
}

func (e *cliEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetIn(strings.NewReader(""))
	// Later flags win, so per-test args can override the base ones.
	cmd.SetArgs(append(append([]string{}, e.base...), args...))
	err := cmd.Execute()
	return buf.String(), err
}

func TestCLI_IdentityLifecycle(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run(t, "identity", "create", "alice", "--email", "alice@example.com", "--type", "work")
	if err != nil {
		t.Fatalf("create: %v\n%s", err, out)
	}
	if !strings.Contains(out, "github-alice-work") || !strings.Contains(out, "ssh-ed25519 ") {
		t.Errorf("create output:\n%s", out)
	}
	if _, err := os.Stat(filepath.Join(env.dir, ".ssh", "id_alice_work")); err != nil {
		t.Errorf("private key missing: %v", err)
	}

	if out, err := env.run(t, "identity", "create", "alice", "--email", "alice@example.com", "--type", "work"); err == nil {
		t.Errorf("duplicate create succeeded:\n%s", out)
	}

	out, err = env.run(t, "identity", "list")
	if err != nil || !strings.Contains(out, "alice@example.com") {
		t.Fatalf("list: %v\n%s", err, out)
	}

	out, err = env.run(t, "identity", "show", "alice")
	if err != nil || !strings.Contains(out, "SHA256:") {
		t.Fatalf("show: %v\n%s", err, out)
	}

	if out, err := env.run(t, "identity", "forget", "alice"); err != nil {
		t.Fatalf("forget: %v\n%s", err, out)
	}
	out, err = env.run(t, "sync")
	if err != nil || !strings.Contains(out, "Registered 1 new identities") {
		t.Fatalf("sync: %v\n%s", err, out)
	}

	out, err = env.run(t, "hosts")
	if err != nil || !strings.Contains(out, "github-alice-work") {
		t.Fatalf("hosts: %v\n%s", err, out)
	}
}

func TestCLI_ProjectConfigure(t *testing.T) {
	env := newCLIEnv(t)
	repo := testutil.SetupTestRepo(t)
	testutil.Git(t, repo, "remote", "add", "origin", "git@github.com:acme/widget.git")

	if out, err := env.run(t, "identity", "create", "bob", "--email", "bob@example.com"); err != nil {
		t.Fatalf("create: %v\n%s", err, out)
	}
	out, err := env.run(t, "project", "add", repo)
	if err != nil || !strings.Contains(out, "(id 1)") {
		t.Fatalf("add: %v\n%s", err, out)
	}

	out, err = env.run(t, "project", "configure", "1", "--identity", "bob")
	if err != nil {
		t.Fatalf("configure: %v\n%s", err, out)
	}
	if !strings.Contains(out, "git@github-bob-personal:acme/widget.git") {
		t.Errorf("configure output:\n%s", out)
	}
	if got := testutil.Git(t, repo, "remote", "get-url", "origin"); got != "git@github-bob-personal:acme/widget.git" {
		t.Errorf("origin = %s", got)
	}

	out, err = env.run(t, "project", "show", repo)
	if err != nil || !strings.Contains(out, "configured") {
		t.Fatalf("show by path: %v\n%s", err, out)
	}

	out, err = env.run(t, "project", "list")
	if err != nil || !strings.Contains(out, "true") {
		t.Fatalf("list: %v\n%s", err, out)
	}

	if out, err := env.run(t, "project", "configure", "42", "--identity", "bob"); err == nil {
		t.Errorf("configure unknown project succeeded:\n%s", out)
	}
}

func TestCLI_BackupRestore(t *testing.T) {
	env := newCLIEnv(t)
	if out, err := env.run(t, "identity", "create", "carol", "--email", "carol@example.com"); err != nil {
		t.Fatalf("create: %v\n%s", err, out)
	}
	file := filepath.Join(env.dir, "backup.json")
	out, err := env.run(t, "backup", file)
	if err != nil || !strings.Contains(out, "1 identities") {
		t.Fatalf("backup: %v\n%s", err, out)
	}
	if _, err := os.Stat(file + ".zst"); err != nil {
		t.Fatalf("backup file: %v", err)
	}
	if out, err := env.run(t, "identity", "forget", "carol"); err != nil {
		t.Fatalf("forget: %v\n%s", err, out)
	}
	out, err = env.run(t, "restore", file+".zst")
	if err != nil || !strings.Contains(out, "Restored 1 identities") {
		t.Fatalf("restore: %v\n%s", err, out)
	}
	out, err = env.run(t, "identity", "list")
	if err != nil || !strings.Contains(out, "carol") {
		t.Fatalf("list after restore: %v\n%s", err, out)
	}
}

func TestCLI_Version(t *testing.T) {
	env := newCLIEnv(t)
	out, err := env.run(t, "version")
	if err != nil || strings.TrimSpace(out) == "" {
		t.Fatalf("version: %v %q", err, out)
	}
}

func TestCLI_GermanOutput(t *testing.T) {
	env := newCLIEnv(t)
	out, err := env.run(t, "identity", "list", "--lang", "de")
	if err != nil || !strings.Contains(out, "Keine Identitäten") {
		t.Fatalf("list de: %v\n%s", err, out)
	}
}
