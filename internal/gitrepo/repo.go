// Copyright (c) 2026 Gitident Team
// Gitident - Git identity manager
// This source code is licensed under the MIT license found in the LICENSE file.

// Package gitrepo runs the git commands gitident needs against a working tree.
package gitrepo // import "github.com/toeirei/gitident/internal/gitrepo"

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/toeirei/gitident/internal/errs"
	"github.com/toeirei/gitident/internal/keys"
	"github.com/toeirei/gitident/internal/runner"
)

// Repo is a validated git working tree.
type Repo struct {
	path   string
	runner runner.CommandRunner
}

// Option configures Open.
type Option func(*Repo)

// WithRunner sets the command runner used for git invocations.
func WithRunner(r runner.CommandRunner) Option {
	return func(g *Repo) {
		g.runner = r
	}
}

// Open resolves path and checks that git recognizes it as a repository.
func Open(ctx context.Context, path string, opts ...Option) (*Repo, error) {
	abs, err := filepath.Abs(keys.ExpandPath(path))
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}
	g := &Repo{path: abs, runner: runner.NewExecRunner()}
	for _, opt := range opts {
		opt(g)
	}
	if out, err := g.git(ctx, "rev-parse", "--git-dir"); err != nil {
		return nil, errs.E("open "+abs, errs.ErrInvalidRepository, err).WithOutput(out)
	}
	return g, nil
}

// Path returns the absolute working tree path.
func (g *Repo) Path() string {
	return g.path
}

// RemoteURL returns the URL of the named remote. ok is false when the
// remote does not exist.
func (g *Repo) RemoteURL(ctx context.Context, name string) (url string, ok bool, err error) {
	out, err := g.git(ctx, "remote", "get-url", name)
	if err != nil {
		if isNoSuchRemote(out) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get remote %s: %w", name, err)
	}
	return strings.TrimSpace(out), out != "", nil
}

// Remotes lists configured remote names.
func (g *Repo) Remotes(ctx context.Context) ([]string, error) {
	out, err := g.git(ctx, "remote")
	if err != nil {
		return nil, fmt.Errorf("list remotes: %w", err)
	}
	return strings.Fields(out), nil
}

// RemoveRemote deletes the named remote. A missing remote is not an error.
func (g *Repo) RemoveRemote(ctx context.Context, name string) error {
	out, err := g.git(ctx, "remote", "remove", name)
	if err != nil && !isNoSuchRemote(out) {
		return errs.E("remove remote "+name, errs.ErrRemoteUpdateFailed, err).WithOutput(out)
	}
	return nil
}

// AddRemote creates a remote.
func (g *Repo) AddRemote(ctx context.Context, name, url string) error {
	if out, err := g.git(ctx, "remote", "add", name, url); err != nil {
		return errs.E("add remote "+name, errs.ErrRemoteUpdateFailed, err).WithOutput(out)
	}
	return nil
}

// SetLocalConfig writes key=value to the repository-local git config.
func (g *Repo) SetLocalConfig(ctx context.Context, key, value string) error {
	if out, err := g.git(ctx, "config", "--local", key, value); err != nil {
		return errs.E("set "+key, errs.ErrUserConfigFailed, err).WithOutput(out)
	}
	return nil
}

// LocalConfig reads key from the repository-local git config; unset keys
// return "".
func (g *Repo) LocalConfig(ctx context.Context, key string) string {
	out, err := g.git(ctx, "config", "--local", "--get", key)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}

func (g *Repo) git(ctx context.Context, args ...string) (string, error) {
	return g.runner.Run(ctx, g.path, "git", args...)
}

func isNoSuchRemote(out string) bool {
	lo := strings.ToLower(out)
	return strings.Contains(lo, "no such remote")
}
