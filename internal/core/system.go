// Copyright (c) 2026 Gitident Team
// Gitident - Git identity manager
// This source code is licensed under the MIT license found in the LICENSE file.

package core

import (
	"context"
	"runtime"
	"strings"

	"github.com/toeirei/gitident/internal/backup"
	"github.com/toeirei/gitident/internal/logging"
	"github.com/toeirei/gitident/internal/runner"
)

// Tool is the result of probing one external program.
type Tool struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
	Version   string `json:"version,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Prerequisites summarizes the host environment.
type Prerequisites struct {
	Platform string `json:"platform"`
	Arch     string `json:"arch"`
	Git      Tool   `json:"git"`
	SSH      Tool   `json:"ssh"`
	// SSHConfig is the path of the managed client config.
	SSHConfig string `json:"ssh_config"`
	KeyDir    string `json:"key_dir"`
}

// OK reports whether every required tool is available.
func (p Prerequisites) OK() bool {
	return p.Git.Available && p.SSH.Available
}

// CheckPrerequisites probes git and ssh.
func (s *Service) CheckPrerequisites(ctx context.Context) Prerequisites {
	return Prerequisites{
		Platform:  runtime.GOOS,
		Arch:      runtime.GOARCH,
		Git:       probeTool(ctx, s.Runner, "git", "--version"),
		SSH:       probeTool(ctx, s.Runner, "ssh", "-V"),
		SSHConfig: s.SSHConfig.Path(),
		KeyDir:    s.Keys.Dir,
	}
}

func probeTool(ctx context.Context, r runner.CommandRunner, name string, args ...string) Tool {
	t := Tool{Name: name}
	out, err := r.Run(ctx, "", name, args...)
	if err != nil {
		t.Error = err.Error()
		logging.Debugf("prerequisite %s unavailable: %v", name, err)
		return t
	}
	t.Available = true
	t.Version = strings.TrimSpace(strings.SplitN(out, "\n", 2)[0])
	return t
}

// Backup writes the registry to path as zstd-compressed JSON.
func (s *Service) Backup(path string) (identities, projects int, err error) {
	data, err := backup.Export(s.Registry)
	if err != nil {
		return 0, 0, err
	}
	if err := backup.WriteFile(path, data); err != nil {
		return 0, 0, err
	}
	logging.Infof("backup written to %s", path)
	return len(data.Identities), len(data.Projects), nil
}

// Restore merges the backup at path into the registry.
func (s *Service) Restore(path string) (identities, projects int, err error) {
	data, err := backup.ReadFile(path)
	if err != nil {
		return 0, 0, err
	}
	return backup.Restore(s.Registry, data)
}
