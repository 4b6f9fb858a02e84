// Copyright (c) 2026 Gitident Team
// Gitident - Git identity manager
// This source code is licensed under the MIT license found in the LICENSE file.

package validate

import (
	"context"
	"errors"
	"testing"

	"github.com/toeirei/gitident/internal/errs"
	"github.com/toeirei/gitident/internal/model"
	"github.com/toeirei/gitident/internal/runner"
	"github.com/toeirei/gitident/internal/testutil"
)

type fakeProber struct {
	targets []string
	err     error
}

func (f *fakeProber) Probe(_ context.Context, target string) error {
	f.targets = append(f.targets, target)
	return f.err
}

func configured() model.Project {
	return model.Project{
		Path:         "/repo",
		IdentityName: "alice",
		RemoteURL:    "git@github-alice-work:acme/widget.git",
		RemoteName:   "origin",
		Configured:   true,
	}
}

func TestValidate_NotSynchronized(t *testing.T) {
	tests := map[string]func(p *model.Project){
		"not configured":   func(p *model.Project) { p.Configured = false },
		"no remote url":    func(p *model.Project) { p.RemoteURL = "" },
		"no remote name":   func(p *model.Project) { p.RemoteName = "" },
		"no identity":      func(p *model.Project) { p.IdentityName = "" },
		"foreign identity": func(p *model.Project) { p.IdentityName = "bob" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			p := configured()
			mutate(&p)
			fp := &fakeProber{}
			err := (&Validator{Prober: fp}).Validate(context.Background(), p)
			if !errors.Is(err, errs.ErrConfigNotSynchronized) {
				t.Fatalf("expected ErrConfigNotSynchronized, got %v", err)
			}
			if len(fp.targets) != 0 {
				t.Errorf("prober called for invalid project")
			}
		})
	}
}

func TestValidate_ProbesAliasTarget(t *testing.T) {
	fp := &fakeProber{}
	if err := (&Validator{Prober: fp}).Validate(context.Background(), configured()); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(fp.targets) != 1 || fp.targets[0] != "git@github-alice-work" {
		t.Fatalf("targets = %v", fp.targets)
	}

	p := configured()
	p.RemoteURL = "github-alice-work:acme/widget.git"
	fp = &fakeProber{}
	_ = (&Validator{Prober: fp}).Validate(context.Background(), p)
	if fp.targets[0] != "git@github-alice-work" {
		t.Errorf("default user not applied: %v", fp.targets)
	}
}

func TestValidate_AliasMatchesIdentityType(t *testing.T) {
	reg := testutil.NewMemStore()
	if err := reg.CreateIdentity(&model.Identity{Name: "alice", Email: "a@x", AccountType: model.AccountPersonal}); err != nil {
		t.Fatal(err)
	}
	fp := &fakeProber{}
	v := &Validator{Prober: fp, Identities: reg}
	if err := v.Validate(context.Background(), configured()); !errors.Is(err, errs.ErrConfigNotSynchronized) {
		t.Fatalf("work alias accepted for personal identity: %v", err)
	}
	if len(fp.targets) != 0 {
		t.Errorf("prober called for mismatched alias")
	}

	p := configured()
	p.RemoteURL = "git@github-alice-personal:acme/widget.git"
	if err := v.Validate(context.Background(), p); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	p.IdentityName = "bob"
	p.RemoteURL = "git@github-bob-personal:acme/widget.git"
	if err := v.Validate(context.Background(), p); !errors.Is(err, errs.ErrConfigNotSynchronized) {
		t.Fatalf("unregistered identity: %v", err)
	}
}

func TestValidate_ProbeFailure(t *testing.T) {
	fp := &fakeProber{err: Classify("git@github-alice-work: Permission denied (publickey).")}
	err := (&Validator{Prober: fp}).Validate(context.Background(), configured())
	if !errors.Is(err, errs.ErrSSHConnectionFailed) {
		t.Fatalf("expected ErrSSHConnectionFailed, got %v", err)
	}
}

func TestValidate_RemoteDrift(t *testing.T) {
	m := runner.NewMockRunner()
	m.OnAnyCommand().Return("", nil)
	m.OnCommand("git", "remote", "get-url", "origin").Return("git@github.com:acme/widget.git", nil)
	fp := &fakeProber{}
	err := (&Validator{Prober: fp, Runner: m}).Validate(context.Background(), configured())
	if !errors.Is(err, errs.ErrConfigNotSynchronized) {
		t.Fatalf("expected ErrConfigNotSynchronized, got %v", err)
	}

	m.OnCommand("git", "remote", "get-url", "origin").Return("git@github-alice-work:acme/widget.git", nil)
	if err := (&Validator{Prober: fp, Runner: m}).Validate(context.Background(), configured()); err != nil {
		t.Fatalf("matching remote rejected: %v", err)
	}
}

func TestClassify(t *testing.T) {
	okOutputs := []string{
		"Hi alice! You've successfully authenticated, but GitHub does not provide shell access.",
		"Welcome to GitLab, @alice!",
	}
	for _, out := range okOutputs {
		if err := Classify(out); err != nil {
			t.Errorf("Classify(%q) = %v", out, err)
		}
	}
	badOutputs := []string{
		"git@github.com: Permission denied (publickey).",
		"ssh: Could not resolve hostname github-nobody-personal: Name or service not known",
		"ssh: connect to host github.com port 22: Connection refused",
		"",
		"something else",
	}
	for _, out := range badOutputs {
		if err := Classify(out); !errors.Is(err, errs.ErrSSHConnectionFailed) {
			t.Errorf("Classify(%q) = %v", out, err)
		}
	}
}

func TestExecProber(t *testing.T) {
	m := runner.NewMockRunner()
	m.OnCommand("ssh").Return("Hi alice! You've successfully authenticated, but GitHub does not provide shell access.", &runner.CommandError{Command: "ssh", ExitCode: 1})
	p := NewExecProber(m)
	if err := p.Probe(context.Background(), "git@github-alice-work"); err != nil {
		t.Fatalf("Probe: %v", err)
	}
	call := m.Calls[0]
	if call.Args[0] != "-T" || call.Args[len(call.Args)-1] != "git@github-alice-work" {
		t.Errorf("unexpected ssh args %v", call.Args)
	}

	m.OnCommand("ssh").Return("git@github-alice-work: Permission denied (publickey).", &runner.CommandError{Command: "ssh", ExitCode: 255})
	if err := p.Probe(context.Background(), "git@github-alice-work"); !errors.Is(err, errs.ErrSSHConnectionFailed) {
		t.Fatalf("expected ErrSSHConnectionFailed, got %v", err)
	}
}

func TestValidate_WithRealRepository(t *testing.T) {
	dir := testutil.SetupTestRepo(t)
	testutil.Git(t, dir, "remote", "add", "origin", "git@github-alice-work:acme/widget.git")
	p := configured()
	p.Path = dir
	fp := &fakeProber{}
	if err := (&Validator{Prober: fp, Runner: runner.NewExecRunner()}).Validate(context.Background(), p); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}
