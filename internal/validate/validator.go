// Copyright (c) 2026 Gitident Team
// Gitident - Git identity manager
// This source code is licensed under the MIT license found in the LICENSE file.

// Package validate checks that a configured project still reaches its Git
// host with the identity it was bound to.
package validate // import "github.com/toeirei/gitident/internal/validate"

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/toeirei/gitident/internal/alias"
	"github.com/toeirei/gitident/internal/errs"
	"github.com/toeirei/gitident/internal/gitrepo"
	"github.com/toeirei/gitident/internal/logging"
	"github.com/toeirei/gitident/internal/model"
	"github.com/toeirei/gitident/internal/runner"
)

// DefaultUser is assumed when a remote host carries no user@ part.
const DefaultUser = "git"

// Prober authenticates against target ("user@host") and reports failure as
// an error of kind errs.ErrSSHConnectionFailed.
type Prober interface {
	Probe(ctx context.Context, target string) error
}

// IdentityLookup resolves the identity a project is bound to.
type IdentityLookup interface {
	GetIdentity(name string) (*model.Identity, error)
}

// Validator checks configured projects.
type Validator struct {
	Prober Prober
	// Runner, when set, is used to confirm the repository remote still
	// matches the stored RemoteURL before probing.
	Runner runner.CommandRunner
	// Identities, when set, makes the remote host match the full alias of
	// the bound identity instead of only its name.
	Identities IdentityLookup
}

// Validate returns nil when project is fully configured, consistent with its
// identity reference and the probe authenticates.
func (v *Validator) Validate(ctx context.Context, project model.Project) error {
	op := "validate " + project.Path
	if !project.Configured {
		return errs.E(op, errs.ErrConfigNotSynchronized, fmt.Errorf("project is not configured"))
	}
	var missing []string
	if project.RemoteURL == "" {
		missing = append(missing, "remote url")
	}
	if project.RemoteName == "" {
		missing = append(missing, "remote name")
	}
	if project.IdentityName == "" {
		missing = append(missing, "identity")
	}
	if len(missing) > 0 {
		return errs.E(op, errs.ErrConfigNotSynchronized, fmt.Errorf("project has no %s", strings.Join(missing, ", ")))
	}

	target, _, _ := strings.Cut(project.RemoteURL, ":")
	host := target
	if u, h, ok := strings.Cut(target, "@"); ok {
		host = h
		if u == "" {
			target = DefaultUser + "@" + h
		}
	} else {
		target = DefaultUser + "@" + target
	}
	if name, _ := alias.Decode(host); name != project.IdentityName {
		return errs.E(op, errs.ErrConfigNotSynchronized, fmt.Errorf("remote host %s does not belong to identity %s", host, project.IdentityName))
	}
	if v.Identities != nil {
		id, err := v.Identities.GetIdentity(project.IdentityName)
		if errors.Is(err, errs.ErrNotFound) {
			return errs.E(op, errs.ErrConfigNotSynchronized, fmt.Errorf("identity %s is not registered", project.IdentityName))
		}
		if err != nil {
			return err
		}
		if want := alias.Encode(id.Name, id.AccountType); host != want {
			return errs.E(op, errs.ErrConfigNotSynchronized, fmt.Errorf("remote host %s, identity %s expects %s", host, id.Name, want))
		}
	}

	if v.Runner != nil {
		if err := v.checkRemote(ctx, project); err != nil {
			return err
		}
	}

	logging.Debugf("probing %s for project %s", target, project.Path)
	if err := v.Prober.Probe(ctx, target); err != nil {
		return err
	}
	return nil
}

func (v *Validator) checkRemote(ctx context.Context, project model.Project) error {
	op := "validate " + project.Path
	repo, err := gitrepo.Open(ctx, project.Path, gitrepo.WithRunner(v.Runner))
	if err != nil {
		return err
	}
	url, ok, err := repo.RemoteURL(ctx, project.RemoteName)
	if err != nil {
		return errs.E(op, errs.ErrConfigNotSynchronized, err)
	}
	if !ok || url != project.RemoteURL {
		return errs.E(op, errs.ErrConfigNotSynchronized, fmt.Errorf("remote %s is %q, expected %q", project.RemoteName, url, project.RemoteURL))
	}
	return nil
}

// Classify maps probe output to a result. Hosts answer a shell request on
// an authenticated key with a greeting; the exit status carries no signal.
func Classify(output string) error {
	lo := strings.ToLower(output)
	for _, ok := range []string{"successfully authenticated", "does not provide shell access", "welcome to gitlab"} {
		if strings.Contains(lo, ok) {
			return nil
		}
	}
	reason := "unexpected response"
	switch {
	case strings.Contains(lo, "permission denied"):
		reason = "permission denied"
	case strings.Contains(lo, "could not resolve hostname"):
		reason = "host unreachable"
	case strings.Contains(lo, "connection refused"), strings.Contains(lo, "connection timed out"), strings.Contains(lo, "operation timed out"):
		reason = "host unreachable"
	case strings.Contains(lo, "host key verification failed"):
		reason = "host key verification failed"
	case strings.TrimSpace(output) == "":
		reason = "no response"
	}
	return errs.E("ssh probe", errs.ErrSSHConnectionFailed, fmt.Errorf("%s", reason)).WithOutput(strings.TrimSpace(output))
}
