// Copyright (c) 2026 Gitident Team
// Gitident - Git identity manager
// This source code is licensed under the MIT license found in the LICENSE file.

// Package remote rewires a repository so git traffic uses an identity's key.
//
// A configuration pass moves a project through model.ConfigState in order.
// A failing step leaves the project at the last completed state; steps
// already applied to the repository are not rolled back.
package remote // import "github.com/toeirei/gitident/internal/remote"

import (
	"context"
	"fmt"

	"github.com/toeirei/gitident/internal/alias"
	"github.com/toeirei/gitident/internal/errs"
	"github.com/toeirei/gitident/internal/gitrepo"
	"github.com/toeirei/gitident/internal/logging"
	"github.com/toeirei/gitident/internal/model"
	"github.com/toeirei/gitident/internal/runner"
)

// DefaultRemoteName is used when a project has no remote name.
const DefaultRemoteName = "origin"

// ProjectRegistry persists project records after a pass.
type ProjectRegistry interface {
	UpdateProject(p *model.Project) error
}

// Configurer applies identities to repositories.
type Configurer struct {
	Runner   runner.CommandRunner
	Projects ProjectRegistry // optional
}

// NewConfigurer returns a Configurer using r for git and persisting to projects.
func NewConfigurer(r runner.CommandRunner, projects ProjectRegistry) *Configurer {
	if r == nil {
		r = runner.NewExecRunner()
	}
	return &Configurer{Runner: r, Projects: projects}
}

// pass carries the state of one configuration run.
type pass struct {
	project *model.Project
	id      model.Identity
	state   model.ConfigState
	repo    *gitrepo.Repo
	name    string
	newURL  string
}

func (p *pass) advance(to model.ConfigState) {
	logging.Debugf("project %s: %s -> %s", p.project.Path, p.state, to)
	p.state = to
}

// Configure binds id to project. On success the project is Configured with
// the rewritten RemoteURL. The returned state is always the last completed
// one and is also stored in project.State.
func (c *Configurer) Configure(ctx context.Context, project *model.Project, id model.Identity) (model.ConfigState, error) {
	p := &pass{project: project, id: id, state: model.StateUnvalidated}
	err := c.run(ctx, p)

	project.State = p.state
	if err == nil {
		project.IdentityName = id.Name
		project.RemoteName = p.name
		project.RemoteURL = p.newURL
		project.Configured = true
		logging.Infof("configured %s with identity %s (%s)", project.Path, id.Name, p.newURL)
	} else {
		logging.Warnf("configure %s stopped at %s: %v", project.Path, p.state, err)
	}

	if c.Projects != nil && project.ID != 0 {
		if perr := c.Projects.UpdateProject(project); perr != nil {
			if err != nil {
				return p.state, err
			}
			return p.state, fmt.Errorf("persist project %s: %w", project.Path, perr)
		}
	}
	return p.state, err
}

func (c *Configurer) run(ctx context.Context, p *pass) error {
	// unvalidated -> repo validated
	repo, err := gitrepo.Open(ctx, p.project.Path, gitrepo.WithRunner(c.Runner))
	if err != nil {
		return err
	}
	if !p.id.Complete() {
		return errs.E("configure "+p.project.Path, errs.ErrIncompleteIdentity, fmt.Errorf("identity %q has no email", p.id.Name))
	}
	p.repo = repo
	p.advance(model.StateRepoValidated)

	// repo validated -> remote resolved
	raw, err := c.resolve(ctx, p)
	if err != nil {
		return err
	}
	u, err := ParseURL(raw)
	if err != nil {
		return err
	}
	repoPath, err := u.RepoPath()
	if err != nil {
		return err
	}
	p.newURL = AliasURL(alias.Encode(p.id.Name, p.id.AccountType), repoPath)
	p.advance(model.StateRemoteResolved)

	// remote resolved -> remote replaced
	if err := repo.RemoveRemote(ctx, p.name); err != nil {
		return err
	}
	if err := repo.AddRemote(ctx, p.name, p.newURL); err != nil {
		return err
	}
	p.advance(model.StateRemoteReplaced)

	// remote replaced -> identity applied
	if err := repo.SetLocalConfig(ctx, "user.name", p.id.Name); err != nil {
		return err
	}
	if err := repo.SetLocalConfig(ctx, "user.email", p.id.Email); err != nil {
		return err
	}
	p.advance(model.StateIdentityApplied)

	p.advance(model.StateConfigured)
	return nil
}

// resolve picks the remote to rewrite: the repository's own remote of the
// target name first, then the URL stored on the project.
func (c *Configurer) resolve(ctx context.Context, p *pass) (string, error) {
	p.name = p.project.RemoteName
	if p.name == "" {
		p.name = DefaultRemoteName
	}
	url, ok, err := p.repo.RemoteURL(ctx, p.name)
	if err != nil {
		return "", errs.E("resolve remote", errs.ErrRemoteResolutionFailed, err)
	}
	if ok {
		return url, nil
	}
	if p.project.RemoteURL != "" {
		logging.Debugf("project %s has no remote %q, using stored url", p.project.Path, p.name)
		return p.project.RemoteURL, nil
	}
	return "", errs.E("resolve remote", errs.ErrRemoteResolutionFailed, fmt.Errorf("repository has no remote %q and the project stores no url", p.name))
}
