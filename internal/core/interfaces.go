// Copyright (c) 2026 Gitident Team
// Gitident - Git identity manager
// This source code is licensed under the MIT license found in the LICENSE file.

// Package core contains the facades used by the CLI, TUI and HTTP layers.
// Each facade coordinates the key manager, the SSH config store, the remote
// configurer and the validator against one registry.
package core

import (
	"context"

	"github.com/toeirei/gitident/internal/model"
)

// Registry is the persistent identity and project store. db.Store satisfies it.
type Registry interface {
	ListIdentities() ([]model.Identity, error)
	GetIdentity(name string) (*model.Identity, error)
	CreateIdentity(id *model.Identity) error
	UpdateIdentity(id *model.Identity) error
	DeleteIdentity(name string) error

	ListProjects() ([]model.Project, error)
	GetProject(path string) (*model.Project, error)
	GetProjectByID(id int) (*model.Project, error)
	CreateProject(p *model.Project) error
	UpdateProject(p *model.Project) error
	DeleteProject(id int) error

	Close() error
}

// Validator checks a configured project.
type Validator interface {
	Validate(ctx context.Context, project model.Project) error
}
