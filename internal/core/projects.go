// Copyright (c) 2026 Gitident Team
// Gitident - Git identity manager
// This source code is licensed under the MIT license found in the LICENSE file.

package core

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/toeirei/gitident/internal/errs"
	"github.com/toeirei/gitident/internal/gitrepo"
	"github.com/toeirei/gitident/internal/keys"
	"github.com/toeirei/gitident/internal/logging"
	"github.com/toeirei/gitident/internal/model"
	"github.com/toeirei/gitident/internal/remote"
)

// AddProjectRequest registers a repository.
type AddProjectRequest struct {
	Path       string `json:"path"`
	Name       string `json:"name,omitempty"`
	RemoteName string `json:"remote_name,omitempty"`
}

// UpdateProjectRequest edits a project record. Nil fields are unchanged.
// Changing the identity or remote marks the project unconfigured.
type UpdateProjectRequest struct {
	Name         *string `json:"name,omitempty"`
	IdentityName *string `json:"identity_name,omitempty"`
	RemoteURL    *string `json:"remote_url,omitempty"`
	RemoteName   *string `json:"remote_name,omitempty"`
}

// AddProject registers the git repository at req.Path. The current URL of
// the tracked remote is recorded when present.
func (s *Service) AddProject(ctx context.Context, req AddProjectRequest) (*model.Project, error) {
	const op = "add project"
	if strings.TrimSpace(req.Path) == "" {
		return nil, errs.E(op, errs.ErrInvalidInput, errors.New("path is required"))
	}
	path, err := filepath.Abs(keys.ExpandPath(req.Path))
	if err != nil {
		return nil, errs.E(op, errs.ErrInvalidInput, err)
	}

	repo, err := gitrepo.Open(ctx, path, gitrepo.WithRunner(s.Runner))
	if err != nil {
		return nil, err
	}

	p := &model.Project{
		Path:       path,
		Name:       strings.TrimSpace(req.Name),
		RemoteName: strings.TrimSpace(req.RemoteName),
		State:      model.StateUnvalidated,
	}
	if p.Name == "" {
		p.Name = filepath.Base(path)
	}
	if p.RemoteName == "" {
		p.RemoteName = remote.DefaultRemoteName
	}
	if url, ok, err := repo.RemoteURL(ctx, p.RemoteName); err == nil && ok {
		p.RemoteURL = url
	}

	if err := s.Registry.CreateProject(p); err != nil {
		return nil, err
	}
	logging.Infof("project %d registered at %s", p.ID, p.Path)
	return p, nil
}

// ListProjects returns every registered project ordered by id.
func (s *Service) ListProjects() ([]model.Project, error) {
	return s.Registry.ListProjects()
}

// GetProject returns one project.
func (s *Service) GetProject(id int) (*model.Project, error) {
	return s.Registry.GetProjectByID(id)
}

// UpdateProject applies req to project id.
func (s *Service) UpdateProject(id int, req UpdateProjectRequest) (*model.Project, error) {
	p, err := s.Registry.GetProjectByID(id)
	if err != nil {
		return nil, err
	}
	unbind := false
	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.IdentityName != nil && *req.IdentityName != p.IdentityName {
		name := strings.TrimSpace(*req.IdentityName)
		if name != "" {
			if _, err := s.Registry.GetIdentity(name); err != nil {
				return nil, err
			}
		}
		p.IdentityName = name
		unbind = true
	}
	if req.RemoteURL != nil && *req.RemoteURL != p.RemoteURL {
		p.RemoteURL = strings.TrimSpace(*req.RemoteURL)
		unbind = true
	}
	if req.RemoteName != nil && *req.RemoteName != p.RemoteName {
		p.RemoteName = strings.TrimSpace(*req.RemoteName)
		unbind = true
	}
	if unbind {
		p.Configured = false
		p.State = model.StateUnvalidated
	}
	if err := s.Registry.UpdateProject(p); err != nil {
		return nil, err
	}
	return p, nil
}

// RemoveProject forgets project id. The repository itself is not touched.
func (s *Service) RemoveProject(id int) error {
	return s.Registry.DeleteProject(id)
}

// ScanResult reports a directory scan.
type ScanResult struct {
	Found int             `json:"found"`
	Added []model.Project `json:"added"`
}

// ScanProjects registers every repository below root that is not yet known.
func (s *Service) ScanProjects(ctx context.Context, root string) (*ScanResult, error) {
	root, err := filepath.Abs(keys.ExpandPath(root))
	if err != nil {
		return nil, errs.E("scan projects", errs.ErrInvalidInput, err)
	}
	paths, err := gitrepo.Scan(root)
	if err != nil {
		return nil, err
	}
	res := &ScanResult{Found: len(paths), Added: []model.Project{}}
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if _, err := s.Registry.GetProject(path); err == nil {
			continue
		}
		p, err := s.AddProject(ctx, AddProjectRequest{Path: path})
		if err != nil {
			logging.Warnf("scan: skipping %s: %v", path, err)
			continue
		}
		res.Added = append(res.Added, *p)
	}
	return res, nil
}

// ConfigureProject binds identityName to project id. Passes for the same
// repository path run one at a time. The returned project carries the state
// reached even when err is non-nil.
func (s *Service) ConfigureProject(ctx context.Context, id int, identityName string) (*model.Project, error) {
	p, err := s.Registry.GetProjectByID(id)
	if err != nil {
		return nil, err
	}
	if identityName == "" {
		identityName = p.IdentityName
	}
	if identityName == "" {
		return p, errs.E("configure "+p.Path, errs.ErrInvalidInput, errors.New("no identity given"))
	}
	ident, err := s.Registry.GetIdentity(identityName)
	if err != nil {
		return p, err
	}

	unlock := s.locks.lock(p.Path)
	defer unlock()

	// Re-read under the lock so a concurrent pass is not overwritten.
	if fresh, err := s.Registry.GetProjectByID(id); err == nil {
		p = fresh
	}
	if _, err := s.Configurer.Configure(ctx, p, *ident); err != nil {
		return p, err
	}
	return p, nil
}

// ValidateProject checks project id. A nil error means the project is
// configured consistently and its alias authenticates.
func (s *Service) ValidateProject(ctx context.Context, id int) (*model.Project, error) {
	p, err := s.Registry.GetProjectByID(id)
	if err != nil {
		return nil, err
	}
	if err := s.Validator.Validate(ctx, *p); err != nil {
		return p, err
	}
	return p, nil
}

// ProjectByPath resolves a repository path (absolute or relative) to its record.
func (s *Service) ProjectByPath(path string) (*model.Project, error) {
	abs, err := filepath.Abs(keys.ExpandPath(path))
	if err != nil {
		return nil, errs.E("find project", errs.ErrInvalidInput, err)
	}
	p, err := s.Registry.GetProject(abs)
	if err != nil {
		return nil, fmt.Errorf("no project registered at %s: %w", abs, err)
	}
	return p, nil
}
