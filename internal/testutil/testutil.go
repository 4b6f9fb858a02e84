// Copyright (c) 2026 Gitident Team
// Gitident - Git identity manager
// This source code is licensed under the MIT license found in the LICENSE file.

// Package testutil holds test doubles shared across packages.
package testutil

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/toeirei/gitident/internal/errs"
	"github.com/toeirei/gitident/internal/model"
)

// MemStore is an in-memory identity and project registry.
type MemStore struct {
	mu         sync.Mutex
	identities map[string]model.Identity
	projects   map[int]model.Project
	nextID     int
	// Fail, when set, is returned by every mutating call.
	Fail error
}

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{identities: map[string]model.Identity{}, projects: map[int]model.Project{}, nextID: 1}
}

func (m *MemStore) ListIdentities() ([]model.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Identity, 0, len(m.identities))
	for _, id := range m.identities {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemStore) GetIdentity(name string) (*model.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.identities[name]
	if !ok {
		return nil, fmt.Errorf("identity %q: %w", name, errs.ErrNotFound)
	}
	return &id, nil
}

func (m *MemStore) CreateIdentity(id *model.Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return m.Fail
	}
	if _, ok := m.identities[id.Name]; ok {
		return fmt.Errorf("identity %q: %w", id.Name, errs.ErrDuplicate)
	}
	now := time.Now().UTC()
	id.CreatedAt, id.UpdatedAt = now, now
	m.identities[id.Name] = *id
	return nil
}

func (m *MemStore) UpdateIdentity(id *model.Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return m.Fail
	}
	if _, ok := m.identities[id.Name]; !ok {
		return fmt.Errorf("identity %q: %w", id.Name, errs.ErrNotFound)
	}
	id.UpdatedAt = time.Now().UTC()
	m.identities[id.Name] = *id
	return nil
}

func (m *MemStore) DeleteIdentity(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.identities[name]; !ok {
		return fmt.Errorf("identity %q: %w", name, errs.ErrNotFound)
	}
	delete(m.identities, name)
	return nil
}

func (m *MemStore) ListProjects() ([]model.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Project, 0, len(m.projects))
	for _, p := range m.projects {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemStore) GetProject(path string) (*model.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.projects {
		if p.Path == path {
			return &p, nil
		}
	}
	return nil, fmt.Errorf("project %q: %w", path, errs.ErrNotFound)
}

func (m *MemStore) GetProjectByID(id int) (*model.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[id]
	if !ok {
		return nil, fmt.Errorf("project %d: %w", id, errs.ErrNotFound)
	}
	return &p, nil
}

func (m *MemStore) CreateProject(p *model.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return m.Fail
	}
	for _, q := range m.projects {
		if q.Path == p.Path {
			return fmt.Errorf("project %q: %w", p.Path, errs.ErrDuplicate)
		}
	}
	p.ID = m.nextID
	m.nextID++
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	m.projects[p.ID] = *p
	return nil
}

func (m *MemStore) UpdateProject(p *model.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return m.Fail
	}
	if _, ok := m.projects[p.ID]; !ok {
		return fmt.Errorf("project %d: %w", p.ID, errs.ErrNotFound)
	}
	p.UpdatedAt = time.Now().UTC()
	m.projects[p.ID] = *p
	return nil
}

func (m *MemStore) DeleteProject(id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.projects[id]; !ok {
		return fmt.Errorf("project %d: %w", id, errs.ErrNotFound)
	}
	delete(m.projects, id)
	return nil
}

func (m *MemStore) Close() error { return nil }
