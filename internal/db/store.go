// Copyright (c) 2026 Gitident Team
// Gitident - Git identity manager
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/toeirei/gitident/internal/model"
)

// Store is the identity and project registry.
type Store interface {
	// Identity methods
	ListIdentities() ([]model.Identity, error)
	GetIdentity(name string) (*model.Identity, error)
	CreateIdentity(id *model.Identity) error
	UpdateIdentity(id *model.Identity) error
	// DeleteIdentity forgets the record and detaches projects that used it.
	DeleteIdentity(name string) error

	// Project methods
	ListProjects() ([]model.Project, error)
	GetProject(path string) (*model.Project, error)
	GetProjectByID(id int) (*model.Project, error)
	CreateProject(p *model.Project) error
	UpdateProject(p *model.Project) error
	DeleteProject(id int) error

	Close() error
}

// IdentityModel is the Bun mapping of the identities table.
type IdentityModel struct {
	bun.BaseModel  `bun:"table:identities"`
	ID             int       `bun:"id,pk,autoincrement"`
	Name           string    `bun:"name"`
	Email          string    `bun:"email"`
	AccountType    string    `bun:"account_type"`
	PrivateKeyPath string    `bun:"private_key_path"`
	PublicKey      string    `bun:"public_key"`
	CreatedAt      time.Time `bun:"created_at"`
	UpdatedAt      time.Time `bun:"updated_at"`
}

// ProjectModel is the Bun mapping of the projects table.
type ProjectModel struct {
	bun.BaseModel `bun:"table:projects"`
	ID            int       `bun:"id,pk,autoincrement"`
	Path          string    `bun:"path"`
	Name          string    `bun:"name"`
	IdentityName  string    `bun:"identity_name"`
	RemoteURL     string    `bun:"remote_url"`
	RemoteName    string    `bun:"remote_name"`
	Configured    bool      `bun:"configured"`
	State         string    `bun:"state"`
	CreatedAt     time.Time `bun:"created_at"`
	UpdatedAt     time.Time `bun:"updated_at"`
}

func identityToModel(m IdentityModel) model.Identity {
	return model.Identity{
		Name:           m.Name,
		Email:          m.Email,
		AccountType:    model.AccountType(m.AccountType),
		PrivateKeyPath: m.PrivateKeyPath,
		PublicKey:      m.PublicKey,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func identityFromModel(i *model.Identity) IdentityModel {
	typ := i.AccountType
	if typ == "" {
		typ = model.AccountPersonal
	}
	return IdentityModel{
		Name:           i.Name,
		Email:          i.Email,
		AccountType:    string(typ),
		PrivateKeyPath: i.PrivateKeyPath,
		PublicKey:      i.PublicKey,
		CreatedAt:      i.CreatedAt,
		UpdatedAt:      i.UpdatedAt,
	}
}

func projectToModel(m ProjectModel) model.Project {
	return model.Project{
		ID:           m.ID,
		Path:         m.Path,
		Name:         m.Name,
		IdentityName: m.IdentityName,
		RemoteURL:    m.RemoteURL,
		RemoteName:   m.RemoteName,
		Configured:   m.Configured,
		State:        model.ConfigState(m.State),
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func projectFromModel(p *model.Project) ProjectModel {
	state := p.State
	if state == "" {
		state = model.StateUnvalidated
	}
	return ProjectModel{
		ID:           p.ID,
		Path:         p.Path,
		Name:         p.Name,
		IdentityName: p.IdentityName,
		RemoteURL:    p.RemoteURL,
		RemoteName:   p.RemoteName,
		Configured:   p.Configured,
		State:        string(state),
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

// bunStore implements Store for every dialect.
type bunStore struct {
	bun *bun.DB
}

func (s *bunStore) Close() error {
	return s.bun.Close()
}

func (s *bunStore) ListIdentities() ([]model.Identity, error) {
	ctx := context.Background()
	var rows []IdentityModel
	if err := s.bun.NewSelect().Model(&rows).Order("name ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list identities: %w", err)
	}
	out := make([]model.Identity, 0, len(rows))
	for _, r := range rows {
		out = append(out, identityToModel(r))
	}
	return out, nil
}

func (s *bunStore) GetIdentity(name string) (*model.Identity, error) {
	ctx := context.Background()
	var m IdentityModel
	if err := s.bun.NewSelect().Model(&m).Where("name = ?", name).Limit(1).Scan(ctx); err != nil {
		return nil, notFound(err, "identity "+name)
	}
	id := identityToModel(m)
	return &id, nil
}

func (s *bunStore) CreateIdentity(id *model.Identity) error {
	ctx := context.Background()
	now := time.Now().UTC()
	id.CreatedAt, id.UpdatedAt = now, now
	m := identityFromModel(id)
	if _, err := s.bun.NewInsert().Model(&m).Exec(ctx); err != nil {
		return fmt.Errorf("create identity %s: %w", id.Name, MapDBError(err))
	}
	dbLogf("db: created identity %s", id.Name)
	return nil
}

func (s *bunStore) UpdateIdentity(id *model.Identity) error {
	ctx := context.Background()
	id.UpdatedAt = time.Now().UTC()
	m := identityFromModel(id)
	res, err := s.bun.NewUpdate().Model(&m).
		Column("email", "account_type", "private_key_path", "public_key", "updated_at").
		Where("name = ?", id.Name).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update identity %s: %w", id.Name, MapDBError(err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound(errNoRows, "identity "+id.Name)
	}
	return nil
}

func (s *bunStore) DeleteIdentity(name string) error {
	ctx := context.Background()
	tx, err := s.bun.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.NewDelete().Model((*IdentityModel)(nil)).Where("name = ?", name).Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete identity %s: %w", name, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound(errNoRows, "identity "+name)
	}
	// Projects bound to the identity can no longer be considered configured.
	if _, err := tx.NewRaw("UPDATE projects SET identity_name = '', configured = ?, updated_at = ? WHERE identity_name = ?", false, time.Now().UTC(), name).Exec(ctx); err != nil {
		return fmt.Errorf("detach projects from %s: %w", name, err)
	}
	return tx.Commit()
}

func (s *bunStore) ListProjects() ([]model.Project, error) {
	ctx := context.Background()
	var rows []ProjectModel
	if err := s.bun.NewSelect().Model(&rows).Order("id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	out := make([]model.Project, 0, len(rows))
	for _, r := range rows {
		out = append(out, projectToModel(r))
	}
	return out, nil
}

func (s *bunStore) GetProject(path string) (*model.Project, error) {
	ctx := context.Background()
	var m ProjectModel
	if err := s.bun.NewSelect().Model(&m).Where("path = ?", path).Limit(1).Scan(ctx); err != nil {
		return nil, notFound(err, "project "+path)
	}
	p := projectToModel(m)
	return &p, nil
}

func (s *bunStore) GetProjectByID(id int) (*model.Project, error) {
	ctx := context.Background()
	var m ProjectModel
	if err := s.bun.NewSelect().Model(&m).Where("id = ?", id).Limit(1).Scan(ctx); err != nil {
		return nil, notFound(err, fmt.Sprintf("project %d", id))
	}
	p := projectToModel(m)
	return &p, nil
}

func (s *bunStore) CreateProject(p *model.Project) error {
	ctx := context.Background()
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	m := projectFromModel(p)
	m.ID = 0
	if _, err := s.bun.NewInsert().Model(&m).Exec(ctx); err != nil {
		return fmt.Errorf("create project %s: %w", p.Path, MapDBError(err))
	}
	p.ID = m.ID
	p.State = model.ConfigState(m.State)
	dbLogf("db: created project %d (%s)", p.ID, p.Path)
	return nil
}

func (s *bunStore) UpdateProject(p *model.Project) error {
	ctx := context.Background()
	p.UpdatedAt = time.Now().UTC()
	m := projectFromModel(p)
	res, err := s.bun.NewUpdate().Model(&m).
		Column("path", "name", "identity_name", "remote_url", "remote_name", "configured", "state", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update project %d: %w", p.ID, MapDBError(err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound(errNoRows, fmt.Sprintf("project %d", p.ID))
	}
	return nil
}

func (s *bunStore) DeleteProject(id int) error {
	ctx := context.Background()
	res, err := s.bun.NewDelete().Model((*ProjectModel)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete project %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound(errNoRows, fmt.Sprintf("project %d", id))
	}
	return nil
}
