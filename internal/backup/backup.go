// Copyright (c) 2026 Gitident Team
// Gitident - Git identity manager
// This source code is licensed under the MIT license found in the LICENSE file.

// Package backup exports and restores the identity/project registry as
// Zstandard-compressed JSON.
package backup

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/toeirei/gitident/internal/errs"
	"github.com/toeirei/gitident/internal/model"
)

// Source lists the registry contents.
type Source interface {
	ListIdentities() ([]model.Identity, error)
	ListProjects() ([]model.Project, error)
}

// Sink receives restored records.
type Sink interface {
	GetIdentity(name string) (*model.Identity, error)
	CreateIdentity(id *model.Identity) error
	UpdateIdentity(id *model.Identity) error
	GetProject(path string) (*model.Project, error)
	CreateProject(p *model.Project) error
	UpdateProject(p *model.Project) error
}

// Export collects everything from src.
func Export(src Source) (*model.BackupData, error) {
	ids, err := src.ListIdentities()
	if err != nil {
		return nil, fmt.Errorf("list identities: %w", err)
	}
	projects, err := src.ListProjects()
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return &model.BackupData{
		SchemaVersion: model.BackupSchemaVersion,
		CreatedAt:     time.Now().UTC(),
		Identities:    ids,
		Projects:      projects,
	}, nil
}

// Write encodes data as indented JSON through a zstd writer.
func Write(w io.Writer, data *model.BackupData) error {
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("create zstd writer: %w", err)
	}
	enc := json.NewEncoder(zw)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		_ = zw.Close()
		return fmt.Errorf("encode backup: %w", err)
	}
	return zw.Close()
}

// Read decodes a backup produced by Write.
func Read(r io.Reader) (*model.BackupData, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("create zstd reader: %w", err)
	}
	defer zr.Close()

	var data model.BackupData
	if err := json.NewDecoder(zr).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode backup: %w", err)
	}
	if data.SchemaVersion > model.BackupSchemaVersion {
		return nil, fmt.Errorf("backup schema version %d is newer than supported %d", data.SchemaVersion, model.BackupSchemaVersion)
	}
	return &data, nil
}

// WriteFile writes a backup to path with mode 0600.
func WriteFile(path string, data *model.BackupData) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("could not create file: %w", err)
	}
	if err := Write(f, data); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// ReadFile reads a backup from path.
func ReadFile(path string) (*model.BackupData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Read(f)
}

// Restore merges data into dst. Identities are matched by name and projects
// by path; matches are overwritten, the rest created. Project IDs are
// reassigned by the registry.
func Restore(dst Sink, data *model.BackupData) (identities, projects int, err error) {
	for i := range data.Identities {
		id := data.Identities[i]
		_, gerr := dst.GetIdentity(id.Name)
		switch {
		case gerr == nil:
			err = dst.UpdateIdentity(&id)
		case errors.Is(gerr, errs.ErrNotFound):
			err = dst.CreateIdentity(&id)
		default:
			err = gerr
		}
		if err != nil {
			return identities, projects, fmt.Errorf("restore identity %s: %w", id.Name, err)
		}
		identities++
	}
	for i := range data.Projects {
		p := data.Projects[i]
		existing, gerr := dst.GetProject(p.Path)
		switch {
		case gerr == nil:
			p.ID = existing.ID
			err = dst.UpdateProject(&p)
		case errors.Is(gerr, errs.ErrNotFound):
			p.ID = 0
			err = dst.CreateProject(&p)
		default:
			err = gerr
		}
		if err != nil {
			return identities, projects, fmt.Errorf("restore project %s: %w", p.Path, err)
		}
		projects++
	}
	return identities, projects, nil
}
