// Copyright (c) 2026 Gitident Team
// Gitident - Git identity manager
// This source code is licensed under the MIT license found in the LICENSE file.

package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/toeirei/gitident/internal/alias"
	"github.com/toeirei/gitident/internal/errs"
	"github.com/toeirei/gitident/internal/keys"
	"github.com/toeirei/gitident/internal/logging"
	"github.com/toeirei/gitident/internal/model"
)

// CreateIdentityRequest describes a new identity.
type CreateIdentityRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	AccountType string `json:"account_type"`
	Overwrite   bool   `json:"overwrite"`
	Passphrase  string `json:"passphrase,omitempty"`
}

// UpdateIdentityRequest changes registry fields only; key files and the SSH
// config are left alone. Nil fields are unchanged. AccountType may only
// repeat the current type.
type UpdateIdentityRequest struct {
	Email       *string `json:"email,omitempty"`
	AccountType *string `json:"account_type,omitempty"`
}

// CreateIdentity generates the keypair, records the host alias and stores
// the identity. An existing record or key file without Overwrite fails with
// errs.ErrIdentityExists.
func (s *Service) CreateIdentity(req CreateIdentityRequest) (*model.Identity, error) {
	const op = "create identity"
	name := strings.TrimSpace(req.Name)
	if err := keys.ValidateName(name); err != nil {
		return nil, err
	}
	accountType, err := model.ParseAccountType(req.AccountType)
	if err != nil {
		return nil, errs.E(op, errs.ErrInvalidInput, err)
	}

	existing, err := s.Registry.GetIdentity(name)
	switch {
	case err == nil:
		if !req.Overwrite {
			return nil, errs.E(op, errs.ErrIdentityExists, fmt.Errorf("identity %q is already registered", name))
		}
	case errors.Is(err, errs.ErrNotFound):
		existing = nil
	default:
		return nil, err
	}

	privPath, err := s.Keys.GenerateWithPassphrase(name, req.Email, accountType, req.Overwrite, req.Passphrase)
	if err != nil {
		return nil, err
	}
	content, _, err := keys.ReadPublicKey(privPath)
	if err != nil {
		return nil, err
	}
	if err := s.SSHConfig.UpsertHostEntry(name, accountType, privPath); err != nil {
		return nil, fmt.Errorf("record host alias: %w", err)
	}

	id := &model.Identity{
		Name:           name,
		Email:          req.Email,
		AccountType:    accountType,
		PrivateKeyPath: privPath,
		PublicKey:      content,
	}
	if existing != nil {
		id.CreatedAt = existing.CreatedAt
		err = s.Registry.UpdateIdentity(id)
	} else {
		err = s.Registry.CreateIdentity(id)
	}
	if err != nil {
		return nil, fmt.Errorf("store identity %s: %w", name, err)
	}
	if existing != nil && existing.AccountType != accountType {
		n, err := s.unbindProjects(name)
		if err != nil {
			return nil, err
		}
		if n > 0 {
			logging.Warnf("identity %s changed alias; %d project(s) need configure again", name, n)
		}
	}
	logging.Infof("identity %s created (%s, key %s)", name, alias.Encode(name, accountType), privPath)
	return id, nil
}

// unbindProjects marks every configured project of identity name as
// unconfigured. Their remotes still point at the previous alias.
func (s *Service) unbindProjects(name string) (int, error) {
	ps, err := s.Registry.ListProjects()
	if err != nil {
		return 0, err
	}
	n := 0
	for i := range ps {
		p := &ps[i]
		if p.IdentityName != name || !p.Configured {
			continue
		}
		p.Configured = false
		p.State = model.StateUnvalidated
		if err := s.Registry.UpdateProject(p); err != nil {
			return n, fmt.Errorf("unbind project %s: %w", p.Path, err)
		}
		n++
	}
	return n, nil
}

// ListIdentities returns every registered identity ordered by name.
func (s *Service) ListIdentities() ([]model.Identity, error) {
	return s.Registry.ListIdentities()
}

// GetIdentity returns one identity, refreshing PublicKey from disk when the
// key file is present.
func (s *Service) GetIdentity(name string) (*model.Identity, error) {
	id, err := s.Registry.GetIdentity(name)
	if err != nil {
		return nil, err
	}
	if id.PrivateKeyPath != "" {
		if content, _, err := keys.ReadPublicKey(id.PrivateKeyPath); err == nil {
			id.PublicKey = content
		}
	}
	return id, nil
}

// UpdateIdentity applies req to the stored record.
func (s *Service) UpdateIdentity(name string, req UpdateIdentityRequest) (*model.Identity, error) {
	id, err := s.Registry.GetIdentity(name)
	if err != nil {
		return nil, err
	}
	if req.Email != nil {
		id.Email = strings.TrimSpace(*req.Email)
	}
	if req.AccountType != nil {
		t, err := model.ParseAccountType(*req.AccountType)
		if err != nil {
			return nil, errs.E("update identity", errs.ErrInvalidInput, err)
		}
		// The type is baked into the key file name and the host alias.
		if t != id.AccountType {
			return nil, errs.E("update identity", errs.ErrInvalidInput,
				fmt.Errorf("account type of %s cannot change from %s to %s; recreate the identity with overwrite", name, id.AccountType, t))
		}
	}
	if err := s.Registry.UpdateIdentity(id); err != nil {
		return nil, err
	}
	return id, nil
}

// ForgetIdentity removes the registry record. Key files and the host alias
// stay in place, so a later sync rediscovers the identity.
func (s *Service) ForgetIdentity(name string) error {
	if err := s.Registry.DeleteIdentity(name); err != nil {
		return err
	}
	logging.Infof("identity %s forgotten", name)
	return nil
}

// SyncResult reports one reconciliation of the SSH config with the registry.
type SyncResult struct {
	Entries []model.HostAliasEntry `json:"entries"`
	Created []string               `json:"created"`
}

// SyncIdentities registers identities discovered in the SSH config.
func (s *Service) SyncIdentities() (*SyncResult, error) {
	before, err := s.Registry.ListIdentities()
	if err != nil {
		return nil, err
	}
	known := make(map[string]bool, len(before))
	for _, id := range before {
		known[id.Name] = true
	}

	entries, err := s.SSHConfig.Sync(s.Registry)
	if err != nil {
		return nil, err
	}

	res := &SyncResult{Entries: entries, Created: []string{}}
	after, err := s.Registry.ListIdentities()
	if err != nil {
		return nil, err
	}
	for _, id := range after {
		if !known[id.Name] {
			res.Created = append(res.Created, id.Name)
		}
	}
	logging.Infof("sync: %d host entries, %d identities created", len(entries), len(res.Created))
	return res, nil
}

// HostEntries lists the alias blocks of the SSH config without touching the registry.
func (s *Service) HostEntries() ([]model.HostAliasEntry, error) {
	return s.SSHConfig.Entries()
}
