// Copyright (c) 2026 Gitident Team
// Gitident - Git identity manager
// This source code is licensed under the MIT license found in the LICENSE file.

package sshconfig

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/toeirei/gitident/internal/alias"
	"github.com/toeirei/gitident/internal/errs"
	"github.com/toeirei/gitident/internal/keys"
	"github.com/toeirei/gitident/internal/logging"
	"github.com/toeirei/gitident/internal/model"
)

// Alias block defaults written for new identities.
const (
	DefaultHostName = "github.com"
	DefaultUser     = "git"
)

// IdentityRegistry is the part of the identity registry a sync pass needs.
// GetIdentity must return an error matching errs.ErrNotFound for unknown names.
type IdentityRegistry interface {
	GetIdentity(name string) (*model.Identity, error)
	CreateIdentity(id *model.Identity) error
}

// Store owns one SSH config file. All reads and writes through a Store are
// serialized; other processes editing the file concurrently are not guarded.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore returns a Store for path. An empty path means ~/.ssh/config.
func NewStore(path string) (*Store, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		path = filepath.Join(home, ".ssh", "config")
	}
	return &Store{path: keys.ExpandPath(path)}, nil
}

// Path returns the config file location.
func (s *Store) Path() string {
	return s.path
}

// Load parses the config file. A missing file yields an empty File.
func (s *Store) Load() (*File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() (*File, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &File{}, nil
		}
		return nil, fmt.Errorf("read ssh config %s: %w", s.path, err)
	}
	return Parse(bytes.NewReader(data))
}

// save writes f via a temp file in the same directory and renames it over
// the config so readers never observe a partial file.
func (s *Store) save(f *File) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".config-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(f.Bytes()); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace ssh config: %w", err)
	}
	return nil
}

// UpsertHostEntry points the alias of (name, accountType) at identityFile.
// An existing block keeps every other line; a new block gets the GitHub
// defaults and IdentitiesOnly.
func (s *Store) UpsertHostEntry(name string, accountType model.AccountType, identityFile string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.load()
	if err != nil {
		return err
	}
	host := alias.Encode(name, accountType)
	if b := f.Find(host); b != nil {
		b.SetIdentityFile(identityFile)
		logging.Debugf("updated IdentityFile of Host %s in %s", host, s.path)
	} else {
		f.AppendHost(host, [][2]string{
			{"HostName", DefaultHostName},
			{"User", DefaultUser},
			{"IdentityFile", identityFile},
			{"IdentitiesOnly", "yes"},
		})
		logging.Debugf("added Host %s to %s", host, s.path)
	}
	return s.save(f)
}

// Entries lists the alias entries of the config without touching the registry.
func (s *Store) Entries() ([]model.HostAliasEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := s.load()
	if err != nil {
		return nil, err
	}
	return scan(f, nil)
}

// Sync walks the config once and registers every identity that has a Host
// block, a readable public key with an email comment, and no registry record
// yet. Per-entry failures to read keys or register identities are logged and
// skipped; the pass is idempotent.
func (s *Store) Sync(reg IdentityRegistry) ([]model.HostAliasEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := s.load()
	if err != nil {
		return nil, err
	}
	return scan(f, reg)
}

func scan(f *File, reg IdentityRegistry) ([]model.HostAliasEntry, error) {
	var out []model.HostAliasEntry
	for _, b := range f.Blocks {
		if b.Keyword != "host" || b.Host == "" || strings.ContainsAny(b.Host, "*?!") {
			continue
		}
		// only the first IdentityFile of a block is considered
		idFile := b.IdentityFile()
		if idFile == "" {
			continue
		}
		name, typ := alias.Decode(b.Host)
		entry := model.HostAliasEntry{
			Host:         b.Host,
			Name:         name,
			AccountType:  typ,
			IdentityFile: keys.ExpandPath(idFile),
		}
		content, email, err := keys.ReadPublicKey(entry.IdentityFile)
		if err != nil {
			logging.Warnf("host %s: %v", b.Host, err)
		} else {
			entry.PublicKey = content
			entry.Email = email
		}

		if reg != nil && entry.Email != "" {
			if err := register(reg, entry); err != nil {
				logging.Warnf("host %s: %v", b.Host, err)
			}
		}
		out = append(out, entry)
	}
	return out, nil
}

func register(reg IdentityRegistry, e model.HostAliasEntry) error {
	_, err := reg.GetIdentity(e.Name)
	if err == nil {
		return nil
	}
	if !errors.Is(err, errs.ErrNotFound) {
		return fmt.Errorf("lookup identity %s: %w", e.Name, err)
	}
	id := &model.Identity{
		Name:           e.Name,
		Email:          e.Email,
		AccountType:    e.AccountType,
		PrivateKeyPath: e.IdentityFile,
		PublicKey:      e.PublicKey,
	}
	if err := reg.CreateIdentity(id); err != nil {
		return fmt.Errorf("register identity %s: %w", e.Name, err)
	}
	logging.Infof("registered identity %s from %s", e.Name, e.Host)
	return nil
}

// Lookup returns the Host block for an alias, or nil when absent.
func (s *Store) Lookup(host string) (*Block, error) {
	f, err := s.Load()
	if err != nil {
		return nil, err
	}
	return f.Find(host), nil
}
