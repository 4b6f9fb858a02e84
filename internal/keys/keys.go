// Copyright (c) 2026 Gitident Team
// Gitident - Git identity manager
// This source code is licensed under the MIT license found in the LICENSE file.

// Package keys manages identity keypairs on disk.
//
// Keys live in a single directory (usually ~/.ssh) as id_{name}_{type} with a
// sibling .pub file. The public key comment carries the identity email, which
// is how identities are recovered when the registry is rebuilt from disk.
package keys // import "github.com/toeirei/gitident/internal/keys"

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/toeirei/gitident/internal/errs"
	"github.com/toeirei/gitident/internal/logging"
	"github.com/toeirei/gitident/internal/model"
	"github.com/toeirei/gitident/internal/sshkey"
)

var validName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// Manager creates and reads identity keypairs in Dir.
type Manager struct {
	Dir string
}

// NewManager returns a Manager for dir. An empty dir means ~/.ssh.
func NewManager(dir string) (*Manager, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		dir = filepath.Join(home, ".ssh")
	}
	return &Manager{Dir: ExpandPath(dir)}, nil
}

// KeyPath returns the private key path for an identity.
func (m *Manager) KeyPath(name string, accountType model.AccountType) string {
	return filepath.Join(m.Dir, fmt.Sprintf("id_%s_%s", name, accountType))
}

// ValidateName rejects identity names that cannot be used in a filename or alias.
func ValidateName(name string) error {
	if !validName.MatchString(name) {
		return errs.E("validate name", errs.ErrInvalidInput, fmt.Errorf("identity name %q must match %s", name, validName))
	}
	return nil
}

// Generate creates an unencrypted ed25519 keypair for the identity and
// returns the private key path.
func (m *Manager) Generate(name, email string, accountType model.AccountType, overwrite bool) (string, error) {
	return m.GenerateWithPassphrase(name, email, accountType, overwrite, "")
}

// GenerateWithPassphrase is Generate with an encrypted private key.
// An existing key is an ErrIdentityExists unless overwrite is set, in which
// case the old pair is removed first.
func (m *Manager) GenerateWithPassphrase(name, email string, accountType model.AccountType, overwrite bool, passphrase string) (string, error) {
	const op = "generate key"
	if err := ValidateName(name); err != nil {
		return "", err
	}
	if accountType == "" {
		accountType = model.AccountPersonal
	}
	path := m.KeyPath(name, accountType)

	if _, err := os.Stat(path); err == nil {
		if !overwrite {
			return "", errs.E(op, errs.ErrIdentityExists, fmt.Errorf("%s already exists", path))
		}
		logging.Infof("overwriting existing key %s", path)
		for _, p := range []string{path, path + ".pub"} {
			if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return "", fmt.Errorf("%s: remove %s: %w", op, p, err)
			}
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%s: stat %s: %w", op, path, err)
	}

	if err := os.MkdirAll(m.Dir, 0o700); err != nil {
		return "", fmt.Errorf("%s: create key directory: %w", op, err)
	}

	pub, priv, err := sshkey.GenerateEd25519(email, passphrase)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if err := os.WriteFile(path, priv, 0o600); err != nil {
		return "", fmt.Errorf("%s: write private key: %w", op, err)
	}
	if err := os.WriteFile(path+".pub", pub, 0o644); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("%s: write public key: %w", op, err)
	}
	logging.Debugf("generated ed25519 key %s for %s", path, name)
	return path, nil
}

// ReadPublicKey reads the .pub sibling of privateKeyPath and returns its
// content together with the email taken from the key comment.
func ReadPublicKey(privateKeyPath string) (content, email string, err error) {
	pubPath := ExpandPath(privateKeyPath) + ".pub"
	data, err := os.ReadFile(pubPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", "", errs.E("read public key", errs.ErrKeyNotFound, err)
		}
		return "", "", fmt.Errorf("read public key %s: %w", pubPath, err)
	}
	content = strings.TrimSpace(string(data))
	return content, sshkey.EmailFromComment(content), nil
}

// ExpandPath replaces a leading "~" with the user's home directory.
func ExpandPath(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") && !strings.HasPrefix(p, `~\`) {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[1:])
}
