// Copyright (c) 2026 Gitident Team
// Gitident - Git identity manager
// This source code is licensed under the MIT license found in the LICENSE file.

// package model defines the core data structures shared across gitident.
package model // import "github.com/toeirei/gitident/internal/model"

import (
	"fmt"
	"time"
)

// AccountType distinguishes the role an identity is used for.
type AccountType string

const (
	// AccountPersonal is the default account type.
	AccountPersonal AccountType = "personal"
	// AccountWork marks an identity used for an employer or organization.
	AccountWork AccountType = "work"
)

// ParseAccountType validates s. An empty string yields AccountPersonal.
func ParseAccountType(s string) (AccountType, error) {
	switch AccountType(s) {
	case "", AccountPersonal:
		return AccountPersonal, nil
	case AccountWork:
		return AccountWork, nil
	}
	return "", fmt.Errorf("unknown account type %q (want personal or work)", s)
}

// Identity is a named SSH keypair plus the commit email used with it.
type Identity struct {
	Name           string      `json:"name"`
	Email          string      `json:"email"`
	AccountType    AccountType `json:"account_type"`
	PrivateKeyPath string      `json:"private_key_path"`
	PublicKey      string      `json:"public_key"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// Complete reports whether the identity can be stamped onto a repository.
func (i Identity) Complete() bool {
	return i.Name != "" && i.Email != ""
}

// String returns "name (type)".
func (i Identity) String() string {
	return fmt.Sprintf("%s (%s)", i.Name, i.AccountType)
}

// Project is a local repository registered with gitident.
type Project struct {
	ID           int         `json:"id"`
	Path         string      `json:"path"`
	Name         string      `json:"name"`
	IdentityName string      `json:"identity_name"`
	RemoteURL    string      `json:"remote_url"`
	RemoteName   string      `json:"remote_name"`
	Configured   bool        `json:"configured"`
	State        ConfigState `json:"state"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// HostAliasEntry is a Host block of the SSH client config as seen by a sync pass.
type HostAliasEntry struct {
	Host         string      `json:"host"`
	Name         string      `json:"name"`
	AccountType  AccountType `json:"account_type"`
	IdentityFile string      `json:"identity_file"`
	Email        string      `json:"email"`
	PublicKey    string      `json:"public_key"`
}
