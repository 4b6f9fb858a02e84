// Copyright (c) 2026 Gitident Team
// Gitident - Git identity manager
// This source code is licensed under the MIT license found in the LICENSE file.

// Package alias converts between identities and SSH host aliases.
//
// An alias has the form "github-{name}-{accountType}". It is the only link
// between Host blocks in the SSH client config and registry identities.
package alias // import "github.com/toeirei/gitident/internal/alias"

import (
	"strings"

	"github.com/toeirei/gitident/internal/model"
)

// Prefix is prepended to every alias gitident writes.
const Prefix = "github-"

// Encode returns the host alias for an identity.
func Encode(name string, accountType model.AccountType) string {
	if accountType == "" {
		accountType = model.AccountPersonal
	}
	return Prefix + name + "-" + string(accountType)
}

// Decode splits a host alias into identity name and account type.
// The "github-" prefix is optional. Without a '-' in the remainder the
// account type defaults to personal. The suffix is returned as-is, so
// foreign aliases may yield types other than personal or work.
func Decode(host string) (name string, accountType model.AccountType) {
	rest := strings.TrimPrefix(host, Prefix)
	i := strings.LastIndex(rest, "-")
	if i < 0 {
		return rest, model.AccountPersonal
	}
	return rest[:i], model.AccountType(rest[i+1:])
}
