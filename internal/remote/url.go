// Copyright (c) 2026 Gitident Team
// Gitident - Git identity manager
// This source code is licensed under the MIT license found in the LICENSE file.

package remote

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/toeirei/gitident/internal/errs"
)

// sshShorthand matches scp-like remotes: user@host:path.
var sshShorthand = regexp.MustCompile(`^([A-Za-z0-9._-]+)@([A-Za-z0-9._-]+):([^:].*)$`)

// URL is a parsed scp-like SSH remote.
type URL struct {
	User string
	Host string
	Path string
}

func (u URL) String() string {
	return u.User + "@" + u.Host + ":" + u.Path
}

// ParseURL parses user@host:path remotes. Anything else is ErrInvalidRemoteURL.
func ParseURL(raw string) (URL, error) {
	m := sshShorthand.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return URL{}, errs.E("parse remote", errs.ErrInvalidRemoteURL, fmt.Errorf("%q is not of the form user@host:owner/repo.git", raw))
	}
	return URL{User: m[1], Host: m[2], Path: m[3]}, nil
}

// RepoPath returns owner/repo without a trailing ".git". The path must be
// relative with at least two non-empty segments.
func (u URL) RepoPath() (string, error) {
	if strings.HasPrefix(u.Path, "/") {
		return "", errs.E("parse remote", errs.ErrInvalidRepoPath, fmt.Errorf("repository path %q is absolute", u.Path))
	}
	p := strings.TrimSuffix(strings.TrimSuffix(u.Path, "/"), ".git")
	p = strings.TrimSuffix(p, "/")
	segs := strings.Split(p, "/")
	if len(segs) < 2 {
		return "", errs.E("parse remote", errs.ErrInvalidRepoPath, fmt.Errorf("repository path %q needs owner/repo", u.Path))
	}
	for _, s := range segs {
		if s == "" {
			return "", errs.E("parse remote", errs.ErrInvalidRepoPath, fmt.Errorf("repository path %q has an empty segment", u.Path))
		}
	}
	return p, nil
}

// AliasURL is the remote that routes repoPath through an identity alias.
func AliasURL(hostAlias, repoPath string) string {
	return "git@" + hostAlias + ":" + repoPath + ".git"
}

// AliasHost returns the host part of a configured remote: the text before
// the first ':' without a user@ prefix.
func AliasHost(remoteURL string) string {
	host, _, _ := strings.Cut(remoteURL, ":")
	if _, after, ok := strings.Cut(host, "@"); ok {
		return after
	}
	return host
}
