// Copyright (c) 2026 Gitident Team
// Gitident - Git identity manager
// This source code is licensed under the MIT license found in the LICENSE file.

package gitrepo

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/toeirei/gitident/internal/keys"
	"github.com/toeirei/gitident/internal/logging"
)

// Scan returns every directory under root that contains a .git entry.
// Repositories are not descended into, and hidden directories are skipped.
// Unreadable directories are logged and ignored.
func Scan(root string) ([]string, error) {
	root, err := filepath.Abs(keys.ExpandPath(root))
	if err != nil {
		return nil, err
	}
	var found []string
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			logging.Warnf("scan %s: %v", p, err)
			if d != nil && d.IsDir() && p != root {
				return filepath.SkipDir
			}
			if p == root {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if _, err := os.Stat(filepath.Join(p, ".git")); err == nil {
			found = append(found, p)
			return filepath.SkipDir
		}
		return nil
	})
	return found, err
}
