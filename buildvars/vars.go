// Copyright (c) 2026 Gitident Team
// Gitident - Git identity manager
// This source code is licensed under the MIT license found in the LICENSE file.

// Package buildvars holds values stamped in by the linker:
//
//	go build -ldflags "-X github.com/toeirei/gitident/buildvars.Version=v1.2.3"
package buildvars

// Version is empty for development builds.
var Version string

// VersionOrDefault returns the stamped version, or def when none was set.
func VersionOrDefault(def string) string {
	if Version == "" {
		return def
	}
	return Version
}
