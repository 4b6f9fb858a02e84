// Copyright (c) 2026 Gitident Team
// Gitident - Git identity manager
// This source code is licensed under the MIT license found in the LICENSE file.

// Package cli implements the gitident command line with Cobra. Every command
// loads configuration in the root PersistentPreRunE and talks to the core
// facades; `serve` exposes the same facades over HTTP.
package cli
