// Copyright (c) 2026 Gitident Team
// Gitident - Git identity manager
// This source code is licensed under the MIT license found in the LICENSE file.

// Package db is the identity and project registry.
//
// A Store is opened from a database type and DSN with NewStoreFromDSN (or
// New). Schema migrations are embedded per dialect under migrations/ and are
// applied on open. SQLite (modernc, pure Go) is the default; PostgreSQL and
// MySQL share the same Bun-backed implementation.
//
// Lookups of unknown records return errors matching errs.ErrNotFound; unique
// constraint violations are mapped to ErrDuplicate.
package db
