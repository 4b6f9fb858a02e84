// Copyright (c) 2026 Gitident Team
// Gitident - Git identity manager
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/toeirei/gitident/internal/errs"
)

// ErrDuplicate is returned when attempting to insert a record that already exists.
var ErrDuplicate = errs.ErrDuplicate

var errNoRows = sql.ErrNoRows

// MapDBError maps common constraint violations to ErrDuplicate by inspecting
// the driver message, so this file needs no driver imports.
func MapDBError(err error) error {
	if err == nil {
		return nil
	}
	le := strings.ToLower(err.Error())
	// MySQL duplicate entry, Postgres unique violation (23505), SQLite unique constraint
	if strings.Contains(le, "duplicate") || strings.Contains(le, "unique") || strings.Contains(le, "23505") || strings.Contains(le, "1062") {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}

// notFound converts sql.ErrNoRows into errs.ErrNotFound for what.
func notFound(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, errs.ErrNotFound)
	}
	return err
}
