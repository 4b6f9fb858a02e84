// Copyright (c) 2026 Gitident Team
// Gitident - Git identity manager
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/uptrace/bun"

	"github.com/toeirei/gitident/internal/logging"
)

var debugEnabled atomic.Bool

// SetDebug toggles store debug output, including every SQL statement.
func SetDebug(enabled bool) {
	debugEnabled.Store(enabled)
}

func dbLogf(format string, v ...any) {
	if debugEnabled.Load() {
		logging.Debugf(format, v...)
	}
}

// queryLogger traces statements through bun when debug output is on.
type queryLogger struct{}

var _ bun.QueryHook = queryLogger{}

func (queryLogger) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (queryLogger) AfterQuery(_ context.Context, ev *bun.QueryEvent) {
	if !debugEnabled.Load() {
		return
	}
	if ev.Err != nil {
		dbLogf("sql %s (%s): %s: %v", ev.Operation(), time.Since(ev.StartTime), ev.Query, ev.Err)
		return
	}
	dbLogf("sql %s (%s): %s", ev.Operation(), time.Since(ev.StartTime), ev.Query)
}
