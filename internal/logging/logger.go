// Copyright (c) 2026 Gitident Team
// Gitident - Git identity manager
// This source code is licensed under the MIT license found in the LICENSE file.

// Package logging holds the process-wide logger. Output goes to stderr so
// command output on stdout stays machine-readable.
package logging

import (
	"fmt"
	"io"
	"os"

	clog "github.com/charmbracelet/log"
)

var L = clog.NewWithOptions(os.Stderr, clog.Options{Prefix: "gitident"})

// SetLevel accepts debug, info, warn or error. On error the level is kept.
func SetLevel(name string) error {
	lvl, err := clog.ParseLevel(name)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", name, err)
	}
	L.SetLevel(lvl)
	return nil
}

func SetOutput(w io.Writer) { L.SetOutput(w) }

func Debugf(format string, v ...any) { L.Debugf(format, v...) }
func Infof(format string, v ...any)  { L.Infof(format, v...) }
func Warnf(format string, v ...any)  { L.Warnf(format, v...) }
func Errorf(format string, v ...any) { L.Errorf(format, v...) }
