// Copyright (c) 2026 Gitident Team
// Gitident - Git identity manager
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/toeirei/gitident/internal/i18n"
	"github.com/toeirei/gitident/internal/web"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that git and ssh are installed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openService()
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()
			p := s.CheckPrerequisites(cmd.Context())
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "platform  %s/%s\n", p.Platform, p.Arch)
			for _, t := range [...]struct {
				name    string
				ok      bool
				version string
			}{{"git", p.Git.Available, p.Git.Version}, {"ssh", p.SSH.Available, p.SSH.Version}} {
				if t.ok {
					fmt.Fprintln(out, i18n.T("doctor.ok", t.name, t.version))
				} else {
					fmt.Fprintln(out, i18n.T("doctor.missing", t.name))
				}
			}
			fmt.Fprintf(out, "ssh config  %s\nkey dir     %s\n", p.SSHConfig, p.KeyDir)
			if !p.OK() {
				return errors.New("required tools are missing")
			}
			return nil
		},
	}
}

func newBackupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backup [output-file]",
		Short: "Write a compressed (zstd) JSON backup of the registry",
		Long: `Dumps all identities and projects into a single Zstandard-compressed
JSON file. '.zst' is appended when missing. Without an argument the file is
named gitident-backup-YYYY-MM-DD.json.zst.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file := fmt.Sprintf("gitident-backup-%s.json.zst", time.Now().Format("2006-01-02"))
			if len(args) == 1 {
				file = args[0]
				if !strings.HasSuffix(file, ".zst") {
					file += ".zst"
				}
			}
			s, err := openService()
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()
			ni, np, err := s.Backup(file)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("backup.written", file, ni, np))
			return nil
		},
	}
}

func newRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <backup-file>",
		Short: "Merge a backup into the registry",
		Long: `Reads a backup written by "gitident backup". Identities are matched by
name and projects by path; existing records are overwritten.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openService()
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()
			ni, np, err := s.Restore(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("restore.done", ni, np))
			return nil
		},
	}
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openService()
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			addr := appConfig.Server.Addr
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("serve.listening", addr))
			err = web.NewServer(s).ListenAndServe(ctx, addr)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().String("addr", "", "Listen address (default 127.0.0.1:8765)")
	return cmd
}
