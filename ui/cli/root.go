// Copyright (c) 2026 Gitident Team
// Gitident - Git identity manager
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/toeirei/gitident/internal/config"
	"github.com/toeirei/gitident/internal/core"
	"github.com/toeirei/gitident/internal/db"
	"github.com/toeirei/gitident/internal/i18n"
	"github.com/toeirei/gitident/internal/logging"
)

var (
	cfgFile   string
	verbose   bool
	appConfig config.Config
)

// setupDefaultServices loads configuration and initializes logging and i18n.
// The registry is opened per command by openService.
func setupDefaultServices(cmd *cobra.Command, args []string) error {
	var path *string
	if cmd.Flags().Changed("config") && cfgFile != "" {
		if _, err := os.Stat(cfgFile); err != nil {
			return fmt.Errorf("config file specified via --config flag not found or is not accessible: %w", err)
		}
		path = &cfgFile
	}

	var err error
	appConfig, err = config.LoadConfig[config.Config](cmd, config.Defaults(), path)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	level := appConfig.Log.Level
	if verbose {
		level = "debug"
		db.SetDebug(true)
	}
	if err := logging.SetLevel(level); err != nil {
		return err
	}
	i18n.Init(appConfig.Language)

	// First run: persist the defaults so users have a file to edit.
	if path == nil && !config.Exists() {
		defaults, derr := config.LoadConfig[config.Config](nil, config.Defaults(), nil)
		if derr == nil {
			if written, werr := config.WriteConfigFile(&defaults, false); werr != nil {
				logging.Warnf("could not write default config file: %v", werr)
			} else {
				logging.Debugf("wrote default config to %s", written)
			}
		}
	}
	return nil
}

// openService opens the registry described by appConfig.
func openService() (*core.Service, error) {
	return core.New(appConfig)
}

// Execute runs the CLI entrypoint.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd creates the root command with every subcommand attached. A
// fresh tree is built per call so tests can run commands in isolation.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gitident",
		Short: "Manage SSH identities for Git repositories.",
		Long: `Gitident binds Git identities (an SSH keypair plus commit email) to
local repositories. It generates keys, records a Host alias for each one in
~/.ssh/config and rewrites repository remotes so every push and pull uses
the right key.`,
		SilenceUsage:      true,
		PersistentPreRunE: setupDefaultServices,
	}
	cmd.Version = versionString()

	pf := cmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	pf.String("db-type", "", "Registry database type (sqlite, postgres, mysql)")
	pf.String("db", "", "Registry database DSN")
	pf.String("ssh-dir", "", "Directory for identity keys (default ~/.ssh)")
	pf.String("ssh-config", "", "SSH client config file (default ~/.ssh/config)")
	pf.String("probe", "", `SSH probe used by validate ("exec" or "native")`)
	pf.String("timeout", "", "Timeout for git and ssh subprocesses (e.g. 20s)")
	pf.String("log-level", "", "Log level (debug, info, warn, error)")
	pf.String("lang", "", `Output language ("en", "de")`)

	cmd.AddCommand(
		newIdentityCmd(),
		newSyncCmd(),
		newHostsCmd(),
		newProjectCmd(),
		newDoctorCmd(),
		newBackupCmd(),
		newRestoreCmd(),
		newServeCmd(),
		newVersionCmd(),
	)
	return cmd
}
