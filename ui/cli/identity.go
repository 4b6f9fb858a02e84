// Copyright (c) 2026 Gitident Team
// Gitident - Git identity manager
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/toeirei/gitident/internal/alias"
	"github.com/toeirei/gitident/internal/core"
	"github.com/toeirei/gitident/internal/i18n"
)

func newIdentityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "identity",
		Aliases: []string{"id"},
		Short:   "Create and inspect identities",
	}
	cmd.AddCommand(
		newIdentityCreateCmd(),
		newIdentityListCmd(),
		newIdentityShowCmd(),
		newIdentityUpdateCmd(),
		newIdentityForgetCmd(),
	)
	return cmd
}

func newIdentityCreateCmd() *cobra.Command {
	var (
		req        core.CreateIdentityRequest
		passphrase bool
		copyKey    bool
	)
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Generate a keypair and SSH host alias for a new identity",
		Long: `Generates an Ed25519 keypair at <key dir>/id_<name>_<type>, adds a
"Host github-<name>-<type>" block to the SSH config and registers the identity.

Examples:
  gitident identity create alice --email alice@example.com
  gitident identity create alice --email alice@corp.example --type work --copy`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Name = args[0]
			if passphrase {
				p, err := readPassphrase(cmd.ErrOrStderr(), cmd.InOrStdin())
				if err != nil {
					return err
				}
				req.Passphrase = p
			}
			s, err := openService()
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			id, err := s.CreateIdentity(req)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, i18n.T("identity.created", id.Name, id.PrivateKeyPath))
			fmt.Fprintln(out, i18n.T("identity.host_alias", alias.Encode(id.Name, id.AccountType)))
			fmt.Fprintln(out, i18n.T("identity.public_key"))
			fmt.Fprintln(out, id.PublicKey)
			if copyKey {
				copyToClipboard(out, id.PublicKey)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&req.Email, "email", "e", "", "Commit email, also used as the key comment")
	cmd.Flags().StringVarP(&req.AccountType, "type", "t", "personal", `Account type ("personal" or "work")`)
	cmd.Flags().BoolVar(&req.Overwrite, "overwrite", false, "Replace an existing key for this identity")
	cmd.Flags().BoolVarP(&passphrase, "passphrase", "P", false, "Prompt for a passphrase to encrypt the private key")
	cmd.Flags().BoolVar(&copyKey, "copy", false, "Copy the public key to the clipboard")
	return cmd
}

func newIdentityListCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List registered identities",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openService()
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()
			ids, err := s.ListIdentities()
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), ids)
			}
			printIdentities(cmd.OutOrStdout(), ids)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func newIdentityShowCmd() *cobra.Command {
	var copyKey bool
	cmd := &cobra.Command{
		Use:   "show <name>",
		Short: "Show an identity and its public key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openService()
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()
			id, err := s.GetIdentity(args[0])
			if err != nil {
				return err
			}
			printIdentity(cmd.OutOrStdout(), id)
			if copyKey && id.PublicKey != "" {
				copyToClipboard(cmd.OutOrStdout(), id.PublicKey)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&copyKey, "copy", false, "Copy the public key to the clipboard")
	return cmd
}

func newIdentityUpdateCmd() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "update <name>",
		Short: "Change the stored email",
		Long: `Updates the registry record only. The account type is part of the key
file name and the SSH host alias, so it cannot be changed here; run
"identity create <name> --type <type> --overwrite" and configure the
identity's projects again.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var req core.UpdateIdentityRequest
			if cmd.Flags().Changed("email") {
				req.Email = &email
			}
			s, err := openService()
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()
			id, err := s.UpdateIdentity(args[0], req)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("identity.updated", id.Name))
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "New commit email")
	return cmd
}

func newIdentityForgetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "forget <name>",
		Short: "Remove an identity from the registry, keeping its key files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openService()
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()
			if err := s.ForgetIdentity(args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("identity.forgotten", args[0]))
			return nil
		},
	}
}

func newSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Register identities found in the SSH config",
		Long: `Reads every Host block of the SSH config, loads the public key next to
its first IdentityFile and registers an identity for each alias that is not
yet known and whose key comment carries an email.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openService()
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()
			res, err := s.SyncIdentities()
			if err != nil {
				return err
			}
			printHostEntries(cmd.OutOrStdout(), res.Entries)
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("sync.done", len(res.Created), s.SSHConfig.Path()))
			return nil
		},
	}
}

func newHostsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hosts",
		Short: "List Host blocks of the SSH config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openService()
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()
			entries, err := s.HostEntries()
			if err != nil {
				return err
			}
			printHostEntries(cmd.OutOrStdout(), entries)
			return nil
		},
	}
}
