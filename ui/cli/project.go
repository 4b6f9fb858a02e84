// Copyright (c) 2026 Gitident Team
// Gitident - Git identity manager
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/toeirei/gitident/internal/core"
	"github.com/toeirei/gitident/internal/i18n"
	"github.com/toeirei/gitident/internal/model"
	"github.com/toeirei/gitident/ui/tui"
)

func newProjectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "project",
		Aliases: []string{"p"},
		Short:   "Register and configure repositories",
		Long: `Projects are local Git repositories known to gitident. A project is
referenced by its numeric id or its path.`,
	}
	cmd.AddCommand(
		newProjectAddCmd(),
		newProjectListCmd(),
		newProjectShowCmd(),
		newProjectUpdateCmd(),
		newProjectRemoveCmd(),
		newProjectConfigureCmd(),
		newProjectValidateCmd(),
		newProjectScanCmd(),
	)
	return cmd
}

// resolveProject accepts an id or a repository path.
func resolveProject(s *core.Service, ref string) (*model.Project, error) {
	if id, err := strconv.Atoi(ref); err == nil {
		return s.GetProject(id)
	}
	return s.ProjectByPath(ref)
}

func newProjectAddCmd() *cobra.Command {
	var req core.AddProjectRequest
	cmd := &cobra.Command{
		Use:   "add <path>",
		Short: "Register a repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Path = args[0]
			s, err := openService()
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()
			p, err := s.AddProject(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("project.added", p.Path, p.ID))
			return nil
		},
	}
	cmd.Flags().StringVarP(&req.Name, "name", "n", "", "Display name (default: directory name)")
	cmd.Flags().StringVarP(&req.RemoteName, "remote", "r", "", "Remote to manage (default: origin)")
	return cmd
}

func newProjectListCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List registered projects",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openService()
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()
			ps, err := s.ListProjects()
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), ps)
			}
			printProjects(cmd.OutOrStdout(), ps)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func newProjectShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id|path>",
		Short: "Show a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openService()
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()
			p, err := resolveProject(s, args[0])
			if err != nil {
				return err
			}
			printProject(cmd.OutOrStdout(), p)
			return nil
		},
	}
}

func newProjectUpdateCmd() *cobra.Command {
	var name, identity, remoteURL, remoteName string
	cmd := &cobra.Command{
		Use:   "update <id|path>",
		Short: "Edit a project record",
		Long: `Edits the stored record. Changing the identity or the remote marks the
project unconfigured until "project configure" runs again.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var req core.UpdateProjectRequest
			if cmd.Flags().Changed("name") {
				req.Name = &name
			}
			if cmd.Flags().Changed("identity") {
				req.IdentityName = &identity
			}
			if cmd.Flags().Changed("remote-url") {
				req.RemoteURL = &remoteURL
			}
			if cmd.Flags().Changed("remote") {
				req.RemoteName = &remoteName
			}
			s, err := openService()
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()
			p, err := resolveProject(s, args[0])
			if err != nil {
				return err
			}
			p, err = s.UpdateProject(p.ID, req)
			if err != nil {
				return err
			}
			printProject(cmd.OutOrStdout(), p)
			return nil
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "Display name")
	cmd.Flags().StringVarP(&identity, "identity", "i", "", "Identity name")
	cmd.Flags().StringVar(&remoteURL, "remote-url", "", "Stored remote URL")
	cmd.Flags().StringVarP(&remoteName, "remote", "r", "", "Remote name")
	return cmd
}

func newProjectRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <id|path>",
		Aliases: []string{"rm"},
		Short:   "Forget a project (the repository is left untouched)",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openService()
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()
			p, err := resolveProject(s, args[0])
			if err != nil {
				return err
			}
			if err := s.RemoveProject(p.ID); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("project.removed", p.ID))
			return nil
		},
	}
}

func newProjectConfigureCmd() *cobra.Command {
	var identity string
	cmd := &cobra.Command{
		Use:   "configure <id|path>",
		Short: "Rewrite the remote and commit identity of a project",
		Long: `Points the project's remote at the identity's SSH host alias
(git@github-<name>-<type>:owner/repo.git) and sets the repository-local
user.name and user.email.

Without --identity the project's stored identity is used; on a terminal an
interactive picker is shown when none is stored.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openService()
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()
			p, err := resolveProject(s, args[0])
			if err != nil {
				return err
			}

			if identity == "" && p.IdentityName == "" && isTerminal() {
				ids, err := s.ListIdentities()
				if err != nil {
					return err
				}
				chosen, err := tui.Pick(i18n.T("project.pick_identity", p.Name), ids)
				if err != nil {
					return err
				}
				identity = chosen.Name
			}

			p, err = s.ConfigureProject(cmd.Context(), p.ID, identity)
			if err != nil {
				if p != nil {
					return fmt.Errorf("%w (stopped at %s)", err, p.State)
				}
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("project.configured", p.Name, p.IdentityName, p.RemoteURL))
			return nil
		},
	}
	cmd.Flags().StringVarP(&identity, "identity", "i", "", "Identity to apply")
	return cmd
}

func newProjectValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <id|path>",
		Short: "Check that a configured project authenticates through its alias",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openService()
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()
			p, err := resolveProject(s, args[0])
			if err != nil {
				return err
			}
			if _, err := s.ValidateProject(cmd.Context(), p.ID); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("project.validated", p.Name))
			return nil
		},
	}
}

func newProjectScanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan <dir>",
		Short: "Register every repository below a directory",
		Long: `Walks <dir> and registers each directory containing .git. Hidden
directories are skipped and repositories are not descended into.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openService()
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()
			res, err := s.ScanProjects(cmd.Context(), args[0])
			if res == nil {
				return err
			}
			printProjects(cmd.OutOrStdout(), res.Added)
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("project.scanned", len(res.Added), res.Found, args[0]))
			return err
		},
	}
}
