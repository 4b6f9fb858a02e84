// Copyright (c) 2026 Gitident Team
// Gitident - Git identity manager
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/atotto/clipboard"

	"github.com/toeirei/gitident/internal/alias"
	"github.com/toeirei/gitident/internal/i18n"
	"github.com/toeirei/gitident/internal/model"
	"github.com/toeirei/gitident/internal/sshkey"
)

func newTable(w io.Writer, header ...string) *tabwriter.Writer {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	return tw
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printIdentities(w io.Writer, ids []model.Identity) {
	if len(ids) == 0 {
		fmt.Fprintln(w, i18n.T("identity.none"))
		return
	}
	tw := newTable(w, "NAME", "TYPE", "EMAIL", "HOST ALIAS", "KEY")
	for _, id := range ids {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", id.Name, id.AccountType, id.Email, alias.Encode(id.Name, id.AccountType), id.PrivateKeyPath)
	}
	_ = tw.Flush()
}

func printIdentity(w io.Writer, id *model.Identity) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Name:\t%s\n", id.Name)
	fmt.Fprintf(tw, "Email:\t%s\n", id.Email)
	fmt.Fprintf(tw, "Type:\t%s\n", id.AccountType)
	fmt.Fprintf(tw, "Host alias:\t%s\n", alias.Encode(id.Name, id.AccountType))
	fmt.Fprintf(tw, "Private key:\t%s\n", id.PrivateKeyPath)
	if fp, err := sshkey.Fingerprint(id.PublicKey); err == nil {
		fmt.Fprintf(tw, "Fingerprint:\t%s\n", fp)
	}
	_ = tw.Flush()
	if id.PublicKey != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, i18n.T("identity.public_key"))
		fmt.Fprintln(w, id.PublicKey)
	}
}

func printHostEntries(w io.Writer, entries []model.HostAliasEntry) {
	tw := newTable(w, "HOST", "NAME", "TYPE", "EMAIL", "IDENTITY FILE")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.Host, e.Name, e.AccountType, e.Email, e.IdentityFile)
	}
	_ = tw.Flush()
}

func printProjects(w io.Writer, ps []model.Project) {
	if len(ps) == 0 {
		fmt.Fprintln(w, i18n.T("project.none"))
		return
	}
	tw := newTable(w, "ID", "NAME", "IDENTITY", "CONFIGURED", "STATE", "PATH")
	for _, p := range ps {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%t\t%s\t%s\n", p.ID, p.Name, p.IdentityName, p.Configured, p.State, p.Path)
	}
	_ = tw.Flush()
}

func printProject(w io.Writer, p *model.Project) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%d\n", p.ID)
	fmt.Fprintf(tw, "Name:\t%s\n", p.Name)
	fmt.Fprintf(tw, "Path:\t%s\n", p.Path)
	fmt.Fprintf(tw, "Identity:\t%s\n", p.IdentityName)
	fmt.Fprintf(tw, "Remote:\t%s\t%s\n", p.RemoteName, p.RemoteURL)
	fmt.Fprintf(tw, "Configured:\t%t\n", p.Configured)
	fmt.Fprintf(tw, "State:\t%s\n", p.State)
	_ = tw.Flush()
}

// copyToClipboard copies s and reports the outcome on w.
func copyToClipboard(w io.Writer, s string) {
	if err := clipboard.WriteAll(s); err != nil {
		fmt.Fprintln(w, i18n.T("identity.copy_failed", err))
		return
	}
	fmt.Fprintln(w, i18n.T("identity.copied"))
}
