// Copyright (c) 2026 Gitident Team
// Gitident - Git identity manager
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/toeirei/gitident/internal/i18n"
)

// isTerminal reports whether stdin is an interactive terminal.
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// readPassphrase asks for a key passphrase twice on a terminal. Without a
// terminal it reads a single line from in.
func readPassphrase(out io.Writer, in io.Reader) (string, error) {
	if !isTerminal() {
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	fd := int(os.Stdin.Fd())
	fmt.Fprint(out, i18n.T("prompt.passphrase"))
	first, err := term.ReadPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return "", err
	}
	if len(first) == 0 {
		return "", nil
	}
	fmt.Fprint(out, i18n.T("prompt.passphrase_confirm"))
	second, err := term.ReadPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return "", err
	}
	if string(first) != string(second) {
		return "", errors.New(i18n.T("prompt.passphrase_mismatch"))
	}
	return string(first), nil
}
