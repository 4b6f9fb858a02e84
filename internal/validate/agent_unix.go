//go:build !windows
// +build !windows

// Copyright (c) 2026 Gitident Team
// Gitident - Git identity manager
// This source code is licensed under the MIT license found in the LICENSE file.

package validate

import (
	"net"
	"os"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"

	"github.com/toeirei/gitident/internal/logging"
)

// agentSigners returns the keys held by the agent at SSH_AUTH_SOCK.
func agentSigners() []ssh.Signer {
	sock := os.Getenv("SSH_AUTH_SOCK")
	if sock == "" {
		return nil
	}
	conn, err := net.Dial("unix", sock)
	if err != nil {
		logging.Debugf("ssh agent at %s unavailable: %v", sock, err)
		return nil
	}
	signers, err := agent.NewClient(conn).Signers()
	if err != nil {
		logging.Debugf("ssh agent signers: %v", err)
		return nil
	}
	return signers
}
