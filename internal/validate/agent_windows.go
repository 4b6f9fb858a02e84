//go:build windows
// +build windows

// Copyright (c) 2026 Gitident Team
// Gitident - Git identity manager
// This source code is licensed under the MIT license found in the LICENSE file.

package validate

import (
	"os"

	"github.com/Microsoft/go-winio"
	"github.com/davidmz/go-pageant"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"

	"github.com/toeirei/gitident/internal/logging"
)

// agentSigners asks Pageant first, then the OpenSSH agent named pipe
// (SSH_AUTH_SOCK or the default pipe).
func agentSigners() []ssh.Signer {
	var a agent.Agent
	if pageant.Available() {
		a = pageant.New()
	} else {
		pipe := os.Getenv("SSH_AUTH_SOCK")
		if pipe == "" {
			pipe = `\\.\pipe\openssh-ssh-agent`
		}
		conn, err := winio.DialPipe(pipe, nil)
		if err != nil {
			logging.Debugf("ssh agent pipe %s unavailable: %v", pipe, err)
			return nil
		}
		a = agent.NewClient(conn)
	}
	signers, err := a.Signers()
	if err != nil {
		logging.Debugf("ssh agent signers: %v", err)
		return nil
	}
	return signers
}
