// Copyright (c) 2026 Gitident Team
// Gitident - Git identity manager
// This source code is licensed under the MIT license found in the LICENSE file.

package validate

import (
	"context"
	"fmt"

	"github.com/toeirei/gitident/internal/runner"
)

// ExecProber runs the system ssh client, so the user's full SSH config
// (ProxyJump, agents, includes) applies.
type ExecProber struct {
	Runner         runner.CommandRunner
	ConnectTimeout int // seconds
}

// NewExecProber returns an ExecProber with a 10 second connect timeout.
func NewExecProber(r runner.CommandRunner) *ExecProber {
	if r == nil {
		r = runner.NewExecRunner()
	}
	return &ExecProber{Runner: r, ConnectTimeout: 10}
}

// Probe implements Prober.
func (p *ExecProber) Probe(ctx context.Context, target string) error {
	timeout := p.ConnectTimeout
	if timeout <= 0 {
		timeout = 10
	}
	// ssh exits non-zero even on success against Git hosts; only the
	// output is classified.
	out, err := p.Runner.Run(ctx, "", "ssh",
		"-T",
		"-o", "BatchMode=yes",
		"-o", fmt.Sprintf("ConnectTimeout=%d", timeout),
		target,
	)
	if out == "" && err != nil {
		out = err.Error()
	}
	return Classify(out)
}
