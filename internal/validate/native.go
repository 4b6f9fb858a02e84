// Copyright (c) 2026 Gitident Team
// Gitident - Git identity manager
// This source code is licensed under the MIT license found in the LICENSE file.

package validate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/toeirei/gitident/internal/errs"
	"github.com/toeirei/gitident/internal/keys"
	"github.com/toeirei/gitident/internal/logging"
	"github.com/toeirei/gitident/internal/sshconfig"
)

// HostLookup resolves an alias to its SSH config block.
type HostLookup interface {
	Lookup(host string) (*sshconfig.Block, error)
}

// NativeProber authenticates with golang.org/x/crypto/ssh instead of the
// system client. It honors HostName, Port, User and IdentityFile of the
// alias block and uses the running SSH agent for encrypted identity keys.
type NativeProber struct {
	Hosts          HostLookup
	KnownHostsPath string
	Timeout        time.Duration
	// agentSigners is swapped in tests.
	agentSigners func() []ssh.Signer
}

// NewNativeProber returns a NativeProber reading ~/.ssh/known_hosts.
func NewNativeProber(hosts HostLookup) *NativeProber {
	return &NativeProber{
		Hosts:          hosts,
		KnownHostsPath: keys.ExpandPath("~/.ssh/known_hosts"),
		Timeout:        10 * time.Second,
		agentSigners:   agentSigners,
	}
}

type endpoint struct {
	user         string
	addr         string
	identityFile string
}

func (p *NativeProber) resolve(target string) (endpoint, error) {
	user, host, ok := strings.Cut(target, "@")
	if !ok {
		user, host = DefaultUser, target
	}
	ep := endpoint{user: user, addr: net.JoinHostPort(host, "22")}
	if p.Hosts == nil {
		return ep, nil
	}
	b, err := p.Hosts.Lookup(host)
	if err != nil {
		return ep, err
	}
	if b == nil {
		return ep, nil
	}
	hostname, port := host, "22"
	if v := b.Get("HostName"); v != "" {
		hostname = v
	}
	if v := b.Get("Port"); v != "" {
		port = v
	}
	if !ok {
		if v := b.Get("User"); v != "" {
			ep.user = v
		}
	}
	ep.addr = net.JoinHostPort(hostname, port)
	ep.identityFile = keys.ExpandPath(b.IdentityFile())
	return ep, nil
}

// signers returns the keys offered for ep. An alias with an IdentityFile
// authenticates with that key only: the parsed private key, or for an
// encrypted key the agent entry matching its .pub sibling. Without an
// IdentityFile every agent key is offered.
func (p *NativeProber) signers(ep endpoint) []ssh.Signer {
	var fromAgent []ssh.Signer
	if p.agentSigners != nil {
		fromAgent = p.agentSigners()
	}
	if ep.identityFile == "" {
		return fromAgent
	}

	data, err := os.ReadFile(ep.identityFile)
	if err != nil {
		logging.Warnf("read identity %s: %v", ep.identityFile, err)
		return nil
	}
	s, err := ssh.ParsePrivateKey(data)
	if err == nil {
		return []ssh.Signer{s}
	}
	var missing *ssh.PassphraseMissingError
	if !errors.As(err, &missing) {
		logging.Warnf("parse identity %s: %v", ep.identityFile, err)
		return nil
	}

	want := missing.PublicKey
	if want == nil {
		line, _, err := keys.ReadPublicKey(ep.identityFile)
		if err != nil {
			logging.Warnf("identity %s is encrypted and has no public key: %v", ep.identityFile, err)
			return nil
		}
		if want, _, _, _, err = ssh.ParseAuthorizedKey([]byte(line)); err != nil {
			logging.Warnf("parse public key of %s: %v", ep.identityFile, err)
			return nil
		}
	}
	for _, a := range fromAgent {
		if bytes.Equal(a.PublicKey().Marshal(), want.Marshal()) {
			logging.Debugf("identity %s is encrypted, using its agent key", ep.identityFile)
			return []ssh.Signer{a}
		}
	}
	logging.Debugf("identity %s is encrypted and not loaded in the agent", ep.identityFile)
	return nil
}

// Probe implements Prober.
func (p *NativeProber) Probe(ctx context.Context, target string) error {
	fail := func(err error) error {
		return errs.E("ssh probe "+target, errs.ErrSSHConnectionFailed, err)
	}
	ep, err := p.resolve(target)
	if err != nil {
		return fail(err)
	}
	signers := p.signers(ep)
	if len(signers) == 0 {
		return fail(fmt.Errorf("no usable key for %s", target))
	}
	hostKeys, err := knownhosts.New(p.KnownHostsPath)
	if err != nil {
		return fail(fmt.Errorf("load known hosts %s: %w", filepath.Clean(p.KnownHostsPath), err))
	}
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	cfg := &ssh.ClientConfig{
		User:            ep.user,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(signers...)},
		HostKeyCallback: hostKeys,
		Timeout:         timeout,
	}

	dctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	conn, err := (&net.Dialer{}).DialContext(dctx, "tcp", ep.addr)
	if err != nil {
		return fail(fmt.Errorf("host unreachable: %w", err))
	}
	_ = conn.SetDeadline(time.Now().Add(timeout))
	c, chans, reqs, err := ssh.NewClientConn(conn, ep.addr, cfg)
	if err != nil {
		_ = conn.Close()
		if strings.Contains(err.Error(), "unable to authenticate") {
			return fail(fmt.Errorf("permission denied: %w", err))
		}
		return fail(err)
	}
	client := ssh.NewClient(c, chans, reqs)
	defer func() { _ = client.Close() }()

	// Authentication already succeeded; the greeting is only logged.
	sess, err := client.NewSession()
	if err != nil {
		logging.Debugf("probe %s: authenticated, session refused: %v", target, err)
		return nil
	}
	defer func() { _ = sess.Close() }()
	var buf bytes.Buffer
	sess.Stdout = &buf
	sess.Stderr = &buf
	if err := sess.Shell(); err == nil {
		_ = sess.Wait()
	}
	logging.Debugf("probe %s: %s", target, strings.TrimSpace(buf.String()))
	return nil
}
