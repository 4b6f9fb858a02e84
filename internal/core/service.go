// Copyright (c) 2026 Gitident Team
// Gitident - Git identity manager
// This source code is licensed under the MIT license found in the LICENSE file.

package core

import (
	"fmt"
	"strings"
	"sync"

	"github.com/toeirei/gitident/internal/config"
	"github.com/toeirei/gitident/internal/db"
	"github.com/toeirei/gitident/internal/keys"
	"github.com/toeirei/gitident/internal/logging"
	"github.com/toeirei/gitident/internal/remote"
	"github.com/toeirei/gitident/internal/runner"
	"github.com/toeirei/gitident/internal/sshconfig"
	"github.com/toeirei/gitident/internal/validate"
)

// Service bundles the components behind every user-facing operation.
type Service struct {
	Registry   Registry
	Keys       *keys.Manager
	SSHConfig  *sshconfig.Store
	Configurer *remote.Configurer
	Validator  Validator
	Runner     runner.CommandRunner

	locks pathLocks
}

// New builds a Service from cfg, opening the configured registry.
func New(cfg config.Config) (*Service, error) {
	store, err := db.New(cfg.Database.Type, keys.ExpandPath(cfg.Database.Dsn))
	if err != nil {
		return nil, fmt.Errorf("open registry: %w", err)
	}

	r := runner.NewExecRunner()
	r.Timeout = cfg.ExecTimeout()

	s, err := NewService(store, r, cfg.SSH.Dir, cfg.SSH.ConfigPath)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	switch strings.ToLower(cfg.SSH.Probe) {
	case "", "exec":
	case "native":
		np := validate.NewNativeProber(s.SSHConfig)
		if cfg.SSH.KnownHosts != "" {
			np.KnownHostsPath = keys.ExpandPath(cfg.SSH.KnownHosts)
		}
		np.Timeout = cfg.ExecTimeout()
		s.Validator = &validate.Validator{Prober: np, Runner: r, Identities: store}
	default:
		_ = store.Close()
		return nil, fmt.Errorf("unknown ssh.probe %q (want exec or native)", cfg.SSH.Probe)
	}
	logging.Debugf("service ready: registry=%s ssh_config=%s probe=%s", cfg.Database.Type, s.SSHConfig.Path(), cfg.SSH.Probe)
	return s, nil
}

// NewService wires a Service around an already opened registry. It uses the
// system ssh client for validation.
func NewService(reg Registry, r runner.CommandRunner, keyDir, sshConfigPath string) (*Service, error) {
	if r == nil {
		r = runner.NewExecRunner()
	}
	km, err := keys.NewManager(keyDir)
	if err != nil {
		return nil, err
	}
	sc, err := sshconfig.NewStore(sshConfigPath)
	if err != nil {
		return nil, err
	}
	return &Service{
		Registry:   reg,
		Keys:       km,
		SSHConfig:  sc,
		Configurer: remote.NewConfigurer(r, reg),
		Validator:  &validate.Validator{Prober: validate.NewExecProber(r), Runner: r, Identities: reg},
		Runner:     r,
	}, nil
}

// Close releases the registry.
func (s *Service) Close() error {
	if s.Registry == nil {
		return nil
	}
	return s.Registry.Close()
}

// pathLocks serializes configuration passes per repository path.
type pathLocks struct {
	mu sync.Mutex
	m  map[string]*sync.Mutex
}

func (l *pathLocks) lock(path string) func() {
	l.mu.Lock()
	if l.m == nil {
		l.m = map[string]*sync.Mutex{}
	}
	m, ok := l.m[path]
	if !ok {
		m = &sync.Mutex{}
		l.m[path] = m
	}
	l.mu.Unlock()
	m.Lock()
	return m.Unlock
}

// Page returns items[offset:offset+limit], clamped. limit <= 0 means no limit.
func Page[T any](items []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
