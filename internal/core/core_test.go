// Copyright (c) 2026 Gitident Team
// Gitident - Git identity manager
// This source code is licensed under the MIT license found in the LICENSE file.

package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/toeirei/gitident/internal/errs"
	"github.com/toeirei/gitident/internal/model"
	"github.com/toeirei/gitident/internal/runner"
	"github.com/toeirei/gitident/internal/testutil"
	"github.com/toeirei/gitident/internal/validate"
)

type fakeProber struct {
	mu      sync.Mutex
	targets []string
	err     error
}

func (f *fakeProber) Probe(_ context.Context, target string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.targets = append(f.targets, target)
	return f.err
}

func newTestService(t *testing.T) (*Service, *testutil.MemStore) {
	t.Helper()
	dir := t.TempDir()
	st := testutil.NewMemStore()
	s, err := NewService(st, runner.NewExecRunner(), filepath.Join(dir, "ssh"), filepath.Join(dir, "ssh", "config"))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return s, st
}

func TestCreateIdentity_WritesKeyAliasAndRecord(t *testing.T) {
	s, st := newTestService(t)
	id, err := s.CreateIdentity(CreateIdentityRequest{Name: "alice", Email: "alice@example.com", AccountType: "work"})
	if err != nil {
		t.Fatalf("CreateIdentity: %v", err)
	}
	if id.PrivateKeyPath != filepath.Join(s.Keys.Dir, "id_alice_work") {
		t.Errorf("unexpected key path %s", id.PrivateKeyPath)
	}
	if !strings.HasPrefix(id.PublicKey, "ssh-ed25519 ") || !strings.HasSuffix(id.PublicKey, "alice@example.com") {
		t.Errorf("public key not mirrored: %q", id.PublicKey)
	}

	cfg, err := os.ReadFile(s.SSHConfig.Path())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(cfg), "Host github-alice-work") || !strings.Contains(string(cfg), id.PrivateKeyPath) {
		t.Errorf("host alias missing:\n%s", cfg)
	}

	stored, err := st.GetIdentity("alice")
	if err != nil {
		t.Fatal(err)
	}
	if stored.Email != "alice@example.com" || stored.AccountType != model.AccountWork {
		t.Errorf("stored identity = %+v", stored)
	}
}

func TestCreateIdentity_ExistsAndOverwrite(t *testing.T) {
	s, st := newTestService(t)
	first, err := s.CreateIdentity(CreateIdentityRequest{Name: "alice", Email: "a@x"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateIdentity(CreateIdentityRequest{Name: "alice", Email: "a@x"}); !errors.Is(err, errs.ErrIdentityExists) {
		t.Fatalf("expected ErrIdentityExists, got %v", err)
	}
	second, err := s.CreateIdentity(CreateIdentityRequest{Name: "alice", Email: "a@x", Overwrite: true})
	if err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if first.PublicKey == second.PublicKey {
		t.Errorf("overwrite kept the old key")
	}
	ids, _ := st.ListIdentities()
	if len(ids) != 1 {
		t.Errorf("expected one identity, got %d", len(ids))
	}
	entries, _ := s.HostEntries()
	if len(entries) != 1 {
		t.Errorf("expected one host block, got %d", len(entries))
	}
}

func TestCreateIdentity_InvalidInput(t *testing.T) {
	s, _ := newTestService(t)
	for _, req := range []CreateIdentityRequest{
		{Name: "", Email: "a@x"},
		{Name: "../evil", Email: "a@x"},
		{Name: "bob", Email: "b@x", AccountType: "school"},
	} {
		if _, err := s.CreateIdentity(req); !errors.Is(err, errs.ErrInvalidInput) {
			t.Errorf("%+v: expected ErrInvalidInput, got %v", req, err)
		}
	}
}

func TestUpdateIdentity_RecordOnly(t *testing.T) {
	s, _ := newTestService(t)
	if _, err := s.CreateIdentity(CreateIdentityRequest{Name: "alice", Email: "a@x"}); err != nil {
		t.Fatal(err)
	}
	email, typ := "new@x", "personal"
	id, err := s.UpdateIdentity("alice", UpdateIdentityRequest{Email: &email, AccountType: &typ})
	if err != nil {
		t.Fatal(err)
	}
	if id.Email != "new@x" || id.AccountType != model.AccountPersonal {
		t.Errorf("update not applied: %+v", id)
	}
	bad := "school"
	if _, err := s.UpdateIdentity("alice", UpdateIdentityRequest{AccountType: &bad}); !errors.Is(err, errs.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := s.UpdateIdentity("nobody", UpdateIdentityRequest{Email: &email}); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestAccountTypeChange_KeepsProjectsConsistent(t *testing.T) {
	s, st := newTestService(t)
	repo := testutil.SetupTestRepo(t)
	testutil.Git(t, repo, "remote", "add", "origin", "git@github.com:acme/widget.git")
	ctx := context.Background()

	if _, err := s.CreateIdentity(CreateIdentityRequest{Name: "alice", Email: "alice@example.com"}); err != nil {
		t.Fatal(err)
	}
	p, err := s.AddProject(ctx, AddProjectRequest{Path: repo})
	if err != nil {
		t.Fatal(err)
	}
	if p, err = s.ConfigureProject(ctx, p.ID, "alice"); err != nil {
		t.Fatalf("ConfigureProject: %v", err)
	}

	typ := "work"
	if _, err := s.UpdateIdentity("alice", UpdateIdentityRequest{AccountType: &typ}); !errors.Is(err, errs.ErrInvalidInput) {
		t.Fatalf("type change via update: expected ErrInvalidInput, got %v", err)
	}
	if id, _ := st.GetIdentity("alice"); id.AccountType != model.AccountPersonal {
		t.Fatalf("rejected update changed the record: %+v", id)
	}
	if got, _ := st.GetProjectByID(p.ID); !got.Configured {
		t.Fatalf("rejected update unbound the project")
	}

	// Recreating under another type moves the alias; the project must
	// stop reporting configured until it is configured again.
	if _, err := s.CreateIdentity(CreateIdentityRequest{Name: "alice", Email: "alice@example.com", AccountType: "work", Overwrite: true}); err != nil {
		t.Fatalf("recreate: %v", err)
	}
	got, _ := st.GetProjectByID(p.ID)
	if got.Configured || got.State != model.StateUnvalidated {
		t.Fatalf("project after alias change = %+v", got)
	}
	s.Validator = &validate.Validator{Prober: &fakeProber{}, Identities: s.Registry}
	got.Configured = true
	if err := s.Validator.Validate(ctx, *got); !errors.Is(err, errs.ErrConfigNotSynchronized) {
		t.Fatalf("stale alias validated: %v", err)
	}

	if got, err = s.ConfigureProject(ctx, p.ID, "alice"); err != nil {
		t.Fatalf("reconfigure: %v", err)
	}
	if got.RemoteURL != "git@github-alice-work:acme/widget.git" {
		t.Fatalf("remote = %s", got.RemoteURL)
	}
	entries, err := s.HostEntries()
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, e := range entries {
		found = found || e.Host == "github-alice-work"
	}
	if !found {
		t.Errorf("no host block for the new alias: %+v", entries)
	}
	if _, err := s.ValidateProject(ctx, got.ID); err != nil {
		t.Errorf("ValidateProject after reconfigure: %v", err)
	}
}

func TestSyncIdentities_RediscoversForgotten(t *testing.T) {
	s, _ := newTestService(t)
	if _, err := s.CreateIdentity(CreateIdentityRequest{Name: "alice", Email: "alice@example.com", AccountType: "work"}); err != nil {
		t.Fatal(err)
	}
	if err := s.ForgetIdentity("alice"); err != nil {
		t.Fatal(err)
	}

	res, err := s.SyncIdentities()
	if err != nil {
		t.Fatalf("SyncIdentities: %v", err)
	}
	if len(res.Created) != 1 || res.Created[0] != "alice" {
		t.Fatalf("created = %v", res.Created)
	}
	id, err := s.GetIdentity("alice")
	if err != nil {
		t.Fatal(err)
	}
	if id.Email != "alice@example.com" || id.AccountType != model.AccountWork {
		t.Errorf("rediscovered identity = %+v", id)
	}

	res, err = s.SyncIdentities()
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Created) != 0 {
		t.Errorf("second sync created %v", res.Created)
	}
}

func TestConfigureAndValidateProject(t *testing.T) {
	s, _ := newTestService(t)
	repo := testutil.SetupTestRepo(t)
	testutil.Git(t, repo, "remote", "add", "origin", "git@github.com:acme/widget.git")

	if _, err := s.CreateIdentity(CreateIdentityRequest{Name: "alice", Email: "alice@example.com", AccountType: "work"}); err != nil {
		t.Fatal(err)
	}
	p, err := s.AddProject(context.Background(), AddProjectRequest{Path: repo})
	if err != nil {
		t.Fatalf("AddProject: %v", err)
	}
	if p.RemoteURL != "git@github.com:acme/widget.git" || p.RemoteName != "origin" || p.Name != filepath.Base(repo) {
		t.Errorf("registered project = %+v", p)
	}

	p, err = s.ConfigureProject(context.Background(), p.ID, "alice")
	if err != nil {
		t.Fatalf("ConfigureProject: %v", err)
	}
	if !p.Configured || p.State != model.StateConfigured || p.RemoteURL != "git@github-alice-work:acme/widget.git" {
		t.Fatalf("configured project = %+v", p)
	}
	if got := testutil.Git(t, repo, "remote", "get-url", "origin"); got != p.RemoteURL {
		t.Errorf("origin = %q", got)
	}
	if got := testutil.Git(t, repo, "config", "--local", "user.email"); got != "alice@example.com" {
		t.Errorf("user.email = %q", got)
	}

	prober := &fakeProber{}
	s.Validator = &validate.Validator{Prober: prober, Runner: s.Runner, Identities: s.Registry}
	if _, err := s.ValidateProject(context.Background(), p.ID); err != nil {
		t.Fatalf("ValidateProject: %v", err)
	}
	if len(prober.targets) != 1 || prober.targets[0] != "git@github-alice-work" {
		t.Errorf("probe targets = %v", prober.targets)
	}

	prober.err = errs.E("probe", errs.ErrSSHConnectionFailed, errors.New("denied"))
	if _, err := s.ValidateProject(context.Background(), p.ID); !errors.Is(err, errs.ErrSSHConnectionFailed) {
		t.Errorf("expected ErrSSHConnectionFailed, got %v", err)
	}
}

func TestConfigureProject_Errors(t *testing.T) {
	s, st := newTestService(t)
	repo := testutil.SetupTestRepo(t)
	p, err := s.AddProject(context.Background(), AddProjectRequest{Path: repo})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.ConfigureProject(context.Background(), p.ID, ""); !errors.Is(err, errs.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := s.ConfigureProject(context.Background(), p.ID, "ghost"); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.ConfigureProject(context.Background(), 999, "ghost"); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	// No origin and no stored URL.
	if err := st.CreateIdentity(&model.Identity{Name: "bob", Email: "b@x"}); err != nil {
		t.Fatal(err)
	}
	got, err := s.ConfigureProject(context.Background(), p.ID, "bob")
	if !errors.Is(err, errs.ErrRemoteResolutionFailed) {
		t.Fatalf("expected ErrRemoteResolutionFailed, got %v", err)
	}
	if got.State != model.StateRepoValidated || got.Configured {
		t.Errorf("state after failure = %+v", got)
	}
	stored, _ := st.GetProjectByID(p.ID)
	if stored.State != model.StateRepoValidated {
		t.Errorf("persisted state = %s", stored.State)
	}
}

func TestAddProject_Rejects(t *testing.T) {
	s, _ := newTestService(t)
	if _, err := s.AddProject(context.Background(), AddProjectRequest{}); !errors.Is(err, errs.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
	testutil.RequireGit(t)
	if _, err := s.AddProject(context.Background(), AddProjectRequest{Path: t.TempDir()}); !errors.Is(err, errs.ErrInvalidRepository) {
		t.Errorf("expected ErrInvalidRepository, got %v", err)
	}
	repo := testutil.SetupTestRepo(t)
	if _, err := s.AddProject(context.Background(), AddProjectRequest{Path: repo}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddProject(context.Background(), AddProjectRequest{Path: repo}); !errors.Is(err, errs.ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}
}

func TestUpdateProject_UnbindsOnIdentityChange(t *testing.T) {
	s, st := newTestService(t)
	for _, n := range []string{"alice", "bob"} {
		if err := st.CreateIdentity(&model.Identity{Name: n, Email: n + "@x"}); err != nil {
			t.Fatal(err)
		}
	}
	p := &model.Project{Path: "/src/widget", IdentityName: "alice", RemoteURL: "git@github-alice-personal:a/b.git", RemoteName: "origin", Configured: true, State: model.StateConfigured}
	if err := st.CreateProject(p); err != nil {
		t.Fatal(err)
	}

	name := "Widget"
	got, err := s.UpdateProject(p.ID, UpdateProjectRequest{Name: &name})
	if err != nil {
		t.Fatal(err)
	}
	if !got.Configured || got.Name != "Widget" {
		t.Errorf("rename should keep configuration: %+v", got)
	}

	bob := "bob"
	got, err = s.UpdateProject(p.ID, UpdateProjectRequest{IdentityName: &bob})
	if err != nil {
		t.Fatal(err)
	}
	if got.Configured || got.State != model.StateUnvalidated || got.IdentityName != "bob" {
		t.Errorf("identity change should unbind: %+v", got)
	}

	ghost := "ghost"
	if _, err := s.UpdateProject(p.ID, UpdateProjectRequest{IdentityName: &ghost}); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestScanProjects(t *testing.T) {
	s, _ := newTestService(t)
	testutil.SetupTestRepo(t) // isolates git config
	root := t.TempDir()
	for _, d := range []string{"a", "nested/b", ".hidden/c"} {
		dir := filepath.Join(root, d)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
		testutil.Git(t, dir, "init", "-q")
	}
	if err := os.MkdirAll(filepath.Join(root, "plain"), 0o755); err != nil {
		t.Fatal(err)
	}

	res, err := s.ScanProjects(context.Background(), root)
	if err != nil {
		t.Fatalf("ScanProjects: %v", err)
	}
	if res.Found != 2 || len(res.Added) != 2 {
		t.Fatalf("scan = found %d added %d", res.Found, len(res.Added))
	}
	res, err = s.ScanProjects(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Added) != 0 {
		t.Errorf("second scan added %d", len(res.Added))
	}
}

func TestCheckPrerequisites(t *testing.T) {
	s, _ := newTestService(t)
	mock := runner.NewMockRunner()
	mock.OnCommand("git", "--version").Return("git version 2.43.0\n", nil)
	mock.OnCommand("ssh", "-V").Return("", errors.New("executable file not found"))
	s.Runner = mock

	p := s.CheckPrerequisites(context.Background())
	if !p.Git.Available || p.Git.Version != "git version 2.43.0" {
		t.Errorf("git = %+v", p.Git)
	}
	if p.SSH.Available || p.SSH.Error == "" {
		t.Errorf("ssh = %+v", p.SSH)
	}
	if p.OK() {
		t.Errorf("OK with ssh missing")
	}
}

func TestBackupRestore(t *testing.T) {
	s, st := newTestService(t)
	if err := st.CreateIdentity(&model.Identity{Name: "alice", Email: "a@x"}); err != nil {
		t.Fatal(err)
	}
	if err := st.CreateProject(&model.Project{Path: "/src/widget"}); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "backup.json.zst")
	ni, np, err := s.Backup(path)
	if err != nil || ni != 1 || np != 1 {
		t.Fatalf("Backup = %d %d %v", ni, np, err)
	}

	other, ost := newTestService(t)
	ni, np, err = other.Restore(path)
	if err != nil || ni != 1 || np != 1 {
		t.Fatalf("Restore = %d %d %v", ni, np, err)
	}
	if _, err := ost.GetProject("/src/widget"); err != nil {
		t.Errorf("restored project missing: %v", err)
	}
}

func TestPage(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	tests := []struct {
		offset, limit int
		want          int
	}{
		{0, 0, 5},
		{0, 2, 2},
		{4, 10, 1},
		{5, 1, 0},
		{-1, 3, 3},
	}
	for _, tt := range tests {
		if got := Page(items, tt.offset, tt.limit); len(got) != tt.want {
			t.Errorf("Page(%d,%d) len = %d, want %d", tt.offset, tt.limit, len(got), tt.want)
		}
	}
}

func TestPathLocks_Serialize(t *testing.T) {
	var l pathLocks
	var mu sync.Mutex
	active, maxActive := 0, 0
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := l.lock("/src/widget")
			mu.Lock()
			active++
			if active > maxActive {
				maxActive = active
			}
			mu.Unlock()
			mu.Lock()
			active--
			mu.Unlock()
			unlock()
		}()
	}
	wg.Wait()
	if maxActive != 1 {
		t.Errorf("max concurrent holders = %d", maxActive)
	}
}
