// Copyright (c) 2026 Gitident Team
// Gitident - Git identity manager
// This source code is licensed under the MIT license found in the LICENSE file.

package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/toeirei/gitident/internal/core"
	"github.com/toeirei/gitident/internal/errs"
	"github.com/toeirei/gitident/internal/model"
	"github.com/toeirei/gitident/internal/runner"
	"github.com/toeirei/gitident/internal/testutil"
)

func newTestServer(t *testing.T) (*httptest.Server, *runner.MockRunner, *testutil.MemStore) {
	t.Helper()
	dir := t.TempDir()
	mock := runner.NewMockRunner()
	st := testutil.NewMemStore()
	svc, err := core.NewService(st, mock, filepath.Join(dir, "ssh"), filepath.Join(dir, "ssh", "config"))
	if err != nil {
		t.Fatal(err)
	}
	ts := httptest.NewServer(NewServer(svc).Router())
	t.Cleanup(ts.Close)
	return ts, mock, st
}

func do(t *testing.T, ts *httptest.Server, method, path string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, ts.URL+path, rd)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = resp.Body.Close() }()
	out := map[string]interface{}{}
	if resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			t.Fatalf("%s %s: decode: %v", method, path, err)
		}
	}
	return resp.StatusCode, out
}

func TestHealth(t *testing.T) {
	ts, _, _ := newTestServer(t)
	code, body := do(t, ts, "GET", "/health", nil)
	if code != http.StatusOK || body["status"] != "healthy" {
		t.Fatalf("health = %d %v", code, body)
	}
}

func TestIdentityRoutes(t *testing.T) {
	ts, _, _ := newTestServer(t)

	code, body := do(t, ts, "POST", "/api/identities", map[string]interface{}{"name": "alice", "email": "a@x", "account_type": "work"})
	if code != http.StatusCreated || body["name"] != "alice" {
		t.Fatalf("create = %d %v", code, body)
	}
	code, body = do(t, ts, "POST", "/api/identities", map[string]interface{}{"name": "alice", "email": "a@x", "account_type": "work"})
	if code != http.StatusConflict || body["detail"] == nil {
		t.Fatalf("duplicate create = %d %v", code, body)
	}
	code, _ = do(t, ts, "POST", "/api/identities", map[string]interface{}{"name": "bob", "account_type": "school"})
	if code != http.StatusBadRequest {
		t.Fatalf("bad type = %d", code)
	}
	code, _ = do(t, ts, "POST", "/api/identities", map[string]interface{}{"bogus": 1})
	if code != http.StatusBadRequest {
		t.Fatalf("unknown field = %d", code)
	}

	code, body = do(t, ts, "GET", "/api/identities/alice", nil)
	if code != http.StatusOK || body["account_type"] != "work" {
		t.Fatalf("get = %d %v", code, body)
	}
	code, _ = do(t, ts, "GET", "/api/identities/nobody", nil)
	if code != http.StatusNotFound {
		t.Fatalf("get unknown = %d", code)
	}

	code, body = do(t, ts, "PATCH", "/api/identities/alice", map[string]interface{}{"email": "new@x"})
	if code != http.StatusOK || body["email"] != "new@x" {
		t.Fatalf("patch = %d %v", code, body)
	}

	code, body = do(t, ts, "GET", "/api/identities?limit=10", nil)
	if code != http.StatusOK || body["total"].(float64) != 1 {
		t.Fatalf("list = %d %v", code, body)
	}

	code, body = do(t, ts, "POST", "/api/identities/sync", nil)
	if code != http.StatusOK || len(body["entries"].([]interface{})) != 1 {
		t.Fatalf("sync = %d %v", code, body)
	}
}

func TestProjectLifecycle(t *testing.T) {
	ts, mock, st := newTestServer(t)
	mock.OnCommand("git", "rev-parse").Return(".git", nil)
	mock.OnCommand("git", "remote", "get-url").Return("git@github.com:acme/widget.git", nil)
	mock.OnCommand("ssh").Return("Hi alice! You've successfully authenticated, but GitHub does not provide shell access.", nil)

	if err := st.CreateIdentity(&model.Identity{Name: "alice", Email: "a@x", AccountType: model.AccountWork}); err != nil {
		t.Fatal(err)
	}

	repo := t.TempDir()
	code, body := do(t, ts, "POST", "/api/projects", map[string]interface{}{"path": repo})
	if code != http.StatusCreated {
		t.Fatalf("add = %d %v", code, body)
	}
	id := int(body["id"].(float64))
	if body["remote_url"] != "git@github.com:acme/widget.git" {
		t.Errorf("remote_url = %v", body["remote_url"])
	}

	code, _ = do(t, ts, "GET", fmt.Sprintf("/api/projects/%d/validate", id), nil)
	if code != http.StatusConflict {
		t.Fatalf("validate before configure = %d", code)
	}

	code, body = do(t, ts, "POST", fmt.Sprintf("/api/projects/%d/configure", id), map[string]interface{}{"identity_name": "alice"})
	if code != http.StatusOK || body["state"] != string(model.StateConfigured) {
		t.Fatalf("configure = %d %v", code, body)
	}
	if !mock.WasCalled("git", "remote", "add", "origin", "git@github-alice-work:acme/widget.git") {
		t.Errorf("remote not rewritten; calls: %v", mock.Calls)
	}

	mock.OnCommand("git", "remote", "get-url").Return("git@github-alice-work:acme/widget.git", nil)
	code, body = do(t, ts, "GET", fmt.Sprintf("/api/projects/%d/validate", id), nil)
	if code != http.StatusOK || body["valid"] != true {
		t.Fatalf("validate = %d %v", code, body)
	}

	mock.OnCommand("ssh").Return("git@github-alice-work: Permission denied (publickey).", errors.New("exit status 255"))
	code, _ = do(t, ts, "GET", fmt.Sprintf("/api/projects/%d/validate", id), nil)
	if code != http.StatusBadGateway {
		t.Fatalf("validate with denied probe = %d", code)
	}

	code, body = do(t, ts, "PATCH", fmt.Sprintf("/api/projects/%d", id), map[string]interface{}{"name": "Widget"})
	if code != http.StatusOK || body["name"] != "Widget" {
		t.Fatalf("patch = %d %v", code, body)
	}

	code, _ = do(t, ts, "DELETE", fmt.Sprintf("/api/projects/%d", id), nil)
	if code != http.StatusNoContent {
		t.Fatalf("delete = %d", code)
	}
	code, _ = do(t, ts, "GET", fmt.Sprintf("/api/projects/%d", id), nil)
	if code != http.StatusNotFound {
		t.Fatalf("get deleted = %d", code)
	}
}

func TestConfigureFailureReportsState(t *testing.T) {
	ts, mock, st := newTestServer(t)
	mock.OnCommand("git", "rev-parse").Return(".git", nil)
	mock.OnCommand("git", "remote", "get-url").Return("https://github.com/acme/widget.git", nil)

	if err := st.CreateIdentity(&model.Identity{Name: "alice", Email: "a@x"}); err != nil {
		t.Fatal(err)
	}
	code, body := do(t, ts, "POST", "/api/projects", map[string]interface{}{"path": t.TempDir()})
	if code != http.StatusCreated {
		t.Fatalf("add = %d %v", code, body)
	}
	id := int(body["id"].(float64))

	code, body = do(t, ts, "POST", fmt.Sprintf("/api/projects/%d/configure", id), map[string]interface{}{"identity_name": "alice"})
	if code != http.StatusBadRequest || body["state"] != string(model.StateRepoValidated) {
		t.Fatalf("configure = %d %v", code, body)
	}
	if mock.WasCalled("git", "remote", "remove") {
		t.Errorf("remote removed despite invalid url")
	}
}

func TestProjectRoutes_BadInput(t *testing.T) {
	ts, mock, _ := newTestServer(t)
	mock.OnCommand("git", "rev-parse").Return("fatal: not a git repository", errors.New("exit status 128"))

	code, _ := do(t, ts, "GET", "/api/projects/abc", nil)
	if code != http.StatusBadRequest {
		t.Errorf("non-numeric id = %d", code)
	}
	code, _ = do(t, ts, "POST", "/api/projects", map[string]interface{}{"path": t.TempDir()})
	if code != http.StatusBadRequest {
		t.Errorf("non-repo = %d", code)
	}
	code, _ = do(t, ts, "POST", "/api/projects", map[string]interface{}{})
	if code != http.StatusBadRequest {
		t.Errorf("missing path = %d", code)
	}
}

func TestPrerequisites(t *testing.T) {
	ts, mock, _ := newTestServer(t)
	mock.OnCommand("git", "--version").Return("git version 2.43.0", nil)
	mock.OnCommand("ssh", "-V").Return("OpenSSH_9.6p1", nil)
	code, body := do(t, ts, "GET", "/api/system/prerequisites", nil)
	if code != http.StatusOK {
		t.Fatalf("prerequisites = %d", code)
	}
	git := body["git"].(map[string]interface{})
	if git["available"] != true || git["version"] != "git version 2.43.0" {
		t.Errorf("git = %v", git)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		kind error
		want int
	}{
		{errs.ErrNotFound, http.StatusNotFound},
		{errs.ErrIdentityExists, http.StatusConflict},
		{errs.ErrSSHConnectionFailed, http.StatusBadGateway},
		{errs.ErrInvalidRemoteURL, http.StatusBadRequest},
		{errs.ErrRemoteUpdateFailed, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(errs.E("op", tt.kind, nil)); got != tt.want {
			t.Errorf("%v -> %d, want %d", tt.kind, got, tt.want)
		}
	}
}
