// Copyright (c) 2026 Gitident Team
// Gitident - Git identity manager
// This source code is licensed under the MIT license found in the LICENSE file.

package runner

import (
	"context"
	"strings"
	"sync"
)

// MockResponse is a scripted result for MockRunner.
type MockResponse struct {
	Stdout string
	Err    error
}

// MockCall records one invocation of MockRunner.Run.
type MockCall struct {
	WorkDir string
	Command string
	Args    []string
}

// Line returns the call as "command arg1 arg2".
func (c MockCall) Line() string {
	return strings.TrimSpace(c.Command + " " + strings.Join(c.Args, " "))
}

// MockRunner returns scripted responses and records calls.
//
// Lookup order: exact "command args..." key, then longest matching prefix,
// then "*", then DefaultResponse.
type MockRunner struct {
	mu              sync.Mutex
	Responses       map[string]MockResponse
	DefaultResponse MockResponse
	Calls           []MockCall
}

// NewMockRunner returns an empty MockRunner.
func NewMockRunner() *MockRunner {
	return &MockRunner{Responses: make(map[string]MockResponse)}
}

// MockExpectation is returned by OnCommand to set the response.
type MockExpectation struct {
	runner *MockRunner
	key    string
}

// OnCommand starts an expectation for the given command line.
func (m *MockRunner) OnCommand(name string, args ...string) *MockExpectation {
	return &MockExpectation{runner: m, key: strings.TrimSpace(name + " " + strings.Join(args, " "))}
}

// OnAnyCommand starts a wildcard expectation.
func (m *MockRunner) OnAnyCommand() *MockExpectation {
	return &MockExpectation{runner: m, key: "*"}
}

// Return sets the scripted output and error.
func (e *MockExpectation) Return(stdout string, err error) {
	e.runner.mu.Lock()
	defer e.runner.mu.Unlock()
	e.runner.Responses[e.key] = MockResponse{Stdout: stdout, Err: err}
}

// Run implements CommandRunner.
func (m *MockRunner) Run(_ context.Context, dir, name string, args ...string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	call := MockCall{WorkDir: dir, Command: name, Args: args}
	m.Calls = append(m.Calls, call)

	line := call.Line()
	if r, ok := m.Responses[line]; ok {
		return r.Stdout, r.Err
	}
	best := ""
	for k := range m.Responses {
		if k != "*" && strings.HasPrefix(line, k) && len(k) > len(best) {
			best = k
		}
	}
	if best != "" {
		r := m.Responses[best]
		return r.Stdout, r.Err
	}
	if r, ok := m.Responses["*"]; ok {
		return r.Stdout, r.Err
	}
	return m.DefaultResponse.Stdout, m.DefaultResponse.Err
}

// WasCalled reports whether a call starting with the given command line happened.
func (m *MockRunner) WasCalled(name string, args ...string) bool {
	return m.CallCount(name, args...) > 0
}

// CallCount counts calls whose line starts with the given command line.
func (m *MockRunner) CallCount(name string, args ...string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	prefix := strings.TrimSpace(name + " " + strings.Join(args, " "))
	n := 0
	for _, c := range m.Calls {
		if strings.HasPrefix(c.Line(), prefix) {
			n++
		}
	}
	return n
}
