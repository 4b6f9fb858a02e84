// Copyright (c) 2026 Gitident Team
// Gitident - Git identity manager
// This source code is licensed under the MIT license found in the LICENSE file.

package model

// ConfigState is the last step a project configuration pass completed.
type ConfigState string

// Configuration states in the order a pass reaches them.
const (
	StateUnvalidated     ConfigState = "unvalidated"
	StateRepoValidated   ConfigState = "repo_validated"
	StateRemoteResolved  ConfigState = "remote_resolved"
	StateRemoteReplaced  ConfigState = "remote_replaced"
	StateIdentityApplied ConfigState = "identity_applied"
	StateConfigured      ConfigState = "configured"
)

var stateOrder = []ConfigState{
	StateUnvalidated,
	StateRepoValidated,
	StateRemoteResolved,
	StateRemoteReplaced,
	StateIdentityApplied,
	StateConfigured,
}

// Next returns the state following s. Configured has no successor.
func (s ConfigState) Next() (ConfigState, bool) {
	for i, st := range stateOrder {
		if st == s && i+1 < len(stateOrder) {
			return stateOrder[i+1], true
		}
	}
	return s, false
}

// Reached reports whether s is at or beyond other.
func (s ConfigState) Reached(other ConfigState) bool {
	return s.index() >= other.index()
}

func (s ConfigState) index() int {
	for i, st := range stateOrder {
		if st == s {
			return i
		}
	}
	// unknown or empty states count as unvalidated
	return 0
}
