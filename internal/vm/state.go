// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package vm

// State is the lifecycle state of the guest.
type State int

// Lifecycle states. [StateStopped] and [StateFailed] are terminal.
const (
	StateUnconfigured State = iota
	StateConfigured
	StateStarting
	StateRunning
	StateStopped
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUnconfigured:
		return "unconfigured"
	case StateConfigured:
		return "configured"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal returns true if no transition leaves the state.
func (s State) Terminal() bool {
	return s == StateStopped || s == StateFailed
}
