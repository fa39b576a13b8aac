// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: MIT

package qemu

import (
	"errors"
	"os/exec"
)

var (
	// ErrTransportTypeInvalid is returned if a transport type is invalid.
	ErrTransportTypeInvalid = errors.New("unknown transport type")

	// ErrArgumentCollision is returned if two [Argument]s collide.
	ErrArgumentCollision = errors.New("colliding args")

	// ErrNotBridge is returned if the host interface of a bridged network
	// device is not a bridge.
	ErrNotBridge = errors.New("interface is not a bridge")

	// ErrBridgeNotSupported is returned if bridged networking is not
	// available on the host.
	ErrBridgeNotSupported = errors.New("bridged networking not supported")

	// ErrExitedBeforeStart is returned if QEMU exited before the guest was
	// resumed.
	ErrExitedBeforeStart = errors.New("qemu exited before guest started")

	// ErrGuestPanic is returned if the guest kernel panicked.
	ErrGuestPanic = errors.New("guest system panicked")
)

// ArgumentError indicates an issue with an input argument.
type ArgumentError struct {
	msg string
}

// Error implements the [error] interface.
func (e *ArgumentError) Error() string {
	return "argument error: " + e.msg
}

// Is implements the [errors.Is] interface.
func (*ArgumentError) Is(other error) bool {
	_, ok := other.(*ArgumentError)
	return ok
}

// CommandError wraps a failed QEMU process.
type CommandError struct {
	Err      error
	ExitCode int
}

func newCommandError(err error) *CommandError {
	cmdErr := &CommandError{Err: err, ExitCode: -1}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		cmdErr.ExitCode = exitErr.ExitCode()
	}

	return cmdErr
}

// Error implements the [error] interface.
func (e *CommandError) Error() string {
	return "qemu: " + e.Err.Error()
}

// Is implements the [errors.Is] interface.
func (*CommandError) Is(other error) bool {
	_, ok := other.(*CommandError)
	return ok
}

// Unwrap implements the [errors.Unwrap] interface.
func (e *CommandError) Unwrap() error {
	return e.Err
}
