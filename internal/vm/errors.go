// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package vm

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition is returned if an operation is not allowed in the
// current [State].
var ErrInvalidTransition = errors.New("invalid state transition")

// StartError wraps the reason the platform failed to bring the guest up.
type StartError struct {
	Err error
}

// Error implements the [error] interface.
func (e *StartError) Error() string {
	return "start: " + e.Err.Error()
}

// Is implements the [errors.Is] interface.
func (*StartError) Is(other error) bool {
	_, ok := other.(*StartError)
	return ok
}

// Unwrap implements the [errors.Unwrap] interface.
func (e *StartError) Unwrap() error {
	return e.Err
}

// RuntimeError wraps the reason a running guest ended abnormally.
type RuntimeError struct {
	Err error
}

// Error implements the [error] interface.
func (e *RuntimeError) Error() string {
	return "guest: " + e.Err.Error()
}

// Is implements the [errors.Is] interface.
func (*RuntimeError) Is(other error) bool {
	_, ok := other.(*RuntimeError)
	return ok
}

// Unwrap implements the [errors.Unwrap] interface.
func (e *RuntimeError) Unwrap() error {
	return e.Err
}

func transitionError(from State, op string) error {
	return fmt.Errorf("%w: %s in state %s", ErrInvalidTransition, op, from)
}
