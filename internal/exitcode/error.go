// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package exitcode defines the exit codes of the command.
//
// Codes other than [OK] and [Usage] follow sysexits(3).
package exitcode

import (
	"errors"
	"fmt"
)

// Exit codes.
const (
	OK = 0

	// Invalid command line usage.
	Usage = 2

	// The guest could not be started.
	Unavailable = 69

	// The guest failed after it was started or an internal error occurred.
	Software = 70

	// The machine configuration is invalid.
	Config = 78
)

// Error carries the exit code the process should end with.
type Error struct {
	Code int
	Err  error
}

// Wrap returns an [Error] with the given code for the given error. It returns
// nil if the error is nil.
func Wrap(code int, err error) error {
	if err == nil {
		return nil
	}

	return &Error{Code: code, Err: err}
}

// Error implements the [error] interface.
func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit code %d", e.Code)
	}

	return e.Err.Error()
}

// Is implements the [errors.Is] interface.
func (*Error) Is(other error) bool {
	_, ok := other.(*Error)
	return ok
}

// Unwrap implements the [errors.Unwrap] interface.
func (e *Error) Unwrap() error {
	return e.Err
}

// From returns the exit code for the given error.
//
// If the error is nil, the exit code is [OK]. If the error is an [Error] the
// exit code is its code. Otherwise the exit code is [Software].
func From(err error) int {
	if err == nil {
		return OK
	}

	var exitErr *Error
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	return Software
}
