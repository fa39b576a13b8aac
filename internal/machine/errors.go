// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package machine

import (
	"errors"
	"fmt"
)

var (
	// ErrNoBootLoader is returned if a config has no boot loader.
	ErrNoBootLoader = errors.New("no boot loader")

	// ErrInvalidCPUCount is returned if the CPU count is not positive.
	ErrInvalidCPUCount = errors.New("cpu count must be positive")

	// ErrInvalidMemorySize is returned if the memory size is not positive.
	ErrInvalidMemorySize = errors.New("memory size must be positive")

	// ErrEmptyPath is returned if a required file path is empty.
	ErrEmptyPath = errors.New("path must not be empty")

	// ErrTooManyConsoles is returned if more than one console port is
	// configured.
	ErrTooManyConsoles = errors.New("at most one console port supported")

	// ErrNoConsoleHandles is returned if a console port misses one of its
	// file handles.
	ErrNoConsoleHandles = errors.New("console port needs read and write handle")

	// ErrUnknownAttachment is returned for unknown network attachment kinds.
	ErrUnknownAttachment = errors.New("unknown network attachment")

	// ErrNoInterface is returned if a bridged network device has no host
	// interface.
	ErrNoInterface = errors.New("bridged attachment requires an interface")

	// ErrNotValidated is returned if a config is used that did not pass
	// [Validate].
	ErrNotValidated = errors.New("config not validated")
)

// ConfigError wraps any error that makes a [Config] unusable.
//
// It is never transient, so retrying with the same input fails the same way.
type ConfigError struct {
	Op  string
	Err error
}

// Error implements the [error] interface.
func (e *ConfigError) Error() string {
	if e.Op == "" {
		return "config: " + e.Err.Error()
	}

	return fmt.Sprintf("config: %s: %v", e.Op, e.Err)
}

// Is implements the [errors.Is] interface.
func (*ConfigError) Is(other error) bool {
	_, ok := other.(*ConfigError)
	return ok
}

// Unwrap implements the [errors.Unwrap] interface.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

func configError(op string, err error) error {
	var cfgErr *ConfigError
	if errors.As(err, &cfgErr) {
		return err
	}

	return &ConfigError{Op: op, Err: err}
}
