// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"errors"
	"flag"
	"fmt"
)

var (
	// ErrHelp is returned if help or version information is requested.
	ErrHelp = flag.ErrHelp

	// ErrReadBuildInfo is returned if the build info can not be read.
	ErrReadBuildInfo = errors.New("failed to read build info")

	// ErrValueOutOfRange is returned if a numeric flag value is outside of
	// the allowed range.
	ErrValueOutOfRange = errors.New("value is outside of range")

	// ErrUnknownDiskOption is returned for unknown disk options.
	ErrUnknownDiskOption = errors.New("unknown disk option")

	// ErrInvalidMACAddress is returned if a MAC address is not a 48 bit
	// EUI-48 address.
	ErrInvalidMACAddress = errors.New("mac address must be 6 bytes")

	// ErrInvalidQEMUArg is returned if an additional QEMU argument has no
	// name.
	ErrInvalidQEMUArg = errors.New("qemu argument without name")
)

// ParseArgsError wraps errors that occur during argument parsing.
type ParseArgsError struct {
	msg string
	err error
}

// Error implements the [error] interface.
func (e *ParseArgsError) Error() string {
	if e.err == nil {
		return e.msg
	}

	return fmt.Sprintf("%s: %v", e.msg, e.err)
}

// Is implements the [errors.Is] interface.
func (*ParseArgsError) Is(other error) bool {
	_, ok := other.(*ParseArgsError)
	return ok
}

// Unwrap implements the [errors.Unwrap] interface.
func (e *ParseArgsError) Unwrap() error {
	return e.err
}
