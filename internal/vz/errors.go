// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package vz

import "errors"

var (
	// ErrInterfaceNotFound is returned if the host interface of a bridged
	// network device is not available for bridging.
	ErrInterfaceNotFound = errors.New("interface not available for bridging")

	// ErrInvalidConfiguration is returned if the framework rejects a
	// configuration without giving a reason.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrGuestStateError is returned if the guest stopped because of an
	// internal error.
	ErrGuestStateError = errors.New("guest stopped with error")
)
