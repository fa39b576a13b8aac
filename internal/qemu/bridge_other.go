// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

//go:build !linux

package qemu

func checkBridge(_ string) error {
	return ErrBridgeNotSupported
}
