// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

//go:build !darwin

package cmd

import (
	"github.com/aibor/linuxvm/internal/qemu"
	"github.com/aibor/linuxvm/internal/vm"
)

// newPlatform returns the QEMU platform for the requested architecture and its
// default console device, which depends on the transport type.
func newPlatform(flags *flags, cfg IO) (vm.Platform, string, error) {
	platform, err := qemu.NewPlatform(flags.qemuSpec(), flags.Arch)
	if err != nil {
		return nil, "", err //nolint:wrapcheck
	}

	platform.Stderr = cfg.Stderr

	return platform, platform.Spec.TransportType.ConsoleDeviceName(0), nil
}
