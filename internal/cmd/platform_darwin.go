// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"github.com/aibor/linuxvm/internal/machine"
	"github.com/aibor/linuxvm/internal/vm"
	"github.com/aibor/linuxvm/internal/vz"
)

// newPlatform returns the Virtualization.framework platform and its default
// console device. QEMU flags are ignored.
func newPlatform(_ *flags, _ IO) (vm.Platform, string, error) {
	return vz.NewPlatform(), machine.DefaultConsoleDevice, nil
}
