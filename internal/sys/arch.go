// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sys

import (
	"os"
	"runtime"
)

// Arch is a guest architecture supported by the QEMU backend.
type Arch string

// Supported guest architectures.
const (
	AMD64   Arch = "amd64"
	ARM64   Arch = "arm64"
	RISCV64 Arch = "riscv64"
)

// Native is the architecture of the host. Using the same architecture for the
// guest allows using KVM, if available. Use [Arch.KVMAvailable] to check.
const Native Arch = Arch(runtime.GOARCH)

const kvmDevice = "/dev/kvm"

func (a *Arch) String() string {
	return string(*a)
}

// IsNative returns true if the architecture matches the host's.
func (a *Arch) IsNative() bool {
	return Native == *a
}

// KVMAvailable checks if KVM support is available for the architecture.
func (a *Arch) KVMAvailable() bool {
	if !a.IsNative() {
		return false
	}

	f, err := os.OpenFile(kvmDevice, os.O_WRONLY, 0)
	if err != nil {
		return false
	}

	_ = f.Close()

	return true
}

// Set implements [flag.Value].
func (a *Arch) Set(s string) error {
	switch Arch(s) {
	case AMD64, ARM64, RISCV64:
		*a = Arch(s)
	default:
		return ErrArchNotSupported
	}

	return nil
}
