// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: MIT

package qemu

import (
	"fmt"
	"slices"
)

const (
	// TransportTypeISA is ISA legacy transport. It provides a serial console
	// only, so no disks and network devices can be attached.
	TransportTypeISA TransportType = "isa"
	// TransportTypePCI is VirtIO PCI transport. Requires kernel built with
	// CONFIG_VIRTIO_PCI.
	TransportTypePCI TransportType = "pci"
	// TransportTypeMMIO is Virtio MMIO transport. Requires kernel built with
	// CONFIG_VIRTIO_MMIO.
	TransportTypeMMIO TransportType = "mmio"
)

// TransportType represents QEMU device transport types.
type TransportType string

func (t TransportType) isKnown() bool {
	knownTransportTypes := []TransportType{
		TransportTypeISA,
		TransportTypePCI,
		TransportTypeMMIO,
	}

	return slices.Contains(knownTransportTypes, t)
}

// String implements [fmt.Stringer].
func (t TransportType) String() string {
	if !t.isKnown() {
		return ""
	}

	return string(t)
}

// MarshalText implements [encoding.TextMarshaler].
func (t TransportType) MarshalText() ([]byte, error) {
	s := t.String()
	if s == "" {
		return nil, ErrTransportTypeInvalid
	}

	return []byte(s), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (t *TransportType) UnmarshalText(text []byte) error {
	tt := TransportType(text)

	if !tt.isKnown() {
		return ErrTransportTypeInvalid
	}

	*t = tt

	return nil
}

// ConsoleDeviceName returns the name of the console device in the guest.
func (t TransportType) ConsoleDeviceName(num uint8) string {
	f := "hvc%d"
	if t == TransportTypeISA {
		f = "ttyS%d"
	}

	return fmt.Sprintf(f, num)
}

// SupportsVirtio returns true if virtio devices can be attached.
func (t TransportType) SupportsVirtio() bool {
	return t == TransportTypePCI || t == TransportTypeMMIO
}

// virtioDevice returns the QEMU device name for the given virtio device
// class, like "blk" or "net".
func (t TransportType) virtioDevice(class string) string {
	switch t {
	case TransportTypePCI:
		return "virtio-" + class + "-pci"
	case TransportTypeMMIO:
		return "virtio-" + class + "-device"
	default:
		return ""
	}
}
