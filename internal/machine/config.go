// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package machine

import (
	"fmt"
	"net"
	"os"

	"github.com/aibor/linuxvm/internal/sys"
	"github.com/google/uuid"
)

// Config describes the virtual hardware of a single guest.
//
// It must not be modified once it passed [Validate].
type Config struct {
	// ID identifies the machine towards the hypervisor.
	ID uuid.UUID

	// Number of virtual CPUs.
	CPUCount uint

	// Guest memory in bytes.
	MemorySize uint64

	BootLoader *BootLoader

	// ConsolePorts are serial ports used as guest console. At most one is
	// supported.
	ConsolePorts []SerialPort

	StorageDevices []StorageDevice
	NetworkDevices []NetworkDevice

	validated bool
}

// Validated returns true if the config passed [Validate].
func (c *Config) Validated() bool {
	return c != nil && c.validated
}

// Console returns the console port, if any.
func (c *Config) Console() (SerialPort, bool) {
	if len(c.ConsolePorts) == 0 {
		return SerialPort{}, false
	}

	return c.ConsolePorts[0], true
}

// Check validates the config for structural consistency. It does not ask any
// hypervisor if it can realize the config. Use [Validate] for that.
func (c *Config) Check() error {
	if c.CPUCount == 0 {
		return ErrInvalidCPUCount
	}

	if c.MemorySize == 0 {
		return ErrInvalidMemorySize
	}

	if c.BootLoader == nil {
		return ErrNoBootLoader
	}

	err := c.BootLoader.check()
	if err != nil {
		return fmt.Errorf("boot loader: %w", err)
	}

	if len(c.ConsolePorts) > 1 {
		return ErrTooManyConsoles
	}

	for _, port := range c.ConsolePorts {
		if port.Attachment.Read == nil || port.Attachment.Write == nil {
			return ErrNoConsoleHandles
		}
	}

	for idx, dev := range c.StorageDevices {
		if dev.ImagePath == "" {
			return fmt.Errorf("storage device %d: %w", idx, ErrEmptyPath)
		}
	}

	for idx, dev := range c.NetworkDevices {
		err := dev.check()
		if err != nil {
			return fmt.Errorf("network device %d: %w", idx, err)
		}
	}

	return nil
}

// BootLoader describes how the guest Linux kernel is booted.
type BootLoader struct {
	KernelPath string

	// Optional initial ramdisk.
	InitrdPath string

	// Kernel command line.
	CommandLine string
}

func (b *BootLoader) check() error {
	err := sys.ValidateReadableFile(b.KernelPath)
	if err != nil {
		return fmt.Errorf("kernel: %w", err)
	}

	if b.InitrdPath != "" {
		err := sys.ValidateReadableFile(b.InitrdPath)
		if err != nil {
			return fmt.Errorf("initrd: %w", err)
		}
	}

	return nil
}

// SerialPort is a serial port device of the guest.
type SerialPort struct {
	Attachment FileHandleAttachment
}

// FileHandleAttachment connects a serial port to host file handles. Bytes are
// forwarded as is in both directions.
type FileHandleAttachment struct {
	Read  *os.File
	Write *os.File
}

// StorageDevice is a block device backed by a disk image on the host.
type StorageDevice struct {
	ImagePath string
	ReadOnly  bool
}

// NetworkDevice is a network interface of the guest.
type NetworkDevice struct {
	Attachment NetworkAttachment

	// Host interface for [NetworkAttachmentBridged].
	Interface string

	// Optional, chosen by the hypervisor if not set.
	MACAddress net.HardwareAddr
}

func (n *NetworkDevice) check() error {
	if !n.Attachment.isKnown() {
		return fmt.Errorf("%w: %q", ErrUnknownAttachment, string(n.Attachment))
	}

	if n.Attachment == NetworkAttachmentBridged && n.Interface == "" {
		return ErrNoInterface
	}

	return nil
}

// Validator checks if a hypervisor platform can realize a [Config].
type Validator interface {
	Validate(cfg *Config) error
}

// Validate checks the given config for consistency, first structurally with
// [Config.Check] and then with the given [Validator].
//
// Once it succeeded, the config is marked as validated. All errors are
// returned as [ConfigError].
func Validate(cfg *Config, validator Validator) error {
	err := cfg.Check()
	if err != nil {
		return configError("check", err)
	}

	err = validator.Validate(cfg)
	if err != nil {
		return configError("platform", err)
	}

	cfg.validated = true

	return nil
}
