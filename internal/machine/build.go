// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package machine

import (
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/google/uuid"
)

// Default guest device names used on the kernel command line.
const (
	DefaultConsoleDevice = "hvc0"
	DefaultRootDevice    = "/dev/vda"
)

// Disk is an input disk image for [Build].
type Disk struct {
	Path     string
	ReadOnly bool
}

// Spec is the input for [Build].
type Spec struct {
	CPUCount   uint
	MemorySize uint64

	KernelPath string
	InitrdPath string

	// Guest device names for the kernel command line. Defaults are
	// [DefaultConsoleDevice] and [DefaultRootDevice].
	ConsoleDevice string
	RootDevice    string

	// Appended to the generated kernel command line.
	ExtraKernelArgs []string

	// Host file handles the guest console is bound to. The console is only
	// set up if both are given.
	ConsoleInput  *os.File
	ConsoleOutput *os.File

	// The root disk is always the first storage device.
	RootDisk Disk

	// Additional disks, attached in order after the root disk.
	Disks []Disk

	// Network attachment for the single network device. Empty means
	// [NetworkAttachmentNAT]. [NetworkAttachmentNone] disables networking.
	Network          NetworkAttachment
	NetworkInterface string
	MACAddress       net.HardwareAddr
}

// KernelCommandLine returns the kernel command line with the root and console
// devices set.
func (s *Spec) KernelCommandLine() string {
	consoleDevice := s.ConsoleDevice
	if consoleDevice == "" {
		consoleDevice = DefaultConsoleDevice
	}

	rootDevice := s.RootDevice
	if rootDevice == "" {
		rootDevice = DefaultRootDevice
	}

	args := []string{
		"console=" + consoleDevice,
		"root=" + rootDevice,
		"rw",
	}

	args = append(args, s.ExtraKernelArgs...)

	return strings.Join(args, " ")
}

// Build assembles a [Config] from the given spec and validates it with the
// given [Validator].
//
// Disk images are opened with the requested access mode. Any failure is
// returned as [ConfigError] and no [Config] is returned in that case.
func Build(spec Spec, validator Validator) (*Config, error) {
	cfg := &Config{
		ID:         uuid.New(),
		CPUCount:   spec.CPUCount,
		MemorySize: spec.MemorySize,
		BootLoader: &BootLoader{
			KernelPath:  spec.KernelPath,
			InitrdPath:  spec.InitrdPath,
			CommandLine: spec.KernelCommandLine(),
		},
	}

	if spec.ConsoleInput != nil && spec.ConsoleOutput != nil {
		cfg.ConsolePorts = []SerialPort{{
			Attachment: FileHandleAttachment{
				Read:  spec.ConsoleInput,
				Write: spec.ConsoleOutput,
			},
		}}
	}

	disks := append([]Disk{spec.RootDisk}, spec.Disks...)
	for idx, disk := range disks {
		dev, err := newStorageDevice(disk)
		if err != nil {
			return nil, &ConfigError{
				Op:  fmt.Sprintf("storage device %d", idx),
				Err: err,
			}
		}

		cfg.StorageDevices = append(cfg.StorageDevices, dev)
	}

	dev, enabled := newNetworkDevice(spec)
	if enabled {
		cfg.NetworkDevices = append(cfg.NetworkDevices, dev)
	}

	err := Validate(cfg, validator)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// newStorageDevice verifies the disk image can be opened with the requested
// access mode. The image is closed again right away, the hypervisor opens it
// on its own.
func newStorageDevice(disk Disk) (StorageDevice, error) {
	if disk.Path == "" {
		return StorageDevice{}, ErrEmptyPath
	}

	flag := os.O_RDWR
	if disk.ReadOnly {
		flag = os.O_RDONLY
	}

	file, err := os.OpenFile(disk.Path, flag, 0)
	if err != nil {
		return StorageDevice{}, fmt.Errorf("open image: %w", err)
	}

	_ = file.Close()

	return StorageDevice{
		ImagePath: disk.Path,
		ReadOnly:  disk.ReadOnly,
	}, nil
}

func newNetworkDevice(spec Spec) (NetworkDevice, bool) {
	attachment := spec.Network

	switch attachment {
	case NetworkAttachmentNone:
		return NetworkDevice{}, false
	case "":
		attachment = NetworkAttachmentNAT
	}

	return NetworkDevice{
		Attachment: attachment,
		Interface:  spec.NetworkInterface,
		MACAddress: spec.MACAddress,
	}, true
}
