// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package qemu

import (
	"fmt"
	"strconv"

	"github.com/aibor/linuxvm/internal/machine"
	"github.com/aibor/linuxvm/internal/sys"
)

const (
	machineTypeMicroVM = "microvm"
	machineTypePC      = "pc"
	machineTypeQ35     = "q35"
	machineTypeVirt    = "virt"
)

const defaultCPU = "max"

const mebibyte = 1 << 20

const consoleID = "con0"

// CommandSpec defines the QEMU command for a guest.
type CommandSpec struct {
	// Path to the qemu-system binary
	Executable string

	// QEMU machine type to use. Depends on the QEMU binary used.
	Machine string

	// CPU type to use. Depends on machine type and QEMU binary used.
	CPU string

	// Disable KVM support.
	NoKVM bool

	// Transport type for devices. This depends on machine type and the
	// kernel. ARM type virt does not support ISA type at all.
	TransportType TransportType

	// ExtraArgs are extra arguments that are passed to the QEMU command.
	// They must not collide with the arguments derived from the config.
	ExtraArgs []Argument

	// Config is the guest's virtual hardware.
	Config *machine.Config

	// Path of the unix socket the QMP monitor listens on. If empty, no
	// monitor is set up.
	MonitorSocket string
}

// AddDefaultsFor adds architecture specific default values to the given spec if
// the fields are not set yet.
func (s *CommandSpec) AddDefaultsFor(arch sys.Arch) error {
	var (
		executable    string
		machineType   string
		transportType TransportType
	)

	switch arch {
	case sys.AMD64:
		executable = "qemu-system-x86_64"
		machineType = machineTypeQ35
		transportType = TransportTypePCI
	case sys.ARM64:
		executable = "qemu-system-aarch64"
		machineType = machineTypeVirt
		transportType = TransportTypeMMIO
	case sys.RISCV64:
		executable = "qemu-system-riscv64"
		machineType = machineTypeVirt
		transportType = TransportTypeMMIO
	default:
		return sys.ErrArchNotSupported
	}

	if s.Executable == "" {
		s.Executable = executable
	}

	if s.Machine == "" {
		s.Machine = machineType
	}

	if s.CPU == "" {
		s.CPU = defaultCPU
	}

	if s.TransportType == "" {
		s.TransportType = transportType
	}

	if !s.NoKVM {
		s.NoKVM = !arch.KVMAvailable()
	}

	return nil
}

// Validate checks for known incompatibilities.
func (s *CommandSpec) Validate() error {
	if !s.TransportType.isKnown() {
		return &ArgumentError{
			"unknown transport type: " + string(s.TransportType),
		}
	}

	switch s.Machine {
	case machineTypeMicroVM:
		if s.TransportType == TransportTypePCI {
			return &ArgumentError{"microvm does not support pci transport"}
		}
	case machineTypeVirt:
		if s.TransportType == TransportTypeISA {
			return &ArgumentError{"virt requires virtio-mmio"}
		}
	case machineTypeQ35, machineTypePC:
		if s.TransportType == TransportTypeMMIO {
			return &ArgumentError{
				s.Machine + " does not work with virtio-mmio",
			}
		}
	}

	if s.Config == nil {
		return &ArgumentError{"no machine config"}
	}

	if s.Config.MemorySize%mebibyte != 0 {
		return &ArgumentError{"memory size must be a multiple of 1 MiB"}
	}

	if !s.TransportType.SupportsVirtio() {
		if len(s.Config.StorageDevices) > 0 {
			return &ArgumentError{"isa transport does not support disks"}
		}

		if len(s.Config.NetworkDevices) > 0 {
			return &ArgumentError{
				"isa transport does not support network devices",
			}
		}
	}

	_, err := BuildArgumentStrings(s.Arguments())
	if err != nil {
		return err
	}

	return nil
}

// Arguments compiles the argument list for the QEMU command.
func (s *CommandSpec) Arguments() []Argument {
	cfg := s.Config
	args := []Argument{
		UniqueArg("kernel", cfg.BootLoader.KernelPath),
	}

	if cfg.BootLoader.InitrdPath != "" {
		args = append(args, UniqueArg("initrd", cfg.BootLoader.InitrdPath))
	}

	if cfg.BootLoader.CommandLine != "" {
		args = append(args, UniqueArg("append", cfg.BootLoader.CommandLine))
	}

	if s.Machine != "" {
		args = append(args, UniqueArg("machine", s.Machine))
	}

	if s.CPU != "" {
		args = append(args, UniqueArg("cpu", s.CPU))
	}

	args = append(args,
		UniqueArg("smp", strconv.FormatUint(uint64(cfg.CPUCount), 10)),
		UniqueArg("m", strconv.FormatUint(cfg.MemorySize/mebibyte, 10)+"M"),
		UniqueArg("uuid", cfg.ID.String()),
	)

	if !s.NoKVM {
		args = append(args, UniqueArg("enable-kvm"))
	}

	args = append(args, s.consoleArgs()...)
	args = append(args, s.storageArgs()...)
	args = append(args, s.networkArgs()...)

	if s.MonitorSocket != "" {
		args = append(args,
			UniqueArg("qmp",
				"unix:"+escapeOptionValue(s.MonitorSocket),
				"server=on",
				"wait=off",
			),
			// Do not run the guest before it is resumed via the monitor.
			UniqueArg("S"),
		)
	}

	args = append(args,
		// Disable video output.
		UniqueArg("display", "none"),
		// Guest must not reboot.
		UniqueArg("no-reboot"),
		// Disable all default devices.
		UniqueArg("nodefaults"),
		// Do not load any user config files.
		UniqueArg("no-user-config"),
	)

	return append(args, s.ExtraArgs...)
}

func (s *CommandSpec) consoleArgs() []Argument {
	if _, exists := s.Config.Console(); !exists {
		return nil
	}

	// QEMU puts the terminal into raw mode itself. With signal=off Ctrl-C is
	// passed to the guest instead of terminating QEMU.
	chardev := RepeatableArg("chardev", "stdio", "id="+consoleID, "signal=off")

	switch s.TransportType {
	case TransportTypeISA:
		return []Argument{
			chardev,
			RepeatableArg("serial", "chardev:"+consoleID),
		}
	case TransportTypePCI, TransportTypeMMIO:
		return []Argument{
			RepeatableArg("device", s.TransportType.virtioDevice("serial")),
			chardev,
			RepeatableArg("device", "virtconsole", "chardev="+consoleID),
		}
	default: // Ignore invalid transport types.
		return nil
	}
}

func (s *CommandSpec) storageArgs() []Argument {
	args := make([]Argument, 0, 2*len(s.Config.StorageDevices))

	for idx, dev := range s.Config.StorageDevices {
		id := fmt.Sprintf("disk%d", idx)

		drive := []string{
			"file=" + escapeOptionValue(dev.ImagePath),
			"format=raw",
			"if=none",
			"id=" + id,
		}
		if dev.ReadOnly {
			drive = append(drive, "readonly=on")
		}

		args = append(args,
			RepeatableArg("drive", drive...),
			RepeatableArg("device",
				s.TransportType.virtioDevice("blk"),
				"drive="+id,
			),
		)
	}

	return args
}

func (s *CommandSpec) networkArgs() []Argument {
	args := make([]Argument, 0, 2*len(s.Config.NetworkDevices))

	for idx, dev := range s.Config.NetworkDevices {
		id := fmt.Sprintf("net%d", idx)

		var netdev []string

		switch dev.Attachment {
		case machine.NetworkAttachmentBridged:
			netdev = []string{
				"bridge",
				"id=" + id,
				"br=" + escapeOptionValue(dev.Interface),
			}
		default:
			netdev = []string{"user", "id=" + id}
		}

		device := []string{
			s.TransportType.virtioDevice("net"),
			"netdev=" + id,
		}
		if len(dev.MACAddress) > 0 {
			device = append(device, "mac="+dev.MACAddress.String())
		}

		args = append(args,
			RepeatableArg("netdev", netdev...),
			RepeatableArg("device", device...),
		)
	}

	return args
}
