// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"runtime/debug"

	"github.com/aibor/linuxvm/internal/machine"
	"github.com/aibor/linuxvm/internal/qemu"
	"github.com/aibor/linuxvm/internal/sys"
)

const (
	name = "linuxvm"

	kernelDefault = "oss-img/Image"
	rootDefault   = "oss-img/root.img"

	cpusDefault = 2
	cpusMin     = 1
	cpusMax     = 64

	memDefault = 2 << 30
	memMin     = 64 << 20

	usageMessage = `Usage of 'linuxvm':
    linuxvm [flags...] [-- kernel args...]

Boots a Linux guest with its console attached to the terminal. The command
returns once the guest shut down.

Using it directly:
	linuxvm -kernel=/path/to/Image -root=/path/to/root.img

Using a machine file:
	linuxvm -config=machine.yaml

All linuxvm flags can also be provided via environment variable LINUXVM_ARGS:
	LINUXVM_ARGS="-kernel=/path/to/Image -debug" linuxvm

All linuxvm flags can also be provided via file ./.linuxvm-args, with one
argument per line.

Precedence is machine file < ./.linuxvm-args < LINUXVM_ARGS < command line.
`
)

type flags struct {
	KernelPath    string
	InitrdPath    string
	RootDisk      machine.Disk
	Disks         []machine.Disk
	NumCPU        uint64
	Memory        uint64
	ConsoleDevice string
	RootDevice    string
	KernelArgs    []string
	Network       machine.NetworkAttachment
	Bridge        string
	MACAddress    net.HardwareAddr
	ConfigFile    string

	Arch          sys.Arch
	QemuBin       string
	Machine       string
	CPUType       string
	NoKVM         bool
	TransportType qemu.TransportType
	QemuArgs      []qemu.Argument

	Debug   bool
	Version bool
}

// newFlags merges the arguments from all sources and parses them.
//
// If a machine file is given, its arguments are prepended, so all other
// sources take precedence.
func newFlags(args []string, output io.Writer) (*flags, error) {
	args, err := MergedArgs(args, os.DirFS("."), localConfigFile)
	if err != nil {
		return nil, err
	}

	// Only the machine file path is of interest here. Errors are reported
	// by the final parse.
	initial, err := parseArgs(args, io.Discard)
	if err == nil && initial.ConfigFile != "" {
		machineFile, err := ReadMachineFile(initial.ConfigFile)
		if err != nil {
			return nil, fmt.Errorf("machine file %s: %w", initial.ConfigFile, err)
		}

		args = append(machineFile.Args(), args...)
	}

	return parseArgs(args, output)
}

func parseArgs(args []string, output io.Writer) (*flags, error) {
	flags := &flags{
		KernelPath: kernelDefault,
		RootDisk: machine.Disk{
			Path: rootDefault,
		},
		NumCPU: cpusDefault,
		Memory: memDefault,
		Arch:   sys.Native,
	}

	flagSet := newFlagSet(flags, output)

	// Parses arguments up to the first one that is not prefixed with a "-" or
	// is "--".
	err := flagSet.Parse(args)
	if err != nil {
		return nil, &ParseArgsError{msg: "flag parse", err: err}
	}

	// With version flag, just print the version and exit. Using [ErrHelp]
	// the main binary is supposed to return with a non error exit code.
	if flags.Version {
		err := printVersionInformation(flagSet.Output())
		return nil, &ParseArgsError{msg: "version requested", err: err}
	}

	// All positional arguments are appended to the kernel command line.
	flags.KernelArgs = append(flags.KernelArgs, flagSet.Args()...)

	return flags, nil
}

func newFlagSet(f *flags, output io.Writer) *flag.FlagSet {
	flagSet := flag.NewFlagSet(name, flag.ContinueOnError)
	flagSet.SetOutput(output)
	flagSet.Usage = func() {
		fmt.Fprint(flagSet.Output(), usageMessage)
		fmt.Fprintln(flagSet.Output(), "\nFlags:")
		flagSet.PrintDefaults()
	}

	flagSet.Var(
		(*FilePath)(&f.KernelPath),
		"kernel",
		"path to kernel to boot (default "+kernelDefault+")",
	)

	flagSet.Var(
		(*FilePath)(&f.InitrdPath),
		"initrd",
		"path to initial ramdisk to boot with",
	)

	flagSet.Var(
		(*FilePath)(&f.RootDisk.Path),
		"root",
		"path to raw root disk image, attached as first disk (default "+
			rootDefault+")",
	)

	flagSet.BoolVar(
		&f.RootDisk.ReadOnly,
		"root-readonly",
		f.RootDisk.ReadOnly,
		"attach root disk image read-only",
	)

	flagSet.Var(
		(*diskList)(&f.Disks),
		"disk",
		"additional raw disk image as \"path[,ro]\". Flag may be used more "+
			"than once. Empty value clears the list.",
	)

	flagSet.Var(
		&limitedUintValue{
			Value: &f.NumCPU,
			Lower: cpusMin,
			Upper: cpusMax,
		},
		"cpus",
		"number of guest CPUs",
	)

	flagSet.Var(
		&memorySize{
			Value: &f.Memory,
			Lower: memMin,
		},
		"memory",
		"guest memory, like 512M or 4G",
	)

	flagSet.StringVar(
		&f.ConsoleDevice,
		"console-device",
		f.ConsoleDevice,
		"guest console device for the kernel command line (default depends "+
			"on platform: hvc0 or ttyS0)",
	)

	flagSet.StringVar(
		&f.RootDevice,
		"root-device",
		machine.DefaultRootDevice,
		"guest root device for the kernel command line",
	)

	flagSet.Var(
		(*stringList)(&f.KernelArgs),
		"append",
		"additional kernel command line argument. Flag may be used more than "+
			"once. Empty value clears the list.",
	)

	flagSet.TextVar(
		&f.Network,
		"net",
		machine.NetworkAttachmentNAT,
		"network attachment: nat, bridged, none",
	)

	flagSet.StringVar(
		&f.Bridge,
		"bridge",
		f.Bridge,
		"host interface for bridged network attachment",
	)

	flagSet.Var(
		&macAddress{Value: &f.MACAddress},
		"mac",
		"MAC address of the guest network device (default random)",
	)

	flagSet.Var(
		(*FilePath)(&f.ConfigFile),
		"config",
		"YAML machine file. Its values have the lowest precedence.",
	)

	flagSet.Var(
		&f.Arch,
		"arch",
		"QEMU guest architecture: amd64, arm64, riscv64. KVM is only used "+
			"for the host architecture (default "+string(sys.Native)+")",
	)

	flagSet.StringVar(
		&f.QemuBin,
		"qemu-bin",
		f.QemuBin,
		"QEMU binary to use (default depends on host arch: qemu-system-*)",
	)

	flagSet.StringVar(
		&f.Machine,
		"machine",
		f.Machine,
		"QEMU machine type to use (default depends on host arch)",
	)

	flagSet.StringVar(
		&f.CPUType,
		"cpu",
		f.CPUType,
		"QEMU CPU type to use (default max)",
	)

	flagSet.BoolVar(
		&f.NoKVM,
		"nokvm",
		f.NoKVM,
		"disable QEMU hardware support (default is enabled if present)",
	)

	flagSet.Var(
		&transportType{Value: &f.TransportType},
		"transport",
		"QEMU device transport type: isa, pci, mmio (default depends on "+
			"host arch)",
	)

	flagSet.Var(
		(*qemuArgList)(&f.QemuArgs),
		"qemu-arg",
		"additional QEMU argument as \"name[=value]\", like "+
			"\"device=virtio-rng-pci\". Flag may be used more than once. "+
			"Empty value clears the list.",
	)

	flagSet.BoolVar(
		&f.Debug,
		"debug",
		f.Debug,
		"enable debug output",
	)

	flagSet.BoolVar(
		&f.Version,
		"version",
		f.Version,
		"show version and exit",
	)

	return flagSet
}

func printVersionInformation(output io.Writer) error {
	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return ErrReadBuildInfo
	}

	fmt.Fprintf(output, "Version: %s\n", buildInfo.Main.Version)

	return ErrHelp
}

// machineSpec returns the [machine.Spec] for the flags. The console is bound
// to the given files.
func (f *flags) machineSpec(
	consoleDevice string,
	stdin, stdout *os.File,
) machine.Spec {
	if f.ConsoleDevice != "" {
		consoleDevice = f.ConsoleDevice
	}

	return machine.Spec{
		CPUCount:         uint(f.NumCPU),
		MemorySize:       f.Memory,
		KernelPath:       f.KernelPath,
		InitrdPath:       f.InitrdPath,
		ConsoleDevice:    consoleDevice,
		RootDevice:       f.RootDevice,
		ExtraKernelArgs:  f.KernelArgs,
		ConsoleInput:     stdin,
		ConsoleOutput:    stdout,
		RootDisk:         f.RootDisk,
		Disks:            f.Disks,
		Network:          f.Network,
		NetworkInterface: f.Bridge,
		MACAddress:       f.MACAddress,
	}
}

// qemuSpec returns the [qemu.CommandSpec] template for the flags.
func (f *flags) qemuSpec() qemu.CommandSpec {
	return qemu.CommandSpec{
		Executable:    f.QemuBin,
		Machine:       f.Machine,
		CPU:           f.CPUType,
		NoKVM:         f.NoKVM,
		TransportType: f.TransportType,
		ExtraArgs:     f.QemuArgs,
	}
}
