// SPDX-FileCopyrightText: 2024 Tobias BÃ¶hm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/aibor/linuxvm/internal/machine"
	"github.com/aibor/linuxvm/internal/qemu"
	"github.com/aibor/linuxvm/internal/sys"
	"github.com/docker/go-units"
)

const (
	diskOptionReadOnly  = "ro"
	diskOptionReadWrite = "rw"
)

// FilePath is a [flag.Value] for file paths. Paths are made absolute.
type FilePath string

func (f *FilePath) String() string {
	return string(*f)
}

func (f *FilePath) Set(s string) error {
	path, err := sys.AbsolutePath(s)
	if err != nil {
		return err //nolint:wrapcheck
	}

	*f = FilePath(path)

	return nil
}

// diskList is a [flag.Value] for disks in the format "path[,ro|rw]". An empty
// value clears the list.
type diskList []machine.Disk

func (d *diskList) String() string {
	disks := make([]string, 0, len(*d))
	for _, disk := range *d {
		disks = append(disks, formatDisk(disk))
	}

	return strings.Join(disks, " ")
}

func (d *diskList) Set(s string) error {
	if s == "" {
		*d = nil
		return nil
	}

	disk, err := parseDisk(s)
	if err != nil {
		return err
	}

	*d = append(*d, disk)

	return nil
}

func parseDisk(s string) (machine.Disk, error) {
	path, opts, _ := strings.Cut(s, ",")

	absPath, err := sys.AbsolutePath(path)
	if err != nil {
		return machine.Disk{}, err //nolint:wrapcheck
	}

	disk := machine.Disk{Path: absPath}

	if opts == "" {
		return disk, nil
	}

	for opt := range strings.SplitSeq(opts, ",") {
		switch opt {
		case diskOptionReadOnly:
			disk.ReadOnly = true
		case diskOptionReadWrite:
			disk.ReadOnly = false
		default:
			return machine.Disk{}, fmt.Errorf("%w: %q", ErrUnknownDiskOption, opt)
		}
	}

	return disk, nil
}

func formatDisk(disk machine.Disk) string {
	if disk.ReadOnly {
		return disk.Path + "," + diskOptionReadOnly
	}

	return disk.Path
}

// stringList is a [flag.Value] that collects all values. An empty value
// clears the list.
type stringList []string

func (s *stringList) String() string {
	return strings.Join(*s, " ")
}

func (s *stringList) Set(value string) error {
	if value == "" {
		*s = nil
		return nil
	}

	*s = append(*s, value)

	return nil
}

type limitedUintValue struct {
	Value *uint64
	Lower uint64
	Upper uint64
}

func (u *limitedUintValue) String() string {
	if u.Value == nil {
		return "0"
	}

	return strconv.FormatUint(*u.Value, 10)
}

func (u *limitedUintValue) Set(s string) error {
	value, err := strconv.ParseUint(s, 10, 0)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}

	if u.Lower > 0 && value < u.Lower {
		return fmt.Errorf("%d < %d: %w", value, u.Lower, ErrValueOutOfRange)
	}

	if u.Upper > 0 && value > u.Upper {
		return fmt.Errorf("%d > %d: %w", value, u.Upper, ErrValueOutOfRange)
	}

	*u.Value = value

	return nil
}

// memorySize is a [flag.Value] for memory sizes like "512M" or "2GiB". Units
// are binary, so "1G" is 1024 MiB.
type memorySize struct {
	Value *uint64
	Lower uint64
}

func (m *memorySize) String() string {
	if m.Value == nil {
		return "0"
	}

	return units.BytesSize(float64(*m.Value))
}

func (m *memorySize) Set(s string) error {
	size, err := units.RAMInBytes(s)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}

	if size < 0 || uint64(size) < m.Lower {
		return fmt.Errorf(
			"%s < %s: %w",
			units.BytesSize(float64(size)),
			units.BytesSize(float64(m.Lower)),
			ErrValueOutOfRange,
		)
	}

	*m.Value = uint64(size)

	return nil
}

// macAddress is a [flag.Value] for EUI-48 MAC addresses.
type macAddress struct {
	Value *net.HardwareAddr
}

func (m *macAddress) String() string {
	if m.Value == nil || len(*m.Value) == 0 {
		return ""
	}

	return m.Value.String()
}

func (m *macAddress) Set(s string) error {
	if s == "" {
		*m.Value = nil
		return nil
	}

	addr, err := net.ParseMAC(s)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}

	if len(addr) != 6 { //nolint:mnd
		return ErrInvalidMACAddress
	}

	*m.Value = addr

	return nil
}

// transportType is a [flag.Value] for [qemu.TransportType]. Unset means
// the default for the host architecture is used.
type transportType struct {
	Value *qemu.TransportType
}

func (t *transportType) String() string {
	if t.Value == nil {
		return ""
	}

	return string(*t.Value)
}

func (t *transportType) Set(s string) error {
	if s == "" {
		*t.Value = ""
		return nil
	}

	return t.Value.UnmarshalText([]byte(s)) //nolint:wrapcheck
}

// qemuArgList is a [flag.Value] for additional QEMU arguments in the format
// "name[=value]". A leading dash of the name is optional. An empty value
// clears the list.
type qemuArgList []qemu.Argument

func (q *qemuArgList) String() string {
	args := make([]string, 0, len(*q))
	for _, arg := range *q {
		args = append(args, arg.String())
	}

	return strings.Join(args, " ")
}

func (q *qemuArgList) Set(s string) error {
	if s == "" {
		*q = nil
		return nil
	}

	name, value, hasValue := strings.Cut(s, "=")

	name = strings.TrimPrefix(name, "-")
	if name == "" {
		return fmt.Errorf("%w: %q", ErrInvalidQEMUArg, s)
	}

	arg := qemu.RepeatableArg(name)
	if hasValue {
		arg = qemu.RepeatableArg(name, value)
	}

	*q = append(*q, arg)

	return nil
}
