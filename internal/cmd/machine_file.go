// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// MachineFile is a YAML file describing the guest. Each field corresponds to
// a command line flag. Relative paths are relative to the file's directory.
type MachineFile struct {
	Kernel        string        `yaml:"kernel"`
	Initrd        string        `yaml:"initrd"`
	Root          *DiskEntry    `yaml:"root"`
	Disks         []DiskEntry   `yaml:"disks"`
	CPUs          uint          `yaml:"cpus"`
	Memory        string        `yaml:"memory"`
	ConsoleDevice string        `yaml:"consoleDevice"`
	RootDevice    string        `yaml:"rootDevice"`
	Append        []string      `yaml:"append"`
	Network       *NetworkEntry `yaml:"network"`
	QEMU          *QEMUEntry    `yaml:"qemu"`
}

// DiskEntry is a disk image in a [MachineFile].
type DiskEntry struct {
	Path     string `yaml:"path"`
	ReadOnly bool   `yaml:"readOnly"`
}

// NetworkEntry is the network device in a [MachineFile].
type NetworkEntry struct {
	Attachment string `yaml:"attachment"`
	Interface  string `yaml:"interface"`
	MAC        string `yaml:"mac"`
}

// QEMUEntry holds QEMU specific settings in a [MachineFile].
type QEMUEntry struct {
	Arch      string   `yaml:"arch"`
	Binary    string   `yaml:"binary"`
	Machine   string   `yaml:"machine"`
	CPU       string   `yaml:"cpu"`
	Transport string   `yaml:"transport"`
	NoKVM     bool     `yaml:"noKVM"`
	Args      []string `yaml:"args"`
}

// ReadMachineFile reads and decodes the [MachineFile] at the given path.
// Unknown fields are rejected.
func ReadMachineFile(path string) (*MachineFile, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(content))
	decoder.KnownFields(true)

	var file MachineFile

	err = decoder.Decode(&file)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode: %w", err)
	}

	file.resolvePaths(filepath.Dir(path))

	return &file, nil
}

func (m *MachineFile) resolvePaths(dir string) {
	resolve := func(path string) string {
		if path == "" || filepath.IsAbs(path) {
			return path
		}

		return filepath.Join(dir, path)
	}

	m.Kernel = resolve(m.Kernel)
	m.Initrd = resolve(m.Initrd)

	if m.Root != nil {
		m.Root.Path = resolve(m.Root.Path)
	}

	for idx := range m.Disks {
		m.Disks[idx].Path = resolve(m.Disks[idx].Path)
	}
}

// Args returns the command line arguments equivalent to the file. Unset
// fields are omitted.
func (m *MachineFile) Args() []string {
	args := []string{}

	add := func(name, value string) {
		if value != "" {
			args = append(args, "-"+name+"="+value)
		}
	}

	add("kernel", m.Kernel)
	add("initrd", m.Initrd)

	if m.Root != nil {
		add("root", m.Root.Path)

		if m.Root.ReadOnly {
			args = append(args, "-root-readonly")
		}
	}

	for _, disk := range m.Disks {
		if disk.ReadOnly {
			add("disk", disk.Path+","+diskOptionReadOnly)
		} else {
			add("disk", disk.Path)
		}
	}

	if m.CPUs > 0 {
		add("cpus", strconv.FormatUint(uint64(m.CPUs), 10))
	}

	add("memory", m.Memory)
	add("console-device", m.ConsoleDevice)
	add("root-device", m.RootDevice)

	for _, arg := range m.Append {
		add("append", arg)
	}

	if m.Network != nil {
		add("net", m.Network.Attachment)
		add("bridge", m.Network.Interface)
		add("mac", m.Network.MAC)
	}

	if m.QEMU != nil {
		add("arch", m.QEMU.Arch)
		add("qemu-bin", m.QEMU.Binary)
		add("machine", m.QEMU.Machine)
		add("cpu", m.QEMU.CPU)
		add("transport", m.QEMU.Transport)

		if m.QEMU.NoKVM {
			args = append(args, "-nokvm")
		}

		for _, arg := range m.QEMU.Args {
			add("qemu-arg", arg)
		}
	}

	return args
}
