// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aibor/linuxvm/internal/cmd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeMachineFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "machine.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestReadMachineFile(t *testing.T) {
	path := writeMachineFile(t, `
kernel: Image
initrd: /boot/initrd.img
root:
  path: root.img
  readOnly: true
disks:
  - path: data.img
  - path: /srv/ro.img
    readOnly: true
cpus: 4
memory: 1G
append:
  - quiet
network:
  attachment: bridged
  interface: br0
  mac: 52:54:00:12:34:56
qemu:
  arch: arm64
  machine: microvm
  transport: mmio
  noKVM: true
  args:
    - device=virtio-rng-device
`)
	dir := filepath.Dir(path)

	file, err := cmd.ReadMachineFile(path)
	require.NoError(t, err)

	expected := &cmd.MachineFile{
		Kernel: filepath.Join(dir, "Image"),
		Initrd: "/boot/initrd.img",
		Root: &cmd.DiskEntry{
			Path:     filepath.Join(dir, "root.img"),
			ReadOnly: true,
		},
		Disks: []cmd.DiskEntry{
			{Path: filepath.Join(dir, "data.img")},
			{Path: "/srv/ro.img", ReadOnly: true},
		},
		CPUs:   4,
		Memory: "1G",
		Append: []string{"quiet"},
		Network: &cmd.NetworkEntry{
			Attachment: "bridged",
			Interface:  "br0",
			MAC:        "52:54:00:12:34:56",
		},
		QEMU: &cmd.QEMUEntry{
			Arch:      "arm64",
			Machine:   "microvm",
			Transport: "mmio",
			NoKVM:     true,
			Args:      []string{"device=virtio-rng-device"},
		},
	}
	assert.Equal(t, expected, file)

	expectedArgs := []string{
		"-kernel=" + filepath.Join(dir, "Image"),
		"-initrd=/boot/initrd.img",
		"-root=" + filepath.Join(dir, "root.img"),
		"-root-readonly",
		"-disk=" + filepath.Join(dir, "data.img"),
		"-disk=/srv/ro.img,ro",
		"-cpus=4",
		"-memory=1G",
		"-append=quiet",
		"-net=bridged",
		"-bridge=br0",
		"-mac=52:54:00:12:34:56",
		"-arch=arm64",
		"-machine=microvm",
		"-transport=mmio",
		"-nokvm",
		"-qemu-arg=device=virtio-rng-device",
	}
	assert.Equal(t, expectedArgs, file.Args())
}

func TestReadMachineFileErrors(t *testing.T) {
	t.Run("missing", func(t *testing.T) {
		_, err := cmd.ReadMachineFile(filepath.Join(t.TempDir(), "missing.yaml"))
		require.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("unknown field", func(t *testing.T) {
		path := writeMachineFile(t, "kernel: Image\ngpus: 2\n")

		_, err := cmd.ReadMachineFile(path)
		require.ErrorContains(t, err, "gpus")
	})

	t.Run("empty", func(t *testing.T) {
		path := writeMachineFile(t, "")

		file, err := cmd.ReadMachineFile(path)
		require.NoError(t, err)
		assert.Empty(t, file.Args())
	})
}
