// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package machine_test

import (
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/aibor/linuxvm/internal/machine"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpec_KernelCommandLine(t *testing.T) {
	tests := []struct {
		name     string
		spec     machine.Spec
		expected string
	}{
		{
			name:     "defaults",
			expected: "console=hvc0 root=/dev/vda rw",
		},
		{
			name: "custom devices",
			spec: machine.Spec{
				ConsoleDevice: "ttyS0",
				RootDevice:    "/dev/sda1",
			},
			expected: "console=ttyS0 root=/dev/sda1 rw",
		},
		{
			name: "extra args",
			spec: machine.Spec{
				ExtraKernelArgs: []string{"quiet", "init=/bin/sh"},
			},
			expected: "console=hvc0 root=/dev/vda rw quiet init=/bin/sh",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.spec.KernelCommandLine())
		})
	}
}

func TestBuild(t *testing.T) {
	imgs := createImages(t)
	stdin, stdout := consolePipe(t)
	mac := net.HardwareAddr{0x52, 0x54, 0x00, 0x12, 0x34, 0x56}

	validator := &countingValidator{}

	cfg, err := machine.Build(machine.Spec{
		CPUCount:      2,
		MemorySize:    2 << 30,
		KernelPath:    imgs.kernel,
		InitrdPath:    imgs.initrd,
		ConsoleInput:  stdin,
		ConsoleOutput: stdout,
		RootDisk:      machine.Disk{Path: imgs.root},
		Disks: []machine.Disk{
			{Path: imgs.data, ReadOnly: true},
		},
		MACAddress: mac,
	}, validator)
	require.NoError(t, err)

	assert.True(t, cfg.Validated(), "validated")
	assert.Equal(t, 1, validator.calls, "platform validation calls")
	assert.NotEqual(t, uuid.Nil, cfg.ID, "id")
	assert.Equal(t, uint(2), cfg.CPUCount)
	assert.Equal(t, uint64(2147483648), cfg.MemorySize)
	assert.Equal(t, &machine.BootLoader{
		KernelPath:  imgs.kernel,
		InitrdPath:  imgs.initrd,
		CommandLine: "console=hvc0 root=/dev/vda rw",
	}, cfg.BootLoader)

	console, ok := cfg.Console()
	require.True(t, ok, "console present")
	assert.Same(t, stdin, console.Attachment.Read)
	assert.Same(t, stdout, console.Attachment.Write)

	assert.Equal(t, []machine.StorageDevice{
		{ImagePath: imgs.root},
		{ImagePath: imgs.data, ReadOnly: true},
	}, cfg.StorageDevices)

	assert.Equal(t, []machine.NetworkDevice{
		{Attachment: machine.NetworkAttachmentNAT, MACAddress: mac},
	}, cfg.NetworkDevices)
}

func TestBuild_Network(t *testing.T) {
	imgs := createImages(t)

	tests := []struct {
		name        string
		attachment  machine.NetworkAttachment
		iface       string
		expected    []machine.NetworkDevice
		expectedErr error
	}{
		{
			name: "default nat",
			expected: []machine.NetworkDevice{
				{Attachment: machine.NetworkAttachmentNAT},
			},
		},
		{
			name:       "none",
			attachment: machine.NetworkAttachmentNone,
		},
		{
			name:       "bridged",
			attachment: machine.NetworkAttachmentBridged,
			iface:      "br0",
			expected: []machine.NetworkDevice{
				{Attachment: machine.NetworkAttachmentBridged, Interface: "br0"},
			},
		},
		{
			name:        "bridged without interface",
			attachment:  machine.NetworkAttachmentBridged,
			expectedErr: machine.ErrNoInterface,
		},
		{
			name:        "unknown",
			attachment:  "vmnet",
			expectedErr: machine.ErrUnknownAttachment,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := machine.Build(machine.Spec{
				CPUCount:         1,
				MemorySize:       1 << 30,
				KernelPath:       imgs.kernel,
				RootDisk:         machine.Disk{Path: imgs.root},
				Network:          tt.attachment,
				NetworkInterface: tt.iface,
			}, &countingValidator{})
			require.ErrorIs(t, err, tt.expectedErr)

			if tt.expectedErr != nil {
				require.ErrorIs(t, err, &machine.ConfigError{})
				return
			}

			assert.Equal(t, tt.expected, cfg.NetworkDevices)
		})
	}
}

func TestBuild_Errors(t *testing.T) {
	imgs := createImages(t)
	missing := filepath.Join(t.TempDir(), "missing.img")

	tests := []struct {
		name            string
		spec            machine.Spec
		validatorErr    error
		expectedErr     error
		expectedCalls   int
		expectedMessage string
	}{
		{
			name: "root image missing",
			spec: machine.Spec{
				CPUCount:   2,
				MemorySize: 2 << 30,
				KernelPath: imgs.kernel,
				RootDisk:   machine.Disk{Path: missing},
			},
			expectedErr:     os.ErrNotExist,
			expectedMessage: "config: storage device 0: open image",
		},
		{
			name: "no root image",
			spec: machine.Spec{
				CPUCount:   2,
				MemorySize: 2 << 30,
				KernelPath: imgs.kernel,
			},
			expectedErr: machine.ErrEmptyPath,
		},
		{
			name: "additional disk missing",
			spec: machine.Spec{
				CPUCount:   2,
				MemorySize: 2 << 30,
				KernelPath: imgs.kernel,
				RootDisk:   machine.Disk{Path: imgs.root},
				Disks:      []machine.Disk{{Path: missing, ReadOnly: true}},
			},
			expectedErr:     os.ErrNotExist,
			expectedMessage: "config: storage device 1: open image",
		},
		{
			name: "kernel missing",
			spec: machine.Spec{
				CPUCount:   2,
				MemorySize: 2 << 30,
				KernelPath: missing,
				RootDisk:   machine.Disk{Path: imgs.root},
			},
			expectedErr: os.ErrNotExist,
		},
		{
			name: "zero cpus",
			spec: machine.Spec{
				MemorySize: 2 << 30,
				KernelPath: imgs.kernel,
				RootDisk:   machine.Disk{Path: imgs.root},
			},
			expectedErr: machine.ErrInvalidCPUCount,
		},
		{
			name: "platform rejects",
			spec: machine.Spec{
				CPUCount:   2,
				MemorySize: 2 << 30,
				KernelPath: imgs.kernel,
				RootDisk:   machine.Disk{Path: imgs.root},
			},
			validatorErr:    assert.AnError,
			expectedErr:     assert.AnError,
			expectedCalls:   1,
			expectedMessage: "config: platform: ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			validator := &countingValidator{err: tt.validatorErr}

			cfg, err := machine.Build(tt.spec, validator)
			require.ErrorIs(t, err, &machine.ConfigError{})
			require.ErrorIs(t, err, tt.expectedErr)
			assert.Nil(t, cfg)
			assert.Equal(t, tt.expectedCalls, validator.calls,
				"platform validation calls")

			if tt.expectedMessage != "" {
				assert.Contains(t, err.Error(), tt.expectedMessage)
			}
		})
	}
}
