// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package machine_test

import (
	"testing"

	"github.com/aibor/linuxvm/internal/machine"
	"github.com/aibor/linuxvm/internal/sys"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	imgs := createImages(t)
	stdin, stdout := consolePipe(t)

	valid := func() *machine.Config {
		return &machine.Config{
			CPUCount:   2,
			MemorySize: 2 << 30,
			BootLoader: &machine.BootLoader{
				KernelPath:  imgs.kernel,
				CommandLine: "console=hvc0 root=/dev/vda rw",
			},
			ConsolePorts: []machine.SerialPort{{
				Attachment: machine.FileHandleAttachment{
					Read:  stdin,
					Write: stdout,
				},
			}},
			StorageDevices: []machine.StorageDevice{
				{ImagePath: imgs.root},
			},
			NetworkDevices: []machine.NetworkDevice{
				{Attachment: machine.NetworkAttachmentNAT},
			},
		}
	}

	tests := []struct {
		name        string
		modify      func(cfg *machine.Config)
		expectedErr error
	}{
		{
			name:   "valid",
			modify: func(_ *machine.Config) {},
		},
		{
			name:        "no boot loader",
			modify:      func(cfg *machine.Config) { cfg.BootLoader = nil },
			expectedErr: machine.ErrNoBootLoader,
		},
		{
			name: "empty kernel path",
			modify: func(cfg *machine.Config) {
				cfg.BootLoader.KernelPath = ""
			},
			expectedErr: sys.ErrEmptyPath,
		},
		{
			name: "initrd is a directory",
			modify: func(cfg *machine.Config) {
				cfg.BootLoader.InitrdPath = t.TempDir()
			},
			expectedErr: sys.ErrNotRegularFile,
		},
		{
			name: "empty storage path",
			modify: func(cfg *machine.Config) {
				cfg.StorageDevices[0].ImagePath = ""
			},
			expectedErr: machine.ErrEmptyPath,
		},
		{
			name:        "zero cpus",
			modify:      func(cfg *machine.Config) { cfg.CPUCount = 0 },
			expectedErr: machine.ErrInvalidCPUCount,
		},
		{
			name:        "zero memory",
			modify:      func(cfg *machine.Config) { cfg.MemorySize = 0 },
			expectedErr: machine.ErrInvalidMemorySize,
		},
		{
			name: "two consoles",
			modify: func(cfg *machine.Config) {
				cfg.ConsolePorts = append(cfg.ConsolePorts, cfg.ConsolePorts[0])
			},
			expectedErr: machine.ErrTooManyConsoles,
		},
		{
			name: "console without write handle",
			modify: func(cfg *machine.Config) {
				cfg.ConsolePorts[0].Attachment.Write = nil
			},
			expectedErr: machine.ErrNoConsoleHandles,
		},
		{
			name: "unknown attachment",
			modify: func(cfg *machine.Config) {
				cfg.NetworkDevices[0].Attachment = machine.NetworkAttachmentNone
			},
			expectedErr: machine.ErrUnknownAttachment,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.modify(cfg)

			validator := &countingValidator{}

			err := machine.Validate(cfg, validator)
			require.ErrorIs(t, err, tt.expectedErr)

			if tt.expectedErr == nil {
				assert.True(t, cfg.Validated(), "validated")
				assert.Equal(t, 1, validator.calls, "platform asked")

				return
			}

			require.ErrorIs(t, err, &machine.ConfigError{})
			assert.False(t, cfg.Validated(), "not validated")
			assert.Zero(t, validator.calls, "platform not asked")
		})
	}
}

func TestValidate_PlatformSeesCheckedConfig(t *testing.T) {
	imgs := createImages(t)

	cfg := &machine.Config{
		CPUCount:   1,
		MemorySize: 1 << 30,
		BootLoader: &machine.BootLoader{KernelPath: imgs.kernel},
	}

	var seen *machine.Config

	err := machine.Validate(cfg, validatorFunc(func(c *machine.Config) error {
		seen = c
		assert.False(t, c.Validated(), "not yet marked validated")

		return nil
	}))
	require.NoError(t, err)
	assert.Same(t, cfg, seen)
}

func TestConfig_Validated(t *testing.T) {
	var cfg *machine.Config
	assert.False(t, cfg.Validated(), "nil config")
	assert.False(t, (&machine.Config{}).Validated(), "zero config")
}

func TestConfigError(t *testing.T) {
	err := &machine.ConfigError{Op: "check", Err: machine.ErrNoBootLoader}

	assert.Equal(t, "config: check: no boot loader", err.Error())
	require.ErrorIs(t, err, machine.ErrNoBootLoader)
	require.ErrorIs(t, err, &machine.ConfigError{})
	assert.NotErrorIs(t, assert.AnError, &machine.ConfigError{})
}
