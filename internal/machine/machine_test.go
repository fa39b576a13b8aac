// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package machine_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aibor/linuxvm/internal/machine"
	"github.com/stretchr/testify/require"
)

type validatorFunc func(cfg *machine.Config) error

func (f validatorFunc) Validate(cfg *machine.Config) error {
	return f(cfg)
}

// countingValidator counts how often it is asked and fails with err, if set.
type countingValidator struct {
	calls int
	err   error
}

func (v *countingValidator) Validate(_ *machine.Config) error {
	v.calls++
	return v.err
}

type images struct {
	kernel string
	initrd string
	root   string
	data   string
}

func createImages(t *testing.T) images {
	t.Helper()

	dir := t.TempDir()
	imgs := images{
		kernel: filepath.Join(dir, "Image"),
		initrd: filepath.Join(dir, "initrd"),
		root:   filepath.Join(dir, "root.img"),
		data:   filepath.Join(dir, "data.img"),
	}

	for _, path := range []string{imgs.kernel, imgs.initrd, imgs.root, imgs.data} {
		require.NoError(t, os.WriteFile(path, []byte("data"), 0o600))
	}

	return imgs
}

func consolePipe(t *testing.T) (*os.File, *os.File) {
	t.Helper()

	reader, writer, err := os.Pipe()
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = reader.Close()
		_ = writer.Close()
	})

	return reader, writer
}
