// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sys

import (
	"fmt"
	"os"
	"path/filepath"
)

// AbsolutePath returns the absolute path as resolved by [filepath.Abs].
//
// It returns [ErrEmptyPath] if the given path is empty.
func AbsolutePath(path string) (string, error) {
	if path == "" {
		return "", ErrEmptyPath
	}

	path, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("absolute path: %w", err)
	}

	return path, nil
}

// ValidateReadableFile checks that the given path is a regular file that can
// be opened for reading.
func ValidateReadableFile(path string) error {
	if path == "" {
		return ErrEmptyPath
	}

	file, err := os.Open(path)
	if err != nil {
		return err //nolint:wrapcheck
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return fmt.Errorf("stat: %w", err)
	}

	if !stat.Mode().IsRegular() {
		return ErrNotRegularFile
	}

	return nil
}
