// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package term

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// ErrNotTerminal is returned if the file descriptor does not refer to a
// terminal.
var ErrNotTerminal = errors.New("not a terminal")

// State holds the terminal attributes as they were before [EnterRawMode].
type State struct {
	termios unix.Termios
}

// MakeRaw returns the given attributes with canonical mode, echo and input
// CR to NL translation disabled. All other attributes are left untouched, so
// applying it more than once yields the same result.
func MakeRaw(attrs unix.Termios) unix.Termios {
	attrs.Iflag &^= unix.ICRNL
	attrs.Lflag &^= unix.ICANON | unix.ECHO

	return attrs
}

// EnterRawMode applies [MakeRaw] to the terminal referred to by fd.
//
// The change takes effect immediately. It returns the attributes found before
// the change.
func EnterRawMode(fd int) (*State, error) {
	if !term.IsTerminal(fd) {
		return nil, ErrNotTerminal
	}

	attrs, err := unix.IoctlGetTermios(fd, ioctlReadTermios)
	if err != nil {
		return nil, fmt.Errorf("get attributes: %w", err)
	}

	state := &State{termios: *attrs}

	raw := MakeRaw(*attrs)

	err = unix.IoctlSetTermios(fd, ioctlWriteTermios, &raw)
	if err != nil {
		return nil, fmt.Errorf("set attributes: %w", err)
	}

	return state, nil
}
