// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: MIT

package qemu

import (
	"fmt"
	"slices"
	"strings"
)

// Argument is a QEMU argument with or without value.
//
// Unless created with [RepeatableArg], its name must be unique in an argument
// list.
type Argument struct {
	name       string
	value      string
	repeatable bool
}

// String implements [fmt.Stringer].
func (a Argument) String() string {
	s := "-" + a.name
	if a.value != "" {
		s += " " + a.value
	}

	return s
}

// Name returns the name of the [Argument].
func (a Argument) Name() string {
	return a.name
}

// Value returns the value of the [Argument].
func (a Argument) Value() string {
	return a.value
}

// Unique returns if the name of the [Argument] must be unique in an argument
// list.
func (a Argument) Unique() bool {
	return !a.repeatable
}

// Collides returns true if both [Argument]s must not be present in the same
// argument list.
//
// Arguments with unique names collide by name. Repeatable arguments only
// collide if they have the same value as well.
func (a Argument) Collides(other Argument) bool {
	if a.name != other.name {
		return false
	}

	if a.repeatable && other.repeatable {
		return a.value == other.value
	}

	return true
}

// UniqueArg returns a new [Argument] with the given name that can be present
// in an argument list only once. Multiple values are joined by comma.
func UniqueArg(name string, value ...string) Argument {
	return Argument{
		name:  name,
		value: strings.Join(value, ","),
	}
}

// RepeatableArg returns a new [Argument] with the given name that can be
// present in an argument list multiple times with different values. Multiple
// values are joined by comma.
func RepeatableArg(name string, value ...string) Argument {
	return Argument{
		name:       name,
		value:      strings.Join(value, ","),
		repeatable: true,
	}
}

// escapeOptionValue escapes commas in a value that is part of a comma
// separated option list, so it is not split by QEMU.
func escapeOptionValue(value string) string {
	return strings.ReplaceAll(value, ",", ",,")
}

// BuildArgumentStrings compiles the [Argument]s into a slice of strings which
// can be used with [exec.Command].
//
// It returns an error wrapping [ErrArgumentCollision] if any two [Argument]s
// collide.
func BuildArgumentStrings(args []Argument) ([]string, error) {
	argStrings := make([]string, 0, 2*len(args))

	for idx, arg := range args {
		if i := slices.IndexFunc(args[:idx], arg.Collides); i != -1 {
			return nil, fmt.Errorf(
				"%w: %s, %s",
				ErrArgumentCollision,
				args[i].String(),
				arg.String(),
			)
		}

		argStrings = append(argStrings, "-"+arg.name)

		if arg.value != "" {
			argStrings = append(argStrings, arg.value)
		}
	}

	return argStrings, nil
}
