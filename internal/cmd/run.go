// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aibor/linuxvm/internal/exitcode"
	"github.com/aibor/linuxvm/internal/machine"
	"github.com/aibor/linuxvm/internal/term"
	"github.com/aibor/linuxvm/internal/vm"
	"github.com/docker/go-units"
)

// IO provides input and output details for the command.
//
// Stdin and Stdout are attached to the guest console. They must be files, as
// they are handed to the hypervisor as they are.
type IO struct {
	Stdin  *os.File
	Stdout *os.File
	Stderr io.Writer
}

// enterRawMode puts the terminal into raw mode, so input is passed to the
// guest unprocessed. The previous mode is not restored on exit.
func enterRawMode(stdin *os.File) {
	if stdin == nil {
		return
	}

	_, err := term.EnterRawMode(int(stdin.Fd()))
	if err != nil {
		slog.Warn("Failed to put terminal into raw mode", slog.Any("error", err))
		return
	}

	slog.Debug("Terminal in raw mode")
}

func run(
	ctx context.Context,
	flags *flags,
	platform vm.Platform,
	consoleDevice string,
	cfg IO,
) error {
	enterRawMode(cfg.Stdin)

	spec := flags.machineSpec(consoleDevice, cfg.Stdin, cfg.Stdout)

	machineCfg, err := machine.Build(spec, platform)
	if err != nil {
		return exitcode.Wrap(exitcode.Config, err)
	}

	slog.Debug("Machine configured",
		slog.String("id", machineCfg.ID.String()),
		slog.Uint64("cpus", uint64(machineCfg.CPUCount)),
		slog.String("memory", units.BytesSize(float64(machineCfg.MemorySize))),
		slog.String("cmdline", machineCfg.BootLoader.CommandLine))

	err = vm.Run(ctx, platform, machineCfg)

	return exitcode.Wrap(exitCodeFor(err), err)
}

func exitCodeFor(err error) int {
	switch {
	case err == nil:
		return exitcode.OK
	case errors.Is(err, &machine.ConfigError{}):
		return exitcode.Config
	case errors.Is(err, &vm.StartError{}):
		return exitcode.Unavailable
	default:
		return exitcode.Software
	}
}

func handleParseArgsError(err error) int {
	// [ErrHelp] is returned when help is requested. So exit without error
	// in this case.
	if errors.Is(err, ErrHelp) {
		return exitcode.OK
	}

	// Flag parsing already prints errors, so just exit with usage error.
	if !errors.Is(err, &ParseArgsError{}) {
		slog.Error(err.Error())
	}

	return exitcode.Usage
}

func handleRunError(err error) int {
	code := exitcode.From(err)

	switch code {
	case exitcode.OK:
		slog.Info("Guest stopped")
	case exitcode.Config:
		slog.Error("Invalid machine configuration", slog.Any("error", err))
	case exitcode.Unavailable:
		slog.Error("Failed to start guest", slog.Any("error", err))
	default:
		slog.Error("Guest failed", slog.Any("error", err))
	}

	return code
}

// Run is the main entry point for the CLI command. It returns the exit code
// for the process.
func Run(ctx context.Context, args []string, cfg IO) int {
	setupLogging(cfg.Stderr, false)

	flags, err := newFlags(args, cfg.Stderr)
	if err != nil {
		return handleParseArgsError(err)
	}

	setupLogging(cfg.Stderr, flags.Debug)

	platform, consoleDevice, err := newPlatform(flags, cfg)
	if err != nil {
		err = fmt.Errorf("platform: %w", err)
		return handleRunError(exitcode.Wrap(exitcode.Config, err))
	}

	return handleRunError(run(ctx, flags, platform, consoleDevice, cfg))
}
