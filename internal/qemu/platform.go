// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package qemu

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/aibor/linuxvm/internal/machine"
	"github.com/aibor/linuxvm/internal/sys"
	"github.com/aibor/linuxvm/internal/vm"
	"golang.org/x/sync/errgroup"
)

const monitorSocketName = "qmp.sock"

// Platform runs guests as QEMU processes. It implements [vm.Platform].
type Platform struct {
	// Spec is the template for the QEMU command of each guest. Its Config
	// and MonitorSocket fields are set per guest.
	Spec CommandSpec

	// Stderr receives the error output of QEMU itself. If not set,
	// [os.Stderr] is used.
	Stderr io.Writer
}

// NewPlatform creates a new [Platform] with defaults for the given guest
// architecture added to the given [CommandSpec].
func NewPlatform(spec CommandSpec, arch sys.Arch) (*Platform, error) {
	err := spec.AddDefaultsFor(arch)
	if err != nil {
		return nil, fmt.Errorf("qemu defaults: %w", err)
	}

	return &Platform{Spec: spec}, nil
}

// Validate checks that QEMU can run a guest with the given config. It
// implements [machine.Validator].
func (p *Platform) Validate(cfg *machine.Config) error {
	spec := p.commandSpec(cfg)

	err := spec.Validate()
	if err != nil {
		return err
	}

	_, err = exec.LookPath(spec.Executable)
	if err != nil {
		return fmt.Errorf("qemu binary: %w", err)
	}

	for _, dev := range cfg.NetworkDevices {
		if dev.Attachment != machine.NetworkAttachmentBridged {
			continue
		}

		err := checkBridge(dev.Interface)
		if err != nil {
			return fmt.Errorf("network device: %w", err)
		}
	}

	return nil
}

// Start runs QEMU for the given config in the background. It implements
// [vm.Platform].
func (p *Platform) Start(
	ctx context.Context,
	cfg *machine.Config,
	notify vm.Notify,
) {
	go p.run(ctx, cfg, notify)
}

func (p *Platform) commandSpec(cfg *machine.Config) CommandSpec {
	spec := p.Spec
	spec.Config = cfg

	return spec
}

func (p *Platform) stderr() io.Writer {
	if p.Stderr == nil {
		return os.Stderr
	}

	return p.Stderr
}

func (p *Platform) command(
	ctx context.Context,
	spec CommandSpec,
) (*exec.Cmd, error) {
	args, err := BuildArgumentStrings(spec.Arguments())
	if err != nil {
		return nil, fmt.Errorf("build arguments: %w", err)
	}

	cmd := exec.CommandContext(ctx, spec.Executable, args...)
	cmd.Stderr = p.stderr()

	if port, exists := spec.Config.Console(); exists {
		cmd.Stdin = port.Attachment.Read
		cmd.Stdout = port.Attachment.Write
	}

	return cmd, nil
}

func (p *Platform) run(
	ctx context.Context,
	cfg *machine.Config,
	notify vm.Notify,
) {
	runtimeDir, err := os.MkdirTemp("", "linuxvm-")
	if err != nil {
		notify(vm.StartFailed{Err: fmt.Errorf("create runtime dir: %w", err)})
		return
	}

	defer removeRuntimeDir(runtimeDir)

	spec := p.commandSpec(cfg)
	spec.MonitorSocket = filepath.Join(runtimeDir, monitorSocketName)

	cmd, err := p.command(ctx, spec)
	if err != nil {
		notify(vm.StartFailed{Err: err})
		return
	}

	slog.Debug("QEMU command", slog.String("command", cmd.String()))

	err = cmd.Start()
	if err != nil {
		notify(vm.StartFailed{Err: newCommandError(err)})
		return
	}

	notify(supervise(ctx, cmd, spec.MonitorSocket, notify))
}

// supervise resumes the guest once the monitor is ready and waits for QEMU to
// exit. It returns the terminal event for the guest.
func supervise(
	ctx context.Context,
	cmd *exec.Cmd,
	socket string,
	notify vm.Notify,
) vm.Event {
	var group errgroup.Group

	exited := make(chan struct{})

	group.Go(func() error {
		defer close(exited)
		return cmd.Wait()
	})

	monitor, err := connectMonitor(ctx, socket, exited)
	if errors.Is(err, ErrExitedBeforeStart) {
		waitErr := group.Wait()
		if waitErr != nil {
			err = fmt.Errorf("%w: %w", err, newCommandError(waitErr))
		}

		return vm.StartFailed{Err: err}
	} else if err != nil {
		return abort(cmd, &group, err)
	}

	eventsCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	events, err := monitor.Events(eventsCtx)
	if err != nil {
		_ = monitor.Disconnect()
		return abort(cmd, &group, fmt.Errorf("monitor events: %w", err))
	}

	var status guestStatus

	collected := make(chan struct{})

	// Events must be consumed while commands are running, as the monitor
	// blocks on unread events.
	group.Go(func() error {
		defer close(collected)

		status = collectEvents(events)

		return nil
	})

	group.Go(func() error {
		closeMonitor(monitor, exited, collected)
		return nil
	})

	_, err = monitor.Run(commandCont)
	if err != nil {
		return abort(cmd, &group, fmt.Errorf("resume guest: %w", err))
	}

	notify(vm.Started{})

	return outcome(status, group.Wait())
}

// abort kills QEMU and waits for all goroutines of the group to finish.
func abort(cmd *exec.Cmd, group *errgroup.Group, err error) vm.Event {
	_ = cmd.Process.Kill()
	_ = group.Wait()

	return vm.StartFailed{Err: err}
}

func removeRuntimeDir(path string) {
	slog.Debug("Removing runtime dir", slog.String("path", path))

	err := os.RemoveAll(path)
	if err != nil {
		slog.Error(
			"Failed to remove runtime dir",
			slog.String("path", path),
			slog.Any("error", err),
		)
	}
}
