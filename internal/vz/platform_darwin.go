// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package vz

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Code-Hex/vz/v3"
	"github.com/aibor/linuxvm/internal/machine"
	"github.com/aibor/linuxvm/internal/vm"
)

// Platform runs guests with Virtualization.framework. It implements
// [vm.Platform].
type Platform struct{}

// NewPlatform creates a new [Platform].
func NewPlatform() *Platform {
	return &Platform{}
}

// Validate checks that the framework accepts the given config. It implements
// [machine.Validator].
func (*Platform) Validate(cfg *machine.Config) error {
	vzConfig, err := newConfiguration(cfg)
	if err != nil {
		return err
	}

	return validate(vzConfig)
}

// Start creates and starts the guest in the background. It implements
// [vm.Platform].
func (*Platform) Start(
	ctx context.Context,
	cfg *machine.Config,
	notify vm.Notify,
) {
	go run(ctx, cfg, notify)
}

func validate(vzConfig *vz.VirtualMachineConfiguration) error {
	valid, err := vzConfig.Validate()
	if err != nil {
		return err
	}

	if !valid {
		return ErrInvalidConfiguration
	}

	return nil
}

func run(ctx context.Context, cfg *machine.Config, notify vm.Notify) {
	guest, err := newVirtualMachine(cfg)
	if err != nil {
		notify(vm.StartFailed{Err: err})
		return
	}

	// Subscribe before starting, so no state change is missed.
	states := guest.StateChangedNotify()

	err = guest.Start()
	if err != nil {
		notify(vm.StartFailed{Err: fmt.Errorf("start: %w", err)})
		return
	}

	notify(vm.Started{})
	notify(watch(ctx, guest, states))
}

func newVirtualMachine(cfg *machine.Config) (*vz.VirtualMachine, error) {
	vzConfig, err := newConfiguration(cfg)
	if err != nil {
		return nil, err
	}

	err = validate(vzConfig)
	if err != nil {
		return nil, err
	}

	guest, err := vz.NewVirtualMachine(vzConfig)
	if err != nil {
		return nil, fmt.Errorf("create virtual machine: %w", err)
	}

	return guest, nil
}

// watch waits for the guest to reach a final state.
func watch(
	ctx context.Context,
	guest *vz.VirtualMachine,
	states <-chan vz.VirtualMachineState,
) vm.Event {
	for {
		select {
		case state := <-states:
			slog.Debug("Guest state changed", slog.String("state", state.String()))

			if event, final := stateEvent(state); final {
				return event
			}
		case <-ctx.Done():
			if guest.CanStop() {
				_ = guest.Stop()
			}

			return vm.GuestError{Err: ctx.Err()}
		}
	}
}

// stateEvent returns the terminal [vm.Event] for the given state, if it is a
// final state.
func stateEvent(state vz.VirtualMachineState) (vm.Event, bool) {
	switch state {
	case vz.VirtualMachineStateStopped:
		return vm.GuestStopped{}, true
	case vz.VirtualMachineStateError:
		return vm.GuestError{Err: ErrGuestStateError}, true
	default:
		return nil, false
	}
}
