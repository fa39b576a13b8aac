// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package qemu

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aibor/linuxvm/internal/vm"
	"github.com/digitalocean/go-qemu/qmp"
)

const (
	monitorPollInterval = 50 * time.Millisecond
	monitorDialTimeout  = time.Second
	monitorCloseTimeout = time.Second
)

// QMP event names.
const (
	eventShutdown      = "SHUTDOWN"
	eventGuestPanicked = "GUEST_PANICKED"
)

var commandCont = []byte(`{"execute":"cont"}`)

// connectMonitor connects to the QMP monitor listening on the given unix
// socket. It retries until the socket accepts connections, QEMU exited or the
// context is done.
func connectMonitor(
	ctx context.Context,
	socket string,
	exited <-chan struct{},
) (*qmp.SocketMonitor, error) {
	ticker := time.NewTicker(monitorPollInterval)
	defer ticker.Stop()

	for {
		monitor, err := qmp.NewSocketMonitor("unix", socket, monitorDialTimeout)
		if err == nil {
			err = monitor.Connect()
			// Disconnect blocks forever without a successful Connect. The
			// connection ends once QEMU is gone.
			if err != nil {
				return nil, fmt.Errorf("monitor handshake: %w", err)
			}

			return monitor, nil
		}

		slog.Debug("Monitor not ready",
			slog.String("socket", socket),
			slog.Any("error", err))

		select {
		case <-exited:
			return nil, ErrExitedBeforeStart
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// closeMonitor disconnects the monitor once QEMU exited.
//
// The monitor's event channel is usually closed by the end of the connection
// QEMU leaves behind. If reading from the connection failed before, the
// monitor only closes it once disconnected, so do that after a grace period
// given for the remaining events to be collected.
func closeMonitor(
	monitor *qmp.SocketMonitor,
	exited <-chan struct{},
	collected <-chan struct{},
) {
	<-exited

	select {
	case <-collected:
	case <-time.After(monitorCloseTimeout):
		slog.Debug("Monitor still open after QEMU exited")
	}

	_ = monitor.Disconnect()
}

// guestStatus is what the monitor reported about the guest.
type guestStatus struct {
	shutdown       bool
	shutdownReason string
	panicked       bool
}

// collectEvents reads all events until the channel is closed, which happens
// once QEMU closed the monitor connection.
func collectEvents(events <-chan qmp.Event) guestStatus {
	var status guestStatus

	for event := range events {
		slog.Debug("Monitor event",
			slog.String("event", event.Event),
			slog.Any("data", event.Data))

		switch event.Event {
		case eventShutdown:
			status.shutdown = true
			status.shutdownReason, _ = event.Data["reason"].(string)
		case eventGuestPanicked:
			status.panicked = true
		}
	}

	return status
}

// outcome returns the terminal [vm.Event] for a guest that was started
// successfully, based on what the monitor reported and how QEMU exited.
func outcome(status guestStatus, waitErr error) vm.Event {
	switch {
	case status.panicked:
		return vm.GuestError{Err: ErrGuestPanic}
	case status.shutdown:
		if waitErr != nil {
			slog.Warn("QEMU failed after guest shutdown",
				slog.Any("error", waitErr))
		}

		return vm.GuestStopped{}
	case waitErr != nil:
		return vm.GuestError{Err: newCommandError(waitErr)}
	default:
		return vm.GuestStopped{}
	}
}
