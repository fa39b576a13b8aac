// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package qemu

import (
	"context"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/aibor/linuxvm/internal/vm"
	"github.com/digitalocean/go-qemu/qmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sendEvents(events ...qmp.Event) <-chan qmp.Event {
	ch := make(chan qmp.Event, len(events))
	for _, event := range events {
		ch <- event
	}

	close(ch)

	return ch
}

func TestCollectEvents(t *testing.T) {
	tests := []struct {
		name     string
		events   []qmp.Event
		expected guestStatus
	}{
		{
			name: "none",
		},
		{
			name: "shutdown",
			events: []qmp.Event{
				{Event: "RESUME"},
				{
					Event: "SHUTDOWN",
					Data: map[string]any{
						"guest":  true,
						"reason": "guest-shutdown",
					},
				},
			},
			expected: guestStatus{
				shutdown:       true,
				shutdownReason: "guest-shutdown",
			},
		},
		{
			name: "panic",
			events: []qmp.Event{
				{Event: "RESUME"},
				{Event: "GUEST_PANICKED"},
				{Event: "SHUTDOWN"},
			},
			expected: guestStatus{
				shutdown: true,
				panicked: true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actual := collectEvents(sendEvents(tt.events...))
			assert.Equal(t, tt.expected, actual)
		})
	}
}

func TestOutcome(t *testing.T) {
	exitErr := exec.Command("/bin/sh", "-c", "exit 3").Run()
	require.Error(t, exitErr)

	tests := []struct {
		name     string
		status   guestStatus
		waitErr  error
		assertFn func(t *testing.T, event vm.Event)
	}{
		{
			name:   "shutdown",
			status: guestStatus{shutdown: true},
			assertFn: func(t *testing.T, event vm.Event) {
				assert.Equal(t, vm.GuestStopped{}, event)
			},
		},
		{
			name:    "shutdown with failed exit",
			status:  guestStatus{shutdown: true},
			waitErr: exitErr,
			assertFn: func(t *testing.T, event vm.Event) {
				assert.Equal(t, vm.GuestStopped{}, event)
			},
		},
		{
			name: "clean exit without event",
			assertFn: func(t *testing.T, event vm.Event) {
				assert.Equal(t, vm.GuestStopped{}, event)
			},
		},
		{
			name:   "panic",
			status: guestStatus{shutdown: true, panicked: true},
			assertFn: func(t *testing.T, event vm.Event) {
				assert.Equal(t, vm.GuestError{Err: ErrGuestPanic}, event)
			},
		},
		{
			name:    "unexpected exit",
			waitErr: exitErr,
			assertFn: func(t *testing.T, event vm.Event) {
				guestErr, ok := event.(vm.GuestError)
				require.True(t, ok, "should be guest error")

				var cmdErr *CommandError

				require.ErrorAs(t, guestErr.Err, &cmdErr)
				assert.Equal(t, 3, cmdErr.ExitCode)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.assertFn(t, outcome(tt.status, tt.waitErr))
		})
	}
}

func TestConnectMonitor_Exited(t *testing.T) {
	exited := make(chan struct{})
	close(exited)

	socket := filepath.Join(t.TempDir(), "qmp.sock")

	_, err := connectMonitor(context.Background(), socket, exited)
	require.ErrorIs(t, err, ErrExitedBeforeStart)
}

func TestConnectMonitor_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	socket := filepath.Join(t.TempDir(), "qmp.sock")

	_, err := connectMonitor(ctx, socket, make(chan struct{}))
	require.ErrorIs(t, err, context.Canceled)
}
