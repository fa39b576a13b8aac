// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package vm

// Event is a lifecycle notification sent by a [Platform].
//
// The set of events is closed: [Started], [StartFailed], [GuestStopped] and
// [GuestError].
type Event interface {
	event()
}

// Started reports that the start request completed and the guest is running.
type Started struct{}

// StartFailed reports that the start request failed.
type StartFailed struct {
	Err error
}

// GuestStopped reports that the guest shut itself down.
type GuestStopped struct{}

// GuestError reports that the guest stopped because of an error after it was
// started successfully.
type GuestError struct {
	Err error
}

func (Started) event()      {}
func (StartFailed) event()  {}
func (GuestStopped) event() {}
func (GuestError) event()   {}

// Notify delivers an [Event] to the [Controller]. It never blocks once the
// controller reached a terminal [State].
type Notify func(Event)
