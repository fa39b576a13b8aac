// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package vm controls the lifecycle of a single guest.
//
// A [Controller] hands a validated [machine.Config] to a [Platform], issues
// the asynchronous start request and waits for the guest to end. Platforms
// report progress as [Event]s from their own goroutines. All events are
// handled on the goroutine calling [Controller.Wait], one at a time.
//
// The lifecycle is entirely driven by the guest or by start failures. There
// is no way to stop a running guest from the host side.
package vm
