// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package machine describes the virtual hardware of a guest and builds
// validated descriptions from user input.
//
// A [Config] is only usable once it passed [Validate]. [Build] assembles a
// [Config] from a [Spec] and validates it, so the result can be handed to a
// hypervisor platform directly.
package machine
