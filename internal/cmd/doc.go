// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package cmd provides the CLI command entry point for linuxvm. It handles
// flag parsing, wiring of the hypervisor platform, error handling and mapping
// of the outcome to the process exit code.
package cmd
