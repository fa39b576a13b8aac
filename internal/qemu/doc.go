// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package qemu runs guests with QEMU system emulation. It expects the required
// QEMU binary to be present on the system.
//
// The guest is started in paused state. Once the QMP monitor socket accepts
// connections, the guest is resumed with the "cont" command, which completes
// the start request. Guest shutdown is detected by the SHUTDOWN event on the
// monitor and the exit of the QEMU process.
//
// The guest console is bound to the standard input and output of the QEMU
// process, which are the console attachment files of the machine config.
package qemu
