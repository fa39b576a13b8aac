// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package term prepares the host terminal for a guest serial console.
//
// The terminal is not put into full raw mode. Only line buffering, local echo
// and CR to NL translation on input are disabled, so every keystroke is
// passed to the guest as typed. Signal generating keys are left alone.
//
// What the guest finally receives depends on the platform. The
// Virtualization.framework backend passes the terminal as it is, so Ctrl-C
// still reaches the host process. QEMU puts the terminal into raw mode on its
// own with signal generation disabled, so Ctrl-C reaches the guest. QEMU
// restores the attributes it found once it exits.
//
// There is no restore of the attributes found before [EnterRawMode].
package term
