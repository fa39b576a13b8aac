// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Command linuxvm boots a Linux guest with its console attached to the
// terminal and returns once the guest shut down.
package main

import (
	"context"
	"os"

	"github.com/aibor/linuxvm/internal/cmd"
)

func main() {
	os.Exit(cmd.Run(context.Background(), os.Args[1:], cmd.IO{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}))
}
