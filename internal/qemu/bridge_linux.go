// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package qemu

import (
	"fmt"

	"github.com/vishvananda/netlink"
)

// checkBridge verifies the host interface with the given name exists and is
// a bridge, as required by the QEMU bridge helper.
func checkBridge(name string) error {
	link, err := netlink.LinkByName(name)
	if err != nil {
		return fmt.Errorf("interface %s: %w", name, err)
	}

	if _, ok := link.(*netlink.Bridge); !ok {
		return fmt.Errorf("%w: %s is %s", ErrNotBridge, name, link.Type())
	}

	return nil
}
