// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package machine

import (
	"fmt"
	"slices"
)

const (
	// NetworkAttachmentNAT translates guest traffic through the host's
	// network stack.
	NetworkAttachmentNAT NetworkAttachment = "nat"
	// NetworkAttachmentBridged connects the guest to a host interface.
	NetworkAttachmentBridged NetworkAttachment = "bridged"
)

// NetworkAttachmentNone disables networking. It is only valid as input for
// [Build], no [NetworkDevice] ever has it.
const NetworkAttachmentNone NetworkAttachment = "none"

// NetworkAttachment is the way a guest network device is connected to the
// host.
type NetworkAttachment string

func (n *NetworkAttachment) isKnown() bool {
	known := []NetworkAttachment{
		NetworkAttachmentNAT,
		NetworkAttachmentBridged,
	}

	return slices.Contains(known, *n)
}

// String implements [fmt.Stringer].
func (n *NetworkAttachment) String() string {
	return string(*n)
}

// MarshalText implements [encoding.TextMarshaler].
func (n NetworkAttachment) MarshalText() ([]byte, error) {
	if !n.isKnown() && n != NetworkAttachmentNone {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAttachment, string(n))
	}

	return []byte(n), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (n *NetworkAttachment) UnmarshalText(text []byte) error {
	attachment := NetworkAttachment(text)

	if !attachment.isKnown() && attachment != NetworkAttachmentNone {
		return fmt.Errorf("%w: %q", ErrUnknownAttachment, string(text))
	}

	*n = attachment

	return nil
}
