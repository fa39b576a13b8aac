// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package vz runs guests with Apple's Virtualization.framework. It is only
// available on darwin hosts.
//
// The process running the guest must be signed with the
// "com.apple.security.virtualization" entitlement.
package vz
