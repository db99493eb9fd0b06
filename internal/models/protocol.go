// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package models

// Protocol identifies how a release is delivered by a download client.
type Protocol string

const (
	ProtocolUnknown Protocol = "unknown"
	ProtocolUsenet  Protocol = "usenet"
	ProtocolTorrent Protocol = "torrent"
)

// ParseProtocol maps stored or wire values to a Protocol. Unrecognized values
// resolve to ProtocolUnknown rather than failing.
func ParseProtocol(s string) Protocol {
	switch Protocol(s) {
	case ProtocolUsenet:
		return ProtocolUsenet
	case ProtocolTorrent:
		return ProtocolTorrent
	default:
		return ProtocolUnknown
	}
}
