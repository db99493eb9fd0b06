// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package tracked

import (
	"errors"
	"fmt"
)

// ErrNotTracked is returned when an operation references a download the
// service is not tracking.
var ErrNotTracked = errors.New("download is not tracked")

// TransientDownloadError reports a download-client communication failure.
// It is retried per the poller's policy and recorded as a Warning; it never
// forces a state transition on its own.
type TransientDownloadError struct {
	Op  string
	Err error
}

func (e *TransientDownloadError) Error() string {
	return fmt.Sprintf("download client unreachable during %s: %v", e.Op, e.Err)
}

func (e *TransientDownloadError) Unwrap() error { return e.Err }

// TerminalImportError forces ImportFailed with an Error status. It is never
// auto-retried without a fresh signal from the download client.
type TerminalImportError struct {
	Reason string
	Err    error
}

func (e *TerminalImportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *TerminalImportError) Unwrap() error { return e.Err }

// InvalidTransitionError reports an attempted state change the lifecycle
// table forbids. Attempting one is an error, never a crash.
type InvalidTransitionError struct {
	From State
	To   State
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid tracked download transition %s -> %s", e.From, e.To)
}
