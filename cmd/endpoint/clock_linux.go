//go:build linux

package main

import (
	"time"

	"golang.org/x/sys/unix"
)

// setSystemClock implements spec.md §4.2's "B: set local system clock
// to T0 (best-effort, may fail)". Requires CAP_SYS_TIME; a permission
// failure here is expected on most deployments and handled by
// handshake.RunResponder as a warning, not a fatal error.
func setSystemClock(t time.Time) error {
	tv := unix.NsecToTimeval(t.UnixNano())
	return unix.Settimeofday(&tv)
}
