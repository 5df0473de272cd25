//go:build !linux

package hidio

import (
	"errors"
	"runtime"
)

var errUnsupportedPlatform = errors.New("hidio: not supported on " + runtime.GOOS)

// OpenKeyboardCapture, OpenHIDWriter, and OpenVirtualKeyboardWriter
// have no implementation outside Linux: the grab/HID-gadget/uinput
// mechanisms this package wraps are Linux-kernel-specific (per
// spec.md §6's device contracts). Callers building for other
// platforms get a clear error instead of a missing symbol, matching
// the teacher's own build-tag split for platform-specific transports.

func OpenKeyboardCapture(path string) (KeyboardCapture, error) {
	return nil, errUnsupportedPlatform
}

func OpenHIDWriter(path string) (HIDWriter, error) {
	return nil, errUnsupportedPlatform
}

func OpenVirtualKeyboardWriter(path string) (VirtualKeyboardWriter, error) {
	return nil, errUnsupportedPlatform
}
