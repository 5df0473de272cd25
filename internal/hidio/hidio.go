// Package hidio defines the external-collaborator contracts of
// spec.md §6: the keyboard capture source (which also serves as B's
// reader of the HID-gadget stream), A's HID-gadget writer, and the
// virtual-keyboard sink. Callers in internal/loop
// depend only on these interfaces, never on a concrete OS type,
// mirroring the way the teacher's device.Device depends on tun.Device
// and conn.Bind rather than a platform-specific TUN file descriptor.
package hidio

import (
	"io"

	"github.com/omg-shield/keyshield/internal/keyevent"
)

// KeyboardCapture is the raw keyboard event source A reads from, or B
// reads from after grabbing the HID-gadget-presented input device.
// Both sides see the same event shape because the kernel's HID driver
// re-presents a HID keyboard as a standard evdev input device.
type KeyboardCapture interface {
	// Next blocks until the next capture event is available.
	Next() (keyevent.CaptureEvent, error)
	// Grab exclusively grabs the underlying input device so events
	// stop reaching any other reader on the host, per spec.md §4.6
	// step 1 / §5's shared-resources list.
	Grab() error
	io.Closer
}

// HIDWriter is A's sink: the HID gadget character device. One logical
// key press is one (modifier, usage) pair; the writer is responsible
// for emitting the press-then-release report pair spec.md §6 requires.
type HIDWriter interface {
	WriteKey(modifier keyevent.Modifiers, hidUsage byte) error
	io.Closer
}

// VirtualKeyboardWriter is B's sink: the injected virtual keyboard
// device. Same press/release synthesis contract as HIDWriter, but
// addressed by evdev keycode instead of HID usage code.
type VirtualKeyboardWriter interface {
	WriteKey(modifier keyevent.Modifiers, keycode uint16) error
	io.Closer
}
