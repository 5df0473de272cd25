// Package config holds the compile-time tunables shared by the sender
// and endpoint processes. There are no flags and no config file: spec
// §6 fixes both sides as long-running processes launched without a
// CLI surface, so the only seam offered is a functional-options
// constructor that tests use to substitute short intervals and
// windows for the production defaults.
package config

import "time"

// Tunables is the full set of values either side needs before it can
// run the rotation clock and guard. Defaults mirror the reference
// values carried over from the source implementation.
type Tunables struct {
	// Interval is the rotation period I.
	Interval time.Duration

	// SenderOffset is δ_A, added to A's wall clock before counting
	// (negative: A's counter increments |δ_A| after B's).
	SenderOffset time.Duration

	// GuardWindow is W, the no-transmit window around a rotation
	// boundary enforced on A.
	GuardWindow time.Duration

	// SerialDevicePath is the TTY path used for the handshake frame
	// transport. Opening and configuring it is external-collaborator
	// territory; this value is only a parameter the caller passes to
	// whatever opens the device.
	SerialDevicePath string

	// HIDGadgetPath is the character device A writes scrambled HID
	// reports to.
	HIDGadgetPath string

	// HIDInputPath is the raw keyboard device B grabs and reads the
	// scrambled HID stream from.
	HIDInputPath string

	// VirtualKeyboardPath is the uinput-style device B injects the
	// unscrambled keystrokes into.
	VirtualKeyboardPath string
}

// Option mutates a Tunables value under construction.
type Option func(*Tunables)

// Default returns the production tunables: 10-second rotation
// interval, -0.4s sender offset, 0.4s guard window.
func Default() Tunables {
	return Tunables{
		Interval:            10 * time.Second,
		SenderOffset:        -400 * time.Millisecond,
		GuardWindow:         400 * time.Millisecond,
		SerialDevicePath:    "/dev/ttyACM0",
		HIDGadgetPath:       "/dev/hidg0",
		HIDInputPath:        "/dev/input/event0",
		VirtualKeyboardPath: "/dev/uinput",
	}
}

// New builds a Tunables value from Default with the given options
// applied in order, for tests that need to compress the interval or
// guard window without touching the algorithm packages.
func New(opts ...Option) Tunables {
	t := Default()
	for _, opt := range opts {
		opt(&t)
	}
	return t
}

// WithInterval overrides the rotation interval.
func WithInterval(d time.Duration) Option {
	return func(t *Tunables) { t.Interval = d }
}

// WithSenderOffset overrides δ_A.
func WithSenderOffset(d time.Duration) Option {
	return func(t *Tunables) { t.SenderOffset = d }
}

// WithGuardWindow overrides W.
func WithGuardWindow(d time.Duration) Option {
	return func(t *Tunables) { t.GuardWindow = d }
}

// WithSerialDevicePath overrides the handshake transport path.
func WithSerialDevicePath(path string) Option {
	return func(t *Tunables) { t.SerialDevicePath = path }
}
