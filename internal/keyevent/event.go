// Package keyevent models a single keystroke as it moves through the
// pipeline and the modifier state machine that turns a raw evdev
// stream into resolved logical characters. Both A and B share this
// vocabulary; the lookup tables are package-level maps keyed by
// integer keycode, not the source's dynamic string-keyed dictionaries
// (spec.md §9 redesign flag).
package keyevent

// KeyState is the state of a single key transition from the capture
// device.
type KeyState int

const (
	KeyDown KeyState = iota
	KeyUp
	KeyHold
)

// CaptureEvent is what the keyboard-capture collaborator produces:
// a raw evdev keycode and its transition state.
type CaptureEvent struct {
	Keycode uint16
	State   KeyState
}

// Modifiers is the bit layout shared by HID reports and virtual
// keyboard injection: bit0 = left ctrl, bit1 = left shift, bit2 =
// left alt.
type Modifiers byte

const (
	ModCtrl  Modifiers = 1 << 0
	ModShift Modifiers = 1 << 1
	ModAlt   Modifiers = 1 << 2
)

// Keystroke is the internal event between capture and scramble:
// a resolved base character plus the modifier state that applied
// when it was captured.
type Keystroke struct {
	CharBase    byte
	Shift       bool
	Ctrl        bool
	Caps        bool
	Passthrough bool

	// Keycode carries the original evdev keycode for pass-through
	// keys, which are forwarded unchanged.
	Keycode uint16
}

// ModifierState tracks shift/ctrl/caps across a capture stream.
// Shift and ctrl are edge-tracked (true exactly while held); caps
// toggles on every caps-lock key-down, matching spec.md §4.5's state
// machine.
type ModifierState struct {
	ShiftDown bool
	CtrlDown  bool
	CapsOn    bool
}

// Apply updates modifier state for a raw capture event and reports
// whether the event was itself a modifier key (and therefore should
// never be emitted as output).
func (m *ModifierState) Apply(evt CaptureEvent) (isModifier bool) {
	switch {
	case IsShiftKeycode(evt.Keycode):
		m.ShiftDown = evt.State == KeyDown || evt.State == KeyHold
		return true
	case IsCtrlKeycode(evt.Keycode):
		m.CtrlDown = evt.State == KeyDown || evt.State == KeyHold
		return true
	case IsCapsLockKeycode(evt.Keycode):
		if evt.State == KeyDown {
			m.CapsOn = !m.CapsOn
		}
		return true
	default:
		return false
	}
}
