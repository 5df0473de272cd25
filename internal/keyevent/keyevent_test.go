package keyevent

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveLogicalCharLetterShiftCapsXOR(t *testing.T) {
	const keycodeA = 30 // evdev KEY_A

	c, ok := ResolveLogicalChar(keycodeA, false, false)
	require.True(t, ok)
	require.Equal(t, byte('a'), c)

	c, ok = ResolveLogicalChar(keycodeA, true, false)
	require.True(t, ok)
	require.Equal(t, byte('A'), c)

	c, ok = ResolveLogicalChar(keycodeA, false, true)
	require.True(t, ok)
	require.Equal(t, byte('A'), c)

	c, ok = ResolveLogicalChar(keycodeA, true, true)
	require.True(t, ok)
	require.Equal(t, byte('a'), c)
}

func TestResolveLogicalCharSymbolShift(t *testing.T) {
	const keycode1 = 2 // evdev KEY_1

	c, ok := ResolveLogicalChar(keycode1, false, false)
	require.True(t, ok)
	require.Equal(t, byte('1'), c)

	c, ok = ResolveLogicalChar(keycode1, true, false)
	require.True(t, ok)
	require.Equal(t, byte('!'), c)
}

func TestResolveLogicalCharUnknownKeycode(t *testing.T) {
	_, ok := ResolveLogicalChar(9999, false, false)
	require.False(t, ok)
}

func TestIsPoolKeycode(t *testing.T) {
	require.True(t, IsPoolKeycode(30))  // a
	require.True(t, IsPoolKeycode(2))   // 1
	require.False(t, IsPoolKeycode(28)) // enter, pass-through
}

func TestCharToHIDAndBackToEvdevAgree(t *testing.T) {
	hid, shift, ok := CharToHID('A')
	require.True(t, ok)
	require.True(t, shift)
	require.Equal(t, byte(0x04), hid)

	kc, shift, ok := CharToEvdev('A')
	require.True(t, ok)
	require.True(t, shift)
	require.EqualValues(t, 30, kc)
}

func TestCharToHIDSymbolShift(t *testing.T) {
	hid, shift, ok := CharToHID('!')
	require.True(t, ok)
	require.True(t, shift)
	require.Equal(t, byte(0x1E), hid)

	hid, shift, ok = CharToHID('1')
	require.True(t, ok)
	require.False(t, shift)
	require.Equal(t, byte(0x1E), hid)
}

func TestEvdevToHIDPassthrough(t *testing.T) {
	hid, ok := EvdevToHIDPassthrough(evEnter)
	require.True(t, ok)
	require.Equal(t, byte(0x28), hid)

	_, ok = EvdevToHIDPassthrough(9999)
	require.False(t, ok)
}

func TestModifierStateEdgeTracking(t *testing.T) {
	var m ModifierState

	isMod := m.Apply(CaptureEvent{Keycode: evLeftShift, State: KeyDown})
	require.True(t, isMod)
	require.True(t, m.ShiftDown)

	isMod = m.Apply(CaptureEvent{Keycode: evLeftShift, State: KeyUp})
	require.True(t, isMod)
	require.False(t, m.ShiftDown)
}

func TestModifierStateCapsToggles(t *testing.T) {
	var m ModifierState

	m.Apply(CaptureEvent{Keycode: evCapsLock, State: KeyDown})
	require.True(t, m.CapsOn)

	// A second physical press (down again) toggles back off; a
	// key-up must not itself toggle.
	m.Apply(CaptureEvent{Keycode: evCapsLock, State: KeyUp})
	require.True(t, m.CapsOn)

	m.Apply(CaptureEvent{Keycode: evCapsLock, State: KeyDown})
	require.False(t, m.CapsOn)
}
