package scramble

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/omg-shield/keyshield/internal/keyevent"
	"github.com/omg-shield/keyshield/internal/rotation"
)

// evdevKeycodeFor finds the evdev keycode that produces c when shift
// is held (or released), used to synthesize capture events in tests
// without hard-coding a second copy of the keycode tables. shift must
// be supplied by the caller rather than assumed false: several pool
// symbols (e.g. '!') only exist on the shifted side of a key.
func evdevKeycodeFor(t *testing.T, c byte, shift bool) uint16 {
	t.Helper()
	for kc := uint16(0); kc < 200; kc++ {
		if ch, ok := keyevent.ResolveLogicalChar(kc, shift, false); ok && ch == c {
			return kc
		}
	}
	t.Fatalf("no evdev keycode produces %q with shift=%v", c, shift)
	return 0
}

func newTestPair(key [32]byte) (*Scrambler, *Unscrambler) {
	t0 := time.Unix(1700000000, 0)
	senderClock := rotation.NewSenderClock(t0, 10*time.Second, -400*time.Millisecond)
	endpointClock := rotation.NewEndpointClock(t0, 10*time.Second)

	scrambler := NewScrambler(senderClock, rotation.NewCache(key), 0)
	// Disable the guard's wall-clock dependency in these tests by
	// fixing Now deep inside an interval and no-op Sleep.
	fixedNow := t0.Add(5 * time.Second)
	scrambler.Now = func() time.Time { return fixedNow }
	scrambler.Sleep = func(time.Duration) {}

	unscrambler := NewUnscrambler(endpointClock, rotation.NewCache(key))
	unscrambler.Now = func() time.Time { return fixedNow }

	return scrambler, unscrambler
}

// scrambleChar drives a Scrambler with a capture event for the
// physical key that produces c, holding shift as indicated. c is the
// exact character the keypress should resolve to (including case for
// letters and the shifted side of a punctuation key), not a
// lowercased/base approximation of it.
func scrambleChar(t *testing.T, s *Scrambler, c byte, shift bool) HIDEvent {
	t.Helper()
	kc := evdevKeycodeFor(t, c, shift)
	s.Modstate.ShiftDown = shift
	out, ok, err := s.Handle(keyevent.CaptureEvent{Keycode: kc, State: keyevent.KeyDown})
	require.NoError(t, err)
	require.True(t, ok)
	s.Modstate.ShiftDown = false
	return out
}

// hidEventToCapture inverts CharToHID/CharToEvdev through the known
// pool characters so the test can feed a Scrambler's HID output back
// into an Unscrambler as a capture event, mimicking the kernel's
// HID-to-evdev translation on B's side.
func hidEventToCapture(t *testing.T, evt HIDEvent) (keyevent.CaptureEvent, bool, bool) {
	t.Helper()
	for _, c := range append(append([]byte{}, rotation.Letters[:]...), rotation.Symbols[:]...) {
		for _, upper := range []bool{false, true} {
			ch := c
			if upper {
				if !(c >= 'a' && c <= 'z') {
					continue
				}
				ch = c - ('a' - 'A')
			}
			hid, shift, ok := keyevent.CharToHID(ch)
			if ok && hid == evt.HIDUsage && shift == (evt.Modifier&keyevent.ModShift != 0) {
				kc := evdevKeycodeFor(t, ch, shift)
				ctrl := evt.Modifier&keyevent.ModCtrl != 0
				return keyevent.CaptureEvent{Keycode: kc, State: keyevent.KeyDown}, shift, ctrl
			}
		}
	}
	t.Fatalf("no character maps to HID event %+v", evt)
	return keyevent.CaptureEvent{}, false, false
}

func TestRoundTripHelloWorld(t *testing.T) {
	var key [32]byte
	copy(key[:], []byte("test_symmetric_key_12345678901234"))
	scrambler, unscrambler := newTestPair(key)

	input := "Hello World!"
	var output []byte

	for _, c := range []byte(input) {
		_, shift, ok := keyevent.CharToEvdev(c)
		require.True(t, ok, "no evdev encoding for %q", c)

		out := scrambleChar(t, scrambler, c, shift)
		capture, capShift, ctrl := hidEventToCapture(t, out)
		vk, ok, err := unscrambler.Handle(capture, capShift, ctrl)
		require.NoError(t, err)
		require.True(t, ok)
		back, ok := keyevent.ResolveLogicalChar(vk.Keycode, vk.Modifier&keyevent.ModShift != 0, false)
		require.True(t, ok)
		output = append(output, back)
	}

	require.Equal(t, input, string(output))
}

// TestRoundTripAllPoolCharacters sweeps every member of both pools
// through a real Scrambler/Unscrambler pair under a fixed permutation,
// the way TestRoundTripHelloWorld only does for one sentence's worth
// of characters. A keycode table with a gap for any single pool
// member (letter, digit, or punctuation mark) fails here even if no
// hand-picked example string happens to exercise it.
func TestRoundTripAllPoolCharacters(t *testing.T) {
	var key [32]byte
	copy(key[:], []byte("exhaustive-pool-sweep-key-0000000000"))

	var chars []byte
	for _, c := range rotation.Letters {
		chars = append(chars, c, c-('a'-'A'))
	}
	chars = append(chars, rotation.Symbols[:]...)

	for _, c := range chars {
		scrambler, unscrambler := newTestPair(key)

		_, shift, ok := keyevent.CharToEvdev(c)
		require.True(t, ok, "no evdev encoding for %q", c)

		out := scrambleChar(t, scrambler, c, shift)
		capture, capShift, ctrl := hidEventToCapture(t, out)
		vk, ok, err := unscrambler.Handle(capture, capShift, ctrl)
		require.NoError(t, err, "unscrambling %q", c)
		require.True(t, ok, "unscrambler dropped %q", c)

		back, ok := keyevent.ResolveLogicalChar(vk.Keycode, vk.Modifier&keyevent.ModShift != 0, false)
		require.True(t, ok, "no logical char for unscrambled %q", c)
		require.Equal(t, c, back, "round trip mismatch for %q", c)
	}
}

func TestCasePreservation(t *testing.T) {
	var key [32]byte
	copy(key[:], []byte("case-preservation-key-77777777777"))
	scrambler, _ := newTestPair(key)

	lower := scrambleChar(t, scrambler, 'a', false)
	upper := scrambleChar(t, scrambler, 'A', true)

	require.Equal(t, lower.HIDUsage, upper.HIDUsage)
	require.Equal(t, keyevent.Modifiers(0), lower.Modifier&keyevent.ModShift)
	require.NotEqual(t, keyevent.Modifiers(0), upper.Modifier&keyevent.ModShift)
}

func TestPoolSeparation(t *testing.T) {
	var key [32]byte
	copy(key[:], []byte("pool-separation-key-8888888888888"))
	scrambler, _ := newTestPair(key)

	digitOut := scrambleChar(t, scrambler, '1', false)
	letterOut := scrambleChar(t, scrambler, 'a', false)

	require.NotEqual(t, digitOut.HIDUsage, letterOut.HIDUsage)
	// A letter scrambles to a letter, whose HID usage falls in the
	// keyboard letter range 0x04-0x1D; a digit scrambles to some member
	// of the symbol pool, whose HID usage never falls in that range.
	require.True(t, letterOut.HIDUsage >= 0x04 && letterOut.HIDUsage <= 0x1D)
	require.False(t, digitOut.HIDUsage >= 0x04 && digitOut.HIDUsage <= 0x1D)
}
