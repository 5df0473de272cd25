// Package scramble implements the Scrambler (A) and Unscrambler (B)
// components of spec.md §4.5/§4.6: per-keystroke lookup through the
// active permutation and re-encoding into the next hop's event
// shape. Both hold a reference to their collaborators (rotation
// clock, permutation cache) as plain struct fields
// mutated by a single goroutine, following the small-struct,
// no-internal-locking shape of the teacher's per-peer types
// (device/peer.go) rather than its worker-pool machinery.
package scramble

import (
	"errors"
	"fmt"
	"time"

	"github.com/omg-shield/keyshield/internal/keyevent"
	"github.com/omg-shield/keyshield/internal/obs"
	"github.com/omg-shield/keyshield/internal/rotation"
)

// HIDEvent is the output A emits to the HID gadget writer.
type HIDEvent struct {
	HIDUsage byte
	Modifier keyevent.Modifiers
}

// Scrambler turns capture events into scrambled HID events.
type Scrambler struct {
	Clock    rotation.Clock
	Cache    *rotation.Cache
	Guard    time.Duration
	Sleep    func(time.Duration)
	Now      func() time.Time
	Modstate keyevent.ModifierState
}

// NewScrambler builds a Scrambler bound to the given clock, cache,
// and guard window. Sleep and Now default to time.Sleep/time.Now but
// are overridable so tests can exercise the guard without blocking.
func NewScrambler(clock rotation.Clock, cache *rotation.Cache, guard time.Duration) *Scrambler {
	return &Scrambler{
		Clock: clock,
		Cache: cache,
		Guard: guard,
		Sleep: time.Sleep,
		Now:   time.Now,
	}
}

// Handle processes one capture event. It returns ok=false (with no
// error) for dropped key-ups and consumed modifier keys — there is
// nothing to emit. A pool-invariant violation is returned as an
// error wrapped with obs.KindUnmappableCharacter, per the error
// handling table's "log and skip" policy; the caller decides whether
// to log and continue.
func (s *Scrambler) Handle(evt keyevent.CaptureEvent) (out HIDEvent, ok bool, err error) {
	if evt.State == keyevent.KeyUp {
		// Key-up still needs to clear edge-tracked modifiers.
		s.Modstate.Apply(evt)
		return HIDEvent{}, false, nil
	}

	if s.Modstate.Apply(evt) {
		return HIDEvent{}, false, nil
	}

	if !keyevent.IsPoolKeycode(evt.Keycode) {
		hidUsage, known := keyevent.EvdevToHIDPassthrough(evt.Keycode)
		if !known {
			return HIDEvent{}, false, nil // unknown evdev key: silently drop
		}
		mod := keyevent.Modifiers(0)
		if s.Modstate.CtrlDown {
			mod |= keyevent.ModCtrl
		}
		return HIDEvent{HIDUsage: hidUsage, Modifier: mod}, true, nil
	}

	x, ok := keyevent.ResolveLogicalChar(evt.Keycode, s.Modstate.ShiftDown, s.Modstate.CapsOn)
	if !ok {
		return HIDEvent{}, false, nil
	}

	counter := s.Clock.CurrentCounter(s.Now())
	perm := s.Cache.Get(counter)

	y, permErr := perm.Forward(keyevent.Lower(x))
	if permErr != nil {
		return HIDEvent{}, false, obs.Wrap(obs.KindUnmappableCharacter, fmt.Errorf("scramble under counter %d: %w", counter, permErr))
	}

	s.applyGuard()

	outChar := y
	if keyevent.IsUpperLetter(x) {
		outChar = toUpperIfLetter(y)
	}

	hidUsage, shift, ok := keyevent.CharToHID(outChar)
	if !ok {
		return HIDEvent{}, false, obs.Wrap(obs.KindUnmappableCharacter, errors.New("no HID encoding for scrambled char"))
	}

	mod := keyevent.Modifiers(0)
	if shift {
		mod |= keyevent.ModShift
	}
	if s.Modstate.CtrlDown {
		mod |= keyevent.ModCtrl
	}

	return HIDEvent{HIDUsage: hidUsage, Modifier: mod}, true, nil
}

func toUpperIfLetter(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - ('a' - 'A')
	}
	return c
}

// applyGuard blocks until the current moment is at least Guard
// seconds from the next rotation boundary, per spec.md §4.4.
func (s *Scrambler) applyGuard() {
	remaining := s.Clock.SecondsUntilNextRotation(s.Now())
	if remaining < s.Guard {
		s.Sleep(remaining + s.Guard)
	}
}
