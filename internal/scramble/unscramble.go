package scramble

import (
	"errors"
	"fmt"
	"time"

	"github.com/omg-shield/keyshield/internal/keyevent"
	"github.com/omg-shield/keyshield/internal/obs"
	"github.com/omg-shield/keyshield/internal/rotation"
)

// VirtualKeyEvent is the output B emits to the virtual-keyboard
// writer.
type VirtualKeyEvent struct {
	Keycode  uint16
	Modifier keyevent.Modifiers
}

// NewUnscrambler builds an Unscrambler bound to the given clock and
// cache.
func NewUnscrambler(clock rotation.Clock, cache *rotation.Cache) *Unscrambler {
	return &Unscrambler{Clock: clock, Cache: cache, Now: time.Now}
}

// Unscrambler turns HID-derived capture events back into the
// original keystroke. It has no caps state of its own: A always
// resolves caps into character case before transmission, so the
// logical-character resolution below always passes caps=false.
type Unscrambler struct {
	Clock rotation.Clock
	Cache *rotation.Cache
	Now   func() time.Time
}

// Handle processes one HID-derived capture event. shift and ctrl are
// read from the incoming HID report's modifier byte. An
// inverse-lookup miss is an internal-consistency error
// (rotation.ErrPoolInvariant) — never a silent pass-through — returned
// wrapped with obs.KindUnmappableCharacter, whose policy is to log and
// skip the keystroke.
func (u *Unscrambler) Handle(evt keyevent.CaptureEvent, shift, ctrl bool) (out VirtualKeyEvent, ok bool, err error) {
	if evt.State == keyevent.KeyUp {
		return VirtualKeyEvent{}, false, nil
	}

	if !keyevent.IsPoolKeycode(evt.Keycode) {
		// The HID gadget driver on B's side presents the scrambled
		// stream as a standard keyboard device, so the kernel has
		// already translated HID usage codes back into evdev
		// keycodes by the time they reach here — a pass-through key
		// is forwarded with the same keycode, unchanged.
		mod := keyevent.Modifiers(0)
		if ctrl {
			mod |= keyevent.ModCtrl
		}
		return VirtualKeyEvent{Keycode: evt.Keycode, Modifier: mod}, true, nil
	}

	y, ok := keyevent.ResolveLogicalChar(evt.Keycode, shift, false)
	if !ok {
		return VirtualKeyEvent{}, false, nil
	}

	counter := u.Clock.CurrentCounter(u.Now())
	perm := u.Cache.Get(counter)

	x, permErr := perm.Inverse(keyevent.Lower(y))
	if permErr != nil {
		return VirtualKeyEvent{}, false, obs.Wrap(obs.KindUnmappableCharacter, fmt.Errorf("unscramble under counter %d: %w", counter, permErr))
	}

	outChar := x
	if keyevent.IsUpperLetter(y) {
		outChar = toUpperIfLetter(x)
	}

	keycode, outShift, ok := keyevent.CharToEvdev(outChar)
	if !ok {
		return VirtualKeyEvent{}, false, obs.Wrap(obs.KindUnmappableCharacter, errors.New("no evdev encoding for unscrambled char"))
	}

	mod := keyevent.Modifiers(0)
	if outShift {
		mod |= keyevent.ModShift
	}
	if ctrl {
		mod |= keyevent.ModCtrl
	}

	return VirtualKeyEvent{Keycode: keycode, Modifier: mod}, true, nil
}
