package keyevent

// Evdev keycodes used by this system, named per Linux's
// input-event-codes.h. Only the subset the pools and pass-through
// set actually need is declared.
const (
	evEsc        uint16 = 1
	evBackspace  uint16 = 14
	evTab        uint16 = 15
	evEnter      uint16 = 28
	evLeftCtrl   uint16 = 29
	evLeftShift  uint16 = 42
	evRightShift uint16 = 54
	evLeftAlt    uint16 = 56
	evSpace      uint16 = 57
	evCapsLock   uint16 = 58
	evRightCtrl  uint16 = 97
	evUp         uint16 = 103
	evLeft       uint16 = 105
	evRight      uint16 = 106
	evDown       uint16 = 108
)

// IsShiftKeycode reports whether kc is a shift key.
func IsShiftKeycode(kc uint16) bool { return kc == evLeftShift || kc == evRightShift }

// IsCtrlKeycode reports whether kc is a ctrl key.
func IsCtrlKeycode(kc uint16) bool { return kc == evLeftCtrl || kc == evRightCtrl }

// IsCapsLockKeycode reports whether kc is the caps lock key.
func IsCapsLockKeycode(kc uint16) bool { return kc == evCapsLock }

// letterKeycodes maps evdev QWERTY letter keycodes to the lowercase
// letter they produce, in the same a..z order as rotation.Letters.
var letterKeycodes = map[uint16]byte{
	30: 'a', 48: 'b', 46: 'c', 32: 'd', 18: 'e', 33: 'f', 34: 'g',
	35: 'h', 23: 'i', 36: 'j', 37: 'k', 38: 'l', 50: 'm', 49: 'n',
	24: 'o', 25: 'p', 16: 'q', 19: 'r', 31: 's', 20: 't', 22: 'u',
	47: 'v', 17: 'w', 45: 'x', 21: 'y', 44: 'z',
}

var letterToKeycode = invertByte(letterKeycodes)

// symbolKey describes one physical key that produces two pool
// symbols depending on shift, or one symbol with no pool member on the
// shifted side (e.g. space).
type symbolKey struct {
	keycode      uint16
	base         byte
	shifted      byte // 0 if this key has no shifted pool member
	hidUsage     byte
	hidShiftable bool // whether shifted is produced via the shift bit on the same HID usage
}

// symbolKeys enumerates the digit/punctuation keys of a standard
// ANSI US layout that fall in the symbol pool, together with their
// USB HID usage codes (Keyboard/Keypad page).
var symbolKeys = []symbolKey{
	{2, '1', '!', 0x1E, true},
	{3, '2', '@', 0x1F, true},
	{4, '3', '#', 0x20, true},
	{5, '4', '$', 0x21, true},
	{6, '5', '%', 0x22, true},
	{7, '6', 0, 0x23, false},
	{8, '7', '&', 0x24, true},
	{9, '8', '*', 0x25, true},
	{10, '9', '(', 0x26, true},
	{11, '0', ')', 0x27, true},
	{evSpace, ' ', 0, 0x2C, false},
	{12, '-', '_', 0x2D, true},
	{13, '=', '+', 0x2E, true},
	{26, '[', '{', 0x2F, true},
	{27, ']', '}', 0x30, true},
	{43, '\\', '|', 0x31, true},
	{39, ';', ':', 0x33, true},
	{40, '\'', '"', 0x34, true},
	{41, '`', '~', 0x35, true},
	{51, ',', '<', 0x36, true},
	{52, '.', '>', 0x37, true},
	{53, '/', '?', 0x38, true},
}

// letterHIDUsage maps a lowercase letter to its HID usage code
// (Keyboard/Keypad page, 'a' = 0x04).
func letterHIDUsage(c byte) byte { return 0x04 + (c - 'a') }

// evdevToHIDPassthrough covers keys outside both pools that still
// need a well-defined HID usage so A can forward them unchanged.
var evdevToHIDPassthrough = map[uint16]byte{
	evEsc:       0x29,
	evBackspace: 0x2A,
	evTab:       0x2B,
	evEnter:     0x28,
	evCapsLock:  0x39,
	evUp:        0x52,
	evLeft:      0x50,
	evRight:     0x4F,
	evDown:      0x51,
}

func invertByte(m map[uint16]byte) map[byte]uint16 {
	out := make(map[byte]uint16, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}

// symbolByKeycode and symbolByBase index symbolKeys for lookup in
// both directions.
var symbolByKeycode = func() map[uint16]symbolKey {
	m := make(map[uint16]symbolKey, len(symbolKeys))
	for _, sk := range symbolKeys {
		m[sk.keycode] = sk
	}
	return m
}()

var symbolByChar = func() map[byte]symbolKey {
	m := make(map[byte]symbolKey, len(symbolKeys)*2)
	for _, sk := range symbolKeys {
		m[sk.base] = sk
		if sk.shifted != 0 {
			m[sk.shifted] = sk
		}
	}
	return m
}()

// IsPoolKeycode reports whether kc produces a character in the
// letter or symbol pool at all (regardless of shift state).
func IsPoolKeycode(kc uint16) bool {
	if _, ok := letterKeycodes[kc]; ok {
		return true
	}
	_, ok := symbolByKeycode[kc]
	return ok
}

// ResolveLogicalChar implements spec.md §4.5 step 3 / §4.6 step 4:
// it turns a raw keycode plus modifier state into the logical
// character the pools operate on, using the shift-XOR-caps rule for
// letters and the shifted-key rule for symbols.
//
// B has no caps state of its own (spec.md §9): A always resolves
// caps into character case before transmission, so callers on B's
// side must pass caps=false here, never track it.
func ResolveLogicalChar(kc uint16, shift, caps bool) (char byte, ok bool) {
	if base, isLetter := letterKeycodes[kc]; isLetter {
		if shift != caps {
			return upper(base), true
		}
		return base, true
	}
	if sk, isSymbol := symbolByKeycode[kc]; isSymbol {
		if shift && sk.shifted != 0 {
			return sk.shifted, true
		}
		return sk.base, true
	}
	return 0, false
}

func upper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - ('a' - 'A')
	}
	return c
}

func lower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}

// Lower exposes lower for callers outside the package (scramble
// needs it to normalize before a permutation lookup).
func Lower(c byte) byte { return lower(c) }

// IsUpperLetter reports whether c is an uppercase ASCII letter.
func IsUpperLetter(c byte) bool { return c >= 'A' && c <= 'Z' }

// CharToHID re-encodes a pool character y into the HID usage code
// and shift bit A must emit, per spec.md §4.5 step 5.
func CharToHID(y byte) (hidUsage byte, shift bool, ok bool) {
	if y >= 'a' && y <= 'z' {
		return letterHIDUsage(y), false, true
	}
	if IsUpperLetter(y) {
		return letterHIDUsage(lower(y)), true, true
	}
	if sk, isSymbol := symbolByChar[y]; isSymbol {
		return sk.hidUsage, y == sk.shifted, true
	}
	return 0, false, false
}

// CharToEvdev re-encodes a pool character x into the evdev keycode
// and shift bit B must emit to the virtual keyboard, per spec.md
// §4.6 step 6.
func CharToEvdev(x byte) (keycode uint16, shift bool, ok bool) {
	if x >= 'a' && x <= 'z' {
		kc, found := letterToKeycode[x]
		return kc, false, found
	}
	if IsUpperLetter(x) {
		kc, found := letterToKeycode[lower(x)]
		return kc, true, found
	}
	if sk, isSymbol := symbolByChar[x]; isSymbol {
		return sk.keycode, x == sk.shifted, true
	}
	return 0, false, false
}

// EvdevToHIDPassthrough maps a non-pool evdev keycode to its HID
// usage code, for A forwarding a pass-through key unchanged.
func EvdevToHIDPassthrough(kc uint16) (hidUsage byte, ok bool) {
	v, ok := evdevToHIDPassthrough[kc]
	return v, ok
}
