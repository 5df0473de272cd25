//go:build linux

package hidio

import (
	"encoding/binary"
	"fmt"
	"os"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/omg-shield/keyshield/internal/keyevent"
)

// Ioctl request numbers for the evdev and uinput character device
// interfaces. These are not part of x/sys/unix's generated constant
// set, so they are defined locally the same way
// Daedaluz-goserial__port_linux.go defines its termios ioctl magic
// numbers as untyped local constants next to the syscalls that use
// them.
const (
	eviocgrab  = 0x40044590
	uiDevSetup = 0x405c5503
	uiDevCreate = 0x5501
	uiDevDestroy = 0x5502
	uiSetEvBit  = 0x40045564
	uiSetKeyBit = 0x40045565
)

const (
	evSyn = 0x00
	evKey = 0x01

	synReport = 0
)

// linuxKeyboardCapture reads raw input_event records from a grabbed
// evdev character device.
type linuxKeyboardCapture struct {
	f *os.File
}

// OpenKeyboardCapture opens the evdev device at path for reading. The
// device is not grabbed until Grab is called.
func OpenKeyboardCapture(path string) (KeyboardCapture, error) {
	f, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("open keyboard capture device %s: %w", path, err)
	}
	return &linuxKeyboardCapture{f: f}, nil
}

func (k *linuxKeyboardCapture) Grab() error {
	return unix.IoctlSetInt(int(k.f.Fd()), eviocgrab, 1)
}

func (k *linuxKeyboardCapture) Close() error {
	_ = unix.IoctlSetInt(int(k.f.Fd()), eviocgrab, 0)
	return k.f.Close()
}

// inputEventSize is the on-wire size of struct input_event on a
// 64-bit Linux host: two timeval fields (16 bytes), type, code
// (2 bytes each), value (4 bytes).
const inputEventSize = 24

// Next blocks on the device fd until a key event arrives, skipping
// non-key events (EV_SYN, EV_MSC, LED feedback) until it finds one.
func (k *linuxKeyboardCapture) Next() (keyevent.CaptureEvent, error) {
	buf := make([]byte, inputEventSize)
	for {
		if _, err := readFull(k.f, buf); err != nil {
			return keyevent.CaptureEvent{}, fmt.Errorf("read input event: %w", err)
		}
		typ := binary.LittleEndian.Uint16(buf[16:18])
		if typ != evKey {
			continue
		}
		code := binary.LittleEndian.Uint16(buf[18:20])
		value := int32(binary.LittleEndian.Uint32(buf[20:24]))

		var state keyevent.KeyState
		switch value {
		case 0:
			state = keyevent.KeyUp
		case 1:
			state = keyevent.KeyDown
		case 2:
			state = keyevent.KeyHold
		default:
			continue
		}
		return keyevent.CaptureEvent{Keycode: code, State: state}, nil
	}
}

func readFull(f *os.File, buf []byte) (int, error) {
	n := 0
	for n < len(buf) {
		m, err := f.Read(buf[n:])
		if err != nil {
			return n, err
		}
		n += m
	}
	return n, nil
}

// linuxHIDWriter writes HID keyboard reports to a USB HID gadget
// character device (/dev/hidgN). Each report is the standard 8-byte
// boot-protocol keyboard report: modifier byte, reserved byte, then
// up to 6 simultaneously pressed usage codes.
type linuxHIDWriter struct {
	f *os.File
}

// OpenHIDWriter opens the HID gadget device at path for writing.
func OpenHIDWriter(path string) (HIDWriter, error) {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("open HID gadget device %s: %w", path, err)
	}
	return &linuxHIDWriter{f: f}, nil
}

// WriteKey emits a press report followed by an all-zero release
// report, per spec.md §6's "full HID report pair" contract.
func (w *linuxHIDWriter) WriteKey(modifier keyevent.Modifiers, hidUsage byte) error {
	press := [8]byte{byte(modifier), 0, hidUsage}
	release := [8]byte{}

	if _, err := w.f.Write(press[:]); err != nil {
		return fmt.Errorf("write HID press report: %w", err)
	}
	if _, err := w.f.Write(release[:]); err != nil {
		return fmt.Errorf("write HID release report: %w", err)
	}
	return nil
}

func (w *linuxHIDWriter) Close() error { return w.f.Close() }

// linuxVirtualKeyboardWriter injects key events into the host kernel
// through a /dev/uinput virtual keyboard device.
type linuxVirtualKeyboardWriter struct {
	f *os.File
}

type uinputSetup struct {
	id          [8]byte // struct input_id: bustype, vendor, product, version (2 bytes each)
	name        [80]byte
	ffEffectsMax uint32
}

// OpenVirtualKeyboardWriter opens /dev/uinput, registers every
// keycode and modifier-representing key this system ever injects, and
// creates the virtual device. The created device is torn down on
// Close.
func OpenVirtualKeyboardWriter(path string) (VirtualKeyboardWriter, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("open uinput device %s: %w", path, err)
	}

	if err := unix.IoctlSetInt(int(f.Fd()), uiSetEvBit, evKey); err != nil {
		f.Close()
		return nil, fmt.Errorf("uinput set EV_KEY: %w", err)
	}
	for code := 0; code < 256; code++ {
		if err := unix.IoctlSetInt(int(f.Fd()), uiSetKeyBit, code); err != nil {
			f.Close()
			return nil, fmt.Errorf("uinput set key bit %d: %w", code, err)
		}
	}

	var setup uinputSetup
	copy(setup.name[:], "keyshield-virtual-keyboard")
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, f.Fd(), uintptr(uiDevSetup), uintptr(unsafe.Pointer(&setup))); errno != 0 {
		f.Close()
		return nil, fmt.Errorf("uinput dev setup: %w", errno)
	}
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, f.Fd(), uintptr(uiDevCreate), 0); errno != 0 {
		f.Close()
		return nil, fmt.Errorf("uinput dev create: %w", errno)
	}

	return &linuxVirtualKeyboardWriter{f: f}, nil
}

func (w *linuxVirtualKeyboardWriter) emit(typ, code uint16, value int32) error {
	buf := make([]byte, inputEventSize)
	binary.LittleEndian.PutUint16(buf[16:18], typ)
	binary.LittleEndian.PutUint16(buf[18:20], code)
	binary.LittleEndian.PutUint32(buf[20:24], uint32(value))
	_, err := w.f.Write(buf)
	return err
}

// WriteKey synthesizes the modifier key(s), the target key, and their
// releases, then a sync report, matching the press/release pair
// contract spec.md §6 requires of the virtual-keyboard sink.
func (w *linuxVirtualKeyboardWriter) WriteKey(modifier keyevent.Modifiers, keycode uint16) error {
	modKeys := modifierKeycodes(modifier)

	for _, mk := range modKeys {
		if err := w.emit(evKey, mk, 1); err != nil {
			return fmt.Errorf("press modifier: %w", err)
		}
	}
	if err := w.emit(evKey, keycode, 1); err != nil {
		return fmt.Errorf("press key: %w", err)
	}
	if err := w.emit(evSyn, synReport, 0); err != nil {
		return fmt.Errorf("sync after press: %w", err)
	}

	time.Sleep(time.Millisecond)

	if err := w.emit(evKey, keycode, 0); err != nil {
		return fmt.Errorf("release key: %w", err)
	}
	for _, mk := range modKeys {
		if err := w.emit(evKey, mk, 0); err != nil {
			return fmt.Errorf("release modifier: %w", err)
		}
	}
	return w.emit(evSyn, synReport, 0)
}

// evdev keycodes for the three modifier bits this system injects.
const (
	keyLeftCtrl  uint16 = 29
	keyLeftShift uint16 = 42
	keyLeftAlt   uint16 = 56
)

func modifierKeycodes(m keyevent.Modifiers) []uint16 {
	var out []uint16
	if m&keyevent.ModCtrl != 0 {
		out = append(out, keyLeftCtrl)
	}
	if m&keyevent.ModShift != 0 {
		out = append(out, keyLeftShift)
	}
	if m&keyevent.ModAlt != 0 {
		out = append(out, keyLeftAlt)
	}
	return out
}

func (w *linuxVirtualKeyboardWriter) Close() error {
	_, _, _ = unix.Syscall(unix.SYS_IOCTL, w.f.Fd(), uintptr(uiDevDestroy), 0)
	return w.f.Close()
}
