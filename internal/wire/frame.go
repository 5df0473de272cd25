// Package wire implements the trivial length-prefixed framing the
// handshake speaks over the serial link: a 4-byte big-endian length
// followed by exactly that many payload bytes. It is used only for
// the handshake and the time-base message; the keystroke stream
// afterward moves over a separate HID channel, never through here.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ErrLinkBroken is returned when fewer than the required number of
// header or payload bytes could be read, per the frame transport
// contract: any short read means the link is broken, not that a
// partial frame should be retried.
var ErrLinkBroken = errors.New("wire: link broken")

const headerLen = 4

// WriteFrame writes n followed by payload to w. A write error is
// returned wrapped with the frame part that failed; the caller decides
// fatality.
func WriteFrame(w io.Writer, payload []byte) error {
	var header [headerLen]byte
	binary.BigEndian.PutUint32(header[:], uint32(len(payload)))
	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("wire: write frame header: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("wire: write frame payload: %w", err)
	}
	return nil
}

// ReadFrame reads one length-prefixed frame from r. Short reads of
// either the header or the payload return ErrLinkBroken.
func ReadFrame(r io.Reader) ([]byte, error) {
	var header [headerLen]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("wire: read frame header: %w: %w", ErrLinkBroken, err)
	}
	n := binary.BigEndian.Uint32(header[:])
	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("wire: read frame payload: %w: %w", ErrLinkBroken, err)
	}
	return payload, nil
}
