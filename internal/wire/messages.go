package wire

import (
	"fmt"
	"io"
	"strconv"
)

// PublicKeySize is the length of a raw X25519 public key frame.
const PublicKeySize = 32

// WritePublicKey sends a raw 32-byte X25519 public key as a single
// frame (handshake frames 1 and 2).
func WritePublicKey(w io.Writer, pub [PublicKeySize]byte) error {
	return WriteFrame(w, pub[:])
}

// ReadPublicKey reads and validates a 32-byte X25519 public key
// frame. A payload of the wrong length is a malformed peer key,
// which is a handshake crypto failure.
func ReadPublicKey(r io.Reader) ([PublicKeySize]byte, error) {
	var pub [PublicKeySize]byte
	payload, err := ReadFrame(r)
	if err != nil {
		return pub, err
	}
	if len(payload) != PublicKeySize {
		return pub, fmt.Errorf("wire: public key frame has length %d, want %d", len(payload), PublicKeySize)
	}
	copy(pub[:], payload)
	return pub, nil
}

// WriteBaseTime sends A's Unix-epoch seconds as the decimal ASCII
// payload of handshake frame 3, with no trailing newline.
func WriteBaseTime(w io.Writer, unixSeconds int64) error {
	return WriteFrame(w, []byte(strconv.FormatInt(unixSeconds, 10)))
}

// ReadBaseTime reads and parses the decimal ASCII base-time frame.
func ReadBaseTime(r io.Reader) (int64, error) {
	payload, err := ReadFrame(r)
	if err != nil {
		return 0, err
	}
	t0, err := strconv.ParseInt(string(payload), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("wire: malformed base time frame: %w", err)
	}
	return t0, nil
}
