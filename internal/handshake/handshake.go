// Package handshake implements the one-time key-agreement exchange
// of spec.md §4.2: an unauthenticated ephemeral X25519 Diffie-Hellman
// exchange over the frame transport, HKDF-SHA256 to the shared
// symmetric key, and a base-time exchange. Role asymmetry is fixed —
// A always initiates, B always responds — mirroring the
// initiator/responder split of the teacher's own Noise handshake
// state machine, simplified to a bare DH exchange with no static
// identity, cookie, or replay-protection machinery: the threat model
// explicitly excludes MITM resistance during this phase.
package handshake

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/hkdf"

	"github.com/omg-shield/keyshield/internal/obs"
	"github.com/omg-shield/keyshield/internal/wire"
)

// hkdfInfo is the fixed info string both peers bind the KDF to.
const hkdfInfo = "serial-handshake"

// Result is everything the handshake produces: the derived symmetric
// key and, on both sides, the base time A transmitted (whole Unix
// seconds).
type Result struct {
	Key      [32]byte
	BaseTime time.Time
}

// generateEphemeral creates a fresh X25519 keypair. Any I/O error
// reading entropy is itself fatal, since without it no keypair can
// be produced.
func generateEphemeral() (priv [32]byte, pub [32]byte, err error) {
	if _, err := io.ReadFull(rand.Reader, priv[:]); err != nil {
		return priv, pub, fmt.Errorf("handshake: generate ephemeral key: %w", err)
	}
	// Clamp per X25519's scalar requirements.
	priv[0] &= 248
	priv[31] &= 127
	priv[31] |= 64

	pubBytes, err := curve25519.X25519(priv[:], curve25519.Basepoint)
	if err != nil {
		return priv, pub, fmt.Errorf("handshake: derive ephemeral public key: %w", err)
	}
	copy(pub[:], pubBytes)
	return priv, pub, nil
}

func sharedSecret(priv, peerPub [32]byte) ([32]byte, error) {
	var out [32]byte
	secret, err := curve25519.X25519(priv[:], peerPub[:])
	if err != nil {
		return out, obs.Wrap(obs.KindHandshakeCrypto, fmt.Errorf("compute shared secret: %w", err))
	}
	copy(out[:], secret)
	return out, nil
}

func deriveKey(shared [32]byte) ([32]byte, error) {
	var key [32]byte
	reader := hkdf.New(sha256.New, shared[:], nil, []byte(hkdfInfo))
	if _, err := io.ReadFull(reader, key[:]); err != nil {
		return key, obs.Wrap(obs.KindHandshakeCrypto, fmt.Errorf("hkdf expand: %w", err))
	}
	return key, nil
}

// wrapPublicKeyErr tags a ReadPublicKey failure: a broken link is a
// handshake I/O error, a frame of the wrong length is a malformed peer
// key and therefore a handshake crypto error.
func wrapPublicKeyErr(err error) error {
	if errors.Is(err, wire.ErrLinkBroken) {
		return obs.Wrap(obs.KindHandshakeIO, err)
	}
	return obs.Wrap(obs.KindHandshakeCrypto, err)
}

// RunInitiator performs A's side of the handshake: send A_pub,
// receive B_pub, derive K, then send T0 as A's current Unix time.
// Any I/O error is fatal per spec.md §4.2.
func RunInitiator(rw io.ReadWriter, now func() time.Time) (*Result, error) {
	aPriv, aPub, err := generateEphemeral()
	if err != nil {
		return nil, obs.Wrap(obs.KindHandshakeCrypto, err)
	}

	if err := wire.WritePublicKey(rw, aPub); err != nil {
		return nil, obs.Wrap(obs.KindHandshakeIO, err)
	}

	bPub, err := wire.ReadPublicKey(rw)
	if err != nil {
		return nil, wrapPublicKeyErr(err)
	}

	shared, err := sharedSecret(aPriv, bPub)
	if err != nil {
		return nil, err
	}
	key, err := deriveKey(shared)
	if err != nil {
		return nil, err
	}

	t0 := time.Unix(now().Unix(), 0)
	if err := wire.WriteBaseTime(rw, t0.Unix()); err != nil {
		return nil, obs.Wrap(obs.KindHandshakeIO, err)
	}

	return &Result{Key: key, BaseTime: t0}, nil
}

// RunResponder performs B's side: receive A_pub, send B_pub, derive
// K, then receive T0 and best-effort set the local system clock from
// it (failure is a warning, not fatal — per the error handling
// table, B proceeds using T0 relative to its own clock regardless).
// setClock may be nil to skip the adjustment entirely.
func RunResponder(rw io.ReadWriter, log *slog.Logger, setClock func(time.Time) error) (*Result, error) {
	aPub, err := wire.ReadPublicKey(rw)
	if err != nil {
		return nil, wrapPublicKeyErr(err)
	}

	bPriv, bPub, err := generateEphemeral()
	if err != nil {
		return nil, obs.Wrap(obs.KindHandshakeCrypto, err)
	}
	if err := wire.WritePublicKey(rw, bPub); err != nil {
		return nil, obs.Wrap(obs.KindHandshakeIO, err)
	}

	shared, err := sharedSecret(bPriv, aPub)
	if err != nil {
		return nil, err
	}
	key, err := deriveKey(shared)
	if err != nil {
		return nil, err
	}

	t0unix, err := wire.ReadBaseTime(rw)
	if err != nil {
		return nil, obs.Wrap(obs.KindHandshakeIO, err)
	}
	t0 := time.Unix(t0unix, 0)

	if setClock != nil {
		if err := setClock(t0); err != nil {
			if log != nil {
				log.Warn("failed to set system clock from handshake base time, proceeding with local clock",
					slog.Any("error", obs.Wrap(obs.KindClockAdjustment, err)))
			}
		}
	}

	return &Result{Key: key, BaseTime: t0}, nil
}
