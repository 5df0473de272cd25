// Package session holds the explicit, immutable context the
// handshake produces and the event loop threads through the rest of
// the pipeline. It exists specifically to replace the source's
// process-wide cached-singleton getters for the symmetric key and
// base time (spec.md §9): there is exactly one construction site
// (the handshake phase) and every downstream consumer receives a
// *Session value explicitly instead of reaching for a global.
package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/omg-shield/keyshield/internal/config"
	"github.com/omg-shield/keyshield/internal/rotation"
)

// Session is the output of a completed handshake: the shared key K,
// the base time T0, the tunables in effect, and a correlation ID
// used only for log lines (never transmitted, never derived from key
// material).
type Session struct {
	ID       uuid.UUID
	Key      [32]byte
	BaseTime time.Time
	Tunables config.Tunables
}

// New builds a Session from a completed handshake's outputs.
func New(key [32]byte, baseTime time.Time, tunables config.Tunables) *Session {
	return &Session{
		ID:       uuid.New(),
		Key:      key,
		BaseTime: baseTime,
		Tunables: tunables,
	}
}

// SenderClock returns the rotation clock A uses, built from this
// session's base time and tunables.
func (s *Session) SenderClock() rotation.Clock {
	return rotation.NewSenderClock(s.BaseTime, s.Tunables.Interval, s.Tunables.SenderOffset)
}

// EndpointClock returns the rotation clock B uses.
func (s *Session) EndpointClock() rotation.Clock {
	return rotation.NewEndpointClock(s.BaseTime, s.Tunables.Interval)
}

// PermutationCache returns a fresh one-slot permutation cache bound
// to this session's key.
func (s *Session) PermutationCache() *rotation.Cache {
	return rotation.NewCache(s.Key)
}
