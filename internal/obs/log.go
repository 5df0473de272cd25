// Package obs is the ambient observability layer shared by both
// peers: structured logging and the error-kind taxonomy from the
// error handling design. It never logs keystroke content, only
// protocol-level events (handshake phases, rotation counters, I/O
// failures) — the product-telemetry Non-goal is about *content*
// analytics, not "did the permutation just rotate".
package obs

import (
	"io"
	"log/slog"
	"os"

	"hermannm.dev/devlog"
)

// NewLogger wires up devlog's pretty slog handler as the process
// default and returns a logger scoped with a component label (e.g.
// "sender", "handshake", "rotation").
func NewLogger(component string, debug bool) *slog.Logger {
	level := new(slog.LevelVar)
	if debug {
		level.Set(slog.LevelDebug)
	}
	handler := devlog.NewHandler(os.Stdout, &devlog.Options{Level: level})
	logger := slog.New(handler).With(slog.String("component", component))
	slog.SetDefault(logger)
	return logger
}

// NewTestLogger discards output; used by tests that exercise code
// paths which log but whose assertions don't care about the log
// stream.
func NewTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
