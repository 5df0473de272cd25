// Package loop contains the one canonical event loop per side of the
// link (spec.md §5): single-threaded, cooperative, strict FIFO with
// respect to capture order. There is deliberately only one RunSender
// and one RunEndpoint, replacing the source's several overlapping
// draft main loops (spec.md §9).
package loop

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/omg-shield/keyshield/internal/hidio"
	"github.com/omg-shield/keyshield/internal/keyevent"
	"github.com/omg-shield/keyshield/internal/obs"
	"github.com/omg-shield/keyshield/internal/scramble"
	"github.com/omg-shield/keyshield/internal/session"
)

// maxConsecutiveIOErrors bounds the backoff-and-retry behavior on
// transient device read/write failures, the same death-spiral cap the
// teacher's RoutineReceiveIncoming applies to its UDP recv loop,
// scaled down for a single blocking device read instead of a batched
// socket recv.
const maxConsecutiveIOErrors = 10

// RunSender drives A's loop: read capture events, scramble them,
// write HID reports. It returns nil on a clean ctx cancellation and a
// non-nil error on any other termination, per the error-kind table's
// fatal-vs-warn-and-continue split.
func RunSender(ctx context.Context, log *slog.Logger, sess *session.Session, capture hidio.KeyboardCapture, hid hidio.HIDWriter) error {
	if err := capture.Grab(); err != nil {
		return obs.Wrap(obs.KindDeviceAcquisition, err)
	}
	defer func() {
		if err := capture.Close(); err != nil {
			log.Debug("error closing keyboard capture", slog.Any("error", err))
		}
	}()

	scrambler := scramble.NewScrambler(sess.SenderClock(), sess.PermutationCache(), sess.Tunables.GuardWindow)

	consecutiveErrors := 0
	for {
		evt, err := capture.Next()
		if err != nil {
			if ctx.Err() != nil {
				log.Info("sender loop stopping", slog.String("reason", "interrupt"))
				return nil
			}
			consecutiveErrors++
			if consecutiveErrors >= maxConsecutiveIOErrors {
				return obs.Wrap(obs.KindDeviceLost, err)
			}
			log.Warn("transient keyboard capture read error, retrying", slog.Any("error", err))
			time.Sleep(50 * time.Millisecond)
			continue
		}
		consecutiveErrors = 0

		logCheckpoint(log, obs.Stamp(obs.StageCapture, sess.SenderClock().CurrentCounter(time.Now())))

		out, ok, err := scrambler.Handle(evt)
		if err != nil {
			if handleSkippableError(log, err) {
				continue
			}
			return err
		}
		if !ok {
			continue
		}

		logCheckpoint(log, obs.Stamp(obs.StageEncryptSend, sess.SenderClock().CurrentCounter(time.Now())))

		if err := hid.WriteKey(out.Modifier, out.HIDUsage); err != nil {
			return obs.Wrap(obs.KindDeviceLost, err)
		}
	}
}

// RunEndpoint drives B's loop: read the scrambled HID-derived capture
// stream, unscramble, inject into the virtual keyboard.
func RunEndpoint(ctx context.Context, log *slog.Logger, sess *session.Session, capture hidio.KeyboardCapture, vk hidio.VirtualKeyboardWriter) error {
	if err := capture.Grab(); err != nil {
		return obs.Wrap(obs.KindDeviceAcquisition, err)
	}
	defer func() {
		if err := capture.Close(); err != nil {
			log.Debug("error closing HID input device", slog.Any("error", err))
		}
	}()

	unscrambler := scramble.NewUnscrambler(sess.EndpointClock(), sess.PermutationCache())
	var modstate keyevent.ModifierState

	consecutiveErrors := 0
	for {
		evt, err := capture.Next()
		if err != nil {
			if ctx.Err() != nil {
				log.Info("endpoint loop stopping", slog.String("reason", "interrupt"))
				return nil
			}
			consecutiveErrors++
			if consecutiveErrors >= maxConsecutiveIOErrors {
				return obs.Wrap(obs.KindDeviceLost, err)
			}
			log.Warn("transient HID input read error, retrying", slog.Any("error", err))
			time.Sleep(50 * time.Millisecond)
			continue
		}
		consecutiveErrors = 0

		if modstate.Apply(evt) {
			continue
		}

		logCheckpoint(log, obs.Stamp(obs.StageReceive, sess.EndpointClock().CurrentCounter(time.Now())))

		out, ok, err := unscrambler.Handle(evt, modstate.ShiftDown, modstate.CtrlDown)
		if err != nil {
			if handleSkippableError(log, err) {
				continue
			}
			return err
		}
		if !ok {
			continue
		}

		logCheckpoint(log, obs.Stamp(obs.StageDecryptInject, sess.EndpointClock().CurrentCounter(time.Now())))

		if err := vk.WriteKey(out.Modifier, out.Keycode); err != nil {
			return obs.Wrap(obs.KindDeviceLost, err)
		}
	}
}

// logCheckpoint emits a checkpoint as a debug log line: the one hook
// a future latency-profiling pass needs (correlate StageCapture and
// StageDecryptInject timestamps for the same counter across A's and
// B's logs) without building the offline analysis pipeline itself.
func logCheckpoint(log *slog.Logger, cp obs.Checkpoint) {
	log.Debug("checkpoint",
		slog.String("stage", string(cp.Stage)),
		slog.Uint64("counter", cp.Counter),
		slog.Time("at", cp.At))
}

// handleSkippableError logs and continues for error kinds the policy
// table marks PolicySkip, and reports false (fatal) otherwise.
func handleSkippableError(log *slog.Logger, err error) bool {
	var obsErr *obs.Error
	if !errors.As(err, &obsErr) {
		return false
	}
	if obs.PolicyFor(obsErr.Kind) != obs.PolicySkip {
		return false
	}
	log.Debug("skipping unmappable keystroke", slog.Any("error", err))
	return true
}
