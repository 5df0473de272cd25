// Command sender is process A: it grabs the local keyboard, scrambles
// each keystroke under the active rotating permutation, and emits it
// as a USB HID report to the gadget device wired to the serial link's
// far end. Per spec.md §6 there is no CLI/flag surface; every tunable
// is a compile-time default overridable only through internal/config's
// functional options, which this binary does not expose.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/omg-shield/keyshield/internal/config"
	"github.com/omg-shield/keyshield/internal/handshake"
	"github.com/omg-shield/keyshield/internal/hidio"
	"github.com/omg-shield/keyshield/internal/loop"
	"github.com/omg-shield/keyshield/internal/obs"
	"github.com/omg-shield/keyshield/internal/session"
)

func main() {
	log := obs.NewLogger("sender", os.Getenv("KEYSHIELD_DEBUG") != "")
	tunables := config.Default()

	if err := run(log, tunables); err != nil {
		log.Error("sender exiting on fatal error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(log *slog.Logger, tunables config.Tunables) error {
	serial, err := os.OpenFile(tunables.SerialDevicePath, os.O_RDWR, 0)
	if err != nil {
		return obs.Wrap(obs.KindHandshakeIO, err)
	}
	defer serial.Close()

	log.Info("running handshake", slog.String("device", tunables.SerialDevicePath))
	result, err := handshake.RunInitiator(serial, time.Now)
	if err != nil {
		return err
	}
	log.Info("handshake complete", slog.Time("base_time", result.BaseTime))

	sess := session.New(result.Key, result.BaseTime, tunables)
	log.Info("session established", slog.String("session_id", sess.ID.String()))

	capture, err := hidio.OpenKeyboardCapture(tunables.HIDInputPath)
	if err != nil {
		return obs.Wrap(obs.KindDeviceAcquisition, err)
	}

	hidWriter, err := hidio.OpenHIDWriter(tunables.HIDGadgetPath)
	if err != nil {
		return obs.Wrap(obs.KindDeviceAcquisition, err)
	}
	defer hidWriter.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		log.Info("interrupt received, releasing keyboard capture")
		_ = capture.Close()
	}()

	return loop.RunSender(ctx, log, sess, capture, hidWriter)
}
