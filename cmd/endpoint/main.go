// Command endpoint is process B: it grabs the HID-gadget-presented
// input device carrying A's scrambled keystream, unscrambles each
// keystroke under the matching rotating permutation, and injects it
// into a virtual keyboard so the host sees the original keystrokes.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/omg-shield/keyshield/internal/config"
	"github.com/omg-shield/keyshield/internal/handshake"
	"github.com/omg-shield/keyshield/internal/hidio"
	"github.com/omg-shield/keyshield/internal/loop"
	"github.com/omg-shield/keyshield/internal/obs"
	"github.com/omg-shield/keyshield/internal/session"
)

func main() {
	log := obs.NewLogger("endpoint", os.Getenv("KEYSHIELD_DEBUG") != "")
	tunables := config.Default()

	if err := run(log, tunables); err != nil {
		log.Error("endpoint exiting on fatal error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(log *slog.Logger, tunables config.Tunables) error {
	serial, err := os.OpenFile(tunables.SerialDevicePath, os.O_RDWR, 0)
	if err != nil {
		return obs.Wrap(obs.KindHandshakeIO, err)
	}
	defer serial.Close()

	log.Info("waiting for handshake", slog.String("device", tunables.SerialDevicePath))
	result, err := handshake.RunResponder(serial, log, setSystemClock)
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

	vk, err := hidio.OpenVirtualKeyboardWriter(tunables.VirtualKeyboardPath)
	if err != nil {
		return obs.Wrap(obs.KindDeviceAcquisition, err)
	}
	defer vk.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		log.Info("interrupt received, releasing HID input device")
		_ = capture.Close()
	}()

	return loop.RunEndpoint(ctx, log, sess, capture, vk)
}
