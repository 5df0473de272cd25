//go:build !linux

package main

import (
	"errors"
	"runtime"
	"time"
)

func setSystemClock(t time.Time) error {
	return errors.New("setting the system clock is not supported on " + runtime.GOOS)
}
