//go:build !linux

package motor

import (
	"errors"
	"time"
)

// The GPIO implementations need the Linux GPIO character device.

// NewGPIODriver is unavailable off Linux.
func NewGPIODriver(string, int, int) (Driver, error) {
	return nil, errors.New("gpio motor driver requires linux")
}

// NewHoldButton is unavailable off Linux.
func NewHoldButton(string, int, time.Duration) (Canceler, error) {
	return nil, errors.New("gpio hold button requires linux")
}
