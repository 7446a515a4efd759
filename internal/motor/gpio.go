//go:build linux

package motor

import (
	"fmt"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

// GPIODriver drives the motor through two direction lines on a GPIO chip.
// The lines feed an H-bridge motor board that owns the duty-cycle mapping;
// at this level any non-zero strength energises the selected direction.
type GPIODriver struct {
	chip    *gpiocdev.Chip
	forward *gpiocdev.Line
	reverse *gpiocdev.Line
}

// NewGPIODriver opens the chip (e.g. "gpiochip0") and requests the two
// direction lines as outputs, initially off.
func NewGPIODriver(chipName string, forwardPin, reversePin int) (*GPIODriver, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	forward, err := chip.RequestLine(forwardPin, gpiocdev.AsOutput(0))
	if err != nil {
		_ = chip.Close()

		return nil, fmt.Errorf("request forward pin %d: %w", forwardPin, err)
	}

	reverse, err := chip.RequestLine(reversePin, gpiocdev.AsOutput(0))
	if err != nil {
		_ = forward.Close()
		_ = chip.Close()

		return nil, fmt.Errorf("request reverse pin %d: %w", reversePin, err)
	}

	return &GPIODriver{chip: chip, forward: forward, reverse: reverse}, nil
}

// Forward implements Driver.
func (d *GPIODriver) Forward(strength int) error {
	return d.drive(d.forward, d.reverse, strength)
}

// Reverse implements Driver.
func (d *GPIODriver) Reverse(strength int) error {
	return d.drive(d.reverse, d.forward, strength)
}

// Stop implements Driver.
func (d *GPIODriver) Stop() error {
	if err := d.forward.SetValue(0); err != nil {
		return fmt.Errorf("clear forward line: %w", err)
	}

	if err := d.reverse.SetValue(0); err != nil {
		return fmt.Errorf("clear reverse line: %w", err)
	}

	return nil
}

// drive energises the active line and clears the opposite one.
func (d *GPIODriver) drive(active, opposite *gpiocdev.Line, strength int) error {
	level := 0
	if strength > 0 {
		level = 1
	}

	if err := opposite.SetValue(0); err != nil {
		return fmt.Errorf("clear opposite line: %w", err)
	}

	if err := active.SetValue(level); err != nil {
		return fmt.Errorf("set drive line: %w", err)
	}

	return nil
}

// Close releases the lines and the chip.
func (d *GPIODriver) Close() error {
	_ = d.Stop()
	_ = d.forward.Close()
	_ = d.reverse.Close()

	return d.chip.Close()
}

// HoldButton is a Canceler backed by an active-low push button. Canceled
// reports true once the button has been observed held across polls for at
// least the hold duration, then resets for the next alarm.
type HoldButton struct {
	line *gpiocdev.Line
	hold time.Duration

	pressedSince time.Time
}

// NewHoldButton requests the button line as a pulled-up input.
func NewHoldButton(chipName string, pin int, hold time.Duration) (*HoldButton, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	line, err := chip.RequestLine(pin, gpiocdev.AsInput, gpiocdev.WithPullUp)
	if err != nil {
		_ = chip.Close()

		return nil, fmt.Errorf("request button pin %d: %w", pin, err)
	}

	// The chip handle is no longer needed once the line is requested.
	_ = chip.Close()

	return &HoldButton{line: line, hold: hold}, nil
}

// Canceled implements Canceler.
func (b *HoldButton) Canceled() bool {
	value, err := b.line.Value()
	if err != nil || value != 0 {
		// Released (or unreadable): restart the hold window.
		b.pressedSince = time.Time{}

		return false
	}

	now := time.Now()
	if b.pressedSince.IsZero() {
		b.pressedSince = now

		return false
	}

	if now.Sub(b.pressedSince) >= b.hold {
		b.pressedSince = time.Time{}

		return true
	}

	return false
}

// Close releases the button line.
func (b *HoldButton) Close() error {
	return b.line.Close()
}
