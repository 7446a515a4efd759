package motor

// Driver drives the vibration motor. Strength is a percentage 0..100; how
// that maps onto an actual drive level (PWM duty, on/off threshold) is the
// hardware implementation's concern, not the dispatcher's.
type Driver interface {
	// Forward drives the motor in the forward direction.
	Forward(strength int) error
	// Reverse drives the motor in the reverse direction.
	Reverse(strength int) error
	// Stop cuts power on both direction lines.
	Stop() error
}

// Canceler reports whether the user asked a running alarm pattern to stop.
// The dispatcher polls it between pattern sub-steps only; implementations
// must be cheap and must never block.
type Canceler interface {
	Canceled() bool
}

// Noop is a Driver that drives nothing. Used when the device runs without
// a motor (development hosts, link-only deployments).
type Noop struct{}

// Forward implements Driver.
func (Noop) Forward(int) error { return nil }

// Reverse implements Driver.
func (Noop) Reverse(int) error { return nil }

// Stop implements Driver.
func (Noop) Stop() error { return nil }

// NeverCanceled is a Canceler with no input behind it.
type NeverCanceled struct{}

// Canceled implements Canceler.
func (NeverCanceled) Canceled() bool { return false }
