package clock

import (
	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
)

// Clock is the wall-clock collaborator. Read availability is signalled by
// the ok flag rather than an error: a failed RTC read is an expected
// condition the tick loop counts and backs off on, not an exceptional one.
type Clock interface {
	// Read returns the current time, or ok=false when the clock is
	// unavailable.
	Read() (domain.Instant, bool)
	// Write sets the clock. Not every implementation supports it.
	Write(domain.Instant) error
}
