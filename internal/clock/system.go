package clock

import (
	"errors"
	"time"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
)

// ErrSystemClockReadOnly is returned when trying to set the host clock.
var ErrSystemClockReadOnly = errors.New("system clock is read-only")

// System serves readings from the host wall clock in local time. Reads
// never fail. Writes are rejected: the host clock belongs to the OS.
type System struct{}

// Read implements Clock.
func (System) Read() (domain.Instant, bool) {
	now := time.Now()

	return domain.Instant{
		Year:   now.Year(),
		Month:  int(now.Month()),
		Day:    now.Day(),
		Hour:   now.Hour(),
		Minute: now.Minute(),
		Second: now.Second(),
	}, true
}

// Write implements Clock.
func (System) Write(domain.Instant) error {
	return ErrSystemClockReadOnly
}
