package clock

import (
	"sync"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
)

// Fake is a test double that serves scripted readings. Each Read consumes
// the next reading; once the script is exhausted the last reading repeats.
// Failures (scripted unavailability) are consumed before any reading.
type Fake struct {
	mu sync.Mutex

	// Readings is the script of clock values to serve.
	Readings []domain.Instant
	// Failures is how many upcoming reads report the clock unavailable.
	Failures int
	// Written collects every value passed to Write.
	Written []domain.Instant
	// WriteErr, if set, is returned by Write.
	WriteErr error

	index int
}

// NewFake creates a Fake serving the given readings in order.
func NewFake(readings ...domain.Instant) *Fake {
	return &Fake{Readings: readings}
}

// Read implements Clock.
func (f *Fake) Read() (domain.Instant, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.Failures > 0 {
		f.Failures--

		return domain.Instant{}, false
	}

	if len(f.Readings) == 0 {
		return domain.Instant{}, false
	}

	reading := f.Readings[f.index]
	if f.index < len(f.Readings)-1 {
		f.index++
	}

	return reading, true
}

// Write implements Clock.
func (f *Fake) Write(value domain.Instant) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.WriteErr != nil {
		return f.WriteErr
	}

	f.Written = append(f.Written, value)

	return nil
}
