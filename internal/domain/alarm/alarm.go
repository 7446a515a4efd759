package alarm

import (
	"fmt"
	"sort"
	"strings"
)

// Field limits for alarm definitions.
const (
	// MaxHour is the largest valid hour value.
	MaxHour = 23
	// MaxMinute is the largest valid minute value.
	MaxMinute = 59
	// MaxStrength is the largest valid vibration strength percentage.
	MaxStrength = 100
	// DefaultStrength is the vibration strength used when none is given.
	DefaultStrength = 75
)

// dayNames holds short weekday labels in Monday-first order.
var dayNames = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// Instant is one wall-clock reading from the clock collaborator.
type Instant struct {
	Year   int
	Month  int
	Day    int
	Hour   int
	Minute int
	Second int
}

// Date returns the calendar date part of the instant.
func (i Instant) Date() Date {
	return Date{Year: i.Year, Month: i.Month, Day: i.Day}
}

// MinuteKey identifies a single calendar minute. It is the deduplication
// unit for alarm firing: an alarm never fires twice within the same key.
type MinuteKey struct {
	Year   int
	Month  int
	Day    int
	Hour   int
	Minute int
}

// Recurrence decides which calendar dates an alarm is eligible to fire on.
// The method set is unexported, so Daily, Weekdays and OnDate are the only
// possible implementations and type switches over them are exhaustive.
type Recurrence interface {
	// matches reports whether the rule allows firing on the given date.
	matches(d Date) bool
	// Label returns a short human-readable description of the rule.
	Label() string
}

// Daily fires every day.
type Daily struct{}

func (Daily) matches(Date) bool { return true }

// Label implements Recurrence.
func (Daily) Label() string { return "Daily" }

// Weekdays fires on the listed days of week, 0=Monday .. 6=Sunday.
// An empty set never matches; callers projecting the next trigger must
// treat it as undeterminable rather than "never".
type Weekdays struct {
	// Days holds the eligible weekday numbers.
	Days []int
}

func (w Weekdays) matches(d Date) bool {
	weekday := Weekday(d.Year, d.Month, d.Day)
	for _, day := range w.Days {
		if day == weekday {
			return true
		}
	}

	return false
}

// Label implements Recurrence.
func (w Weekdays) Label() string {
	sorted := append([]int(nil), w.Days...)
	sort.Ints(sorted)

	names := make([]string, 0, len(sorted))
	for _, day := range sorted {
		if day >= 0 && day < len(dayNames) {
			names = append(names, dayNames[day])
		}
	}

	return strings.Join(names, ", ")
}

// OnDate fires on one specific calendar date.
type OnDate struct {
	// Date is the only date the alarm is eligible to fire on.
	Date Date
}

func (o OnDate) matches(d Date) bool { return d == o.Date }

// Label implements Recurrence.
func (o OnDate) Label() string {
	return fmt.Sprintf("%d-%02d-%02d", o.Date.Year, o.Date.Month, o.Date.Day)
}

// Alarm is a single alarm definition together with its trigger
// deduplication state. The registry is the exclusive owner of Alarm values;
// everything handed to other components is a clone.
type Alarm struct {
	// Hour is the firing hour, 0..23.
	Hour int
	// Minute is the firing minute, 0..59.
	Minute int
	// Rule decides which dates the alarm is eligible to fire on.
	Rule Recurrence
	// Name identifies the alarm for display and name-based lookup.
	Name string
	// Enabled gates all trigger evaluation.
	Enabled bool
	// Recurring is false for one-shot alarms, which disable themselves
	// the moment they fire.
	Recurring bool
	// Strength is the vibration strength percentage, 0..100.
	Strength int

	// lastTriggered is the minute key of the most recent firing. It is
	// overwritten on every firing, never accumulated.
	lastTriggered MinuteKey
	// fired is false until the alarm has triggered at least once.
	fired bool
}

// New creates an enabled alarm. A nil rule means daily; strength is
// clamped into range rather than rejected (range validation belongs to the
// registry, which refuses out-of-range input before constructing anything).
func New(hour, minute int, rule Recurrence, name string, recurring bool, strength int) *Alarm {
	if rule == nil {
		rule = Daily{}
	}

	return &Alarm{
		Hour:      hour,
		Minute:    minute,
		Rule:      rule,
		Name:      name,
		Enabled:   true,
		Recurring: recurring,
		Strength:  ClampStrength(strength),
	}
}

// ClampStrength forces a vibration strength into the 0..100 range.
func ClampStrength(strength int) int {
	if strength < 0 {
		return 0
	}

	if strength > MaxStrength {
		return MaxStrength
	}

	return strength
}

// ShouldTrigger runs one evaluation step against a clock reading and
// reports whether the alarm fires now. On a match it records the minute key
// and, for one-shot alarms, disables the alarm in the same step, so no
// failure can leave Enabled and the key out of sync. Evaluation is
// minute-granular: calling this every second within the matching minute
// yields exactly one firing.
func (a *Alarm) ShouldTrigger(now Instant) bool {
	if !a.Enabled {
		return false
	}

	if now.Hour != a.Hour || now.Minute != a.Minute {
		return false
	}

	key := MinuteKey{
		Year:   now.Year,
		Month:  now.Month,
		Day:    now.Day,
		Hour:   now.Hour,
		Minute: now.Minute,
	}

	// Already fired within this exact minute.
	if a.fired && a.lastTriggered == key {
		return false
	}

	if a.Rule == nil || !a.Rule.matches(now.Date()) {
		return false
	}

	a.lastTriggered = key
	a.fired = true

	if !a.Recurring {
		a.Enabled = false
	}

	return true
}

// Clone returns a deep copy of the alarm so internal state never leaks out
// of the registry.
func (a *Alarm) Clone() *Alarm {
	if a == nil {
		return nil
	}

	cloned := *a

	if w, ok := a.Rule.(Weekdays); ok {
		cloned.Rule = Weekdays{Days: append([]int(nil), w.Days...)}
	}

	return &cloned
}

// String renders the alarm in the device's list format.
func (a *Alarm) String() string {
	status := "OFF"
	if a.Enabled {
		status = "ON"
	}

	kind := "One-time"
	if a.Recurring {
		kind = "Recurring"
	}

	rule := "Daily"
	if a.Rule != nil {
		rule = a.Rule.Label()
	}

	return fmt.Sprintf(
		"%s: %02d:%02d (%s) [%s] [%s] [Vibration: %d%%]",
		a.Name, a.Hour, a.Minute, rule, kind, status, a.Strength,
	)
}
