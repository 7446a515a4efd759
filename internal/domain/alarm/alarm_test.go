package alarm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// reading builds an Instant for a fixed test date at the given time.
func reading(hour, minute, second int) Instant {
	return Instant{Year: 2025, Month: 5, Day: 23, Hour: hour, Minute: minute, Second: second}
}

// TestShouldTrigger_MinuteDedup verifies an alarm fires exactly once per
// calendar minute no matter how often it is evaluated.
func TestShouldTrigger_MinuteDedup(t *testing.T) {
	t.Parallel()

	a := New(7, 30, Daily{}, "Morning", true, DefaultStrength)

	require.True(t, a.ShouldTrigger(reading(7, 30, 0)))
	// Later seconds of the same minute never re-fire.
	require.False(t, a.ShouldTrigger(reading(7, 30, 1)))
	require.False(t, a.ShouldTrigger(reading(7, 30, 59)))

	// The next day is a different minute key.
	next := reading(7, 30, 0)
	next.Day = 24
	require.True(t, a.ShouldTrigger(next))
}

// TestShouldTrigger_DisabledAndMismatch covers the early-out steps.
func TestShouldTrigger_DisabledAndMismatch(t *testing.T) {
	t.Parallel()

	a := New(7, 30, Daily{}, "Morning", true, DefaultStrength)
	a.Enabled = false
	require.False(t, a.ShouldTrigger(reading(7, 30, 0)))

	a.Enabled = true
	require.False(t, a.ShouldTrigger(reading(7, 31, 0)))
	require.False(t, a.ShouldTrigger(reading(8, 30, 0)))
}

// TestShouldTrigger_OneShot asserts a one-time alarm disables itself when it
// fires and stays silent afterwards until explicitly re-enabled.
func TestShouldTrigger_OneShot(t *testing.T) {
	t.Parallel()

	a := New(6, 0, Daily{}, "Once", false, DefaultStrength)

	require.True(t, a.ShouldTrigger(reading(6, 0, 0)))
	require.False(t, a.Enabled)

	// Same matching time the next day: still disabled, still silent.
	next := reading(6, 0, 0)
	next.Day = 24
	require.False(t, a.ShouldTrigger(next))
	require.False(t, a.Enabled)

	// Re-enabling is the only way to fire again.
	a.Enabled = true
	require.True(t, a.ShouldTrigger(next))
	require.False(t, a.Enabled)
}

// TestShouldTrigger_Weekdays fires Monday through Friday and never on the
// weekend.
func TestShouldTrigger_Weekdays(t *testing.T) {
	t.Parallel()

	a := New(6, 30, Weekdays{Days: []int{0, 1, 2, 3, 4}}, "Work", true, DefaultStrength)

	day := Date{Year: 2024, Month: 2, Day: 26} // a Monday
	for offset := 0; offset < 7; offset++ {
		d := day.AddDays(offset)
		now := Instant{Year: d.Year, Month: d.Month, Day: d.Day, Hour: 6, Minute: 30}

		fired := a.ShouldTrigger(now)
		if offset < 5 {
			require.True(t, fired, "weekday offset %d", offset)
		} else {
			require.False(t, fired, "weekend offset %d", offset)
		}
	}
}

// TestShouldTrigger_OnDate matches only the exact calendar date.
func TestShouldTrigger_OnDate(t *testing.T) {
	t.Parallel()

	a := New(15, 0, OnDate{Date: Date{Year: 2025, Month: 5, Day: 23}}, "Dentist", false, DefaultStrength)

	wrongDay := Instant{Year: 2025, Month: 5, Day: 22, Hour: 15, Minute: 0}
	require.False(t, a.ShouldTrigger(wrongDay))

	right := Instant{Year: 2025, Month: 5, Day: 23, Hour: 15, Minute: 0}
	require.True(t, a.ShouldTrigger(right))
	require.False(t, a.Enabled)
}

// TestNew_ClampsStrength verifies out-of-range strengths are clamped, not
// rejected, and that a nil rule means daily.
func TestNew_ClampsStrength(t *testing.T) {
	t.Parallel()

	require.Equal(t, 100, New(7, 0, nil, "A", true, 150).Strength)
	require.Equal(t, 0, New(7, 0, nil, "A", true, -5).Strength)
	require.Equal(t, 75, New(7, 0, nil, "A", true, 75).Strength)

	a := New(7, 0, nil, "A", true, 75)
	require.Equal(t, Daily{}, a.Rule)
}

// TestClone ensures weekday sets are deep-copied and trigger state carries over.
func TestClone(t *testing.T) {
	t.Parallel()

	a := New(6, 30, Weekdays{Days: []int{0, 4}}, "Work", true, 80)
	require.True(t, a.ShouldTrigger(Instant{Year: 2024, Month: 2, Day: 26, Hour: 6, Minute: 30}))

	b := a.Clone()
	require.Equal(t, a, b)
	require.NotSame(t, a, b)

	b.Rule.(Weekdays).Days[0] = 6
	require.Equal(t, 0, a.Rule.(Weekdays).Days[0])

	require.Nil(t, (*Alarm)(nil).Clone())
}

// TestString renders the list line format.
func TestString(t *testing.T) {
	t.Parallel()

	a := New(6, 30, Weekdays{Days: []int{4, 0}}, "Work", true, 80)
	require.Equal(t, "Work: 06:30 (Mon, Fri) [Recurring] [ON] [Vibration: 80%]", a.String())

	b := New(9, 5, OnDate{Date: Date{Year: 2025, Month: 12, Day: 31}}, "NYE", false, 75)
	b.Enabled = false
	require.Equal(t, "NYE: 09:05 (2025-12-31) [One-time] [OFF] [Vibration: 75%]", b.String())
}
