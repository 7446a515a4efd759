package alarm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestWeekday checks the Monday-first weekday numbering against reference dates.
func TestWeekday(t *testing.T) {
	t.Parallel()

	// 2024-01-01 was a Monday.
	require.Equal(t, 0, Weekday(2024, 1, 1))
	// 2000-02-29 was a Tuesday (and a century leap day).
	require.Equal(t, 1, Weekday(2000, 2, 29))
	// 2025-05-23 was a Friday.
	require.Equal(t, 4, Weekday(2025, 5, 23))
	// 2023-12-31 was a Sunday.
	require.Equal(t, 6, Weekday(2023, 12, 31))
	// March of a year whose Zeller sum dips negative before normalisation.
	require.Equal(t, 2, Weekday(2000, 3, 1))
}

// TestWeekdayStable verifies consecutive dates cycle through the week.
func TestWeekdayStable(t *testing.T) {
	t.Parallel()

	d := Date{Year: 2024, Month: 2, Day: 26} // a Monday
	for offset := 0; offset < 14; offset++ {
		next := d.AddDays(offset)
		require.Equal(t, offset%7, Weekday(next.Year, next.Month, next.Day), "offset %d", offset)
	}
}

// TestIsLeapYear covers the divisible-by-4/100/400 rule.
func TestIsLeapYear(t *testing.T) {
	t.Parallel()

	require.True(t, IsLeapYear(2024))
	require.True(t, IsLeapYear(2000))
	require.False(t, IsLeapYear(1900))
	require.False(t, IsLeapYear(2023))
}

// TestAddDays_Boundaries crosses leap-February and year-end boundaries.
func TestAddDays_Boundaries(t *testing.T) {
	t.Parallel()

	require.Equal(t, Date{Year: 2024, Month: 3, Day: 1}, Date{Year: 2024, Month: 2, Day: 28}.AddDays(2))
	require.Equal(t, Date{Year: 2023, Month: 3, Day: 2}, Date{Year: 2023, Month: 2, Day: 28}.AddDays(2))
	require.Equal(t, Date{Year: 2024, Month: 1, Day: 2}, Date{Year: 2023, Month: 12, Day: 30}.AddDays(3))

	// A single call spanning several months, including a leap February.
	require.Equal(t, Date{Year: 2024, Month: 4, Day: 10}, Date{Year: 2024, Month: 1, Day: 31}.AddDays(70))

	// Non-positive additions leave the date untouched.
	d := Date{Year: 2025, Month: 6, Day: 15}
	require.Equal(t, d, d.AddDays(0))
	require.Equal(t, d, d.AddDays(-3))
}

// TestAddDays_Associative verifies split additions land on the same date.
func TestAddDays_Associative(t *testing.T) {
	t.Parallel()

	starts := []Date{
		{Year: 2024, Month: 2, Day: 27},
		{Year: 2023, Month: 12, Day: 28},
		{Year: 2025, Month: 1, Day: 1},
	}

	for _, start := range starts {
		for n1 := 0; n1 <= 40; n1 += 7 {
			for n2 := 0; n2 <= 40; n2 += 5 {
				require.Equal(t,
					start.AddDays(n1+n2),
					start.AddDays(n1).AddDays(n2),
					"start %v n1=%d n2=%d", start, n1, n2)
			}
		}
	}
}
