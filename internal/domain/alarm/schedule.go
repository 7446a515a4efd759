package alarm

import "fmt"

// TriggerInstant is the projected next firing time of an alarm.
type TriggerInstant struct {
	Year   int
	Month  int
	Day    int
	Hour   int
	Minute int
}

// NextTrigger computes when the alarm will next fire relative to now. The
// second return value is false when no trigger can be determined, which
// only happens for an empty weekday set. A date alarm always projects its
// literal date, even when that date is already in the past; detecting
// staleness is the caller's concern.
func NextTrigger(a *Alarm, now Instant) (TriggerInstant, bool) {
	today := now.Date()
	aheadToday := a.Hour > now.Hour || (a.Hour == now.Hour && a.Minute > now.Minute)

	switch rule := a.Rule.(type) {
	case Weekdays:
		if rule.matches(today) && aheadToday {
			return at(today, a), true
		}

		for daysAhead := 1; daysAhead <= 7; daysAhead++ {
			next := today.AddDays(daysAhead)
			if rule.matches(next) {
				return at(next, a), true
			}
		}

		// Empty weekday set: undeterminable, not "never".
		return TriggerInstant{}, false
	case OnDate:
		return at(rule.Date, a), true
	default:
		// Daily (and nil, which the constructors normalise away).
		if aheadToday {
			return at(today, a), true
		}

		return at(today.AddDays(1), a), true
	}
}

// at combines a date with the alarm's time of day.
func at(d Date, a *Alarm) TriggerInstant {
	return TriggerInstant{
		Year:   d.Year,
		Month:  d.Month,
		Day:    d.Day,
		Hour:   a.Hour,
		Minute: a.Minute,
	}
}

// approximateMinutes flattens a timestamp onto a minute scale using fixed
// 365-day years and 30-day months. Countdowns computed from it drift near
// month and year boundaries; the mapping is kept exactly as the device has
// always displayed it. Scheduling never depends on it, only the
// human-facing countdown strings do.
func approximateMinutes(year, month, day, hour, minute int) int {
	return (year-2025)*365*24*60 +
		(month-1)*30*24*60 +
		(day-1)*24*60 +
		hour*60 + minute
}

// FormatCountdown renders the approximate time from now until target as a
// human-readable string: "in the past", "now", minutes under an hour,
// hours (and minutes) under a day, otherwise days (and hours, or minutes
// when no whole hour remains).
func FormatCountdown(now Instant, target TriggerInstant) string {
	diff := approximateMinutes(target.Year, target.Month, target.Day, target.Hour, target.Minute) -
		approximateMinutes(now.Year, now.Month, now.Day, now.Hour, now.Minute)

	switch {
	case diff < 0:
		return "in the past"
	case diff == 0:
		return "now"
	case diff < 60:
		return "in " + plural(diff, "minute")
	case diff < 24*60:
		hours := diff / 60
		minutes := diff % 60

		if minutes == 0 {
			return "in " + plural(hours, "hour")
		}

		return fmt.Sprintf("in %s and %s", plural(hours, "hour"), plural(minutes, "minute"))
	default:
		days := diff / (24 * 60)
		remainder := diff % (24 * 60)
		hours := remainder / 60
		minutes := remainder % 60

		result := "in " + plural(days, "day")
		if hours > 0 {
			result += " and " + plural(hours, "hour")
		} else if minutes > 0 {
			result += " and " + plural(minutes, "minute")
		}

		return result
	}
}

// plural renders a count with a unit, appending "s" unless the count is 1.
func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}

	return fmt.Sprintf("%d %ss", n, unit)
}
