package alarm

// Date is a calendar date in the proleptic Gregorian calendar.
// Years before 1900 are not expected anywhere in the system.
type Date struct {
	// Year is the four-digit year.
	Year int
	// Month is 1..12.
	Month int
	// Day is 1..31.
	Day int
}

// daysPerMonth holds month lengths for a non-leap year.
var daysPerMonth = [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// IsLeapYear reports whether year is a leap year under the Gregorian rule.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysInMonth returns the number of days in the given month of the given year.
func DaysInMonth(year, month int) int {
	if month == 2 && IsLeapYear(year) {
		return 29
	}

	return daysPerMonth[month-1]
}

// Weekday returns the day of week for the given date, 0=Monday .. 6=Sunday.
// It applies Zeller's congruence (which numbers days from Saturday) and
// remaps the result to Monday-first numbering.
func Weekday(year, month, day int) int {
	// January and February count as months 13 and 14 of the previous year.
	if month < 3 {
		month += 12
		year--
	}

	k := year % 100
	j := year / 100

	zeller := (day + (13*(month+1))/5 + k + k/4 + j/4 - 2*j) % 7
	// Zeller's sum can go negative; normalise before remapping.
	zeller = (zeller%7 + 7) % 7

	return (zeller + 5) % 7
}

// AddDays returns the date n days after d. Only forward movement is
// supported; non-positive n returns d unchanged. The day counter rolls over
// month and year boundaries one month at a time, so a single call may cross
// a Feb-29 or a year-end boundary.
func (d Date) AddDays(n int) Date {
	if n <= 0 {
		return d
	}

	d.Day += n

	for d.Day > DaysInMonth(d.Year, d.Month) {
		d.Day -= DaysInMonth(d.Year, d.Month)

		d.Month++
		if d.Month > 12 {
			d.Month = 1
			d.Year++
		}
	}

	return d
}
