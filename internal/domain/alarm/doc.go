// Package alarm contains the core domain types of the alarm clock: calendar
// dates with Zeller weekday computation and forward date arithmetic, the
// Alarm definition with its minute-granular trigger state machine, the
// Recurrence rule variants (Daily, Weekdays, OnDate), and the schedule
// projector that computes next trigger instants and approximate countdown
// strings.
//
// The package is pure: no clocks, no hardware, no persistence. All of those
// are collaborators injected further up.
package alarm
