// Package alarms implements persistence for the alarm list.
//
// The FileRepository stores the list as a JSON array compatible with the
// device's historical alarms file: each record carries hour, minute, a
// polymorphic days field (null, weekday list, or [year, month, day]),
// name, enabled, recurring and vibration_strength. Individual malformed
// records are skipped on load; a missing file is reported with ErrNotFound
// and means an empty registry, never a failure.
package alarms
