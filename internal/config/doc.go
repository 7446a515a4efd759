// Package config defines the daemon settings and provides helpers to load,
// validate and save them in YAML format.
//
// The Config type covers the command link (TCP or MQTT), the clock source,
// the alarms file location, the tick cadence, and the GPIO wiring of the
// motor and cancel button. A missing settings file is not an error: the
// daemon starts with defaults.
package config
