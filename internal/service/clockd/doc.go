// Package clockd runs the alarm clock daemon: a once-per-second tick loop
// that drains queued protocol commands, reads the clock, evaluates every
// alarm and drives the vibration motor for those that fire. Run wires the
// configured collaborators (clock source, motor, persistence, command
// link) around the loop; RunSetTime writes a wall-clock value to the
// configured clock.
package clockd
