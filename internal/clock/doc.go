// Package clock abstracts the wall-clock collaborator behind a small Read/
// Write interface. The System implementation serves host time, DS3231 talks
// to the RTC chip over the Linux I2C character device, and Fake scripts
// readings (including unavailability) for tests.
package clock
