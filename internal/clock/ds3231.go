//go:build linux

package clock

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/sys/unix"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
)

const (
	// ds3231Address is the fixed I2C address of the DS3231 chip.
	ds3231Address = 0x68
	// i2cSlave is the I2C_SLAVE ioctl request.
	i2cSlave = 0x0703
	// yearBase: the chip stores a two-digit year.
	yearBase = 2000
)

// DS3231 reads and sets a DS3231 real-time clock over the Linux I2C
// character device. Register layout: seconds, minutes, hours, day-of-week
// (unused), day, month, year, all BCD.
type DS3231 struct {
	mu   sync.Mutex
	file *os.File
}

// NewDS3231 opens the given I2C device (e.g. /dev/i2c-1) and binds it to
// the DS3231 slave address.
func NewDS3231(device string) (Clock, error) {
	file, err := os.OpenFile(device, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("open i2c device: %w", err)
	}

	if err := unix.IoctlSetInt(int(file.Fd()), i2cSlave, ds3231Address); err != nil {
		_ = file.Close()

		return nil, fmt.Errorf("bind i2c slave 0x%02x: %w", ds3231Address, err)
	}

	return &DS3231{file: file}, nil
}

// Read implements Clock. Any bus error or implausible register content
// reports the clock unavailable; the tick loop counts these and backs off.
func (c *DS3231) Read() (domain.Instant, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Set the register pointer to 0x00, then read the seven time registers.
	if _, err := c.file.Write([]byte{0x00}); err != nil {
		return domain.Instant{}, false
	}

	buf := make([]byte, 7)
	if _, err := c.file.Read(buf); err != nil {
		return domain.Instant{}, false
	}

	reading := domain.Instant{
		Second: bcdToDec(buf[0] & 0x7F),
		Minute: bcdToDec(buf[1] & 0x7F),
		Hour:   bcdToDec(buf[2] & 0x3F),
		Day:    bcdToDec(buf[4] & 0x3F),
		Month:  bcdToDec(buf[5] & 0x1F),
		Year:   yearBase + bcdToDec(buf[6]),
	}

	if !plausible(reading) {
		return domain.Instant{}, false
	}

	return reading, true
}

// Write implements Clock.
func (c *DS3231) Write(value domain.Instant) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if value.Year < yearBase || value.Year > yearBase+99 {
		return fmt.Errorf("year %d outside the chip's %d..%d range", value.Year, yearBase, yearBase+99)
	}

	payload := []byte{
		0x00, // register pointer
		decToBCD(value.Second),
		decToBCD(value.Minute),
		decToBCD(value.Hour),
		0, // day of week, unused
		decToBCD(value.Day),
		decToBCD(value.Month),
		decToBCD(value.Year - yearBase),
	}

	if _, err := c.file.Write(payload); err != nil {
		return fmt.Errorf("write time registers: %w", err)
	}

	return nil
}

// Close releases the I2C device.
func (c *DS3231) Close() error {
	return c.file.Close()
}

// plausible rejects register garbage that decodes to impossible dates, which
// happens when the chip loses power or the bus glitches mid-transfer.
func plausible(r domain.Instant) bool {
	return r.Month >= 1 && r.Month <= 12 &&
		r.Day >= 1 && r.Day <= domain.DaysInMonth(r.Year, r.Month) &&
		r.Hour <= 23 && r.Minute <= 59 && r.Second <= 59
}
