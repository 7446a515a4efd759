//go:build !linux

package clock

import "errors"

// NewDS3231 is unavailable off Linux: the driver needs the I2C character
// device.
func NewDS3231(string) (Clock, error) {
	return nil, errors.New("ds3231 clock requires linux")
}
