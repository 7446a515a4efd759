package clock

// The DS3231 stores every time register in packed binary-coded decimal.

// bcdToDec unpacks one BCD byte into its decimal value.
func bcdToDec(b byte) int {
	return int(b>>4)*10 + int(b&0x0F)
}

// decToBCD packs a decimal value (0..99) into one BCD byte.
func decToBCD(d int) byte {
	return byte(d/10<<4 | d%10)
}
