package core

// utoa converts an unsigned integer to a string without using fmt
// This keeps debug messages cheap on small targets
func utoa(n uint32) string {
	if n == 0 {
		return "0"
	}

	var buf [10]byte // max uint32 is 10 digits
	pos := len(buf)
	for n > 0 {
		pos--
		buf[pos] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[pos:])
}

// itoa converts a signed integer to a string
func itoa(n int32) string {
	if n < 0 {
		return "-" + utoa(uint32(-int64(n)))
	}
	return utoa(uint32(n))
}
