// Package conv holds allocation-light numeric formatting for console output.
// No fmt/strconv dependency so it stays cheap on MCU builds.
package conv

// AppendUint appends the base-10 representation of n to dst.
func AppendUint(dst []byte, n uint64) []byte {
	if n == 0 {
		return append(dst, '0')
	}
	var tmp [20]byte
	i := len(tmp)
	for n > 0 {
		i--
		tmp[i] = byte('0' + n%10)
		n /= 10
	}
	return append(dst, tmp[i:]...)
}

// AppendInt appends the base-10 representation of n to dst.
// Negative numbers supported.
func AppendInt(dst []byte, n int64) []byte {
	if n < 0 {
		dst = append(dst, '-')
		return AppendUint(dst, uint64(-n))
	}
	return AppendUint(dst, uint64(n))
}

// Utoa returns the base-10 string for n.
func Utoa(n uint64) string { return string(AppendUint(nil, n)) }

// Itoa returns the base-10 string for n.
func Itoa(n int64) string { return string(AppendInt(nil, n)) }
