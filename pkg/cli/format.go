package cli

import (
	"fmt"
	"strconv"
	"time"
)

// FormatDuration rounds d for display: milliseconds below a second, then
// tenths of seconds, then minutes and seconds.
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	mins := int(d / time.Minute)
	secs := (d - time.Duration(mins)*time.Minute).Seconds()
	return fmt.Sprintf("%dm%.1fs", mins, secs)
}

// FormatCount groups digits in thousands: 1234567 -> "1,234,567".
func FormatCount(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := n < 0
	if neg {
		s = s[1:]
	}
	var out []byte
	for i := range len(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, s[i])
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}
