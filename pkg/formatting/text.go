package formatting

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Thousands renders n with comma group separators (1234567 -> "1,234,567").
func Thousands(n int64) string {
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}

	digits := strconv.FormatInt(n, 10)
	if len(digits) <= 3 {
		return sign + digits
	}

	var b strings.Builder
	b.WriteString(sign)

	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > len(sign) {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}

	return b.String()
}

// Truncate shortens s to at most limit runes, replacing the tail with "..."
// when s is longer than limit.
func Truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}

// Elapsed renders d as "N+ hours" when at least an hour, otherwise "N minutes".
func Elapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	if hours := int(d.Hours()); hours >= 1 {
		return fmt.Sprintf("%d+ hours", hours)
	}
	return fmt.Sprintf("%d minutes", int(d.Minutes()))
}
