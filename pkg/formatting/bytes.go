// Package formatting provides parsing of model output and human-readable
// formatting for text and byte sizes.
package formatting

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// byteUnits are binary multiples; "KB" and "KiB" both mean 1024.
var byteUnits = []struct {
	names []string
	shift uint
}{
	{[]string{"B", ""}, 0},
	{[]string{"K", "KB", "KIB"}, 10},
	{[]string{"M", "MB", "MIB"}, 20},
	{[]string{"G", "GB", "GIB"}, 30},
	{[]string{"T", "TB", "TIB"}, 40},
}

// ParseBytes parses a size such as "10MB", "512 KiB" or "1.5g" into a byte
// count. A bare number is bytes.
func ParseBytes(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty byte size string")
	}

	split := strings.IndexFunc(s, func(r rune) bool {
		return !unicode.IsDigit(r) && r != '.'
	})
	number, unit := s, ""
	if split >= 0 {
		number, unit = s[:split], strings.TrimSpace(s[split:])
	}
	if number == "" {
		return 0, fmt.Errorf("invalid byte size: %q", s)
	}

	value, err := strconv.ParseFloat(number, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid byte size number %q: %w", number, err)
	}

	unit = strings.ToUpper(unit)
	for _, u := range byteUnits {
		for _, name := range u.names {
			if name == unit {
				return int64(math.Round(value * float64(uint64(1)<<u.shift))), nil
			}
		}
	}
	return 0, fmt.Errorf("unknown byte size unit: %q", unit)
}

// FormatBytes renders n with the largest unit that keeps the value at or
// above one, e.g. 1536 -> "1.5KB".
func FormatBytes(n int64) string {
	if n < 1024 {
		return strconv.FormatInt(n, 10) + "B"
	}
	for i := len(byteUnits) - 1; i > 0; i-- {
		size := int64(1) << byteUnits[i].shift
		if n >= size {
			v := strconv.FormatFloat(float64(n)/float64(size), 'f', 1, 64)
			return strings.TrimSuffix(v, ".0") + byteUnits[i].names[1]
		}
	}
	return strconv.FormatInt(n, 10) + "B"
}
