package market

import (
	"math"
	"strconv"
)

// FormatCount renders n with thousands separators: 2000000 -> "2,000,000".
func FormatCount(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := false
	if n < 0 {
		neg, s = true, s[1:]
	}
	out := make([]byte, 0, len(s)+len(s)/3)
	for i := range s {
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

// FormatAmount renders a won amount rounded to the unit with separators.
func FormatAmount(v float64) string {
	return FormatCount(int64(math.Round(v)))
}
