package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

var durationUnits = map[byte]time.Duration{
	's': time.Second,
	'm': time.Minute,
	'h': time.Hour,
	'd': 24 * time.Hour,
}

// ParseDuration converts strings such as "30m", "3h" or "1d" to a
// time.Duration. The magnitude must be a non-negative integer and the unit
// one of s, m, h or d.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, fmt.Errorf("%w: empty value", ErrInvalidDuration)
	}

	unit, ok := durationUnits[s[len(s)-1]]
	if !ok {
		return 0, fmt.Errorf("%w: %q: use s, m, h, or d", ErrInvalidDuration, s)
	}

	value, err := strconv.ParseInt(s[:len(s)-1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid value in %q", ErrInvalidDuration, s)
	}
	if value < 0 {
		return 0, fmt.Errorf("%w: negative value in %q", ErrInvalidDuration, s)
	}
	if value > int64(1<<63-1)/int64(unit) {
		return 0, fmt.Errorf("%w: %q is out of range", ErrInvalidDuration, s)
	}

	return time.Duration(value) * unit, nil
}
