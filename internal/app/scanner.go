package app

import (
	"time"

	"github.com/mrinfinityjs/pyrewall/internal/domain"
)

// ScanTimeline finds the earliest window [t[i], t[i]+window] that holds at
// least threshold timestamps. ts must be sorted ascending. The window end is
// inclusive.
//
// The right boundary only ever moves forward as the start index advances, so
// the scan is O(n) and returns the same window a full rescan per start index
// would.
func ScanTimeline(address string, ts []time.Time, threshold int, window time.Duration) (domain.WindowViolation, bool) {
	if threshold < 1 {
		threshold = 1
	}
	n := len(ts)
	if n < threshold {
		return domain.WindowViolation{}, false
	}

	right := 0
	for i := 0; i <= n-threshold; i++ {
		end := ts[i].Add(window)
		if right < i {
			right = i
		}
		for right+1 < n && !ts[right+1].After(end) {
			right++
		}

		if hits := right - i + 1; hits >= threshold {
			return domain.WindowViolation{
				Address:     address,
				WindowStart: ts[i],
				WindowEnd:   end,
				HitCount:    hits,
			}, true
		}
	}

	return domain.WindowViolation{}, false
}
