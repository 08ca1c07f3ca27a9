package attendance

import (
	"fmt"
	"sort"
	"time"
)

// ActiveSeconds reconstructs worked time from a day's heartbeat pings.
// Consecutive pings closer together than maxGap are treated as continuous
// activity and their gap counts toward the total; a gap of maxGap or more
// means the app was closed and contributes nothing. Fewer than two pings
// cannot span any interval, so they yield zero.
func ActiveSeconds(pings []time.Time, maxGap time.Duration) int64 {
	if len(pings) < 2 {
		return 0
	}

	sorted := make([]time.Time, len(pings))
	copy(sorted, pings)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	var total time.Duration
	for i := 1; i < len(sorted); i++ {
		gap := sorted[i].Sub(sorted[i-1])
		if gap < maxGap {
			total += gap
		}
	}
	return int64(total.Seconds())
}

// FormatDuration renders seconds as the "3h 25m" form shown in the
// attendance UI. Seconds are truncated, not rounded.
func FormatDuration(seconds int64) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	return fmt.Sprintf("%dh %dm", h, m)
}
