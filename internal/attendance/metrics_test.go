package attendance

import (
	"testing"
	"time"
)

func at(hour, min int) time.Time {
	return time.Date(2026, 3, 14, hour, min, 0, 0, time.UTC)
}

func TestActiveSeconds_Empty(t *testing.T) {
	if got := ActiveSeconds(nil, 15*time.Minute); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

func TestActiveSeconds_SinglePing(t *testing.T) {
	if got := ActiveSeconds([]time.Time{at(9, 0)}, 15*time.Minute); got != 0 {
		t.Fatalf("expected 0 for a single ping, got %d", got)
	}
}

func TestActiveSeconds_ContinuousRun(t *testing.T) {
	// Pings every 5 minutes from 09:00 to 10:00: every gap counts.
	var pings []time.Time
	for m := 0; m <= 60; m += 5 {
		pings = append(pings, at(9, 0).Add(time.Duration(m)*time.Minute))
	}
	if got := ActiveSeconds(pings, 15*time.Minute); got != 3600 {
		t.Fatalf("expected 3600, got %d", got)
	}
}

func TestActiveSeconds_AllGapsTooWide(t *testing.T) {
	pings := []time.Time{at(9, 0), at(10, 0), at(11, 0), at(12, 0)}
	if got := ActiveSeconds(pings, 15*time.Minute); got != 0 {
		t.Fatalf("expected 0 when every gap exceeds the threshold, got %d", got)
	}
}

func TestActiveSeconds_MixedGaps(t *testing.T) {
	// 09:00 -> 09:10 counts (600s), 09:10 -> 09:25 is exactly the
	// threshold and does not, 09:25 -> 11:00 is far past it.
	pings := []time.Time{at(9, 0), at(9, 10), at(9, 25), at(11, 0)}
	if got := ActiveSeconds(pings, 15*time.Minute); got != 600 {
		t.Fatalf("expected 600, got %d", got)
	}
}

func TestActiveSeconds_GapExactlyAtThreshold(t *testing.T) {
	pings := []time.Time{at(9, 0), at(9, 15)}
	if got := ActiveSeconds(pings, 15*time.Minute); got != 0 {
		t.Fatalf("a gap equal to the threshold must not count, got %d", got)
	}
}

func TestActiveSeconds_UnsortedInput(t *testing.T) {
	pings := []time.Time{at(9, 10), at(9, 0), at(9, 5)}
	if got := ActiveSeconds(pings, 15*time.Minute); got != 600 {
		t.Fatalf("expected 600 regardless of input order, got %d", got)
	}
	// The input slice must not be reordered.
	if !pings[0].Equal(at(9, 10)) {
		t.Fatal("input slice was mutated")
	}
}

func TestActiveSeconds_WiderThreshold(t *testing.T) {
	// The same day counted with a 1 hour threshold absorbs the lunch gap.
	pings := []time.Time{at(9, 0), at(9, 10), at(9, 25), at(10, 0)}
	if got := ActiveSeconds(pings, time.Hour); got != 3600 {
		t.Fatalf("expected 3600 with 1h threshold, got %d", got)
	}
}

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		seconds int64
		want    string
	}{
		{0, "0h 0m"},
		{600, "0h 10m"},
		{3600, "1h 0m"},
		{3659, "1h 0m"},
		{12345, "3h 25m"},
	}
	for _, tc := range cases {
		if got := FormatDuration(tc.seconds); got != tc.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", tc.seconds, got, tc.want)
		}
	}
}
