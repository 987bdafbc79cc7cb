package downloads

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCycleBounds(t *testing.T) {
	tests := []struct {
		name      string
		anchor    int
		now       time.Time
		wantStart time.Time
		wantNext  time.Time
	}{
		{
			name:      "mid cycle",
			anchor:    15,
			now:       time.Date(2026, 3, 20, 10, 0, 0, 0, time.UTC),
			wantStart: date(2026, 3, 15),
			wantNext:  date(2026, 4, 15),
		},
		{
			name:      "before anchor uses previous month",
			anchor:    15,
			now:       time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC),
			wantStart: date(2026, 2, 15),
			wantNext:  date(2026, 3, 15),
		},
		{
			name:      "anchor instant starts a new cycle",
			anchor:    15,
			now:       date(2026, 3, 15),
			wantStart: date(2026, 3, 15),
			wantNext:  date(2026, 4, 15),
		},
		{
			name:      "anchor 31 in a 30 day month",
			anchor:    31,
			now:       time.Date(2026, 4, 30, 8, 0, 0, 0, time.UTC),
			wantStart: date(2026, 4, 30),
			wantNext:  date(2026, 5, 31),
		},
		{
			name:      "anchor 31 before the clamped day",
			anchor:    31,
			now:       time.Date(2026, 4, 29, 8, 0, 0, 0, time.UTC),
			wantStart: date(2026, 3, 31),
			wantNext:  date(2026, 4, 30),
		},
		{
			name:      "anchor 30 in february",
			anchor:    30,
			now:       time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			wantStart: date(2026, 2, 28),
			wantNext:  date(2026, 3, 30),
		},
		{
			name:      "leap year february",
			anchor:    31,
			now:       time.Date(2028, 2, 29, 23, 0, 0, 0, time.UTC),
			wantStart: date(2028, 2, 29),
			wantNext:  date(2028, 3, 31),
		},
		{
			name:      "year boundary",
			anchor:    1,
			now:       time.Date(2026, 12, 31, 23, 59, 59, 0, time.UTC),
			wantStart: date(2026, 12, 1),
			wantNext:  date(2027, 1, 1),
		},
		{
			name:      "out of range anchor is clamped",
			anchor:    0,
			now:       time.Date(2026, 6, 5, 0, 0, 0, 0, time.UTC),
			wantStart: date(2026, 6, 1),
			wantNext:  date(2026, 7, 1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, next := CycleBounds(tt.anchor, tt.now)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantNext, next)
		})
	}
}

func TestCycleBoundsProperties(t *testing.T) {
	base := date(2024, 1, 1)
	rapid.Check(t, func(t *rapid.T) {
		anchor := rapid.IntRange(1, 31).Draw(t, "anchor")
		offset := rapid.Int64Range(0, int64(4*365*24*time.Hour/time.Second)).Draw(t, "offset")
		now := base.Add(time.Duration(offset) * time.Second)

		start, next := CycleBounds(anchor, now)

		if start.After(now) || !now.Before(next) {
			t.Fatalf("now %v outside cycle [%v, %v)", now, start, next)
		}
		if start.Day() != min(anchor, daysInMonth(start)) {
			t.Fatalf("start %v does not sit on clamped anchor %d", start, anchor)
		}
		if next.Day() != min(anchor, daysInMonth(next)) {
			t.Fatalf("next %v does not sit on clamped anchor %d", next, anchor)
		}
		months := (next.Year()-start.Year())*12 + int(next.Month()-start.Month())
		if months != 1 {
			t.Fatalf("cycle spans %d months: %v to %v", months, start, next)
		}
	})
}
