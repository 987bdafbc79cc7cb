package downloads

import "time"

// CycleBounds returns the start of the billing cycle containing now and the
// start of the following one. Cycles begin at midnight on the anchor day,
// clamped to the last day of months that are too short.
func CycleBounds(anchorDay int, now time.Time) (time.Time, time.Time) {
	anchorDay = clampAnchorDay(anchorDay)
	loc := now.Location()

	start := anchorDate(now.Year(), now.Month(), anchorDay, loc)
	if start.After(now) {
		start = anchorDate(now.Year(), now.Month()-1, anchorDay, loc)
	}
	next := anchorDate(start.Year(), start.Month()+1, anchorDay, loc)
	return start, next
}

func anchorDate(year int, month time.Month, anchorDay int, loc *time.Location) time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	day := anchorDay
	if last := daysInMonth(first); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, loc)
}

func daysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}

func clampAnchorDay(day int) int {
	switch {
	case day < 1:
		return 1
	case day > 31:
		return 31
	default:
		return day
	}
}
