package availability

import (
	"fmt"
	"strings"
	"time"
)

// Window names a time-of-day band slots are filtered by.
type Window string

const (
	// WindowAny disables time-of-day filtering.
	WindowAny Window = ""
	// WindowMorning covers [07:00, 12:00).
	WindowMorning Window = "morning"
	// WindowAfternoon covers [12:00, 18:00).
	WindowAfternoon Window = "afternoon"
	// WindowNight starts at 18:00 and may wrap past midnight.
	WindowNight Window = "night"
)

// ParseWindow normalizes a user-supplied window name.
func ParseWindow(value string) (Window, error) {
	switch Window(strings.ToLower(strings.TrimSpace(value))) {
	case WindowAny:
		return WindowAny, nil
	case WindowMorning:
		return WindowMorning, nil
	case WindowAfternoon:
		return WindowAfternoon, nil
	case WindowNight:
		return WindowNight, nil
	default:
		return WindowAny, fmt.Errorf("availability: unknown time window %q", value)
	}
}

const (
	morningStart   = 7 * 3600
	morningEnd     = 12 * 3600
	afternoonStart = 12 * 3600
	afternoonEnd   = 18 * 3600
	nightStart     = 18 * 3600
	nightEnd       = 24*3600 - 1 // 23:59:59
)

// Contains reports whether a slot interval falls inside the window, judging
// only the clock time of its endpoints. Morning and afternoon require both
// endpoints inside the band. Night accepts intervals starting at or after
// 18:00 whose end lands later the same evening or wraps past midnight into
// the next day (end clock time before 18:00).
func (w Window) Contains(start, end time.Time) bool {
	startSec := secondOfDay(start)
	endSec := secondOfDay(end)

	switch w {
	case WindowAny:
		return true
	case WindowMorning:
		return startSec >= morningStart && endSec <= morningEnd
	case WindowAfternoon:
		return startSec >= afternoonStart && endSec <= afternoonEnd
	case WindowNight:
		return startSec >= nightStart && (endSec <= nightEnd || endSec < nightStart)
	default:
		return false
	}
}

func secondOfDay(t time.Time) int {
	return t.Hour()*3600 + t.Minute()*60 + t.Second()
}
