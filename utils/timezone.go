package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// DateLayout is the calendar-date form used for streak bookkeeping.
	DateLayout = "2006-01-02"
	// ClockLayout is the wall-clock form used in log entries and journal rows.
	ClockLayout = "15:04"
)

// LoadZone validates an IANA zone name against the zone database.
// "Local" and the empty string are rejected: schedules must be explicit.
func LoadZone(name string) (*time.Location, error) {
	if name == "" || strings.EqualFold(name, "local") {
		return nil, fmt.Errorf("timezone must be an IANA name like Asia/Ho_Chi_Minh")
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q", name)
	}
	return loc, nil
}

// ParseClock parses "HH:MM" into minutes since midnight.
func ParseClock(s string) (int, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q, want HH:MM", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	return h*60 + m, nil
}

// MinuteOfDay returns minutes since midnight of t in its own location.
func MinuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// LocalDate formats t as a calendar date in its own location.
func LocalDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ClockString formats t's wall-clock in its own location.
func ClockString(t time.Time) string {
	return t.Format(ClockLayout)
}
