package planner

import (
	"strings"
	"time"
)

// weekdays is indexed by time.Weekday, so Sunday comes first.
var weekdays = [7]string{
	"Sunday",
	"Monday",
	"Tuesday",
	"Wednesday",
	"Thursday",
	"Friday",
	"Saturday",
}

// Weekdays returns the canonical weekday names, Sunday first.
func Weekdays() []string {
	out := make([]string, len(weekdays))
	copy(out, weekdays[:])
	return out
}

// WeekdayName returns the canonical name of wd.
func WeekdayName(wd time.Weekday) string {
	return weekdays[wd]
}

// ParseWeekday matches s against the canonical names ignoring case and
// surrounding whitespace and returns the canonical spelling.
func ParseWeekday(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	for _, day := range weekdays {
		if strings.EqualFold(day, s) {
			return day, true
		}
	}
	return "", false
}
