package domain

import (
	"strings"
	"time"
)

// Classification is the temporal bucket of an activity relative to a
// reference date, at calendar-day granularity.
type Classification string

const (
	ClassUpcoming    Classification = "upcoming"
	ClassPast        Classification = "past"
	ClassUnparseable Classification = "unparseable"
)

// Tab is a listing filter as shown in the schedule screens.
type Tab string

const (
	TabUpcoming  Tab = "upcoming"
	TabCompleted Tab = "completed"
	TabAll       Tab = "all"
)

// dateLayouts are tried in order after the Indonesian long form gets its
// own parser. Parsing is strict: partial matches and impossible calendar
// dates (31 Februari) are rejected.
var dateLayouts = []string{
	"02/01/2006",
	"02-01-2006",
}

var indonesianMonths = map[string]time.Month{
	"januari":   time.January,
	"februari":  time.February,
	"maret":     time.March,
	"april":     time.April,
	"mei":       time.May,
	"juni":      time.June,
	"juli":      time.July,
	"agustus":   time.August,
	"september": time.September,
	"oktober":   time.October,
	"november":  time.November,
	"desember":  time.December,
}

// MonthName returns the Indonesian name for a month.
func MonthName(m time.Month) string {
	names := []string{
		"Januari", "Februari", "Maret", "April", "Mei", "Juni",
		"Juli", "Agustus", "September", "Oktober", "November", "Desember",
	}
	if m < time.January || m > time.December {
		return ""
	}
	return names[m-1]
}

// SplitLabel separates the date part of a backend dateTime label from the
// rest. The backend is not consistent about the separator: a bullet, a
// comma, or a plain space all occur, and some labels carry more than one,
// so the priority order here decides the split.
func SplitLabel(label string) (datePart, timePart string) {
	label = strings.TrimSpace(label)
	switch {
	case strings.Contains(label, "•"):
		parts := strings.SplitN(label, "•", 2)
		return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	case strings.Contains(label, ","):
		parts := strings.SplitN(label, ",", 2)
		return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	case strings.Contains(label, " "):
		parts := strings.SplitN(label, " ", 2)
		return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	default:
		return label, ""
	}
}

// ParseDateLabel extracts the calendar date from a backend dateTime label.
// The isolated date substring is tried first; if that fails the whole
// label is tried once more, because long-form dates ("15 Desember 2025")
// contain the very spaces the isolation splits on.
func ParseDateLabel(label string) (time.Time, bool) {
	label = strings.TrimSpace(label)
	if label == "" {
		return time.Time{}, false
	}
	datePart, _ := SplitLabel(label)
	if d, ok := parseDate(datePart); ok {
		return d, true
	}
	return parseDate(label)
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if d, err := time.Parse("2006-01-02", s); err == nil {
		return d, true
	}
	if d, ok := parseLongDate(s); ok {
		return d, true
	}
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}

// parseLongDate parses "15 Desember 2025". Month names are matched
// case-insensitively; the day is validated against the month so that
// "31 Februari 2025" does not silently roll over.
func parseLongDate(s string) (time.Time, bool) {
	fields := strings.Fields(s)
	if len(fields) != 3 {
		return time.Time{}, false
	}
	day, ok := atoiStrict(fields[0])
	if !ok || day < 1 || day > 31 {
		return time.Time{}, false
	}
	month, ok := indonesianMonths[strings.ToLower(fields[1])]
	if !ok {
		return time.Time{}, false
	}
	year, ok := atoiStrict(fields[2])
	if !ok || len(fields[2]) != 4 {
		return time.Time{}, false
	}
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if d.Day() != day || d.Month() != month || d.Year() != year {
		return time.Time{}, false
	}
	return d, true
}

func atoiStrict(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}

// Classify maps a free-form dateTime label to Upcoming, Past or
// Unparseable relative to now. Comparison is by calendar date only;
// an activity happening today is not upcoming (same-day registration
// and cancellation are already closed). The function is pure: now is
// always supplied by the caller.
func Classify(label string, now time.Time) Classification {
	d, ok := ParseDateLabel(label)
	if !ok {
		return ClassUnparseable
	}
	if afterByDay(d, now) {
		return ClassUpcoming
	}
	return ClassPast
}

// afterByDay reports whether a falls on a strictly later calendar day
// than b, ignoring time of day and each value's location offset.
func afterByDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	if ay != by {
		return ay > by
	}
	if am != bm {
		return am > bm
	}
	return ad > bd
}

// IsUpcoming reports whether the label is strictly in the future.
// Unparseable labels count as not upcoming, so a malformed date can
// never unlock join or cancel actions.
func IsUpcoming(label string, now time.Time) bool {
	return Classify(label, now) == ClassUpcoming
}

// IsJoinable reports whether registration for the schedule is still open.
func IsJoinable(s *Schedule, now time.Time) bool {
	return IsUpcoming(s.DateTime, now)
}

// IsCancelable reports whether a registration for the schedule may still
// be cancelled. Same cutoff as joining.
func IsCancelable(s *Schedule, now time.Time) bool {
	return IsUpcoming(s.DateTime, now)
}

// FilterByTab returns the schedules matching the tab, preserving input
// order. TabUpcoming and TabCompleted partition the input exactly.
func FilterByTab(schedules []*Schedule, tab Tab, now time.Time) []*Schedule {
	var out []*Schedule
	switch tab {
	case TabUpcoming:
		for _, s := range schedules {
			if IsUpcoming(s.DateTime, now) {
				out = append(out, s)
			}
		}
	case TabCompleted:
		for _, s := range schedules {
			if !IsUpcoming(s.DateTime, now) {
				out = append(out, s)
			}
		}
	default:
		return schedules
	}
	return out
}
