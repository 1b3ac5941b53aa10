package domain

import (
	"strings"
	"time"
)

// Schedule is a scheduled club activity as served by the backend.
// Records are created and edited by admins only; the client never
// mutates them, it only derives display and filter state.
type Schedule struct {
	ID              int64  `json:"id,omitempty"`
	Title           string `json:"title"`
	DateTime        string `json:"dateTime"`
	Location        string `json:"location"`
	Description     string `json:"deskripsi,omitempty"`
	ActivityType    string `json:"tipeKegiatan"`
	MaxParticipants int    `json:"maxParticipants,omitempty"`
}

// Unlimited reports whether the schedule has no participant cap.
func (s *Schedule) Unlimited() bool {
	return s.MaxParticipants <= 0
}

// IsUpcoming reports whether the activity date is strictly after now's
// calendar date. Unparseable labels count as not upcoming.
func (s *Schedule) IsUpcoming(now time.Time) bool {
	return IsUpcoming(s.DateTime, now)
}

// DateLabel returns the date half of the dateTime label for display.
// Detail dialogs only ever split on the bullet the backend uses when it
// attaches a time.
func (s *Schedule) DateLabel() string {
	if strings.Contains(s.DateTime, "•") {
		return strings.TrimSpace(strings.SplitN(s.DateTime, "•", 2)[0])
	}
	return strings.TrimSpace(s.DateTime)
}

// TimeLabel returns the time half of the dateTime label, or "".
func (s *Schedule) TimeLabel() string {
	if strings.Contains(s.DateTime, "•") {
		return strings.TrimSpace(strings.SplitN(s.DateTime, "•", 2)[1])
	}
	return ""
}

// TypeLabel returns the display name for the activity type code.
// Unrecognized codes pass through unmodified.
func (s *Schedule) TypeLabel() string {
	switch strings.ToUpper(s.ActivityType) {
	case "LATIHAN":
		return "Latihan"
	case "TURNAMEN":
		return "Turnamen"
	case "RAPAT":
		return "Rapat"
	default:
		return s.ActivityType
	}
}

// TypeEmoji returns an emoji for the activity type code.
func (s *Schedule) TypeEmoji() string {
	switch strings.ToUpper(s.ActivityType) {
	case "LATIHAN":
		return "♟"
	case "TURNAMEN":
		return "🏆"
	case "RAPAT":
		return "📣"
	default:
		return "📅"
	}
}
