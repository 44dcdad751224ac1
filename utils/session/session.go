package session

import (
	"time"
)

// Intake holds the structured patient context collected before the first
// chat message. All fields are free text.
type Intake struct {
	Name     string `json:"name"`
	Age      string `json:"age"`
	Gender   string `json:"gender"`
	Symptoms string `json:"symptoms"`
	Duration string `json:"duration"`
}

// Session is the per-client conversational context. It lives entirely in a
// signed cookie; there is no server-side copy. Counters never shrink, the
// thread id is write-once and file ids are append-only.
type Session struct {
	SID             string         `json:"sid"`
	DailyCounters   map[string]int `json:"daily_counters,omitempty"`
	Intake          *Intake        `json:"intake,omitempty"`
	IntakeSubmitted bool           `json:"intake_submitted,omitempty"`
	IntakeUsed      bool           `json:"intake_used,omitempty"`
	ThreadID        string         `json:"thread_id,omitempty"`
	FileIDs         []string       `json:"file_ids,omitempty"`
	UserID          uint           `json:"user_id,omitempty"`
}

// DayKey is the calendar-day format used for quota counters.
const DayKey = "2006-01-02"

// CountFor returns the message count recorded for the given day.
func (s *Session) CountFor(day time.Time) int {
	if s.DailyCounters == nil {
		return 0
	}
	return s.DailyCounters[day.Format(DayKey)]
}

// IsAuthenticated reports whether a user is bound to this session.
func (s *Session) IsAuthenticated() bool {
	return s.UserID != 0
}
