package models

import "time"

// CheckInStatus is the user-facing result of a single check-in attempt.
type CheckInStatus string

const (
	StatusOnTime CheckInStatus = "On Time"
	StatusLate   CheckInStatus = "Late"
)

// CheckInOutcome is produced per check-in attempt and never persisted as such;
// the mutated UserRecord carries the durable part.
type CheckInOutcome struct {
	Status           CheckInStatus `json:"status"`
	Timestamp        time.Time     `json:"timestamp"`
	NewStreak        int           `json:"new_streak"`
	ResetOccurred    bool          `json:"reset_occurred"`
	AlreadyCheckedIn bool          `json:"already_checked_in"`
	// LocalDate and LocalTime are rendered in the user's timezone.
	LocalDate string `json:"local_date"` // "2006-01-02"
	LocalTime string `json:"local_time"` // "15:04"
}
