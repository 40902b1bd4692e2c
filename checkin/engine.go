// Package checkin holds the check-in decision logic. Evaluate is a pure
// function of the record and the current time; persistence and side effects
// stay with the callers.
package checkin

import (
	"fmt"
	"time"

	"github.com/daybreakhq/wakeup/models"
	"github.com/daybreakhq/wakeup/utils"
)

// GraceMinutes is the half-width of the on-time window around the wake time,
// inclusive at both ends.
const GraceMinutes = 30

const minutesPerDay = 24 * 60

// Evaluate runs one check-in attempt for rec at now, which must already be in
// the user's timezone. On a state change the record's streak, last-success
// date and log history are mutated in place; the caller persists the record
// as one unit. A malformed wake time on the record is the only error path.
func Evaluate(rec *models.UserRecord, now time.Time) (models.CheckInOutcome, error) {
	today := utils.LocalDate(now)
	yesterday := utils.LocalDate(now.AddDate(0, 0, -1))

	outcome := models.CheckInOutcome{
		Timestamp: now,
		LocalDate: today,
		LocalTime: utils.ClockString(now),
	}

	// Advisory dedup guard: one success per calendar day.
	if rec.LastSuccessDate != "" && rec.LastSuccessDate == today {
		outcome.AlreadyCheckedIn = true
		outcome.Status = models.StatusOnTime
		outcome.NewStreak = rec.Streak
		return outcome, nil
	}

	goalMin, err := utils.ParseClock(rec.Wake)
	if err != nil {
		return outcome, fmt.Errorf("record has invalid wake time: %w", err)
	}

	if withinWindow(utils.MinuteOfDay(now), goalMin) {
		outcome.Status = models.StatusOnTime
		if rec.LastSuccessDate == yesterday {
			rec.Streak++
		} else {
			rec.Streak = 1
		}
		rec.LastSuccessDate = today
	} else {
		outcome.Status = models.StatusLate
		// A missed day breaks the streak; merely being late today does not.
		if rec.LastSuccessDate != "" && rec.LastSuccessDate != today && rec.LastSuccessDate != yesterday {
			rec.Streak = 0
			rec.LastSuccessDate = ""
			outcome.ResetOccurred = true
		}
	}
	outcome.NewStreak = rec.Streak

	entry := fmt.Sprintf("%s – %s – %s", today, outcome.LocalTime, outcome.Status)
	rec.LogHistory = append([]string{entry}, rec.LogHistory...)
	if len(rec.LogHistory) > models.MaxLogHistory {
		rec.LogHistory = rec.LogHistory[:models.MaxLogHistory]
	}

	return outcome, nil
}

// withinWindow reports whether nowMin falls inside goalMin±GraceMinutes.
// The comparison runs modulo a day so a wake time near midnight wraps:
// wake 00:10 accepts 23:40 through 00:40.
func withinWindow(nowMin, goalMin int) bool {
	diff := (nowMin - goalMin + minutesPerDay) % minutesPerDay
	return diff <= GraceMinutes || diff >= minutesPerDay-GraceMinutes
}
