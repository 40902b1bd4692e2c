// Package journal mirrors check-in outcomes to an external append-only log.
// Appends are best-effort: a bounded retry budget with exponential backoff and
// no durable queue. The authoritative outcome is already persisted by the
// store before any append is attempted.
package journal

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/daybreakhq/wakeup/models"
	"github.com/daybreakhq/wakeup/utils"
)

// Sink appends one row to the external journal.
type Sink interface {
	Append(ctx context.Context, row *models.CheckInLog) error
}

// GormSink writes journal rows to the check_in_logs table.
type GormSink struct {
	db *gorm.DB
}

// NewGormSink wraps db as a journal sink.
func NewGormSink(db *gorm.DB) *GormSink {
	return &GormSink{db: db}
}

// Append inserts one row.
func (g *GormSink) Append(ctx context.Context, row *models.CheckInLog) error {
	return g.db.WithContext(ctx).Create(row).Error
}

// Appender retries failed appends with exponential backoff and never reports
// an error to its caller; exhausted budgets are logged and the row dropped.
type Appender struct {
	sink        Sink
	maxAttempts int
	backoffBase time.Duration

	// sleep is swapped out in tests.
	sleep func(time.Duration)
}

// NewAppender builds an Appender over sink. A nil sink disables journaling;
// appends are then skipped with a warning.
func NewAppender(sink Sink, maxAttempts int, backoffBase time.Duration) *Appender {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if backoffBase <= 0 {
		backoffBase = 500 * time.Millisecond
	}
	return &Appender{
		sink:        sink,
		maxAttempts: maxAttempts,
		backoffBase: backoffBase,
		sleep:       time.Sleep,
	}
}

// Append mirrors outcome for userID to the journal. Dates and times are
// rendered in the user's zone, matching the outcome timestamp.
func (a *Appender) Append(ctx context.Context, userID, displayName, timezone string, outcome models.CheckInOutcome) {
	if a.sink == nil {
		warnf("journal unavailable, skipping row for user %s", userID)
		return
	}

	row := &models.CheckInLog{
		UserID:      userID,
		DisplayName: displayName,
		Date:        outcome.Timestamp.Format("02/01/2006"),
		Time:        outcome.LocalTime,
		Status:      string(outcome.Status),
		Timezone:    timezone,
	}

	for attempt := 1; attempt <= a.maxAttempts; attempt++ {
		err := a.sink.Append(ctx, row)
		if err == nil {
			return
		}
		warnf("journal append failed for user %s (attempt %d/%d): %v", userID, attempt, a.maxAttempts, err)
		if attempt < a.maxAttempts {
			a.sleep(a.backoffBase << uint(attempt))
		}
	}
	errorf("journal append gave up after %d attempts, dropping row for user %s", a.maxAttempts, userID)
}

func warnf(format string, args ...interface{}) {
	if utils.Sugar != nil {
		utils.Sugar.Warnf(format, args...)
	}
}

func errorf(format string, args ...interface{}) {
	if utils.Sugar != nil {
		utils.Sugar.Errorf(format, args...)
	}
}
