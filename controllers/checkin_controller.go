package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/daybreakhq/wakeup/checkin"
	"github.com/daybreakhq/wakeup/config"
	"github.com/daybreakhq/wakeup/journal"
	"github.com/daybreakhq/wakeup/models"
	"github.com/daybreakhq/wakeup/roles"
	"github.com/daybreakhq/wakeup/store"
	"github.com/daybreakhq/wakeup/utils"
)

const (
	leaderboardCacheKey = "leaderboard:top10"
	leaderboardSize     = 10
	// sideEffectTimeout bounds the fire-and-forget journal/role calls,
	// covering the appender's full retry budget.
	sideEffectTimeout = 60 * time.Second
)

// CheckInController handles schedule registration, daily check-ins, profiles
// and the streak leaderboard.
type CheckInController struct {
	store     *store.Store
	appender  *journal.Appender
	projector *roles.Projector

	// now is swapped out in tests.
	now func() time.Time
}

// NewCheckInController creates a new controller instance.
func NewCheckInController(st *store.Store, ap *journal.Appender, pr *roles.Projector) *CheckInController {
	return &CheckInController{
		store:     st,
		appender:  ap,
		projector: pr,
		now:       time.Now,
	}
}

type scheduleRequest struct {
	Wake     string `json:"wake" binding:"required"`
	Sleep    string `json:"sleep" binding:"required"`
	Timezone string `json:"timezone" binding:"required"`
}

// Register creates or updates the caller's schedule. An existing user keeps
// their streak and log history; only the schedule fields are overwritten.
func (c *CheckInController) Register(ctx *gin.Context) {
	userID, displayName, ok := getPrincipal(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40120, "unauthorized")
		return
	}

	var req scheduleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "wake, sleep and timezone are required")
		return
	}
	if _, err := utils.ParseClock(req.Wake); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40021, "wake: "+err.Error())
		return
	}
	if _, err := utils.ParseClock(req.Sleep); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40022, "sleep: "+err.Error())
		return
	}
	if _, err := utils.LoadZone(req.Timezone); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40023, err.Error())
		return
	}

	updated := c.store.Mutate(userID, func(rec *models.UserRecord) {
		rec.DisplayName = displayName
		rec.Wake = req.Wake
		rec.Sleep = req.Sleep
		rec.Timezone = req.Timezone
	})
	if updated {
		rec, _ := c.store.Get(userID)
		utils.Success(ctx, gin.H{
			"message":  "schedule updated",
			"wake":     rec.Wake,
			"sleep":    rec.Sleep,
			"timezone": rec.Timezone,
			"streak":   rec.Streak,
		})
		return
	}

	c.store.Put(userID, &models.UserRecord{
		DisplayName: displayName,
		Wake:        req.Wake,
		Sleep:       req.Sleep,
		Timezone:    req.Timezone,
		LogHistory:  []string{},
	})
	utils.Success(ctx, gin.H{
		"message":  "registered",
		"wake":     req.Wake,
		"sleep":    req.Sleep,
		"timezone": req.Timezone,
	})
}

// CheckIn evaluates a daily check-in for the caller. The outcome returned to
// the user is authoritative once the store mutation commits; journaling and
// role sync run afterwards as best-effort background tasks.
func (c *CheckInController) CheckIn(ctx *gin.Context) {
	userID, displayName, ok := getPrincipal(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40130, "unauthorized")
		return
	}

	current, found := c.store.Get(userID)
	if !found {
		utils.Error(ctx, http.StatusNotFound, 40430, "not registered, set a schedule first")
		return
	}

	loc, err := utils.LoadZone(current.Timezone)
	if err != nil {
		// Registration validates the zone, so only a zone database change
		// can land here.
		utils.Error(ctx, http.StatusInternalServerError, 50030, "stored timezone no longer valid")
		return
	}
	now := c.now().In(loc)

	var outcome models.CheckInOutcome
	var evalErr error
	c.store.Mutate(userID, func(rec *models.UserRecord) {
		rec.DisplayName = displayName
		outcome, evalErr = checkin.Evaluate(rec, now)
	})
	if evalErr != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50031, "check-in evaluation failed")
		return
	}

	if outcome.AlreadyCheckedIn {
		utils.Success(ctx, gin.H{
			"message":            "already checked in today",
			"status":             outcome.Status,
			"streak":             outcome.NewStreak,
			"already_checked_in": true,
		})
		return
	}

	// Best-effort side effects, decoupled from the reply.
	bg, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
	go func() {
		defer cancel()
		c.appender.Append(bg, userID, displayName, current.Timezone, outcome)
		if outcome.Status == models.StatusOnTime && c.projector != nil {
			c.projector.Sync(bg, userID, outcome.NewStreak)
		}
	}()
	utils.CacheDel(leaderboardCacheKey)

	resp := gin.H{
		"status":         outcome.Status,
		"streak":         outcome.NewStreak,
		"logged_at":      outcome.LocalTime,
		"date":           outcome.LocalDate,
		"reset_occurred": outcome.ResetOccurred,
	}
	if outcome.ResetOccurred {
		resp["message"] = "you missed a day, streak reset to 0"
	}
	utils.Success(ctx, resp)
}

// Profile returns the caller's schedule, streak and recent check-in history.
func (c *CheckInController) Profile(ctx *gin.Context) {
	userID, _, ok := getPrincipal(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40140, "unauthorized")
		return
	}

	rec, found := c.store.Get(userID)
	if !found {
		utils.Error(ctx, http.StatusNotFound, 40440, "not registered yet")
		return
	}

	utils.Success(ctx, gin.H{
		"display_name":      rec.DisplayName,
		"wake":              rec.Wake,
		"sleep":             rec.Sleep,
		"timezone":          rec.Timezone,
		"streak":            rec.Streak,
		"last_success_date": rec.LastSuccessDate,
		"logs":              rec.LogHistory,
	})
}

type leaderboardRow struct {
	Rank        int    `json:"rank"`
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Streak      int    `json:"streak"`
}

// Leaderboard returns the top active streaks, cached in Redis for a short TTL.
func (c *CheckInController) Leaderboard(ctx *gin.Context) {
	if b, ok := utils.CacheGetBytes(leaderboardCacheKey); ok {
		utils.Success(ctx, json.RawMessage(b))
		return
	}

	top := c.store.Top(leaderboardSize)
	rows := make([]leaderboardRow, len(top))
	for i, e := range top {
		rows[i] = leaderboardRow{
			Rank:        i + 1,
			UserID:      e.UserID,
			DisplayName: e.DisplayName,
			Streak:      e.Streak,
		}
	}

	ttl := time.Duration(config.Get().LeaderboardCacheTTLSec) * time.Second
	utils.CacheSetJSON(leaderboardCacheKey, rows, ttl)
	utils.Success(ctx, rows)
}
