package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/emberwell/api/services"
	"github.com/emberwell/api/utils"
)

// AdminController exposes the maintenance surface: cache repairs for streaks
// and point totals, and on-demand snapshot recomputation.
type AdminController struct {
	streaks   *services.StreakService
	ledger    *services.LedgerService
	snapshots *services.SnapshotService
}

// NewAdminController creates a new AdminController instance.
func NewAdminController(db *gorm.DB) *AdminController {
	return &AdminController{
		streaks:   services.NewStreakService(db),
		ledger:    services.NewLedgerService(db),
		snapshots: services.NewSnapshotService(db),
	}
}

// RecalculateStreak replays one user's events and repairs the streak cache.
func (a *AdminController) RecalculateStreak(ctx *gin.Context) {
	userID, ok := parseIDParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40004, "invalid user id")
		return
	}

	changed, err := a.streaks.Recalculate(userID, time.Now())
	if err != nil {
		respondServiceError(ctx, err, 50050, "failed to recalculate streak")
		return
	}

	utils.Success(ctx, gin.H{"user_id": userID, "changed": changed})
}

// RecalculateAllStreaks repairs the streak cache for every user and reports
// a summary. Runs user by user so the award pipeline is never blocked.
func (a *AdminController) RecalculateAllStreaks(ctx *gin.Context) {
	summary, err := a.streaks.RecalculateAll(time.Now())
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50051, "failed to recalculate streaks")
		return
	}

	utils.Success(ctx, gin.H{"summary": summary})
}

// RecomputeUserTotal rebuilds a user's cached fuel point total from the ledger.
func (a *AdminController) RecomputeUserTotal(ctx *gin.Context) {
	userID, ok := parseIDParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40004, "invalid user id")
		return
	}

	total, err := a.ledger.RecomputeUserTotal(userID)
	if err != nil {
		respondServiceError(ctx, err, 50052, "failed to recompute point total")
		return
	}

	utils.InvalidateByPrefix("cache:leaderboard:")
	utils.Success(ctx, gin.H{"user_id": userID, "fuel_points": total})
}

// RecomputeSnapshot rebuilds the daily rollup for a date from source records.
func (a *AdminController) RecomputeSnapshot(ctx *gin.Context) {
	date, err := parseDateParam(ctx.Query("date"))
	if err != nil {
		respondServiceError(ctx, err, 50053, "failed to recompute snapshot")
		return
	}

	snap, err := a.snapshots.RecomputeDailySnapshot(date)
	if err != nil {
		respondServiceError(ctx, err, 50053, "failed to recompute snapshot")
		return
	}

	utils.InvalidateByPrefix("cache:insights:")
	utils.Success(ctx, gin.H{"snapshot": snap})
}
