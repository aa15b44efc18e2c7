package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/emberwell/api/models"
	"github.com/emberwell/api/services"
	"github.com/emberwell/api/utils"
)

// BoostController exposes the daily boost completion path and the read
// endpoints over the streak and point caches.
type BoostController struct {
	db     *gorm.DB
	boosts *services.BoostService
	ledger *services.LedgerService
}

// NewBoostController creates a new BoostController instance.
func NewBoostController(db *gorm.DB) *BoostController {
	return &BoostController{
		db:     db,
		boosts: services.NewBoostService(db),
		ledger: services.NewLedgerService(db),
	}
}

// CompleteBoost records a boost completion for the caller's local today and
// awards the configured fuel points. Repeating the same boost on the same
// day is reported as a benign "already done today".
func (b *BoostController) CompleteBoost(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	boostID, ok := parseIDParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40003, "invalid boost id")
		return
	}

	var req struct {
		Date string `json:"date"`
	}
	_ = ctx.ShouldBindJSON(&req) // body is optional
	at, err := parseDateParam(req.Date)
	if err != nil {
		respondServiceError(ctx, err, 50010, "failed to complete boost")
		return
	}

	result, err := b.boosts.CompleteBoost(userID, boostID, at)
	if err != nil {
		respondServiceError(ctx, err, 50010, "failed to complete boost")
		return
	}

	utils.InvalidateByPrefix("cache:leaderboard:")
	utils.InvalidateByPrefix("cache:insights:")

	utils.Success(ctx, gin.H{
		"points_awarded": result.Entry.Amount,
		"burn_streak":    result.Streak.Current,
		"longest_streak": result.Streak.Longest,
	})
}

// GetStreak returns the cached streak state for a user.
func (b *BoostController) GetStreak(ctx *gin.Context) {
	userID, ok := parseIDParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40004, "invalid user id")
		return
	}

	var user models.User
	if err := b.db.First(&user, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40410, "user not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50011, "failed to load user")
		return
	}

	utils.Success(ctx, gin.H{
		"user_id":        user.ID,
		"burn_streak":    user.BurnStreak,
		"longest_streak": user.LongestBurnStreak,
		"last_active_on": user.LastActiveOn,
	})
}

// GetPoints returns the cached fuel point total and a page of ledger entries.
func (b *BoostController) GetPoints(ctx *gin.Context) {
	userID, ok := parseIDParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40004, "invalid user id")
		return
	}

	var user models.User
	if err := b.db.First(&user, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40410, "user not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50012, "failed to load user")
		return
	}

	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))
	entries, total, err := b.ledger.ListEntries(userID, (page-1)*pageSize, pageSize)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50013, "failed to list ledger entries")
		return
	}

	utils.Success(ctx, gin.H{
		"user_id":     user.ID,
		"fuel_points": user.FuelPoints,
		"entries":     entries,
		"pagination": gin.H{
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": int((total + int64(pageSize) - 1) / int64(pageSize)),
		},
	})
}
