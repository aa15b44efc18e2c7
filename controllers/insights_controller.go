package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/emberwell/api/models"
	"github.com/emberwell/api/services"
	"github.com/emberwell/api/utils"
)

// InsightsController serves the daily rollups and the fuel point leaderboard.
type InsightsController struct {
	db        *gorm.DB
	snapshots *services.SnapshotService
}

// NewInsightsController creates a new InsightsController instance.
func NewInsightsController(db *gorm.DB) *InsightsController {
	return &InsightsController{db: db, snapshots: services.NewSnapshotService(db)}
}

// GetDailySnapshot returns the stored rollup for a date (default: today).
func (ic *InsightsController) GetDailySnapshot(ctx *gin.Context) {
	date, err := parseDateParam(ctx.Query("date"))
	if err != nil {
		respondServiceError(ctx, err, 50040, "failed to load snapshot")
		return
	}

	cacheKey := "cache:insights:daily:" + services.DayOf(date).Format("2006-01-02")
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	snap, err := ic.snapshots.GetSnapshot(date)
	if err != nil {
		respondServiceError(ctx, err, 50040, "failed to load snapshot")
		return
	}

	payload := gin.H{"snapshot": snap}
	wrapper := struct {
		Code    int         `json:"code"`
		Message string      `json:"message"`
		Data    interface{} `json:"data"`
	}{Code: 0, Message: "success", Data: payload}
	utils.CacheSetJSON(cacheKey, wrapper, 5*time.Minute)
	utils.Success(ctx, payload)
}

// Leaderboard returns the top users by cached fuel points.
func (ic *InsightsController) Leaderboard(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	cacheKey := fmt.Sprintf("cache:leaderboard:page=%d:size=%d", page, pageSize)
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	type entry struct {
		UserID     uint   `json:"user_id"`
		Username   string `json:"username"`
		AvatarURL  string `json:"avatar_url"`
		FuelPoints int    `json:"fuel_points"`
		BurnStreak int    `json:"burn_streak"`
	}

	var total int64
	if err := ic.db.Model(&models.User{}).Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to count users")
		return
	}

	var entries []entry
	if err := ic.db.Model(&models.User{}).
		Select("id AS user_id, username, avatar_url, fuel_points, burn_streak").
		Order("fuel_points DESC, id").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Scan(&entries).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50042, "failed to load leaderboard")
		return
	}

	payload := gin.H{
		"items": entries,
		"pagination": gin.H{
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": int((total + int64(pageSize) - 1) / int64(pageSize)),
		},
	}
	wrapper := struct {
		Code    int         `json:"code"`
		Message string      `json:"message"`
		Data    interface{} `json:"data"`
	}{Code: 0, Message: "success", Data: payload}
	utils.CacheSetJSON(cacheKey, wrapper, 5*time.Minute)
	utils.Success(ctx, payload)
}
