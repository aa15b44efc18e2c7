package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/emberwell/api/config"
	"github.com/emberwell/api/models"
	"github.com/emberwell/api/services"
	"github.com/emberwell/api/utils"
)

// ChallengeController manages the challenge catalog and the per-user
// progress endpoints.
type ChallengeController struct {
	db         *gorm.DB
	challenges *services.ChallengeService
}

// NewChallengeController creates a new ChallengeController instance.
func NewChallengeController(db *gorm.DB) *ChallengeController {
	return &ChallengeController{db: db, challenges: services.NewChallengeService(db)}
}

// ListChallenges returns the active challenge catalog.
func (cc *ChallengeController) ListChallenges(ctx *gin.Context) {
	if b, ok := utils.CacheGetBytes("cache:challenges:list"); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	var challenges []models.Challenge
	if err := cc.db.Where("active = ?", true).Order("id").Find(&challenges).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to list challenges")
		return
	}

	payload := gin.H{"items": challenges}
	wrapper := struct {
		Code    int         `json:"code"`
		Message string      `json:"message"`
		Data    interface{} `json:"data"`
	}{Code: 0, Message: "success", Data: payload}
	utils.CacheSetJSON("cache:challenges:list", wrapper, time.Hour)
	utils.Success(ctx, payload)
}

// GetChallenge returns one catalog entry.
func (cc *ChallengeController) GetChallenge(ctx *gin.Context) {
	challengeID, ok := parseIDParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40005, "invalid challenge id")
		return
	}

	var challenge models.Challenge
	if err := cc.db.First(&challenge, challengeID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40420, "challenge not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to load challenge")
		return
	}

	utils.Success(ctx, gin.H{"challenge": challenge})
}

// CreateChallenge adds a catalog entry. Admin only; the description is
// sanitized since it is rendered as HTML by the frontend.
func (cc *ChallengeController) CreateChallenge(ctx *gin.Context) {
	var req struct {
		Name        string `json:"name" binding:"required,min=1,max=128"`
		Description string `json:"description"`
		Threshold   int    `json:"threshold"`
		DailyPoints int    `json:"daily_points"`
		BonusPoints int    `json:"bonus_points"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}

	cfg := config.Get()
	if req.Threshold <= 0 {
		req.Threshold = cfg.ChallengeThreshold
	}
	if req.DailyPoints <= 0 {
		req.DailyPoints = cfg.ChallengeDailyPoints
	}
	if req.BonusPoints <= 0 {
		req.BonusPoints = cfg.ChallengeBonusPoints
	}

	challenge := models.Challenge{
		Name:        strings.TrimSpace(req.Name),
		Description: utils.Sanitize(req.Description),
		Threshold:   req.Threshold,
		DailyPoints: req.DailyPoints,
		BonusPoints: req.BonusPoints,
		Active:      true,
	}
	if err := cc.db.Create(&challenge).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to create challenge")
		return
	}

	utils.InvalidateByPrefix("cache:challenges:")
	utils.Success(ctx, gin.H{"challenge": challenge})
}

// UpdateChallenge edits catalog fields. Thresholds of progress records
// already in flight are intentionally left untouched.
func (cc *ChallengeController) UpdateChallenge(ctx *gin.Context) {
	challengeID, ok := parseIDParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40005, "invalid challenge id")
		return
	}

	var challenge models.Challenge
	if err := cc.db.First(&challenge, challengeID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40420, "challenge not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to load challenge")
		return
	}

	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		BonusPoints *int    `json:"bonus_points"`
		DailyPoints *int    `json:"daily_points"`
		Active      *bool   `json:"active"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}

	if req.Name != nil {
		challenge.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		challenge.Description = utils.Sanitize(*req.Description)
	}
	if req.BonusPoints != nil && *req.BonusPoints > 0 {
		challenge.BonusPoints = *req.BonusPoints
	}
	if req.DailyPoints != nil && *req.DailyPoints > 0 {
		challenge.DailyPoints = *req.DailyPoints
	}
	if req.Active != nil {
		challenge.Active = *req.Active
	}

	if err := cc.db.Save(&challenge).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to update challenge")
		return
	}

	utils.InvalidateByPrefix("cache:challenges:")
	utils.Success(ctx, gin.H{"challenge": challenge})
}

// RecordAction records a plain daily action toward a challenge.
func (cc *ChallengeController) RecordAction(ctx *gin.Context) {
	cc.recordDay(ctx, models.EventTypeChallengeAction)
}

// RecordVerification records a verification post toward a challenge.
func (cc *ChallengeController) RecordVerification(ctx *gin.Context) {
	cc.recordDay(ctx, models.EventTypeVerification)
}

func (cc *ChallengeController) recordDay(ctx *gin.Context, eventType string) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	challengeID, ok := parseIDParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40005, "invalid challenge id")
		return
	}

	var req struct {
		Date string `json:"date"`
	}
	_ = ctx.ShouldBindJSON(&req) // body is optional
	at, err := parseDateParam(req.Date)
	if err != nil {
		respondServiceError(ctx, err, 50024, "failed to record challenge day")
		return
	}

	result, err := cc.challenges.RecordDay(userID, challengeID, eventType, at)
	if err != nil {
		respondServiceError(ctx, err, 50024, "failed to record challenge day")
		return
	}

	utils.InvalidateByPrefix("cache:leaderboard:")
	utils.InvalidateByPrefix("cache:insights:")

	utils.Success(ctx, gin.H{
		"progress":    result.Progress,
		"completed":   result.Completed,
		"burn_streak": result.Streak.Current,
	})
}

// GetProgress returns the caller's progress for one challenge.
func (cc *ChallengeController) GetProgress(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	challengeID, ok := parseIDParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40005, "invalid challenge id")
		return
	}

	progress, err := cc.challenges.GetProgress(userID, challengeID)
	if err != nil {
		respondServiceError(ctx, err, 50025, "failed to load challenge progress")
		return
	}

	utils.Success(ctx, gin.H{"progress": progress})
}
