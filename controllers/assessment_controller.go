package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/emberwell/api/services"
	"github.com/emberwell/api/utils"
)

// AssessmentController handles health self-assessment submissions.
type AssessmentController struct {
	assessments *services.AssessmentService
}

// NewAssessmentController creates a new AssessmentController instance.
func NewAssessmentController(db *gorm.DB) *AssessmentController {
	return &AssessmentController{assessments: services.NewAssessmentService(db)}
}

// Submit records a health assessment for the caller's local today.
func (ac *AssessmentController) Submit(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		Scores services.AssessmentScores `json:"scores" binding:"required"`
		Date   string                    `json:"date"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}

	at, err := parseDateParam(req.Date)
	if err != nil {
		respondServiceError(ctx, err, 50030, "failed to record assessment")
		return
	}

	assessment, err := ac.assessments.Submit(userID, req.Scores, at)
	if err != nil {
		respondServiceError(ctx, err, 50030, "failed to record assessment")
		return
	}

	utils.InvalidateByPrefix("cache:leaderboard:")
	utils.InvalidateByPrefix("cache:insights:")

	utils.Success(ctx, gin.H{"assessment": assessment})
}

// Latest returns the caller's most recent assessment.
func (ac *AssessmentController) Latest(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	assessment, err := ac.assessments.Latest(userID)
	if err != nil {
		respondServiceError(ctx, err, 50031, "failed to load assessment")
		return
	}

	utils.Success(ctx, gin.H{"assessment": assessment})
}
