package services

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/emberwell/api/config"
	"github.com/emberwell/api/models"
)

// AssessmentScores carries the five self-reported category scores, 1..10.
type AssessmentScores struct {
	Mindset    int `json:"mindset" binding:"required"`
	Sleep      int `json:"sleep" binding:"required"`
	Exercise   int `json:"exercise" binding:"required"`
	Nutrition  int `json:"nutrition" binding:"required"`
	Biohacking int `json:"biohacking" binding:"required"`
}

// AssessmentService records health self-assessments and their award.
type AssessmentService struct {
	db      *gorm.DB
	ledger  *LedgerService
	streaks *StreakService
}

// NewAssessmentService creates a new AssessmentService instance.
func NewAssessmentService(db *gorm.DB) *AssessmentService {
	return &AssessmentService{db: db, ledger: NewLedgerService(db), streaks: NewStreakService(db)}
}

func validateScores(scores AssessmentScores) error {
	check := func(field string, v int) error {
		if v < 1 || v > 10 {
			return &ValidationError{Field: field, Reason: "score must be between 1 and 10"}
		}
		return nil
	}
	if err := check("mindset", scores.Mindset); err != nil {
		return err
	}
	if err := check("sleep", scores.Sleep); err != nil {
		return err
	}
	if err := check("exercise", scores.Exercise); err != nil {
		return err
	}
	if err := check("nutrition", scores.Nutrition); err != nil {
		return err
	}
	return check("biohacking", scores.Biohacking)
}

// Submit records a health assessment for the caller's local "today": one
// assessment row, one activity event and one fuel point award in a single
// transaction. At most one awarded assessment per calendar day; repeats are
// rejected with ErrAlreadyAwarded and leave no partial state.
func (a *AssessmentService) Submit(userID uint, scores AssessmentScores, at time.Time) (*models.HealthAssessment, error) {
	if err := validateScores(scores); err != nil {
		return nil, err
	}

	cfg := config.Get()
	day := DayOf(at)
	var assessment models.HealthAssessment

	err := a.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		// SourceItemID 0 marks the daily assessment slot in the award key.
		if _, err := a.ledger.AwardTx(tx, AwardInput{
			UserID:       userID,
			Amount:       cfg.AssessmentRewardPoints,
			Category:     models.CategoryAssessment,
			SourceItemID: 0,
			EarnedOn:     day,
		}); err != nil {
			return err
		}

		assessment = models.HealthAssessment{
			UserID:          userID,
			MindsetScore:    scores.Mindset,
			SleepScore:      scores.Sleep,
			ExerciseScore:   scores.Exercise,
			NutritionScore:  scores.Nutrition,
			BiohackingScore: scores.Biohacking,
			RecordedOn:      day,
			RecordedAt:      at,
		}
		if err := tx.Create(&assessment).Error; err != nil {
			return err
		}

		if err := appendEventTx(tx, userID, models.EventTypeAssessment, at, assessment.ID); err != nil {
			return err
		}

		_, err := a.streaks.RefreshTx(tx, userID, day)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &assessment, nil
}

// Latest returns the user's most recent assessment by timestamp.
func (a *AssessmentService) Latest(userID uint) (*models.HealthAssessment, error) {
	var assessment models.HealthAssessment
	err := a.db.Where("user_id = ?", userID).Order("recorded_at DESC").First(&assessment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &assessment, nil
}
