package services

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/emberwell/api/models"
)

// ChallengeService advances the per-(user, challenge) state machine:
// not_started -> active on the first qualifying action, active -> active once
// per calendar day, active -> completed exactly when the verification count
// reaches the challenge threshold.
type ChallengeService struct {
	db      *gorm.DB
	ledger  *LedgerService
	streaks *StreakService
}

// NewChallengeService creates a new ChallengeService instance.
func NewChallengeService(db *gorm.DB) *ChallengeService {
	return &ChallengeService{db: db, ledger: NewLedgerService(db), streaks: NewStreakService(db)}
}

// ChallengeDayResult is the outcome of one recorded challenge day.
type ChallengeDayResult struct {
	Progress  *models.ChallengeProgress `json:"progress"`
	Completed bool                      `json:"completed"`
	Streak    StreakResult              `json:"streak"`
}

// challengeEventTypes are the activity event types that count toward a
// challenge day; a day with either counts once.
var challengeEventTypes = []string{models.EventTypeChallengeAction, models.EventTypeVerification}

// RecordDay records one qualifying day toward a challenge. eventType is
// challenge_action for plain daily completions or verification for evidence
// posts. First-ever action auto-enrolls the user; a second action on the same
// calendar day is rejected with ErrAlreadyAwarded; actions after completion
// are rejected with ErrAlreadyCompleted. When the verification count reaches
// the threshold the completion side effects run atomically with it: status
// and completion date flip, exactly one bonus ledger entry is appended, and
// the day's snapshot bucket moves. Re-running the completion check is a
// no-op, guarded by the bonus entry's existence.
func (c *ChallengeService) RecordDay(userID, challengeID uint, eventType string, at time.Time) (*ChallengeDayResult, error) {
	if eventType != models.EventTypeChallengeAction && eventType != models.EventTypeVerification {
		return nil, &ValidationError{Field: "event_type", Reason: "must be challenge_action or verification"}
	}

	day := DayOf(at)
	var out ChallengeDayResult

	err := c.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		var challenge models.Challenge
		if err := tx.Where("active = ?", true).First(&challenge, challengeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		progress, err := c.loadOrEnrollTx(tx, userID, &challenge, day)
		if err != nil {
			return err
		}
		if progress.Status == models.ChallengeStatusCompleted {
			return ErrAlreadyCompleted
		}

		// One increment per calendar day, judged by the activity log.
		var recordedToday int64
		if err := tx.Model(&models.ActivityEvent{}).
			Where("user_id = ? AND source_id = ? AND event_type IN ? AND occurred_on = ?",
				userID, challengeID, challengeEventTypes, day).
			Count(&recordedToday).Error; err != nil {
			return err
		}
		if recordedToday > 0 {
			return ErrAlreadyAwarded
		}

		if err := appendEventTx(tx, userID, eventType, at, challengeID); err != nil {
			return err
		}

		if challenge.DailyPoints > 0 {
			if _, err := c.ledger.AwardTx(tx, AwardInput{
				UserID:       userID,
				Amount:       challenge.DailyPoints,
				Category:     models.CategoryChallenge,
				SourceItemID: challengeID,
				EarnedOn:     day,
			}); err != nil {
				return err
			}
		}

		progress.VerificationCount++
		if progress.VerificationCount >= progress.Threshold {
			if err := c.completeTx(tx, progress, &challenge, day); err != nil {
				return err
			}
			out.Completed = true
		}

		if err := tx.Save(progress).Error; err != nil {
			return err
		}
		out.Progress = progress

		streak, err := c.streaks.RefreshTx(tx, userID, day)
		if err != nil {
			return err
		}
		out.Streak = streak
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// loadOrEnrollTx fetches the progress record, creating it on the first
// qualifying action for a challenge the user has not started.
func (c *ChallengeService) loadOrEnrollTx(tx *gorm.DB, userID uint, challenge *models.Challenge, day time.Time) (*models.ChallengeProgress, error) {
	var progress models.ChallengeProgress
	err := tx.Where("user_id = ? AND challenge_id = ?", userID, challenge.ID).First(&progress).Error
	if err == nil {
		return &progress, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	progress = models.ChallengeProgress{
		UserID:      userID,
		ChallengeID: challenge.ID,
		Threshold:   challenge.Threshold,
		Status:      models.ChallengeStatusActive,
		StartedOn:   day,
	}
	if err := tx.Create(&progress).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost an enroll race; reload the winner's row.
			if err := tx.Where("user_id = ? AND challenge_id = ?", userID, challenge.ID).First(&progress).Error; err != nil {
				return nil, err
			}
			return &progress, nil
		}
		return nil, err
	}
	return &progress, nil
}

// completeTx runs the active -> completed side effects. The bonus ledger
// entry doubles as the idempotency marker: if it already exists the bonus is
// not re-awarded.
func (c *ChallengeService) completeTx(tx *gorm.DB, progress *models.ChallengeProgress, challenge *models.Challenge, day time.Time) error {
	progress.Status = models.ChallengeStatusCompleted
	completed := day
	progress.CompletedOn = &completed

	if challenge.BonusPoints <= 0 {
		return nil
	}
	hasBonus, err := c.ledger.HasEntryTx(tx, progress.UserID, models.CategoryBonus, challenge.ID)
	if err != nil {
		return err
	}
	if hasBonus {
		return nil
	}
	_, err = c.ledger.AwardTx(tx, AwardInput{
		UserID:       progress.UserID,
		Amount:       challenge.BonusPoints,
		Category:     models.CategoryBonus,
		SourceItemID: challenge.ID,
		EarnedOn:     day,
	})
	return err
}

// GetProgress returns the user's progress for one challenge.
func (c *ChallengeService) GetProgress(userID, challengeID uint) (*models.ChallengeProgress, error) {
	var progress models.ChallengeProgress
	err := c.db.Where("user_id = ? AND challenge_id = ?", userID, challengeID).First(&progress).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &progress, nil
}
