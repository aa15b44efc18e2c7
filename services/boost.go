package services

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/emberwell/api/config"
	"github.com/emberwell/api/models"
)

// BoostService handles the daily boost completion path: one qualifying
// activity event plus one fuel point award per (user, boost, day).
type BoostService struct {
	db      *gorm.DB
	ledger  *LedgerService
	streaks *StreakService
}

// NewBoostService creates a new BoostService instance.
func NewBoostService(db *gorm.DB) *BoostService {
	return &BoostService{db: db, ledger: NewLedgerService(db), streaks: NewStreakService(db)}
}

// BoostCompletion is the outcome of a successful boost completion.
type BoostCompletion struct {
	Entry  *models.PointLedgerEntry `json:"entry"`
	Streak StreakResult             `json:"streak"`
}

// CompleteBoost records a boost completion for the caller's local "today".
// The whole operation is one transaction: the activity event, the ledger
// entry, the fuel point cache, the streak cache and the snapshot bucket move
// together or not at all. A repeat completion for the same (user, boost, day)
// fails fast with ErrAlreadyAwarded; the ledger's unique index makes that
// hold under concurrent submissions as well.
func (b *BoostService) CompleteBoost(userID, boostID uint, at time.Time) (*BoostCompletion, error) {
	cfg := config.Get()
	day := DayOf(at)
	var out BoostCompletion

	err := b.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		entry, err := b.ledger.AwardTx(tx, AwardInput{
			UserID:       userID,
			Amount:       cfg.BoostRewardPoints,
			Category:     models.CategoryBoost,
			SourceItemID: boostID,
			EarnedOn:     day,
		})
		if err != nil {
			return err
		}
		out.Entry = entry

		if err := appendEventTx(tx, userID, models.EventTypeBoost, at, boostID); err != nil {
			return err
		}

		streak, err := b.streaks.RefreshTx(tx, userID, day)
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
