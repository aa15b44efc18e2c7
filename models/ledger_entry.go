package models

import "time"

// Point ledger categories.
const (
	CategoryBoost      = "boost"
	CategoryChallenge  = "challenge"
	CategoryQuest      = "quest"
	CategoryContest    = "contest"
	CategoryAssessment = "health_assessment"
	CategoryBonus      = "bonus"
	CategoryOther      = "other"
)

// PointLedgerEntry is one immutable row in the append-only point ledger.
// A user's total fuel points is SUM(amount) over their entries; entries are
// never mutated or deleted, corrections append offsetting entries.
//
// The unique index over (user_id, category, source_item_id, earned_on) is the
// idempotency key for the award pipeline: a retried award for the same
// logical action collides here instead of inflating totals.
type PointLedgerEntry struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	PublicID     string    `gorm:"size:36;uniqueIndex" json:"public_id"`
	UserID       uint      `gorm:"index;uniqueIndex:idx_ledger_award_key;not null" json:"user_id"`
	Amount       int       `gorm:"not null" json:"amount"`
	Category     string    `gorm:"size:32;uniqueIndex:idx_ledger_award_key;not null" json:"category"`
	SourceItemID uint      `gorm:"uniqueIndex:idx_ledger_award_key" json:"source_item_id"`
	EarnedOn     time.Time `gorm:"type:date;uniqueIndex:idx_ledger_award_key;index;not null" json:"earned_on"`
	CreatedAt    time.Time `json:"created_at"`
}
