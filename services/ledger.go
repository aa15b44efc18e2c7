package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/emberwell/api/models"
)

// AwardInput describes one logical point award. The tuple (UserID, Category,
// SourceItemID, EarnedOn) is the idempotency key: retrying the same logical
// award collides on the ledger's unique index instead of double-counting.
type AwardInput struct {
	UserID       uint
	Amount       int
	Category     string
	SourceItemID uint
	EarnedOn     time.Time
}

// LedgerService is the award pipeline over the append-only point ledger.
// The ledger is the single source of truth for fuel point totals; the
// users.fuel_points column is a cache it also maintains.
type LedgerService struct {
	db *gorm.DB
}

// NewLedgerService creates a new LedgerService instance.
func NewLedgerService(db *gorm.DB) *LedgerService {
	return &LedgerService{db: db}
}

// Award appends one ledger entry in its own transaction. See AwardTx.
func (l *LedgerService) Award(in AwardInput) (*models.PointLedgerEntry, error) {
	var entry *models.PointLedgerEntry
	err := l.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		entry, txErr = l.AwardTx(tx, in)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// AwardTx appends one immutable ledger entry inside the caller's transaction
// and keeps the caches in step: the user's fuel point total and the day's
// snapshot bucket. Rejects non-positive amounts with ErrInvalidAward and
// duplicate idempotency keys with ErrAlreadyAwarded; on any error the
// caller's transaction rolls back with no partial state.
func (l *LedgerService) AwardTx(tx *gorm.DB, in AwardInput) (*models.PointLedgerEntry, error) {
	if in.Amount <= 0 {
		return nil, ErrInvalidAward
	}

	day := DayOf(in.EarnedOn)
	entry := models.PointLedgerEntry{
		PublicID:     uuid.NewString(),
		UserID:       in.UserID,
		Amount:       in.Amount,
		Category:     in.Category,
		SourceItemID: in.SourceItemID,
		EarnedOn:     day,
	}
	if err := tx.Create(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyAwarded
		}
		return nil, err
	}

	res := tx.Model(&models.User{}).Where("id = ?", in.UserID).
		UpdateColumn("fuel_points", gorm.Expr("fuel_points + ?", in.Amount))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	if err := bumpSnapshotPointsTx(tx, day, in.Amount); err != nil {
		return nil, err
	}

	return &entry, nil
}

// HasEntryTx reports whether any ledger entry exists for the key fields,
// ignoring the date. Used as the one-time guard for completion bonuses.
func (l *LedgerService) HasEntryTx(tx *gorm.DB, userID uint, category string, sourceItemID uint) (bool, error) {
	var n int64
	err := tx.Model(&models.PointLedgerEntry{}).
		Where("user_id = ? AND category = ? AND source_item_id = ?", userID, category, sourceItemID).
		Count(&n).Error
	return n > 0, err
}

// RecomputeUserTotal rebuilds the cached fuel point total strictly from the
// sum of the user's ledger entries and overwrites the cache. Idempotent;
// no side effects beyond the cache write.
func (l *LedgerService) RecomputeUserTotal(userID uint) (int, error) {
	var total int
	err := l.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := tx.Model(&models.PointLedgerEntry{}).
			Where("user_id = ?", userID).
			Select("COALESCE(SUM(amount),0)").
			Scan(&total).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", userID).
			UpdateColumn("fuel_points", total).Error
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

// ListEntries returns a page of a user's ledger entries, newest first.
func (l *LedgerService) ListEntries(userID uint, offset, limit int) ([]models.PointLedgerEntry, int64, error) {
	var total int64
	if err := l.db.Model(&models.PointLedgerEntry{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var entries []models.PointLedgerEntry
	err := l.db.Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&entries).Error
	return entries, total, err
}

// appendEventTx writes one immutable activity event and bumps the day's
// action counter in the snapshot bucket.
func appendEventTx(tx *gorm.DB, userID uint, eventType string, occurredAt time.Time, sourceID uint) error {
	day := DayOf(occurredAt)
	event := models.ActivityEvent{
		UserID:     userID,
		EventType:  eventType,
		OccurredOn: day,
		OccurredAt: occurredAt,
		SourceID:   sourceID,
	}
	if err := tx.Create(&event).Error; err != nil {
		return err
	}
	return bumpSnapshotActionTx(tx, day, eventType)
}
