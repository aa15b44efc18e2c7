package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberwell/api/models"
)

func TestAwardAppendsEntryAndBumpsCaches(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice")
	ledger := NewLedgerService(db)

	earned := day(2026, time.March, 10)
	entry, err := ledger.Award(AwardInput{
		UserID:       user.ID,
		Amount:       10,
		Category:     models.CategoryBoost,
		SourceItemID: 3,
		EarnedOn:     earned,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, entry.PublicID)
	assert.Equal(t, 10, entry.Amount)
	assert.Equal(t, earned, entry.EarnedOn)

	assert.Equal(t, 10, reloadUser(t, db, user.ID).FuelPoints)

	var snap models.DailyInsightSnapshot
	require.NoError(t, db.Where("date = ?", earned).First(&snap).Error)
	assert.Equal(t, int64(10), snap.TotalPointsEarned)
}

func TestAwardRejectsNonPositiveAmounts(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice")
	ledger := NewLedgerService(db)

	for _, amount := range []int{0, -5} {
		_, err := ledger.Award(AwardInput{
			UserID:   user.ID,
			Amount:   amount,
			Category: models.CategoryBoost,
			EarnedOn: time.Now(),
		})
		assert.ErrorIs(t, err, ErrInvalidAward)
	}
	assert.Equal(t, 0, reloadUser(t, db, user.ID).FuelPoints)
}

func TestAwardDuplicateKeyLeavesNoPartialState(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice")
	ledger := NewLedgerService(db)

	in := AwardInput{
		UserID:       user.ID,
		Amount:       10,
		Category:     models.CategoryBoost,
		SourceItemID: 3,
		EarnedOn:     day(2026, time.March, 10),
	}
	_, err := ledger.Award(in)
	require.NoError(t, err)

	_, err = ledger.Award(in)
	assert.ErrorIs(t, err, ErrAlreadyAwarded)

	// The retry rolled back: one entry, total unchanged.
	var n int64
	require.NoError(t, db.Model(&models.PointLedgerEntry{}).Where("user_id = ?", user.ID).Count(&n).Error)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, 10, reloadUser(t, db, user.ID).FuelPoints)

	// Same boost on another day is a fresh logical award.
	in.EarnedOn = day(2026, time.March, 11)
	_, err = ledger.Award(in)
	require.NoError(t, err)
	assert.Equal(t, 20, reloadUser(t, db, user.ID).FuelPoints)
}

func TestAwardUnknownUser(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedgerService(db)

	_, err := ledger.Award(AwardInput{
		UserID:   999,
		Amount:   10,
		Category: models.CategoryBoost,
		EarnedOn: time.Now(),
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecomputeUserTotal(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice")
	ledger := NewLedgerService(db)

	for i := 1; i <= 3; i++ {
		_, err := ledger.Award(AwardInput{
			UserID:       user.ID,
			Amount:       10,
			Category:     models.CategoryBoost,
			SourceItemID: uint(i),
			EarnedOn:     day(2026, time.March, 10),
		})
		require.NoError(t, err)
	}

	// Corrupt the cache, then rebuild it from the ledger.
	require.NoError(t, db.Model(user).UpdateColumn("fuel_points", 1).Error)

	total, err := ledger.RecomputeUserTotal(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 30, total)
	assert.Equal(t, 30, reloadUser(t, db, user.ID).FuelPoints)

	// Idempotent.
	total, err = ledger.RecomputeUserTotal(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 30, total)

	_, err = ledger.RecomputeUserTotal(999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListEntriesNewestFirst(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice")
	ledger := NewLedgerService(db)

	for i := 1; i <= 5; i++ {
		_, err := ledger.Award(AwardInput{
			UserID:       user.ID,
			Amount:       10,
			Category:     models.CategoryBoost,
			SourceItemID: uint(i),
			EarnedOn:     day(2026, time.March, 10),
		})
		require.NoError(t, err)
	}

	entries, total, err := ledger.ListEntries(user.ID, 0, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, entries, 3)
	assert.Greater(t, entries[0].ID, entries[2].ID)

	entries, _, err = ledger.ListEntries(user.ID, 3, 3)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
