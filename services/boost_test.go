package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberwell/api/models"
)

func TestCompleteBoostAwardsAndAdvancesStreak(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice")
	boosts := NewBoostService(db)

	d1 := day(2026, time.March, 9)
	res, err := boosts.CompleteBoost(user.ID, 7, d1)
	require.NoError(t, err)
	assert.Equal(t, 10, res.Entry.Amount)
	assert.Equal(t, models.CategoryBoost, res.Entry.Category)
	assert.Equal(t, StreakResult{Current: 1, Longest: 1}, res.Streak)

	got := reloadUser(t, db, user.ID)
	assert.Equal(t, 10, got.FuelPoints)
	assert.Equal(t, 1, got.BurnStreak)
	require.NotNil(t, got.LastActiveOn)

	// Consecutive day extends the streak.
	d2 := day(2026, time.March, 10)
	res, err = boosts.CompleteBoost(user.ID, 8, d2)
	require.NoError(t, err)
	assert.Equal(t, StreakResult{Current: 2, Longest: 2}, res.Streak)
	assert.Equal(t, 20, reloadUser(t, db, user.ID).FuelPoints)

	var events int64
	require.NoError(t, db.Model(&models.ActivityEvent{}).
		Where("user_id = ? AND event_type = ?", user.ID, models.EventTypeBoost).
		Count(&events).Error)
	assert.Equal(t, int64(2), events)
}

func TestCompleteBoostSameDayRepeat(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice")
	boosts := NewBoostService(db)

	at := day(2026, time.March, 10)
	_, err := boosts.CompleteBoost(user.ID, 7, at)
	require.NoError(t, err)

	// Same boost, same day: rejected with nothing written.
	_, err = boosts.CompleteBoost(user.ID, 7, at.Add(5*time.Hour))
	assert.ErrorIs(t, err, ErrAlreadyAwarded)

	got := reloadUser(t, db, user.ID)
	assert.Equal(t, 10, got.FuelPoints)
	assert.Equal(t, 1, got.BurnStreak)

	var events int64
	require.NoError(t, db.Model(&models.ActivityEvent{}).Where("user_id = ?", user.ID).Count(&events).Error)
	assert.Equal(t, int64(1), events)

	// A different boost the same day is a separate award but the same
	// streak day.
	res, err := boosts.CompleteBoost(user.ID, 8, at)
	require.NoError(t, err)
	assert.Equal(t, StreakResult{Current: 1, Longest: 1}, res.Streak)
	assert.Equal(t, 20, reloadUser(t, db, user.ID).FuelPoints)
}

func TestCompleteBoostGapResetsCurrentStreak(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice")
	boosts := NewBoostService(db)

	_, err := boosts.CompleteBoost(user.ID, 1, day(2026, time.March, 1))
	require.NoError(t, err)
	_, err = boosts.CompleteBoost(user.ID, 1, day(2026, time.March, 2))
	require.NoError(t, err)

	res, err := boosts.CompleteBoost(user.ID, 1, day(2026, time.March, 9))
	require.NoError(t, err)
	assert.Equal(t, StreakResult{Current: 1, Longest: 2}, res.Streak)

	got := reloadUser(t, db, user.ID)
	assert.Equal(t, 1, got.BurnStreak)
	assert.Equal(t, 2, got.LongestBurnStreak)
}

func TestCompleteBoostUnknownUser(t *testing.T) {
	db := newTestDB(t)
	boosts := NewBoostService(db)
	_, err := boosts.CompleteBoost(999, 1, time.Now())
	assert.ErrorIs(t, err, ErrNotFound)
}
