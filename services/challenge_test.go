package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberwell/api/models"
)

func TestRecordDayAutoEnrolls(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice")
	challenge := createTestChallenge(t, db, 3, 5, 50)
	challenges := NewChallengeService(db)

	at := day(2026, time.March, 10)
	res, err := challenges.RecordDay(user.ID, challenge.ID, models.EventTypeChallengeAction, at)
	require.NoError(t, err)

	assert.False(t, res.Completed)
	assert.Equal(t, models.ChallengeStatusActive, res.Progress.Status)
	assert.Equal(t, 1, res.Progress.VerificationCount)
	assert.Equal(t, 3, res.Progress.Threshold)
	assert.Equal(t, at, res.Progress.StartedOn)

	assert.Equal(t, 5, reloadUser(t, db, user.ID).FuelPoints)
}

func TestRecordDayOncePerCalendarDay(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice")
	challenge := createTestChallenge(t, db, 3, 5, 50)
	challenges := NewChallengeService(db)

	at := day(2026, time.March, 10)
	_, err := challenges.RecordDay(user.ID, challenge.ID, models.EventTypeChallengeAction, at)
	require.NoError(t, err)

	// A verification later the same day still counts as the same day.
	_, err = challenges.RecordDay(user.ID, challenge.ID, models.EventTypeVerification, at.Add(6*time.Hour))
	assert.ErrorIs(t, err, ErrAlreadyAwarded)

	progress, err := challenges.GetProgress(user.ID, challenge.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, progress.VerificationCount)
	assert.Equal(t, 5, reloadUser(t, db, user.ID).FuelPoints)
}

func TestRecordDayCompletesAtThreshold(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice")
	challenge := createTestChallenge(t, db, 3, 5, 50)
	challenges := NewChallengeService(db)

	var res *ChallengeDayResult
	var err error
	for i := 0; i < 3; i++ {
		res, err = challenges.RecordDay(user.ID, challenge.ID, models.EventTypeVerification, day(2026, time.March, 10+i))
		require.NoError(t, err)
	}

	assert.True(t, res.Completed)
	assert.Equal(t, models.ChallengeStatusCompleted, res.Progress.Status)
	require.NotNil(t, res.Progress.CompletedOn)
	assert.Equal(t, day(2026, time.March, 12), *res.Progress.CompletedOn)

	// 3 daily awards plus exactly one bonus.
	assert.Equal(t, 3*5+50, reloadUser(t, db, user.ID).FuelPoints)
	var bonuses int64
	require.NoError(t, db.Model(&models.PointLedgerEntry{}).
		Where("user_id = ? AND category = ?", user.ID, models.CategoryBonus).
		Count(&bonuses).Error)
	assert.Equal(t, int64(1), bonuses)

	// Completed challenges reject further actions.
	_, err = challenges.RecordDay(user.ID, challenge.ID, models.EventTypeVerification, day(2026, time.March, 13))
	assert.ErrorIs(t, err, ErrAlreadyCompleted)
	assert.Equal(t, 3*5+50, reloadUser(t, db, user.ID).FuelPoints)
}

func TestRecordDayRejectsUnknownEventType(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice")
	challenge := createTestChallenge(t, db, 3, 5, 50)
	challenges := NewChallengeService(db)

	_, err := challenges.RecordDay(user.ID, challenge.ID, models.EventTypeBoost, time.Now())
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "event_type", verr.Field)
}

func TestRecordDayInactiveChallenge(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice")
	challenge := createTestChallenge(t, db, 3, 5, 50)
	require.NoError(t, db.Model(challenge).Update("active", false).Error)

	challenges := NewChallengeService(db)
	_, err := challenges.RecordDay(user.ID, challenge.ID, models.EventTypeChallengeAction, time.Now())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecordDayZeroDailyPoints(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice")
	challenge := createTestChallenge(t, db, 2, 0, 50)
	challenges := NewChallengeService(db)

	_, err := challenges.RecordDay(user.ID, challenge.ID, models.EventTypeVerification, day(2026, time.March, 10))
	require.NoError(t, err)
	assert.Equal(t, 0, reloadUser(t, db, user.ID).FuelPoints)

	res, err := challenges.RecordDay(user.ID, challenge.ID, models.EventTypeVerification, day(2026, time.March, 11))
	require.NoError(t, err)
	assert.True(t, res.Completed)

	// Bonus only; no daily awards configured.
	assert.Equal(t, 50, reloadUser(t, db, user.ID).FuelPoints)
}

func TestGetProgressNotEnrolled(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice")
	challenge := createTestChallenge(t, db, 3, 5, 50)

	challenges := NewChallengeService(db)
	_, err := challenges.GetProgress(user.ID, challenge.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
