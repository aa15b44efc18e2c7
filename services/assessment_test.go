package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberwell/api/models"
)

func validTestScores() AssessmentScores {
	return AssessmentScores{Mindset: 7, Sleep: 6, Exercise: 8, Nutrition: 5, Biohacking: 4}
}

func TestSubmitAssessment(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice")
	assessments := NewAssessmentService(db)

	at := day(2026, time.March, 10).Add(9 * time.Hour)
	got, err := assessments.Submit(user.ID, validTestScores(), at)
	require.NoError(t, err)
	assert.Equal(t, 7, got.MindsetScore)
	assert.Equal(t, day(2026, time.March, 10), got.RecordedOn)

	assert.Equal(t, 15, reloadUser(t, db, user.ID).FuelPoints)

	var events int64
	require.NoError(t, db.Model(&models.ActivityEvent{}).
		Where("user_id = ? AND event_type = ?", user.ID, models.EventTypeAssessment).
		Count(&events).Error)
	assert.Equal(t, int64(1), events)
}

func TestSubmitAssessmentOncePerDay(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice")
	assessments := NewAssessmentService(db)

	at := day(2026, time.March, 10)
	_, err := assessments.Submit(user.ID, validTestScores(), at)
	require.NoError(t, err)

	_, err = assessments.Submit(user.ID, validTestScores(), at.Add(4*time.Hour))
	assert.ErrorIs(t, err, ErrAlreadyAwarded)

	// The rejected retry left no partial rows behind.
	var rows int64
	require.NoError(t, db.Model(&models.HealthAssessment{}).Where("user_id = ?", user.ID).Count(&rows).Error)
	assert.Equal(t, int64(1), rows)
	assert.Equal(t, 15, reloadUser(t, db, user.ID).FuelPoints)

	// Next day is a fresh slot.
	_, err = assessments.Submit(user.ID, validTestScores(), at.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, 30, reloadUser(t, db, user.ID).FuelPoints)
}

func TestSubmitAssessmentValidatesScores(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice")
	assessments := NewAssessmentService(db)

	bad := validTestScores()
	bad.Sleep = 11
	_, err := assessments.Submit(user.ID, bad, time.Now())
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "sleep", verr.Field)

	bad = validTestScores()
	bad.Nutrition = 0
	_, err = assessments.Submit(user.ID, bad, time.Now())
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "nutrition", verr.Field)

	assert.Equal(t, 0, reloadUser(t, db, user.ID).FuelPoints)
}

func TestLatestAssessment(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice")
	assessments := NewAssessmentService(db)

	_, err := assessments.Latest(user.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = assessments.Submit(user.ID, validTestScores(), day(2026, time.March, 9))
	require.NoError(t, err)

	newer := validTestScores()
	newer.Mindset = 9
	_, err = assessments.Submit(user.ID, newer, day(2026, time.March, 10))
	require.NoError(t, err)

	got, err := assessments.Latest(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 9, got.MindsetScore)
	assert.True(t, got.RecordedOn.Equal(day(2026, time.March, 10)))
}
