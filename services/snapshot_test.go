package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberwell/api/models"
)

func TestRecomputeDailySnapshot(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	createTestUser(t, db, "carol")

	boosts := NewBoostService(db)
	challenges := NewChallengeService(db)
	assessments := NewAssessmentService(db)
	challenge := createTestChallenge(t, db, 21, 5, 100)

	today := day(2026, time.March, 10)

	_, err := boosts.CompleteBoost(alice.ID, 1, today)
	require.NoError(t, err)
	_, err = boosts.CompleteBoost(bob.ID, 1, today)
	require.NoError(t, err)
	_, err = challenges.RecordDay(alice.ID, challenge.ID, models.EventTypeVerification, today)
	require.NoError(t, err)
	_, err = assessments.Submit(bob.ID, validTestScores(), today)
	require.NoError(t, err)

	snapshots := NewSnapshotService(db)
	snap, err := snapshots.RecomputeDailySnapshot(today)
	require.NoError(t, err)

	assert.Equal(t, int64(3), snap.TotalUsers)
	assert.Equal(t, int64(2), snap.ActiveUsers) // carol did nothing
	assert.Equal(t, int64(2), snap.BoostActions)
	assert.Equal(t, int64(1), snap.VerificationActions)
	assert.Equal(t, int64(1), snap.AssessmentActions)
	// 2 boosts x10, 1 challenge day x5, 1 assessment x15.
	assert.Equal(t, int64(40), snap.TotalPointsEarned)
}

func TestRecomputeDailySnapshotIdempotent(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice")
	boosts := NewBoostService(db)

	today := day(2026, time.March, 10)
	_, err := boosts.CompleteBoost(alice.ID, 1, today)
	require.NoError(t, err)

	snapshots := NewSnapshotService(db)
	first, err := snapshots.RecomputeDailySnapshot(today)
	require.NoError(t, err)
	second, err := snapshots.RecomputeDailySnapshot(today)
	require.NoError(t, err)

	// Re-running with unchanged inputs overwrites with identical values and
	// never creates a second row for the date.
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.TotalPointsEarned, second.TotalPointsEarned)
	assert.Equal(t, first.BoostActions, second.BoostActions)
	assert.Equal(t, first.ActiveUsers, second.ActiveUsers)

	var n int64
	require.NoError(t, db.Model(&models.DailyInsightSnapshot{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestRecomputeCorrectsDriftedLiveBuckets(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice")
	boosts := NewBoostService(db)

	today := day(2026, time.March, 10)
	_, err := boosts.CompleteBoost(alice.ID, 1, today)
	require.NoError(t, err)

	// The live award path already warmed today's bucket.
	snapshots := NewSnapshotService(db)
	live, err := snapshots.GetSnapshot(today)
	require.NoError(t, err)
	assert.Equal(t, int64(10), live.TotalPointsEarned)
	assert.Equal(t, int64(1), live.BoostActions)

	// Inject drift, then recompute from source records.
	require.NoError(t, db.Model(&models.DailyInsightSnapshot{}).
		Where("id = ?", live.ID).
		UpdateColumn("total_points_earned", 9999).Error)

	fixed, err := snapshots.RecomputeDailySnapshot(today)
	require.NoError(t, err)
	assert.Equal(t, int64(10), fixed.TotalPointsEarned)
}

func TestSnapshotAssessmentAveragesLatestPerUser(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	assessments := NewAssessmentService(db)

	d1 := day(2026, time.March, 9)
	d2 := day(2026, time.March, 10)

	// Alice assesses twice; only her newer scores may count.
	old := AssessmentScores{Mindset: 1, Sleep: 1, Exercise: 1, Nutrition: 1, Biohacking: 1}
	_, err := assessments.Submit(alice.ID, old, d1)
	require.NoError(t, err)
	newer := AssessmentScores{Mindset: 8, Sleep: 8, Exercise: 8, Nutrition: 8, Biohacking: 8}
	_, err = assessments.Submit(alice.ID, newer, d2)
	require.NoError(t, err)

	bobScores := AssessmentScores{Mindset: 4, Sleep: 4, Exercise: 4, Nutrition: 4, Biohacking: 4}
	_, err = assessments.Submit(bob.ID, bobScores, d2)
	require.NoError(t, err)

	snapshots := NewSnapshotService(db)
	snap, err := snapshots.RecomputeDailySnapshot(d2)
	require.NoError(t, err)

	assert.InDelta(t, 6.0, snap.AvgMindsetScore, 0.001)
	assert.InDelta(t, 6.0, snap.AvgSleepScore, 0.001)
	assert.InDelta(t, 6.0, snap.AvgBiohackingScore, 0.001)

	// As of the earlier day only Alice's first assessment exists.
	snapD1, err := snapshots.RecomputeDailySnapshot(d1)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, snapD1.AvgMindsetScore, 0.001)
}

func TestGetSnapshotMissingDate(t *testing.T) {
	db := newTestDB(t)
	snapshots := NewSnapshotService(db)
	_, err := snapshots.GetSnapshot(day(2030, time.January, 1))
	assert.ErrorIs(t, err, ErrNotFound)
}
