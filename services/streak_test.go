package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeStreak(t *testing.T) {
	asOf := day(2026, time.March, 10)

	tests := []struct {
		name  string
		dates []time.Time
		want  StreakResult
	}{
		{
			name:  "empty history",
			dates: nil,
			want:  StreakResult{Current: 0, Longest: 0},
		},
		{
			name: "three consecutive days ending today",
			dates: []time.Time{
				day(2026, time.March, 8),
				day(2026, time.March, 9),
				day(2026, time.March, 10),
			},
			want: StreakResult{Current: 3, Longest: 3},
		},
		{
			name: "streak survives when last activity was yesterday",
			dates: []time.Time{
				day(2026, time.March, 8),
				day(2026, time.March, 9),
			},
			want: StreakResult{Current: 2, Longest: 2},
		},
		{
			name: "gap resets current but longest keeps the old run",
			dates: []time.Time{
				day(2026, time.March, 1),
				day(2026, time.March, 2),
				day(2026, time.March, 3),
				day(2026, time.March, 9),
			},
			want: StreakResult{Current: 1, Longest: 3},
		},
		{
			name: "stale history yields zero current",
			dates: []time.Time{
				day(2026, time.March, 4),
				day(2026, time.March, 5),
				day(2026, time.March, 6),
			},
			want: StreakResult{Current: 0, Longest: 3},
		},
		{
			name: "duplicate timestamps collapse to one day",
			dates: []time.Time{
				day(2026, time.March, 9),
				day(2026, time.March, 9).Add(8 * time.Hour),
				day(2026, time.March, 10),
				day(2026, time.March, 10).Add(20 * time.Hour),
			},
			want: StreakResult{Current: 2, Longest: 2},
		},
		{
			name: "single day today",
			dates: []time.Time{
				day(2026, time.March, 10),
			},
			want: StreakResult{Current: 1, Longest: 1},
		},
		{
			name: "longest run sits in the middle of the history",
			dates: []time.Time{
				day(2026, time.February, 1),
				day(2026, time.February, 2),
				day(2026, time.February, 3),
				day(2026, time.February, 4),
				day(2026, time.February, 20),
				day(2026, time.March, 10),
			},
			want: StreakResult{Current: 1, Longest: 4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeStreak(tt.dates, asOf)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, got.Current, got.Longest)
		})
	}
}

func TestComputeStreakOrderIndependent(t *testing.T) {
	asOf := day(2026, time.March, 10)
	ordered := []time.Time{
		day(2026, time.March, 8),
		day(2026, time.March, 9),
		day(2026, time.March, 10),
	}
	shuffled := []time.Time{
		day(2026, time.March, 10),
		day(2026, time.March, 8),
		day(2026, time.March, 9),
	}
	assert.Equal(t, ComputeStreak(ordered, asOf), ComputeStreak(shuffled, asOf))
}

func TestRecalculateReplacesCache(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice")
	boosts := NewBoostService(db)

	d1 := day(2026, time.March, 8)
	d2 := day(2026, time.March, 9)
	_, err := boosts.CompleteBoost(user.ID, 1, d1)
	require.NoError(t, err)
	_, err = boosts.CompleteBoost(user.ID, 1, d2)
	require.NoError(t, err)

	// Corrupt the cache to prove the repair replays from events.
	require.NoError(t, db.Model(user).UpdateColumns(map[string]interface{}{
		"burn_streak":         99,
		"longest_burn_streak": 99,
	}).Error)

	streaks := NewStreakService(db)
	changed, err := streaks.Recalculate(user.ID, d2)
	require.NoError(t, err)
	assert.True(t, changed)

	got := reloadUser(t, db, user.ID)
	assert.Equal(t, 2, got.BurnStreak)
	assert.Equal(t, 2, got.LongestBurnStreak)

	// Already correct: second run reports no change.
	changed, err = streaks.Recalculate(user.ID, d2)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestRecalculateUnknownUser(t *testing.T) {
	db := newTestDB(t)
	streaks := NewStreakService(db)
	_, err := streaks.Recalculate(12345, time.Now())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecalculateAllContinuesAndCounts(t *testing.T) {
	db := newTestDB(t)
	boosts := NewBoostService(db)
	streaks := NewStreakService(db)

	a := createTestUser(t, db, "a")
	b := createTestUser(t, db, "b")

	today := day(2026, time.March, 10)
	_, err := boosts.CompleteBoost(a.ID, 1, today)
	require.NoError(t, err)

	// Corrupt one cache only.
	require.NoError(t, db.Model(a).UpdateColumn("burn_streak", 7).Error)

	summary, err := streaks.RecalculateAll(today)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.UsersProcessed)
	assert.Equal(t, 1, summary.UsersChanged)
	assert.Equal(t, 0, summary.UsersFailed)

	assert.Equal(t, 1, reloadUser(t, db, a.ID).BurnStreak)
	assert.Equal(t, 0, reloadUser(t, db, b.ID).BurnStreak)
}
