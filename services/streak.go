package services

import (
	"errors"
	"sort"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/emberwell/api/config"
	"github.com/emberwell/api/models"
	"github.com/emberwell/api/utils"
)

// StreakResult holds the two cached streak figures for a user.
type StreakResult struct {
	Current int `json:"current"`
	Longest int `json:"longest"`
}

// ComputeStreak derives the burn streak from a user's qualifying-event dates.
//
// Current is the length of the unbroken run of calendar days ending on asOf
// or the day before; if the most recent qualifying day is older than
// yesterday the current streak is 0. Longest is the longest consecutive-day
// run anywhere in the history, not just the trailing one. Pure function:
// duplicate dates collapse to one active day, an empty history yields {0, 0}.
func ComputeStreak(dates []time.Time, asOf time.Time) StreakResult {
	days := distinctDays(dates)
	if len(days) == 0 {
		return StreakResult{}
	}

	asOfDay := DayOf(asOf)

	longest := 0
	run := 0
	for i, d := range days {
		if i == 0 || !isNextDay(days[i-1], d) {
			run = 1
		} else {
			run++
		}
		if run > longest {
			longest = run
		}
	}

	current := 0
	last := days[len(days)-1]
	if sameDay(last, asOfDay) || isNextDay(last, asOfDay) {
		current = 1
		cursor := last
		for i := len(days) - 2; i >= 0; i-- {
			if !isNextDay(days[i], cursor) {
				break
			}
			current++
			cursor = days[i]
		}
	}

	return StreakResult{Current: current, Longest: longest}
}

// distinctDays collapses timestamps to unique calendar days, ascending.
func distinctDays(dates []time.Time) []time.Time {
	seen := make(map[string]time.Time, len(dates))
	for _, d := range dates {
		day := DayOf(d)
		seen[day.Format(dayKeyLayout)] = day
	}
	days := make([]time.Time, 0, len(seen))
	for _, d := range seen {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}

// RepairSummary tallies the outcome of a batch maintenance run.
type RepairSummary struct {
	UsersProcessed int `json:"users_processed"`
	UsersChanged   int `json:"users_changed"`
	UsersFailed    int `json:"users_failed"`
}

// StreakService maintains the cached streak columns on users from the
// activity event log. The cache is always fully replaced from source events,
// never incrementally patched.
type StreakService struct {
	db *gorm.DB
}

// NewStreakService creates a new StreakService instance.
func NewStreakService(db *gorm.DB) *StreakService {
	return &StreakService{db: db}
}

// qualifyingDates loads the distinct qualifying-event dates for a user. The
// qualifying type set comes from configuration (default: boost completions).
func (s *StreakService) qualifyingDates(tx *gorm.DB, userID uint) ([]time.Time, error) {
	types := config.Get().StreakQualifyingTypes
	var dates []time.Time
	err := tx.Model(&models.ActivityEvent{}).
		Where("user_id = ? AND event_type IN ?", userID, types).
		Distinct().
		Order("occurred_on").
		Pluck("occurred_on", &dates).Error
	if err != nil {
		return nil, err
	}
	return dates, nil
}

// RefreshTx replays the user's qualifying events and writes the streak cache
// columns inside the caller's transaction. The caller must hold the user row
// lock. Only the streak columns are written, so concurrent point updates in
// the same transaction are not clobbered.
func (s *StreakService) RefreshTx(tx *gorm.DB, userID uint, asOf time.Time) (StreakResult, error) {
	dates, err := s.qualifyingDates(tx, userID)
	if err != nil {
		return StreakResult{}, err
	}
	res := ComputeStreak(dates, asOf)

	day := DayOf(asOf)
	updates := map[string]interface{}{
		"burn_streak":         res.Current,
		"longest_burn_streak": res.Longest,
		"last_active_on":      day,
	}
	if err := tx.Model(&models.User{}).Where("id = ?", userID).UpdateColumns(updates).Error; err != nil {
		return StreakResult{}, err
	}
	return res, nil
}

// Recalculate replays one user's activity events and replaces the cached
// streak values. Idempotent; safe to run concurrently with live traffic.
// Returns whether the cached values changed.
func (s *StreakService) Recalculate(userID uint, asOf time.Time) (bool, error) {
	changed := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		dates, err := s.qualifyingDates(tx, userID)
		if err != nil {
			return err
		}
		res := ComputeStreak(dates, asOf)
		if res.Current == user.BurnStreak && res.Longest == user.LongestBurnStreak {
			return nil
		}

		changed = true
		return tx.Model(&models.User{}).Where("id = ?", userID).UpdateColumns(map[string]interface{}{
			"burn_streak":         res.Current,
			"longest_burn_streak": res.Longest,
		}).Error
	})
	return changed, err
}

// RecalculateAll repairs the streak cache for every user. Per-user failures
// are logged and counted without aborting the batch, and no long transaction
// is held across users so the award pipeline stays unblocked.
func (s *StreakService) RecalculateAll(asOf time.Time) (RepairSummary, error) {
	var summary RepairSummary

	var ids []uint
	if err := s.db.Model(&models.User{}).Order("id").Pluck("id", &ids).Error; err != nil {
		return summary, err
	}

	for _, id := range ids {
		changed, err := s.Recalculate(id, asOf)
		summary.UsersProcessed++
		if err != nil {
			summary.UsersFailed++
			if utils.Sugar != nil {
				utils.Sugar.Warnf("streak recalculation failed for user %d: %v", id, err)
			}
			continue
		}
		if changed {
			summary.UsersChanged++
		}
	}
	return summary, nil
}
