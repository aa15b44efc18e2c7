package services

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/emberwell/api/config"
	"github.com/emberwell/api/models"
)

func TestMain(m *testing.M) {
	config.SetForTest(config.AppConfig{
		BoostRewardPoints:      10,
		AssessmentRewardPoints: 15,
		ChallengeDailyPoints:   10,
		ChallengeBonusPoints:   100,
		ChallengeThreshold:     21,
		StreakQualifyingTypes:  []string{"boost"},
	})
	os.Exit(m.Run())
}

// newTestDB opens a fresh in-memory database with the full schema. One open
// connection so every query sees the same in-memory instance.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.ActivityEvent{},
		&models.PointLedgerEntry{},
		&models.Challenge{},
		&models.ChallengeProgress{},
		&models.HealthAssessment{},
		&models.DailyInsightSnapshot{},
	))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	// Backdated so rollups over fixed test dates see the account as existing.
	user := models.User{Username: name, PasswordHash: "x", CreatedAt: day(2026, time.January, 1)}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func createTestChallenge(t *testing.T, db *gorm.DB, threshold, daily, bonus int) *models.Challenge {
	t.Helper()
	challenge := models.Challenge{
		Name:        fmt.Sprintf("challenge-%d", time.Now().UnixNano()),
		Threshold:   threshold,
		DailyPoints: daily,
		BonusPoints: bonus,
		Active:      true,
	}
	require.NoError(t, db.Create(&challenge).Error)
	return &challenge
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.Local)
}

func reloadUser(t *testing.T, db *gorm.DB, id uint) *models.User {
	t.Helper()
	var user models.User
	require.NoError(t, db.First(&user, id).Error)
	return &user
}
