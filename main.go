package main

import (
	"time"

	"github.com/emberwell/api/config"
	"github.com/emberwell/api/models"
	"github.com/emberwell/api/routes"
	"github.com/emberwell/api/services"
	"github.com/emberwell/api/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.User{},
		&models.ActivityEvent{},
		&models.PointLedgerEntry{},
		&models.Challenge{},
		&models.ChallengeProgress{},
		&models.HealthAssessment{},
		&models.DailyInsightSnapshot{},
	)

	r := routes.SetupRouter(db)

	// Keep the daily rollup fresh in the background (best-effort)
	snapshots := services.NewSnapshotService(db)
	utils.StartSnapshotRefresher(time.Duration(cfg.SnapshotRefreshMinutes)*time.Minute, func(now time.Time) error {
		_, err := snapshots.RecomputeDailySnapshot(now)
		return err
	})

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
