package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/emberwell/api/config"
	"github.com/emberwell/api/controllers"
	"github.com/emberwell/api/middleware"
	"github.com/emberwell/api/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB) *gin.Engine {
	// Load config and set Gin mode from configuration
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		// fallback to default recovery if logger failed to init
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}

	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	authController := controllers.NewAuthController(db)
	boostController := controllers.NewBoostController(db)
	challengeController := controllers.NewChallengeController(db)
	assessmentController := controllers.NewAssessmentController(db)
	insightsController := controllers.NewInsightsController(db)
	adminController := controllers.NewAdminController(db)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)
	authGroup.DELETE("/me", middleware.AuthRequired(), authController.DeleteAccount)

	// Public reads
	api.GET("/challenges", challengeController.ListChallenges)
	api.GET("/challenges/:id", challengeController.GetChallenge)
	api.GET("/users/:id/streak", boostController.GetStreak)
	api.GET("/users/:id/points", boostController.GetPoints)
	api.GET("/insights/daily", insightsController.GetDailySnapshot)
	api.GET("/insights/leaderboard", insightsController.Leaderboard)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware())
	protected.POST("/boosts/:id/complete", boostController.CompleteBoost)
	protected.POST("/challenges/:id/actions", challengeController.RecordAction)
	protected.POST("/challenges/:id/verifications", challengeController.RecordVerification)
	protected.GET("/challenges/:id/progress", challengeController.GetProgress)
	protected.POST("/assessments", assessmentController.Submit)
	protected.GET("/assessments/latest", assessmentController.Latest)

	admin := api.Group("/admin")
	admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
	admin.POST("/challenges", challengeController.CreateChallenge)
	admin.PUT("/challenges/:id", challengeController.UpdateChallenge)
	admin.POST("/users/:id/streak/recalculate", adminController.RecalculateStreak)
	admin.POST("/streaks/recalculate", adminController.RecalculateAllStreaks)
	admin.POST("/users/:id/points/recompute", adminController.RecomputeUserTotal)
	admin.POST("/insights/recompute", adminController.RecomputeSnapshot)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "api route not found")
	})

	return r
}
