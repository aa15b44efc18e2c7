package models

import "time"

// DailyInsightSnapshot is the per-day global rollup. It is a pure aggregate:
// fully recomputable for any date from the activity log, the point ledger,
// assessments and the users table, and upserted by date key. Live award paths
// bump the counters for today; the reconciler overwrite wins.
type DailyInsightSnapshot struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	Date              time.Time `gorm:"type:date;uniqueIndex;not null" json:"date"`
	TotalUsers        int64     `gorm:"not null;default:0" json:"total_users"`
	ActiveUsers       int64     `gorm:"not null;default:0" json:"active_users"`
	NewUsers          int64     `gorm:"not null;default:0" json:"new_users"`
	TotalPointsEarned int64     `gorm:"not null;default:0" json:"total_points_earned"`

	BoostActions        int64 `gorm:"not null;default:0" json:"boost_actions"`
	ChallengeActions    int64 `gorm:"not null;default:0" json:"challenge_actions"`
	VerificationActions int64 `gorm:"not null;default:0" json:"verification_actions"`
	AssessmentActions   int64 `gorm:"not null;default:0" json:"assessment_actions"`

	// Averages over each user's latest assessment as of Date.
	AvgMindsetScore    float64 `gorm:"not null;default:0" json:"avg_mindset_score"`
	AvgSleepScore      float64 `gorm:"not null;default:0" json:"avg_sleep_score"`
	AvgExerciseScore   float64 `gorm:"not null;default:0" json:"avg_exercise_score"`
	AvgNutritionScore  float64 `gorm:"not null;default:0" json:"avg_nutrition_score"`
	AvgBiohackingScore float64 `gorm:"not null;default:0" json:"avg_biohacking_score"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
