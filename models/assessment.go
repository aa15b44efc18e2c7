package models

import "time"

// HealthAssessment is a self-reported scorecard, one row per submission.
// Scores are 1..10. Snapshot averages pick each user's most recent
// assessment as of the snapshot date, ordered by RecordedAt.
type HealthAssessment struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"index;not null" json:"user_id"`
	MindsetScore    int       `gorm:"not null" json:"mindset_score"`
	SleepScore      int       `gorm:"not null" json:"sleep_score"`
	ExerciseScore   int       `gorm:"not null" json:"exercise_score"`
	NutritionScore  int       `gorm:"not null" json:"nutrition_score"`
	BiohackingScore int       `gorm:"not null" json:"biohacking_score"`
	RecordedOn      time.Time `gorm:"type:date;index;not null" json:"recorded_on"`
	RecordedAt      time.Time `gorm:"index;not null" json:"recorded_at"`
	CreatedAt       time.Time `json:"created_at"`
}
