package models

import "time"

// Challenge is a catalog entry for a multi-day goal: completing it requires
// Threshold distinct qualifying days and triggers a one-time bonus award.
type Challenge struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:128;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Threshold   int       `gorm:"not null;default:21" json:"threshold"`
	DailyPoints int       `gorm:"not null;default:0" json:"daily_points"`
	BonusPoints int       `gorm:"not null;default:0" json:"bonus_points"`
	Active      bool      `gorm:"default:true" json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Challenge progress statuses.
const (
	ChallengeStatusActive    = "active"
	ChallengeStatusCompleted = "completed"
)

// ChallengeProgress tracks one user's verification count toward a challenge
// threshold. Created on the first qualifying action (auto-enroll),
// VerificationCount moves at most once per calendar day, and the
// active -> completed transition fires exactly once.
type ChallengeProgress struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	UserID            uint       `gorm:"not null;uniqueIndex:idx_challenge_progress_user" json:"user_id"`
	ChallengeID       uint       `gorm:"not null;uniqueIndex:idx_challenge_progress_user" json:"challenge_id"`
	VerificationCount int        `gorm:"not null;default:0" json:"verification_count"`
	Threshold         int        `gorm:"not null" json:"threshold"`
	Status            string     `gorm:"size:16;not null;default:active" json:"status"`
	StartedOn         time.Time  `gorm:"type:date;not null" json:"started_on"`
	CompletedOn       *time.Time `gorm:"type:date" json:"completed_on"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}
