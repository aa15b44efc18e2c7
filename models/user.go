package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a member account. Passwords are stored as bcrypt hashes only.
// FuelPoints, BurnStreak and LongestBurnStreak are caches over the point
// ledger and the activity event log; they can be rebuilt at any time by the
// maintenance operations and must never be treated as the record of truth.
type User struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	Username          string         `gorm:"size:64;not null;uniqueIndex" json:"username"`
	Email             string         `gorm:"size:255" json:"email"`
	PasswordHash      string         `gorm:"size:255" json:"-"`
	AvatarURL         string         `gorm:"size:512" json:"avatar_url"`
	FuelPoints        int            `gorm:"default:0" json:"fuel_points"`
	BurnStreak        int            `gorm:"default:0" json:"burn_streak"`
	LongestBurnStreak int            `gorm:"default:0" json:"longest_burn_streak"`
	LastActiveOn      *time.Time     `gorm:"type:date" json:"last_active_on"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate hook ensures timestamps are set even when not provided.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	return nil
}

// BeforeUpdate ensures the UpdatedAt timestamp is refreshed.
func (u *User) BeforeUpdate(tx *gorm.DB) error {
	u.UpdatedAt = time.Now()
	return nil
}
