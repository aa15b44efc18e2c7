package models

import "time"

// Activity event types. EventTypeBoost is the default streak-qualifying type;
// the qualifying set is configurable, see config.AppConfig.StreakQualifyingTypes.
const (
	EventTypeBoost           = "boost"
	EventTypeChallengeAction = "challenge_action"
	EventTypeVerification    = "verification"
	EventTypeAssessment      = "health_assessment"
)

// ActivityEvent is one immutable record in the append-only activity log.
// OccurredOn is the user-local calendar date and is the authoritative unit
// for streak computation; two events on the same date count as one active day.
type ActivityEvent struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"index:idx_activity_user_date;not null" json:"user_id"`
	EventType  string    `gorm:"size:32;index;not null" json:"event_type"`
	OccurredOn time.Time `gorm:"type:date;index:idx_activity_user_date;index;not null" json:"occurred_on"`
	OccurredAt time.Time `gorm:"not null" json:"occurred_at"`
	SourceID   uint      `gorm:"index" json:"source_id"`
	CreatedAt  time.Time `json:"created_at"`
}
