package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Audience selects who a notification is for: a specific user or the admin
// broadcast feed.
type Audience string

const (
	AudienceUser  Audience = "user"
	AudienceAdmin Audience = "admin"
)

const (
	TypePayoutRequested = "payout_requested"
	TypePayoutProcessed = "payout_processed"
	TypePayoutRejected  = "payout_rejected"
)

// Notification is a fire-and-forget record surfaced in the UI feed.
// RecipientID is nil for admin broadcasts.
type Notification struct {
	ID          snowflake.ID      `gorm:"primaryKey" json:"id"`
	RecipientID *snowflake.ID     `gorm:"index" json:"recipient_id,omitempty"`
	Audience    Audience          `gorm:"type:text;not null;default:'user'" json:"audience"`
	Type        string            `gorm:"not null" json:"type"`
	Title       string            `gorm:"not null" json:"title"`
	Message     string            `gorm:"not null" json:"message"`
	ActionURL   string            `gorm:"column:action_url" json:"action_url,omitempty"`
	Metadata    datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	ReadAt      *time.Time        `gorm:"column:read_at" json:"read_at,omitempty"`
	CreatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Notification) TableName() string { return "notifications" }
