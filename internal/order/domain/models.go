package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// PaymentStatus of a ticket order. Only COMPLETED orders count toward
// payouts.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusRefunded  PaymentStatus = "REFUNDED"
)

// Order is one ticket purchase against an event hosted by an organizer.
// Amounts are integer minor units. PlatformFee is the negotiated per-order
// fee; nil means the platform default rate applies. Rows are written by the
// marketplace checkout flow and are immutable once COMPLETED — this service
// only reads them.
type Order struct {
	ID            snowflake.ID  `gorm:"primaryKey" json:"id"`
	EventID       snowflake.ID  `gorm:"not null;index" json:"event_id"`
	OrganizerID   snowflake.ID  `gorm:"not null;index" json:"organizer_id"`
	TotalAmount   int64         `gorm:"not null" json:"total_amount"`
	PlatformFee   *int64        `gorm:"column:platform_fee" json:"platform_fee,omitempty"`
	PaymentStatus PaymentStatus `gorm:"type:text;not null" json:"payment_status"`
	CreatedAt     time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Order) TableName() string { return "orders" }

// RevenueSummary aggregates completed order revenue over a payout window.
// NetAmount is always GrossAmount - PlatformFee.
type RevenueSummary struct {
	GrossAmount int64 `json:"gross_amount"`
	PlatformFee int64 `json:"platform_fee"`
	NetAmount   int64 `json:"net_amount"`
	OrderCount  int64 `json:"order_count"`
}
