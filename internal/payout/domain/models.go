package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	orderdomain "github.com/eventick/ticketpay/internal/order/domain"
)

// PayoutStatus lifecycle: PENDING -> {PROCESSING -> COMPLETED} | FAILED.
// COMPLETED and FAILED are terminal.
type PayoutStatus string

const (
	PayoutStatusPending    PayoutStatus = "PENDING"
	PayoutStatusProcessing PayoutStatus = "PROCESSING"
	PayoutStatusCompleted  PayoutStatus = "COMPLETED"
	PayoutStatusFailed     PayoutStatus = "FAILED"
)

// IsTerminal reports whether no further transition is possible.
func (s PayoutStatus) IsTerminal() bool {
	return s == PayoutStatusCompleted || s == PayoutStatusFailed
}

// Payout covers the half-open window (PeriodStart, PeriodEnd] of completed
// orders. Bank fields are snapshotted from the organizer at request time;
// later edits to the organizer's bank details never alter a pending payout's
// destination. Amounts are integer minor units and NetAmount is always
// GrossAmount - PlatformFee. Rows are never deleted.
type Payout struct {
	ID                snowflake.ID `gorm:"primaryKey" json:"id"`
	OrganizerID       snowflake.ID `gorm:"not null;index" json:"organizer_id"`
	GrossAmount       int64        `gorm:"not null" json:"gross_amount"`
	PlatformFee       int64        `gorm:"not null" json:"platform_fee"`
	NetAmount         int64        `gorm:"not null" json:"net_amount"`
	Status            PayoutStatus `gorm:"type:text;not null;default:'PENDING'" json:"status"`
	BankAccountNumber string       `gorm:"not null" json:"bank_account_number"`
	BankCode          string       `gorm:"not null" json:"bank_code"`
	BankAccountName   string       `gorm:"not null" json:"bank_account_name"`
	PeriodStart       time.Time    `gorm:"not null" json:"period_start"`
	PeriodEnd         time.Time    `gorm:"not null" json:"period_end"`
	FailureReason     *string      `gorm:"column:failure_reason" json:"failure_reason,omitempty"`
	Notes             *string      `gorm:"column:notes" json:"notes,omitempty"`
	CreatedAt         time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	ProcessedAt       *time.Time   `gorm:"column:processed_at" json:"processed_at,omitempty"`
}

// TableName sets the database table name.
func (Payout) TableName() string { return "payouts" }

// PayoutWithOrganizer is the admin list row: payout plus organizer identity.
type PayoutWithOrganizer struct {
	Payout
	OrganizerName  string `json:"organizer_name"`
	OrganizerEmail string `json:"organizer_email"`
}

// Period is the half-open window (Start, End] a new payout would cover.
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// BulkResult aggregates a batch decision. Per-item detail is not reported;
// callers needing it process individually.
type BulkResult struct {
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
}

// RevenueAnalytics is the organizer dashboard projection.
type RevenueAnalytics struct {
	PendingEstimate orderdomain.RevenueSummary `json:"pending_estimate"`
	PendingPeriod   Period                     `json:"pending_period"`
	LifetimePaidOut int64                      `json:"lifetime_paid_out"`
	RecentPayouts   []Payout                   `json:"recent_payouts"`
	RecentOrders    []orderdomain.Order        `json:"recent_orders"`
}
