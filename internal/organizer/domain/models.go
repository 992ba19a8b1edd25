package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Organizer is a platform user authorized to host events and receive payouts.
// Bank fields are nil until payout setup completes; BankAccountName holds the
// holder name resolved during verification.
type Organizer struct {
	ID                snowflake.ID `gorm:"primaryKey" json:"id"`
	UserID            snowflake.ID `gorm:"not null;uniqueIndex:ux_organizers_user" json:"user_id"`
	Name              string       `gorm:"not null" json:"name"`
	Email             string       `gorm:"not null" json:"email"`
	BankAccountNumber *string      `gorm:"column:bank_account_number" json:"bank_account_number,omitempty"`
	BankCode          *string      `gorm:"column:bank_code" json:"bank_code,omitempty"`
	BankAccountName   *string      `gorm:"column:bank_account_name" json:"bank_account_name,omitempty"`
	BankVerifiedAt    *time.Time   `gorm:"column:bank_verified_at" json:"bank_verified_at,omitempty"`
	CreatedAt         time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt         time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Organizer) TableName() string { return "organizers" }

// HasBankDetails reports whether payout setup is complete enough to request
// a payout: account number and bank code on file.
func (o Organizer) HasBankDetails() bool {
	return o.BankAccountNumber != nil && *o.BankAccountNumber != "" &&
		o.BankCode != nil && *o.BankCode != ""
}
