package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/eventick/ticketpay/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, payout *Payout) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Payout, error)

	// FindByIDLocked takes a row lock on dialects that support FOR UPDATE.
	FindByIDLocked(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Payout, error)

	// LatestHonored returns the newest COMPLETED or PROCESSING payout; its
	// creation time is the next period's start.
	LatestHonored(ctx context.Context, db *gorm.DB, organizerID snowflake.ID) (*Payout, error)

	// LastCreatedAt returns the creation time of the organizer's most recent
	// payout regardless of status, for cooldown enforcement.
	LastCreatedAt(ctx context.Context, db *gorm.DB, organizerID snowflake.ID) (*time.Time, error)

	ListByOrganizer(ctx context.Context, db *gorm.DB, organizerID snowflake.ID) ([]*Payout, error)
	ListAll(ctx context.Context, db *gorm.DB, page pagination.Pagination) ([]*PayoutWithOrganizer, error)
	SumCompletedNet(ctx context.Context, db *gorm.DB, organizerID snowflake.ID) (int64, error)

	MarkProcessing(ctx context.Context, db *gorm.DB, id snowflake.ID, processedAt time.Time) error
	MarkCompleted(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	MarkFailed(ctx context.Context, db *gorm.DB, id snowflake.ID, reason string, processedAt time.Time) error

	// LockOrganizer serializes payout requests per organizer for the
	// duration of the surrounding transaction. No-op on dialects without
	// advisory locks; the partial unique index backstops those.
	LockOrganizer(ctx context.Context, db *gorm.DB, organizerID snowflake.ID) error
}
