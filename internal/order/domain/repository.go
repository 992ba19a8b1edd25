package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	// SumRevenue aggregates COMPLETED orders for the organizer created in
	// (periodStart, periodEnd]. Orders without an explicit platform fee fall
	// back to defaultFeeBps of their own total, applied per order.
	SumRevenue(ctx context.Context, db *gorm.DB, organizerID snowflake.ID, periodStart, periodEnd time.Time, defaultFeeBps int64) (RevenueSummary, error)

	// ListRecentCompleted returns the newest COMPLETED orders, newest first.
	ListRecentCompleted(ctx context.Context, db *gorm.DB, organizerID snowflake.ID, limit int) ([]*Order, error)

	Insert(ctx context.Context, db *gorm.DB, order *Order) error
}
