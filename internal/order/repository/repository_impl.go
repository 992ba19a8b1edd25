package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/eventick/ticketpay/internal/order/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) SumRevenue(ctx context.Context, db *gorm.DB, organizerID snowflake.ID, periodStart, periodEnd time.Time, defaultFeeBps int64) (domain.RevenueSummary, error) {
	var row struct {
		GrossAmount int64
		PlatformFee int64
		OrderCount  int64
	}

	// The fee fallback resolves per order, not as a blanket percentage of
	// the aggregate, so negotiated fees coexist with default-rate orders.
	err := db.WithContext(ctx).Raw(
		`SELECT
		    COALESCE(SUM(total_amount), 0) AS gross_amount,
		    COALESCE(SUM(CASE
		        WHEN platform_fee IS NOT NULL THEN platform_fee
		        ELSE total_amount * ? / 10000
		    END), 0) AS platform_fee,
		    COUNT(*) AS order_count
		 FROM orders
		 WHERE organizer_id = ?
		   AND payment_status = ?
		   AND created_at > ?
		   AND created_at <= ?`,
		defaultFeeBps,
		organizerID,
		domain.PaymentStatusCompleted,
		periodStart,
		periodEnd,
	).Scan(&row).Error
	if err != nil {
		return domain.RevenueSummary{}, err
	}

	return domain.RevenueSummary{
		GrossAmount: row.GrossAmount,
		PlatformFee: row.PlatformFee,
		NetAmount:   row.GrossAmount - row.PlatformFee,
		OrderCount:  row.OrderCount,
	}, nil
}

func (r *repo) ListRecentCompleted(ctx context.Context, db *gorm.DB, organizerID snowflake.ID, limit int) ([]*domain.Order, error) {
	var orders []*domain.Order
	err := db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("organizer_id = ? AND payment_status = ?", organizerID, domain.PaymentStatusCompleted).
		Order("created_at desc, id desc").
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, order *domain.Order) error {
	return db.WithContext(ctx).Create(order).Error
}
