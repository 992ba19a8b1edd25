package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/eventick/ticketpay/internal/notification/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, notification *domain.Notification) error {
	return db.WithContext(ctx).Create(notification).Error
}

func (r *repo) ListUnread(ctx context.Context, db *gorm.DB, userID snowflake.ID, includeAdminFeed bool, limit int) ([]*domain.Notification, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("read_at IS NULL")
	if includeAdminFeed {
		stmt = stmt.Where("recipient_id = ? OR audience = ?", userID, domain.AudienceAdmin)
	} else {
		stmt = stmt.Where("recipient_id = ?", userID)
	}

	var notifications []*domain.Notification
	err := stmt.
		Order("created_at desc, id desc").
		Limit(limit).
		Find(&notifications).Error
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *repo) MarkRead(ctx context.Context, db *gorm.DB, userID, id snowflake.ID, includeAdminFeed bool) (int64, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("id = ? AND read_at IS NULL", id)
	if includeAdminFeed {
		stmt = stmt.Where("recipient_id = ? OR audience = ?", userID, domain.AudienceAdmin)
	} else {
		stmt = stmt.Where("recipient_id = ?", userID)
	}

	result := stmt.Update("read_at", time.Now().UTC())
	return result.RowsAffected, result.Error
}
