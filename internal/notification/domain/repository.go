package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, notification *Notification) error

	// ListUnread returns the user's unread notifications; with the admin feed
	// included it also returns unread admin broadcasts (nil recipient).
	ListUnread(ctx context.Context, db *gorm.DB, userID snowflake.ID, includeAdminFeed bool, limit int) ([]*Notification, error)
	MarkRead(ctx context.Context, db *gorm.DB, userID, id snowflake.ID, includeAdminFeed bool) (int64, error)
}
