package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, organizer *Organizer) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Organizer, error)
	FindByUserID(ctx context.Context, db *gorm.DB, userID snowflake.ID) (*Organizer, error)
	UpdateBankDetails(ctx context.Context, db *gorm.DB, organizer *Organizer) error
	List(ctx context.Context, db *gorm.DB, limit int) ([]*Organizer, error)
}
