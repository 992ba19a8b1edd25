package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/eventick/ticketpay/internal/organizer/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, organizer *domain.Organizer) error {
	return db.WithContext(ctx).Create(organizer).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Organizer, error) {
	var organizer domain.Organizer
	err := db.WithContext(ctx).
		Where("id = ?", id).
		Take(&organizer).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &organizer, nil
}

func (r *repo) FindByUserID(ctx context.Context, db *gorm.DB, userID snowflake.ID) (*domain.Organizer, error) {
	var organizer domain.Organizer
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Take(&organizer).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &organizer, nil
}

func (r *repo) UpdateBankDetails(ctx context.Context, db *gorm.DB, organizer *domain.Organizer) error {
	return db.WithContext(ctx).
		Model(&domain.Organizer{}).
		Where("id = ?", organizer.ID).
		Updates(map[string]any{
			"bank_account_number": organizer.BankAccountNumber,
			"bank_code":           organizer.BankCode,
			"bank_account_name":   organizer.BankAccountName,
			"bank_verified_at":    organizer.BankVerifiedAt,
			"updated_at":          organizer.UpdatedAt,
		}).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, limit int) ([]*domain.Organizer, error) {
	var organizers []*domain.Organizer
	err := db.WithContext(ctx).
		Model(&domain.Organizer{}).
		Order("created_at desc, id desc").
		Limit(limit).
		Find(&organizers).Error
	if err != nil {
		return nil, err
	}
	return organizers, nil
}
