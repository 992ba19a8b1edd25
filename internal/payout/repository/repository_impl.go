package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/eventick/ticketpay/internal/payout/domain"
	"github.com/eventick/ticketpay/pkg/db/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, payout *domain.Payout) error {
	return db.WithContext(ctx).Create(payout).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Payout, error) {
	return r.findByID(ctx, db, id, false)
}

func (r *repo) FindByIDLocked(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Payout, error) {
	return r.findByID(ctx, db, id, true)
}

func (r *repo) findByID(ctx context.Context, db *gorm.DB, id snowflake.ID, locked bool) (*domain.Payout, error) {
	stmt := db.WithContext(ctx)
	if locked && supportsRowLocks(db) {
		stmt = stmt.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var payout domain.Payout
	err := stmt.Where("id = ?", id).Take(&payout).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &payout, nil
}

func (r *repo) LatestHonored(ctx context.Context, db *gorm.DB, organizerID snowflake.ID) (*domain.Payout, error) {
	var payout domain.Payout
	err := db.WithContext(ctx).
		Where("organizer_id = ? AND status IN ?", organizerID,
			[]domain.PayoutStatus{domain.PayoutStatusCompleted, domain.PayoutStatusProcessing}).
		Order("created_at desc, id desc").
		Take(&payout).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &payout, nil
}

func (r *repo) LastCreatedAt(ctx context.Context, db *gorm.DB, organizerID snowflake.ID) (*time.Time, error) {
	var payout domain.Payout
	err := db.WithContext(ctx).
		Where("organizer_id = ?", organizerID).
		Order("created_at desc, id desc").
		Take(&payout).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	createdAt := payout.CreatedAt
	return &createdAt, nil
}

func (r *repo) ListByOrganizer(ctx context.Context, db *gorm.DB, organizerID snowflake.ID) ([]*domain.Payout, error) {
	var payouts []*domain.Payout
	err := db.WithContext(ctx).
		Model(&domain.Payout{}).
		Where("organizer_id = ?", organizerID).
		Order("created_at desc, id desc").
		Find(&payouts).Error
	if err != nil {
		return nil, err
	}
	return payouts, nil
}

func (r *repo) ListAll(ctx context.Context, db *gorm.DB, page pagination.Pagination) ([]*domain.PayoutWithOrganizer, error) {
	stmt := db.WithContext(ctx).
		Table("payouts").
		Select("payouts.*, organizers.name AS organizer_name, organizers.email AS organizer_email").
		Joins("JOIN organizers ON organizers.id = payouts.organizer_id")

	if page.PageToken != "" {
		cursor, err := pagination.DecodeCursor(page.PageToken)
		if err == nil && cursor.CreatedAt != "" {
			createdAt, timeErr := time.Parse(time.RFC3339Nano, cursor.CreatedAt)
			id, idErr := snowflake.ParseString(cursor.ID)
			if timeErr == nil && idErr == nil {
				stmt = stmt.Where(
					"(payouts.created_at < ?) OR (payouts.created_at = ? AND payouts.id < ?)",
					createdAt, createdAt, id,
				)
			}
		}
	}

	pageSize := page.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	var payouts []*domain.PayoutWithOrganizer
	err := stmt.
		Order("payouts.created_at desc, payouts.id desc").
		Limit(pageSize + 1).
		Find(&payouts).Error
	if err != nil {
		return nil, err
	}
	return payouts, nil
}

func (r *repo) SumCompletedNet(ctx context.Context, db *gorm.DB, organizerID snowflake.ID) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Raw(
		`SELECT COALESCE(SUM(net_amount), 0)
		 FROM payouts
		 WHERE organizer_id = ? AND status = ?`,
		organizerID,
		domain.PayoutStatusCompleted,
	).Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (r *repo) MarkProcessing(ctx context.Context, db *gorm.DB, id snowflake.ID, processedAt time.Time) error {
	return r.transition(ctx, db, id, domain.PayoutStatusPending, map[string]any{
		"status":       domain.PayoutStatusProcessing,
		"processed_at": processedAt,
	})
}

func (r *repo) MarkCompleted(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return r.transition(ctx, db, id, domain.PayoutStatusProcessing, map[string]any{
		"status": domain.PayoutStatusCompleted,
	})
}

func (r *repo) MarkFailed(ctx context.Context, db *gorm.DB, id snowflake.ID, reason string, processedAt time.Time) error {
	return r.transition(ctx, db, id, domain.PayoutStatusPending, map[string]any{
		"status":         domain.PayoutStatusFailed,
		"failure_reason": reason,
		"processed_at":   processedAt,
	})
}

// transition guards every status write with the expected current status, so
// a lost race surfaces as ErrAlreadyProcessed instead of a silent overwrite.
func (r *repo) transition(ctx context.Context, db *gorm.DB, id snowflake.ID, from domain.PayoutStatus, updates map[string]any) error {
	result := db.WithContext(ctx).
		Model(&domain.Payout{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrAlreadyProcessed
	}
	return nil
}

func (r *repo) LockOrganizer(ctx context.Context, db *gorm.DB, organizerID snowflake.ID) error {
	if db.Dialector.Name() != "postgres" {
		return nil
	}
	return db.WithContext(ctx).Exec(
		"SELECT pg_advisory_xact_lock(?)",
		organizerID.Int64(),
	).Error
}

func supportsRowLocks(db *gorm.DB) bool {
	switch db.Dialector.Name() {
	case "postgres", "mysql":
		return true
	default:
		return false
	}
}
