package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/eventick/ticketpay/internal/authctx"
	"github.com/eventick/ticketpay/internal/notification/domain"
	"github.com/eventick/ticketpay/internal/providers/email"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
	Email email.Provider
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
	email email.Provider
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("notification.service"),
		genID: p.GenID,
		repo:  p.Repo,
		email: p.Email,
	}
}

func (s *Service) Create(ctx context.Context, req domain.NotifyRequest) (domain.Notification, error) {
	if strings.TrimSpace(req.Type) == "" {
		return domain.Notification{}, domain.ErrInvalidType
	}

	audience := req.Audience
	if audience == "" {
		audience = domain.AudienceUser
	}
	if audience == domain.AudienceUser && (req.RecipientID == nil || *req.RecipientID == 0) {
		return domain.Notification{}, domain.ErrInvalidRecipient
	}

	metadata := datatypes.JSONMap{}
	for k, v := range req.Metadata {
		metadata[k] = v
	}

	notification := domain.Notification{
		ID:          s.genID.Generate(),
		RecipientID: req.RecipientID,
		Audience:    audience,
		Type:        req.Type,
		Title:       req.Title,
		Message:     req.Message,
		ActionURL:   req.ActionURL,
		Metadata:    metadata,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.repo.Insert(ctx, s.db, &notification); err != nil {
		return domain.Notification{}, err
	}

	if req.Email != "" {
		if err := s.email.Send(ctx, []string{req.Email}, req.Title, "<p>"+req.Message+"</p>"); err != nil {
			s.log.Warn("notification email delivery failed",
				zap.String("type", req.Type),
				zap.Error(err),
			)
		}
	}

	return notification, nil
}

// Notify records the notification best-effort. A failed insert is logged and
// swallowed so the operation that triggered it is never rolled back.
func (s *Service) Notify(ctx context.Context, req domain.NotifyRequest) {
	if _, err := s.Create(ctx, req); err != nil {
		s.log.Warn("notification dropped",
			zap.String("type", req.Type),
			zap.String("audience", string(req.Audience)),
			zap.Error(err),
		)
	}
}

func (s *Service) ListUnread(ctx context.Context, userID snowflake.ID, limit int) ([]domain.Notification, error) {
	if userID == 0 {
		return nil, domain.ErrInvalidRecipient
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	items, err := s.repo.ListUnread(ctx, s.db, userID, s.includeAdminFeed(ctx, userID), limit)
	if err != nil {
		return nil, err
	}

	notifications := make([]domain.Notification, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		notifications = append(notifications, *item)
	}
	return notifications, nil
}

func (s *Service) MarkRead(ctx context.Context, userID, id snowflake.ID) error {
	if userID == 0 || id == 0 {
		return domain.ErrInvalidRecipient
	}

	affected, err := s.repo.MarkRead(ctx, s.db, userID, id, s.includeAdminFeed(ctx, userID))
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// includeAdminFeed reports whether the caller reads the admin broadcast feed:
// only admins acting on their own behalf. Broadcasts carry no recipient, so a
// read by one admin clears the item for all of them.
func (s *Service) includeAdminFeed(ctx context.Context, userID snowflake.ID) bool {
	auth, ok := authctx.FromContext(ctx)
	return ok && auth.IsAdmin() && auth.UserID == userID
}
