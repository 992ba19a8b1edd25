package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/eventick/ticketpay/internal/authctx"
	"github.com/eventick/ticketpay/internal/organizer/domain"
	"github.com/eventick/ticketpay/internal/providers/bankverify"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Repo     domain.Repository
	Verifier bankverify.Provider
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	repo     domain.Repository
	verifier bankverify.Provider
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("organizer.service"),
		genID:    p.GenID,
		repo:     p.Repo,
		verifier: p.Verifier,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateOrganizerRequest) (domain.Organizer, error) {
	auth, ok := authctx.FromContext(ctx)
	if !ok || !auth.IsAdmin() {
		return domain.Organizer{}, domain.ErrUnauthorized
	}

	userID, err := snowflake.ParseString(strings.TrimSpace(req.UserID))
	if err != nil || userID == 0 {
		return domain.Organizer{}, domain.ErrInvalidID
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Organizer{}, domain.ErrInvalidName
	}

	email := strings.TrimSpace(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		return domain.Organizer{}, domain.ErrInvalidEmail
	}

	now := time.Now().UTC()
	organizer := domain.Organizer{
		ID:        s.genID.Generate(),
		UserID:    userID,
		Name:      name,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Insert(ctx, s.db, &organizer); err != nil {
		return domain.Organizer{}, err
	}

	return organizer, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetOrganizerRequest) (domain.Organizer, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Organizer{}, err
	}

	auth, ok := authctx.FromContext(ctx)
	if !ok || !auth.CanActFor(id) {
		return domain.Organizer{}, domain.ErrUnauthorized
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Organizer{}, err
	}
	if item == nil {
		return domain.Organizer{}, domain.ErrNotFound
	}

	return *item, nil
}

// UpdateBankDetails resolves the account against the verification provider
// and stores the returned holder name. Payouts snapshot these fields at
// request time, so edits here never touch an already-created payout.
func (s *Service) UpdateBankDetails(ctx context.Context, req domain.UpdateBankDetailsRequest) (domain.Organizer, error) {
	id, err := s.parseID(req.OrganizerID)
	if err != nil {
		return domain.Organizer{}, err
	}

	auth, ok := authctx.FromContext(ctx)
	if !ok || !auth.CanActFor(id) {
		return domain.Organizer{}, domain.ErrUnauthorized
	}

	accountNumber := strings.TrimSpace(req.AccountNumber)
	bankCode := strings.TrimSpace(req.BankCode)
	if accountNumber == "" || bankCode == "" {
		return domain.Organizer{}, domain.ErrInvalidBankAccount
	}

	organizer, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Organizer{}, err
	}
	if organizer == nil {
		return domain.Organizer{}, domain.ErrNotFound
	}

	accountName, err := s.verifier.Resolve(ctx, accountNumber, bankCode)
	if err != nil {
		s.log.Warn("bank account verification failed",
			zap.String("organizer_id", id.String()),
			zap.Error(err),
		)
		return domain.Organizer{}, domain.ErrVerificationFailed
	}

	now := time.Now().UTC()
	organizer.BankAccountNumber = &accountNumber
	organizer.BankCode = &bankCode
	organizer.BankAccountName = &accountName
	organizer.BankVerifiedAt = &now
	organizer.UpdatedAt = now

	if err := s.repo.UpdateBankDetails(ctx, s.db, organizer); err != nil {
		return domain.Organizer{}, err
	}

	return *organizer, nil
}

func (s *Service) List(ctx context.Context, limit int) ([]domain.Organizer, error) {
	auth, ok := authctx.FromContext(ctx)
	if !ok || !auth.IsAdmin() {
		return nil, domain.ErrUnauthorized
	}

	if limit <= 0 || limit > 250 {
		limit = 50
	}

	items, err := s.repo.List(ctx, s.db, limit)
	if err != nil {
		return nil, err
	}

	organizers := make([]domain.Organizer, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		organizers = append(organizers, *item)
	}
	return organizers, nil
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
