package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/eventick/ticketpay/internal/authctx"
	"github.com/eventick/ticketpay/internal/clock"
	"github.com/eventick/ticketpay/internal/config"
	notificationdomain "github.com/eventick/ticketpay/internal/notification/domain"
	orderdomain "github.com/eventick/ticketpay/internal/order/domain"
	organizerdomain "github.com/eventick/ticketpay/internal/organizer/domain"
	"github.com/eventick/ticketpay/internal/payout/domain"
	"github.com/eventick/ticketpay/internal/ratelimit"
	"github.com/eventick/ticketpay/pkg/db"
	"github.com/eventick/ticketpay/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const requestLockTTL = 30 * time.Second

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	GenID         *snowflake.Node
	Clock         clock.Clock
	Policy        *config.PayoutPolicyHolder
	Repo          domain.Repository
	OrganizerRepo organizerdomain.Repository
	OrderRepo     orderdomain.Repository
	Notifier      notificationdomain.Service
	Locker        *ratelimit.Locker `optional:"true"`
}

type Service struct {
	db            *gorm.DB
	log           *zap.Logger
	genID         *snowflake.Node
	clock         clock.Clock
	policy        *config.PayoutPolicyHolder
	repo          domain.Repository
	organizerRepo organizerdomain.Repository
	orderRepo     orderdomain.Repository
	notifier      notificationdomain.Service
	locker        *ratelimit.Locker
}

func New(p Params) domain.Service {
	return &Service{
		db:            p.DB,
		log:           p.Log.Named("payout.service"),
		genID:         p.GenID,
		clock:         p.Clock,
		policy:        p.Policy,
		repo:          p.Repo,
		organizerRepo: p.OrganizerRepo,
		orderRepo:     p.OrderRepo,
		notifier:      p.Notifier,
		locker:        p.Locker,
	}
}

// nextPeriod computes the window a new payout would cover: from the creation
// time of the newest COMPLETED or PROCESSING payout (epoch if none) up to
// now. Called inside the request transaction so racing requests cannot both
// observe the same window.
func (s *Service) nextPeriod(ctx context.Context, tx *gorm.DB, organizerID snowflake.ID) (domain.Period, error) {
	latest, err := s.repo.LatestHonored(ctx, tx, organizerID)
	if err != nil {
		return domain.Period{}, err
	}

	start := time.Unix(0, 0).UTC()
	if latest != nil {
		start = latest.CreatedAt
	}
	return domain.Period{Start: start, End: s.clock.Now()}, nil
}

// computePayout aggregates completed orders over the window. Pure read;
// identical inputs yield identical results while orders are immutable.
func (s *Service) computePayout(ctx context.Context, tx *gorm.DB, organizerID snowflake.ID, period domain.Period) (orderdomain.RevenueSummary, error) {
	return s.orderRepo.SumRevenue(ctx, tx, organizerID, period.Start, period.End, s.policy.Get().DefaultFeeBps)
}

func (s *Service) RequestPayout(ctx context.Context, req domain.RequestPayoutRequest) (domain.Payout, error) {
	organizerID, err := s.parseID(req.OrganizerID)
	if err != nil {
		return domain.Payout{}, err
	}

	auth, ok := authctx.FromContext(ctx)
	if !ok || !auth.CanActFor(organizerID) {
		return domain.Payout{}, domain.ErrUnauthorized
	}

	organizer, err := s.organizerRepo.FindByID(ctx, s.db, organizerID)
	if err != nil {
		return domain.Payout{}, err
	}
	if organizer == nil {
		return domain.Payout{}, domain.ErrNotFound
	}
	if !organizer.HasBankDetails() {
		return domain.Payout{}, domain.ErrBankDetailsMissing
	}

	// Cross-instance serialization when redis is configured. The advisory
	// lock inside the transaction below is the authoritative guard.
	if s.locker != nil {
		key := ratelimit.PayoutRequestKey(organizerID)
		token, acquired, lockErr := s.locker.TryLock(ctx, key, requestLockTTL)
		if lockErr != nil {
			s.log.Warn("payout request lock unavailable", zap.Error(lockErr))
		} else if !acquired {
			return domain.Payout{}, domain.ErrRequestInProgress
		} else {
			defer func() {
				if releaseErr := s.locker.Release(ctx, key, token); releaseErr != nil {
					s.log.Warn("payout request lock release failed", zap.Error(releaseErr))
				}
			}()
		}
	}

	policy := s.policy.Get()
	var payout domain.Payout

	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.LockOrganizer(ctx, tx, organizerID); err != nil {
			return err
		}

		lastCreatedAt, err := s.repo.LastCreatedAt(ctx, tx, organizerID)
		if err != nil {
			return err
		}
		if lastCreatedAt != nil && s.clock.Now().Sub(*lastCreatedAt) < policy.Cooldown() {
			return domain.ErrCooldownActive
		}

		period, err := s.nextPeriod(ctx, tx, organizerID)
		if err != nil {
			return err
		}

		summary, err := s.computePayout(ctx, tx, organizerID, period)
		if err != nil {
			return err
		}
		if summary.NetAmount <= 0 || summary.NetAmount < policy.MinNetAmount {
			return domain.ErrNoFundsAvailable
		}

		payout = domain.Payout{
			ID:                s.genID.Generate(),
			OrganizerID:       organizerID,
			GrossAmount:       summary.GrossAmount,
			PlatformFee:       summary.PlatformFee,
			NetAmount:         summary.NetAmount,
			Status:            domain.PayoutStatusPending,
			BankAccountNumber: *organizer.BankAccountNumber,
			BankCode:          *organizer.BankCode,
			BankAccountName:   derefOr(organizer.BankAccountName, organizer.Name),
			PeriodStart:       period.Start,
			PeriodEnd:         period.End,
			CreatedAt:         period.End,
		}

		return s.repo.Insert(ctx, tx, &payout)
	})
	if txErr != nil {
		if db.IsDuplicateKeyErr(txErr) {
			return domain.Payout{}, domain.ErrRequestInProgress
		}
		return domain.Payout{}, txErr
	}

	s.log.Info("payout requested",
		zap.String("payout_id", payout.ID.String()),
		zap.String("organizer_id", organizerID.String()),
		zap.Int64("net_amount", payout.NetAmount),
	)

	s.notifier.Notify(ctx, notificationdomain.NotifyRequest{
		Audience:  notificationdomain.AudienceAdmin,
		Type:      notificationdomain.TypePayoutRequested,
		Title:     "New payout request",
		Message:   fmt.Sprintf("%s requested a payout of %s", organizer.Name, formatAmount(payout.NetAmount)),
		ActionURL: "/admin/payouts",
		Metadata: map[string]any{
			"payout_id":    payout.ID.String(),
			"organizer_id": organizerID.String(),
			"net_amount":   payout.NetAmount,
		},
	})

	return payout, nil
}

func (s *Service) ProcessPayout(ctx context.Context, req domain.ProcessPayoutRequest) (domain.Payout, error) {
	auth, ok := authctx.FromContext(ctx)
	if !ok || !auth.IsAdmin() {
		return domain.Payout{}, domain.ErrUnauthorized
	}

	payoutID, err := s.parseID(req.PayoutID)
	if err != nil {
		return domain.Payout{}, err
	}

	var updated *domain.Payout
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		payout, err := s.repo.FindByIDLocked(ctx, tx, payoutID)
		if err != nil {
			return err
		}
		if payout == nil {
			return domain.ErrNotFound
		}
		if payout.Status != domain.PayoutStatusPending {
			return domain.ErrAlreadyProcessed
		}

		now := s.clock.Now()
		if req.Approve {
			// PROCESSING is written as its own step so the transition is
			// observable in the audit trail; a real payment rail would
			// suspend here pending a transfer callback.
			if err := s.repo.MarkProcessing(ctx, tx, payoutID, now); err != nil {
				return err
			}
			if err := s.repo.MarkCompleted(ctx, tx, payoutID); err != nil {
				return err
			}
		} else {
			reason := strings.TrimSpace(req.Notes)
			if reason == "" {
				reason = "Rejected by admin"
			}
			if err := s.repo.MarkFailed(ctx, tx, payoutID, reason, now); err != nil {
				return err
			}
		}

		updated, err = s.repo.FindByID(ctx, tx, payoutID)
		return err
	})
	if txErr != nil {
		return domain.Payout{}, txErr
	}
	if updated == nil {
		return domain.Payout{}, domain.ErrNotFound
	}

	s.notifyDecision(ctx, *updated)
	return *updated, nil
}

// notifyDecision tells the organizer about a terminal transition.
// Best-effort: a failed notification never rolls back the decision.
func (s *Service) notifyDecision(ctx context.Context, payout domain.Payout) {
	organizer, err := s.organizerRepo.FindByID(ctx, s.db, payout.OrganizerID)
	if err != nil || organizer == nil {
		s.log.Warn("organizer lookup failed for payout notification",
			zap.String("payout_id", payout.ID.String()),
			zap.Error(err),
		)
		return
	}

	recipient := organizer.UserID
	switch payout.Status {
	case domain.PayoutStatusCompleted:
		s.notifier.Notify(ctx, notificationdomain.NotifyRequest{
			RecipientID: &recipient,
			Type:        notificationdomain.TypePayoutProcessed,
			Title:       "Payout processed",
			Message: fmt.Sprintf("Your payout of %s has been processed and should arrive within 2-3 business days.",
				formatAmount(payout.NetAmount)),
			ActionURL: "/dashboard/payouts",
			Metadata:  map[string]any{"payout_id": payout.ID.String()},
			Email:     organizer.Email,
		})
	case domain.PayoutStatusFailed:
		reason := "Rejected by admin"
		if payout.FailureReason != nil {
			reason = *payout.FailureReason
		}
		s.notifier.Notify(ctx, notificationdomain.NotifyRequest{
			RecipientID: &recipient,
			Type:        notificationdomain.TypePayoutRejected,
			Title:       "Payout rejected",
			Message:     fmt.Sprintf("Your payout request was rejected: %s", reason),
			ActionURL:   "/dashboard/payouts",
			Metadata:    map[string]any{"payout_id": payout.ID.String()},
			Email:       organizer.Email,
		})
	}
}

func (s *Service) BulkProcess(ctx context.Context, req domain.BulkProcessRequest) (domain.BulkResult, error) {
	auth, ok := authctx.FromContext(ctx)
	if !ok || !auth.IsAdmin() {
		return domain.BulkResult{}, domain.ErrUnauthorized
	}

	var (
		mu     sync.Mutex
		result domain.BulkResult
		wg     sync.WaitGroup
	)

	for _, payoutID := range req.PayoutIDs {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := s.ProcessPayout(ctx, domain.ProcessPayoutRequest{
				PayoutID: id,
				Approve:  req.Approve,
			})

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed++
				s.log.Warn("bulk payout decision failed",
					zap.String("payout_id", id),
					zap.Error(err),
				)
				return
			}
			result.Successful++
		}(payoutID)
	}
	wg.Wait()

	return result, nil
}

func (s *Service) ListByOrganizer(ctx context.Context, organizerID string) ([]domain.Payout, error) {
	id, err := s.parseID(organizerID)
	if err != nil {
		return nil, err
	}

	auth, ok := authctx.FromContext(ctx)
	if !ok || !auth.CanActFor(id) {
		return nil, domain.ErrUnauthorized
	}

	items, err := s.repo.ListByOrganizer(ctx, s.db, id)
	if err != nil {
		return nil, err
	}

	payouts := make([]domain.Payout, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		payouts = append(payouts, *item)
	}
	return payouts, nil
}

func (s *Service) ListRequests(ctx context.Context, req domain.ListPayoutsRequest) (domain.ListPayoutsResponse, error) {
	auth, ok := authctx.FromContext(ctx)
	if !ok || !auth.IsAdmin() {
		return domain.ListPayoutsResponse{}, domain.ErrUnauthorized
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.ListAll(ctx, s.db, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  pageSize,
	})
	if err != nil {
		return domain.ListPayoutsResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, int32(pageSize), func(item *domain.PayoutWithOrganizer) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        item.ID.String(),
			CreatedAt: item.CreatedAt.Format(time.RFC3339Nano),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > pageSize {
		items = items[:pageSize]
	}

	payouts := make([]domain.PayoutWithOrganizer, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		payouts = append(payouts, *item)
	}

	resp := domain.ListPayoutsResponse{Payouts: payouts}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) RevenueAnalytics(ctx context.Context, organizerID string) (domain.RevenueAnalytics, error) {
	id, err := s.parseID(organizerID)
	if err != nil {
		return domain.RevenueAnalytics{}, err
	}

	auth, ok := authctx.FromContext(ctx)
	if !ok || !auth.CanActFor(id) {
		return domain.RevenueAnalytics{}, domain.ErrUnauthorized
	}

	period, err := s.nextPeriod(ctx, s.db, id)
	if err != nil {
		return domain.RevenueAnalytics{}, err
	}

	pending, err := s.computePayout(ctx, s.db, id, period)
	if err != nil {
		return domain.RevenueAnalytics{}, err
	}

	lifetime, err := s.repo.SumCompletedNet(ctx, s.db, id)
	if err != nil {
		return domain.RevenueAnalytics{}, err
	}

	recentPayouts, err := s.repo.ListByOrganizer(ctx, s.db, id)
	if err != nil {
		return domain.RevenueAnalytics{}, err
	}
	if len(recentPayouts) > 5 {
		recentPayouts = recentPayouts[:5]
	}

	recentOrders, err := s.orderRepo.ListRecentCompleted(ctx, s.db, id, 10)
	if err != nil {
		return domain.RevenueAnalytics{}, err
	}

	analytics := domain.RevenueAnalytics{
		PendingEstimate: pending,
		PendingPeriod:   period,
		LifetimePaidOut: lifetime,
		RecentPayouts:   make([]domain.Payout, 0, len(recentPayouts)),
		RecentOrders:    make([]orderdomain.Order, 0, len(recentOrders)),
	}
	for _, item := range recentPayouts {
		if item != nil {
			analytics.RecentPayouts = append(analytics.RecentPayouts, *item)
		}
	}
	for _, item := range recentOrders {
		if item != nil {
			analytics.RecentOrders = append(analytics.RecentOrders, *item)
		}
	}
	return analytics, nil
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

func derefOr(value *string, fallback string) string {
	if value != nil && *value != "" {
		return *value
	}
	return fallback
}

// formatAmount renders minor units as naira for notification copy.
func formatAmount(minor int64) string {
	return fmt.Sprintf("₦%.2f", float64(minor)/100)
}
