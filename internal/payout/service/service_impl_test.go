package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/eventick/ticketpay/internal/authctx"
	"github.com/eventick/ticketpay/internal/clock"
	"github.com/eventick/ticketpay/internal/config"
	notificationdomain "github.com/eventick/ticketpay/internal/notification/domain"
	notificationrepo "github.com/eventick/ticketpay/internal/notification/repository"
	notificationservice "github.com/eventick/ticketpay/internal/notification/service"
	orderdomain "github.com/eventick/ticketpay/internal/order/domain"
	orderrepo "github.com/eventick/ticketpay/internal/order/repository"
	organizerdomain "github.com/eventick/ticketpay/internal/organizer/domain"
	organizerrepo "github.com/eventick/ticketpay/internal/organizer/repository"
	"github.com/eventick/ticketpay/internal/payout/domain"
	payoutrepo "github.com/eventick/ticketpay/internal/payout/repository"
	"github.com/eventick/ticketpay/internal/providers/email"
	"github.com/eventick/ticketpay/pkg/db/pagination"
)

type fixture struct {
	db     *gorm.DB
	clock  *clock.FakeClock
	node   *snowflake.Node
	policy config.PayoutPolicy
	svc    domain.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	// Every pooled connection to :memory: is its own database, so keep the
	// pool at a single connection.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&organizerdomain.Organizer{},
		&orderdomain.Order{},
		&domain.Payout{},
		&notificationdomain.Notification{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	log := zap.NewNop()
	fake := clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	policy := config.DefaultPayoutPolicy()

	notifier := notificationservice.New(notificationservice.Params{
		DB:    db,
		Log:   log,
		GenID: node,
		Repo:  notificationrepo.Provide(),
		Email: &email.NoOpProvider{},
	})

	svc := New(Params{
		DB:            db,
		Log:           log,
		GenID:         node,
		Clock:         fake,
		Policy:        config.NewStaticPolicyHolder(policy),
		Repo:          payoutrepo.Provide(),
		OrganizerRepo: organizerrepo.Provide(),
		OrderRepo:     orderrepo.Provide(),
		Notifier:      notifier,
	})

	return &fixture{db: db, clock: fake, node: node, policy: policy, svc: svc}
}

func (f *fixture) seedOrganizer(t *testing.T, withBank bool) organizerdomain.Organizer {
	t.Helper()

	org := organizerdomain.Organizer{
		ID:        f.node.Generate(),
		UserID:    f.node.Generate(),
		Name:      "Lagos Live Events",
		Email:     fmt.Sprintf("org-%s@example.com", f.node.Generate()),
		CreatedAt: f.clock.Now(),
		UpdatedAt: f.clock.Now(),
	}
	if withBank {
		account := "0123456789"
		code := "058"
		holder := "LAGOS LIVE EVENTS LTD"
		verifiedAt := f.clock.Now()
		org.BankAccountNumber = &account
		org.BankCode = &code
		org.BankAccountName = &holder
		org.BankVerifiedAt = &verifiedAt
	}
	require.NoError(t, f.db.Create(&org).Error)
	return org
}

func (f *fixture) seedOrder(t *testing.T, organizerID snowflake.ID, amount int64, fee *int64, status orderdomain.PaymentStatus, createdAt time.Time) {
	t.Helper()

	order := orderdomain.Order{
		ID:            f.node.Generate(),
		EventID:       f.node.Generate(),
		OrganizerID:   organizerID,
		TotalAmount:   amount,
		PlatformFee:   fee,
		PaymentStatus: status,
		CreatedAt:     createdAt,
	}
	require.NoError(t, f.db.Create(&order).Error)
}

func (f *fixture) seedPayout(t *testing.T, organizerID snowflake.ID, status domain.PayoutStatus, net int64, createdAt time.Time) domain.Payout {
	t.Helper()

	payout := domain.Payout{
		ID:                f.node.Generate(),
		OrganizerID:       organizerID,
		GrossAmount:       net + net/19,
		PlatformFee:       net / 19,
		NetAmount:         net,
		Status:            status,
		BankAccountNumber: "0123456789",
		BankCode:          "058",
		BankAccountName:   "LAGOS LIVE EVENTS LTD",
		PeriodStart:       time.Unix(0, 0).UTC(),
		PeriodEnd:         createdAt,
		CreatedAt:         createdAt,
	}
	require.NoError(t, f.db.Create(&payout).Error)
	return payout
}

func adminContext(f *fixture) context.Context {
	return authctx.WithAuth(context.Background(), authctx.AuthContext{
		UserID: f.node.Generate(),
		Role:   authctx.RoleAdmin,
	})
}

func organizerContext(org organizerdomain.Organizer) context.Context {
	return authctx.WithAuth(context.Background(), authctx.AuthContext{
		UserID:      org.UserID,
		Role:        authctx.RoleOrganizer,
		OrganizerID: org.ID,
	})
}

func TestRequestPayout_AggregatesCompletedOrders(t *testing.T) {
	f := newFixture(t)
	org := f.seedOrganizer(t, true)
	earlier := f.clock.Now().Add(-48 * time.Hour)

	// Two orders at the default rate, one with a negotiated per-order fee.
	f.seedOrder(t, org.ID, 1_000_000, nil, orderdomain.PaymentStatusCompleted, earlier)
	f.seedOrder(t, org.ID, 1_000_000, nil, orderdomain.PaymentStatusCompleted, earlier.Add(time.Hour))
	negotiated := int64(5_000)
	f.seedOrder(t, org.ID, 500_000, &negotiated, orderdomain.PaymentStatusCompleted, earlier.Add(2*time.Hour))

	// Non-completed orders never count.
	f.seedOrder(t, org.ID, 9_000_000, nil, orderdomain.PaymentStatusPending, earlier)
	f.seedOrder(t, org.ID, 9_000_000, nil, orderdomain.PaymentStatusRefunded, earlier)

	payout, err := f.svc.RequestPayout(organizerContext(org), domain.RequestPayoutRequest{
		OrganizerID: org.ID.String(),
	})
	require.NoError(t, err)

	assert.Equal(t, domain.PayoutStatusPending, payout.Status)
	assert.Equal(t, int64(2_500_000), payout.GrossAmount)
	assert.Equal(t, int64(105_000), payout.PlatformFee)
	assert.Equal(t, int64(2_395_000), payout.NetAmount)
	assert.Equal(t, payout.GrossAmount-payout.PlatformFee, payout.NetAmount)

	// First payout covers everything since the epoch up to now.
	assert.True(t, payout.PeriodStart.Equal(time.Unix(0, 0)))
	assert.True(t, payout.PeriodEnd.Equal(f.clock.Now()))
	assert.True(t, payout.CreatedAt.Equal(payout.PeriodEnd))

	// Bank details are snapshotted onto the payout row.
	assert.Equal(t, *org.BankAccountNumber, payout.BankAccountNumber)
	assert.Equal(t, *org.BankCode, payout.BankCode)
	assert.Equal(t, *org.BankAccountName, payout.BankAccountName)

	var admin []notificationdomain.Notification
	require.NoError(t, f.db.Where("audience = ?", notificationdomain.AudienceAdmin).Find(&admin).Error)
	require.Len(t, admin, 1)
	assert.Equal(t, notificationdomain.TypePayoutRequested, admin[0].Type)
}

func TestRequestPayout_DefaultFeeIsFivePercent(t *testing.T) {
	f := newFixture(t)
	org := f.seedOrganizer(t, true)

	// A single NGN 20,000 order at the default rate nets NGN 19,000.
	f.seedOrder(t, org.ID, 2_000_000, nil, orderdomain.PaymentStatusCompleted, f.clock.Now().Add(-time.Hour))

	payout, err := f.svc.RequestPayout(organizerContext(org), domain.RequestPayoutRequest{
		OrganizerID: org.ID.String(),
	})
	require.NoError(t, err)

	assert.Equal(t, int64(2_000_000), payout.GrossAmount)
	assert.Equal(t, int64(100_000), payout.PlatformFee)
	assert.Equal(t, int64(1_900_000), payout.NetAmount)
}

func TestRequestPayout_RequiresBankDetails(t *testing.T) {
	f := newFixture(t)
	org := f.seedOrganizer(t, false)
	f.seedOrder(t, org.ID, 1_000_000, nil, orderdomain.PaymentStatusCompleted, f.clock.Now().Add(-time.Hour))

	_, err := f.svc.RequestPayout(organizerContext(org), domain.RequestPayoutRequest{
		OrganizerID: org.ID.String(),
	})
	assert.ErrorIs(t, err, domain.ErrBankDetailsMissing)
}

func TestRequestPayout_Authorization(t *testing.T) {
	f := newFixture(t)
	org := f.seedOrganizer(t, true)
	other := f.seedOrganizer(t, true)
	f.seedOrder(t, org.ID, 1_000_000, nil, orderdomain.PaymentStatusCompleted, f.clock.Now().Add(-time.Hour))

	_, err := f.svc.RequestPayout(context.Background(), domain.RequestPayoutRequest{
		OrganizerID: org.ID.String(),
	})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = f.svc.RequestPayout(organizerContext(other), domain.RequestPayoutRequest{
		OrganizerID: org.ID.String(),
	})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	// Admins may request on an organizer's behalf.
	_, err = f.svc.RequestPayout(adminContext(f), domain.RequestPayoutRequest{
		OrganizerID: org.ID.String(),
	})
	assert.NoError(t, err)
}

func TestRequestPayout_NoFunds(t *testing.T) {
	f := newFixture(t)
	org := f.seedOrganizer(t, true)

	_, err := f.svc.RequestPayout(organizerContext(org), domain.RequestPayoutRequest{
		OrganizerID: org.ID.String(),
	})
	assert.ErrorIs(t, err, domain.ErrNoFundsAvailable)
}

func TestRequestPayout_Cooldown(t *testing.T) {
	f := newFixture(t)
	org := f.seedOrganizer(t, true)
	f.seedOrder(t, org.ID, 1_000_000, nil, orderdomain.PaymentStatusCompleted, f.clock.Now().Add(-time.Hour))

	_, err := f.svc.RequestPayout(organizerContext(org), domain.RequestPayoutRequest{
		OrganizerID: org.ID.String(),
	})
	require.NoError(t, err)

	f.clock.Advance(7 * 24 * time.Hour)
	f.seedOrder(t, org.ID, 1_000_000, nil, orderdomain.PaymentStatusCompleted, f.clock.Now().Add(-time.Hour))

	_, err = f.svc.RequestPayout(organizerContext(org), domain.RequestPayoutRequest{
		OrganizerID: org.ID.String(),
	})
	assert.ErrorIs(t, err, domain.ErrCooldownActive)
}

func TestRequestPayout_PeriodsChainWithoutOverlap(t *testing.T) {
	f := newFixture(t)
	org := f.seedOrganizer(t, true)
	f.seedOrder(t, org.ID, 1_000_000, nil, orderdomain.PaymentStatusCompleted, f.clock.Now().Add(-time.Hour))

	first, err := f.svc.RequestPayout(organizerContext(org), domain.RequestPayoutRequest{
		OrganizerID: org.ID.String(),
	})
	require.NoError(t, err)

	_, err = f.svc.ProcessPayout(adminContext(f), domain.ProcessPayoutRequest{
		PayoutID: first.ID.String(),
		Approve:  true,
	})
	require.NoError(t, err)

	f.clock.Advance(15 * 24 * time.Hour)
	f.seedOrder(t, org.ID, 700_000, nil, orderdomain.PaymentStatusCompleted, f.clock.Now().Add(-time.Hour))

	second, err := f.svc.RequestPayout(organizerContext(org), domain.RequestPayoutRequest{
		OrganizerID: org.ID.String(),
	})
	require.NoError(t, err)

	// The second window starts exactly where the first ended, so the first
	// window's orders are never counted again.
	assert.True(t, second.PeriodStart.Equal(first.PeriodEnd))
	assert.Equal(t, int64(700_000), second.GrossAmount)
	assert.Equal(t, int64(665_000), second.NetAmount)
}

func TestRequestPayout_RejectedPayoutReleasesWindow(t *testing.T) {
	f := newFixture(t)
	org := f.seedOrganizer(t, true)
	f.seedOrder(t, org.ID, 1_000_000, nil, orderdomain.PaymentStatusCompleted, f.clock.Now().Add(-time.Hour))

	first, err := f.svc.RequestPayout(organizerContext(org), domain.RequestPayoutRequest{
		OrganizerID: org.ID.String(),
	})
	require.NoError(t, err)

	_, err = f.svc.ProcessPayout(adminContext(f), domain.ProcessPayoutRequest{
		PayoutID: first.ID.String(),
		Approve:  false,
		Notes:    "Account could not be credited",
	})
	require.NoError(t, err)

	// A FAILED payout is not honored: the next request re-covers its window.
	f.clock.Advance(15 * 24 * time.Hour)
	second, err := f.svc.RequestPayout(organizerContext(org), domain.RequestPayoutRequest{
		OrganizerID: org.ID.String(),
	})
	require.NoError(t, err)
	assert.True(t, second.PeriodStart.Equal(time.Unix(0, 0)))
	assert.Equal(t, int64(1_000_000), second.GrossAmount)
}

func TestProcessPayout_ApproveCompletes(t *testing.T) {
	f := newFixture(t)
	org := f.seedOrganizer(t, true)
	f.seedOrder(t, org.ID, 1_000_000, nil, orderdomain.PaymentStatusCompleted, f.clock.Now().Add(-time.Hour))

	pending, err := f.svc.RequestPayout(organizerContext(org), domain.RequestPayoutRequest{
		OrganizerID: org.ID.String(),
	})
	require.NoError(t, err)

	processed, err := f.svc.ProcessPayout(adminContext(f), domain.ProcessPayoutRequest{
		PayoutID: pending.ID.String(),
		Approve:  true,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.PayoutStatusCompleted, processed.Status)
	require.NotNil(t, processed.ProcessedAt)
	assert.True(t, processed.Status.IsTerminal())

	var organizerFeed []notificationdomain.Notification
	require.NoError(t, f.db.Where("recipient_id = ?", org.UserID).Find(&organizerFeed).Error)
	require.Len(t, organizerFeed, 1)
	assert.Equal(t, notificationdomain.TypePayoutProcessed, organizerFeed[0].Type)
}

func TestProcessPayout_RejectRecordsReason(t *testing.T) {
	f := newFixture(t)
	org := f.seedOrganizer(t, true)
	f.seedOrder(t, org.ID, 1_000_000, nil, orderdomain.PaymentStatusCompleted, f.clock.Now().Add(-time.Hour))

	pending, err := f.svc.RequestPayout(organizerContext(org), domain.RequestPayoutRequest{
		OrganizerID: org.ID.String(),
	})
	require.NoError(t, err)

	rejected, err := f.svc.ProcessPayout(adminContext(f), domain.ProcessPayoutRequest{
		PayoutID: pending.ID.String(),
		Approve:  false,
		Notes:    "Name mismatch on account",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.PayoutStatusFailed, rejected.Status)
	require.NotNil(t, rejected.FailureReason)
	assert.Equal(t, "Name mismatch on account", *rejected.FailureReason)

	var organizerFeed []notificationdomain.Notification
	require.NoError(t, f.db.Where("recipient_id = ?", org.UserID).Find(&organizerFeed).Error)
	require.Len(t, organizerFeed, 1)
	assert.Equal(t, notificationdomain.TypePayoutRejected, organizerFeed[0].Type)
	assert.Contains(t, organizerFeed[0].Message, "Name mismatch on account")
}

func TestProcessPayout_RejectDefaultsReason(t *testing.T) {
	f := newFixture(t)
	org := f.seedOrganizer(t, true)
	pending := f.seedPayout(t, org.ID, domain.PayoutStatusPending, 950_000, f.clock.Now())

	rejected, err := f.svc.ProcessPayout(adminContext(f), domain.ProcessPayoutRequest{
		PayoutID: pending.ID.String(),
		Approve:  false,
	})
	require.NoError(t, err)
	require.NotNil(t, rejected.FailureReason)
	assert.Equal(t, "Rejected by admin", *rejected.FailureReason)
}

func TestProcessPayout_TerminalStatesStay(t *testing.T) {
	f := newFixture(t)
	org := f.seedOrganizer(t, true)
	pending := f.seedPayout(t, org.ID, domain.PayoutStatusPending, 950_000, f.clock.Now())

	_, err := f.svc.ProcessPayout(adminContext(f), domain.ProcessPayoutRequest{
		PayoutID: pending.ID.String(),
		Approve:  true,
	})
	require.NoError(t, err)

	// A second decision, approve or reject, is refused.
	_, err = f.svc.ProcessPayout(adminContext(f), domain.ProcessPayoutRequest{
		PayoutID: pending.ID.String(),
		Approve:  true,
	})
	assert.ErrorIs(t, err, domain.ErrAlreadyProcessed)

	_, err = f.svc.ProcessPayout(adminContext(f), domain.ProcessPayoutRequest{
		PayoutID: pending.ID.String(),
		Approve:  false,
	})
	assert.ErrorIs(t, err, domain.ErrAlreadyProcessed)

	var stored domain.Payout
	require.NoError(t, f.db.Where("id = ?", pending.ID).Take(&stored).Error)
	assert.Equal(t, domain.PayoutStatusCompleted, stored.Status)
}

func TestProcessPayout_AdminOnly(t *testing.T) {
	f := newFixture(t)
	org := f.seedOrganizer(t, true)
	pending := f.seedPayout(t, org.ID, domain.PayoutStatusPending, 950_000, f.clock.Now())

	_, err := f.svc.ProcessPayout(organizerContext(org), domain.ProcessPayoutRequest{
		PayoutID: pending.ID.String(),
		Approve:  true,
	})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = f.svc.ProcessPayout(adminContext(f), domain.ProcessPayoutRequest{
		PayoutID: f.node.Generate().String(),
		Approve:  true,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBulkProcess_PartialFailure(t *testing.T) {
	f := newFixture(t)

	ids := make([]string, 0, 5)
	for i := 0; i < 4; i++ {
		org := f.seedOrganizer(t, true)
		pending := f.seedPayout(t, org.ID, domain.PayoutStatusPending, 950_000, f.clock.Now())
		ids = append(ids, pending.ID.String())
	}
	org := f.seedOrganizer(t, true)
	done := f.seedPayout(t, org.ID, domain.PayoutStatusCompleted, 950_000, f.clock.Now())
	ids = append(ids, done.ID.String())

	result, err := f.svc.BulkProcess(adminContext(f), domain.BulkProcessRequest{
		PayoutIDs: ids,
		Approve:   true,
	})
	require.NoError(t, err)
	assert.Equal(t, 4, result.Successful)
	assert.Equal(t, 1, result.Failed)
}

func TestListRequests_Pagination(t *testing.T) {
	f := newFixture(t)

	for i := 0; i < 3; i++ {
		org := f.seedOrganizer(t, true)
		f.seedPayout(t, org.ID, domain.PayoutStatusPending, 950_000, f.clock.Now().Add(time.Duration(i)*time.Hour))
	}

	_, err := f.svc.ListRequests(context.Background(), domain.ListPayoutsRequest{})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	ctx := adminContext(f)

	first, err := f.svc.ListRequests(ctx, domain.ListPayoutsRequest{})
	require.NoError(t, err)
	assert.Len(t, first.Payouts, 3)
	assert.NotEmpty(t, first.Payouts[0].OrganizerName)

	page, err := f.svc.ListRequests(ctx, domain.ListPayoutsRequest{
		Pagination: pagination.Pagination{PageSize: 2},
	})
	require.NoError(t, err)
	require.Len(t, page.Payouts, 2)
	assert.True(t, page.HasMore)
	assert.True(t, page.Payouts[0].CreatedAt.After(page.Payouts[1].CreatedAt))

	rest, err := f.svc.ListRequests(ctx, domain.ListPayoutsRequest{
		Pagination: pagination.Pagination{PageToken: page.NextPageToken, PageSize: 2},
	})
	require.NoError(t, err)
	require.Len(t, rest.Payouts, 1)
	assert.False(t, rest.HasMore)
}

func TestRevenueAnalytics(t *testing.T) {
	f := newFixture(t)
	org := f.seedOrganizer(t, true)

	paidAt := f.clock.Now().Add(-30 * 24 * time.Hour)
	paid := f.seedPayout(t, org.ID, domain.PayoutStatusCompleted, 1_900_000, paidAt)

	// One order inside the paid-out window, one since.
	f.seedOrder(t, org.ID, 2_000_000, nil, orderdomain.PaymentStatusCompleted, paidAt.Add(-time.Hour))
	f.seedOrder(t, org.ID, 600_000, nil, orderdomain.PaymentStatusCompleted, paidAt.Add(time.Hour))

	analytics, err := f.svc.RevenueAnalytics(organizerContext(org), org.ID.String())
	require.NoError(t, err)

	assert.Equal(t, paid.NetAmount, analytics.LifetimePaidOut)
	assert.Equal(t, int64(600_000), analytics.PendingEstimate.GrossAmount)
	assert.Equal(t, int64(570_000), analytics.PendingEstimate.NetAmount)
	assert.True(t, analytics.PendingPeriod.Start.Equal(paid.CreatedAt))
	assert.Len(t, analytics.RecentPayouts, 1)
	assert.Len(t, analytics.RecentOrders, 2)
}

func TestRequestPayout_NotificationFailureDoesNotBlock(t *testing.T) {
	f := newFixture(t)
	org := f.seedOrganizer(t, true)
	f.seedOrder(t, org.ID, 1_000_000, nil, orderdomain.PaymentStatusCompleted, f.clock.Now().Add(-time.Hour))

	// Breaking the notifications table must not affect the request itself.
	require.NoError(t, f.db.Migrator().DropTable(&notificationdomain.Notification{}))

	payout, err := f.svc.RequestPayout(organizerContext(org), domain.RequestPayoutRequest{
		OrganizerID: org.ID.String(),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PayoutStatusPending, payout.Status)
}
