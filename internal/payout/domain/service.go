package domain

import (
	"context"
	"errors"

	"github.com/eventick/ticketpay/pkg/db/pagination"
)

type RequestPayoutRequest struct {
	OrganizerID string
}

type ProcessPayoutRequest struct {
	PayoutID string
	Approve  bool
	Notes    string
}

type BulkProcessRequest struct {
	PayoutIDs []string
	Approve   bool
}

type ListPayoutsRequest struct {
	pagination.Pagination
}

type ListPayoutsResponse struct {
	pagination.PageInfo
	Payouts []PayoutWithOrganizer `json:"payouts"`
}

type Service interface {
	// RequestPayout runs the organizer-initiated workflow: eligibility
	// checks, period computation, aggregation and a PENDING insert, then an
	// admin notification.
	RequestPayout(context.Context, RequestPayoutRequest) (Payout, error)

	// ProcessPayout is the admin decision on one PENDING payout.
	ProcessPayout(context.Context, ProcessPayoutRequest) (Payout, error)

	// BulkProcess fans ProcessPayout out over the batch and reports counts;
	// an individual failure never aborts the rest.
	BulkProcess(context.Context, BulkProcessRequest) (BulkResult, error)

	ListByOrganizer(ctx context.Context, organizerID string) ([]Payout, error)
	ListRequests(context.Context, ListPayoutsRequest) (ListPayoutsResponse, error)
	RevenueAnalytics(ctx context.Context, organizerID string) (RevenueAnalytics, error)
}

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidID          = errors.New("invalid_id")
	ErrBankDetailsMissing = errors.New("bank_details_missing")
	ErrCooldownActive     = errors.New("cooldown_active")
	ErrNoFundsAvailable   = errors.New("no_funds_available")
	ErrNotFound           = errors.New("not_found")
	ErrAlreadyProcessed   = errors.New("already_processed")
	ErrRequestInProgress  = errors.New("request_in_progress")
)
