package domain

import (
	"context"
	"errors"
)

type CreateOrganizerRequest struct {
	UserID string
	Name   string
	Email  string
}

type UpdateBankDetailsRequest struct {
	OrganizerID   string
	AccountNumber string
	BankCode      string
}

type GetOrganizerRequest struct {
	ID string
}

type Service interface {
	Create(context.Context, CreateOrganizerRequest) (Organizer, error)
	GetByID(context.Context, GetOrganizerRequest) (Organizer, error)
	UpdateBankDetails(context.Context, UpdateBankDetailsRequest) (Organizer, error)
	List(context.Context, int) ([]Organizer, error)
}

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidID          = errors.New("invalid_id")
	ErrInvalidName        = errors.New("invalid_name")
	ErrInvalidEmail       = errors.New("invalid_email")
	ErrInvalidBankAccount = errors.New("invalid_bank_account")
	ErrNotFound           = errors.New("not_found")
	ErrVerificationFailed = errors.New("verification_failed")
)
