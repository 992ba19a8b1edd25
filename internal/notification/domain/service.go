package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

// NotifyRequest describes a notification to record. Email is optional; when
// set and an email provider is configured, a copy is delivered out-of-band.
type NotifyRequest struct {
	RecipientID *snowflake.ID
	Audience    Audience
	Type        string
	Title       string
	Message     string
	ActionURL   string
	Metadata    map[string]any
	Email       string
}

type Service interface {
	// Create records a notification and reports failures to the caller.
	Create(context.Context, NotifyRequest) (Notification, error)

	// Notify is the best-effort variant: failures are logged and swallowed,
	// never surfaced. Workflow side effects use this.
	Notify(context.Context, NotifyRequest)

	ListUnread(ctx context.Context, userID snowflake.ID, limit int) ([]Notification, error)
	MarkRead(ctx context.Context, userID, id snowflake.ID) error
}

var (
	ErrInvalidRecipient = errors.New("invalid_recipient")
	ErrInvalidType      = errors.New("invalid_type")
	ErrNotFound         = errors.New("not_found")
)
