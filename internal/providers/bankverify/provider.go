package bankverify

import (
	"context"
	"errors"
)

// ErrUnresolvable is returned when the upstream rejects the account or the
// provider is not configured for live verification.
var ErrUnresolvable = errors.New("account_unresolvable")

// Provider resolves a bank account to its registered holder name. Used once
// during organizer payout setup; the resolved name is snapshotted and trusted
// thereafter.
type Provider interface {
	Resolve(ctx context.Context, accountNumber, bankCode string) (string, error)
}

type NoOpProvider struct{}

func (p *NoOpProvider) Resolve(ctx context.Context, accountNumber, bankCode string) (string, error) {
	return "", ErrUnresolvable
}
