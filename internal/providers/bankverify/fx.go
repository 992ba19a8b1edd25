package bankverify

import (
	"time"

	"github.com/eventick/ticketpay/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("providers.bankverify",
	fx.Provide(NewFromConfig),
)

func NewFromConfig(cfg config.Config) Provider {
	if cfg.BankVerify.Secret == "" {
		return &NoOpProvider{}
	}
	return NewPaystack(Config{
		BaseURL: cfg.BankVerify.BaseURL,
		Secret:  cfg.BankVerify.Secret,
		Timeout: time.Duration(cfg.BankVerify.Timeout) * time.Second,
	})
}
