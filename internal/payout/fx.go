package payout

import (
	"github.com/eventick/ticketpay/internal/payout/repository"
	"github.com/eventick/ticketpay/internal/payout/service"
	"go.uber.org/fx"
)

var Module = fx.Module("payout.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
