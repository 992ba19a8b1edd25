package notification

import (
	"github.com/eventick/ticketpay/internal/notification/repository"
	"github.com/eventick/ticketpay/internal/notification/service"
	"go.uber.org/fx"
)

var Module = fx.Module("notification.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
