package organizer

import (
	"github.com/eventick/ticketpay/internal/organizer/repository"
	"github.com/eventick/ticketpay/internal/organizer/service"
	"go.uber.org/fx"
)

var Module = fx.Module("organizer.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
