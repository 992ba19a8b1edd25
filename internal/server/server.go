package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/eventick/ticketpay/internal/config"
	"github.com/eventick/ticketpay/internal/metrics"
	"github.com/eventick/ticketpay/internal/notification"
	notificationdomain "github.com/eventick/ticketpay/internal/notification/domain"
	"github.com/eventick/ticketpay/internal/order"
	"github.com/eventick/ticketpay/internal/organizer"
	organizerdomain "github.com/eventick/ticketpay/internal/organizer/domain"
	"github.com/eventick/ticketpay/internal/payout"
	payoutdomain "github.com/eventick/ticketpay/internal/payout/domain"
	"github.com/eventick/ticketpay/internal/providers/bankverify"
	"github.com/eventick/ticketpay/internal/providers/email"
	"github.com/eventick/ticketpay/internal/ratelimit"
)

var Module = fx.Module("http.server",
	metrics.Module,
	fx.Provide(NewEngine),
	bankverify.Module,
	email.Module,
	ratelimit.Module,
	organizer.Module,
	order.Module,
	notification.Module,
	payout.Module,
	fx.Provide(NewServer),
	fx.Invoke(registerRoutes),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, httpMetrics *metrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(metrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine          *gin.Engine
	log             *zap.Logger
	organizerSvc    organizerdomain.Service
	payoutSvc       payoutdomain.Service
	notificationSvc notificationdomain.Service
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Log             *zap.Logger
	OrganizerSvc    organizerdomain.Service
	PayoutSvc       payoutdomain.Service
	NotificationSvc notificationdomain.Service
}

func NewServer(p ServerParams) *Server {
	return &Server{
		engine:          p.Gin,
		log:             p.Log.Named("http.server"),
		organizerSvc:    p.OrganizerSvc,
		payoutSvc:       p.PayoutSvc,
		notificationSvc: p.NotificationSvc,
	}
}

func registerRoutes(s *Server) {
	s.RegisterAPIRoutes()
}

// RegisterAPIRoutes mounts the payout API. The principal middleware trusts
// the identity headers set by the marketplace gateway in front of this
// service.
func (s *Server) RegisterAPIRoutes() {
	api := s.engine.Group("/api/v1")
	api.Use(PrincipalMiddleware())

	api.POST("/organizers", s.PostOrganizer)
	api.GET("/organizers/:id", s.GetOrganizer)
	api.GET("/organizers", s.ListOrganizers)
	api.PUT("/organizers/:id/bank-details", s.PutBankDetails)

	api.POST("/organizers/:id/payouts", s.PostPayoutRequest)
	api.GET("/organizers/:id/payouts", s.GetOrganizerPayouts)
	api.GET("/organizers/:id/analytics", s.GetRevenueAnalytics)

	api.GET("/payouts", s.GetPayoutRequests)
	api.POST("/payouts/:id/process", s.PostProcessPayout)
	api.POST("/payouts/bulk", s.PostBulkProcess)

	api.GET("/notifications", s.GetNotifications)
	api.POST("/notifications/:id/read", s.PostMarkNotificationRead)
}
