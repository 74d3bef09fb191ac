package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/comicvault/comicvault-backend/api/controllers"
	webhookcontrollers "github.com/comicvault/comicvault-backend/api/controllers/webhooks"
	"github.com/comicvault/comicvault-backend/api/middleware"
	"github.com/comicvault/comicvault-backend/internal/ledger"
	"github.com/comicvault/comicvault-backend/internal/payouts"
	"github.com/comicvault/comicvault-backend/internal/reconciliation"
	"github.com/comicvault/comicvault-backend/internal/wallet"
	squarewebhook "github.com/comicvault/comicvault-backend/internal/webhooks/square"
	"github.com/comicvault/comicvault-backend/pkg/config"
	"github.com/comicvault/comicvault-backend/pkg/db"
	"github.com/comicvault/comicvault-backend/pkg/logger"
	"github.com/comicvault/comicvault-backend/pkg/redis"
	"github.com/comicvault/comicvault-backend/pkg/square"
)

// RouterParams carries everything the HTTP surface needs.
type RouterParams struct {
	Config          *config.Config
	Logger          *logger.Logger
	DBPinger        db.Pinger
	RedisPinger     redis.Pinger
	WalletSvc       wallet.Service
	LedgerSvc       ledger.Service
	PayoutsSvc      payouts.Service
	Reconciliation  reconciliation.Service
	SquareWebhook   webhookcontrollers.SquareWebhookService
	SquareClient    *square.Client
	WebhookGuard    *squarewebhook.IdempotencyGuard
	MetricsRegistry *prometheus.Registry
}

func NewRouter(params RouterParams) http.Handler {
	cfg := params.Config
	logg := params.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Get("/healthz", controllers.HealthReady(cfg, logg, params.DBPinger, params.RedisPinger))
	r.Get("/ping", controllers.Ping())
	r.Method(http.MethodGet, "/metrics", metricsHandler(params.MetricsRegistry))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/wallets/{sellerId}", func(r chi.Router) {
			r.Get("/summary", controllers.WalletSummary(params.WalletSvc, logg))
			r.Get("/ledger", controllers.WalletLedger(params.LedgerSvc, logg))
		})

		r.Route("/admin", func(r chi.Router) {
			r.Route("/orders/{orderId}/payout", func(r chi.Router) {
				r.Post("/release", controllers.AdminReleasePayout(params.PayoutsSvc, logg))
				r.Post("/delay", controllers.AdminDelayPayout(params.PayoutsSvc, logg))
			})
			r.Post("/reconciliation", controllers.AdminRunReconciliation(params.Reconciliation, logg))
		})

		r.Post("/webhooks/square", webhookcontrollers.SquareWebhook(params.SquareWebhook, params.SquareClient, params.WebhookGuard, logg))
	})

	return r
}

func metricsHandler(registry *prometheus.Registry) http.Handler {
	if registry == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
