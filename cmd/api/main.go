package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/comicvault/comicvault-backend/api/routes"
	"github.com/comicvault/comicvault-backend/internal/ledger"
	"github.com/comicvault/comicvault-backend/internal/orders"
	"github.com/comicvault/comicvault-backend/internal/payouts"
	"github.com/comicvault/comicvault-backend/internal/reconciliation"
	"github.com/comicvault/comicvault-backend/internal/wallet"
	squarewebhook "github.com/comicvault/comicvault-backend/internal/webhooks/square"
	"github.com/comicvault/comicvault-backend/pkg/config"
	"github.com/comicvault/comicvault-backend/pkg/db"
	"github.com/comicvault/comicvault-backend/pkg/logger"
	"github.com/comicvault/comicvault-backend/pkg/metrics"
	"github.com/comicvault/comicvault-backend/pkg/migrate"
	"github.com/comicvault/comicvault-backend/pkg/outbox"
	"github.com/comicvault/comicvault-backend/pkg/redis"
	"github.com/comicvault/comicvault-backend/pkg/square"
)

const webhookDedupeTTL = 72 * time.Hour

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	squareClient, err := square.NewClient(context.Background(), cfg.Square, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap square client", err)
		os.Exit(1)
	}

	ordersRepo := orders.NewRepository(dbClient.DB())
	ledgerRepo := ledger.NewRepository(dbClient.DB())
	walletRepo := wallet.NewRepository(dbClient.DB())
	outboxSvc := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	ledgerSvc, err := ledger.NewService(ledgerRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create ledger service", err)
		os.Exit(1)
	}

	walletSvc, err := wallet.NewService(walletRepo, ledgerRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create wallet service", err)
		os.Exit(1)
	}

	payoutsSvc, err := payouts.NewService(payouts.ServiceParams{
		Tx:         dbClient,
		OrdersRepo: ordersRepo,
		LedgerSvc:  ledgerSvc,
		WalletSvc:  walletSvc,
		Outbox:     outboxSvc,
		Logger:     logg,
		FeeRateBps: cfg.Payouts.FeeRateBps,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create payouts service", err)
		os.Exit(1)
	}

	reconSvc, err := reconciliation.NewService(reconciliation.ServiceParams{
		Tx:         dbClient,
		OrdersRepo: ordersRepo,
		LedgerRepo: ledgerRepo,
		LedgerSvc:  ledgerSvc,
		WalletSvc:  walletSvc,
		Outbox:     outboxSvc,
		Logger:     logg,
		Metrics:    metrics.NewReconciliationMetrics(prometheus.DefaultRegisterer),
		FeeRateBps: cfg.Payouts.FeeRateBps,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create reconciliation service", err)
		os.Exit(1)
	}

	webhookSvc, err := squarewebhook.NewService(squarewebhook.ServiceParams{
		Payouts: payoutsSvc,
		Square:  squareClient,
		Logger:  logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create square webhook service", err)
		os.Exit(1)
	}

	webhookGuard, err := squarewebhook.NewIdempotencyGuard(redisClient, webhookDedupeTTL, "square")
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook idempotency guard", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:         cfg,
			Logger:         logg,
			DBPinger:       dbClient,
			RedisPinger:    redisClient,
			WalletSvc:      walletSvc,
			LedgerSvc:      ledgerSvc,
			PayoutsSvc:     payoutsSvc,
			Reconciliation: reconSvc,
			SquareWebhook:  webhookSvc,
			SquareClient:   squareClient,
			WebhookGuard:   webhookGuard,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
