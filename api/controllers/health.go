package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/comicvault/comicvault-backend/api/responses"
	"github.com/comicvault/comicvault-backend/pkg/config"
	"github.com/comicvault/comicvault-backend/pkg/db"
	pkgerrors "github.com/comicvault/comicvault-backend/pkg/errors"
	"github.com/comicvault/comicvault-backend/pkg/logger"
	"github.com/comicvault/comicvault-backend/pkg/redis"
)

const healthCheckTimeout = 3 * time.Second

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-ComicVault-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports readiness only when the backing stores answer a ping.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-ComicVault-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		checks := map[string]string{}
		healthy := true

		checks["db"] = checkDependency(ctx, func(ctx context.Context) error {
			if dbP == nil {
				return nil
			}
			return dbP.Ping(ctx)
		}, &healthy)
		checks["redis"] = checkDependency(ctx, func(ctx context.Context) error {
			if redisP == nil {
				return nil
			}
			return redisP.Ping(ctx)
		}, &healthy)

		if !healthy {
			responses.WriteError(ctx, logg, w,
				pkgerrors.New(pkgerrors.CodeDependency, "dependencies unavailable").WithDetails(checks))
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}

func checkDependency(ctx context.Context, ping func(context.Context) error, healthy *bool) string {
	if err := ping(ctx); err != nil {
		*healthy = false
		return err.Error()
	}
	return "ok"
}
