package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/comicvault/comicvault-backend/api/responses"
	"github.com/comicvault/comicvault-backend/internal/reconciliation"
	pkgerrors "github.com/comicvault/comicvault-backend/pkg/errors"
	"github.com/comicvault/comicvault-backend/pkg/logger"
)

type reconciliationRunner interface {
	Run(ctx context.Context, sellerID *uuid.UUID) (*reconciliation.Result, error)
}

// AdminRunReconciliation triggers a backfill sweep, optionally scoped to one
// seller via ?sellerId=.
func AdminRunReconciliation(svc reconciliationRunner, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reconciliation service unavailable"))
			return
		}

		var sellerID *uuid.UUID
		if raw := strings.TrimSpace(r.URL.Query().Get("sellerId")); raw != "" {
			parsed, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid seller id"))
				return
			}
			sellerID = &parsed
		}

		result, err := svc.Run(r.Context(), sellerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
