package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/comicvault/comicvault-backend/api/responses"
	"github.com/comicvault/comicvault-backend/api/validators"
	"github.com/comicvault/comicvault-backend/internal/ledger"
	"github.com/comicvault/comicvault-backend/pkg/db/models"
	pkgerrors "github.com/comicvault/comicvault-backend/pkg/errors"
	"github.com/comicvault/comicvault-backend/pkg/logger"
	"github.com/comicvault/comicvault-backend/pkg/pagination"
)

type walletReader interface {
	GetSummary(ctx context.Context, sellerID uuid.UUID) (*models.WalletSummary, error)
}

type ledgerReader interface {
	ListBySeller(ctx context.Context, sellerID uuid.UUID, params pagination.Params) (*ledger.EntryList, error)
}

// WalletSummary returns the seller's balance projection. Unknown sellers get
// an all-zero summary rather than a 404.
func WalletSummary(svc walletReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wallet service unavailable"))
			return
		}

		sellerID, err := parseSellerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.GetSummary(r.Context(), sellerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

// WalletLedger returns the seller's ledger entries, newest first, with a
// cursor for the next page.
func WalletLedger(svc ledgerReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}

		sellerID, err := parseSellerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params := pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}

		list, err := svc.ListBySeller(r.Context(), sellerID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func parseSellerID(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "sellerId"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "seller id is required")
	}
	sellerID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid seller id")
	}
	return sellerID, nil
}
