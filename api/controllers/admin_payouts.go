package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/comicvault/comicvault-backend/api/responses"
	"github.com/comicvault/comicvault-backend/api/validators"
	"github.com/comicvault/comicvault-backend/internal/payouts"
	pkgerrors "github.com/comicvault/comicvault-backend/pkg/errors"
	"github.com/comicvault/comicvault-backend/pkg/logger"
)

type payoutCommander interface {
	Release(ctx context.Context, orderID uuid.UUID, actorUserID *uuid.UUID) (*payouts.ReleaseResult, error)
	Delay(ctx context.Context, orderID uuid.UUID, delayHours int) (*payouts.DelayResult, error)
}

type delayPayoutRequest struct {
	DelayHours int `json:"delay_hours" validate:"required,min=1,max=8760"`
}

// AdminReleasePayout moves a held order's funds to the seller. Releasing an
// already-released order reports already_released instead of failing.
func AdminReleasePayout(svc payoutCommander, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payouts service unavailable"))
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Release(r.Context(), orderID, actorFromHeader(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// AdminDelayPayout pushes the order's hold deadline out. Shorter delays than
// the current deadline leave it unchanged.
func AdminDelayPayout(svc payoutCommander, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payouts service unavailable"))
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body delayPayoutRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Delay(r.Context(), orderID, body.DelayHours)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func parseOrderID(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "orderId"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	orderID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id")
	}
	return orderID, nil
}

// actorFromHeader reads the acting admin's id when the gateway forwards one.
func actorFromHeader(r *http.Request) *uuid.UUID {
	raw := strings.TrimSpace(r.Header.Get("X-Actor-Id"))
	if raw == "" {
		return nil
	}
	actorID, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}
	return &actorID
}
