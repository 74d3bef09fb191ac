package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/comicvault/comicvault-backend/internal/payouts"
)

type stubPayoutService struct {
	releaseFn func(ctx context.Context, orderID uuid.UUID, actorUserID *uuid.UUID) (*payouts.ReleaseResult, error)
	delayFn   func(ctx context.Context, orderID uuid.UUID, delayHours int) (*payouts.DelayResult, error)
}

func (s stubPayoutService) Release(ctx context.Context, orderID uuid.UUID, actorUserID *uuid.UUID) (*payouts.ReleaseResult, error) {
	if s.releaseFn != nil {
		return s.releaseFn(ctx, orderID, actorUserID)
	}
	return &payouts.ReleaseResult{}, nil
}

func (s stubPayoutService) Delay(ctx context.Context, orderID uuid.UUID, delayHours int) (*payouts.DelayResult, error) {
	if s.delayFn != nil {
		return s.delayFn(ctx, orderID, delayHours)
	}
	return &payouts.DelayResult{}, nil
}

func newBodyRequest(method, target, param, value, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(param, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func TestAdminReleasePayout(t *testing.T) {
	orderID := uuid.New()
	actorID := uuid.New()
	svc := stubPayoutService{
		releaseFn: func(ctx context.Context, id uuid.UUID, actor *uuid.UUID) (*payouts.ReleaseResult, error) {
			if id != orderID {
				t.Fatalf("unexpected order id %s", id)
			}
			if actor == nil || *actor != actorID {
				t.Fatalf("expected actor %s, got %v", actorID, actor)
			}
			return &payouts.ReleaseResult{AmountCents: 9350}, nil
		},
	}

	handler := AdminReleasePayout(svc, nil)
	req := newBodyRequest(http.MethodPost, "/", "orderId", orderID.String(), "")
	req.Header.Set("X-Actor-Id", actorID.String())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data payouts.ReleaseResult `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.AmountCents != 9350 {
		t.Fatalf("unexpected result %+v", envelope.Data)
	}
}

func TestAdminReleasePayoutReportsAlreadyReleased(t *testing.T) {
	svc := stubPayoutService{
		releaseFn: func(ctx context.Context, id uuid.UUID, actor *uuid.UUID) (*payouts.ReleaseResult, error) {
			return &payouts.ReleaseResult{AlreadyReleased: true}, nil
		},
	}

	handler := AdminReleasePayout(svc, nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, newBodyRequest(http.MethodPost, "/", "orderId", uuid.NewString(), ""))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data payouts.ReleaseResult `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !envelope.Data.AlreadyReleased {
		t.Fatal("expected already_released true")
	}
}

func TestAdminReleasePayoutRejectsBadOrderID(t *testing.T) {
	handler := AdminReleasePayout(stubPayoutService{}, nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, newBodyRequest(http.MethodPost, "/", "orderId", "nope", ""))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAdminDelayPayout(t *testing.T) {
	orderID := uuid.New()
	holdUntil := time.Now().UTC().Add(48 * time.Hour)
	svc := stubPayoutService{
		delayFn: func(ctx context.Context, id uuid.UUID, hours int) (*payouts.DelayResult, error) {
			if hours != 48 {
				t.Fatalf("unexpected hours %d", hours)
			}
			return &payouts.DelayResult{NewHoldUntil: holdUntil}, nil
		},
	}

	handler := AdminDelayPayout(svc, nil)
	req := newBodyRequest(http.MethodPost, "/", "orderId", orderID.String(), `{"delay_hours":48}`)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestAdminDelayPayoutValidatesBody(t *testing.T) {
	handler := AdminDelayPayout(stubPayoutService{}, nil)

	for _, body := range []string{``, `{}`, `{"delay_hours":0}`, `{"delay_hours":-5}`} {
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, newBodyRequest(http.MethodPost, "/", "orderId", uuid.NewString(), body))
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("body %q: expected 400 got %d", body, resp.Code)
		}
	}
}
