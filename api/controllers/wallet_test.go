package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/comicvault/comicvault-backend/internal/ledger"
	"github.com/comicvault/comicvault-backend/pkg/db/models"
	"github.com/comicvault/comicvault-backend/pkg/enums"
	"github.com/comicvault/comicvault-backend/pkg/pagination"
)

type stubWalletService struct {
	summaryFn func(ctx context.Context, sellerID uuid.UUID) (*models.WalletSummary, error)
}

func (s stubWalletService) GetSummary(ctx context.Context, sellerID uuid.UUID) (*models.WalletSummary, error) {
	if s.summaryFn != nil {
		return s.summaryFn(ctx, sellerID)
	}
	return &models.WalletSummary{SellerID: sellerID}, nil
}

type stubLedgerService struct {
	listFn func(ctx context.Context, sellerID uuid.UUID, params pagination.Params) (*ledger.EntryList, error)
}

func (s stubLedgerService) ListBySeller(ctx context.Context, sellerID uuid.UUID, params pagination.Params) (*ledger.EntryList, error) {
	if s.listFn != nil {
		return s.listFn(ctx, sellerID, params)
	}
	return &ledger.EntryList{}, nil
}

func newRouteRequest(method, target, param, value string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(param, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func TestWalletSummaryReturnsProjection(t *testing.T) {
	sellerID := uuid.New()
	svc := stubWalletService{
		summaryFn: func(ctx context.Context, id uuid.UUID) (*models.WalletSummary, error) {
			if id != sellerID {
				t.Fatalf("unexpected seller id %s", id)
			}
			return &models.WalletSummary{SellerID: id, AvailableCents: 9350, OnHoldCents: 400}, nil
		},
	}

	handler := WalletSummary(svc, nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, newRouteRequest(http.MethodGet, "/", "sellerId", sellerID.String()))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data models.WalletSummary `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.AvailableCents != 9350 || envelope.Data.OnHoldCents != 400 {
		t.Fatalf("unexpected summary %+v", envelope.Data)
	}
}

func TestWalletSummaryRejectsBadSellerID(t *testing.T) {
	handler := WalletSummary(stubWalletService{}, nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, newRouteRequest(http.MethodGet, "/", "sellerId", "not-a-uuid"))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestWalletLedgerPassesPagination(t *testing.T) {
	sellerID := uuid.New()
	svc := stubLedgerService{
		listFn: func(ctx context.Context, id uuid.UUID, params pagination.Params) (*ledger.EntryList, error) {
			if params.Limit != 5 {
				t.Fatalf("unexpected limit %d", params.Limit)
			}
			if params.Cursor != "abc" {
				t.Fatalf("unexpected cursor %q", params.Cursor)
			}
			return &ledger.EntryList{
				Entries: []models.LedgerEntry{{
					SellerID:    id,
					EntryType:   enums.LedgerEntryTypeAvailableCredit,
					AmountCents: 9350,
				}},
				NextCursor: "next",
			}, nil
		},
	}

	handler := WalletLedger(svc, nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, newRouteRequest(http.MethodGet, "/?limit=5&cursor=abc", "sellerId", sellerID.String()))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data ledger.EntryList `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data.Entries) != 1 || envelope.Data.NextCursor != "next" {
		t.Fatalf("unexpected list %+v", envelope.Data)
	}
}

func TestWalletLedgerRejectsOutOfRangeLimit(t *testing.T) {
	handler := WalletLedger(stubLedgerService{}, nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, newRouteRequest(http.MethodGet, "/?limit=1000", "sellerId", uuid.NewString()))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
