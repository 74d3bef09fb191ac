package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/comicvault/comicvault-backend/internal/reconciliation"
)

type stubReconciliation struct {
	runFn func(ctx context.Context, sellerID *uuid.UUID) (*reconciliation.Result, error)
}

func (s stubReconciliation) Run(ctx context.Context, sellerID *uuid.UUID) (*reconciliation.Result, error) {
	if s.runFn != nil {
		return s.runFn(ctx, sellerID)
	}
	return &reconciliation.Result{}, nil
}

func TestAdminRunReconciliationUnscoped(t *testing.T) {
	svc := stubReconciliation{
		runFn: func(ctx context.Context, sellerID *uuid.UUID) (*reconciliation.Result, error) {
			if sellerID != nil {
				t.Fatalf("expected unscoped run, got %s", sellerID)
			}
			return &reconciliation.Result{LedgerEntriesCreated: 4, EventsCreated: 2}, nil
		},
	}

	handler := AdminRunReconciliation(svc, nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data reconciliation.Result `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.LedgerEntriesCreated != 4 || envelope.Data.EventsCreated != 2 {
		t.Fatalf("unexpected result %+v", envelope.Data)
	}
}

func TestAdminRunReconciliationScoped(t *testing.T) {
	target := uuid.New()
	svc := stubReconciliation{
		runFn: func(ctx context.Context, sellerID *uuid.UUID) (*reconciliation.Result, error) {
			if sellerID == nil || *sellerID != target {
				t.Fatalf("expected seller %s, got %v", target, sellerID)
			}
			return &reconciliation.Result{}, nil
		},
	}

	handler := AdminRunReconciliation(svc, nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/?sellerId="+target.String(), nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestAdminRunReconciliationRejectsBadSellerID(t *testing.T) {
	handler := AdminRunReconciliation(stubReconciliation{}, nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/?sellerId=banana", nil))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
