package cron

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/comicvault/comicvault-backend/internal/reconciliation"
	"github.com/comicvault/comicvault-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ReconcileJobParams configure the nightly reconciliation job.
type ReconcileJobParams struct {
	Logger         *logger.Logger
	Reconciliation reconciliation.Service
}

// NewReconcileJob builds the job that sweeps all sellers for missing ledger
// entries and audit events.
func NewReconcileJob(params ReconcileJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Reconciliation == nil {
		return nil, fmt.Errorf("reconciliation service required")
	}
	return &reconcileJob{
		logg:  params.Logger,
		recon: params.Reconciliation,
	}, nil
}

type reconcileJob struct {
	logg  *logger.Logger
	recon reconciliation.Service
}

func (j *reconcileJob) Name() string { return "ledger-reconcile" }

func (j *reconcileJob) Run(ctx context.Context) error {
	result, err := j.recon.Run(ctx, nil)
	if err != nil {
		return fmt.Errorf("reconcile: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"ledger_entries_created": result.LedgerEntriesCreated,
		"events_created":         result.EventsCreated,
		"wallets_recomputed":     result.WalletsRecomputed,
		"orders_skipped":         len(result.SkippedOrderIDs),
	})
	j.logg.Info(logCtx, "reconciliation sweep complete")
	return nil
}
