package reconciliation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/comicvault/comicvault-backend/internal/ledger"
	"github.com/comicvault/comicvault-backend/internal/orders"
	"github.com/comicvault/comicvault-backend/internal/payouts"
	"github.com/comicvault/comicvault-backend/internal/wallet"
	"github.com/comicvault/comicvault-backend/pkg/db/models"
	"github.com/comicvault/comicvault-backend/pkg/enums"
	pkgerrors "github.com/comicvault/comicvault-backend/pkg/errors"
	"github.com/comicvault/comicvault-backend/pkg/logger"
	"github.com/comicvault/comicvault-backend/pkg/metrics"
	"github.com/comicvault/comicvault-backend/pkg/outbox"
	"github.com/comicvault/comicvault-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Result summarizes one reconciliation sweep.
type Result struct {
	LedgerEntriesCreated int         `json:"ledger_entries_created"`
	EventsCreated        int         `json:"events_created"`
	WalletsRecomputed    int         `json:"wallets_recomputed"`
	SkippedOrderIDs      []uuid.UUID `json:"skipped_order_ids"`
}

// Service backfills ledger coverage and audit timelines for orders that
// predate the settlement engine or were missed by live processing.
type Service interface {
	Run(ctx context.Context, sellerID *uuid.UUID) (*Result, error)
}

// ServiceParams groups dependencies for the reconciliation service.
type ServiceParams struct {
	Tx         txRunner
	OrdersRepo orders.Repository
	LedgerRepo ledger.Repository
	LedgerSvc  ledger.Service
	WalletSvc  wallet.Service
	Outbox     outboxPublisher
	Logger     *logger.Logger
	Metrics    *metrics.ReconciliationMetrics
	FeeRateBps int
}

type service struct {
	tx         txRunner
	ordersRepo orders.Repository
	ledgerRepo ledger.Repository
	ledgerSvc  ledger.Service
	walletSvc  wallet.Service
	outbox     outboxPublisher
	logg       *logger.Logger
	metrics    *metrics.ReconciliationMetrics
	feeRateBps int
}

// NewService builds the reconciliation service.
func NewService(params ServiceParams) (Service, error) {
	if params.Tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if params.OrdersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.LedgerRepo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	if params.LedgerSvc == nil {
		return nil, fmt.Errorf("ledger service required")
	}
	if params.WalletSvc == nil {
		return nil, fmt.Errorf("wallet service required")
	}
	if params.FeeRateBps < 0 || params.FeeRateBps >= 10000 {
		return nil, fmt.Errorf("fee rate out of range: %d", params.FeeRateBps)
	}
	return &service{
		tx:         params.Tx,
		ordersRepo: params.OrdersRepo,
		ledgerRepo: params.LedgerRepo,
		ledgerSvc:  params.LedgerSvc,
		walletSvc:  params.WalletSvc,
		outbox:     params.Outbox,
		logg:       params.Logger,
		metrics:    params.Metrics,
		feeRateBps: params.FeeRateBps,
	}, nil
}

// Run sweeps settleable orders for missing ledger entries, then orders with
// empty audit timelines for missing status events. One bad order never stops
// the sweep; its id lands in SkippedOrderIDs instead.
func (s *service) Run(ctx context.Context, sellerID *uuid.UUID) (*Result, error) {
	result := &Result{SkippedOrderIDs: []uuid.UUID{}}

	touchedSellers, err := s.backfillLedger(ctx, sellerID, result)
	if err != nil {
		return nil, err
	}

	if err := s.backfillEvents(ctx, sellerID, result); err != nil {
		return nil, err
	}

	for seller := range touchedSellers {
		if err := s.recomputeWallet(ctx, seller); err != nil {
			s.logError(ctx, seller.String(), "wallet recompute failed during reconciliation", err)
			continue
		}
		result.WalletsRecomputed++
	}

	if s.metrics != nil {
		s.metrics.AddLedgerEntries(result.LedgerEntriesCreated)
		s.metrics.AddEvents(result.EventsCreated)
		s.metrics.AddSkipped(len(result.SkippedOrderIDs))
	}
	return result, nil
}

func (s *service) backfillLedger(ctx context.Context, sellerID *uuid.UUID, result *Result) (map[uuid.UUID]bool, error) {
	touched := map[uuid.UUID]bool{}

	settleable, err := s.ordersRepo.ListSettleable(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	if len(settleable) == 0 {
		return touched, nil
	}

	// One scan of existing keys up front keeps the sweep at two queries
	// plus writes, instead of a lookup per order.
	existing, err := s.ledgerRepo.ExistingOrderKeys(ctx, []enums.LedgerEntryType{
		enums.LedgerEntryTypeAvailableCredit,
		enums.LedgerEntryTypeFee,
	})
	if err != nil {
		return nil, err
	}

	for i := range settleable {
		order := settleable[i]
		// Either half of the pair can be the missing one; only a fully
		// covered order is skipped.
		if existing[ledger.OrderEntryKey{OrderID: order.ID, EntryType: enums.LedgerEntryTypeAvailableCredit}] &&
			existing[ledger.OrderEntryKey{OrderID: order.ID, EntryType: enums.LedgerEntryTypeFee}] {
			continue
		}
		if order.AmountCents <= 0 {
			result.SkippedOrderIDs = append(result.SkippedOrderIDs, order.ID)
			s.logWarn(ctx, order.ID.String(), "skipping order with ambiguous amount")
			continue
		}

		created, err := s.settleOrder(ctx, &order, existing)
		if err != nil {
			result.SkippedOrderIDs = append(result.SkippedOrderIDs, order.ID)
			s.logError(ctx, order.ID.String(), "ledger backfill failed for order", err)
			continue
		}
		result.LedgerEntriesCreated += created
		if created > 0 {
			touched[order.SellerID] = true
		}
	}
	return touched, nil
}

// settleOrder writes the missing available_credit/fee pair for one order in
// its own transaction so a failure cannot poison the rest of the sweep.
func (s *service) settleOrder(ctx context.Context, order *models.Order, existing map[ledger.OrderEntryKey]bool) (int, error) {
	split := payouts.SplitAmount(order.AmountCents, s.feeRateBps)
	orderID := order.ID

	inputs := []ledger.AppendEntryInput{
		{
			SellerID:    order.SellerID,
			OrderID:     &orderID,
			EntryType:   enums.LedgerEntryTypeAvailableCredit,
			AmountCents: split.NetCents,
			Currency:    order.Currency,
			Description: "backfilled net credit",
		},
		{
			SellerID:    order.SellerID,
			OrderID:     &orderID,
			EntryType:   enums.LedgerEntryTypeFee,
			AmountCents: split.FeeCents,
			Currency:    order.Currency,
			Description: "backfilled marketplace fee",
		},
	}

	created := 0
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ledgerSvc := s.ledgerSvc.WithTx(tx)
		for _, input := range inputs {
			if existing[ledger.OrderEntryKey{OrderID: orderID, EntryType: input.EntryType}] {
				continue
			}
			if _, err := ledgerSvc.Append(ctx, input); err != nil {
				if pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
					// A live writer beat the sweep; the fact exists either way.
					continue
				}
				return err
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}

func (s *service) backfillEvents(ctx context.Context, sellerID *uuid.UUID, result *Result) error {
	bare, err := s.ordersRepo.ListWithoutEvents(ctx)
	if err != nil {
		return err
	}

	for i := range bare {
		order := bare[i]
		if sellerID != nil && order.SellerID != *sellerID {
			continue
		}

		events := synthesizeEvents(&order)
		if len(events) == 0 {
			continue
		}

		err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			ordersRepo := s.ordersRepo.WithTx(tx)
			for j := range events {
				if err := ordersRepo.CreateStatusEvent(ctx, &events[j]); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			result.SkippedOrderIDs = append(result.SkippedOrderIDs, order.ID)
			s.logError(ctx, order.ID.String(), "event backfill failed for order", err)
			continue
		}
		result.EventsCreated += len(events)
	}
	return nil
}

// synthesizeEvents reconstructs the minimum timeline a consumer expects from
// the order's current state. Timestamps reuse what the order row remembers.
func synthesizeEvents(order *models.Order) []models.OrderStatusEvent {
	var events []models.OrderStatusEvent

	if order.PaymentStatus == enums.PaymentStatusPaid {
		buyerID := order.BuyerID
		paidAt := order.CreatedAt
		if order.PaidAt != nil {
			paidAt = *order.PaidAt
		}
		events = append(events, models.OrderStatusEvent{
			OrderID:     order.ID,
			ActorUserID: &buyerID,
			ActorRole:   enums.ActorRoleBuyer,
			EventType:   enums.OrderEventTypePaid,
			Note:        "backfilled",
			Backfilled:  true,
			CreatedAt:   paidAt,
		})
	}

	if order.Status == enums.OrderStatusCompleted {
		completedAt := order.UpdatedAt
		if order.DeliveredAt != nil {
			completedAt = *order.DeliveredAt
		}
		events = append(events, models.OrderStatusEvent{
			OrderID:    order.ID,
			ActorRole:  enums.ActorRoleSystem,
			EventType:  enums.OrderEventTypeCompleted,
			Note:       "backfilled",
			Backfilled: true,
			CreatedAt:  completedAt,
		})
	}
	return events
}

func (s *service) recomputeWallet(ctx context.Context, sellerID uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		summary, err := s.walletSvc.WithTx(tx).Recalculate(ctx, sellerID)
		if err != nil {
			return err
		}
		if s.outbox != nil {
			event := outbox.DomainEvent{
				EventType:     enums.EventWalletRecomputed,
				AggregateType: enums.AggregateWalletSummary,
				AggregateID:   sellerID,
				Version:       1,
				Data: payloads.WalletRecomputedEvent{
					SellerID:       sellerID,
					PendingCents:   summary.PendingCents,
					AvailableCents: summary.AvailableCents,
					OnHoldCents:    summary.OnHoldCents,
					RecomputedAt:   time.Now().UTC(),
				},
			}
			if err := s.outbox.EmitIfNotExists(ctx, tx, event); err != nil {
				s.logError(ctx, sellerID.String(), "queueing wallet recompute event failed", err)
			}
		}
		return nil
	})
}

func (s *service) logError(ctx context.Context, id, msg string, err error) {
	if s.logg == nil {
		return
	}
	s.logg.Error(s.logg.WithField(ctx, "subject_id", id), msg, err)
}

func (s *service) logWarn(ctx context.Context, id, msg string) {
	if s.logg == nil {
		return
	}
	s.logg.Warn(s.logg.WithField(ctx, "subject_id", id), msg)
}
