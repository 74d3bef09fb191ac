package payouts

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/comicvault/comicvault-backend/internal/ledger"
	"github.com/comicvault/comicvault-backend/internal/orders"
	"github.com/comicvault/comicvault-backend/internal/wallet"
	"github.com/comicvault/comicvault-backend/pkg/db/models"
	"github.com/comicvault/comicvault-backend/pkg/enums"
	pkgerrors "github.com/comicvault/comicvault-backend/pkg/errors"
	"github.com/comicvault/comicvault-backend/pkg/logger"
	"github.com/comicvault/comicvault-backend/pkg/outbox"
	"github.com/comicvault/comicvault-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service drives the payout hold state machine and payment settlement.
type Service interface {
	RecordOrderPaid(ctx context.Context, orderID uuid.UUID) error
	Release(ctx context.Context, orderID uuid.UUID, actorUserID *uuid.UUID) (*ReleaseResult, error)
	Delay(ctx context.Context, orderID uuid.UUID, delayHours int) (*DelayResult, error)
}

// ServiceParams groups dependencies for the payouts service.
type ServiceParams struct {
	Tx         txRunner
	OrdersRepo orders.Repository
	LedgerSvc  ledger.Service
	WalletSvc  wallet.Service
	Outbox     outboxPublisher
	Logger     *logger.Logger
	FeeRateBps int
}

type service struct {
	tx         txRunner
	ordersRepo orders.Repository
	ledgerSvc  ledger.Service
	walletSvc  wallet.Service
	outbox     outboxPublisher
	logg       *logger.Logger
	feeRateBps int
}

// NewService builds the payouts service.
func NewService(params ServiceParams) (Service, error) {
	if params.Tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if params.OrdersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
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
		ledgerSvc:  params.LedgerSvc,
		walletSvc:  params.WalletSvc,
		outbox:     params.Outbox,
		logg:       params.Logger,
		feeRateBps: params.FeeRateBps,
	}, nil
}

// IsReady reports whether a held order's hold period has matured. Readiness
// is computed, never stored; released is the only persisted transition.
func IsReady(order *models.Order, now time.Time) bool {
	if order == nil {
		return false
	}
	if order.PayoutStatus != enums.PayoutStatusHeld {
		return false
	}
	if order.PayoutHoldUntil == nil {
		return false
	}
	return !now.Before(*order.PayoutHoldUntil)
}

// RecordOrderPaid settles a captured payment into the ledger: an
// available_credit entry for the net amount and a fee entry for the
// marketplace cut. Safe to call again for the same order.
func (s *service) RecordOrderPaid(ctx context.Context, orderID uuid.UUID) error {
	if orderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}

	order, err := s.ordersRepo.FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if order.AmountCents <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "order has no usable amount")
	}

	split := SplitAmount(order.AmountCents, s.feeRateBps)
	now := time.Now().UTC()

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ordersRepo := s.ordersRepo.WithTx(tx)
		ledgerSvc := s.ledgerSvc.WithTx(tx)

		if order.PaymentStatus != enums.PaymentStatusPaid {
			if err := ordersRepo.UpdatePaymentCaptured(ctx, order.ID, now); err != nil {
				return err
			}
			buyerID := order.BuyerID
			if err := ordersRepo.CreateStatusEvent(ctx, &models.OrderStatusEvent{
				OrderID:     order.ID,
				ActorUserID: &buyerID,
				ActorRole:   enums.ActorRoleBuyer,
				EventType:   enums.OrderEventTypePaid,
			}); err != nil {
				return err
			}
		}

		if err := s.appendSettlementEntries(ctx, ledgerSvc, order, split); err != nil {
			return err
		}

		s.emitBestEffort(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderPaid,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Data: payloads.OrderPaidEvent{
				OrderID:     order.ID,
				SellerID:    order.SellerID,
				BuyerID:     order.BuyerID,
				AmountCents: order.AmountCents,
				Currency:    order.Currency.String(),
				PaidAt:      now,
			},
		})

		_, err := s.walletSvc.WithTx(tx).Recalculate(ctx, order.SellerID)
		return err
	})
}

// Release moves a held order's funds to the seller's available balance. A
// repeat call is a no-op reported as already released; the ledger's payout
// uniqueness is what makes retries safe, not any locking.
func (s *service) Release(ctx context.Context, orderID uuid.UUID, actorUserID *uuid.UUID) (*ReleaseResult, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}

	order, err := s.ordersRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}

	netCents, err := s.netPayoutCents(ctx, order)
	if err != nil {
		return nil, err
	}
	result := &ReleaseResult{AmountCents: netCents}

	if order.PayoutStatus == enums.PayoutStatusReleased {
		result.AlreadyReleased = true
		return result, nil
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ordersRepo := s.ordersRepo.WithTx(tx)
		ledgerSvc := s.ledgerSvc.WithTx(tx)

		payoutOrderID := order.ID
		_, appendErr := ledgerSvc.Append(ctx, ledger.AppendEntryInput{
			SellerID:    order.SellerID,
			OrderID:     &payoutOrderID,
			EntryType:   enums.LedgerEntryTypePayout,
			AmountCents: netCents,
			Currency:    order.Currency,
			Description: "payout released to seller",
		})
		if appendErr != nil {
			if !pkgerrors.IsCode(appendErr, pkgerrors.CodeConflict) {
				return appendErr
			}
			// Payout fact already recorded by an earlier attempt.
			result.AlreadyReleased = true
		}

		if err := ordersRepo.UpdatePayoutStatus(ctx, order.ID, enums.PayoutStatusReleased); err != nil {
			return err
		}

		if !result.AlreadyReleased {
			var actor *outbox.ActorRef
			if actorUserID != nil {
				actor = &outbox.ActorRef{UserID: *actorUserID, Role: "admin"}
			}
			s.emitBestEffort(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventPayoutReleased,
				AggregateType: enums.AggregateOrder,
				AggregateID:   order.ID,
				Actor:         actor,
				Version:       1,
				Data: payloads.PayoutReleasedEvent{
					OrderID:     order.ID,
					SellerID:    order.SellerID,
					AmountCents: netCents,
					Currency:    order.Currency.String(),
					ReleasedAt:  time.Now().UTC(),
				},
			})
		}

		_, err := s.walletSvc.WithTx(tx).Recalculate(ctx, order.SellerID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Delay extends the hold deadline. Extensions are monotonic: a shorter delay
// arriving after a longer one leaves the deadline untouched.
func (s *service) Delay(ctx context.Context, orderID uuid.UUID, delayHours int) (*DelayResult, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	if delayHours <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delay hours must be positive")
	}

	order, err := s.ordersRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}

	if order.PayoutStatus == enums.PayoutStatusReleased {
		result := &DelayResult{AlreadyReleased: true}
		if order.PayoutHoldUntil != nil {
			result.NewHoldUntil = *order.PayoutHoldUntil
		}
		return result, nil
	}

	now := time.Now().UTC()
	candidate := now.Add(time.Duration(delayHours) * time.Hour)

	// The candidate is always offered; the store's guarded update applies the
	// monotonic max, so a stale read here can never shorten the hold.
	if err := s.ordersRepo.UpdatePayoutHoldUntil(ctx, order.ID, candidate); err != nil {
		return nil, err
	}

	newHold := candidate
	if order.PayoutHoldUntil != nil && order.PayoutHoldUntil.After(candidate) {
		newHold = *order.PayoutHoldUntil
	}
	return &DelayResult{NewHoldUntil: newHold}, nil
}

// netPayoutCents derives the payout from the fee entry recorded at settlement
// time, so a fee-rate change between settlement and release cannot skew the
// payout against the credited net. Orders with no fee entry fall back to the
// configured rate.
func (s *service) netPayoutCents(ctx context.Context, order *models.Order) (int64, error) {
	entries, err := s.ledgerSvc.ListByOrder(ctx, order.ID)
	if err != nil {
		return 0, err
	}
	for _, entry := range entries {
		if entry.EntryType == enums.LedgerEntryTypeFee {
			return order.AmountCents - entry.AmountCents, nil
		}
	}
	return SplitAmount(order.AmountCents, s.feeRateBps).NetCents, nil
}

func (s *service) appendSettlementEntries(ctx context.Context, ledgerSvc ledger.Service, order *models.Order, split SettlementSplit) error {
	orderID := order.ID
	entries := []ledger.AppendEntryInput{
		{
			SellerID:    order.SellerID,
			OrderID:     &orderID,
			EntryType:   enums.LedgerEntryTypeAvailableCredit,
			AmountCents: split.NetCents,
			Currency:    order.Currency,
			Description: "net credit for captured payment",
		},
		{
			SellerID:    order.SellerID,
			OrderID:     &orderID,
			EntryType:   enums.LedgerEntryTypeFee,
			AmountCents: split.FeeCents,
			Currency:    order.Currency,
			Description: "marketplace fee",
		},
	}
	for _, input := range entries {
		if _, err := ledgerSvc.Append(ctx, input); err != nil {
			if pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
				continue
			}
			return err
		}
	}
	return nil
}

// emitBestEffort queues a notification event without letting a queueing
// failure roll back the money movement.
func (s *service) emitBestEffort(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) {
	if s.outbox == nil {
		return
	}
	if err := s.outbox.EmitIfNotExists(ctx, tx, event); err != nil && s.logg != nil {
		s.logg.Error(s.logg.WithOrderID(ctx, event.AggregateID.String()), "queueing notification event failed", err)
	}
}
