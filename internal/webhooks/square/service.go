package squarewebhook

import (
	"context"
	"strings"

	"github.com/google/uuid"
	sq "github.com/square/square-go-sdk"

	"github.com/comicvault/comicvault-backend/internal/payouts"
	pkgerrors "github.com/comicvault/comicvault-backend/pkg/errors"
	"github.com/comicvault/comicvault-backend/pkg/logger"
)

const paymentStatusCompleted = "COMPLETED"

type paymentVerifier interface {
	GetPayment(ctx context.Context, paymentID string) (*sq.Payment, error)
}

type ServiceParams struct {
	Payouts payouts.Service
	Square  paymentVerifier
	Logger  *logger.Logger
}

type Service struct {
	payouts payouts.Service
	square  paymentVerifier
	logg    *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Payouts == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "payouts service required")
	}
	return &Service{
		payouts: params.Payouts,
		square:  params.Square,
		logg:    params.Logger,
	}, nil
}

type SquareWebhookEvent struct {
	EventID string            `json:"event_id"`
	Type    string            `json:"type"`
	Data    SquareWebhookData `json:"data"`
}

type SquareWebhookData struct {
	Type   string              `json:"type"`
	ID     string              `json:"id"`
	Object SquareWebhookObject `json:"object"`
}

type SquareWebhookObject struct {
	Payment *SquarePayment `json:"payment"`
}

// SquarePayment is the slice of Square's payment object the settlement flow
// reads. ReferenceID carries the marketplace order id set at checkout.
type SquarePayment struct {
	ID          string       `json:"id"`
	Status      string       `json:"status"`
	ReferenceID string       `json:"reference_id"`
	OrderID     string       `json:"order_id"`
	AmountMoney *SquareMoney `json:"amount_money"`
}

type SquareMoney struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// HandleEvent settles captured payments into the seller ledger. Events other
// than completed payments are acknowledged and dropped.
func (s *Service) HandleEvent(ctx context.Context, event *SquareWebhookEvent) error {
	if event == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "square event required")
	}

	switch strings.ToLower(event.Type) {
	case "payment.created", "payment.updated":
		return s.handlePayment(ctx, event.Data.Object.Payment)
	default:
		return nil
	}
}

func (s *Service) handlePayment(ctx context.Context, payment *SquarePayment) error {
	if payment == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment payload missing")
	}
	if !strings.EqualFold(payment.Status, paymentStatusCompleted) {
		return nil
	}

	reference := strings.TrimSpace(payment.ReferenceID)
	if reference == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment reference id missing")
	}
	orderID, err := uuid.Parse(reference)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "parse payment reference id")
	}

	if err := s.verifyWithSquare(ctx, payment); err != nil {
		return err
	}

	return s.payouts.RecordOrderPaid(ctx, orderID)
}

// verifyWithSquare cross-checks the webhook payload against the payment
// record Square holds. Webhook bodies are attacker-visible input even after
// signature validation, so the amount and status come from the API record.
func (s *Service) verifyWithSquare(ctx context.Context, payment *SquarePayment) error {
	if s.square == nil || payment.ID == "" {
		return nil
	}
	remote, err := s.square.GetPayment(ctx, payment.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "verify payment with square")
	}
	if remote == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "square returned no payment record")
	}
	status := ""
	if remote.GetStatus() != nil {
		status = *remote.GetStatus()
	}
	if !strings.EqualFold(status, paymentStatusCompleted) {
		if s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "payment_id", payment.ID), "square payment not completed; ignoring webhook")
		}
		return pkgerrors.New(pkgerrors.CodeStateConflict, "payment is not completed at square")
	}
	return nil
}
