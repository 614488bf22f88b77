// Package payment orchestrates credit purchases: it opens ledger rows,
// creates gateway orders and reconciles settled orders back onto account
// balances exactly once.
package payment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"artgen/internal/app/apperr"
	"artgen/internal/app/logger"
	"artgen/internal/app/model"
	"artgen/internal/app/storage"
	"artgen/pkg/razorpay"
)

const orderCurrency = "INR"

var minorUnits = decimal.NewFromInt(100)

// Gateway is the slice of the payment gateway client this service needs.
type Gateway interface {
	CreateOrder(ctx context.Context, in *razorpay.CreateOrderRequest) (*razorpay.Order, error)
	FetchOrder(ctx context.Context, orderID string) (*razorpay.Order, error)
}

type Service struct {
	users        storage.UserRepository
	transactions storage.TransactionRepository
	gateway      Gateway
}

func (s *Service) LoggerComponent() string {
	return "Payment.Service"
}

func New(users storage.UserRepository, transactions storage.TransactionRepository, gateway Gateway) *Service {
	return &Service{
		users:        users,
		transactions: transactions,
		gateway:      gateway,
	}
}

// Initiate validates the plan, opens an unsettled ledger row and creates
// the matching gateway order. The transaction id rides along as the
// order's receipt. The account balance is not touched here.
func (s *Service) Initiate(ctx context.Context, userID uuid.UUID, planID string) (*razorpay.Order, error) {
	l := logger.Get(ctx, s).With().
		Str("method", "Initiate").
		Str("user_id", userID.String()).
		Str("plan", planID).
		Logger()

	plan, err := model.PlanByID(planID)
	if err != nil {
		l.Debug().Msg("Unknown plan")
		return nil, fmt.Errorf("plan %q: %w", planID, apperr.ErrInvalidInput)
	}

	if _, err := s.users.Read(ctx, userID); err != nil {
		return nil, fmt.Errorf("user read: %w", err)
	}

	m, err := s.transactions.Create(ctx, &model.Transaction{
		UserID:  userID,
		Plan:    plan.ID,
		Credits: plan.Credits,
		Amount:  plan.Amount,
	})
	if err != nil {
		return nil, fmt.Errorf("transaction create: %w", err)
	}

	order, err := s.gateway.CreateOrder(ctx, &razorpay.CreateOrderRequest{
		Amount:   plan.Amount.Mul(minorUnits).IntPart(),
		Currency: orderCurrency,
		Receipt:  m.ID.String(),
	})
	if err != nil {
		l.Error().Err(err).Msg("Gateway order create failed")
		return nil, fmt.Errorf("%w: order create: %v", apperr.ErrUpstream, err)
	}

	l.Debug().Str("order_id", order.ID).Str("transaction_id", m.ID.String()).Msg("Order created")

	return order, nil
}

// Reconcile matches a gateway order back to its ledger row and credits
// the owning account. MarkSettled's conditional flip decides the single
// winner; only the winner mutates the balance, so duplicate callbacks and
// concurrent polls credit exactly once. An unsettled ledger row survives
// any upstream failure and can be reconciled again later.
func (s *Service) Reconcile(ctx context.Context, gatewayOrderID string) error {
	l := logger.Get(ctx, s).With().
		Str("method", "Reconcile").
		Str("order_id", gatewayOrderID).
		Logger()

	order, err := s.gateway.FetchOrder(ctx, gatewayOrderID)
	if err != nil {
		l.Error().Err(err).Msg("Gateway order fetch failed")
		return fmt.Errorf("%w: order fetch: %v", apperr.ErrUpstream, err)
	}

	if order.Status != razorpay.OrderStatusPaid {
		l.Debug().Str("order_status", order.Status).Msg("Order not settled")
		return apperr.ErrPaymentNotConfirmed
	}

	txID, err := uuid.Parse(order.Receipt)
	if err != nil {
		l.Debug().Str("receipt", order.Receipt).Msg("Receipt is not a transaction id")
		return apperr.ErrNotFound
	}

	m, err := s.transactions.MarkSettled(ctx, txID)
	if err != nil {
		// ErrAlreadySettled bubbles up: the handler answers success
		// without any balance mutation.
		return fmt.Errorf("mark settled: %w", err)
	}

	if _, err := s.users.AdjustBalance(ctx, m.UserID, m.Credits); err != nil {
		return fmt.Errorf("balance credit: %w", err)
	}

	l.Info().
		Str("transaction_id", m.ID.String()).
		Str("user_id", m.UserID.String()).
		Int64("credits", m.Credits).
		Msg("Settled")

	return nil
}
