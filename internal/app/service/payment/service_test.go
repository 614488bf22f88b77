package payment

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"artgen/internal/app/apperr"
	"artgen/internal/app/model"
	storagemock "artgen/internal/app/storage/mock"
	"artgen/pkg/razorpay"
)

type fakeGateway struct {
	createOrderFn func(ctx context.Context, in *razorpay.CreateOrderRequest) (*razorpay.Order, error)
	fetchOrderFn  func(ctx context.Context, orderID string) (*razorpay.Order, error)
}

func (g *fakeGateway) CreateOrder(ctx context.Context, in *razorpay.CreateOrderRequest) (*razorpay.Order, error) {
	return g.createOrderFn(ctx, in)
}

func (g *fakeGateway) FetchOrder(ctx context.Context, orderID string) (*razorpay.Order, error) {
	return g.fetchOrderFn(ctx, orderID)
}

func TestService_Initiate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	users := storagemock.NewMockUserRepository(ctrl)
	transactions := storagemock.NewMockTransactionRepository(ctrl)

	userID := uuid.New()
	txID := uuid.New()

	users.EXPECT().
		Read(gomock.Any(), userID).
		Return(&model.User{ID: userID}, nil)

	transactions.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, m *model.Transaction) (*model.Transaction, error) {
			if m.UserID != userID {
				t.Errorf("transaction user: want %s, got %s", userID, m.UserID)
			}
			if m.Plan != "Advanced" {
				t.Errorf("transaction plan: want Advanced, got %s", m.Plan)
			}
			if m.Credits != 500 {
				t.Errorf("transaction credits: want 500, got %d", m.Credits)
			}
			out := *m
			out.ID = txID
			return &out, nil
		})

	var captured *razorpay.CreateOrderRequest
	gw := &fakeGateway{
		createOrderFn: func(_ context.Context, in *razorpay.CreateOrderRequest) (*razorpay.Order, error) {
			captured = in
			return &razorpay.Order{
				ID:       "order_test",
				Amount:   in.Amount,
				Currency: in.Currency,
				Receipt:  in.Receipt,
				Status:   razorpay.OrderStatusCreated,
			}, nil
		},
	}

	svc := New(users, transactions, gw)

	order, err := svc.Initiate(context.Background(), userID, "Advanced")
	if err != nil {
		t.Fatalf("initiate: %v", err)
	}

	if captured == nil {
		t.Fatal("gateway order was never created")
	}
	// 50 rupees in paise.
	if captured.Amount != 5000 {
		t.Errorf("order amount: want 5000, got %d", captured.Amount)
	}
	if captured.Currency != "INR" {
		t.Errorf("order currency: want INR, got %s", captured.Currency)
	}
	if captured.Receipt != txID.String() {
		t.Errorf("order receipt: want %s, got %s", txID, captured.Receipt)
	}
	if order.ID != "order_test" {
		t.Errorf("order id: want order_test, got %s", order.ID)
	}
}

func TestService_Initiate_UnknownPlan(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	users := storagemock.NewMockUserRepository(ctrl)
	transactions := storagemock.NewMockTransactionRepository(ctrl)

	gw := &fakeGateway{
		createOrderFn: func(context.Context, *razorpay.CreateOrderRequest) (*razorpay.Order, error) {
			t.Fatal("gateway must not be called for an unknown plan")
			return nil, nil
		},
	}

	svc := New(users, transactions, gw)

	_, err := svc.Initiate(context.Background(), uuid.New(), "Platinum")
	if !errors.Is(err, apperr.ErrInvalidInput) {
		t.Fatalf("want ErrInvalidInput, got %v", err)
	}
}

func TestService_Initiate_GatewayDown(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	users := storagemock.NewMockUserRepository(ctrl)
	transactions := storagemock.NewMockTransactionRepository(ctrl)

	userID := uuid.New()

	users.EXPECT().
		Read(gomock.Any(), userID).
		Return(&model.User{ID: userID}, nil)
	transactions.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, m *model.Transaction) (*model.Transaction, error) {
			out := *m
			out.ID = uuid.New()
			return &out, nil
		})

	gw := &fakeGateway{
		createOrderFn: func(context.Context, *razorpay.CreateOrderRequest) (*razorpay.Order, error) {
			return nil, errors.New("connection refused")
		},
	}

	svc := New(users, transactions, gw)

	_, err := svc.Initiate(context.Background(), userID, "Basic")
	if !errors.Is(err, apperr.ErrUpstream) {
		t.Fatalf("want ErrUpstream, got %v", err)
	}
}

func TestService_Reconcile(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	users := storagemock.NewMockUserRepository(ctrl)
	transactions := storagemock.NewMockTransactionRepository(ctrl)

	userID := uuid.New()
	txID := uuid.New()

	gw := &fakeGateway{
		fetchOrderFn: func(_ context.Context, orderID string) (*razorpay.Order, error) {
			if orderID != "order_test" {
				t.Errorf("fetch order id: want order_test, got %s", orderID)
			}
			return &razorpay.Order{
				ID:      orderID,
				Receipt: txID.String(),
				Status:  razorpay.OrderStatusPaid,
			}, nil
		},
	}

	transactions.EXPECT().
		MarkSettled(gomock.Any(), txID).
		Return(&model.Transaction{
			ID:      txID,
			UserID:  userID,
			Plan:    "Advanced",
			Credits: 500,
			Amount:  decimal.NewFromInt(50),
			Payment: true,
		}, nil)

	users.EXPECT().
		AdjustBalance(gomock.Any(), userID, int64(500)).
		Return(&model.User{ID: userID, CreditBalance: 500}, nil)

	svc := New(users, transactions, gw)

	if err := svc.Reconcile(context.Background(), "order_test"); err != nil {
		t.Fatalf("reconcile: %v", err)
	}
}

func TestService_Reconcile_OrderNotPaid(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	users := storagemock.NewMockUserRepository(ctrl)
	transactions := storagemock.NewMockTransactionRepository(ctrl)

	gw := &fakeGateway{
		fetchOrderFn: func(_ context.Context, orderID string) (*razorpay.Order, error) {
			return &razorpay.Order{ID: orderID, Receipt: uuid.NewString(), Status: razorpay.OrderStatusAttempted}, nil
		},
	}

	svc := New(users, transactions, gw)

	err := svc.Reconcile(context.Background(), "order_test")
	if !errors.Is(err, apperr.ErrPaymentNotConfirmed) {
		t.Fatalf("want ErrPaymentNotConfirmed, got %v", err)
	}
}

func TestService_Reconcile_AlreadySettled(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	users := storagemock.NewMockUserRepository(ctrl)
	transactions := storagemock.NewMockTransactionRepository(ctrl)

	txID := uuid.New()

	gw := &fakeGateway{
		fetchOrderFn: func(_ context.Context, orderID string) (*razorpay.Order, error) {
			return &razorpay.Order{ID: orderID, Receipt: txID.String(), Status: razorpay.OrderStatusPaid}, nil
		},
	}

	transactions.EXPECT().
		MarkSettled(gomock.Any(), txID).
		Return(nil, apperr.ErrAlreadySettled)

	// No AdjustBalance expectation: a lost settle must not touch the balance.
	svc := New(users, transactions, gw)

	err := svc.Reconcile(context.Background(), "order_test")
	if !errors.Is(err, apperr.ErrAlreadySettled) {
		t.Fatalf("want ErrAlreadySettled, got %v", err)
	}
}

func TestService_Reconcile_BadReceipt(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	users := storagemock.NewMockUserRepository(ctrl)
	transactions := storagemock.NewMockTransactionRepository(ctrl)

	gw := &fakeGateway{
		fetchOrderFn: func(_ context.Context, orderID string) (*razorpay.Order, error) {
			return &razorpay.Order{ID: orderID, Receipt: "not-a-uuid", Status: razorpay.OrderStatusPaid}, nil
		},
	}

	svc := New(users, transactions, gw)

	err := svc.Reconcile(context.Background(), "order_test")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

// ledgerFake mimics the store's conditional settle flip with a mutex so
// concurrent reconciles race the same way they would against Postgres.
type ledgerFake struct {
	mu sync.Mutex
	tx model.Transaction
}

func (f *ledgerFake) Create(_ context.Context, m *model.Transaction) (*model.Transaction, error) {
	return m, nil
}

func (f *ledgerFake) Read(_ context.Context, id uuid.UUID) (*model.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id != f.tx.ID {
		return nil, apperr.ErrNotFound
	}
	out := f.tx
	return &out, nil
}

func (f *ledgerFake) MarkSettled(_ context.Context, id uuid.UUID) (*model.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id != f.tx.ID {
		return nil, apperr.ErrNotFound
	}
	if f.tx.Payment {
		return nil, apperr.ErrAlreadySettled
	}
	f.tx.Payment = true
	out := f.tx
	return &out, nil
}

type balanceFake struct {
	mu      sync.Mutex
	user    model.User
	credits int
}

func (f *balanceFake) Create(_ context.Context, m *model.User) (*model.User, error) {
	return m, nil
}

func (f *balanceFake) Read(_ context.Context, id uuid.UUID) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id != f.user.ID {
		return nil, apperr.ErrNotFound
	}
	out := f.user
	return &out, nil
}

func (f *balanceFake) ReadByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if email != f.user.Email {
		return nil, apperr.ErrNotFound
	}
	out := f.user
	return &out, nil
}

func (f *balanceFake) AdjustBalance(_ context.Context, id uuid.UUID, delta int64) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id != f.user.ID {
		return nil, apperr.ErrNotFound
	}
	if f.user.CreditBalance+delta < 0 {
		return nil, apperr.ErrInsufficientCredit
	}
	f.user.CreditBalance += delta
	f.credits++
	out := f.user
	return &out, nil
}

func TestService_Reconcile_ConcurrentCallbacks(t *testing.T) {
	userID := uuid.New()
	txID := uuid.New()

	ledger := &ledgerFake{tx: model.Transaction{
		ID:      txID,
		UserID:  userID,
		Plan:    "Advanced",
		Credits: 500,
		Amount:  decimal.NewFromInt(50),
	}}
	balances := &balanceFake{user: model.User{ID: userID}}

	gw := &fakeGateway{
		fetchOrderFn: func(_ context.Context, orderID string) (*razorpay.Order, error) {
			return &razorpay.Order{ID: orderID, Receipt: txID.String(), Status: razorpay.OrderStatusPaid}, nil
		},
	}

	svc := New(balances, ledger, gw)

	const callers = 16

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		won    int
		dupped int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := svc.Reconcile(context.Background(), "order_test")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				won++
			case errors.Is(err, apperr.ErrAlreadySettled):
				dupped++
			default:
				t.Errorf("unexpected reconcile error: %v", err)
			}
		}()
	}
	wg.Wait()

	if won != 1 {
		t.Errorf("winners: want 1, got %d", won)
	}
	if dupped != callers-1 {
		t.Errorf("duplicates: want %d, got %d", callers-1, dupped)
	}
	if balances.user.CreditBalance != 500 {
		t.Errorf("balance: want 500, got %d", balances.user.CreditBalance)
	}
	if balances.credits != 1 {
		t.Errorf("balance mutations: want 1, got %d", balances.credits)
	}
}
