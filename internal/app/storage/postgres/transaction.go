package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"artgen/internal/app/apperr"
	"artgen/internal/app/logger"
	"artgen/internal/app/model"
	"artgen/internal/app/storage"
)

// storage.TransactionRepository interface implementation
var _ storage.TransactionRepository = (*TransactionRepository)(nil)

type TransactionRepository struct {
	db *sql.DB
}

func (r *TransactionRepository) LoggerComponent() string {
	return "TransactionRepository"
}

func NewTransactionRepository(db *sql.DB) (*TransactionRepository, error) {
	return &TransactionRepository{db: db}, nil
}

// Create implementation of interface storage.TransactionRepository
func (r *TransactionRepository) Create(ctx context.Context, m *model.Transaction) (*model.Transaction, error) {
	l := logger.Get(ctx, r).With().
		Str("method", "Create").
		Str("plan", m.Plan).
		Logger()
	l.Debug().Msg("Creating transaction")

	if m.Credits <= 0 || !m.Amount.IsPositive() {
		return nil, apperr.ErrInvalidInput
	}

	m.ID = uuid.New()
	m.CreatedAt = time.Now()
	m.Payment = false

	const SQL = `
		INSERT INTO transactions (id, user_id, plan, credits, amount, payment, created_at)
		VALUES ($1, $2, $3, $4, $5, FALSE, $6)
`
	_, err := r.db.ExecContext(ctx, SQL, m.ID, m.UserID, m.Plan, m.Credits, m.Amount, m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert: %w", err)
	}

	return m, nil
}

// Read implementation of interface storage.TransactionRepository
func (r *TransactionRepository) Read(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	const SQL = `
		SELECT id, user_id, plan, credits, amount, payment, created_at
		FROM transactions
		WHERE id=$1
`
	m := &model.Transaction{}

	err := r.db.QueryRowContext(ctx, SQL, id).
		Scan(&m.ID, &m.UserID, &m.Plan, &m.Credits, &m.Amount, &m.Payment, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("select: %w", err)
	}

	return m, nil
}

// MarkSettled implementation of interface storage.TransactionRepository.
// The conditional flip is the single source of truth for settlement:
// of any number of concurrent callers exactly one sees the row returned,
// the rest land on the no-rows branch.
func (r *TransactionRepository) MarkSettled(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	l := logger.Get(ctx, r).With().
		Str("method", "MarkSettled").
		Str("transaction_id", id.String()).
		Logger()

	const SQL = `
		UPDATE transactions
		SET payment = TRUE
		WHERE id=$1 AND payment = FALSE
		RETURNING id, user_id, plan, credits, amount, payment, created_at
`
	m := &model.Transaction{}

	err := r.db.QueryRowContext(ctx, SQL, id).
		Scan(&m.ID, &m.UserID, &m.Plan, &m.Credits, &m.Amount, &m.Payment, &m.CreatedAt)
	if err == nil {
		l.Debug().Msg("Settled")
		return m, nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("update: %w", err)
	}

	if _, err := r.Read(ctx, id); err != nil {
		return nil, err
	}

	l.Debug().Msg("Lost the settle race")
	return nil, apperr.ErrAlreadySettled
}
