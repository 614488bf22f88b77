package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	pg "github.com/lib/pq"

	"artgen/internal/app/apperr"
	"artgen/internal/app/model"
	"artgen/internal/app/storage"
)

// storage.UserRepository interface implementation
var _ storage.UserRepository = (*UserRepository)(nil)

type UserRepository struct {
	db *sql.DB
}

func (r *UserRepository) LoggerComponent() string {
	return "UserRepository"
}

func NewUserRepository(db *sql.DB) (*UserRepository, error) {
	return &UserRepository{db: db}, nil
}

// Create implementation of interface storage.UserRepository
func (r *UserRepository) Create(ctx context.Context, m *model.User) (*model.User, error) {
	const SQL = `
		INSERT INTO users (name, email, password)
		VALUES ($1, $2, $3)
		RETURNING id, credit_balance
`

	err := r.db.QueryRowContext(ctx, SQL, m.Name, m.Email, m.PasswordHash).Scan(&m.ID, &m.CreditBalance)
	if err != nil {
		if pgErr, ok := err.(*pg.Error); ok {
			if pgerrcode.IsIntegrityConstraintViolation(string(pgErr.Code)) {
				return nil, apperr.ErrConflict
			}
		}

		return nil, fmt.Errorf("insert: %w", err)
	}

	return m, nil
}

// Read implementation of interface storage.UserRepository
func (r *UserRepository) Read(ctx context.Context, id uuid.UUID) (*model.User, error) {
	const SQL = `
		SELECT id, name, email, password, credit_balance
		FROM users
		WHERE id=$1
`
	m := &model.User{}

	err := r.db.QueryRowContext(ctx, SQL, id).Scan(&m.ID, &m.Name, &m.Email, &m.PasswordHash, &m.CreditBalance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("select: %w", err)
	}

	return m, nil
}

// ReadByEmail implementation of interface storage.UserRepository
func (r *UserRepository) ReadByEmail(ctx context.Context, email string) (*model.User, error) {
	const SQL = `
		SELECT id, name, email, password, credit_balance
		FROM users
		WHERE email=$1
`
	m := &model.User{}

	err := r.db.QueryRowContext(ctx, SQL, email).Scan(&m.ID, &m.Name, &m.Email, &m.PasswordHash, &m.CreditBalance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("select: %w", err)
	}

	return m, nil
}

// AdjustBalance implementation of interface storage.UserRepository.
// A single guarded UPDATE so concurrent settlements and spends on the
// same account cannot lose updates or drive the balance negative.
func (r *UserRepository) AdjustBalance(ctx context.Context, id uuid.UUID, delta int64) (*model.User, error) {
	const SQL = `
		UPDATE users
		SET credit_balance = credit_balance + $2
		WHERE id=$1 AND credit_balance + $2 >= 0
		RETURNING id, name, email, password, credit_balance
`
	m := &model.User{}

	err := r.db.QueryRowContext(ctx, SQL, id, delta).Scan(&m.ID, &m.Name, &m.Email, &m.PasswordHash, &m.CreditBalance)
	if err == nil {
		return m, nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("update: %w", err)
	}

	// The guard rejected the row: either the user is gone or the delta
	// would underflow the balance.
	if _, err := r.Read(ctx, id); err != nil {
		return nil, err
	}

	return nil, apperr.ErrInsufficientCredit
}
