//go:generate mockgen -source=./interface.go -destination=./mock/storage.go -package=storagemock
package storage

import (
	"context"

	"github.com/google/uuid"

	"artgen/internal/app/model"
)

type UserRepository interface {
	// Create a new model.User. Duplicate email yields apperr.ErrConflict.
	Create(ctx context.Context, m *model.User) (*model.User, error)
	// ReadByEmail instance of model.User
	ReadByEmail(ctx context.Context, email string) (*model.User, error)
	// Read instance of model.User
	Read(ctx context.Context, id uuid.UUID) (*model.User, error)
	// AdjustBalance applies delta to the user's credit balance as one
	// atomic store operation. The balance never goes below zero: a delta
	// that would underflow yields apperr.ErrInsufficientCredit.
	AdjustBalance(ctx context.Context, id uuid.UUID, delta int64) (*model.User, error)
}

type TransactionRepository interface {
	// Create a new model.Transaction with payment=false
	Create(ctx context.Context, m *model.Transaction) (*model.Transaction, error)
	// Read instance of model.Transaction
	Read(ctx context.Context, id uuid.UUID) (*model.Transaction, error)
	// MarkSettled flips payment false->true as one atomic conditional
	// update. Exactly one concurrent caller wins; losers get
	// apperr.ErrAlreadySettled and must not mutate any balance.
	MarkSettled(ctx context.Context, id uuid.UUID) (*model.Transaction, error)
}
