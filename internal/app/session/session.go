package session

import (
	"context"
	"errors"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"

	"artgen/internal/app/model"
)

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	jwt.StandardClaims
}

// Creator issues a bearer token for an authenticated user.
type Creator interface {
	Create(ctx context.Context, u *model.User) (string, error)
}

// Reader verifies a bearer token and resolves the account id it carries.
// Implementations are stateless: no store lookup happens here.
type Reader interface {
	Read(ctx context.Context, token string) (uuid.UUID, error)
}

type Manager interface {
	Creator
	Reader
}
