// Package generate charges one credit per successful image generation.
package generate

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"artgen/internal/app/apperr"
	"artgen/internal/app/logger"
	"artgen/internal/app/storage"
)

// Provider is the slice of the image-generation client this service needs.
type Provider interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Service struct {
	users    storage.UserRepository
	provider Provider
}

func (s *Service) LoggerComponent() string {
	return "Generate.Service"
}

func New(users storage.UserRepository, provider Provider) *Service {
	return &Service{
		users:    users,
		provider: provider,
	}
}

// Spend generates an image for the prompt and debits one credit.
// The balance check runs before the provider call so an empty account
// never spends provider quota. The debit runs after provider success:
// a failed generation costs nothing. A crash between the two can only
// under-charge, never over-charge.
func (s *Service) Spend(ctx context.Context, userID uuid.UUID, prompt string) (string, error) {
	l := logger.Get(ctx, s).With().
		Str("method", "Spend").
		Str("user_id", userID.String()).
		Logger()

	u, err := s.users.Read(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("user read: %w", err)
	}

	if u.CreditBalance < 1 {
		l.Debug().Msg("No credit left")
		return "", apperr.ErrInsufficientCredit
	}

	asset, err := s.provider.Generate(ctx, prompt)
	if err != nil {
		l.Error().Err(err).Msg("Provider call failed")
		return "", fmt.Errorf("%w: generate: %v", apperr.ErrUpstream, err)
	}

	if _, err := s.users.AdjustBalance(ctx, userID, -1); err != nil {
		// The image already exists. A lost debit favors the user and is
		// preferable to charging for nothing, so hand the asset over and
		// record the miss.
		if errors.Is(err, apperr.ErrInsufficientCredit) {
			l.Warn().Msg("Debit lost to a concurrent spend, generation goes uncharged")
			return asset, nil
		}
		l.Error().Err(err).Msg("Debit failed after successful generation")
		return asset, nil
	}

	return asset, nil
}
