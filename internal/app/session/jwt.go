package session

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"

	"artgen/internal/app/logger"
	"artgen/internal/app/model"
)

// session.Manager interface implementation
var _ Manager = (*JWT)(nil)

// JWT is a stateless session manager: the signed token is the whole
// session, with the account id in the subject claim.
type JWT struct {
	issuer        string
	secretKey     []byte
	tokenLifetime time.Duration
}

func (svc *JWT) LoggerComponent() string {
	return "Session.JWT"
}

type JWTOption func(*JWT)

func WithLifetime(d time.Duration) JWTOption {
	return func(svc *JWT) {
		svc.tokenLifetime = d
	}
}

func WithIssuer(issuer string) JWTOption {
	return func(svc *JWT) {
		svc.issuer = issuer
	}
}

func NewJWT(secretKey string, opts ...JWTOption) *JWT {
	s := &JWT{
		secretKey:     []byte(secretKey),
		tokenLifetime: 24 * time.Hour,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Create method of session.Creator implementation
func (svc *JWT) Create(ctx context.Context, u *model.User) (string, error) {
	l := logger.Get(ctx, svc)
	l.Debug().Str("user_id", u.ID.String()).Msg("Create")

	now := time.Now()

	claims := &Claims{
		StandardClaims: jwt.StandardClaims{
			Id:        uuid.New().String(),
			Subject:   u.ID.String(),
			NotBefore: now.Unix(),
			ExpiresAt: now.Add(svc.tokenLifetime).Unix(),
			Issuer:    svc.issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	strToken, err := token.SignedString(svc.secretKey)
	if err != nil {
		l.Error().Err(err).Send()

		return "", fmt.Errorf("jwt encode: %w", err)
	}

	return strToken, nil
}

// Read method of session.Reader implementation. Signature and expiry are
// checked by the jwt library; the subject claim is the account id.
func (svc *JWT) Read(ctx context.Context, tokenString string) (uuid.UUID, error) {
	l := logger.Get(ctx, svc)

	c := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, c, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return svc.secretKey, nil
	})

	if err != nil {
		l.Debug().Err(err).Msg("ParseWithClaims failed")

		return uuid.Nil, ErrInvalidToken
	}

	c, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		l.Debug().Msg("Invalid token")

		return uuid.Nil, ErrInvalidToken
	}

	id, err := uuid.Parse(c.Subject)
	if err != nil {
		l.Debug().Err(err).Msg("Bad subject claim")

		return uuid.Nil, ErrInvalidToken
	}

	return id, nil
}
