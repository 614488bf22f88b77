package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction is a purchase attempt. Its id doubles as the gateway
// order's receipt, which is how a settled order finds its way back.
type Transaction struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"-"`
	Plan      string          `json:"plan"`
	Credits   int64           `json:"credits"`
	Amount    decimal.Decimal `json:"amount"`
	Payment   bool            `json:"payment"`
	CreatedAt time.Time       `json:"createdAt"`
}
