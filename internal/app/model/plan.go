package model

import (
	"github.com/shopspring/decimal"

	"artgen/internal/app/apperr"
)

// Plan is a fixed purchasable credit pack. The catalog is static
// configuration, not persisted state.
type Plan struct {
	ID      string          `json:"id"`
	Desc    string          `json:"desc"`
	Credits int64           `json:"credits"`
	Amount  decimal.Decimal `json:"price"`
}

var planCatalog = []Plan{
	{ID: "Basic", Desc: "Best for personal use", Credits: 100, Amount: decimal.NewFromInt(10)},
	{ID: "Advanced", Desc: "Best for business use", Credits: 500, Amount: decimal.NewFromInt(50)},
	{ID: "Business", Desc: "Best for enterprise use", Credits: 5000, Amount: decimal.NewFromInt(250)},
}

// Plans returns the full catalog in display order.
func Plans() []Plan {
	out := make([]Plan, len(planCatalog))
	copy(out, planCatalog)
	return out
}

// PlanByID resolves a plan identifier. Unknown identifiers are rejected
// with apperr.ErrInvalidInput.
func PlanByID(id string) (Plan, error) {
	for _, p := range planCatalog {
		if p.ID == id {
			return p, nil
		}
	}
	return Plan{}, apperr.ErrInvalidInput
}
