package model

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"artgen/internal/app/apperr"
)

func TestPlanByID(t *testing.T) {
	p, err := PlanByID("Advanced")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if p.Credits != 500 {
		t.Errorf("credits: want 500, got %d", p.Credits)
	}
	if !p.Amount.Equal(decimal.NewFromInt(50)) {
		t.Errorf("amount: want 50, got %s", p.Amount)
	}
}

func TestPlanByID_Unknown(t *testing.T) {
	if _, err := PlanByID("Platinum"); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Fatalf("want ErrInvalidInput, got %v", err)
	}
}

func TestPlans(t *testing.T) {
	plans := Plans()
	if len(plans) != 3 {
		t.Fatalf("catalog size: want 3, got %d", len(plans))
	}

	// Callers must not be able to rewrite the catalog.
	plans[0].Credits = 0
	again, err := PlanByID(plans[0].ID)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if again.Credits == 0 {
		t.Error("catalog mutated through Plans() result")
	}
}
