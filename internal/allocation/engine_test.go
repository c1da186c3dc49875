package allocation

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yniverz/erp-rent-backend/pkg/db/models"
	pkgerrors "github.com/yniverz/erp-rent-backend/pkg/errors"
)

func price(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func TestBlendedExternalCost_SpecScenario(t *testing.T) {
	// Internal 5, provider A (3 @ 15), provider B (unlimited @ 20),
	// request 9: internal covers 5, A covers 3, B covers 1 -> 65/day.
	providerA := Provider{RecordID: uuid.New(), Stakeholder: "A", Quantity: 3, PricePerDay: price("15")}
	providerB := Provider{RecordID: uuid.New(), Stakeholder: "B", Quantity: models.UnlimitedQuantity, PricePerDay: price("20")}

	total, breakdown, err := BlendedExternalCost(5, []Provider{providerB, providerA}, 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !total.Equal(price("65")) {
		t.Fatalf("expected 65/day, got %s", total)
	}
	if len(breakdown) != 2 {
		t.Fatalf("expected 2 allocations, got %d", len(breakdown))
	}
	if breakdown[0].Provider.Stakeholder != "A" || breakdown[0].Quantity != 3 {
		t.Fatalf("cheapest provider should fill first: %+v", breakdown[0])
	}
	if breakdown[1].Provider.Stakeholder != "B" || breakdown[1].Quantity != 1 {
		t.Fatalf("remainder should land on the unlimited provider: %+v", breakdown[1])
	}
}

func TestBlendedExternalCost_InternalCovers(t *testing.T) {
	total, breakdown, err := BlendedExternalCost(10, []Provider{
		{RecordID: uuid.New(), Quantity: 5, PricePerDay: price("12")},
	}, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !total.IsZero() || breakdown != nil {
		t.Fatalf("fully internal request must cost nothing, got %s %v", total, breakdown)
	}
}

func TestBlendedExternalCost_UnlimitedInternal(t *testing.T) {
	total, breakdown, err := BlendedExternalCost(models.UnlimitedQuantity, nil, 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !total.IsZero() || breakdown != nil {
		t.Fatalf("unlimited internal stock must cost nothing, got %s %v", total, breakdown)
	}
}

func TestBlendedExternalCost_TieBreakIsDeterministic(t *testing.T) {
	low := Provider{RecordID: uuid.MustParse("00000000-0000-0000-0000-000000000001"), Stakeholder: "first", Quantity: 2, PricePerDay: price("15")}
	high := Provider{RecordID: uuid.MustParse("ffffffff-ffff-ffff-ffff-ffffffffffff"), Stakeholder: "second", Quantity: 2, PricePerDay: price("15")}

	for _, externals := range [][]Provider{{low, high}, {high, low}} {
		_, breakdown, err := BlendedExternalCost(0, externals, 3)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if breakdown[0].Provider.Stakeholder != "first" || breakdown[0].Quantity != 2 {
			t.Fatalf("tie must break by record id: %+v", breakdown)
		}
		if breakdown[1].Provider.Stakeholder != "second" || breakdown[1].Quantity != 1 {
			t.Fatalf("tie must break by record id: %+v", breakdown)
		}
	}
}

func TestBlendedExternalCost_CapacityExhausted(t *testing.T) {
	total, breakdown, err := BlendedExternalCost(1, []Provider{
		{RecordID: uuid.New(), Quantity: 2, PricePerDay: price("10")},
	}, 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Allocated quantities sum to min(needed, capacity).
	allocated := 0
	for _, a := range breakdown {
		allocated += a.Quantity
	}
	if allocated != 2 {
		t.Fatalf("expected 2 allocated units, got %d", allocated)
	}
	if !total.Equal(price("20")) {
		t.Fatalf("expected cost 20, got %s", total)
	}
}

func TestBlendedExternalCost_CostMonotonicInQuantity(t *testing.T) {
	externals := []Provider{
		{RecordID: uuid.New(), Quantity: 3, PricePerDay: price("15")},
		{RecordID: uuid.New(), Quantity: models.UnlimitedQuantity, PricePerDay: price("20")},
	}

	prev := decimal.Zero
	for needed := 1; needed <= 20; needed++ {
		total, _, err := BlendedExternalCost(5, externals, needed)
		if err != nil {
			t.Fatalf("unexpected error at %d: %v", needed, err)
		}
		if total.LessThan(prev) {
			t.Fatalf("cost decreased at quantity %d: %s < %s", needed, total, prev)
		}
		prev = total
	}
}

func TestBlendedExternalCost_RejectsNonPositiveQuantity(t *testing.T) {
	for _, needed := range []int{0, -4} {
		_, _, err := BlendedExternalCost(5, nil, needed)
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("expected validation error for quantity %d, got %v", needed, err)
		}
	}
}

func TestBlendedExternalCost_DoesNotMutateInput(t *testing.T) {
	externals := []Provider{
		{RecordID: uuid.New(), Stakeholder: "expensive", Quantity: 5, PricePerDay: price("30")},
		{RecordID: uuid.New(), Stakeholder: "cheap", Quantity: 5, PricePerDay: price("10")},
	}

	if _, _, err := BlendedExternalCost(0, externals, 6); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if externals[0].Stakeholder != "expensive" {
		t.Fatal("input slice order must stay untouched")
	}
}
