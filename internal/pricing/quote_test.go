package pricing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/yniverz/erp-rent-backend/pkg/errors"
)

func money(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func intPtr(v int) *int { return &v }

func TestRentalDays(t *testing.T) {
	tests := []struct {
		name     string
		override *int
		start    *time.Time
		end      *time.Time
		want     int
	}{
		{name: "override wins over dates", override: intPtr(3), start: datePtr(2026, 5, 1), end: datePtr(2026, 5, 30), want: 3},
		{name: "inclusive span", start: datePtr(2026, 5, 1), end: datePtr(2026, 5, 3), want: 3},
		{name: "single day", start: datePtr(2026, 5, 1), end: datePtr(2026, 5, 1), want: 1},
		{name: "no dates defaults to one", want: 1},
		{name: "start only defaults to one", start: datePtr(2026, 5, 1), want: 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := RentalDays(tc.override, tc.start, tc.end)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("RentalDays = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestRentalDaysRejectsNonPositiveOverride(t *testing.T) {
	_, err := RentalDays(intPtr(0), nil, nil)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLineTotalRoundsPerLine(t *testing.T) {
	got, err := LineTotal(3, money("9.995"), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(money("59.97")) {
		t.Fatalf("expected 59.97, got %s", got)
	}
}

func TestLineTotalRejectsBadInputs(t *testing.T) {
	if _, err := LineTotal(0, money("10"), 1); pkgerrors.As(err) == nil {
		t.Fatal("expected validation error for zero quantity")
	}
	if _, err := LineTotal(1, money("10"), 0); pkgerrors.As(err) == nil {
		t.Fatal("expected validation error for zero rental days")
	}
}

func TestComputeTotals_DiscountExemptScenario(t *testing.T) {
	// One 50 line exempt, one 50 line not, 10% discount:
	// discountable 50, discount 5, total 95.
	totals, err := ComputeTotals([]Line{
		{Quantity: 1, PricePerDay: money("50"), DiscountExempt: true},
		{Quantity: 1, PricePerDay: money("50")},
	}, money("10"), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !totals.Subtotal.Equal(money("100")) {
		t.Fatalf("subtotal = %s", totals.Subtotal)
	}
	if !totals.DiscountableSubtotal.Equal(money("50")) {
		t.Fatalf("discountable subtotal = %s", totals.DiscountableSubtotal)
	}
	if !totals.DiscountAmount.Equal(money("5")) {
		t.Fatalf("discount = %s", totals.DiscountAmount)
	}
	if !totals.Total.Equal(money("95")) {
		t.Fatalf("total = %s", totals.Total)
	}
}

func TestComputeTotals_MultiDay(t *testing.T) {
	totals, err := ComputeTotals([]Line{
		{Quantity: 4, PricePerDay: money("12.50")},
	}, decimal.Zero, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !totals.Subtotal.Equal(money("150")) {
		t.Fatalf("subtotal = %s", totals.Subtotal)
	}
	if !totals.Total.Equal(money("150")) {
		t.Fatalf("total = %s", totals.Total)
	}
}

func TestComputeTotals_RejectsDiscountOutOfRange(t *testing.T) {
	_, err := ComputeTotals(nil, money("101"), 1)
	if pkgerrors.As(err) == nil {
		t.Fatal("expected validation error for discount > 100")
	}
	_, err = ComputeTotals(nil, money("-1"), 1)
	if pkgerrors.As(err) == nil {
		t.Fatal("expected validation error for negative discount")
	}
}

func TestRecognizedRevenue(t *testing.T) {
	lineTotal := money("150")

	if got := RecognizedRevenue(lineTotal, money("10"), false); !got.Equal(money("135")) {
		t.Fatalf("expected 135, got %s", got)
	}
	if got := RecognizedRevenue(lineTotal, money("10"), true); !got.Equal(money("150")) {
		t.Fatalf("exempt lines recognize in full, got %s", got)
	}
	// Cent rounding on awkward percentages.
	if got := RecognizedRevenue(money("33.33"), money("7.5"), false); !got.Equal(money("30.83")) {
		t.Fatalf("expected 30.83, got %s", got)
	}
}
