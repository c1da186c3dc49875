package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/yniverz/erp-rent-backend/pkg/errors"
)

var hundred = decimal.NewFromInt(100)

// RentalDays derives the billable day count: an explicit override wins, then
// the inclusive span between both dates (at least 1), then 1.
func RentalDays(override *int, start, end *time.Time) (int, error) {
	if override != nil {
		if *override <= 0 {
			return 0, pkgerrors.New(pkgerrors.CodeValidation, "rental days override must be positive")
		}
		return *override, nil
	}
	if start != nil && end != nil {
		days := int(end.Sub(*start).Hours()/24) + 1
		if days < 1 {
			days = 1
		}
		return days, nil
	}
	return 1, nil
}

// LineTotal prices one position: round(quantity * pricePerDay * rentalDays, 2).
// Rounding happens per line, not at the aggregate, to match currency-exact
// invoicing.
func LineTotal(quantity int, pricePerDay decimal.Decimal, rentalDays int) (decimal.Decimal, error) {
	if quantity <= 0 {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "line quantity must be positive")
	}
	if rentalDays <= 0 {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "rental days must be positive")
	}
	return pricePerDay.
		Mul(decimal.NewFromInt(int64(quantity))).
		Mul(decimal.NewFromInt(int64(rentalDays))).
		Round(2), nil
}

// Line is the priced view of a quote line the financial model consumes.
type Line struct {
	Quantity       int
	PricePerDay    decimal.Decimal
	DiscountExempt bool
}

// Totals is the quote-level financial breakdown.
type Totals struct {
	RentalDays           int
	LineTotals           []decimal.Decimal
	Subtotal             decimal.Decimal
	DiscountableSubtotal decimal.Decimal
	DiscountAmount       decimal.Decimal
	Total                decimal.Decimal
}

// ComputeTotals derives subtotal, discount and total for the given lines.
// The percentage discount only ever applies to non-exempt lines.
func ComputeTotals(lines []Line, discountPercent decimal.Decimal, rentalDays int) (Totals, error) {
	if rentalDays <= 0 {
		return Totals{}, pkgerrors.New(pkgerrors.CodeValidation, "rental days must be positive")
	}
	if discountPercent.IsNegative() || discountPercent.GreaterThan(hundred) {
		return Totals{}, pkgerrors.New(pkgerrors.CodeValidation, "discount percent must be within [0, 100]")
	}

	totals := Totals{RentalDays: rentalDays, LineTotals: make([]decimal.Decimal, 0, len(lines))}
	subtotal := decimal.Zero
	discountable := decimal.Zero
	for _, line := range lines {
		lineTotal, err := LineTotal(line.Quantity, line.PricePerDay, rentalDays)
		if err != nil {
			return Totals{}, err
		}
		totals.LineTotals = append(totals.LineTotals, lineTotal)
		subtotal = subtotal.Add(lineTotal)
		if !line.DiscountExempt {
			discountable = discountable.Add(lineTotal)
		}
	}

	totals.Subtotal = subtotal.Round(2)
	totals.DiscountableSubtotal = discountable.Round(2)
	totals.DiscountAmount = totals.DiscountableSubtotal.Mul(discountPercent).Div(hundred).Round(2)
	totals.Total = totals.Subtotal.Sub(totals.DiscountAmount).Round(2)
	return totals, nil
}

// RecognizedRevenue is the amount booked against an item when a line is paid:
// the full line total for discount-exempt lines, otherwise the line total
// scaled by (100 - discountPercent) / 100, cent-rounded.
func RecognizedRevenue(lineTotal decimal.Decimal, discountPercent decimal.Decimal, discountExempt bool) decimal.Decimal {
	if discountExempt {
		return lineTotal.Round(2)
	}
	multiplier := hundred.Sub(discountPercent).Div(hundred)
	return lineTotal.Mul(multiplier).Round(2)
}
