package allocation

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yniverz/erp-rent-backend/pkg/db/models"
	pkgerrors "github.com/yniverz/erp-rent-backend/pkg/errors"
)

// Provider is one external supply source. Quantity uses the same unlimited
// sentinel as ownership records.
type Provider struct {
	RecordID    uuid.UUID
	Stakeholder string
	Quantity    int
	PricePerDay decimal.Decimal
}

// Allocation records how many units were drawn from one provider. Providers
// with zero allocation never appear in a breakdown.
type Allocation struct {
	Provider Provider
	Quantity int
}

// BlendedExternalCost covers quantityNeeded from internal stock first, then
// fills the shortfall greedily from the cheapest external providers. Ties on
// price break by record ID so the allocation is deterministic. The returned
// cost is per day; callers multiply by rental days.
//
// Greedy by unit price is optimal here: a single resource with linear
// per-unit cost.
func BlendedExternalCost(internalQuantity int, externals []Provider, quantityNeeded int) (decimal.Decimal, []Allocation, error) {
	if quantityNeeded <= 0 {
		return decimal.Zero, nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity needed must be positive")
	}

	if internalQuantity == models.UnlimitedQuantity {
		return decimal.Zero, nil, nil
	}

	shortfall := quantityNeeded - internalQuantity
	if shortfall <= 0 {
		return decimal.Zero, nil, nil
	}

	// Inputs stay read-only; sort a copy.
	sorted := make([]Provider, len(externals))
	copy(sorted, externals)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].PricePerDay.Equal(sorted[j].PricePerDay) {
			return sorted[i].PricePerDay.LessThan(sorted[j].PricePerDay)
		}
		return sorted[i].RecordID.String() < sorted[j].RecordID.String()
	})

	total := decimal.Zero
	var breakdown []Allocation
	for _, provider := range sorted {
		if shortfall == 0 {
			break
		}

		allocated := shortfall
		if provider.Quantity != models.UnlimitedQuantity {
			if provider.Quantity <= 0 {
				continue
			}
			if provider.Quantity < allocated {
				allocated = provider.Quantity
			}
		}

		total = total.Add(provider.PricePerDay.Mul(decimal.NewFromInt(int64(allocated))))
		breakdown = append(breakdown, Allocation{Provider: provider, Quantity: allocated})
		shortfall -= allocated
	}

	return total.Round(2), breakdown, nil
}
