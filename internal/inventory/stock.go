package inventory

import (
	"github.com/yniverz/erp-rent-backend/internal/allocation"
	"github.com/yniverz/erp-rent-backend/pkg/db/models"
)

// EffectiveTotalQuantity derives an item's total stock from its ownership
// records. Internal quantities sum; one unlimited internal record makes the
// whole item unlimited. External records never add to the total, except that
// an item with no internal records at all and an unlimited external provider
// is itself unlimited.
func EffectiveTotalQuantity(records []models.OwnershipRecord) int {
	total := 0
	internalSeen := false
	externalUnlimited := false
	for _, record := range records {
		if record.IsExternal() {
			if record.IsUnlimited() {
				externalUnlimited = true
			}
			continue
		}
		internalSeen = true
		if record.IsUnlimited() {
			return models.UnlimitedQuantity
		}
		total += record.Quantity
	}
	if !internalSeen && externalUnlimited {
		return models.UnlimitedQuantity
	}
	return total
}

// InternalQuantity sums only the internal records, with the same unlimited
// short-circuit as EffectiveTotalQuantity.
func InternalQuantity(records []models.OwnershipRecord) int {
	total := 0
	for _, record := range records {
		if record.IsExternal() {
			continue
		}
		if record.IsUnlimited() {
			return models.UnlimitedQuantity
		}
		total += record.Quantity
	}
	return total
}

// ExternalProviders projects the external ownership records into the shape
// the cost allocation engine consumes.
func ExternalProviders(records []models.OwnershipRecord) []allocation.Provider {
	var providers []allocation.Provider
	for _, record := range records {
		if !record.IsExternal() {
			continue
		}
		providers = append(providers, allocation.Provider{
			RecordID:    record.ID,
			Stakeholder: record.Stakeholder,
			Quantity:    record.Quantity,
			PricePerDay: *record.ExternalPricePerDay,
		})
	}
	return providers
}
