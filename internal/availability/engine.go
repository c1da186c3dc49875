package availability

import (
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/yniverz/erp-rent-backend/pkg/errors"
	"github.com/yniverz/erp-rent-backend/pkg/db/models"
)

// Unlimited is the sentinel availability for items without a stock ceiling.
const Unlimited = models.UnlimitedQuantity

// Reservation is the in-memory view of a competing quote the engine scans.
// The caller fetches the snapshot inside the same transaction as any write
// that depends on the result.
type Reservation struct {
	ID        uuid.UUID
	StartDate time.Time
	EndDate   time.Time
	Lines     []ReservationLine
}

// ReservationLine carries the stock-consuming part of a quote line. Custom
// lines never appear in a snapshot. Package-expanded lines do: a package
// component consumes real stock of its component item regardless of how it
// was purchased.
type ReservationLine struct {
	ItemID   uuid.UUID
	Quantity int
}

// AvailableQuantity computes how many units of the item remain free during
// the inclusive [start, end] range. totalQuantity is the item's effective
// total stock; Unlimited short-circuits to Unlimited. A reservation matching
// excludeID is skipped so a quote can be checked against itself while being
// edited.
func AvailableQuantity(itemID uuid.UUID, totalQuantity int, start, end time.Time, reservations []Reservation, excludeID uuid.UUID) int {
	if totalQuantity == Unlimited {
		return Unlimited
	}

	booked := 0
	for _, res := range reservations {
		if excludeID != uuid.Nil && res.ID == excludeID {
			continue
		}
		if !Overlaps(res.StartDate, res.EndDate, start, end) {
			continue
		}
		for _, line := range res.Lines {
			if line.ItemID == itemID {
				booked += line.Quantity
			}
		}
	}

	available := totalQuantity - booked
	if available < 0 {
		return 0
	}
	return available
}

// ComponentAvailability pairs one package component's own availability with
// the units one package consumes of it.
type ComponentAvailability struct {
	Available          int
	QuantityPerPackage int
}

// PackageAvailableQuantity bounds a package by its weakest component:
// floor(componentAvailable / quantityPerPackage), minimized across all
// constraining components. Unlimited components do not constrain; if none
// constrains the package itself is Unlimited. A package without components
// yields 0.
func PackageAvailableQuantity(components []ComponentAvailability) (int, error) {
	if len(components) == 0 {
		return 0, nil
	}

	min := Unlimited
	for _, comp := range components {
		if comp.QuantityPerPackage <= 0 {
			return 0, pkgerrors.New(pkgerrors.CodeInvalidAllocation, "package component quantity must be positive")
		}
		if comp.Available == Unlimited {
			continue
		}
		sets := comp.Available / comp.QuantityPerPackage
		if min == Unlimited || sets < min {
			min = sets
		}
	}
	return min, nil
}
