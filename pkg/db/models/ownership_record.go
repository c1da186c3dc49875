package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UnlimitedQuantity marks an ownership record (and by extension an item) as
// having no stock ceiling.
const UnlimitedQuantity = -1

// OwnershipRecord is one stakeholder's stake in an item's supply. A set
// ExternalPricePerDay makes the record an external provider; external stock
// never counts toward the item's own total and is only tapped once internal
// stock is exhausted.
type OwnershipRecord struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ItemID      uuid.UUID `gorm:"column:item_id;type:uuid;not null;index"`
	Stakeholder string    `gorm:"column:stakeholder;not null"`
	// Quantity is the units this stakeholder contributes; UnlimitedQuantity
	// means no ceiling.
	Quantity           int              `gorm:"column:quantity;not null;default:0"`
	ExternalPricePerDay *decimal.Decimal `gorm:"column:external_price_per_day;type:numeric(12,2)"`
	// PurchaseCost is the record's total acquisition cost and only meaningful
	// for internal records.
	PurchaseCost decimal.Decimal `gorm:"column:purchase_cost;type:numeric(12,2);not null;default:0"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// IsExternal reports whether the record belongs to an external provider.
func (r OwnershipRecord) IsExternal() bool {
	return r.ExternalPricePerDay != nil
}

// IsUnlimited reports whether the record carries unlimited stock.
func (r OwnershipRecord) IsUnlimited() bool {
	return r.Quantity == UnlimitedQuantity
}
