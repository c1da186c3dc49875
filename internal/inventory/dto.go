package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yniverz/erp-rent-backend/pkg/db/models"
)

// ItemDTO represents an inventory item payload returned to clients. The
// total quantity is always derived from the ownership records.
type ItemDTO struct {
	ID                 uuid.UUID            `json:"id"`
	Name               string               `json:"name"`
	IsPackage          bool                 `json:"is_package"`
	DefaultPricePerDay decimal.Decimal      `json:"default_price_per_day"`
	RentalStep         int                  `json:"rental_step"`
	TotalQuantity      int                  `json:"total_quantity"`
	OwnershipRecords   []OwnershipRecordDTO `json:"ownership_records,omitempty"`
	Components         []ComponentDTO       `json:"components,omitempty"`
	CreatedAt          time.Time            `json:"created_at"`
	UpdatedAt          time.Time            `json:"updated_at"`
}

// OwnershipRecordDTO exposes one stakeholder's stake in an item.
type OwnershipRecordDTO struct {
	ID                  uuid.UUID        `json:"id"`
	Stakeholder         string           `json:"stakeholder"`
	Quantity            int              `json:"quantity"`
	IsExternal          bool             `json:"is_external"`
	ExternalPricePerDay *decimal.Decimal `json:"external_price_per_day,omitempty"`
	PurchaseCost        decimal.Decimal  `json:"purchase_cost"`
	CreatedAt           time.Time        `json:"created_at"`
}

// ComponentDTO binds a component item into a package payload.
type ComponentDTO struct {
	ID                 uuid.UUID `json:"id"`
	ComponentItemID    uuid.UUID `json:"component_item_id"`
	QuantityPerPackage int       `json:"quantity_per_package"`
}

// PayoffEntryDTO compares one item's acquisition cost against the revenue it
// has recognized so far.
type PayoffEntryDTO struct {
	ItemID            uuid.UUID       `json:"item_id"`
	Name              string          `json:"name"`
	PurchaseCost      decimal.Decimal `json:"purchase_cost"`
	RecognizedRevenue decimal.Decimal `json:"recognized_revenue"`
	Balance           decimal.Decimal `json:"balance"`
	PaidOff           bool            `json:"paid_off"`
}

// NewItemDTO builds a DTO from the persisted model.
func NewItemDTO(item *models.Item) *ItemDTO {
	dto := &ItemDTO{
		ID:                 item.ID,
		Name:               item.Name,
		IsPackage:          item.IsPackage,
		DefaultPricePerDay: item.DefaultPricePerDay,
		RentalStep:         item.RentalStep,
		TotalQuantity:      EffectiveTotalQuantity(item.OwnershipRecords),
		CreatedAt:          item.CreatedAt,
		UpdatedAt:          item.UpdatedAt,
	}

	if len(item.OwnershipRecords) > 0 {
		dto.OwnershipRecords = make([]OwnershipRecordDTO, len(item.OwnershipRecords))
		for i, record := range item.OwnershipRecords {
			dto.OwnershipRecords[i] = OwnershipRecordDTO{
				ID:                  record.ID,
				Stakeholder:         record.Stakeholder,
				Quantity:            record.Quantity,
				IsExternal:          record.IsExternal(),
				ExternalPricePerDay: record.ExternalPricePerDay,
				PurchaseCost:        record.PurchaseCost,
				CreatedAt:           record.CreatedAt,
			}
		}
	}

	if len(item.Components) > 0 {
		dto.Components = make([]ComponentDTO, len(item.Components))
		for i, comp := range item.Components {
			dto.Components[i] = ComponentDTO{
				ID:                 comp.ID,
				ComponentItemID:    comp.ComponentItemID,
				QuantityPerPackage: comp.QuantityPerPackage,
			}
		}
	}

	return dto
}
