package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QuoteLine is one priced position on a quote. A nil ItemID marks a custom
// free-text line, which never consumes stock. Lines sharing a PackageGroupID
// were expanded from one package purchase and form a single priced unit on
// documents.
type QuoteLine struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	QuoteID    uuid.UUID  `gorm:"column:quote_id;type:uuid;not null;index"`
	ItemID     *uuid.UUID `gorm:"column:item_id;type:uuid;index"`
	CustomName *string    `gorm:"column:custom_name"`

	Quantity    int             `gorm:"column:quantity;not null"`
	PricePerDay decimal.Decimal `gorm:"column:price_per_day;type:numeric(12,2);not null"`
	// CostPerDay is the blended external supply cost stamped when the line
	// was added or last edited.
	CostPerDay     decimal.Decimal `gorm:"column:cost_per_day;type:numeric(12,2);not null;default:0"`
	DiscountExempt bool            `gorm:"column:discount_exempt;not null;default:false"`
	PackageGroupID *uuid.UUID      `gorm:"column:package_group_id;type:uuid;index"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// IsCustom reports whether the line is a free-text position without stock.
func (l QuoteLine) IsCustom() bool {
	return l.ItemID == nil
}
