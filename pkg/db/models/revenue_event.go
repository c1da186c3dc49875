package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yniverz/erp-rent-backend/pkg/enums"
)

// RevenueEvent records an immutable revenue recognition (or its reversal)
// for one quote line against one item. Reversals re-use the amount stored
// here rather than recomputing from the quote, so unpay stays exact even
// after discount or exemption edits.
type RevenueEvent struct {
	ID          uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	QuoteID     uuid.UUID              `gorm:"column:quote_id;type:uuid;not null;index"`
	QuoteLineID uuid.UUID              `gorm:"column:quote_line_id;type:uuid;not null"`
	ItemID      *uuid.UUID             `gorm:"column:item_id;type:uuid;index"`
	Type        enums.RevenueEventType `gorm:"column:type;not null"`
	Amount      decimal.Decimal        `gorm:"column:amount;type:numeric(12,2);not null"`
	CreatedAt   time.Time              `gorm:"column:created_at;autoCreateTime"`
}
