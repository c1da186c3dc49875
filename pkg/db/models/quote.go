package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yniverz/erp-rent-backend/pkg/enums"
)

// Quote is a time-boxed rental order and the financial aggregate the engine
// computes over. Both dates are inclusive; a quote without dates does not
// participate in availability checks.
type Quote struct {
	ID             uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Reference      string     `gorm:"column:reference;not null;uniqueIndex"`
	CustomerName   string     `gorm:"column:customer_name;not null"`
	RecipientLines string     `gorm:"column:recipient_lines"`
	StartDate      *time.Time `gorm:"column:start_date"`
	EndDate        *time.Time `gorm:"column:end_date"`
	// RentalDaysOverride wins over the date span when set.
	RentalDaysOverride *int `gorm:"column:rental_days_override"`

	DiscountPercent decimal.Decimal `gorm:"column:discount_percent;type:numeric(7,4);not null;default:0"`
	DiscountLabel   *string         `gorm:"column:discount_label"`
	TaxMode         enums.TaxMode   `gorm:"column:tax_mode;not null;default:'exempt'"`
	TaxRate         decimal.Decimal `gorm:"column:tax_rate;type:numeric(5,2);not null;default:19"`

	Status      enums.QuoteStatus `gorm:"column:status;not null;default:'draft'"`
	FinalizedAt *time.Time        `gorm:"column:finalized_at"`
	PaidAt      *time.Time        `gorm:"column:paid_at"`
	Notes       string            `gorm:"column:notes"`

	Lines []QuoteLine `gorm:"foreignKey:QuoteID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
