package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Item is a rentable inventory item. Its effective total quantity is derived
// from the internal ownership records at read time, never stored here.
// A package item owns components instead of ownership records.
type Item struct {
	ID                uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name              string          `gorm:"column:name;not null"`
	IsPackage         bool            `gorm:"column:is_package;not null;default:false"`
	DefaultPricePerDay decimal.Decimal `gorm:"column:default_price_per_day;type:numeric(12,2);not null;default:0"`
	// RentalStep is the minimum rental increment; line quantities must be a
	// multiple of it.
	RentalStep int `gorm:"column:rental_step;not null;default:1"`

	OwnershipRecords []OwnershipRecord  `gorm:"foreignKey:ItemID;constraint:OnDelete:CASCADE"`
	Components       []PackageComponent `gorm:"foreignKey:PackageID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
