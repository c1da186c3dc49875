package models

import (
	"time"

	"github.com/google/uuid"
)

// PackageComponent binds a component item into a package with a fixed
// quantity per package unit.
type PackageComponent struct {
	ID                 uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PackageID          uuid.UUID `gorm:"column:package_id;type:uuid;not null;index"`
	ComponentItemID    uuid.UUID `gorm:"column:component_item_id;type:uuid;not null"`
	QuantityPerPackage int       `gorm:"column:quantity_per_package;not null"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
