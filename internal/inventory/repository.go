package inventory

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yniverz/erp-rent-backend/internal/availability"
	"github.com/yniverz/erp-rent-backend/pkg/db/models"
	"github.com/yniverz/erp-rent-backend/pkg/enums"
)

// ItemRepository defines persistence operations for rentable items and their
// ownership and package structure.
type ItemRepository interface {
	WithTx(tx *gorm.DB) ItemRepository
	CreateItem(ctx context.Context, item *models.Item) (*models.Item, error)
	UpdateItem(ctx context.Context, item *models.Item) (*models.Item, error)
	DeleteItem(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Item, error)
	ListItems(ctx context.Context) ([]models.Item, error)
	CreateOwnershipRecord(ctx context.Context, record *models.OwnershipRecord) (*models.OwnershipRecord, error)
	DeleteOwnershipRecord(ctx context.Context, id uuid.UUID) error
	FindOwnershipRecord(ctx context.Context, id uuid.UUID) (*models.OwnershipRecord, error)
	ReplaceComponents(ctx context.Context, packageID uuid.UUID, components []models.PackageComponent) error
	CountComponentUsage(ctx context.Context, itemID uuid.UUID) (int64, error)
	CountLineUsage(ctx context.Context, itemID uuid.UUID) (int64, error)
	ReservationSnapshot(ctx context.Context, statuses []enums.QuoteStatus) ([]availability.Reservation, error)
}

// Repository is the GORM-backed ItemRepository.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) ItemRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

func (r *Repository) CreateItem(ctx context.Context, item *models.Item) (*models.Item, error) {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

func (r *Repository) UpdateItem(ctx context.Context, item *models.Item) (*models.Item, error) {
	if err := r.db.WithContext(ctx).
		Model(item).
		Omit("OwnershipRecords", "Components").
		Updates(map[string]any{
			"name":                  item.Name,
			"is_package":            item.IsPackage,
			"default_price_per_day": item.DefaultPricePerDay,
			"rental_step":           item.RentalStep,
		}).Error; err != nil {
		return nil, err
	}
	return item, nil
}

func (r *Repository) DeleteItem(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Item{}, "id = ?", id).Error
}

// FindByID loads the item with its ownership records and components.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	var item models.Item
	if err := r.db.WithContext(ctx).
		Preload("OwnershipRecords").
		Preload("Components").
		First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *Repository) ListItems(ctx context.Context) ([]models.Item, error) {
	var items []models.Item
	if err := r.db.WithContext(ctx).
		Preload("OwnershipRecords").
		Preload("Components").
		Order("name ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *Repository) CreateOwnershipRecord(ctx context.Context, record *models.OwnershipRecord) (*models.OwnershipRecord, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

func (r *Repository) DeleteOwnershipRecord(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.OwnershipRecord{}, "id = ?", id).Error
}

func (r *Repository) FindOwnershipRecord(ctx context.Context, id uuid.UUID) (*models.OwnershipRecord, error) {
	var record models.OwnershipRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// ReplaceComponents swaps the full component list of a package.
func (r *Repository) ReplaceComponents(ctx context.Context, packageID uuid.UUID, components []models.PackageComponent) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("package_id = ?", packageID).Delete(&models.PackageComponent{}).Error; err != nil {
		return err
	}
	if len(components) == 0 {
		return nil
	}
	for i := range components {
		if components[i].ID == uuid.Nil {
			components[i].ID = uuid.New()
		}
	}
	return tx.Create(&components).Error
}

// CountComponentUsage reports how many packages reference the item as a
// component.
func (r *Repository) CountComponentUsage(ctx context.Context, itemID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.PackageComponent{}).
		Where("component_item_id = ?", itemID).
		Count(&count).Error
	return count, err
}

// CountLineUsage reports how many quote lines reference the item.
func (r *Repository) CountLineUsage(ctx context.Context, itemID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.QuoteLine{}).
		Where("item_id = ?", itemID).
		Count(&count).Error
	return count, err
}

// ReservationSnapshot loads every dated quote in one of the given statuses
// together with its stock-consuming lines. Custom lines are skipped at the
// query level.
func (r *Repository) ReservationSnapshot(ctx context.Context, statuses []enums.QuoteStatus) ([]availability.Reservation, error) {
	var quotes []models.Quote
	if err := r.db.WithContext(ctx).
		Preload("Lines", "item_id IS NOT NULL").
		Where("status IN ?", statuses).
		Where("start_date IS NOT NULL AND end_date IS NOT NULL").
		Find(&quotes).Error; err != nil {
		return nil, err
	}

	reservations := make([]availability.Reservation, 0, len(quotes))
	for _, quote := range quotes {
		res := availability.Reservation{
			ID:        quote.ID,
			StartDate: *quote.StartDate,
			EndDate:   *quote.EndDate,
		}
		for _, line := range quote.Lines {
			res.Lines = append(res.Lines, availability.ReservationLine{
				ItemID:   *line.ItemID,
				Quantity: line.Quantity,
			})
		}
		reservations = append(reservations, res)
	}
	return reservations, nil
}
