package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/yniverz/erp-rent-backend/pkg/db/models"
	"github.com/yniverz/erp-rent-backend/pkg/enums"
)

// Repository manages persistence for revenue events.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, event *models.RevenueEvent) error
	CreateBatch(ctx context.Context, events []models.RevenueEvent) error
	ListByQuoteID(ctx context.Context, quoteID uuid.UUID) ([]models.RevenueEvent, error)
	SumByItemID(ctx context.Context, itemID uuid.UUID) (decimal.Decimal, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a revenue ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, event *models.RevenueEvent) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *repository) CreateBatch(ctx context.Context, events []models.RevenueEvent) error {
	if len(events) == 0 {
		return nil
	}
	for i := range events {
		if events[i].ID == uuid.Nil {
			events[i].ID = uuid.New()
		}
	}
	return r.db.WithContext(ctx).Create(&events).Error
}

func (r *repository) ListByQuoteID(ctx context.Context, quoteID uuid.UUID) ([]models.RevenueEvent, error) {
	var events []models.RevenueEvent
	if err := r.db.WithContext(ctx).
		Where("quote_id = ?", quoteID).
		Order("created_at ASC").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// SumByItemID nets recognitions against reversals for one item. Reversal
// amounts are stored positive, so the signs are applied here.
func (r *repository) SumByItemID(ctx context.Context, itemID uuid.UUID) (decimal.Decimal, error) {
	var events []models.RevenueEvent
	if err := r.db.WithContext(ctx).
		Where("item_id = ?", itemID).
		Find(&events).Error; err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, event := range events {
		switch event.Type {
		case enums.RevenueEventTypeReversed:
			total = total.Sub(event.Amount)
		default:
			total = total.Add(event.Amount)
		}
	}
	return total, nil
}
