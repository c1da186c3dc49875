package quotes

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yniverz/erp-rent-backend/pkg/db/models"
	"github.com/yniverz/erp-rent-backend/pkg/pagination"
)

// QuoteRepository defines persistence operations for quotes and their lines.
type QuoteRepository interface {
	WithTx(tx *gorm.DB) QuoteRepository
	Create(ctx context.Context, quote *models.Quote) (*models.Quote, error)
	Update(ctx context.Context, quote *models.Quote) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Quote, error)
	List(ctx context.Context, params pagination.Params) ([]models.Quote, string, error)
	CountByYear(ctx context.Context, year int) (int64, error)
	CreateLines(ctx context.Context, lines []models.QuoteLine) error
	UpdateLine(ctx context.Context, line *models.QuoteLine) error
	DeleteLines(ctx context.Context, quoteID uuid.UUID, lineIDs []uuid.UUID) error
}

// Repository is the GORM-backed QuoteRepository.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) QuoteRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

func (r *Repository) Create(ctx context.Context, quote *models.Quote) (*models.Quote, error) {
	if quote.ID == uuid.Nil {
		quote.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(quote).Error; err != nil {
		return nil, err
	}
	return quote, nil
}

func (r *Repository) Update(ctx context.Context, quote *models.Quote) error {
	return r.db.WithContext(ctx).
		Model(quote).
		Omit("Lines").
		Updates(map[string]any{
			"customer_name":        quote.CustomerName,
			"recipient_lines":      quote.RecipientLines,
			"start_date":           quote.StartDate,
			"end_date":             quote.EndDate,
			"rental_days_override": quote.RentalDaysOverride,
			"discount_percent":     quote.DiscountPercent,
			"discount_label":       quote.DiscountLabel,
			"tax_mode":             quote.TaxMode,
			"tax_rate":             quote.TaxRate,
			"status":               quote.Status,
			"finalized_at":         quote.FinalizedAt,
			"paid_at":              quote.PaidAt,
			"notes":                quote.Notes,
		}).Error
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Quote{}, "id = ?", id).Error
}

// FindByID loads the quote with its lines in insertion order.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Quote, error) {
	var quote models.Quote
	if err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&quote, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &quote, nil
}

// List returns quotes newest first, keyed by a created_at/id cursor. The
// second return value is the cursor for the next page, empty on the last one.
func (r *Repository) List(ctx context.Context, params pagination.Params) ([]models.Quote, string, error) {
	limit := pagination.NormalizeLimit(params.Limit)
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", err
	}

	query := r.db.WithContext(ctx).
		Preload("Lines").
		Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit))
	if cursor != nil {
		query = query.Where(
			"created_at < ? OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var quotes []models.Quote
	if err := query.Find(&quotes).Error; err != nil {
		return nil, "", err
	}

	next := ""
	if len(quotes) > limit {
		quotes = quotes[:limit]
		last := quotes[len(quotes)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return quotes, next, nil
}

// CountByYear feeds reference number generation.
func (r *Repository) CountByYear(ctx context.Context, year int) (int64, error) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(1, 0, 0)

	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Quote{}).
		Where("created_at >= ? AND created_at < ?", from, to).
		Count(&count).Error
	return count, err
}

func (r *Repository) CreateLines(ctx context.Context, lines []models.QuoteLine) error {
	if len(lines) == 0 {
		return nil
	}
	for i := range lines {
		if lines[i].ID == uuid.Nil {
			lines[i].ID = uuid.New()
		}
	}
	return r.db.WithContext(ctx).Create(&lines).Error
}

func (r *Repository) UpdateLine(ctx context.Context, line *models.QuoteLine) error {
	return r.db.WithContext(ctx).
		Model(line).
		Updates(map[string]any{
			"quantity":        line.Quantity,
			"price_per_day":   line.PricePerDay,
			"cost_per_day":    line.CostPerDay,
			"discount_exempt": line.DiscountExempt,
			"custom_name":     line.CustomName,
		}).Error
}

func (r *Repository) DeleteLines(ctx context.Context, quoteID uuid.UUID, lineIDs []uuid.UUID) error {
	if len(lineIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("quote_id = ? AND id IN ?", quoteID, lineIDs).
		Delete(&models.QuoteLine{}).Error
}
