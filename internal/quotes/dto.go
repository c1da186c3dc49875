package quotes

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yniverz/erp-rent-backend/pkg/db/models"
)

// QuoteDTO represents a quote payload returned to clients.
type QuoteDTO struct {
	ID                 uuid.UUID       `json:"id"`
	Reference          string          `json:"reference"`
	CustomerName       string          `json:"customer_name"`
	RecipientLines     string          `json:"recipient_lines,omitempty"`
	StartDate          *time.Time      `json:"start_date,omitempty"`
	EndDate            *time.Time      `json:"end_date,omitempty"`
	RentalDaysOverride *int            `json:"rental_days_override,omitempty"`
	DiscountPercent    decimal.Decimal `json:"discount_percent"`
	DiscountLabel      *string         `json:"discount_label,omitempty"`
	TaxMode            string          `json:"tax_mode"`
	TaxRate            decimal.Decimal `json:"tax_rate"`
	Status             string          `json:"status"`
	FinalizedAt        *time.Time      `json:"finalized_at,omitempty"`
	PaidAt             *time.Time      `json:"paid_at,omitempty"`
	Notes              string          `json:"notes,omitempty"`
	Lines              []QuoteLineDTO  `json:"lines"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// QuoteListDTO is one page of quotes plus the cursor for the next page.
type QuoteListDTO struct {
	Quotes     []QuoteDTO `json:"quotes"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

// QuoteLineDTO represents one priced position.
type QuoteLineDTO struct {
	ID             uuid.UUID       `json:"id"`
	ItemID         *uuid.UUID      `json:"item_id,omitempty"`
	CustomName     *string         `json:"custom_name,omitempty"`
	Quantity       int             `json:"quantity"`
	PricePerDay    decimal.Decimal `json:"price_per_day"`
	CostPerDay     decimal.Decimal `json:"cost_per_day"`
	DiscountExempt bool            `json:"discount_exempt"`
	PackageGroupID *uuid.UUID      `json:"package_group_id,omitempty"`
}

// TotalsDTO is the financial summary of a quote at a point in time.
type TotalsDTO struct {
	RentalDays           int               `json:"rental_days"`
	LineTotals           []LineTotalDTO    `json:"line_totals"`
	Subtotal             decimal.Decimal   `json:"subtotal"`
	DiscountableSubtotal decimal.Decimal   `json:"discountable_subtotal"`
	DiscountAmount       decimal.Decimal   `json:"discount_amount"`
	Total                decimal.Decimal   `json:"total"`
	Tax                  *TaxBreakdownDTO  `json:"tax,omitempty"`
}

// LineTotalDTO pairs a line with its gross total and, when the quote is
// taxed, its exact net share.
type LineTotalDTO struct {
	LineID     uuid.UUID        `json:"line_id"`
	GrossTotal decimal.Decimal  `json:"gross_total"`
	NetShare   *decimal.Decimal `json:"net_share,omitempty"`
}

// TaxBreakdownDTO is the tax-itemized view of the quote totals.
type TaxBreakdownDTO struct {
	TaxRate     decimal.Decimal `json:"tax_rate"`
	NetSubtotal decimal.Decimal `json:"net_subtotal"`
	NetDiscount decimal.Decimal `json:"net_discount"`
	NetTotal    decimal.Decimal `json:"net_total"`
	TaxAmount   decimal.Decimal `json:"tax_amount"`
}

// FinalizeResultDTO carries the transitioned quote plus any overbook
// warnings that did not block the transition.
type FinalizeResultDTO struct {
	Quote    *QuoteDTO `json:"quote"`
	Warnings []string  `json:"warnings,omitempty"`
}

// NewQuoteDTO builds a DTO from the persisted model.
func NewQuoteDTO(quote *models.Quote) *QuoteDTO {
	dto := &QuoteDTO{
		ID:                 quote.ID,
		Reference:          quote.Reference,
		CustomerName:       quote.CustomerName,
		RecipientLines:     quote.RecipientLines,
		StartDate:          quote.StartDate,
		EndDate:            quote.EndDate,
		RentalDaysOverride: quote.RentalDaysOverride,
		DiscountPercent:    quote.DiscountPercent,
		DiscountLabel:      quote.DiscountLabel,
		TaxMode:            string(quote.TaxMode),
		TaxRate:            quote.TaxRate,
		Status:             string(quote.Status),
		FinalizedAt:        quote.FinalizedAt,
		PaidAt:             quote.PaidAt,
		Notes:              quote.Notes,
		Lines:              make([]QuoteLineDTO, len(quote.Lines)),
		CreatedAt:          quote.CreatedAt,
		UpdatedAt:          quote.UpdatedAt,
	}
	for i, line := range quote.Lines {
		dto.Lines[i] = QuoteLineDTO{
			ID:             line.ID,
			ItemID:         line.ItemID,
			CustomName:     line.CustomName,
			Quantity:       line.Quantity,
			PricePerDay:    line.PricePerDay,
			CostPerDay:     line.CostPerDay,
			DiscountExempt: line.DiscountExempt,
			PackageGroupID: line.PackageGroupID,
		}
	}
	return dto
}
