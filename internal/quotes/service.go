package quotes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/yniverz/erp-rent-backend/internal/allocation"
	"github.com/yniverz/erp-rent-backend/internal/inventory"
	"github.com/yniverz/erp-rent-backend/internal/ledger"
	"github.com/yniverz/erp-rent-backend/internal/pricing"
	"github.com/yniverz/erp-rent-backend/internal/tax"
	"github.com/yniverz/erp-rent-backend/pkg/config"
	"github.com/yniverz/erp-rent-backend/pkg/db"
	"github.com/yniverz/erp-rent-backend/pkg/db/models"
	"github.com/yniverz/erp-rent-backend/pkg/enums"
	pkgerrors "github.com/yniverz/erp-rent-backend/pkg/errors"
	"github.com/yniverz/erp-rent-backend/pkg/pagination"
)

// Service drives the quote lifecycle: drafting, line management, financial
// totals, finalization, payment and its exact reversal.
type Service interface {
	CreateQuote(ctx context.Context, input CreateQuoteInput) (*QuoteDTO, error)
	UpdateQuote(ctx context.Context, quoteID uuid.UUID, input UpdateQuoteInput) (*QuoteDTO, error)
	DeleteQuote(ctx context.Context, quoteID uuid.UUID) error
	GetQuote(ctx context.Context, quoteID uuid.UUID) (*QuoteDTO, error)
	ListQuotes(ctx context.Context, params pagination.Params) (*QuoteListDTO, error)
	AddItemLine(ctx context.Context, quoteID uuid.UUID, input AddItemLineInput) (*QuoteDTO, error)
	AddCustomLine(ctx context.Context, quoteID uuid.UUID, input AddCustomLineInput) (*QuoteDTO, error)
	UpdateLine(ctx context.Context, quoteID, lineID uuid.UUID, input UpdateLineInput) (*QuoteDTO, error)
	RemoveLine(ctx context.Context, quoteID, lineID uuid.UUID) (*QuoteDTO, error)
	Totals(ctx context.Context, quoteID uuid.UUID) (*TotalsDTO, error)
	Finalize(ctx context.Context, quoteID uuid.UUID) (*FinalizeResultDTO, error)
	Unfinalize(ctx context.Context, quoteID uuid.UUID) (*QuoteDTO, error)
	MarkPerformed(ctx context.Context, quoteID uuid.UUID) (*QuoteDTO, error)
	Pay(ctx context.Context, quoteID uuid.UUID) (*QuoteDTO, error)
	Unpay(ctx context.Context, quoteID uuid.UUID) (*QuoteDTO, error)
}

// CreateQuoteInput holds the validated payload to open a draft quote.
type CreateQuoteInput struct {
	CustomerName       string
	RecipientLines     string
	StartDate          *time.Time
	EndDate            *time.Time
	RentalDaysOverride *int
	TaxMode            enums.TaxMode
	TaxRate            *decimal.Decimal
	Notes              string
}

// UpdateQuoteInput holds optional mutation values for a draft quote.
type UpdateQuoteInput struct {
	CustomerName            *string
	RecipientLines          *string
	StartDate               *time.Time
	EndDate                 *time.Time
	ClearDates              bool
	RentalDaysOverride      *int
	ClearRentalDaysOverride bool
	DiscountPercent         *decimal.Decimal
	DiscountLabel           *string
	TaxMode                 *enums.TaxMode
	TaxRate                 *decimal.Decimal
	Notes                   *string
}

// AddItemLineInput attaches an inventory item (or package) to a quote.
type AddItemLineInput struct {
	ItemID         uuid.UUID
	Quantity       int
	PricePerDay    *decimal.Decimal
	DiscountExempt bool
}

// AddCustomLineInput attaches a free-text position that never consumes stock.
type AddCustomLineInput struct {
	Name           string
	Quantity       int
	PricePerDay    decimal.Decimal
	DiscountExempt bool
}

// UpdateLineInput holds optional mutation values for a single line.
type UpdateLineInput struct {
	Quantity       *int
	PricePerDay    *decimal.Decimal
	DiscountExempt *bool
	CustomName     *string
}

type inventoryGateway interface {
	GetItem(ctx context.Context, itemID uuid.UUID) (*inventory.ItemDTO, error)
	AvailableQuantity(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, start, end time.Time, excludeQuoteID uuid.UUID) (int, error)
	BlendedExternalCost(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, quantityNeeded int) (decimal.Decimal, []allocation.Allocation, error)
}

type revenueLedger interface {
	RecordEvents(ctx context.Context, tx *gorm.DB, inputs []ledger.RecordRevenueEventInput) ([]models.RevenueEvent, error)
	OpenRecognitions(ctx context.Context, tx *gorm.DB, quoteID uuid.UUID) ([]models.RevenueEvent, error)
}

type service struct {
	repo     QuoteRepository
	dbClient *db.Client
	items    inventoryGateway
	revenue  revenueLedger
	engine   config.EngineConfig
	now      func() time.Time
}

// NewService constructs a quote service instance.
func NewService(repo QuoteRepository, dbClient *db.Client, items inventoryGateway, revenue revenueLedger, engine config.EngineConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("quote repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if items == nil {
		return nil, fmt.Errorf("inventory gateway required")
	}
	if revenue == nil {
		return nil, fmt.Errorf("revenue ledger required")
	}
	return &service{
		repo:     repo,
		dbClient: dbClient,
		items:    items,
		revenue:  revenue,
		engine:   engine,
		now:      time.Now,
	}, nil
}

func (s *service) CreateQuote(ctx context.Context, input CreateQuoteInput) (*QuoteDTO, error) {
	customer := strings.TrimSpace(input.CustomerName)
	if customer == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer name is required")
	}
	if err := validateDates(input.StartDate, input.EndDate); err != nil {
		return nil, err
	}
	if input.RentalDaysOverride != nil && *input.RentalDaysOverride < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rental_days_override must be at least 1")
	}

	taxMode := input.TaxMode
	if taxMode == "" {
		taxMode = enums.TaxModeExempt
	}
	if !taxMode.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid tax mode")
	}
	taxRate := decimal.NewFromInt(19)
	if input.TaxRate != nil {
		taxRate = *input.TaxRate
	}
	if taxMode == enums.TaxModeStandard && (!taxRate.IsPositive() || taxRate.GreaterThanOrEqual(decimal.NewFromInt(100))) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tax rate must be within (0, 100)")
	}

	var created *models.Quote
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		year := s.now().Year()
		count, err := txRepo.CountByYear(ctx, year)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count quotes")
		}

		quote := &models.Quote{
			Reference:          fmt.Sprintf("Q-%d-%04d", year, count+1),
			CustomerName:       customer,
			RecipientLines:     input.RecipientLines,
			StartDate:          input.StartDate,
			EndDate:            input.EndDate,
			RentalDaysOverride: input.RentalDaysOverride,
			DiscountPercent:    decimal.Zero,
			TaxMode:            taxMode,
			TaxRate:            taxRate,
			Status:             enums.QuoteStatusDraft,
			Notes:              input.Notes,
		}
		created, err = txRepo.Create(ctx, quote)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert quote")
		}
		return nil
	}); err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create quote")
	}
	return NewQuoteDTO(created), nil
}

func (s *service) UpdateQuote(ctx context.Context, quoteID uuid.UUID, input UpdateQuoteInput) (*QuoteDTO, error) {
	quote, err := s.loadQuote(ctx, s.repo, quoteID)
	if err != nil {
		return nil, err
	}
	if err := ensureStatus(quote, enums.QuoteStatusDraft); err != nil {
		return nil, err
	}

	if input.CustomerName != nil {
		customer := strings.TrimSpace(*input.CustomerName)
		if customer == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer name is required")
		}
		quote.CustomerName = customer
	}
	if input.RecipientLines != nil {
		quote.RecipientLines = *input.RecipientLines
	}
	if input.ClearDates {
		quote.StartDate = nil
		quote.EndDate = nil
	} else {
		if input.StartDate != nil {
			quote.StartDate = input.StartDate
		}
		if input.EndDate != nil {
			quote.EndDate = input.EndDate
		}
		if err := validateDates(quote.StartDate, quote.EndDate); err != nil {
			return nil, err
		}
	}
	if input.ClearRentalDaysOverride {
		quote.RentalDaysOverride = nil
	} else if input.RentalDaysOverride != nil {
		if *input.RentalDaysOverride < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "rental_days_override must be at least 1")
		}
		quote.RentalDaysOverride = input.RentalDaysOverride
	}
	if input.DiscountPercent != nil {
		if input.DiscountPercent.IsNegative() || input.DiscountPercent.GreaterThan(decimal.NewFromInt(100)) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount_percent must be between 0 and 100")
		}
		quote.DiscountPercent = *input.DiscountPercent
	}
	if input.DiscountLabel != nil {
		quote.DiscountLabel = input.DiscountLabel
	}
	if input.TaxMode != nil {
		if !input.TaxMode.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid tax mode")
		}
		quote.TaxMode = *input.TaxMode
	}
	if input.TaxRate != nil {
		quote.TaxRate = *input.TaxRate
	}
	if quote.TaxMode == enums.TaxModeStandard && (!quote.TaxRate.IsPositive() || quote.TaxRate.GreaterThanOrEqual(decimal.NewFromInt(100))) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tax rate must be within (0, 100)")
	}
	if input.Notes != nil {
		quote.Notes = *input.Notes
	}

	if err := s.repo.Update(ctx, quote); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update quote")
	}
	return s.GetQuote(ctx, quoteID)
}

// DeleteQuote removes a quote. Deleting a paid quote first reverses its open
// revenue recognitions so the ledger stays balanced.
func (s *service) DeleteQuote(ctx context.Context, quoteID uuid.UUID) error {
	quote, err := s.loadQuote(ctx, s.repo, quoteID)
	if err != nil {
		return err
	}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		if quote.Status == enums.QuoteStatusPaid {
			if err := s.reverseRecognitions(ctx, tx, quote); err != nil {
				return err
			}
		}
		if err := s.repo.WithTx(tx).Delete(ctx, quoteID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete quote")
		}
		return nil
	}); err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return typed
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete quote")
	}
	return nil
}

func (s *service) GetQuote(ctx context.Context, quoteID uuid.UUID) (*QuoteDTO, error) {
	quote, err := s.loadQuote(ctx, s.repo, quoteID)
	if err != nil {
		return nil, err
	}
	return NewQuoteDTO(quote), nil
}

func (s *service) ListQuotes(ctx context.Context, params pagination.Params) (*QuoteListDTO, error) {
	if _, err := pagination.ParseCursor(params.Cursor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid pagination cursor")
	}
	quotes, next, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list quotes")
	}
	dtos := make([]QuoteDTO, len(quotes))
	for i := range quotes {
		dtos[i] = *NewQuoteDTO(&quotes[i])
	}
	return &QuoteListDTO{Quotes: dtos, NextCursor: next}, nil
}

// AddItemLine attaches an item to the quote. A package expands into one
// priced anchor line plus one stock-consuming line per component, all bound
// by a shared group id.
func (s *service) AddItemLine(ctx context.Context, quoteID uuid.UUID, input AddItemLineInput) (*QuoteDTO, error) {
	if input.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	quote, err := s.loadQuote(ctx, s.repo, quoteID)
	if err != nil {
		return nil, err
	}
	if err := ensureStatus(quote, enums.QuoteStatusDraft); err != nil {
		return nil, err
	}

	item, err := s.items.GetItem(ctx, input.ItemID)
	if err != nil {
		return nil, err
	}
	if item.RentalStep > 1 && input.Quantity%item.RentalStep != 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("quantity must be a multiple of %d", item.RentalStep))
	}

	price := item.DefaultPricePerDay
	if input.PricePerDay != nil {
		if input.PricePerDay.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price_per_day must not be negative")
		}
		price = *input.PricePerDay
	}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.ensureLineFits(ctx, tx, quote, item, input.Quantity); err != nil {
			return err
		}

		lines, err := s.buildItemLines(ctx, tx, quote, item, input.Quantity, price, input.DiscountExempt)
		if err != nil {
			return err
		}
		if err := s.repo.WithTx(tx).CreateLines(ctx, lines); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert quote lines")
		}
		return nil
	}); err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add item line")
	}
	return s.GetQuote(ctx, quoteID)
}

func (s *service) AddCustomLine(ctx context.Context, quoteID uuid.UUID, input AddCustomLineInput) (*QuoteDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "custom line name is required")
	}
	if input.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if input.PricePerDay.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price_per_day must not be negative")
	}

	quote, err := s.loadQuote(ctx, s.repo, quoteID)
	if err != nil {
		return nil, err
	}
	if err := ensureStatus(quote, enums.QuoteStatusDraft); err != nil {
		return nil, err
	}

	line := models.QuoteLine{
		QuoteID:        quoteID,
		CustomName:     &name,
		Quantity:       input.Quantity,
		PricePerDay:    input.PricePerDay,
		CostPerDay:     decimal.Zero,
		DiscountExempt: input.DiscountExempt,
	}
	if err := s.repo.CreateLines(ctx, []models.QuoteLine{line}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert quote line")
	}
	return s.GetQuote(ctx, quoteID)
}

func (s *service) UpdateLine(ctx context.Context, quoteID, lineID uuid.UUID, input UpdateLineInput) (*QuoteDTO, error) {
	quote, err := s.loadQuote(ctx, s.repo, quoteID)
	if err != nil {
		return nil, err
	}
	if err := ensureStatus(quote, enums.QuoteStatusDraft); err != nil {
		return nil, err
	}

	line := findLine(quote, lineID)
	if line == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "quote line not found")
	}
	if line.PackageGroupID != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "package lines are replaced as a group")
	}

	if input.Quantity != nil && *input.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if input.PricePerDay != nil && input.PricePerDay.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price_per_day must not be negative")
	}

	if line.IsCustom() {
		if input.CustomName != nil {
			name := strings.TrimSpace(*input.CustomName)
			if name == "" {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "custom line name is required")
			}
			line.CustomName = &name
		}
		applyLineUpdate(line, input)
		if err := s.repo.UpdateLine(ctx, line); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update quote line")
		}
		return s.GetQuote(ctx, quoteID)
	}

	item, err := s.items.GetItem(ctx, *line.ItemID)
	if err != nil {
		return nil, err
	}
	newQuantity := line.Quantity
	if input.Quantity != nil {
		newQuantity = *input.Quantity
	}
	if item.RentalStep > 1 && newQuantity%item.RentalStep != 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("quantity must be a multiple of %d", item.RentalStep))
	}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		if newQuantity != line.Quantity {
			extra := newQuantity - line.Quantity
			if extra > 0 {
				if err := s.ensureLineFits(ctx, tx, quote, item, extra); err != nil {
					return err
				}
			}
		}

		cost, _, err := s.items.BlendedExternalCost(ctx, tx, item.ID, newQuantity)
		if err != nil {
			return err
		}

		line.Quantity = newQuantity
		line.CostPerDay = cost
		applyLineUpdate(line, input)
		if err := s.repo.WithTx(tx).UpdateLine(ctx, line); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update quote line")
		}
		return nil
	}); err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update quote line")
	}
	return s.GetQuote(ctx, quoteID)
}

// RemoveLine deletes a line; removing any member of a package group removes
// the whole group.
func (s *service) RemoveLine(ctx context.Context, quoteID, lineID uuid.UUID) (*QuoteDTO, error) {
	quote, err := s.loadQuote(ctx, s.repo, quoteID)
	if err != nil {
		return nil, err
	}
	if err := ensureStatus(quote, enums.QuoteStatusDraft); err != nil {
		return nil, err
	}

	line := findLine(quote, lineID)
	if line == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "quote line not found")
	}

	ids := []uuid.UUID{line.ID}
	if line.PackageGroupID != nil {
		ids = ids[:0]
		for _, candidate := range quote.Lines {
			if candidate.PackageGroupID != nil && *candidate.PackageGroupID == *line.PackageGroupID {
				ids = append(ids, candidate.ID)
			}
		}
	}

	if err := s.repo.DeleteLines(ctx, quoteID, ids); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete quote lines")
	}
	return s.GetQuote(ctx, quoteID)
}

// Totals computes the financial summary, including the tax-itemized view
// when the quote is taxed.
func (s *service) Totals(ctx context.Context, quoteID uuid.UUID) (*TotalsDTO, error) {
	quote, err := s.loadQuote(ctx, s.repo, quoteID)
	if err != nil {
		return nil, err
	}
	return s.computeTotals(quote)
}

// Finalize transitions a draft to finalized, checking every stock-consuming
// line against current availability. Overbooked items either block the
// transition or surface as warnings, depending on configuration.
func (s *service) Finalize(ctx context.Context, quoteID uuid.UUID) (*FinalizeResultDTO, error) {
	quote, err := s.loadQuote(ctx, s.repo, quoteID)
	if err != nil {
		return nil, err
	}
	if err := ensureStatus(quote, enums.QuoteStatusDraft); err != nil {
		return nil, err
	}

	var warnings []string
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		if quote.StartDate != nil && quote.EndDate != nil {
			warnings, err = s.checkOverbooking(ctx, tx, quote)
			if err != nil {
				return err
			}
			if len(warnings) > 0 && s.engine.FinalizeBlockOverbook {
				var combined error
				for _, warning := range warnings {
					combined = multierr.Append(combined, errors.New(warning))
				}
				return pkgerrors.Wrap(pkgerrors.CodeConflict, combined, "quote overbooks inventory").
					WithDetails(warnings)
			}
		}

		now := s.now()
		quote.Status = enums.QuoteStatusFinalized
		quote.FinalizedAt = &now
		if err := s.repo.WithTx(tx).Update(ctx, quote); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update quote")
		}
		return nil
	}); err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "finalize quote")
	}

	dto, err := s.GetQuote(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	return &FinalizeResultDTO{Quote: dto, Warnings: warnings}, nil
}

func (s *service) Unfinalize(ctx context.Context, quoteID uuid.UUID) (*QuoteDTO, error) {
	quote, err := s.loadQuote(ctx, s.repo, quoteID)
	if err != nil {
		return nil, err
	}
	if err := ensureStatus(quote, enums.QuoteStatusFinalized); err != nil {
		return nil, err
	}

	quote.Status = enums.QuoteStatusDraft
	quote.FinalizedAt = nil
	if err := s.repo.Update(ctx, quote); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update quote")
	}
	return s.GetQuote(ctx, quoteID)
}

func (s *service) MarkPerformed(ctx context.Context, quoteID uuid.UUID) (*QuoteDTO, error) {
	quote, err := s.loadQuote(ctx, s.repo, quoteID)
	if err != nil {
		return nil, err
	}
	if err := ensureStatus(quote, enums.QuoteStatusFinalized); err != nil {
		return nil, err
	}

	quote.Status = enums.QuoteStatusPerformed
	if err := s.repo.Update(ctx, quote); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update quote")
	}
	return s.GetQuote(ctx, quoteID)
}

// Pay marks the quote as paid and recognizes revenue for every non-custom
// line at its current rounded value.
func (s *service) Pay(ctx context.Context, quoteID uuid.UUID) (*QuoteDTO, error) {
	quote, err := s.loadQuote(ctx, s.repo, quoteID)
	if err != nil {
		return nil, err
	}
	if err := ensureStatus(quote, enums.QuoteStatusFinalized, enums.QuoteStatusPerformed); err != nil {
		return nil, err
	}

	inputs, err := s.recognitionInputs(quote)
	if err != nil {
		return nil, err
	}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.revenue.RecordEvents(ctx, tx, inputs); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "ledger: record recognitions")
		}

		now := s.now()
		quote.Status = enums.QuoteStatusPaid
		quote.PaidAt = &now
		if err := s.repo.WithTx(tx).Update(ctx, quote); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update quote")
		}
		return nil
	}); err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "pay quote")
	}
	return s.GetQuote(ctx, quoteID)
}

// Unpay reverses the payment by writing reversal events carrying the exact
// amounts originally recognized, never recomputed from current quote state.
func (s *service) Unpay(ctx context.Context, quoteID uuid.UUID) (*QuoteDTO, error) {
	quote, err := s.loadQuote(ctx, s.repo, quoteID)
	if err != nil {
		return nil, err
	}
	if err := ensureStatus(quote, enums.QuoteStatusPaid); err != nil {
		return nil, err
	}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.reverseRecognitions(ctx, tx, quote); err != nil {
			return err
		}

		quote.Status = enums.QuoteStatusFinalized
		quote.PaidAt = nil
		if err := s.repo.WithTx(tx).Update(ctx, quote); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update quote")
		}
		return nil
	}); err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "unpay quote")
	}
	return s.GetQuote(ctx, quoteID)
}

func (s *service) computeTotals(quote *models.Quote) (*TotalsDTO, error) {
	rentalDays, err := pricing.RentalDays(quote.RentalDaysOverride, quote.StartDate, quote.EndDate)
	if err != nil {
		return nil, err
	}

	lines := make([]pricing.Line, len(quote.Lines))
	for i, line := range quote.Lines {
		lines[i] = pricing.Line{
			Quantity:       line.Quantity,
			PricePerDay:    line.PricePerDay,
			DiscountExempt: line.DiscountExempt,
		}
	}

	totals, err := pricing.ComputeTotals(lines, quote.DiscountPercent, rentalDays)
	if err != nil {
		return nil, err
	}

	dto := &TotalsDTO{
		RentalDays:           totals.RentalDays,
		LineTotals:           make([]LineTotalDTO, len(quote.Lines)),
		Subtotal:             totals.Subtotal,
		DiscountableSubtotal: totals.DiscountableSubtotal,
		DiscountAmount:       totals.DiscountAmount,
		Total:                totals.Total,
	}
	for i, line := range quote.Lines {
		dto.LineTotals[i] = LineTotalDTO{LineID: line.ID, GrossTotal: totals.LineTotals[i]}
	}

	if quote.TaxMode != enums.TaxModeStandard || !totals.Subtotal.IsPositive() {
		return dto, nil
	}

	breakdown, err := tax.Decompose(totals.Subtotal, totals.Total, quote.TaxRate)
	if err != nil {
		return nil, err
	}
	dto.Tax = &TaxBreakdownDTO{
		TaxRate:     quote.TaxRate,
		NetSubtotal: breakdown.NetSubtotal,
		NetDiscount: breakdown.NetDiscount,
		NetTotal:    breakdown.NetTotal,
		TaxAmount:   breakdown.TaxAmount,
	}

	positions := make([]tax.Position, len(quote.Lines))
	for i, line := range quote.Lines {
		positions[i] = tax.Position{
			LineID:  line.ID,
			GroupID: line.PackageGroupID,
			Gross:   totals.LineTotals[i],
		}
	}
	shares, err := tax.DistributeNetPositions(breakdown.NetSubtotal, positions)
	if err != nil {
		return nil, err
	}
	for i := range dto.LineTotals {
		if share, ok := shares[dto.LineTotals[i].LineID]; ok {
			value := share
			dto.LineTotals[i].NetShare = &value
		}
	}
	return dto, nil
}

// ensureLineFits verifies that adding quantity units of the item still fits
// the quote's date range, counting the quote's own existing lines since the
// availability scan excludes the whole quote.
func (s *service) ensureLineFits(ctx context.Context, tx *gorm.DB, quote *models.Quote, item *inventory.ItemDTO, quantity int) error {
	if quote.StartDate == nil || quote.EndDate == nil {
		return nil
	}

	available, err := s.items.AvailableQuantity(ctx, tx, item.ID, *quote.StartDate, *quote.EndDate, quote.ID)
	if err != nil {
		return err
	}
	if available == models.UnlimitedQuantity {
		return nil
	}

	alreadyOn := 0
	for _, line := range quote.Lines {
		if line.ItemID != nil && *line.ItemID == item.ID {
			alreadyOn += line.Quantity
		}
	}
	if alreadyOn+quantity > available {
		return pkgerrors.New(pkgerrors.CodeConflict,
			fmt.Sprintf("only %d of %q available in the selected range", available, item.Name)).
			WithDetails(map[string]any{
				"item_id":   item.ID,
				"available": available,
				"requested": alreadyOn + quantity,
			})
	}
	return nil
}

func (s *service) buildItemLines(ctx context.Context, tx *gorm.DB, quote *models.Quote, item *inventory.ItemDTO, quantity int, price decimal.Decimal, discountExempt bool) ([]models.QuoteLine, error) {
	if !item.IsPackage {
		cost, _, err := s.items.BlendedExternalCost(ctx, tx, item.ID, quantity)
		if err != nil {
			return nil, err
		}
		return []models.QuoteLine{{
			QuoteID:        quote.ID,
			ItemID:         &item.ID,
			Quantity:       quantity,
			PricePerDay:    price,
			CostPerDay:     cost,
			DiscountExempt: discountExempt,
		}}, nil
	}

	if len(item.Components) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "package has no components")
	}

	groupID := uuid.New()
	itemID := item.ID
	lines := []models.QuoteLine{{
		QuoteID:        quote.ID,
		ItemID:         &itemID,
		Quantity:       quantity,
		PricePerDay:    price,
		CostPerDay:     decimal.Zero,
		DiscountExempt: discountExempt,
		PackageGroupID: &groupID,
	}}
	for _, comp := range item.Components {
		componentID := comp.ComponentItemID
		componentQty := quantity * comp.QuantityPerPackage
		cost, _, err := s.items.BlendedExternalCost(ctx, tx, componentID, componentQty)
		if err != nil {
			return nil, err
		}
		lines = append(lines, models.QuoteLine{
			QuoteID:        quote.ID,
			ItemID:         &componentID,
			Quantity:       componentQty,
			PricePerDay:    decimal.Zero,
			CostPerDay:     cost,
			DiscountExempt: discountExempt,
			PackageGroupID: &groupID,
		})
	}
	return lines, nil
}

// checkOverbooking aggregates the quote's stock consumption per item and
// compares it against availability with the quote itself excluded. Package
// anchor lines are skipped: their components carry the real consumption.
func (s *service) checkOverbooking(ctx context.Context, tx *gorm.DB, quote *models.Quote) ([]string, error) {
	needed := map[uuid.UUID]int{}
	var order []uuid.UUID
	for _, line := range quote.Lines {
		if line.IsCustom() {
			continue
		}
		item, err := s.items.GetItem(ctx, *line.ItemID)
		if err != nil {
			return nil, err
		}
		if item.IsPackage {
			continue
		}
		if _, seen := needed[item.ID]; !seen {
			order = append(order, item.ID)
		}
		needed[item.ID] += line.Quantity
	}

	var warnings []string
	for _, itemID := range order {
		available, err := s.items.AvailableQuantity(ctx, tx, itemID, *quote.StartDate, *quote.EndDate, quote.ID)
		if err != nil {
			return nil, err
		}
		if available == models.UnlimitedQuantity || needed[itemID] <= available {
			continue
		}
		item, err := s.items.GetItem(ctx, itemID)
		if err != nil {
			return nil, err
		}
		warnings = append(warnings,
			fmt.Sprintf("%q needs %d but only %d available", item.Name, needed[itemID], available))
	}
	return warnings, nil
}

func (s *service) recognitionInputs(quote *models.Quote) ([]ledger.RecordRevenueEventInput, error) {
	rentalDays, err := pricing.RentalDays(quote.RentalDaysOverride, quote.StartDate, quote.EndDate)
	if err != nil {
		return nil, err
	}

	var inputs []ledger.RecordRevenueEventInput
	for _, line := range quote.Lines {
		if line.IsCustom() {
			continue
		}
		lineTotal, err := pricing.LineTotal(line.Quantity, line.PricePerDay, rentalDays)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, ledger.RecordRevenueEventInput{
			QuoteID:     quote.ID,
			QuoteLineID: line.ID,
			ItemID:      line.ItemID,
			Type:        enums.RevenueEventTypeRecognized,
			Amount:      pricing.RecognizedRevenue(lineTotal, quote.DiscountPercent, line.DiscountExempt),
		})
	}
	return inputs, nil
}

func (s *service) reverseRecognitions(ctx context.Context, tx *gorm.DB, quote *models.Quote) error {
	open, err := s.revenue.OpenRecognitions(ctx, tx, quote.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "ledger: load open recognitions")
	}

	reversals := make([]ledger.RecordRevenueEventInput, len(open))
	for i, event := range open {
		reversals[i] = ledger.RecordRevenueEventInput{
			QuoteID:     event.QuoteID,
			QuoteLineID: event.QuoteLineID,
			ItemID:      event.ItemID,
			Type:        enums.RevenueEventTypeReversed,
			Amount:      event.Amount,
		}
	}
	if _, err := s.revenue.RecordEvents(ctx, tx, reversals); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "ledger: record reversals")
	}
	return nil
}

func (s *service) loadQuote(ctx context.Context, repo QuoteRepository, quoteID uuid.UUID) (*models.Quote, error) {
	quote, err := repo.FindByID(ctx, quoteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "quote not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load quote")
	}
	return quote, nil
}

func ensureStatus(quote *models.Quote, allowed ...enums.QuoteStatus) error {
	for _, status := range allowed {
		if quote.Status == status {
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeStateConflict,
		fmt.Sprintf("operation not allowed while quote is %s", quote.Status))
}

func findLine(quote *models.Quote, lineID uuid.UUID) *models.QuoteLine {
	for i := range quote.Lines {
		if quote.Lines[i].ID == lineID {
			return &quote.Lines[i]
		}
	}
	return nil
}

func validateDates(start, end *time.Time) error {
	if (start == nil) != (end == nil) {
		return pkgerrors.New(pkgerrors.CodeValidation, "start and end date must be set together")
	}
	if start != nil && end.Before(*start) {
		return pkgerrors.New(pkgerrors.CodeValidation, "end date must not precede start date")
	}
	return nil
}

func applyLineUpdate(line *models.QuoteLine, input UpdateLineInput) {
	if input.Quantity != nil {
		line.Quantity = *input.Quantity
	}
	if input.PricePerDay != nil {
		line.PricePerDay = *input.PricePerDay
	}
	if input.DiscountExempt != nil {
		line.DiscountExempt = *input.DiscountExempt
	}
}
