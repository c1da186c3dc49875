package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/yniverz/erp-rent-backend/internal/allocation"
	"github.com/yniverz/erp-rent-backend/internal/availability"
	"github.com/yniverz/erp-rent-backend/pkg/config"
	"github.com/yniverz/erp-rent-backend/pkg/db"
	"github.com/yniverz/erp-rent-backend/pkg/db/models"
	"github.com/yniverz/erp-rent-backend/pkg/enums"
	pkgerrors "github.com/yniverz/erp-rent-backend/pkg/errors"
)

// Service exposes inventory management and the stock questions the quote
// lifecycle asks.
type Service interface {
	CreateItem(ctx context.Context, input CreateItemInput) (*ItemDTO, error)
	UpdateItem(ctx context.Context, itemID uuid.UUID, input UpdateItemInput) (*ItemDTO, error)
	DeleteItem(ctx context.Context, itemID uuid.UUID) error
	GetItem(ctx context.Context, itemID uuid.UUID) (*ItemDTO, error)
	ListItems(ctx context.Context) ([]ItemDTO, error)
	AddOwnershipRecord(ctx context.Context, itemID uuid.UUID, input OwnershipRecordInput) (*ItemDTO, error)
	RemoveOwnershipRecord(ctx context.Context, itemID, recordID uuid.UUID) (*ItemDTO, error)
	SetComponents(ctx context.Context, packageID uuid.UUID, inputs []ComponentInput) (*ItemDTO, error)
	AvailableQuantity(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, start, end time.Time, excludeQuoteID uuid.UUID) (int, error)
	BlendedExternalCost(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, quantityNeeded int) (decimal.Decimal, []allocation.Allocation, error)
	PayoffReport(ctx context.Context) ([]PayoffEntryDTO, error)
}

// CreateItemInput holds the validated payload to create an item.
type CreateItemInput struct {
	Name               string
	IsPackage          bool
	DefaultPricePerDay decimal.Decimal
	RentalStep         int
}

// UpdateItemInput holds optional mutation values for an item.
type UpdateItemInput struct {
	Name               *string
	DefaultPricePerDay *decimal.Decimal
	RentalStep         *int
}

// OwnershipRecordInput captures one stakeholder stake to attach to an item.
type OwnershipRecordInput struct {
	Stakeholder         string
	Quantity            int
	ExternalPricePerDay *decimal.Decimal
	PurchaseCost        decimal.Decimal
}

// ComponentInput binds one component item into a package.
type ComponentInput struct {
	ComponentItemID    uuid.UUID
	QuantityPerPackage int
}

type revenueReader interface {
	RecognizedTotalByItem(ctx context.Context, itemID uuid.UUID) (decimal.Decimal, error)
}

type service struct {
	repo     ItemRepository
	dbClient *db.Client
	revenue  revenueReader
	engine   config.EngineConfig
}

// NewService constructs an inventory service instance.
func NewService(repo ItemRepository, dbClient *db.Client, revenue revenueReader, engine config.EngineConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("item repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if revenue == nil {
		return nil, fmt.Errorf("revenue reader required")
	}
	return &service{repo: repo, dbClient: dbClient, revenue: revenue, engine: engine}, nil
}

func (s *service) CreateItem(ctx context.Context, input CreateItemInput) (*ItemDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item name is required")
	}
	if input.DefaultPricePerDay.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "default_price_per_day must not be negative")
	}
	step := input.RentalStep
	if step == 0 {
		step = 1
	}
	if step < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rental_step must be at least 1")
	}

	item := &models.Item{
		Name:               name,
		IsPackage:          input.IsPackage,
		DefaultPricePerDay: input.DefaultPricePerDay,
		RentalStep:         step,
	}
	created, err := s.repo.CreateItem(ctx, item)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert item")
	}
	return NewItemDTO(created), nil
}

func (s *service) UpdateItem(ctx context.Context, itemID uuid.UUID, input UpdateItemInput) (*ItemDTO, error) {
	item, err := s.loadItem(ctx, s.repo, itemID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item name is required")
		}
		item.Name = name
	}
	if input.DefaultPricePerDay != nil {
		if input.DefaultPricePerDay.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "default_price_per_day must not be negative")
		}
		item.DefaultPricePerDay = *input.DefaultPricePerDay
	}
	if input.RentalStep != nil {
		if *input.RentalStep < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "rental_step must be at least 1")
		}
		item.RentalStep = *input.RentalStep
	}

	if _, err := s.repo.UpdateItem(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update item")
	}
	return s.GetItem(ctx, itemID)
}

// DeleteItem refuses to delete items still referenced by quote lines or
// packages; the history they anchor must stay intact.
func (s *service) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	if _, err := s.loadItem(ctx, s.repo, itemID); err != nil {
		return err
	}

	lineUsage, err := s.repo.CountLineUsage(ctx, itemID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count quote line usage")
	}
	if lineUsage > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "item is referenced by quote lines")
	}

	componentUsage, err := s.repo.CountComponentUsage(ctx, itemID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count package usage")
	}
	if componentUsage > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "item is a component of a package")
	}

	if err := s.repo.DeleteItem(ctx, itemID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete item")
	}
	return nil
}

func (s *service) GetItem(ctx context.Context, itemID uuid.UUID) (*ItemDTO, error) {
	item, err := s.loadItem(ctx, s.repo, itemID)
	if err != nil {
		return nil, err
	}
	return NewItemDTO(item), nil
}

func (s *service) ListItems(ctx context.Context) ([]ItemDTO, error) {
	items, err := s.repo.ListItems(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list items")
	}
	dtos := make([]ItemDTO, len(items))
	for i := range items {
		dtos[i] = *NewItemDTO(&items[i])
	}
	return dtos, nil
}

func (s *service) AddOwnershipRecord(ctx context.Context, itemID uuid.UUID, input OwnershipRecordInput) (*ItemDTO, error) {
	item, err := s.loadItem(ctx, s.repo, itemID)
	if err != nil {
		return nil, err
	}
	if item.IsPackage {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "packages hold components, not ownership records")
	}

	stakeholder := strings.TrimSpace(input.Stakeholder)
	if stakeholder == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stakeholder is required")
	}
	if input.Quantity < 0 && input.Quantity != models.UnlimitedQuantity {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be non-negative or the unlimited sentinel")
	}
	if input.ExternalPricePerDay != nil && input.ExternalPricePerDay.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "external_price_per_day must not be negative")
	}
	if input.PurchaseCost.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "purchase_cost must not be negative")
	}

	record := &models.OwnershipRecord{
		ItemID:              itemID,
		Stakeholder:         stakeholder,
		Quantity:            input.Quantity,
		ExternalPricePerDay: input.ExternalPricePerDay,
		PurchaseCost:        input.PurchaseCost,
	}
	if _, err := s.repo.CreateOwnershipRecord(ctx, record); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert ownership record")
	}
	return s.GetItem(ctx, itemID)
}

func (s *service) RemoveOwnershipRecord(ctx context.Context, itemID, recordID uuid.UUID) (*ItemDTO, error) {
	record, err := s.repo.FindOwnershipRecord(ctx, recordID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "ownership record not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load ownership record")
	}
	if record.ItemID != itemID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ownership record does not belong to item")
	}

	if err := s.repo.DeleteOwnershipRecord(ctx, recordID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete ownership record")
	}
	return s.GetItem(ctx, itemID)
}

func (s *service) SetComponents(ctx context.Context, packageID uuid.UUID, inputs []ComponentInput) (*ItemDTO, error) {
	item, err := s.loadItem(ctx, s.repo, packageID)
	if err != nil {
		return nil, err
	}
	if !item.IsPackage {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item is not a package")
	}

	seen := make(map[uuid.UUID]struct{}, len(inputs))
	components := make([]models.PackageComponent, 0, len(inputs))
	for _, input := range inputs {
		if input.QuantityPerPackage < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity_per_package must be at least 1")
		}
		if _, ok := seen[input.ComponentItemID]; ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "duplicate component item")
		}
		seen[input.ComponentItemID] = struct{}{}

		component, err := s.loadItem(ctx, s.repo, input.ComponentItemID)
		if err != nil {
			return nil, err
		}
		if component.IsPackage {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "packages cannot nest packages")
		}

		components = append(components, models.PackageComponent{
			PackageID:          packageID,
			ComponentItemID:    input.ComponentItemID,
			QuantityPerPackage: input.QuantityPerPackage,
		})
	}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).ReplaceComponents(ctx, packageID, components)
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: replace components")
	}
	return s.GetItem(ctx, packageID)
}

// AvailableQuantity answers how many units of the item are free over the
// inclusive date range. Pass the surrounding transaction when the answer
// gates a write so the snapshot and the write cannot drift apart.
func (s *service) AvailableQuantity(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, start, end time.Time, excludeQuoteID uuid.UUID) (int, error) {
	if end.Before(start) {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "end date must not precede start date")
	}

	repo := s.repo.WithTx(tx)
	item, err := s.loadItem(ctx, repo, itemID)
	if err != nil {
		return 0, err
	}

	reservations, err := repo.ReservationSnapshot(ctx, s.reservationStatuses())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load reservation snapshot")
	}

	if !item.IsPackage {
		total := EffectiveTotalQuantity(item.OwnershipRecords)
		return availability.AvailableQuantity(itemID, total, start, end, reservations, excludeQuoteID), nil
	}

	components := make([]availability.ComponentAvailability, 0, len(item.Components))
	for _, comp := range item.Components {
		componentItem, err := s.loadItem(ctx, repo, comp.ComponentItemID)
		if err != nil {
			return 0, err
		}
		total := EffectiveTotalQuantity(componentItem.OwnershipRecords)
		components = append(components, availability.ComponentAvailability{
			Available:          availability.AvailableQuantity(comp.ComponentItemID, total, start, end, reservations, excludeQuoteID),
			QuantityPerPackage: comp.QuantityPerPackage,
		})
	}
	return availability.PackageAvailableQuantity(components)
}

// BlendedExternalCost stamps the per-day external supply cost for a quantity
// request against the item's ownership records.
func (s *service) BlendedExternalCost(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, quantityNeeded int) (decimal.Decimal, []allocation.Allocation, error) {
	repo := s.repo.WithTx(tx)
	item, err := s.loadItem(ctx, repo, itemID)
	if err != nil {
		return decimal.Zero, nil, err
	}
	if item.IsPackage {
		return decimal.Zero, nil, pkgerrors.New(pkgerrors.CodeInvalidAllocation, "packages have no supply of their own")
	}

	internal := InternalQuantity(item.OwnershipRecords)
	externals := ExternalProviders(item.OwnershipRecords)
	return allocation.BlendedExternalCost(internal, externals, quantityNeeded)
}

// PayoffReport compares each item's acquisition cost against the revenue the
// ledger has recognized for it.
func (s *service) PayoffReport(ctx context.Context) ([]PayoffEntryDTO, error) {
	items, err := s.repo.ListItems(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list items")
	}

	report := make([]PayoffEntryDTO, 0, len(items))
	for i := range items {
		item := &items[i]
		if item.IsPackage {
			continue
		}

		cost := decimal.Zero
		for _, record := range item.OwnershipRecords {
			if record.IsExternal() {
				continue
			}
			cost = cost.Add(record.PurchaseCost)
		}

		revenue, err := s.revenue.RecognizedTotalByItem(ctx, item.ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "ledger: recognized total")
		}

		balance := revenue.Sub(cost)
		report = append(report, PayoffEntryDTO{
			ItemID:            item.ID,
			Name:              item.Name,
			PurchaseCost:      cost,
			RecognizedRevenue: revenue,
			Balance:           balance,
			PaidOff:           !balance.IsNegative(),
		})
	}
	return report, nil
}

func (s *service) reservationStatuses() []enums.QuoteStatus {
	statuses := []enums.QuoteStatus{
		enums.QuoteStatusFinalized,
		enums.QuoteStatusPerformed,
		enums.QuoteStatusPaid,
	}
	if s.engine.AvailabilityCountDrafts {
		statuses = append(statuses, enums.QuoteStatusDraft)
	}
	return statuses
}

func (s *service) loadItem(ctx context.Context, repo ItemRepository, itemID uuid.UUID) (*models.Item, error) {
	item, err := repo.FindByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load item")
	}
	return item, nil
}
