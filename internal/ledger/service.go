package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/yniverz/erp-rent-backend/pkg/db/models"
	"github.com/yniverz/erp-rent-backend/pkg/enums"
)

// Service defines operations over the append-only revenue ledger.
type Service interface {
	RecordEvent(ctx context.Context, tx *gorm.DB, input RecordRevenueEventInput) (*models.RevenueEvent, error)
	RecordEvents(ctx context.Context, tx *gorm.DB, inputs []RecordRevenueEventInput) ([]models.RevenueEvent, error)
	ListByQuote(ctx context.Context, quoteID uuid.UUID) ([]models.RevenueEvent, error)
	OpenRecognitions(ctx context.Context, tx *gorm.DB, quoteID uuid.UUID) ([]models.RevenueEvent, error)
	RecognizedTotalByItem(ctx context.Context, itemID uuid.UUID) (decimal.Decimal, error)
}

type service struct {
	repo Repository
}

// RecordRevenueEventInput captures the immutable data a revenue event requires.
type RecordRevenueEventInput struct {
	QuoteID     uuid.UUID
	QuoteLineID uuid.UUID
	ItemID      *uuid.UUID
	Type        enums.RevenueEventType
	Amount      decimal.Decimal
}

// NewService wires a revenue ledger service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) RecordEvent(ctx context.Context, tx *gorm.DB, input RecordRevenueEventInput) (*models.RevenueEvent, error) {
	event, err := buildEvent(input)
	if err != nil {
		return nil, err
	}
	if err := s.repo.WithTx(tx).Create(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *service) RecordEvents(ctx context.Context, tx *gorm.DB, inputs []RecordRevenueEventInput) ([]models.RevenueEvent, error) {
	events := make([]models.RevenueEvent, 0, len(inputs))
	for _, input := range inputs {
		event, err := buildEvent(input)
		if err != nil {
			return nil, err
		}
		events = append(events, *event)
	}
	if err := s.repo.WithTx(tx).CreateBatch(ctx, events); err != nil {
		return nil, err
	}
	return events, nil
}

func (s *service) ListByQuote(ctx context.Context, quoteID uuid.UUID) ([]models.RevenueEvent, error) {
	if quoteID == uuid.Nil {
		return nil, fmt.Errorf("quote id is required")
	}
	return s.repo.ListByQuoteID(ctx, quoteID)
}

// OpenRecognitions returns the recognition events for a quote that have not
// yet been matched by a reversal, pairing per quote line in order. These are
// the exact rows an unpay reverses.
func (s *service) OpenRecognitions(ctx context.Context, tx *gorm.DB, quoteID uuid.UUID) ([]models.RevenueEvent, error) {
	if quoteID == uuid.Nil {
		return nil, fmt.Errorf("quote id is required")
	}
	events, err := s.repo.WithTx(tx).ListByQuoteID(ctx, quoteID)
	if err != nil {
		return nil, err
	}

	reversedPerLine := map[uuid.UUID]int{}
	for _, event := range events {
		if event.Type == enums.RevenueEventTypeReversed {
			reversedPerLine[event.QuoteLineID]++
		}
	}

	var open []models.RevenueEvent
	for _, event := range events {
		if event.Type != enums.RevenueEventTypeRecognized {
			continue
		}
		if reversedPerLine[event.QuoteLineID] > 0 {
			reversedPerLine[event.QuoteLineID]--
			continue
		}
		open = append(open, event)
	}
	return open, nil
}

func (s *service) RecognizedTotalByItem(ctx context.Context, itemID uuid.UUID) (decimal.Decimal, error) {
	if itemID == uuid.Nil {
		return decimal.Zero, fmt.Errorf("item id is required")
	}
	return s.repo.SumByItemID(ctx, itemID)
}

func buildEvent(input RecordRevenueEventInput) (*models.RevenueEvent, error) {
	if input.QuoteID == uuid.Nil {
		return nil, fmt.Errorf("quote id is required")
	}
	if input.QuoteLineID == uuid.Nil {
		return nil, fmt.Errorf("quote line id is required")
	}
	if !input.Type.IsValid() {
		return nil, fmt.Errorf("invalid revenue event type %q", input.Type)
	}
	if input.Amount.IsNegative() {
		return nil, fmt.Errorf("revenue amount must not be negative")
	}
	return &models.RevenueEvent{
		QuoteID:     input.QuoteID,
		QuoteLineID: input.QuoteLineID,
		ItemID:      input.ItemID,
		Type:        input.Type,
		Amount:      input.Amount,
	}, nil
}
