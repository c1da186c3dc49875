package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/yniverz/erp-rent-backend/pkg/db/models"
	"github.com/yniverz/erp-rent-backend/pkg/enums"
)

type fakeRepository struct {
	createFn func(ctx context.Context, event *models.RevenueEvent) error
	listFn   func(ctx context.Context, quoteID uuid.UUID) ([]models.RevenueEvent, error)
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository {
	return f
}

func (f *fakeRepository) Create(ctx context.Context, event *models.RevenueEvent) error {
	if f.createFn != nil {
		return f.createFn(ctx, event)
	}
	return nil
}

func (f *fakeRepository) CreateBatch(ctx context.Context, events []models.RevenueEvent) error {
	for i := range events {
		if err := f.Create(ctx, &events[i]); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeRepository) ListByQuoteID(ctx context.Context, quoteID uuid.UUID) ([]models.RevenueEvent, error) {
	if f.listFn != nil {
		return f.listFn(ctx, quoteID)
	}
	return nil, nil
}

func (f *fakeRepository) SumByItemID(ctx context.Context, itemID uuid.UUID) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func TestService_RecordEvent(t *testing.T) {
	repo := &fakeRepository{}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	itemID := uuid.New()
	input := RecordRevenueEventInput{
		QuoteID:     uuid.New(),
		QuoteLineID: uuid.New(),
		ItemID:      &itemID,
		Type:        enums.RevenueEventTypeRecognized,
		Amount:      decimal.RequireFromString("95.00"),
	}

	var created *models.RevenueEvent
	repo.createFn = func(ctx context.Context, event *models.RevenueEvent) error {
		created = event
		return nil
	}

	got, err := svc.RecordEvent(context.Background(), nil, input)
	if err != nil {
		t.Fatalf("RecordEvent error: %v", err)
	}
	if created == nil {
		t.Fatal("expected revenue event to be created")
	}
	if created.QuoteID != input.QuoteID || created.Type != input.Type || !created.Amount.Equal(input.Amount) {
		t.Fatalf("unexpected revenue event data: %+v", created)
	}
	if created.ItemID == nil || *created.ItemID != itemID {
		t.Fatalf("missing item reference: %+v", created)
	}
	if got != created {
		t.Fatalf("service should return created event")
	}
}

func TestService_RecordEventValidation(t *testing.T) {
	repo := &fakeRepository{}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	tests := []struct {
		name  string
		input RecordRevenueEventInput
	}{
		{
			name: "missing quote id",
			input: RecordRevenueEventInput{
				QuoteLineID: uuid.New(),
				Type:        enums.RevenueEventTypeRecognized,
			},
		},
		{
			name: "missing quote line id",
			input: RecordRevenueEventInput{
				QuoteID: uuid.New(),
				Type:    enums.RevenueEventTypeRecognized,
			},
		},
		{
			name: "invalid type",
			input: RecordRevenueEventInput{
				QuoteID:     uuid.New(),
				QuoteLineID: uuid.New(),
				Type:        enums.RevenueEventType("not_real"),
			},
		},
		{
			name: "negative amount",
			input: RecordRevenueEventInput{
				QuoteID:     uuid.New(),
				QuoteLineID: uuid.New(),
				Type:        enums.RevenueEventTypeRecognized,
				Amount:      decimal.RequireFromString("-1"),
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.RecordEvent(context.Background(), nil, tc.input); err == nil {
				t.Fatalf("expected validation error for %s", tc.name)
			}
		})
	}
}

func TestService_RecordEventRepoError(t *testing.T) {
	repo := &fakeRepository{}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	expectedErr := errors.New("boom")
	repo.createFn = func(ctx context.Context, event *models.RevenueEvent) error {
		return expectedErr
	}

	if _, err := svc.RecordEvent(context.Background(), nil, RecordRevenueEventInput{
		QuoteID:     uuid.New(),
		QuoteLineID: uuid.New(),
		Type:        enums.RevenueEventTypeRecognized,
		Amount:      decimal.RequireFromString("10"),
	}); !errors.Is(err, expectedErr) {
		t.Fatalf("expected repo error to bubble up, got %v", err)
	}
}

func TestService_OpenRecognitions(t *testing.T) {
	quoteID := uuid.New()
	lineA := uuid.New()
	lineB := uuid.New()

	repo := &fakeRepository{
		listFn: func(ctx context.Context, id uuid.UUID) ([]models.RevenueEvent, error) {
			return []models.RevenueEvent{
				{QuoteID: quoteID, QuoteLineID: lineA, Type: enums.RevenueEventTypeRecognized, Amount: decimal.RequireFromString("50.00")},
				{QuoteID: quoteID, QuoteLineID: lineB, Type: enums.RevenueEventTypeRecognized, Amount: decimal.RequireFromString("30.00")},
				{QuoteID: quoteID, QuoteLineID: lineA, Type: enums.RevenueEventTypeReversed, Amount: decimal.RequireFromString("50.00")},
				{QuoteID: quoteID, QuoteLineID: lineA, Type: enums.RevenueEventTypeRecognized, Amount: decimal.RequireFromString("45.00")},
			}, nil
		},
	}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	open, err := svc.OpenRecognitions(context.Background(), nil, quoteID)
	if err != nil {
		t.Fatalf("OpenRecognitions error: %v", err)
	}
	if len(open) != 2 {
		t.Fatalf("expected two open recognitions, got %d", len(open))
	}
	if open[0].QuoteLineID != lineB || !open[0].Amount.Equal(decimal.RequireFromString("30.00")) {
		t.Fatalf("unexpected first open event: %+v", open[0])
	}
	if open[1].QuoteLineID != lineA || !open[1].Amount.Equal(decimal.RequireFromString("45.00")) {
		t.Fatalf("unexpected second open event: %+v", open[1])
	}
}

func TestService_NewServiceRequiresRepo(t *testing.T) {
	if _, err := NewService(nil); err == nil {
		t.Fatal("expected error for nil repository")
	}
}
