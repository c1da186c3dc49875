package availability

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name                           string
		aStart, aEnd, bStart, bEnd     time.Time
		want                           bool
	}{
		{
			name:   "disjoint before",
			aStart: date(2026, 3, 1), aEnd: date(2026, 3, 5),
			bStart: date(2026, 3, 6), bEnd: date(2026, 3, 10),
			want: false,
		},
		{
			name:   "shared boundary day counts",
			aStart: date(2026, 3, 1), aEnd: date(2026, 3, 5),
			bStart: date(2026, 3, 5), bEnd: date(2026, 3, 10),
			want: true,
		},
		{
			name:   "contained",
			aStart: date(2026, 3, 2), aEnd: date(2026, 3, 3),
			bStart: date(2026, 3, 1), bEnd: date(2026, 3, 10),
			want: true,
		},
		{
			name:   "single day ranges equal",
			aStart: date(2026, 3, 4), aEnd: date(2026, 3, 4),
			bStart: date(2026, 3, 4), bEnd: date(2026, 3, 4),
			want: true,
		},
		{
			name:   "time of day is ignored",
			aStart: date(2026, 3, 1).Add(23 * time.Hour), aEnd: date(2026, 3, 5),
			bStart: date(2026, 3, 5).Add(10 * time.Minute), bEnd: date(2026, 3, 9),
			want: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Overlaps(tc.aStart, tc.aEnd, tc.bStart, tc.bEnd); got != tc.want {
				t.Fatalf("Overlaps = %v, want %v", got, tc.want)
			}
			// Overlap is symmetric.
			if got := Overlaps(tc.bStart, tc.bEnd, tc.aStart, tc.aEnd); got != tc.want {
				t.Fatalf("Overlaps (swapped) = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestAvailableQuantity(t *testing.T) {
	itemID := uuid.New()
	otherItem := uuid.New()
	competing := uuid.New()

	reservations := []Reservation{
		{
			ID:        competing,
			StartDate: date(2026, 6, 1),
			EndDate:   date(2026, 6, 10),
			Lines: []ReservationLine{
				{ItemID: itemID, Quantity: 3},
				{ItemID: otherItem, Quantity: 50},
			},
		},
		{
			ID:        uuid.New(),
			StartDate: date(2026, 6, 20),
			EndDate:   date(2026, 6, 25),
			Lines:     []ReservationLine{{ItemID: itemID, Quantity: 4}},
		},
	}

	got := AvailableQuantity(itemID, 5, date(2026, 6, 5), date(2026, 6, 7), reservations, uuid.Nil)
	if got != 2 {
		t.Fatalf("expected 2 available, got %d", got)
	}

	// Reservations in non-overlapping ranges never reduce availability.
	got = AvailableQuantity(itemID, 5, date(2026, 6, 11), date(2026, 6, 19), reservations, uuid.Nil)
	if got != 5 {
		t.Fatalf("expected full availability outside booked ranges, got %d", got)
	}

	// Excluding the competing reservation restores its quantity.
	got = AvailableQuantity(itemID, 5, date(2026, 6, 5), date(2026, 6, 7), reservations, competing)
	if got != 5 {
		t.Fatalf("expected 5 with exclusion, got %d", got)
	}
}

func TestAvailableQuantityClampsAtZero(t *testing.T) {
	itemID := uuid.New()
	reservations := []Reservation{
		{
			ID:        uuid.New(),
			StartDate: date(2026, 6, 1),
			EndDate:   date(2026, 6, 30),
			Lines:     []ReservationLine{{ItemID: itemID, Quantity: 9}},
		},
	}
	got := AvailableQuantity(itemID, 5, date(2026, 6, 10), date(2026, 6, 12), reservations, uuid.Nil)
	if got != 0 {
		t.Fatalf("overbooked availability must clamp to 0, got %d", got)
	}
}

func TestAvailableQuantityUnlimited(t *testing.T) {
	got := AvailableQuantity(uuid.New(), Unlimited, date(2026, 6, 1), date(2026, 6, 2), nil, uuid.Nil)
	if got != Unlimited {
		t.Fatalf("expected Unlimited, got %d", got)
	}
}

func TestPackageAvailableQuantity(t *testing.T) {
	got, err := PackageAvailableQuantity([]ComponentAvailability{
		{Available: 10, QuantityPerPackage: 2}, // 5 sets
		{Available: 7, QuantityPerPackage: 1},  // 7 sets
		{Available: Unlimited, QuantityPerPackage: 4},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 5 {
		t.Fatalf("expected weakest component to bound package at 5, got %d", got)
	}
}

func TestPackageAvailableQuantityAllUnlimited(t *testing.T) {
	got, err := PackageAvailableQuantity([]ComponentAvailability{
		{Available: Unlimited, QuantityPerPackage: 2},
		{Available: Unlimited, QuantityPerPackage: 3},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != Unlimited {
		t.Fatalf("expected Unlimited, got %d", got)
	}
}

func TestPackageAvailableQuantityEmpty(t *testing.T) {
	got, err := PackageAvailableQuantity(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0 {
		t.Fatalf("package without components must yield 0, got %d", got)
	}
}

func TestPackageAvailableQuantityZeroComponent(t *testing.T) {
	_, err := PackageAvailableQuantity([]ComponentAvailability{
		{Available: 4, QuantityPerPackage: 0},
	})
	if err == nil {
		t.Fatal("expected error for zero quantity-per-package")
	}
}
