package enums

import "fmt"

// RevenueEventType names the append-only revenue ledger event kinds.
type RevenueEventType string

const (
	RevenueEventTypeRecognized RevenueEventType = "revenue_recognized"
	RevenueEventTypeReversed   RevenueEventType = "revenue_reversed"
)

var validRevenueEventTypes = []RevenueEventType{
	RevenueEventTypeRecognized,
	RevenueEventTypeReversed,
}

// String implements fmt.Stringer.
func (r RevenueEventType) String() string {
	return string(r)
}

// IsValid reports whether the value is a known RevenueEventType.
func (r RevenueEventType) IsValid() bool {
	for _, candidate := range validRevenueEventTypes {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRevenueEventType converts raw input into a RevenueEventType.
func ParseRevenueEventType(value string) (RevenueEventType, error) {
	for _, candidate := range validRevenueEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid revenue event type %q", value)
}
