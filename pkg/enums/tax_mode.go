package enums

import "fmt"

// TaxMode selects how a quote's totals are taxed on documents.
type TaxMode string

const (
	// TaxModeExempt bills gross amounts with no VAT itemization.
	TaxModeExempt TaxMode = "exempt"
	// TaxModeStandard back-computes net amounts from gross totals at the
	// quote's tax rate.
	TaxModeStandard TaxMode = "standard"
)

var validTaxModes = []TaxMode{
	TaxModeExempt,
	TaxModeStandard,
}

// String implements fmt.Stringer.
func (t TaxMode) String() string {
	return string(t)
}

// IsValid reports whether the value is a known TaxMode.
func (t TaxMode) IsValid() bool {
	for _, candidate := range validTaxModes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseTaxMode converts raw input into a TaxMode.
func ParseTaxMode(value string) (TaxMode, error) {
	for _, candidate := range validTaxModes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid tax mode %q", value)
}
