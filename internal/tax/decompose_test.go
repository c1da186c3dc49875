package tax

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/yniverz/erp-rent-backend/pkg/errors"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestDecompose(t *testing.T) {
	tests := []struct {
		name          string
		grossSubtotal string
		grossTotal    string
		rate          string
		netSubtotal   string
		netDiscount   string
		netTotal      string
		taxAmount     string
	}{
		{
			name:          "no discount at 19 percent",
			grossSubtotal: "100.00",
			grossTotal:    "100.00",
			rate:          "19",
			netSubtotal:   "84.03",
			netDiscount:   "0",
			netTotal:      "84.03",
			taxAmount:     "15.97",
		},
		{
			name:          "with discount",
			grossSubtotal: "200.00",
			grossTotal:    "180.00",
			rate:          "19",
			netSubtotal:   "168.07",
			netDiscount:   "16.81",
			netTotal:      "151.26",
			taxAmount:     "28.74",
		},
		{
			name:          "reduced rate",
			grossSubtotal: "50.00",
			grossTotal:    "50.00",
			rate:          "7",
			netSubtotal:   "46.73",
			netDiscount:   "0",
			netTotal:      "46.73",
			taxAmount:     "3.27",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			breakdown, err := Decompose(dec(tc.grossSubtotal), dec(tc.grossTotal), dec(tc.rate))
			require.NoError(t, err)
			assert.True(t, breakdown.NetSubtotal.Equal(dec(tc.netSubtotal)), "net subtotal %s", breakdown.NetSubtotal)
			assert.True(t, breakdown.NetDiscount.Equal(dec(tc.netDiscount)), "net discount %s", breakdown.NetDiscount)
			assert.True(t, breakdown.NetTotal.Equal(dec(tc.netTotal)), "net total %s", breakdown.NetTotal)
			assert.True(t, breakdown.TaxAmount.Equal(dec(tc.taxAmount)), "tax amount %s", breakdown.TaxAmount)
			assert.True(t, breakdown.NetTotal.Add(breakdown.TaxAmount).Equal(dec(tc.grossTotal)), "net + tax must rebuild the gross total")
		})
	}
}

func TestDecomposeRejectsBadRate(t *testing.T) {
	for _, rate := range []string{"0", "-5", "100", "150"} {
		_, err := Decompose(dec("100"), dec("100"), dec(rate))
		require.Error(t, err, "rate %s", rate)
		typed := pkgerrors.As(err)
		require.NotNil(t, typed)
		assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	}
}

func TestDistributeNetSumsExactly(t *testing.T) {
	// Gross subtotal 100.00 split three ways, 19% tax: the net subtotal is
	// 84.03 and independent per-line rounding would only reach 84.02.
	shares, err := DistributeNet(dec("84.03"), []decimal.Decimal{dec("33.33"), dec("33.33"), dec("33.34")})
	require.NoError(t, err)
	require.Len(t, shares, 3)

	sum := decimal.Zero
	for _, s := range shares {
		sum = sum.Add(s)
	}
	assert.True(t, sum.Equal(dec("84.03")), "shares sum to %s", sum)
	assert.True(t, shares[0].Equal(dec("28.01")))
	assert.True(t, shares[1].Equal(dec("28.01")))
	assert.True(t, shares[2].Equal(dec("28.01")))
}

func TestDistributeNetDeterministicTieBreak(t *testing.T) {
	// Equal gross shares that cannot divide evenly: the extra cent goes to
	// the earliest position.
	shares, err := DistributeNet(dec("0.01"), []decimal.Decimal{dec("10"), dec("10")})
	require.NoError(t, err)
	assert.True(t, shares[0].Equal(dec("0.01")))
	assert.True(t, shares[1].Equal(dec("0")))
}

func TestDistributeNetSinglePositionGetsEverything(t *testing.T) {
	shares, err := DistributeNet(dec("84.03"), []decimal.Decimal{dec("100.00")})
	require.NoError(t, err)
	require.Len(t, shares, 1)
	assert.True(t, shares[0].Equal(dec("84.03")))
}

func TestDistributeNetExactnessProperty(t *testing.T) {
	nets := []string{"84.03", "0.01", "999.99", "10.00", "33.33"}
	grosses := [][]string{
		{"33.33", "33.33", "33.34"},
		{"1", "1", "1"},
		{"12.50", "87.50", "0.37", "140.00"},
		{"5", "10", "15", "20", "25"},
	}
	for _, net := range nets {
		for _, gs := range grosses {
			positionGross := make([]decimal.Decimal, len(gs))
			for i, g := range gs {
				positionGross[i] = dec(g)
			}
			shares, err := DistributeNet(dec(net), positionGross)
			require.NoError(t, err)
			sum := decimal.Zero
			for _, s := range shares {
				sum = sum.Add(s)
			}
			assert.True(t, sum.Equal(dec(net)), "net %s over %v sums to %s", net, gs, sum)
		}
	}
}

func TestDistributeNetRejectsDegenerateInput(t *testing.T) {
	_, err := DistributeNet(dec("10"), nil)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeInvalidAllocation, typed.Code())

	_, err = DistributeNet(dec("10"), []decimal.Decimal{dec("0"), dec("0")})
	require.Error(t, err)
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeInvalidAllocation, typed.Code())
}

func TestDistributeNetPositionsCollapsesPackageGroups(t *testing.T) {
	groupID := uuid.New()
	lineA := uuid.New() // standalone
	lineB := uuid.New() // package member
	lineC := uuid.New() // package member

	positions := []Position{
		{LineID: lineA, Gross: dec("50.00")},
		{LineID: lineB, GroupID: &groupID, Gross: dec("30.00")},
		{LineID: lineC, GroupID: &groupID, Gross: dec("20.00")},
	}

	result, err := DistributeNetPositions(dec("84.03"), positions)
	require.NoError(t, err)
	require.Len(t, result, 3)

	sum := decimal.Zero
	for _, v := range result {
		sum = sum.Add(v)
	}
	assert.True(t, sum.Equal(dec("84.03")), "per-line nets sum to %s", sum)

	// Two logical positions of 50.00 gross each split 84.03: the
	// standalone line wins the odd cent, then the group's 42.01 is split
	// 30/20 across its members.
	assert.True(t, result[lineA].Equal(dec("42.02")), "standalone net %s", result[lineA])
	assert.True(t, result[lineB].Equal(dec("25.21")), "member net %s", result[lineB])
	assert.True(t, result[lineC].Equal(dec("16.80")), "member net %s", result[lineC])
}

func TestDistributeNetPositionsWithoutGroups(t *testing.T) {
	lineA := uuid.New()
	lineB := uuid.New()
	result, err := DistributeNetPositions(dec("10.00"), []Position{
		{LineID: lineA, Gross: dec("7.50")},
		{LineID: lineB, Gross: dec("2.50")},
	})
	require.NoError(t, err)
	assert.True(t, result[lineA].Equal(dec("7.50")))
	assert.True(t, result[lineB].Equal(dec("2.50")))
}

func TestDistributeNetPositionsRejectsEmpty(t *testing.T) {
	_, err := DistributeNetPositions(dec("10"), nil)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeInvalidAllocation, typed.Code())
}
