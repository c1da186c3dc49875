package tax

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/yniverz/erp-rent-backend/pkg/errors"
)

var hundred = decimal.NewFromInt(100)

// Breakdown is the tax-itemized view of an already-computed gross quote.
// Nothing here re-derives prices; the gross figures are authoritative.
type Breakdown struct {
	NetSubtotal decimal.Decimal
	NetDiscount decimal.Decimal
	NetTotal    decimal.Decimal
	TaxAmount   decimal.Decimal
}

// Decompose back-computes net amounts from the gross subtotal and the gross
// post-discount total at the given tax rate (a percentage in (0, 100)).
func Decompose(grossSubtotal, grossTotal, rate decimal.Decimal) (Breakdown, error) {
	if !rate.IsPositive() || rate.GreaterThanOrEqual(hundred) {
		return Breakdown{}, pkgerrors.New(pkgerrors.CodeValidation, "tax rate must be within (0, 100)")
	}

	factor := decimal.NewFromInt(1).Add(rate.Div(hundred))
	netSubtotal := grossSubtotal.Div(factor).Round(2)
	netTotal := grossTotal.Div(factor).Round(2)

	breakdown := Breakdown{
		NetSubtotal: netSubtotal,
		NetTotal:    netTotal,
		TaxAmount:   grossTotal.Sub(netTotal).Round(2),
	}
	if grossSubtotal.GreaterThan(grossTotal) {
		breakdown.NetDiscount = netSubtotal.Sub(netTotal).Round(2)
	} else {
		breakdown.NetDiscount = decimal.Zero
	}
	return breakdown, nil
}

// DistributeNet splits netAmount across positions proportionally to their
// gross share using the largest-remainder method: floor every proportional
// share to cents, then hand the missing cents to the positions whose floored
// share truncated the most. The returned shares always sum to netAmount
// exactly, which independent per-position rounding cannot guarantee.
func DistributeNet(netAmount decimal.Decimal, positionGross []decimal.Decimal) ([]decimal.Decimal, error) {
	if len(positionGross) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidAllocation, "cannot distribute across zero positions")
	}

	grossSum := decimal.Zero
	for _, gross := range positionGross {
		grossSum = grossSum.Add(gross)
	}
	if !grossSum.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidAllocation, "position gross sum must be positive")
	}

	netCents := netAmount.Mul(hundred)
	flooredCents := make([]decimal.Decimal, len(positionGross))
	remainders := make([]decimal.Decimal, len(positionGross))
	flooredSum := decimal.Zero
	for i, gross := range positionGross {
		raw := netCents.Mul(gross).Div(grossSum)
		flooredCents[i] = raw.Floor()
		remainders[i] = raw.Sub(flooredCents[i])
		flooredSum = flooredSum.Add(flooredCents[i])
	}

	deficit := int(netCents.Sub(flooredSum).Round(0).IntPart())

	// Rank positions by descending truncated remainder; earlier positions
	// win ties so the result is stable.
	order := make([]int, len(positionGross))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return remainders[order[a]].GreaterThan(remainders[order[b]])
	})

	for i := 0; i < deficit && i < len(order); i++ {
		flooredCents[order[i]] = flooredCents[order[i]].Add(decimal.NewFromInt(1))
	}

	shares := make([]decimal.Decimal, len(positionGross))
	for i, cents := range flooredCents {
		shares[i] = cents.Div(hundred)
	}
	return shares, nil
}

// Position is one priced quote line entering the per-line net distribution.
// Lines sharing a GroupID were expanded from one package purchase and are
// collapsed into a single logical position before distribution.
type Position struct {
	LineID  uuid.UUID
	GroupID *uuid.UUID
	Gross   decimal.Decimal
}

// DistributeNetPositions runs the largest-remainder distribution over
// positions, collapsing package groups first and then exploding each group's
// net share back across its members (again remainder-safe). The values of
// the returned map sum to netAmount exactly.
func DistributeNetPositions(netAmount decimal.Decimal, positions []Position) (map[uuid.UUID]decimal.Decimal, error) {
	if len(positions) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidAllocation, "cannot distribute across zero positions")
	}

	// Collapse package groups into logical positions, keeping first-seen
	// order.
	type logical struct {
		gross   decimal.Decimal
		members []int
	}
	var logicals []logical
	groupIndex := map[uuid.UUID]int{}
	for i, pos := range positions {
		if pos.GroupID == nil {
			logicals = append(logicals, logical{gross: pos.Gross, members: []int{i}})
			continue
		}
		if idx, ok := groupIndex[*pos.GroupID]; ok {
			logicals[idx].gross = logicals[idx].gross.Add(pos.Gross)
			logicals[idx].members = append(logicals[idx].members, i)
			continue
		}
		groupIndex[*pos.GroupID] = len(logicals)
		logicals = append(logicals, logical{gross: pos.Gross, members: []int{i}})
	}

	logicalGross := make([]decimal.Decimal, len(logicals))
	for i, l := range logicals {
		logicalGross[i] = l.gross
	}
	logicalNet, err := DistributeNet(netAmount, logicalGross)
	if err != nil {
		return nil, err
	}

	result := make(map[uuid.UUID]decimal.Decimal, len(positions))
	for i, l := range logicals {
		if len(l.members) == 1 {
			result[positions[l.members[0]].LineID] = logicalNet[i]
			continue
		}
		memberGross := make([]decimal.Decimal, len(l.members))
		for j, member := range l.members {
			memberGross[j] = positions[member].Gross
		}
		memberNet, err := DistributeNet(logicalNet[i], memberGross)
		if err != nil {
			return nil, err
		}
		for j, member := range l.members {
			result[positions[member].LineID] = memberNet[j]
		}
	}
	return result, nil
}
