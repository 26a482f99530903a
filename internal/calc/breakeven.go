package calc

import "github.com/shopspring/decimal"

// BreakEvenInput is the break-even estimator input.
type BreakEvenInput struct {
	FixedCosts       decimal.Decimal
	VariableUnitCost decimal.Decimal
	UnitPrice        decimal.Decimal
}

// BreakEvenResult holds the smallest whole unit count whose contribution
// covers the fixed costs, and the revenue at that point.
type BreakEvenResult struct {
	State              State
	Units              int64
	RevenueAtBreakEven decimal.Decimal
}

// ComputeBreakEven solves fixed / (price - variable), rounded up to whole
// units. A price at or below the variable unit cost has no break-even point
// and yields an unset result (division by zero guarded, no error state).
func ComputeBreakEven(in BreakEvenInput, _ Policy) BreakEvenResult {
	if in.FixedCosts.LessThanOrEqual(decimal.Zero) ||
		in.UnitPrice.LessThanOrEqual(in.VariableUnitCost) {
		return BreakEvenResult{State: StateUnset}
	}

	contribution := in.UnitPrice.Sub(in.VariableUnitCost)
	units := in.FixedCosts.Div(contribution).Ceil().IntPart()

	return BreakEvenResult{
		State:              StateComputed,
		Units:              units,
		RevenueAtBreakEven: in.UnitPrice.Mul(decimal.NewFromInt(units)),
	}
}
