package calc

import "github.com/shopspring/decimal"

// PricingMode distinguishes pricing a single unit from pricing a batch.
type PricingMode string

const (
	PricingPerUnit PricingMode = "per_unit"
	PricingBatch   PricingMode = "batch"
)

// PricingInput is the markup/pricing estimator input. MarginSet reports
// whether the margin field parsed at all; an unparseable margin yields an
// unset result, not an error.
type PricingInput struct {
	Cost          decimal.Decimal
	MarginPercent decimal.Decimal
	MarginSet     bool
	Mode          PricingMode
	Quantity      int64
	// ApplyTransitionTax adds the IBS/CBS transition rate to the pricing
	// denominator and reports the resulting tax amount.
	ApplyTransitionTax bool
}

// PricingResult carries the sale price on margin. Infeasible (margin + tax
// at or above 100%) is a distinct tagged state with a human-readable reason,
// never an Infinity or a negative price.
type PricingResult struct {
	State          State
	Reason         string
	SalePriceTotal decimal.Decimal
	UnitSalePrice  decimal.Decimal
	TaxAmount      decimal.Decimal
	ProfitTotal    decimal.Decimal
	Markup         decimal.Decimal
	Quantity       int64
}

// ComputePricing derives the sale price that yields the desired margin over
// the acquisition cost: price = cost / (1 - margin - tax).
func ComputePricing(in PricingInput, p Policy) PricingResult {
	if in.Cost.LessThanOrEqual(decimal.Zero) || !in.MarginSet {
		return PricingResult{State: StateUnset}
	}
	if in.MarginPercent.IsNegative() || in.MarginPercent.GreaterThanOrEqual(decimal.NewFromInt(99)) {
		return PricingResult{State: StateUnset}
	}

	qty := int64(1)
	if in.Mode == PricingBatch {
		if in.Quantity < 1 {
			return PricingResult{State: StateUnset}
		}
		qty = in.Quantity
	}

	margin := in.MarginPercent.Div(hundred)
	tax := decimal.Zero
	if in.ApplyTransitionTax {
		tax = p.TransitionTaxRate
	}

	denominator := decimal.NewFromInt(1).Sub(margin).Sub(tax)
	if denominator.LessThanOrEqual(decimal.Zero) {
		return PricingResult{
			State:  StateInfeasible,
			Reason: "margem desejada somada aos impostos atinge 100% do preço; reduza a margem",
		}
	}

	saleTotal := in.Cost.Div(denominator)
	taxAmount := saleTotal.Mul(tax)

	return PricingResult{
		State:          StateComputed,
		SalePriceTotal: saleTotal,
		UnitSalePrice:  saleTotal.Div(decimal.NewFromInt(qty)),
		TaxAmount:      taxAmount,
		ProfitTotal:    saleTotal.Sub(in.Cost).Sub(taxAmount),
		Markup:         saleTotal.Div(in.Cost),
		Quantity:       qty,
	}
}
