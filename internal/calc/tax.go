package calc

import "github.com/shopspring/decimal"

// TaxRegime selects which contribution rules apply to the monthly revenue.
type TaxRegime string

const (
	RegimeMEI      TaxRegime = "mei"
	RegimeSimples  TaxRegime = "simples"
	RegimeAutonomo TaxRegime = "autonomo"
)

// TaxInput is the monthly tax/contribution estimator input.
type TaxInput struct {
	Revenue decimal.Decimal
	Regime  TaxRegime
	// HasEmployee only applies to the MEI regime.
	HasEmployee bool
}

// TaxResult is the estimator output: net income after the regime's
// contributions, with one breakdown line per charge.
type TaxResult struct {
	State     State
	Revenue   decimal.Decimal
	TotalTax  decimal.Decimal
	NetIncome decimal.Decimal
	Lines     []Line
}

// ComputeTax estimates the monthly tax burden for the given regime.
//
// MEI pays a fixed DAS derived from the minimum wage regardless of revenue;
// Simples pays a single flat rate over revenue; an independent contractor
// pays ISS and INSS as two separate lines.
func ComputeTax(in TaxInput, p Policy) TaxResult {
	if in.Revenue.LessThanOrEqual(decimal.Zero) {
		return TaxResult{State: StateUnset}
	}

	var lines []Line
	switch in.Regime {
	case RegimeMEI:
		lines = append(lines, Line{
			Label:  "DAS (MEI)",
			Amount: p.MinimumWage.Mul(p.MEIBaseRate),
		})
		if in.HasEmployee {
			lines = append(lines, Line{
				Label:  "Encargos de funcionário",
				Amount: p.MinimumWage.Mul(p.MEIEmployeeRate),
			})
		}
	case RegimeSimples:
		lines = append(lines, Line{
			Label:  "Simples Nacional",
			Amount: in.Revenue.Mul(p.SimplesRate),
		})
	case RegimeAutonomo:
		lines = append(lines,
			Line{Label: "ISS", Amount: in.Revenue.Mul(p.AutonomoISSRate)},
			Line{Label: "INSS", Amount: in.Revenue.Mul(p.AutonomoINSSRate)},
		)
	default:
		return TaxResult{State: StateUnset}
	}

	total := sum(lines)
	return TaxResult{
		State:     StateComputed,
		Revenue:   in.Revenue,
		TotalTax:  total,
		NetIncome: in.Revenue.Sub(total),
		Lines:     lines,
	}
}
