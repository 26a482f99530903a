// Package calc implements the financial calculation engine behind the
// portal's calculators. Every calculator is a pure function from a typed
// input to a tagged result; all jurisdiction/year constants come from an
// injected Policy and are never hardcoded in formula code.
package calc

import "github.com/shopspring/decimal"

// State tags a calculation result.
//
//   - StateUnset: required inputs missing or semantically invalid; no
//     computation happened and no breakdown is produced.
//   - StateInfeasible: inputs are individually valid but jointly make the
//     formula undefined (e.g. margin >= 100% net of tax); carries a reason.
//   - StateComputed: a fully populated result.
//
// Invalid numeric input never produces an error return, NaN or garbage
// amounts; it resolves to one of the first two states.
type State string

const (
	StateUnset      State = "unset"
	StateInfeasible State = "infeasible"
	StateComputed   State = "computed"
)

// Line is one named breakdown entry. Order is significant: presentation
// order equals computation order. Negative amounts are meaningful (they
// render as deductions).
type Line struct {
	Label  string
	Amount decimal.Decimal
}

// sum adds up all line amounts.
func sum(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Amount)
	}
	return total
}

var (
	twelve     = decimal.NewFromInt(12)
	thirty     = decimal.NewFromInt(30)
	hundred    = decimal.NewFromInt(100)
	oneThird   = decimal.NewFromInt(1).Div(decimal.NewFromInt(3))
	fourThirds = decimal.NewFromInt(4).Div(decimal.NewFromInt(3))
)

// Policy carries the jurisdiction/year-specific constants consumed by the
// calculators. It is loaded once at startup (compiled defaults merged with
// configs/policy.yaml) and treated as immutable afterwards.
type Policy struct {
	Year int

	// National minimum wage, base of the fixed MEI contributions.
	MinimumWage decimal.Decimal

	// MEI: the DAS is MinimumWage x MEIBaseRate, independent of revenue;
	// with one employee an extra MinimumWage x MEIEmployeeRate applies.
	MEIBaseRate     decimal.Decimal
	MEIEmployeeRate decimal.Decimal

	// Simples Nacional: single flat rate over revenue.
	SimplesRate decimal.Decimal

	// Independent contractor: two consumption/contribution rates over
	// revenue, reported as separate lines.
	AutonomoISSRate  decimal.Decimal
	AutonomoINSSRate decimal.Decimal

	// IBS/CBS transition rate applied by the pricing calculator when the
	// caller opts into the 2026 transition regime.
	TransitionTaxRate decimal.Decimal

	// Vacation: flat estimate of payroll deductions over salary + bonus.
	VacationDeductionRate decimal.Decimal

	// Severance fund (FGTS) monthly rate and termination penalties.
	FGTSRate            decimal.Decimal
	FGTSPenaltyNoCause  decimal.Decimal
	FGTSPenaltyMutual   decimal.Decimal

	// Retirement points targets (age + contribution years) by gender.
	RetirementTargetMale   int
	RetirementTargetFemale int

	// Static lending products table.
	LoanModalities []LoanModality
}

// LoanModality is a static profile of a named lending product. Immutable
// reference data, not user state.
type LoanModality struct {
	Kind            LoanModalityKind
	Name            string
	MonthlyRate     decimal.Decimal
	MaxInstallments int
	// Display-only description of the product's maximum amount.
	MaxAmountNote string
	// SinglePeriod products charge simple interest for one period and
	// have no installment schedule.
	SinglePeriod bool
}

// Modality returns the profile for kind, or false when the kind is unknown.
func (p *Policy) Modality(kind LoanModalityKind) (LoanModality, bool) {
	for _, m := range p.LoanModalities {
		if m.Kind == kind {
			return m, true
		}
	}
	return LoanModality{}, false
}

func rate(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// DefaultPolicy returns the compiled-in constants for the 2026 fiscal year.
// configs/policy.yaml overrides these at startup; the defaults keep the
// engine usable in tests and when no policy file is shipped.
func DefaultPolicy() Policy {
	return Policy{
		Year:        2026,
		MinimumWage: rate("1621.00"),

		MEIBaseRate:     rate("0.05"),
		MEIEmployeeRate: rate("0.11"),

		SimplesRate: rate("0.06"),

		AutonomoISSRate:  rate("0.05"),
		AutonomoINSSRate: rate("0.11"),

		TransitionTaxRate: rate("0.265"),

		VacationDeductionRate: rate("0.11"),

		FGTSRate:           rate("0.08"),
		FGTSPenaltyNoCause: rate("0.40"),
		FGTSPenaltyMutual:  rate("0.20"),

		RetirementTargetMale:   103,
		RetirementTargetFemale: 93,

		LoanModalities: []LoanModality{
			{
				Kind:            LoanWageAdvance,
				Name:            "Antecipação salarial",
				MonthlyRate:     rate("0.0349"),
				MaxInstallments: 1,
				MaxAmountNote:   "até 40% do salário líquido",
				SinglePeriod:    true,
			},
			{
				Kind:            LoanPensioner,
				Name:            "Consignado INSS (aposentados e pensionistas)",
				MonthlyRate:     rate("0.016"),
				MaxInstallments: 84,
				MaxAmountNote:   "até R$ 70.000,00",
			},
			{
				Kind:            LoanWelfare,
				Name:            "Consignado BPC",
				MonthlyRate:     rate("0.0172"),
				MaxInstallments: 84,
				MaxAmountNote:   "até R$ 25.000,00",
			},
			{
				Kind:            LoanPublicServant,
				Name:            "Consignado servidor público",
				MonthlyRate:     rate("0.0185"),
				MaxInstallments: 96,
				MaxAmountNote:   "até 35% da margem consignável",
			},
			{
				Kind:            LoanPrivatePayroll,
				Name:            "Consignado CLT",
				MonthlyRate:     rate("0.029"),
				MaxInstallments: 48,
				MaxAmountNote:   "até R$ 20.000,00",
			},
		},
	}
}
