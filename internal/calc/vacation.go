package calc

import "github.com/shopspring/decimal"

// VacationInput is the paid-leave estimator input.
type VacationInput struct {
	Salary decimal.Decimal
}

// VacationResult breaks the vacation payout into base salary, the
// constitutional one-third bonus and an estimated deductions line. The
// deductions line is intentionally negative: its sign carries meaning for
// display, not just magnitude.
type VacationResult struct {
	State State
	Net   decimal.Decimal
	Lines []Line
}

// ComputeVacation estimates the net vacation payout for a gross salary.
func ComputeVacation(in VacationInput, p Policy) VacationResult {
	if in.Salary.LessThanOrEqual(decimal.Zero) {
		return VacationResult{State: StateUnset}
	}

	bonus := in.Salary.Mul(oneThird)
	deductions := in.Salary.Add(bonus).Mul(p.VacationDeductionRate).Neg()

	lines := []Line{
		{Label: "Salário base", Amount: in.Salary},
		{Label: "1/3 constitucional", Amount: bonus},
		{Label: "Descontos estimados", Amount: deductions},
	}

	return VacationResult{
		State: StateComputed,
		Net:   sum(lines),
		Lines: lines,
	}
}
