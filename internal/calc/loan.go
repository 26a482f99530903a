package calc

import "github.com/shopspring/decimal"

// LoanModalityKind names the static lending products the simulator knows.
type LoanModalityKind string

const (
	LoanWageAdvance    LoanModalityKind = "wage_advance"
	LoanPensioner      LoanModalityKind = "pensioner"
	LoanWelfare        LoanModalityKind = "welfare_beneficiary"
	LoanPublicServant  LoanModalityKind = "public_servant"
	LoanPrivatePayroll LoanModalityKind = "private_payroll"
)

// LoanInput is the loan simulator input. Installments beyond the modality's
// maximum are clamped; single-period modalities always run with one.
type LoanInput struct {
	Principal    decimal.Decimal
	Modality     LoanModalityKind
	Installments int
}

// LoanResult is the simulated schedule. Installment is zero for
// single-period modalities, which have no periodic installment value.
type LoanResult struct {
	State         State
	ModalityName  string
	MonthlyRate   decimal.Decimal
	Installments  int
	Installment   decimal.Decimal
	Total         decimal.Decimal
	Interest      decimal.Decimal
	MaxAmountNote string
}

// ClampInstallments bounds a requested installment count to what the
// modality allows. Selection handlers call this when the user switches
// modality so that the visible count shrinks immediately, not only at the
// next computation.
func ClampInstallments(p Policy, kind LoanModalityKind, n int) int {
	m, ok := p.Modality(kind)
	if !ok {
		return n
	}
	if m.SinglePeriod {
		return 1
	}
	if n < 1 {
		return 1
	}
	if n > m.MaxInstallments {
		return m.MaxInstallments
	}
	return n
}

// ComputeLoan simulates the selected lending product.
//
// Single-period products charge simple interest: total = principal x (1+i).
// Everything else uses the exact annuity (Price) formula
// installment = P x i x (1+i)^n / ((1+i)^n - 1); the closed form matters
// here, a flat-interest approximation drifts visibly over long schedules.
func ComputeLoan(in LoanInput, p Policy) LoanResult {
	if in.Principal.LessThanOrEqual(decimal.Zero) {
		return LoanResult{State: StateUnset}
	}
	m, ok := p.Modality(in.Modality)
	if !ok {
		return LoanResult{State: StateUnset}
	}

	n := ClampInstallments(p, in.Modality, in.Installments)

	if m.SinglePeriod {
		total := in.Principal.Mul(decimal.NewFromInt(1).Add(m.MonthlyRate))
		return LoanResult{
			State:         StateComputed,
			ModalityName:  m.Name,
			MonthlyRate:   m.MonthlyRate,
			Installments:  1,
			Total:         total,
			Interest:      total.Sub(in.Principal),
			MaxAmountNote: m.MaxAmountNote,
		}
	}

	one := decimal.NewFromInt(1)
	factor := one.Add(m.MonthlyRate).Pow(decimal.NewFromInt(int64(n)))
	installment := in.Principal.Mul(m.MonthlyRate).Mul(factor).Div(factor.Sub(one))
	total := installment.Mul(decimal.NewFromInt(int64(n)))

	return LoanResult{
		State:         StateComputed,
		ModalityName:  m.Name,
		MonthlyRate:   m.MonthlyRate,
		Installments:  n,
		Installment:   installment,
		Total:         total,
		Interest:      total.Sub(in.Principal),
		MaxAmountNote: m.MaxAmountNote,
	}
}
