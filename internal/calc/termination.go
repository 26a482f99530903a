package calc

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// TerminationType selects which severance entitlements apply.
type TerminationType string

const (
	TerminationNoCause     TerminationType = "no_cause"
	TerminationWithCause   TerminationType = "with_cause"
	TerminationResignation TerminationType = "resignation"
	TerminationMutual      TerminationType = "mutual_agreement"
)

// NoticeType qualifies how the prior-notice period is handled.
type NoticeType string

const (
	NoticeWorked      NoticeType = "worked"
	NoticeIndemnified NoticeType = "indemnified"
	NoticeWaived      NoticeType = "waived"
)

// TerminationInput is the severance estimator input.
type TerminationInput struct {
	Admission   time.Time
	Termination time.Time
	Salary      decimal.Decimal
	Type        TerminationType
	Notice      NoticeType
	// HasVestedLeave adds the unpaid-vested-leave line (salary + 1/3).
	HasVestedLeave bool
}

// TerminationResult is the severance estimate: the surviving breakdown
// lines after the termination-type filter, and their total.
type TerminationResult struct {
	State         State
	MonthsElapsed int64
	Total         decimal.Decimal
	Lines         []Line
}

// ComputeTermination estimates the severance payout.
//
// Months elapsed uses a flat 30-day-month approximation over the ceiling
// whole-day difference between the dates. This is a deliberate
// simplification carried over from the published calculator; switching to
// calendar-accurate month arithmetic would change every downstream amount.
//
// All entitlements are computed up front and then filtered by termination
// type: with-cause collapses the breakdown to the salary balance alone,
// resignation drops the notice and fund-penalty lines even when nonzero.
func ComputeTermination(in TerminationInput, p Policy) TerminationResult {
	if in.Admission.IsZero() || in.Termination.IsZero() ||
		in.Termination.Before(in.Admission) ||
		in.Salary.LessThanOrEqual(decimal.Zero) {
		return TerminationResult{State: StateUnset}
	}

	days := int64(math.Ceil(in.Termination.Sub(in.Admission).Hours() / 24))
	months := days / 30

	balance := in.Salary.Div(thirty).Mul(decimal.NewFromInt(int64(in.Termination.Day())))

	thirteenth := in.Salary.Div(twelve).Mul(decimal.NewFromInt(int64(in.Termination.Month())))

	leaveMonths := months % 12
	if leaveMonths == 0 {
		leaveMonths = 12
	}
	proRatedLeave := in.Salary.Div(twelve).Mul(decimal.NewFromInt(leaveMonths)).Mul(fourThirds)

	fundBase := in.Salary.Mul(p.FGTSRate).Mul(decimal.NewFromInt(max64(1, months)))
	var penalty decimal.Decimal
	switch in.Type {
	case TerminationNoCause:
		penalty = fundBase.Mul(p.FGTSPenaltyNoCause)
	case TerminationMutual:
		penalty = fundBase.Mul(p.FGTSPenaltyMutual)
	}

	var notice decimal.Decimal
	if in.Type == TerminationNoCause && in.Notice == NoticeIndemnified {
		notice = in.Salary
	}

	lines := []Line{
		{Label: "Saldo de salário", Amount: balance},
		{Label: "13º proporcional", Amount: thirteenth},
		{Label: "Férias proporcionais + 1/3", Amount: proRatedLeave},
	}
	if in.HasVestedLeave {
		lines = append(lines, Line{Label: "Férias vencidas + 1/3", Amount: in.Salary.Mul(fourThirds)})
	}
	if notice.GreaterThan(decimal.Zero) {
		lines = append(lines, Line{Label: "Aviso prévio indenizado", Amount: notice})
	}
	if penalty.GreaterThan(decimal.Zero) {
		lines = append(lines, Line{Label: "Multa FGTS", Amount: penalty})
	}

	switch in.Type {
	case TerminationWithCause:
		lines = lines[:1]
	case TerminationResignation:
		filtered := lines[:0]
		for _, l := range lines {
			if l.Label == "Aviso prévio indenizado" || l.Label == "Multa FGTS" {
				continue
			}
			filtered = append(filtered, l)
		}
		lines = filtered
	}

	return TerminationResult{
		State:         StateComputed,
		MonthsElapsed: months,
		Total:         sum(lines),
		Lines:         lines,
	}
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
