package calc

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func baseTermination() TerminationInput {
	return TerminationInput{
		Admission:   date("2022-01-10"),
		Termination: date("2024-07-15"),
		Salary:      dec("3000"),
		Type:        TerminationNoCause,
		Notice:      NoticeIndemnified,
	}
}

func labels(lines []Line) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		out = append(out, l.Label)
	}
	return out
}

func TestComputeTermination_NoCauseIndemnified(t *testing.T) {
	p := DefaultPolicy()
	in := baseTermination()

	r := ComputeTermination(in, p)

	require.Equal(t, StateComputed, r.State)
	assert.Equal(t, []string{
		"Saldo de salário",
		"13º proporcional",
		"Férias proporcionais + 1/3",
		"Aviso prévio indenizado",
		"Multa FGTS",
	}, labels(r.Lines))

	// Notice in lieu equals one full salary.
	assert.True(t, r.Lines[3].Amount.Equal(in.Salary))

	// 2022-01-10 → 2024-07-15 is 917 days, 30 whole 30-day months.
	assert.Equal(t, int64(30), r.MonthsElapsed)

	// Balance: salary/30 x day-of-month (15).
	wantBalance := in.Salary.Div(decimal.NewFromInt(30)).Mul(decimal.NewFromInt(15))
	assert.True(t, r.Lines[0].Amount.Equal(wantBalance))

	// 13th: salary/12 x termination month (July = 7).
	want13 := in.Salary.Div(decimal.NewFromInt(12)).Mul(decimal.NewFromInt(7))
	assert.True(t, r.Lines[1].Amount.Equal(want13))

	// Penalty: salary x 8% x 30 months x 40%.
	wantPenalty := in.Salary.Mul(dec("0.08")).Mul(decimal.NewFromInt(30)).Mul(dec("0.40"))
	assert.True(t, r.Lines[4].Amount.Equal(wantPenalty), "penalty = %s, want %s", r.Lines[4].Amount, wantPenalty)

	assert.True(t, r.Total.Equal(sum(r.Lines)))
}

func TestComputeTermination_WithCauseCollapsesToBalance(t *testing.T) {
	in := baseTermination()
	in.Type = TerminationWithCause

	r := ComputeTermination(in, DefaultPolicy())

	require.Equal(t, StateComputed, r.State)
	require.Len(t, r.Lines, 1)
	assert.Equal(t, "Saldo de salário", r.Lines[0].Label)
	assert.True(t, r.Total.Equal(r.Lines[0].Amount))
}

func TestComputeTermination_ResignationDropsNoticeAndPenalty(t *testing.T) {
	in := baseTermination()
	in.Type = TerminationResignation
	// Indemnified notice would produce a line under no-cause; resignation
	// must never include it.
	in.Notice = NoticeIndemnified
	in.HasVestedLeave = true

	r := ComputeTermination(in, DefaultPolicy())

	require.Equal(t, StateComputed, r.State)
	assert.Equal(t, []string{
		"Saldo de salário",
		"13º proporcional",
		"Férias proporcionais + 1/3",
		"Férias vencidas + 1/3",
	}, labels(r.Lines))
}

func TestComputeTermination_MutualAgreementHalvedPenalty(t *testing.T) {
	p := DefaultPolicy()
	in := baseTermination()
	in.Type = TerminationMutual
	in.Notice = NoticeWaived

	r := ComputeTermination(in, p)

	require.Equal(t, StateComputed, r.State)
	last := r.Lines[len(r.Lines)-1]
	require.Equal(t, "Multa FGTS", last.Label)

	wantPenalty := in.Salary.Mul(p.FGTSRate).Mul(decimal.NewFromInt(30)).Mul(p.FGTSPenaltyMutual)
	assert.True(t, last.Amount.Equal(wantPenalty))

	// No notice line for mutual agreement.
	assert.NotContains(t, labels(r.Lines), "Aviso prévio indenizado")
}

func TestComputeTermination_VestedLeaveLine(t *testing.T) {
	in := baseTermination()
	in.HasVestedLeave = true

	r := ComputeTermination(in, DefaultPolicy())

	require.Equal(t, StateComputed, r.State)
	assert.Equal(t, "Férias vencidas + 1/3", r.Lines[3].Label)
	assert.True(t, r.Lines[3].Amount.Equal(in.Salary.Mul(fourThirds)))
}

func TestComputeTermination_ZeroLeaveMonthsMapsToTwelve(t *testing.T) {
	in := baseTermination()
	// 360 days elapsed → 12 whole months → 12 % 12 = 0 → mapped to 12.
	in.Admission = date("2023-07-21")
	in.Termination = date("2024-07-15")

	r := ComputeTermination(in, DefaultPolicy())

	require.Equal(t, StateComputed, r.State)
	require.Equal(t, int64(12), r.MonthsElapsed)

	wantLeave := in.Salary.Div(twelve).Mul(decimal.NewFromInt(12)).Mul(fourThirds)
	assert.True(t, r.Lines[2].Amount.Equal(wantLeave))
}

func TestComputeTermination_Unset(t *testing.T) {
	p := DefaultPolicy()

	in := baseTermination()
	in.Termination = date("2021-01-01") // before admission
	assert.Equal(t, StateUnset, ComputeTermination(in, p).State)

	in = baseTermination()
	in.Salary = dec("0")
	assert.Equal(t, StateUnset, ComputeTermination(in, p).State)

	in = baseTermination()
	in.Admission = time.Time{}
	assert.Equal(t, StateUnset, ComputeTermination(in, p).State)
}
