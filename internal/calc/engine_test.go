package calc

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindsListsEveryCalculator(t *testing.T) {
	kinds := Kinds()
	require.Len(t, kinds, 7)

	seen := map[Kind]bool{}
	for _, d := range kinds {
		assert.NotEmpty(t, d.Title)
		seen[d.Kind] = true
	}
	for _, k := range []Kind{KindTax, KindVacation, KindTermination, KindPricing, KindBreakEven, KindRetirement, KindLoan} {
		assert.True(t, seen[k], "missing %s", k)
	}
}

func TestCompute_UnknownKind(t *testing.T) {
	_, err := Compute(Kind("bogus"), json.RawMessage(`{}`), DefaultPolicy())
	assert.Error(t, err)
}

func TestCompute_MalformedBody(t *testing.T) {
	_, err := Compute(KindTax, json.RawMessage(`{"revenue":`), DefaultPolicy())
	assert.Error(t, err)
}

func TestCompute_TaxEndToEnd(t *testing.T) {
	p := DefaultPolicy()

	out, err := Compute(KindTax, json.RawMessage(`{"revenue":"3.000,00","regime":"mei"}`), p)
	require.NoError(t, err)

	resp, ok := out.(taxResponse)
	require.True(t, ok)
	require.Equal(t, StateComputed, resp.State)
	require.Len(t, resp.Breakdown, 1)

	das := p.MinimumWage.Mul(p.MEIBaseRate)
	assert.InDelta(t, das.InexactFloat64(), resp.TotalTax.Value, 1e-9)
	assert.InDelta(t, 3000-das.InexactFloat64(), resp.NetIncome.Value, 1e-9)
	assert.Contains(t, resp.TotalTax.Display, "R$")
}

func TestCompute_UnsetNeverPartial(t *testing.T) {
	p := DefaultPolicy()

	out, err := Compute(KindVacation, json.RawMessage(`{"salary":""}`), p)
	require.NoError(t, err)

	resp := out.(vacationResponse)
	assert.Equal(t, StateUnset, resp.State)
	assert.Empty(t, resp.Breakdown)
	assert.Zero(t, resp.Net.Value)
}

// Same inputs must yield deep-equal results on every invocation.
func TestCompute_Idempotent(t *testing.T) {
	p := DefaultPolicy()

	requests := map[Kind]string{
		KindTax:         `{"revenue":"12.345,67","regime":"autonomo"}`,
		KindVacation:    `{"salary":"2.500,00"}`,
		KindTermination: `{"admissionDate":"2020-03-01","terminationDate":"2024-11-20","salary":"4.000,00","type":"no_cause","notice":"indemnified","hasVestedLeave":true}`,
		KindPricing:     `{"cost":"1.000,00","marginPercent":35,"mode":"batch","quantity":10,"applyTransitionTax":true}`,
		KindBreakEven:   `{"fixedCosts":"8.000,00","variableUnitCost":"3,20","unitPrice":"9,90"}`,
		KindRetirement:  `{"age":58,"contributionYears":34,"gender":"F"}`,
		KindLoan:        `{"principal":"10.000,00","modality":"public_servant","installments":60}`,
	}

	for kind, body := range requests {
		first, err := Compute(kind, json.RawMessage(body), p)
		require.NoError(t, err, "%s", kind)
		second, err := Compute(kind, json.RawMessage(body), p)
		require.NoError(t, err, "%s", kind)
		assert.True(t, reflect.DeepEqual(first, second), "%s not idempotent", kind)
	}
}

func TestCompute_PricingInfeasibleOnTheWire(t *testing.T) {
	out, err := Compute(KindPricing, json.RawMessage(`{"cost":"100,00","marginPercent":80,"applyTransitionTax":true}`), DefaultPolicy())
	require.NoError(t, err)

	resp := out.(pricingResponse)
	assert.Equal(t, StateInfeasible, resp.State)
	assert.NotEmpty(t, resp.Reason)
}
