package calc

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/portaldomei/mei-portal-go/internal/money"
)

// Kind identifies one calculator in the family.
type Kind string

const (
	KindTax         Kind = "tax"
	KindVacation    Kind = "vacation"
	KindTermination Kind = "termination"
	KindPricing     Kind = "pricing"
	KindBreakEven   Kind = "breakeven"
	KindRetirement  Kind = "retirement"
	KindLoan        Kind = "loan"
)

// Descriptor is one dispatch-table entry: the calculator's identity plus
// its decode-and-compute function over a raw JSON request.
type Descriptor struct {
	Kind    Kind   `json:"kind"`
	Title   string `json:"title"`
	compute func(raw json.RawMessage, p Policy) (any, error)
}

// registry maps every calculator kind to its module. Static, built once.
var registry = []Descriptor{
	{Kind: KindTax, Title: "Calculadora de Impostos", compute: computeTaxJSON},
	{Kind: KindVacation, Title: "Calculadora de Férias", compute: computeVacationJSON},
	{Kind: KindTermination, Title: "Calculadora de Rescisão", compute: computeTerminationJSON},
	{Kind: KindPricing, Title: "Precificação e Markup", compute: computePricingJSON},
	{Kind: KindBreakEven, Title: "Ponto de Equilíbrio", compute: computeBreakEvenJSON},
	{Kind: KindRetirement, Title: "Aposentadoria por Pontos", compute: computeRetirementJSON},
	{Kind: KindLoan, Title: "Simulador de Empréstimo", compute: computeLoanJSON},
}

// Kinds lists every registered calculator in presentation order.
func Kinds() []Descriptor {
	out := make([]Descriptor, len(registry))
	copy(out, registry)
	return out
}

// Compute dispatches a raw JSON request to the calculator registered for
// kind. It returns an error only for an unknown kind or a malformed JSON
// body; invalid numeric input is reported through the result's State.
func Compute(kind Kind, raw json.RawMessage, p Policy) (any, error) {
	for _, d := range registry {
		if d.Kind == kind {
			return d.compute(raw, p)
		}
	}
	return nil, fmt.Errorf("unknown calculator kind %q", kind)
}

// StateOf reports the result state of a value returned by Compute.
// Unknown values report StateUnset.
func StateOf(result any) State {
	switch r := result.(type) {
	case taxResponse:
		return r.State
	case vacationResponse:
		return r.State
	case terminationResponse:
		return r.State
	case pricingResponse:
		return r.State
	case breakEvenResponse:
		return r.State
	case retirementResponse:
		return r.State
	case loanResponse:
		return r.State
	default:
		return StateUnset
	}
}

// ============================================================
// Wire types
// ============================================================

// LineDTO is a breakdown line on the wire: the numeric amount plus the
// codec-formatted display string.
type LineDTO struct {
	Label   string  `json:"label"`
	Amount  float64 `json:"amount"`
	Display string  `json:"display"`
}

func lineDTOs(lines []Line) []LineDTO {
	out := make([]LineDTO, 0, len(lines))
	for _, l := range lines {
		out = append(out, LineDTO{
			Label:   l.Label,
			Amount:  l.Amount.InexactFloat64(),
			Display: money.FormatBRL(l.Amount),
		})
	}
	return out
}

func amountField(d decimal.Decimal) AmountDTO {
	return AmountDTO{Value: d.InexactFloat64(), Display: money.FormatBRL(d)}
}

// AmountDTO pairs a numeric amount with its fixed BRL display string.
type AmountDTO struct {
	Value   float64 `json:"value"`
	Display string  `json:"display"`
}

func parseMoney(s string) decimal.Decimal { return money.ParseDisplay(s) }

// ============================================================
// Per-kind request/response shapes
// ============================================================

type taxRequest struct {
	Revenue     string    `json:"revenue"`
	Regime      TaxRegime `json:"regime"`
	HasEmployee bool      `json:"hasEmployee"`
}

type taxResponse struct {
	State     State     `json:"state"`
	TotalTax  AmountDTO `json:"totalTax,omitempty"`
	NetIncome AmountDTO `json:"netIncome,omitempty"`
	Breakdown []LineDTO `json:"breakdown,omitempty"`
}

func computeTaxJSON(raw json.RawMessage, p Policy) (any, error) {
	var req taxRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, fmt.Errorf("decode tax request: %w", err)
	}
	r := ComputeTax(TaxInput{
		Revenue:     parseMoney(req.Revenue),
		Regime:      req.Regime,
		HasEmployee: req.HasEmployee,
	}, p)
	if r.State != StateComputed {
		return taxResponse{State: r.State}, nil
	}
	return taxResponse{
		State:     r.State,
		TotalTax:  amountField(r.TotalTax),
		NetIncome: amountField(r.NetIncome),
		Breakdown: lineDTOs(r.Lines),
	}, nil
}

type vacationRequest struct {
	Salary string `json:"salary"`
}

type vacationResponse struct {
	State     State     `json:"state"`
	Net       AmountDTO `json:"net,omitempty"`
	Breakdown []LineDTO `json:"breakdown,omitempty"`
}

func computeVacationJSON(raw json.RawMessage, p Policy) (any, error) {
	var req vacationRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, fmt.Errorf("decode vacation request: %w", err)
	}
	r := ComputeVacation(VacationInput{Salary: parseMoney(req.Salary)}, p)
	if r.State != StateComputed {
		return vacationResponse{State: r.State}, nil
	}
	return vacationResponse{
		State:     r.State,
		Net:       amountField(r.Net),
		Breakdown: lineDTOs(r.Lines),
	}, nil
}

type terminationRequest struct {
	AdmissionDate   string          `json:"admissionDate"`
	TerminationDate string          `json:"terminationDate"`
	Salary          string          `json:"salary"`
	Type            TerminationType `json:"type"`
	Notice          NoticeType      `json:"notice"`
	HasVestedLeave  bool            `json:"hasVestedLeave"`
}

type terminationResponse struct {
	State         State     `json:"state"`
	MonthsElapsed int64     `json:"monthsElapsed,omitempty"`
	Total         AmountDTO `json:"total,omitempty"`
	Breakdown     []LineDTO `json:"breakdown,omitempty"`
}

func computeTerminationJSON(raw json.RawMessage, p Policy) (any, error) {
	var req terminationRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, fmt.Errorf("decode termination request: %w", err)
	}
	admission, _ := time.Parse("2006-01-02", req.AdmissionDate)
	termination, _ := time.Parse("2006-01-02", req.TerminationDate)
	r := ComputeTermination(TerminationInput{
		Admission:      admission,
		Termination:    termination,
		Salary:         parseMoney(req.Salary),
		Type:           req.Type,
		Notice:         req.Notice,
		HasVestedLeave: req.HasVestedLeave,
	}, p)
	if r.State != StateComputed {
		return terminationResponse{State: r.State}, nil
	}
	return terminationResponse{
		State:         r.State,
		MonthsElapsed: r.MonthsElapsed,
		Total:         amountField(r.Total),
		Breakdown:     lineDTOs(r.Lines),
	}, nil
}

type pricingRequest struct {
	Cost               string      `json:"cost"`
	MarginPercent      *float64    `json:"marginPercent"`
	Mode               PricingMode `json:"mode"`
	Quantity           int64       `json:"quantity"`
	ApplyTransitionTax bool        `json:"applyTransitionTax"`
}

type pricingResponse struct {
	State          State     `json:"state"`
	Reason         string    `json:"reason,omitempty"`
	SalePriceTotal AmountDTO `json:"salePriceTotal,omitempty"`
	UnitSalePrice  AmountDTO `json:"unitSalePrice,omitempty"`
	TaxAmount      AmountDTO `json:"taxAmount,omitempty"`
	ProfitTotal    AmountDTO `json:"profitTotal,omitempty"`
	Markup         float64   `json:"markup,omitempty"`
	Quantity       int64     `json:"quantity,omitempty"`
}

func computePricingJSON(raw json.RawMessage, p Policy) (any, error) {
	var req pricingRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, fmt.Errorf("decode pricing request: %w", err)
	}
	in := PricingInput{
		Cost:               parseMoney(req.Cost),
		Mode:               req.Mode,
		Quantity:           req.Quantity,
		ApplyTransitionTax: req.ApplyTransitionTax,
	}
	if req.MarginPercent != nil {
		in.MarginPercent = decimal.NewFromFloat(*req.MarginPercent)
		in.MarginSet = true
	}
	if in.Mode == "" {
		in.Mode = PricingPerUnit
	}
	r := ComputePricing(in, p)
	if r.State != StateComputed {
		return pricingResponse{State: r.State, Reason: r.Reason}, nil
	}
	return pricingResponse{
		State:          r.State,
		SalePriceTotal: amountField(r.SalePriceTotal),
		UnitSalePrice:  amountField(r.UnitSalePrice),
		TaxAmount:      amountField(r.TaxAmount),
		ProfitTotal:    amountField(r.ProfitTotal),
		Markup:         r.Markup.InexactFloat64(),
		Quantity:       r.Quantity,
	}, nil
}

type breakEvenRequest struct {
	FixedCosts       string `json:"fixedCosts"`
	VariableUnitCost string `json:"variableUnitCost"`
	UnitPrice        string `json:"unitPrice"`
}

type breakEvenResponse struct {
	State              State     `json:"state"`
	Units              int64     `json:"units,omitempty"`
	RevenueAtBreakEven AmountDTO `json:"revenueAtBreakEven,omitempty"`
}

func computeBreakEvenJSON(raw json.RawMessage, p Policy) (any, error) {
	var req breakEvenRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, fmt.Errorf("decode break-even request: %w", err)
	}
	r := ComputeBreakEven(BreakEvenInput{
		FixedCosts:       parseMoney(req.FixedCosts),
		VariableUnitCost: parseMoney(req.VariableUnitCost),
		UnitPrice:        parseMoney(req.UnitPrice),
	}, p)
	if r.State != StateComputed {
		return breakEvenResponse{State: r.State}, nil
	}
	return breakEvenResponse{
		State:              r.State,
		Units:              r.Units,
		RevenueAtBreakEven: amountField(r.RevenueAtBreakEven),
	}, nil
}

type retirementRequest struct {
	Age               int    `json:"age"`
	ContributionYears int    `json:"contributionYears"`
	Gender            Gender `json:"gender"`
}

type retirementResponse struct {
	State         State `json:"state"`
	Points        int   `json:"points,omitempty"`
	Target        int   `json:"target,omitempty"`
	PointsMissing int   `json:"pointsMissing"`
	Eligible      bool  `json:"eligible"`
}

func computeRetirementJSON(raw json.RawMessage, p Policy) (any, error) {
	var req retirementRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, fmt.Errorf("decode retirement request: %w", err)
	}
	r := ComputeRetirement(RetirementInput{
		Age:               req.Age,
		ContributionYears: req.ContributionYears,
		Gender:            req.Gender,
	}, p)
	if r.State != StateComputed {
		return retirementResponse{State: r.State}, nil
	}
	return retirementResponse{
		State:         r.State,
		Points:        r.Points,
		Target:        r.Target,
		PointsMissing: r.PointsMissing,
		Eligible:      r.Eligible,
	}, nil
}

type loanRequest struct {
	Principal    string           `json:"principal"`
	Modality     LoanModalityKind `json:"modality"`
	Installments int              `json:"installments"`
}

type loanResponse struct {
	State         State     `json:"state"`
	Modality      string    `json:"modality,omitempty"`
	MonthlyRate   float64   `json:"monthlyRate,omitempty"`
	Installments  int       `json:"installments,omitempty"`
	Installment   AmountDTO `json:"installment,omitempty"`
	Total         AmountDTO `json:"total,omitempty"`
	Interest      AmountDTO `json:"interest,omitempty"`
	MaxAmountNote string    `json:"maxAmountNote,omitempty"`
}

func computeLoanJSON(raw json.RawMessage, p Policy) (any, error) {
	var req loanRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, fmt.Errorf("decode loan request: %w", err)
	}
	r := ComputeLoan(LoanInput{
		Principal:    parseMoney(req.Principal),
		Modality:     req.Modality,
		Installments: req.Installments,
	}, p)
	if r.State != StateComputed {
		return loanResponse{State: r.State}, nil
	}
	return loanResponse{
		State:         r.State,
		Modality:      r.ModalityName,
		MonthlyRate:   r.MonthlyRate.InexactFloat64(),
		Installments:  r.Installments,
		Installment:   amountField(r.Installment),
		Total:         amountField(r.Total),
		Interest:      amountField(r.Interest),
		MaxAmountNote: r.MaxAmountNote,
	}, nil
}
