package config

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/portaldomei/mei-portal-go/internal/calc"
)

// policyFile mirrors configs/policy.yaml. Amounts and rates are plain
// numbers in the file and converted to decimals here, so the YAML stays
// hand-editable by whoever updates the year's constants.
type policyFile struct {
	Year        int     `yaml:"year"`
	MinimumWage float64 `yaml:"minimum_wage"`

	MEI struct {
		BaseRate     float64 `yaml:"base_rate"`
		EmployeeRate float64 `yaml:"employee_rate"`
	} `yaml:"mei"`

	SimplesRate float64 `yaml:"simples_rate"`

	Autonomo struct {
		ISSRate  float64 `yaml:"iss_rate"`
		INSSRate float64 `yaml:"inss_rate"`
	} `yaml:"autonomo"`

	TransitionTaxRate float64 `yaml:"transition_tax_rate"`

	VacationDeductionRate float64 `yaml:"vacation_deduction_rate"`

	FGTS struct {
		Rate           float64 `yaml:"rate"`
		PenaltyNoCause float64 `yaml:"penalty_no_cause"`
		PenaltyMutual  float64 `yaml:"penalty_mutual"`
	} `yaml:"fgts"`

	Retirement struct {
		TargetMale   int `yaml:"target_male"`
		TargetFemale int `yaml:"target_female"`
	} `yaml:"retirement"`

	LoanModalities []struct {
		Kind            string  `yaml:"kind"`
		Name            string  `yaml:"name"`
		MonthlyRate     float64 `yaml:"monthly_rate"`
		MaxInstallments int     `yaml:"max_installments"`
		MaxAmountNote   string  `yaml:"max_amount_note"`
		SinglePeriod    bool    `yaml:"single_period"`
	} `yaml:"loan_modalities"`
}

// LoadPolicy reads the fiscal policy file and returns the engine policy.
// A missing file falls back to the compiled defaults so the binary still
// runs without configs/ shipped alongside it; a present-but-broken file is
// an error, silently computing taxes on stale constants is worse than
// failing to start.
func LoadPolicy(path string) (calc.Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return calc.DefaultPolicy(), nil
		}
		return calc.Policy{}, fmt.Errorf("read policy file %s: %w", path, err)
	}

	var pf policyFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return calc.Policy{}, fmt.Errorf("parse policy file %s: %w", path, err)
	}

	p := calc.Policy{
		Year:                   pf.Year,
		MinimumWage:            decimal.NewFromFloat(pf.MinimumWage),
		MEIBaseRate:            decimal.NewFromFloat(pf.MEI.BaseRate),
		MEIEmployeeRate:        decimal.NewFromFloat(pf.MEI.EmployeeRate),
		SimplesRate:            decimal.NewFromFloat(pf.SimplesRate),
		AutonomoISSRate:        decimal.NewFromFloat(pf.Autonomo.ISSRate),
		AutonomoINSSRate:       decimal.NewFromFloat(pf.Autonomo.INSSRate),
		TransitionTaxRate:      decimal.NewFromFloat(pf.TransitionTaxRate),
		VacationDeductionRate:  decimal.NewFromFloat(pf.VacationDeductionRate),
		FGTSRate:               decimal.NewFromFloat(pf.FGTS.Rate),
		FGTSPenaltyNoCause:     decimal.NewFromFloat(pf.FGTS.PenaltyNoCause),
		FGTSPenaltyMutual:      decimal.NewFromFloat(pf.FGTS.PenaltyMutual),
		RetirementTargetMale:   pf.Retirement.TargetMale,
		RetirementTargetFemale: pf.Retirement.TargetFemale,
	}
	for _, m := range pf.LoanModalities {
		p.LoanModalities = append(p.LoanModalities, calc.LoanModality{
			Kind:            calc.LoanModalityKind(m.Kind),
			Name:            m.Name,
			MonthlyRate:     decimal.NewFromFloat(m.MonthlyRate),
			MaxInstallments: m.MaxInstallments,
			MaxAmountNote:   m.MaxAmountNote,
			SinglePeriod:    m.SinglePeriod,
		})
	}

	if err := validatePolicy(p); err != nil {
		return calc.Policy{}, fmt.Errorf("policy file %s: %w", path, err)
	}
	return p, nil
}

func validatePolicy(p calc.Policy) error {
	if p.Year == 0 {
		return fmt.Errorf("year is required")
	}
	if p.MinimumWage.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("minimum_wage must be positive")
	}
	if p.RetirementTargetMale <= 0 || p.RetirementTargetFemale <= 0 {
		return fmt.Errorf("retirement targets must be positive")
	}
	// A rate key missing from the file unmarshals as 0 and would silently
	// compute zero taxes, so every rate is required to be positive.
	rates := []struct {
		name  string
		value decimal.Decimal
	}{
		{"mei.base_rate", p.MEIBaseRate},
		{"mei.employee_rate", p.MEIEmployeeRate},
		{"simples_rate", p.SimplesRate},
		{"autonomo.iss_rate", p.AutonomoISSRate},
		{"autonomo.inss_rate", p.AutonomoINSSRate},
		{"transition_tax_rate", p.TransitionTaxRate},
		{"vacation_deduction_rate", p.VacationDeductionRate},
		{"fgts.rate", p.FGTSRate},
		{"fgts.penalty_no_cause", p.FGTSPenaltyNoCause},
		{"fgts.penalty_mutual", p.FGTSPenaltyMutual},
	}
	for _, r := range rates {
		if r.value.LessThanOrEqual(decimal.Zero) {
			return fmt.Errorf("%s must be positive", r.name)
		}
	}
	if len(p.LoanModalities) == 0 {
		return fmt.Errorf("at least one loan modality is required")
	}
	for _, m := range p.LoanModalities {
		if m.MonthlyRate.LessThanOrEqual(decimal.Zero) {
			return fmt.Errorf("loan modality %s: monthly_rate must be positive", m.Kind)
		}
		if m.MaxInstallments < 1 {
			return fmt.Errorf("loan modality %s: max_installments must be at least 1", m.Kind)
		}
	}
	return nil
}
