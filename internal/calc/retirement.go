package calc

// Gender selects which points target applies.
type Gender string

const (
	GenderMale   Gender = "M"
	GenderFemale Gender = "F"
)

// RetirementInput is the eligibility estimator input.
type RetirementInput struct {
	Age               int
	ContributionYears int
	Gender            Gender
}

// RetirementResult reports the points rule: age + contribution years
// against the configured target for the gender.
type RetirementResult struct {
	State         State
	Points        int
	Target        int
	PointsMissing int
	Eligible      bool
}

// ComputeRetirement checks eligibility under the points rule.
func ComputeRetirement(in RetirementInput, p Policy) RetirementResult {
	if in.Age <= 0 || in.ContributionYears <= 0 {
		return RetirementResult{State: StateUnset}
	}

	var target int
	switch in.Gender {
	case GenderMale:
		target = p.RetirementTargetMale
	case GenderFemale:
		target = p.RetirementTargetFemale
	default:
		return RetirementResult{State: StateUnset}
	}

	points := in.Age + in.ContributionYears
	missing := target - points
	if missing < 0 {
		missing = 0
	}

	return RetirementResult{
		State:         StateComputed,
		Points:        points,
		Target:        target,
		PointsMissing: missing,
		Eligible:      missing == 0,
	}
}
