package education

import (
	"github.com/sledzspecke/smk-progress-hub/internal/domain/shared"
	"github.com/sledzspecke/smk-progress-hub/internal/domain/specialization"
)

// ═══════════════════════════════════════════════════════════════════════════
// Education Validation
// The self-education pool is a hard yearly cap; absence overlaps only warn
// because overlapping paperwork is common and resolved administratively.
// ═══════════════════════════════════════════════════════════════════════════

// Validator checks education entries against the program policy.
type Validator struct {
	policy specialization.ProgramPolicy
}

// NewValidator creates an education validator for one program.
func NewValidator(policy specialization.ProgramPolicy) *Validator {
	return &Validator{policy: policy}
}

// ValidateSelfEducation checks a candidate self-education grant against the
// yearly pool. Siblings are the existing entries of the same module; the
// candidate must not be among them.
func (v *Validator) ValidateSelfEducation(candidate *SelfEducationDays, siblings []*SelfEducationDays) shared.ValidationResult {
	var result shared.ValidationResult

	used := candidate.Days
	for _, s := range siblings {
		if s.ID == candidate.ID {
			continue
		}
		if s.ModuleID == candidate.ModuleID && s.Year == candidate.Year {
			used += s.Days
		}
	}

	pool := v.policy.SelfEducationYearlyCap()
	if used > pool {
		result.AddError(shared.RuleSelfEducationYearlyCapExceeded, shared.ErrCurriculumViolation,
			"%d self-education days in %d exceed the yearly pool of %d",
			used, candidate.Year, pool)
	}

	return result
}

// UsedSelfEducationDays sums the days drawn from one module's pool in one
// calendar year.
func UsedSelfEducationDays(entries []*SelfEducationDays, moduleID shared.ModuleID, year int) int {
	used := 0
	for _, e := range entries {
		if e.ModuleID == moduleID && e.Year == year {
			used += e.Days
		}
	}
	return used
}

// ValidateAbsence checks a candidate absence against the existing ones.
func (v *Validator) ValidateAbsence(candidate *Absence, siblings []*Absence) shared.ValidationResult {
	var result shared.ValidationResult

	for _, s := range siblings {
		if s.ID == candidate.ID {
			continue
		}
		if s.Dates.Overlaps(candidate.Dates) {
			result.AddWarning(shared.RuleAbsenceOverlap, shared.ErrTemporalViolation,
				"absence %s overlaps existing %s absence %s",
				candidate.Dates, s.Type, s.Dates)
		}
	}

	return result
}

// TotalExtensionDays sums the end-date extension of all absences.
func TotalExtensionDays(absences []*Absence) int {
	total := 0
	for _, a := range absences {
		total += a.ExtensionDays()
	}
	return total
}
