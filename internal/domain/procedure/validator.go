package procedure

import (
	"time"

	"github.com/sledzspecke/smk-progress-hub/internal/domain/shared"
	"github.com/sledzspecke/smk-progress-hub/internal/domain/specialization"
)

// ═══════════════════════════════════════════════════════════════════════════
// Procedure Validation
// Unknown codes and wrong-year assignments block. Daily and simulation caps
// block or warn per the caller's limit policy. Duplicates never block: the
// entry is kept and flagged so an auditor can resolve it.
// ═══════════════════════════════════════════════════════════════════════════

// Validator checks candidate realizations against the curriculum requirements
// and the sibling realizations already recorded.
type Validator struct {
	policy specialization.ProgramPolicy
}

// NewValidator creates a procedure validator for one program.
func NewValidator(policy specialization.ProgramPolicy) *Validator {
	return &Validator{policy: policy}
}

// Validate checks one candidate realization. The requirement may be nil when
// no curriculum line matches the candidate's code; siblings are the already
// recorded realizations of the same specialization.
func (v *Validator) Validate(candidate *Realization, req *Requirement, siblings []*Realization, limits shared.LimitPolicy) shared.ValidationResult {
	var result shared.ValidationResult

	if req == nil {
		result.AddError(shared.RuleInvalidProcedureCode, shared.ErrCurriculumViolation,
			"procedure code %q is not part of the curriculum", candidate.Code)
		return result
	}

	if candidate.Date.After(shared.DateOnly(time.Now())) {
		result.AddWarning(shared.RuleFutureDatedEvent, shared.ErrTemporalViolation,
			"procedure date %s is in the future", candidate.Date.Format(time.DateOnly))
	}

	v.checkYearPin(&result, candidate, req)
	v.checkDailyLimit(&result, candidate, siblings, req, limits)
	v.checkSimulationShare(&result, candidate, siblings, req, limits)
	v.checkDuplicate(&result, candidate, siblings)

	return result
}

// checkYearPin enforces the requirement's training-year pin. Only
// year-bucketed programs pin requirements to years.
func (v *Validator) checkYearPin(result *shared.ValidationResult, candidate *Realization, req *Requirement) {
	if !v.policy.BucketsByYear() || req.Year.IsUnassigned() {
		return
	}
	if candidate.Year.IsUnassigned() {
		return
	}
	if candidate.Year != req.Year {
		result.AddError(shared.RuleWrongYearForRequirement, shared.ErrCurriculumViolation,
			"procedure %q is required in year %d, realization is in year %d",
			req.Code, req.Year.Int(), candidate.Year.Int())
	}
}

// checkDailyLimit applies the per-day cap with the caller's severity.
func (v *Validator) checkDailyLimit(result *shared.ValidationResult, candidate *Realization, siblings []*Realization, req *Requirement, limits shared.LimitPolicy) {
	if req.DailyLimit <= 0 {
		return
	}
	count := 1
	for _, s := range siblings {
		if s.ID == candidate.ID {
			continue
		}
		if s.Code == candidate.Code && s.Date.Equal(candidate.Date) {
			count++
		}
	}
	if count > req.DailyLimit {
		result.Add(limits, shared.RuleDailyLimitExceeded, shared.ErrCurriculumViolation,
			"%d realizations of %q on %s, daily limit is %d",
			count, req.Code, candidate.Date.Format(time.DateOnly), req.DailyLimit)
	}
}

// checkSimulationShare bounds the simulated portion of a requirement.
func (v *Validator) checkSimulationShare(result *shared.ValidationResult, candidate *Realization, siblings []*Realization, req *Requirement, limits shared.LimitPolicy) {
	if !candidate.Simulated {
		return
	}
	if !req.AllowsSimulation {
		result.AddError(shared.RuleSimulationLimitExceeded, shared.ErrCurriculumViolation,
			"requirement %q does not allow simulated realizations", req.Code)
		return
	}

	limitPercent := req.SimulationLimitPercent
	if limitPercent <= 0 {
		limitPercent = v.policy.SimulationLimitPercent()
	}
	maxSimulated := req.RequiredTotal() * limitPercent / 100

	simulated := 1
	for _, s := range siblings {
		if s.ID == candidate.ID {
			continue
		}
		if s.Code == candidate.Code && s.Simulated {
			simulated++
		}
	}
	if simulated > maxSimulated {
		result.Add(limits, shared.RuleSimulationLimitExceeded, shared.ErrCurriculumViolation,
			"%d simulated realizations of %q exceed the allowed %d (%d%% of %d)",
			simulated, req.Code, maxSimulated, limitPercent, req.RequiredTotal())
	}
}

// checkDuplicate flags an identical code+date+role entry for audit.
func (v *Validator) checkDuplicate(result *shared.ValidationResult, candidate *Realization, siblings []*Realization) {
	for _, s := range siblings {
		if s.ID == candidate.ID {
			continue
		}
		if s.Code == candidate.Code && s.Role == candidate.Role && s.Date.Equal(candidate.Date) {
			result.AddWarning(shared.RuleDuplicateProcedure, shared.ErrCurriculumViolation,
				"identical %s realization of %q already recorded on %s",
				candidate.Role, candidate.Code, candidate.Date.Format(time.DateOnly))
			return
		}
	}
}

// FindDuplicate returns the first sibling matching the candidate's
// code+date+role, for the audit flag.
func FindDuplicate(candidate *Realization, siblings []*Realization) *Realization {
	for _, s := range siblings {
		if s.ID == candidate.ID {
			continue
		}
		if s.Code == candidate.Code && s.Role == candidate.Role && s.Date.Equal(candidate.Date) {
			return s
		}
	}
	return nil
}
