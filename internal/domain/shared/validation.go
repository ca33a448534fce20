package shared

import (
	"fmt"
	"strings"
)

// ═══════════════════════════════════════════════════════════════════════════
// RULE CODES
// Stable identifiers for every business rule the validators can trip.
// Callers match on these; messages are for humans only.
// ═══════════════════════════════════════════════════════════════════════════

// RuleCode identifies a specific violated business rule.
type RuleCode string

const (
	// Shift rules
	RuleShiftOutsideInternship   RuleCode = "ShiftOutsideInternship"
	RuleShiftDurationInvalid     RuleCode = "ShiftDurationInvalid"
	RuleShiftOverlap             RuleCode = "ShiftOverlap"
	RuleWeeklyHoursExceeded      RuleCode = "WeeklyHoursExceeded"
	RuleMonthlyHoursInsufficient RuleCode = "MonthlyHoursInsufficient"

	// Procedure rules
	RuleInvalidProcedureCode    RuleCode = "InvalidProcedureCode"
	RuleDailyLimitExceeded      RuleCode = "DailyLimitExceeded"
	RuleSimulationLimitExceeded RuleCode = "SimulationLimitExceeded"
	RuleDuplicateProcedure      RuleCode = "DuplicateProcedure"
	RuleWrongYearForRequirement RuleCode = "WrongYearForRequirement"

	// Temporal context rules
	RuleNoActiveModule   RuleCode = "NoActiveModule"
	RuleDateBeforeStart  RuleCode = "DateBeforeStart"
	RuleFutureDatedEvent RuleCode = "FutureDatedEvent"

	// Module lifecycle rules
	RuleInvalidModuleProgression RuleCode = "InvalidModuleProgression"
	RuleModuleRequirementUnmet   RuleCode = "ModuleRequirementUnmet"

	// Self-education / absence rules
	RuleSelfEducationYearlyCapExceeded RuleCode = "SelfEducationYearlyCapExceeded"
	RuleAbsenceOverlap                 RuleCode = "AbsenceOverlap"
)

// ═══════════════════════════════════════════════════════════════════════════
// LIMIT POLICY
// The registry treats some caps as contractual and some as advisory depending
// on the call path, so severity is always the caller's decision.
// ═══════════════════════════════════════════════════════════════════════════

// LimitPolicy tells a validator whether a tripped cap blocks the event or is
// only surfaced as a warning.
type LimitPolicy int

const (
	// LimitAdvisory records the violation as a warning; the event stays valid.
	LimitAdvisory LimitPolicy = iota

	// LimitStrict records the violation as a blocking error.
	LimitStrict
)

// ═══════════════════════════════════════════════════════════════════════════
// VALIDATION RESULT
// Validators accumulate every violation instead of failing fast, so a user
// fixing a form sees the full list at once.
// ═══════════════════════════════════════════════════════════════════════════

// Violation is a single tripped rule with enough context to render a precise
// message ("shift date 2024-06-05 is outside internship range ...").
type Violation struct {
	Rule    RuleCode
	Kind    error // taxonomy kind: ErrTemporalViolation, ErrCurriculumViolation, ...
	Message string
}

// Error implements the error interface.
func (v Violation) Error() string {
	return fmt.Sprintf("%s: %s", v.Rule, v.Message)
}

// Is implements errors.Is() matching against the taxonomy kind.
func (v Violation) Is(target error) bool {
	return v.Kind != nil && v.Kind == target
}

// ValidationResult carries the accumulated outcome of validating one event.
type ValidationResult struct {
	Errors   []Violation
	Warnings []Violation
}

// AddError records a blocking violation.
func (r *ValidationResult) AddError(rule RuleCode, kind error, format string, args ...any) {
	r.Errors = append(r.Errors, Violation{Rule: rule, Kind: kind, Message: fmt.Sprintf(format, args...)})
}

// AddWarning records a non-blocking violation that must still be surfaced.
func (r *ValidationResult) AddWarning(rule RuleCode, kind error, format string, args ...any) {
	r.Warnings = append(r.Warnings, Violation{Rule: rule, Kind: kind, Message: fmt.Sprintf(format, args...)})
}

// Add records the violation with severity chosen by the policy.
func (r *ValidationResult) Add(policy LimitPolicy, rule RuleCode, kind error, format string, args ...any) {
	if policy == LimitStrict {
		r.AddError(rule, kind, format, args...)
		return
	}
	r.AddWarning(rule, kind, format, args...)
}

// Merge appends another result's violations into this one.
func (r *ValidationResult) Merge(other ValidationResult) {
	r.Errors = append(r.Errors, other.Errors...)
	r.Warnings = append(r.Warnings, other.Warnings...)
}

// IsValid reports whether no blocking errors were recorded.
func (r ValidationResult) IsValid() bool { return len(r.Errors) == 0 }

// HasError reports whether the given rule appears among the errors.
func (r ValidationResult) HasError(rule RuleCode) bool {
	for _, v := range r.Errors {
		if v.Rule == rule {
			return true
		}
	}
	return false
}

// HasWarning reports whether the given rule appears among the warnings.
func (r ValidationResult) HasWarning(rule RuleCode) bool {
	for _, v := range r.Warnings {
		if v.Rule == rule {
			return true
		}
	}
	return false
}

// Err returns nil when valid, otherwise a single error aggregating every
// blocking violation.
func (r ValidationResult) Err() error {
	if r.IsValid() {
		return nil
	}
	msgs := make([]string, len(r.Errors))
	for i, v := range r.Errors {
		msgs[i] = v.Error()
	}
	return NewDomainError("validation", "Validate", ErrValidation, strings.Join(msgs, "; "))
}
