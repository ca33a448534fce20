package shift

import (
	"time"

	"github.com/sledzspecke/smk-progress-hub/internal/domain/internship"
	"github.com/sledzspecke/smk-progress-hub/internal/domain/shared"
	"github.com/sledzspecke/smk-progress-hub/internal/domain/specialization"
)

// ═══════════════════════════════════════════════════════════════════════════
// Shift Validation
// Containment and duration problems always block. The weekly cap blocks or
// warns per the caller's limit policy. Monthly minimums only ever warn:
// a thin month is a compliance signal, not a reason to reject the entry.
// ═══════════════════════════════════════════════════════════════════════════

// Validator checks candidate shifts against the internship window, the
// program policy's caps, and the sibling shifts already recorded.
type Validator struct {
	policy specialization.ProgramPolicy
}

// NewValidator creates a shift validator for one program.
func NewValidator(policy specialization.ProgramPolicy) *Validator {
	return &Validator{policy: policy}
}

// Validate checks one candidate shift. Siblings are the already recorded
// shifts of the same specialization; the candidate itself must not be among
// them. The module may be nil for Old-SMK programs.
func (v *Validator) Validate(candidate *MedicalShift, host *internship.Internship, module *specialization.Module, siblings []*MedicalShift, limits shared.LimitPolicy) shared.ValidationResult {
	var result shared.ValidationResult

	if candidate.Duration.TotalMinutes() < shared.MinShiftMinutes {
		result.AddError(shared.RuleShiftDurationInvalid, shared.ErrValueOutOfRange,
			"shift duration %s is below the %d minute minimum",
			candidate.Duration.DisplayFormat(), shared.MinShiftMinutes)
	}

	if host == nil {
		result.AddError(shared.RuleShiftOutsideInternship, shared.ErrTemporalViolation,
			"shift has no internship to attach to")
	} else if !host.ContainsDate(candidate.Date) {
		result.AddError(shared.RuleShiftOutsideInternship, shared.ErrTemporalViolation,
			"shift date %s is outside internship range %s",
			candidate.Date.Format(time.DateOnly), host.Dates)
	}

	if candidate.Date.After(shared.DateOnly(time.Now())) {
		result.AddWarning(shared.RuleFutureDatedEvent, shared.ErrTemporalViolation,
			"shift date %s is in the future", candidate.Date.Format(time.DateOnly))
	}

	v.checkSameDayOverlap(&result, candidate, siblings)
	v.checkWeeklyCap(&result, candidate, siblings, limits)
	v.checkMonthlyMinimum(&result, candidate, module, siblings)

	return result
}

// checkSameDayOverlap warns when another shift in the same internship already
// covers the candidate's date. The registry stores no clock times, so a
// second entry on one day is suspicious but not provably wrong.
func (v *Validator) checkSameDayOverlap(result *shared.ValidationResult, candidate *MedicalShift, siblings []*MedicalShift) {
	for _, s := range siblings {
		if s.ID == candidate.ID {
			continue
		}
		if s.InternshipID == candidate.InternshipID && s.Date.Equal(candidate.Date) {
			result.AddWarning(shared.RuleShiftOverlap, shared.ErrTemporalViolation,
				"another shift is already recorded on %s in the same internship",
				candidate.Date.Format(time.DateOnly))
			return
		}
	}
}

// checkWeeklyCap accumulates the candidate's ISO week and applies the cap
// with the caller's severity.
func (v *Validator) checkWeeklyCap(result *shared.ValidationResult, candidate *MedicalShift, siblings []*MedicalShift, limits shared.LimitPolicy) {
	year, week := candidate.Date.ISOWeek()
	total := candidate.Duration.TotalMinutes()
	for _, s := range siblings {
		if s.ID == candidate.ID {
			continue
		}
		sy, sw := s.Date.ISOWeek()
		if sy == year && sw == week {
			total += s.Duration.TotalMinutes()
		}
	}

	limit := v.policy.WeeklyMaxMinutes()
	if total > limit {
		result.Add(limits, shared.RuleWeeklyHoursExceeded, shared.ErrCurriculumViolation,
			"week %d-W%02d reaches %dh %02dmin, above the %dh cap",
			year, week, total/60, total%60, limit/60)
	}
}

// checkMonthlyMinimum warns when the candidate's month, including the
// candidate, still sits below the monthly floor. Only months that have
// already ended are meaningful, so current and future months stay quiet.
func (v *Validator) checkMonthlyMinimum(result *shared.ValidationResult, candidate *MedicalShift, module *specialization.Module, siblings []*MedicalShift) {
	month := shared.YearMonthOf(candidate.Date)
	if !month.Before(shared.YearMonthOf(time.Now())) {
		return
	}

	total := candidate.Duration.TotalMinutes()
	for _, s := range siblings {
		if s.ID == candidate.ID {
			continue
		}
		if shared.YearMonthOf(s.Date) == month {
			total += s.Duration.TotalMinutes()
		}
	}

	min := v.policy.MonthlyMinimumMinutes(module)
	if total < min {
		result.AddWarning(shared.RuleMonthlyHoursInsufficient, shared.ErrCurriculumViolation,
			"month %s totals %dh %02dmin, below the %dh minimum",
			month, total/60, total%60, min/60)
	}
}
