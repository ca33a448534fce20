package specialization

import (
	"fmt"

	"github.com/sledzspecke/smk-progress-hub/internal/domain/shared"
)

// ═══════════════════════════════════════════════════════════════════════════
// Rule Configuration
// ═══════════════════════════════════════════════════════════════════════════

// Rules carries the numeric rule constants. Values are injected from
// configuration at startup; defaults mirror the registry's published limits.
type Rules struct {
	// WeeklyMaxMinutes caps accumulated shift time per ISO week.
	WeeklyMaxMinutes int

	// OldMonthlyMinimumHours is the per-month shift minimum for Old-SMK
	// programs, which have no per-module template value.
	OldMonthlyMinimumHours int

	// NewDefaultMonthlyHours is the fallback when a New-SMK module template
	// does not set its own monthly minimum.
	NewDefaultMonthlyHours int

	// WeeklyAverageTargetMinutes is the reporting target for the average
	// shift time per week (10h 05min over 5 working days).
	WeeklyAverageTargetMinutes int

	// SelfEducationYearlyCap is the maximum additional self-education days
	// per calendar year per module.
	SelfEducationYearlyCap int

	// SimulationLimitPercent bounds the simulated share of a procedure
	// requirement's count, for requirements that allow simulation at all.
	SimulationLimitPercent int
}

// DefaultRules returns the registry's published limits.
func DefaultRules() Rules {
	return Rules{
		WeeklyMaxMinutes:           48 * 60,
		OldMonthlyMinimumHours:     160,
		NewDefaultMonthlyHours:     140,
		WeeklyAverageTargetMinutes: 10*60 + 5,
		SelfEducationYearlyCap:     6,
		SimulationLimitPercent:     30,
	}
}

// Validate checks the rule constants are usable.
func (r Rules) Validate() error {
	if r.WeeklyMaxMinutes <= 0 {
		return shared.NewDomainError("specialization", "ValidateRules", shared.ErrValueOutOfRange, "weekly max minutes must be positive")
	}
	if r.OldMonthlyMinimumHours <= 0 || r.NewDefaultMonthlyHours <= 0 {
		return shared.NewDomainError("specialization", "ValidateRules", shared.ErrValueOutOfRange, "monthly minimum hours must be positive")
	}
	if r.SelfEducationYearlyCap < 0 {
		return shared.NewDomainError("specialization", "ValidateRules", shared.ErrNegativeValue, "self-education cap cannot be negative")
	}
	if r.SimulationLimitPercent < 0 || r.SimulationLimitPercent > 100 {
		return shared.NewDomainError("specialization", "ValidateRules", shared.ErrValueOutOfRange, "simulation limit must be a percentage")
	}
	return nil
}

// ═══════════════════════════════════════════════════════════════════════════
// Program Policy
// The two registry variants differ in how events are bucketed and where the
// monthly minimum comes from. All branching on the variant lives behind this
// strategy; validators receive a policy and never inspect the version.
// ═══════════════════════════════════════════════════════════════════════════

// ProgramPolicy captures the variant-specific rules of a training program.
type ProgramPolicy interface {
	// Version returns the registry variant the policy implements.
	Version() shared.SmkVersion

	// BucketsByYear reports whether events attach to training years rather
	// than modules.
	BucketsByYear() bool

	// WeeklyMaxMinutes caps accumulated shift time per ISO week.
	WeeklyMaxMinutes() int

	// MonthlyMinimumMinutes is the shift-time floor for one month within the
	// given module. The module may be nil for Old-SMK programs.
	MonthlyMinimumMinutes(m *Module) int

	// ValidateYear checks a training year against the module kind.
	// Year 0 (unassigned) is always accepted.
	ValidateYear(year shared.TrainingYear, kind shared.ModuleKind, hasBasic bool) error

	// SelfEducationYearlyCap is the maximum additional self-education days
	// per calendar year per module.
	SelfEducationYearlyCap() int

	// SimulationLimitPercent bounds the simulated share of a requirement.
	SimulationLimitPercent() int
}

// PolicyFor returns the policy implementing the given registry variant.
func PolicyFor(version shared.SmkVersion, rules Rules) (ProgramPolicy, error) {
	switch version {
	case shared.SmkOld:
		return &oldProgramPolicy{rules: rules}, nil
	case shared.SmkNew:
		return &newProgramPolicy{rules: rules}, nil
	default:
		return nil, shared.NewDomainError("specialization", "PolicyFor", shared.ErrInvalidInput,
			"unknown SMK version: "+version.String())
	}
}

// ─── Old SMK ───────────────────────────────────────────────────────────────

type oldProgramPolicy struct {
	rules Rules
}

func (p *oldProgramPolicy) Version() shared.SmkVersion { return shared.SmkOld }
func (p *oldProgramPolicy) BucketsByYear() bool        { return true }
func (p *oldProgramPolicy) WeeklyMaxMinutes() int      { return p.rules.WeeklyMaxMinutes }

func (p *oldProgramPolicy) MonthlyMinimumMinutes(_ *Module) int {
	return p.rules.OldMonthlyMinimumHours * 60
}

func (p *oldProgramPolicy) ValidateYear(year shared.TrainingYear, kind shared.ModuleKind, hasBasic bool) error {
	if year.IsUnassigned() {
		return nil
	}
	if !year.IsValid() {
		return shared.NewDomainError("specialization", "ValidateYear", shared.ErrValueOutOfRange,
			fmt.Sprintf("training year %d is outside 0..%d", year.Int(), shared.MaxTrainingYears))
	}
	lo, hi := yearBoundsForKind(kind, hasBasic)
	if year.Int() < lo || year.Int() > hi {
		return shared.NewDomainError("specialization", "ValidateYear", shared.ErrCurriculumViolation,
			fmt.Sprintf("year %d is not valid for %s module (allowed %d..%d)", year.Int(), kind, lo, hi))
	}
	return nil
}

func (p *oldProgramPolicy) SelfEducationYearlyCap() int { return p.rules.SelfEducationYearlyCap }
func (p *oldProgramPolicy) SimulationLimitPercent() int { return p.rules.SimulationLimitPercent }

// yearBoundsForKind maps a module kind to the training years it spans.
// Basic modules cover years 1-2 and specialist modules the rest; curricula
// without a basic module run the specialist module across all years.
func yearBoundsForKind(kind shared.ModuleKind, hasBasic bool) (int, int) {
	if kind == shared.ModuleBasic {
		return 1, 2
	}
	if hasBasic {
		return 3, shared.MaxTrainingYears
	}
	return 1, shared.MaxTrainingYears
}

// ─── New SMK ───────────────────────────────────────────────────────────────

type newProgramPolicy struct {
	rules Rules
}

func (p *newProgramPolicy) Version() shared.SmkVersion { return shared.SmkNew }
func (p *newProgramPolicy) BucketsByYear() bool        { return false }
func (p *newProgramPolicy) WeeklyMaxMinutes() int      { return p.rules.WeeklyMaxMinutes }

func (p *newProgramPolicy) MonthlyMinimumMinutes(m *Module) int {
	if m != nil && m.Requirements.MonthlyShiftHours > 0 {
		return m.Requirements.MonthlyShiftHours * 60
	}
	return p.rules.NewDefaultMonthlyHours * 60
}

// ValidateYear accepts any in-range year. New-SMK programs bucket by module,
// so the year field is informational and never pinned against the curriculum.
func (p *newProgramPolicy) ValidateYear(year shared.TrainingYear, _ shared.ModuleKind, _ bool) error {
	if !year.IsValid() {
		return shared.NewDomainError("specialization", "ValidateYear", shared.ErrValueOutOfRange,
			fmt.Sprintf("training year %d is outside 0..%d", year.Int(), shared.MaxTrainingYears))
	}
	return nil
}

func (p *newProgramPolicy) SelfEducationYearlyCap() int { return p.rules.SelfEducationYearlyCap }
func (p *newProgramPolicy) SimulationLimitPercent() int { return p.rules.SimulationLimitPercent }
