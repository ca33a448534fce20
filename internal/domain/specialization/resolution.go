package specialization

import (
	"fmt"
	"time"

	"github.com/sledzspecke/smk-progress-hub/internal/domain/shared"
)

// ═══════════════════════════════════════════════════════════════════════════
// Event Context Resolution
// Every incoming event (shift, procedure, course, ...) is stamped with the
// bucket it belongs to: a training year under Old SMK, a module under New SMK.
// ═══════════════════════════════════════════════════════════════════════════

// EventContext is the resolved bucket for an event date.
type EventContext struct {
	SpecializationID shared.SpecializationID
	Date             time.Time

	// Year is set for year-bucketed programs, YearUnassigned otherwise.
	Year shared.TrainingYear

	// ModuleID and ModuleKind are set when a module covers the date. Under
	// Old SMK the module is resolved best-effort from the year bounds and
	// may be empty.
	ModuleID   shared.ModuleID
	ModuleKind shared.ModuleKind
}

// ContextResolver resolves event dates into training-year or module buckets.
type ContextResolver struct {
	policy ProgramPolicy
}

// NewContextResolver creates a resolver for one program variant.
func NewContextResolver(policy ProgramPolicy) *ContextResolver {
	return &ContextResolver{policy: policy}
}

// Resolve stamps the event date with its bucket.
//
// Dates before the specialization start are rejected: the registry has no
// bucket for them. Dates past the planned duration clamp to the final year
// (Old) or fail with ErrNoActiveModule when no module covers them (New).
func (r *ContextResolver) Resolve(s *Specialization, date time.Time) (EventContext, error) {
	d := shared.DateOnly(date)
	ctx := EventContext{SpecializationID: s.ID, Date: d, Year: shared.YearUnassigned}

	if d.Before(s.Planned.Start) {
		return ctx, shared.NewDomainError("specialization", "Resolve", shared.ErrTemporalViolation,
			fmt.Sprintf("date %s precedes specialization start %s",
				d.Format(time.DateOnly), s.Planned.Start.Format(time.DateOnly)))
	}

	if r.policy.BucketsByYear() {
		year, err := r.TrainingYearAt(s, d)
		if err != nil {
			return ctx, err
		}
		ctx.Year = year
		if m := moduleForYear(s, year); m != nil {
			ctx.ModuleID = m.ID
			ctx.ModuleKind = m.Kind
		}
		return ctx, nil
	}

	m := moduleAtDate(s, d)
	if m == nil {
		return ctx, shared.ErrNoActiveModule
	}
	ctx.ModuleID = m.ID
	ctx.ModuleKind = m.Kind
	return ctx, nil
}

// TrainingYearAt computes the 1-based training year of a date, clamped to the
// program duration. The caller is expected to have rejected dates before the
// start; a non-positive result here is a bug, not bad input.
func (r *ContextResolver) TrainingYearAt(s *Specialization, date time.Time) (shared.TrainingYear, error) {
	d := shared.DateOnly(date)
	if d.Before(s.Planned.Start) {
		return shared.YearUnassigned, shared.NewDomainError("specialization", "TrainingYearAt",
			shared.ErrTemporalViolation, "date precedes specialization start")
	}

	days := int(d.Sub(s.Planned.Start).Hours() / 24)
	year := days/365 + 1

	max := s.DurationYears
	if max <= 0 || max > shared.MaxTrainingYears {
		max = shared.MaxTrainingYears
	}
	if year > max {
		year = max
	}
	if year < 1 {
		return shared.YearUnassigned, shared.NewDomainError("specialization", "TrainingYearAt",
			shared.ErrInvariantViolation, fmt.Sprintf("resolved training year %d", year))
	}
	return shared.TrainingYear(year), nil
}

// ValidateYearForModule checks a year assignment against the module kind
// using the program policy.
func (r *ContextResolver) ValidateYearForModule(s *Specialization, year shared.TrainingYear, kind shared.ModuleKind) error {
	return r.policy.ValidateYear(year, kind, s.HasBasicModule)
}

// moduleAtDate finds the module whose date window contains d.
func moduleAtDate(s *Specialization, d time.Time) *Module {
	for _, m := range s.Modules {
		if m.ContainsDate(d) {
			return m
		}
	}
	return nil
}

// moduleForYear maps a training year onto a module via the year bounds.
func moduleForYear(s *Specialization, year shared.TrainingYear) *Module {
	if year.IsUnassigned() {
		return nil
	}
	for _, m := range s.Modules {
		lo, hi := yearBoundsForKind(m.Kind, s.HasBasicModule)
		if year.Int() >= lo && year.Int() <= hi {
			return m
		}
	}
	return nil
}
