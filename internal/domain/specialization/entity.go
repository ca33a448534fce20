// Package specialization contains the specialization aggregate, the module
// lifecycle state machine, training-year and module resolution, and the
// weighted progress calculation.
package specialization

import (
	"time"

	"github.com/sledzspecke/smk-progress-hub/internal/domain/shared"
)

// ═══════════════════════════════════════════════════════════════════════════
// Specialization Aggregate
// ═══════════════════════════════════════════════════════════════════════════

// Specialization is the root aggregate: one physician's enrollment in one
// training program. It owns the modules and the current-module pointer.
type Specialization struct {
	ID          shared.SpecializationID
	UserID      shared.UserID
	Name        string
	ProgramCode string
	SmkVersion  shared.SmkVersion

	// Planned is the contractual training window. CalculatedEnd is Planned.End
	// pushed out by absences that extend training.
	Planned       shared.DateRange
	CalculatedEnd time.Time

	DurationYears  int
	HasBasicModule bool

	CurrentModuleID shared.ModuleID
	Modules         []*Module

	// Version backs optimistic locking in the persistence layer.
	Version   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewSpecialization creates a specialization with its planned window.
func NewSpecialization(userID shared.UserID, name, programCode string, version shared.SmkVersion, planned shared.DateRange, durationYears int) (*Specialization, error) {
	if userID == "" {
		return nil, shared.NewDomainError("specialization", "New", shared.ErrEmptyValue, "user id is required")
	}
	if name == "" {
		return nil, shared.NewDomainError("specialization", "New", shared.ErrEmptyValue, "name is required")
	}
	if !version.IsValid() {
		return nil, shared.NewDomainError("specialization", "New", shared.ErrInvalidInput, "unknown SMK version: "+version.String())
	}
	if !planned.IsValid() {
		return nil, shared.NewDomainError("specialization", "New", shared.ErrInvalidInput, "planned date range is invalid")
	}
	if durationYears < 1 || durationYears > shared.MaxTrainingYears {
		return nil, shared.NewDomainError("specialization", "New", shared.ErrValueOutOfRange, "duration must be between 1 and 6 years")
	}

	now := time.Now()
	return &Specialization{
		ID:            shared.NewSpecializationID(),
		UserID:        userID,
		Name:          name,
		ProgramCode:   programCode,
		SmkVersion:    version,
		Planned:       planned,
		CalculatedEnd: planned.End,
		DurationYears: durationYears,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// Module returns the module with the given id, or ErrModuleNotFound.
func (s *Specialization) Module(id shared.ModuleID) (*Module, error) {
	for _, m := range s.Modules {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, shared.ErrModuleNotFound
}

// CurrentModule returns the module the current-module pointer names.
func (s *Specialization) CurrentModule() (*Module, error) {
	if s.CurrentModuleID.IsEmpty() {
		return nil, shared.ErrNoActiveModule
	}
	return s.Module(s.CurrentModuleID)
}

// ModuleInProgress returns the module currently in progress, if any.
func (s *Specialization) ModuleInProgress() *Module {
	for _, m := range s.Modules {
		if m.State == shared.ModuleInProgress {
			return m
		}
	}
	return nil
}

// AddModule attaches a module to the aggregate.
func (s *Specialization) AddModule(m *Module) {
	m.SpecializationID = s.ID
	s.Modules = append(s.Modules, m)
	s.UpdatedAt = time.Now()
}

// ApplyAbsenceExtension pushes the calculated end date out by the given
// number of days. Called when an absence flagged as extending training is
// recorded.
func (s *Specialization) ApplyAbsenceExtension(days int) {
	if days <= 0 {
		return
	}
	s.CalculatedEnd = s.CalculatedEnd.AddDate(0, 0, days)
	s.UpdatedAt = time.Now()
}

// ═══════════════════════════════════════════════════════════════════════════
// Module Entity
// ═══════════════════════════════════════════════════════════════════════════

// ModuleRequirements are the curriculum totals a module must reach before it
// can be completed. They come from the curriculum template, never from user
// input.
type ModuleRequirements struct {
	Internships         int
	Courses             int
	ProceduresOperator  int
	ProceduresAssistant int
	ShiftHours          int
	SelfEducationDays   int

	// MonthlyShiftHours is the per-month minimum used by New-SMK policies.
	MonthlyShiftHours int
}

// Module is one phase of the training program. New-SMK programs bucket all
// events by module; Old-SMK programs still carry modules for lifecycle and
// progress, but bucket events by training year.
type Module struct {
	ID               shared.ModuleID
	SpecializationID shared.SpecializationID
	Kind             shared.ModuleKind
	Name             string
	State            shared.ModuleState

	// Dates is set when the module starts. The end is planned and may move.
	Dates shared.DateRange

	Requirements ModuleRequirements

	StartedAt   time.Time
	CompletedAt time.Time
	UpdatedAt   time.Time
}

// NewModule creates a draft module from its template values.
func NewModule(kind shared.ModuleKind, name string, req ModuleRequirements) (*Module, error) {
	if !kind.IsValid() {
		return nil, shared.NewDomainError("specialization", "NewModule", shared.ErrInvalidInput, "unknown module kind: "+kind.String())
	}
	if name == "" {
		return nil, shared.NewDomainError("specialization", "NewModule", shared.ErrEmptyValue, "module name is required")
	}
	return &Module{
		ID:           shared.NewModuleID(),
		Kind:         kind,
		Name:         name,
		State:        shared.ModuleDraft,
		Requirements: req,
		UpdatedAt:    time.Now(),
	}, nil
}

// IsActive reports whether events may currently be recorded against the module.
func (m *Module) IsActive() bool {
	return m.State == shared.ModuleInProgress
}

// ContainsDate reports whether the date falls inside the module's window.
// Draft modules have no window and contain nothing.
func (m *Module) ContainsDate(t time.Time) bool {
	if m.Dates.IsZero() {
		return false
	}
	return m.Dates.Contains(t)
}
