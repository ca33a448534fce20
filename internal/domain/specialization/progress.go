package specialization

import (
	"fmt"
	"math"

	"github.com/sledzspecke/smk-progress-hub/internal/domain/shared"
)

// ═══════════════════════════════════════════════════════════════════════════
// Progress Calculation
// A pure fold over a snapshot of counted events. The same snapshot always
// yields the same result; adding a completed item never lowers any category.
// ═══════════════════════════════════════════════════════════════════════════

// Weights distributes the overall percentage across categories. They are
// injected from configuration and must sum to 1.0.
type Weights struct {
	Internships float64
	Courses     float64
	Procedures  float64
	ShiftHours  float64
}

// DefaultWeights returns the standard category distribution.
func DefaultWeights() Weights {
	return Weights{
		Internships: 0.35,
		Courses:     0.25,
		Procedures:  0.30,
		ShiftHours:  0.10,
	}
}

// Validate checks the weights are non-negative and sum to 1.0.
func (w Weights) Validate() error {
	for name, v := range map[string]float64{
		"internships": w.Internships,
		"courses":     w.Courses,
		"procedures":  w.Procedures,
		"shift_hours": w.ShiftHours,
	} {
		if v < 0 {
			return shared.NewDomainError("specialization", "ValidateWeights", shared.ErrNegativeValue,
				"weight "+name+" cannot be negative")
		}
	}
	sum := w.Internships + w.Courses + w.Procedures + w.ShiftHours
	if math.Abs(sum-1.0) > 1e-9 {
		return shared.NewDomainError("specialization", "ValidateWeights", shared.ErrValueOutOfRange,
			fmt.Sprintf("weights must sum to 1.0, got %.4f", sum))
	}
	return nil
}

// ProgressSnapshot is the counted state of one module's events, assembled by
// the application layer from the repositories. The calculator never does I/O.
type ProgressSnapshot struct {
	CompletedInternships int
	CompletedCourses     int

	// Procedure counts are per role; the registry tracks them independently.
	ProceduresOperator  int
	ProceduresAssistant int

	ShiftMinutes      int
	SelfEducationDays int
}

// ModuleProgress is the calculated completion state of one module.
type ModuleProgress struct {
	ModuleID shared.ModuleID

	Internships shared.Percent
	Courses     shared.Percent
	Procedures  shared.Percent
	ShiftHours  shared.Percent

	Overall shared.Percent
}

// Calculator folds progress snapshots into weighted percentages.
type Calculator struct {
	weights Weights
}

// NewCalculator creates a calculator with validated weights.
func NewCalculator(weights Weights) (*Calculator, error) {
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	return &Calculator{weights: weights}, nil
}

// ModuleProgress computes the per-category and weighted overall completion of
// one module. Categories with a zero requirement count as fully complete.
func (c *Calculator) ModuleProgress(m *Module, snap ProgressSnapshot) ModuleProgress {
	req := m.Requirements

	internships := shared.NewPercent(float64(snap.CompletedInternships), float64(req.Internships))
	courses := shared.NewPercent(float64(snap.CompletedCourses), float64(req.Courses))
	procedures := procedureProgress(req, snap)
	shiftHours := shared.NewPercent(float64(snap.ShiftMinutes), float64(req.ShiftHours*60))

	overall := shared.Percent(
		internships.Float64()*c.weights.Internships +
			courses.Float64()*c.weights.Courses +
			procedures.Float64()*c.weights.Procedures +
			shiftHours.Float64()*c.weights.ShiftHours,
	).Clamp()

	return ModuleProgress{
		ModuleID:    m.ID,
		Internships: internships,
		Courses:     courses,
		Procedures:  procedures,
		ShiftHours:  shiftHours,
		Overall:     overall,
	}
}

// procedureProgress averages the operator and assistant completion ratios.
// A role with no required count does not dilute the other role.
func procedureProgress(req ModuleRequirements, snap ProgressSnapshot) shared.Percent {
	switch {
	case req.ProceduresOperator > 0 && req.ProceduresAssistant > 0:
		a := shared.NewPercent(float64(snap.ProceduresOperator), float64(req.ProceduresOperator))
		b := shared.NewPercent(float64(snap.ProceduresAssistant), float64(req.ProceduresAssistant))
		return shared.Percent((a.Float64() + b.Float64()) / 2).Clamp()
	case req.ProceduresOperator > 0:
		return shared.NewPercent(float64(snap.ProceduresOperator), float64(req.ProceduresOperator))
	case req.ProceduresAssistant > 0:
		return shared.NewPercent(float64(snap.ProceduresAssistant), float64(req.ProceduresAssistant))
	default:
		return 1
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Progression Stages
// Coarse whole-program stage used by the statistics sink and notifications.
// ═══════════════════════════════════════════════════════════════════════════

// Stage is the coarse progression state of the whole specialization.
type Stage string

const (
	StageNotStarted         Stage = "not_started"
	StageInBasicModule      Stage = "in_basic_module"
	StageBasicCompleted     Stage = "basic_completed"
	StageInSpecialistModule Stage = "in_specialist_module"
	StageCompleted          Stage = "completed"
)

// Percentage maps the stage to its coarse overall percentage.
func (st Stage) Percentage() int {
	switch st {
	case StageInBasicModule:
		return 25
	case StageBasicCompleted:
		return 50
	case StageInSpecialistModule:
		return 75
	case StageCompleted:
		return 100
	default:
		return 0
	}
}

// CurrentStage derives the progression stage from the module states.
// Programs without a basic module skip the basic stages.
func CurrentStage(s *Specialization) Stage {
	var basicDone, specialistDone, basicRunning, specialistRunning, anyStarted bool
	for _, m := range s.Modules {
		switch {
		case m.Kind == shared.ModuleBasic && m.State == shared.ModuleCompleted:
			basicDone = true
		case m.Kind == shared.ModuleBasic && m.State == shared.ModuleInProgress:
			basicRunning = true
		case m.Kind == shared.ModuleSpecialist && m.State == shared.ModuleCompleted:
			specialistDone = true
		case m.Kind == shared.ModuleSpecialist && m.State == shared.ModuleInProgress:
			specialistRunning = true
		}
		if m.State != shared.ModuleDraft {
			anyStarted = true
		}
	}

	switch {
	case specialistDone && (basicDone || !s.HasBasicModule):
		return StageCompleted
	case specialistRunning:
		return StageInSpecialistModule
	case basicDone:
		return StageBasicCompleted
	case basicRunning:
		return StageInBasicModule
	case anyStarted:
		return StageInBasicModule
	default:
		return StageNotStarted
	}
}
