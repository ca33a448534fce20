package specialization

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sledzspecke/smk-progress-hub/internal/domain/shared"
)

func TestWeightsValidate(t *testing.T) {
	assert.NoError(t, DefaultWeights().Validate())

	bad := Weights{Internships: -0.1, Courses: 0.5, Procedures: 0.4, ShiftHours: 0.2}
	assert.ErrorIs(t, bad.Validate(), shared.ErrNegativeValue)

	short := Weights{Internships: 0.3, Courses: 0.3, Procedures: 0.3, ShiftHours: 0.05}
	assert.ErrorIs(t, short.Validate(), shared.ErrValueOutOfRange)
}

func TestNewCalculatorRejectsBadWeights(t *testing.T) {
	_, err := NewCalculator(Weights{})
	assert.Error(t, err)

	calc, err := NewCalculator(DefaultWeights())
	require.NoError(t, err)
	assert.NotNil(t, calc)
}

func TestModuleProgressWeighted(t *testing.T) {
	calc, err := NewCalculator(DefaultWeights())
	require.NoError(t, err)

	m, err := NewModule(shared.ModuleBasic, "Modul podstawowy", ModuleRequirements{
		Internships:        4,
		Courses:            10,
		ProceduresOperator: 20,
		ShiftHours:         100,
	})
	require.NoError(t, err)

	p := calc.ModuleProgress(m, ProgressSnapshot{
		CompletedInternships: 2,
		CompletedCourses:     5,
		ProceduresOperator:   10,
		ShiftMinutes:         50 * 60,
	})

	assert.InDelta(t, 0.5, p.Internships.Float64(), 0.001)
	assert.InDelta(t, 0.5, p.Courses.Float64(), 0.001)
	assert.InDelta(t, 0.5, p.Procedures.Float64(), 0.001)
	assert.InDelta(t, 0.5, p.ShiftHours.Float64(), 0.001)
	assert.InDelta(t, 0.5, p.Overall.Float64(), 0.001)
}

func TestModuleProgressZeroRequirementsCountComplete(t *testing.T) {
	calc, err := NewCalculator(DefaultWeights())
	require.NoError(t, err)

	m, err := NewModule(shared.ModuleBasic, "Modul podstawowy", ModuleRequirements{})
	require.NoError(t, err)

	p := calc.ModuleProgress(m, ProgressSnapshot{})
	assert.InDelta(t, 1.0, p.Overall.Float64(), 0.001)
}

func TestModuleProgressSurplusClamps(t *testing.T) {
	calc, err := NewCalculator(DefaultWeights())
	require.NoError(t, err)

	m, err := NewModule(shared.ModuleBasic, "Modul podstawowy", ModuleRequirements{
		Internships: 2,
	})
	require.NoError(t, err)

	p := calc.ModuleProgress(m, ProgressSnapshot{CompletedInternships: 5})
	assert.InDelta(t, 1.0, p.Internships.Float64(), 0.001)
	assert.InDelta(t, 1.0, p.Overall.Float64(), 0.001)
}

func TestModuleProgressRepeatedCalculationsAgree(t *testing.T) {
	calc, err := NewCalculator(DefaultWeights())
	require.NoError(t, err)

	m, err := NewModule(shared.ModuleBasic, "Modul podstawowy", ModuleRequirements{
		Internships:         4,
		Courses:             10,
		ProceduresOperator:  20,
		ProceduresAssistant: 5,
		ShiftHours:          100,
	})
	require.NoError(t, err)

	snap := ProgressSnapshot{
		CompletedInternships: 2,
		CompletedCourses:     7,
		ProceduresOperator:   13,
		ProceduresAssistant:  2,
		ShiftMinutes:         3123,
	}

	first := calc.ModuleProgress(m, snap)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, calc.ModuleProgress(m, snap))
	}
}

func TestModuleProgressNeverDecreasesAsEventsAccrue(t *testing.T) {
	calc, err := NewCalculator(DefaultWeights())
	require.NoError(t, err)

	m, err := NewModule(shared.ModuleBasic, "Modul podstawowy", ModuleRequirements{
		Internships:         4,
		Courses:             10,
		ProceduresOperator:  20,
		ProceduresAssistant: 5,
		ShiftHours:          100,
	})
	require.NoError(t, err)

	// Accrue one completing event at a time, rotating through the
	// categories, well past the point where each of them saturates.
	steps := []func(*ProgressSnapshot){
		func(s *ProgressSnapshot) { s.CompletedInternships++ },
		func(s *ProgressSnapshot) { s.ShiftMinutes += 605 },
		func(s *ProgressSnapshot) { s.ProceduresOperator++ },
		func(s *ProgressSnapshot) { s.CompletedCourses++ },
		func(s *ProgressSnapshot) { s.ProceduresAssistant++ },
	}

	snap := ProgressSnapshot{}
	prev := calc.ModuleProgress(m, snap)
	for i := 0; i < 100; i++ {
		steps[i%len(steps)](&snap)
		next := calc.ModuleProgress(m, snap)

		assert.GreaterOrEqual(t, next.Internships.Float64(), prev.Internships.Float64())
		assert.GreaterOrEqual(t, next.Courses.Float64(), prev.Courses.Float64())
		assert.GreaterOrEqual(t, next.Procedures.Float64(), prev.Procedures.Float64())
		assert.GreaterOrEqual(t, next.ShiftHours.Float64(), prev.ShiftHours.Float64())
		assert.GreaterOrEqual(t, next.Overall.Float64(), prev.Overall.Float64())
		prev = next
	}
	assert.InDelta(t, 1.0, prev.Overall.Float64(), 0.001)
}

func TestProcedureProgressRolesIndependent(t *testing.T) {
	// Surplus as operator must not mask a missing assistant count.
	req := ModuleRequirements{ProceduresOperator: 10, ProceduresAssistant: 10}
	p := procedureProgress(req, ProgressSnapshot{ProceduresOperator: 20, ProceduresAssistant: 0})
	assert.InDelta(t, 0.5, p.Float64(), 0.001)

	onlyOperator := ModuleRequirements{ProceduresOperator: 10}
	p = procedureProgress(onlyOperator, ProgressSnapshot{ProceduresOperator: 5, ProceduresAssistant: 100})
	assert.InDelta(t, 0.5, p.Float64(), 0.001)

	none := ModuleRequirements{}
	assert.InDelta(t, 1.0, procedureProgress(none, ProgressSnapshot{}).Float64(), 0.001)
}

func TestCurrentStage(t *testing.T) {
	build := func(hasBasic bool, basicState, specialistState shared.ModuleState) *Specialization {
		s := newTestSpec(t, shared.SmkNew, hasBasic)
		if hasBasic {
			m := addModule(t, s, shared.ModuleBasic, "Modul podstawowy", ModuleRequirements{})
			m.State = basicState
		}
		m := addModule(t, s, shared.ModuleSpecialist, "Modul specjalistyczny", ModuleRequirements{})
		m.State = specialistState
		return s
	}

	tests := []struct {
		name string
		spec *Specialization
		want Stage
	}{
		{"nothing started", build(true, shared.ModuleDraft, shared.ModuleDraft), StageNotStarted},
		{"basic running", build(true, shared.ModuleInProgress, shared.ModuleDraft), StageInBasicModule},
		{"basic done", build(true, shared.ModuleCompleted, shared.ModuleDraft), StageBasicCompleted},
		{"specialist running", build(true, shared.ModuleCompleted, shared.ModuleInProgress), StageInSpecialistModule},
		{"all done", build(true, shared.ModuleCompleted, shared.ModuleCompleted), StageCompleted},
		{"no basic, specialist done", build(false, "", shared.ModuleCompleted), StageCompleted},
		{"no basic, specialist running", build(false, "", shared.ModuleInProgress), StageInSpecialistModule},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CurrentStage(tt.spec))
		})
	}
}

func TestStagePercentage(t *testing.T) {
	assert.Equal(t, 0, StageNotStarted.Percentage())
	assert.Equal(t, 25, StageInBasicModule.Percentage())
	assert.Equal(t, 50, StageBasicCompleted.Percentage())
	assert.Equal(t, 75, StageInSpecialistModule.Percentage())
	assert.Equal(t, 100, StageCompleted.Percentage())
}
