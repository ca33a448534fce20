package specialization

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sledzspecke/smk-progress-hub/internal/domain/shared"
)

func TestStartModule(t *testing.T) {
	s := newTestSpec(t, shared.SmkNew, true)
	m := addModule(t, s, shared.ModuleBasic, "Modul podstawowy", ModuleRequirements{})

	started, err := s.StartModule(m.ID, day(2020, 1, 1))
	require.NoError(t, err)
	assert.Equal(t, shared.ModuleInProgress, started.State)
	assert.Equal(t, m.ID, s.CurrentModuleID)
	assert.Equal(t, day(2020, 1, 1), started.Dates.Start)
	assert.Equal(t, s.CalculatedEnd, started.Dates.End)
}

func TestStartModuleIsIdempotent(t *testing.T) {
	s := newTestSpec(t, shared.SmkNew, true)
	m := addModule(t, s, shared.ModuleBasic, "Modul podstawowy", ModuleRequirements{})

	_, err := s.StartModule(m.ID, day(2020, 1, 1))
	require.NoError(t, err)
	again, err := s.StartModule(m.ID, day(2020, 6, 1))
	require.NoError(t, err)
	assert.Equal(t, day(2020, 1, 1), again.Dates.Start)
}

func TestStartModuleRejectsSecondRunning(t *testing.T) {
	s := newTestSpec(t, shared.SmkNew, true)
	basic := addModule(t, s, shared.ModuleBasic, "Modul podstawowy", ModuleRequirements{})
	specialist := addModule(t, s, shared.ModuleSpecialist, "Modul specjalistyczny", ModuleRequirements{})

	_, err := s.StartModule(basic.ID, day(2020, 1, 1))
	require.NoError(t, err)

	_, err = s.StartModule(specialist.ID, day(2020, 6, 1))
	assert.ErrorIs(t, err, shared.ErrInvalidModuleProgression)
}

func TestStartModuleUnknownID(t *testing.T) {
	s := newTestSpec(t, shared.SmkNew, true)
	_, err := s.StartModule(shared.NewModuleID(), day(2020, 1, 1))
	assert.ErrorIs(t, err, shared.ErrModuleNotFound)
}

func TestCompleteModuleRequiresAllCategories(t *testing.T) {
	s := newTestSpec(t, shared.SmkNew, true)
	m := addModule(t, s, shared.ModuleBasic, "Modul podstawowy", ModuleRequirements{
		Internships:        2,
		Courses:            3,
		ProceduresOperator: 10,
		ShiftHours:         100,
	})
	_, err := s.StartModule(m.ID, day(2020, 1, 1))
	require.NoError(t, err)

	_, err = s.CompleteModule(m.ID, ProgressSnapshot{
		CompletedInternships: 2,
		CompletedCourses:     3,
		ProceduresOperator:   9,
		ShiftMinutes:         100 * 60,
	})
	assert.ErrorIs(t, err, shared.ErrModuleRequirementsUnmet)
	assert.Equal(t, shared.ModuleInProgress, m.State)

	completed, err := s.CompleteModule(m.ID, ProgressSnapshot{
		CompletedInternships: 2,
		CompletedCourses:     3,
		ProceduresOperator:   10,
		ShiftMinutes:         100 * 60,
	})
	require.NoError(t, err)
	assert.Equal(t, shared.ModuleCompleted, completed.State)
	assert.False(t, completed.CompletedAt.IsZero())
}

func TestCompleteModuleIsIdempotent(t *testing.T) {
	s := newTestSpec(t, shared.SmkNew, true)
	m := addModule(t, s, shared.ModuleBasic, "Modul podstawowy", ModuleRequirements{})
	_, err := s.StartModule(m.ID, day(2020, 1, 1))
	require.NoError(t, err)
	_, err = s.CompleteModule(m.ID, ProgressSnapshot{})
	require.NoError(t, err)

	again, err := s.CompleteModule(m.ID, ProgressSnapshot{})
	require.NoError(t, err)
	assert.Equal(t, shared.ModuleCompleted, again.State)
}

func TestCompleteModuleFromDraftRejected(t *testing.T) {
	s := newTestSpec(t, shared.SmkNew, true)
	m := addModule(t, s, shared.ModuleBasic, "Modul podstawowy", ModuleRequirements{})

	_, err := s.CompleteModule(m.ID, ProgressSnapshot{})
	assert.ErrorIs(t, err, shared.ErrStateTransition)
}

func TestAdvanceCurrentModule(t *testing.T) {
	s := newTestSpec(t, shared.SmkNew, true)
	basic := addModule(t, s, shared.ModuleBasic, "Modul podstawowy", ModuleRequirements{})
	specialist := addModule(t, s, shared.ModuleSpecialist, "Modul specjalistyczny", ModuleRequirements{})

	_, err := s.StartModule(basic.ID, day(2020, 1, 1))
	require.NoError(t, err)
	_, err = s.CompleteModule(basic.ID, ProgressSnapshot{})
	require.NoError(t, err)

	next := s.AdvanceCurrentModule()
	require.NotNil(t, next)
	assert.Equal(t, specialist.ID, next.ID)
	assert.Equal(t, specialist.ID, s.CurrentModuleID)

	_, err = s.StartModule(specialist.ID, day(2022, 1, 1))
	require.NoError(t, err)
	_, err = s.CompleteModule(specialist.ID, ProgressSnapshot{})
	require.NoError(t, err)

	assert.Nil(t, s.AdvanceCurrentModule())
}

func TestApplyAbsenceExtension(t *testing.T) {
	s := newTestSpec(t, shared.SmkNew, true)
	end := s.CalculatedEnd

	s.ApplyAbsenceExtension(30)
	assert.Equal(t, end.AddDate(0, 0, 30), s.CalculatedEnd)

	s.ApplyAbsenceExtension(0)
	assert.Equal(t, end.AddDate(0, 0, 30), s.CalculatedEnd)
}
