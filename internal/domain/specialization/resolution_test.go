package specialization

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sledzspecke/smk-progress-hub/internal/domain/shared"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// newTestSpec builds a specialization starting 2020-01-01 with a 5-year plan.
func newTestSpec(t *testing.T, version shared.SmkVersion, hasBasic bool) *Specialization {
	t.Helper()
	planned, err := shared.NewDateRange(day(2020, 1, 1), day(2024, 12, 31))
	require.NoError(t, err)
	s, err := NewSpecialization("user-1", "Kardiologia", "0706", version, planned, 5)
	require.NoError(t, err)
	s.HasBasicModule = hasBasic
	return s
}

func addModule(t *testing.T, s *Specialization, kind shared.ModuleKind, name string, req ModuleRequirements) *Module {
	t.Helper()
	m, err := NewModule(kind, name, req)
	require.NoError(t, err)
	s.AddModule(m)
	return m
}

func testPolicy(t *testing.T, version shared.SmkVersion) ProgramPolicy {
	t.Helper()
	p, err := PolicyFor(version, DefaultRules())
	require.NoError(t, err)
	return p
}

func TestTrainingYearAt(t *testing.T) {
	s := newTestSpec(t, shared.SmkOld, true)
	r := NewContextResolver(testPolicy(t, shared.SmkOld))

	tests := []struct {
		name string
		date time.Time
		want shared.TrainingYear
	}{
		{"first day", day(2020, 1, 1), 1},
		{"end of first year", day(2020, 12, 30), 1},
		{"into second year", day(2021, 6, 1), 2},
		{"fifth year", day(2024, 6, 1), 5},
		{"past planned end clamps to duration", day(2027, 3, 1), 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			year, err := r.TrainingYearAt(s, tt.date)
			require.NoError(t, err)
			assert.Equal(t, tt.want, year)
		})
	}
}

func TestTrainingYearBeforeStartRejected(t *testing.T) {
	s := newTestSpec(t, shared.SmkOld, true)
	r := NewContextResolver(testPolicy(t, shared.SmkOld))

	_, err := r.TrainingYearAt(s, day(2019, 12, 31))
	assert.ErrorIs(t, err, shared.ErrTemporalViolation)
}

func TestResolveOldSmkStampsYearAndModule(t *testing.T) {
	s := newTestSpec(t, shared.SmkOld, true)
	basic := addModule(t, s, shared.ModuleBasic, "Modul podstawowy", ModuleRequirements{})
	specialist := addModule(t, s, shared.ModuleSpecialist, "Modul specjalistyczny", ModuleRequirements{})
	r := NewContextResolver(testPolicy(t, shared.SmkOld))

	ctx, err := r.Resolve(s, day(2021, 6, 1))
	require.NoError(t, err)
	assert.Equal(t, shared.TrainingYear(2), ctx.Year)
	assert.Equal(t, basic.ID, ctx.ModuleID)
	assert.Equal(t, shared.ModuleBasic, ctx.ModuleKind)

	ctx, err = r.Resolve(s, day(2023, 2, 1))
	require.NoError(t, err)
	assert.Equal(t, shared.TrainingYear(4), ctx.Year)
	assert.Equal(t, specialist.ID, ctx.ModuleID)
}

func TestResolveRejectsDateBeforeStart(t *testing.T) {
	s := newTestSpec(t, shared.SmkOld, true)
	r := NewContextResolver(testPolicy(t, shared.SmkOld))

	_, err := r.Resolve(s, day(2019, 6, 1))
	assert.ErrorIs(t, err, shared.ErrTemporalViolation)
}

func TestResolveNewSmkUsesModuleWindow(t *testing.T) {
	s := newTestSpec(t, shared.SmkNew, true)
	basic := addModule(t, s, shared.ModuleBasic, "Modul podstawowy", ModuleRequirements{})
	basic.State = shared.ModuleInProgress
	basic.Dates, _ = shared.NewDateRange(day(2020, 1, 1), day(2021, 12, 31))
	r := NewContextResolver(testPolicy(t, shared.SmkNew))

	ctx, err := r.Resolve(s, day(2021, 3, 15))
	require.NoError(t, err)
	assert.Equal(t, basic.ID, ctx.ModuleID)
	assert.True(t, ctx.Year.IsUnassigned())
}

func TestResolveNewSmkWithoutCoveringModule(t *testing.T) {
	s := newTestSpec(t, shared.SmkNew, true)
	// Draft modules have no window, so nothing covers the date.
	addModule(t, s, shared.ModuleBasic, "Modul podstawowy", ModuleRequirements{})
	r := NewContextResolver(testPolicy(t, shared.SmkNew))

	_, err := r.Resolve(s, day(2021, 3, 15))
	assert.ErrorIs(t, err, shared.ErrNoActiveModule)
}

func TestValidateYearForModule(t *testing.T) {
	s := newTestSpec(t, shared.SmkOld, true)
	r := NewContextResolver(testPolicy(t, shared.SmkOld))

	assert.NoError(t, r.ValidateYearForModule(s, 1, shared.ModuleBasic))
	assert.NoError(t, r.ValidateYearForModule(s, 2, shared.ModuleBasic))
	assert.NoError(t, r.ValidateYearForModule(s, 3, shared.ModuleSpecialist))
	assert.NoError(t, r.ValidateYearForModule(s, shared.YearUnassigned, shared.ModuleBasic))

	err := r.ValidateYearForModule(s, 3, shared.ModuleBasic)
	assert.ErrorIs(t, err, shared.ErrCurriculumViolation)

	err = r.ValidateYearForModule(s, 2, shared.ModuleSpecialist)
	assert.ErrorIs(t, err, shared.ErrCurriculumViolation)
}

func TestValidateYearWithoutBasicModule(t *testing.T) {
	s := newTestSpec(t, shared.SmkOld, false)
	r := NewContextResolver(testPolicy(t, shared.SmkOld))

	// Specialist module spans the whole program when no basic module exists.
	assert.NoError(t, r.ValidateYearForModule(s, 1, shared.ModuleSpecialist))
	assert.NoError(t, r.ValidateYearForModule(s, 6, shared.ModuleSpecialist))
}
