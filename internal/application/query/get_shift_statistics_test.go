package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sledzspecke/smk-progress-hub/internal/domain/shared"
	"github.com/sledzspecke/smk-progress-hub/internal/domain/shift"
	"github.com/sledzspecke/smk-progress-hub/internal/domain/specialization"
)

type staticSpecRepo struct {
	spec *specialization.Specialization
}

func (r *staticSpecRepo) FindByID(ctx context.Context, id shared.SpecializationID) (*specialization.Specialization, error) {
	if r.spec == nil || r.spec.ID != id {
		return nil, shared.ErrSpecializationNotFound
	}
	return r.spec, nil
}

func (r *staticSpecRepo) FindByUser(ctx context.Context, userID shared.UserID) ([]*specialization.Specialization, error) {
	if r.spec != nil && r.spec.UserID == userID {
		return []*specialization.Specialization{r.spec}, nil
	}
	return nil, nil
}

func (r *staticSpecRepo) Save(ctx context.Context, s *specialization.Specialization) error { return nil }

func (r *staticSpecRepo) Create(ctx context.Context, s *specialization.Specialization) error {
	return nil
}

type staticShiftRepo struct {
	shifts []*shift.MedicalShift
}

func (r *staticShiftRepo) FindByID(ctx context.Context, id shared.ShiftID) (*shift.MedicalShift, error) {
	for _, s := range r.shifts {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, shared.ErrShiftNotFound
}

func (r *staticShiftRepo) FindBySpecialization(ctx context.Context, specID shared.SpecializationID) ([]*shift.MedicalShift, error) {
	return r.shifts, nil
}

func (r *staticShiftRepo) FindByInternship(ctx context.Context, internshipID shared.InternshipID) ([]*shift.MedicalShift, error) {
	return r.shifts, nil
}

func (r *staticShiftRepo) FindByMonth(ctx context.Context, specID shared.SpecializationID, month shared.YearMonth) ([]*shift.MedicalShift, error) {
	var out []*shift.MedicalShift
	for _, s := range r.shifts {
		if shared.YearMonthOf(s.Date) == month {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *staticShiftRepo) SumMinutesByModule(ctx context.Context, moduleID shared.ModuleID) (int, error) {
	return 0, nil
}

func (r *staticShiftRepo) FindPendingSync(ctx context.Context, specID shared.SpecializationID) ([]*shift.MedicalShift, error) {
	return nil, nil
}

func (r *staticShiftRepo) Save(ctx context.Context, s *shift.MedicalShift) error { return nil }

func (r *staticShiftRepo) Create(ctx context.Context, s *shift.MedicalShift) error { return nil }

func statisticsFixture(t *testing.T) (*specialization.Specialization, []*shift.MedicalShift) {
	t.Helper()
	planned, err := shared.NewDateRange(
		time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	spec, err := specialization.NewSpecialization("user-1", "Kardiologia", "0709", shared.SmkOld, planned, 5)
	require.NoError(t, err)

	mk := func(d time.Time, hours int) *shift.MedicalShift {
		duration, derr := shared.NewShiftDuration(hours, 0)
		require.NoError(t, derr)
		s, serr := shift.New("int-1", spec.ID, spec.UserID, d, duration, "SOR")
		require.NoError(t, serr)
		return s
	}

	shifts := []*shift.MedicalShift{
		mk(time.Date(2021, time.June, 7, 0, 0, 0, 0, time.UTC), 10),
		mk(time.Date(2021, time.June, 9, 0, 0, 0, 0, time.UTC), 8),
		mk(time.Date(2021, time.July, 5, 0, 0, 0, 0, time.UTC), 12),
	}
	return spec, shifts
}

func TestGetShiftStatistics(t *testing.T) {
	spec, shifts := statisticsFixture(t)
	handler := NewGetShiftStatisticsHandler(
		&staticSpecRepo{spec: spec}, &staticShiftRepo{shifts: shifts}, specialization.DefaultRules())

	view, err := handler.Handle(context.Background(), GetShiftStatisticsQuery{
		SpecializationID: spec.ID.String(),
	})
	require.NoError(t, err)

	assert.Equal(t, 30, view.TotalHours)
	assert.Equal(t, 0, view.TotalMinutes)
	assert.Equal(t, 3, view.ShiftCount)

	require.Len(t, view.Months, 2)
	june := view.Months[0]
	assert.Equal(t, "2021-06", june.Month)
	assert.Equal(t, 18, june.Hours)
	assert.Equal(t, 2, june.ShiftCount)
	// Old-SMK monthly minimum is 160 hours; neither month comes close.
	assert.Equal(t, 160, june.TargetHours)
	assert.False(t, june.MeetsMinimum)
	assert.Equal(t, "2021-07", view.Months[1].Month)

	// 18h and 12h weeks average to 900 minutes, above the 605-minute target.
	assert.Equal(t, 900, view.WeeklyAverageMinutes)
	assert.Equal(t, 605, view.WeeklyTargetMinutes)
	assert.True(t, view.MeetsWeeklyTarget)
}

func TestGetShiftStatisticsUnknownSpecialization(t *testing.T) {
	handler := NewGetShiftStatisticsHandler(&staticSpecRepo{}, &staticShiftRepo{}, specialization.DefaultRules())

	_, err := handler.Handle(context.Background(), GetShiftStatisticsQuery{SpecializationID: "missing"})
	assert.ErrorIs(t, err, shared.ErrSpecializationNotFound)
}

func TestGetShiftStatisticsRequiresID(t *testing.T) {
	handler := NewGetShiftStatisticsHandler(&staticSpecRepo{}, &staticShiftRepo{}, specialization.DefaultRules())

	_, err := handler.Handle(context.Background(), GetShiftStatisticsQuery{})
	assert.Error(t, err)
}
