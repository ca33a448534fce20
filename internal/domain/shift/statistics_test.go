package shift

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sledzspecke/smk-progress-hub/internal/domain/shared"
)

func statShift(t *testing.T, date time.Time, hours, minutes int) *MedicalShift {
	t.Helper()
	d, err := shared.NewShiftDuration(hours, minutes)
	require.NoError(t, err)
	s, err := New("int-1", "spec-1", "user-1", date, d, "SOR")
	require.NoError(t, err)
	return s
}

func TestMonthlyTotals(t *testing.T) {
	shifts := []*MedicalShift{
		statShift(t, day(2024, 6, 3), 10, 0),
		statShift(t, day(2024, 6, 17), 10, 30),
		statShift(t, day(2024, 5, 20), 24, 0),
		statShift(t, day(2024, 7, 1), 8, 0),
	}

	totals := MonthlyTotals(shifts)
	require.Len(t, totals, 3)

	assert.Equal(t, shared.YearMonth{Year: 2024, Month: time.May}, totals[0].Month)
	assert.Equal(t, 24*60, totals[0].TotalMinutes)
	assert.Equal(t, 1, totals[0].ShiftCount)

	assert.Equal(t, shared.YearMonth{Year: 2024, Month: time.June}, totals[1].Month)
	assert.Equal(t, 20*60+30, totals[1].TotalMinutes)
	assert.Equal(t, 2, totals[1].ShiftCount)
	assert.Equal(t, 20, totals[1].Hours())
	assert.Equal(t, 30, totals[1].Minutes())

	assert.Equal(t, shared.YearMonth{Year: 2024, Month: time.July}, totals[2].Month)
}

func TestTotalForMonth(t *testing.T) {
	shifts := []*MedicalShift{
		statShift(t, day(2024, 6, 3), 10, 0),
		statShift(t, day(2024, 7, 3), 10, 0),
	}

	assert.Equal(t, 600, TotalForMonth(shifts, shared.YearMonth{Year: 2024, Month: time.June}))
	assert.Equal(t, 0, TotalForMonth(shifts, shared.YearMonth{Year: 2024, Month: time.April}))
}

func TestCrossesMonthlyMilestone(t *testing.T) {
	target := 140 * 60

	assert.True(t, CrossesMonthlyMilestone(target-30, 60, target))
	assert.False(t, CrossesMonthlyMilestone(target-120, 60, target))
	// Already over target, no second milestone.
	assert.False(t, CrossesMonthlyMilestone(target+10, 60, target))
}

func TestComputeWeeklyAverage(t *testing.T) {
	// Two ISO weeks: 12h and 8h.
	shifts := []*MedicalShift{
		statShift(t, day(2024, 6, 3), 6, 0),
		statShift(t, day(2024, 6, 5), 6, 0),
		statShift(t, day(2024, 6, 11), 8, 0),
	}

	avg := ComputeWeeklyAverage(shifts, 10*60+5)
	assert.Equal(t, 2, avg.Weeks)
	assert.Equal(t, 10*60, avg.AverageMinutes)
	assert.False(t, avg.MeetsTarget())

	avg = ComputeWeeklyAverage(shifts, 9*60)
	assert.True(t, avg.MeetsTarget())
}

func TestComputeWeeklyAverageEmpty(t *testing.T) {
	avg := ComputeWeeklyAverage(nil, 10*60+5)
	assert.Equal(t, 0, avg.Weeks)
	assert.False(t, avg.MeetsTarget())
}
