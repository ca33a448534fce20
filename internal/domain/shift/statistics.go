package shift

import (
	"sort"

	"github.com/sledzspecke/smk-progress-hub/internal/domain/shared"
)

// ═══════════════════════════════════════════════════════════════════════════
// Shift Statistics
// Pure folds over recorded shifts: monthly totals, weekly averages, and the
// milestone check the approval handler uses.
// ═══════════════════════════════════════════════════════════════════════════

// MonthlyTotal is the accumulated shift time of one calendar month.
type MonthlyTotal struct {
	Month        shared.YearMonth
	TotalMinutes int
	ShiftCount   int
}

// Hours returns the normalized hours component of the total.
func (t MonthlyTotal) Hours() int { return t.TotalMinutes / 60 }

// Minutes returns the normalized minutes component of the total.
func (t MonthlyTotal) Minutes() int { return t.TotalMinutes % 60 }

// MonthlyTotals buckets shifts by calendar month, sorted chronologically.
func MonthlyTotals(shifts []*MedicalShift) []MonthlyTotal {
	byMonth := make(map[shared.YearMonth]*MonthlyTotal)
	for _, s := range shifts {
		month := shared.YearMonthOf(s.Date)
		t, ok := byMonth[month]
		if !ok {
			t = &MonthlyTotal{Month: month}
			byMonth[month] = t
		}
		t.TotalMinutes += s.Duration.TotalMinutes()
		t.ShiftCount++
	}

	out := make([]MonthlyTotal, 0, len(byMonth))
	for _, t := range byMonth {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Month.Before(out[j].Month)
	})
	return out
}

// TotalForMonth sums the shift minutes of one month.
func TotalForMonth(shifts []*MedicalShift, month shared.YearMonth) int {
	total := 0
	for _, s := range shifts {
		if shared.YearMonthOf(s.Date) == month {
			total += s.Duration.TotalMinutes()
		}
	}
	return total
}

// CrossesMonthlyMilestone reports whether adding minutes to a month's
// running total pushes it over the target for the first time.
func CrossesMonthlyMilestone(previousMinutes, addedMinutes, targetMinutes int) bool {
	return previousMinutes < targetMinutes && previousMinutes+addedMinutes >= targetMinutes
}

// WeeklyAverage is the mean shift time per ISO week over the weeks that have
// at least one shift.
type WeeklyAverage struct {
	Weeks          int
	AverageMinutes int
	TargetMinutes  int
}

// MeetsTarget reports whether the average reaches the reporting target.
func (a WeeklyAverage) MeetsTarget() bool {
	return a.Weeks > 0 && a.AverageMinutes >= a.TargetMinutes
}

// ComputeWeeklyAverage folds shifts into a per-week average against the
// given target (10h 05min by default).
func ComputeWeeklyAverage(shifts []*MedicalShift, targetMinutes int) WeeklyAverage {
	type weekKey struct {
		year, week int
	}
	totals := make(map[weekKey]int)
	for _, s := range shifts {
		y, w := s.Date.ISOWeek()
		totals[weekKey{y, w}] += s.Duration.TotalMinutes()
	}
	if len(totals) == 0 {
		return WeeklyAverage{TargetMinutes: targetMinutes}
	}

	sum := 0
	for _, minutes := range totals {
		sum += minutes
	}
	return WeeklyAverage{
		Weeks:          len(totals),
		AverageMinutes: sum / len(totals),
		TargetMinutes:  targetMinutes,
	}
}
