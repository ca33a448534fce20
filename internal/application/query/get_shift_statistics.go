package query

import (
	"context"
	"errors"
	"fmt"

	"github.com/sledzspecke/smk-progress-hub/internal/domain/shared"
	"github.com/sledzspecke/smk-progress-hub/internal/domain/shift"
	"github.com/sledzspecke/smk-progress-hub/internal/domain/specialization"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET SHIFT STATISTICS QUERY
// Per-month totals with the monthly minimum applied, plus the weekly average
// against the reporting target.
// ══════════════════════════════════════════════════════════════════════════════

// GetShiftStatisticsQuery requests the shift statistics of a specialization.
type GetShiftStatisticsQuery struct {
	SpecializationID string
}

// Validate validates the query.
func (q GetShiftStatisticsQuery) Validate() error {
	if q.SpecializationID == "" {
		return errors.New("get_shift_statistics: specialization_id is required")
	}
	return nil
}

// MonthView is one month's shift total against the minimum.
type MonthView struct {
	Month        string
	Hours        int
	Minutes      int
	ShiftCount   int
	TargetHours  int
	MeetsMinimum bool
}

// ShiftStatisticsView is the assembled shift statistics.
type ShiftStatisticsView struct {
	SpecializationID string
	TotalHours       int
	TotalMinutes     int
	ShiftCount       int

	Months []MonthView

	WeeklyAverageMinutes int
	WeeklyTargetMinutes  int
	MeetsWeeklyTarget    bool
}

// GetShiftStatisticsHandler handles the GetShiftStatisticsQuery.
type GetShiftStatisticsHandler struct {
	specRepo  specialization.Repository
	shiftRepo shift.Repository
	rules     specialization.Rules
}

// NewGetShiftStatisticsHandler creates a new GetShiftStatisticsHandler.
func NewGetShiftStatisticsHandler(specRepo specialization.Repository, shiftRepo shift.Repository, rules specialization.Rules) *GetShiftStatisticsHandler {
	return &GetShiftStatisticsHandler{specRepo: specRepo, shiftRepo: shiftRepo, rules: rules}
}

// Handle executes the query.
func (h *GetShiftStatisticsHandler) Handle(ctx context.Context, q GetShiftStatisticsQuery) (*ShiftStatisticsView, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	spec, err := h.specRepo.FindByID(ctx, shared.SpecializationID(q.SpecializationID))
	if err != nil {
		return nil, fmt.Errorf("get_shift_statistics: failed to load specialization: %w", err)
	}
	policy, err := specialization.PolicyFor(spec.SmkVersion, h.rules)
	if err != nil {
		return nil, err
	}

	shifts, err := h.shiftRepo.FindBySpecialization(ctx, spec.ID)
	if err != nil {
		return nil, fmt.Errorf("get_shift_statistics: failed to load shifts: %w", err)
	}

	view := &ShiftStatisticsView{SpecializationID: spec.ID.String()}

	total := 0
	for _, s := range shifts {
		total += s.Duration.TotalMinutes()
	}
	view.TotalHours = total / 60
	view.TotalMinutes = total % 60
	view.ShiftCount = len(shifts)

	module, _ := spec.CurrentModule()
	minMinutes := policy.MonthlyMinimumMinutes(module)
	for _, mt := range shift.MonthlyTotals(shifts) {
		view.Months = append(view.Months, MonthView{
			Month:        mt.Month.String(),
			Hours:        mt.Hours(),
			Minutes:      mt.Minutes(),
			ShiftCount:   mt.ShiftCount,
			TargetHours:  minMinutes / 60,
			MeetsMinimum: mt.TotalMinutes >= minMinutes,
		})
	}

	avg := shift.ComputeWeeklyAverage(shifts, h.rules.WeeklyAverageTargetMinutes)
	view.WeeklyAverageMinutes = avg.AverageMinutes
	view.WeeklyTargetMinutes = avg.TargetMinutes
	view.MeetsWeeklyTarget = avg.MeetsTarget()

	return view, nil
}
