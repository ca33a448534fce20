package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sledzspecke/smk-progress-hub/internal/domain/shared"
	"github.com/sledzspecke/smk-progress-hub/internal/domain/shift"
	"github.com/sledzspecke/smk-progress-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// MONTHLY HOURS CHECK JOB
// ══════════════════════════════════════════════════════════════════════════════

// MonthlyHoursCheckJob closes out the previous calendar month: for every
// specialization with a module in progress it sums the month's shift minutes
// against the module's monthly minimum and notifies physicians who fell short.
//
// The check is advisory. Falling short of the average does not invalidate any
// shift, it surfaces the gap while there is still time to make it up.
type MonthlyHoursCheckJob struct {
	specs    SpecializationLister
	shifts   shift.Repository
	events   shared.EventPublisher
	logger   *slog.Logger
	location *time.Location
	timeout  time.Duration
}

// NewMonthlyHoursCheckJob creates the first-of-month shift-hour check.
// Month boundaries follow the given location; pass the registry's timezone.
func NewMonthlyHoursCheckJob(
	specs SpecializationLister,
	shifts shift.Repository,
	events shared.EventPublisher,
	logger *slog.Logger,
	location *time.Location,
) *MonthlyHoursCheckJob {
	if logger == nil {
		logger = slog.Default()
	}
	if location == nil {
		location = timeutil.Warsaw()
	}
	return &MonthlyHoursCheckJob{
		specs:    specs,
		shifts:   shifts,
		events:   events,
		logger:   logger.With("job", "monthly_hours_check"),
		location: location,
		timeout:  5 * time.Minute,
	}
}

// Name implements scheduler.Job.
func (j *MonthlyHoursCheckJob) Name() string { return "monthly_hours_check" }

// Description implements scheduler.Job.
func (j *MonthlyHoursCheckJob) Description() string {
	return "Flags specializations under their monthly shift-hour minimum"
}

// Run implements scheduler.Job.
func (j *MonthlyHoursCheckJob) Run(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	// The job fires on the 1st, so yesterday lands in the month being closed.
	month := shared.YearMonthOf(timeutil.PreviousMonthDay(time.Now(), j.location))

	specs, err := j.specs.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to list active specializations: %w", err)
	}

	flagged := 0
	for _, spec := range specs {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		module := spec.ModuleInProgress()
		if module == nil || module.Requirements.MonthlyShiftHours <= 0 {
			continue
		}
		target := module.Requirements.MonthlyShiftHours

		shifts, err := j.shifts.FindByMonth(ctx, spec.ID, month)
		if err != nil {
			j.logger.Error("failed to load month shifts",
				"specialization_id", spec.ID.String(), "month", month.String(), "error", err)
			continue
		}

		total := 0
		for _, s := range shifts {
			total += s.Duration.TotalMinutes()
		}
		if total >= target*60 {
			continue
		}

		flagged++
		event := shared.NewMonthlyUnderTargetEvent(spec.UserID.String(), month.String(), total, target)
		if err := j.events.Publish(event); err != nil {
			j.logger.Warn("failed to publish under-target event",
				"user_id", spec.UserID.String(), "error", err)
		}
	}

	j.logger.Info("monthly hours check finished",
		"month", month.String(), "specializations", len(specs), "under_target", flagged)
	return nil
}
