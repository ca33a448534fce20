package eventhandler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sledzspecke/smk-progress-hub/internal/domain/shared"
	"github.com/sledzspecke/smk-progress-hub/internal/domain/shift"
	"github.com/sledzspecke/smk-progress-hub/internal/domain/specialization"
)

// ═══════════════════════════════════════════════════════════════════════════
// ON SHIFT APPROVED HANDLER
// Recomputes the month's approved total and notifies when the total crosses
// the monthly minimum for the first time.
// ═══════════════════════════════════════════════════════════════════════════

// OnShiftApprovedHandler reacts to shift approvals.
type OnShiftApprovedHandler struct {
	shiftRepo shift.Repository
	specRepo  specialization.Repository
	notifier  NotificationSender
	logger    *slog.Logger
	rules     specialization.Rules
}

// NewOnShiftApprovedHandler creates a new OnShiftApprovedHandler.
func NewOnShiftApprovedHandler(
	shiftRepo shift.Repository,
	specRepo specialization.Repository,
	notifier NotificationSender,
	logger *slog.Logger,
	rules specialization.Rules,
) *OnShiftApprovedHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OnShiftApprovedHandler{
		shiftRepo: shiftRepo,
		specRepo:  specRepo,
		notifier:  notifier,
		logger:    logger.With("handler", "on_shift_approved"),
		rules:     rules,
	}
}

// Handle implements shared.EventHandler.
func (h *OnShiftApprovedHandler) Handle(event shared.Event) error {
	approved, ok := event.(shared.ShiftApprovedEvent)
	if !ok {
		h.logger.Warn("received non-ShiftApprovedEvent", "event_type", event.EventType())
		return nil
	}

	ctx := context.Background()

	s, err := h.shiftRepo.FindByID(ctx, shared.ShiftID(approved.ShiftID))
	if err != nil {
		h.logger.Error("failed to load approved shift", "shift_id", approved.ShiftID, "error", err)
		return err
	}

	spec, err := h.specRepo.FindByID(ctx, s.SpecializationID)
	if err != nil {
		h.logger.Error("failed to load specialization", "specialization_id", s.SpecializationID, "error", err)
		return err
	}
	policy, err := specialization.PolicyFor(spec.SmkVersion, h.rules)
	if err != nil {
		return err
	}

	month := shared.YearMonthOf(s.Date)
	monthShifts, err := h.shiftRepo.FindByMonth(ctx, s.SpecializationID, month)
	if err != nil {
		h.logger.Error("failed to load month shifts", "month", month.String(), "error", err)
		return err
	}

	total := 0
	for _, ms := range monthShifts {
		if ms.IsApproved() {
			total += ms.Duration.TotalMinutes()
		}
	}

	var module *specialization.Module
	if !s.ModuleID.IsEmpty() {
		module, _ = spec.Module(s.ModuleID)
	}
	target := policy.MonthlyMinimumMinutes(module)

	previous := total - s.Duration.TotalMinutes()
	if shift.CrossesMonthlyMilestone(previous, s.Duration.TotalMinutes(), target) {
		h.logger.Info("monthly milestone reached",
			"user_id", approved.UserID,
			"month", month.String(),
			"total_minutes", total,
		)
		if h.notifier != nil {
			body := fmt.Sprintf("Your approved duty hours for %s reached %dh %02dmin, meeting the %dh target.",
				month, total/60, total%60, target/60)
			if nerr := h.notifier.Send(ctx, approved.UserID, "Monthly duty hours complete", body); nerr != nil {
				h.logger.Warn("failed to send milestone notification", "error", nerr)
			}
		}
	}

	return nil
}
