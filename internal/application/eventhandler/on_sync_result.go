package eventhandler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sledzspecke/smk-progress-hub/internal/domain/shared"
)

// ═══════════════════════════════════════════════════════════════════════════
// ON SYNC RESULT HANDLER
// Turns the outcome of a registry sync run into a user-facing notification.
// A failed run always notifies; a completed run only when something moved.
// ═══════════════════════════════════════════════════════════════════════════

// OnSyncResultHandler reacts to registry sync outcomes.
type OnSyncResultHandler struct {
	notifier NotificationSender
	logger   *slog.Logger
}

// NewOnSyncResultHandler creates a new OnSyncResultHandler.
func NewOnSyncResultHandler(notifier NotificationSender, logger *slog.Logger) *OnSyncResultHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OnSyncResultHandler{
		notifier: notifier,
		logger:   logger.With("handler", "on_sync_result"),
	}
}

// Handle implements shared.EventHandler.
func (h *OnSyncResultHandler) Handle(event shared.Event) error {
	ctx := context.Background()

	switch e := event.(type) {
	case shared.SyncCompletedEvent:
		if e.Pushed == 0 && e.Skipped == 0 {
			return nil
		}
		body := fmt.Sprintf("%d records were submitted to SMK.", e.Pushed)
		if e.Skipped > 0 {
			body += fmt.Sprintf(" %d could not be applied and stay pending.", e.Skipped)
		}
		if err := h.notifier.Send(ctx, e.UserID, "Registry sync finished", body); err != nil {
			h.logger.Error("failed to send sync notification", "user_id", e.UserID, "error", err)
			return err
		}

	case shared.SyncFailedEvent:
		body := "The nightly SMK submission did not go through. Your records are safe and will be retried."
		if err := h.notifier.Send(ctx, e.UserID, "Registry sync failed", body); err != nil {
			h.logger.Error("failed to send sync failure notification", "user_id", e.UserID, "error", err)
			return err
		}
		h.logger.Warn("registry sync failed for user", "user_id", e.UserID, "reason", e.Reason)

	default:
		h.logger.Warn("received unexpected event", "event_type", event.EventType())
	}

	return nil
}

// ═══════════════════════════════════════════════════════════════════════════
// ON MONTHLY UNDER TARGET HANDLER
// ═══════════════════════════════════════════════════════════════════════════

// OnMonthlyUnderTargetHandler notifies physicians whose closed month ended
// below the duty-hour minimum.
type OnMonthlyUnderTargetHandler struct {
	notifier NotificationSender
	logger   *slog.Logger
}

// NewOnMonthlyUnderTargetHandler creates a new OnMonthlyUnderTargetHandler.
func NewOnMonthlyUnderTargetHandler(notifier NotificationSender, logger *slog.Logger) *OnMonthlyUnderTargetHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OnMonthlyUnderTargetHandler{
		notifier: notifier,
		logger:   logger.With("handler", "on_monthly_under_target"),
	}
}

// Handle implements shared.EventHandler.
func (h *OnMonthlyUnderTargetHandler) Handle(event shared.Event) error {
	under, ok := event.(shared.MonthlyUnderTargetEvent)
	if !ok {
		h.logger.Warn("received non-MonthlyUnderTargetEvent", "event_type", event.EventType())
		return nil
	}

	body := fmt.Sprintf("Duty hours for %s total %dh %02dmin, below the %dh minimum. Consider catching up this month.",
		under.Month, under.TotalMinutes/60, under.TotalMinutes%60, under.TargetHours)
	if err := h.notifier.Send(context.Background(), under.UserID, "Monthly duty hours below minimum", body); err != nil {
		h.logger.Error("failed to send under-target notification", "user_id", under.UserID, "error", err)
		return err
	}
	return nil
}
