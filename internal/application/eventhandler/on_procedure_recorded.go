package eventhandler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sledzspecke/smk-progress-hub/internal/domain/shared"
)

// ═══════════════════════════════════════════════════════════════════════════
// ON PROCEDURE RECORDED HANDLER
// Audit-logs duplicates, celebrates first-of-type realizations, and notifies
// when a requirement reaches its counts. Duplicates are never dropped here;
// a reviewer resolves them from the audit trail.
// ═══════════════════════════════════════════════════════════════════════════

// OnProcedureRecordedHandler reacts to procedure events.
type OnProcedureRecordedHandler struct {
	notifier NotificationSender
	logger   *slog.Logger
}

// NewOnProcedureRecordedHandler creates a new OnProcedureRecordedHandler.
func NewOnProcedureRecordedHandler(notifier NotificationSender, logger *slog.Logger) *OnProcedureRecordedHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OnProcedureRecordedHandler{
		notifier: notifier,
		logger:   logger.With("handler", "on_procedure_recorded"),
	}
}

// Handle implements shared.EventHandler.
func (h *OnProcedureRecordedHandler) Handle(event shared.Event) error {
	ctx := context.Background()

	switch e := event.(type) {
	case shared.ProcedureRecordedEvent:
		h.logger.Debug("procedure recorded",
			"user_id", e.UserID, "code", e.Code, "role", e.Role, "simulated", e.Simulated)

	case shared.ProcedureDuplicateEvent:
		// Audit trail entry; the realization stays counted until reviewed.
		h.logger.Warn("duplicate procedure entry flagged",
			"user_id", e.UserID,
			"code", e.Code,
			"role", e.Role,
			"date", e.Date.Format("2006-01-02"),
			"existing_count", e.ExistingCount,
		)

	case shared.FirstOfTypeEvent:
		h.logger.Info("first realization of procedure", "user_id", e.UserID, "code", e.Code)
		if h.notifier != nil {
			body := fmt.Sprintf("You recorded your first %s (%s).", e.Name, e.Code)
			if err := h.notifier.Send(ctx, e.UserID, "New procedure unlocked", body); err != nil {
				h.logger.Warn("failed to send first-of-type notification", "error", err)
			}
		}

	case shared.RequirementCompletedEvent:
		h.logger.Info("procedure requirement completed",
			"user_id", e.UserID, "requirement_id", e.RequirementID, "code", e.Code)
		if h.notifier != nil {
			body := fmt.Sprintf("All required realizations of %s are done.", e.Code)
			if err := h.notifier.Send(ctx, e.UserID, "Procedure requirement complete", body); err != nil {
				h.logger.Warn("failed to send completion notification", "error", err)
			}
		}

	default:
		h.logger.Warn("received unexpected event", "event_type", event.EventType())
	}

	return nil
}
