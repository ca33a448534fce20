package eventhandler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sledzspecke/smk-progress-hub/internal/domain/shared"
	"github.com/sledzspecke/smk-progress-hub/internal/domain/specialization"
)

// ═══════════════════════════════════════════════════════════════════════════
// ON MODULE COMPLETED HANDLER
// Notifies the physician about the completed module and the stage the
// program moved into. The current-module pointer is already advanced by the
// command that emitted the event.
// ═══════════════════════════════════════════════════════════════════════════

// OnModuleCompletedHandler reacts to module completions.
type OnModuleCompletedHandler struct {
	specRepo specialization.Repository
	notifier NotificationSender
	logger   *slog.Logger
}

// NewOnModuleCompletedHandler creates a new OnModuleCompletedHandler.
func NewOnModuleCompletedHandler(specRepo specialization.Repository, notifier NotificationSender, logger *slog.Logger) *OnModuleCompletedHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OnModuleCompletedHandler{
		specRepo: specRepo,
		notifier: notifier,
		logger:   logger.With("handler", "on_module_completed"),
	}
}

// Handle implements shared.EventHandler.
func (h *OnModuleCompletedHandler) Handle(event shared.Event) error {
	completed, ok := event.(shared.ModuleCompletedEvent)
	if !ok {
		h.logger.Warn("received non-ModuleCompletedEvent", "event_type", event.EventType())
		return nil
	}

	ctx := context.Background()

	spec, err := h.specRepo.FindByID(ctx, shared.SpecializationID(completed.SpecializationID))
	if err != nil {
		h.logger.Error("failed to load specialization", "specialization_id", completed.SpecializationID, "error", err)
		return err
	}

	stage := specialization.CurrentStage(spec)
	h.logger.Info("module completed",
		"user_id", completed.UserID,
		"module_id", completed.ModuleID,
		"kind", completed.Kind,
		"stage", string(stage),
		"stage_percent", stage.Percentage(),
	)

	if h.notifier == nil {
		return nil
	}

	body := fmt.Sprintf("Your %s module is complete. Overall progression: %d%%.", completed.Kind, stage.Percentage())
	if completed.NextModuleID != "" {
		if next, nerr := spec.Module(shared.ModuleID(completed.NextModuleID)); nerr == nil {
			body += fmt.Sprintf(" Next up: %s.", next.Name)
		}
	}
	if err := h.notifier.Send(ctx, completed.UserID, "Module completed", body); err != nil {
		h.logger.Warn("failed to send completion notification", "error", err)
	}

	return nil
}
