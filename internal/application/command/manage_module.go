package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sledzspecke/smk-progress-hub/internal/domain/education"
	"github.com/sledzspecke/smk-progress-hub/internal/domain/internship"
	"github.com/sledzspecke/smk-progress-hub/internal/domain/procedure"
	"github.com/sledzspecke/smk-progress-hub/internal/domain/shared"
	"github.com/sledzspecke/smk-progress-hub/internal/domain/shift"
	"github.com/sledzspecke/smk-progress-hub/internal/domain/specialization"
	"github.com/sledzspecke/smk-progress-hub/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// START MODULE COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// StartModuleCommand transitions a draft module to in progress.
type StartModuleCommand struct {
	SpecializationID string
	ModuleID         string

	// StartDate anchors the module window, defaults to today.
	StartDate time.Time

	CorrelationID string
}

// Validate validates the command.
func (c StartModuleCommand) Validate() error {
	if c.SpecializationID == "" {
		return errors.New("start_module: specialization_id is required")
	}
	if c.ModuleID == "" {
		return errors.New("start_module: module_id is required")
	}
	return nil
}

// StartModuleResult contains the result of starting a module.
type StartModuleResult struct {
	ModuleID  string
	Kind      string
	StartDate time.Time
	Events    []shared.Event
}

// StartModuleHandler handles the StartModuleCommand.
type StartModuleHandler struct {
	specRepo       specialization.Repository
	eventPublisher shared.EventPublisher
}

// NewStartModuleHandler creates a new StartModuleHandler.
func NewStartModuleHandler(specRepo specialization.Repository, eventPublisher shared.EventPublisher) *StartModuleHandler {
	return &StartModuleHandler{specRepo: specRepo, eventPublisher: eventPublisher}
}

// Handle executes the start module command.
func (h *StartModuleHandler) Handle(ctx context.Context, cmd StartModuleCommand) (*StartModuleResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	start := cmd.StartDate
	if start.IsZero() {
		start = time.Now()
	}

	spec, err := h.specRepo.FindByID(ctx, shared.SpecializationID(cmd.SpecializationID))
	if err != nil {
		return nil, fmt.Errorf("start_module: failed to load specialization: %w", err)
	}

	module, err := spec.StartModule(shared.ModuleID(cmd.ModuleID), start)
	if err != nil {
		return nil, err
	}

	if err := h.specRepo.Save(ctx, spec); err != nil {
		return nil, fmt.Errorf("start_module: failed to persist: %w", err)
	}

	event := shared.NewModuleStartedEvent(
		module.ID.String(), spec.ID.String(), spec.UserID.String(),
		module.Kind.String(), module.Dates.Start)
	if cmd.CorrelationID != "" {
		event.BaseEvent = event.BaseEvent.WithCorrelationID(cmd.CorrelationID)
	}
	_ = h.eventPublisher.Publish(event)

	return &StartModuleResult{
		ModuleID:  module.ID.String(),
		Kind:      module.Kind.String(),
		StartDate: module.Dates.Start,
		Events:    []shared.Event{event},
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// COMPLETE MODULE COMMAND
// Completion checks every requirement against the live counts and advances
// the current-module pointer. Save conflicts from concurrent writers are
// retried with a fresh aggregate.
// ══════════════════════════════════════════════════════════════════════════════

// CompleteModuleCommand transitions an in-progress module to completed.
type CompleteModuleCommand struct {
	SpecializationID string
	ModuleID         string
	CorrelationID    string
}

// Validate validates the command.
func (c CompleteModuleCommand) Validate() error {
	if c.SpecializationID == "" {
		return errors.New("complete_module: specialization_id is required")
	}
	if c.ModuleID == "" {
		return errors.New("complete_module: module_id is required")
	}
	return nil
}

// CompleteModuleResult contains the result of completing a module.
type CompleteModuleResult struct {
	ModuleID     string
	NextModuleID string
	Stage        string
	Events       []shared.Event
}

// CompleteModuleHandler handles the CompleteModuleCommand.
type CompleteModuleHandler struct {
	specRepo       specialization.Repository
	internshipRepo internship.Repository
	courseRepo     education.CourseRepository
	selfEduRepo    education.SelfEducationRepository
	reqRepo        procedure.RequirementRepository
	realRepo       procedure.RealizationRepository
	shiftRepo      shift.Repository
	eventPublisher shared.EventPublisher
	retrier        *retry.Retrier
}

// NewCompleteModuleHandler creates a new CompleteModuleHandler.
func NewCompleteModuleHandler(
	specRepo specialization.Repository,
	internshipRepo internship.Repository,
	courseRepo education.CourseRepository,
	selfEduRepo education.SelfEducationRepository,
	reqRepo procedure.RequirementRepository,
	realRepo procedure.RealizationRepository,
	shiftRepo shift.Repository,
	eventPublisher shared.EventPublisher,
) *CompleteModuleHandler {
	return &CompleteModuleHandler{
		specRepo:       specRepo,
		internshipRepo: internshipRepo,
		courseRepo:     courseRepo,
		selfEduRepo:    selfEduRepo,
		reqRepo:        reqRepo,
		realRepo:       realRepo,
		shiftRepo:      shiftRepo,
		eventPublisher: eventPublisher,
		retrier: retry.New(
			retry.WithMaxAttempts(3),
			retry.WithInitialDelay(50*time.Millisecond),
			retry.WithRetryIf(func(err error) bool {
				return errors.Is(err, shared.ErrConcurrencyConflict)
			}),
		),
	}
}

// Handle executes the complete module command.
func (h *CompleteModuleHandler) Handle(ctx context.Context, cmd CompleteModuleCommand) (*CompleteModuleResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	var result *CompleteModuleResult
	err := h.retrier.Do(ctx, func(ctx context.Context) error {
		var attemptErr error
		result, attemptErr = h.complete(ctx, cmd)
		if attemptErr != nil && !errors.Is(attemptErr, shared.ErrConcurrencyConflict) {
			return retry.Permanent(attemptErr)
		}
		return attemptErr
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (h *CompleteModuleHandler) complete(ctx context.Context, cmd CompleteModuleCommand) (*CompleteModuleResult, error) {
	spec, err := h.specRepo.FindByID(ctx, shared.SpecializationID(cmd.SpecializationID))
	if err != nil {
		return nil, fmt.Errorf("complete_module: failed to load specialization: %w", err)
	}

	moduleID := shared.ModuleID(cmd.ModuleID)
	snapshot, err := h.assembleSnapshot(ctx, moduleID)
	if err != nil {
		return nil, err
	}

	module, err := spec.CompleteModule(moduleID, snapshot)
	if err != nil {
		return nil, err
	}

	next := spec.AdvanceCurrentModule()
	if err := h.specRepo.Save(ctx, spec); err != nil {
		return nil, err
	}

	completed := shared.NewModuleCompletedEvent(
		module.ID.String(), spec.ID.String(), spec.UserID.String(), module.Kind.String())
	if next != nil {
		completed = completed.WithNextModule(next.ID.String())
	}
	if cmd.CorrelationID != "" {
		completed.BaseEvent = completed.BaseEvent.WithCorrelationID(cmd.CorrelationID)
	}
	events := []shared.Event{completed}
	if next != nil {
		events = append(events, shared.NewModuleSwitchedEvent(
			spec.ID.String(), module.ID.String(), next.ID.String()))
	}
	for _, event := range events {
		_ = h.eventPublisher.Publish(event)
	}

	result := &CompleteModuleResult{
		ModuleID: module.ID.String(),
		Stage:    string(specialization.CurrentStage(spec)),
		Events:   events,
	}
	if next != nil {
		result.NextModuleID = next.ID.String()
	}
	return result, nil
}

// assembleSnapshot gathers the live counts the completion check runs against.
func (h *CompleteModuleHandler) assembleSnapshot(ctx context.Context, moduleID shared.ModuleID) (specialization.ProgressSnapshot, error) {
	var snap specialization.ProgressSnapshot

	internships, err := h.internshipRepo.CountCompleted(ctx, moduleID)
	if err != nil {
		return snap, fmt.Errorf("complete_module: failed to count internships: %w", err)
	}
	courses, err := h.courseRepo.CountCompleted(ctx, moduleID)
	if err != nil {
		return snap, fmt.Errorf("complete_module: failed to count courses: %w", err)
	}
	minutes, err := h.shiftRepo.SumMinutesByModule(ctx, moduleID)
	if err != nil {
		return snap, fmt.Errorf("complete_module: failed to sum shift minutes: %w", err)
	}

	reqs, err := h.reqRepo.FindByModule(ctx, moduleID)
	if err != nil {
		return snap, fmt.Errorf("complete_module: failed to load requirements: %w", err)
	}
	operator, assistant := 0, 0
	if len(reqs) > 0 {
		realizations, rerr := h.realRepo.FindByModule(ctx, moduleID)
		if rerr != nil {
			return snap, fmt.Errorf("complete_module: failed to load realizations: %w", rerr)
		}
		operator, assistant = procedure.TotalsByRole(reqs, realizations)
	}

	entries, err := h.selfEduRepo.FindByModule(ctx, moduleID)
	if err != nil {
		return snap, fmt.Errorf("complete_module: failed to load self-education days: %w", err)
	}
	selfEdu := 0
	for _, e := range entries {
		selfEdu += e.Days
	}

	snap = specialization.ProgressSnapshot{
		CompletedInternships: internships,
		CompletedCourses:     courses,
		ProceduresOperator:   operator,
		ProceduresAssistant:  assistant,
		ShiftMinutes:         minutes,
		SelfEducationDays:    selfEdu,
	}
	return snap, nil
}
