package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sledzspecke/smk-progress-hub/internal/domain/procedure"
	"github.com/sledzspecke/smk-progress-hub/internal/domain/shared"
	"github.com/sledzspecke/smk-progress-hub/internal/domain/specialization"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECORD PROCEDURE COMMAND
// Records a performed procedure: resolves the event bucket, matches the code
// to a curriculum requirement, validates, and keeps duplicates flagged for
// audit rather than dropping them.
// ══════════════════════════════════════════════════════════════════════════════

// RecordProcedureCommand contains the data to record a procedure.
type RecordProcedureCommand struct {
	// SpecializationID scopes the realization.
	SpecializationID string

	// Code is the curriculum procedure code.
	Code string

	// Role is "operator"/"a" or "assistant"/"b".
	Role string

	// Date is the day the procedure was performed.
	Date time.Time

	// Simulated marks a simulator realization.
	Simulated bool

	// Location is the site, free text.
	Location string

	// Strict escalates cap violations from warnings to errors.
	Strict bool

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c RecordProcedureCommand) Validate() error {
	if c.SpecializationID == "" {
		return errors.New("record_procedure: specialization_id is required")
	}
	if c.Code == "" {
		return errors.New("record_procedure: code is required")
	}
	if c.Date.IsZero() {
		return errors.New("record_procedure: date is required")
	}
	if _, err := shared.ParseProcedureRole(c.Role); err != nil {
		return fmt.Errorf("record_procedure: %w", err)
	}
	return nil
}

// LimitPolicy maps the Strict flag to the validator severity.
func (c RecordProcedureCommand) LimitPolicy() shared.LimitPolicy {
	if c.Strict {
		return shared.LimitStrict
	}
	return shared.LimitAdvisory
}

// RecordProcedureResult contains the result of recording a procedure.
type RecordProcedureResult struct {
	RealizationID string

	// Year and ModuleID carry the resolved event bucket.
	Year     int
	ModuleID string

	// Duplicate is set when an identical entry already existed; the new
	// entry is kept and flagged.
	Duplicate bool

	// FirstOfType is set when this is the first realization of the code.
	FirstOfType bool

	// RequirementCompleted is set when the requirement reached both role
	// counts with this realization.
	RequirementCompleted bool

	// Warnings are the non-blocking violations the caller should surface.
	Warnings []shared.Violation

	// Events contains domain events generated.
	Events []shared.Event
}

// RecordProcedureHandler handles the RecordProcedureCommand.
type RecordProcedureHandler struct {
	specRepo       specialization.Repository
	reqRepo        procedure.RequirementRepository
	realRepo       procedure.RealizationRepository
	eventPublisher shared.EventPublisher
	rules          specialization.Rules
}

// NewRecordProcedureHandler creates a new RecordProcedureHandler.
func NewRecordProcedureHandler(
	specRepo specialization.Repository,
	reqRepo procedure.RequirementRepository,
	realRepo procedure.RealizationRepository,
	eventPublisher shared.EventPublisher,
	rules specialization.Rules,
) *RecordProcedureHandler {
	return &RecordProcedureHandler{
		specRepo:       specRepo,
		reqRepo:        reqRepo,
		realRepo:       realRepo,
		eventPublisher: eventPublisher,
		rules:          rules,
	}
}

// Handle executes the record procedure command.
func (h *RecordProcedureHandler) Handle(ctx context.Context, cmd RecordProcedureCommand) (*RecordProcedureResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	role, _ := shared.ParseProcedureRole(cmd.Role)

	spec, err := h.specRepo.FindByID(ctx, shared.SpecializationID(cmd.SpecializationID))
	if err != nil {
		return nil, fmt.Errorf("record_procedure: failed to load specialization: %w", err)
	}

	policy, err := specialization.PolicyFor(spec.SmkVersion, h.rules)
	if err != nil {
		return nil, err
	}

	resolver := specialization.NewContextResolver(policy)
	eventCtx, err := resolver.Resolve(spec, cmd.Date)
	if err != nil {
		return nil, err
	}

	req, err := h.findRequirement(ctx, spec, eventCtx.ModuleID, cmd.Code)
	if err != nil && !shared.IsNotFound(err) {
		return nil, fmt.Errorf("record_procedure: failed to load requirement: %w", err)
	}

	candidate, err := procedure.NewRealization(req, spec.ID, spec.UserID, role, cmd.Date, cmd.Simulated, cmd.Location)
	if err != nil {
		return nil, err
	}
	candidate.Year = eventCtx.Year
	candidate.ModuleID = eventCtx.ModuleID

	siblings, err := h.realRepo.FindBySpecialization(ctx, spec.ID)
	if err != nil {
		return nil, fmt.Errorf("record_procedure: failed to load existing realizations: %w", err)
	}

	validation := procedure.NewValidator(policy).Validate(candidate, req, siblings, cmd.LimitPolicy())
	if verr := validation.Err(); verr != nil {
		return nil, verr
	}

	result := &RecordProcedureResult{
		RealizationID: candidate.ID.String(),
		Year:          candidate.Year.Int(),
		ModuleID:      candidate.ModuleID.String(),
		Warnings:      validation.Warnings,
	}

	if original := procedure.FindDuplicate(candidate, siblings); original != nil {
		candidate.FlagDuplicate(original.ID)
		result.Duplicate = true
	}
	result.FirstOfType = !hasCode(siblings, cmd.Code)

	if err := h.realRepo.Create(ctx, candidate); err != nil {
		return nil, fmt.Errorf("record_procedure: failed to persist: %w", err)
	}

	events := h.buildEvents(cmd, spec, candidate, req, siblings, result)
	for _, event := range events {
		_ = h.eventPublisher.Publish(event)
	}
	result.Events = events

	return result, nil
}

// findRequirement matches the code within the resolved module first, then
// across the whole curriculum for year-bucketed programs.
func (h *RecordProcedureHandler) findRequirement(ctx context.Context, spec *specialization.Specialization, moduleID shared.ModuleID, code string) (*procedure.Requirement, error) {
	if !moduleID.IsEmpty() {
		req, err := h.reqRepo.FindByCode(ctx, moduleID, code)
		if err == nil || !shared.IsNotFound(err) {
			return req, err
		}
	}
	for _, m := range spec.Modules {
		if m.ID == moduleID {
			continue
		}
		req, err := h.reqRepo.FindByCode(ctx, m.ID, code)
		if err == nil {
			return req, nil
		}
		if !shared.IsNotFound(err) {
			return nil, err
		}
	}
	return nil, shared.ErrRequirementNotFound
}

func (h *RecordProcedureHandler) buildEvents(
	cmd RecordProcedureCommand,
	spec *specialization.Specialization,
	candidate *procedure.Realization,
	req *procedure.Requirement,
	siblings []*procedure.Realization,
	result *RecordProcedureResult,
) []shared.Event {
	var events []shared.Event

	recorded := shared.NewProcedureRecordedEvent(
		candidate.ID.String(), spec.UserID.String(), candidate.Code,
		candidate.Role.String(), candidate.Date, candidate.Simulated)
	if cmd.CorrelationID != "" {
		recorded.BaseEvent = recorded.BaseEvent.WithCorrelationID(cmd.CorrelationID)
	}
	events = append(events, recorded)

	if result.Duplicate {
		existing := 0
		for _, s := range siblings {
			if s.Code == candidate.Code && s.Role == candidate.Role && s.Date.Equal(candidate.Date) {
				existing++
			}
		}
		events = append(events, shared.NewProcedureDuplicateEvent(
			candidate.ID.String(), spec.UserID.String(), candidate.Code,
			candidate.Role.String(), candidate.Date, existing))
	}
	if result.FirstOfType {
		events = append(events, shared.NewFirstOfTypeEvent(spec.UserID.String(), req.Code, req.Name))
	}

	before := procedure.CountProgress(req, siblings)
	after := procedure.CountProgress(req, append(siblings, candidate))
	if after.IsComplete() && !before.IsComplete() {
		result.RequirementCompleted = true
		events = append(events, shared.NewRequirementCompletedEvent(
			spec.UserID.String(), req.ID.String(), req.Code))
	}

	return events
}

func hasCode(realizations []*procedure.Realization, code string) bool {
	for _, r := range realizations {
		if r.Code == code {
			return true
		}
	}
	return false
}
