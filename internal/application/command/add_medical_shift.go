package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sledzspecke/smk-progress-hub/internal/domain/internship"
	"github.com/sledzspecke/smk-progress-hub/internal/domain/shared"
	"github.com/sledzspecke/smk-progress-hub/internal/domain/shift"
	"github.com/sledzspecke/smk-progress-hub/internal/domain/specialization"
)

// ══════════════════════════════════════════════════════════════════════════════
// ADD MEDICAL SHIFT COMMAND
// Records a duty entry: resolves the event bucket, validates the shift against
// the internship window and the hour caps, and persists it. Blocking
// violations reject the shift; warnings travel back with the result.
// ══════════════════════════════════════════════════════════════════════════════

// AddMedicalShiftCommand contains the data to record a shift.
type AddMedicalShiftCommand struct {
	// SpecializationID scopes the shift.
	SpecializationID string

	// InternshipID is the placement the duty belongs to.
	InternshipID string

	// Date is the calendar day of the duty.
	Date time.Time

	// Hours and Minutes form the duration. Minutes above 59 are accepted
	// and normalized.
	Hours   int
	Minutes int

	// Location is the duty location, free text.
	Location string

	// Strict escalates cap violations from warnings to errors.
	Strict bool

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c AddMedicalShiftCommand) Validate() error {
	if c.SpecializationID == "" {
		return errors.New("add_medical_shift: specialization_id is required")
	}
	if c.InternshipID == "" {
		return errors.New("add_medical_shift: internship_id is required")
	}
	if c.Date.IsZero() {
		return errors.New("add_medical_shift: date is required")
	}
	if c.Hours < 0 || c.Minutes < 0 {
		return errors.New("add_medical_shift: duration components cannot be negative")
	}
	return nil
}

// LimitPolicy maps the Strict flag to the validator severity.
func (c AddMedicalShiftCommand) LimitPolicy() shared.LimitPolicy {
	if c.Strict {
		return shared.LimitStrict
	}
	return shared.LimitAdvisory
}

// AddMedicalShiftResult contains the result of recording a shift.
type AddMedicalShiftResult struct {
	ShiftID string

	// Year and ModuleID carry the resolved event bucket.
	Year     int
	ModuleID string

	// Warnings are the non-blocking violations the caller should surface.
	Warnings []shared.Violation

	// Events contains domain events generated.
	Events []shared.Event
}

// AddMedicalShiftHandler handles the AddMedicalShiftCommand.
type AddMedicalShiftHandler struct {
	specRepo       specialization.Repository
	internshipRepo internship.Repository
	shiftRepo      shift.Repository
	eventPublisher shared.EventPublisher
	rules          specialization.Rules
}

// NewAddMedicalShiftHandler creates a new AddMedicalShiftHandler.
func NewAddMedicalShiftHandler(
	specRepo specialization.Repository,
	internshipRepo internship.Repository,
	shiftRepo shift.Repository,
	eventPublisher shared.EventPublisher,
	rules specialization.Rules,
) *AddMedicalShiftHandler {
	return &AddMedicalShiftHandler{
		specRepo:       specRepo,
		internshipRepo: internshipRepo,
		shiftRepo:      shiftRepo,
		eventPublisher: eventPublisher,
		rules:          rules,
	}
}

// Handle executes the add medical shift command.
func (h *AddMedicalShiftHandler) Handle(ctx context.Context, cmd AddMedicalShiftCommand) (*AddMedicalShiftResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	spec, err := h.specRepo.FindByID(ctx, shared.SpecializationID(cmd.SpecializationID))
	if err != nil {
		return nil, fmt.Errorf("add_medical_shift: failed to load specialization: %w", err)
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

	host, err := h.internshipRepo.FindByID(ctx, shared.InternshipID(cmd.InternshipID))
	if err != nil {
		return nil, fmt.Errorf("add_medical_shift: failed to load internship: %w", err)
	}

	duration, err := shared.NewShiftDuration(cmd.Hours, cmd.Minutes)
	if err != nil {
		return nil, err
	}

	candidate, err := shift.New(host.ID, spec.ID, spec.UserID, cmd.Date, duration, cmd.Location)
	if err != nil {
		return nil, err
	}
	candidate.Year = eventCtx.Year
	candidate.ModuleID = eventCtx.ModuleID

	siblings, err := h.shiftRepo.FindBySpecialization(ctx, spec.ID)
	if err != nil {
		return nil, fmt.Errorf("add_medical_shift: failed to load existing shifts: %w", err)
	}

	var module *specialization.Module
	if !eventCtx.ModuleID.IsEmpty() {
		module, _ = spec.Module(eventCtx.ModuleID)
	}

	validation := shift.NewValidator(policy).Validate(candidate, host, module, siblings, cmd.LimitPolicy())
	if verr := validation.Err(); verr != nil {
		return nil, verr
	}

	if err := h.shiftRepo.Create(ctx, candidate); err != nil {
		return nil, fmt.Errorf("add_medical_shift: failed to persist: %w", err)
	}

	event := shared.NewShiftAddedEvent(
		candidate.ID.String(), spec.UserID.String(), host.ID.String(),
		candidate.Date, candidate.Duration.TotalMinutes())
	if cmd.CorrelationID != "" {
		event.BaseEvent = event.BaseEvent.WithCorrelationID(cmd.CorrelationID)
	}
	_ = h.eventPublisher.Publish(event)

	return &AddMedicalShiftResult{
		ShiftID:  candidate.ID.String(),
		Year:     candidate.Year.Int(),
		ModuleID: candidate.ModuleID.String(),
		Warnings: validation.Warnings,
		Events:   []shared.Event{event},
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// APPROVE MEDICAL SHIFT COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// ApproveMedicalShiftCommand marks a synced shift as approved by the registry.
type ApproveMedicalShiftCommand struct {
	ShiftID       string
	CorrelationID string
}

// Validate validates the command.
func (c ApproveMedicalShiftCommand) Validate() error {
	if c.ShiftID == "" {
		return errors.New("approve_medical_shift: shift_id is required")
	}
	return nil
}

// ApproveMedicalShiftHandler handles the ApproveMedicalShiftCommand.
type ApproveMedicalShiftHandler struct {
	shiftRepo      shift.Repository
	eventPublisher shared.EventPublisher
}

// NewApproveMedicalShiftHandler creates a new ApproveMedicalShiftHandler.
func NewApproveMedicalShiftHandler(shiftRepo shift.Repository, eventPublisher shared.EventPublisher) *ApproveMedicalShiftHandler {
	return &ApproveMedicalShiftHandler{shiftRepo: shiftRepo, eventPublisher: eventPublisher}
}

// Handle executes the approval.
func (h *ApproveMedicalShiftHandler) Handle(ctx context.Context, cmd ApproveMedicalShiftCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	s, err := h.shiftRepo.FindByID(ctx, shared.ShiftID(cmd.ShiftID))
	if err != nil {
		return fmt.Errorf("approve_medical_shift: failed to load shift: %w", err)
	}
	if err := s.TransitionSync(shared.SyncApproved); err != nil {
		return err
	}
	if err := h.shiftRepo.Save(ctx, s); err != nil {
		return fmt.Errorf("approve_medical_shift: failed to persist: %w", err)
	}

	event := shared.NewShiftApprovedEvent(
		s.ID.String(), s.UserID.String(), s.InternshipID.String(),
		s.Date, s.Duration.TotalMinutes())
	if cmd.CorrelationID != "" {
		event.BaseEvent = event.BaseEvent.WithCorrelationID(cmd.CorrelationID)
	}
	_ = h.eventPublisher.Publish(event)

	return nil
}
