package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sledzspecke/smk-progress-hub/internal/domain/education"
	"github.com/sledzspecke/smk-progress-hub/internal/domain/internship"
	"github.com/sledzspecke/smk-progress-hub/internal/domain/shared"
	"github.com/sledzspecke/smk-progress-hub/internal/domain/specialization"
)

// ══════════════════════════════════════════════════════════════════════════════
// ADD SELF-EDUCATION DAYS COMMAND
// Draws days from the 6-per-calendar-year pool of a module. The cap is hard:
// a grant that would overdraw the pool is rejected.
// ══════════════════════════════════════════════════════════════════════════════

// AddSelfEducationDaysCommand contains the data to record self-education days.
type AddSelfEducationDaysCommand struct {
	SpecializationID string
	ModuleID         string

	// InternshipID names the internship the leave interrupts.
	InternshipID string

	// From and To bound the leave window, inclusive. The pool year and the
	// day count both derive from the window.
	From time.Time
	To   time.Time

	Purpose string

	CorrelationID string
}

// Validate validates the command.
func (c AddSelfEducationDaysCommand) Validate() error {
	if c.SpecializationID == "" {
		return errors.New("add_self_education: specialization_id is required")
	}
	if c.ModuleID == "" {
		return errors.New("add_self_education: module_id is required")
	}
	if c.InternshipID == "" {
		return errors.New("add_self_education: internship_id is required")
	}
	if c.From.IsZero() || c.To.IsZero() {
		return errors.New("add_self_education: from and to dates are required")
	}
	return nil
}

// AddSelfEducationDaysResult contains the result of the grant.
type AddSelfEducationDaysResult struct {
	EntryID   string
	Days      int
	YearTotal int
	Remaining int
	Events    []shared.Event
}

// AddSelfEducationDaysHandler handles the AddSelfEducationDaysCommand.
type AddSelfEducationDaysHandler struct {
	specRepo       specialization.Repository
	internshipRepo internship.Repository
	selfEduRepo    education.SelfEducationRepository
	eventPublisher shared.EventPublisher
	rules          specialization.Rules
}

// NewAddSelfEducationDaysHandler creates a new AddSelfEducationDaysHandler.
func NewAddSelfEducationDaysHandler(
	specRepo specialization.Repository,
	internshipRepo internship.Repository,
	selfEduRepo education.SelfEducationRepository,
	eventPublisher shared.EventPublisher,
	rules specialization.Rules,
) *AddSelfEducationDaysHandler {
	return &AddSelfEducationDaysHandler{
		specRepo:       specRepo,
		internshipRepo: internshipRepo,
		selfEduRepo:    selfEduRepo,
		eventPublisher: eventPublisher,
		rules:          rules,
	}
}

// Handle executes the add self-education days command.
func (h *AddSelfEducationDaysHandler) Handle(ctx context.Context, cmd AddSelfEducationDaysCommand) (*AddSelfEducationDaysResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	spec, err := h.specRepo.FindByID(ctx, shared.SpecializationID(cmd.SpecializationID))
	if err != nil {
		return nil, fmt.Errorf("add_self_education: failed to load specialization: %w", err)
	}
	if _, err := spec.Module(shared.ModuleID(cmd.ModuleID)); err != nil {
		return nil, err
	}

	host, err := h.internshipRepo.FindByID(ctx, shared.InternshipID(cmd.InternshipID))
	if err != nil {
		return nil, fmt.Errorf("add_self_education: failed to load internship: %w", err)
	}
	if host.SpecializationID != spec.ID {
		return nil, shared.NewDomainError("education", "AddSelfEducationDays", shared.ErrInternshipNotFound,
			"internship belongs to another specialization")
	}

	policy, err := specialization.PolicyFor(spec.SmkVersion, h.rules)
	if err != nil {
		return nil, err
	}

	dates, err := shared.NewDateRange(cmd.From, cmd.To)
	if err != nil {
		return nil, err
	}
	candidate, err := education.NewSelfEducationDays(
		spec.ID, shared.ModuleID(cmd.ModuleID), host.ID, dates, cmd.Purpose)
	if err != nil {
		return nil, err
	}

	siblings, err := h.selfEduRepo.FindByModule(ctx, candidate.ModuleID)
	if err != nil {
		return nil, fmt.Errorf("add_self_education: failed to load existing entries: %w", err)
	}

	validation := education.NewValidator(policy).ValidateSelfEducation(candidate, siblings)
	if verr := validation.Err(); verr != nil {
		return nil, verr
	}

	if err := h.selfEduRepo.Create(ctx, candidate); err != nil {
		return nil, fmt.Errorf("add_self_education: failed to persist: %w", err)
	}

	yearTotal := education.UsedSelfEducationDays(siblings, candidate.ModuleID, candidate.Year) + candidate.Days

	event := shared.NewSelfEducationDaysAddedEvent(
		candidate.ID.String(), spec.UserID.String(), candidate.ModuleID.String(),
		candidate.Year, candidate.Days, yearTotal)
	if cmd.CorrelationID != "" {
		event.BaseEvent = event.BaseEvent.WithCorrelationID(cmd.CorrelationID)
	}
	_ = h.eventPublisher.Publish(event)

	return &AddSelfEducationDaysResult{
		EntryID:   candidate.ID.String(),
		Days:      candidate.Days,
		YearTotal: yearTotal,
		Remaining: policy.SelfEducationYearlyCap() - yearTotal,
		Events:    []shared.Event{event},
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// RECORD ABSENCE COMMAND
// Absences that suspend training push the specialization's calculated end
// date out by their day count.
// ══════════════════════════════════════════════════════════════════════════════

// RecordAbsenceCommand contains the data to record an absence.
type RecordAbsenceCommand struct {
	SpecializationID string
	Type             string
	From             time.Time
	To               time.Time
	Description      string
	CorrelationID    string
}

// Validate validates the command.
func (c RecordAbsenceCommand) Validate() error {
	if c.SpecializationID == "" {
		return errors.New("record_absence: specialization_id is required")
	}
	if c.From.IsZero() || c.To.IsZero() {
		return errors.New("record_absence: from and to dates are required")
	}
	if !education.AbsenceType(c.Type).IsValid() {
		return fmt.Errorf("record_absence: unknown absence type: %s", c.Type)
	}
	return nil
}

// RecordAbsenceResult contains the result of recording an absence.
type RecordAbsenceResult struct {
	AbsenceID     string
	ExtensionDays int
	CalculatedEnd time.Time
	Warnings      []shared.Violation
	Events        []shared.Event
}

// RecordAbsenceHandler handles the RecordAbsenceCommand.
type RecordAbsenceHandler struct {
	specRepo       specialization.Repository
	absenceRepo    education.AbsenceRepository
	eventPublisher shared.EventPublisher
	rules          specialization.Rules
}

// NewRecordAbsenceHandler creates a new RecordAbsenceHandler.
func NewRecordAbsenceHandler(
	specRepo specialization.Repository,
	absenceRepo education.AbsenceRepository,
	eventPublisher shared.EventPublisher,
	rules specialization.Rules,
) *RecordAbsenceHandler {
	return &RecordAbsenceHandler{
		specRepo:       specRepo,
		absenceRepo:    absenceRepo,
		eventPublisher: eventPublisher,
		rules:          rules,
	}
}

// Handle executes the record absence command.
func (h *RecordAbsenceHandler) Handle(ctx context.Context, cmd RecordAbsenceCommand) (*RecordAbsenceResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	spec, err := h.specRepo.FindByID(ctx, shared.SpecializationID(cmd.SpecializationID))
	if err != nil {
		return nil, fmt.Errorf("record_absence: failed to load specialization: %w", err)
	}

	policy, err := specialization.PolicyFor(spec.SmkVersion, h.rules)
	if err != nil {
		return nil, err
	}

	dates, err := shared.NewDateRange(cmd.From, cmd.To)
	if err != nil {
		return nil, err
	}
	candidate, err := education.NewAbsence(spec.ID, education.AbsenceType(cmd.Type), dates, cmd.Description)
	if err != nil {
		return nil, err
	}

	siblings, err := h.absenceRepo.FindBySpecialization(ctx, spec.ID)
	if err != nil {
		return nil, fmt.Errorf("record_absence: failed to load existing absences: %w", err)
	}

	validation := education.NewValidator(policy).ValidateAbsence(candidate, siblings)
	if verr := validation.Err(); verr != nil {
		return nil, verr
	}

	if err := h.absenceRepo.Create(ctx, candidate); err != nil {
		return nil, fmt.Errorf("record_absence: failed to persist: %w", err)
	}

	extension := candidate.ExtensionDays()
	if extension > 0 {
		spec.ApplyAbsenceExtension(extension)
		if err := h.specRepo.Save(ctx, spec); err != nil {
			return nil, fmt.Errorf("record_absence: failed to update end date: %w", err)
		}
	}

	event := shared.NewAbsenceRecordedEvent(
		candidate.ID.String(), spec.ID.String(), spec.UserID.String(),
		candidate.Dates.Start, candidate.Dates.End, extension > 0)
	if cmd.CorrelationID != "" {
		event.BaseEvent = event.BaseEvent.WithCorrelationID(cmd.CorrelationID)
	}
	_ = h.eventPublisher.Publish(event)

	return &RecordAbsenceResult{
		AbsenceID:     candidate.ID.String(),
		ExtensionDays: extension,
		CalculatedEnd: spec.CalculatedEnd,
		Warnings:      validation.Warnings,
		Events:        []shared.Event{event},
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// COMPLETE COURSE COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// CompleteCourseCommand records a passed course with its certificate.
type CompleteCourseCommand struct {
	CourseID          string
	CertificateNumber string
	CorrelationID     string
}

// Validate validates the command.
func (c CompleteCourseCommand) Validate() error {
	if c.CourseID == "" {
		return errors.New("complete_course: course_id is required")
	}
	if c.CertificateNumber == "" {
		return errors.New("complete_course: certificate_number is required")
	}
	return nil
}

// CompleteCourseHandler handles the CompleteCourseCommand.
type CompleteCourseHandler struct {
	courseRepo education.CourseRepository
}

// NewCompleteCourseHandler creates a new CompleteCourseHandler.
func NewCompleteCourseHandler(courseRepo education.CourseRepository) *CompleteCourseHandler {
	return &CompleteCourseHandler{courseRepo: courseRepo}
}

// Handle executes the complete course command.
func (h *CompleteCourseHandler) Handle(ctx context.Context, cmd CompleteCourseCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	course, err := h.courseRepo.FindByID(ctx, shared.CourseID(cmd.CourseID))
	if err != nil {
		return fmt.Errorf("complete_course: failed to load course: %w", err)
	}
	if err := course.MarkCompleted(cmd.CertificateNumber); err != nil {
		return err
	}
	if err := h.courseRepo.Save(ctx, course); err != nil {
		return fmt.Errorf("complete_course: failed to persist: %w", err)
	}
	return nil
}
