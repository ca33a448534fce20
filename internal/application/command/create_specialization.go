// Package command contains write operations (CQRS - Commands).
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
// CREATE SPECIALIZATION COMMAND
// Instantiates a specialization from a curriculum template: the aggregate, its
// modules, and the procedure requirements of every module.
// ══════════════════════════════════════════════════════════════════════════════

// CreateSpecializationCommand contains the data to enroll a physician.
type CreateSpecializationCommand struct {
	// UserID is the physician's internal ID.
	UserID string

	// ProgramCode selects the curriculum template.
	ProgramCode string

	// SmkVersion is the registry variant ("old" or "new").
	SmkVersion string

	// StartDate is the first day of training.
	StartDate time.Time

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c CreateSpecializationCommand) Validate() error {
	if c.UserID == "" {
		return errors.New("create_specialization: user_id is required")
	}
	if c.ProgramCode == "" {
		return errors.New("create_specialization: program_code is required")
	}
	if c.StartDate.IsZero() {
		return errors.New("create_specialization: start_date is required")
	}
	if _, err := shared.ParseSmkVersion(c.SmkVersion); err != nil {
		return fmt.Errorf("create_specialization: %w", err)
	}
	return nil
}

// CreateSpecializationResult contains the result of the enrollment.
type CreateSpecializationResult struct {
	SpecializationID string
	Name             string
	DurationYears    int
	ModuleIDs        []string
	PlannedEnd       time.Time
}

// CreateSpecializationHandler handles the CreateSpecializationCommand.
type CreateSpecializationHandler struct {
	specRepo  specialization.Repository
	reqRepo   procedure.RequirementRepository
	templates specialization.TemplateProvider
	uow       specialization.UnitOfWork
}

// NewCreateSpecializationHandler creates a new CreateSpecializationHandler.
func NewCreateSpecializationHandler(
	specRepo specialization.Repository,
	reqRepo procedure.RequirementRepository,
	templates specialization.TemplateProvider,
	uow specialization.UnitOfWork,
) *CreateSpecializationHandler {
	return &CreateSpecializationHandler{
		specRepo:  specRepo,
		reqRepo:   reqRepo,
		templates: templates,
		uow:       uow,
	}
}

// Handle executes the create specialization command.
func (h *CreateSpecializationHandler) Handle(ctx context.Context, cmd CreateSpecializationCommand) (*CreateSpecializationResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	version, _ := shared.ParseSmkVersion(cmd.SmkVersion)

	tmpl, err := h.templates.Get(ctx, cmd.ProgramCode, version)
	if err != nil {
		return nil, fmt.Errorf("create_specialization: failed to load template: %w", err)
	}

	planned, err := shared.NewDateRange(cmd.StartDate, cmd.StartDate.AddDate(tmpl.DurationYears, 0, -1))
	if err != nil {
		return nil, fmt.Errorf("create_specialization: %w", err)
	}

	spec, err := specialization.NewSpecialization(
		shared.UserID(cmd.UserID), tmpl.Name, tmpl.ProgramCode, version, planned, tmpl.DurationYears)
	if err != nil {
		return nil, err
	}
	spec.HasBasicModule = tmpl.HasBasicModule()

	var requirements []*procedure.Requirement
	for _, mt := range tmpl.Modules {
		module, merr := specialization.NewModule(mt.Kind, mt.Name, mt.Requirements())
		if merr != nil {
			return nil, merr
		}
		spec.AddModule(module)
		for _, pt := range mt.Procedures {
			requirements = append(requirements, procedure.RequirementFromTemplate(module.ID, pt))
		}
	}
	if first := spec.AdvanceCurrentModule(); first == nil {
		return nil, shared.NewDomainError("specialization", "Create", shared.ErrInvalidEntity,
			"curriculum template has no modules")
	}

	err = h.uow.WithinTx(ctx, func(txCtx context.Context) error {
		if terr := h.specRepo.Create(txCtx, spec); terr != nil {
			return terr
		}
		return h.reqRepo.CreateBatch(txCtx, requirements)
	})
	if err != nil {
		return nil, fmt.Errorf("create_specialization: failed to persist: %w", err)
	}

	result := &CreateSpecializationResult{
		SpecializationID: spec.ID.String(),
		Name:             spec.Name,
		DurationYears:    spec.DurationYears,
		PlannedEnd:       spec.Planned.End,
	}
	for _, m := range spec.Modules {
		result.ModuleIDs = append(result.ModuleIDs, m.ID.String())
	}
	return result, nil
}
