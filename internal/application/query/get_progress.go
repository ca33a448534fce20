// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"
	"errors"
	"fmt"

	"github.com/sledzspecke/smk-progress-hub/internal/domain/education"
	"github.com/sledzspecke/smk-progress-hub/internal/domain/internship"
	"github.com/sledzspecke/smk-progress-hub/internal/domain/procedure"
	"github.com/sledzspecke/smk-progress-hub/internal/domain/shared"
	"github.com/sledzspecke/smk-progress-hub/internal/domain/shift"
	"github.com/sledzspecke/smk-progress-hub/internal/domain/specialization"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET MODULE PROGRESS QUERY
// Assembles the live counts of one module and folds them through the weighted
// calculator, with a per-requirement procedure breakdown.
// ══════════════════════════════════════════════════════════════════════════════

// GetModuleProgressQuery requests the progress of one module.
type GetModuleProgressQuery struct {
	SpecializationID string
	ModuleID         string
}

// Validate validates the query.
func (q GetModuleProgressQuery) Validate() error {
	if q.SpecializationID == "" {
		return errors.New("get_module_progress: specialization_id is required")
	}
	if q.ModuleID == "" {
		return errors.New("get_module_progress: module_id is required")
	}
	return nil
}

// ModuleProgressView is the assembled progress of one module.
type ModuleProgressView struct {
	ModuleID string
	Name     string
	Kind     string
	State    string

	InternshipsPercent float64
	CoursesPercent     float64
	ProceduresPercent  float64
	ShiftHoursPercent  float64
	OverallPercent     float64

	// Requirements is the per-code procedure breakdown.
	Requirements []procedure.RequirementProgress

	SelfEducationDaysUsed int
}

// GetModuleProgressHandler handles the GetModuleProgressQuery.
type GetModuleProgressHandler struct {
	specRepo       specialization.Repository
	internshipRepo internship.Repository
	courseRepo     education.CourseRepository
	selfEduRepo    education.SelfEducationRepository
	reqRepo        procedure.RequirementRepository
	realRepo       procedure.RealizationRepository
	shiftRepo      shift.Repository
	calculator     *specialization.Calculator
}

// NewGetModuleProgressHandler creates a new GetModuleProgressHandler.
func NewGetModuleProgressHandler(
	specRepo specialization.Repository,
	internshipRepo internship.Repository,
	courseRepo education.CourseRepository,
	selfEduRepo education.SelfEducationRepository,
	reqRepo procedure.RequirementRepository,
	realRepo procedure.RealizationRepository,
	shiftRepo shift.Repository,
	calculator *specialization.Calculator,
) *GetModuleProgressHandler {
	return &GetModuleProgressHandler{
		specRepo:       specRepo,
		internshipRepo: internshipRepo,
		courseRepo:     courseRepo,
		selfEduRepo:    selfEduRepo,
		reqRepo:        reqRepo,
		realRepo:       realRepo,
		shiftRepo:      shiftRepo,
		calculator:     calculator,
	}
}

// Handle executes the query.
func (h *GetModuleProgressHandler) Handle(ctx context.Context, q GetModuleProgressQuery) (*ModuleProgressView, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	spec, err := h.specRepo.FindByID(ctx, shared.SpecializationID(q.SpecializationID))
	if err != nil {
		return nil, fmt.Errorf("get_module_progress: failed to load specialization: %w", err)
	}
	module, err := spec.Module(shared.ModuleID(q.ModuleID))
	if err != nil {
		return nil, err
	}

	snap, reqProgress, err := h.assemble(ctx, module.ID)
	if err != nil {
		return nil, err
	}

	progress := h.calculator.ModuleProgress(module, snap)

	return &ModuleProgressView{
		ModuleID:              module.ID.String(),
		Name:                  module.Name,
		Kind:                  module.Kind.String(),
		State:                 module.State.String(),
		InternshipsPercent:    progress.Internships.AsPercentage(),
		CoursesPercent:        progress.Courses.AsPercentage(),
		ProceduresPercent:     progress.Procedures.AsPercentage(),
		ShiftHoursPercent:     progress.ShiftHours.AsPercentage(),
		OverallPercent:        progress.Overall.AsPercentage(),
		Requirements:          reqProgress,
		SelfEducationDaysUsed: snap.SelfEducationDays,
	}, nil
}

func (h *GetModuleProgressHandler) assemble(ctx context.Context, moduleID shared.ModuleID) (specialization.ProgressSnapshot, []procedure.RequirementProgress, error) {
	var snap specialization.ProgressSnapshot

	internships, err := h.internshipRepo.CountCompleted(ctx, moduleID)
	if err != nil {
		return snap, nil, fmt.Errorf("get_module_progress: failed to count internships: %w", err)
	}
	courses, err := h.courseRepo.CountCompleted(ctx, moduleID)
	if err != nil {
		return snap, nil, fmt.Errorf("get_module_progress: failed to count courses: %w", err)
	}
	minutes, err := h.shiftRepo.SumMinutesByModule(ctx, moduleID)
	if err != nil {
		return snap, nil, fmt.Errorf("get_module_progress: failed to sum shift minutes: %w", err)
	}
	reqs, err := h.reqRepo.FindByModule(ctx, moduleID)
	if err != nil {
		return snap, nil, fmt.Errorf("get_module_progress: failed to load requirements: %w", err)
	}
	realizations, err := h.realRepo.FindByModule(ctx, moduleID)
	if err != nil {
		return snap, nil, fmt.Errorf("get_module_progress: failed to load realizations: %w", err)
	}
	entries, err := h.selfEduRepo.FindByModule(ctx, moduleID)
	if err != nil {
		return snap, nil, fmt.Errorf("get_module_progress: failed to load self-education days: %w", err)
	}

	operator, assistant := procedure.TotalsByRole(reqs, realizations)
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
	return snap, procedure.CountAllProgress(reqs, realizations), nil
}

// ══════════════════════════════════════════════════════════════════════════════
// GET OVERALL PROGRESS QUERY
// ══════════════════════════════════════════════════════════════════════════════

// GetOverallProgressQuery requests the whole-program progress.
type GetOverallProgressQuery struct {
	SpecializationID string
}

// Validate validates the query.
func (q GetOverallProgressQuery) Validate() error {
	if q.SpecializationID == "" {
		return errors.New("get_overall_progress: specialization_id is required")
	}
	return nil
}

// OverallProgressView is the whole-program progress.
type OverallProgressView struct {
	SpecializationID string
	Name             string
	SmkVersion       string

	// Stage is the coarse progression state with its fixed percentage.
	Stage        string
	StagePercent int

	// WeightedPercent averages the per-module weighted progress.
	WeightedPercent float64

	Modules []ModuleProgressView

	CalculatedEnd string
}

// GetOverallProgressHandler handles the GetOverallProgressQuery.
type GetOverallProgressHandler struct {
	specRepo specialization.Repository
	modules  *GetModuleProgressHandler
}

// NewGetOverallProgressHandler creates a new GetOverallProgressHandler.
func NewGetOverallProgressHandler(specRepo specialization.Repository, modules *GetModuleProgressHandler) *GetOverallProgressHandler {
	return &GetOverallProgressHandler{specRepo: specRepo, modules: modules}
}

// Handle executes the query.
func (h *GetOverallProgressHandler) Handle(ctx context.Context, q GetOverallProgressQuery) (*OverallProgressView, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	spec, err := h.specRepo.FindByID(ctx, shared.SpecializationID(q.SpecializationID))
	if err != nil {
		return nil, fmt.Errorf("get_overall_progress: failed to load specialization: %w", err)
	}

	view := &OverallProgressView{
		SpecializationID: spec.ID.String(),
		Name:             spec.Name,
		SmkVersion:       spec.SmkVersion.String(),
		Stage:            string(specialization.CurrentStage(spec)),
		CalculatedEnd:    spec.CalculatedEnd.Format("2006-01-02"),
	}
	view.StagePercent = specialization.CurrentStage(spec).Percentage()

	sum := 0.0
	for _, m := range spec.Modules {
		mv, merr := h.modules.Handle(ctx, GetModuleProgressQuery{
			SpecializationID: q.SpecializationID,
			ModuleID:         m.ID.String(),
		})
		if merr != nil {
			return nil, merr
		}
		view.Modules = append(view.Modules, *mv)
		sum += mv.OverallPercent
	}
	if len(view.Modules) > 0 {
		view.WeightedPercent = sum / float64(len(view.Modules))
	}

	return view, nil
}
