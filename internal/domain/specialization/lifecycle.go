package specialization

import (
	"fmt"
	"time"

	"github.com/sledzspecke/smk-progress-hub/internal/domain/shared"
)

// ═══════════════════════════════════════════════════════════════════════════
// Module Lifecycle
// Draft -> InProgress -> Completed. At most one module may be in progress per
// specialization, and completion is all-or-nothing against the requirements.
// ═══════════════════════════════════════════════════════════════════════════

// StartModule transitions a draft module to in progress.
//
// The start date anchors the module's window; the planned end defaults to the
// specialization's calculated end and is narrowed when the next module starts.
func (s *Specialization) StartModule(moduleID shared.ModuleID, start time.Time) (*Module, error) {
	m, err := s.Module(moduleID)
	if err != nil {
		return nil, err
	}

	if m.State == shared.ModuleInProgress {
		// Starting an already running module is a no-op.
		return m, nil
	}
	if !m.State.CanTransitionTo(shared.ModuleInProgress) {
		return nil, shared.WrapError("specialization", "StartModule", shared.ErrStateTransition,
			fmt.Sprintf("module %q cannot start from state %s", m.Name, m.State), shared.ErrModuleNotStartable)
	}
	if running := s.ModuleInProgress(); running != nil {
		return nil, shared.WrapError("specialization", "StartModule", shared.ErrStateViolation,
			fmt.Sprintf("module %q is already in progress", running.Name), shared.ErrInvalidModuleProgression)
	}
	if start.IsZero() {
		return nil, shared.ErrModuleNotStartable
	}

	d := shared.DateOnly(start)
	end := s.CalculatedEnd
	if end.Before(d) {
		end = d
	}
	dates, err := shared.NewDateRange(d, end)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	m.State = shared.ModuleInProgress
	m.Dates = dates
	m.StartedAt = now
	m.UpdatedAt = now
	s.CurrentModuleID = m.ID
	s.UpdatedAt = now

	return m, nil
}

// CompleteModule transitions an in-progress module to completed, verifying
// every requirement against the progress snapshot. Completing an already
// completed module is a no-op.
func (s *Specialization) CompleteModule(moduleID shared.ModuleID, snapshot ProgressSnapshot) (*Module, error) {
	m, err := s.Module(moduleID)
	if err != nil {
		return nil, err
	}

	if m.State == shared.ModuleCompleted {
		return m, nil
	}
	if !m.State.CanTransitionTo(shared.ModuleCompleted) {
		return nil, shared.NewDomainError("specialization", "CompleteModule", shared.ErrStateTransition,
			fmt.Sprintf("module %q cannot complete from state %s", m.Name, m.State))
	}

	if missing := unmetRequirements(m.Requirements, snapshot); len(missing) > 0 {
		return nil, shared.WrapError("specialization", "CompleteModule", shared.ErrStateViolation,
			fmt.Sprintf("module %q has unmet requirements: %v", m.Name, missing),
			shared.ErrModuleRequirementsUnmet)
	}

	now := time.Now()
	m.State = shared.ModuleCompleted
	m.CompletedAt = now
	m.UpdatedAt = now
	if !m.Dates.IsZero() {
		// Close the module window at the completion date.
		closed, rerr := shared.NewDateRange(m.Dates.Start, now)
		if rerr == nil {
			m.Dates = closed
		}
	}
	s.UpdatedAt = now

	return m, nil
}

// AdvanceCurrentModule moves the current-module pointer to the next draft
// module, if one exists. Returns the new current module or nil when the
// program has no further modules.
func (s *Specialization) AdvanceCurrentModule() *Module {
	for _, m := range s.Modules {
		if m.State == shared.ModuleDraft {
			s.CurrentModuleID = m.ID
			s.UpdatedAt = time.Now()
			return m
		}
	}
	return nil
}

// unmetRequirements lists the requirement categories the snapshot falls
// short on.
func unmetRequirements(req ModuleRequirements, snap ProgressSnapshot) []string {
	var missing []string
	if snap.CompletedInternships < req.Internships {
		missing = append(missing, fmt.Sprintf("internships %d/%d", snap.CompletedInternships, req.Internships))
	}
	if snap.CompletedCourses < req.Courses {
		missing = append(missing, fmt.Sprintf("courses %d/%d", snap.CompletedCourses, req.Courses))
	}
	if snap.ProceduresOperator < req.ProceduresOperator {
		missing = append(missing, fmt.Sprintf("procedures as operator %d/%d", snap.ProceduresOperator, req.ProceduresOperator))
	}
	if snap.ProceduresAssistant < req.ProceduresAssistant {
		missing = append(missing, fmt.Sprintf("procedures as assistant %d/%d", snap.ProceduresAssistant, req.ProceduresAssistant))
	}
	if req.ShiftHours > 0 && snap.ShiftMinutes < req.ShiftHours*60 {
		missing = append(missing, fmt.Sprintf("shift hours %d/%d", snap.ShiftMinutes/60, req.ShiftHours))
	}
	if req.SelfEducationDays > 0 && snap.SelfEducationDays < req.SelfEducationDays {
		missing = append(missing, fmt.Sprintf("self-education days %d/%d", snap.SelfEducationDays, req.SelfEducationDays))
	}
	return missing
}
