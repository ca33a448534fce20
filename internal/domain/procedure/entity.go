// Package procedure contains procedure requirements (curriculum lines) and
// realizations (performed procedures), with the validation and counting rules
// that connect them.
package procedure

import (
	"time"

	"github.com/sledzspecke/smk-progress-hub/internal/domain/shared"
	"github.com/sledzspecke/smk-progress-hub/internal/domain/specialization"
)

// ═══════════════════════════════════════════════════════════════════════════
// Requirement
// ═══════════════════════════════════════════════════════════════════════════

// Requirement is one procedure line of the curriculum: a code with required
// counts per role. Requirements come from the curriculum template and are
// immutable at runtime.
type Requirement struct {
	ID       shared.RequirementID
	ModuleID shared.ModuleID

	Code string
	Name string

	RequiredOperator  int
	RequiredAssistant int

	// Year pins the requirement to an Old-SMK training year; 0 means any.
	Year shared.TrainingYear

	// DailyLimit caps realizations per calendar day; 0 means unlimited.
	DailyLimit int

	AllowsSimulation       bool
	SimulationLimitPercent int
}

// RequirementFromTemplate instantiates a requirement for a module.
func RequirementFromTemplate(moduleID shared.ModuleID, t specialization.ProcedureRequirementTemplate) *Requirement {
	return &Requirement{
		ID:                     shared.NewRequirementID(),
		ModuleID:               moduleID,
		Code:                   t.Code,
		Name:                   t.Name,
		RequiredOperator:       t.RequiredOperator,
		RequiredAssistant:      t.RequiredAssistant,
		Year:                   shared.TrainingYear(t.Year),
		DailyLimit:             t.DailyLimit,
		AllowsSimulation:       t.AllowsSimulation,
		SimulationLimitPercent: t.SimulationLimitPercent,
	}
}

// RequiredTotal is the combined count across both roles.
func (r *Requirement) RequiredTotal() int {
	return r.RequiredOperator + r.RequiredAssistant
}

// RequiredFor returns the required count for one role.
func (r *Requirement) RequiredFor(role shared.ProcedureRole) int {
	if role == shared.RoleOperator {
		return r.RequiredOperator
	}
	return r.RequiredAssistant
}

// ═══════════════════════════════════════════════════════════════════════════
// Realization
// ═══════════════════════════════════════════════════════════════════════════

// Realization is one performed procedure, attached to a requirement by code.
type Realization struct {
	ID               shared.RealizationID
	RequirementID    shared.RequirementID
	SpecializationID shared.SpecializationID
	UserID           shared.UserID

	Code string
	Role shared.ProcedureRole
	Date time.Time

	// Simulated marks realizations performed on a simulator; the curriculum
	// caps their share per requirement.
	Simulated bool
	Location  string

	// Year and ModuleID carry the resolved event bucket.
	Year     shared.TrainingYear
	ModuleID shared.ModuleID

	// DuplicateOf flags an audit duplicate; the entry still counts until a
	// reviewer resolves it.
	DuplicateOf shared.RealizationID

	SyncStatus shared.SyncStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewRealization creates a performed-procedure record.
func NewRealization(req *Requirement, specID shared.SpecializationID, userID shared.UserID, role shared.ProcedureRole, date time.Time, simulated bool, location string) (*Realization, error) {
	if req == nil {
		return nil, shared.ErrRequirementNotFound
	}
	if !role.IsValid() {
		return nil, shared.NewDomainError("procedure", "NewRealization", shared.ErrInvalidInput,
			"unknown procedure role: "+role.String())
	}
	if date.IsZero() {
		return nil, shared.NewDomainError("procedure", "NewRealization", shared.ErrEmptyValue,
			"procedure date is required")
	}

	now := time.Now()
	return &Realization{
		ID:               shared.NewRealizationID(),
		RequirementID:    req.ID,
		SpecializationID: specID,
		UserID:           userID,
		Code:             req.Code,
		Role:             role,
		Date:             shared.DateOnly(date),
		Simulated:        simulated,
		Location:         location,
		SyncStatus:       shared.SyncNotSynced,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// FlagDuplicate marks the realization as a suspected duplicate of another.
func (r *Realization) FlagDuplicate(original shared.RealizationID) {
	r.DuplicateOf = original
	r.UpdatedAt = time.Now()
}

// IsApproved reports whether the registry has approved the realization.
func (r *Realization) IsApproved() bool {
	return r.SyncStatus == shared.SyncApproved
}

// TransitionSync moves the sync state machine.
func (r *Realization) TransitionSync(next shared.SyncStatus) error {
	if !r.SyncStatus.CanTransitionTo(next) {
		return shared.NewDomainError("procedure", "TransitionSync", shared.ErrStateTransition,
			"cannot move from "+r.SyncStatus.String()+" to "+next.String())
	}
	r.SyncStatus = next
	r.UpdatedAt = time.Now()
	return nil
}
