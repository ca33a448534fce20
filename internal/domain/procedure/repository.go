package procedure

import (
	"context"

	"github.com/sledzspecke/smk-progress-hub/internal/domain/shared"
)

// RequirementRepository provides access to curriculum procedure requirements.
type RequirementRepository interface {
	// FindByID retrieves a requirement.
	FindByID(ctx context.Context, id shared.RequirementID) (*Requirement, error)

	// FindByCode retrieves the requirement matching a procedure code within
	// a module.
	FindByCode(ctx context.Context, moduleID shared.ModuleID, code string) (*Requirement, error)

	// FindByModule retrieves all requirements of a module.
	FindByModule(ctx context.Context, moduleID shared.ModuleID) ([]*Requirement, error)

	// CreateBatch persists the requirements instantiated from a template.
	CreateBatch(ctx context.Context, reqs []*Requirement) error
}

// RealizationRepository provides access to performed procedures.
type RealizationRepository interface {
	// FindByID retrieves a realization.
	FindByID(ctx context.Context, id shared.RealizationID) (*Realization, error)

	// FindBySpecialization retrieves all realizations of a specialization.
	FindBySpecialization(ctx context.Context, specID shared.SpecializationID) ([]*Realization, error)

	// FindByCode retrieves the realizations of one procedure code.
	FindByCode(ctx context.Context, specID shared.SpecializationID, code string) ([]*Realization, error)

	// FindByModule retrieves the realizations bucketed under a module.
	FindByModule(ctx context.Context, moduleID shared.ModuleID) ([]*Realization, error)

	// CountByCode counts realizations of one code, any role.
	CountByCode(ctx context.Context, specID shared.SpecializationID, code string) (int, error)

	// FindPendingSync retrieves realizations awaiting a registry push.
	FindPendingSync(ctx context.Context, specID shared.SpecializationID) ([]*Realization, error)

	// Save persists the realization.
	Save(ctx context.Context, r *Realization) error

	// Create persists a new realization.
	Create(ctx context.Context, r *Realization) error
}
