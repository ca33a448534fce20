package internship

import (
	"context"

	"github.com/sledzspecke/smk-progress-hub/internal/domain/shared"
)

// Repository provides access to internships.
type Repository interface {
	// FindByID retrieves an internship.
	FindByID(ctx context.Context, id shared.InternshipID) (*Internship, error)

	// FindBySpecialization retrieves all internships of a specialization.
	FindBySpecialization(ctx context.Context, specID shared.SpecializationID) ([]*Internship, error)

	// FindByModule retrieves the internships bucketed under a module.
	FindByModule(ctx context.Context, moduleID shared.ModuleID) ([]*Internship, error)

	// CountCompleted counts finished internships for a module.
	CountCompleted(ctx context.Context, moduleID shared.ModuleID) (int, error)

	// Save persists the internship.
	Save(ctx context.Context, i *Internship) error

	// Create persists a new internship.
	Create(ctx context.Context, i *Internship) error
}
