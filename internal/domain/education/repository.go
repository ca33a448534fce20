package education

import (
	"context"

	"github.com/sledzspecke/smk-progress-hub/internal/domain/shared"
)

// CourseRepository provides access to courses.
type CourseRepository interface {
	// FindByID retrieves a course.
	FindByID(ctx context.Context, id shared.CourseID) (*Course, error)

	// FindBySpecialization retrieves all courses of a specialization.
	FindBySpecialization(ctx context.Context, specID shared.SpecializationID) ([]*Course, error)

	// CountCompleted counts passed courses for a module.
	CountCompleted(ctx context.Context, moduleID shared.ModuleID) (int, error)

	// Save persists the course.
	Save(ctx context.Context, c *Course) error

	// Create persists a new course.
	Create(ctx context.Context, c *Course) error
}

// AbsenceRepository provides access to absences.
type AbsenceRepository interface {
	// FindByID retrieves an absence.
	FindByID(ctx context.Context, id shared.AbsenceID) (*Absence, error)

	// FindBySpecialization retrieves all absences of a specialization.
	FindBySpecialization(ctx context.Context, specID shared.SpecializationID) ([]*Absence, error)

	// Create persists a new absence.
	Create(ctx context.Context, a *Absence) error
}

// SelfEducationRepository provides access to self-education day entries.
type SelfEducationRepository interface {
	// FindByID retrieves an entry.
	FindByID(ctx context.Context, id shared.SelfEducationID) (*SelfEducationDays, error)

	// FindByModule retrieves all entries of a module.
	FindByModule(ctx context.Context, moduleID shared.ModuleID) ([]*SelfEducationDays, error)

	// SumDays sums the days drawn from a module's pool in one calendar year.
	SumDays(ctx context.Context, moduleID shared.ModuleID, year int) (int, error)

	// Save persists the entry.
	Save(ctx context.Context, e *SelfEducationDays) error

	// Create persists a new entry.
	Create(ctx context.Context, e *SelfEducationDays) error
}
