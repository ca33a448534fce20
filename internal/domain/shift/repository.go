package shift

import (
	"context"

	"github.com/sledzspecke/smk-progress-hub/internal/domain/shared"
)

// Repository provides access to medical shifts.
type Repository interface {
	// FindByID retrieves a shift.
	FindByID(ctx context.Context, id shared.ShiftID) (*MedicalShift, error)

	// FindBySpecialization retrieves all shifts of a specialization.
	FindBySpecialization(ctx context.Context, specID shared.SpecializationID) ([]*MedicalShift, error)

	// FindByInternship retrieves the shifts attached to an internship.
	FindByInternship(ctx context.Context, internshipID shared.InternshipID) ([]*MedicalShift, error)

	// FindByMonth retrieves the shifts of one calendar month.
	FindByMonth(ctx context.Context, specID shared.SpecializationID, month shared.YearMonth) ([]*MedicalShift, error)

	// SumMinutesByModule sums approved and pending shift minutes for a module.
	SumMinutesByModule(ctx context.Context, moduleID shared.ModuleID) (int, error)

	// FindPendingSync retrieves shifts awaiting a registry push.
	FindPendingSync(ctx context.Context, specID shared.SpecializationID) ([]*MedicalShift, error)

	// Save persists the shift.
	Save(ctx context.Context, s *MedicalShift) error

	// Create persists a new shift.
	Create(ctx context.Context, s *MedicalShift) error
}
