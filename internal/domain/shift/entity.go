// Package shift contains the medical shift entity, its validation rules
// (internship containment, weekly cap, monthly minimum) and shift statistics.
package shift

import (
	"time"

	"github.com/sledzspecke/smk-progress-hub/internal/domain/shared"
)

// MedicalShift is one duty entry. The registry records a date and a duration,
// not clock times; the duration may arrive denormalized ("7h 75min") and is
// stored as total minutes.
type MedicalShift struct {
	ID               shared.ShiftID
	InternshipID     shared.InternshipID
	SpecializationID shared.SpecializationID
	UserID           shared.UserID

	Date     time.Time
	Duration shared.ShiftDuration
	Location string

	// Year is the Old-SMK bucket; ModuleID the New-SMK bucket. Resolution
	// stamps whichever the program uses.
	Year     shared.TrainingYear
	ModuleID shared.ModuleID

	SyncStatus shared.SyncStatus
	ApprovedAt time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// New creates a medical shift.
func New(internshipID shared.InternshipID, specID shared.SpecializationID, userID shared.UserID, date time.Time, duration shared.ShiftDuration, location string) (*MedicalShift, error) {
	if internshipID.IsEmpty() {
		return nil, shared.NewDomainError("shift", "New", shared.ErrEmptyValue, "internship id is required")
	}
	if date.IsZero() {
		return nil, shared.NewDomainError("shift", "New", shared.ErrEmptyValue, "shift date is required")
	}
	if duration.IsZero() {
		return nil, shared.NewDomainError("shift", "New", shared.ErrEmptyValue, "shift duration is required")
	}

	now := time.Now()
	return &MedicalShift{
		ID:               shared.NewShiftID(),
		InternshipID:     internshipID,
		SpecializationID: specID,
		UserID:           userID,
		Date:             shared.DateOnly(date),
		Duration:         duration,
		Location:         location,
		SyncStatus:       shared.SyncNotSynced,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// IsApproved reports whether the registry has approved the shift.
func (s *MedicalShift) IsApproved() bool {
	return s.SyncStatus == shared.SyncApproved
}

// UpdateDuration changes the duration of an unapproved shift.
func (s *MedicalShift) UpdateDuration(d shared.ShiftDuration) error {
	if !s.SyncStatus.IsMutable() {
		return shared.ErrShiftApproved
	}
	s.Duration = d
	return s.markModified()
}

// TransitionSync moves the sync state machine.
func (s *MedicalShift) TransitionSync(next shared.SyncStatus) error {
	if !s.SyncStatus.CanTransitionTo(next) {
		return shared.NewDomainError("shift", "TransitionSync", shared.ErrStateTransition,
			"cannot move from "+s.SyncStatus.String()+" to "+next.String())
	}
	s.SyncStatus = next
	if next == shared.SyncApproved {
		s.ApprovedAt = time.Now()
	}
	s.UpdatedAt = time.Now()
	return nil
}

func (s *MedicalShift) markModified() error {
	if s.SyncStatus == shared.SyncSynced {
		return s.TransitionSync(shared.SyncModified)
	}
	s.UpdatedAt = time.Now()
	return nil
}
