// Package internship contains the internship entity: a placement at an
// institution within a module, the anchor that medical shifts attach to.
package internship

import (
	"time"

	"github.com/sledzspecke/smk-progress-hub/internal/domain/shared"
)

// Internship is one curriculum placement. Shifts must fall inside its date
// window, and an approved internship is frozen for local edits.
type Internship struct {
	ID               shared.InternshipID
	SpecializationID shared.SpecializationID
	ModuleID         shared.ModuleID

	// Year is the Old-SMK training-year bucket, YearUnassigned under New SMK.
	Year shared.TrainingYear

	Name        string
	Institution string
	Department  string
	Dates       shared.DateRange

	Completed  bool
	SyncStatus shared.SyncStatus

	CreatedAt time.Time
	UpdatedAt time.Time
}

// New creates an internship placement.
func New(specID shared.SpecializationID, moduleID shared.ModuleID, name, institution string, dates shared.DateRange) (*Internship, error) {
	if specID.IsEmpty() {
		return nil, shared.NewDomainError("internship", "New", shared.ErrEmptyValue, "specialization id is required")
	}
	if name == "" {
		return nil, shared.NewDomainError("internship", "New", shared.ErrEmptyValue, "internship name is required")
	}
	if !dates.IsValid() {
		return nil, shared.NewDomainError("internship", "New", shared.ErrInvalidInput, "internship date range is invalid")
	}

	now := time.Now()
	return &Internship{
		ID:               shared.NewInternshipID(),
		SpecializationID: specID,
		ModuleID:         moduleID,
		Name:             name,
		Institution:      institution,
		Dates:            dates,
		SyncStatus:       shared.SyncNotSynced,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// IsApproved reports whether the registry has approved the internship.
func (i *Internship) IsApproved() bool {
	return i.SyncStatus == shared.SyncApproved
}

// ContainsDate checks whether a date falls inside the internship window.
func (i *Internship) ContainsDate(t time.Time) bool {
	return i.Dates.Contains(t)
}

// MarkCompleted records the placement as finished.
func (i *Internship) MarkCompleted() error {
	if !i.SyncStatus.IsMutable() {
		return shared.NewDomainError("internship", "MarkCompleted", shared.ErrAlreadyApproved,
			"approved internship cannot be modified")
	}
	i.Completed = true
	i.touch()
	return nil
}

// TransitionSync moves the sync state machine.
func (i *Internship) TransitionSync(next shared.SyncStatus) error {
	if !i.SyncStatus.CanTransitionTo(next) {
		return shared.NewDomainError("internship", "TransitionSync", shared.ErrStateTransition,
			"cannot move from "+i.SyncStatus.String()+" to "+next.String())
	}
	i.SyncStatus = next
	i.touch()
	return nil
}

// MarkModified flags local edits for the next registry sync. Approved
// internships reject edits.
func (i *Internship) MarkModified() error {
	if !i.SyncStatus.IsMutable() {
		return shared.NewDomainError("internship", "MarkModified", shared.ErrAlreadyApproved,
			"approved internship cannot be modified")
	}
	if i.SyncStatus == shared.SyncSynced {
		return i.TransitionSync(shared.SyncModified)
	}
	i.touch()
	return nil
}

func (i *Internship) touch() {
	i.UpdatedAt = time.Now()
}
