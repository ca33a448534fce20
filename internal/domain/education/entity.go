// Package education contains courses, absences, and additional self-education
// days, with the yearly cap and end-date extension rules that govern them.
package education

import (
	"time"

	"github.com/sledzspecke/smk-progress-hub/internal/domain/shared"
)

// ═══════════════════════════════════════════════════════════════════════════
// Course
// ═══════════════════════════════════════════════════════════════════════════

// Course is one curriculum training course attendance.
type Course struct {
	ID               shared.CourseID
	SpecializationID shared.SpecializationID
	ModuleID         shared.ModuleID
	Year             shared.TrainingYear

	Name        string
	Number      string
	Institution string
	Date        time.Time

	// CertificateNumber is set once the course is passed.
	CertificateNumber string
	Completed         bool

	SyncStatus shared.SyncStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewCourse creates a course attendance record.
func NewCourse(specID shared.SpecializationID, moduleID shared.ModuleID, name string, date time.Time) (*Course, error) {
	if specID.IsEmpty() {
		return nil, shared.NewDomainError("education", "NewCourse", shared.ErrEmptyValue, "specialization id is required")
	}
	if name == "" {
		return nil, shared.NewDomainError("education", "NewCourse", shared.ErrEmptyValue, "course name is required")
	}
	if date.IsZero() {
		return nil, shared.NewDomainError("education", "NewCourse", shared.ErrEmptyValue, "course date is required")
	}

	now := time.Now()
	return &Course{
		ID:               shared.NewCourseID(),
		SpecializationID: specID,
		ModuleID:         moduleID,
		Name:             name,
		Date:             shared.DateOnly(date),
		SyncStatus:       shared.SyncNotSynced,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// MarkCompleted records a passed course with its certificate.
func (c *Course) MarkCompleted(certificateNumber string) error {
	if !c.SyncStatus.IsMutable() {
		return shared.NewDomainError("education", "MarkCompleted", shared.ErrAlreadyApproved,
			"approved course cannot be modified")
	}
	c.Completed = true
	c.CertificateNumber = certificateNumber
	c.UpdatedAt = time.Now()
	return nil
}

// ═══════════════════════════════════════════════════════════════════════════
// Absence
// ═══════════════════════════════════════════════════════════════════════════

// AbsenceType classifies an absence for the end-date calculation.
type AbsenceType string

const (
	AbsenceSickLeave          AbsenceType = "sick_leave"
	AbsenceMaternityLeave     AbsenceType = "maternity_leave"
	AbsenceUnpaidLeave        AbsenceType = "unpaid_leave"
	AbsenceVacation           AbsenceType = "vacation"
	AbsenceSelfEducationLeave AbsenceType = "self_education_leave"
)

// ExtendsTraining reports whether the absence type pushes the calculated
// training end date. Vacation and self-education leave are part of the plan;
// the rest suspend it.
func (t AbsenceType) ExtendsTraining() bool {
	switch t {
	case AbsenceSickLeave, AbsenceMaternityLeave, AbsenceUnpaidLeave:
		return true
	default:
		return false
	}
}

// IsValid checks the type is known.
func (t AbsenceType) IsValid() bool {
	switch t {
	case AbsenceSickLeave, AbsenceMaternityLeave, AbsenceUnpaidLeave, AbsenceVacation, AbsenceSelfEducationLeave:
		return true
	default:
		return false
	}
}

// Absence is one recorded absence interval.
type Absence struct {
	ID               shared.AbsenceID
	SpecializationID shared.SpecializationID
	Type             AbsenceType
	Dates            shared.DateRange
	Description      string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewAbsence creates an absence record.
func NewAbsence(specID shared.SpecializationID, absenceType AbsenceType, dates shared.DateRange, description string) (*Absence, error) {
	if specID.IsEmpty() {
		return nil, shared.NewDomainError("education", "NewAbsence", shared.ErrEmptyValue, "specialization id is required")
	}
	if !absenceType.IsValid() {
		return nil, shared.NewDomainError("education", "NewAbsence", shared.ErrInvalidInput,
			"unknown absence type: "+string(absenceType))
	}
	if !dates.IsValid() {
		return nil, shared.NewDomainError("education", "NewAbsence", shared.ErrInvalidInput, "absence date range is invalid")
	}

	now := time.Now()
	return &Absence{
		ID:               shared.NewAbsenceID(),
		SpecializationID: specID,
		Type:             absenceType,
		Dates:            dates,
		Description:      description,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// ExtensionDays is the number of days the absence adds to the calculated end
// date, zero for non-extending types.
func (a *Absence) ExtensionDays() int {
	if !a.Type.ExtendsTraining() {
		return 0
	}
	return a.Dates.Days()
}

// ═══════════════════════════════════════════════════════════════════════════
// Additional Self-Education Days
// ═══════════════════════════════════════════════════════════════════════════

// SelfEducationDays is one grant of additional self-education days: a leave
// window attached to the internship it interrupts, drawn from the yearly
// pool of a module.
type SelfEducationDays struct {
	ID               shared.SelfEducationID
	SpecializationID shared.SpecializationID
	ModuleID         shared.ModuleID
	InternshipID     shared.InternshipID

	// Dates is the leave window. Year and Days derive from it: the pool year
	// is the calendar year the leave starts in, the day count is the
	// inclusive length of the window.
	Dates shared.DateRange
	Year  int
	Days  int

	Purpose   string
	EventName string

	SyncStatus shared.SyncStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewSelfEducationDays creates a self-education days entry.
func NewSelfEducationDays(specID shared.SpecializationID, moduleID shared.ModuleID, internshipID shared.InternshipID, dates shared.DateRange, purpose string) (*SelfEducationDays, error) {
	if specID.IsEmpty() {
		return nil, shared.NewDomainError("education", "NewSelfEducationDays", shared.ErrEmptyValue,
			"specialization id is required")
	}
	if moduleID.IsEmpty() {
		return nil, shared.NewDomainError("education", "NewSelfEducationDays", shared.ErrEmptyValue,
			"module id is required")
	}
	if internshipID.IsEmpty() {
		return nil, shared.NewDomainError("education", "NewSelfEducationDays", shared.ErrEmptyValue,
			"internship id is required")
	}
	if !dates.IsValid() {
		return nil, shared.NewDomainError("education", "NewSelfEducationDays", shared.ErrInvalidInput,
			"leave date range is invalid")
	}
	year := dates.Start.Year()
	if year < 2000 || year > 2100 {
		return nil, shared.NewDomainError("education", "NewSelfEducationDays", shared.ErrValueOutOfRange,
			"leave must start in a plausible calendar year")
	}

	now := time.Now()
	return &SelfEducationDays{
		ID:               shared.NewSelfEducationID(),
		SpecializationID: specID,
		ModuleID:         moduleID,
		InternshipID:     internshipID,
		Dates:            dates,
		Year:             year,
		Days:             dates.Days(),
		Purpose:          purpose,
		SyncStatus:       shared.SyncNotSynced,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// IsApproved reports whether the registry has approved the entry.
func (s *SelfEducationDays) IsApproved() bool {
	return s.SyncStatus == shared.SyncApproved
}

// UpdateDates moves the leave window of an unapproved entry. The derived
// pool year and day count follow the new window.
func (s *SelfEducationDays) UpdateDates(dates shared.DateRange) error {
	if !s.SyncStatus.IsMutable() {
		return shared.ErrSelfEducationApproved
	}
	if !dates.IsValid() {
		return shared.NewDomainError("education", "UpdateDates", shared.ErrInvalidInput, "leave date range is invalid")
	}
	s.Dates = dates
	s.Year = dates.Start.Year()
	s.Days = dates.Days()
	s.UpdatedAt = time.Now()
	return nil
}

// TransitionSync moves the sync state machine.
func (s *SelfEducationDays) TransitionSync(next shared.SyncStatus) error {
	if !s.SyncStatus.CanTransitionTo(next) {
		return shared.NewDomainError("education", "TransitionSync", shared.ErrStateTransition,
			"cannot move from "+s.SyncStatus.String()+" to "+next.String())
	}
	s.SyncStatus = next
	s.UpdatedAt = time.Now()
	return nil
}
