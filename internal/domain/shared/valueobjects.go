// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ═══════════════════════════════════════════════════════════════════════════
// ID Value Objects
// ═══════════════════════════════════════════════════════════════════════════

// SpecializationID identifies a specialization aggregate (UUID format).
type SpecializationID string

// ModuleID identifies a training module.
type ModuleID string

// InternshipID identifies an internship.
type InternshipID string

// ShiftID identifies a medical shift.
type ShiftID string

// RequirementID identifies a curriculum procedure requirement.
type RequirementID string

// RealizationID identifies a single performed procedure.
type RealizationID string

// CourseID identifies a training course.
type CourseID string

// AbsenceID identifies an absence record.
type AbsenceID string

// SelfEducationID identifies an additional self-education days entry.
type SelfEducationID string

// UserID identifies the physician owning a specialization.
type UserID string

// NewSpecializationID generates a new random SpecializationID.
func NewSpecializationID() SpecializationID { return SpecializationID(uuid.NewString()) }

// NewModuleID generates a new random ModuleID.
func NewModuleID() ModuleID { return ModuleID(uuid.NewString()) }

// NewInternshipID generates a new random InternshipID.
func NewInternshipID() InternshipID { return InternshipID(uuid.NewString()) }

// NewShiftID generates a new random ShiftID.
func NewShiftID() ShiftID { return ShiftID(uuid.NewString()) }

// NewCourseID generates a new random CourseID.
func NewCourseID() CourseID { return CourseID(uuid.NewString()) }

// NewAbsenceID generates a new random AbsenceID.
func NewAbsenceID() AbsenceID { return AbsenceID(uuid.NewString()) }

// NewSelfEducationID generates a new random SelfEducationID.
func NewSelfEducationID() SelfEducationID { return SelfEducationID(uuid.NewString()) }

// NewRequirementID generates a new random RequirementID.
func NewRequirementID() RequirementID { return RequirementID(uuid.NewString()) }

// NewRealizationID generates a new random RealizationID.
func NewRealizationID() RealizationID { return RealizationID(uuid.NewString()) }

func (id SpecializationID) String() string { return string(id) }
func (id ModuleID) String() string         { return string(id) }
func (id InternshipID) String() string     { return string(id) }
func (id ShiftID) String() string          { return string(id) }
func (id RequirementID) String() string    { return string(id) }
func (id RealizationID) String() string    { return string(id) }
func (id CourseID) String() string         { return string(id) }
func (id AbsenceID) String() string        { return string(id) }
func (id SelfEducationID) String() string  { return string(id) }
func (id UserID) String() string           { return string(id) }

func (id SpecializationID) IsEmpty() bool { return id == "" }
func (id ModuleID) IsEmpty() bool         { return id == "" }
func (id InternshipID) IsEmpty() bool     { return id == "" }

// ParseID validates that a raw string is a well-formed UUID and returns it.
// Used by the persistence layer when hydrating typed ids.
func ParseID(raw string) (string, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", NewDomainError("shared", "ParseID", ErrInvalidID, "malformed id: "+raw)
	}
	return parsed.String(), nil
}

// ═══════════════════════════════════════════════════════════════════════════
// Program Version (SMK variant)
// ═══════════════════════════════════════════════════════════════════════════

// SmkVersion identifies the structural variant of the SMK registry a
// specialization is tracked under. The two variants bucket events differently:
// Old by training year, New by module.
type SmkVersion string

const (
	SmkOld SmkVersion = "old"
	SmkNew SmkVersion = "new"
)

// IsValid checks if the version is one of the known variants.
func (v SmkVersion) IsValid() bool {
	return v == SmkOld || v == SmkNew
}

// IsModular reports whether events are bucketed by module rather than year.
func (v SmkVersion) IsModular() bool {
	return v == SmkNew
}

// String returns the string representation.
func (v SmkVersion) String() string { return string(v) }

// ParseSmkVersion parses a raw string into an SmkVersion.
func ParseSmkVersion(raw string) (SmkVersion, error) {
	v := SmkVersion(strings.ToLower(strings.TrimSpace(raw)))
	if !v.IsValid() {
		return "", NewDomainError("shared", "ParseSmkVersion", ErrInvalidInput,
			"unknown SMK version: "+raw)
	}
	return v, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// Module Kind & State
// ═══════════════════════════════════════════════════════════════════════════

// ModuleKind is the curriculum phase a module represents.
type ModuleKind string

const (
	ModuleBasic      ModuleKind = "basic"
	ModuleSpecialist ModuleKind = "specialist"
)

// IsValid checks if the kind is known.
func (k ModuleKind) IsValid() bool {
	return k == ModuleBasic || k == ModuleSpecialist
}

func (k ModuleKind) String() string { return string(k) }

// ModuleState is the lifecycle state of a module.
// Draft -> InProgress -> Completed, terminal once Completed.
type ModuleState string

const (
	ModuleDraft      ModuleState = "draft"
	ModuleInProgress ModuleState = "in_progress"
	ModuleCompleted  ModuleState = "completed"
)

// CanTransitionTo reports whether the state machine allows moving to next.
func (s ModuleState) CanTransitionTo(next ModuleState) bool {
	switch s {
	case ModuleDraft:
		return next == ModuleInProgress
	case ModuleInProgress:
		return next == ModuleCompleted
	default:
		return false
	}
}

func (s ModuleState) String() string { return string(s) }

// ═══════════════════════════════════════════════════════════════════════════
// Procedure Role
// ═══════════════════════════════════════════════════════════════════════════

// ProcedureRole is the capacity in which a procedure was performed.
// SMK paperwork calls these code A (operator) and code B (assistant);
// requirements track each role's count separately.
type ProcedureRole string

const (
	RoleOperator  ProcedureRole = "operator"
	RoleAssistant ProcedureRole = "assistant"
)

// IsValid checks if the role is known.
func (r ProcedureRole) IsValid() bool {
	return r == RoleOperator || r == RoleAssistant
}

func (r ProcedureRole) String() string { return string(r) }

// ParseProcedureRole parses a raw string into a ProcedureRole.
// Accepts the SMK single-letter codes as aliases.
func ParseProcedureRole(raw string) (ProcedureRole, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "operator", "a":
		return RoleOperator, nil
	case "assistant", "b":
		return RoleAssistant, nil
	default:
		return "", NewDomainError("shared", "ParseProcedureRole", ErrInvalidInput,
			"unknown procedure role: "+raw)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Sync State (SMK registry)
// ═══════════════════════════════════════════════════════════════════════════

// SyncStatus tracks an event record's relationship with the government SMK
// registry. Approved records are frozen locally.
type SyncStatus string

const (
	SyncNotSynced SyncStatus = "not_synced"
	SyncModified  SyncStatus = "modified"
	SyncSynced    SyncStatus = "synced"
	SyncApproved  SyncStatus = "approved"
)

// CanTransitionTo reports whether the sync state machine allows the move.
func (s SyncStatus) CanTransitionTo(next SyncStatus) bool {
	switch s {
	case SyncNotSynced:
		return next == SyncSynced || next == SyncModified
	case SyncModified:
		return next == SyncSynced
	case SyncSynced:
		return next == SyncApproved || next == SyncModified
	default:
		// Approved is terminal.
		return false
	}
}

// IsMutable reports whether the local record may still be edited.
func (s SyncStatus) IsMutable() bool {
	return s != SyncApproved
}

func (s SyncStatus) String() string { return string(s) }

// ═══════════════════════════════════════════════════════════════════════════
// Training Year
// ═══════════════════════════════════════════════════════════════════════════

// TrainingYear is the Old-SMK bucketing unit: 1-based index of the year of
// training, derived from elapsed time since the specialization start.
// Year 0 means "unassigned" and is accepted wherever the registry accepts it.
type TrainingYear int

const (
	// YearUnassigned marks entries not yet pinned to a training year.
	YearUnassigned TrainingYear = 0

	// MaxTrainingYears is the longest recognized specialization duration.
	MaxTrainingYears = 6
)

// IsValid checks the year is within the recognized range.
func (y TrainingYear) IsValid() bool {
	return y >= YearUnassigned && y <= MaxTrainingYears
}

// IsUnassigned reports whether the entry is not pinned to a year.
func (y TrainingYear) IsUnassigned() bool { return y == YearUnassigned }

// Int returns the underlying int value.
func (y TrainingYear) Int() int { return int(y) }

// ═══════════════════════════════════════════════════════════════════════════
// DateRange Value Object
// ═══════════════════════════════════════════════════════════════════════════

// DateRange is an inclusive calendar-date interval. Times are truncated to
// midnight UTC so that containment is a pure date comparison.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange creates a DateRange with validation.
func NewDateRange(start, end time.Time) (DateRange, error) {
	r := DateRange{Start: DateOnly(start), End: DateOnly(end)}
	if !r.IsValid() {
		return DateRange{}, NewDomainError("shared", "NewDateRange", ErrInvalidInput,
			"start date must not be after end date")
	}
	return r, nil
}

// IsValid checks the range has both ends and is ordered.
func (r DateRange) IsValid() bool {
	return !r.Start.IsZero() && !r.End.IsZero() && !r.Start.After(r.End)
}

// IsZero reports whether the range is unset.
func (r DateRange) IsZero() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

// Contains checks if a date falls within the range (inclusive).
func (r DateRange) Contains(t time.Time) bool {
	d := DateOnly(t)
	return !d.Before(r.Start) && !d.After(r.End)
}

// Overlaps checks if two ranges share at least one day.
func (r DateRange) Overlaps(other DateRange) bool {
	return !r.Start.After(other.End) && !other.Start.After(r.End)
}

// Days returns the number of calendar days covered, inclusive of both ends.
func (r DateRange) Days() int {
	if !r.IsValid() {
		return 0
	}
	return int(r.End.Sub(r.Start).Hours()/24) + 1
}

// ExtendEnd returns a copy with the end pushed out by the given days.
func (r DateRange) ExtendEnd(days int) DateRange {
	return DateRange{Start: r.Start, End: r.End.AddDate(0, 0, days)}
}

// String renders the range as "2024-01-01..2024-06-30".
func (r DateRange) String() string {
	return fmt.Sprintf("%s..%s", r.Start.Format("2006-01-02"), r.End.Format("2006-01-02"))
}

// DateOnly truncates a time to midnight UTC.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ═══════════════════════════════════════════════════════════════════════════
// ShiftDuration Value Object
// ═══════════════════════════════════════════════════════════════════════════

// MinShiftMinutes is the shortest duration the registry accepts for a shift.
const MinShiftMinutes = 60

// ShiftDuration is the length of a medical shift, stored as total minutes.
// The registry allows a minutes component above 59 on input ("7h 75min"),
// so the hours/minutes split is preserved only for display and normalized
// arithmetic works on total minutes.
type ShiftDuration struct {
	totalMinutes int
}

// NewShiftDuration creates a duration from an hours/minutes pair.
func NewShiftDuration(hours, minutes int) (ShiftDuration, error) {
	if hours < 0 || minutes < 0 {
		return ShiftDuration{}, NewDomainError("shared", "NewShiftDuration", ErrNegativeValue,
			"shift duration components cannot be negative")
	}
	total := hours*60 + minutes
	if total < MinShiftMinutes {
		return ShiftDuration{}, NewDomainError("shared", "NewShiftDuration", ErrValueOutOfRange,
			fmt.Sprintf("minimum shift duration is %d minutes, got %d", MinShiftMinutes, total))
	}
	return ShiftDuration{totalMinutes: total}, nil
}

// DurationFromMinutes creates a duration from total minutes.
func DurationFromMinutes(totalMinutes int) (ShiftDuration, error) {
	if totalMinutes < MinShiftMinutes {
		return ShiftDuration{}, NewDomainError("shared", "DurationFromMinutes", ErrValueOutOfRange,
			fmt.Sprintf("minimum shift duration is %d minutes, got %d", MinShiftMinutes, totalMinutes))
	}
	return ShiftDuration{totalMinutes: totalMinutes}, nil
}

// TotalMinutes returns the full duration in minutes.
func (d ShiftDuration) TotalMinutes() int { return d.totalMinutes }

// Hours returns the normalized hours component.
func (d ShiftDuration) Hours() int { return d.totalMinutes / 60 }

// Minutes returns the normalized minutes component (always < 60).
func (d ShiftDuration) Minutes() int { return d.totalMinutes % 60 }

// HoursFloat returns the duration as fractional hours.
func (d ShiftDuration) HoursFloat() float64 { return float64(d.totalMinutes) / 60.0 }

// Add returns the sum of two durations.
func (d ShiftDuration) Add(other ShiftDuration) ShiftDuration {
	return ShiftDuration{totalMinutes: d.totalMinutes + other.totalMinutes}
}

// IsZero reports whether the duration is unset.
func (d ShiftDuration) IsZero() bool { return d.totalMinutes == 0 }

// String renders the duration in registry export format (HH:MM).
func (d ShiftDuration) String() string {
	return fmt.Sprintf("%02d:%02d", d.Hours(), d.Minutes())
}

// DisplayFormat renders the duration as "7h 30min".
func (d ShiftDuration) DisplayFormat() string {
	return fmt.Sprintf("%dh %dmin", d.Hours(), d.Minutes())
}

// ═══════════════════════════════════════════════════════════════════════════
// YearMonth Value Object
// ═══════════════════════════════════════════════════════════════════════════

// YearMonth identifies a calendar month, the bucketing unit for monthly
// shift-hours statistics.
type YearMonth struct {
	Year  int
	Month time.Month
}

// YearMonthOf returns the YearMonth containing t.
func YearMonthOf(t time.Time) YearMonth {
	return YearMonth{Year: t.Year(), Month: t.Month()}
}

// Start returns the first instant of the month (UTC).
func (ym YearMonth) Start() time.Time {
	return time.Date(ym.Year, ym.Month, 1, 0, 0, 0, 0, time.UTC)
}

// End returns the last day of the month at midnight (UTC).
func (ym YearMonth) End() time.Time {
	return ym.Start().AddDate(0, 1, -1)
}

// Range returns the month as an inclusive DateRange.
func (ym YearMonth) Range() DateRange {
	return DateRange{Start: ym.Start(), End: ym.End()}
}

// Next returns the following month.
func (ym YearMonth) Next() YearMonth {
	return YearMonthOf(ym.Start().AddDate(0, 1, 0))
}

// Before reports whether ym precedes other.
func (ym YearMonth) Before(other YearMonth) bool {
	return ym.Year < other.Year || (ym.Year == other.Year && ym.Month < other.Month)
}

// String renders as "2024-06".
func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}

// ═══════════════════════════════════════════════════════════════════════════
// Percent Value Object
// ═══════════════════════════════════════════════════════════════════════════

// Percent is a completion ratio clamped to [0,1].
type Percent float64

// NewPercent builds a completion ratio from completed/required counts.
// A requirement of zero counts as fully complete to avoid division by zero.
func NewPercent(completed, required float64) Percent {
	if required <= 0 {
		return 1
	}
	p := Percent(completed / required)
	return p.Clamp()
}

// Clamp bounds the value to [0,1].
func (p Percent) Clamp() Percent {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// Float64 returns the underlying value.
func (p Percent) Float64() float64 { return float64(p) }

// AsPercentage returns the value scaled to 0-100.
func (p Percent) AsPercentage() float64 { return float64(p) * 100 }
