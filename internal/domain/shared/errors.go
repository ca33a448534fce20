// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages. This package has zero external dependencies
// beyond id generation.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")
	ErrInvalidEntity = errors.New("invalid entity")

	// Validation errors
	ErrValidation      = errors.New("validation error")
	ErrInvalidID       = errors.New("invalid ID")
	ErrInvalidInput    = errors.New("invalid input")
	ErrEmptyValue      = errors.New("value cannot be empty")
	ErrNegativeValue   = errors.New("value cannot be negative")
	ErrValueOutOfRange = errors.New("value out of range")
	ErrInvalidFormat   = errors.New("invalid format")

	// Rule violation kinds - the engine's error taxonomy.
	ErrTemporalViolation   = errors.New("temporal violation")
	ErrCurriculumViolation = errors.New("curriculum violation")
	ErrStateViolation      = errors.New("state violation")

	// State errors
	ErrInvalidState    = errors.New("invalid state")
	ErrStateTransition = errors.New("invalid state transition")
	ErrAlreadyApproved = errors.New("already approved")

	// Concurrency errors
	ErrConcurrencyConflict = errors.New("concurrent modification detected")
	ErrOptimisticLock      = errors.New("optimistic lock failure")

	// Programming errors. These are never produced by bad user input;
	// a caller seeing one has found a bug in the engine.
	ErrInvariantViolation = errors.New("invariant violation")

	// External service errors
	ErrExternalService    = errors.New("external service error")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrTimeout            = errors.New("operation timeout")
	ErrRateLimited        = errors.New("rate limited")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "specialization", "shift", "procedure"
	Op      string // Operation that failed, e.g., "StartModule", "Validate"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Specialization domain errors
var (
	ErrSpecializationNotFound = NewDomainError("specialization", "Find", ErrNotFound, "specialization not found")
	ErrModuleNotFound         = NewDomainError("specialization", "FindModule", ErrNotFound, "module not found")
	ErrNoActiveModule         = NewDomainError("specialization", "ResolveContext", ErrStateViolation, "no active module for date")
	ErrInvalidModuleProgression = NewDomainError("specialization", "StartModule", ErrStateViolation,
		"another module is already in progress")
	ErrModuleNotStartable = NewDomainError("specialization", "StartModule", ErrStateTransition,
		"module has no start date set")
	ErrModuleRequirementsUnmet = NewDomainError("specialization", "CompleteModule", ErrStateViolation,
		"module requirements are not met")
)

// Internship domain errors
var (
	ErrInternshipNotFound    = NewDomainError("internship", "Find", ErrNotFound, "internship not found")
	ErrInternshipNotApproved = NewDomainError("internship", "CheckStatus", ErrInvalidState, "internship is not approved")
)

// Shift domain errors
var (
	ErrShiftNotFound = NewDomainError("shift", "Find", ErrNotFound, "medical shift not found")
	ErrShiftApproved = NewDomainError("shift", "Update", ErrAlreadyApproved, "approved shift cannot be modified")
)

// Procedure domain errors
var (
	ErrRequirementNotFound = NewDomainError("procedure", "FindRequirement", ErrNotFound, "procedure requirement not found")
	ErrRealizationNotFound = NewDomainError("procedure", "FindRealization", ErrNotFound, "procedure realization not found")
)

// Education domain errors
var (
	ErrCourseNotFound        = NewDomainError("education", "FindCourse", ErrNotFound, "course not found")
	ErrAbsenceNotFound       = NewDomainError("education", "FindAbsence", ErrNotFound, "absence not found")
	ErrSelfEducationApproved = NewDomainError("education", "Update", ErrAlreadyApproved,
		"approved self-education days cannot be modified")
)

// Template provider errors
var (
	ErrTemplateNotFound = NewDomainError("template", "Get", ErrNotFound, "curriculum template not found")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyValue) ||
		errors.Is(err, ErrNegativeValue) ||
		errors.Is(err, ErrValueOutOfRange)
}

// IsRuleViolation checks if the error is one of the business-rule kinds.
func IsRuleViolation(err error) bool {
	return errors.Is(err, ErrTemporalViolation) ||
		errors.Is(err, ErrCurriculumViolation) ||
		errors.Is(err, ErrStateViolation)
}

// IsRetryable checks if the operation can be retried.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrConcurrencyConflict) ||
		errors.Is(err, ErrOptimisticLock)
}
