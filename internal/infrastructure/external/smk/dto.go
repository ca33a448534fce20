// Package smk implements the client for the government SMK registry.
// The registry is the system of record for specialization training: local
// shifts, procedures and internships are pushed to it for supervisor
// approval, and approved records become immutable on our side.
package smk

import (
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// API RESPONSE WRAPPERS
// ══════════════════════════════════════════════════════════════════════════════

// APIResponse is the generic envelope the registry wraps payloads in.
type APIResponse[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error,omitempty"`
	Meta    *Meta  `json:"meta,omitempty"`
}

// Meta contains pagination metadata for list endpoints.
type Meta struct {
	Total      int `json:"total,omitempty"`
	Page       int `json:"page,omitempty"`
	PerPage    int `json:"per_page,omitempty"`
	TotalPages int `json:"total_pages,omitempty"`
}

// ══════════════════════════════════════════════════════════════════════════════
// SESSION DTOs
// ══════════════════════════════════════════════════════════════════════════════

// SessionDTO is the authenticated registry session.
type SessionDTO struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`

	// ExpiresIn is the session validity in seconds.
	ExpiresIn int `json:"expires_in"`

	// ExpiresAt is computed client-side from ExpiresIn at login time.
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// IsExpired reports whether the session needs re-authentication.
// A 60 second buffer avoids submitting with a token about to lapse.
func (s *SessionDTO) IsExpired() bool {
	if s.ExpiresAt.IsZero() {
		return false
	}
	return time.Now().After(s.ExpiresAt.Add(-60 * time.Second))
}

// ══════════════════════════════════════════════════════════════════════════════
// RECORD DTOs
// ══════════════════════════════════════════════════════════════════════════════

// Registry record statuses as returned by the SMK.
const (
	RecordStatusPending  = "pending"
	RecordStatusAccepted = "accepted"
	RecordStatusApproved = "approved"
	RecordStatusRejected = "rejected"
)

// ShiftRecordDTO is a medical shift in the registry's wire format.
// The registry takes a date plus hours and minutes, never clock times.
type ShiftRecordDTO struct {
	// ExternalID is our shift ID, echoed back in receipts.
	ExternalID string `json:"external_id"`

	InternshipExternalID string `json:"internship_external_id"`

	Date     string `json:"date"`
	Hours    int    `json:"hours"`
	Minutes  int    `json:"minutes"`
	Location string `json:"location,omitempty"`

	// TrainingYear is set for year-bucketed programs, 0 otherwise.
	TrainingYear int `json:"training_year,omitempty"`

	// ModuleExternalID is set for module-bucketed programs.
	ModuleExternalID string `json:"module_external_id,omitempty"`
}

// ProcedureRecordDTO is a performed procedure in the registry's wire format.
type ProcedureRecordDTO struct {
	ExternalID string `json:"external_id"`

	Code string `json:"code"`

	// Role is "operator" or "assistant".
	Role string `json:"role"`

	Date      string `json:"date"`
	Simulated bool   `json:"simulated,omitempty"`
	Location  string `json:"location,omitempty"`

	TrainingYear     int    `json:"training_year,omitempty"`
	ModuleExternalID string `json:"module_external_id,omitempty"`
}

// InternshipRecordDTO is an internship placement in the registry's wire format.
type InternshipRecordDTO struct {
	ExternalID string `json:"external_id"`

	Name        string `json:"name"`
	Institution string `json:"institution"`
	Department  string `json:"department,omitempty"`

	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`

	Completed bool `json:"completed,omitempty"`

	TrainingYear     int    `json:"training_year,omitempty"`
	ModuleExternalID string `json:"module_external_id,omitempty"`
}

// ══════════════════════════════════════════════════════════════════════════════
// SUBMISSION DTOs
// ══════════════════════════════════════════════════════════════════════════════

// SubmissionReceiptDTO is the registry's acknowledgement of one record.
type SubmissionReceiptDTO struct {
	// ExternalID echoes the submitted record's external ID.
	ExternalID string `json:"external_id"`

	// RegistryID is the registry's own identifier for the record.
	RegistryID string `json:"registry_id"`

	// Status is one of the RecordStatus constants.
	Status string `json:"status"`

	// Reason carries the reviewer's note on rejected records.
	Reason string `json:"reason,omitempty"`

	SubmittedAt time.Time `json:"submitted_at"`
}

// BatchSubmissionDTO pushes a mixed batch of pending records in one call.
type BatchSubmissionDTO struct {
	Shifts      []ShiftRecordDTO      `json:"shifts,omitempty"`
	Procedures  []ProcedureRecordDTO  `json:"procedures,omitempty"`
	Internships []InternshipRecordDTO `json:"internships,omitempty"`
}

// IsEmpty reports whether the batch carries no records.
func (b *BatchSubmissionDTO) IsEmpty() bool {
	return len(b.Shifts) == 0 && len(b.Procedures) == 0 && len(b.Internships) == 0
}

// Size returns the total record count across all record kinds.
func (b *BatchSubmissionDTO) Size() int {
	return len(b.Shifts) + len(b.Procedures) + len(b.Internships)
}

// BatchResultDTO is the registry's per-record outcome for a batch push.
type BatchResultDTO struct {
	Receipts []SubmissionReceiptDTO `json:"receipts"`

	// Accepted and Rejected are summary counts over Receipts.
	Accepted int `json:"accepted"`
	Rejected int `json:"rejected"`

	ProcessedAt time.Time `json:"processed_at"`
}

// RecordStatusDTO is the current registry-side state of one record.
type RecordStatusDTO struct {
	ExternalID string     `json:"external_id"`
	RegistryID string     `json:"registry_id"`
	Status     string     `json:"status"`
	Reason     string     `json:"reason,omitempty"`
	ReviewedAt *time.Time `json:"reviewed_at,omitempty"`
}

// ══════════════════════════════════════════════════════════════════════════════
// ERROR DTOs
// ══════════════════════════════════════════════════════════════════════════════

// APIErrorDTO is an error response from the registry.
type APIErrorDTO struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// Error implements the error interface.
func (e *APIErrorDTO) Error() string {
	if e.Code != "" {
		return e.Code + ": " + e.Message
	}
	return e.Message
}

// IsTransient reports whether the registry error is worth retrying.
func (e *APIErrorDTO) IsTransient() bool {
	return e.Code == "SERVER_ERROR" || e.Code == "TEMPORARILY_UNAVAILABLE" || e.Code == "MAINTENANCE_WINDOW"
}
