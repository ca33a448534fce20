package shared

import (
	"encoding/json"
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types. Each event represents something significant that
// happened while recording or validating training progress.
const (
	// Shift events
	EventShiftAdded              EventType = "shift.added"
	EventShiftApproved           EventType = "shift.approved"
	EventShiftMonthlyMilestone   EventType = "shift.monthly_milestone"
	EventShiftMonthlyUnderTarget EventType = "shift.monthly_under_target"

	// Procedure events
	EventProcedureRecorded        EventType = "procedure.recorded"
	EventProcedureDuplicate       EventType = "procedure.duplicate_detected"
	EventProcedureDailyLimit      EventType = "procedure.daily_limit_exceeded"
	EventProcedureFirstOfType     EventType = "procedure.first_of_type"
	EventProcedureRequirementDone EventType = "procedure.requirement_completed"

	// Module events
	EventModuleStarted   EventType = "module.started"
	EventModuleCompleted EventType = "module.completed"
	EventModuleSwitched  EventType = "specialization.module_switched"

	// Education events
	EventSelfEducationDaysAdded EventType = "selfeducation.days_added"
	EventAbsenceRecorded        EventType = "absence.recorded"

	// Sync events
	EventSyncCompleted EventType = "sync.completed"
	EventSyncFailed    EventType = "sync.failed"

	// Notification events
	EventNotificationSent   EventType = "notification.sent"
	EventNotificationFailed EventType = "notification.failed"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type          EventType `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	AggregateId   string    `json:"aggregate_id"`
	Version       int       `json:"version"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// NewBaseEvent creates a new base event.
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   time.Now(),
		AggregateId: aggregateID,
		Version:     1,
	}
}

// WithCorrelationID sets the correlation ID for tracing.
func (e BaseEvent) WithCorrelationID(id string) BaseEvent {
	e.CorrelationID = id
	return e
}

// ═══════════════════════════════════════════════════════════════════════════
// Shift Events
// ═══════════════════════════════════════════════════════════════════════════

// ShiftAddedEvent is emitted when a medical shift is recorded.
type ShiftAddedEvent struct {
	BaseEvent
	ShiftID      string    `json:"shift_id"`
	UserID       string    `json:"user_id"`
	InternshipID string    `json:"internship_id"`
	Date         time.Time `json:"date"`
	Minutes      int       `json:"minutes"`
}

// Payload implements Event interface.
func (e ShiftAddedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"shift_id":      e.ShiftID,
		"user_id":       e.UserID,
		"internship_id": e.InternshipID,
		"date":          e.Date.Format(time.DateOnly),
		"minutes":       e.Minutes,
	}
}

// NewShiftAddedEvent creates a new ShiftAddedEvent.
func NewShiftAddedEvent(shiftID, userID, internshipID string, date time.Time, minutes int) ShiftAddedEvent {
	return ShiftAddedEvent{
		BaseEvent:    NewBaseEvent(EventShiftAdded, shiftID),
		ShiftID:      shiftID,
		UserID:       userID,
		InternshipID: internshipID,
		Date:         date,
		Minutes:      minutes,
	}
}

// ShiftApprovedEvent is emitted when a shift moves to the approved sync state.
type ShiftApprovedEvent struct {
	BaseEvent
	ShiftID      string    `json:"shift_id"`
	UserID       string    `json:"user_id"`
	InternshipID string    `json:"internship_id"`
	Date         time.Time `json:"date"`
	Minutes      int       `json:"minutes"`
}

// Payload implements Event interface.
func (e ShiftApprovedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"shift_id":      e.ShiftID,
		"user_id":       e.UserID,
		"internship_id": e.InternshipID,
		"date":          e.Date.Format(time.DateOnly),
		"minutes":       e.Minutes,
	}
}

// NewShiftApprovedEvent creates a new ShiftApprovedEvent.
func NewShiftApprovedEvent(shiftID, userID, internshipID string, date time.Time, minutes int) ShiftApprovedEvent {
	return ShiftApprovedEvent{
		BaseEvent:    NewBaseEvent(EventShiftApproved, shiftID),
		ShiftID:      shiftID,
		UserID:       userID,
		InternshipID: internshipID,
		Date:         date,
		Minutes:      minutes,
	}
}

// MonthlyMilestoneEvent is emitted when a month's approved shift total crosses
// the monthly minimum for the first time.
type MonthlyMilestoneEvent struct {
	BaseEvent
	UserID       string `json:"user_id"`
	Month        string `json:"month"` // "2024-06"
	TotalMinutes int    `json:"total_minutes"`
	TargetHours  int    `json:"target_hours"`
}

// Payload implements Event interface.
func (e MonthlyMilestoneEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":       e.UserID,
		"month":         e.Month,
		"total_minutes": e.TotalMinutes,
		"target_hours":  e.TargetHours,
	}
}

// NewMonthlyMilestoneEvent creates a new MonthlyMilestoneEvent.
func NewMonthlyMilestoneEvent(userID, month string, totalMinutes, targetHours int) MonthlyMilestoneEvent {
	return MonthlyMilestoneEvent{
		BaseEvent:    NewBaseEvent(EventShiftMonthlyMilestone, userID),
		UserID:       userID,
		Month:        month,
		TotalMinutes: totalMinutes,
		TargetHours:  targetHours,
	}
}

// MonthlyUnderTargetEvent is emitted by the scheduled monthly check for a
// closed month that ended below the minimum hours.
type MonthlyUnderTargetEvent struct {
	BaseEvent
	UserID       string `json:"user_id"`
	Month        string `json:"month"`
	TotalMinutes int    `json:"total_minutes"`
	TargetHours  int    `json:"target_hours"`
}

// Payload implements Event interface.
func (e MonthlyUnderTargetEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":       e.UserID,
		"month":         e.Month,
		"total_minutes": e.TotalMinutes,
		"target_hours":  e.TargetHours,
	}
}

// NewMonthlyUnderTargetEvent creates a new MonthlyUnderTargetEvent.
func NewMonthlyUnderTargetEvent(userID, month string, totalMinutes, targetHours int) MonthlyUnderTargetEvent {
	return MonthlyUnderTargetEvent{
		BaseEvent:    NewBaseEvent(EventShiftMonthlyUnderTarget, userID),
		UserID:       userID,
		Month:        month,
		TotalMinutes: totalMinutes,
		TargetHours:  targetHours,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Procedure Events
// ═══════════════════════════════════════════════════════════════════════════

// ProcedureRecordedEvent is emitted when a procedure realization is recorded.
type ProcedureRecordedEvent struct {
	BaseEvent
	RealizationID string    `json:"realization_id"`
	UserID        string    `json:"user_id"`
	Code          string    `json:"code"`
	Role          string    `json:"role"`
	Date          time.Time `json:"date"`
	Simulated     bool      `json:"simulated"`
}

// Payload implements Event interface.
func (e ProcedureRecordedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"realization_id": e.RealizationID,
		"user_id":        e.UserID,
		"code":           e.Code,
		"role":           e.Role,
		"date":           e.Date.Format(time.DateOnly),
		"simulated":      e.Simulated,
	}
}

// NewProcedureRecordedEvent creates a new ProcedureRecordedEvent.
func NewProcedureRecordedEvent(realizationID, userID, code, role string, date time.Time, simulated bool) ProcedureRecordedEvent {
	return ProcedureRecordedEvent{
		BaseEvent:     NewBaseEvent(EventProcedureRecorded, realizationID),
		RealizationID: realizationID,
		UserID:        userID,
		Code:          code,
		Role:          role,
		Date:          date,
		Simulated:     simulated,
	}
}

// ProcedureDuplicateEvent is emitted when an identical code+date+role entry
// already exists. The entry is kept; the duplicate is flagged for audit.
type ProcedureDuplicateEvent struct {
	BaseEvent
	RealizationID string    `json:"realization_id"`
	UserID        string    `json:"user_id"`
	Code          string    `json:"code"`
	Role          string    `json:"role"`
	Date          time.Time `json:"date"`
	ExistingCount int       `json:"existing_count"`
}

// Payload implements Event interface.
func (e ProcedureDuplicateEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"realization_id": e.RealizationID,
		"user_id":        e.UserID,
		"code":           e.Code,
		"role":           e.Role,
		"date":           e.Date.Format(time.DateOnly),
		"existing_count": e.ExistingCount,
	}
}

// NewProcedureDuplicateEvent creates a new ProcedureDuplicateEvent.
func NewProcedureDuplicateEvent(realizationID, userID, code, role string, date time.Time, existing int) ProcedureDuplicateEvent {
	return ProcedureDuplicateEvent{
		BaseEvent:     NewBaseEvent(EventProcedureDuplicate, realizationID),
		RealizationID: realizationID,
		UserID:        userID,
		Code:          code,
		Role:          role,
		Date:          date,
		ExistingCount: existing,
	}
}

// FirstOfTypeEvent is emitted the first time a user records a given
// procedure code.
type FirstOfTypeEvent struct {
	BaseEvent
	UserID string `json:"user_id"`
	Code   string `json:"code"`
	Name   string `json:"name"`
}

// Payload implements Event interface.
func (e FirstOfTypeEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id": e.UserID,
		"code":    e.Code,
		"name":    e.Name,
	}
}

// NewFirstOfTypeEvent creates a new FirstOfTypeEvent.
func NewFirstOfTypeEvent(userID, code, name string) FirstOfTypeEvent {
	return FirstOfTypeEvent{
		BaseEvent: NewBaseEvent(EventProcedureFirstOfType, userID),
		UserID:    userID,
		Code:      code,
		Name:      name,
	}
}

// RequirementCompletedEvent is emitted when a procedure requirement reaches
// its required operator and assistant counts.
type RequirementCompletedEvent struct {
	BaseEvent
	UserID        string `json:"user_id"`
	RequirementID string `json:"requirement_id"`
	Code          string `json:"code"`
}

// Payload implements Event interface.
func (e RequirementCompletedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":        e.UserID,
		"requirement_id": e.RequirementID,
		"code":           e.Code,
	}
}

// NewRequirementCompletedEvent creates a new RequirementCompletedEvent.
func NewRequirementCompletedEvent(userID, requirementID, code string) RequirementCompletedEvent {
	return RequirementCompletedEvent{
		BaseEvent:     NewBaseEvent(EventProcedureRequirementDone, requirementID),
		UserID:        userID,
		RequirementID: requirementID,
		Code:          code,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Module Events
// ═══════════════════════════════════════════════════════════════════════════

// ModuleStartedEvent is emitted when a module transitions to in progress.
type ModuleStartedEvent struct {
	BaseEvent
	ModuleID         string    `json:"module_id"`
	SpecializationID string    `json:"specialization_id"`
	UserID           string    `json:"user_id"`
	Kind             string    `json:"kind"`
	StartDate        time.Time `json:"start_date"`
}

// Payload implements Event interface.
func (e ModuleStartedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"module_id":         e.ModuleID,
		"specialization_id": e.SpecializationID,
		"user_id":           e.UserID,
		"kind":              e.Kind,
		"start_date":        e.StartDate.Format(time.DateOnly),
	}
}

// NewModuleStartedEvent creates a new ModuleStartedEvent.
func NewModuleStartedEvent(moduleID, specializationID, userID, kind string, start time.Time) ModuleStartedEvent {
	return ModuleStartedEvent{
		BaseEvent:        NewBaseEvent(EventModuleStarted, moduleID),
		ModuleID:         moduleID,
		SpecializationID: specializationID,
		UserID:           userID,
		Kind:             kind,
		StartDate:        start,
	}
}

// ModuleCompletedEvent is emitted when every requirement of a module is met
// and the module transitions to completed.
type ModuleCompletedEvent struct {
	BaseEvent
	ModuleID         string `json:"module_id"`
	SpecializationID string `json:"specialization_id"`
	UserID           string `json:"user_id"`
	Kind             string `json:"kind"`
	NextModuleID     string `json:"next_module_id,omitempty"`
}

// Payload implements Event interface.
func (e ModuleCompletedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"module_id":         e.ModuleID,
		"specialization_id": e.SpecializationID,
		"user_id":           e.UserID,
		"kind":              e.Kind,
		"next_module_id":    e.NextModuleID,
	}
}

// NewModuleCompletedEvent creates a new ModuleCompletedEvent.
func NewModuleCompletedEvent(moduleID, specializationID, userID, kind string) ModuleCompletedEvent {
	return ModuleCompletedEvent{
		BaseEvent:        NewBaseEvent(EventModuleCompleted, moduleID),
		ModuleID:         moduleID,
		SpecializationID: specializationID,
		UserID:           userID,
		Kind:             kind,
	}
}

// WithNextModule records the module the specialization advanced to.
func (e ModuleCompletedEvent) WithNextModule(nextID string) ModuleCompletedEvent {
	e.NextModuleID = nextID
	return e
}

// ModuleSwitchedEvent is emitted when the specialization's current module
// pointer moves.
type ModuleSwitchedEvent struct {
	BaseEvent
	SpecializationID string `json:"specialization_id"`
	FromModuleID     string `json:"from_module_id"`
	ToModuleID       string `json:"to_module_id"`
}

// Payload implements Event interface.
func (e ModuleSwitchedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"specialization_id": e.SpecializationID,
		"from_module_id":    e.FromModuleID,
		"to_module_id":      e.ToModuleID,
	}
}

// NewModuleSwitchedEvent creates a new ModuleSwitchedEvent.
func NewModuleSwitchedEvent(specializationID, fromID, toID string) ModuleSwitchedEvent {
	return ModuleSwitchedEvent{
		BaseEvent:        NewBaseEvent(EventModuleSwitched, specializationID),
		SpecializationID: specializationID,
		FromModuleID:     fromID,
		ToModuleID:       toID,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Education Events
// ═══════════════════════════════════════════════════════════════════════════

// SelfEducationDaysAddedEvent is emitted when self-education days are recorded.
type SelfEducationDaysAddedEvent struct {
	BaseEvent
	EntryID   string `json:"entry_id"`
	UserID    string `json:"user_id"`
	ModuleID  string `json:"module_id"`
	Year      int    `json:"year"`
	Days      int    `json:"days"`
	YearTotal int    `json:"year_total"`
}

// Payload implements Event interface.
func (e SelfEducationDaysAddedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"entry_id":   e.EntryID,
		"user_id":    e.UserID,
		"module_id":  e.ModuleID,
		"year":       e.Year,
		"days":       e.Days,
		"year_total": e.YearTotal,
	}
}

// NewSelfEducationDaysAddedEvent creates a new SelfEducationDaysAddedEvent.
func NewSelfEducationDaysAddedEvent(entryID, userID, moduleID string, year, days, yearTotal int) SelfEducationDaysAddedEvent {
	return SelfEducationDaysAddedEvent{
		BaseEvent: NewBaseEvent(EventSelfEducationDaysAdded, entryID),
		EntryID:   entryID,
		UserID:    userID,
		ModuleID:  moduleID,
		Year:      year,
		Days:      days,
		YearTotal: yearTotal,
	}
}

// AbsenceRecordedEvent is emitted when an absence is recorded. ExtendsTraining
// tells the end-date calculator whether the absence pushes the planned end.
type AbsenceRecordedEvent struct {
	BaseEvent
	AbsenceID        string    `json:"absence_id"`
	SpecializationID string    `json:"specialization_id"`
	UserID           string    `json:"user_id"`
	From             time.Time `json:"from"`
	To               time.Time `json:"to"`
	ExtendsTraining  bool      `json:"extends_training"`
}

// Payload implements Event interface.
func (e AbsenceRecordedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"absence_id":        e.AbsenceID,
		"specialization_id": e.SpecializationID,
		"user_id":           e.UserID,
		"from":              e.From.Format(time.DateOnly),
		"to":                e.To.Format(time.DateOnly),
		"extends_training":  e.ExtendsTraining,
	}
}

// NewAbsenceRecordedEvent creates a new AbsenceRecordedEvent.
func NewAbsenceRecordedEvent(absenceID, specializationID, userID string, from, to time.Time, extends bool) AbsenceRecordedEvent {
	return AbsenceRecordedEvent{
		BaseEvent:        NewBaseEvent(EventAbsenceRecorded, absenceID),
		AbsenceID:        absenceID,
		SpecializationID: specializationID,
		UserID:           userID,
		From:             from,
		To:               to,
		ExtendsTraining:  extends,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Sync Events
// ═══════════════════════════════════════════════════════════════════════════

// SyncCompletedEvent is emitted after a registry sync run finishes.
type SyncCompletedEvent struct {
	BaseEvent
	UserID  string `json:"user_id"`
	Pushed  int    `json:"pushed"`
	Skipped int    `json:"skipped"`
}

// Payload implements Event interface.
func (e SyncCompletedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id": e.UserID,
		"pushed":  e.Pushed,
		"skipped": e.Skipped,
	}
}

// NewSyncCompletedEvent creates a new SyncCompletedEvent.
func NewSyncCompletedEvent(userID string, pushed, skipped int) SyncCompletedEvent {
	return SyncCompletedEvent{
		BaseEvent: NewBaseEvent(EventSyncCompleted, userID),
		UserID:    userID,
		Pushed:    pushed,
		Skipped:   skipped,
	}
}

// SyncFailedEvent is emitted when a registry sync run fails.
type SyncFailedEvent struct {
	BaseEvent
	UserID string `json:"user_id"`
	Reason string `json:"reason"`
}

// Payload implements Event interface.
func (e SyncFailedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id": e.UserID,
		"reason":  e.Reason,
	}
}

// NewSyncFailedEvent creates a new SyncFailedEvent.
func NewSyncFailedEvent(userID, reason string) SyncFailedEvent {
	return SyncFailedEvent{
		BaseEvent: NewBaseEvent(EventSyncFailed, userID),
		UserID:    userID,
		Reason:    reason,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Event Envelope (for serialization and transport)
// ═══════════════════════════════════════════════════════════════════════════

// EventEnvelope wraps an event for transport/storage.
type EventEnvelope struct {
	ID            string          `json:"id"`
	Type          EventType       `json:"type"`
	AggregateID   string          `json:"aggregate_id"`
	Timestamp     time.Time       `json:"timestamp"`
	Version       int             `json:"version"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// EventHandler is a function that handles an event.
type EventHandler func(event Event) error

// EventPublisher defines the interface for publishing events.
type EventPublisher interface {
	// Publish sends an event to subscribers.
	Publish(event Event) error
}

// EventSubscriber defines the interface for subscribing to events.
type EventSubscriber interface {
	// Subscribe registers a handler for an event type.
	Subscribe(eventType EventType, handler EventHandler) error

	// SubscribeAll registers a handler for all events.
	SubscribeAll(handler EventHandler) error
}

// EventBus combines publishing and subscribing.
type EventBus interface {
	EventPublisher
	EventSubscriber
}
