// Package projections implements in-memory read models fed by domain events.
package projections

import (
	"sort"
	"sync"
	"time"

	"github.com/sledzspecke/smk-progress-hub/internal/application/query"
	"github.com/sledzspecke/smk-progress-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// TRAINING CARD VIEW - Denormalized Read Model for a Physician's Training
// ══════════════════════════════════════════════════════════════════════════════

// TrainingCardView keeps one denormalized card per specialization, updated
// from domain events as they flow through the dispatcher and refreshed in
// bulk by the progress warm job. Reads never touch the database.
//
// The view is rebuildable: dropping it loses nothing, the next refresh run
// repopulates every card from the aggregates.
type TrainingCardView struct {
	mu sync.RWMutex

	// cards holds all cards indexed by specialization ID.
	cards map[string]*TrainingCard

	// byUser indexes cards by physician.
	byUser map[string][]*TrainingCard

	lastUpdated time.Time
	version     int64
}

// TrainingCard is a denormalized view of one specialization's state.
type TrainingCard struct {
	SpecializationID string `json:"specialization_id"`
	UserID           string `json:"user_id"`
	Name             string `json:"name"`
	SmkVersion       string `json:"smk_version"`

	// Progress
	Stage           string  `json:"stage"`
	StagePercent    int     `json:"stage_percent"`
	WeightedPercent float64 `json:"weighted_percent"`
	CalculatedEnd   string  `json:"calculated_end,omitempty"`

	// Current module
	CurrentModuleID  string `json:"current_module_id,omitempty"`
	ModulesCompleted int    `json:"modules_completed"`

	// Activity counters since the last full refresh
	ShiftsApproved     int       `json:"shifts_approved"`
	ProceduresRecorded int       `json:"procedures_recorded"`
	LastActivityAt     time.Time `json:"last_activity_at,omitempty"`

	// Registry sync
	LastSyncAt      time.Time `json:"last_sync_at,omitempty"`
	LastSyncPushed  int       `json:"last_sync_pushed"`
	LastSyncSkipped int       `json:"last_sync_skipped"`
	LastSyncFailed  bool      `json:"last_sync_failed"`

	UpdatedAt time.Time `json:"updated_at"`
}

// NewTrainingCardView creates an empty view.
func NewTrainingCardView() *TrainingCardView {
	return &TrainingCardView{
		cards:       make(map[string]*TrainingCard),
		byUser:      make(map[string][]*TrainingCard),
		lastUpdated: time.Now().UTC(),
		version:     1,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// REFRESH FROM QUERY SIDE
// ══════════════════════════════════════════════════════════════════════════════

// ApplyProgress replaces a card's progress fields from a freshly computed
// view. The warm job calls this for every active specialization, which also
// creates cards the event stream has not touched yet.
func (v *TrainingCardView) ApplyProgress(userID string, view *query.OverallProgressView) {
	if view == nil {
		return
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	card := v.ensureCard(view.SpecializationID, userID)
	card.Name = view.Name
	card.SmkVersion = view.SmkVersion
	card.Stage = view.Stage
	card.StagePercent = view.StagePercent
	card.WeightedPercent = view.WeightedPercent
	card.CalculatedEnd = view.CalculatedEnd

	completed := 0
	for _, m := range view.Modules {
		if m.State == shared.ModuleCompleted.String() {
			completed++
		}
	}
	card.ModulesCompleted = completed

	v.touch(card)
}

// ══════════════════════════════════════════════════════════════════════════════
// EVENT APPLICATION
// ══════════════════════════════════════════════════════════════════════════════

// ApplyEvent folds a domain event into the view. Unknown event types are
// ignored; the view only tracks what it can attribute to a card.
func (v *TrainingCardView) ApplyEvent(event shared.Event) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	switch e := event.(type) {
	case shared.ShiftApprovedEvent:
		for _, card := range v.byUser[e.UserID] {
			card.ShiftsApproved++
			card.LastActivityAt = e.OccurredAt()
			v.touch(card)
		}

	case shared.ProcedureRecordedEvent:
		for _, card := range v.byUser[e.UserID] {
			card.ProceduresRecorded++
			card.LastActivityAt = e.OccurredAt()
			v.touch(card)
		}

	case shared.ModuleCompletedEvent:
		card := v.ensureCard(e.SpecializationID, e.UserID)
		card.ModulesCompleted++
		if e.NextModuleID != "" {
			card.CurrentModuleID = e.NextModuleID
		}
		v.touch(card)

	case shared.ModuleStartedEvent:
		card := v.ensureCard(e.SpecializationID, e.UserID)
		card.CurrentModuleID = e.ModuleID
		v.touch(card)

	case shared.ModuleSwitchedEvent:
		if card, ok := v.cards[e.SpecializationID]; ok {
			card.CurrentModuleID = e.ToModuleID
			v.touch(card)
		}

	case shared.SyncCompletedEvent:
		for _, card := range v.byUser[e.UserID] {
			card.LastSyncAt = e.OccurredAt()
			card.LastSyncPushed = e.Pushed
			card.LastSyncSkipped = e.Skipped
			card.LastSyncFailed = false
			v.touch(card)
		}

	case shared.SyncFailedEvent:
		for _, card := range v.byUser[e.UserID] {
			card.LastSyncAt = e.OccurredAt()
			card.LastSyncFailed = true
			v.touch(card)
		}
	}

	return nil
}

// Handle adapts ApplyEvent to shared.EventHandler for dispatcher registration.
func (v *TrainingCardView) Handle(event shared.Event) error {
	return v.ApplyEvent(event)
}

// ══════════════════════════════════════════════════════════════════════════════
// READS
// ══════════════════════════════════════════════════════════════════════════════

// Get returns a copy of the card for a specialization, or false.
func (v *TrainingCardView) Get(specializationID string) (TrainingCard, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	card, ok := v.cards[specializationID]
	if !ok {
		return TrainingCard{}, false
	}
	return *card, true
}

// GetByUser returns copies of all cards of one physician, newest update first.
func (v *TrainingCardView) GetByUser(userID string) []TrainingCard {
	v.mu.RLock()
	defer v.mu.RUnlock()

	cards := make([]TrainingCard, 0, len(v.byUser[userID]))
	for _, card := range v.byUser[userID] {
		cards = append(cards, *card)
	}
	sort.Slice(cards, func(i, j int) bool {
		return cards[i].UpdatedAt.After(cards[j].UpdatedAt)
	})
	return cards
}

// Len returns the number of cards held.
func (v *TrainingCardView) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.cards)
}

// Version returns the current view version. It increments on every write, so
// pollers can cheaply detect staleness.
func (v *TrainingCardView) Version() int64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.version
}

// ensureCard returns the card for a specialization, creating it if needed.
// Callers must hold the write lock.
func (v *TrainingCardView) ensureCard(specializationID, userID string) *TrainingCard {
	if card, ok := v.cards[specializationID]; ok {
		return card
	}
	card := &TrainingCard{
		SpecializationID: specializationID,
		UserID:           userID,
	}
	v.cards[specializationID] = card
	if userID != "" {
		v.byUser[userID] = append(v.byUser[userID], card)
	}
	return card
}

// touch stamps a card and bumps the view version. Callers must hold the
// write lock.
func (v *TrainingCardView) touch(card *TrainingCard) {
	now := time.Now().UTC()
	card.UpdatedAt = now
	v.lastUpdated = now
	v.version++
}
