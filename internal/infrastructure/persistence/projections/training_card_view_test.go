package projections

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sledzspecke/smk-progress-hub/internal/application/query"
	"github.com/sledzspecke/smk-progress-hub/internal/domain/shared"
)

func TestTrainingCardApplyProgressCreatesCard(t *testing.T) {
	view := NewTrainingCardView()

	view.ApplyProgress("user-1", &query.OverallProgressView{
		SpecializationID: "spec-1",
		Name:             "Kardiologia",
		SmkVersion:       "new",
		Stage:            "basic_in_progress",
		StagePercent:     25,
		WeightedPercent:  31.5,
		Modules: []query.ModuleProgressView{
			{ModuleID: "mod-1", State: shared.ModuleCompleted.String()},
			{ModuleID: "mod-2", State: shared.ModuleInProgress.String()},
		},
	})

	card, ok := view.Get("spec-1")
	require.True(t, ok)
	assert.Equal(t, "Kardiologia", card.Name)
	assert.Equal(t, 25, card.StagePercent)
	assert.InDelta(t, 31.5, card.WeightedPercent, 0.001)
	assert.Equal(t, 1, card.ModulesCompleted)
	assert.Equal(t, 1, view.Len())
}

func TestTrainingCardFoldsActivityEvents(t *testing.T) {
	view := NewTrainingCardView()
	view.ApplyProgress("user-1", &query.OverallProgressView{SpecializationID: "spec-1"})

	shift := shared.NewShiftApprovedEvent("shift-1", "user-1", "int-1",
		time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), 600)
	require.NoError(t, view.ApplyEvent(shift))

	proc := shared.NewProcedureRecordedEvent("real-1", "user-1", "KP-01", "operator",
		time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), false)
	require.NoError(t, view.ApplyEvent(proc))

	card, ok := view.Get("spec-1")
	require.True(t, ok)
	assert.Equal(t, 1, card.ShiftsApproved)
	assert.Equal(t, 1, card.ProceduresRecorded)
	assert.False(t, card.LastActivityAt.IsZero())
}

func TestTrainingCardTracksSyncOutcome(t *testing.T) {
	view := NewTrainingCardView()
	view.ApplyProgress("user-1", &query.OverallProgressView{SpecializationID: "spec-1"})

	require.NoError(t, view.ApplyEvent(shared.NewSyncCompletedEvent("user-1", 5, 1)))
	card, _ := view.Get("spec-1")
	assert.Equal(t, 5, card.LastSyncPushed)
	assert.False(t, card.LastSyncFailed)

	require.NoError(t, view.ApplyEvent(shared.NewSyncFailedEvent("user-1", "registry down")))
	card, _ = view.Get("spec-1")
	assert.True(t, card.LastSyncFailed)
}

func TestTrainingCardModuleLifecycle(t *testing.T) {
	view := NewTrainingCardView()

	started := shared.NewModuleStartedEvent("mod-1", "spec-1", "user-1", "basic",
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, view.ApplyEvent(started))

	card, ok := view.Get("spec-1")
	require.True(t, ok)
	assert.Equal(t, "mod-1", card.CurrentModuleID)

	completed := shared.NewModuleCompletedEvent("mod-1", "spec-1", "user-1", "basic").
		WithNextModule("mod-2")
	require.NoError(t, view.ApplyEvent(completed))

	card, _ = view.Get("spec-1")
	assert.Equal(t, 1, card.ModulesCompleted)
	assert.Equal(t, "mod-2", card.CurrentModuleID)

	require.NoError(t, view.ApplyEvent(shared.NewModuleSwitchedEvent("spec-1", "mod-2", "mod-3")))
	card, _ = view.Get("spec-1")
	assert.Equal(t, "mod-3", card.CurrentModuleID)

	assert.Len(t, view.GetByUser("user-1"), 1)
}

func TestTrainingCardVersionBumpsOnWrite(t *testing.T) {
	view := NewTrainingCardView()
	before := view.Version()

	view.ApplyProgress("user-1", &query.OverallProgressView{SpecializationID: "spec-1"})
	assert.Greater(t, view.Version(), before)
}
