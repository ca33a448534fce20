package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sledzspecke/smk-progress-hub/internal/domain/procedure"
	"github.com/sledzspecke/smk-progress-hub/internal/domain/shared"
	"github.com/sledzspecke/smk-progress-hub/internal/domain/shift"
	"github.com/sledzspecke/smk-progress-hub/internal/domain/specialization"
	"github.com/sledzspecke/smk-progress-hub/internal/infrastructure/external/smk"
)

// ══════════════════════════════════════════════════════════════════════════════
// FAKES
// ══════════════════════════════════════════════════════════════════════════════

type fakeLister struct {
	specs []*specialization.Specialization
}

func (f *fakeLister) ListActive(ctx context.Context) ([]*specialization.Specialization, error) {
	return f.specs, nil
}

type fakeShiftRepo struct {
	shift.Repository
	pending []*shift.MedicalShift
	byMonth []*shift.MedicalShift
	saved   []*shift.MedicalShift
}

func (f *fakeShiftRepo) FindPendingSync(ctx context.Context, specID shared.SpecializationID) ([]*shift.MedicalShift, error) {
	return f.pending, nil
}

func (f *fakeShiftRepo) FindByMonth(ctx context.Context, specID shared.SpecializationID, month shared.YearMonth) ([]*shift.MedicalShift, error) {
	return f.byMonth, nil
}

func (f *fakeShiftRepo) Save(ctx context.Context, s *shift.MedicalShift) error {
	f.saved = append(f.saved, s)
	return nil
}

type fakeRealizationRepo struct {
	procedure.RealizationRepository
	pending []*procedure.Realization
	saved   []*procedure.Realization
}

func (f *fakeRealizationRepo) FindPendingSync(ctx context.Context, specID shared.SpecializationID) ([]*procedure.Realization, error) {
	return f.pending, nil
}

func (f *fakeRealizationRepo) Save(ctx context.Context, r *procedure.Realization) error {
	f.saved = append(f.saved, r)
	return nil
}

type fakeRegistryClient struct {
	submitted []smk.BatchSubmissionDTO
	result    *smk.BatchResultDTO
}

func (f *fakeRegistryClient) SubmitBatch(ctx context.Context, batch smk.BatchSubmissionDTO) (*smk.BatchResultDTO, error) {
	f.submitted = append(f.submitted, batch)
	return f.result, nil
}

type fakePublisher struct {
	events []shared.Event
}

func (f *fakePublisher) Publish(event shared.Event) error {
	f.events = append(f.events, event)
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

func activeSpec(monthlyHours int) *specialization.Specialization {
	return &specialization.Specialization{
		ID:     shared.SpecializationID("spec-1"),
		UserID: shared.UserID("user-1"),
		Modules: []*specialization.Module{
			{
				ID:    shared.ModuleID("mod-1"),
				State: shared.ModuleInProgress,
				Requirements: specialization.ModuleRequirements{
					MonthlyShiftHours: monthlyHours,
				},
			},
		},
	}
}

func pendingShift(t *testing.T, hours int) *shift.MedicalShift {
	t.Helper()
	d, err := shared.NewShiftDuration(hours, 0)
	require.NoError(t, err)
	return &shift.MedicalShift{
		ID:               shared.NewShiftID(),
		SpecializationID: shared.SpecializationID("spec-1"),
		UserID:           shared.UserID("user-1"),
		ModuleID:         shared.ModuleID("mod-1"),
		Date:             time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		Duration:         d,
		Location:         "SOR",
		Year:             shared.TrainingYear(1),
		SyncStatus:       shared.SyncNotSynced,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// REGISTRY SYNC
// ══════════════════════════════════════════════════════════════════════════════

func TestRegistrySyncAppliesReceipts(t *testing.T) {
	s := pendingShift(t, 10)
	r := &procedure.Realization{
		ID:               shared.NewRealizationID(),
		SpecializationID: shared.SpecializationID("spec-1"),
		Code:             "KP-01",
		Date:             time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		Year:             shared.TrainingYear(1),
		SyncStatus:       shared.SyncNotSynced,
	}

	shifts := &fakeShiftRepo{pending: []*shift.MedicalShift{s}}
	procs := &fakeRealizationRepo{pending: []*procedure.Realization{r}}
	client := &fakeRegistryClient{result: &smk.BatchResultDTO{
		Receipts: []smk.SubmissionReceiptDTO{
			{ExternalID: s.ID.String(), Status: smk.RecordStatusPending},
			{ExternalID: r.ID.String(), Status: smk.RecordStatusAccepted},
		},
	}}
	publisher := &fakePublisher{}

	job := NewRegistrySyncJob(
		&fakeLister{specs: []*specialization.Specialization{activeSpec(40)}},
		shifts, procs, client, smk.NewMapper(), publisher, nil,
		DefaultRegistrySyncConfig(),
	)

	require.NoError(t, job.Run(context.Background()))

	require.Len(t, client.submitted, 1)
	assert.Equal(t, 2, client.submitted[0].Size())

	assert.Equal(t, shared.SyncSynced, s.SyncStatus)
	assert.Equal(t, shared.SyncSynced, r.SyncStatus)
	assert.Len(t, shifts.saved, 1)
	assert.Len(t, procs.saved, 1)

	require.Len(t, publisher.events, 1)
	completed, ok := publisher.events[0].(shared.SyncCompletedEvent)
	require.True(t, ok)
	assert.Equal(t, 2, completed.Pushed)
	assert.Equal(t, 0, completed.Skipped)

	stats := job.LastRunStats()
	require.NotNil(t, stats)
	assert.Equal(t, 2, stats.Pushed)
}

func TestRegistrySyncNothingPendingPublishesNothing(t *testing.T) {
	client := &fakeRegistryClient{}
	publisher := &fakePublisher{}

	job := NewRegistrySyncJob(
		&fakeLister{specs: []*specialization.Specialization{activeSpec(40)}},
		&fakeShiftRepo{}, &fakeRealizationRepo{}, client, smk.NewMapper(), publisher, nil,
		DefaultRegistrySyncConfig(),
	)

	require.NoError(t, job.Run(context.Background()))
	assert.Empty(t, client.submitted)
	assert.Empty(t, publisher.events)
}

func TestRegistrySyncSkipsUnknownReceipt(t *testing.T) {
	s := pendingShift(t, 10)
	shifts := &fakeShiftRepo{pending: []*shift.MedicalShift{s}}
	client := &fakeRegistryClient{result: &smk.BatchResultDTO{
		Receipts: []smk.SubmissionReceiptDTO{
			{ExternalID: "someone-else", Status: smk.RecordStatusPending},
		},
	}}
	publisher := &fakePublisher{}

	job := NewRegistrySyncJob(
		&fakeLister{specs: []*specialization.Specialization{activeSpec(40)}},
		shifts, &fakeRealizationRepo{}, client, smk.NewMapper(), publisher, nil,
		DefaultRegistrySyncConfig(),
	)

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, shared.SyncNotSynced, s.SyncStatus)

	require.Len(t, publisher.events, 1)
	completed, ok := publisher.events[0].(shared.SyncCompletedEvent)
	require.True(t, ok)
	assert.Equal(t, 0, completed.Pushed)
	assert.Equal(t, 1, completed.Skipped)
}

// ══════════════════════════════════════════════════════════════════════════════
// MONTHLY HOURS CHECK
// ══════════════════════════════════════════════════════════════════════════════

func TestMonthlyHoursCheckFlagsUnderTarget(t *testing.T) {
	// 30h logged against a 40h minimum.
	shifts := &fakeShiftRepo{byMonth: []*shift.MedicalShift{
		pendingShift(t, 10), pendingShift(t, 10), pendingShift(t, 10),
	}}
	publisher := &fakePublisher{}

	job := NewMonthlyHoursCheckJob(
		&fakeLister{specs: []*specialization.Specialization{activeSpec(40)}},
		shifts, publisher, nil, time.UTC,
	)

	require.NoError(t, job.Run(context.Background()))

	require.Len(t, publisher.events, 1)
	under, ok := publisher.events[0].(shared.MonthlyUnderTargetEvent)
	require.True(t, ok)
	assert.Equal(t, "user-1", under.UserID)
	assert.Equal(t, 30*60, under.TotalMinutes)
	assert.Equal(t, 40, under.TargetHours)
}

func TestMonthlyHoursCheckMetTargetStaysQuiet(t *testing.T) {
	shifts := &fakeShiftRepo{byMonth: []*shift.MedicalShift{
		pendingShift(t, 24), pendingShift(t, 24),
	}}
	publisher := &fakePublisher{}

	job := NewMonthlyHoursCheckJob(
		&fakeLister{specs: []*specialization.Specialization{activeSpec(40)}},
		shifts, publisher, nil, time.UTC,
	)

	require.NoError(t, job.Run(context.Background()))
	assert.Empty(t, publisher.events)
}

func TestMonthlyHoursCheckSkipsModulesWithoutMinimum(t *testing.T) {
	publisher := &fakePublisher{}

	job := NewMonthlyHoursCheckJob(
		&fakeLister{specs: []*specialization.Specialization{activeSpec(0)}},
		&fakeShiftRepo{byMonth: []*shift.MedicalShift{pendingShift(t, 1)}},
		publisher, nil, time.UTC,
	)

	require.NoError(t, job.Run(context.Background()))
	assert.Empty(t, publisher.events)
}
