// Package jobs contains the scheduled background jobs: the nightly registry
// push, the monthly shift-hour check and the periodic progress refresh.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/sledzspecke/smk-progress-hub/internal/domain/procedure"
	"github.com/sledzspecke/smk-progress-hub/internal/domain/shared"
	"github.com/sledzspecke/smk-progress-hub/internal/domain/shift"
	"github.com/sledzspecke/smk-progress-hub/internal/domain/specialization"
	"github.com/sledzspecke/smk-progress-hub/internal/infrastructure/external/smk"
)

// ══════════════════════════════════════════════════════════════════════════════
// REGISTRY SYNC JOB
// ══════════════════════════════════════════════════════════════════════════════

// SpecializationLister lists the specializations a job should work through.
// The postgres repository satisfies it with its ListActive method.
type SpecializationLister interface {
	ListActive(ctx context.Context) ([]*specialization.Specialization, error)
}

// RegistryClient is the slice of the SMK client the sync job needs.
type RegistryClient interface {
	SubmitBatch(ctx context.Context, batch smk.BatchSubmissionDTO) (*smk.BatchResultDTO, error)
}

// RegistrySyncJob pushes locally modified records to the government registry.
// It runs nightly: every shift and procedure realization awaiting a push is
// batched per physician, submitted, and moved to its new sync state from the
// registry's receipt.
type RegistrySyncJob struct {
	specs    SpecializationLister
	shifts   shift.Repository
	procs    procedure.RealizationRepository
	client   RegistryClient
	mapper   *smk.Mapper
	events   shared.EventPublisher
	logger   *slog.Logger
	config   RegistrySyncConfig
	lastRun  atomic.Value // *RegistrySyncStats
}

// RegistrySyncConfig contains configuration for the registry sync job.
type RegistrySyncConfig struct {
	// Timeout bounds one full run across all specializations.
	Timeout time.Duration

	// MaxBatchSize caps the number of records pushed per specialization per
	// run. The registry rejects oversized batches outright.
	MaxBatchSize int
}

// DefaultRegistrySyncConfig returns sensible defaults.
func DefaultRegistrySyncConfig() RegistrySyncConfig {
	return RegistrySyncConfig{
		Timeout:      15 * time.Minute,
		MaxBatchSize: 100,
	}
}

// RegistrySyncStats summarizes one sync run.
type RegistrySyncStats struct {
	StartedAt       time.Time
	CompletedAt     time.Time
	Specializations int
	Pushed          int
	Skipped         int
	Failed          int
}

// NewRegistrySyncJob creates the nightly registry push job.
func NewRegistrySyncJob(
	specs SpecializationLister,
	shifts shift.Repository,
	procs procedure.RealizationRepository,
	client RegistryClient,
	mapper *smk.Mapper,
	events shared.EventPublisher,
	logger *slog.Logger,
	config RegistrySyncConfig,
) *RegistrySyncJob {
	if logger == nil {
		logger = slog.Default()
	}
	if config.Timeout <= 0 {
		config = DefaultRegistrySyncConfig()
	}
	return &RegistrySyncJob{
		specs:  specs,
		shifts: shifts,
		procs:  procs,
		client: client,
		mapper: mapper,
		events: events,
		logger: logger.With("job", "registry_sync"),
		config: config,
	}
}

// Name implements scheduler.Job.
func (j *RegistrySyncJob) Name() string { return "registry_sync" }

// Description implements scheduler.Job.
func (j *RegistrySyncJob) Description() string {
	return "Pushes pending shifts and procedures to the SMK registry"
}

// Run implements scheduler.Job.
func (j *RegistrySyncJob) Run(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	stats := &RegistrySyncStats{StartedAt: time.Now()}
	defer func() {
		stats.CompletedAt = time.Now()
		j.lastRun.Store(stats)
	}()

	specs, err := j.specs.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to list active specializations: %w", err)
	}
	stats.Specializations = len(specs)

	for _, spec := range specs {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		pushed, skipped, err := j.syncSpecialization(ctx, spec)
		if err != nil {
			stats.Failed++
			j.logger.Error("registry sync failed",
				"specialization_id", spec.ID.String(),
				"user_id", spec.UserID.String(),
				"error", err)
			if pubErr := j.events.Publish(shared.NewSyncFailedEvent(spec.UserID.String(), err.Error())); pubErr != nil {
				j.logger.Warn("failed to publish sync failure", "error", pubErr)
			}
			continue
		}

		stats.Pushed += pushed
		stats.Skipped += skipped
		if pushed == 0 && skipped == 0 {
			continue
		}
		if pubErr := j.events.Publish(shared.NewSyncCompletedEvent(spec.UserID.String(), pushed, skipped)); pubErr != nil {
			j.logger.Warn("failed to publish sync completion", "error", pubErr)
		}
	}

	j.logger.Info("registry sync finished",
		"specializations", stats.Specializations,
		"pushed", stats.Pushed,
		"skipped", stats.Skipped,
		"failed", stats.Failed)
	return nil
}

// syncSpecialization pushes one physician's pending records and applies the
// registry's receipts. Returns the number of records accepted and skipped.
func (j *RegistrySyncJob) syncSpecialization(ctx context.Context, spec *specialization.Specialization) (pushed, skipped int, err error) {
	pendingShifts, err := j.shifts.FindPendingSync(ctx, spec.ID)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to load pending shifts: %w", err)
	}
	pendingProcs, err := j.procs.FindPendingSync(ctx, spec.ID)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to load pending realizations: %w", err)
	}
	if len(pendingShifts)+len(pendingProcs) == 0 {
		return 0, 0, nil
	}

	pendingShifts, pendingProcs = j.capBatch(pendingShifts, pendingProcs)

	batch := smk.BatchSubmissionDTO{}
	shiftsByID := make(map[string]*shift.MedicalShift, len(pendingShifts))
	for _, s := range pendingShifts {
		batch.Shifts = append(batch.Shifts, j.mapper.ShiftToRecord(s))
		shiftsByID[s.ID.String()] = s
	}
	procsByID := make(map[string]*procedure.Realization, len(pendingProcs))
	for _, r := range pendingProcs {
		batch.Procedures = append(batch.Procedures, j.mapper.RealizationToRecord(r))
		procsByID[r.ID.String()] = r
	}

	result, err := j.client.SubmitBatch(ctx, batch)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to submit batch: %w", err)
	}

	for _, receipt := range result.Receipts {
		next, err := j.mapper.StatusToSyncStatus(receipt.Status)
		if err != nil {
			skipped++
			j.logger.Warn("unrecognized receipt status",
				"external_id", receipt.ExternalID, "status", receipt.Status)
			continue
		}

		switch {
		case shiftsByID[receipt.ExternalID] != nil:
			s := shiftsByID[receipt.ExternalID]
			if err := j.applyShiftReceipt(ctx, s, next); err != nil {
				skipped++
				j.logger.Warn("failed to apply shift receipt",
					"shift_id", receipt.ExternalID, "error", err)
				continue
			}
			pushed++
		case procsByID[receipt.ExternalID] != nil:
			r := procsByID[receipt.ExternalID]
			if err := j.applyRealizationReceipt(ctx, r, next); err != nil {
				skipped++
				j.logger.Warn("failed to apply realization receipt",
					"realization_id", receipt.ExternalID, "error", err)
				continue
			}
			pushed++
		default:
			skipped++
			j.logger.Warn("receipt for unknown record", "external_id", receipt.ExternalID)
		}
	}

	return pushed, skipped, nil
}

func (j *RegistrySyncJob) applyShiftReceipt(ctx context.Context, s *shift.MedicalShift, next shared.SyncStatus) error {
	if s.SyncStatus == next {
		return nil
	}
	if err := s.TransitionSync(next); err != nil {
		return err
	}
	return j.shifts.Save(ctx, s)
}

func (j *RegistrySyncJob) applyRealizationReceipt(ctx context.Context, r *procedure.Realization, next shared.SyncStatus) error {
	if r.SyncStatus == next {
		return nil
	}
	if err := r.TransitionSync(next); err != nil {
		return err
	}
	return j.procs.Save(ctx, r)
}

// capBatch trims the pending sets to MaxBatchSize combined, shifts first.
// Whatever does not fit stays pending and goes out with the next run.
func (j *RegistrySyncJob) capBatch(shifts []*shift.MedicalShift, procs []*procedure.Realization) ([]*shift.MedicalShift, []*procedure.Realization) {
	max := j.config.MaxBatchSize
	if max <= 0 || len(shifts)+len(procs) <= max {
		return shifts, procs
	}
	if len(shifts) >= max {
		return shifts[:max], nil
	}
	return shifts, procs[:max-len(shifts)]
}

// LastRunStats returns statistics from the most recent run, or nil.
func (j *RegistrySyncJob) LastRunStats() *RegistrySyncStats {
	stats, _ := j.lastRun.Load().(*RegistrySyncStats)
	return stats
}
