package smk

import (
	"fmt"
	"time"

	"github.com/sledzspecke/smk-progress-hub/internal/domain/internship"
	"github.com/sledzspecke/smk-progress-hub/internal/domain/procedure"
	"github.com/sledzspecke/smk-progress-hub/internal/domain/shared"
	"github.com/sledzspecke/smk-progress-hub/internal/domain/shift"
	"github.com/sledzspecke/smk-progress-hub/pkg/timeutil"
)

// registryDateLayout is the date format the registry accepts.
const registryDateLayout = "2006-01-02"

// ══════════════════════════════════════════════════════════════════════════════
// MAPPER
// ══════════════════════════════════════════════════════════════════════════════

// Mapper converts domain entities to registry records and registry statuses
// back to sync states.
type Mapper struct{}

// NewMapper creates a new Mapper.
func NewMapper() *Mapper {
	return &Mapper{}
}

// ShiftToRecord maps a medical shift to its registry wire format.
// The registry takes hours and minutes separately, so the stored total
// is split back into the normalized "Xh Ym" pair.
func (m *Mapper) ShiftToRecord(s *shift.MedicalShift) ShiftRecordDTO {
	return ShiftRecordDTO{
		ExternalID:           s.ID.String(),
		InternshipExternalID: s.InternshipID.String(),
		Date:                 timeutil.FormatDate(s.Date),
		Hours:                s.Duration.Hours(),
		Minutes:              s.Duration.Minutes(),
		Location:             s.Location,
		TrainingYear:         s.Year.Int(),
		ModuleExternalID:     s.ModuleID.String(),
	}
}

// RealizationToRecord maps a performed procedure to its registry wire format.
func (m *Mapper) RealizationToRecord(r *procedure.Realization) ProcedureRecordDTO {
	return ProcedureRecordDTO{
		ExternalID:       r.ID.String(),
		Code:             r.Code,
		Role:             r.Role.String(),
		Date:             timeutil.FormatDate(r.Date),
		Simulated:        r.Simulated,
		Location:         r.Location,
		TrainingYear:     r.Year.Int(),
		ModuleExternalID: r.ModuleID.String(),
	}
}

// InternshipToRecord maps an internship placement to its registry wire format.
func (m *Mapper) InternshipToRecord(i *internship.Internship) InternshipRecordDTO {
	return InternshipRecordDTO{
		ExternalID:       i.ID.String(),
		Name:             i.Name,
		Institution:      i.Institution,
		Department:       i.Department,
		StartDate:        timeutil.FormatDate(i.Dates.Start),
		EndDate:          timeutil.FormatDate(i.Dates.End),
		Completed:        i.Completed,
		TrainingYear:     i.Year.Int(),
		ModuleExternalID: i.ModuleID.String(),
	}
}

// StatusToSyncStatus maps a registry record status to the local sync state.
// Pending and accepted records stay synced; only an explicit approval
// freezes the record locally.
func (m *Mapper) StatusToSyncStatus(registryStatus string) (shared.SyncStatus, error) {
	switch registryStatus {
	case RecordStatusPending, RecordStatusAccepted:
		return shared.SyncSynced, nil
	case RecordStatusApproved:
		return shared.SyncApproved, nil
	case RecordStatusRejected:
		// A rejected record goes back to editable so the user can fix it.
		return shared.SyncModified, nil
	default:
		return "", fmt.Errorf("unknown registry record status: %q", registryStatus)
	}
}

// ParseRegistryDate parses a date in the registry's wire format.
func ParseRegistryDate(raw string) (time.Time, error) {
	t, err := time.Parse(registryDateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse registry date %q: %w", raw, err)
	}
	return shared.DateOnly(t), nil
}
