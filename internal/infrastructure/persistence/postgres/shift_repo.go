package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/sledzspecke/smk-progress-hub/internal/domain/shared"
	"github.com/sledzspecke/smk-progress-hub/internal/domain/shift"
)

// ShiftRepository implements shift.Repository for PostgreSQL.
type ShiftRepository struct {
	conn *Connection
}

// NewShiftRepository creates a new ShiftRepository.
func NewShiftRepository(conn *Connection) *ShiftRepository {
	return &ShiftRepository{conn: conn}
}

const shiftColumns = `
	id, internship_id, specialization_id, user_id, shift_date, duration_minutes,
	location, training_year, module_id, sync_status, approved_at, created_at, updated_at
`

// FindByID retrieves a shift.
func (r *ShiftRepository) FindByID(ctx context.Context, id shared.ShiftID) (*shift.MedicalShift, error) {
	q := r.conn.querier(ctx)

	query := fmt.Sprintf(`SELECT %s FROM medical_shifts WHERE id = $1`, shiftColumns)
	s, err := scanShift(q.QueryRow(ctx, query, id.String()))
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrShiftNotFound
		}
		return nil, fmt.Errorf("failed to query shift: %w", err)
	}
	return s, nil
}

// FindBySpecialization retrieves all shifts of a specialization.
func (r *ShiftRepository) FindBySpecialization(ctx context.Context, specID shared.SpecializationID) ([]*shift.MedicalShift, error) {
	query := fmt.Sprintf(`SELECT %s FROM medical_shifts WHERE specialization_id = $1 ORDER BY shift_date`, shiftColumns)
	return r.queryShifts(ctx, query, specID.String())
}

// FindByInternship retrieves the shifts attached to an internship.
func (r *ShiftRepository) FindByInternship(ctx context.Context, internshipID shared.InternshipID) ([]*shift.MedicalShift, error) {
	query := fmt.Sprintf(`SELECT %s FROM medical_shifts WHERE internship_id = $1 ORDER BY shift_date`, shiftColumns)
	return r.queryShifts(ctx, query, internshipID.String())
}

// FindByMonth retrieves the shifts of one calendar month.
func (r *ShiftRepository) FindByMonth(ctx context.Context, specID shared.SpecializationID, month shared.YearMonth) ([]*shift.MedicalShift, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM medical_shifts
		WHERE specialization_id = $1 AND shift_date >= $2 AND shift_date <= $3
		ORDER BY shift_date`, shiftColumns)
	return r.queryShifts(ctx, query, specID.String(), month.Start(), month.End())
}

// SumMinutesByModule sums shift minutes bucketed under a module.
func (r *ShiftRepository) SumMinutesByModule(ctx context.Context, moduleID shared.ModuleID) (int, error) {
	q := r.conn.querier(ctx)

	var total int
	query := `SELECT COALESCE(SUM(duration_minutes), 0) FROM medical_shifts WHERE module_id = $1`
	if err := q.QueryRow(ctx, query, moduleID.String()).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum shift minutes: %w", err)
	}
	return total, nil
}

// FindPendingSync retrieves shifts awaiting a registry push.
func (r *ShiftRepository) FindPendingSync(ctx context.Context, specID shared.SpecializationID) ([]*shift.MedicalShift, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM medical_shifts
		WHERE specialization_id = $1 AND sync_status IN ('not_synced', 'modified')
		ORDER BY shift_date`, shiftColumns)
	return r.queryShifts(ctx, query, specID.String())
}

// Save persists the shift.
func (r *ShiftRepository) Save(ctx context.Context, s *shift.MedicalShift) error {
	q := r.conn.querier(ctx)

	query := `
		UPDATE medical_shifts
		SET shift_date = $1, duration_minutes = $2, location = $3,
		    training_year = $4, module_id = $5, sync_status = $6,
		    approved_at = $7, updated_at = $8
		WHERE id = $9
	`
	tag, err := q.Exec(ctx, query,
		s.Date, s.Duration.TotalMinutes(), s.Location,
		s.Year.Int(), nullString(s.ModuleID.String()), s.SyncStatus.String(),
		nullTime(s.ApprovedAt), s.UpdatedAt,
		s.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to update shift: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrShiftNotFound
	}
	return nil
}

// Create persists a new shift.
func (r *ShiftRepository) Create(ctx context.Context, s *shift.MedicalShift) error {
	q := r.conn.querier(ctx)

	query := `
		INSERT INTO medical_shifts (
			id, internship_id, specialization_id, user_id, shift_date, duration_minutes,
			location, training_year, module_id, sync_status, approved_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := q.Exec(ctx, query,
		s.ID.String(), s.InternshipID.String(), s.SpecializationID.String(), s.UserID.String(),
		s.Date, s.Duration.TotalMinutes(),
		s.Location, s.Year.Int(), nullString(s.ModuleID.String()), s.SyncStatus.String(),
		nullTime(s.ApprovedAt), s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert shift: %w", err)
	}
	return nil
}

func (r *ShiftRepository) queryShifts(ctx context.Context, query string, args ...interface{}) ([]*shift.MedicalShift, error) {
	q := r.conn.querier(ctx)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query shifts: %w", err)
	}
	defer rows.Close()

	var shifts []*shift.MedicalShift
	for rows.Next() {
		s, err := scanShift(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan shift: %w", err)
		}
		shifts = append(shifts, s)
	}
	return shifts, rows.Err()
}

func scanShift(row rowScanner) (*shift.MedicalShift, error) {
	var s shift.MedicalShift
	var internshipID, specID, userID, syncStatus string
	var durationMinutes, trainingYear int
	var moduleID *string
	var approvedAt *time.Time

	err := row.Scan(
		&s.ID, &internshipID, &specID, &userID, &s.Date, &durationMinutes,
		&s.Location, &trainingYear, &moduleID, &syncStatus, &approvedAt,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	duration, err := shared.DurationFromMinutes(durationMinutes)
	if err != nil {
		return nil, fmt.Errorf("stored shift duration is invalid: %w", err)
	}

	s.InternshipID = shared.InternshipID(internshipID)
	s.SpecializationID = shared.SpecializationID(specID)
	s.UserID = shared.UserID(userID)
	s.Date = shared.DateOnly(s.Date)
	s.Duration = duration
	s.Year = shared.TrainingYear(trainingYear)
	s.SyncStatus = shared.SyncStatus(syncStatus)
	if moduleID != nil {
		s.ModuleID = shared.ModuleID(*moduleID)
	}
	if approvedAt != nil {
		s.ApprovedAt = *approvedAt
	}
	return &s, nil
}
