package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/sledzspecke/smk-progress-hub/internal/domain/internship"
	"github.com/sledzspecke/smk-progress-hub/internal/domain/shared"
)

// InternshipRepository implements internship.Repository for PostgreSQL.
type InternshipRepository struct {
	conn *Connection
}

// NewInternshipRepository creates a new InternshipRepository.
func NewInternshipRepository(conn *Connection) *InternshipRepository {
	return &InternshipRepository{conn: conn}
}

const internshipColumns = `
	id, specialization_id, module_id, training_year, name, institution, department,
	start_date, end_date, completed, sync_status, created_at, updated_at
`

// FindByID retrieves an internship.
func (r *InternshipRepository) FindByID(ctx context.Context, id shared.InternshipID) (*internship.Internship, error) {
	q := r.conn.querier(ctx)

	query := fmt.Sprintf(`SELECT %s FROM internships WHERE id = $1`, internshipColumns)
	i, err := scanInternship(q.QueryRow(ctx, query, id.String()))
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrInternshipNotFound
		}
		return nil, fmt.Errorf("failed to query internship: %w", err)
	}
	return i, nil
}

// FindBySpecialization retrieves all internships of a specialization.
func (r *InternshipRepository) FindBySpecialization(ctx context.Context, specID shared.SpecializationID) ([]*internship.Internship, error) {
	query := fmt.Sprintf(`SELECT %s FROM internships WHERE specialization_id = $1 ORDER BY start_date`, internshipColumns)
	return r.queryInternships(ctx, query, specID.String())
}

// FindByModule retrieves the internships bucketed under a module.
func (r *InternshipRepository) FindByModule(ctx context.Context, moduleID shared.ModuleID) ([]*internship.Internship, error) {
	query := fmt.Sprintf(`SELECT %s FROM internships WHERE module_id = $1 ORDER BY start_date`, internshipColumns)
	return r.queryInternships(ctx, query, moduleID.String())
}

// CountCompleted counts finished internships for a module.
func (r *InternshipRepository) CountCompleted(ctx context.Context, moduleID shared.ModuleID) (int, error) {
	q := r.conn.querier(ctx)

	var count int
	query := `SELECT COUNT(*) FROM internships WHERE module_id = $1 AND completed = TRUE`
	if err := q.QueryRow(ctx, query, moduleID.String()).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count completed internships: %w", err)
	}
	return count, nil
}

// Save persists the internship.
func (r *InternshipRepository) Save(ctx context.Context, i *internship.Internship) error {
	q := r.conn.querier(ctx)

	query := `
		UPDATE internships
		SET module_id = $1, training_year = $2, name = $3, institution = $4, department = $5,
		    start_date = $6, end_date = $7, completed = $8, sync_status = $9, updated_at = $10
		WHERE id = $11
	`
	tag, err := q.Exec(ctx, query,
		nullString(i.ModuleID.String()), i.Year.Int(), i.Name, i.Institution, i.Department,
		i.Dates.Start, i.Dates.End, i.Completed, i.SyncStatus.String(), i.UpdatedAt,
		i.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to update internship: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrInternshipNotFound
	}
	return nil
}

// Create persists a new internship.
func (r *InternshipRepository) Create(ctx context.Context, i *internship.Internship) error {
	q := r.conn.querier(ctx)

	query := `
		INSERT INTO internships (
			id, specialization_id, module_id, training_year, name, institution, department,
			start_date, end_date, completed, sync_status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := q.Exec(ctx, query,
		i.ID.String(), i.SpecializationID.String(), nullString(i.ModuleID.String()),
		i.Year.Int(), i.Name, i.Institution, i.Department,
		i.Dates.Start, i.Dates.End, i.Completed, i.SyncStatus.String(),
		i.CreatedAt, i.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert internship: %w", err)
	}
	return nil
}

func (r *InternshipRepository) queryInternships(ctx context.Context, query string, args ...interface{}) ([]*internship.Internship, error) {
	q := r.conn.querier(ctx)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query internships: %w", err)
	}
	defer rows.Close()

	var internships []*internship.Internship
	for rows.Next() {
		i, err := scanInternship(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan internship: %w", err)
		}
		internships = append(internships, i)
	}
	return internships, rows.Err()
}

func scanInternship(row rowScanner) (*internship.Internship, error) {
	var i internship.Internship
	var specID, syncStatus string
	var moduleID *string
	var trainingYear int
	var startDate, endDate time.Time

	err := row.Scan(
		&i.ID, &specID, &moduleID, &trainingYear, &i.Name, &i.Institution, &i.Department,
		&startDate, &endDate, &i.Completed, &syncStatus, &i.CreatedAt, &i.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	i.SpecializationID = shared.SpecializationID(specID)
	i.Year = shared.TrainingYear(trainingYear)
	i.Dates = shared.DateRange{Start: shared.DateOnly(startDate), End: shared.DateOnly(endDate)}
	i.SyncStatus = shared.SyncStatus(syncStatus)
	if moduleID != nil {
		i.ModuleID = shared.ModuleID(*moduleID)
	}
	return &i, nil
}
