package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/sledzspecke/smk-progress-hub/internal/domain/shared"
	"github.com/sledzspecke/smk-progress-hub/internal/domain/specialization"
)

// SpecializationRepository implements specialization.Repository for PostgreSQL.
type SpecializationRepository struct {
	conn *Connection
}

// NewSpecializationRepository creates a new SpecializationRepository.
func NewSpecializationRepository(conn *Connection) *SpecializationRepository {
	return &SpecializationRepository{conn: conn}
}

const specializationColumns = `
	id, user_id, name, program_code, smk_version,
	planned_start, planned_end, calculated_end,
	duration_years, has_basic_module, current_module_id,
	version, created_at, updated_at
`

const moduleColumns = `
	id, specialization_id, kind, name, state, start_date, end_date,
	req_internships, req_courses, req_procedures_operator, req_procedures_assistant,
	req_shift_hours, req_self_education_days, req_monthly_shift_hours,
	started_at, completed_at, updated_at
`

// FindByID retrieves a specialization with its modules.
func (r *SpecializationRepository) FindByID(ctx context.Context, id shared.SpecializationID) (*specialization.Specialization, error) {
	q := r.conn.querier(ctx)

	query := fmt.Sprintf(`SELECT %s FROM specializations WHERE id = $1`, specializationColumns)
	s, err := scanSpecialization(q.QueryRow(ctx, query, id.String()))
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrSpecializationNotFound
		}
		return nil, fmt.Errorf("failed to query specialization: %w", err)
	}

	if err := r.loadModules(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// FindByUser retrieves all specializations of a physician.
func (r *SpecializationRepository) FindByUser(ctx context.Context, userID shared.UserID) ([]*specialization.Specialization, error) {
	q := r.conn.querier(ctx)

	query := fmt.Sprintf(`SELECT %s FROM specializations WHERE user_id = $1 ORDER BY created_at`, specializationColumns)
	rows, err := q.Query(ctx, query, userID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query specializations: %w", err)
	}
	defer rows.Close()

	var specs []*specialization.Specialization
	for rows.Next() {
		s, err := scanSpecialization(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan specialization: %w", err)
		}
		specs = append(specs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, s := range specs {
		if err := r.loadModules(ctx, s); err != nil {
			return nil, err
		}
	}
	return specs, nil
}

// ListActive retrieves every specialization with a module currently in
// progress. Background jobs iterate these; completed trainings are skipped.
func (r *SpecializationRepository) ListActive(ctx context.Context) ([]*specialization.Specialization, error) {
	q := r.conn.querier(ctx)

	query := fmt.Sprintf(`
		SELECT %s FROM specializations s
		WHERE EXISTS (
			SELECT 1 FROM modules m
			WHERE m.specialization_id = s.id AND m.state = 'in_progress'
		)
		ORDER BY s.created_at`, specializationColumns)
	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query active specializations: %w", err)
	}
	defer rows.Close()

	var specs []*specialization.Specialization
	for rows.Next() {
		s, err := scanSpecialization(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan specialization: %w", err)
		}
		specs = append(specs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, s := range specs {
		if err := r.loadModules(ctx, s); err != nil {
			return nil, err
		}
	}
	return specs, nil
}

// Save persists the aggregate under optimistic locking. The row's version must
// match the aggregate's; a mismatch means another writer got there first and
// the caller must reload and retry.
func (r *SpecializationRepository) Save(ctx context.Context, s *specialization.Specialization) error {
	q := r.conn.querier(ctx)

	query := `
		UPDATE specializations
		SET name = $1, program_code = $2, smk_version = $3,
		    planned_start = $4, planned_end = $5, calculated_end = $6,
		    duration_years = $7, has_basic_module = $8, current_module_id = $9,
		    version = version + 1, updated_at = NOW()
		WHERE id = $10 AND version = $11
	`
	tag, err := q.Exec(ctx, query,
		s.Name, s.ProgramCode, s.SmkVersion.String(),
		s.Planned.Start, s.Planned.End, s.CalculatedEnd,
		s.DurationYears, s.HasBasicModule, nullString(s.CurrentModuleID.String()),
		s.ID.String(), s.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update specialization: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.WrapError("specialization", "Save", shared.ErrConcurrencyConflict,
			"specialization was modified concurrently", nil)
	}
	s.Version++

	for _, m := range s.Modules {
		if err := r.upsertModule(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

// Create persists a new aggregate with its modules.
func (r *SpecializationRepository) Create(ctx context.Context, s *specialization.Specialization) error {
	q := r.conn.querier(ctx)

	query := `
		INSERT INTO specializations (
			id, user_id, name, program_code, smk_version,
			planned_start, planned_end, calculated_end,
			duration_years, has_basic_module, current_module_id,
			version, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := q.Exec(ctx, query,
		s.ID.String(), s.UserID.String(), s.Name, s.ProgramCode, s.SmkVersion.String(),
		s.Planned.Start, s.Planned.End, s.CalculatedEnd,
		s.DurationYears, s.HasBasicModule, nullString(s.CurrentModuleID.String()),
		s.Version, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.WrapError("specialization", "Create", shared.ErrAlreadyExists,
				"specialization already exists", err)
		}
		return fmt.Errorf("failed to insert specialization: %w", err)
	}

	for _, m := range s.Modules {
		if err := r.upsertModule(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

func (r *SpecializationRepository) loadModules(ctx context.Context, s *specialization.Specialization) error {
	q := r.conn.querier(ctx)

	query := fmt.Sprintf(`SELECT %s FROM modules WHERE specialization_id = $1 ORDER BY kind DESC, started_at NULLS LAST`, moduleColumns)
	rows, err := q.Query(ctx, query, s.ID.String())
	if err != nil {
		return fmt.Errorf("failed to query modules: %w", err)
	}
	defer rows.Close()

	s.Modules = nil
	for rows.Next() {
		var m specialization.Module
		var specID, kind, state string
		var startDate, endDate, startedAt, completedAt *time.Time

		err := rows.Scan(
			&m.ID, &specID, &kind, &m.Name, &state, &startDate, &endDate,
			&m.Requirements.Internships, &m.Requirements.Courses,
			&m.Requirements.ProceduresOperator, &m.Requirements.ProceduresAssistant,
			&m.Requirements.ShiftHours, &m.Requirements.SelfEducationDays,
			&m.Requirements.MonthlyShiftHours,
			&startedAt, &completedAt, &m.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to scan module: %w", err)
		}

		m.SpecializationID = shared.SpecializationID(specID)
		m.Kind = shared.ModuleKind(kind)
		m.State = shared.ModuleState(state)
		if startDate != nil && endDate != nil {
			m.Dates = shared.DateRange{Start: shared.DateOnly(*startDate), End: shared.DateOnly(*endDate)}
		}
		if startedAt != nil {
			m.StartedAt = *startedAt
		}
		if completedAt != nil {
			m.CompletedAt = *completedAt
		}
		s.Modules = append(s.Modules, &m)
	}
	return rows.Err()
}

func (r *SpecializationRepository) upsertModule(ctx context.Context, m *specialization.Module) error {
	q := r.conn.querier(ctx)

	query := `
		INSERT INTO modules (
			id, specialization_id, kind, name, state, start_date, end_date,
			req_internships, req_courses, req_procedures_operator, req_procedures_assistant,
			req_shift_hours, req_self_education_days, req_monthly_shift_hours,
			started_at, completed_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (id) DO UPDATE SET
			state = EXCLUDED.state,
			start_date = EXCLUDED.start_date,
			end_date = EXCLUDED.end_date,
			started_at = EXCLUDED.started_at,
			completed_at = EXCLUDED.completed_at,
			updated_at = EXCLUDED.updated_at
	`
	_, err := q.Exec(ctx, query,
		m.ID.String(), m.SpecializationID.String(), m.Kind.String(), m.Name, m.State.String(),
		nullTime(m.Dates.Start), nullTime(m.Dates.End),
		m.Requirements.Internships, m.Requirements.Courses,
		m.Requirements.ProceduresOperator, m.Requirements.ProceduresAssistant,
		m.Requirements.ShiftHours, m.Requirements.SelfEducationDays,
		m.Requirements.MonthlyShiftHours,
		nullTime(m.StartedAt), nullTime(m.CompletedAt), m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert module: %w", err)
	}
	return nil
}

// rowScanner abstracts pgx.Row and pgx.Rows for shared scan helpers.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSpecialization(row rowScanner) (*specialization.Specialization, error) {
	var s specialization.Specialization
	var userID, smkVersion string
	var plannedStart, plannedEnd time.Time
	var currentModuleID *string

	err := row.Scan(
		&s.ID, &userID, &s.Name, &s.ProgramCode, &smkVersion,
		&plannedStart, &plannedEnd, &s.CalculatedEnd,
		&s.DurationYears, &s.HasBasicModule, &currentModuleID,
		&s.Version, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	s.UserID = shared.UserID(userID)
	s.SmkVersion = shared.SmkVersion(smkVersion)
	s.Planned = shared.DateRange{Start: shared.DateOnly(plannedStart), End: shared.DateOnly(plannedEnd)}
	s.CalculatedEnd = shared.DateOnly(s.CalculatedEnd)
	if currentModuleID != nil {
		s.CurrentModuleID = shared.ModuleID(*currentModuleID)
	}
	return &s, nil
}

// nullTime maps the zero time to SQL NULL.
func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// nullString maps the empty string to SQL NULL.
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
