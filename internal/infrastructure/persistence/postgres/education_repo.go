package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/sledzspecke/smk-progress-hub/internal/domain/education"
	"github.com/sledzspecke/smk-progress-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// COURSE REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// CourseRepository implements education.CourseRepository for PostgreSQL.
type CourseRepository struct {
	conn *Connection
}

// NewCourseRepository creates a new CourseRepository.
func NewCourseRepository(conn *Connection) *CourseRepository {
	return &CourseRepository{conn: conn}
}

const courseColumns = `
	id, specialization_id, module_id, training_year, name, course_number,
	institution, course_date, certificate_number, completed, sync_status,
	created_at, updated_at
`

// FindByID retrieves a course.
func (r *CourseRepository) FindByID(ctx context.Context, id shared.CourseID) (*education.Course, error) {
	q := r.conn.querier(ctx)

	query := fmt.Sprintf(`SELECT %s FROM courses WHERE id = $1`, courseColumns)
	c, err := scanCourse(q.QueryRow(ctx, query, id.String()))
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to query course: %w", err)
	}
	return c, nil
}

// FindBySpecialization retrieves all courses of a specialization.
func (r *CourseRepository) FindBySpecialization(ctx context.Context, specID shared.SpecializationID) ([]*education.Course, error) {
	q := r.conn.querier(ctx)

	query := fmt.Sprintf(`SELECT %s FROM courses WHERE specialization_id = $1 ORDER BY course_date`, courseColumns)
	rows, err := q.Query(ctx, query, specID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query courses: %w", err)
	}
	defer rows.Close()

	var courses []*education.Course
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan course: %w", err)
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

// CountCompleted counts passed courses for a module.
func (r *CourseRepository) CountCompleted(ctx context.Context, moduleID shared.ModuleID) (int, error) {
	q := r.conn.querier(ctx)

	var count int
	query := `SELECT COUNT(*) FROM courses WHERE module_id = $1 AND completed = TRUE`
	if err := q.QueryRow(ctx, query, moduleID.String()).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count completed courses: %w", err)
	}
	return count, nil
}

// Save persists the course.
func (r *CourseRepository) Save(ctx context.Context, c *education.Course) error {
	q := r.conn.querier(ctx)

	query := `
		UPDATE courses
		SET module_id = $1, training_year = $2, name = $3, course_number = $4,
		    institution = $5, course_date = $6, certificate_number = $7,
		    completed = $8, sync_status = $9, updated_at = $10
		WHERE id = $11
	`
	tag, err := q.Exec(ctx, query,
		nullString(c.ModuleID.String()), c.Year.Int(), c.Name, c.Number,
		c.Institution, c.Date, c.CertificateNumber,
		c.Completed, c.SyncStatus.String(), c.UpdatedAt,
		c.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to update course: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrCourseNotFound
	}
	return nil
}

// Create persists a new course.
func (r *CourseRepository) Create(ctx context.Context, c *education.Course) error {
	q := r.conn.querier(ctx)

	query := `
		INSERT INTO courses (
			id, specialization_id, module_id, training_year, name, course_number,
			institution, course_date, certificate_number, completed, sync_status,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := q.Exec(ctx, query,
		c.ID.String(), c.SpecializationID.String(), nullString(c.ModuleID.String()),
		c.Year.Int(), c.Name, c.Number,
		c.Institution, c.Date, c.CertificateNumber, c.Completed, c.SyncStatus.String(),
		c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert course: %w", err)
	}
	return nil
}

func scanCourse(row rowScanner) (*education.Course, error) {
	var c education.Course
	var specID, syncStatus string
	var moduleID *string
	var trainingYear int
	var courseDate time.Time

	err := row.Scan(
		&c.ID, &specID, &moduleID, &trainingYear, &c.Name, &c.Number,
		&c.Institution, &courseDate, &c.CertificateNumber, &c.Completed, &syncStatus,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.SpecializationID = shared.SpecializationID(specID)
	c.Year = shared.TrainingYear(trainingYear)
	c.Date = shared.DateOnly(courseDate)
	c.SyncStatus = shared.SyncStatus(syncStatus)
	if moduleID != nil {
		c.ModuleID = shared.ModuleID(*moduleID)
	}
	return &c, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// ABSENCE REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// AbsenceRepository implements education.AbsenceRepository for PostgreSQL.
type AbsenceRepository struct {
	conn *Connection
}

// NewAbsenceRepository creates a new AbsenceRepository.
func NewAbsenceRepository(conn *Connection) *AbsenceRepository {
	return &AbsenceRepository{conn: conn}
}

const absenceColumns = `
	id, specialization_id, absence_type, start_date, end_date, description,
	created_at, updated_at
`

// FindByID retrieves an absence.
func (r *AbsenceRepository) FindByID(ctx context.Context, id shared.AbsenceID) (*education.Absence, error) {
	q := r.conn.querier(ctx)

	query := fmt.Sprintf(`SELECT %s FROM absences WHERE id = $1`, absenceColumns)
	a, err := scanAbsence(q.QueryRow(ctx, query, id.String()))
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrAbsenceNotFound
		}
		return nil, fmt.Errorf("failed to query absence: %w", err)
	}
	return a, nil
}

// FindBySpecialization retrieves all absences of a specialization.
func (r *AbsenceRepository) FindBySpecialization(ctx context.Context, specID shared.SpecializationID) ([]*education.Absence, error) {
	q := r.conn.querier(ctx)

	query := fmt.Sprintf(`SELECT %s FROM absences WHERE specialization_id = $1 ORDER BY start_date`, absenceColumns)
	rows, err := q.Query(ctx, query, specID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query absences: %w", err)
	}
	defer rows.Close()

	var absences []*education.Absence
	for rows.Next() {
		a, err := scanAbsence(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan absence: %w", err)
		}
		absences = append(absences, a)
	}
	return absences, rows.Err()
}

// Create persists a new absence.
func (r *AbsenceRepository) Create(ctx context.Context, a *education.Absence) error {
	q := r.conn.querier(ctx)

	query := `
		INSERT INTO absences (
			id, specialization_id, absence_type, start_date, end_date, description,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := q.Exec(ctx, query,
		a.ID.String(), a.SpecializationID.String(), string(a.Type),
		a.Dates.Start, a.Dates.End, a.Description,
		a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert absence: %w", err)
	}
	return nil
}

func scanAbsence(row rowScanner) (*education.Absence, error) {
	var a education.Absence
	var specID, absenceType string
	var startDate, endDate time.Time

	err := row.Scan(
		&a.ID, &specID, &absenceType, &startDate, &endDate, &a.Description,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	a.SpecializationID = shared.SpecializationID(specID)
	a.Type = education.AbsenceType(absenceType)
	a.Dates = shared.DateRange{Start: shared.DateOnly(startDate), End: shared.DateOnly(endDate)}
	return &a, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// SELF-EDUCATION REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// SelfEducationRepository implements education.SelfEducationRepository for PostgreSQL.
type SelfEducationRepository struct {
	conn *Connection
}

// NewSelfEducationRepository creates a new SelfEducationRepository.
func NewSelfEducationRepository(conn *Connection) *SelfEducationRepository {
	return &SelfEducationRepository{conn: conn}
}

const selfEducationColumns = `
	id, specialization_id, module_id, internship_id, start_date, end_date,
	calendar_year, days, purpose, event_name, sync_status, created_at, updated_at
`

// FindByID retrieves an entry.
func (r *SelfEducationRepository) FindByID(ctx context.Context, id shared.SelfEducationID) (*education.SelfEducationDays, error) {
	q := r.conn.querier(ctx)

	query := fmt.Sprintf(`SELECT %s FROM self_education_days WHERE id = $1`, selfEducationColumns)
	e, err := scanSelfEducation(q.QueryRow(ctx, query, id.String()))
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.NewDomainError("education", "FindSelfEducation", shared.ErrNotFound,
				"self-education entry not found")
		}
		return nil, fmt.Errorf("failed to query self-education entry: %w", err)
	}
	return e, nil
}

// FindByModule retrieves all entries of a module.
func (r *SelfEducationRepository) FindByModule(ctx context.Context, moduleID shared.ModuleID) ([]*education.SelfEducationDays, error) {
	q := r.conn.querier(ctx)

	query := fmt.Sprintf(`SELECT %s FROM self_education_days WHERE module_id = $1 ORDER BY calendar_year, created_at`, selfEducationColumns)
	rows, err := q.Query(ctx, query, moduleID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query self-education entries: %w", err)
	}
	defer rows.Close()

	var entries []*education.SelfEducationDays
	for rows.Next() {
		e, err := scanSelfEducation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan self-education entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// SumDays sums the days drawn from a module's pool in one calendar year.
func (r *SelfEducationRepository) SumDays(ctx context.Context, moduleID shared.ModuleID, year int) (int, error) {
	q := r.conn.querier(ctx)

	var total int
	query := `SELECT COALESCE(SUM(days), 0) FROM self_education_days WHERE module_id = $1 AND calendar_year = $2`
	if err := q.QueryRow(ctx, query, moduleID.String(), year).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum self-education days: %w", err)
	}
	return total, nil
}

// Save persists the entry.
func (r *SelfEducationRepository) Save(ctx context.Context, e *education.SelfEducationDays) error {
	q := r.conn.querier(ctx)

	query := `
		UPDATE self_education_days
		SET start_date = $1, end_date = $2, calendar_year = $3, days = $4,
		    purpose = $5, event_name = $6, sync_status = $7, updated_at = $8
		WHERE id = $9
	`
	tag, err := q.Exec(ctx, query,
		e.Dates.Start, e.Dates.End, e.Year, e.Days, e.Purpose, e.EventName,
		e.SyncStatus.String(), e.UpdatedAt,
		e.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to update self-education entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.NewDomainError("education", "SaveSelfEducation", shared.ErrNotFound,
			"self-education entry not found")
	}
	return nil
}

// Create persists a new entry.
func (r *SelfEducationRepository) Create(ctx context.Context, e *education.SelfEducationDays) error {
	q := r.conn.querier(ctx)

	query := `
		INSERT INTO self_education_days (
			id, specialization_id, module_id, internship_id, start_date, end_date,
			calendar_year, days, purpose, event_name, sync_status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := q.Exec(ctx, query,
		e.ID.String(), e.SpecializationID.String(), e.ModuleID.String(), e.InternshipID.String(),
		e.Dates.Start, e.Dates.End, e.Year, e.Days, e.Purpose, e.EventName,
		e.SyncStatus.String(), e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert self-education entry: %w", err)
	}
	return nil
}

func scanSelfEducation(row rowScanner) (*education.SelfEducationDays, error) {
	var e education.SelfEducationDays
	var specID, moduleID, internshipID, syncStatus string
	var startDate, endDate time.Time

	err := row.Scan(
		&e.ID, &specID, &moduleID, &internshipID, &startDate, &endDate,
		&e.Year, &e.Days, &e.Purpose, &e.EventName,
		&syncStatus, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	e.SpecializationID = shared.SpecializationID(specID)
	e.ModuleID = shared.ModuleID(moduleID)
	e.InternshipID = shared.InternshipID(internshipID)
	e.Dates = shared.DateRange{Start: shared.DateOnly(startDate), End: shared.DateOnly(endDate)}
	e.SyncStatus = shared.SyncStatus(syncStatus)
	return &e, nil
}
