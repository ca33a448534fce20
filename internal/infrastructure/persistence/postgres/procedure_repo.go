package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/sledzspecke/smk-progress-hub/internal/domain/procedure"
	"github.com/sledzspecke/smk-progress-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// REQUIREMENT REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// RequirementRepository implements procedure.RequirementRepository for PostgreSQL.
type RequirementRepository struct {
	conn *Connection
}

// NewRequirementRepository creates a new RequirementRepository.
func NewRequirementRepository(conn *Connection) *RequirementRepository {
	return &RequirementRepository{conn: conn}
}

const requirementColumns = `
	id, module_id, code, name, required_operator, required_assistant,
	training_year, daily_limit, allows_simulation, simulation_limit_percent
`

// FindByID retrieves a requirement.
func (r *RequirementRepository) FindByID(ctx context.Context, id shared.RequirementID) (*procedure.Requirement, error) {
	q := r.conn.querier(ctx)

	query := fmt.Sprintf(`SELECT %s FROM procedure_requirements WHERE id = $1`, requirementColumns)
	req, err := scanRequirement(q.QueryRow(ctx, query, id.String()))
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrRequirementNotFound
		}
		return nil, fmt.Errorf("failed to query requirement: %w", err)
	}
	return req, nil
}

// FindByCode retrieves the requirement matching a procedure code within a module.
func (r *RequirementRepository) FindByCode(ctx context.Context, moduleID shared.ModuleID, code string) (*procedure.Requirement, error) {
	q := r.conn.querier(ctx)

	query := fmt.Sprintf(`SELECT %s FROM procedure_requirements WHERE module_id = $1 AND code = $2`, requirementColumns)
	req, err := scanRequirement(q.QueryRow(ctx, query, moduleID.String(), code))
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrRequirementNotFound
		}
		return nil, fmt.Errorf("failed to query requirement by code: %w", err)
	}
	return req, nil
}

// FindByModule retrieves all requirements of a module.
func (r *RequirementRepository) FindByModule(ctx context.Context, moduleID shared.ModuleID) ([]*procedure.Requirement, error) {
	q := r.conn.querier(ctx)

	query := fmt.Sprintf(`SELECT %s FROM procedure_requirements WHERE module_id = $1 ORDER BY code`, requirementColumns)
	rows, err := q.Query(ctx, query, moduleID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query requirements: %w", err)
	}
	defer rows.Close()

	var reqs []*procedure.Requirement
	for rows.Next() {
		req, err := scanRequirement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan requirement: %w", err)
		}
		reqs = append(reqs, req)
	}
	return reqs, rows.Err()
}

// CreateBatch persists the requirements instantiated from a template.
func (r *RequirementRepository) CreateBatch(ctx context.Context, reqs []*procedure.Requirement) error {
	q := r.conn.querier(ctx)

	query := `
		INSERT INTO procedure_requirements (
			id, module_id, code, name, required_operator, required_assistant,
			training_year, daily_limit, allows_simulation, simulation_limit_percent
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	for _, req := range reqs {
		_, err := q.Exec(ctx, query,
			req.ID.String(), req.ModuleID.String(), req.Code, req.Name,
			req.RequiredOperator, req.RequiredAssistant,
			req.Year.Int(), req.DailyLimit, req.AllowsSimulation, req.SimulationLimitPercent,
		)
		if err != nil {
			return fmt.Errorf("failed to insert requirement %s: %w", req.Code, err)
		}
	}
	return nil
}

func scanRequirement(row rowScanner) (*procedure.Requirement, error) {
	var req procedure.Requirement
	var moduleID string
	var trainingYear int

	err := row.Scan(
		&req.ID, &moduleID, &req.Code, &req.Name,
		&req.RequiredOperator, &req.RequiredAssistant,
		&trainingYear, &req.DailyLimit, &req.AllowsSimulation, &req.SimulationLimitPercent,
	)
	if err != nil {
		return nil, err
	}

	req.ModuleID = shared.ModuleID(moduleID)
	req.Year = shared.TrainingYear(trainingYear)
	return &req, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// REALIZATION REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// RealizationRepository implements procedure.RealizationRepository for PostgreSQL.
type RealizationRepository struct {
	conn *Connection
}

// NewRealizationRepository creates a new RealizationRepository.
func NewRealizationRepository(conn *Connection) *RealizationRepository {
	return &RealizationRepository{conn: conn}
}

const realizationColumns = `
	id, requirement_id, specialization_id, user_id, code, role, performed_on,
	simulated, location, training_year, module_id, duplicate_of, sync_status,
	created_at, updated_at
`

// FindByID retrieves a realization.
func (r *RealizationRepository) FindByID(ctx context.Context, id shared.RealizationID) (*procedure.Realization, error) {
	q := r.conn.querier(ctx)

	query := fmt.Sprintf(`SELECT %s FROM procedure_realizations WHERE id = $1`, realizationColumns)
	rz, err := scanRealization(q.QueryRow(ctx, query, id.String()))
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrRealizationNotFound
		}
		return nil, fmt.Errorf("failed to query realization: %w", err)
	}
	return rz, nil
}

// FindBySpecialization retrieves all realizations of a specialization.
func (r *RealizationRepository) FindBySpecialization(ctx context.Context, specID shared.SpecializationID) ([]*procedure.Realization, error) {
	query := fmt.Sprintf(`SELECT %s FROM procedure_realizations WHERE specialization_id = $1 ORDER BY performed_on`, realizationColumns)
	return r.queryRealizations(ctx, query, specID.String())
}

// FindByCode retrieves the realizations of one procedure code.
func (r *RealizationRepository) FindByCode(ctx context.Context, specID shared.SpecializationID, code string) ([]*procedure.Realization, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM procedure_realizations
		WHERE specialization_id = $1 AND code = $2
		ORDER BY performed_on`, realizationColumns)
	return r.queryRealizations(ctx, query, specID.String(), code)
}

// FindByModule retrieves the realizations bucketed under a module.
func (r *RealizationRepository) FindByModule(ctx context.Context, moduleID shared.ModuleID) ([]*procedure.Realization, error) {
	query := fmt.Sprintf(`SELECT %s FROM procedure_realizations WHERE module_id = $1 ORDER BY performed_on`, realizationColumns)
	return r.queryRealizations(ctx, query, moduleID.String())
}

// CountByCode counts realizations of one code, any role.
func (r *RealizationRepository) CountByCode(ctx context.Context, specID shared.SpecializationID, code string) (int, error) {
	q := r.conn.querier(ctx)

	var count int
	query := `SELECT COUNT(*) FROM procedure_realizations WHERE specialization_id = $1 AND code = $2`
	if err := q.QueryRow(ctx, query, specID.String(), code).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count realizations: %w", err)
	}
	return count, nil
}

// FindPendingSync retrieves realizations awaiting a registry push.
func (r *RealizationRepository) FindPendingSync(ctx context.Context, specID shared.SpecializationID) ([]*procedure.Realization, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM procedure_realizations
		WHERE specialization_id = $1 AND sync_status IN ('not_synced', 'modified')
		ORDER BY performed_on`, realizationColumns)
	return r.queryRealizations(ctx, query, specID.String())
}

// Save persists the realization.
func (r *RealizationRepository) Save(ctx context.Context, rz *procedure.Realization) error {
	q := r.conn.querier(ctx)

	query := `
		UPDATE procedure_realizations
		SET role = $1, performed_on = $2, simulated = $3, location = $4,
		    training_year = $5, module_id = $6, duplicate_of = $7,
		    sync_status = $8, updated_at = $9
		WHERE id = $10
	`
	tag, err := q.Exec(ctx, query,
		rz.Role.String(), rz.Date, rz.Simulated, rz.Location,
		rz.Year.Int(), nullString(rz.ModuleID.String()), nullString(rz.DuplicateOf.String()),
		rz.SyncStatus.String(), rz.UpdatedAt,
		rz.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to update realization: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrRealizationNotFound
	}
	return nil
}

// Create persists a new realization.
func (r *RealizationRepository) Create(ctx context.Context, rz *procedure.Realization) error {
	q := r.conn.querier(ctx)

	query := `
		INSERT INTO procedure_realizations (
			id, requirement_id, specialization_id, user_id, code, role, performed_on,
			simulated, location, training_year, module_id, duplicate_of, sync_status,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err := q.Exec(ctx, query,
		rz.ID.String(), rz.RequirementID.String(), rz.SpecializationID.String(), rz.UserID.String(),
		rz.Code, rz.Role.String(), rz.Date,
		rz.Simulated, rz.Location, rz.Year.Int(),
		nullString(rz.ModuleID.String()), nullString(rz.DuplicateOf.String()), rz.SyncStatus.String(),
		rz.CreatedAt, rz.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert realization: %w", err)
	}
	return nil
}

func (r *RealizationRepository) queryRealizations(ctx context.Context, query string, args ...interface{}) ([]*procedure.Realization, error) {
	q := r.conn.querier(ctx)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query realizations: %w", err)
	}
	defer rows.Close()

	var rzs []*procedure.Realization
	for rows.Next() {
		rz, err := scanRealization(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan realization: %w", err)
		}
		rzs = append(rzs, rz)
	}
	return rzs, rows.Err()
}

func scanRealization(row rowScanner) (*procedure.Realization, error) {
	var rz procedure.Realization
	var requirementID, specID, userID, role, syncStatus string
	var moduleID, duplicateOf *string
	var trainingYear int
	var performedOn time.Time

	err := row.Scan(
		&rz.ID, &requirementID, &specID, &userID, &rz.Code, &role, &performedOn,
		&rz.Simulated, &rz.Location, &trainingYear, &moduleID, &duplicateOf, &syncStatus,
		&rz.CreatedAt, &rz.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	rz.RequirementID = shared.RequirementID(requirementID)
	rz.SpecializationID = shared.SpecializationID(specID)
	rz.UserID = shared.UserID(userID)
	rz.Role = shared.ProcedureRole(role)
	rz.Date = shared.DateOnly(performedOn)
	rz.Year = shared.TrainingYear(trainingYear)
	rz.SyncStatus = shared.SyncStatus(syncStatus)
	if moduleID != nil {
		rz.ModuleID = shared.ModuleID(*moduleID)
	}
	if duplicateOf != nil {
		rz.DuplicateOf = shared.RealizationID(*duplicateOf)
	}
	return &rz, nil
}
