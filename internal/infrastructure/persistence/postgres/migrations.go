package postgres

// GetMigrations returns all embedded migrations in order.
func GetMigrations() []Migration {
	return []Migration{
		{Version: 1, Name: "create_specializations", UpSQL: migration001Up, DownSQL: migration001Down},
		{Version: 2, Name: "create_duty_tracking", UpSQL: migration002Up, DownSQL: migration002Down},
		{Version: 3, Name: "create_procedures", UpSQL: migration003Up, DownSQL: migration003Down},
		{Version: 4, Name: "create_education", UpSQL: migration004Up, DownSQL: migration004Down},
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: CREATE SPECIALIZATIONS
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
-- Migration: Create specialization and module tables
-- Version: 001

CREATE TABLE IF NOT EXISTS specializations (
    id UUID PRIMARY KEY,
    user_id VARCHAR(100) NOT NULL,
    name VARCHAR(200) NOT NULL,
    program_code VARCHAR(50) NOT NULL,
    smk_version VARCHAR(10) NOT NULL,
    planned_start DATE NOT NULL,
    planned_end DATE NOT NULL,
    calculated_end DATE NOT NULL,
    duration_years INTEGER NOT NULL,
    has_basic_module BOOLEAN NOT NULL DEFAULT FALSE,
    current_module_id UUID,
    version INTEGER NOT NULL DEFAULT 1,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_smk_version CHECK (smk_version IN ('old', 'new')),
    CONSTRAINT valid_duration CHECK (duration_years BETWEEN 1 AND 6),
    CONSTRAINT valid_planned_window CHECK (planned_start <= planned_end)
);

CREATE INDEX IF NOT EXISTS idx_specializations_user ON specializations(user_id);
CREATE INDEX IF NOT EXISTS idx_specializations_program ON specializations(program_code);

CREATE TABLE IF NOT EXISTS modules (
    id UUID PRIMARY KEY,
    specialization_id UUID NOT NULL REFERENCES specializations(id) ON DELETE CASCADE,
    kind VARCHAR(20) NOT NULL,
    name VARCHAR(200) NOT NULL,
    state VARCHAR(20) NOT NULL DEFAULT 'draft',
    start_date DATE,
    end_date DATE,

    -- Requirement totals copied from the curriculum template.
    req_internships INTEGER NOT NULL DEFAULT 0,
    req_courses INTEGER NOT NULL DEFAULT 0,
    req_procedures_operator INTEGER NOT NULL DEFAULT 0,
    req_procedures_assistant INTEGER NOT NULL DEFAULT 0,
    req_shift_hours INTEGER NOT NULL DEFAULT 0,
    req_self_education_days INTEGER NOT NULL DEFAULT 0,
    req_monthly_shift_hours INTEGER NOT NULL DEFAULT 0,

    started_at TIMESTAMP WITH TIME ZONE,
    completed_at TIMESTAMP WITH TIME ZONE,
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_module_kind CHECK (kind IN ('basic', 'specialist')),
    CONSTRAINT valid_module_state CHECK (state IN ('draft', 'in_progress', 'completed'))
);

CREATE INDEX IF NOT EXISTS idx_modules_specialization ON modules(specialization_id);
CREATE INDEX IF NOT EXISTS idx_modules_state ON modules(state) WHERE state = 'in_progress';
`

const migration001Down = `
DROP TABLE IF EXISTS modules;
DROP TABLE IF EXISTS specializations;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: CREATE DUTY TRACKING
// ══════════════════════════════════════════════════════════════════════════════

const migration002Up = `
-- Migration: Create internship and medical shift tables
-- Version: 002

CREATE TABLE IF NOT EXISTS internships (
    id UUID PRIMARY KEY,
    specialization_id UUID NOT NULL REFERENCES specializations(id) ON DELETE CASCADE,
    module_id UUID REFERENCES modules(id) ON DELETE SET NULL,
    training_year INTEGER NOT NULL DEFAULT 0,
    name VARCHAR(200) NOT NULL,
    institution VARCHAR(200) NOT NULL DEFAULT '',
    department VARCHAR(200) NOT NULL DEFAULT '',
    start_date DATE NOT NULL,
    end_date DATE NOT NULL,
    completed BOOLEAN NOT NULL DEFAULT FALSE,
    sync_status VARCHAR(20) NOT NULL DEFAULT 'not_synced',
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_internship_sync CHECK (sync_status IN ('not_synced', 'modified', 'synced', 'approved')),
    CONSTRAINT valid_internship_window CHECK (start_date <= end_date),
    CONSTRAINT valid_internship_year CHECK (training_year BETWEEN 0 AND 6)
);

CREATE INDEX IF NOT EXISTS idx_internships_specialization ON internships(specialization_id);
CREATE INDEX IF NOT EXISTS idx_internships_module ON internships(module_id);

CREATE TABLE IF NOT EXISTS medical_shifts (
    id UUID PRIMARY KEY,
    internship_id UUID NOT NULL REFERENCES internships(id) ON DELETE CASCADE,
    specialization_id UUID NOT NULL REFERENCES specializations(id) ON DELETE CASCADE,
    user_id VARCHAR(100) NOT NULL,
    shift_date DATE NOT NULL,

    -- Duration is stored normalized as total minutes; denormalized input
    -- ("7h 75min") is collapsed before it reaches persistence.
    duration_minutes INTEGER NOT NULL,

    location VARCHAR(200) NOT NULL DEFAULT '',
    training_year INTEGER NOT NULL DEFAULT 0,
    module_id UUID REFERENCES modules(id) ON DELETE SET NULL,
    sync_status VARCHAR(20) NOT NULL DEFAULT 'not_synced',
    approved_at TIMESTAMP WITH TIME ZONE,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_shift_sync CHECK (sync_status IN ('not_synced', 'modified', 'synced', 'approved')),
    CONSTRAINT valid_shift_duration CHECK (duration_minutes >= 60),
    CONSTRAINT valid_shift_year CHECK (training_year BETWEEN 0 AND 6)
);

CREATE INDEX IF NOT EXISTS idx_shifts_specialization ON medical_shifts(specialization_id);
CREATE INDEX IF NOT EXISTS idx_shifts_internship ON medical_shifts(internship_id);
CREATE INDEX IF NOT EXISTS idx_shifts_module ON medical_shifts(module_id);
CREATE INDEX IF NOT EXISTS idx_shifts_date ON medical_shifts(specialization_id, shift_date);
CREATE INDEX IF NOT EXISTS idx_shifts_pending_sync ON medical_shifts(specialization_id)
    WHERE sync_status IN ('not_synced', 'modified');
`

const migration002Down = `
DROP TABLE IF EXISTS medical_shifts;
DROP TABLE IF EXISTS internships;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 003: CREATE PROCEDURES
// ══════════════════════════════════════════════════════════════════════════════

const migration003Up = `
-- Migration: Create procedure requirement and realization tables
-- Version: 003

CREATE TABLE IF NOT EXISTS procedure_requirements (
    id UUID PRIMARY KEY,
    module_id UUID NOT NULL REFERENCES modules(id) ON DELETE CASCADE,
    code VARCHAR(50) NOT NULL,
    name VARCHAR(300) NOT NULL,
    required_operator INTEGER NOT NULL DEFAULT 0,
    required_assistant INTEGER NOT NULL DEFAULT 0,
    training_year INTEGER NOT NULL DEFAULT 0,
    daily_limit INTEGER NOT NULL DEFAULT 0,
    allows_simulation BOOLEAN NOT NULL DEFAULT FALSE,
    simulation_limit_percent INTEGER NOT NULL DEFAULT 0,

    UNIQUE(module_id, code),
    CONSTRAINT valid_requirement_counts CHECK (required_operator >= 0 AND required_assistant >= 0),
    CONSTRAINT valid_requirement_year CHECK (training_year BETWEEN 0 AND 6)
);

CREATE INDEX IF NOT EXISTS idx_requirements_module ON procedure_requirements(module_id);
CREATE INDEX IF NOT EXISTS idx_requirements_code ON procedure_requirements(code);

CREATE TABLE IF NOT EXISTS procedure_realizations (
    id UUID PRIMARY KEY,
    requirement_id UUID NOT NULL REFERENCES procedure_requirements(id) ON DELETE CASCADE,
    specialization_id UUID NOT NULL REFERENCES specializations(id) ON DELETE CASCADE,
    user_id VARCHAR(100) NOT NULL,
    code VARCHAR(50) NOT NULL,
    role VARCHAR(20) NOT NULL,
    performed_on DATE NOT NULL,
    simulated BOOLEAN NOT NULL DEFAULT FALSE,
    location VARCHAR(200) NOT NULL DEFAULT '',
    training_year INTEGER NOT NULL DEFAULT 0,
    module_id UUID REFERENCES modules(id) ON DELETE SET NULL,

    -- Flagged duplicates stay counted until a reviewer resolves them.
    duplicate_of UUID REFERENCES procedure_realizations(id) ON DELETE SET NULL,

    sync_status VARCHAR(20) NOT NULL DEFAULT 'not_synced',
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_realization_role CHECK (role IN ('operator', 'assistant')),
    CONSTRAINT valid_realization_sync CHECK (sync_status IN ('not_synced', 'modified', 'synced', 'approved')),
    CONSTRAINT valid_realization_year CHECK (training_year BETWEEN 0 AND 6)
);

CREATE INDEX IF NOT EXISTS idx_realizations_specialization ON procedure_realizations(specialization_id);
CREATE INDEX IF NOT EXISTS idx_realizations_code ON procedure_realizations(specialization_id, code);
CREATE INDEX IF NOT EXISTS idx_realizations_module ON procedure_realizations(module_id);
CREATE INDEX IF NOT EXISTS idx_realizations_date ON procedure_realizations(specialization_id, code, performed_on);
CREATE INDEX IF NOT EXISTS idx_realizations_pending_sync ON procedure_realizations(specialization_id)
    WHERE sync_status IN ('not_synced', 'modified');
`

const migration003Down = `
DROP TABLE IF EXISTS procedure_realizations;
DROP TABLE IF EXISTS procedure_requirements;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 004: CREATE EDUCATION
// ══════════════════════════════════════════════════════════════════════════════

const migration004Up = `
-- Migration: Create course, absence, and self-education tables
-- Version: 004

CREATE TABLE IF NOT EXISTS courses (
    id UUID PRIMARY KEY,
    specialization_id UUID NOT NULL REFERENCES specializations(id) ON DELETE CASCADE,
    module_id UUID REFERENCES modules(id) ON DELETE SET NULL,
    training_year INTEGER NOT NULL DEFAULT 0,
    name VARCHAR(300) NOT NULL,
    course_number VARCHAR(100) NOT NULL DEFAULT '',
    institution VARCHAR(200) NOT NULL DEFAULT '',
    course_date DATE NOT NULL,
    certificate_number VARCHAR(100) NOT NULL DEFAULT '',
    completed BOOLEAN NOT NULL DEFAULT FALSE,
    sync_status VARCHAR(20) NOT NULL DEFAULT 'not_synced',
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_course_sync CHECK (sync_status IN ('not_synced', 'modified', 'synced', 'approved')),
    CONSTRAINT valid_course_year CHECK (training_year BETWEEN 0 AND 6)
);

CREATE INDEX IF NOT EXISTS idx_courses_specialization ON courses(specialization_id);
CREATE INDEX IF NOT EXISTS idx_courses_module ON courses(module_id);

CREATE TABLE IF NOT EXISTS absences (
    id UUID PRIMARY KEY,
    specialization_id UUID NOT NULL REFERENCES specializations(id) ON DELETE CASCADE,
    absence_type VARCHAR(30) NOT NULL,
    start_date DATE NOT NULL,
    end_date DATE NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_absence_type CHECK (absence_type IN
        ('sick_leave', 'maternity_leave', 'unpaid_leave', 'vacation', 'self_education_leave')),
    CONSTRAINT valid_absence_window CHECK (start_date <= end_date)
);

CREATE INDEX IF NOT EXISTS idx_absences_specialization ON absences(specialization_id);

CREATE TABLE IF NOT EXISTS self_education_days (
    id UUID PRIMARY KEY,
    specialization_id UUID NOT NULL REFERENCES specializations(id) ON DELETE CASCADE,
    module_id UUID NOT NULL REFERENCES modules(id) ON DELETE CASCADE,
    internship_id UUID NOT NULL REFERENCES internships(id) ON DELETE CASCADE,
    start_date DATE NOT NULL,
    end_date DATE NOT NULL,
    calendar_year INTEGER NOT NULL,
    days INTEGER NOT NULL,
    purpose VARCHAR(300) NOT NULL DEFAULT '',
    event_name VARCHAR(300) NOT NULL DEFAULT '',
    sync_status VARCHAR(20) NOT NULL DEFAULT 'not_synced',
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_self_education_sync CHECK (sync_status IN ('not_synced', 'modified', 'synced', 'approved')),
    CONSTRAINT valid_self_education_window CHECK (start_date <= end_date),
    CONSTRAINT valid_self_education_days CHECK (days > 0),
    CONSTRAINT valid_self_education_year CHECK (calendar_year BETWEEN 2000 AND 2100)
);

CREATE INDEX IF NOT EXISTS idx_self_education_module ON self_education_days(module_id);
CREATE INDEX IF NOT EXISTS idx_self_education_module_year ON self_education_days(module_id, calendar_year);
`

const migration004Down = `
DROP TABLE IF EXISTS self_education_days;
DROP TABLE IF EXISTS absences;
DROP TABLE IF EXISTS courses;
`
