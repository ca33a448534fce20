package specialization

import (
	"context"

	"github.com/sledzspecke/smk-progress-hub/internal/domain/shared"
)

// Repository provides access to specialization aggregates.
type Repository interface {
	// FindByID retrieves a specialization with its modules.
	FindByID(ctx context.Context, id shared.SpecializationID) (*Specialization, error)

	// FindByUser retrieves all specializations of a physician.
	FindByUser(ctx context.Context, userID shared.UserID) ([]*Specialization, error)

	// Save persists the aggregate. The stored Version must match the
	// aggregate's Version; on mismatch Save fails with ErrConcurrencyConflict
	// and the caller reloads and retries.
	Save(ctx context.Context, s *Specialization) error

	// Create persists a new aggregate.
	Create(ctx context.Context, s *Specialization) error
}

// UnitOfWork runs a function inside one transaction. Repositories obtained
// from the scope share that transaction.
type UnitOfWork interface {
	// WithinTx executes fn transactionally. A returned error rolls back.
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ═══════════════════════════════════════════════════════════════════════════
// Curriculum Templates
// ═══════════════════════════════════════════════════════════════════════════

// ProcedureRequirementTemplate is one procedure line of a curriculum:
// a code with required counts per role and its simulation allowance.
type ProcedureRequirementTemplate struct {
	Code              string `json:"code"`
	Name              string `json:"name"`
	RequiredOperator  int    `json:"required_operator"`
	RequiredAssistant int    `json:"required_assistant"`

	// Year pins the requirement to an Old-SMK training year; 0 means any.
	Year int `json:"year,omitempty"`

	// DailyLimit caps realizations per calendar day; 0 means unlimited.
	DailyLimit int `json:"daily_limit,omitempty"`

	AllowsSimulation bool `json:"allows_simulation,omitempty"`

	// SimulationLimitPercent overrides the program-wide simulation share
	// for this requirement; 0 falls back to the policy value.
	SimulationLimitPercent int `json:"simulation_limit_percent,omitempty"`
}

// ModuleTemplate is one module's section of a curriculum template.
type ModuleTemplate struct {
	Kind              shared.ModuleKind              `json:"kind"`
	Name              string                         `json:"name"`
	DurationMonths    int                            `json:"duration_months"`
	Internships       int                            `json:"internships"`
	Courses           int                            `json:"courses"`
	ShiftHours        int                            `json:"shift_hours"`
	MonthlyShiftHours int                            `json:"monthly_shift_hours,omitempty"`
	SelfEducationDays int                            `json:"self_education_days,omitempty"`
	Procedures        []ProcedureRequirementTemplate `json:"procedures"`
}

// Requirements folds the template into the module requirement totals.
func (t ModuleTemplate) Requirements() ModuleRequirements {
	req := ModuleRequirements{
		Internships:       t.Internships,
		Courses:           t.Courses,
		ShiftHours:        t.ShiftHours,
		MonthlyShiftHours: t.MonthlyShiftHours,
		SelfEducationDays: t.SelfEducationDays,
	}
	for _, p := range t.Procedures {
		req.ProceduresOperator += p.RequiredOperator
		req.ProceduresAssistant += p.RequiredAssistant
	}
	return req
}

// CurriculumTemplate is the published program definition a specialization is
// instantiated from.
type CurriculumTemplate struct {
	ProgramCode   string            `json:"program_code"`
	Name          string            `json:"name"`
	SmkVersion    shared.SmkVersion `json:"smk_version"`
	DurationYears int               `json:"duration_years"`
	Modules       []ModuleTemplate  `json:"modules"`
}

// HasBasicModule reports whether the curriculum includes a basic module.
func (t CurriculumTemplate) HasBasicModule() bool {
	for _, m := range t.Modules {
		if m.Kind == shared.ModuleBasic {
			return true
		}
	}
	return false
}

// ProcedureTemplates flattens all procedure requirement lines.
func (t CurriculumTemplate) ProcedureTemplates() []ProcedureRequirementTemplate {
	var out []ProcedureRequirementTemplate
	for _, m := range t.Modules {
		out = append(out, m.Procedures...)
	}
	return out
}

// TemplateProvider serves curriculum templates. Implementations own their
// caching; callers treat every Get as cheap.
type TemplateProvider interface {
	// Get retrieves the template for a program code and registry variant.
	Get(ctx context.Context, programCode string, version shared.SmkVersion) (*CurriculumTemplate, error)
}
