package command

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sledzspecke/smk-progress-hub/internal/domain/education"
	"github.com/sledzspecke/smk-progress-hub/internal/domain/internship"
	"github.com/sledzspecke/smk-progress-hub/internal/domain/procedure"
	"github.com/sledzspecke/smk-progress-hub/internal/domain/shared"
	"github.com/sledzspecke/smk-progress-hub/internal/domain/shift"
	"github.com/sledzspecke/smk-progress-hub/internal/domain/specialization"
)

// In-memory fakes for the repository ports. Handlers are tested against
// these; the SQL implementations have their own integration coverage.

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// newOldSmkSpec builds a year-bucketed cardiology enrollment with a basic and
// a specialist module, planned 2020 through 2024.
func newOldSmkSpec(t *testing.T) (*specialization.Specialization, *specialization.Module, *specialization.Module) {
	t.Helper()
	planned, err := shared.NewDateRange(day(2020, time.January, 1), day(2024, time.December, 31))
	require.NoError(t, err)

	spec, err := specialization.NewSpecialization("user-1", "Kardiologia", "0709", shared.SmkOld, planned, 5)
	require.NoError(t, err)
	spec.HasBasicModule = true

	basic, err := specialization.NewModule(shared.ModuleBasic, "Modul podstawowy", specialization.ModuleRequirements{
		Internships: 1, Courses: 1, ProceduresOperator: 1, ShiftHours: 2,
	})
	require.NoError(t, err)
	specialist, err := specialization.NewModule(shared.ModuleSpecialist, "Modul specjalistyczny", specialization.ModuleRequirements{
		Internships: 2, Courses: 2, ProceduresOperator: 5, ShiftHours: 4,
	})
	require.NoError(t, err)

	spec.AddModule(basic)
	spec.AddModule(specialist)
	return spec, basic, specialist
}

func newShiftForTest(internshipID shared.InternshipID, spec *specialization.Specialization, date time.Time, duration shared.ShiftDuration) (*shift.MedicalShift, error) {
	return shift.New(internshipID, spec.ID, spec.UserID, date, duration, "SOR")
}

// ─── specialization ──────────────────────────────────────────────────────────

type fakeSpecRepo struct {
	specs map[shared.SpecializationID]*specialization.Specialization
	saves int
}

func newFakeSpecRepo(specs ...*specialization.Specialization) *fakeSpecRepo {
	r := &fakeSpecRepo{specs: make(map[shared.SpecializationID]*specialization.Specialization)}
	for _, s := range specs {
		r.specs[s.ID] = s
	}
	return r
}

func (r *fakeSpecRepo) FindByID(ctx context.Context, id shared.SpecializationID) (*specialization.Specialization, error) {
	s, ok := r.specs[id]
	if !ok {
		return nil, shared.ErrSpecializationNotFound
	}
	return s, nil
}

func (r *fakeSpecRepo) FindByUser(ctx context.Context, userID shared.UserID) ([]*specialization.Specialization, error) {
	var out []*specialization.Specialization
	for _, s := range r.specs {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeSpecRepo) Save(ctx context.Context, s *specialization.Specialization) error {
	if _, ok := r.specs[s.ID]; !ok {
		return shared.ErrSpecializationNotFound
	}
	r.specs[s.ID] = s
	r.saves++
	return nil
}

func (r *fakeSpecRepo) Create(ctx context.Context, s *specialization.Specialization) error {
	r.specs[s.ID] = s
	return nil
}

type fakeTemplates struct {
	templates map[string]*specialization.CurriculumTemplate
}

func (p *fakeTemplates) Get(ctx context.Context, programCode string, version shared.SmkVersion) (*specialization.CurriculumTemplate, error) {
	tmpl, ok := p.templates[version.String()+":"+programCode]
	if !ok {
		return nil, shared.ErrTemplateNotFound
	}
	return tmpl, nil
}

type fakeUnitOfWork struct{}

func (fakeUnitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// ─── internship ──────────────────────────────────────────────────────────────

type fakeInternshipRepo struct {
	items     map[shared.InternshipID]*internship.Internship
	completed map[shared.ModuleID]int
}

func newFakeInternshipRepo(items ...*internship.Internship) *fakeInternshipRepo {
	r := &fakeInternshipRepo{
		items:     make(map[shared.InternshipID]*internship.Internship),
		completed: make(map[shared.ModuleID]int),
	}
	for _, i := range items {
		r.items[i.ID] = i
	}
	return r
}

func (r *fakeInternshipRepo) FindByID(ctx context.Context, id shared.InternshipID) (*internship.Internship, error) {
	i, ok := r.items[id]
	if !ok {
		return nil, shared.ErrInternshipNotFound
	}
	return i, nil
}

func (r *fakeInternshipRepo) FindBySpecialization(ctx context.Context, specID shared.SpecializationID) ([]*internship.Internship, error) {
	var out []*internship.Internship
	for _, i := range r.items {
		if i.SpecializationID == specID {
			out = append(out, i)
		}
	}
	return out, nil
}

func (r *fakeInternshipRepo) FindByModule(ctx context.Context, moduleID shared.ModuleID) ([]*internship.Internship, error) {
	var out []*internship.Internship
	for _, i := range r.items {
		if i.ModuleID == moduleID {
			out = append(out, i)
		}
	}
	return out, nil
}

func (r *fakeInternshipRepo) CountCompleted(ctx context.Context, moduleID shared.ModuleID) (int, error) {
	return r.completed[moduleID], nil
}

func (r *fakeInternshipRepo) Save(ctx context.Context, i *internship.Internship) error {
	r.items[i.ID] = i
	return nil
}

func (r *fakeInternshipRepo) Create(ctx context.Context, i *internship.Internship) error {
	r.items[i.ID] = i
	return nil
}

// ─── shift ───────────────────────────────────────────────────────────────────

type fakeShiftRepo struct {
	shifts        map[shared.ShiftID]*shift.MedicalShift
	moduleMinutes map[shared.ModuleID]int
}

func newFakeShiftRepo(shifts ...*shift.MedicalShift) *fakeShiftRepo {
	r := &fakeShiftRepo{
		shifts:        make(map[shared.ShiftID]*shift.MedicalShift),
		moduleMinutes: make(map[shared.ModuleID]int),
	}
	for _, s := range shifts {
		r.shifts[s.ID] = s
	}
	return r
}

func (r *fakeShiftRepo) FindByID(ctx context.Context, id shared.ShiftID) (*shift.MedicalShift, error) {
	s, ok := r.shifts[id]
	if !ok {
		return nil, shared.ErrShiftNotFound
	}
	return s, nil
}

func (r *fakeShiftRepo) FindBySpecialization(ctx context.Context, specID shared.SpecializationID) ([]*shift.MedicalShift, error) {
	var out []*shift.MedicalShift
	for _, s := range r.shifts {
		if s.SpecializationID == specID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeShiftRepo) FindByInternship(ctx context.Context, internshipID shared.InternshipID) ([]*shift.MedicalShift, error) {
	var out []*shift.MedicalShift
	for _, s := range r.shifts {
		if s.InternshipID == internshipID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeShiftRepo) FindByMonth(ctx context.Context, specID shared.SpecializationID, month shared.YearMonth) ([]*shift.MedicalShift, error) {
	var out []*shift.MedicalShift
	for _, s := range r.shifts {
		if s.SpecializationID == specID && shared.YearMonthOf(s.Date) == month {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeShiftRepo) SumMinutesByModule(ctx context.Context, moduleID shared.ModuleID) (int, error) {
	return r.moduleMinutes[moduleID], nil
}

func (r *fakeShiftRepo) FindPendingSync(ctx context.Context, specID shared.SpecializationID) ([]*shift.MedicalShift, error) {
	var out []*shift.MedicalShift
	for _, s := range r.shifts {
		if s.SpecializationID == specID && s.SyncStatus != shared.SyncApproved && s.SyncStatus != shared.SyncSynced {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeShiftRepo) Save(ctx context.Context, s *shift.MedicalShift) error {
	r.shifts[s.ID] = s
	return nil
}

func (r *fakeShiftRepo) Create(ctx context.Context, s *shift.MedicalShift) error {
	r.shifts[s.ID] = s
	return nil
}

// ─── procedure ───────────────────────────────────────────────────────────────

type fakeRequirementRepo struct {
	reqs []*procedure.Requirement
}

func (r *fakeRequirementRepo) FindByID(ctx context.Context, id shared.RequirementID) (*procedure.Requirement, error) {
	for _, req := range r.reqs {
		if req.ID == id {
			return req, nil
		}
	}
	return nil, shared.ErrRequirementNotFound
}

func (r *fakeRequirementRepo) FindByCode(ctx context.Context, moduleID shared.ModuleID, code string) (*procedure.Requirement, error) {
	for _, req := range r.reqs {
		if req.ModuleID == moduleID && req.Code == code {
			return req, nil
		}
	}
	return nil, shared.ErrRequirementNotFound
}

func (r *fakeRequirementRepo) FindByModule(ctx context.Context, moduleID shared.ModuleID) ([]*procedure.Requirement, error) {
	var out []*procedure.Requirement
	for _, req := range r.reqs {
		if req.ModuleID == moduleID {
			out = append(out, req)
		}
	}
	return out, nil
}

func (r *fakeRequirementRepo) CreateBatch(ctx context.Context, reqs []*procedure.Requirement) error {
	r.reqs = append(r.reqs, reqs...)
	return nil
}

type fakeRealizationRepo struct {
	items map[shared.RealizationID]*procedure.Realization
}

func newFakeRealizationRepo(items ...*procedure.Realization) *fakeRealizationRepo {
	r := &fakeRealizationRepo{items: make(map[shared.RealizationID]*procedure.Realization)}
	for _, item := range items {
		r.items[item.ID] = item
	}
	return r
}

func (r *fakeRealizationRepo) FindByID(ctx context.Context, id shared.RealizationID) (*procedure.Realization, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, shared.ErrRealizationNotFound
	}
	return item, nil
}

func (r *fakeRealizationRepo) FindBySpecialization(ctx context.Context, specID shared.SpecializationID) ([]*procedure.Realization, error) {
	var out []*procedure.Realization
	for _, item := range r.items {
		if item.SpecializationID == specID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *fakeRealizationRepo) FindByCode(ctx context.Context, specID shared.SpecializationID, code string) ([]*procedure.Realization, error) {
	var out []*procedure.Realization
	for _, item := range r.items {
		if item.SpecializationID == specID && item.Code == code {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *fakeRealizationRepo) FindByModule(ctx context.Context, moduleID shared.ModuleID) ([]*procedure.Realization, error) {
	var out []*procedure.Realization
	for _, item := range r.items {
		if item.ModuleID == moduleID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *fakeRealizationRepo) CountByCode(ctx context.Context, specID shared.SpecializationID, code string) (int, error) {
	items, _ := r.FindByCode(ctx, specID, code)
	return len(items), nil
}

func (r *fakeRealizationRepo) FindPendingSync(ctx context.Context, specID shared.SpecializationID) ([]*procedure.Realization, error) {
	var out []*procedure.Realization
	for _, item := range r.items {
		if item.SpecializationID == specID && item.SyncStatus != shared.SyncApproved && item.SyncStatus != shared.SyncSynced {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *fakeRealizationRepo) Save(ctx context.Context, item *procedure.Realization) error {
	r.items[item.ID] = item
	return nil
}

func (r *fakeRealizationRepo) Create(ctx context.Context, item *procedure.Realization) error {
	r.items[item.ID] = item
	return nil
}

// ─── education ───────────────────────────────────────────────────────────────

type fakeCourseRepo struct {
	courses   map[shared.CourseID]*education.Course
	completed map[shared.ModuleID]int
}

func newFakeCourseRepo(courses ...*education.Course) *fakeCourseRepo {
	r := &fakeCourseRepo{
		courses:   make(map[shared.CourseID]*education.Course),
		completed: make(map[shared.ModuleID]int),
	}
	for _, c := range courses {
		r.courses[c.ID] = c
	}
	return r
}

func (r *fakeCourseRepo) FindByID(ctx context.Context, id shared.CourseID) (*education.Course, error) {
	c, ok := r.courses[id]
	if !ok {
		return nil, shared.ErrCourseNotFound
	}
	return c, nil
}

func (r *fakeCourseRepo) FindBySpecialization(ctx context.Context, specID shared.SpecializationID) ([]*education.Course, error) {
	var out []*education.Course
	for _, c := range r.courses {
		if c.SpecializationID == specID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeCourseRepo) CountCompleted(ctx context.Context, moduleID shared.ModuleID) (int, error) {
	return r.completed[moduleID], nil
}

func (r *fakeCourseRepo) Save(ctx context.Context, c *education.Course) error {
	r.courses[c.ID] = c
	return nil
}

func (r *fakeCourseRepo) Create(ctx context.Context, c *education.Course) error {
	r.courses[c.ID] = c
	return nil
}

type fakeSelfEduRepo struct {
	entries []*education.SelfEducationDays
}

func (r *fakeSelfEduRepo) FindByID(ctx context.Context, id shared.SelfEducationID) (*education.SelfEducationDays, error) {
	for _, e := range r.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, shared.NewDomainError("education", "FindSelfEducation", shared.ErrNotFound, "entry not found")
}

func (r *fakeSelfEduRepo) FindByModule(ctx context.Context, moduleID shared.ModuleID) ([]*education.SelfEducationDays, error) {
	var out []*education.SelfEducationDays
	for _, e := range r.entries {
		if e.ModuleID == moduleID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeSelfEduRepo) SumDays(ctx context.Context, moduleID shared.ModuleID, year int) (int, error) {
	return education.UsedSelfEducationDays(r.entries, moduleID, year), nil
}

func (r *fakeSelfEduRepo) Save(ctx context.Context, e *education.SelfEducationDays) error {
	for i, existing := range r.entries {
		if existing.ID == e.ID {
			r.entries[i] = e
			return nil
		}
	}
	r.entries = append(r.entries, e)
	return nil
}

func (r *fakeSelfEduRepo) Create(ctx context.Context, e *education.SelfEducationDays) error {
	r.entries = append(r.entries, e)
	return nil
}

type fakeAbsenceRepo struct {
	absences []*education.Absence
}

func (r *fakeAbsenceRepo) FindByID(ctx context.Context, id shared.AbsenceID) (*education.Absence, error) {
	for _, a := range r.absences {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, shared.ErrAbsenceNotFound
}

func (r *fakeAbsenceRepo) FindBySpecialization(ctx context.Context, specID shared.SpecializationID) ([]*education.Absence, error) {
	var out []*education.Absence
	for _, a := range r.absences {
		if a.SpecializationID == specID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAbsenceRepo) Create(ctx context.Context, a *education.Absence) error {
	r.absences = append(r.absences, a)
	return nil
}

// ─── events ──────────────────────────────────────────────────────────────────

type capturePublisher struct {
	events []shared.Event
}

func (p *capturePublisher) Publish(event shared.Event) error {
	p.events = append(p.events, event)
	return nil
}

func (p *capturePublisher) typesSeen() []shared.EventType {
	out := make([]shared.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	return out
}
