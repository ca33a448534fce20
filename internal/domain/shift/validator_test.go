package shift

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sledzspecke/smk-progress-hub/internal/domain/internship"
	"github.com/sledzspecke/smk-progress-hub/internal/domain/shared"
	"github.com/sledzspecke/smk-progress-hub/internal/domain/specialization"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newValidator(t *testing.T, version shared.SmkVersion) *Validator {
	t.Helper()
	policy, err := specialization.PolicyFor(version, specialization.DefaultRules())
	require.NoError(t, err)
	return NewValidator(policy)
}

func newHost(t *testing.T, start, end time.Time) *internship.Internship {
	t.Helper()
	dates, err := shared.NewDateRange(start, end)
	require.NoError(t, err)
	host, err := internship.New("spec-1", "mod-1", "Oddzial kardiologii", "Szpital Wojewodzki", dates)
	require.NoError(t, err)
	return host
}

func newShift(t *testing.T, host *internship.Internship, date time.Time, hours, minutes int) *MedicalShift {
	t.Helper()
	d, err := shared.NewShiftDuration(hours, minutes)
	require.NoError(t, err)
	s, err := New(host.ID, host.SpecializationID, "user-1", date, d, "SOR")
	require.NoError(t, err)
	return s
}

func TestValidateAcceptsCleanShift(t *testing.T) {
	v := newValidator(t, shared.SmkNew)
	host := newHost(t, day(2024, 6, 1), day(2024, 6, 30))
	candidate := newShift(t, host, day(2024, 6, 10), 10, 5)

	result := v.Validate(candidate, host, nil, nil, shared.LimitAdvisory)
	assert.True(t, result.IsValid())
	assert.False(t, result.HasError(shared.RuleShiftOutsideInternship))
}

func TestValidateRejectsShiftOutsideInternship(t *testing.T) {
	v := newValidator(t, shared.SmkNew)
	host := newHost(t, day(2024, 6, 1), day(2024, 6, 30))
	candidate := newShift(t, host, day(2024, 7, 5), 10, 0)

	result := v.Validate(candidate, host, nil, nil, shared.LimitAdvisory)
	assert.False(t, result.IsValid())
	assert.True(t, result.HasError(shared.RuleShiftOutsideInternship))
}

func TestValidateRejectsMissingInternship(t *testing.T) {
	v := newValidator(t, shared.SmkNew)
	host := newHost(t, day(2024, 6, 1), day(2024, 6, 30))
	candidate := newShift(t, host, day(2024, 6, 10), 10, 0)

	result := v.Validate(candidate, nil, nil, nil, shared.LimitAdvisory)
	assert.True(t, result.HasError(shared.RuleShiftOutsideInternship))
}

func TestValidateWarnsFutureDate(t *testing.T) {
	v := newValidator(t, shared.SmkNew)
	host := newHost(t, day(2024, 1, 1), day(2099, 12, 31))
	candidate := newShift(t, host, day(2099, 1, 1), 10, 0)

	result := v.Validate(candidate, host, nil, nil, shared.LimitAdvisory)
	assert.True(t, result.IsValid())
	assert.True(t, result.HasWarning(shared.RuleFutureDatedEvent))
}

func TestValidateWarnsSameDayOverlap(t *testing.T) {
	v := newValidator(t, shared.SmkNew)
	host := newHost(t, day(2024, 6, 1), day(2024, 6, 30))
	existing := newShift(t, host, day(2024, 6, 10), 12, 0)
	candidate := newShift(t, host, day(2024, 6, 10), 10, 0)

	result := v.Validate(candidate, host, nil, []*MedicalShift{existing}, shared.LimitAdvisory)
	assert.True(t, result.IsValid())
	assert.True(t, result.HasWarning(shared.RuleShiftOverlap))
}

func TestValidateWeeklyCapSeverityFollowsPolicy(t *testing.T) {
	v := newValidator(t, shared.SmkNew)
	host := newHost(t, day(2024, 6, 1), day(2024, 6, 30))

	// Monday through Wednesday of one ISO week, 49 hours total.
	siblings := []*MedicalShift{
		newShift(t, host, day(2024, 6, 3), 24, 0),
		newShift(t, host, day(2024, 6, 4), 13, 0),
	}
	candidate := newShift(t, host, day(2024, 6, 5), 12, 0)

	advisory := v.Validate(candidate, host, nil, siblings, shared.LimitAdvisory)
	assert.True(t, advisory.IsValid())
	assert.True(t, advisory.HasWarning(shared.RuleWeeklyHoursExceeded))

	strict := v.Validate(candidate, host, nil, siblings, shared.LimitStrict)
	assert.False(t, strict.IsValid())
	assert.True(t, strict.HasError(shared.RuleWeeklyHoursExceeded))
}

func TestValidateWeeklyCapIgnoresOtherWeeks(t *testing.T) {
	v := newValidator(t, shared.SmkNew)
	host := newHost(t, day(2024, 6, 1), day(2024, 6, 30))

	siblings := []*MedicalShift{
		newShift(t, host, day(2024, 6, 10), 40, 0), // following ISO week
	}
	candidate := newShift(t, host, day(2024, 6, 5), 12, 0)

	result := v.Validate(candidate, host, nil, siblings, shared.LimitStrict)
	assert.False(t, result.HasError(shared.RuleWeeklyHoursExceeded))
}

func TestValidateMonthlyMinimumWarnsForClosedMonth(t *testing.T) {
	v := newValidator(t, shared.SmkNew)
	host := newHost(t, day(2024, 6, 1), day(2024, 6, 30))
	candidate := newShift(t, host, day(2024, 6, 10), 10, 0)

	// June 2024 is long over and 10 hours sit far below the 140h default.
	result := v.Validate(candidate, host, nil, nil, shared.LimitAdvisory)
	assert.True(t, result.IsValid())
	assert.True(t, result.HasWarning(shared.RuleMonthlyHoursInsufficient))
}

func TestValidateMonthlyMinimumSkipsCurrentMonth(t *testing.T) {
	v := newValidator(t, shared.SmkNew)
	now := shared.DateOnly(time.Now())
	host := newHost(t, now.AddDate(0, -2, 0), now.AddDate(0, 2, 0))
	candidate := newShift(t, host, now, 10, 0)

	result := v.Validate(candidate, host, nil, nil, shared.LimitAdvisory)
	assert.False(t, result.HasWarning(shared.RuleMonthlyHoursInsufficient))
}

func TestValidateMonthlyMinimumUsesModuleTemplate(t *testing.T) {
	v := newValidator(t, shared.SmkNew)
	host := newHost(t, day(2024, 6, 1), day(2024, 6, 30))

	module, err := specialization.NewModule(shared.ModuleSpecialist, "Modul specjalistyczny",
		specialization.ModuleRequirements{MonthlyShiftHours: 40})
	require.NoError(t, err)

	// 42 hours clear the module's own 40h floor even though the program
	// default is 140h.
	siblings := []*MedicalShift{
		newShift(t, host, day(2024, 6, 3), 16, 0),
		newShift(t, host, day(2024, 6, 12), 16, 0),
	}
	candidate := newShift(t, host, day(2024, 6, 20), 10, 0)

	result := v.Validate(candidate, host, module, siblings, shared.LimitAdvisory)
	assert.False(t, result.HasWarning(shared.RuleMonthlyHoursInsufficient))
}

func TestTransitionSyncOnShift(t *testing.T) {
	host := newHost(t, day(2024, 6, 1), day(2024, 6, 30))
	s := newShift(t, host, day(2024, 6, 10), 10, 0)

	require.NoError(t, s.TransitionSync(shared.SyncSynced))
	require.NoError(t, s.TransitionSync(shared.SyncApproved))
	assert.True(t, s.IsApproved())
	assert.False(t, s.ApprovedAt.IsZero())

	err := s.TransitionSync(shared.SyncModified)
	assert.ErrorIs(t, err, shared.ErrStateTransition)

	d, _ := shared.NewShiftDuration(12, 0)
	assert.ErrorIs(t, s.UpdateDuration(d), shared.ErrShiftApproved)
}
