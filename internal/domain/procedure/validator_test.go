package procedure

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sledzspecke/smk-progress-hub/internal/domain/shared"
	"github.com/sledzspecke/smk-progress-hub/internal/domain/specialization"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newTestValidator(t *testing.T, version shared.SmkVersion) *Validator {
	t.Helper()
	policy, err := specialization.PolicyFor(version, specialization.DefaultRules())
	require.NoError(t, err)
	return NewValidator(policy)
}

func newTestRequirement() *Requirement {
	return &Requirement{
		ID:                shared.NewRequirementID(),
		ModuleID:          "mod-1",
		Code:              "KP-01",
		Name:              "Koronarografia",
		RequiredOperator:  8,
		RequiredAssistant: 2,
	}
}

func newTestRealization(t *testing.T, req *Requirement, role shared.ProcedureRole, date time.Time, simulated bool) *Realization {
	t.Helper()
	r, err := NewRealization(req, "spec-1", "user-1", role, date, simulated, "Pracownia hemodynamiki")
	require.NoError(t, err)
	return r
}

func TestValidateRejectsUnknownCode(t *testing.T) {
	v := newTestValidator(t, shared.SmkNew)
	req := newTestRequirement()
	candidate := newTestRealization(t, req, shared.RoleOperator, day(2024, 6, 10), false)

	result := v.Validate(candidate, nil, nil, shared.LimitAdvisory)
	assert.False(t, result.IsValid())
	assert.True(t, result.HasError(shared.RuleInvalidProcedureCode))
}

func TestValidateAcceptsCleanRealization(t *testing.T) {
	v := newTestValidator(t, shared.SmkNew)
	req := newTestRequirement()
	candidate := newTestRealization(t, req, shared.RoleOperator, day(2024, 6, 10), false)

	result := v.Validate(candidate, req, nil, shared.LimitAdvisory)
	assert.True(t, result.IsValid())
	assert.Empty(t, result.Warnings)
}

func TestValidateYearPinOldSmk(t *testing.T) {
	v := newTestValidator(t, shared.SmkOld)
	req := newTestRequirement()
	req.Year = 2

	candidate := newTestRealization(t, req, shared.RoleOperator, day(2021, 6, 10), false)
	candidate.Year = 3

	result := v.Validate(candidate, req, nil, shared.LimitAdvisory)
	assert.False(t, result.IsValid())
	assert.True(t, result.HasError(shared.RuleWrongYearForRequirement))

	candidate.Year = 2
	result = v.Validate(candidate, req, nil, shared.LimitAdvisory)
	assert.True(t, result.IsValid())

	// Unassigned year stays unpinned.
	candidate.Year = shared.YearUnassigned
	result = v.Validate(candidate, req, nil, shared.LimitAdvisory)
	assert.True(t, result.IsValid())
}

func TestValidateYearPinIgnoredUnderNewSmk(t *testing.T) {
	v := newTestValidator(t, shared.SmkNew)
	req := newTestRequirement()
	req.Year = 2

	candidate := newTestRealization(t, req, shared.RoleOperator, day(2024, 6, 10), false)
	candidate.Year = 5

	result := v.Validate(candidate, req, nil, shared.LimitAdvisory)
	assert.True(t, result.IsValid())
}

func TestValidateDailyLimit(t *testing.T) {
	v := newTestValidator(t, shared.SmkNew)
	req := newTestRequirement()
	req.DailyLimit = 1

	sibling := newTestRealization(t, req, shared.RoleAssistant, day(2024, 6, 10), false)
	candidate := newTestRealization(t, req, shared.RoleOperator, day(2024, 6, 10), false)

	advisory := v.Validate(candidate, req, []*Realization{sibling}, shared.LimitAdvisory)
	assert.True(t, advisory.IsValid())
	assert.True(t, advisory.HasWarning(shared.RuleDailyLimitExceeded))

	strict := v.Validate(candidate, req, []*Realization{sibling}, shared.LimitStrict)
	assert.False(t, strict.IsValid())
	assert.True(t, strict.HasError(shared.RuleDailyLimitExceeded))
}

func TestValidateSimulationNotAllowed(t *testing.T) {
	v := newTestValidator(t, shared.SmkNew)
	req := newTestRequirement()
	req.AllowsSimulation = false

	candidate := newTestRealization(t, req, shared.RoleOperator, day(2024, 6, 10), true)

	result := v.Validate(candidate, req, nil, shared.LimitAdvisory)
	assert.False(t, result.IsValid())
	assert.True(t, result.HasError(shared.RuleSimulationLimitExceeded))
}

func TestValidateSimulationShare(t *testing.T) {
	v := newTestValidator(t, shared.SmkNew)
	req := newTestRequirement()
	req.AllowsSimulation = true
	// Required total 10, program default limit 30% -> at most 3 simulated.

	siblings := []*Realization{
		newTestRealization(t, req, shared.RoleOperator, day(2024, 6, 1), true),
		newTestRealization(t, req, shared.RoleOperator, day(2024, 6, 2), true),
	}

	third := newTestRealization(t, req, shared.RoleOperator, day(2024, 6, 3), true)
	result := v.Validate(third, req, siblings, shared.LimitStrict)
	assert.True(t, result.IsValid())

	siblings = append(siblings, third)
	fourth := newTestRealization(t, req, shared.RoleOperator, day(2024, 6, 4), true)
	result = v.Validate(fourth, req, siblings, shared.LimitStrict)
	assert.False(t, result.IsValid())
	assert.True(t, result.HasError(shared.RuleSimulationLimitExceeded))
}

func TestValidateDuplicateWarnsButKeeps(t *testing.T) {
	v := newTestValidator(t, shared.SmkNew)
	req := newTestRequirement()

	original := newTestRealization(t, req, shared.RoleOperator, day(2024, 6, 10), false)
	candidate := newTestRealization(t, req, shared.RoleOperator, day(2024, 6, 10), false)

	result := v.Validate(candidate, req, []*Realization{original}, shared.LimitStrict)
	assert.True(t, result.IsValid())
	assert.True(t, result.HasWarning(shared.RuleDuplicateProcedure))

	// Different role on the same day is not a duplicate.
	assistant := newTestRealization(t, req, shared.RoleAssistant, day(2024, 6, 10), false)
	result = v.Validate(assistant, req, []*Realization{original}, shared.LimitStrict)
	assert.False(t, result.HasWarning(shared.RuleDuplicateProcedure))
}

func TestFindDuplicate(t *testing.T) {
	req := newTestRequirement()
	original := newTestRealization(t, req, shared.RoleOperator, day(2024, 6, 10), false)
	other := newTestRealization(t, req, shared.RoleOperator, day(2024, 6, 11), false)
	candidate := newTestRealization(t, req, shared.RoleOperator, day(2024, 6, 10), false)

	found := FindDuplicate(candidate, []*Realization{other, original})
	require.NotNil(t, found)
	assert.Equal(t, original.ID, found.ID)

	assert.Nil(t, FindDuplicate(candidate, []*Realization{other}))
	assert.Nil(t, FindDuplicate(candidate, []*Realization{candidate}))
}

func TestFlagDuplicate(t *testing.T) {
	req := newTestRequirement()
	original := newTestRealization(t, req, shared.RoleOperator, day(2024, 6, 10), false)
	dup := newTestRealization(t, req, shared.RoleOperator, day(2024, 6, 10), false)

	dup.FlagDuplicate(original.ID)
	assert.Equal(t, original.ID, dup.DuplicateOf)
}
