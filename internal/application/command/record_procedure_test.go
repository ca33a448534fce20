package command

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sledzspecke/smk-progress-hub/internal/domain/procedure"
	"github.com/sledzspecke/smk-progress-hub/internal/domain/shared"
	"github.com/sledzspecke/smk-progress-hub/internal/domain/specialization"
)

func coronarographyRequirement(moduleID shared.ModuleID) *procedure.Requirement {
	return &procedure.Requirement{
		ID:                shared.NewRequirementID(),
		ModuleID:          moduleID,
		Code:              "KP-01",
		Name:              "Koronarografia",
		RequiredOperator:  2,
		RequiredAssistant: 1,
	}
}

func newProcedureHandler(spec *specialization.Specialization, reqRepo *fakeRequirementRepo, realRepo *fakeRealizationRepo, publisher *capturePublisher) *RecordProcedureHandler {
	return NewRecordProcedureHandler(newFakeSpecRepo(spec), reqRepo, realRepo, publisher, specialization.DefaultRules())
}

func TestRecordProcedureFirstOfType(t *testing.T) {
	spec, basic, _ := newOldSmkSpec(t)
	reqRepo := &fakeRequirementRepo{reqs: []*procedure.Requirement{coronarographyRequirement(basic.ID)}}
	realRepo := newFakeRealizationRepo()
	publisher := &capturePublisher{}
	handler := newProcedureHandler(spec, reqRepo, realRepo, publisher)

	result, err := handler.Handle(context.Background(), RecordProcedureCommand{
		SpecializationID: spec.ID.String(),
		Code:             "KP-01",
		Role:             "operator",
		Date:             day(2020, time.July, 10),
		Location:         "Pracownia hemodynamiki",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Year)
	assert.Equal(t, basic.ID.String(), result.ModuleID)
	assert.True(t, result.FirstOfType)
	assert.False(t, result.Duplicate)
	assert.False(t, result.RequirementCompleted)

	assert.Equal(t, []shared.EventType{
		shared.EventProcedureRecorded,
		shared.EventProcedureFirstOfType,
	}, publisher.typesSeen())

	stored, err := realRepo.FindByID(context.Background(), shared.RealizationID(result.RealizationID))
	require.NoError(t, err)
	assert.Equal(t, "KP-01", stored.Code)
	assert.Equal(t, shared.RoleOperator, stored.Role)
}

func TestRecordProcedureCompletesRequirement(t *testing.T) {
	spec, basic, _ := newOldSmkSpec(t)
	req := &procedure.Requirement{
		ID: shared.NewRequirementID(), ModuleID: basic.ID,
		Code: "KP-02", Name: "Kardiowersja elektryczna", RequiredOperator: 1,
	}
	reqRepo := &fakeRequirementRepo{reqs: []*procedure.Requirement{req}}
	publisher := &capturePublisher{}
	handler := newProcedureHandler(spec, reqRepo, newFakeRealizationRepo(), publisher)

	result, err := handler.Handle(context.Background(), RecordProcedureCommand{
		SpecializationID: spec.ID.String(),
		Code:             "KP-02",
		Role:             "operator",
		Date:             day(2020, time.July, 10),
	})
	require.NoError(t, err)

	assert.True(t, result.RequirementCompleted)
	assert.Contains(t, publisher.typesSeen(), shared.EventProcedureRequirementDone)
}

func TestRecordProcedureFlagsDuplicate(t *testing.T) {
	spec, basic, _ := newOldSmkSpec(t)
	req := coronarographyRequirement(basic.ID)
	reqRepo := &fakeRequirementRepo{reqs: []*procedure.Requirement{req}}

	existing, err := procedure.NewRealization(req, spec.ID, spec.UserID, shared.RoleOperator, day(2020, time.July, 10), false, "Pracownia hemodynamiki")
	require.NoError(t, err)
	realRepo := newFakeRealizationRepo(existing)
	publisher := &capturePublisher{}
	handler := newProcedureHandler(spec, reqRepo, realRepo, publisher)

	result, err := handler.Handle(context.Background(), RecordProcedureCommand{
		SpecializationID: spec.ID.String(),
		Code:             "KP-01",
		Role:             "operator",
		Date:             day(2020, time.July, 10),
	})
	require.NoError(t, err)

	// The duplicate is kept and flagged, never dropped.
	assert.True(t, result.Duplicate)
	assert.False(t, result.FirstOfType)
	assert.Contains(t, publisher.typesSeen(), shared.EventProcedureDuplicate)

	stored, err := realRepo.FindByID(context.Background(), shared.RealizationID(result.RealizationID))
	require.NoError(t, err)
	assert.Equal(t, existing.ID, stored.DuplicateOf)
}

func TestRecordProcedureUnknownCode(t *testing.T) {
	spec, basic, _ := newOldSmkSpec(t)
	reqRepo := &fakeRequirementRepo{reqs: []*procedure.Requirement{coronarographyRequirement(basic.ID)}}
	handler := newProcedureHandler(spec, reqRepo, newFakeRealizationRepo(), &capturePublisher{})

	_, err := handler.Handle(context.Background(), RecordProcedureCommand{
		SpecializationID: spec.ID.String(),
		Code:             "XX-99",
		Role:             "operator",
		Date:             day(2020, time.July, 10),
	})
	assert.ErrorIs(t, err, shared.ErrRequirementNotFound)
}

func TestRecordProcedureMatchesAcrossModules(t *testing.T) {
	// A specialist-module code performed during a basic-module year still
	// matches its requirement; the year pin is what guards Old-SMK buckets.
	spec, _, specialist := newOldSmkSpec(t)
	req := &procedure.Requirement{
		ID: shared.NewRequirementID(), ModuleID: specialist.ID,
		Code: "KS-01", Name: "Implantacja stymulatora", RequiredOperator: 5,
	}
	reqRepo := &fakeRequirementRepo{reqs: []*procedure.Requirement{req}}
	handler := newProcedureHandler(spec, reqRepo, newFakeRealizationRepo(), &capturePublisher{})

	result, err := handler.Handle(context.Background(), RecordProcedureCommand{
		SpecializationID: spec.ID.String(),
		Code:             "KS-01",
		Role:             "operator",
		Date:             day(2020, time.July, 10),
	})
	require.NoError(t, err)
	assert.True(t, result.FirstOfType)
}
