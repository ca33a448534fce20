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

func TestStartModuleCommand(t *testing.T) {
	spec, basic, _ := newOldSmkSpec(t)
	specRepo := newFakeSpecRepo(spec)
	publisher := &capturePublisher{}
	handler := NewStartModuleHandler(specRepo, publisher)

	result, err := handler.Handle(context.Background(), StartModuleCommand{
		SpecializationID: spec.ID.String(),
		ModuleID:         basic.ID.String(),
		StartDate:        day(2020, time.January, 1),
	})
	require.NoError(t, err)

	assert.Equal(t, basic.ID.String(), result.ModuleID)
	assert.Equal(t, "basic", result.Kind)
	assert.Equal(t, day(2020, time.January, 1), result.StartDate)
	assert.Equal(t, shared.ModuleInProgress, basic.State)
	assert.Equal(t, 1, specRepo.saves)
	assert.Equal(t, []shared.EventType{shared.EventModuleStarted}, publisher.typesSeen())
}

func TestStartModuleRejectsParallelModules(t *testing.T) {
	spec, basic, specialist := newOldSmkSpec(t)
	_, err := spec.StartModule(basic.ID, day(2020, time.January, 1))
	require.NoError(t, err)

	handler := NewStartModuleHandler(newFakeSpecRepo(spec), &capturePublisher{})

	_, err = handler.Handle(context.Background(), StartModuleCommand{
		SpecializationID: spec.ID.String(),
		ModuleID:         specialist.ID.String(),
	})
	assert.ErrorIs(t, err, shared.ErrInvalidModuleProgression)
}

// completeModuleFixture assembles a basic module whose live counts satisfy
// every requirement category.
func completeModuleFixture(t *testing.T) (*CompleteModuleHandler, *specialization.Specialization, *specialization.Module, *specialization.Module, *capturePublisher) {
	t.Helper()
	spec, basic, specialist := newOldSmkSpec(t)
	_, err := spec.StartModule(basic.ID, day(2020, time.January, 1))
	require.NoError(t, err)

	req := &procedure.Requirement{
		ID: shared.NewRequirementID(), ModuleID: basic.ID,
		Code: "KP-01", Name: "Koronarografia", RequiredOperator: 1,
	}
	realization, err := procedure.NewRealization(req, spec.ID, spec.UserID, shared.RoleOperator, day(2020, time.July, 10), false, "Pracownia")
	require.NoError(t, err)
	realization.ModuleID = basic.ID

	internshipRepo := newFakeInternshipRepo()
	internshipRepo.completed[basic.ID] = 1
	courseRepo := newFakeCourseRepo()
	courseRepo.completed[basic.ID] = 1
	shiftRepo := newFakeShiftRepo()
	shiftRepo.moduleMinutes[basic.ID] = 120

	publisher := &capturePublisher{}
	handler := NewCompleteModuleHandler(
		newFakeSpecRepo(spec), internshipRepo, courseRepo, &fakeSelfEduRepo{},
		&fakeRequirementRepo{reqs: []*procedure.Requirement{req}},
		newFakeRealizationRepo(realization), shiftRepo, publisher)
	return handler, spec, basic, specialist, publisher
}

func TestCompleteModuleAdvancesToNext(t *testing.T) {
	handler, spec, basic, specialist, publisher := completeModuleFixture(t)

	result, err := handler.Handle(context.Background(), CompleteModuleCommand{
		SpecializationID: spec.ID.String(),
		ModuleID:         basic.ID.String(),
	})
	require.NoError(t, err)

	assert.Equal(t, basic.ID.String(), result.ModuleID)
	assert.Equal(t, specialist.ID.String(), result.NextModuleID)
	assert.Equal(t, string(specialization.StageBasicCompleted), result.Stage)
	assert.Equal(t, shared.ModuleCompleted, basic.State)
	assert.Equal(t, specialist.ID, spec.CurrentModuleID)

	assert.Equal(t, []shared.EventType{
		shared.EventModuleCompleted,
		shared.EventModuleSwitched,
	}, publisher.typesSeen())
}

func TestCompleteModuleUnmetRequirements(t *testing.T) {
	spec, basic, _ := newOldSmkSpec(t)
	_, err := spec.StartModule(basic.ID, day(2020, time.January, 1))
	require.NoError(t, err)

	// Empty repositories: every count comes back zero.
	handler := NewCompleteModuleHandler(
		newFakeSpecRepo(spec), newFakeInternshipRepo(), newFakeCourseRepo(), &fakeSelfEduRepo{},
		&fakeRequirementRepo{}, newFakeRealizationRepo(), newFakeShiftRepo(), &capturePublisher{})

	_, err = handler.Handle(context.Background(), CompleteModuleCommand{
		SpecializationID: spec.ID.String(),
		ModuleID:         basic.ID.String(),
	})
	assert.ErrorIs(t, err, shared.ErrModuleRequirementsUnmet)
	assert.Equal(t, shared.ModuleInProgress, basic.State)
}
