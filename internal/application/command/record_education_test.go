package command

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sledzspecke/smk-progress-hub/internal/domain/education"
	"github.com/sledzspecke/smk-progress-hub/internal/domain/shared"
	"github.com/sledzspecke/smk-progress-hub/internal/domain/specialization"
)

// usedDays seeds an existing grant of the given length inside the internship's
// calendar year.
func usedDays(t *testing.T, spec *specialization.Specialization, moduleID shared.ModuleID, internshipID shared.InternshipID, from time.Time, days int) *education.SelfEducationDays {
	t.Helper()
	dates, err := shared.NewDateRange(from, from.AddDate(0, 0, days-1))
	require.NoError(t, err)
	e, err := education.NewSelfEducationDays(spec.ID, moduleID, internshipID, dates, "Konferencja PTK")
	require.NoError(t, err)
	return e
}

func TestAddSelfEducationDaysWithinPool(t *testing.T) {
	spec, basic, _ := newOldSmkSpec(t)
	host := newHostInternship(t, spec, basic.ID, day(2021, time.January, 1), day(2021, time.December, 31))
	selfEduRepo := &fakeSelfEduRepo{}

	existing := usedDays(t, spec, basic.ID, host.ID, day(2021, time.May, 10), 4)
	require.NoError(t, selfEduRepo.Create(context.Background(), existing))

	publisher := &capturePublisher{}
	handler := NewAddSelfEducationDaysHandler(
		newFakeSpecRepo(spec), newFakeInternshipRepo(host), selfEduRepo, publisher, specialization.DefaultRules())

	result, err := handler.Handle(context.Background(), AddSelfEducationDaysCommand{
		SpecializationID: spec.ID.String(),
		ModuleID:         basic.ID.String(),
		InternshipID:     host.ID.String(),
		From:             day(2021, time.September, 1),
		To:               day(2021, time.September, 2),
		Purpose:          "Kurs echokardiografii",
	})
	require.NoError(t, err)

	// The two-day window derives the day count and the 2021 pool year.
	assert.Equal(t, 2, result.Days)
	assert.Equal(t, 6, result.YearTotal)
	assert.Equal(t, 0, result.Remaining)
	assert.Equal(t, []shared.EventType{shared.EventSelfEducationDaysAdded}, publisher.typesSeen())

	stored, err := selfEduRepo.FindByID(context.Background(), shared.SelfEducationID(result.EntryID))
	require.NoError(t, err)
	assert.Equal(t, host.ID, stored.InternshipID)
	assert.Equal(t, 2021, stored.Year)
	assert.Equal(t, day(2021, time.September, 1), stored.Dates.Start)
	assert.Equal(t, day(2021, time.September, 2), stored.Dates.End)
}

func TestAddSelfEducationDaysOverdrawRejected(t *testing.T) {
	spec, basic, _ := newOldSmkSpec(t)
	host := newHostInternship(t, spec, basic.ID, day(2021, time.January, 1), day(2021, time.December, 31))
	selfEduRepo := &fakeSelfEduRepo{}

	existing := usedDays(t, spec, basic.ID, host.ID, day(2021, time.May, 10), 5)
	require.NoError(t, selfEduRepo.Create(context.Background(), existing))

	handler := NewAddSelfEducationDaysHandler(
		newFakeSpecRepo(spec), newFakeInternshipRepo(host), selfEduRepo, &capturePublisher{}, specialization.DefaultRules())

	_, err := handler.Handle(context.Background(), AddSelfEducationDaysCommand{
		SpecializationID: spec.ID.String(),
		ModuleID:         basic.ID.String(),
		InternshipID:     host.ID.String(),
		From:             day(2021, time.September, 1),
		To:               day(2021, time.September, 2),
	})
	require.Error(t, err)

	entries, _ := selfEduRepo.FindByModule(context.Background(), basic.ID)
	assert.Len(t, entries, 1)
}

func TestAddSelfEducationDaysUnknownModule(t *testing.T) {
	spec, basic, _ := newOldSmkSpec(t)
	host := newHostInternship(t, spec, basic.ID, day(2021, time.January, 1), day(2021, time.December, 31))
	handler := NewAddSelfEducationDaysHandler(
		newFakeSpecRepo(spec), newFakeInternshipRepo(host), &fakeSelfEduRepo{}, &capturePublisher{}, specialization.DefaultRules())

	_, err := handler.Handle(context.Background(), AddSelfEducationDaysCommand{
		SpecializationID: spec.ID.String(),
		ModuleID:         "mod-missing",
		InternshipID:     host.ID.String(),
		From:             day(2021, time.September, 1),
		To:               day(2021, time.September, 2),
	})
	assert.ErrorIs(t, err, shared.ErrModuleNotFound)
}

func TestAddSelfEducationDaysForeignInternship(t *testing.T) {
	spec, basic, _ := newOldSmkSpec(t)
	other, otherBasic, _ := newOldSmkSpec(t)
	stranger := newHostInternship(t, other, otherBasic.ID, day(2021, time.January, 1), day(2021, time.December, 31))

	handler := NewAddSelfEducationDaysHandler(
		newFakeSpecRepo(spec), newFakeInternshipRepo(stranger), &fakeSelfEduRepo{}, &capturePublisher{}, specialization.DefaultRules())

	_, err := handler.Handle(context.Background(), AddSelfEducationDaysCommand{
		SpecializationID: spec.ID.String(),
		ModuleID:         basic.ID.String(),
		InternshipID:     stranger.ID.String(),
		From:             day(2021, time.September, 1),
		To:               day(2021, time.September, 2),
	})
	assert.ErrorIs(t, err, shared.ErrInternshipNotFound)
}

func TestRecordAbsenceExtendsTraining(t *testing.T) {
	spec, _, _ := newOldSmkSpec(t)
	plannedEnd := spec.CalculatedEnd

	specRepo := newFakeSpecRepo(spec)
	publisher := &capturePublisher{}
	handler := NewRecordAbsenceHandler(specRepo, &fakeAbsenceRepo{}, publisher, specialization.DefaultRules())

	result, err := handler.Handle(context.Background(), RecordAbsenceCommand{
		SpecializationID: spec.ID.String(),
		Type:             "sick_leave",
		From:             day(2021, time.March, 1),
		To:               day(2021, time.March, 14),
	})
	require.NoError(t, err)

	assert.Equal(t, 14, result.ExtensionDays)
	assert.Equal(t, plannedEnd.AddDate(0, 0, 14), result.CalculatedEnd)
	assert.Equal(t, 1, specRepo.saves)
	assert.Equal(t, []shared.EventType{shared.EventAbsenceRecorded}, publisher.typesSeen())
}

func TestRecordAbsenceVacationDoesNotExtend(t *testing.T) {
	spec, _, _ := newOldSmkSpec(t)
	plannedEnd := spec.CalculatedEnd

	specRepo := newFakeSpecRepo(spec)
	handler := NewRecordAbsenceHandler(specRepo, &fakeAbsenceRepo{}, &capturePublisher{}, specialization.DefaultRules())

	result, err := handler.Handle(context.Background(), RecordAbsenceCommand{
		SpecializationID: spec.ID.String(),
		Type:             "vacation",
		From:             day(2021, time.July, 1),
		To:               day(2021, time.July, 26),
	})
	require.NoError(t, err)

	assert.Equal(t, 0, result.ExtensionDays)
	assert.Equal(t, plannedEnd, result.CalculatedEnd)
	assert.Equal(t, 0, specRepo.saves)
}

func TestRecordAbsenceOverlapWarns(t *testing.T) {
	spec, _, _ := newOldSmkSpec(t)

	absenceRepo := &fakeAbsenceRepo{}
	dates, err := shared.NewDateRange(day(2021, time.March, 1), day(2021, time.March, 14))
	require.NoError(t, err)
	existing, err := education.NewAbsence(spec.ID, education.AbsenceSickLeave, dates, "")
	require.NoError(t, err)
	require.NoError(t, absenceRepo.Create(context.Background(), existing))

	handler := NewRecordAbsenceHandler(newFakeSpecRepo(spec), absenceRepo, &capturePublisher{}, specialization.DefaultRules())

	result, err := handler.Handle(context.Background(), RecordAbsenceCommand{
		SpecializationID: spec.ID.String(),
		Type:             "vacation",
		From:             day(2021, time.March, 10),
		To:               day(2021, time.March, 20),
	})
	require.NoError(t, err)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, shared.RuleAbsenceOverlap, result.Warnings[0].Rule)
}

func TestRecordAbsenceUnknownType(t *testing.T) {
	spec, _, _ := newOldSmkSpec(t)
	handler := NewRecordAbsenceHandler(newFakeSpecRepo(spec), &fakeAbsenceRepo{}, &capturePublisher{}, specialization.DefaultRules())

	_, err := handler.Handle(context.Background(), RecordAbsenceCommand{
		SpecializationID: spec.ID.String(),
		Type:             "sabbatical",
		From:             day(2021, time.March, 1),
		To:               day(2021, time.March, 14),
	})
	assert.Error(t, err)
}

func TestCompleteCourse(t *testing.T) {
	spec, basic, _ := newOldSmkSpec(t)
	course, err := education.NewCourse(spec.ID, basic.ID, "Kurs wprowadzajacy", day(2021, time.February, 5))
	require.NoError(t, err)

	courseRepo := newFakeCourseRepo(course)
	handler := NewCompleteCourseHandler(courseRepo)

	require.NoError(t, handler.Handle(context.Background(), CompleteCourseCommand{
		CourseID:          course.ID.String(),
		CertificateNumber: "CERT-2021-044",
	}))

	stored, err := courseRepo.FindByID(context.Background(), course.ID)
	require.NoError(t, err)
	assert.True(t, stored.Completed)
	assert.Equal(t, "CERT-2021-044", stored.CertificateNumber)
}

func TestCompleteCourseApprovedIsFrozen(t *testing.T) {
	spec, basic, _ := newOldSmkSpec(t)
	course, err := education.NewCourse(spec.ID, basic.ID, "Kurs wprowadzajacy", day(2021, time.February, 5))
	require.NoError(t, err)
	course.SyncStatus = shared.SyncApproved

	handler := NewCompleteCourseHandler(newFakeCourseRepo(course))

	err = handler.Handle(context.Background(), CompleteCourseCommand{
		CourseID:          course.ID.String(),
		CertificateNumber: "CERT-2021-045",
	})
	assert.ErrorIs(t, err, shared.ErrAlreadyApproved)
}
