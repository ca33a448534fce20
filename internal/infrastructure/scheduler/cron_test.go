package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCronExpressionForms(t *testing.T) {
	tests := []struct {
		name string
		expr string
	}{
		{"wildcard", "* * * * *"},
		{"every 15 minutes", Every15Minutes},
		{"nightly", EveryNight2AM},
		{"first of month", FirstOfMonth6AM},
		{"range", "0 9-17 * * *"},
		{"list", "0 8,12,18 * * *"},
		{"weekday only", "30 7 * * 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ce, err := ParseCronExpression(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.expr, ce.String())
		})
	}
}

func TestParseCronExpressionRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		expr string
	}{
		{"too few fields", "0 2 * *"},
		{"too many fields", "0 2 * * * *"},
		{"minute out of range", "60 2 * * *"},
		{"hour out of range", "0 24 * * *"},
		{"garbage", "zero two * * *"},
		{"bad step", "*/0 * * * *"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCronExpression(tt.expr)
			assert.Error(t, err)
		})
	}
}

func TestCronNextNightly(t *testing.T) {
	ce := MustParseCronExpression(EveryNight2AM)

	before := time.Date(2026, 8, 29, 1, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 8, 29, 2, 0, 0, 0, time.UTC), ce.Next(before))

	after := time.Date(2026, 8, 29, 3, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 8, 30, 2, 0, 0, 0, time.UTC), ce.Next(after))

	// Firing exactly at 02:00 schedules the next night, not the same minute.
	at := time.Date(2026, 8, 29, 2, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 8, 30, 2, 0, 0, 0, time.UTC), ce.Next(at))
}

func TestCronNextFirstOfMonth(t *testing.T) {
	ce := MustParseCronExpression(FirstOfMonth6AM)

	midMonth := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 9, 1, 6, 0, 0, 0, time.UTC), ce.Next(midMonth))

	december := time.Date(2026, 12, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2027, 1, 1, 6, 0, 0, 0, time.UTC), ce.Next(december))
}

func TestCronNextEvery15Minutes(t *testing.T) {
	ce := MustParseCronExpression(Every15Minutes)

	at := time.Date(2026, 8, 29, 10, 7, 30, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 8, 29, 10, 15, 0, 0, time.UTC), ce.Next(at))

	at = time.Date(2026, 8, 29, 10, 45, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 8, 29, 11, 0, 0, 0, time.UTC), ce.Next(at))
}

func TestIntervalSchedule(t *testing.T) {
	s := NewIntervalSchedule(15 * time.Minute)
	at := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, at.Add(15*time.Minute), s.Next(at))
}
