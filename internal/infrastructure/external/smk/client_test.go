package smk

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sledzspecke/smk-progress-hub/internal/domain/shared"
	"github.com/sledzspecke/smk-progress-hub/internal/domain/shift"
)

func TestClientAuthenticateReturnsSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/smk/v1/auth/login", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		if user != "lekarz" || pass != "haslo" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok-123","expires_in":3600}`))
	}))
	defer srv.Close()

	client := NewClient(DefaultClientConfig(srv.URL))

	session, err := client.Authenticate(context.Background(), "lekarz", "haslo")
	require.NoError(t, err)
	assert.Equal(t, "tok-123", session.AccessToken)
	assert.Equal(t, "Bearer", session.TokenType, "token type defaults when the registry omits it")
	assert.False(t, session.IsExpired())

	_, err = client.Authenticate(context.Background(), "lekarz", "zle-haslo")
	assert.Error(t, err)
}

func TestRateLimiterBurstAndRefill(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{
		RequestsPerSecond: 10.0,
		BurstSize:         2,
		MinInterval:       0,
		WaitTimeout:       time.Second,
	})

	assert.True(t, rl.TryAllow())
	assert.True(t, rl.TryAllow())
	assert.False(t, rl.TryAllow(), "bucket should be empty after the burst")

	status := rl.Status()
	assert.Less(t, status.AvailableTokens, 1.0)
}

func TestRateLimiterThrottleHitEmptiesBucket(t *testing.T) {
	rl := NewRateLimiter(DefaultRateLimiterConfig())

	rl.RecordThrottleHit(90 * time.Second)

	status := rl.Status()
	assert.Greater(t, status.ConsecutiveWaits, 0)
	assert.False(t, rl.TryAllow())

	rl.Reset()
	assert.True(t, rl.TryAllow())
}

func TestMapperShiftToRecordNormalizesDuration(t *testing.T) {
	duration, err := shared.NewShiftDuration(7, 75)
	require.NoError(t, err)

	s, err := shift.New(
		shared.NewInternshipID(),
		shared.NewSpecializationID(),
		shared.UserID("user-1"),
		time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		duration,
		"SOR",
	)
	require.NoError(t, err)

	record := NewMapper().ShiftToRecord(s)

	assert.Equal(t, s.ID.String(), record.ExternalID)
	assert.Equal(t, "2026-03-14", record.Date)
	assert.Equal(t, 8, record.Hours, "denormalized 7h 75min collapses to 8h 15min")
	assert.Equal(t, 15, record.Minutes)
	assert.Equal(t, "SOR", record.Location)
}

func TestMapperStatusToSyncStatus(t *testing.T) {
	m := NewMapper()

	tests := []struct {
		registryStatus string
		want           shared.SyncStatus
	}{
		{RecordStatusPending, shared.SyncSynced},
		{RecordStatusAccepted, shared.SyncSynced},
		{RecordStatusApproved, shared.SyncApproved},
		{RecordStatusRejected, shared.SyncModified},
	}

	for _, tt := range tests {
		got, err := m.StatusToSyncStatus(tt.registryStatus)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "status %s", tt.registryStatus)
	}

	_, err := m.StatusToSyncStatus("archived")
	assert.Error(t, err)
}

func TestBatchSubmissionSize(t *testing.T) {
	var batch BatchSubmissionDTO
	assert.True(t, batch.IsEmpty())

	batch.Shifts = append(batch.Shifts, ShiftRecordDTO{ExternalID: "a"})
	batch.Procedures = append(batch.Procedures, ProcedureRecordDTO{ExternalID: "b"})

	assert.False(t, batch.IsEmpty())
	assert.Equal(t, 2, batch.Size())
}
