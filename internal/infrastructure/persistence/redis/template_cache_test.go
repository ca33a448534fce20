package redis

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sledzspecke/smk-progress-hub/internal/domain/shared"
	"github.com/sledzspecke/smk-progress-hub/internal/domain/specialization"
)

type fakeStore struct {
	data   map[string][]byte
	getErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string][]byte)}
}

func (s *fakeStore) Get(ctx context.Context, key string, dest interface{}) error {
	if s.getErr != nil {
		return s.getErr
	}
	raw, ok := s.data[key]
	if !ok {
		return ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (s *fakeStore) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.data[key] = raw
	return nil
}

func (s *fakeStore) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.data, key)
	}
	return nil
}

type countingProvider struct {
	tmpl  *specialization.CurriculumTemplate
	calls int
}

func (p *countingProvider) Get(ctx context.Context, programCode string, version shared.SmkVersion) (*specialization.CurriculumTemplate, error) {
	p.calls++
	if p.tmpl == nil {
		return nil, shared.ErrTemplateNotFound
	}
	return p.tmpl, nil
}

func newTemplateCacheUnderTest(store templateStore, fallback specialization.TemplateProvider) *TemplateCache {
	return &TemplateCache{
		cache:    store,
		fallback: fallback,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func cardiologyTemplate() *specialization.CurriculumTemplate {
	return &specialization.CurriculumTemplate{
		ProgramCode:   "0709",
		Name:          "Kardiologia",
		SmkVersion:    shared.SmkNew,
		DurationYears: 5,
		Modules: []specialization.ModuleTemplate{
			{Kind: shared.ModuleBasic, Name: "Modul podstawowy", DurationMonths: 24},
		},
	}
}

func TestTemplateCacheReadThrough(t *testing.T) {
	store := newFakeStore()
	provider := &countingProvider{tmpl: cardiologyTemplate()}
	tc := newTemplateCacheUnderTest(store, provider)

	first, err := tc.Get(context.Background(), "0709", shared.SmkNew)
	require.NoError(t, err)
	assert.Equal(t, "Kardiologia", first.Name)
	assert.Equal(t, 1, provider.calls)

	// Second lookup is served from the store, not the fallback.
	second, err := tc.Get(context.Background(), "0709", shared.SmkNew)
	require.NoError(t, err)
	assert.Equal(t, first.ProgramCode, second.ProgramCode)
	assert.Equal(t, 1, provider.calls)
}

func TestTemplateCacheFallsBackOnStoreError(t *testing.T) {
	store := newFakeStore()
	store.getErr = errors.New("connection refused")
	provider := &countingProvider{tmpl: cardiologyTemplate()}
	tc := newTemplateCacheUnderTest(store, provider)

	tmpl, err := tc.Get(context.Background(), "0709", shared.SmkNew)
	require.NoError(t, err)
	assert.Equal(t, "0709", tmpl.ProgramCode)
	assert.Equal(t, 1, provider.calls)
}

func TestTemplateCachePropagatesProviderError(t *testing.T) {
	tc := newTemplateCacheUnderTest(newFakeStore(), &countingProvider{})

	_, err := tc.Get(context.Background(), "9999", shared.SmkNew)
	assert.ErrorIs(t, err, shared.ErrTemplateNotFound)
}

func TestTemplateCacheInvalidate(t *testing.T) {
	store := newFakeStore()
	provider := &countingProvider{tmpl: cardiologyTemplate()}
	tc := newTemplateCacheUnderTest(store, provider)

	_, err := tc.Get(context.Background(), "0709", shared.SmkNew)
	require.NoError(t, err)

	require.NoError(t, tc.Invalidate(context.Background(), "0709", shared.SmkNew))

	_, err = tc.Get(context.Background(), "0709", shared.SmkNew)
	require.NoError(t, err)
	assert.Equal(t, 2, provider.calls)
}
