package messaging

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sledzspecke/smk-progress-hub/internal/domain/shared"
)

func newTestDispatcher(bus shared.EventBus) *Dispatcher {
	config := DefaultDispatcherConfig(bus)
	config.RetryConfig.InitialBackoff = time.Millisecond
	config.RetryConfig.MaxBackoff = 5 * time.Millisecond
	return NewDispatcher(config)
}

func TestDispatcherRoutesEventsFromBus(t *testing.T) {
	bus := newSyncBus()
	defer bus.Close()
	d := newTestDispatcher(bus)
	defer d.Stop()

	var mu sync.Mutex
	var got []string
	require.NoError(t, d.RegisterSync(shared.EventSyncCompleted, "first", func(event shared.Event) error {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, "first")
		return nil
	}))
	require.NoError(t, d.RegisterSync(shared.EventSyncCompleted, "second", func(event shared.Event) error {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, "second")
		return nil
	}))
	require.NoError(t, d.Start())

	require.NoError(t, bus.Publish(shared.NewSyncCompletedEvent("user-1", 1, 0)))

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, got, 2)
}

func TestDispatcherRetriesUntilSuccess(t *testing.T) {
	bus := newSyncBus()
	defer bus.Close()
	d := newTestDispatcher(bus)
	defer d.Stop()

	attempts := 0
	require.NoError(t, d.RegisterSync(shared.EventSyncFailed, "flaky", func(event shared.Event) error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	}))

	require.NoError(t, d.Dispatch(shared.NewSyncFailedEvent("user-1", "down")))
	assert.Equal(t, 3, attempts)
	assert.Equal(t, int64(1), d.Metrics().Snapshot().TotalDispatched)
}

func TestDispatcherDeadLettersAfterRetries(t *testing.T) {
	bus := newSyncBus()
	defer bus.Close()
	d := newTestDispatcher(bus)
	defer d.Stop()

	require.NoError(t, d.RegisterSync(shared.EventSyncFailed, "broken", func(event shared.Event) error {
		return errors.New("permanent")
	}))

	err := d.Dispatch(shared.NewSyncFailedEvent("user-1", "down"))
	assert.Error(t, err)

	require.Equal(t, 1, d.DeadLetterQueue().Size())
	entry, ok := d.DeadLetterQueue().Pop()
	require.True(t, ok)
	assert.Equal(t, "broken", entry.HandlerName)
	assert.Equal(t, 4, entry.Attempts)
	assert.Equal(t, 0, d.DeadLetterQueue().Size())
}

func TestDispatcherIgnoresUnregisteredEvents(t *testing.T) {
	bus := newSyncBus()
	defer bus.Close()
	d := newTestDispatcher(bus)
	defer d.Stop()

	require.NoError(t, d.Dispatch(shared.NewSyncCompletedEvent("user-1", 1, 0)))
	assert.Equal(t, int64(0), d.Metrics().Snapshot().TotalDispatched)
}

func TestDispatcherRejectsNilHandler(t *testing.T) {
	bus := newSyncBus()
	defer bus.Close()
	d := newTestDispatcher(bus)
	defer d.Stop()

	assert.Error(t, d.Register(shared.EventSyncCompleted, "nil", nil))
}
