package journal

import (
	"context"
	"encoding/json"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/statcore/internal/event"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpen_EmptyPath(t *testing.T) {
	_, err := Open(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrEmptyPath)
}

func TestOpen_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "journal.db")

	s, err := Open(ctx, path)
	require.NoError(t, err)
	_, err = s.Record(ctx, event.Event{Type: event.TypeHealed, EntityID: "hero", Subject: "health"})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(ctx, path)
	require.NoError(t, err)
	defer s.Close()

	n, err := s.Count(ctx, "hero")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestStore_RecordAndRecent(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := range 5 {
		_, err := s.Record(ctx, event.Event{
			Type:     event.TypeValueChanged,
			EntityID: "hero",
			Subject:  "strength",
			Time:     at.Add(time.Duration(i) * time.Second),
			Payload:  event.ValueChanged{Previous: i, New: i + 1, Delta: 1, Direction: "increase"},
		})
		require.NoError(t, err)
	}
	_, err := s.Record(ctx, event.Event{Type: event.TypeDamageTaken, EntityID: "villain", Subject: "health"})
	require.NoError(t, err)

	entries, err := s.Recent(ctx, "hero", 3)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	newest := entries[0]
	assert.Equal(t, event.TypeValueChanged, newest.Type)
	assert.Equal(t, "strength", newest.Subject)
	assert.True(t, at.Add(4*time.Second).Equal(newest.Time))

	var payload event.ValueChanged
	require.NoError(t, json.Unmarshal(newest.Payload, &payload))
	assert.Equal(t, 5, payload.New)

	assert.Greater(t, entries[0].ID, entries[1].ID)
	assert.Greater(t, entries[1].ID, entries[2].ID)

	n, err := s.Count(ctx, "villain")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = s.Recent(ctx, "hero", 0)
	assert.Error(t, err)
}

func TestStore_HandlerOnBus(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	bus := event.NewBus()
	bus.Subscribe(s.Handler(ctx))

	var wg sync.WaitGroup
	for _, id := range []string{"a", "b", "c"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 10 {
				bus.Publish(event.Event{Type: event.TypeHealed, EntityID: id, Subject: "health"})
			}
		}()
	}
	wg.Wait()

	for _, id := range []string{"a", "b", "c"} {
		n, err := s.Count(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 10, n)
	}
}
