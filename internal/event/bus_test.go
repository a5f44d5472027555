package event

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_PublishInOrder(t *testing.T) {
	b := NewBus()
	var order []string
	b.Subscribe(func(Event) { order = append(order, "first") })
	b.Subscribe(func(Event) { order = append(order, "second") })

	b.Publish(Event{Type: TypeHealed})

	assert.Equal(t, []string{"first", "second"}, order)
}

func TestBus_Unsubscribe(t *testing.T) {
	b := NewBus()
	count := 0
	unsubscribe := b.Subscribe(func(Event) { count++ })

	b.Publish(Event{})
	unsubscribe()
	b.Publish(Event{})

	assert.Equal(t, 1, count)
	assert.Equal(t, 0, b.Len())
}

func TestBus_ReentrantPublish(t *testing.T) {
	b := NewBus()
	var seen []Type
	b.Subscribe(func(e Event) {
		seen = append(seen, e.Type)
		if e.Type == TypeDamageTaken {
			b.Publish(Event{Type: TypeHealed})
		}
	})

	b.Publish(Event{Type: TypeDamageTaken})

	assert.Equal(t, []Type{TypeDamageTaken, TypeHealed}, seen)
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	LogSink(logger)(Event{
		Type:     TypeDamageTaken,
		EntityID: "hero",
		Subject:  "health",
		Payload:  DamageTaken{Incoming: 10, Final: 7, Source: "goblin"},
	})

	out := buf.String()
	require.NotEmpty(t, out)
	assert.Contains(t, out, "type=combat.damage_taken")
	assert.Contains(t, out, "entity=hero")
	assert.Contains(t, out, "final=7")
	assert.Contains(t, out, "source=goblin")
}

func TestNopPublisher(t *testing.T) {
	assert.NotPanics(t, func() { NopPublisher().Publish(Event{}) })
	var f PublisherFunc
	assert.NotPanics(t, func() { f.Publish(Event{}) })
}
