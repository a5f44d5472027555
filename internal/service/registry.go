package service

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/udisondev/statcore/internal/config"
	"github.com/udisondev/statcore/internal/event"
	"github.com/udisondev/statcore/internal/game/combat"
	"github.com/udisondev/statcore/internal/game/leveling"
	"github.com/udisondev/statcore/internal/game/stat"
	"github.com/udisondev/statcore/internal/model"
)

// Registry owns every live entity and serializes access to each one.
// Different entities may be used concurrently; operations on one entity are
// applied one at a time and their events are published in order.
//
// Events are published after the entity lock is released, so a subscriber may
// call back into the services for the same entity. Events raised by such a
// nested call are queued behind the event being delivered.
type Registry struct {
	blueprint config.Blueprint
	engine    config.EngineDefaults
	publisher event.Publisher
	now       func() time.Time

	mu       sync.RWMutex
	entities map[string]*entry
}

type entry struct {
	mu      sync.Mutex
	entity  *model.Entity
	pending []event.Event // raised under mu, not yet queued

	outMu    sync.Mutex
	outbox   []event.Event
	draining bool
}

// NewRegistry creates a registry that spawns entities from bp.
// A nil publisher drops events.
func NewRegistry(bp config.Blueprint, engine config.EngineDefaults, pub event.Publisher) *Registry {
	if pub == nil {
		pub = event.NopPublisher()
	}
	return &Registry{
		blueprint: bp,
		engine:    engine,
		publisher: pub,
		now:       time.Now,
		entities:  make(map[string]*entry),
	}
}

// Spawn builds a new entity from the blueprint and registers it.
func (r *Registry) Spawn(id string) error {
	e, err := model.NewEntity(id, r.blueprint, r.engine)
	if err != nil {
		return fmt.Errorf("spawning %s: %w", id, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entities[id]; ok {
		return fmt.Errorf("spawning %s: %w", id, ErrEntityExists)
	}
	ent := &entry{entity: e}
	e.SetObserver(r.observer(ent))
	r.entities[id] = ent

	slog.Debug("entity spawned", "entity", id, "stats", e.Sheet().Len())
	return nil
}

// Remove unregisters an entity.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entities[id]; !ok {
		return false
	}
	delete(r.entities, id)
	return true
}

// IDs returns registered entity IDs sorted.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.entities))
	for id := range r.entities {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Len returns the number of registered entities.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entities)
}

// Snapshot captures the state of one entity.
func (r *Registry) Snapshot(id string) (model.Snapshot, error) {
	var snap model.Snapshot
	err := r.with(id, func(e *model.Entity) error {
		snap = e.Snapshot()
		return nil
	})
	return snap, err
}

// Restore overwrites the state of a registered entity. No events are published.
func (r *Registry) Restore(snap model.Snapshot) error {
	return r.with(snap.EntityID, func(e *model.Entity) error {
		return invalid("restore", snap.EntityID, "", e.Restore(snap))
	})
}

// with runs fn while holding the entity lock and publishes the events fn
// raised once the lock is released.
func (r *Registry) with(id string, fn func(*model.Entity) error) error {
	r.mu.RLock()
	ent, ok := r.entities[id]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("entity %s: %w", id, ErrEntityNotFound)
	}

	ent.mu.Lock()
	err := fn(ent.entity)
	events := ent.pending
	ent.pending = nil
	ent.mu.Unlock()

	r.deliver(ent, events)
	return err
}

// deliver queues events on the entity outbox. The first caller drains the
// outbox; callers arriving while it drains (nested or concurrent) only enqueue.
func (r *Registry) deliver(ent *entry, events []event.Event) {
	if len(events) == 0 {
		return
	}

	ent.outMu.Lock()
	ent.outbox = append(ent.outbox, events...)
	if ent.draining {
		ent.outMu.Unlock()
		return
	}
	ent.draining = true

	for len(ent.outbox) > 0 {
		e := ent.outbox[0]
		ent.outbox = ent.outbox[1:]
		ent.outMu.Unlock()

		r.publisher.Publish(e)

		ent.outMu.Lock()
	}
	ent.outbox = nil
	ent.draining = false
	ent.outMu.Unlock()
}

func (r *Registry) observer(ent *entry) model.Observer {
	id := ent.entity.ID()
	return model.Observer{
		OnChange: func(c stat.Change) {
			r.raise(ent, id, event.TypeValueChanged, c.Name, event.ValueChanged{
				Previous:  c.Previous,
				New:       c.New,
				Delta:     c.Delta(),
				Direction: c.Direction().String(),
			})
		},
		OnLevel: func(c leveling.LevelChange) {
			r.raise(ent, id, event.TypeLevelChanged, c.Track, event.LevelChanged{
				Previous: c.Previous,
				New:      c.New,
				Points:   c.Points,
			})
		},
		OnDamage: func(res combat.DamageResult) {
			r.raise(ent, id, event.TypeDamageTaken, res.Stat, event.DamageTaken{
				Incoming:        res.Incoming,
				Final:           res.Final,
				IncomingPercent: res.IncomingPercent,
				FinalPercent:    res.FinalPercent,
				Source:          res.Source,
			})
		},
		OnHeal: func(res combat.HealResult) {
			r.raise(ent, id, event.TypeHealed, res.Stat, event.Healed{
				Amount:  res.Amount,
				Percent: res.Percent,
				Source:  res.Source,
			})
		},
	}
}

// raise records an event while the entity lock is held.
func (r *Registry) raise(ent *entry, id string, typ event.Type, subject string, payload any) {
	ent.pending = append(ent.pending, event.Event{
		Type:     typ,
		EntityID: id,
		Subject:  subject,
		Time:     r.now().UTC(),
		Payload:  payload,
	})
}
