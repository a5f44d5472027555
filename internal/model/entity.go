package model

import (
	"errors"
	"fmt"

	"github.com/udisondev/statcore/internal/config"
	"github.com/udisondev/statcore/internal/game/combat"
	"github.com/udisondev/statcore/internal/game/leveling"
	"github.com/udisondev/statcore/internal/game/stat"
)

var (
	ErrUnknownVital = errors.New("unknown vital")
	ErrUnknownTrack = errors.New("unknown leveling track")
)

// Observer receives everything that happens to an entity.
// Nil callbacks are skipped.
type Observer struct {
	OnChange func(stat.Change)
	OnLevel  func(leveling.LevelChange)
	OnDamage func(combat.DamageResult)
	OnHeal   func(combat.HealResult)
}

// Entity is one simulated creature: a stat sheet, vitals over some of those
// stats and leveling tracks.
// Not safe for concurrent use; the service layer serializes access per entity.
type Entity struct {
	id    string
	sheet *stat.Sheet

	vitals      map[string]*combat.Vital
	vitalOrder  []string
	mitigations map[string][]config.MitigationDefinition // per vital, in insertion order

	tracks     map[string]*leveling.Track
	trackOrder []string
	bindings   map[string]trackBinding

	observer Observer
}

// trackBinding feeds gained levels into a stat.
type trackBinding struct {
	stat     stat.ID
	perLevel int
}

// NewEntity builds an entity from a validated blueprint.
func NewEntity(id string, bp config.Blueprint, engine config.EngineDefaults) (*Entity, error) {
	e := &Entity{
		id:          id,
		sheet:       stat.NewSheet(engine.MaxPropagationDepth),
		vitals:      make(map[string]*combat.Vital, len(bp.Vitals)),
		mitigations: make(map[string][]config.MitigationDefinition, len(bp.Vitals)),
		tracks:      make(map[string]*leveling.Track, len(bp.Tracks)),
		bindings:    make(map[string]trackBinding),
	}

	for _, def := range bp.Stats {
		variation, err := stat.ParseVariation(def.Variation)
		if err != nil {
			return nil, fmt.Errorf("entity %s: stat %s: %w", id, def.Name, err)
		}
		if _, err := e.sheet.Add(def.Name, variation, def.Base, def.Min, def.Max); err != nil {
			return nil, fmt.Errorf("entity %s: %w", id, err)
		}
	}

	for _, def := range bp.Links {
		if err := e.Link(def.Source, def.Dependent, def.Ratio); err != nil {
			return nil, fmt.Errorf("entity %s: %w", id, err)
		}
	}

	for _, def := range bp.Vitals {
		v, err := e.sheet.Lookup(def.Stat)
		if err != nil {
			return nil, fmt.Errorf("entity %s: vital: %w", id, err)
		}
		vital := combat.NewVital(v)
		vital.OnDamage(e.damaged)
		vital.OnHeal(e.healed)
		e.vitals[def.Stat] = vital
		e.vitalOrder = append(e.vitalOrder, def.Stat)

		for _, m := range def.Mitigations {
			if err := e.AddMitigation(def.Stat, m); err != nil {
				return nil, fmt.Errorf("entity %s: %w", id, err)
			}
		}
	}

	for _, def := range bp.Tracks {
		curve, err := engine.CurveFor(def.Leveling)
		if err != nil {
			return nil, fmt.Errorf("entity %s: track %s: %w", id, def.Name, err)
		}
		if def.Stat != "" {
			v, err := e.sheet.Lookup(def.Stat)
			if err != nil {
				return nil, fmt.Errorf("entity %s: track %s: %w", id, def.Name, err)
			}
			e.bindings[def.Name] = trackBinding{stat: v.ID(), perLevel: def.PointsPerLevel}
		}
		track := leveling.NewTrack(def.Name, curve)
		track.OnLevelChange(e.levelChanged)
		e.tracks[def.Name] = track
		e.trackOrder = append(e.trackOrder, def.Name)
	}

	e.sheet.Subscribe(e.changed)

	return e, nil
}

func (e *Entity) ID() string         { return e.id }
func (e *Entity) Sheet() *stat.Sheet { return e.sheet }

// SetObserver replaces the entity observer.
func (e *Entity) SetObserver(o Observer) {
	e.observer = o
}

// Stat returns the stat with the given name.
func (e *Entity) Stat(name string) (*stat.Value, error) {
	return e.sheet.Lookup(name)
}

// Vital returns the vital tracked against the named stat.
func (e *Entity) Vital(name string) (*combat.Vital, error) {
	v, ok := e.vitals[name]
	if !ok {
		return nil, fmt.Errorf("vital %q: %w", name, ErrUnknownVital)
	}
	return v, nil
}

// Vitals returns vitals in blueprint order.
func (e *Entity) Vitals() []*combat.Vital {
	out := make([]*combat.Vital, 0, len(e.vitalOrder))
	for _, name := range e.vitalOrder {
		out = append(out, e.vitals[name])
	}
	return out
}

// Track returns the named leveling track.
func (e *Entity) Track(name string) (*leveling.Track, error) {
	t, ok := e.tracks[name]
	if !ok {
		return nil, fmt.Errorf("track %q: %w", name, ErrUnknownTrack)
	}
	return t, nil
}

// Tracks returns leveling tracks in blueprint order.
func (e *Entity) Tracks() []*leveling.Track {
	out := make([]*leveling.Track, 0, len(e.trackOrder))
	for _, name := range e.trackOrder {
		out = append(out, e.tracks[name])
	}
	return out
}

// Link makes the dependent stat follow the source stat scaled by ratio.
func (e *Entity) Link(source, dependent string, ratio float64) error {
	src, dep, err := e.pair(source, dependent)
	if err != nil {
		return err
	}
	return e.sheet.Link(src, dep, ratio)
}

// Unlink removes a link. Missing links are a no-op.
func (e *Entity) Unlink(source, dependent string) (bool, error) {
	src, dep, err := e.pair(source, dependent)
	if err != nil {
		return false, err
	}
	return e.sheet.Unlink(src, dep), nil
}

// AddMitigation registers a mitigation on the named vital, replacing any
// mitigation with the same name.
func (e *Entity) AddMitigation(vital string, def config.MitigationDefinition) error {
	v, err := e.Vital(vital)
	if err != nil {
		return err
	}
	m, err := def.Build()
	if err != nil {
		return fmt.Errorf("vital %q: %w", vital, err)
	}
	v.AddMitigation(m)

	defs := e.mitigations[vital]
	for i, d := range defs {
		if d.Name == def.Name {
			defs = append(defs[:i:i], defs[i+1:]...)
			break
		}
	}
	e.mitigations[vital] = append(defs, def)
	return nil
}

// RemoveMitigation drops a mitigation from the named vital.
func (e *Entity) RemoveMitigation(vital, name string) (bool, error) {
	v, err := e.Vital(vital)
	if err != nil {
		return false, err
	}
	if !v.RemoveMitigation(name) {
		return false, nil
	}
	defs := e.mitigations[vital]
	for i, d := range defs {
		if d.Name == name {
			e.mitigations[vital] = append(defs[:i:i], defs[i+1:]...)
			break
		}
	}
	return true, nil
}

func (e *Entity) pair(source, dependent string) (stat.ID, stat.ID, error) {
	src, err := e.sheet.Lookup(source)
	if err != nil {
		return 0, 0, fmt.Errorf("link source: %w", err)
	}
	dep, err := e.sheet.Lookup(dependent)
	if err != nil {
		return 0, 0, fmt.Errorf("link dependent: %w", err)
	}
	return src.ID(), dep.ID(), nil
}

func (e *Entity) changed(c stat.Change) {
	if e.observer.OnChange != nil {
		e.observer.OnChange(c)
	}
}

func (e *Entity) damaged(r combat.DamageResult) {
	if e.observer.OnDamage != nil {
		e.observer.OnDamage(r)
	}
}

func (e *Entity) healed(r combat.HealResult) {
	if e.observer.OnHeal != nil {
		e.observer.OnHeal(r)
	}
}

// levelChanged reports the level move, then pays bound stat points for levels
// gained. Lost levels do not take points back.
func (e *Entity) levelChanged(c leveling.LevelChange) {
	if e.observer.OnLevel != nil {
		e.observer.OnLevel(c)
	}

	b, ok := e.bindings[c.Track]
	if !ok || c.Gained() <= 0 || b.perLevel <= 0 {
		return
	}
	v, err := e.sheet.Get(b.stat)
	if err != nil {
		return
	}
	_ = v.AddPoints(c.Gained() * b.perLevel)
}
