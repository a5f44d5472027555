package model

import (
	"fmt"
	"slices"
	"time"

	"github.com/udisondev/statcore/internal/config"
	"github.com/udisondev/statcore/internal/game/combat"
	"github.com/udisondev/statcore/internal/game/leveling"
	"github.com/udisondev/statcore/internal/game/stat"
)

// Snapshot is the persisted state of an entity. Stats, vitals and tracks are
// matched by name on restore, so the entity must be built from the same blueprint.
type Snapshot struct {
	EntityID string       `json:"entity_id"`
	TakenAt  time.Time    `json:"taken_at"`
	Stats    []StatState  `json:"stats"`
	Links    []LinkState  `json:"links"`
	Vitals   []VitalState `json:"vitals"`
	Tracks   []TrackState `json:"tracks"`
}

type StatState struct {
	Name      string          `json:"name"`
	Base      int             `json:"base"`
	Apparent  int             `json:"apparent"`
	Modifiers []ModifierState `json:"modifiers,omitempty"`
}

type ModifierState struct {
	Name   string      `json:"name"`
	Effect stat.Effect `json:"effect"`
}

type LinkState struct {
	Source    string  `json:"source"`
	Dependent string  `json:"dependent"`
	Ratio     float64 `json:"ratio"`
}

type VitalState struct {
	Stat        string                        `json:"stat"`
	Damage      int                           `json:"damage"`
	Mitigations []config.MitigationDefinition `json:"mitigations,omitempty"`
}

type TrackState struct {
	Name   string `json:"name"`
	Points int    `json:"points"`
}

// Snapshot captures the current state.
func (e *Entity) Snapshot() Snapshot {
	s := Snapshot{
		EntityID: e.id,
		TakenAt:  time.Now().UTC(),
	}

	values := e.sheet.Values()
	for _, v := range values {
		st := StatState{Name: v.Name(), Base: v.Base(), Apparent: v.Apparent()}
		for _, m := range v.Modifiers() {
			st.Modifiers = append(st.Modifiers, ModifierState{Name: m.Name, Effect: m.Effect})
		}
		s.Stats = append(s.Stats, st)
	}

	for _, l := range e.sheet.Links() {
		s.Links = append(s.Links, LinkState{
			Source:    values[l.Source].Name(),
			Dependent: values[l.Dependent].Name(),
			Ratio:     l.Ratio,
		})
	}

	for _, name := range e.vitalOrder {
		defs := make([]config.MitigationDefinition, len(e.mitigations[name]))
		copy(defs, e.mitigations[name])
		s.Vitals = append(s.Vitals, VitalState{
			Stat:        name,
			Damage:      e.vitals[name].Damage(),
			Mitigations: defs,
		})
	}

	for _, name := range e.trackOrder {
		s.Tracks = append(s.Tracks, TrackState{Name: name, Points: e.tracks[name].Points()})
	}

	return s
}

// Restore overwrites the entity state from s without firing observers.
// Links and mitigations are replaced wholesale. Every name in s is resolved
// before anything is written, so a failed restore leaves the entity untouched.
func (e *Entity) Restore(s Snapshot) error {
	type statRestore struct {
		value *stat.Value
		state StatState
	}
	type vitalRestore struct {
		vital       *combat.Vital
		state       VitalState
		mitigations []combat.Mitigation
	}
	type trackRestore struct {
		track  *leveling.Track
		points int
	}

	stats := make([]statRestore, 0, len(s.Stats))
	for _, st := range s.Stats {
		v, err := e.sheet.Lookup(st.Name)
		if err != nil {
			return fmt.Errorf("restoring entity %s: %w", e.id, err)
		}
		stats = append(stats, statRestore{value: v, state: st})
	}

	links := make([]stat.Edge, 0, len(s.Links))
	seen := make(map[[2]stat.ID]struct{}, len(s.Links))
	for _, l := range s.Links {
		src, dep, err := e.pair(l.Source, l.Dependent)
		if err != nil {
			return fmt.Errorf("restoring entity %s: %w", e.id, err)
		}
		if src == dep {
			return fmt.Errorf("restoring entity %s: link %s: %w", e.id, l.Source, stat.ErrSelfLink)
		}
		key := [2]stat.ID{src, dep}
		if _, dup := seen[key]; dup {
			return fmt.Errorf("restoring entity %s: link %s -> %s: %w", e.id, l.Source, l.Dependent, stat.ErrAlreadyLinked)
		}
		seen[key] = struct{}{}
		links = append(links, stat.Edge{Source: src, Dependent: dep, Ratio: l.Ratio})
	}

	vitals := make([]vitalRestore, 0, len(s.Vitals))
	for _, vs := range s.Vitals {
		v, err := e.Vital(vs.Stat)
		if err != nil {
			return fmt.Errorf("restoring entity %s: %w", e.id, err)
		}
		built := make([]combat.Mitigation, len(vs.Mitigations))
		for i, def := range vs.Mitigations {
			if built[i], err = def.Build(); err != nil {
				return fmt.Errorf("restoring entity %s: vital %q: %w", e.id, vs.Stat, err)
			}
		}
		vitals = append(vitals, vitalRestore{vital: v, state: vs, mitigations: built})
	}

	tracks := make([]trackRestore, 0, len(s.Tracks))
	for _, ts := range s.Tracks {
		t, err := e.Track(ts.Name)
		if err != nil {
			return fmt.Errorf("restoring entity %s: %w", e.id, err)
		}
		tracks = append(tracks, trackRestore{track: t, points: ts.Points})
	}

	for _, r := range stats {
		mods := make([]stat.Modifier, len(r.state.Modifiers))
		for i, m := range r.state.Modifiers {
			mods[i] = stat.Modifier{Name: m.Name, Effect: m.Effect}
		}
		r.value.Restore(r.state.Base, r.state.Apparent, mods...)
	}

	for _, l := range e.sheet.Links() {
		e.sheet.Unlink(l.Source, l.Dependent)
	}
	for _, l := range links {
		if err := e.sheet.Link(l.Source, l.Dependent, l.Ratio); err != nil {
			return fmt.Errorf("restoring entity %s: %w", e.id, err)
		}
	}

	for _, r := range vitals {
		for _, name := range r.vital.Mitigations() {
			r.vital.RemoveMitigation(name)
		}
		var defs []config.MitigationDefinition
		for i, m := range r.mitigations {
			r.vital.AddMitigation(m)
			defs = slices.DeleteFunc(defs, func(d config.MitigationDefinition) bool { return d.Name == m.Name })
			defs = append(defs, r.state.Mitigations[i])
		}
		e.mitigations[r.state.Stat] = defs
		r.vital.Restore(r.state.Damage)
	}

	for _, r := range tracks {
		r.track.Restore(r.points)
	}

	return nil
}
