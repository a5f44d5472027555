package config

import (
	"errors"
	"fmt"

	"github.com/udisondev/statcore/internal/game/combat"
	"github.com/udisondev/statcore/internal/game/stat"
)

// Blueprint describes the stats, vitals, links and leveling tracks every
// simulated entity starts with.
type Blueprint struct {
	Stats  []StatDefinition  `yaml:"stats"`
	Vitals []VitalDefinition `yaml:"vitals"`
	Links  []LinkDefinition  `yaml:"links"`
	Tracks []TrackDefinition `yaml:"tracks"`
}

// StatDefinition defines one stat of the sheet.
type StatDefinition struct {
	Name      string `yaml:"name"`
	Variation string `yaml:"variation"` // major, minor, pseudo, complex
	Base      int    `yaml:"base"`
	Min       int    `yaml:"min"`
	Max       int    `yaml:"max"`
}

// VitalDefinition tracks damage against an existing stat.
type VitalDefinition struct {
	Stat        string                 `yaml:"stat"`
	Mitigations []MitigationDefinition `yaml:"mitigations"`
}

// MitigationDefinition describes a damage reducer.
type MitigationDefinition struct {
	Name     string  `yaml:"name"`
	Kind     string  `yaml:"kind"` // flat, percent, cap
	Priority int     `yaml:"priority"`
	Amount   int     `yaml:"amount"`   // flat and cap
	Fraction float64 `yaml:"fraction"` // percent
}

// LinkDefinition makes Dependent follow Source's changes scaled by Ratio.
type LinkDefinition struct {
	Source    string  `yaml:"source"`
	Dependent string  `yaml:"dependent"`
	Ratio     float64 `yaml:"ratio"`
}

// TrackDefinition defines a leveling track. When Stat is set, each gained level
// adds PointsPerLevel to that stat.
type TrackDefinition struct {
	Name           string             `yaml:"name"`
	Stat           string             `yaml:"stat"`
	PointsPerLevel int                `yaml:"points_per_level"`
	Leveling       LevelingDefinition `yaml:"leveling"`
}

// LevelingDefinition overrides EngineDefaults per track. Nil fields fall back.
type LevelingDefinition struct {
	Curve               string   `yaml:"curve"`
	MaxLevel            *int     `yaml:"max_level"`
	PointsForFirstLevel *int     `yaml:"points_for_first_level"`
	ScalingFactorA      *float64 `yaml:"scaling_factor_a"`
	ScalingFactorB      *float64 `yaml:"scaling_factor_b"`
	ScalingFactorC      *float64 `yaml:"scaling_factor_c"`
}

var (
	ErrEmptyName       = errors.New("name must not be empty")
	ErrDuplicateName   = errors.New("duplicate name")
	ErrUndefinedStat   = errors.New("references undefined stat")
	ErrInvalidBounds   = errors.New("min must not exceed max")
	ErrUnknownKind     = errors.New("unknown mitigation kind")
	ErrInvalidFraction = errors.New("fraction must be within [0, 1]")
)

// IsEmpty reports whether nothing is defined.
func (b Blueprint) IsEmpty() bool {
	return len(b.Stats) == 0 && len(b.Vitals) == 0 && len(b.Links) == 0 && len(b.Tracks) == 0
}

// Validate checks names, references and ranges across the whole blueprint.
func (b Blueprint) Validate() error {
	stats := make(map[string]struct{}, len(b.Stats))
	for i, s := range b.Stats {
		if s.Name == "" {
			return fmt.Errorf("stats[%d]: %w", i, ErrEmptyName)
		}
		if _, ok := stats[s.Name]; ok {
			return fmt.Errorf("stat %q: %w", s.Name, ErrDuplicateName)
		}
		if _, err := stat.ParseVariation(s.Variation); err != nil {
			return fmt.Errorf("stat %q: %w", s.Name, err)
		}
		if s.Min > s.Max {
			return fmt.Errorf("stat %q [%d, %d]: %w", s.Name, s.Min, s.Max, ErrInvalidBounds)
		}
		stats[s.Name] = struct{}{}
	}

	vitals := make(map[string]struct{}, len(b.Vitals))
	for _, v := range b.Vitals {
		if _, ok := stats[v.Stat]; !ok {
			return fmt.Errorf("vital %q: %w", v.Stat, ErrUndefinedStat)
		}
		if _, ok := vitals[v.Stat]; ok {
			return fmt.Errorf("vital %q: %w", v.Stat, ErrDuplicateName)
		}
		vitals[v.Stat] = struct{}{}
		for _, m := range v.Mitigations {
			if _, err := m.Build(); err != nil {
				return fmt.Errorf("vital %q: %w", v.Stat, err)
			}
		}
	}

	for _, l := range b.Links {
		for _, name := range []string{l.Source, l.Dependent} {
			if _, ok := stats[name]; !ok {
				return fmt.Errorf("link %s -> %s: %q %w", l.Source, l.Dependent, name, ErrUndefinedStat)
			}
		}
		if l.Source == l.Dependent {
			return fmt.Errorf("link %s -> %s: %w", l.Source, l.Dependent, stat.ErrSelfLink)
		}
	}

	tracks := make(map[string]struct{}, len(b.Tracks))
	for i, t := range b.Tracks {
		if t.Name == "" {
			return fmt.Errorf("tracks[%d]: %w", i, ErrEmptyName)
		}
		if _, ok := tracks[t.Name]; ok {
			return fmt.Errorf("track %q: %w", t.Name, ErrDuplicateName)
		}
		tracks[t.Name] = struct{}{}
		if t.Stat != "" {
			if _, ok := stats[t.Stat]; !ok {
				return fmt.Errorf("track %q: stat %q %w", t.Name, t.Stat, ErrUndefinedStat)
			}
		}
	}

	return nil
}

// Build converts the definition into a combat mitigation.
func (m MitigationDefinition) Build() (combat.Mitigation, error) {
	if m.Name == "" {
		return combat.Mitigation{}, fmt.Errorf("mitigation: %w", ErrEmptyName)
	}
	switch m.Kind {
	case "flat":
		return combat.FlatMitigation(m.Name, m.Priority, m.Amount), nil
	case "percent":
		if m.Fraction < 0 || m.Fraction > 1 {
			return combat.Mitigation{}, fmt.Errorf("mitigation %q: %w", m.Name, ErrInvalidFraction)
		}
		return combat.PercentMitigation(m.Name, m.Priority, m.Fraction), nil
	case "cap":
		return combat.CapMitigation(m.Name, m.Priority, m.Amount), nil
	default:
		return combat.Mitigation{}, fmt.Errorf("mitigation %q kind %q: %w", m.Name, m.Kind, ErrUnknownKind)
	}
}

// DefaultBlueprint returns a small character sheet used when no config is given.
func DefaultBlueprint() Blueprint {
	return Blueprint{
		Stats: []StatDefinition{
			{Name: "strength", Variation: "major", Base: 10, Min: 0, Max: 100},
			{Name: "constitution", Variation: "major", Base: 10, Min: 0, Max: 100},
			{Name: "health", Variation: "pseudo", Base: 100, Min: 0, Max: 1000},
			{Name: "attack", Variation: "minor", Base: 5, Min: 0, Max: 500},
		},
		Vitals: []VitalDefinition{
			{
				Stat: "health",
				Mitigations: []MitigationDefinition{
					{Name: "armor", Kind: "flat", Priority: 10, Amount: 2},
					{Name: "resist", Kind: "percent", Priority: 20, Fraction: 0.1},
				},
			},
		},
		Links: []LinkDefinition{
			{Source: "constitution", Dependent: "health", Ratio: 10},
			{Source: "strength", Dependent: "attack", Ratio: 0.5},
		},
		Tracks: []TrackDefinition{
			{Name: "character", Stat: "strength", PointsPerLevel: 1},
		},
	}
}
