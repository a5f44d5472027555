package scenario

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/statcore/internal/config"
	"github.com/udisondev/statcore/internal/game/stat"
)

// Op names a scripted operation.
type Op string

const (
	OpAddPoints        Op = "add_points"
	OpRemovePoints     Op = "remove_points"
	OpSetPoints        Op = "set_points"
	OpAddModifier      Op = "add_modifier"
	OpRemoveModifier   Op = "remove_modifier"
	OpLink             Op = "link"
	OpUnlink           Op = "unlink"
	OpDamage           Op = "damage"
	OpHeal             Op = "heal"
	OpAddMitigation    Op = "add_mitigation"
	OpRemoveMitigation Op = "remove_mitigation"
	OpAddExperience    Op = "add_experience"
	OpSetExperience    Op = "set_experience"
)

var knownOps = map[Op]struct{}{
	OpAddPoints: {}, OpRemovePoints: {}, OpSetPoints: {},
	OpAddModifier: {}, OpRemoveModifier: {},
	OpLink: {}, OpUnlink: {},
	OpDamage: {}, OpHeal: {},
	OpAddMitigation: {}, OpRemoveMitigation: {},
	OpAddExperience: {}, OpSetExperience: {},
}

var (
	ErrUnknownOp     = errors.New("unknown operation")
	ErrUnknownEntity = errors.New("step targets an entity not declared in the script")
	ErrNoEntities    = errors.New("script declares no entities")
)

// Script is a scripted simulation: entities spawned from the blueprint and the
// steps applied to them. Steps of one entity run in order; entities run in parallel.
type Script struct {
	Entities    []string `yaml:"entities"`
	StopOnError bool     `yaml:"stop_on_error"`
	Steps       []Step   `yaml:"steps"`
}

// Step is one operation. Which fields are read depends on Op:
// Stat names the stat, the vital or the link source; Target is the link dependent.
type Step struct {
	Entity string  `yaml:"entity"`
	Op     Op      `yaml:"op"`
	Stat   string  `yaml:"stat"`
	Target string  `yaml:"target"`
	Track  string  `yaml:"track"`
	Name   string  `yaml:"name"`
	Amount int     `yaml:"amount"`
	Ratio  float64 `yaml:"ratio"`

	Flat             *int     `yaml:"flat"`
	PercentOfCurrent *float64 `yaml:"percent_of_current"`
	PercentOfMax     *float64 `yaml:"percent_of_max"`
	Source           string   `yaml:"source"`

	Effect     EffectSpec                  `yaml:"effect"`
	Mitigation config.MitigationDefinition `yaml:"mitigation"`
}

// EffectSpec is the YAML form of stat.Effect. Positive defaults to true.
type EffectSpec struct {
	Flat            int     `yaml:"flat"`
	Percentage      float64 `yaml:"percentage"`
	PercentageOfMax float64 `yaml:"percentage_of_max"`
	Positive        *bool   `yaml:"positive"`
	Additive        bool    `yaml:"additive"`
	ScalesOnBase    bool    `yaml:"scales_on_base"`
	ScalingFactor   float64 `yaml:"scaling_factor"`
	Priority        int     `yaml:"priority"`
}

// Effect builds the stat.Effect described by e.
func (e EffectSpec) Effect() stat.Effect {
	positive := true
	if e.Positive != nil {
		positive = *e.Positive
	}
	return stat.Effect{
		FlatAmount:        e.Flat,
		Percentage:        e.Percentage,
		PercentageOfMax:   e.PercentageOfMax,
		IsPositive:        positive,
		IsAdditive:        e.Additive,
		ScalesOnBaseValue: e.ScalesOnBase,
		ScalingFactor:     e.ScalingFactor,
		Priority:          e.Priority,
	}
}

// LoadScript reads and validates a YAML script.
func LoadScript(path string) (Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Script{}, fmt.Errorf("reading script %s: %w", path, err)
	}
	s, err := ParseScript(data)
	if err != nil {
		return Script{}, fmt.Errorf("script %s: %w", path, err)
	}
	return s, nil
}

// ParseScript decodes and validates a YAML script.
func ParseScript(data []byte) (Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Script{}, fmt.Errorf("parsing script: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Script{}, err
	}
	return s, nil
}

// Validate checks that every step targets a declared entity with a known op.
func (s Script) Validate() error {
	if len(s.Entities) == 0 {
		return ErrNoEntities
	}
	declared := make(map[string]struct{}, len(s.Entities))
	for _, id := range s.Entities {
		declared[id] = struct{}{}
	}
	for i, st := range s.Steps {
		if _, ok := knownOps[st.Op]; !ok {
			return fmt.Errorf("steps[%d] %q: %w", i, st.Op, ErrUnknownOp)
		}
		if _, ok := declared[st.Entity]; !ok {
			return fmt.Errorf("steps[%d] entity %q: %w", i, st.Entity, ErrUnknownEntity)
		}
	}
	return nil
}
