package config

import (
	"errors"
	"fmt"

	"github.com/udisondev/statcore/internal/game/leveling"
	"github.com/udisondev/statcore/internal/game/stat"
)

// EngineDefaults are the fallback values used when a blueprint leaves a leveling
// parameter unset, plus the propagation budget of every sheet.
type EngineDefaults struct {
	MaxLevel            int     `yaml:"max_level"`
	PointsForFirstLevel int     `yaml:"points_for_first_level"`
	ScalingFactorA      float64 `yaml:"scaling_factor_a"`
	ScalingFactorB      float64 `yaml:"scaling_factor_b"`
	ScalingFactorC      float64 `yaml:"scaling_factor_c"`
	Curve               string  `yaml:"curve"`

	MaxPropagationDepth int `yaml:"max_propagation_depth"`
}

// DefaultEngine returns the stock leveling parameters.
func DefaultEngine() EngineDefaults {
	return EngineDefaults{
		MaxLevel:            100,
		PointsForFirstLevel: 100,
		ScalingFactorA:      1.1,
		ScalingFactorB:      1.5,
		ScalingFactorC:      0,
		Curve:               "exponential",
		MaxPropagationDepth: stat.DefaultMaxPropagationDepth,
	}
}

// Validate checks the defaults on their own.
func (d EngineDefaults) Validate() error {
	if d.MaxLevel < 1 {
		return fmt.Errorf("max_level %d: must be at least 1", d.MaxLevel)
	}
	if d.PointsForFirstLevel < 0 {
		return errors.New("points_for_first_level must not be negative")
	}
	if d.MaxPropagationDepth < 1 {
		return fmt.Errorf("max_propagation_depth %d: must be at least 1", d.MaxPropagationDepth)
	}
	if _, err := leveling.ParseCurveType(d.Curve); err != nil {
		return err
	}
	return nil
}

// CurveFor resolves a leveling definition against the defaults.
func (d EngineDefaults) CurveFor(def LevelingDefinition) (leveling.Curve, error) {
	name := d.Curve
	if def.Curve != "" {
		name = def.Curve
	}
	typ, err := leveling.ParseCurveType(name)
	if err != nil {
		return leveling.Curve{}, err
	}

	return leveling.Curve{
		Type:                typ,
		MaxLevel:            orInt(def.MaxLevel, d.MaxLevel),
		PointsForFirstLevel: orInt(def.PointsForFirstLevel, d.PointsForFirstLevel),
		ScalingFactorA:      orFloat(def.ScalingFactorA, d.ScalingFactorA),
		ScalingFactorB:      orFloat(def.ScalingFactorB, d.ScalingFactorB),
		ScalingFactorC:      orFloat(def.ScalingFactorC, d.ScalingFactorC),
	}, nil
}

func orInt(v *int, fallback int) int {
	if v == nil {
		return fallback
	}
	return *v
}

func orFloat(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}
