package stat

import (
	"fmt"
	"log/slog"
	"math"
	"strings"
)

// ID indexes a stat inside its Sheet.
type ID int

// Variation classifies how a stat may be written.
type Variation uint8

const (
	VariationMajor Variation = iota
	VariationMinor
	VariationPseudo
	VariationComplex
)

var variationNames = [...]string{"major", "minor", "pseudo", "complex"}

func (v Variation) String() string {
	if int(v) < len(variationNames) {
		return variationNames[v]
	}
	return fmt.Sprintf("variation(%d)", v)
}

// AllowsDirectSet reports whether SetPoints may write the stat.
// Minor and Complex stats are derived and only move through add/remove or modifiers.
func (v Variation) AllowsDirectSet() bool {
	return v != VariationMinor && v != VariationComplex
}

// ParseVariation converts a config name ("major", "Minor", ...) to a Variation.
func ParseVariation(s string) (Variation, error) {
	for i, name := range variationNames {
		if strings.EqualFold(s, name) {
			return Variation(i), nil
		}
	}
	return 0, fmt.Errorf("unknown stat variation %q", s)
}

// Direction marks which way a value moved.
type Direction int8

const (
	DirectionNone Direction = iota
	DirectionIncrease
	DirectionDecrease
)

func (d Direction) String() string {
	switch d {
	case DirectionIncrease:
		return "increase"
	case DirectionDecrease:
		return "decrease"
	default:
		return "none"
	}
}

// Change describes one apparent value transition.
type Change struct {
	Stat     ID
	Name     string
	Previous int
	New      int
}

// Delta returns New - Previous.
func (c Change) Delta() int {
	return c.New - c.Previous
}

// Direction returns the direction marker of the change.
func (c Change) Direction() Direction {
	switch d := c.Delta(); {
	case d > 0:
		return DirectionIncrease
	case d < 0:
		return DirectionDecrease
	default:
		return DirectionNone
	}
}

// Value is one stat: an unbounded base and a clamped apparent value.
// Not safe for concurrent use.
type Value struct {
	id        ID
	name      string
	variation Variation

	base     int
	apparent int
	min      int
	max      int

	mods ModifierStack

	notify func(Change)
}

// NewValue creates a stat whose apparent value starts at base clamped into [min, max].
func NewValue(id ID, name string, variation Variation, base, min, max int) *Value {
	if min > max {
		min, max = max, min
	}
	v := &Value{
		id:        id,
		name:      name,
		variation: variation,
		base:      base,
		min:       min,
		max:       max,
	}
	v.apparent = v.clamp(base)
	return v
}

func (v *Value) ID() ID                    { return v.id }
func (v *Value) Name() string              { return v.name }
func (v *Value) Variation() Variation      { return v.variation }
func (v *Value) Base() int                 { return v.base }
func (v *Value) Apparent() int             { return v.apparent }
func (v *Value) Min() int                  { return v.min }
func (v *Value) Max() int                  { return v.max }
func (v *Value) Modifiers() []Modifier     { return v.mods.Entries() }
func (v *Value) HasModifier(n string) bool { return v.mods.Has(n) }

// AddPoints raises the apparent value by n (clamped) and moves base by the
// amount actually applied.
func (v *Value) AddPoints(n int) error {
	if n < 0 {
		return fmt.Errorf("adding %d points to %s: %w", n, v.name, ErrNegativePoints)
	}
	v.shift(n)
	return nil
}

// RemovePoints lowers the apparent value by n (clamped) and moves base by the
// amount actually applied.
func (v *Value) RemovePoints(n int) error {
	if n < 0 {
		return fmt.Errorf("removing %d points from %s: %w", n, v.name, ErrNegativePoints)
	}
	v.shift(-n)
	return nil
}

// SetPoints writes the apparent value directly. Derived variations refuse the
// write: the value is left untouched, a warning is logged and false is returned.
func (v *Value) SetPoints(n int) bool {
	if !v.variation.AllowsDirectSet() {
		slog.Warn("direct set rejected for derived stat",
			"stat", v.name,
			"variation", v.variation,
			"action", "set_points",
			"requested", n)
		return false
	}
	v.shift(v.clamp(n) - v.apparent)
	return true
}

// AddModifier attaches a named effect and recomputes the apparent value.
func (v *Value) AddModifier(name string, e Effect) {
	v.mods.Add(name, e)
	v.Recompute()
}

// RemoveModifier detaches the named effect. Missing names are a no-op.
func (v *Value) RemoveModifier(name string) bool {
	if !v.mods.Remove(name) {
		return false
	}
	v.Recompute()
	return true
}

// Recompute resets the apparent value to base and reapplies every modifier.
func (v *Value) Recompute() {
	prev := v.apparent
	v.apparent = v.clamp(v.mods.Apply(v.base, v.max))
	v.emit(prev)
}

// Restore overwrites base, apparent and the modifier stack without notification.
// Used when rehydrating a stat from a snapshot; mods keep their given order.
func (v *Value) Restore(base, apparent int, mods ...Modifier) {
	v.base = base
	v.apparent = v.clamp(apparent)
	v.mods = ModifierStack{}
	for _, m := range mods {
		v.mods.Add(m.Name, m.Effect)
	}
}

func (v *Value) shift(delta int) {
	prev := v.apparent
	next := v.clamp(addSat(prev, delta))
	v.base += next - prev
	v.apparent = next
	if v.mods.Len() > 0 {
		v.apparent = v.clamp(v.mods.Apply(v.base, v.max))
	}
	v.emit(prev)
}

func (v *Value) emit(prev int) {
	if v.apparent == prev || v.notify == nil {
		return
	}
	v.notify(Change{Stat: v.id, Name: v.name, Previous: prev, New: v.apparent})
}

func (v *Value) clamp(n int) int {
	return min(max(n, v.min), v.max)
}

func addSat(a, b int) int {
	switch {
	case b > 0 && a > math.MaxInt-b:
		return math.MaxInt
	case b < 0 && a < math.MinInt-b:
		return math.MinInt
	}
	return a + b
}
