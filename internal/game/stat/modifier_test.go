package stat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func names(mods []Modifier) []string {
	out := make([]string, len(mods))
	for i, m := range mods {
		out[i] = m.Name
	}
	return out
}

func TestModifierStack_OrderByPriorityThenInsertion(t *testing.T) {
	var s ModifierStack
	s.Add("c", Effect{Priority: 5})
	s.Add("a", Effect{Priority: 1})
	s.Add("d", Effect{Priority: 5})
	s.Add("b", Effect{Priority: 1})
	s.Add("first", Effect{Priority: -3})

	assert.Equal(t, []string{"first", "a", "b", "c", "d"}, names(s.Entries()))
}

func TestModifierStack_ReplaceByName(t *testing.T) {
	var s ModifierStack
	s.Add("a", Effect{FlatAmount: 1, IsPositive: true, IsAdditive: true})
	s.Add("b", Effect{FlatAmount: 2, IsPositive: true, IsAdditive: true})
	s.Add("a", Effect{FlatAmount: 5, IsPositive: true, IsAdditive: true})

	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []string{"b", "a"}, names(s.Entries()))
	assert.Equal(t, 17, s.Apply(10, 100))
}

func TestModifierStack_RemoveMissingIsNoop(t *testing.T) {
	var s ModifierStack
	s.Add("a", Effect{FlatAmount: 1, IsPositive: true, IsAdditive: true})

	assert.False(t, s.Remove("nope"))
	assert.Equal(t, 1, s.Len())
	assert.True(t, s.Has("a"))
}

func TestModifierStack_AlwaysUsesOriginalBase(t *testing.T) {
	var s ModifierStack
	scaled := Effect{Percentage: 0.5, IsPositive: true, IsAdditive: true, ScalesOnBaseValue: true, ScalingFactor: 1}
	s.Add("x", scaled)
	s.Add("y", scaled)

	// each term is 50% of base 20, not of the running value
	assert.Equal(t, 40, s.Apply(20, 100))
}

func TestModifierStack_OrderSensitivity(t *testing.T) {
	flat10 := Effect{FlatAmount: 10, IsPositive: true, IsAdditive: true}
	flat5 := Effect{FlatAmount: 5, IsPositive: true, IsAdditive: true}
	double := Effect{FlatAmount: 1, IsPositive: true}

	tests := []struct {
		name      string
		a, b      Effect
		sameOrder bool
	}{
		{name: "additive pair commutes", a: flat10, b: flat5, sameOrder: true},
		{name: "additive then multiplicative differs", a: flat10, b: double, sameOrder: false},
		{name: "multiplicative pair", a: double, b: Effect{Percentage: 0.5, IsPositive: true}, sameOrder: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ab, ba ModifierStack
			ab.Add("a", tt.a)
			ab.Add("b", tt.b)
			ba.Add("b", tt.b)
			ba.Add("a", tt.a)

			const base, limit = 10, 1000
			if tt.sameOrder {
				assert.Equal(t, ab.Apply(base, limit), ba.Apply(base, limit))
			} else {
				assert.NotEqual(t, ab.Apply(base, limit), ba.Apply(base, limit))
			}
		})
	}
}

func TestModifierStack_EmptyReturnsBase(t *testing.T) {
	var s ModifierStack
	assert.Equal(t, 33, s.Apply(33, 10))
}
