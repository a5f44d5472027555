package stat

import "math"

// Effect is a single modifier rule applied to a stat value.
// All magnitudes are optional; a term participates only when its magnitude is non-zero,
// and every participating term is summed into one signed factor.
//
// Percentage and PercentageOfMax are fractions (0.1 = 10%), not 0-100 values.
type Effect struct {
	FlatAmount        int
	Percentage        float64
	PercentageOfMax   float64
	IsPositive        bool
	IsAdditive        bool
	ScalesOnBaseValue bool
	ScalingFactor     float64
	Priority          int // lower applied first
}

// Apply returns the new current value produced by the effect.
//
//	additive:       current ± factor
//	multiplicative: current ± factor*current
//
// Only the scaled base component of the flat term is rounded (half to even);
// the final result is truncated toward zero.
func (e Effect) Apply(base, current, max int) int {
	scaledBase := float64(base) * e.ScalingFactor
	factor := 0.0

	if e.FlatAmount != 0 {
		factor += float64(e.FlatAmount)
		if e.ScalesOnBaseValue {
			factor += math.RoundToEven(scaledBase)
		}
	}

	if e.Percentage != 0 {
		if e.ScalesOnBaseValue {
			factor += e.Percentage * scaledBase
		} else {
			factor += e.Percentage * float64(current)
		}
	}

	// max <= 0 has no meaningful percentage
	if e.PercentageOfMax != 0 && max > 0 {
		term := e.PercentageOfMax * float64(max)
		if e.ScalesOnBaseValue {
			term *= scaledBase
		}
		factor += term
	}

	if factor == 0 {
		return current
	}

	sign := 1.0
	if !e.IsPositive {
		sign = -1.0
	}

	result := float64(current)
	if e.IsAdditive {
		result += sign * factor
	} else {
		result += sign * factor * float64(current)
	}
	return toInt(result)
}

// IsZero reports whether the effect has no magnitude at all.
func (e Effect) IsZero() bool {
	return e.FlatAmount == 0 && e.Percentage == 0 && e.PercentageOfMax == 0
}

// Negate returns the same effect with the opposite direction.
func (e Effect) Negate() Effect {
	e.IsPositive = !e.IsPositive
	return e
}

// toInt truncates toward zero, saturating at the int range.
func toInt(v float64) int {
	switch {
	case math.IsNaN(v):
		return 0
	case v >= float64(math.MaxInt):
		return math.MaxInt
	case v <= float64(math.MinInt):
		return math.MinInt
	}
	return int(v)
}
