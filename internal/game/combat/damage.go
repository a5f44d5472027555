package combat

import "math"

// DamageOptions describes one incoming hit. Exactly one amount is used, checked in
// fixed precedence: Flat, then PercentOfCurrent, then PercentOfMax.
// Percentages are fractions of the vital's effective current value or of its max.
type DamageOptions struct {
	Flat             *int
	PercentOfCurrent *float64
	PercentOfMax     *float64
	Source           string
}

// FlatDamage builds options for a fixed damage amount.
func FlatDamage(amount int, source string) DamageOptions {
	return DamageOptions{Flat: &amount, Source: source}
}

// PercentOfCurrentDamage builds options for damage relative to the current value.
func PercentOfCurrentDamage(fraction float64, source string) DamageOptions {
	return DamageOptions{PercentOfCurrent: &fraction, Source: source}
}

// PercentOfMaxDamage builds options for damage relative to the max value.
func PercentOfMaxDamage(fraction float64, source string) DamageOptions {
	return DamageOptions{PercentOfMax: &fraction, Source: source}
}

// HealOptions describes a flat heal.
type HealOptions struct {
	Amount int
	Source string
}

// DamageResult records one resolved hit.
type DamageResult struct {
	Stat            string
	Source          string
	Incoming        int // before mitigation
	Final           int // after mitigation, may be negative
	IncomingPercent float64
	FinalPercent    float64
	DamageBefore    int
	DamageAfter     int
}

// HealResult records one resolved heal.
type HealResult struct {
	Stat         string
	Source       string
	Amount       int // damage actually removed
	Percent      float64
	DamageBefore int
	DamageAfter  int
}

// rawDamage resolves the first set option to an absolute amount.
func rawDamage(opts DamageOptions, current, max int) int {
	switch {
	case opts.Flat != nil:
		return *opts.Flat
	case opts.PercentOfCurrent != nil:
		return int(math.Round(*opts.PercentOfCurrent * float64(current)))
	case opts.PercentOfMax != nil:
		return int(math.Round(*opts.PercentOfMax * float64(max)))
	}
	return 0
}

// percentOf returns amount as a fraction of max; 0 when max is not positive.
func percentOf(amount, max int) float64 {
	if max <= 0 {
		return 0
	}
	return float64(amount) / float64(max)
}
