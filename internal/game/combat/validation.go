package combat

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrNoDamageAmount  = errors.New("damage options carry no amount")
	ErrNegativeDamage  = errors.New("damage amount must not be negative")
	ErrNegativeHeal    = errors.New("heal amount must not be negative")
	ErrInvalidFraction = errors.New("damage fraction must be finite and not negative")
)

// ValidateDamage checks that the option selected by precedence is usable.
// Options after the selected one are ignored.
func ValidateDamage(opts DamageOptions) error {
	switch {
	case opts.Flat != nil:
		if *opts.Flat < 0 {
			return fmt.Errorf("flat damage %d: %w", *opts.Flat, ErrNegativeDamage)
		}
	case opts.PercentOfCurrent != nil:
		if !validFraction(*opts.PercentOfCurrent) {
			return fmt.Errorf("percent of current %v: %w", *opts.PercentOfCurrent, ErrInvalidFraction)
		}
	case opts.PercentOfMax != nil:
		if !validFraction(*opts.PercentOfMax) {
			return fmt.Errorf("percent of max %v: %w", *opts.PercentOfMax, ErrInvalidFraction)
		}
	default:
		return ErrNoDamageAmount
	}
	return nil
}

// ValidateHeal checks a heal request.
func ValidateHeal(opts HealOptions) error {
	if opts.Amount < 0 {
		return fmt.Errorf("heal %d: %w", opts.Amount, ErrNegativeHeal)
	}
	return nil
}

func validFraction(f float64) bool {
	return f >= 0 && !math.IsNaN(f) && !math.IsInf(f, 0)
}
