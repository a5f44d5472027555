package leveling

import (
	"fmt"
	"math"
	"strings"
)

// CurveType selects the threshold formula of a Curve.
type CurveType uint8

const (
	CurveNone CurveType = iota
	CurveLinear
	CurveExponential
	CurvePolynomial
)

var curveNames = [...]string{"none", "linear", "exponential", "polynomial"}

func (c CurveType) String() string {
	if int(c) < len(curveNames) {
		return curveNames[c]
	}
	return fmt.Sprintf("curve(%d)", c)
}

// ParseCurveType converts a config name to a CurveType. Empty means none.
func ParseCurveType(s string) (CurveType, error) {
	if s == "" {
		return CurveNone, nil
	}
	for i, name := range curveNames {
		if strings.EqualFold(s, name) {
			return CurveType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown leveling curve %q", s)
}

// Curve maps levels to cumulative point thresholds.
//
//	linear:      PointsForFirstLevel + A*(level-2)
//	exponential: PointsForFirstLevel * A^(level-2)
//	polynomial:  A*(level-1)^B + C
//
// Levels at or below 1 need no points; levels above MaxLevel are evaluated at MaxLevel.
// A CurveNone curve disables leveling: the level is always 0.
type Curve struct {
	Type                CurveType
	MaxLevel            int
	PointsForFirstLevel int
	ScalingFactorA      float64
	ScalingFactorB      float64
	ScalingFactorC      float64
}

// StartLevel returns the level of a track holding no points.
func (c Curve) StartLevel() int {
	if c.Type == CurveNone {
		return 0
	}
	return 1
}

// TotalPointsForLevel returns the cumulative points needed to reach level.
// Non-finite or out-of-range results saturate to the int range.
func (c Curve) TotalPointsForLevel(level int) int {
	if c.MaxLevel > 0 && level > c.MaxLevel {
		level = c.MaxLevel
	}
	if level <= 1 {
		return 0
	}

	var total float64
	switch c.Type {
	case CurveLinear:
		total = float64(c.PointsForFirstLevel) + c.ScalingFactorA*float64(level-2)
	case CurveExponential:
		total = float64(c.PointsForFirstLevel) * math.Pow(c.ScalingFactorA, float64(level-2))
	case CurvePolynomial:
		total = c.ScalingFactorA*math.Pow(float64(level-1), c.ScalingFactorB) + c.ScalingFactorC
	default:
		return 0
	}
	return roundPoints(total)
}

// LevelFromPoints returns the highest level whose threshold is reached by points,
// capped at MaxLevel.
func (c Curve) LevelFromPoints(points int) int {
	if c.Type == CurveNone {
		return 0
	}
	level := 1
	for (c.MaxLevel <= 0 || level < c.MaxLevel) && c.TotalPointsForLevel(level+1) <= points {
		level++
		if c.MaxLevel <= 0 && level >= maxUncappedLevel {
			break
		}
	}
	return level
}

// PointsToNextLevel returns how many more points reach the level after current.
// Returns 0 at MaxLevel or for a disabled curve.
func (c Curve) PointsToNextLevel(points int) int {
	level := c.LevelFromPoints(points)
	if c.Type == CurveNone || (c.MaxLevel > 0 && level >= c.MaxLevel) {
		return 0
	}
	return max(c.TotalPointsForLevel(level+1)-points, 0)
}

// ProgressToNextLevel returns the fraction (0..1) of the current level completed.
// A level that needs no additional points, the max level and a disabled curve
// all report 1.
func (c Curve) ProgressToNextLevel(points int) float64 {
	if c.Type == CurveNone {
		return 1
	}
	level := c.LevelFromPoints(points)
	if c.MaxLevel > 0 && level >= c.MaxLevel {
		return 1
	}

	floor := c.TotalPointsForLevel(level)
	span := c.TotalPointsForLevel(level+1) - floor
	if span <= 0 {
		return 1
	}
	progress := float64(points-floor) / float64(span)
	return min(max(progress, 0), 1)
}

// maxUncappedLevel guards LevelFromPoints when no MaxLevel is configured.
const maxUncappedLevel = 10_000

func roundPoints(v float64) int {
	switch {
	case math.IsNaN(v):
		return 0
	case v >= float64(math.MaxInt):
		return math.MaxInt
	case v <= float64(math.MinInt):
		return math.MinInt
	}
	return int(math.Round(v))
}
