package leveling

import (
	"errors"
	"fmt"
	"math"
)

var ErrNegativePoints = errors.New("experience amount must not be negative")

// LevelChange is reported when a track crosses one or more level thresholds.
type LevelChange struct {
	Track    string
	Previous int
	New      int
	Points   int // accumulated points after the change
}

// Gained returns the number of levels gained (negative when levels were lost).
func (c LevelChange) Gained() int {
	return c.New - c.Previous
}

// Track accumulates points for one progressing stat or skill.
// The level is always derived from points via the curve.
// Not safe for concurrent use.
type Track struct {
	name   string
	curve  Curve
	points int
	level  int

	onLevel func(LevelChange)
}

// NewTrack creates a track with no points at the curve's start level.
func NewTrack(name string, curve Curve) *Track {
	return &Track{
		name:  name,
		curve: curve,
		level: curve.StartLevel(),
	}
}

func (t *Track) Name() string  { return t.name }
func (t *Track) Curve() Curve  { return t.curve }
func (t *Track) Points() int   { return t.points }
func (t *Track) Level() int    { return t.level }
func (t *Track) MaxLevel() int { return t.curve.MaxLevel }

// OnLevelChange sets the callback fired after the level moves.
func (t *Track) OnLevelChange(fn func(LevelChange)) {
	t.onLevel = fn
}

// AddPoints accumulates n points and re-evaluates the level.
func (t *Track) AddPoints(n int) error {
	if n < 0 {
		return fmt.Errorf("adding %d points to track %s: %w", n, t.name, ErrNegativePoints)
	}
	sum := t.points + n
	if sum < t.points {
		sum = math.MaxInt
	}
	t.setPoints(sum)
	return nil
}

// SetPoints replaces the accumulated points and re-evaluates the level.
func (t *Track) SetPoints(n int) error {
	if n < 0 {
		return fmt.Errorf("setting track %s to %d points: %w", t.name, n, ErrNegativePoints)
	}
	t.setPoints(n)
	return nil
}

// PointsToNextLevel returns the points still missing for the next level.
func (t *Track) PointsToNextLevel() int {
	return t.curve.PointsToNextLevel(t.points)
}

// Progress returns the completed fraction of the current level.
func (t *Track) Progress() float64 {
	return t.curve.ProgressToNextLevel(t.points)
}

// IsMaxLevel reports whether the track cannot level further.
func (t *Track) IsMaxLevel() bool {
	return t.curve.Type == CurveNone || (t.curve.MaxLevel > 0 && t.level >= t.curve.MaxLevel)
}

// Restore sets points without firing level callbacks.
func (t *Track) Restore(points int) {
	t.points = max(points, 0)
	t.level = t.curve.LevelFromPoints(t.points)
}

func (t *Track) setPoints(n int) {
	t.points = n
	prev := t.level
	t.level = t.curve.LevelFromPoints(n)
	if t.level != prev && t.onLevel != nil {
		t.onLevel(LevelChange{Track: t.name, Previous: prev, New: t.level, Points: n})
	}
}
