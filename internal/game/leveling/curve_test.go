package leveling

import (
	"math"
	"testing"
)

func linearCurve() Curve {
	return Curve{Type: CurveLinear, MaxLevel: 10, PointsForFirstLevel: 100, ScalingFactorA: 50}
}

func TestTotalPointsForLevel(t *testing.T) {
	tests := []struct {
		name  string
		curve Curve
		level int
		want  int
	}{
		{"level 0", linearCurve(), 0, 0},
		{"level 1", linearCurve(), 1, 0},
		{"linear level 2", linearCurve(), 2, 100},
		{"linear level 5", linearCurve(), 5, 250},
		{"linear clamped to max", linearCurve(), 50, 500},
		{"exponential level 2", Curve{Type: CurveExponential, MaxLevel: 20, PointsForFirstLevel: 100, ScalingFactorA: 2}, 2, 100},
		{"exponential level 4", Curve{Type: CurveExponential, MaxLevel: 20, PointsForFirstLevel: 100, ScalingFactorA: 2}, 4, 400},
		{"exponential rounds", Curve{Type: CurveExponential, MaxLevel: 20, PointsForFirstLevel: 10, ScalingFactorA: 1.15}, 3, 12},
		{"polynomial", Curve{Type: CurvePolynomial, MaxLevel: 20, ScalingFactorA: 50, ScalingFactorB: 2, ScalingFactorC: 10}, 3, 210},
		{"polynomial level 1 ignores C", Curve{Type: CurvePolynomial, MaxLevel: 20, ScalingFactorA: 50, ScalingFactorB: 2, ScalingFactorC: 10}, 1, 0},
		{"none", Curve{Type: CurveNone, MaxLevel: 20}, 5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.curve.TotalPointsForLevel(tt.level); got != tt.want {
				t.Errorf("TotalPointsForLevel(%d) = %d, want %d", tt.level, got, tt.want)
			}
		})
	}
}

func TestFirstLevelRequiresPointsForFirstLevel(t *testing.T) {
	c := Curve{Type: CurveLinear, MaxLevel: 100, PointsForFirstLevel: 1, ScalingFactorA: 1, ScalingFactorB: 0.05}

	if got := c.TotalPointsForLevel(2); got != 1 {
		t.Fatalf("threshold of first level-up = %d, want 1", got)
	}
	if got := c.PointsToNextLevel(0); got != 1 {
		t.Fatalf("PointsToNextLevel(0) = %d, want 1", got)
	}
	if got := c.LevelFromPoints(1); got != 2 {
		t.Fatalf("LevelFromPoints(1) = %d, want 2", got)
	}
}

func TestLevelFromPoints(t *testing.T) {
	c := linearCurve()
	tests := []struct {
		points int
		want   int
	}{
		{0, 1},
		{99, 1},
		{100, 2},
		{149, 2},
		{150, 3},
		{500, 10},
		{1_000_000, 10}, // capped
	}

	for _, tt := range tests {
		if got := c.LevelFromPoints(tt.points); got != tt.want {
			t.Errorf("LevelFromPoints(%d) = %d, want %d", tt.points, got, tt.want)
		}
	}
}

func TestLevelFromPoints_InverseConsistency(t *testing.T) {
	curves := map[string]Curve{
		"linear":      linearCurve(),
		"exponential": {Type: CurveExponential, MaxLevel: 30, PointsForFirstLevel: 100, ScalingFactorA: 1.5},
		"polynomial":  {Type: CurvePolynomial, MaxLevel: 40, ScalingFactorA: 50, ScalingFactorB: 2.2, ScalingFactorC: 5},
	}

	for name, c := range curves {
		t.Run(name, func(t *testing.T) {
			for level := 1; level <= c.MaxLevel; level++ {
				if got := c.LevelFromPoints(c.TotalPointsForLevel(level)); got != level {
					t.Fatalf("LevelFromPoints(TotalPointsForLevel(%d)) = %d", level, got)
				}
			}
		})
	}
}

func TestProgressToNextLevel_Monotonic(t *testing.T) {
	c := Curve{Type: CurveExponential, MaxLevel: 15, PointsForFirstLevel: 20, ScalingFactorA: 1.3}

	prevLevel, prev := c.LevelFromPoints(0), c.ProgressToNextLevel(0)
	for p := 1; p <= c.TotalPointsForLevel(c.MaxLevel)+10; p++ {
		level, progress := c.LevelFromPoints(p), c.ProgressToNextLevel(p)
		if progress < 0 || progress > 1 {
			t.Fatalf("progress %f out of range at %d points", progress, p)
		}
		if level == prevLevel && progress < prev {
			t.Fatalf("progress decreased within level %d: %f -> %f at %d points", level, prev, progress, p)
		}
		prevLevel, prev = level, progress
	}
}

func TestProgressAndRemaining(t *testing.T) {
	c := linearCurve()

	if got := c.ProgressToNextLevel(125); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("ProgressToNextLevel(125) = %f, want 0.5", got)
	}
	if got := c.PointsToNextLevel(125); got != 25 {
		t.Errorf("PointsToNextLevel(125) = %d, want 25", got)
	}
	if got := c.ProgressToNextLevel(10_000); got != 1 {
		t.Errorf("progress at max level = %f, want 1", got)
	}
	if got := c.PointsToNextLevel(10_000); got != 0 {
		t.Errorf("remaining at max level = %d, want 0", got)
	}
}

func TestDegenerateCurveReportsComplete(t *testing.T) {
	// Every level past the first has the same threshold.
	c := Curve{Type: CurveLinear, MaxLevel: 5, PointsForFirstLevel: 0, ScalingFactorA: 0}

	if got := c.LevelFromPoints(0); got != 5 {
		t.Errorf("LevelFromPoints(0) = %d, want 5", got)
	}
	flat := Curve{Type: CurveExponential, MaxLevel: 5, PointsForFirstLevel: 10, ScalingFactorA: 1}
	// level 2 reached, level 3 threshold equals level 2 threshold -> jumps to max
	if got := flat.LevelFromPoints(10); got != 5 {
		t.Errorf("LevelFromPoints(10) = %d, want 5", got)
	}
	if got := flat.ProgressToNextLevel(5); got != 0.5 {
		t.Errorf("ProgressToNextLevel(5) = %f, want 0.5", got)
	}

	zeroSpan := Curve{Type: CurvePolynomial, MaxLevel: 5, ScalingFactorA: 0, ScalingFactorB: 1, ScalingFactorC: 0}
	if got := zeroSpan.ProgressToNextLevel(0); got != 1 {
		t.Errorf("zero-width level progress = %f, want 1", got)
	}
}

func TestCurveNone(t *testing.T) {
	c := Curve{Type: CurveNone, MaxLevel: 10, PointsForFirstLevel: 5, ScalingFactorA: 1}

	if got := c.StartLevel(); got != 0 {
		t.Errorf("StartLevel() = %d, want 0", got)
	}
	if got := c.LevelFromPoints(1000); got != 0 {
		t.Errorf("LevelFromPoints(1000) = %d, want 0", got)
	}
	if got := c.PointsToNextLevel(0); got != 0 {
		t.Errorf("PointsToNextLevel(0) = %d, want 0", got)
	}
}

func TestParseCurveType(t *testing.T) {
	for _, want := range []CurveType{CurveNone, CurveLinear, CurveExponential, CurvePolynomial} {
		got, err := ParseCurveType(want.String())
		if err != nil || got != want {
			t.Errorf("ParseCurveType(%q) = %v, %v", want.String(), got, err)
		}
	}
	if got, err := ParseCurveType(""); err != nil || got != CurveNone {
		t.Errorf("ParseCurveType(\"\") = %v, %v", got, err)
	}
	if _, err := ParseCurveType("cubic"); err == nil {
		t.Error("expected error for unknown curve")
	}
}
