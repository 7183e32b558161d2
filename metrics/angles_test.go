package metrics

import (
	"errors"
	"math"
	"math/rand"
	"sort"
	"testing"

	"surveymetrics/domain/core"
)

func TestWrapAngle_MapsIntoFullCircle(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{0, 0},
		{twoPi, 0},
		{-math.Pi / 2, 3 * math.Pi / 2},
		{5 * math.Pi, math.Pi},
		{math.Pi, math.Pi},
	}
	for _, tc := range cases {
		if got := wrapAngle(tc.in); math.Abs(got-tc.want) > 1e-12 {
			t.Errorf("wrapAngle(%v): expected %v, got %v", tc.in, tc.want, got)
		}
	}
}

func TestRotateAngles_KnownRotation(t *testing.T) {
	// Largest gap is between 0.2 and 6.0, so the series rotates by 6.0.
	rotation, rotated, err := rotateAngles([]float64{0.1, 0.2, 6.0})
	if err != nil {
		t.Fatalf("rotateAngles: %v", err)
	}
	if rotation != 6.0 {
		t.Errorf("Expected rotation 6.0, got %v", rotation)
	}

	want := []float64{twoPi - 5.9, twoPi - 5.8, 0}
	for i, w := range want {
		if math.Abs(rotated[i]-w) > 1e-12 {
			t.Errorf("rotated[%d]: expected %v, got %v", i, w, rotated[i])
		}
	}
}

func TestRotateAngles_SingleAngle(t *testing.T) {
	rotation, rotated, err := rotateAngles([]float64{1.5})
	if err != nil {
		t.Fatalf("rotateAngles: %v", err)
	}
	if rotation != 1.5 {
		t.Errorf("Expected rotation 1.5, got %v", rotation)
	}
	if len(rotated) != 1 || rotated[0] != 0 {
		t.Errorf("Expected rotated [0], got %v", rotated)
	}
}

// TestRotateAngles_LargestGapMovesToEnd verifies the rotation invariant on
// random angle sets: every rotated angle lies in [0, 2*pi) and no internal
// gap of the rotated series exceeds its wraparound gap.
func TestRotateAngles_LargestGapMovesToEnd(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	for trial := 0; trial < 20; trial++ {
		n := 3 + rng.Intn(40)
		angles := make([]float64, n)
		for i := range angles {
			angles[i] = rng.Float64() * twoPi
		}

		_, rotated, err := rotateAngles(angles)
		if err != nil {
			t.Fatalf("trial %d: %v", trial, err)
		}
		if len(rotated) != n {
			t.Fatalf("trial %d: expected %d rotated angles, got %d", trial, n, len(rotated))
		}

		sorted := make([]float64, n)
		copy(sorted, rotated)
		sort.Float64s(sorted)

		for _, a := range sorted {
			if a < 0 || a >= twoPi {
				t.Fatalf("trial %d: rotated angle %v outside [0, 2*pi)", trial, a)
			}
		}

		endGap := twoPi - sorted[n-1] + sorted[0]
		for i := 1; i < n; i++ {
			if gap := sorted[i] - sorted[i-1]; gap > endGap+1e-12 {
				t.Fatalf("trial %d: internal gap %v exceeds end gap %v", trial, gap, endGap)
			}
		}
	}
}

func TestAngles_DegreesInputRejected(t *testing.T) {
	ds := mustSlice(t, map[string][]float64{"rotSkyPos": {0, 90, 180, 270}})

	rms, _ := NewRmsAngle("rotSkyPos")
	fullRange, _ := NewFullRangeAngle("rotSkyPos")

	for _, m := range []Metric{rms, fullRange} {
		_, err := m.Run(ds, nil)
		if err == nil {
			t.Fatalf("%s: expected error for degree-scale input", m.Name())
		}
		if !errors.Is(err, core.ErrNotRadians) {
			t.Errorf("%s: expected radians error, got %v", m.Name(), err)
		}
		if !core.IsConfigError(err) {
			t.Errorf("%s: radians error should classify as config error", m.Name())
		}
	}
}

// TestMeanAngle_BoundaryCluster generates a tight cluster wrapped across
// the 0/2*pi boundary. The angular mean must recover the cluster center
// while a naive linear mean lands far away.
func TestMeanAngle_BoundaryCluster(t *testing.T) {
	const base = 6.2
	const eps = 0.3
	rng := rand.New(rand.NewSource(13))

	vals := make([]float64, 500)
	for i := range vals {
		vals[i] = wrapAngle(base + (rng.Float64()*2-1)*eps)
	}
	ds := mustSlice(t, map[string][]float64{"rotSkyPos": vals})

	angular, _ := NewMeanAngle("rotSkyPos")
	naive, _ := NewMean("rotSkyPos")

	v, err := angular.Run(ds, nil)
	if err != nil {
		t.Fatalf("MeanAngle: %v", err)
	}
	if d := angularDistance(v.Scalar, base); d > 0.05 {
		t.Errorf("Expected angular mean within 0.05 of %v, got %v (distance %v)", base, v.Scalar, d)
	}

	nv, err := naive.Run(ds, nil)
	if err != nil {
		t.Fatalf("Mean: %v", err)
	}
	if d := angularDistance(nv.Scalar, base); d < 1 {
		t.Errorf("Expected naive mean to miss the wrapped cluster, got %v (distance %v)", nv.Scalar, d)
	}
}

func TestMeanAngle_SymmetricPairAroundZero(t *testing.T) {
	m, err := NewMeanAngle("rotSkyPos")
	if err != nil {
		t.Fatalf("NewMeanAngle: %v", err)
	}
	if m.Units() != "radians" {
		t.Errorf("Expected units radians, got %s", m.Units())
	}

	ds := mustSlice(t, map[string][]float64{"rotSkyPos": {twoPi - 0.1, 0.1}})
	v, err := m.Run(ds, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if d := angularDistance(v.Scalar, 0); d > 1e-9 {
		t.Errorf("Expected mean at the boundary, got %v (distance %v)", v.Scalar, d)
	}
}

func TestMeanAngle_UniformCoverageReportsPi(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	vals := make([]float64, 1000)
	for i := range vals {
		vals[i] = rng.Float64() * twoPi
	}
	ds := mustSlice(t, map[string][]float64{"rotSkyPos": vals})

	m, _ := NewMeanAngle("rotSkyPos")
	v, err := m.Run(ds, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if v.Scalar != math.Pi {
		t.Errorf("Expected pi for uniform coverage, got %v", v.Scalar)
	}
}

// TestRmsAngle_WraparoundCluster verifies the spread of a wrapped cluster
// matches the spread of the same cluster away from the boundary.
func TestRmsAngle_WraparoundCluster(t *testing.T) {
	const base = 6.1
	const halfWidth = 0.5
	rng := rand.New(rand.NewSource(21))

	vals := make([]float64, 300)
	for i := range vals {
		vals[i] = wrapAngle(base + (rng.Float64()*2-1)*halfWidth)
	}
	ds := mustSlice(t, map[string][]float64{"rotSkyPos": vals})

	angular, _ := NewRmsAngle("rotSkyPos")
	naive, _ := NewRms("rotSkyPos")

	v, err := angular.Run(ds, nil)
	if err != nil {
		t.Fatalf("RmsAngle: %v", err)
	}
	// Uniform on a width-1 interval has sigma 1/sqrt(12).
	want := 1 / math.Sqrt(12)
	if v.Scalar < want-0.05 || v.Scalar > want+0.05 {
		t.Errorf("Expected sigma near %v, got %v", want, v.Scalar)
	}

	nv, err := naive.Run(ds, nil)
	if err != nil {
		t.Fatalf("Rms: %v", err)
	}
	if nv.Scalar < 1 {
		t.Errorf("Expected naive sigma inflated by the wrap, got %v", nv.Scalar)
	}
}

func TestFullRangeAngle_KnownWrap(t *testing.T) {
	m, err := NewFullRangeAngle("rotSkyPos")
	if err != nil {
		t.Fatalf("NewFullRangeAngle: %v", err)
	}

	ds := mustSlice(t, map[string][]float64{"rotSkyPos": {0.1, 0.2, 6.0}})
	v, err := m.Run(ds, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := twoPi - 6.0 + 0.2
	if math.Abs(v.Scalar-want) > 1e-12 {
		t.Errorf("Expected angular range %v, got %v", want, v.Scalar)
	}
}

func TestFullRangeAngle_NoWrapMatchesLinearRange(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	vals := make([]float64, 100)
	for i := range vals {
		vals[i] = 1 + rng.Float64()
	}
	ds := mustSlice(t, map[string][]float64{"rotSkyPos": vals})

	angular, _ := NewFullRangeAngle("rotSkyPos")
	linear, _ := NewFullRange("rotSkyPos")

	a, err := angular.Run(ds, nil)
	if err != nil {
		t.Fatalf("FullRangeAngle: %v", err)
	}
	b, err := linear.Run(ds, nil)
	if err != nil {
		t.Fatalf("FullRange: %v", err)
	}
	if math.Abs(a.Scalar-b.Scalar) > 1e-12 {
		t.Errorf("Expected angular range %v to match linear range %v away from the boundary", a.Scalar, b.Scalar)
	}
}

func TestAngleMetrics_EmptySliceIsBad(t *testing.T) {
	empty := mustSlice(t, map[string][]float64{"rotSkyPos": nil})

	mean, _ := NewMeanAngle("rotSkyPos")
	rms, _ := NewRmsAngle("rotSkyPos")
	fullRange, _ := NewFullRangeAngle("rotSkyPos")

	for _, m := range []Metric{mean, rms, fullRange} {
		v, err := m.Run(empty, nil)
		if err != nil {
			t.Fatalf("%s on empty slice: %v", m.Name(), err)
		}
		if !v.IsBad(m.BadValue()) {
			t.Errorf("%s: expected sentinel on empty slice, got %v", m.Name(), v.Scalar)
		}
	}
}

// angularDistance returns the shortest arc between two angles.
func angularDistance(a, b float64) float64 {
	d := math.Abs(wrapAngle(a) - wrapAngle(b))
	if d > math.Pi {
		d = twoPi - d
	}
	return d
}
