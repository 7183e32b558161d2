package metrics

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	"surveymetrics/domain/core"
	"surveymetrics/domain/slice"
)

const twoPi = 2 * math.Pi

// wrapAngle maps x into [0, 2*pi).
func wrapAngle(x float64) float64 {
	x = math.Mod(x, twoPi)
	if x < 0 {
		x += twoPi
	}
	return x
}

// rotateAngles rotates a series of angles in [0, 2*pi) so that the largest
// angular gap sits at the end of the range. Linear statistics (mean, std,
// full range) over the rotated series are then free of the 0/2*pi
// discontinuity. Ties on the largest gap break toward the last occurrence.
// Returns the rotation offset and the rotated angles in input order, all in
// [0, 2*pi). A negative wraparound gap means the input is not in radians,
// which is a usage error, not a data condition.
func rotateAngles(angles []float64) (float64, []float64, error) {
	sorted := make([]float64, len(angles))
	copy(sorted, angles)
	sort.Float64s(sorted)

	n := len(sorted)
	gaps := make([]float64, n)
	for i := 1; i < n; i++ {
		gaps[i-1] = sorted[i] - sorted[i-1]
	}
	wrap := twoPi - sorted[n-1] + sorted[0]
	if wrap < 0 {
		return 0, nil, core.ErrNotRadians
	}
	gaps[n-1] = wrap

	maxIdx := 0
	for i, g := range gaps {
		if g >= gaps[maxIdx] {
			maxIdx = i
		}
	}

	var rotation float64
	if maxIdx == n-1 {
		// Largest gap is the wraparound gap: the smallest angle already
		// follows it.
		rotation = sorted[0]
	} else {
		rotation = sorted[maxIdx+1]
	}

	rotated := make([]float64, len(angles))
	for i, a := range angles {
		rotated[i] = wrapAngle(a - rotation)
	}
	return rotation, rotated, nil
}

// MeanAngle reports the mean of an angular column in radians. It differs
// from Mean in that it accounts for wraparound at 2*pi.
type MeanAngle struct {
	Base
}

// NewMeanAngle creates a MeanAngle metric over col (radians).
func NewMeanAngle(col string, opts ...Option) (*MeanAngle, error) {
	base, err := newBase([]string{col}, defaultName("MeanAngle", col), "radians", KindFloat, DefaultBadValue, opts)
	if err != nil {
		return nil, err
	}
	return &MeanAngle{Base: base}, nil
}

// Run computes the mean angle via unit vectors. When the resultant vector
// magnitude falls below 0.1 the angles are nearly uniformly distributed and
// the mean is reported as pi by convention.
func (m *MeanAngle) Run(ds *slice.DataSlice, _ *slice.SlicePoint) (Value, error) {
	data, err := m.primary(ds)
	if err != nil {
		return Value{}, err
	}
	if len(data) == 0 {
		return m.bad(), nil
	}

	xs := make([]float64, len(data))
	ys := make([]float64, len(data))
	for i, a := range data {
		xs[i] = math.Cos(a)
		ys[i] = math.Sin(a)
	}
	meanX, _ := stats.Mean(xs)
	meanY, _ := stats.Mean(ys)

	mean := wrapAngle(math.Atan2(meanY, meanX))
	if math.Hypot(meanX, meanY) < 0.1 {
		mean = math.Pi
	}
	return Value{Scalar: mean}, nil
}

// RmsAngle reports the standard deviation of an angular column in radians.
// It differs from Rms in that it accounts for wraparound at 2*pi.
type RmsAngle struct {
	Base
}

// NewRmsAngle creates an RmsAngle metric over col (radians).
func NewRmsAngle(col string, opts ...Option) (*RmsAngle, error) {
	base, err := newBase([]string{col}, defaultName("RmsAngle", col), "radians", KindFloat, DefaultBadValue, opts)
	if err != nil {
		return nil, err
	}
	return &RmsAngle{Base: base}, nil
}

func (m *RmsAngle) Run(ds *slice.DataSlice, _ *slice.SlicePoint) (Value, error) {
	data, err := m.primary(ds)
	if err != nil {
		return Value{}, err
	}
	if len(data) == 0 {
		return m.bad(), nil
	}
	_, rotated, err := rotateAngles(data)
	if err != nil {
		return Value{}, err
	}
	return m.checked(stats.StandardDeviation(rotated)), nil
}

// FullRangeAngle reports the full range of an angular column in radians.
// It differs from FullRange in that it accounts for wraparound at 2*pi.
type FullRangeAngle struct {
	Base
}

// NewFullRangeAngle creates a FullRangeAngle metric over col (radians).
func NewFullRangeAngle(col string, opts ...Option) (*FullRangeAngle, error) {
	base, err := newBase([]string{col}, defaultName("FullRangeAngle", col), "radians", KindFloat, DefaultBadValue, opts)
	if err != nil {
		return nil, err
	}
	return &FullRangeAngle{Base: base}, nil
}

func (m *FullRangeAngle) Run(ds *slice.DataSlice, _ *slice.SlicePoint) (Value, error) {
	data, err := m.primary(ds)
	if err != nil {
		return Value{}, err
	}
	if len(data) == 0 {
		return m.bad(), nil
	}
	_, rotated, err := rotateAngles(data)
	if err != nil {
		return Value{}, err
	}
	maxV, _ := stats.Max(rotated)
	minV, _ := stats.Min(rotated)
	return Value{Scalar: maxV - minV}, nil
}
