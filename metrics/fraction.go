package metrics

import (
	"fmt"

	"github.com/montanaflynn/stats"

	"surveymetrics/domain/core"
	"surveymetrics/domain/slice"
)

// FracAbove reports the fraction of rows at or above a cutoff, multiplied
// by a fixed scale.
type FracAbove struct {
	Base
	cutoff float64
	scale  float64
}

// NewFracAbove creates a FracAbove metric over col with the given cutoff
// and scale.
func NewFracAbove(col string, cutoff, scale float64, opts ...Option) (*FracAbove, error) {
	name := fmt.Sprintf("FracAbove %.2f in %s", cutoff, col)
	base, err := newBase([]string{col}, name, "", KindFloat, DefaultBadValue, opts)
	if err != nil {
		return nil, err
	}
	return &FracAbove{Base: base, cutoff: cutoff, scale: scale}, nil
}

func (m *FracAbove) Run(ds *slice.DataSlice, _ *slice.SlicePoint) (Value, error) {
	data, err := m.primary(ds)
	if err != nil {
		return Value{}, err
	}
	if len(data) == 0 {
		return m.bad(), nil
	}
	good := 0
	for _, v := range data {
		if v >= m.cutoff {
			good++
		}
	}
	return Value{Scalar: float64(good) / float64(len(data)) * m.scale}, nil
}

// FracBelow reports the fraction of rows at or below a cutoff, multiplied
// by a fixed scale.
type FracBelow struct {
	Base
	cutoff float64
	scale  float64
}

// NewFracBelow creates a FracBelow metric over col with the given cutoff
// and scale.
func NewFracBelow(col string, cutoff, scale float64, opts ...Option) (*FracBelow, error) {
	name := fmt.Sprintf("FracBelow %.2f %s", cutoff, col)
	base, err := newBase([]string{col}, name, "", KindFloat, DefaultBadValue, opts)
	if err != nil {
		return nil, err
	}
	return &FracBelow{Base: base, cutoff: cutoff, scale: scale}, nil
}

func (m *FracBelow) Run(ds *slice.DataSlice, _ *slice.SlicePoint) (Value, error) {
	data, err := m.primary(ds)
	if err != nil {
		return Value{}, err
	}
	if len(data) == 0 {
		return m.bad(), nil
	}
	good := 0
	for _, v := range data {
		if v <= m.cutoff {
			good++
		}
	}
	return Value{Scalar: float64(good) / float64(len(data)) * m.scale}, nil
}

// Percentile reports an arbitrary percentile of a column, with linear
// interpolation between order statistics.
type Percentile struct {
	Base
	percentile float64
}

// NewPercentile creates a Percentile metric over col. percentile must be in
// (0, 100].
func NewPercentile(col string, percentile float64, opts ...Option) (*Percentile, error) {
	if percentile <= 0 || percentile > 100 {
		return nil, core.ErrBadPercentile
	}
	name := fmt.Sprintf("%.0fth%%ile %s", percentile, col)
	base, err := newBase([]string{col}, name, "", KindFloat, DefaultBadValue, opts)
	if err != nil {
		return nil, err
	}
	return &Percentile{Base: base, percentile: percentile}, nil
}

func (m *Percentile) Run(ds *slice.DataSlice, _ *slice.SlicePoint) (Value, error) {
	data, err := m.primary(ds)
	if err != nil {
		return Value{}, err
	}
	if len(data) == 0 {
		return m.bad(), nil
	}
	return Value{Scalar: percentileOf(data, m.percentile)}, nil
}

// NoutliersNsigma counts the rows beyond mean + nSigma*sigma. A
// non-negative nSigma counts rows above the boundary; a negative nSigma
// counts rows below the boundary computed with that signed nSigma.
type NoutliersNsigma struct {
	Base
	nSigma float64
}

// NewNoutliersNsigma creates a NoutliersNsigma metric over col.
func NewNoutliersNsigma(col string, nSigma float64, opts ...Option) (*NoutliersNsigma, error) {
	name := fmt.Sprintf("Noutliers %.1f %s", nSigma, col)
	base, err := newBase([]string{col}, name, "", KindInt, DefaultBadValue, opts)
	if err != nil {
		return nil, err
	}
	return &NoutliersNsigma{Base: base, nSigma: nSigma}, nil
}

func (m *NoutliersNsigma) Run(ds *slice.DataSlice, _ *slice.SlicePoint) (Value, error) {
	data, err := m.primary(ds)
	if err != nil {
		return Value{}, err
	}
	if len(data) == 0 {
		return m.bad(), nil
	}
	mean, _ := stats.Mean(data)
	std, _ := stats.StandardDeviation(data)
	boundary := mean + m.nSigma*std

	outsiders := 0
	for _, v := range data {
		if m.nSigma >= 0 {
			if v > boundary {
				outsiders++
			}
		} else {
			if v < boundary {
				outsiders++
			}
		}
	}
	return Value{Scalar: float64(outsiders)}, nil
}
