package metrics

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"

	"surveymetrics/domain/core"
	"surveymetrics/domain/slice"
)

// CoaddM5 reports the coadded five-sigma limiting depth of the visits in a
// slice: 1.25 * log10(sum(10^(0.8*m5))).
type CoaddM5 struct {
	Base
}

// NewCoaddM5 creates a CoaddM5 metric. An empty column name selects the
// standard per-visit depth column.
func NewCoaddM5(m5Col string, opts ...Option) (*CoaddM5, error) {
	if m5Col == "" {
		m5Col = ColFiveSigmaDepth
	}
	base, err := newBase([]string{m5Col}, "CoaddM5", "mag", KindFloat, DefaultBadValue, opts)
	if err != nil {
		return nil, err
	}
	return &CoaddM5{Base: base}, nil
}

func (m *CoaddM5) Run(ds *slice.DataSlice, _ *slice.SlicePoint) (Value, error) {
	data, err := m.primary(ds)
	if err != nil {
		return Value{}, err
	}
	if len(data) == 0 {
		return m.bad(), nil
	}
	var flux float64
	for _, m5 := range data {
		flux += math.Pow(10, 0.8*m5)
	}
	return Value{Scalar: 1.25 * math.Log10(flux)}, nil
}

// Max reports the maximum of a column.
type Max struct {
	Base
}

// NewMax creates a Max metric over col.
func NewMax(col string, opts ...Option) (*Max, error) {
	base, err := newBase([]string{col}, defaultName("Max", col), "", KindFloat, DefaultBadValue, opts)
	if err != nil {
		return nil, err
	}
	return &Max{Base: base}, nil
}

func (m *Max) Run(ds *slice.DataSlice, _ *slice.SlicePoint) (Value, error) {
	data, err := m.primary(ds)
	if err != nil {
		return Value{}, err
	}
	return m.checked(stats.Max(data)), nil
}

// Mean reports the arithmetic mean of a column.
type Mean struct {
	Base
}

// NewMean creates a Mean metric over col.
func NewMean(col string, opts ...Option) (*Mean, error) {
	base, err := newBase([]string{col}, defaultName("Mean", col), "", KindFloat, DefaultBadValue, opts)
	if err != nil {
		return nil, err
	}
	return &Mean{Base: base}, nil
}

func (m *Mean) Run(ds *slice.DataSlice, _ *slice.SlicePoint) (Value, error) {
	data, err := m.primary(ds)
	if err != nil {
		return Value{}, err
	}
	return m.checked(stats.Mean(data)), nil
}

// Median reports the median of a column.
type Median struct {
	Base
}

// NewMedian creates a Median metric over col.
func NewMedian(col string, opts ...Option) (*Median, error) {
	base, err := newBase([]string{col}, defaultName("Median", col), "", KindFloat, DefaultBadValue, opts)
	if err != nil {
		return nil, err
	}
	return &Median{Base: base}, nil
}

func (m *Median) Run(ds *slice.DataSlice, _ *slice.SlicePoint) (Value, error) {
	data, err := m.primary(ds)
	if err != nil {
		return Value{}, err
	}
	return m.checked(stats.Median(data)), nil
}

// MedianAbs reports the median of the absolute values of a column.
type MedianAbs struct {
	Base
}

// NewMedianAbs creates a MedianAbs metric over col.
func NewMedianAbs(col string, opts ...Option) (*MedianAbs, error) {
	base, err := newBase([]string{col}, defaultName("MedianAbs", col), "", KindFloat, DefaultBadValue, opts)
	if err != nil {
		return nil, err
	}
	return &MedianAbs{Base: base}, nil
}

func (m *MedianAbs) Run(ds *slice.DataSlice, _ *slice.SlicePoint) (Value, error) {
	data, err := m.primary(ds)
	if err != nil {
		return Value{}, err
	}
	abs := make([]float64, len(data))
	for i, v := range data {
		abs[i] = math.Abs(v)
	}
	return m.checked(stats.Median(abs)), nil
}

// Min reports the minimum of a column.
type Min struct {
	Base
}

// NewMin creates a Min metric over col.
func NewMin(col string, opts ...Option) (*Min, error) {
	base, err := newBase([]string{col}, defaultName("Min", col), "", KindFloat, DefaultBadValue, opts)
	if err != nil {
		return nil, err
	}
	return &Min{Base: base}, nil
}

func (m *Min) Run(ds *slice.DataSlice, _ *slice.SlicePoint) (Value, error) {
	data, err := m.primary(ds)
	if err != nil {
		return Value{}, err
	}
	return m.checked(stats.Min(data)), nil
}

// FullRange reports max minus min of a column.
type FullRange struct {
	Base
}

// NewFullRange creates a FullRange metric over col.
func NewFullRange(col string, opts ...Option) (*FullRange, error) {
	base, err := newBase([]string{col}, defaultName("FullRange", col), "", KindFloat, DefaultBadValue, opts)
	if err != nil {
		return nil, err
	}
	return &FullRange{Base: base}, nil
}

func (m *FullRange) Run(ds *slice.DataSlice, _ *slice.SlicePoint) (Value, error) {
	data, err := m.primary(ds)
	if err != nil {
		return Value{}, err
	}
	maxV, maxErr := stats.Max(data)
	if maxErr != nil {
		return m.bad(), nil
	}
	minV, _ := stats.Min(data)
	return Value{Scalar: maxV - minV}, nil
}

// Rms reports the population standard deviation of a column.
type Rms struct {
	Base
}

// NewRms creates an Rms metric over col.
func NewRms(col string, opts ...Option) (*Rms, error) {
	base, err := newBase([]string{col}, defaultName("Rms", col), "", KindFloat, DefaultBadValue, opts)
	if err != nil {
		return nil, err
	}
	return &Rms{Base: base}, nil
}

func (m *Rms) Run(ds *slice.DataSlice, _ *slice.SlicePoint) (Value, error) {
	data, err := m.primary(ds)
	if err != nil {
		return Value{}, err
	}
	return m.checked(stats.StandardDeviation(data)), nil
}

// Sum reports the sum of a column.
type Sum struct {
	Base
}

// NewSum creates a Sum metric over col.
func NewSum(col string, opts ...Option) (*Sum, error) {
	base, err := newBase([]string{col}, defaultName("Sum", col), "", KindFloat, DefaultBadValue, opts)
	if err != nil {
		return nil, err
	}
	return &Sum{Base: base}, nil
}

func (m *Sum) Run(ds *slice.DataSlice, _ *slice.SlicePoint) (Value, error) {
	data, err := m.primary(ds)
	if err != nil {
		return Value{}, err
	}
	if len(data) == 0 {
		return m.bad(), nil
	}
	return m.checked(stats.Sum(data)), nil
}

// CountUnique reports the number of distinct values in a column.
type CountUnique struct {
	Base
}

// NewCountUnique creates a CountUnique metric over col.
func NewCountUnique(col string, opts ...Option) (*CountUnique, error) {
	base, err := newBase([]string{col}, defaultName("CountUnique", col), "", KindInt, DefaultBadValue, opts)
	if err != nil {
		return nil, err
	}
	return &CountUnique{Base: base}, nil
}

func (m *CountUnique) Run(ds *slice.DataSlice, _ *slice.SlicePoint) (Value, error) {
	data, err := m.primary(ds)
	if err != nil {
		return Value{}, err
	}
	seen := make(map[float64]struct{}, len(data))
	for _, v := range data {
		seen[v] = struct{}{}
	}
	return Value{Scalar: float64(len(seen))}, nil
}

// Count reports the number of rows in the slice. An empty slice counts as
// zero, not as the bad value.
type Count struct {
	Base
}

// NewCount creates a Count metric over col.
func NewCount(col string, opts ...Option) (*Count, error) {
	base, err := newBase([]string{col}, defaultName("Count", col), "", KindInt, DefaultBadValue, opts)
	if err != nil {
		return nil, err
	}
	return &Count{Base: base}, nil
}

func (m *Count) Run(ds *slice.DataSlice, _ *slice.SlicePoint) (Value, error) {
	data, err := m.primary(ds)
	if err != nil {
		return Value{}, err
	}
	return Value{Scalar: float64(len(data))}, nil
}

// CountRatio reports the row count divided by a fixed normalization value.
type CountRatio struct {
	Base
	normVal float64
}

// NewCountRatio creates a CountRatio metric over col. normVal must be
// non-zero.
func NewCountRatio(col string, normVal float64, opts ...Option) (*CountRatio, error) {
	if normVal == 0 {
		return nil, core.ErrZeroNormValue
	}
	name := fmt.Sprintf("CountRatio %s div %.1f", col, normVal)
	base, err := newBase([]string{col}, name, "", KindFloat, DefaultBadValue, opts)
	if err != nil {
		return nil, err
	}
	return &CountRatio{Base: base, normVal: normVal}, nil
}

func (m *CountRatio) Run(ds *slice.DataSlice, _ *slice.SlicePoint) (Value, error) {
	data, err := m.primary(ds)
	if err != nil {
		return Value{}, err
	}
	return Value{Scalar: float64(len(data)) / m.normVal}, nil
}

// CountSubset reports the number of rows equal to a fixed subset value.
// Its bad value is 0, not the shared default.
type CountSubset struct {
	Base
	subset float64
}

// NewCountSubset creates a CountSubset metric over col.
func NewCountSubset(col string, subset float64, opts ...Option) (*CountSubset, error) {
	base, err := newBase([]string{col}, defaultName("CountSubset", col), "", KindInt, 0, opts)
	if err != nil {
		return nil, err
	}
	return &CountSubset{Base: base, subset: subset}, nil
}

func (m *CountSubset) Run(ds *slice.DataSlice, _ *slice.SlicePoint) (Value, error) {
	data, err := m.primary(ds)
	if err != nil {
		return Value{}, err
	}
	count := 0
	for _, v := range data {
		if v == m.subset {
			count++
		}
	}
	return Value{Scalar: float64(count)}, nil
}

// RobustRms estimates the RMS from the interquartile range, so outliers in
// the distribution do not inflate it: (P75 - P25) / 1.349, the IQR-to-sigma
// ratio of a normal distribution.
type RobustRms struct {
	Base
}

// NewRobustRms creates a RobustRms metric over col.
func NewRobustRms(col string, opts ...Option) (*RobustRms, error) {
	base, err := newBase([]string{col}, defaultName("RobustRms", col), "", KindFloat, DefaultBadValue, opts)
	if err != nil {
		return nil, err
	}
	return &RobustRms{Base: base}, nil
}

func (m *RobustRms) Run(ds *slice.DataSlice, _ *slice.SlicePoint) (Value, error) {
	data, err := m.primary(ds)
	if err != nil {
		return Value{}, err
	}
	if len(data) == 0 {
		return m.bad(), nil
	}
	iqr := percentileOf(data, 75) - percentileOf(data, 25)
	return Value{Scalar: iqr / 1.349}, nil
}

// MaxPercent reports the percentage of rows equal to the column maximum.
type MaxPercent struct {
	Base
}

// NewMaxPercent creates a MaxPercent metric over col.
func NewMaxPercent(col string, opts ...Option) (*MaxPercent, error) {
	base, err := newBase([]string{col}, defaultName("MaxPercent", col), "", KindFloat, DefaultBadValue, opts)
	if err != nil {
		return nil, err
	}
	return &MaxPercent{Base: base}, nil
}

func (m *MaxPercent) Run(ds *slice.DataSlice, _ *slice.SlicePoint) (Value, error) {
	data, err := m.primary(ds)
	if err != nil {
		return Value{}, err
	}
	maxV, maxErr := stats.Max(data)
	if maxErr != nil {
		return m.bad(), nil
	}
	nMax := 0
	for _, v := range data {
		if v == maxV {
			nMax++
		}
	}
	return Value{Scalar: float64(nMax) / float64(len(data)) * 100}, nil
}

// Binary reports 1 when the slice has any rows, else the bad value.
type Binary struct {
	Base
}

// NewBinary creates a Binary metric over col.
func NewBinary(col string, opts ...Option) (*Binary, error) {
	base, err := newBase([]string{col}, defaultName("Binary", col), "", KindFloat, DefaultBadValue, opts)
	if err != nil {
		return nil, err
	}
	return &Binary{Base: base}, nil
}

func (m *Binary) Run(ds *slice.DataSlice, _ *slice.SlicePoint) (Value, error) {
	data, err := m.primary(ds)
	if err != nil {
		return Value{}, err
	}
	if len(data) > 0 {
		return Value{Scalar: 1}, nil
	}
	return m.bad(), nil
}
