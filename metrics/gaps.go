package metrics

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"surveymetrics/domain/core"
	"surveymetrics/domain/slice"
)

// DefaultTimeGapEdges returns the standard time-gap histogram edges: 0.5
// through 59.5 days in half-day steps (118 bins).
func DefaultTimeGapEdges() []float64 {
	return floats.Span(make([]float64, 119), 0.5, 59.5)
}

// DefaultNightGapEdges returns the standard night-gap histogram edges: 0
// through 9 nights in single-night steps (9 bins).
func DefaultNightGapEdges() []float64 {
	return floats.Span(make([]float64, 10), 0, 9)
}

// validateEdges checks a histogram edge array: at least two edges, strictly
// ascending.
func validateEdges(edges []float64) error {
	if len(edges) < 2 {
		return core.ErrBadBinEdges
	}
	for i := 1; i < len(edges); i++ {
		if edges[i] <= edges[i-1] {
			return core.ErrBadBinEdges
		}
	}
	return nil
}

// histogramCounts bins values into len(edges)-1 counts. Bins are half-open
// [e[i], e[i+1]) with a closed final bin; values outside the edge span are
// dropped, not counted.
func histogramCounts(values, edges []float64) []float64 {
	counts := make([]float64, len(edges)-1)
	if len(values) == 0 {
		return counts
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	lo, hi := edges[0], edges[len(edges)-1]
	inRange := make([]float64, 0, len(sorted))
	onLastEdge := 0
	for _, v := range sorted {
		switch {
		case v < lo || v > hi:
		case v == hi:
			onLastEdge++
		default:
			inRange = append(inRange, v)
		}
	}

	stat.Histogram(counts, edges, inRange, nil)
	counts[len(counts)-1] += float64(onLastEdge)
	return counts
}

// gapsOf computes the forward gaps of an ascending series: consecutive
// first differences, or in allGaps mode the differences at every offset,
// which yields all pairwise forward gaps.
func gapsOf(sorted []float64, allGaps bool) []float64 {
	n := len(sorted)
	if n < 2 {
		return nil
	}
	if !allGaps {
		dts := make([]float64, n-1)
		for i := 1; i < n; i++ {
			dts[i-1] = sorted[i] - sorted[i-1]
		}
		return dts
	}
	dts := make([]float64, 0, n*(n-1)/2)
	for offset := 1; offset < n; offset++ {
		for j := offset; j < n; j++ {
			dts = append(dts, sorted[j]-sorted[j-offset])
		}
	}
	return dts
}

// uniqueSorted returns the distinct values of a series in ascending order.
func uniqueSorted(values []float64) []float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	out := sorted[:0]
	for i, v := range sorted {
		if i == 0 || v != sorted[i-1] {
			out = append(out, v)
		}
	}
	return out
}

// TimeGapsConfig configures a TimeGaps metric. Zero-valued fields take the
// documented defaults.
type TimeGapsConfig struct {
	TimesCol string    // observation time column in days, default ColObservationStartMJD
	AllGaps  bool      // all pairwise forward gaps instead of consecutive only
	Bins     []float64 // histogram edges, default DefaultTimeGapEdges()
	Units    string    // default "days"
}

// TimeGaps histograms the gaps between observation times within a slice.
// The result is the vector of bin counts; the edges are fixed at
// construction so per-slice histograms can be stacked and compared.
type TimeGaps struct {
	Base
	allGaps bool
	bins    []float64
}

// NewTimeGaps creates a TimeGaps metric.
func NewTimeGaps(cfg TimeGapsConfig, opts ...Option) (*TimeGaps, error) {
	col := cfg.TimesCol
	if col == "" {
		col = ColObservationStartMJD
	}
	bins := cfg.Bins
	if bins == nil {
		bins = DefaultTimeGapEdges()
	}
	if err := validateEdges(bins); err != nil {
		return nil, err
	}
	units := cfg.Units
	if units == "" {
		units = "days"
	}
	base, err := newBase([]string{col}, defaultName("TimeGaps", col), units, KindVector, DefaultBadValue, opts)
	if err != nil {
		return nil, err
	}
	return &TimeGaps{Base: base, allGaps: cfg.AllGaps, bins: bins}, nil
}

// Bins returns a copy of the histogram edges.
func (m *TimeGaps) Bins() []float64 {
	out := make([]float64, len(m.bins))
	copy(out, m.bins)
	return out
}

func (m *TimeGaps) Run(ds *slice.DataSlice, _ *slice.SlicePoint) (Value, error) {
	data, err := m.primary(ds)
	if err != nil {
		return Value{}, err
	}
	if len(data) < 2 {
		return m.bad(), nil
	}
	times := make([]float64, len(data))
	copy(times, data)
	sort.Float64s(times)
	return Value{Vector: histogramCounts(gapsOf(times, m.allGaps), m.bins)}, nil
}

// NightGapsConfig configures a NightGaps metric. Zero-valued fields take
// the documented defaults.
type NightGapsConfig struct {
	NightCol string    // integer night index column, default ColNight
	AllGaps  bool      // all pairwise forward gaps instead of consecutive only
	Bins     []float64 // histogram edges, default DefaultNightGapEdges()
	Units    string    // default "nights"
}

// NightGaps histograms the gaps between the distinct nights a slice was
// observed on. A slice observed twice on one night has no night gaps and
// yields the all-zero counts vector, not the bad value.
type NightGaps struct {
	Base
	allGaps bool
	bins    []float64
}

// NewNightGaps creates a NightGaps metric.
func NewNightGaps(cfg NightGapsConfig, opts ...Option) (*NightGaps, error) {
	col := cfg.NightCol
	if col == "" {
		col = ColNight
	}
	bins := cfg.Bins
	if bins == nil {
		bins = DefaultNightGapEdges()
	}
	if err := validateEdges(bins); err != nil {
		return nil, err
	}
	units := cfg.Units
	if units == "" {
		units = "nights"
	}
	base, err := newBase([]string{col}, defaultName("NightGaps", col), units, KindVector, DefaultBadValue, opts)
	if err != nil {
		return nil, err
	}
	return &NightGaps{Base: base, allGaps: cfg.AllGaps, bins: bins}, nil
}

// Bins returns a copy of the histogram edges.
func (m *NightGaps) Bins() []float64 {
	out := make([]float64, len(m.bins))
	copy(out, m.bins)
	return out
}

func (m *NightGaps) Run(ds *slice.DataSlice, _ *slice.SlicePoint) (Value, error) {
	data, err := m.primary(ds)
	if err != nil {
		return Value{}, err
	}
	if len(data) < 2 {
		return m.bad(), nil
	}
	nights := uniqueSorted(data)
	return Value{Vector: histogramCounts(gapsOf(nights, m.allGaps), m.bins)}, nil
}

// VisitsPerNightConfig configures a VisitsPerNight metric. Zero-valued
// fields take the documented defaults.
type VisitsPerNightConfig struct {
	NightCol string    // integer night index column, default ColNight
	Bins     []float64 // histogram edges, default DefaultNightGapEdges()
	Units    string    // default "#"
}

// VisitsPerNight histograms the number of visits per observed night.
type VisitsPerNight struct {
	Base
	bins []float64
}

// NewVisitsPerNight creates a VisitsPerNight metric.
func NewVisitsPerNight(cfg VisitsPerNightConfig, opts ...Option) (*VisitsPerNight, error) {
	col := cfg.NightCol
	if col == "" {
		col = ColNight
	}
	bins := cfg.Bins
	if bins == nil {
		bins = DefaultNightGapEdges()
	}
	if err := validateEdges(bins); err != nil {
		return nil, err
	}
	units := cfg.Units
	if units == "" {
		units = "#"
	}
	base, err := newBase([]string{col}, defaultName("VisitsPerNight", col), units, KindVector, DefaultBadValue, opts)
	if err != nil {
		return nil, err
	}
	return &VisitsPerNight{Base: base, bins: bins}, nil
}

// Bins returns a copy of the histogram edges.
func (m *VisitsPerNight) Bins() []float64 {
	out := make([]float64, len(m.bins))
	copy(out, m.bins)
	return out
}

func (m *VisitsPerNight) Run(ds *slice.DataSlice, _ *slice.SlicePoint) (Value, error) {
	data, err := m.primary(ds)
	if err != nil {
		return Value{}, err
	}
	if len(data) == 0 {
		return m.bad(), nil
	}
	perNight := make(map[float64]int)
	for _, night := range data {
		perNight[night]++
	}
	counts := make([]float64, 0, len(perNight))
	for _, c := range perNight {
		counts = append(counts, float64(c))
	}
	return Value{Vector: histogramCounts(counts, m.bins)}, nil
}
