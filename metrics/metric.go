// Package metrics implements the survey metric contract: a fixed set of
// stateless statistical reducers, each mapping one data slice to one scalar
// or vector summary value. Instances are configured once, declare the
// columns they read, and are safe to share across concurrent evaluations.
package metrics

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"surveymetrics/domain/core"
	"surveymetrics/domain/slice"
)

// DefaultBadValue is the sentinel reported when a statistic is undefined
// for a slice (no rows, too few rows). Drivers treat it as "no data" and
// exclude it from aggregation.
const DefaultBadValue = -666.0

// Kind declares the shape of a metric's per-slice result. Drivers use it to
// pick storage layout: one scalar per slice or one histogram per slice.
type Kind string

const (
	KindFloat  Kind = "float"
	KindInt    Kind = "int"
	KindVector Kind = "vector"
)

// Standard survey schema column names used by metric defaults.
const (
	ColObservationStartMJD = "observationStartMJD"
	ColNight               = "night"
	ColFiveSigmaDepth      = "fiveSigmaDepth"
)

// Value is one per-slice result. Scalar metrics fill Scalar; histogram
// metrics fill Vector. An undefined statistic carries the metric's bad
// value in Scalar with a nil Vector.
type Value struct {
	Scalar float64
	Vector []float64
}

// IsBad reports whether the value is the bad-value sentinel for badval.
func (v Value) IsBad(badval float64) bool {
	return v.Vector == nil && v.Scalar == badval
}

// Metric is a stateless, configured reducer over one data slice.
type Metric interface {
	// Name is the display name used by drivers for storage and labeling.
	Name() string
	// Columns lists the slice columns the metric reads. The slicer must
	// fetch a superset of all declared columns before slicing.
	Columns() []string
	// Units labels the result axis.
	Units() string
	// Kind declares the result shape.
	Kind() Kind
	// BadValue is the sentinel reported when the statistic is undefined.
	BadValue() float64
	// Run reduces one slice to one value. Data conditions (no rows, too
	// few rows) yield the bad value with a nil error; a non-nil error means
	// a schema violation or invalid configuration, never a data condition.
	Run(ds *slice.DataSlice, sp *slice.SlicePoint) (Value, error)
}

// Base carries the declaration shared by every variant: columns, display
// name, units, output kind, bad value. It is frozen at construction and
// embedded by value, so variants stay immutable across Run calls.
type Base struct {
	name    string
	columns []string
	units   string
	kind    Kind
	badval  float64
}

// Option overrides one field of the base declaration at construction.
type Option func(*Base)

// WithName overrides the default display name.
func WithName(name string) Option {
	return func(b *Base) { b.name = name }
}

// WithUnits overrides the default units label.
func WithUnits(units string) Option {
	return func(b *Base) { b.units = units }
}

// WithBadValue overrides the bad-value sentinel.
func WithBadValue(badval float64) Option {
	return func(b *Base) { b.badval = badval }
}

// WithKind overrides the declared output kind.
func WithKind(kind Kind) Option {
	return func(b *Base) { b.kind = kind }
}

func newBase(columns []string, defaultName, units string, kind Kind, badval float64, opts []Option) (Base, error) {
	if len(columns) == 0 {
		return Base{}, core.NewValidationError("columns", "metric must declare at least one column")
	}
	for _, c := range columns {
		if c == "" {
			return Base{}, core.ErrEmptyColumn
		}
	}

	b := Base{
		name:    defaultName,
		columns: columns,
		units:   units,
		kind:    kind,
		badval:  badval,
	}
	for _, opt := range opts {
		opt(&b)
	}

	if b.name == "" {
		return Base{}, core.NewValidationError("name", "display name cannot be empty")
	}
	switch b.kind {
	case KindFloat, KindInt, KindVector:
	default:
		return Base{}, core.NewValidationError("kind", fmt.Sprintf("unknown output kind %q", b.kind))
	}
	return b, nil
}

// Name returns the display name.
func (b Base) Name() string { return b.name }

// Columns returns a copy of the declared column list.
func (b Base) Columns() []string {
	out := make([]string, len(b.columns))
	copy(out, b.columns)
	return out
}

// Units returns the units label.
func (b Base) Units() string { return b.units }

// Kind returns the declared output kind.
func (b Base) Kind() Kind { return b.kind }

// BadValue returns the bad-value sentinel.
func (b Base) BadValue() float64 { return b.badval }

// bad builds the sentinel result for this metric.
func (b Base) bad() Value { return Value{Scalar: b.badval} }

// primary fetches the first declared column from the slice. A missing
// column is a driver bug, surfaced as a schema error.
func (b Base) primary(ds *slice.DataSlice) ([]float64, error) {
	data, ok := ds.Column(b.columns[0])
	if !ok {
		return nil, core.NewMissingColumnError(b.columns[0])
	}
	return data, nil
}

// checked maps a montanaflynn/stats result to a Value, converting the
// library's empty-input and bounds errors into the bad value: an undefined
// statistic is a data condition, not an error.
func (b Base) checked(v float64, err error) Value {
	if err != nil {
		return b.bad()
	}
	return Value{Scalar: v}
}

// defaultName derives the deterministic display name from the variant
// identity and its primary column.
func defaultName(variant, col string) string {
	return variant + " " + col
}

// percentileOf computes the pct-th percentile (0 < pct <= 100) of data
// using linear interpolation between order statistics (the R-7 rule):
// the fractional rank h = (n-1)*pct/100 interpolates between the two
// bracketing sorted values, so P50 of an odd-length slice is its median.
// Callers guarantee data is non-empty.
func percentileOf(data []float64, pct float64) float64 {
	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)

	h := (float64(len(sorted)) - 1) * pct / 100
	i := int(math.Floor(h))
	if i >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	return sorted[i] + (h-float64(i))*(sorted[i+1]-sorted[i])
}

// Declaration renders a metric's frozen configuration as a stable string.
// Sweep fingerprints hash these, so the format changes only deliberately.
func Declaration(m Metric) string {
	return fmt.Sprintf("%s|%s|%s|%s|%g",
		m.Name(), strings.Join(m.Columns(), ","), m.Units(), m.Kind(), m.BadValue())
}
