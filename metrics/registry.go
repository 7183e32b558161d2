package metrics

import (
	"fmt"
	"sort"

	"surveymetrics/domain/core"
)

// Factory builds a metric variant over a primary column with the variant's
// documented defaults. Parametric variants expose richer constructors for
// non-default configuration.
type Factory func(col string) (Metric, error)

// Registry maps variant names to factories. The table is static; Register
// extends it at init time without reflection.
var Registry = map[string]Factory{
	"Binary":          func(col string) (Metric, error) { return NewBinary(col) },
	"CoaddM5":         func(col string) (Metric, error) { return NewCoaddM5(col) },
	"Count":           func(col string) (Metric, error) { return NewCount(col) },
	"CountRatio":      func(col string) (Metric, error) { return NewCountRatio(col, 1) },
	"CountSubset":     func(col string) (Metric, error) { return NewCountSubset(col, 0) },
	"CountUnique":     func(col string) (Metric, error) { return NewCountUnique(col) },
	"FracAbove":       func(col string) (Metric, error) { return NewFracAbove(col, 0.5, 1) },
	"FracBelow":       func(col string) (Metric, error) { return NewFracBelow(col, 0.5, 1) },
	"FullRange":       func(col string) (Metric, error) { return NewFullRange(col) },
	"FullRangeAngle":  func(col string) (Metric, error) { return NewFullRangeAngle(col) },
	"Max":             func(col string) (Metric, error) { return NewMax(col) },
	"MaxPercent":      func(col string) (Metric, error) { return NewMaxPercent(col) },
	"Mean":            func(col string) (Metric, error) { return NewMean(col) },
	"MeanAngle":       func(col string) (Metric, error) { return NewMeanAngle(col) },
	"Median":          func(col string) (Metric, error) { return NewMedian(col) },
	"MedianAbs":       func(col string) (Metric, error) { return NewMedianAbs(col) },
	"Min":             func(col string) (Metric, error) { return NewMin(col) },
	"NightGaps":       func(col string) (Metric, error) { return NewNightGaps(NightGapsConfig{NightCol: col}) },
	"NoutliersNsigma": func(col string) (Metric, error) { return NewNoutliersNsigma(col, 3) },
	"Percentile":      func(col string) (Metric, error) { return NewPercentile(col, 90) },
	"Rms":             func(col string) (Metric, error) { return NewRms(col) },
	"RmsAngle":        func(col string) (Metric, error) { return NewRmsAngle(col) },
	"RobustRms":       func(col string) (Metric, error) { return NewRobustRms(col) },
	"Sum":             func(col string) (Metric, error) { return NewSum(col) },
	"TimeGaps":        func(col string) (Metric, error) { return NewTimeGaps(TimeGapsConfig{TimesCol: col}) },
	"VisitsPerNight":  func(col string) (Metric, error) { return NewVisitsPerNight(VisitsPerNightConfig{NightCol: col}) },
}

// New builds a registered variant over the given column.
func New(variant, col string) (Metric, error) {
	factory, exists := Registry[variant]
	if !exists {
		return nil, core.NewUnknownMetricError(variant)
	}
	return factory(col)
}

// Names returns the registered variant names in sorted order.
func Names() []string {
	names := make([]string, 0, len(Registry))
	for name := range Registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Register adds a variant factory to the registry. It is intended for
// init-time extension; duplicate names are rejected.
func Register(variant string, factory Factory) error {
	if variant == "" || factory == nil {
		return core.NewValidationError("variant", "name and factory are required")
	}
	if _, exists := Registry[variant]; exists {
		return fmt.Errorf("%w: %s", core.ErrDuplicateEntry, variant)
	}
	Registry[variant] = factory
	return nil
}

// UniqueColumns returns the sorted, de-duplicated union of the columns
// declared by the given metrics: the superset the slicer must fetch before
// any slicing begins.
func UniqueColumns(ms ...Metric) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0, len(ms))
	for _, m := range ms {
		for _, c := range m.Columns() {
			if _, dup := seen[c]; !dup {
				seen[c] = struct{}{}
				out = append(out, c)
			}
		}
	}
	sort.Strings(out)
	return out
}
