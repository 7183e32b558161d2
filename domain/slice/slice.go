package slice

import (
	"fmt"
	"sort"

	"surveymetrics/domain/core"
)

// DataSlice is one partition of the observation table: an ordered batch of
// visit records with named float64 columns of equal length. It is the single
// input every metric reduces over. The slicer owns the backing arrays; the
// slice is passed by read-only reference and metric evaluation never mutates
// it.
type DataSlice struct {
	columns map[string][]float64
	names   []string
	rows    int
}

// SlicePoint carries optional spatial context for the current slice,
// assigned by the external slicer. The metrics in this set accept it in their
// run signature but do not consume it.
type SlicePoint struct {
	SID int64   // slicer-assigned identifier
	RA  float64 // radians
	Dec float64 // radians
}

// Slice pairs one data partition with its context point.
type Slice struct {
	Data  *DataSlice
	Point *SlicePoint
}

// New builds a DataSlice over the given columns. All columns must have the
// same length; an empty column set yields a zero-row slice.
func New(columns map[string][]float64) (*DataSlice, error) {
	names := make([]string, 0, len(columns))
	for name := range columns {
		if name == "" {
			return nil, core.NewValidationError("columns", "column name cannot be empty")
		}
		names = append(names, name)
	}
	sort.Strings(names)

	rows := -1
	for _, name := range names {
		n := len(columns[name])
		if rows == -1 {
			rows = n
			continue
		}
		if n != rows {
			return nil, fmt.Errorf("%w: column %s has %d rows, expected %d",
				core.ErrRaggedColumns, name, n, rows)
		}
	}
	if rows == -1 {
		rows = 0
	}

	return &DataSlice{columns: columns, names: names, rows: rows}, nil
}

// Column returns the series for a column name.
func (d *DataSlice) Column(name string) ([]float64, bool) {
	data, ok := d.columns[name]
	return data, ok
}

// Len returns the number of rows (visits) in the slice.
func (d *DataSlice) Len() int {
	return d.rows
}

// Columns returns the schema column names in sorted order.
func (d *DataSlice) Columns() []string {
	out := make([]string, len(d.names))
	copy(out, d.names)
	return out
}

// HasColumn reports whether the schema carries the named column.
func (d *DataSlice) HasColumn(name string) bool {
	_, ok := d.columns[name]
	return ok
}

// RequireColumns verifies every declared column is present in the schema.
// A failure here is a driver bug, surfaced before any metric run.
func (d *DataSlice) RequireColumns(names []string) error {
	for _, name := range names {
		if !d.HasColumn(name) {
			return core.NewMissingColumnError(name)
		}
	}
	return nil
}
