package metrics

import (
	"errors"
	"sort"
	"testing"

	"surveymetrics/domain/core"
)

func TestRegistry_EveryVariantConstructs(t *testing.T) {
	names := Names()
	if len(names) != 26 {
		t.Fatalf("Expected 26 registered variants, got %d", len(names))
	}

	for _, name := range names {
		m, err := New(name, "airmass")
		if err != nil {
			t.Fatalf("New(%s): %v", name, err)
		}
		if m.Name() == "" {
			t.Errorf("%s: empty display name", name)
		}
		if len(m.Columns()) != 1 || m.Columns()[0] != "airmass" {
			t.Errorf("%s: expected columns [airmass], got %v", name, m.Columns())
		}
		switch m.Kind() {
		case KindFloat, KindInt, KindVector:
		default:
			t.Errorf("%s: unknown kind %s", name, m.Kind())
		}
	}
}

func TestRegistry_NamesSorted(t *testing.T) {
	names := Names()
	if !sort.StringsAreSorted(names) {
		t.Errorf("Expected sorted variant names, got %v", names)
	}

	for _, want := range []string{"CoaddM5", "Max", "MeanAngle", "TimeGaps", "VisitsPerNight"} {
		found := false
		for _, name := range names {
			if name == want {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Expected variant %s to be registered", want)
		}
	}
}

func TestRegistry_UnknownVariant(t *testing.T) {
	_, err := New("Kurtosis", "airmass")
	if err == nil {
		t.Fatal("Expected error for unknown variant")
	}
	if !errors.Is(err, core.ErrUnknownMetric) {
		t.Errorf("Expected unknown-metric error, got %v", err)
	}
	if !core.IsConfigError(err) {
		t.Errorf("Unknown variant should classify as config error, got %v", err)
	}
}

func TestRegister_ExtendsAndRejectsDuplicates(t *testing.T) {
	factory := func(col string) (Metric, error) { return NewMean(col, WithName("Custom " + col)) }

	if err := Register("Custom", factory); err != nil {
		t.Fatalf("Register: %v", err)
	}
	defer delete(Registry, "Custom")

	m, err := New("Custom", "airmass")
	if err != nil {
		t.Fatalf("New(Custom): %v", err)
	}
	if m.Name() != "Custom airmass" {
		t.Errorf("Expected registered factory to build, got name '%s'", m.Name())
	}

	if err := Register("Custom", factory); err == nil {
		t.Fatal("Expected error for duplicate registration")
	} else if !errors.Is(err, core.ErrDuplicateEntry) {
		t.Errorf("Expected duplicate-entry error, got %v", err)
	}

	if err := Register("", factory); err == nil {
		t.Error("Expected error for empty variant name")
	}
	if err := Register("NilFactory", nil); err == nil {
		t.Error("Expected error for nil factory")
	}
}

// TestRegistry_ZeroRowSliceNeverErrors runs every variant against a slice
// with zero rows: each must report either its sentinel or a defined count,
// never an error.
func TestRegistry_ZeroRowSliceNeverErrors(t *testing.T) {
	empty := mustSlice(t, map[string][]float64{"airmass": nil})

	for _, name := range Names() {
		m, err := New(name, "airmass")
		if err != nil {
			t.Fatalf("New(%s): %v", name, err)
		}
		if _, err := m.Run(empty, nil); err != nil {
			t.Errorf("%s: zero-row slice should not error, got %v", name, err)
		}
	}
}

func TestUniqueColumns_SortedUnion(t *testing.T) {
	maxAirmass, _ := NewMax("airmass")
	meanAirmass, _ := NewMean("airmass")
	nightGaps, _ := NewNightGaps(NightGapsConfig{})
	coadd, _ := NewCoaddM5("")

	cols := UniqueColumns(maxAirmass, meanAirmass, nightGaps, coadd)
	want := []string{"airmass", ColFiveSigmaDepth, ColNight}
	sort.Strings(want)

	if len(cols) != len(want) {
		t.Fatalf("Expected %d columns, got %v", len(want), cols)
	}
	for i := range want {
		if cols[i] != want[i] {
			t.Errorf("column %d: expected %s, got %s", i, want[i], cols[i])
		}
	}
}
