package slice

import (
	"testing"

	"surveymetrics/domain/core"
)

func TestNewValidSlice(t *testing.T) {
	ds, err := New(map[string][]float64{
		"airmass": {1.1, 1.3, 1.2},
		"night":   {1, 1, 2},
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if ds.Len() != 3 {
		t.Errorf("Expected 3 rows, got %d", ds.Len())
	}

	cols := ds.Columns()
	if len(cols) != 2 || cols[0] != "airmass" || cols[1] != "night" {
		t.Errorf("Expected sorted columns [airmass night], got %v", cols)
	}

	data, ok := ds.Column("airmass")
	if !ok {
		t.Fatal("Expected airmass column to be present")
	}
	if len(data) != 3 || data[1] != 1.3 {
		t.Errorf("Unexpected airmass data: %v", data)
	}
}

func TestNewEmptySlice(t *testing.T) {
	ds, err := New(map[string][]float64{})
	if err != nil {
		t.Fatalf("Unexpected error for empty schema: %v", err)
	}
	if ds.Len() != 0 {
		t.Errorf("Expected 0 rows, got %d", ds.Len())
	}

	ds, err = New(map[string][]float64{"airmass": {}})
	if err != nil {
		t.Fatalf("Unexpected error for zero-row column: %v", err)
	}
	if ds.Len() != 0 {
		t.Errorf("Expected 0 rows, got %d", ds.Len())
	}
}

func TestNewRaggedColumns(t *testing.T) {
	_, err := New(map[string][]float64{
		"airmass": {1.1, 1.3},
		"night":   {1},
	})
	if err == nil {
		t.Fatal("Expected error for ragged columns")
	}
	if !core.IsSchemaError(err) {
		t.Errorf("Expected schema error, got %v", err)
	}
}

func TestNewEmptyColumnName(t *testing.T) {
	_, err := New(map[string][]float64{"": {1.0}})
	if err == nil {
		t.Fatal("Expected error for empty column name")
	}
	if !core.IsConfigError(err) {
		t.Errorf("Expected config error, got %v", err)
	}
}

func TestRequireColumns(t *testing.T) {
	ds, err := New(map[string][]float64{
		"observationStartMJD": {59853.1, 59853.2},
		"night":               {1, 1},
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if err := ds.RequireColumns([]string{"night", "observationStartMJD"}); err != nil {
		t.Errorf("Expected declared columns to validate, got %v", err)
	}

	err = ds.RequireColumns([]string{"night", "fiveSigmaDepth"})
	if err == nil {
		t.Fatal("Expected error for missing column")
	}
	if !core.IsSchemaError(err) {
		t.Errorf("Expected schema error, got %v", err)
	}
}
