package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Configuration errors: programmer/usage mistakes, surfaced immediately
	ErrInvalidConfig  = errors.New("invalid metric configuration")
	ErrEmptyColumn    = fmt.Errorf("%w: empty column name", ErrInvalidConfig)
	ErrBadBinEdges    = fmt.Errorf("%w: bin edges must be at least two strictly ascending values", ErrInvalidConfig)
	ErrBadPercentile  = fmt.Errorf("%w: percentile must be in (0, 100]", ErrInvalidConfig)
	ErrZeroNormValue  = fmt.Errorf("%w: normalization value must be non-zero", ErrInvalidConfig)
	ErrNotRadians     = errors.New("angular data expects radians, input looks like degrees")
	ErrUnknownMetric  = errors.New("unknown metric variant")
	ErrDuplicateEntry = errors.New("metric variant already registered")

	// Schema errors: the slicer failed to supply a declared column
	ErrMissingColumn = errors.New("declared column missing from data slice")
	ErrRaggedColumns = errors.New("slice columns have unequal lengths")
)

// Error constructors with context
func NewMissingColumnError(column string) error {
	return fmt.Errorf("%w: %s", ErrMissingColumn, column)
}

func NewValidationError(field string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidConfig, field, reason)
}

func NewUnknownMetricError(variant string) error {
	return fmt.Errorf("%w: %s", ErrUnknownMetric, variant)
}

// Error checking helpers
func IsConfigError(err error) bool {
	return errors.Is(err, ErrInvalidConfig) ||
		errors.Is(err, ErrNotRadians) ||
		errors.Is(err, ErrUnknownMetric) ||
		errors.Is(err, ErrDuplicateEntry)
}

func IsSchemaError(err error) bool {
	return errors.Is(err, ErrMissingColumn) ||
		errors.Is(err, ErrRaggedColumns)
}
