package ports

import (
	"context"

	"surveymetrics/domain/slice"
)

// SlicerPort supplies the data partitions a sweep evaluates. Implementations
// own the spatial or temporal binning of the observation table; the sweep
// core only consumes the finished slices and treats them as read-only.
type SlicerPort interface {
	// Name identifies the slicing scheme for fingerprints and logs.
	Name() string

	// Slices materializes every partition with its context point. Each
	// slice must carry every column the sweep's metrics declare.
	Slices(ctx context.Context) ([]slice.Slice, error)
}
