package app

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"surveymetrics/domain/core"
	"surveymetrics/domain/slice"
	"surveymetrics/internal"
	"surveymetrics/metrics"
	"surveymetrics/ports"
)

// SweepService evaluates a fixed metric set over every slice a slicer
// produces. Metric instances are shared read-only across workers; results
// are positional, so the outcome is independent of worker scheduling.
type SweepService struct {
	slicer ports.SlicerPort
	logger *internal.Logger
}

// SweepRequest defines the inputs for one sweep.
type SweepRequest struct {
	Metrics []metrics.Metric
	Workers int          // max concurrent slice evaluations, default NumCPU
	SweepID core.SweepID // optional, generated if empty
}

// SliceResult holds the values of every requested metric for one slice,
// aligned with the request's metric order.
type SliceResult struct {
	Point  *slice.SlicePoint
	Values []metrics.Value
}

// SweepResult contains the complete output of a sweep.
type SweepResult struct {
	SweepID     core.SweepID          `json:"sweep_id"`
	Slicer      string                `json:"slicer"`
	Fingerprint core.SweepFingerprint `json:"fingerprint"`
	StartedAt   core.Timestamp        `json:"started_at"`
	RuntimeMs   int64                 `json:"runtime_ms"`
	Results     []SliceResult         `json:"results"`
}

// NewSweepService creates a sweep service over the given slicer.
func NewSweepService(slicer ports.SlicerPort) *SweepService {
	return &SweepService{
		slicer: slicer,
		logger: internal.DefaultLogger,
	}
}

// Run materializes the slices, validates the schema against every metric's
// declared columns, then evaluates all metrics over all slices. Slice i of
// the result always corresponds to slice i of the slicer's output.
func (s *SweepService) Run(ctx context.Context, req SweepRequest) (*SweepResult, error) {
	startTime := time.Now()

	if len(req.Metrics) == 0 {
		return nil, core.NewValidationError("metrics", "sweep needs at least one metric")
	}
	if s.slicer == nil {
		return nil, core.NewValidationError("slicer", "sweep needs a slicer")
	}

	sweepID := req.SweepID
	if sweepID == "" {
		sweepID = core.SweepID(core.NewID())
	}
	workers := req.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	slices, err := s.slicer.Slices(ctx)
	if err != nil {
		return nil, fmt.Errorf("slicer %s: %w", s.slicer.Name(), err)
	}

	// Schema check before any evaluation: every slice must carry every
	// declared column, so a driver bug surfaces here and not as a partial
	// sweep.
	required := metrics.UniqueColumns(req.Metrics...)
	for i, sl := range slices {
		if err := sl.Data.RequireColumns(required); err != nil {
			return nil, fmt.Errorf("slice %d: %w", i, err)
		}
	}

	declarations := make([]string, len(req.Metrics))
	for i, m := range req.Metrics {
		declarations[i] = metrics.Declaration(m)
	}
	fingerprint := core.ComputeSweepFingerprint(declarations, len(slices))

	s.logger.Info("sweep %s: %d metrics over %d slices from %s (%d workers)",
		sweepID, len(req.Metrics), len(slices), s.slicer.Name(), workers)

	results := make([]SliceResult, len(slices))
	errs := make([]error, len(slices))

	sem := semaphore.NewWeighted(int64(workers))
	var wg sync.WaitGroup
	for i := range slices {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := sem.Acquire(ctx, 1); err != nil {
				errs[i] = err
				return
			}
			defer sem.Release(1)
			results[i] = SliceResult{
				Point:  slices[i].Point,
				Values: make([]metrics.Value, len(req.Metrics)),
			}
			errs[i] = s.evaluateSlice(slices[i], req.Metrics, results[i].Values)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("slice %d: %w", i, err)
		}
	}

	runtimeMs := time.Since(startTime).Milliseconds()
	s.logger.Info("sweep %s: completed in %dms", sweepID, runtimeMs)

	return &SweepResult{
		SweepID:     sweepID,
		Slicer:      s.slicer.Name(),
		Fingerprint: fingerprint,
		StartedAt:   core.NewTimestamp(startTime),
		RuntimeMs:   runtimeMs,
		Results:     results,
	}, nil
}

// evaluateSlice runs every metric over one slice, filling values in metric
// order.
func (s *SweepService) evaluateSlice(sl slice.Slice, ms []metrics.Metric, values []metrics.Value) error {
	for j, m := range ms {
		v, err := m.Run(sl.Data, sl.Point)
		if err != nil {
			return fmt.Errorf("metric %s: %w", m.Name(), err)
		}
		values[j] = v
	}
	return nil
}
