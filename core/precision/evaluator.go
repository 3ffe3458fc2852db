// Package precision measures approximate-search quality against exact
// search: for a sample of points it runs paired exact and approximate
// nearest-neighbor queries and accumulates precision@k statistics.
// Queries run strictly one at a time so each measured latency reflects a
// single query, never concurrent load.
package precision

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"

	"github.com/adalundhe/lens/core/points"
	"github.com/adalundhe/lens/core/provider"
	"github.com/adalundhe/lens/core/query"
)

// Request configures one evaluation run. Exact and approximate queries
// share Limit, Using and Predicate; only the search parameters differ.
type Request struct {
	Collection string
	Limit      int
	Using      string
	Predicate  *query.Predicate

	// Params are the candidate approximate-search parameters under
	// evaluation, e.g. the graph-search candidate-list size.
	Params provider.SearchParams
}

// Sample is one paired-query measurement, emitted in input order.
type Sample struct {
	Precision       float64          `json:"precision"`
	ExactIDs        []points.PointID `json:"exact_ids"`
	ApproxIDs       []points.PointID `json:"approx_ids"`
	ExactLatencyMs  float64          `json:"exact_latency_ms"`
	ApproxLatencyMs float64          `json:"approx_latency_ms"`
	LogLine         string           `json:"log_line"`
}

// Summary is the running aggregate over completed samples, rounded to
// four decimal places. It is valid after completion and after
// cancellation.
type Summary struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Count  int     `json:"count"`
}

// Evaluator runs precision evaluations for one session. At most one run
// is active at a time; starting a new run cancels the previous loop
// first.
type Evaluator struct {
	backend provider.Provider
	logger  *slog.Logger

	mu         sync.Mutex
	cancel     context.CancelFunc
	done       chan struct{}
	precisions []float64
	lastErr    string
}

// NewEvaluator creates an idle evaluator.
func NewEvaluator(backend provider.Provider, logger *slog.Logger) *Evaluator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Evaluator{backend: backend, logger: logger}
}

// LastError returns the retained failure message from the most recent
// run, empty after success or clear. Cancellation is never retained as a
// failure.
func (e *Evaluator) LastError() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

// ClearError drops the retained failure message.
func (e *Evaluator) ClearError() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastErr = ""
}

// Cancel stops the active run, if any. The loop observes the flag before
// its next iteration and discards in-flight state.
func (e *Evaluator) Cancel() {
	e.mu.Lock()
	cancel := e.cancel
	e.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Summary returns the aggregate over samples completed so far.
func (e *Evaluator) Summary() Summary {
	e.mu.Lock()
	defer e.mu.Unlock()
	return summarize(e.precisions)
}

// Run evaluates the candidate parameters over the given point ids,
// invoking onSample after each completed pair in strict input order. Any
// previous run is cancelled and drained before state resets. The returned
// summary covers completed samples even when ctx is cancelled mid-loop;
// cancellation itself is not reported as an error. A backend failure
// returns a zero summary with the error, leaving the partial aggregate
// reachable through Summary.
func (e *Evaluator) Run(ctx context.Context, ids []points.PointID, req Request, onSample func(Sample)) (Summary, error) {
	e.mu.Lock()
	prevCancel, prevDone := e.cancel, e.done
	e.mu.Unlock()
	if prevCancel != nil {
		prevCancel()
	}
	if prevDone != nil {
		<-prevDone
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan struct{})
	defer close(done)

	e.mu.Lock()
	e.cancel = cancel
	e.done = done
	e.precisions = nil
	e.mu.Unlock()

	runID := uuid.NewString()
	e.logger.Debug("precision run started",
		slog.String("run", runID),
		slog.String("collection", req.Collection),
		slog.Int("samples", len(ids)))

	for _, id := range ids {
		if runCtx.Err() != nil {
			e.logger.Debug("precision run cancelled", slog.String("run", runID))
			return e.Summary(), nil
		}

		sample, err := e.evaluateOne(runCtx, id, req)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return e.Summary(), nil
			}
			e.mu.Lock()
			e.lastErr = err.Error()
			e.mu.Unlock()
			return Summary{}, fmt.Errorf("evaluate %s: %w", id, err)
		}

		// A cancellation that lands while the paired queries are in
		// flight discards the completed sample.
		if runCtx.Err() != nil {
			e.logger.Debug("precision run cancelled", slog.String("run", runID))
			return e.Summary(), nil
		}

		e.mu.Lock()
		e.precisions = append(e.precisions, sample.Precision)
		e.mu.Unlock()

		if onSample != nil {
			onSample(sample)
		}
	}

	e.mu.Lock()
	e.lastErr = ""
	summary := summarize(e.precisions)
	e.mu.Unlock()

	e.logger.Debug("precision run finished",
		slog.String("run", runID),
		slog.Float64("mean", summary.Mean),
		slog.Float64("stddev", summary.StdDev))
	return summary, nil
}

// evaluateOne issues the paired queries for a single point, exact first,
// sequentially.
func (e *Evaluator) evaluateOne(ctx context.Context, id points.PointID, req Request) (Sample, error) {
	exactIDs, exactMs, err := e.timedQuery(ctx, id, req, &provider.SearchParams{Exact: true})
	if err != nil {
		return Sample{}, fmt.Errorf("exact query: %w", err)
	}

	params := req.Params
	approxIDs, approxMs, err := e.timedQuery(ctx, id, req, &params)
	if err != nil {
		return Sample{}, fmt.Errorf("approximate query: %w", err)
	}

	precision := precisionAt(exactIDs, approxIDs)
	return Sample{
		Precision:       precision,
		ExactIDs:        exactIDs,
		ApproxIDs:       approxIDs,
		ExactLatencyMs:  exactMs,
		ApproxLatencyMs: approxMs,
		LogLine: fmt.Sprintf("point %s precision %.4f exact %.2fms approx %.2fms",
			id, precision, exactMs, approxMs),
	}, nil
}

func (e *Evaluator) timedQuery(ctx context.Context, id points.PointID, req Request, params *provider.SearchParams) ([]points.PointID, float64, error) {
	started := time.Now()
	result, err := e.backend.NearestNeighbors(ctx, provider.NeighborsRequest{
		Collection: req.Collection,
		QueryID:    &id,
		Limit:      req.Limit,
		Using:      req.Using,
		Predicate:  req.Predicate,
		Params:     params,
	})
	if err != nil {
		return nil, 0, err
	}
	elapsed := float64(time.Since(started).Microseconds()) / 1000

	ids := make([]points.PointID, len(result))
	for i, p := range result {
		ids[i] = p.ID
	}
	return ids, elapsed, nil
}

// precisionAt is |exact ∩ approx| / |exact|, zero when the exact result
// is empty.
func precisionAt(exact, approx []points.PointID) float64 {
	if len(exact) == 0 {
		return 0
	}
	present := make(map[points.PointID]bool, len(approx))
	for _, id := range approx {
		present[id] = true
	}
	var hits int
	for _, id := range exact {
		if present[id] {
			hits++
		}
	}
	return float64(hits) / float64(len(exact))
}

func summarize(precisions []float64) Summary {
	if len(precisions) == 0 {
		return Summary{}
	}
	mean := stat.Mean(precisions, nil)
	var stddev float64
	if len(precisions) > 1 {
		stddev = stat.StdDev(precisions, nil)
	}
	return Summary{
		Mean:   round4(mean),
		StdDev: round4(stddev),
		Count:  len(precisions),
	}
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
