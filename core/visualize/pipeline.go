// Package visualize runs dimensionality reduction over sampled point sets
// in an isolated background computation, streaming intermediate layouts to
// the caller. Reduction is CPU-bound, so each run owns one goroutine and
// communicates with the interactive surface only through its snapshot
// channel; no state is shared between the run and the caller.
package visualize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/adalundhe/lens/core/points"
)

// Sentinel errors for reduction input validation. Use errors.Is() to check.
var (
	// ErrNoPoints indicates an empty input point set.
	ErrNoPoints = errors.New("no points to visualize")

	// ErrSinglePoint indicates a one-point input, which has no pairwise
	// structure to reduce.
	ErrSinglePoint = errors.New("cannot reduce a single point")
)

// defaultSnapshotInterval bounds how often iterative algorithms emit
// intermediate layouts.
const defaultSnapshotInterval = 200 * time.Millisecond

// Coordinate is one reduced point. Output index i always corresponds to
// input point i; external color and label arrays rely on that alignment.
type Coordinate struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Snapshot is one message from a reduction run. Done marks the final
// layout; iterative algorithms emit any number of intermediate snapshots
// before it, single-shot algorithms emit only the final one.
type Snapshot struct {
	Coordinates []Coordinate `json:"coordinates"`
	Done        bool         `json:"done"`
}

// Request describes one reduction run.
type Request struct {
	Points    []points.Point
	Using     string
	Algorithm Algorithm

	// SnapshotInterval overrides the intermediate-snapshot cadence.
	// Zero means the default of 200ms.
	SnapshotInterval time.Duration

	// Iterations overrides the algorithm's default iteration count.
	Iterations int

	// Color selects an optional per-point color encoding, computed once
	// at start and exposed through Run.Colors.
	Color *ColorSpec

	// Canvas, when set, min-max normalizes every outgoing snapshot into
	// the given rectangle so layouts are directly drawable.
	Canvas *Rect
}

// Run is one in-flight background reduction. Snapshots are consumed from
// Snapshots(); the channel closes after the final snapshot or on
// cancellation.
type Run struct {
	ID string

	snapshots chan Snapshot
	colors    []string
	cancel    context.CancelFunc
	done      chan struct{}

	mu  sync.Mutex
	err error
}

// Snapshots returns the run's output stream.
func (r *Run) Snapshots() <-chan Snapshot {
	return r.snapshots
}

// Colors returns the per-point color encoding, index-aligned with the
// input points, or nil when the request carried no color spec. Colors
// depend only on the input, so they are fixed for the run's lifetime.
func (r *Run) Colors() []string {
	return r.colors
}

// Cancel stops the background computation. Cancellation is not a
// failure; Err reports context.Canceled afterwards.
func (r *Run) Cancel() {
	r.cancel()
}

// Wait blocks until the background computation has exited.
func (r *Run) Wait() {
	<-r.done
}

// Err returns the run's terminal error: nil on success,
// context.Canceled after cancellation, or the reduction failure.
func (r *Run) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

func (r *Run) setErr(err error) {
	r.mu.Lock()
	r.err = err
	r.mu.Unlock()
}

// Pipeline owns visualization runs for one session. At most one run is
// active at a time: starting a new run cancels and drains the previous
// one first.
type Pipeline struct {
	logger *slog.Logger

	mu      sync.Mutex
	active  *Run
	lastErr string
}

// NewPipeline creates a visualization pipeline.
func NewPipeline(logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{logger: logger}
}

// LastError returns the retained failure message, empty after a
// successful run or an explicit clear. Cancellations are never retained.
func (p *Pipeline) LastError() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

// ClearError drops the retained failure message.
func (p *Pipeline) ClearError() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastErr = ""
}

// Start validates the request, terminates any active run, and launches
// the reduction in a background goroutine. Input errors are returned
// synchronously and leave no run active.
func (p *Pipeline) Start(ctx context.Context, req Request) (*Run, error) {
	vectors, err := p.validate(req)
	if err != nil {
		p.mu.Lock()
		p.lastErr = err.Error()
		p.mu.Unlock()
		return nil, err
	}

	p.mu.Lock()
	if p.active != nil {
		prev := p.active
		p.mu.Unlock()
		prev.Cancel()
		prev.Wait()
		p.mu.Lock()
	}

	runCtx, cancel := context.WithCancel(ctx)
	run := &Run{
		ID:        uuid.NewString(),
		snapshots: make(chan Snapshot, 1),
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	p.active = run
	p.mu.Unlock()

	if req.Color != nil {
		run.colors = Colors(req.Points, *req.Color)
	}

	interval := req.SnapshotInterval
	if interval <= 0 {
		interval = defaultSnapshotInterval
	}

	go p.reduce(runCtx, run, req.Algorithm, vectors, interval, req.Iterations, req.Canvas)

	return run, nil
}

// validate resolves every point's vector for the requested field and
// rejects inputs reduction cannot handle. The returned rows are in input
// point order.
func (p *Pipeline) validate(req Request) ([][]float64, error) {
	switch len(req.Points) {
	case 0:
		return nil, ErrNoPoints
	case 1:
		return nil, ErrSinglePoint
	}
	if !req.Algorithm.IsValid() {
		return nil, fmt.Errorf("unknown reduction algorithm %q", req.Algorithm)
	}

	rows := make([][]float64, len(req.Points))
	for i, pt := range req.Points {
		if pt.Vector == nil {
			return nil, fmt.Errorf("point %s has no vector", pt.ID)
		}
		flat, err := pt.Vector.FlatValues(req.Using)
		if err != nil {
			return nil, err
		}
		row := make([]float64, len(flat))
		for j, v := range flat {
			row[j] = float64(v)
		}
		rows[i] = row
	}

	width := len(rows[0])
	for i, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("point %s vector has %d dimensions, expected %d",
				req.Points[i].ID, len(row), width)
		}
	}
	return rows, nil
}

// reduce drives one background reduction to completion. It is the only
// goroutine touching the run's channel.
func (p *Pipeline) reduce(ctx context.Context, run *Run, algo Algorithm, vectors [][]float64, interval time.Duration, iterations int, canvas *Rect) {
	defer close(run.snapshots)
	defer close(run.done)

	started := time.Now()
	lastEmit := started

	emit := func(coords []Coordinate, done bool) bool {
		if !done && time.Since(lastEmit) < interval {
			return true
		}
		if canvas != nil {
			coords = NormalizeTo(coords, *canvas)
		}
		select {
		case <-ctx.Done():
			return false
		case run.snapshots <- Snapshot{Coordinates: coords, Done: done}:
			lastEmit = time.Now()
			return true
		}
	}

	err := runAlgorithm(ctx, algo, vectors, iterations, emit)
	run.setErr(err)

	p.mu.Lock()
	if p.active == run {
		p.active = nil
	}
	switch {
	case err == nil:
		p.lastErr = ""
	case errors.Is(err, context.Canceled):
		// Cancellation is not a failure; keep whatever was retained.
	default:
		p.lastErr = err.Error()
	}
	p.mu.Unlock()

	if err != nil && !errors.Is(err, context.Canceled) {
		p.logger.Error("reduction failed",
			slog.String("run", run.ID),
			slog.String("algorithm", algo.String()),
			slog.String("error", err.Error()))
		return
	}
	p.logger.Debug("reduction finished",
		slog.String("run", run.ID),
		slog.String("algorithm", algo.String()),
		slog.Int("points", len(vectors)),
		slog.Duration("elapsed", time.Since(started)),
		slog.Bool("cancelled", errors.Is(err, context.Canceled)))
}
