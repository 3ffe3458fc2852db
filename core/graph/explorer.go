// Package graph builds similarity graphs over a vector collection: seed a
// point, pull its nearest neighbors, and grow the graph one expansion at a
// time, or sample a dense pairwise-similarity edge set and optionally
// reduce it to a maximum-weight spanning forest.
package graph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/adalundhe/lens/core/points"
	"github.com/adalundhe/lens/core/provider"
	"github.com/adalundhe/lens/core/query"
)

// Sentinel errors for explorer operations. Use errors.Is() to check.
var (
	// ErrNoData indicates no seed point was resolvable under the active
	// filter; the graph is left empty.
	ErrNoData = errors.New("graph: no data")

	// ErrAlreadySeeded indicates the one-shot seed request was already
	// consumed for this session.
	ErrAlreadySeeded = errors.New("graph: session already seeded")

	// ErrUnknownNode indicates an expansion was requested for an id not
	// present in the graph.
	ErrUnknownNode = errors.New("graph: node not in graph")
)

// State tracks the explorer session lifecycle.
type State string

const (
	// StateEmpty means no seed has been consumed yet.
	StateEmpty State = "empty"

	// StateSeeded means the initial node set is in place.
	StateSeeded State = "seeded"

	// StateExpanding means a neighbor query is in flight.
	StateExpanding State = "expanding"

	// StateStable means the last expansion has been merged.
	StateStable State = "stable"
)

// String returns the string representation of the state.
func (s State) String() string {
	return string(s)
}

// Node is a graph node: the underlying point plus a transient visited
// marker for the display layer. The marker carries no identity.
type Node struct {
	points.Point
	Visited bool `json:"visited"`
}

// Edge connects two nodes. Edges are stored directed in expansion order
// (expanded node to returned neighbor) but treated as undirected by the
// spanning-forest reduction.
type Edge struct {
	Source points.PointID `json:"source"`
	Target points.PointID `json:"target"`
	Score  *float64       `json:"score,omitempty"`
}

// Result is the graph snapshot handed to the display layer.
type Result struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// SeedRequest is the one-time seed command for a session. Point may be
// nil, in which case an arbitrary sample under the active predicate is
// used instead.
type SeedRequest struct {
	Point *points.Point
}

// Options configures an explorer session.
type Options struct {
	Collection string
	Using      string
	Predicate  *query.Predicate
	Limit      int
	Logger     *slog.Logger
}

// Explorer is one graph exploration session. Expansion requests are
// serialized; the merged node list preserves first-seen order.
type Explorer struct {
	backend provider.Provider
	opts    Options
	logger  *slog.Logger

	mu      sync.Mutex
	state   State
	seeded  bool
	nodes   []Node
	nodeIdx map[points.PointID]int
	edges   []Edge
	lastErr string
}

// NewExplorer creates an empty exploration session.
func NewExplorer(backend provider.Provider, opts Options) *Explorer {
	if opts.Limit <= 0 {
		opts.Limit = 10
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Explorer{
		backend: backend,
		opts:    opts,
		logger:  logger,
		state:   StateEmpty,
		nodeIdx: make(map[points.PointID]int),
	}
}

// StateOf returns the current session state.
func (e *Explorer) StateOf() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// LastError returns the retained error message, empty when the last
// operation succeeded or the error was cleared.
func (e *Explorer) LastError() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

// ClearError drops the retained error message.
func (e *Explorer) ClearError() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastErr = ""
}

// Graph returns a copy of the current node and edge sets.
func (e *Explorer) Graph() Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	nodes := make([]Node, len(e.nodes))
	copy(nodes, e.nodes)
	edges := make([]Edge, len(e.edges))
	copy(edges, e.edges)
	return Result{Nodes: nodes, Edges: edges}
}

// Reset clears the session back to the empty state, releasing the seed
// so a new seed request can be consumed.
func (e *Explorer) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.state = StateEmpty
	e.seeded = false
	e.nodes = nil
	e.nodeIdx = make(map[points.PointID]int)
	e.edges = nil
	e.lastErr = ""
}

// Seed consumes the one-shot seed request: resolve a seed point, query
// its neighbors and install the initial node and edge sets. A second call
// without a Reset fails with ErrAlreadySeeded. Failure to resolve a seed
// leaves the graph empty and the seed unconsumed.
func (e *Explorer) Seed(ctx context.Context, req SeedRequest) error {
	e.mu.Lock()
	if e.seeded {
		e.mu.Unlock()
		return ErrAlreadySeeded
	}
	e.seeded = true
	e.mu.Unlock()

	seed, err := e.resolveSeed(ctx, req)
	if err != nil {
		e.mu.Lock()
		e.seeded = false
		e.lastErr = err.Error()
		e.mu.Unlock()
		return err
	}

	neighbors, err := e.neighbors(ctx, seed.ID)
	if err != nil {
		e.mu.Lock()
		e.seeded = false
		e.lastErr = err.Error()
		e.mu.Unlock()
		return fmt.Errorf("seed neighbors: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.addNode(Node{Point: *seed, Visited: true})
	for _, p := range neighbors {
		e.addNode(Node{Point: p})
		e.edges = append(e.edges, Edge{Source: seed.ID, Target: p.ID, Score: p.Score})
	}
	e.state = StateSeeded
	e.lastErr = ""

	e.logger.Debug("graph seeded",
		slog.String("collection", e.opts.Collection),
		slog.String("seed", seed.ID.String()),
		slog.Int("neighbors", len(neighbors)))
	return nil
}

// Expand grows the graph from an existing node: query its neighbors,
// merge genuinely new points as nodes, and append one edge per returned
// neighbor whether or not that neighbor was already present. Repeated
// expansions can therefore close cycles and produce parallel edges.
func (e *Explorer) Expand(ctx context.Context, id points.PointID) error {
	e.mu.Lock()
	idx, ok := e.nodeIdx[id]
	if !ok {
		e.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}
	e.nodes[idx].Visited = true
	e.state = StateExpanding
	e.mu.Unlock()

	neighbors, err := e.neighbors(ctx, id)

	e.mu.Lock()
	defer e.mu.Unlock()

	if err != nil {
		e.state = StateStable
		e.lastErr = err.Error()
		return fmt.Errorf("expand %s: %w", id, err)
	}

	added := 0
	for _, p := range neighbors {
		if e.addNode(Node{Point: p}) {
			added++
		}
		e.edges = append(e.edges, Edge{Source: id, Target: p.ID, Score: p.Score})
	}
	e.state = StateStable
	e.lastErr = ""

	e.logger.Debug("graph expanded",
		slog.String("node", id.String()),
		slog.Int("returned", len(neighbors)),
		slog.Int("added", added))
	return nil
}

// Sample replaces the graph with an all-pairs similarity sample. When
// tree is set the dense edge set is reduced to a maximum-weight spanning
// forest.
func (e *Explorer) Sample(ctx context.Context, sampleSize, limit int, tree bool) error {
	pairs, err := e.backend.PairwiseSimilarity(ctx, provider.PairwiseRequest{
		Collection: e.opts.Collection,
		SampleSize: sampleSize,
		Limit:      limit,
		Using:      e.opts.Using,
		Predicate:  e.opts.Predicate,
	})
	if err != nil {
		e.mu.Lock()
		e.lastErr = err.Error()
		e.mu.Unlock()
		return fmt.Errorf("pairwise sample: %w", err)
	}

	ids := make([]points.PointID, 0, sampleSize)
	seen := make(map[points.PointID]bool)
	for _, pair := range pairs {
		for _, id := range []points.PointID{pair.A, pair.B} {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}

	pts, err := e.backend.BulkRetrieve(ctx, e.opts.Collection, ids, true, false)
	if err != nil {
		e.mu.Lock()
		e.lastErr = err.Error()
		e.mu.Unlock()
		return fmt.Errorf("retrieve sampled points: %w", err)
	}

	edges := make([]Edge, 0, len(pairs))
	for _, pair := range pairs {
		score := pair.Score
		edges = append(edges, Edge{Source: pair.A, Target: pair.B, Score: &score})
	}
	if tree {
		edges = SpanningForest(edges)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.nodes = nil
	e.nodeIdx = make(map[points.PointID]int)
	for _, p := range pts {
		e.addNode(Node{Point: p})
	}
	e.edges = edges
	e.state = StateStable
	e.seeded = true
	e.lastErr = ""
	return nil
}

// addNode merges a node by identity, returning true when it was new.
// Caller holds e.mu.
func (e *Explorer) addNode(n Node) bool {
	if _, exists := e.nodeIdx[n.ID]; exists {
		return false
	}
	e.nodeIdx[n.ID] = len(e.nodes)
	e.nodes = append(e.nodes, n)
	return true
}

func (e *Explorer) resolveSeed(ctx context.Context, req SeedRequest) (*points.Point, error) {
	if req.Point != nil {
		return req.Point, nil
	}
	sample, err := e.backend.ScrollSample(ctx, e.opts.Collection, 1, e.opts.Predicate)
	if err != nil {
		return nil, fmt.Errorf("sample seed: %w", err)
	}
	if len(sample) == 0 {
		return nil, ErrNoData
	}
	return &sample[0], nil
}

func (e *Explorer) neighbors(ctx context.Context, id points.PointID) ([]points.Point, error) {
	return e.backend.NearestNeighbors(ctx, provider.NeighborsRequest{
		Collection:  e.opts.Collection,
		QueryID:     &id,
		Limit:       e.opts.Limit,
		Using:       e.opts.Using,
		Predicate:   e.opts.Predicate,
		WithPayload: true,
	})
}
