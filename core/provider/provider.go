// Package provider defines the external search-backend abstraction the
// exploration engines call into, plus an in-memory implementation used by
// tests and the demo CLI. The engines never talk to a backend directly;
// everything network-shaped flows through the Provider interface.
package provider

import (
	"context"
	"errors"

	"github.com/adalundhe/lens/core/points"
	"github.com/adalundhe/lens/core/query"
)

// Sentinel errors for provider operations. Use errors.Is() to check.
var (
	// ErrPointNotFound indicates a query referenced an id the collection
	// does not hold.
	ErrPointNotFound = errors.New("provider: point not found")

	// ErrCollectionNotFound indicates an unknown collection name.
	ErrCollectionNotFound = errors.New("provider: collection not found")
)

// SearchParams tunes a nearest-neighbor query. Exact forces exhaustive
// comparison; HnswEf bounds the approximate search's candidate list.
type SearchParams struct {
	Exact  bool `json:"exact"`
	HnswEf int  `json:"hnsw_ef,omitempty"`
}

// NeighborsRequest describes one nearest-neighbor query. Exactly one of
// QueryID and QueryVector is set: QueryID asks for points similar to an
// existing point, QueryVector supplies the embedding directly.
type NeighborsRequest struct {
	Collection  string
	QueryID     *points.PointID
	QueryVector []float32
	Limit       int
	Using       string
	Predicate   *query.Predicate
	Params      *SearchParams
	WithPayload bool
	WithVector  bool
}

// PairwiseRequest describes an all-pairs similarity sample: score every
// pair within a random sample of the collection and keep the top pairs.
type PairwiseRequest struct {
	Collection string
	SampleSize int
	Limit      int
	Using      string
	Predicate  *query.Predicate
}

// SimilarityPair is one scored pair from a pairwise-similarity query.
type SimilarityPair struct {
	A     points.PointID `json:"a"`
	B     points.PointID `json:"b"`
	Score float64        `json:"score"`
}

// Provider is the search backend consumed by the graph explorer, the
// visualization pipeline and the precision evaluator. Implementations own
// retries and persistence; the engines propagate failures as-is.
type Provider interface {
	// NearestNeighbors returns up to Limit points ordered by descending
	// similarity to the query reference.
	NearestNeighbors(ctx context.Context, req NeighborsRequest) ([]points.Point, error)

	// PairwiseSimilarity returns scored pairs over a random sample of the
	// collection.
	PairwiseSimilarity(ctx context.Context, req PairwiseRequest) ([]SimilarityPair, error)

	// BulkRetrieve fetches points by id, preserving request order for the
	// ids that exist.
	BulkRetrieve(ctx context.Context, collection string, ids []points.PointID, withPayload, withVector bool) ([]points.Point, error)

	// ScrollSample returns up to limit arbitrary points matching the
	// predicate.
	ScrollSample(ctx context.Context, collection string, limit int, pred *query.Predicate) ([]points.Point, error)
}
