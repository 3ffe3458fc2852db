package provider

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/viterin/vek/vek32"

	"github.com/adalundhe/lens/core/points"
	"github.com/adalundhe/lens/core/query"
)

// retrieveCacheSize bounds the bulk-retrieve point cache.
const retrieveCacheSize = 4096

// Memory is a brute-force in-process Provider over indexed point sets.
// Similarity is cosine over the selected flat vector field. Approximate
// queries truncate the candidate scan to the requested candidate-list
// size, which makes exact-vs-approximate precision comparisons meaningful
// without a real ANN index behind them.
type Memory struct {
	mu          sync.RWMutex
	collections map[string][]points.Point
	byID        map[string]map[points.PointID]int

	cache *lru.Cache[string, points.Point]
	rng   *rand.Rand
}

// NewMemory creates an empty in-memory provider.
func NewMemory() *Memory {
	cache, _ := lru.New[string, points.Point](retrieveCacheSize)
	return &Memory{
		collections: make(map[string][]points.Point),
		byID:        make(map[string]map[points.PointID]int),
		cache:       cache,
		rng:         rand.New(rand.NewSource(1)),
	}
}

// Index replaces the named collection's points.
func (m *Memory) Index(collection string, pts []points.Point) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.collections[collection] = pts
	index := make(map[points.PointID]int, len(pts))
	for i, p := range pts {
		index[p.ID] = i
	}
	m.byID[collection] = index
	m.cache.Purge()
}

// NearestNeighbors implements Provider.
func (m *Memory) NearestNeighbors(ctx context.Context, req NeighborsRequest) ([]points.Point, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	pts, ok := m.collections[req.Collection]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, req.Collection)
	}

	queryVec, excludeID, err := m.resolveQuery(req, pts)
	if err != nil {
		return nil, err
	}

	type scored struct {
		idx   int
		score float64
	}

	candidates := pts
	if req.Params != nil && !req.Params.Exact && req.Params.HnswEf > 0 && req.Params.HnswEf < len(pts) {
		candidates = pts[:req.Params.HnswEf]
	}

	results := make([]scored, 0, len(candidates))
	for i, p := range candidates {
		if excludeID != nil && p.ID == *excludeID {
			continue
		}
		if !Matches(&p, req.Predicate) {
			continue
		}
		vec, err := flatVector(&p, req.Using)
		if err != nil || len(vec) != len(queryVec) {
			continue
		}
		results = append(results, scored{idx: i, score: float64(vek32.CosineSimilarity(queryVec, vec))})
	}

	sort.SliceStable(results, func(a, b int) bool {
		return results[a].score > results[b].score
	})
	if req.Limit > 0 && len(results) > req.Limit {
		results = results[:req.Limit]
	}

	out := make([]points.Point, 0, len(results))
	for _, r := range results {
		p := shapePoint(candidates[r.idx], req.WithPayload, req.WithVector)
		score := r.score
		p.Score = &score
		out = append(out, p)
	}
	return out, nil
}

// PairwiseSimilarity implements Provider.
func (m *Memory) PairwiseSimilarity(ctx context.Context, req PairwiseRequest) ([]SimilarityPair, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	pts, ok := m.collections[req.Collection]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, req.Collection)
	}

	sample := m.samplePoints(pts, req.Predicate, req.SampleSize)

	pairs := make([]SimilarityPair, 0, len(sample)*(len(sample)-1)/2)
	for i := 0; i < len(sample); i++ {
		va, err := flatVector(&sample[i], req.Using)
		if err != nil {
			continue
		}
		for j := i + 1; j < len(sample); j++ {
			vb, err := flatVector(&sample[j], req.Using)
			if err != nil || len(vb) != len(va) {
				continue
			}
			pairs = append(pairs, SimilarityPair{
				A:     sample[i].ID,
				B:     sample[j].ID,
				Score: float64(vek32.CosineSimilarity(va, vb)),
			})
		}
	}

	sort.SliceStable(pairs, func(a, b int) bool {
		return pairs[a].Score > pairs[b].Score
	})
	if req.Limit > 0 && len(pairs) > req.Limit {
		pairs = pairs[:req.Limit]
	}
	return pairs, nil
}

// BulkRetrieve implements Provider. Hits the point cache before the
// collection index; request order is preserved for ids that exist.
func (m *Memory) BulkRetrieve(ctx context.Context, collection string, ids []points.PointID, withPayload, withVector bool) ([]points.Point, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	index, ok := m.byID[collection]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, collection)
	}

	out := make([]points.Point, 0, len(ids))
	for _, id := range ids {
		key := collection + "\x00" + id.String()
		if cached, ok := m.cache.Get(key); ok {
			out = append(out, shapePoint(cached, withPayload, withVector))
			continue
		}
		idx, ok := index[id]
		if !ok {
			continue
		}
		p := m.collections[collection][idx]
		m.cache.Add(key, p)
		out = append(out, shapePoint(p, withPayload, withVector))
	}
	return out, nil
}

// ScrollSample implements Provider.
func (m *Memory) ScrollSample(ctx context.Context, collection string, limit int, pred *query.Predicate) ([]points.Point, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	pts, ok := m.collections[collection]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, collection)
	}

	out := make([]points.Point, 0, limit)
	for _, p := range pts {
		if !Matches(&p, pred) {
			continue
		}
		out = append(out, p)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (m *Memory) resolveQuery(req NeighborsRequest, pts []points.Point) ([]float32, *points.PointID, error) {
	if req.QueryVector != nil {
		return req.QueryVector, nil, nil
	}
	if req.QueryID == nil {
		return nil, nil, fmt.Errorf("provider: neighbors query needs an id or a vector")
	}
	index := m.byID[req.Collection]
	idx, ok := index[*req.QueryID]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrPointNotFound, *req.QueryID)
	}
	vec, err := flatVector(&pts[idx], req.Using)
	if err != nil {
		return nil, nil, err
	}
	return vec, req.QueryID, nil
}

func (m *Memory) samplePoints(pts []points.Point, pred *query.Predicate, sampleSize int) []points.Point {
	matching := make([]points.Point, 0, len(pts))
	for _, p := range pts {
		if Matches(&p, pred) {
			matching = append(matching, p)
		}
	}
	if sampleSize <= 0 || sampleSize >= len(matching) {
		return matching
	}
	m.rng.Shuffle(len(matching), func(i, j int) {
		matching[i], matching[j] = matching[j], matching[i]
	})
	return matching[:sampleSize]
}

func flatVector(p *points.Point, using string) ([]float32, error) {
	if p.Vector == nil {
		return nil, fmt.Errorf("point %s has no vector", p.ID)
	}
	return p.Vector.FlatValues(using)
}

func shapePoint(p points.Point, withPayload, withVector bool) points.Point {
	out := points.Point{ID: p.ID}
	if withPayload {
		out.Payload = p.Payload
	}
	if withVector {
		out.Vector = p.Vector
	}
	return out
}

// Matches evaluates a predicate against a point's payload and identity.
// A nil predicate matches everything.
func Matches(p *points.Point, pred *query.Predicate) bool {
	if pred == nil {
		return true
	}
	for _, clause := range pred.Must {
		if !matchClause(p, clause) {
			return false
		}
	}
	return true
}

func matchClause(p *points.Point, clause query.Clause) bool {
	switch clause.Kind {
	case query.ClauseHasID:
		for _, id := range clause.IDs {
			if p.ID == id {
				return true
			}
		}
		return false
	case query.ClauseIsNull:
		if p.Payload == nil {
			return true
		}
		v, ok := p.Payload[clause.Key]
		return !ok || v == nil
	case query.ClauseIsEmpty:
		v, ok := p.Payload[clause.Key]
		if !ok {
			return false
		}
		s, ok := v.(string)
		return ok && s == ""
	case query.ClauseMatchText:
		v, ok := p.PayloadString(clause.Key)
		if !ok {
			return false
		}
		return strings.Contains(strings.ToLower(v), strings.ToLower(clause.Text))
	case query.ClauseMatchValue:
		v, ok := p.Payload[clause.Key]
		if !ok {
			return false
		}
		return fmt.Sprintf("%v", v) == fmt.Sprintf("%v", clause.Value)
	default:
		return false
	}
}
