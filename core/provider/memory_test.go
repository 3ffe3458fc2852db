package provider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adalundhe/lens/core/points"
	"github.com/adalundhe/lens/core/query"
)

func flatPoint(id string, vec []float32, payload map[string]any) points.Point {
	return points.Point{
		ID:      points.PointID(id),
		Payload: payload,
		Vector:  points.NewFlatVector(vec),
	}
}

func testCollection() *Memory {
	m := NewMemory()
	m.Index("demo", []points.Point{
		flatPoint("a", []float32{1, 0}, map[string]any{"status": "active"}),
		flatPoint("b", []float32{0.9, 0.1}, map[string]any{"status": "active"}),
		flatPoint("c", []float32{0, 1}, map[string]any{"status": "inactive"}),
		flatPoint("d", []float32{-1, 0}, map[string]any{"status": "active", "note": ""}),
	})
	return m
}

func neighborIDs(t *testing.T, result []points.Point) []string {
	t.Helper()
	ids := make([]string, len(result))
	for i, p := range result {
		ids[i] = p.ID.String()
	}
	return ids
}

func TestNearestNeighborsByID(t *testing.T) {
	m := testCollection()
	id := points.PointID("a")

	result, err := m.NearestNeighbors(context.Background(), NeighborsRequest{
		Collection: "demo",
		QueryID:    &id,
		Limit:      10,
	})
	require.NoError(t, err)

	// Query point itself is excluded; results ordered by similarity.
	assert.Equal(t, []string{"b", "c", "d"}, neighborIDs(t, result))
	for _, p := range result {
		require.NotNil(t, p.Score)
	}
	assert.Greater(t, *result[0].Score, *result[1].Score)
}

func TestNearestNeighborsByVector(t *testing.T) {
	m := testCollection()

	result, err := m.NearestNeighbors(context.Background(), NeighborsRequest{
		Collection:  "demo",
		QueryVector: []float32{0, 1},
		Limit:       2,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"c", "b"}, neighborIDs(t, result))
}

func TestNearestNeighborsLimit(t *testing.T) {
	m := testCollection()
	id := points.PointID("a")

	result, err := m.NearestNeighbors(context.Background(), NeighborsRequest{
		Collection: "demo",
		QueryID:    &id,
		Limit:      1,
	})
	require.NoError(t, err)
	assert.Len(t, result, 1)
}

func TestNearestNeighborsPredicate(t *testing.T) {
	m := testCollection()
	id := points.PointID("a")
	pred := query.Build(query.Parse("status:active", nil), nil)

	result, err := m.NearestNeighbors(context.Background(), NeighborsRequest{
		Collection: "demo",
		QueryID:    &id,
		Limit:      10,
		Predicate:  pred,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"b", "d"}, neighborIDs(t, result))
}

func TestNearestNeighborsApproximateTruncatesScan(t *testing.T) {
	m := testCollection()
	id := points.PointID("a")

	exact, err := m.NearestNeighbors(context.Background(), NeighborsRequest{
		Collection: "demo",
		QueryID:    &id,
		Limit:      10,
		Params:     &SearchParams{Exact: true},
	})
	require.NoError(t, err)
	assert.Len(t, exact, 3)

	approx, err := m.NearestNeighbors(context.Background(), NeighborsRequest{
		Collection: "demo",
		QueryID:    &id,
		Limit:      10,
		Params:     &SearchParams{HnswEf: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, neighborIDs(t, approx))
}

func TestNearestNeighborsUnknownCollection(t *testing.T) {
	m := testCollection()
	id := points.PointID("a")

	_, err := m.NearestNeighbors(context.Background(), NeighborsRequest{
		Collection: "other",
		QueryID:    &id,
	})
	assert.ErrorIs(t, err, ErrCollectionNotFound)
}

func TestNearestNeighborsUnknownPoint(t *testing.T) {
	m := testCollection()
	id := points.PointID("zzz")

	_, err := m.NearestNeighbors(context.Background(), NeighborsRequest{
		Collection: "demo",
		QueryID:    &id,
	})
	assert.ErrorIs(t, err, ErrPointNotFound)
}

func TestPairwiseSimilarity(t *testing.T) {
	m := testCollection()

	pairs, err := m.PairwiseSimilarity(context.Background(), PairwiseRequest{
		Collection: "demo",
		SampleSize: 4,
		Limit:      100,
	})
	require.NoError(t, err)

	// 4 points yield 6 pairs, sorted by descending score.
	require.Len(t, pairs, 6)
	for i := 1; i < len(pairs); i++ {
		assert.GreaterOrEqual(t, pairs[i-1].Score, pairs[i].Score)
	}
}

func TestBulkRetrieveOrderAndShaping(t *testing.T) {
	m := testCollection()

	result, err := m.BulkRetrieve(context.Background(), "demo",
		[]points.PointID{"c", "a", "missing"}, true, false)
	require.NoError(t, err)

	assert.Equal(t, []string{"c", "a"}, neighborIDs(t, result))
	assert.NotNil(t, result[0].Payload)
	assert.Nil(t, result[0].Vector)

	// Second retrieve hits the cache and returns the same shape.
	again, err := m.BulkRetrieve(context.Background(), "demo",
		[]points.PointID{"c", "a"}, true, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a"}, neighborIDs(t, again))
}

func TestScrollSample(t *testing.T) {
	m := testCollection()
	pred := query.Build(query.Parse("status:inactive", nil), nil)

	result, err := m.ScrollSample(context.Background(), "demo", 10, pred)
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, neighborIDs(t, result))

	limited, err := m.ScrollSample(context.Background(), "demo", 2, nil)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestMatchesClauses(t *testing.T) {
	p := flatPoint("x", []float32{1}, map[string]any{
		"status": "active",
		"note":   "",
		"title":  "Intro to Vectors",
		"gone":   nil,
	})

	tests := []struct {
		name     string
		raw      string
		schema   query.Schema
		expected bool
	}{
		{"match value", "status:active", nil, true},
		{"match value miss", "status:archived", nil, false},
		{"is empty", "note:(empty)", nil, true},
		{"is null", "gone:null", nil, true},
		{"is null miss", "status:null", nil, false},
		{"match text", "title:vectors", query.Schema{"title": query.FieldText}, true},
		{"match text miss", "title:graphs", query.Schema{"title": query.FieldText}, false},
		{"has id", "id:x", nil, true},
		{"has id miss", "id:y", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pred := query.Build(query.Parse(tt.raw, tt.schema), tt.schema)
			assert.Equal(t, tt.expected, Matches(&p, pred))
		})
	}
}
