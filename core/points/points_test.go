package points

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPointID(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected PointID
	}{
		{"string", "abc", "abc"},
		{"int", 42, "42"},
		{"int64", int64(-7), "-7"},
		{"uint64", uint64(42), "42"},
		{"json number", float64(42), "42"},
		{"fractional", 1.5, "1.5"},
		{"point id", PointID("x"), "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NewPointID(tt.input))
		})
	}
}

func TestFilterListAddDeduplicates(t *testing.T) {
	var list FilterList
	list = list.Add(FilterEntry{Key: "status", Value: "active"})
	list = list.Add(FilterEntry{Key: "city", Value: "berlin"})
	list = list.Add(FilterEntry{Key: "status", Value: "active"})

	assert.Len(t, list, 2)
	assert.Equal(t, "status", list[0].Key)
	assert.Equal(t, "city", list[1].Key)
}

func TestFilterListAddKeepsDistinctTriples(t *testing.T) {
	var list FilterList
	list = list.Add(FilterEntry{Key: "id", Value: "42", IsIdentity: true})
	list = list.Add(FilterEntry{Key: "id", Value: "42"})
	list = list.Add(FilterEntry{Key: "id", Value: "43", IsIdentity: true})

	assert.Len(t, list, 3)
}

func TestFilterListRemove(t *testing.T) {
	var list FilterList
	list = list.Add(FilterEntry{Key: "a", Value: "1"})
	list = list.Add(FilterEntry{Key: "b", Value: "2"})

	list = list.Remove(FilterEntry{Key: "a", Value: "1"})

	assert.Len(t, list, 1)
	assert.Equal(t, "b", list[0].Key)
}

func TestFilterListSerialize(t *testing.T) {
	list := FilterList{
		{Key: "id", Value: int64(42), IsIdentity: true},
		{Key: "status", Value: "active"},
		{Key: "deleted", Value: nil},
		{Key: "note", Value: ""},
		{Key: "ready", Value: true},
	}

	assert.Equal(t, "id:42 status:active deleted:null note:(empty) ready:true", list.Serialize())
}

func TestFilterListEqual(t *testing.T) {
	a := FilterList{{Key: "x", Value: "1"}}
	b := FilterList{{Key: "x", Value: "1"}}
	c := FilterList{{Key: "x", Value: "2"}}

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(FilterList{}))
}

func TestPayloadString(t *testing.T) {
	p := Point{ID: "1", Payload: map[string]any{"city": "berlin", "count": 3}}

	city, ok := p.PayloadString("city")
	assert.True(t, ok)
	assert.Equal(t, "berlin", city)

	count, ok := p.PayloadString("count")
	assert.True(t, ok)
	assert.Equal(t, "3", count)

	_, ok = p.PayloadString("missing")
	assert.False(t, ok)
}

func TestScoreValue(t *testing.T) {
	score := 0.75
	withScore := Point{ID: "1", Score: &score}
	withoutScore := Point{ID: "2"}

	assert.Equal(t, 0.75, withScore.ScoreValue())
	assert.Equal(t, 0.0, withoutScore.ScoreValue())
}
