package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adalundhe/lens/core/points"
)

func TestBuildWorkedExample(t *testing.T) {
	schema := Schema{"status": FieldKeyword}
	filters := Parse("status:active id:42", schema)

	pred := Build(filters, schema)

	require.NotNil(t, pred)
	require.Len(t, pred.Must, 2)

	assert.Equal(t, ClauseMatchValue, pred.Must[0].Kind)
	assert.Equal(t, "status", pred.Must[0].Key)
	assert.Equal(t, "active", pred.Must[0].Value)

	assert.Equal(t, ClauseHasID, pred.Must[1].Kind)
	assert.Equal(t, []points.PointID{"42"}, pred.Must[1].IDs)
}

func TestBuildEmptyFilters(t *testing.T) {
	assert.Nil(t, Build(nil, nil))
	assert.Nil(t, Build(points.FilterList{}, nil))
}

func TestBuildCollapsesIdentityFilters(t *testing.T) {
	filters := Parse("id:1 id:2 id:3", nil)

	pred := Build(filters, nil)

	require.NotNil(t, pred)
	require.Len(t, pred.Must, 1)
	assert.Equal(t, ClauseHasID, pred.Must[0].Kind)
	assert.Equal(t, []points.PointID{"1", "2", "3"}, pred.Must[0].IDs)
}

func TestBuildClauseKinds(t *testing.T) {
	schema := Schema{"title": FieldText}

	tests := []struct {
		name     string
		entry    points.FilterEntry
		expected ClauseKind
	}{
		{"null value", points.FilterEntry{Key: "deleted", Value: nil}, ClauseIsNull},
		{"empty string", points.FilterEntry{Key: "note", Value: ""}, ClauseIsEmpty},
		{"text field", points.FilterEntry{Key: "title", Value: "intro"}, ClauseMatchText},
		{"keyword field", points.FilterEntry{Key: "status", Value: "active"}, ClauseMatchValue},
		{"numeric value", points.FilterEntry{Key: "count", Value: int64(5)}, ClauseMatchValue},
		{"bool value", points.FilterEntry{Key: "ready", Value: true}, ClauseMatchValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pred := Build(points.FilterList{tt.entry}, schema)
			require.NotNil(t, pred)
			require.Len(t, pred.Must, 1)
			assert.Equal(t, tt.expected, pred.Must[0].Kind)
		})
	}
}

func TestFieldTypeIsValid(t *testing.T) {
	for _, ft := range []FieldType{FieldKeyword, FieldText, FieldInteger, FieldFloat, FieldBool} {
		assert.True(t, ft.IsValid())
	}
	assert.False(t, FieldType("timestamp").IsValid())
}
