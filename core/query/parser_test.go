package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adalundhe/lens/core/points"
)

func TestParseWorkedExample(t *testing.T) {
	schema := Schema{"status": FieldKeyword}

	filters := Parse("status:active id:42", schema)

	require.Len(t, filters, 2)
	assert.Equal(t, points.FilterEntry{Key: "id", Value: int64(42), IsIdentity: true}, filters[0])
	assert.Equal(t, points.FilterEntry{Key: "status", Value: "active"}, filters[1])
}

func TestParseIgnoresTokensWithoutColon(t *testing.T) {
	filters := Parse("status:active garbage other", nil)

	require.Len(t, filters, 1)
	assert.Equal(t, "status", filters[0].Key)
}

func TestParseNullAndEmpty(t *testing.T) {
	filters := Parse("deleted:NULL note:(empty)", nil)

	require.Len(t, filters, 2)
	assert.Nil(t, filters[0].Value)
	assert.Equal(t, "", filters[1].Value)
}

func TestParseSchemaCoercion(t *testing.T) {
	schema := Schema{
		"count":  FieldInteger,
		"weight": FieldFloat,
		"ready":  FieldBool,
		"title":  FieldText,
	}

	tests := []struct {
		name     string
		raw      string
		expected any
	}{
		{"integer", "count:7", int64(7)},
		{"integer fallback", "count:seven", "seven"},
		{"float", "weight:2.5", 2.5},
		{"float fallback", "weight:heavy", "heavy"},
		{"bool true", "ready:TRUE", true},
		{"bool false", "ready:false", false},
		{"bool fallback", "ready:maybe", "maybe"},
		{"text stays string", "title:intro", "intro"},
		{"unknown field keyword", "city:berlin", "berlin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filters := Parse(tt.raw, schema)
			require.Len(t, filters, 1)
			assert.Equal(t, tt.expected, filters[0].Value)
		})
	}
}

func TestParseDeduplicates(t *testing.T) {
	filters := Parse("status:active status:active status:inactive", nil)

	require.Len(t, filters, 2)
	assert.Equal(t, "active", filters[0].Value)
	assert.Equal(t, "inactive", filters[1].Value)
}

func TestParseIdempotent(t *testing.T) {
	schema := Schema{"count": FieldInteger, "title": FieldText}
	raws := []string{
		"status:active id:42 count:7",
		"a:null b:(empty) a:null",
		"id:1 id:2 id:1 title:hello",
	}

	for _, raw := range raws {
		first := Parse(raw, schema)
		second := Parse(raw, schema)
		assert.True(t, first.Equal(second), "repeated parse of %q diverged", raw)
	}
}

func TestParseSerializeRoundTrip(t *testing.T) {
	schema := Schema{"count": FieldInteger}
	raws := []string{
		"id:42 status:active",
		"id:7 id:9 count:3 deleted:null note:(empty)",
		"status:active",
	}

	for _, raw := range raws {
		filters := Parse(raw, schema)
		again := Parse(filters.Serialize(), schema)
		assert.True(t, filters.Equal(again), "round trip of %q diverged: %q", raw, filters.Serialize())
	}
}
