package points

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveFlat(t *testing.T) {
	v := NewFlatVector([]float32{1, 2, 3})

	resolved, err := v.Resolve("")
	require.NoError(t, err)
	assert.Equal(t, VectorFlat, resolved.Kind)

	flat, err := v.FlatValues("")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3}, flat)
}

func TestResolveNamedRequiresField(t *testing.T) {
	v := NewNamedVectors(map[string]*VectorValue{
		"image": NewFlatVector([]float32{1, 2}),
		"text":  NewFlatVector([]float32{3, 4}),
	})

	_, err := v.Resolve("")
	assert.ErrorIs(t, err, ErrVectorFieldUnselected)

	_, err = v.Resolve("audio")
	assert.ErrorIs(t, err, ErrVectorFieldUnselected)

	flat, err := v.FlatValues("image")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2}, flat)
}

func TestFlatValuesRejectsNonFlatShapes(t *testing.T) {
	tests := []struct {
		name     string
		vector   *VectorValue
		expected string
	}{
		{"sparse", NewSparseVector([]uint32{0, 5}, []float32{1, 2}), "reduction unsupported for vector type sparse"},
		{"multi", NewMultiVector([][]float32{{1, 2}, {3, 4}}), "reduction unsupported for vector type multi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.vector.FlatValues("")
			require.Error(t, err)
			assert.Equal(t, tt.expected, err.Error())
		})
	}
}

func TestVectorValueJSONRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		kind VectorKind
	}{
		{"flat", `[1,2,3]`, VectorFlat},
		{"multi", `[[1,2],[3,4]]`, VectorMulti},
		{"sparse", `{"indices":[0,7],"values":[0.5,0.25]}`, VectorSparse},
		{"named", `{"image":[1,2],"text":[3,4]}`, VectorNamed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v VectorValue
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &v))
			assert.Equal(t, tt.kind, v.Kind)

			data, err := json.Marshal(&v)
			require.NoError(t, err)

			var again VectorValue
			require.NoError(t, json.Unmarshal(data, &again))
			assert.Equal(t, tt.kind, again.Kind)
		})
	}
}

func TestVectorKindString(t *testing.T) {
	assert.Equal(t, "flat", VectorFlat.String())
	assert.Equal(t, "named", VectorNamed.String())
	assert.Equal(t, "sparse", VectorSparse.String())
	assert.Equal(t, "multi", VectorMulti.String())
	assert.Equal(t, "unknown", VectorKind(99).String())
}
