package points

import (
	"encoding/json"
	"errors"
	"fmt"
)

// VectorKind discriminates the supported vector shapes. Dispatch on the
// kind is exhaustive at every validation boundary; runtime type inspection
// of raw payloads happens only inside the constructors.
type VectorKind int

const (
	// VectorFlat is a plain dense embedding.
	VectorFlat VectorKind = iota

	// VectorNamed maps vector field names to nested vector values.
	VectorNamed

	// VectorSparse pairs explicit dimension indices with values.
	VectorSparse

	// VectorMulti holds several dense embeddings under one field.
	VectorMulti
)

var vectorKindNames = map[VectorKind]string{
	VectorFlat:   "flat",
	VectorNamed:  "named",
	VectorSparse: "sparse",
	VectorMulti:  "multi",
}

// String returns the lowercase kind name used in error messages.
func (k VectorKind) String() string {
	if name, ok := vectorKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// ErrVectorFieldUnselected indicates a named-vector mapping was reached
// without a concrete field chosen.
var ErrVectorFieldUnselected = errors.New("select a valid vector field")

// VectorValue is the tagged variant over all vector shapes a point may
// carry. Exactly one of the shape fields is meaningful, per Kind.
type VectorValue struct {
	Kind VectorKind

	Flat          []float32
	Named         map[string]*VectorValue
	SparseIndices []uint32
	SparseValues  []float32
	Multi         [][]float32
}

// NewFlatVector wraps a dense embedding.
func NewFlatVector(values []float32) *VectorValue {
	return &VectorValue{Kind: VectorFlat, Flat: values}
}

// NewNamedVectors wraps a named-vector mapping.
func NewNamedVectors(named map[string]*VectorValue) *VectorValue {
	return &VectorValue{Kind: VectorNamed, Named: named}
}

// NewSparseVector wraps an index/value sparse vector.
func NewSparseVector(indices []uint32, values []float32) *VectorValue {
	return &VectorValue{Kind: VectorSparse, SparseIndices: indices, SparseValues: values}
}

// NewMultiVector wraps a multi-vector field.
func NewMultiVector(rows [][]float32) *VectorValue {
	return &VectorValue{Kind: VectorMulti, Multi: rows}
}

// IsFlat reports whether the value is a plain dense embedding.
func (v *VectorValue) IsFlat() bool {
	return v != nil && v.Kind == VectorFlat
}

// Resolve walks the value down to the vector stored under field. An empty
// field selects the value itself; selecting into a named mapping requires
// a field naming one of its entries.
func (v *VectorValue) Resolve(field string) (*VectorValue, error) {
	if v == nil {
		return nil, fmt.Errorf("point has no vector")
	}
	if field == "" {
		if v.Kind == VectorNamed {
			return nil, ErrVectorFieldUnselected
		}
		return v, nil
	}
	if v.Kind != VectorNamed {
		// A concrete field was requested but the point stores a single
		// unnamed vector; treat that vector as the field's value.
		return v, nil
	}
	nested, ok := v.Named[field]
	if !ok {
		return nil, ErrVectorFieldUnselected
	}
	return nested.Resolve("")
}

// MarshalJSON renders the value in its wire shape: a flat array, a name
// mapping, an indices/values object, or an array of arrays.
func (v *VectorValue) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case VectorFlat:
		return json.Marshal(v.Flat)
	case VectorNamed:
		return json.Marshal(v.Named)
	case VectorSparse:
		return json.Marshal(struct {
			Indices []uint32  `json:"indices"`
			Values  []float32 `json:"values"`
		}{v.SparseIndices, v.SparseValues})
	case VectorMulti:
		return json.Marshal(v.Multi)
	default:
		return nil, fmt.Errorf("marshal vector: unknown kind %d", v.Kind)
	}
}

// UnmarshalJSON detects the wire shape and tags the value accordingly.
func (v *VectorValue) UnmarshalJSON(data []byte) error {
	var flat []float32
	if err := json.Unmarshal(data, &flat); err == nil {
		*v = VectorValue{Kind: VectorFlat, Flat: flat}
		return nil
	}

	var multi [][]float32
	if err := json.Unmarshal(data, &multi); err == nil {
		*v = VectorValue{Kind: VectorMulti, Multi: multi}
		return nil
	}

	var sparse struct {
		Indices []uint32  `json:"indices"`
		Values  []float32 `json:"values"`
	}
	if err := json.Unmarshal(data, &sparse); err == nil && len(sparse.Indices) > 0 {
		*v = VectorValue{Kind: VectorSparse, SparseIndices: sparse.Indices, SparseValues: sparse.Values}
		return nil
	}

	var named map[string]*VectorValue
	if err := json.Unmarshal(data, &named); err == nil {
		*v = VectorValue{Kind: VectorNamed, Named: named}
		return nil
	}

	return fmt.Errorf("unmarshal vector: unrecognized shape")
}

// FlatValues resolves field and requires the result to be a dense
// embedding, the only shape dimensionality reduction accepts.
func (v *VectorValue) FlatValues(field string) ([]float32, error) {
	resolved, err := v.Resolve(field)
	if err != nil {
		return nil, err
	}
	switch resolved.Kind {
	case VectorFlat:
		return resolved.Flat, nil
	case VectorNamed, VectorSparse, VectorMulti:
		return nil, fmt.Errorf("reduction unsupported for vector type %s", resolved.Kind)
	default:
		return nil, fmt.Errorf("reduction unsupported for vector type %s", resolved.Kind)
	}
}
