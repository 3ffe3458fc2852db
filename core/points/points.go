// Package points defines the shared record model for the exploration
// console: points, their vector payloads, and the textual filter entries
// that the query builder compiles into backend predicates.
package points

import (
	"fmt"
	"strconv"
	"strings"
)

// =============================================================================
// Point Identity
// =============================================================================

// PointID is the canonical string form of a point identifier. The backend
// may hand back string or numeric ids; all dedup and merge logic compares
// ids after coercion to this form.
type PointID string

// NewPointID coerces a backend id value to its canonical form. Integer ids
// render as their decimal string so "42" and uint64(42) compare equal.
func NewPointID(v any) PointID {
	switch id := v.(type) {
	case PointID:
		return id
	case string:
		return PointID(id)
	case int:
		return PointID(strconv.Itoa(id))
	case int64:
		return PointID(strconv.FormatInt(id, 10))
	case uint64:
		return PointID(strconv.FormatUint(id, 10))
	case float64:
		// JSON decoding surfaces numeric ids as float64.
		if id == float64(int64(id)) {
			return PointID(strconv.FormatInt(int64(id), 10))
		}
		return PointID(strconv.FormatFloat(id, 'g', -1, 64))
	default:
		return PointID(fmt.Sprintf("%v", v))
	}
}

// String returns the string representation of the id.
func (id PointID) String() string {
	return string(id)
}

// =============================================================================
// Point
// =============================================================================

// Point is one vector record: identity, payload attributes, an optional
// vector in any of the supported shapes, and an optional relevance score
// assigned by a similarity query.
type Point struct {
	ID      PointID        `json:"id"`
	Payload map[string]any `json:"payload,omitempty"`
	Vector  *VectorValue   `json:"vector,omitempty"`
	Score   *float64       `json:"score,omitempty"`
}

// ScoreValue returns the relevance score, or 0 when none was assigned.
func (p *Point) ScoreValue() float64 {
	if p.Score == nil {
		return 0
	}
	return *p.Score
}

// PayloadString returns the stringified payload value for key, and whether
// the key was present. Used by the categorical color encoder.
func (p *Point) PayloadString(key string) (string, bool) {
	if p.Payload == nil {
		return "", false
	}
	v, ok := p.Payload[key]
	if !ok {
		return "", false
	}
	return fmt.Sprintf("%v", v), true
}

// =============================================================================
// Filter Entries
// =============================================================================

// FilterEntry is one condition from the textual filter language. Identity
// entries carry point ids rather than payload values.
type FilterEntry struct {
	Key        string `json:"key"`
	Value      any    `json:"value"`
	IsIdentity bool   `json:"is_identity"`
}

// equal reports whether two entries form the same (key, value, identity)
// triple. Values compare by their string rendering, matching the parser's
// round-trip contract.
func (e FilterEntry) equal(other FilterEntry) bool {
	return e.Key == other.Key &&
		e.IsIdentity == other.IsIdentity &&
		renderValue(e.Value) == renderValue(other.Value)
}

// FilterList is an ordered set of filter entries. Order is preserved,
// duplicates are suppressed on insert.
type FilterList []FilterEntry

// Add appends entry unless an equal entry is already present. The first
// occurrence wins, keeping parses idempotent.
func (l FilterList) Add(entry FilterEntry) FilterList {
	for _, existing := range l {
		if existing.equal(entry) {
			return l
		}
	}
	return append(l, entry)
}

// Remove drops the entry equal to the argument, preserving order.
func (l FilterList) Remove(entry FilterEntry) FilterList {
	out := make(FilterList, 0, len(l))
	for _, existing := range l {
		if !existing.equal(entry) {
			out = append(out, existing)
		}
	}
	return out
}

// Equal reports whether two lists hold the same entries in the same order.
func (l FilterList) Equal(other FilterList) bool {
	if len(l) != len(other) {
		return false
	}
	for i := range l {
		if !l[i].equal(other[i]) {
			return false
		}
	}
	return true
}

// Serialize renders the list back into the textual filter language.
// Identity entries render under the "id" key; nil values render as "null"
// and empty strings as "(empty)" so a serialize/parse round trip is exact.
func (l FilterList) Serialize() string {
	tokens := make([]string, 0, len(l))
	for _, entry := range l {
		key := entry.Key
		if entry.IsIdentity {
			key = "id"
		}
		tokens = append(tokens, key+":"+renderValue(entry.Value))
	}
	return strings.Join(tokens, " ")
}

func renderValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		if val == "" {
			return "(empty)"
		}
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case int64:
		return strconv.FormatInt(val, 10)
	case int:
		return strconv.Itoa(val)
	default:
		return fmt.Sprintf("%v", v)
	}
}
