package query

import (
	"github.com/adalundhe/lens/core/points"
)

// ClauseKind discriminates the predicate clause variants.
type ClauseKind int

const (
	// ClauseHasID restricts results to an explicit id set.
	ClauseHasID ClauseKind = iota

	// ClauseIsNull matches points whose payload value for Key is null
	// or absent.
	ClauseIsNull

	// ClauseIsEmpty matches points whose payload value for Key is the
	// empty string.
	ClauseIsEmpty

	// ClauseMatchText matches text-typed fields by full-text semantics.
	ClauseMatchText

	// ClauseMatchValue matches a payload value exactly.
	ClauseMatchValue
)

// Clause is one conjunct of a predicate. Kind selects which fields are
// meaningful: HasID uses IDs; the rest use Key, and the match clauses
// additionally Text or Value.
type Clause struct {
	Kind  ClauseKind
	Key   string
	IDs   []points.PointID
	Text  string
	Value any
}

// Predicate is the backend-native conjunction compiled from a filter
// list. All clauses are implicitly ANDed.
type Predicate struct {
	Must []Clause
}

// Build compiles a filter list into a predicate. Identity entries collapse
// into a single has-id clause; every payload entry contributes one clause.
// An empty list yields no predicate.
func Build(filters points.FilterList, schema Schema) *Predicate {
	if len(filters) == 0 {
		return nil
	}

	var (
		must []Clause
		ids  []points.PointID
	)

	for _, entry := range filters {
		if entry.IsIdentity {
			ids = append(ids, points.NewPointID(entry.Value))
			continue
		}
		must = append(must, buildClause(entry, schema))
	}

	if len(ids) > 0 {
		must = append(must, Clause{Kind: ClauseHasID, IDs: ids})
	}
	if len(must) == 0 {
		return nil
	}
	return &Predicate{Must: must}
}

func buildClause(entry points.FilterEntry, schema Schema) Clause {
	switch value := entry.Value.(type) {
	case nil:
		return Clause{Kind: ClauseIsNull, Key: entry.Key}
	case string:
		if value == "" {
			return Clause{Kind: ClauseIsEmpty, Key: entry.Key}
		}
		if schema[entry.Key] == FieldText {
			return Clause{Kind: ClauseMatchText, Key: entry.Key, Text: value}
		}
		return Clause{Kind: ClauseMatchValue, Key: entry.Key, Value: value}
	default:
		return Clause{Kind: ClauseMatchValue, Key: entry.Key, Value: entry.Value}
	}
}
