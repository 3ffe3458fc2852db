// Package query translates the console's compact textual filter language
// into backend predicates. The language is a whitespace-separated list of
// key:value tokens; the optional schema steers value coercion per field.
package query

import (
	"strconv"
	"strings"

	"github.com/adalundhe/lens/core/points"
)

// FieldType is the declared payload type of a filterable field.
type FieldType string

const (
	FieldKeyword FieldType = "keyword"
	FieldText    FieldType = "text"
	FieldInteger FieldType = "integer"
	FieldFloat   FieldType = "float"
	FieldBool    FieldType = "bool"
)

// IsValid returns true if the field type is a recognized value.
func (ft FieldType) IsValid() bool {
	switch ft {
	case FieldKeyword, FieldText, FieldInteger, FieldFloat, FieldBool:
		return true
	default:
		return false
	}
}

// Schema maps payload field names to their declared types. Fields absent
// from the schema coerce as keywords.
type Schema map[string]FieldType

// identityKey is the reserved token key that selects points by id rather
// than by payload value.
const identityKey = "id"

// emptyLiteral is the token value that matches the empty string, which
// cannot itself appear in a whitespace-tokenized language.
const emptyLiteral = "(empty)"

// Parse tokenizes raw filter text into an ordered, deduplicated filter
// list. Tokens without a colon are ignored. Identity entries are grouped
// before payload entries; within each group first-seen order is kept.
// Parsing is idempotent: re-serializing the result and parsing again
// reproduces the same list.
func Parse(raw string, schema Schema) points.FilterList {
	var identity, payload points.FilterList

	for _, token := range strings.Fields(raw) {
		key, value, ok := strings.Cut(token, ":")
		if !ok || key == "" {
			continue
		}
		entry := parseToken(key, value, schema)
		if entry.IsIdentity {
			identity = identity.Add(entry)
		} else {
			payload = payload.Add(entry)
		}
	}

	filters := identity
	for _, entry := range payload {
		filters = filters.Add(entry)
	}
	return filters
}

func parseToken(key, value string, schema Schema) points.FilterEntry {
	if key == identityKey {
		// Numeric ids stay numeric so the has-id clause carries them in
		// the backend's native form.
		return points.FilterEntry{Key: key, Value: coerce(value, FieldInteger), IsIdentity: true}
	}
	if strings.EqualFold(value, "null") {
		return points.FilterEntry{Key: key, Value: nil}
	}
	if value == emptyLiteral {
		return points.FilterEntry{Key: key, Value: ""}
	}
	return points.FilterEntry{Key: key, Value: coerce(value, schema[key])}
}

// coerce converts the raw token value per the field's declared type,
// falling back to the raw string when numeric parsing fails.
func coerce(value string, fieldType FieldType) any {
	switch fieldType {
	case FieldBool:
		if strings.EqualFold(value, "true") {
			return true
		}
		if strings.EqualFold(value, "false") {
			return false
		}
		return value
	case FieldInteger:
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return n
		}
		return value
	case FieldFloat:
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
		return value
	default:
		return value
	}
}
