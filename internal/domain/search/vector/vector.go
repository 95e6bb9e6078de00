// Package vector models vector similarity queries sent alongside a search.
package vector

import (
	"encoding/base64"
	"fmt"
	"slices"

	"github.com/kailas-cloud/fts/internal/domain"
)

// DefaultNumCandidates is the number of nearest neighbours requested when k
// is not set.
const DefaultNumCandidates = 3

// Combination is how several vector queries are combined.
type Combination string

// Combinations.
const (
	And Combination = "and"
	Or  Combination = "or"
)

// ParseCombination parses "and" or "or".
func ParseCombination(s string) (Combination, error) {
	switch Combination(s) {
	case And, Or:
		return Combination(s), nil
	default:
		return "", domain.InvalidArgument("vector query combination must be %q or %q, got %q", And, Or, s)
	}
}

// Query is a k-nearest-neighbour query on a vector field.
type Query struct {
	field  string
	vector []float32
	b64    string
	k      int
	boost  *float64
}

// NewQuery creates a vector query from raw floats.
func NewQuery(field string, vec []float32) (*Query, error) {
	if field == "" {
		return nil, domain.NewMissingField("field")
	}
	if len(vec) == 0 {
		return nil, domain.NewMissingField("vector")
	}
	return &Query{field: field, vector: slices.Clone(vec), k: DefaultNumCandidates}, nil
}

// NewBase64Query creates a vector query from base64-encoded little-endian float32s.
func NewBase64Query(field, b64 string) (*Query, error) {
	if field == "" {
		return nil, domain.NewMissingField("field")
	}
	if b64 == "" {
		return nil, domain.NewMissingField("vector_base64")
	}
	return &Query{field: field, b64: b64, k: DefaultNumCandidates}, nil
}

// SetNumCandidates sets k. It must be at least 1.
func (q *Query) SetNumCandidates(k int) error {
	if k < 1 {
		return domain.InvalidArgument("vector query k must be >= 1, got %d", k)
	}
	q.k = k
	return nil
}

// SetBoost sets the weight of the query.
func (q *Query) SetBoost(boost float64) { q.boost = &boost }

// Field returns the vector field.
func (q *Query) Field() string { return q.field }

// Validate checks the base64 payload decodes to whole float32s.
func (q *Query) Validate() error {
	if q.b64 == "" {
		return nil
	}
	raw, err := base64.StdEncoding.DecodeString(q.b64)
	if err != nil {
		return domain.InvalidArgument("vector_base64: %v", err)
	}
	if len(raw) == 0 || len(raw)%4 != 0 {
		return domain.InvalidArgument("vector_base64 decodes to %d bytes, not a float32 vector", len(raw))
	}
	return nil
}

// Encodable returns the JSON-ready form.
func (q *Query) Encodable() (map[string]any, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	out := map[string]any{"field": q.field, "k": q.k}
	if q.b64 != "" {
		out["vector_base64"] = q.b64
	} else {
		out["vector"] = slices.Clone(q.vector)
	}
	if q.boost != nil {
		out["boost"] = *q.boost
	}
	return out, nil
}

// Search is a set of vector queries and how to combine them.
type Search struct {
	queries     []*Query
	combination Combination
}

// NewSearch creates a vector search. At least one query is required.
func NewSearch(queries ...*Query) (*Search, error) {
	if len(queries) == 0 {
		return nil, domain.NewMissingField("vector_queries")
	}
	for i, q := range queries {
		if q == nil {
			return nil, domain.InvalidArgument("vector query %d is nil", i)
		}
	}
	return &Search{queries: slices.Clone(queries)}, nil
}

// SetCombination sets how queries combine.
func (s *Search) SetCombination(c Combination) error {
	if _, err := ParseCombination(string(c)); err != nil {
		return err
	}
	s.combination = c
	return nil
}

// Combination returns the combination, "" when unset.
func (s *Search) Combination() Combination { return s.combination }

// Len returns the number of queries.
func (s *Search) Len() int { return len(s.queries) }

// Encodable returns the JSON-ready list of queries.
func (s *Search) Encodable() ([]map[string]any, error) {
	out := make([]map[string]any, len(s.queries))
	for i, q := range s.queries {
		enc, err := q.Encodable()
		if err != nil {
			return nil, fmt.Errorf("vector query %d: %w", i, err)
		}
		out[i] = enc
	}
	return out, nil
}
