// Package query models full-text search query nodes.
//
// Every node enforces its mandatory fields in its constructor and returns
// ErrMissingRequiredField when they are absent. Invariants that can be
// satisfied incrementally after construction (range bounds, compound
// children) are checked by Validate, which Encodable always runs first.
package query

import (
	"encoding/json"
	"fmt"
)

// Query is a node of a search query tree.
type Query interface {
	// Validate checks the invariants deferred to encode time.
	Validate() error
	// Encodable validates the node and returns its JSON-ready form.
	// It never mutates the node.
	Encodable() (map[string]any, error)
}

// Marshal validates q and returns its JSON encoding.
func Marshal(q Query) ([]byte, error) {
	enc, err := q.Encodable()
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(enc)
	if err != nil {
		return nil, fmt.Errorf("marshal query: %w", err)
	}
	return data, nil
}

// common holds the fields every node carries.
type common struct {
	boost *float64
}

// SetBoost sets the relative weight of the node in scoring.
func (c *common) SetBoost(boost float64) { c.boost = &boost }

// Boost returns the boost and whether it was set.
func (c *common) Boost() (float64, bool) {
	if c.boost == nil {
		return 0, false
	}
	return *c.boost, true
}

func (c *common) encodeCommon(out map[string]any) {
	if c.boost != nil {
		out["boost"] = *c.boost
	}
}

// fielded holds the optional target field of a node.
type fielded struct {
	field string
}

// SetField restricts the node to a single indexed field.
func (f *fielded) SetField(field string) { f.field = field }

// Field returns the target field ("" means the default field).
func (f *fielded) Field() string { return f.field }

func (f *fielded) encodeField(out map[string]any) {
	if f.field != "" {
		out["field"] = f.field
	}
}

// fuzzy holds the fuzzy matching knobs shared by term and match nodes.
type fuzzy struct {
	fuzziness    *int
	prefixLength *int
}

// SetFuzziness sets the maximum edit distance for matching.
func (f *fuzzy) SetFuzziness(n int) { f.fuzziness = &n }

// SetPrefixLength sets the number of leading characters that must match exactly.
func (f *fuzzy) SetPrefixLength(n int) { f.prefixLength = &n }

func (f *fuzzy) validateFuzzy() error {
	if f.fuzziness != nil && *f.fuzziness < 0 {
		return invalid("fuzziness must be >= 0, got %d", *f.fuzziness)
	}
	if f.prefixLength != nil && *f.prefixLength < 0 {
		return invalid("prefix_length must be >= 0, got %d", *f.prefixLength)
	}
	return nil
}

func (f *fuzzy) encodeFuzzy(out map[string]any) {
	if f.fuzziness != nil {
		out["fuzziness"] = *f.fuzziness
	}
	if f.prefixLength != nil {
		out["prefix_length"] = *f.prefixLength
	}
}

var (
	_ Query = (*Term)(nil)
	_ Query = (*QueryString)(nil)
	_ Query = (*Wildcard)(nil)
	_ Query = (*DocID)(nil)
	_ Query = (*Match)(nil)
	_ Query = (*MatchPhrase)(nil)
	_ Query = (*Phrase)(nil)
	_ Query = (*Prefix)(nil)
	_ Query = (*Regex)(nil)
	_ Query = (*BooleanField)(nil)
	_ Query = (*GeoDistance)(nil)
	_ Query = (*GeoBoundingBox)(nil)
	_ Query = (*GeoPolygon)(nil)
	_ Query = (*NumericRange)(nil)
	_ Query = (*DateRange)(nil)
	_ Query = (*TermRange)(nil)
	_ Query = (*Conjunction)(nil)
	_ Query = (*Disjunction)(nil)
	_ Query = (*Boolean)(nil)
	_ Query = (*Raw)(nil)
	_ Query = (*MatchAll)(nil)
	_ Query = (*MatchNone)(nil)
)
