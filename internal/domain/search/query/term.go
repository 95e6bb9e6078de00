package query

import "slices"

// Term matches documents containing the exact term, without analysis.
type Term struct {
	common
	fielded
	fuzzy
	term string
}

// NewTerm creates a term query.
func NewTerm(term string) (*Term, error) {
	if term == "" {
		return nil, missing("term")
	}
	return &Term{term: term}, nil
}

// Term returns the term being matched.
func (q *Term) Term() string { return q.term }

// Validate implements Query.
func (q *Term) Validate() error { return q.validateFuzzy() }

// Encodable implements Query.
func (q *Term) Encodable() (map[string]any, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	out := map[string]any{"term": q.term}
	q.encodeCommon(out)
	q.encodeField(out)
	q.encodeFuzzy(out)
	return out, nil
}

// QueryString runs a query written in the engine's query string syntax.
type QueryString struct {
	common
	query string
}

// NewQueryString creates a query string query.
func NewQueryString(query string) (*QueryString, error) {
	if query == "" {
		return nil, missing("query")
	}
	return &QueryString{query: query}, nil
}

// Query returns the query string.
func (q *QueryString) Query() string { return q.query }

// Validate implements Query.
func (q *QueryString) Validate() error { return nil }

// Encodable implements Query.
func (q *QueryString) Encodable() (map[string]any, error) {
	out := map[string]any{"query": q.query}
	q.encodeCommon(out)
	return out, nil
}

// Wildcard matches terms against a pattern with * and ? wildcards.
type Wildcard struct {
	common
	fielded
	wildcard string
}

// NewWildcard creates a wildcard query.
func NewWildcard(wildcard string) (*Wildcard, error) {
	if wildcard == "" {
		return nil, missing("wildcard")
	}
	return &Wildcard{wildcard: wildcard}, nil
}

// Validate implements Query.
func (q *Wildcard) Validate() error { return nil }

// Encodable implements Query.
func (q *Wildcard) Encodable() (map[string]any, error) {
	out := map[string]any{"wildcard": q.wildcard}
	q.encodeCommon(out)
	q.encodeField(out)
	return out, nil
}

// DocID matches documents by identifier.
type DocID struct {
	common
	ids []string
}

// NewDocID creates a document id query. At least one id is required.
func NewDocID(ids ...string) (*DocID, error) {
	if len(ids) == 0 {
		return nil, missing("ids")
	}
	return &DocID{ids: slices.Clone(ids)}, nil
}

// AddIDs appends more ids.
func (q *DocID) AddIDs(ids ...string) { q.ids = append(q.ids, ids...) }

// IDs returns a copy of the ids.
func (q *DocID) IDs() []string { return slices.Clone(q.ids) }

// Validate implements Query.
func (q *DocID) Validate() error { return nil }

// Encodable implements Query.
func (q *DocID) Encodable() (map[string]any, error) {
	out := map[string]any{"ids": slices.Clone(q.ids)}
	q.encodeCommon(out)
	return out, nil
}

// MatchOperator combines the analyzed terms of a match query.
type MatchOperator string

// Match operators.
const (
	MatchOr  MatchOperator = "or"
	MatchAnd MatchOperator = "and"
)

// Match analyzes the input and matches the resulting terms.
type Match struct {
	common
	fielded
	fuzzy
	match    string
	analyzer string
	operator MatchOperator
}

// NewMatch creates a match query.
func NewMatch(match string) (*Match, error) {
	if match == "" {
		return nil, missing("match")
	}
	return &Match{match: match}, nil
}

// SetAnalyzer selects the analyzer applied to the input.
func (q *Match) SetAnalyzer(analyzer string) { q.analyzer = analyzer }

// SetOperator sets how analyzed terms are combined.
func (q *Match) SetOperator(op MatchOperator) { q.operator = op }

// Validate implements Query.
func (q *Match) Validate() error {
	switch q.operator {
	case "", MatchOr, MatchAnd:
	default:
		return invalid("match operator must be %q or %q, got %q", MatchOr, MatchAnd, q.operator)
	}
	return q.validateFuzzy()
}

// Encodable implements Query.
func (q *Match) Encodable() (map[string]any, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	out := map[string]any{"match": q.match}
	q.encodeCommon(out)
	q.encodeField(out)
	q.encodeFuzzy(out)
	if q.analyzer != "" {
		out["analyzer"] = q.analyzer
	}
	if q.operator != "" {
		out["operator"] = string(q.operator)
	}
	return out, nil
}

// MatchPhrase analyzes the input and matches the terms as a phrase.
type MatchPhrase struct {
	common
	fielded
	phrase   string
	analyzer string
}

// NewMatchPhrase creates a match phrase query.
func NewMatchPhrase(phrase string) (*MatchPhrase, error) {
	if phrase == "" {
		return nil, missing("match_phrase")
	}
	return &MatchPhrase{phrase: phrase}, nil
}

// SetAnalyzer selects the analyzer applied to the input.
func (q *MatchPhrase) SetAnalyzer(analyzer string) { q.analyzer = analyzer }

// Validate implements Query.
func (q *MatchPhrase) Validate() error { return nil }

// Encodable implements Query.
func (q *MatchPhrase) Encodable() (map[string]any, error) {
	out := map[string]any{"match_phrase": q.phrase}
	q.encodeCommon(out)
	q.encodeField(out)
	if q.analyzer != "" {
		out["analyzer"] = q.analyzer
	}
	return out, nil
}

// Phrase matches the exact sequence of terms, without analysis.
type Phrase struct {
	common
	fielded
	terms []string
}

// NewPhrase creates a phrase query. At least one term is required.
func NewPhrase(terms ...string) (*Phrase, error) {
	if len(terms) == 0 {
		return nil, missing("terms")
	}
	return &Phrase{terms: slices.Clone(terms)}, nil
}

// Validate implements Query.
func (q *Phrase) Validate() error { return nil }

// Encodable implements Query.
func (q *Phrase) Encodable() (map[string]any, error) {
	out := map[string]any{"terms": slices.Clone(q.terms)}
	q.encodeCommon(out)
	q.encodeField(out)
	return out, nil
}

// Prefix matches terms starting with the prefix.
type Prefix struct {
	common
	fielded
	prefix string
}

// NewPrefix creates a prefix query.
func NewPrefix(prefix string) (*Prefix, error) {
	if prefix == "" {
		return nil, missing("prefix")
	}
	return &Prefix{prefix: prefix}, nil
}

// Validate implements Query.
func (q *Prefix) Validate() error { return nil }

// Encodable implements Query.
func (q *Prefix) Encodable() (map[string]any, error) {
	out := map[string]any{"prefix": q.prefix}
	q.encodeCommon(out)
	q.encodeField(out)
	return out, nil
}

// Regex matches terms against a regular expression.
type Regex struct {
	common
	fielded
	pattern string
}

// NewRegex creates a regular expression query.
func NewRegex(pattern string) (*Regex, error) {
	if pattern == "" {
		return nil, missing("regexp")
	}
	return &Regex{pattern: pattern}, nil
}

// Validate implements Query.
func (q *Regex) Validate() error { return nil }

// Encodable implements Query.
func (q *Regex) Encodable() (map[string]any, error) {
	out := map[string]any{"regexp": q.pattern}
	q.encodeCommon(out)
	q.encodeField(out)
	return out, nil
}

// BooleanField matches documents whose boolean field has the given value.
type BooleanField struct {
	common
	fielded
	value bool
}

// NewBooleanField creates a boolean field query.
func NewBooleanField(value bool) *BooleanField {
	return &BooleanField{value: value}
}

// Validate implements Query.
func (q *BooleanField) Validate() error { return nil }

// Encodable implements Query.
func (q *BooleanField) Encodable() (map[string]any, error) {
	out := map[string]any{"bool": q.value}
	q.encodeCommon(out)
	q.encodeField(out)
	return out, nil
}
