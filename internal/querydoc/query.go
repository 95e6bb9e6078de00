// Package querydoc decodes search documents, the JSON or YAML form of a
// search request, into query nodes, a vector search and options.
package querydoc

import (
	"fmt"

	"github.com/kailas-cloud/fts/internal/domain"
	"github.com/kailas-cloud/fts/internal/domain/search/geo"
	"github.com/kailas-cloud/fts/internal/domain/search/query"
)

type booster interface{ SetBoost(float64) }

type fieldSetter interface{ SetField(string) }

type fuzzySetter interface {
	SetFuzziness(int)
	SetPrefixLength(int)
}

// ParseQuery decodes the FTS JSON query form into a typed node. The kind is
// detected from the keys present; anything unrecognized becomes a Raw node
// carrying the payload unchanged.
func ParseQuery(m map[string]any) (query.Query, error) {
	if len(m) == 0 {
		return nil, domain.NewMissingField("query")
	}
	q, err := parseNode(m)
	if err != nil {
		return nil, err
	}
	if err = applyCommon(q, m); err != nil {
		return nil, err
	}
	return q, nil
}

//nolint:gocyclo // one case per query kind
func parseNode(m map[string]any) (query.Query, error) {
	switch {
	case has(m, "match_all"):
		return query.NewMatchAll(), nil
	case has(m, "match_none"):
		return query.NewMatchNone(), nil
	case has(m, "term"):
		return parseTerm(m)
	case has(m, "match"):
		return parseMatch(m)
	case has(m, "match_phrase"):
		return parseMatchPhrase(m)
	case has(m, "terms"):
		terms, err := stringList(m, "terms")
		if err != nil {
			return nil, err
		}
		return query.NewPhrase(terms...)
	case has(m, "prefix"):
		return withString(m, "prefix", query.NewPrefix)
	case has(m, "regexp"):
		return withString(m, "regexp", query.NewRegex)
	case has(m, "wildcard"):
		return withString(m, "wildcard", query.NewWildcard)
	case has(m, "query"):
		return withString(m, "query", query.NewQueryString)
	case has(m, "ids"):
		ids, err := stringList(m, "ids")
		if err != nil {
			return nil, err
		}
		return query.NewDocID(ids...)
	case has(m, "bool"):
		b, ok := m["bool"].(bool)
		if !ok {
			return nil, domain.InvalidArgument("bool must be a boolean, got %T", m["bool"])
		}
		return query.NewBooleanField(b), nil
	case has(m, "conjuncts"):
		return parseConjunction(m["conjuncts"])
	case has(m, "disjuncts"):
		return parseDisjunction(m, "disjuncts", "min")
	case has(m, "must"), has(m, "should"), has(m, "must_not"):
		return parseBoolean(m)
	case has(m, "distance") && has(m, "location"):
		return parseGeoDistance(m)
	case has(m, "top_left") && has(m, "bottom_right"):
		return parseBoundingBox(m)
	case has(m, "polygon_points"):
		return parsePolygon(m)
	case has(m, "start"), has(m, "end"):
		return parseDateRange(m)
	case has(m, "min"), has(m, "max"):
		return parseRange(m)
	default:
		return query.NewRaw(m)
	}
}

func has(m map[string]any, key string) bool {
	_, ok := m[key]
	return ok
}

func applyCommon(q query.Query, m map[string]any) error {
	if v, ok := m["boost"]; ok {
		b, isNum := toFloat(v)
		if !isNum {
			return domain.InvalidArgument("boost must be a number, got %T", v)
		}
		if s, can := q.(booster); can {
			s.SetBoost(b)
		}
	}
	if v, ok := m["field"]; ok {
		f, isStr := v.(string)
		if !isStr {
			return domain.InvalidArgument("field must be a string, got %T", v)
		}
		if s, can := q.(fieldSetter); can {
			s.SetField(f)
		}
	}
	if s, can := q.(fuzzySetter); can {
		if n, ok, err := intValue(m, "fuzziness"); err != nil {
			return err
		} else if ok {
			s.SetFuzziness(n)
		}
		if n, ok, err := intValue(m, "prefix_length"); err != nil {
			return err
		} else if ok {
			s.SetPrefixLength(n)
		}
	}
	return nil
}

func withString[T query.Query](m map[string]any, key string, ctor func(string) (T, error)) (query.Query, error) {
	s, err := stringValue(m, key)
	if err != nil {
		return nil, err
	}
	return ctor(s)
}

func parseTerm(m map[string]any) (query.Query, error) {
	return withString(m, "term", query.NewTerm)
}

func parseMatch(m map[string]any) (query.Query, error) {
	s, err := stringValue(m, "match")
	if err != nil {
		return nil, err
	}
	q, err := query.NewMatch(s)
	if err != nil {
		return nil, err
	}
	if a, ok := m["analyzer"].(string); ok {
		q.SetAnalyzer(a)
	}
	if op, ok := m["operator"].(string); ok {
		q.SetOperator(query.MatchOperator(op))
	}
	return q, nil
}

func parseMatchPhrase(m map[string]any) (query.Query, error) {
	s, err := stringValue(m, "match_phrase")
	if err != nil {
		return nil, err
	}
	q, err := query.NewMatchPhrase(s)
	if err != nil {
		return nil, err
	}
	if a, ok := m["analyzer"].(string); ok {
		q.SetAnalyzer(a)
	}
	return q, nil
}

func parseChildren(v any, key string) ([]query.Query, error) {
	list, ok := v.([]any)
	if !ok {
		return nil, domain.InvalidArgument("%s must be a list of queries, got %T", key, v)
	}
	children := make([]query.Query, 0, len(list))
	for i, item := range list {
		cm, ok := item.(map[string]any)
		if !ok {
			return nil, domain.InvalidArgument("%s[%d] must be an object, got %T", key, i, item)
		}
		child, err := ParseQuery(cm)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", key, i, err)
		}
		children = append(children, child)
	}
	return children, nil
}

func parseConjunction(v any) (*query.Conjunction, error) {
	if m, ok := v.(map[string]any); ok {
		v = m["conjuncts"]
	}
	children, err := parseChildren(v, "conjuncts")
	if err != nil {
		return nil, err
	}
	return query.NewConjunction(children...), nil
}

func parseDisjunction(m map[string]any, key, minKey string) (*query.Disjunction, error) {
	children, err := parseChildren(m[key], key)
	if err != nil {
		return nil, err
	}
	d := query.NewDisjunction(children...)
	n, ok, err := intValue(m, minKey)
	if err != nil {
		return nil, err
	}
	if ok {
		if err = d.SetMin(n); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// parseBoolean accepts clauses written either as nested compound objects
// ({"must": {"conjuncts": [...]}}) or as bare lists of children.
func parseBoolean(m map[string]any) (*query.Boolean, error) {
	b := query.NewBoolean()
	if v, ok := m["must"]; ok {
		c, err := parseConjunction(v)
		if err != nil {
			return nil, fmt.Errorf("must: %w", err)
		}
		b.SetMust(c)
	}
	for _, key := range []string{"should", "must_not"} {
		v, ok := m[key]
		if !ok {
			continue
		}
		clause, isMap := v.(map[string]any)
		if !isMap {
			clause = map[string]any{"disjuncts": v}
		}
		d, err := parseDisjunction(clause, "disjuncts", "min")
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		if key == "should" {
			b.SetShould(d)
		} else {
			b.SetMustNot(d)
		}
	}
	return b, nil
}

func parseGeoDistance(m map[string]any) (query.Query, error) {
	loc, err := location(m["location"])
	if err != nil {
		return nil, fmt.Errorf("location: %w", err)
	}
	dist, err := stringValue(m, "distance")
	if err != nil {
		return nil, err
	}
	return query.NewGeoDistance(loc, dist)
}

func parseBoundingBox(m map[string]any) (query.Query, error) {
	tl, err := location(m["top_left"])
	if err != nil {
		return nil, fmt.Errorf("top_left: %w", err)
	}
	br, err := location(m["bottom_right"])
	if err != nil {
		return nil, fmt.Errorf("bottom_right: %w", err)
	}
	return query.NewGeoBoundingBox(tl, br)
}

func parsePolygon(m map[string]any) (query.Query, error) {
	list, ok := m["polygon_points"].([]any)
	if !ok {
		return nil, domain.InvalidArgument("polygon_points must be a list, got %T", m["polygon_points"])
	}
	points := make([]geo.Location, 0, len(list))
	for i, p := range list {
		loc, err := location(p)
		if err != nil {
			return nil, fmt.Errorf("polygon_points[%d]: %w", i, err)
		}
		points = append(points, *loc)
	}
	return query.NewGeoPolygon(points)
}

func parseDateRange(m map[string]any) (query.Query, error) {
	q := query.NewDateRange()
	if v, ok := m["start"]; ok {
		s, isStr := v.(string)
		if !isStr {
			return nil, domain.InvalidArgument("start must be a string, got %T", v)
		}
		q.SetStart(s)
	}
	if v, ok := m["end"]; ok {
		s, isStr := v.(string)
		if !isStr {
			return nil, domain.InvalidArgument("end must be a string, got %T", v)
		}
		q.SetEnd(s)
	}
	if b, ok := m["inclusive_start"].(bool); ok {
		q.SetInclusiveStart(b)
	}
	if b, ok := m["inclusive_end"].(bool); ok {
		q.SetInclusiveEnd(b)
	}
	if p, ok := m["datetime_parser"].(string); ok {
		q.SetDateTimeParser(p)
	}
	return q, nil
}

// parseRange builds a numeric range when the bounds are numbers and a term
// range when they are strings.
func parseRange(m map[string]any) (query.Query, error) {
	_, minStr := m["min"].(string)
	_, maxStr := m["max"].(string)
	if minStr || maxStr {
		q := query.NewTermRange()
		lower, err := stringPtr(m, "min")
		if err != nil {
			return nil, err
		}
		upper, err := stringPtr(m, "max")
		if err != nil {
			return nil, err
		}
		if lower != nil {
			q.SetMin(*lower)
		}
		if upper != nil {
			q.SetMax(*upper)
		}
		setInclusive(m, q.SetInclusiveMin, q.SetInclusiveMax)
		return q, nil
	}

	q := query.NewNumericRange()
	for _, key := range []string{"min", "max"} {
		v, ok := m[key]
		if !ok || v == nil {
			continue
		}
		f, isNum := toFloat(v)
		if !isNum {
			return nil, domain.InvalidArgument("%s must be a number or a string, got %T", key, v)
		}
		if key == "min" {
			q.SetMin(f)
		} else {
			q.SetMax(f)
		}
	}
	setInclusive(m, q.SetInclusiveMin, q.SetInclusiveMax)
	return q, nil
}

func setInclusive(m map[string]any, setMin, setMax func(bool)) {
	if b, ok := m["inclusive_min"].(bool); ok {
		setMin(b)
	}
	if b, ok := m["inclusive_max"].(bool); ok {
		setMax(b)
	}
}
