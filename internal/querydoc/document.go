package querydoc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"math"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/fts/internal/domain"
	"github.com/kailas-cloud/fts/internal/domain/search/consistency"
	"github.com/kailas-cloud/fts/internal/domain/search/facet"
	"github.com/kailas-cloud/fts/internal/domain/search/options"
	"github.com/kailas-cloud/fts/internal/domain/search/query"
	"github.com/kailas-cloud/fts/internal/domain/search/request"
	"github.com/kailas-cloud/fts/internal/domain/search/sortspec"
	"github.com/kailas-cloud/fts/internal/domain/search/vector"
)

// Document keys with a dedicated meaning. Every other key is an option.
const (
	KeyIndex                  = "index"
	KeyQuery                  = "query"
	KeyVectorSearch           = "vector_search"
	KeyVectorQueryCombination = "vector_query_combination"
	KeyFacets                 = "facets"
	KeySort                   = "sort"
	KeyOptions                = "options"
	KeyHighlight              = "highlight"
)

// Embedder turns vector query text into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// VectorQuery is one entry of a document's vector_search list. Exactly one
// of Vector, Base64 and Text is set.
type VectorQuery struct {
	Field  string
	Vector []float32
	Base64 string
	Text   string
	K      int
	Boost  *float64
}

// Document is a decoded search document.
type Document struct {
	Index       string
	Query       query.Query
	Vectors     []VectorQuery
	Combination vector.Combination
	Options     []options.Option
}

// Decode parses a JSON or YAML search document. Input whose first non-blank
// byte is '{' is read as JSON. JSON integers keep their full 64-bit range.
func Decode(data []byte) (*Document, error) {
	var m map[string]any
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.UseNumber()
		if err := dec.Decode(&m); err != nil {
			return nil, domain.InvalidArgument("decode search document: %v", err)
		}
		if _, err := dec.Token(); !errors.Is(err, io.EOF) {
			return nil, domain.InvalidArgument("decode search document: trailing data after object")
		}
		m, _ = normalizeNumbers(m).(map[string]any)
	} else if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, domain.InvalidArgument("decode search document: %v", err)
	}
	if m == nil {
		return nil, domain.NewMissingField("query")
	}
	return FromMap(m)
}

// FromMap decodes a search document from its generic form.
func FromMap(m map[string]any) (*Document, error) {
	doc := &Document{}

	if v, ok := m[KeyIndex]; ok {
		s, isStr := v.(string)
		if !isStr {
			return nil, domain.InvalidArgument("index must be a string, got %T", v)
		}
		doc.Index = s
	}

	if v, ok := m[KeyQuery]; ok && v != nil {
		qm, isMap := v.(map[string]any)
		if !isMap {
			return nil, domain.InvalidArgument("query must be an object, got %T", v)
		}
		q, err := ParseQuery(qm)
		if err != nil {
			return nil, fmt.Errorf("query: %w", err)
		}
		doc.Query = q
	}

	if v, ok := m[KeyVectorSearch]; ok && v != nil {
		vqs, err := parseVectorQueries(v)
		if err != nil {
			return nil, fmt.Errorf("vector_search: %w", err)
		}
		doc.Vectors = vqs
	}

	if v, ok := m[KeyVectorQueryCombination]; ok {
		s, isStr := v.(string)
		if !isStr {
			return nil, domain.InvalidArgument("vector_query_combination must be a string, got %T", v)
		}
		c, err := vector.ParseCombination(s)
		if err != nil {
			return nil, err
		}
		doc.Combination = c
	}

	opts, err := parseOptions(m)
	if err != nil {
		return nil, err
	}
	doc.Options = opts
	return doc, nil
}

// Request assembles the builder input. Text vector queries are embedded
// with emb, which may be nil when none are present.
func (d *Document) Request(ctx context.Context, emb Embedder) (*request.Request, error) {
	if len(d.Vectors) == 0 {
		return request.FromQuery(d.Query), nil
	}
	queries := make([]*vector.Query, 0, len(d.Vectors))
	for i, vq := range d.Vectors {
		q, err := vq.build(ctx, emb)
		if err != nil {
			return nil, fmt.Errorf("vector query %d: %w", i, err)
		}
		queries = append(queries, q)
	}
	search, err := vector.NewSearch(queries...)
	if err != nil {
		return nil, err
	}
	if d.Combination != "" {
		if err = search.SetCombination(d.Combination); err != nil {
			return nil, err
		}
	}
	return request.New(d.Query, search), nil
}

func (vq VectorQuery) build(ctx context.Context, emb Embedder) (*vector.Query, error) {
	var (
		q   *vector.Query
		err error
	)
	switch {
	case vq.Text != "":
		if emb == nil {
			return nil, domain.InvalidArgument("text vector query on %q needs an embedding provider", vq.Field)
		}
		res, embErr := emb.Embed(ctx, vq.Text)
		if embErr != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingProviderError, embErr)
		}
		domain.UsageFromContext(ctx).Record(res)
		q, err = vector.NewQuery(vq.Field, res.Embedding)
	case vq.Base64 != "":
		q, err = vector.NewBase64Query(vq.Field, vq.Base64)
	default:
		q, err = vector.NewQuery(vq.Field, vq.Vector)
	}
	if err != nil {
		return nil, err
	}
	if vq.K != 0 {
		if err = q.SetNumCandidates(vq.K); err != nil {
			return nil, err
		}
	}
	if vq.Boost != nil {
		q.SetBoost(*vq.Boost)
	}
	return q, nil
}

func parseVectorQueries(v any) ([]VectorQuery, error) {
	list, ok := v.([]any)
	if !ok {
		if m, isMap := v.(map[string]any); isMap {
			list = []any{m}
		} else {
			return nil, domain.InvalidArgument("must be a list of vector queries, got %T", v)
		}
	}
	out := make([]VectorQuery, 0, len(list))
	for i, item := range list {
		m, isMap := item.(map[string]any)
		if !isMap {
			return nil, domain.InvalidArgument("entry %d must be an object, got %T", i, item)
		}
		vq, err := parseVectorQuery(m)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		out = append(out, vq)
	}
	return out, nil
}

func parseVectorQuery(m map[string]any) (VectorQuery, error) {
	var vq VectorQuery
	vq.Field, _ = m["field"].(string)
	vq.Base64, _ = m["vector_base64"].(string)
	vq.Text, _ = m["text"].(string)

	if raw, ok := m["vector"]; ok {
		list, isList := raw.([]any)
		if !isList {
			return vq, domain.InvalidArgument("vector must be a list of numbers, got %T", raw)
		}
		vq.Vector = make([]float32, len(list))
		for i, x := range list {
			f, isNum := toFloat(x)
			if !isNum {
				return vq, domain.InvalidArgument("vector[%d] must be a number, got %T", i, x)
			}
			vq.Vector[i] = float32(f)
		}
	}

	set := 0
	for _, present := range []bool{vq.Vector != nil, vq.Base64 != "", vq.Text != ""} {
		if present {
			set++
		}
	}
	if set != 1 {
		return vq, domain.InvalidArgument("exactly one of vector, vector_base64 and text is required")
	}

	k, ok, err := intValue(m, "k")
	if err != nil {
		return vq, err
	}
	if ok {
		if k < 1 {
			return vq, domain.InvalidArgument("k must be >= 1, got %d", k)
		}
		vq.K = k
	}
	if raw, ok := m["boost"]; ok {
		b, isNum := toFloat(raw)
		if !isNum {
			return vq, domain.InvalidArgument("boost must be a number, got %T", raw)
		}
		vq.Boost = &b
	}
	return vq, nil
}

// parseOptions turns the remaining keys into options. Keys of a nested
// "options" object are applied first so that top-level keys win.
func parseOptions(m map[string]any) ([]options.Option, error) {
	var opts []options.Option

	if v, ok := m[KeyOptions]; ok && v != nil {
		nested, isMap := v.(map[string]any)
		if !isMap {
			return nil, domain.InvalidArgument("options must be an object, got %T", v)
		}
		more, err := valueOptions(nested)
		if err != nil {
			return nil, fmt.Errorf("options: %w", err)
		}
		opts = append(opts, more...)
	}

	nested, _ := m[KeyOptions].(map[string]any)
	scan := has(m, options.KeyScanConsistency) || has(nested, options.KeyScanConsistency)
	atPlus := has(m, options.KeyConsistentWith) || has(nested, options.KeyConsistentWith)
	if scan && atPlus {
		return nil, domain.InvalidArgument("scan_consistency and consistent_with are mutually exclusive")
	}

	top := make(map[string]any, len(m))
	for k, v := range m {
		switch k {
		case KeyIndex, KeyQuery, KeyVectorSearch, KeyVectorQueryCombination, KeyOptions:
		default:
			top[k] = v
		}
	}
	more, err := valueOptions(top)
	if err != nil {
		return nil, err
	}
	return append(opts, more...), nil
}

func valueOptions(m map[string]any) ([]options.Option, error) {
	var opts []options.Option
	for _, key := range slices.Sorted(maps.Keys(m)) {
		v := m[key]
		switch key {
		case KeyFacets:
			more, err := parseFacets(v)
			if err != nil {
				return nil, fmt.Errorf("facets: %w", err)
			}
			opts = append(opts, more...)
		case KeySort:
			specs, err := parseSort(v)
			if err != nil {
				return nil, fmt.Errorf("sort: %w", err)
			}
			opts = append(opts, options.WithSort(specs...))
		case KeyHighlight:
			more, err := parseHighlight(v)
			if err != nil {
				return nil, fmt.Errorf("highlight: %w", err)
			}
			opts = append(opts, more...)
		case options.KeyConsistentWith:
			state, err := parseMutationState(v)
			if err != nil {
				return nil, fmt.Errorf("consistent_with: %w", err)
			}
			opts = append(opts, options.WithConsistentWith(state))
		default:
			opts = append(opts, options.WithValue(key, v))
		}
	}
	return opts, nil
}

func parseHighlight(v any) ([]options.Option, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, domain.InvalidArgument("must be an object, got %T", v)
	}
	var opts []options.Option
	if style, has := m["style"]; has {
		opts = append(opts, options.WithValue(options.KeyHighlightStyle, style))
	}
	if fields, has := m["fields"]; has {
		opts = append(opts, options.WithValue(options.KeyHighlightFields, fields))
	}
	return opts, nil
}

// parseFacets decodes {name: {field, size, numeric_ranges | date_ranges}}.
// The facet kind follows from the ranges present.
func parseFacets(v any) ([]options.Option, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, domain.InvalidArgument("must be an object, got %T", v)
	}
	opts := make([]options.Option, 0, len(m))
	for _, name := range slices.Sorted(maps.Keys(m)) {
		fm, isMap := m[name].(map[string]any)
		if !isMap {
			return nil, domain.InvalidArgument("facet %q must be an object, got %T", name, m[name])
		}
		f, err := parseFacet(fm)
		if err != nil {
			return nil, fmt.Errorf("facet %q: %w", name, err)
		}
		opts = append(opts, options.WithFacet(name, f))
	}
	return opts, nil
}

func parseFacet(m map[string]any) (facet.Facet, error) {
	field, _ := m["field"].(string)
	size, hasSize, err := intValue(m, "size")
	if err != nil {
		return nil, err
	}
	if !hasSize {
		if size, hasSize, err = intValue(m, "limit"); err != nil {
			return nil, err
		}
	}

	switch {
	case has(m, "numeric_ranges"):
		f, err := facet.NewNumeric(field)
		if err != nil {
			return nil, err
		}
		ranges, err := objectList(m, "numeric_ranges")
		if err != nil {
			return nil, err
		}
		for i, r := range ranges {
			name, _ := r["name"].(string)
			lower, err := floatPtr(r, "min")
			if err != nil {
				return nil, fmt.Errorf("numeric_ranges[%d]: %w", i, err)
			}
			upper, err := floatPtr(r, "max")
			if err != nil {
				return nil, fmt.Errorf("numeric_ranges[%d]: %w", i, err)
			}
			if err = f.AddRange(name, lower, upper); err != nil {
				return nil, err
			}
		}
		if hasSize {
			f.SetLimit(size)
		}
		return f, nil
	case has(m, "date_ranges"):
		f, err := facet.NewDate(field)
		if err != nil {
			return nil, err
		}
		ranges, err := objectList(m, "date_ranges")
		if err != nil {
			return nil, err
		}
		for i, r := range ranges {
			name, _ := r["name"].(string)
			start, err := stringPtr(r, "start")
			if err != nil {
				return nil, fmt.Errorf("date_ranges[%d]: %w", i, err)
			}
			end, err := stringPtr(r, "end")
			if err != nil {
				return nil, fmt.Errorf("date_ranges[%d]: %w", i, err)
			}
			if err = f.AddRange(name, start, end); err != nil {
				return nil, err
			}
		}
		if hasSize {
			f.SetLimit(size)
		}
		return f, nil
	default:
		f, err := facet.NewTerm(field)
		if err != nil {
			return nil, err
		}
		if hasSize {
			f.SetLimit(size)
		}
		return f, nil
	}
}

// parseSort accepts a shorthand string, a sort object, or a list of both.
func parseSort(v any) ([]sortspec.Spec, error) {
	list, ok := v.([]any)
	if !ok {
		list = []any{v}
	}
	specs := make([]sortspec.Spec, 0, len(list))
	for i, item := range list {
		switch s := item.(type) {
		case string:
			specs = append(specs, sortspec.Shorthand(s))
		case map[string]any:
			spec, err := sortspec.FromMap(s)
			if err != nil {
				return nil, fmt.Errorf("entry %d: %w", i, err)
			}
			specs = append(specs, spec)
		default:
			return nil, domain.InvalidArgument("entry %d must be a string or an object, got %T", i, item)
		}
	}
	return specs, nil
}

func parseMutationState(v any) (*consistency.State, error) {
	list, ok := v.([]any)
	if !ok {
		return nil, domain.InvalidArgument("must be a list of mutation tokens, got %T", v)
	}
	state := consistency.NewState()
	for i, item := range list {
		m, isMap := item.(map[string]any)
		if !isMap {
			return nil, domain.InvalidArgument("token %d must be an object, got %T", i, item)
		}
		vbID, _, err := uintValue(m, "vbucket_id")
		if err != nil {
			return nil, fmt.Errorf("token %d: %w", i, err)
		}
		if vbID > math.MaxUint16 {
			return nil, domain.InvalidArgument("token %d: vbucket_id out of range: %d", i, vbID)
		}
		vbUUID, _, err := uintValue(m, "vbucket_uuid")
		if err != nil {
			return nil, fmt.Errorf("token %d: %w", i, err)
		}
		seq, _, err := uintValue(m, "sequence_number")
		if err != nil {
			return nil, fmt.Errorf("token %d: %w", i, err)
		}
		bucket, _ := m["bucket_name"].(string)
		state.Add(consistency.MutationToken{
			BucketName:     bucket,
			VBucketID:      uint16(vbID),
			VBucketUUID:    vbUUID,
			SequenceNumber: seq,
		})
	}
	return state, nil
}

func objectList(m map[string]any, key string) ([]map[string]any, error) {
	list, ok := m[key].([]any)
	if !ok {
		return nil, domain.InvalidArgument("%s must be a list, got %T", key, m[key])
	}
	out := make([]map[string]any, 0, len(list))
	for i, item := range list {
		om, isMap := item.(map[string]any)
		if !isMap {
			return nil, domain.InvalidArgument("%s[%d] must be an object, got %T", key, i, item)
		}
		out = append(out, om)
	}
	return out, nil
}

// floatPtr reads an optional numeric bound. A present bound of another type
// is an error.
func floatPtr(m map[string]any, key string) (*float64, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, nil
	}
	f, isNum := toFloat(v)
	if !isNum {
		return nil, domain.InvalidArgument("%s must be a number, got %T", key, v)
	}
	return &f, nil
}

// stringPtr reads an optional string bound. A present bound of another type
// is an error.
func stringPtr(m map[string]any, key string) (*string, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, nil
	}
	str, isStr := v.(string)
	if !isStr {
		return nil, domain.InvalidArgument("%s must be a string, got %T", key, v)
	}
	return &str, nil
}
