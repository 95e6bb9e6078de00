// Package wire converts search descriptors into the request body handed to
// the execution engine, and maps the engine's row and metadata payloads
// back into typed results.
//
// The body is a flat map. Nested structures (query, vector_search, facets,
// sort_specs, raw option values) are JSON text inside it, so the body is
// encoded twice on its way to the engine.
package wire

import (
	"encoding/json"
	"fmt"
	"maps"

	"github.com/kailas-cloud/fts/internal/domain/search/consistency"
	"github.com/kailas-cloud/fts/internal/domain/search/request"
	"github.com/kailas-cloud/fts/internal/domain/search/sortspec"
)

// Top-level body keys.
const (
	KeyIndexName              = "index_name"
	KeyQuery                  = "query"
	KeyVectorSearch           = "vector_search"
	KeyVectorQueryCombination = "vector_query_combination"
	KeyFacets                 = "facets"
	KeySortSpecs              = "sort_specs"
	KeyClientContextID        = "client_context_id"
	KeyScanConsistency        = "scan_consistency"
	KeyMutationState          = "mutation_state"
)

// Body is the encoded request.
type Body map[string]any

// Encode validates d and produces its wire body. d is not modified, and
// encoding the same descriptor twice yields equal bodies.
func Encode(d *request.Descriptor) (Body, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	flat, err := d.Options().Flat()
	if err != nil {
		return nil, fmt.Errorf("encode options: %w", err)
	}
	body := Body(flat)
	body[KeyIndexName] = d.Index()

	q, err := d.Query().Encodable()
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}
	if body[KeyQuery], err = jsonText(q); err != nil {
		return nil, err
	}

	if vs := d.VectorSearch(); vs != nil && vs.Len() > 0 {
		enc, err := vs.Encodable()
		if err != nil {
			return nil, fmt.Errorf("encode vector search: %w", err)
		}
		if body[KeyVectorSearch], err = jsonText(enc); err != nil {
			return nil, err
		}
		if c := vs.Combination(); c != "" {
			body[KeyVectorQueryCombination] = string(c)
		}
	}

	if set := d.Facets(); set.Len() > 0 {
		facets := make(map[string]string, set.Len())
		for name, enc := range set.Encodable() {
			if facets[name], err = jsonText(enc); err != nil {
				return nil, err
			}
		}
		body[KeyFacets] = facets
	}

	if specs := d.Sort(); len(specs) > 0 {
		enc, err := sortspec.Encode(specs)
		if err != nil {
			return nil, fmt.Errorf("encode sort: %w", err)
		}
		sorts := make([]string, len(enc))
		for i, s := range enc {
			if sorts[i], err = jsonText(s); err != nil {
				return nil, err
			}
		}
		body[KeySortSpecs] = sorts
	}
	return body, nil
}

func jsonText(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal wire member: %w", err)
	}
	return string(data), nil
}

// Marshal encodes the body as JSON. Keys are sorted, so equal bodies
// marshal to identical bytes.
func (b Body) Marshal() ([]byte, error) {
	data, err := json.Marshal(map[string]any(b))
	if err != nil {
		return nil, fmt.Errorf("marshal body: %w", err)
	}
	return data, nil
}

// Clone returns a shallow copy of the body.
func (b Body) Clone() Body { return maps.Clone(b) }

// Index returns the index name.
func (b Body) Index() string {
	s, _ := b[KeyIndexName].(string)
	return s
}

// ClientContextID returns the client context id, "" when absent.
func (b Body) ClientContextID() string {
	s, _ := b[KeyClientContextID].(string)
	return s
}

// Bounded reports whether the request asks the index to catch up with
// writes before answering.
func (b Body) Bounded() bool {
	if _, ok := b[KeyMutationState]; ok {
		return true
	}
	s, _ := b[KeyScanConsistency].(string)
	return s == string(consistency.RequestPlus)
}
