// Package request builds the canonical descriptor of a search request from
// a query, a vector search and options.
package request

import (
	"fmt"
	"slices"

	"github.com/kailas-cloud/fts/internal/domain"
	"github.com/kailas-cloud/fts/internal/domain/search/consistency"
	"github.com/kailas-cloud/fts/internal/domain/search/facet"
	"github.com/kailas-cloud/fts/internal/domain/search/options"
	"github.com/kailas-cloud/fts/internal/domain/search/query"
	"github.com/kailas-cloud/fts/internal/domain/search/sortspec"
	"github.com/kailas-cloud/fts/internal/domain/search/vector"
)

// Request is a scalar query, a vector search, or both.
type Request struct {
	query  query.Query
	vector *vector.Search
}

// FromQuery wraps a bare query.
func FromQuery(q query.Query) *Request {
	return &Request{query: q}
}

// FromVector wraps a bare vector search.
func FromVector(v *vector.Search) *Request {
	return &Request{vector: v}
}

// New creates a request carrying both parts. Either may be nil.
func New(q query.Query, v *vector.Search) *Request {
	return &Request{query: q, vector: v}
}

// Query returns the scalar query part.
func (r *Request) Query() query.Query { return r.query }

// VectorSearch returns the vector search part.
func (r *Request) VectorSearch() *vector.Search { return r.vector }

// Descriptor is the resolved form of one search request. It is built once
// per call and consumed by the wire encoder.
type Descriptor struct {
	index  string
	query  query.Query
	vector *vector.Search
	opts   *options.Options
	err    error
}

// Build resolves base and overrides and assembles a descriptor. It fails
// only when index is empty or req carries neither a query nor a vector
// search. Errors in the query tree or the options are reported by
// Validate and by encoding.
func Build(index string, req *Request, base *options.Options, overrides ...options.Option) (*Descriptor, error) {
	if index == "" {
		return nil, domain.NewMissingField("index")
	}
	if req == nil || (req.query == nil && req.vector == nil) {
		return nil, domain.NewMissingField("query")
	}

	d := &Descriptor{index: index, query: req.query, vector: req.vector}
	if d.query == nil {
		d.query = query.NewMatchNone()
	}

	opts, err := options.Resolve(base, overrides...)
	if err != nil {
		d.err = fmt.Errorf("resolve options: %w", err)
		d.opts = &options.Options{}
		return d, nil
	}
	if _, set := opts.Metrics(); !set {
		opts.SetMetrics(true)
	}
	d.opts = opts
	return d, nil
}

// Validate reports the first error found in the options, the query tree
// or the vector search.
func (d *Descriptor) Validate() error {
	if d.err != nil {
		return d.err
	}
	if err := d.query.Validate(); err != nil {
		return fmt.Errorf("query: %w", err)
	}
	if d.vector != nil {
		if _, err := d.vector.Encodable(); err != nil {
			return fmt.Errorf("vector search: %w", err)
		}
	}
	for i, s := range d.opts.Sort() {
		if _, err := s.Encodable(); err != nil {
			return fmt.Errorf("sort %d: %w", i, err)
		}
	}
	return nil
}

// Index returns the index name.
func (d *Descriptor) Index() string { return d.index }

// Query returns the scalar query, MatchNone when only a vector search was given.
func (d *Descriptor) Query() query.Query { return d.query }

// VectorSearch returns the vector search, nil when absent.
func (d *Descriptor) VectorSearch() *vector.Search { return d.vector }

// Options returns the resolved options.
func (d *Descriptor) Options() *options.Options { return d.opts }

// Facets returns the facets to compute, nil when none.
func (d *Descriptor) Facets() *facet.Set { return d.opts.Facets() }

// Sort returns the sort specs in priority order.
func (d *Descriptor) Sort() []sortspec.Spec { return d.opts.Sort() }

// Consistency returns the effective consistency mode.
func (d *Descriptor) Consistency() consistency.Mode { return d.opts.Consistency() }

// ClientContextID returns the client context id.
func (d *Descriptor) ClientContextID() string { return d.opts.ClientContextID() }

// ScopeName returns the deprecated scope name. It is not sent on the wire.
func (d *Descriptor) ScopeName() string { return d.opts.ScopeName() }

// Warnings lists deprecation warnings raised while resolving options.
func (d *Descriptor) Warnings() []string { return slices.Clone(d.opts.Deprecations()) }
