package options

import (
	"maps"
	"slices"
	"time"

	"github.com/kailas-cloud/fts/internal/domain"
	"github.com/kailas-cloud/fts/internal/domain/search/consistency"
	"github.com/kailas-cloud/fts/internal/domain/search/facet"
	"github.com/kailas-cloud/fts/internal/domain/search/sortspec"
)

// Option sets one search option.
type Option func(*Options) error

// WithLimit limits the number of rows returned.
func WithLimit(n int) Option {
	return func(o *Options) error {
		if n < 0 {
			return domain.InvalidArgument("limit must be >= 0, got %d", n)
		}
		o.limit = &n
		return nil
	}
}

// WithSkip skips the first n rows.
func WithSkip(n int) Option {
	return func(o *Options) error {
		if n < 0 {
			return domain.InvalidArgument("skip must be >= 0, got %d", n)
		}
		o.skip = &n
		return nil
	}
}

// WithExplain requests score explanations.
func WithExplain(v bool) Option { return boolOption(func(o *Options) **bool { return &o.explain }, v) }

// WithDisableScoring turns scoring off.
func WithDisableScoring(v bool) Option {
	return boolOption(func(o *Options) **bool { return &o.disableScoring }, v)
}

// WithIncludeLocations requests term locations in rows.
func WithIncludeLocations(v bool) Option {
	return boolOption(func(o *Options) **bool { return &o.includeLocs }, v)
}

// WithShowRequest echoes the request in the response.
func WithShowRequest(v bool) Option {
	return boolOption(func(o *Options) **bool { return &o.showRequest }, v)
}

// WithLogRequest asks the engine to log the request.
func WithLogRequest(v bool) Option {
	return boolOption(func(o *Options) **bool { return &o.logRequest }, v)
}

// WithLogResponse asks the engine to log the response.
func WithLogResponse(v bool) Option {
	return boolOption(func(o *Options) **bool { return &o.logResponse }, v)
}

// WithMetrics toggles response metrics. Requests carry metrics unless disabled.
func WithMetrics(v bool) Option { return boolOption(func(o *Options) **bool { return &o.metrics }, v) }

func boolOption(target func(*Options) **bool, v bool) Option {
	return func(o *Options) error {
		*target(o) = &v
		return nil
	}
}

// WithFields lists the stored fields to return.
func WithFields(fields ...string) Option {
	return func(o *Options) error {
		o.fields = slices.Clone(fields)
		return nil
	}
}

// WithHighlight sets the highlight style and the fields to highlight.
func WithHighlight(style HighlightStyle, fields ...string) Option {
	return func(o *Options) error {
		if _, err := ParseHighlightStyle(string(style)); err != nil {
			return err
		}
		o.highlightStyle = style
		o.highlightFields = slices.Clone(fields)
		return nil
	}
}

// WithHighlightStyle sets the highlight style only.
func WithHighlightStyle(style HighlightStyle) Option {
	return func(o *Options) error {
		if _, err := ParseHighlightStyle(string(style)); err != nil {
			return err
		}
		o.highlightStyle = style
		return nil
	}
}

// WithHighlightFields sets the fields to highlight only.
func WithHighlightFields(fields ...string) Option {
	return func(o *Options) error {
		o.highlightFields = slices.Clone(fields)
		return nil
	}
}

// WithCollections restricts the search to collections.
func WithCollections(collections ...string) Option {
	return func(o *Options) error {
		o.collections = slices.Clone(collections)
		return nil
	}
}

// WithScopeName sets the scope of the index.
//
// Deprecated: the scope is part of the index name.
func WithScopeName(scope string) Option {
	return func(o *Options) error {
		o.scopeName = scope
		return nil
	}
}

// WithClientContextID tags the request for tracing on the engine side.
func WithClientContextID(id string) Option {
	return func(o *Options) error {
		o.clientContextID = id
		return nil
	}
}

// WithTimeout sets the server side timeout. Zero clears it.
func WithTimeout(d time.Duration) Option {
	return func(o *Options) error {
		if d < 0 {
			return domain.InvalidArgument("timeout must be >= 0, got %s", d)
		}
		o.timeout = d
		return nil
	}
}

// WithSerializer sets the serializer used to decode row fields.
func WithSerializer(s domain.Serializer) Option {
	return func(o *Options) error {
		if s == nil {
			return domain.InvalidArgument("serializer is nil")
		}
		o.serializer = s
		return nil
	}
}

// WithRaw merges pass-through options. Each value is JSON encoded on the wire.
func WithRaw(raw map[string]any) Option {
	return func(o *Options) error {
		if o.raw == nil {
			o.raw = make(map[string]any, len(raw))
		}
		maps.Copy(o.raw, raw)
		return nil
	}
}

// WithScanConsistency sets the scan consistency, dropping any mutation state.
func WithScanConsistency(m consistency.Mode) Option {
	return func(o *Options) error { return o.SetScanConsistency(m) }
}

// WithConsistentWith requires consistency with a mutation state.
func WithConsistentWith(state consistency.MutationState) Option {
	return func(o *Options) error { return o.ConsistentWith(state) }
}

// WithFacet registers a facet under name.
func WithFacet(name string, f facet.Facet) Option {
	return func(o *Options) error {
		if o.facets == nil {
			o.facets = facet.NewSet()
		}
		return o.facets.Add(name, f)
	}
}

// WithFacets replaces the registered facets.
func WithFacets(set *facet.Set) Option {
	return func(o *Options) error {
		if set == nil {
			o.facets = nil
			return nil
		}
		o.facets = set.Clone()
		return nil
	}
}

// WithSort sets the sort order, primary key first.
func WithSort(specs ...sortspec.Spec) Option {
	return func(o *Options) error {
		for i, s := range specs {
			if s == nil {
				return domain.InvalidArgument("sort entry %d is nil", i)
			}
		}
		o.sort = slices.Clone(specs)
		return nil
	}
}

// Resolve merges overrides into a copy of base. Overrides win over values
// already present in base. base is never modified and may be nil.
func Resolve(base *Options, overrides ...Option) (*Options, error) {
	var out *Options
	if base == nil {
		out = &Options{}
	} else {
		out = base.Clone()
	}
	if err := out.Apply(overrides...); err != nil {
		return nil, err
	}
	return out, nil
}
