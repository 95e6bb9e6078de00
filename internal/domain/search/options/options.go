// Package options holds the per-request search options and merges a base
// options value with ad-hoc overrides.
package options

import (
	"encoding/json"
	"maps"
	"slices"
	"time"

	"github.com/kailas-cloud/fts/internal/domain"
	"github.com/kailas-cloud/fts/internal/domain/search/consistency"
	"github.com/kailas-cloud/fts/internal/domain/search/facet"
	"github.com/kailas-cloud/fts/internal/domain/search/sortspec"
)

// HighlightStyle selects how matched fragments are marked up.
type HighlightStyle string

// Highlight styles.
const (
	HighlightHTML HighlightStyle = "html"
	HighlightANSI HighlightStyle = "ansi"
)

// ParseHighlightStyle parses "html" or "ansi".
func ParseHighlightStyle(s string) (HighlightStyle, error) {
	switch HighlightStyle(s) {
	case HighlightHTML, HighlightANSI:
		return HighlightStyle(s), nil
	default:
		return "", domain.InvalidArgument("highlight_style must be %q or %q, got %q", HighlightHTML, HighlightANSI, s)
	}
}

// Options are the options of a single search request. The zero value is
// ready to use; unset options are left out of the request.
type Options struct {
	limit           *int
	skip            *int
	explain         *bool
	disableScoring  *bool
	includeLocs     *bool
	showRequest     *bool
	logRequest      *bool
	logResponse     *bool
	metrics         *bool
	fields          []string
	highlightStyle  HighlightStyle
	highlightFields []string
	collections     []string
	scopeName       string
	clientContextID string
	raw             map[string]any
	timeout         time.Duration
	serializer      domain.Serializer
	facets          *facet.Set
	sort            []sortspec.Spec

	consistency   consistency.Mode
	mutationState consistency.MutationState
}

// New creates options from opts, applied in order.
func New(opts ...Option) (*Options, error) {
	o := &Options{}
	if err := o.Apply(opts...); err != nil {
		return nil, err
	}
	return o, nil
}

// Apply applies opts in order. Later options win.
func (o *Options) Apply(opts ...Option) error {
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(o); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns a deep copy of the option values. Facets, sort specs,
// serializer and mutation state are shared.
func (o *Options) Clone() *Options {
	c := *o
	c.fields = slices.Clone(o.fields)
	c.highlightFields = slices.Clone(o.highlightFields)
	c.collections = slices.Clone(o.collections)
	c.raw = maps.Clone(o.raw)
	c.sort = slices.Clone(o.sort)
	if o.facets != nil {
		c.facets = o.facets.Clone()
	}
	return &c
}

// SetScanConsistency sets the scan consistency. AtPlus cannot be set
// directly; use ConsistentWith. Setting a mode drops any mutation state.
func (o *Options) SetScanConsistency(m consistency.Mode) error {
	switch m {
	case consistency.Unset, consistency.NotBounded, consistency.RequestPlus:
	case consistency.AtPlus:
		return domain.InvalidArgument("scan_consistency %q cannot be set directly, use consistent_with", m)
	default:
		return domain.InvalidArgument("unknown scan_consistency %q", m)
	}
	o.consistency = m
	o.mutationState = nil
	return nil
}

// ConsistentWith requires the search to reflect the mutations in state.
// The current consistency must be unset, NotBounded or an earlier
// mutation state.
func (o *Options) ConsistentWith(state consistency.MutationState) error {
	if state == nil {
		return domain.NewMissingField("consistent_with")
	}
	switch o.consistency {
	case consistency.Unset, consistency.NotBounded, consistency.AtPlus:
	default:
		return domain.InvalidArgument("consistent_with cannot be combined with scan_consistency %q, clear consistency first", o.consistency)
	}
	o.consistency = consistency.AtPlus
	o.mutationState = state
	return nil
}

// SetMetrics sets whether the engine reports query metrics.
func (o *Options) SetMetrics(v bool) { o.metrics = &v }

// SetClientContextID sets the id echoed back in the result metadata.
func (o *Options) SetClientContextID(id string) { o.clientContextID = id }

// Consistency returns the effective consistency mode.
func (o *Options) Consistency() consistency.Mode { return o.consistency }

// MutationState returns the state set by ConsistentWith, nil otherwise.
func (o *Options) MutationState() consistency.MutationState { return o.mutationState }

// Limit returns the row limit and whether it was set.
func (o *Options) Limit() (int, bool) { return intOf(o.limit) }

// Skip returns the row offset and whether it was set.
func (o *Options) Skip() (int, bool) { return intOf(o.skip) }

// Explain reports whether score explanations are requested.
func (o *Options) Explain() bool { return o.explain != nil && *o.explain }

// IncludeLocations reports whether term locations are requested.
func (o *Options) IncludeLocations() bool { return o.includeLocs != nil && *o.includeLocs }

// Metrics returns the metrics flag and whether it was set.
func (o *Options) Metrics() (bool, bool) {
	if o.metrics == nil {
		return false, false
	}
	return *o.metrics, true
}

// Fields returns the stored fields to load.
func (o *Options) Fields() []string { return slices.Clone(o.fields) }

// HighlightStyle returns the highlight style, "" when unset.
func (o *Options) HighlightStyle() HighlightStyle { return o.highlightStyle }

// HighlightFields returns the fields to highlight.
func (o *Options) HighlightFields() []string { return slices.Clone(o.highlightFields) }

// Collections returns the collections to search.
func (o *Options) Collections() []string { return slices.Clone(o.collections) }

// ScopeName returns the deprecated scope name.
func (o *Options) ScopeName() string { return o.scopeName }

// ClientContextID returns the client context id, "" when unset.
func (o *Options) ClientContextID() string { return o.clientContextID }

// Timeout returns the server side timeout, zero when unset.
func (o *Options) Timeout() time.Duration { return o.timeout }

// Serializer returns the serializer used for row fields, JSON by default.
func (o *Options) Serializer() domain.Serializer {
	if o.serializer == nil {
		return domain.JSONSerializer{}
	}
	return o.serializer
}

// Facets returns the registered facets, nil when none.
func (o *Options) Facets() *facet.Set { return o.facets }

// Sort returns the sort specs in priority order.
func (o *Options) Sort() []sortspec.Spec { return slices.Clone(o.sort) }

// Raw returns the raw pass-through options.
func (o *Options) Raw() map[string]any { return maps.Clone(o.raw) }

// Deprecations lists warnings about deprecated options in use.
func (o *Options) Deprecations() []string {
	if o.scopeName != "" {
		return []string{"scope_name is deprecated, use the scope of the index instead"}
	}
	return nil
}

// Flat returns the options as flat wire members. Facets, sort, serializer
// and scope_name are not included.
func (o *Options) Flat() (map[string]any, error) {
	out := make(map[string]any)
	putInt(out, "limit", o.limit)
	putInt(out, "skip", o.skip)
	putBool(out, "explain", o.explain)
	putBool(out, "disable_scoring", o.disableScoring)
	putBool(out, "include_locations", o.includeLocs)
	putBool(out, "show_request", o.showRequest)
	putBool(out, "log_request", o.logRequest)
	putBool(out, "log_response", o.logResponse)
	putBool(out, "metrics", o.metrics)
	putStrings(out, "fields", o.fields)
	putStrings(out, "highlight_fields", o.highlightFields)
	putStrings(out, "collections", o.collections)
	if o.highlightStyle != "" {
		out["highlight_style"] = string(o.highlightStyle)
	}
	if o.clientContextID != "" {
		out["client_context_id"] = o.clientContextID
	}
	if o.timeout > 0 {
		out["timeout"] = o.timeout.Microseconds()
	}
	switch o.consistency {
	case consistency.NotBounded, consistency.RequestPlus:
		out["scan_consistency"] = string(o.consistency)
	case consistency.AtPlus:
		out["mutation_state"] = o.mutationState.Tokens()
	}
	if len(o.raw) > 0 {
		raw := make(map[string]string, len(o.raw))
		for k, v := range o.raw {
			data, err := json.Marshal(v)
			if err != nil {
				return nil, domain.InvalidArgument("raw option %q: %v", k, err)
			}
			raw[k] = string(data)
		}
		out["raw"] = raw
	}
	return out, nil
}

func intOf(p *int) (int, bool) {
	if p == nil {
		return 0, false
	}
	return *p, true
}

func putInt(out map[string]any, key string, v *int) {
	if v != nil {
		out[key] = *v
	}
}

func putBool(out map[string]any, key string, v *bool) {
	if v != nil {
		out[key] = *v
	}
}

func putStrings(out map[string]any, key string, v []string) {
	if v != nil {
		out[key] = slices.Clone(v)
	}
}
