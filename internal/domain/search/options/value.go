package options

import (
	"math"
	"time"

	"github.com/kailas-cloud/fts/internal/domain"
	"github.com/kailas-cloud/fts/internal/domain/search/consistency"
	"github.com/kailas-cloud/fts/internal/domain/search/facet"
	"github.com/kailas-cloud/fts/internal/domain/search/sortspec"
)

// Keys accepted by WithValue.
const (
	KeyLimit            = "limit"
	KeySkip             = "skip"
	KeyExplain          = "explain"
	KeyDisableScoring   = "disable_scoring"
	KeyIncludeLocations = "include_locations"
	KeyShowRequest      = "show_request"
	KeyLogRequest       = "log_request"
	KeyLogResponse      = "log_response"
	KeyMetrics          = "metrics"
	KeyFields           = "fields"
	KeyHighlightStyle   = "highlight_style"
	KeyHighlightFields  = "highlight_fields"
	KeyCollections      = "collections"
	KeyScopeName        = "scope_name"
	KeyClientContextID  = "client_context_id"
	KeyTimeout          = "timeout"
	KeySerializer       = "serializer"
	KeyRaw              = "raw"
	KeyScanConsistency  = "scan_consistency"
	KeyConsistentWith   = "consistent_with"
	KeyFacets           = "facets"
	KeySort             = "sort"
)

// WithValue sets the option named key from a dynamically typed value, as
// found in decoded JSON or YAML documents. Values of the wrong type are
// rejected with ErrInvalidArgument.
func WithValue(key string, v any) Option {
	return func(o *Options) error {
		opt, err := valueOption(key, v)
		if err != nil {
			return err
		}
		return opt(o)
	}
}

//nolint:gocyclo // one case per option key
func valueOption(key string, v any) (Option, error) {
	switch key {
	case KeyLimit, KeySkip:
		n, err := toInt(key, v)
		if err != nil {
			return nil, err
		}
		if key == KeyLimit {
			return WithLimit(n), nil
		}
		return WithSkip(n), nil
	case KeyExplain, KeyDisableScoring, KeyIncludeLocations, KeyShowRequest,
		KeyLogRequest, KeyLogResponse, KeyMetrics:
		b, ok := v.(bool)
		if !ok {
			return nil, wrongType(key, "a boolean", v)
		}
		return boolOptions[key](b), nil
	case KeyFields, KeyHighlightFields, KeyCollections:
		list, err := toStrings(key, v)
		if err != nil {
			return nil, err
		}
		switch key {
		case KeyFields:
			return WithFields(list...), nil
		case KeyHighlightFields:
			return WithHighlightFields(list...), nil
		default:
			return WithCollections(list...), nil
		}
	case KeyHighlightStyle:
		switch s := v.(type) {
		case HighlightStyle:
			return WithHighlightStyle(s), nil
		case string:
			style, err := ParseHighlightStyle(s)
			if err != nil {
				return nil, err
			}
			return WithHighlightStyle(style), nil
		default:
			return nil, wrongType(key, "a highlight style", v)
		}
	case KeyScopeName, KeyClientContextID:
		s, ok := v.(string)
		if !ok {
			return nil, wrongType(key, "a string", v)
		}
		if key == KeyScopeName {
			return WithScopeName(s), nil
		}
		return WithClientContextID(s), nil
	case KeyTimeout:
		d, err := toDuration(v)
		if err != nil {
			return nil, err
		}
		return WithTimeout(d), nil
	case KeySerializer:
		s, ok := v.(domain.Serializer)
		if !ok {
			return nil, wrongType(key, "a serializer", v)
		}
		return WithSerializer(s), nil
	case KeyRaw:
		m, ok := v.(map[string]any)
		if !ok {
			return nil, wrongType(key, "an object", v)
		}
		return WithRaw(m), nil
	case KeyScanConsistency:
		switch m := v.(type) {
		case consistency.Mode:
			return WithScanConsistency(m), nil
		case string:
			mode, err := consistency.ParseMode(m)
			if err != nil {
				return nil, domain.InvalidArgument("%s: %v", key, err)
			}
			return WithScanConsistency(mode), nil
		default:
			return nil, wrongType(key, "a scan consistency", v)
		}
	case KeyConsistentWith:
		state, ok := v.(consistency.MutationState)
		if !ok {
			return nil, wrongType(key, "a mutation state", v)
		}
		return WithConsistentWith(state), nil
	case KeyFacets:
		set, ok := v.(*facet.Set)
		if !ok {
			return nil, wrongType(key, "a facet set", v)
		}
		return WithFacets(set), nil
	case KeySort:
		switch s := v.(type) {
		case []sortspec.Spec:
			return WithSort(s...), nil
		case sortspec.Spec:
			return WithSort(s), nil
		default:
			return nil, wrongType(key, "a list of sort specs", v)
		}
	default:
		return nil, domain.InvalidArgument("unknown search option %q", key)
	}
}

var boolOptions = map[string]func(bool) Option{
	KeyExplain:          WithExplain,
	KeyDisableScoring:   WithDisableScoring,
	KeyIncludeLocations: WithIncludeLocations,
	KeyShowRequest:      WithShowRequest,
	KeyLogRequest:       WithLogRequest,
	KeyLogResponse:      WithLogResponse,
	KeyMetrics:          WithMetrics,
}

func wrongType(key, want string, v any) error {
	return domain.InvalidArgument("%s must be %s, got %T", key, want, v)
}

func toInt(key string, v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case uint64:
		if n > math.MaxInt {
			return 0, domain.InvalidArgument("%s out of range: %d", key, n)
		}
		return int(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, domain.InvalidArgument("%s must be an integer, got %v", key, n)
		}
		return int(n), nil
	default:
		return 0, wrongType(key, "an integer", v)
	}
}

func toStrings(key string, v any) ([]string, error) {
	switch list := v.(type) {
	case []string:
		return list, nil
	case []any:
		out := make([]string, len(list))
		for i, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, domain.InvalidArgument("%s must be a list of strings, item %d is %T", key, i, item)
			}
			out[i] = s
		}
		return out, nil
	default:
		return nil, wrongType(key, "a list of strings", v)
	}
}

func toDuration(v any) (time.Duration, error) {
	switch d := v.(type) {
	case nil:
		return 0, nil
	case time.Duration:
		return d, nil
	case string:
		if d == "" {
			return 0, nil
		}
		parsed, err := time.ParseDuration(d)
		if err != nil {
			return 0, domain.InvalidArgument("timeout: %v", err)
		}
		return parsed, nil
	default:
		return 0, wrongType(KeyTimeout, "a duration", v)
	}
}
