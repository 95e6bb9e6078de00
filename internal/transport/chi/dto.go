package chi

import (
	"github.com/kailas-cloud/fts/internal/domain/search/result"
)

// ErrorCode classifies an error response.
type ErrorCode string

// Error codes.
const (
	ErrorCodeBadRequest             ErrorCode = "bad_request"
	ErrorCodeValidationFailed       ErrorCode = "validation_failed"
	ErrorCodeNotFound               ErrorCode = "not_found"
	ErrorCodeUnauthorized           ErrorCode = "unauthorized"
	ErrorCodeForbidden              ErrorCode = "forbidden"
	ErrorCodeRateLimited            ErrorCode = "rate_limited"
	ErrorCodeEngineUnavailable      ErrorCode = "engine_unavailable"
	ErrorCodeSearchFailed           ErrorCode = "search_failed"
	ErrorCodeEmbeddingProviderError ErrorCode = "embedding_provider_error"
	ErrorCodeInternalError          ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// SearchResponse is the body of a successful query.
type SearchResponse struct {
	Rows     []RowResponse            `json:"rows"`
	Facets   map[string]FacetResponse `json:"facets,omitempty"`
	Metadata MetadataResponse         `json:"metadata"`
}

// RowResponse is one search hit.
type RowResponse struct {
	Index       string              `json:"index"`
	ID          string              `json:"id"`
	Score       float64             `json:"score"`
	Fields      map[string]any      `json:"fields,omitempty"`
	Fragments   map[string][]string `json:"fragments,omitempty"`
	Locations   []LocationResponse  `json:"locations,omitempty"`
	Explanation map[string]any      `json:"explanation,omitempty"`
}

// LocationResponse is one term occurrence in a hit.
type LocationResponse struct {
	Field          string   `json:"field"`
	Term           string   `json:"term"`
	Position       uint32   `json:"position"`
	Start          uint32   `json:"start"`
	End            uint32   `json:"end"`
	ArrayPositions []uint32 `json:"array_positions,omitempty"`
}

// MetadataResponse carries the response metrics and partition errors.
type MetadataResponse struct {
	ClientContextID string            `json:"client_context_id"`
	Errors          map[string]string `json:"errors,omitempty"`
	Metrics         MetricsResponse   `json:"metrics"`
}

// MetricsResponse mirrors result.Metrics. Took is in nanoseconds.
type MetricsResponse struct {
	Took                  int64   `json:"took"`
	TotalRows             uint64  `json:"total_rows"`
	MaxScore              float64 `json:"max_score"`
	SuccessPartitionCount uint64  `json:"success_partition_count"`
	ErrorPartitionCount   uint64  `json:"error_partition_count"`
	TotalPartitionCount   uint64  `json:"total_partition_count"`
}

// FacetResponse is the outcome of one facet.
type FacetResponse struct {
	Field         string          `json:"field"`
	Total         uint64          `json:"total"`
	Missing       uint64          `json:"missing"`
	Other         uint64          `json:"other"`
	Terms         []TermBucket    `json:"terms,omitempty"`
	NumericRanges []NumericBucket `json:"numeric_ranges,omitempty"`
	DateRanges    []DateBucket    `json:"date_ranges,omitempty"`
}

// TermBucket is the count of one term.
type TermBucket struct {
	Term  string `json:"term"`
	Count uint64 `json:"count"`
}

// NumericBucket is the count of one numeric range.
type NumericBucket struct {
	Name  string   `json:"name"`
	Min   *float64 `json:"min,omitempty"`
	Max   *float64 `json:"max,omitempty"`
	Count uint64   `json:"count"`
}

// DateBucket is the count of one date range.
type DateBucket struct {
	Name  string  `json:"name"`
	Start *string `json:"start,omitempty"`
	End   *string `json:"end,omitempty"`
	Count uint64  `json:"count"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// NewSearchResponse converts a collected search into its JSON shape.
func NewSearchResponse(resp *result.Response) SearchResponse {
	out := SearchResponse{
		Rows:     make([]RowResponse, len(resp.Rows)),
		Metadata: NewMetadataResponse(resp.Metadata),
	}
	for i := range resp.Rows {
		out.Rows[i] = NewRowResponse(&resp.Rows[i])
	}
	if len(resp.Facets) > 0 {
		out.Facets = make(map[string]FacetResponse, len(resp.Facets))
		for name, f := range resp.Facets {
			out.Facets[name] = NewFacetResponse(f)
		}
	}
	return out
}

// NewFacetResponse converts one facet result.
func NewFacetResponse(f result.FacetResult) FacetResponse {
	out := FacetResponse{
		Field:   f.Field(),
		Total:   f.Total(),
		Missing: f.Missing(),
		Other:   f.Other(),
	}
	for _, t := range f.Terms() {
		out.Terms = append(out.Terms, TermBucket{Term: t.Term, Count: t.Count})
	}
	for _, r := range f.NumericRanges() {
		out.NumericRanges = append(out.NumericRanges, NumericBucket{Name: r.Name, Min: r.Min, Max: r.Max, Count: r.Count})
	}
	for _, r := range f.DateRanges() {
		out.DateRanges = append(out.DateRanges, DateBucket{Name: r.Name, Start: r.Start, End: r.End, Count: r.Count})
	}
	return out
}

// NewRowResponse converts one row.
func NewRowResponse(r *result.Row) RowResponse {
	out := RowResponse{
		Index:       r.Index(),
		ID:          r.ID(),
		Score:       r.Score(),
		Fields:      r.Fields(),
		Fragments:   r.Fragments(),
		Explanation: r.Explanation(),
	}
	if locs := r.Locations(); locs != nil {
		for _, l := range locs.All() {
			out.Locations = append(out.Locations, LocationResponse{
				Field:          l.Field,
				Term:           l.Term,
				Position:       l.Position,
				Start:          l.Start,
				End:            l.End,
				ArrayPositions: l.ArrayPositions,
			})
		}
	}
	return out
}

// NewMetadataResponse converts response metadata.
func NewMetadataResponse(md result.Metadata) MetadataResponse {
	m := md.Metrics()
	return MetadataResponse{
		ClientContextID: md.ClientContextID(),
		Errors:          md.Errors(),
		Metrics: MetricsResponse{
			Took:                  m.Took(),
			TotalRows:             m.TotalRows(),
			MaxScore:              m.MaxScore(),
			SuccessPartitionCount: m.SuccessPartitionCount(),
			ErrorPartitionCount:   m.ErrorPartitionCount(),
			TotalPartitionCount:   m.TotalPartitionCount(),
		},
	}
}
