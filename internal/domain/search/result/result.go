// Package result holds the typed rows, facets and metadata of a search response.
package result

import (
	"maps"
	"slices"
)

// RowData is the decoded content of a row.
type RowData struct {
	Index       string
	ID          string
	Score       float64
	Fields      map[string]any
	Locations   []Location
	Fragments   map[string][]string
	Explanation map[string]any
}

// Row is a single search hit.
type Row struct {
	index       string
	id          string
	score       float64
	fields      map[string]any
	locations   *Locations
	fragments   map[string][]string
	explanation map[string]any
}

// NewRow creates a row. Empty fields are stored as nil.
func NewRow(d RowData) Row {
	r := Row{
		index:       d.Index,
		id:          d.ID,
		score:       d.Score,
		fragments:   d.Fragments,
		explanation: d.Explanation,
	}
	if len(d.Fields) > 0 {
		r.fields = d.Fields
	}
	if d.Locations != nil {
		r.locations = NewLocations(d.Locations)
	}
	return r
}

// Index returns the index partition that produced the row.
func (r *Row) Index() string { return r.index }

// ID returns the document id.
func (r *Row) ID() string { return r.id }

// Score returns the relevance score.
func (r *Row) Score() float64 { return r.score }

// Fields returns the stored fields, nil when none were returned.
func (r *Row) Fields() map[string]any { return r.fields }

// Locations returns the term locations, nil unless requested.
func (r *Row) Locations() *Locations { return r.locations }

// Fragments returns the highlighted fragments per field.
func (r *Row) Fragments() map[string][]string { return r.fragments }

// Explanation returns the score explanation, nil unless requested.
func (r *Row) Explanation() map[string]any { return r.explanation }

// Metrics are the execution metrics of a search.
type Metrics struct {
	took                  int64
	totalRows             uint64
	maxScore              float64
	successPartitionCount uint64
	errorPartitionCount   uint64
}

// NewMetrics creates metrics. took is in nanoseconds.
func NewMetrics(took int64, totalRows uint64, maxScore float64, success, failed uint64) Metrics {
	return Metrics{
		took:                  took,
		totalRows:             totalRows,
		maxScore:              maxScore,
		successPartitionCount: success,
		errorPartitionCount:   failed,
	}
}

// Took returns the server side execution time in nanoseconds.
func (m Metrics) Took() int64 { return m.took }

// TotalRows returns the number of matching documents.
func (m Metrics) TotalRows() uint64 { return m.totalRows }

// MaxScore returns the highest score.
func (m Metrics) MaxScore() float64 { return m.maxScore }

// SuccessPartitionCount returns the partitions that answered.
func (m Metrics) SuccessPartitionCount() uint64 { return m.successPartitionCount }

// ErrorPartitionCount returns the partitions that failed.
func (m Metrics) ErrorPartitionCount() uint64 { return m.errorPartitionCount }

// TotalPartitionCount is always SuccessPartitionCount + ErrorPartitionCount.
func (m Metrics) TotalPartitionCount() uint64 {
	return m.successPartitionCount + m.errorPartitionCount
}

// Metadata is the terminal part of a search response.
type Metadata struct {
	clientContextID string
	metrics         Metrics
	errors          map[string]string
}

// NewMetadata creates metadata.
func NewMetadata(clientContextID string, metrics Metrics, errs map[string]string) Metadata {
	return Metadata{clientContextID: clientContextID, metrics: metrics, errors: errs}
}

// ClientContextID echoes the id sent with the request.
func (m Metadata) ClientContextID() string { return m.clientContextID }

// Metrics returns the execution metrics.
func (m Metadata) Metrics() Metrics { return m.metrics }

// Errors returns per-partition errors of a partially failed search.
func (m Metadata) Errors() map[string]string { return maps.Clone(m.errors) }

// Partial reports whether some partitions failed.
func (m Metadata) Partial() bool { return len(m.errors) > 0 }

// Response is a fully mapped search response.
type Response struct {
	Rows     []Row
	Metadata Metadata
	Facets   map[string]FacetResult
}

// FacetNames returns the facet names in sorted order.
func (r *Response) FacetNames() []string {
	return slices.Sorted(maps.Keys(r.Facets))
}
