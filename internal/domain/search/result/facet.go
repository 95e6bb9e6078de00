package result

import "slices"

// TermFacet is the count of one term.
type TermFacet struct {
	Term  string
	Count uint64
}

// NumericRangeFacet is the count of one numeric range.
type NumericRangeFacet struct {
	Name  string
	Min   *float64
	Max   *float64
	Count uint64
}

// DateRangeFacet is the count of one date range.
type DateRangeFacet struct {
	Name  string
	Start *string
	End   *string
	Count uint64
}

// FacetData is the decoded content of a facet result.
type FacetData struct {
	Name          string
	Field         string
	Total         uint64
	Missing       uint64
	Other         uint64
	Terms         []TermFacet
	NumericRanges []NumericRangeFacet
	DateRanges    []DateRangeFacet
}

// FacetResult is the outcome of one requested facet. Per-bucket details are
// only present when the facet was requested with a limit.
type FacetResult struct {
	d FacetData
}

// NewFacetResult creates a facet result.
func NewFacetResult(d FacetData) FacetResult {
	return FacetResult{d: d}
}

// Name returns the facet name.
func (f FacetResult) Name() string { return f.d.Name }

// Field returns the faceted field.
func (f FacetResult) Field() string { return f.d.Field }

// Total returns the number of values counted.
func (f FacetResult) Total() uint64 { return f.d.Total }

// Missing returns the number of documents without the field.
func (f FacetResult) Missing() uint64 { return f.d.Missing }

// Other returns the number of values outside the returned buckets.
func (f FacetResult) Other() uint64 { return f.d.Other }

// Terms returns the term buckets, nil when not populated.
func (f FacetResult) Terms() []TermFacet { return slices.Clone(f.d.Terms) }

// NumericRanges returns the numeric range buckets, nil when not populated.
func (f FacetResult) NumericRanges() []NumericRangeFacet { return slices.Clone(f.d.NumericRanges) }

// DateRanges returns the date range buckets, nil when not populated.
func (f FacetResult) DateRanges() []DateRangeFacet { return slices.Clone(f.d.DateRanges) }
