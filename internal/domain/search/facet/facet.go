// Package facet models aggregation buckets attached to a search request.
package facet

import (
	"slices"
	"time"

	"github.com/kailas-cloud/fts/internal/domain"
)

// Facet is a term, numeric or date facet definition.
type Facet interface {
	// Field returns the field aggregated by the facet.
	Field() string
	// Limit returns the bucket limit and whether it was set.
	Limit() (int, bool)
	// Validate checks the facet can be registered into a request.
	Validate() error
	// Encodable returns the JSON-ready form.
	Encodable() map[string]any
}

type base struct {
	field string
	limit *int
}

// Field returns the aggregated field.
func (b *base) Field() string { return b.field }

// SetLimit caps the number of buckets returned.
func (b *base) SetLimit(n int) { b.limit = &n }

// Limit returns the bucket limit and whether it was set.
func (b *base) Limit() (int, bool) {
	if b.limit == nil {
		return 0, false
	}
	return *b.limit, true
}

func (b *base) validateLimit() error {
	if b.limit != nil && *b.limit < 0 {
		return domain.InvalidArgument("facet limit must be >= 0, got %d", *b.limit)
	}
	return nil
}

func (b *base) encodeBase() map[string]any {
	out := map[string]any{"field": b.field}
	if b.limit != nil {
		out["size"] = *b.limit
	}
	return out
}

// Term counts the most frequent terms of a field.
type Term struct {
	base
}

// NewTerm creates a term facet.
func NewTerm(field string) (*Term, error) {
	if field == "" {
		return nil, domain.NewMissingField("field")
	}
	return &Term{base{field: field}}, nil
}

// Validate implements Facet.
func (f *Term) Validate() error { return f.validateLimit() }

// Encodable implements Facet.
func (f *Term) Encodable() map[string]any { return f.encodeBase() }

// NumericRange is a named numeric bucket. At least one bound is set.
type NumericRange struct {
	Name string
	Min  *float64
	Max  *float64
}

// Numeric counts field values falling into named numeric ranges.
type Numeric struct {
	base
	ranges []NumericRange
}

// NewNumeric creates a numeric facet. Add ranges before registering it.
func NewNumeric(field string) (*Numeric, error) {
	if field == "" {
		return nil, domain.NewMissingField("field")
	}
	return &Numeric{base: base{field: field}}, nil
}

// AddRange appends a named range. At least one bound must be non-nil.
func (f *Numeric) AddRange(name string, lower, upper *float64) error {
	if name == "" {
		return domain.NewMissingField("name")
	}
	if lower == nil && upper == nil {
		return domain.InvalidArgument("numeric range %q needs min or max", name)
	}
	f.ranges = append(f.ranges, NumericRange{Name: name, Min: lower, Max: upper})
	return nil
}

// Ranges returns the ranges in insertion order.
func (f *Numeric) Ranges() []NumericRange { return slices.Clone(f.ranges) }

// Validate implements Facet.
func (f *Numeric) Validate() error {
	if len(f.ranges) == 0 {
		return domain.InvalidArgument("numeric facet on %q has no ranges", f.field)
	}
	return f.validateLimit()
}

// Encodable implements Facet.
func (f *Numeric) Encodable() map[string]any {
	out := f.encodeBase()
	ranges := make([]map[string]any, len(f.ranges))
	for i, r := range f.ranges {
		m := map[string]any{"name": r.Name}
		if r.Min != nil {
			m["min"] = *r.Min
		}
		if r.Max != nil {
			m["max"] = *r.Max
		}
		ranges[i] = m
	}
	out["numeric_ranges"] = ranges
	return out
}

// DateRange is a named date bucket. At least one bound is set.
type DateRange struct {
	Name  string
	Start *string
	End   *string
}

// Date counts field values falling into named date ranges.
type Date struct {
	base
	ranges []DateRange
}

// NewDate creates a date facet. Add ranges before registering it.
func NewDate(field string) (*Date, error) {
	if field == "" {
		return nil, domain.NewMissingField("field")
	}
	return &Date{base: base{field: field}}, nil
}

// AddRange appends a named range. At least one bound must be non-nil.
func (f *Date) AddRange(name string, start, end *string) error {
	if name == "" {
		return domain.NewMissingField("name")
	}
	if start == nil && end == nil {
		return domain.InvalidArgument("date range %q needs start or end", name)
	}
	f.ranges = append(f.ranges, DateRange{Name: name, Start: start, End: end})
	return nil
}

// AddTimeRange appends a named range with RFC 3339 bounds; a zero time is
// treated as absent.
func (f *Date) AddTimeRange(name string, start, end time.Time) error {
	return f.AddRange(name, formatTime(start), formatTime(end))
}

// Ranges returns the ranges in insertion order.
func (f *Date) Ranges() []DateRange { return slices.Clone(f.ranges) }

// Validate implements Facet.
func (f *Date) Validate() error {
	if len(f.ranges) == 0 {
		return domain.InvalidArgument("date facet on %q has no ranges", f.field)
	}
	return f.validateLimit()
}

// Encodable implements Facet.
func (f *Date) Encodable() map[string]any {
	out := f.encodeBase()
	ranges := make([]map[string]any, len(f.ranges))
	for i, r := range f.ranges {
		m := map[string]any{"name": r.Name}
		if r.Start != nil {
			m["start"] = *r.Start
		}
		if r.End != nil {
			m["end"] = *r.End
		}
		ranges[i] = m
	}
	out["date_ranges"] = ranges
	return out
}

func formatTime(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

var (
	_ Facet = (*Term)(nil)
	_ Facet = (*Numeric)(nil)
	_ Facet = (*Date)(nil)
)
