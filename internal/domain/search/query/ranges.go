package query

import (
	"time"

	"github.com/kailas-cloud/fts/internal/domain"
)

// NumericRange matches numeric values between optional bounds.
// Zero is a valid bound.
type NumericRange struct {
	common
	fielded
	min, max                   *float64
	inclusiveMin, inclusiveMax *bool
}

// NewNumericRange creates a numeric range query. Set at least one bound
// before encoding.
func NewNumericRange() *NumericRange { return &NumericRange{} }

// SetMin sets the lower bound.
func (q *NumericRange) SetMin(v float64) { q.min = &v }

// SetMax sets the upper bound.
func (q *NumericRange) SetMax(v float64) { q.max = &v }

// SetInclusiveMin controls whether the lower bound matches.
func (q *NumericRange) SetInclusiveMin(b bool) { q.inclusiveMin = &b }

// SetInclusiveMax controls whether the upper bound matches.
func (q *NumericRange) SetInclusiveMax(b bool) { q.inclusiveMax = &b }

// Validate implements Query.
func (q *NumericRange) Validate() error {
	if q.min == nil && q.max == nil {
		return domain.ErrNoBoundSpecified
	}
	return nil
}

// Encodable implements Query.
func (q *NumericRange) Encodable() (map[string]any, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	out := map[string]any{}
	if q.min != nil {
		out["min"] = *q.min
	}
	if q.max != nil {
		out["max"] = *q.max
	}
	putBool(out, "inclusive_min", q.inclusiveMin)
	putBool(out, "inclusive_max", q.inclusiveMax)
	q.encodeCommon(out)
	q.encodeField(out)
	return out, nil
}

// DateRange matches date values between optional bounds.
type DateRange struct {
	common
	fielded
	start, end                   *string
	inclusiveStart, inclusiveEnd *bool
	parser                       string
}

// NewDateRange creates a date range query. Set at least one bound before
// encoding.
func NewDateRange() *DateRange { return &DateRange{} }

// SetStart sets the lower bound as a date string understood by the parser.
func (q *DateRange) SetStart(s string) { q.start = &s }

// SetEnd sets the upper bound as a date string understood by the parser.
func (q *DateRange) SetEnd(s string) { q.end = &s }

// SetStartTime sets the lower bound formatted as RFC 3339.
func (q *DateRange) SetStartTime(t time.Time) { q.SetStart(t.Format(time.RFC3339)) }

// SetEndTime sets the upper bound formatted as RFC 3339.
func (q *DateRange) SetEndTime(t time.Time) { q.SetEnd(t.Format(time.RFC3339)) }

// SetInclusiveStart controls whether the lower bound matches.
func (q *DateRange) SetInclusiveStart(b bool) { q.inclusiveStart = &b }

// SetInclusiveEnd controls whether the upper bound matches.
func (q *DateRange) SetInclusiveEnd(b bool) { q.inclusiveEnd = &b }

// SetDateTimeParser names the index date parser used for the bounds.
func (q *DateRange) SetDateTimeParser(parser string) { q.parser = parser }

// Validate implements Query.
func (q *DateRange) Validate() error {
	if q.start == nil && q.end == nil {
		return domain.ErrNoBoundSpecified
	}
	return nil
}

// Encodable implements Query.
func (q *DateRange) Encodable() (map[string]any, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	out := map[string]any{}
	if q.start != nil {
		out["start"] = *q.start
	}
	if q.end != nil {
		out["end"] = *q.end
	}
	putBool(out, "inclusive_start", q.inclusiveStart)
	putBool(out, "inclusive_end", q.inclusiveEnd)
	if q.parser != "" {
		out["datetime_parser"] = q.parser
	}
	q.encodeCommon(out)
	q.encodeField(out)
	return out, nil
}

// TermRange matches terms lexically between optional bounds.
type TermRange struct {
	common
	fielded
	min, max                   *string
	inclusiveMin, inclusiveMax *bool
}

// NewTermRange creates a term range query. Set at least one bound before
// encoding.
func NewTermRange() *TermRange { return &TermRange{} }

// SetMin sets the lower bound.
func (q *TermRange) SetMin(s string) { q.min = &s }

// SetMax sets the upper bound.
func (q *TermRange) SetMax(s string) { q.max = &s }

// SetInclusiveMin controls whether the lower bound matches.
func (q *TermRange) SetInclusiveMin(b bool) { q.inclusiveMin = &b }

// SetInclusiveMax controls whether the upper bound matches.
func (q *TermRange) SetInclusiveMax(b bool) { q.inclusiveMax = &b }

// Validate implements Query.
func (q *TermRange) Validate() error {
	if q.min == nil && q.max == nil {
		return domain.ErrNoBoundSpecified
	}
	return nil
}

// Encodable implements Query.
func (q *TermRange) Encodable() (map[string]any, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	out := map[string]any{}
	if q.min != nil {
		out["min"] = *q.min
	}
	if q.max != nil {
		out["max"] = *q.max
	}
	putBool(out, "inclusive_min", q.inclusiveMin)
	putBool(out, "inclusive_max", q.inclusiveMax)
	q.encodeCommon(out)
	q.encodeField(out)
	return out, nil
}

func putBool(out map[string]any, key string, b *bool) {
	if b != nil {
		out[key] = *b
	}
}
