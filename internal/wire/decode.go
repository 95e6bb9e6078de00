package wire

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/kailas-cloud/fts/internal/domain"
	"github.com/kailas-cloud/fts/internal/domain/search/facet"
	"github.com/kailas-cloud/fts/internal/domain/search/request"
	"github.com/kailas-cloud/fts/internal/domain/search/result"
)

// DecodeRow maps one row payload. Stored fields may arrive as an object or
// as a string holding JSON text; both are decoded with ser.
func DecodeRow(payload []byte, ser domain.Serializer) (result.Row, error) {
	var raw rowJSON
	if err := json.Unmarshal(payload, &raw); err != nil {
		return result.Row{}, fmt.Errorf("decode row: %w", err)
	}
	if ser == nil {
		ser = domain.JSONSerializer{}
	}

	fields, err := decodeFields(raw.Fields, ser)
	if err != nil {
		return result.Row{}, fmt.Errorf("decode row %q fields: %w", raw.ID, err)
	}
	var explanation map[string]any
	if !isNull(raw.Explanation) {
		if err := json.Unmarshal(raw.Explanation, &explanation); err != nil {
			return result.Row{}, fmt.Errorf("decode row %q explanation: %w", raw.ID, err)
		}
	}

	return result.NewRow(result.RowData{
		Index:       raw.Index,
		ID:          raw.ID,
		Score:       raw.Score,
		Fields:      fields,
		Locations:   flattenLocations(raw.Locations),
		Fragments:   raw.Fragments,
		Explanation: explanation,
	}), nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func decodeFields(raw json.RawMessage, ser domain.Serializer) (map[string]any, error) {
	if isNull(raw) {
		return nil, nil
	}
	text := []byte(raw)
	if bytes.TrimSpace(raw)[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		if s == "" {
			return nil, nil
		}
		text = []byte(s)
	}
	var fields map[string]any
	if err := ser.Deserialize(text, &fields); err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, nil
	}
	return fields, nil
}

// flattenLocations orders locations by field, then term, keeping the
// engine's order of hits within a term.
func flattenLocations(locs map[string]map[string][]locationJSON) []result.Location {
	if locs == nil {
		return nil
	}
	out := []result.Location{}
	for _, field := range slices.Sorted(maps.Keys(locs)) {
		terms := locs[field]
		for _, term := range slices.Sorted(maps.Keys(terms)) {
			for _, hit := range terms[term] {
				out = append(out, result.Location{
					Field:          field,
					Term:           term,
					Position:       hit.Position,
					Start:          hit.Start,
					End:            hit.End,
					ArrayPositions: hit.ArrayPositions,
				})
			}
		}
	}
	return out
}

// DecodeMetadata maps the terminal metadata payload. Facet bucket details
// are kept only for facets requested with a limit; facets absent from
// requested are kept as sent.
func DecodeMetadata(payload []byte, requested *facet.Set) (result.Metadata, map[string]result.FacetResult, error) {
	var raw metadataJSON
	if err := json.Unmarshal(payload, &raw); err != nil {
		return result.Metadata{}, nil, fmt.Errorf("decode metadata: %w", err)
	}

	m := raw.Metrics
	if m.TotalPartitionCount != nil && *m.TotalPartitionCount != m.SuccessPartitionCount+m.ErrorPartitionCount {
		return result.Metadata{}, nil, domain.InvalidArgument(
			"total_partition_count %d does not match %d successful + %d failed",
			*m.TotalPartitionCount, m.SuccessPartitionCount, m.ErrorPartitionCount)
	}
	metrics := result.NewMetrics(m.Took, m.TotalRows, m.MaxScore, m.SuccessPartitionCount, m.ErrorPartitionCount)

	var facets map[string]result.FacetResult
	if len(raw.Facets) > 0 {
		facets = make(map[string]result.FacetResult, len(raw.Facets))
		for name, f := range raw.Facets {
			facets[name] = decodeFacet(name, f, detailed(requested, name))
		}
	}
	var errs map[string]string
	if len(raw.Errors) > 0 {
		errs = raw.Errors
	}
	return result.NewMetadata(raw.ClientContextID, metrics, errs), facets, nil
}

func detailed(requested *facet.Set, name string) bool {
	if requested == nil {
		return true
	}
	f, ok := requested.Get(name)
	if !ok {
		return true
	}
	_, limited := f.Limit()
	return limited
}

func decodeFacet(name string, f facetJSON, withBuckets bool) result.FacetResult {
	d := result.FacetData{
		Name:    name,
		Field:   f.Field,
		Total:   f.Total,
		Missing: f.Missing,
		Other:   f.Other,
	}
	if !withBuckets {
		return result.NewFacetResult(d)
	}
	for _, t := range f.Terms {
		d.Terms = append(d.Terms, result.TermFacet{Term: t.Term, Count: t.Count})
	}
	for _, r := range f.NumericRanges {
		d.NumericRanges = append(d.NumericRanges, result.NumericRangeFacet{
			Name: r.Name, Min: r.Min, Max: r.Max, Count: r.Count,
		})
	}
	for _, r := range f.DateRanges {
		d.DateRanges = append(d.DateRanges, result.DateRangeFacet{
			Name: r.Name, Start: r.Start, End: r.End, Count: r.Count,
		})
	}
	return result.NewFacetResult(d)
}

// MapResponse maps a complete response of d: every row payload and the
// terminal metadata payload.
func MapResponse(d *request.Descriptor, rows [][]byte, metadata []byte) (*result.Response, error) {
	ser := d.Options().Serializer()
	resp := &result.Response{Rows: make([]result.Row, 0, len(rows))}
	for i, payload := range rows {
		row, err := DecodeRow(payload, ser)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		resp.Rows = append(resp.Rows, row)
	}
	md, facets, err := DecodeMetadata(metadata, d.Facets())
	if err != nil {
		return nil, err
	}
	resp.Metadata = md
	resp.Facets = facets
	return resp, nil
}
