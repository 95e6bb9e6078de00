package wire

import (
	"errors"
	"strings"
	"testing"

	"github.com/kailas-cloud/fts/internal/domain"
	"github.com/kailas-cloud/fts/internal/domain/search/facet"
	"github.com/kailas-cloud/fts/internal/domain/search/options"
	"github.com/kailas-cloud/fts/internal/domain/search/query"
	"github.com/kailas-cloud/fts/internal/domain/search/request"
)

type countingSerializer struct {
	domain.JSONSerializer
	calls int
}

func (s *countingSerializer) Deserialize(data []byte, v any) error {
	s.calls++
	return s.JSONSerializer.Deserialize(data, v)
}

func TestDecodeRow(t *testing.T) {
	payload := []byte(`{
		"index": "idx_3",
		"id": "hotel_1",
		"score": 1.25,
		"fields": "{\"name\":\"Sea View\",\"stars\":4}",
		"fragments": {"name": ["<mark>Sea</mark> View"]},
		"locations": {
			"name": {"sea": [{"position": 1, "start": 0, "end": 3, "array_positions": null}]},
			"desc": {
				"view": [{"position": 2, "start": 4, "end": 8}],
				"sea": [{"position": 1, "start": 0, "end": 3, "array_positions": [0]}]
			}
		},
		"explanation": {"value": 1.25, "message": "sum of"}
	}`)

	ser := &countingSerializer{}
	row, err := DecodeRow(payload, ser)
	if err != nil {
		t.Fatalf("DecodeRow: %v", err)
	}
	if row.Index() != "idx_3" || row.ID() != "hotel_1" || row.Score() != 1.25 {
		t.Errorf("row = %q %q %f", row.Index(), row.ID(), row.Score())
	}
	if row.Fields()["name"] != "Sea View" || ser.calls != 1 {
		t.Errorf("Fields() = %v, serializer calls %d", row.Fields(), ser.calls)
	}
	if row.Explanation()["message"] != "sum of" {
		t.Errorf("Explanation() = %v", row.Explanation())
	}

	all := row.Locations().All()
	if len(all) != 3 {
		t.Fatalf("All() len = %d", len(all))
	}
	if all[0].Field != "desc" || all[0].Term != "sea" || all[2].Field != "name" {
		t.Errorf("locations not ordered by field, term: %+v", all)
	}
	got, err := row.Locations().Get("desc", "view")
	if err != nil || len(got) != 1 || got[0].End != 8 {
		t.Errorf("Get(desc, view) = %v, %v", got, err)
	}
	if _, err := row.Locations().Get("desc", "pool"); !errors.Is(err, domain.ErrLookupNotFound) {
		t.Errorf("Get(desc, pool) = %v, want ErrLookupNotFound", err)
	}
}

func TestDecodeRow_FieldsForms(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantNil bool
	}{
		{"object", `{"id":"a","fields":{"k":"v"}}`, false},
		{"json text", `{"id":"a","fields":"{\"k\":\"v\"}"}`, false},
		{"null", `{"id":"a","fields":null}`, true},
		{"absent", `{"id":"a"}`, true},
		{"empty string", `{"id":"a","fields":""}`, true},
		{"empty object", `{"id":"a","fields":{}}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row, err := DecodeRow([]byte(tt.payload), nil)
			if err != nil {
				t.Fatalf("DecodeRow: %v", err)
			}
			if tt.wantNil {
				if row.Fields() != nil {
					t.Errorf("Fields() = %v, want nil", row.Fields())
				}
				return
			}
			if row.Fields()["k"] != "v" {
				t.Errorf("Fields() = %v", row.Fields())
			}
			if row.Locations() != nil {
				t.Error("Locations() != nil without locations")
			}
		})
	}
}

func TestDecodeRow_Malformed(t *testing.T) {
	if _, err := DecodeRow([]byte(`{"id":`), nil); err == nil {
		t.Error("expected error for truncated row")
	}
	if _, err := DecodeRow([]byte(`{"id":"a","fields":"{nope"}`), nil); err == nil {
		t.Error("expected error for invalid fields text")
	}
}

func TestDecodeMetadata_Partitions(t *testing.T) {
	md, _, err := DecodeMetadata([]byte(`{
		"client_context_id": "ctx-1",
		"metrics": {"took": 1500, "total_rows": 3, "max_score": 2.5,
			"success_partition_count": 1, "error_partition_count": 0}
	}`), nil)
	if err != nil {
		t.Fatalf("DecodeMetadata: %v", err)
	}
	if got := md.Metrics().TotalPartitionCount(); got != 1 {
		t.Errorf("TotalPartitionCount() = %d, want 1", got)
	}
	if md.ClientContextID() != "ctx-1" || md.Metrics().Took() != 1500 || md.Partial() {
		t.Errorf("metadata = %+v", md)
	}
}

func TestDecodeMetadata_PartitionMismatch(t *testing.T) {
	_, _, err := DecodeMetadata([]byte(`{"metrics": {
		"success_partition_count": 2, "error_partition_count": 1, "total_partition_count": 4}}`), nil)
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("err = %v, want ErrInvalidArgument", err)
	}
}

func TestDecodeMetadata_Errors(t *testing.T) {
	md, _, err := DecodeMetadata([]byte(`{"errors": {"pindex_2": "context deadline exceeded"},
		"metrics": {"success_partition_count": 1, "error_partition_count": 1}}`), nil)
	if err != nil {
		t.Fatalf("DecodeMetadata: %v", err)
	}
	if !md.Partial() || !strings.Contains(md.Errors()["pindex_2"], "deadline") {
		t.Errorf("Errors() = %v", md.Errors())
	}
	if md.Metrics().TotalPartitionCount() != 2 {
		t.Errorf("TotalPartitionCount() = %d", md.Metrics().TotalPartitionCount())
	}
}

const facetMetadata = `{
	"metrics": {"success_partition_count": 1},
	"facets": {
		"types": {"field": "type", "total": 10, "missing": 1, "other": 0,
			"terms": [{"term": "hotel", "count": 7}, {"term": "inn", "count": 3}]},
		"prices": {"field": "price", "total": 9, "missing": 0, "other": 0,
			"numeric_ranges": [{"name": "cheap", "max": 50, "count": 9}]}
	}
}`

func TestDecodeMetadata_FacetDetailsOnlyWithLimit(t *testing.T) {
	types, _ := facet.NewTerm("type")
	types.SetLimit(2)
	prices, _ := facet.NewNumeric("price")
	maxPrice := 50.0
	_ = prices.AddRange("cheap", nil, &maxPrice)

	set := facet.NewSet()
	_ = set.Add("types", types)
	_ = set.Add("prices", prices)

	_, facets, err := DecodeMetadata([]byte(facetMetadata), set)
	if err != nil {
		t.Fatalf("DecodeMetadata: %v", err)
	}
	if got := facets["types"].Terms(); len(got) != 2 || got[0].Term != "hotel" {
		t.Errorf("types terms = %v", got)
	}
	p := facets["prices"]
	if p.NumericRanges() != nil {
		t.Errorf("prices ranges = %v, want unset without limit", p.NumericRanges())
	}
	if p.Total() != 9 || p.Field() != "price" || p.Name() != "prices" {
		t.Errorf("prices aggregate = %+v", p)
	}
}

func TestMapResponse(t *testing.T) {
	base, _ := options.New(options.WithSerializer(&countingSerializer{}))
	d, err := request.Build("idx", request.FromQuery(query.NewMatchAll()), base)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	rows := [][]byte{
		[]byte(`{"id":"a","score":2,"fields":{"n":1}}`),
		[]byte(`{"id":"b","score":1}`),
	}
	resp, err := MapResponse(d, rows, []byte(facetMetadata))
	if err != nil {
		t.Fatalf("MapResponse: %v", err)
	}
	if len(resp.Rows) != 2 || resp.Rows[1].ID() != "b" {
		t.Errorf("rows = %v", resp.Rows)
	}
	if got := resp.FacetNames(); len(got) != 2 || got[0] != "prices" {
		t.Errorf("FacetNames() = %v", got)
	}
	if resp.Metadata.Metrics().SuccessPartitionCount() != 1 {
		t.Errorf("metadata = %+v", resp.Metadata)
	}

	if _, err := MapResponse(d, [][]byte{[]byte(`[`)}, []byte(`{}`)); err == nil {
		t.Error("expected error for malformed row")
	}
}
