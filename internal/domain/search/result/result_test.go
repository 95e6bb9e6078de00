package result

import (
	"errors"
	"reflect"
	"testing"

	"github.com/kailas-cloud/fts/internal/domain"
)

func TestNewRow(t *testing.T) {
	r := NewRow(RowData{
		Index:     "idx_1",
		ID:        "doc-1",
		Score:     0.95,
		Fields:    map[string]any{"name": "hotel"},
		Fragments: map[string][]string{"name": {"<mark>hotel</mark>"}},
	})

	if r.Index() != "idx_1" || r.ID() != "doc-1" || r.Score() != 0.95 {
		t.Errorf("row = %q %q %f", r.Index(), r.ID(), r.Score())
	}
	if r.Fields()["name"] != "hotel" {
		t.Errorf("Fields() = %v", r.Fields())
	}
	if r.Locations() != nil {
		t.Error("Locations() != nil without locations")
	}
	if len(r.Fragments()["name"]) != 1 {
		t.Errorf("Fragments() = %v", r.Fragments())
	}
}

func TestNewRow_EmptyFieldsAreNil(t *testing.T) {
	r := NewRow(RowData{ID: "doc", Fields: map[string]any{}})
	if r.Fields() != nil {
		t.Errorf("Fields() = %v, want nil", r.Fields())
	}
}

func TestLocations(t *testing.T) {
	locs := NewLocations([]Location{
		{Field: "name", Term: "hotel", Position: 1, Start: 0, End: 5},
		{Field: "desc", Term: "sea", Position: 4, Start: 20, End: 23, ArrayPositions: []uint32{0}},
		{Field: "name", Term: "hotel", Position: 3, Start: 10, End: 15},
		{Field: "desc", Term: "hotel", Position: 1, Start: 0, End: 5},
	})

	if len(locs.All()) != 4 {
		t.Errorf("All() len = %d", len(locs.All()))
	}
	got, err := locs.Get("name", "hotel")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got) != 2 || got[1].Position != 3 {
		t.Errorf("Get() = %v", got)
	}
	if !reflect.DeepEqual(locs.Fields(), []string{"desc", "name"}) {
		t.Errorf("Fields() = %v", locs.Fields())
	}
	if !reflect.DeepEqual(locs.Terms("desc"), []string{"hotel", "sea"}) {
		t.Errorf("Terms() = %v", locs.Terms("desc"))
	}
}

func TestLocations_GetNotFound(t *testing.T) {
	locs := NewLocations([]Location{{Field: "name", Term: "hotel"}})

	_, err := locs.Get("name", "motel")
	if !errors.Is(err, domain.ErrLookupNotFound) {
		t.Errorf("err = %v, want ErrLookupNotFound", err)
	}
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("err = %v, want ErrInvalidArgument", err)
	}
}

func TestMetrics_TotalPartitionCount(t *testing.T) {
	tests := []struct {
		success, failed, want uint64
	}{
		{1, 0, 1},
		{3, 2, 5},
		{0, 0, 0},
	}
	for _, tt := range tests {
		m := NewMetrics(1000, 10, 1.2, tt.success, tt.failed)
		if got := m.TotalPartitionCount(); got != tt.want {
			t.Errorf("TotalPartitionCount(%d, %d) = %d, want %d", tt.success, tt.failed, got, tt.want)
		}
	}
}

func TestMetadata(t *testing.T) {
	errs := map[string]string{"pindex_1": "timeout"}
	md := NewMetadata("ctx", NewMetrics(5, 1, 1, 1, 1), errs)

	if md.ClientContextID() != "ctx" || !md.Partial() {
		t.Errorf("metadata = %q partial=%v", md.ClientContextID(), md.Partial())
	}
	got := md.Errors()
	got["other"] = "x"
	if len(md.Errors()) != 1 {
		t.Error("Errors() exposes internal map")
	}
}

func TestFacetResult(t *testing.T) {
	f := NewFacetResult(FacetData{
		Name: "types", Field: "type", Total: 10, Missing: 1, Other: 2,
		Terms: []TermFacet{{Term: "hotel", Count: 7}, {Term: "inn", Count: 1}},
	})
	if f.Name() != "types" || f.Field() != "type" || f.Total() != 10 || f.Missing() != 1 || f.Other() != 2 {
		t.Errorf("facet = %+v", f)
	}
	if len(f.Terms()) != 2 || f.NumericRanges() != nil || f.DateRanges() != nil {
		t.Errorf("buckets = %v %v %v", f.Terms(), f.NumericRanges(), f.DateRanges())
	}
}
