package wire

import "encoding/json"

type locationJSON struct {
	Position       uint32   `json:"position"`
	Start          uint32   `json:"start"`
	End            uint32   `json:"end"`
	ArrayPositions []uint32 `json:"array_positions"`
}

type rowJSON struct {
	Index       string                               `json:"index"`
	ID          string                               `json:"id"`
	Score       float64                              `json:"score"`
	Fields      json.RawMessage                      `json:"fields"`
	Locations   map[string]map[string][]locationJSON `json:"locations"`
	Fragments   map[string][]string                  `json:"fragments"`
	Explanation json.RawMessage                      `json:"explanation"`
}

type metricsJSON struct {
	Took                  int64   `json:"took"`
	TotalRows             uint64  `json:"total_rows"`
	MaxScore              float64 `json:"max_score"`
	SuccessPartitionCount uint64  `json:"success_partition_count"`
	ErrorPartitionCount   uint64  `json:"error_partition_count"`
	TotalPartitionCount   *uint64 `json:"total_partition_count,omitempty"`
}

type termFacetJSON struct {
	Term  string `json:"term"`
	Count uint64 `json:"count"`
}

type numericFacetJSON struct {
	Name  string   `json:"name"`
	Min   *float64 `json:"min,omitempty"`
	Max   *float64 `json:"max,omitempty"`
	Count uint64   `json:"count"`
}

type dateFacetJSON struct {
	Name  string  `json:"name"`
	Start *string `json:"start,omitempty"`
	End   *string `json:"end,omitempty"`
	Count uint64  `json:"count"`
}

type facetJSON struct {
	Field         string             `json:"field"`
	Total         uint64             `json:"total"`
	Missing       uint64             `json:"missing"`
	Other         uint64             `json:"other"`
	Terms         []termFacetJSON    `json:"terms,omitempty"`
	NumericRanges []numericFacetJSON `json:"numeric_ranges,omitempty"`
	DateRanges    []dateFacetJSON    `json:"date_ranges,omitempty"`
}

type metadataJSON struct {
	ClientContextID string               `json:"client_context_id,omitempty"`
	Errors          map[string]string    `json:"errors,omitempty"`
	Metrics         metricsJSON          `json:"metrics"`
	Facets          map[string]facetJSON `json:"facets,omitempty"`
}
