// Package fts builds full-text search requests, sends them to a search
// execution engine and maps the streamed response into typed rows, facets
// and metadata.
//
// # Building requests
//
// Queries are trees of nodes. Construction only fails when a required value
// is absent; everything else (empty compound queries, ranges without a
// bound, bad option values) is reported when the request is encoded.
//
//	match, _ := fts.NewMatch("sea view")
//	match.SetField("description")
//	stars := fts.NewNumericRange()
//	stars.SetMin(4)
//	stars.SetField("stars")
//	req := fts.FromQuery(fts.NewConjunction(match, stars))
//
// # Executing
//
//	client, _ := fts.New(fts.WithEndpoint("http://localhost:8094/api/query"))
//	res, _ := client.Search(ctx, "hotels", req, fts.WithLimit(10))
//	defer res.Close()
//	for row, err := range res.Rows(ctx) {
//	    ...
//	}
//	md, _ := res.Metadata(ctx)
//
// Rows can be read once, either through Rows or through Stream. Metadata and
// facets become available after the last row.
//
// # Search documents
//
// A search document is a JSON or YAML object holding the index, query,
// vector search, facets, sort and options of one request:
//
//	resp, _ := client.SearchDocument(ctx, []byte(`
//	index: hotels
//	query: {match: sea view, field: description}
//	limit: 10
//	facets:
//	  types: {field: type, size: 5}
//	`))
package fts
