package fts

import (
	"github.com/kailas-cloud/fts/internal/domain/search/consistency"
	"github.com/kailas-cloud/fts/internal/domain/search/facet"
	"github.com/kailas-cloud/fts/internal/domain/search/geo"
	"github.com/kailas-cloud/fts/internal/domain/search/options"
	"github.com/kailas-cloud/fts/internal/domain/search/query"
	"github.com/kailas-cloud/fts/internal/domain/search/request"
	"github.com/kailas-cloud/fts/internal/domain/search/result"
	"github.com/kailas-cloud/fts/internal/domain/search/sortspec"
	"github.com/kailas-cloud/fts/internal/domain/search/vector"
	"github.com/kailas-cloud/fts/internal/querydoc"
	searchuc "github.com/kailas-cloud/fts/internal/usecase/search"
)

// Request building blocks.
type (
	Query         = query.Query
	Request       = request.Request
	VectorQuery   = vector.Query
	VectorSearch  = vector.Search
	Facet         = facet.Facet
	FacetSet      = facet.Set
	SortSpec      = sortspec.Spec
	Location      = geo.Location
	SearchOption  = options.Option
	SearchOptions = options.Options
	Document      = querydoc.Document
)

// Consistency.
type (
	ConsistencyMode = consistency.Mode
	MutationToken   = consistency.MutationToken
	MutationState   = consistency.MutationState
)

// Results.
type (
	Result      = searchuc.Result
	Item        = searchuc.Item
	Response    = result.Response
	Row         = result.Row
	Locations   = result.Locations
	Metadata    = result.Metadata
	Metrics     = result.Metrics
	FacetResult = result.FacetResult
)

// Enumerations.
const (
	NotBounded  = consistency.NotBounded
	RequestPlus = consistency.RequestPlus

	HighlightHTML = options.HighlightHTML
	HighlightANSI = options.HighlightANSI

	MatchOr  = query.MatchOr
	MatchAnd = query.MatchAnd

	VectorAnd = vector.And
	VectorOr  = vector.Or
)

// Query constructors.
var (
	NewMatch          = query.NewMatch
	NewMatchPhrase    = query.NewMatchPhrase
	NewTerm           = query.NewTerm
	NewPhrase         = query.NewPhrase
	NewPrefix         = query.NewPrefix
	NewRegex          = query.NewRegex
	NewWildcard       = query.NewWildcard
	NewQueryString    = query.NewQueryString
	NewDocID          = query.NewDocID
	NewBooleanField   = query.NewBooleanField
	NewNumericRange   = query.NewNumericRange
	NewDateRange      = query.NewDateRange
	NewTermRange      = query.NewTermRange
	NewConjunction    = query.NewConjunction
	NewDisjunction    = query.NewDisjunction
	NewBoolean        = query.NewBoolean
	NewMatchAll       = query.NewMatchAll
	NewMatchNone      = query.NewMatchNone
	NewGeoDistance    = query.NewGeoDistance
	NewGeoBoundingBox = query.NewGeoBoundingBox
	NewGeoPolygon     = query.NewGeoPolygon
	NewRawQuery       = query.NewRaw
	Point             = geo.Point
)

// Request and vector constructors.
var (
	FromQuery      = request.FromQuery
	FromVector     = request.FromVector
	NewRequest     = request.New
	NewVectorQuery = vector.NewQuery
	NewBase64VectorQuery = vector.NewBase64Query
	NewVectorSearch = vector.NewSearch
)

// Facet, sort and consistency constructors.
var (
	NewTermFacet     = facet.NewTerm
	NewNumericFacet  = facet.NewNumeric
	NewDateFacet     = facet.NewDate
	NewFacetSet      = facet.NewSet
	ByScore          = sortspec.ByScore
	ByID             = sortspec.ByID
	ByField          = sortspec.ByField
	ByGeoDistance    = sortspec.ByGeoDistance
	NewMutationState = consistency.NewState
)

// Search options.
var (
	NewSearchOptions     = options.New
	WithLimit            = options.WithLimit
	WithSkip             = options.WithSkip
	WithExplain          = options.WithExplain
	WithDisableScoring   = options.WithDisableScoring
	WithIncludeLocations = options.WithIncludeLocations
	WithShowRequest      = options.WithShowRequest
	WithMetrics          = options.WithMetrics
	WithFields           = options.WithFields
	WithHighlight        = options.WithHighlight
	WithCollections      = options.WithCollections
	WithScopeName        = options.WithScopeName
	WithClientContextID  = options.WithClientContextID
	WithTimeout          = options.WithTimeout
	WithSerializer       = options.WithSerializer
	WithRaw              = options.WithRaw
	WithScanConsistency  = options.WithScanConsistency
	WithConsistentWith   = options.WithConsistentWith
	WithFacet            = options.WithFacet
	WithFacets           = options.WithFacets
	WithSort             = options.WithSort
	WithValue            = options.WithValue
)

// DecodeDocument parses a JSON or YAML search document.
func DecodeDocument(data []byte) (*Document, error) {
	doc, err := querydoc.Decode(data)
	if err != nil {
		return nil, err //nolint:wrapcheck // domain errors pass through
	}
	return doc, nil
}
