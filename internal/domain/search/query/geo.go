package query

import "github.com/kailas-cloud/fts/internal/domain/search/geo"

// GeoDistance matches documents within a distance of a point.
type GeoDistance struct {
	common
	fielded
	location geo.Location
	distance string
}

// NewGeoDistance creates a geo distance query. distance is a number followed
// by a unit, e.g. "10mi".
func NewGeoDistance(location *geo.Location, distance string) (*GeoDistance, error) {
	if location == nil {
		return nil, missing("location")
	}
	if distance == "" {
		return nil, missing("distance")
	}
	return &GeoDistance{location: *location, distance: distance}, nil
}

// Validate implements Query.
func (q *GeoDistance) Validate() error {
	if err := q.location.Validate(); err != nil {
		return invalid("location: %v", err)
	}
	if err := geo.ValidateDistance(q.distance); err != nil {
		return invalid("%v", err)
	}
	return nil
}

// Encodable implements Query.
func (q *GeoDistance) Encodable() (map[string]any, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	out := map[string]any{
		"location": q.location.Encodable(),
		"distance": q.distance,
	}
	q.encodeCommon(out)
	q.encodeField(out)
	return out, nil
}

// GeoBoundingBox matches documents inside a rectangle.
type GeoBoundingBox struct {
	common
	fielded
	topLeft     geo.Location
	bottomRight geo.Location
}

// NewGeoBoundingBox creates a bounding box query. Both corners are required.
func NewGeoBoundingBox(topLeft, bottomRight *geo.Location) (*GeoBoundingBox, error) {
	if topLeft == nil {
		return nil, missing("top_left")
	}
	if bottomRight == nil {
		return nil, missing("bottom_right")
	}
	return &GeoBoundingBox{topLeft: *topLeft, bottomRight: *bottomRight}, nil
}

// Validate implements Query.
func (q *GeoBoundingBox) Validate() error {
	if err := q.topLeft.Validate(); err != nil {
		return invalid("top_left: %v", err)
	}
	if err := q.bottomRight.Validate(); err != nil {
		return invalid("bottom_right: %v", err)
	}
	return nil
}

// Encodable implements Query.
func (q *GeoBoundingBox) Encodable() (map[string]any, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	out := map[string]any{
		"top_left":     q.topLeft.Encodable(),
		"bottom_right": q.bottomRight.Encodable(),
	}
	q.encodeCommon(out)
	q.encodeField(out)
	return out, nil
}

// GeoPolygon matches documents inside a polygon.
type GeoPolygon struct {
	common
	fielded
	points []geo.Location
}

// NewGeoPolygon creates a polygon query from its vertices.
func NewGeoPolygon(points []geo.Location) (*GeoPolygon, error) {
	if len(points) == 0 {
		return nil, missing("polygon_points")
	}
	return &GeoPolygon{points: append([]geo.Location(nil), points...)}, nil
}

// Validate implements Query.
func (q *GeoPolygon) Validate() error {
	if len(q.points) < 3 {
		return invalid("polygon needs at least 3 points, got %d", len(q.points))
	}
	for i, p := range q.points {
		if err := p.Validate(); err != nil {
			return invalid("polygon_points[%d]: %v", i, err)
		}
	}
	return nil
}

// Encodable implements Query.
func (q *GeoPolygon) Encodable() (map[string]any, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	points := make([][]float64, len(q.points))
	for i, p := range q.points {
		points[i] = p.Encodable()
	}
	out := map[string]any{"polygon_points": points}
	q.encodeCommon(out)
	q.encodeField(out)
	return out, nil
}
