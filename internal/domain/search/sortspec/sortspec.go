// Package sortspec models the sort order of search hits.
//
// Every form, including string shorthands, encodes to {"by": kind, ...,
// "desc": bool}. The order of a sort list is its priority, primary first.
package sortspec

import (
	"fmt"

	"github.com/kailas-cloud/fts/internal/domain"
	"github.com/kailas-cloud/fts/internal/domain/search/geo"
)

// Spec is a single sort criterion.
type Spec interface {
	Encodable() (map[string]any, error)
}

// Kinds of sort.
const (
	ByKindScore       = "score"
	ByKindID          = "id"
	ByKindField       = "field"
	ByKindGeoDistance = "geo_distance"
)

type direction struct {
	desc bool
}

func (d *direction) encodeDesc(out map[string]any) {
	if d.desc {
		out["desc"] = true
	}
}

// Score sorts by relevance score.
type Score struct {
	direction
}

// ByScore sorts by score, ascending unless Desc is set.
func ByScore() *Score { return &Score{} }

// Desc sets descending order.
func (s *Score) Desc(desc bool) *Score {
	s.desc = desc
	return s
}

// Encodable implements Spec.
func (s *Score) Encodable() (map[string]any, error) {
	out := map[string]any{"by": ByKindScore}
	s.encodeDesc(out)
	return out, nil
}

// ID sorts by document id.
type ID struct {
	direction
}

// ByID sorts by document id.
func ByID() *ID { return &ID{} }

// Desc sets descending order.
func (s *ID) Desc(desc bool) *ID {
	s.desc = desc
	return s
}

// Encodable implements Spec.
func (s *ID) Encodable() (map[string]any, error) {
	out := map[string]any{"by": ByKindID}
	s.encodeDesc(out)
	return out, nil
}

// FieldType is how field values are interpreted for sorting.
type FieldType string

// Field types.
const (
	FieldTypeAuto   FieldType = "auto"
	FieldTypeString FieldType = "string"
	FieldTypeNumber FieldType = "number"
	FieldTypeDate   FieldType = "date"
)

// FieldMode picks the value of a multi-valued field used for sorting.
type FieldMode string

// Field modes.
const (
	FieldModeDefault FieldMode = "default"
	FieldModeMin     FieldMode = "min"
	FieldModeMax     FieldMode = "max"
)

// FieldMissing places hits lacking the field.
type FieldMissing string

// Missing placements.
const (
	MissingFirst FieldMissing = "first"
	MissingLast  FieldMissing = "last"
)

// Field sorts by the value of an indexed field.
type Field struct {
	direction
	field   string
	typ     FieldType
	mode    FieldMode
	missing FieldMissing
}

// ByField sorts by field.
func ByField(field string) (*Field, error) {
	if field == "" {
		return nil, domain.NewMissingField("field")
	}
	return &Field{field: field}, nil
}

// Desc sets descending order.
func (s *Field) Desc(desc bool) *Field {
	s.desc = desc
	return s
}

// Type sets how the field is interpreted.
func (s *Field) Type(t FieldType) *Field {
	s.typ = t
	return s
}

// Mode sets which value of a multi-valued field is used.
func (s *Field) Mode(m FieldMode) *Field {
	s.mode = m
	return s
}

// Missing sets where hits without the field go.
func (s *Field) Missing(m FieldMissing) *Field {
	s.missing = m
	return s
}

// Encodable implements Spec.
func (s *Field) Encodable() (map[string]any, error) {
	switch s.typ {
	case "", FieldTypeAuto, FieldTypeString, FieldTypeNumber, FieldTypeDate:
	default:
		return nil, domain.InvalidArgument("sort field type %q", s.typ)
	}
	switch s.mode {
	case "", FieldModeDefault, FieldModeMin, FieldModeMax:
	default:
		return nil, domain.InvalidArgument("sort field mode %q", s.mode)
	}
	switch s.missing {
	case "", MissingFirst, MissingLast:
	default:
		return nil, domain.InvalidArgument("sort field missing %q", s.missing)
	}

	out := map[string]any{"by": ByKindField, "field": s.field}
	if s.typ != "" {
		out["type"] = string(s.typ)
	}
	if s.mode != "" {
		out["mode"] = string(s.mode)
	}
	if s.missing != "" {
		out["missing"] = string(s.missing)
	}
	s.encodeDesc(out)
	return out, nil
}

// GeoDistance sorts by distance from a point.
type GeoDistance struct {
	direction
	field    string
	location geo.Location
	unit     string
}

// ByGeoDistance sorts by distance of field from location.
func ByGeoDistance(field string, location *geo.Location) (*GeoDistance, error) {
	if field == "" {
		return nil, domain.NewMissingField("field")
	}
	if location == nil {
		return nil, domain.NewMissingField("location")
	}
	return &GeoDistance{field: field, location: *location}, nil
}

// Desc sets descending order.
func (s *GeoDistance) Desc(desc bool) *GeoDistance {
	s.desc = desc
	return s
}

// Unit sets the distance unit, e.g. "km".
func (s *GeoDistance) Unit(unit string) *GeoDistance {
	s.unit = unit
	return s
}

// Encodable implements Spec.
func (s *GeoDistance) Encodable() (map[string]any, error) {
	if err := s.location.Validate(); err != nil {
		return nil, domain.InvalidArgument("sort location: %v", err)
	}
	if s.unit != "" && !geo.IsUnit(s.unit) {
		return nil, domain.InvalidArgument("sort unit %q", s.unit)
	}
	out := map[string]any{
		"by":       ByKindGeoDistance,
		"field":    s.field,
		"location": s.location.Encodable(),
	}
	if s.unit != "" {
		out["unit"] = s.unit
	}
	s.encodeDesc(out)
	return out, nil
}

// Encode encodes a sort list in priority order.
func Encode(specs []Spec) ([]map[string]any, error) {
	out := make([]map[string]any, len(specs))
	for i, s := range specs {
		if s == nil {
			return nil, domain.InvalidArgument("sort[%d] is nil", i)
		}
		enc, err := s.Encodable()
		if err != nil {
			return nil, fmt.Errorf("sort[%d]: %w", i, err)
		}
		out[i] = enc
	}
	return out, nil
}

var (
	_ Spec = (*Score)(nil)
	_ Spec = (*ID)(nil)
	_ Spec = (*Field)(nil)
	_ Spec = (*GeoDistance)(nil)
	_ Spec = (*Raw)(nil)
	_ Spec = Shorthand("")
)
