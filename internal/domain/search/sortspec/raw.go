package sortspec

import (
	"maps"
	"strings"

	"github.com/kailas-cloud/fts/internal/domain"
	"github.com/kailas-cloud/fts/internal/domain/search/geo"
)

// Shorthand is a sort written as a field name, "-" prefixed for descending.
// "_score" and "_id" select score and id sorts.
type Shorthand string

// Encodable implements Spec.
func (s Shorthand) Encodable() (map[string]any, error) {
	name := string(s)
	desc := false
	if strings.HasPrefix(name, "-") {
		desc = true
		name = name[1:]
	}
	if name == "" {
		return nil, domain.InvalidArgument("empty sort shorthand %q", string(s))
	}

	var out map[string]any
	switch name {
	case "_score":
		out = map[string]any{"by": ByKindScore}
	case "_id":
		out = map[string]any{"by": ByKindID}
	default:
		out = map[string]any{"by": ByKindField, "field": name}
	}
	if desc {
		out["desc"] = true
	}
	return out, nil
}

// Raw passes a caller-built sort object through. A legacy "descending" key
// is renamed to "desc".
type Raw struct {
	payload map[string]any
}

// NewRaw creates a raw sort.
func NewRaw(payload map[string]any) (*Raw, error) {
	if len(payload) == 0 {
		return nil, domain.NewMissingField("payload")
	}
	p, err := domain.CloneObject(payload)
	if err != nil {
		return nil, err
	}
	return &Raw{payload: p}, nil
}

// Encodable implements Spec.
func (s *Raw) Encodable() (map[string]any, error) {
	out, _ := domain.CopyTree(s.payload).(map[string]any)
	return normalizeDescending(out), nil
}

func normalizeDescending(m map[string]any) map[string]any {
	if v, ok := m["descending"]; ok {
		if _, has := m["desc"]; !has {
			m["desc"] = v
		}
		delete(m, "descending")
	}
	return m
}

// FromMap decodes a sort object of the form {"by": kind, ...}. Known kinds
// become typed specs; anything else is kept as Raw.
func FromMap(m map[string]any) (Spec, error) {
	if len(m) == 0 {
		return nil, domain.NewMissingField("by")
	}
	m = normalizeDescending(maps.Clone(m))
	desc, _ := m["desc"].(bool)
	field, _ := m["field"].(string)

	by, _ := m["by"].(string)
	switch by {
	case ByKindScore:
		return ByScore().Desc(desc), nil
	case ByKindID:
		return ByID().Desc(desc), nil
	case ByKindField:
		s, err := ByField(field)
		if err != nil {
			return nil, err
		}
		typ, _ := m["type"].(string)
		mode, _ := m["mode"].(string)
		missing, _ := m["missing"].(string)
		return s.Type(FieldType(typ)).Mode(FieldMode(mode)).Missing(FieldMissing(missing)).Desc(desc), nil
	case ByKindGeoDistance:
		loc, err := locationFrom(m["location"])
		if err != nil {
			return nil, err
		}
		s, err := ByGeoDistance(field, loc)
		if err != nil {
			return nil, err
		}
		unit, _ := m["unit"].(string)
		return s.Unit(unit).Desc(desc), nil
	default:
		return NewRaw(m)
	}
}

func locationFrom(v any) (*geo.Location, error) {
	switch loc := v.(type) {
	case nil:
		return nil, domain.NewMissingField("location")
	case []any:
		if len(loc) != 2 {
			return nil, domain.InvalidArgument("location must be [lon, lat]")
		}
		lon, ok1 := toFloat(loc[0])
		lat, ok2 := toFloat(loc[1])
		if !ok1 || !ok2 {
			return nil, domain.InvalidArgument("location must be numeric")
		}
		return geo.Point(lon, lat), nil
	case map[string]any:
		lon, ok1 := toFloat(loc["lon"])
		lat, ok2 := toFloat(loc["lat"])
		if !ok1 || !ok2 {
			return nil, domain.InvalidArgument("location must have numeric lon and lat")
		}
		return geo.Point(lon, lat), nil
	default:
		return nil, domain.InvalidArgument("location has unsupported type %T", v)
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}
