package result

import (
	"fmt"
	"slices"

	"github.com/kailas-cloud/fts/internal/domain"
)

// Location is one occurrence of a term in a field.
type Location struct {
	Field          string
	Term           string
	Position       uint32
	Start          uint32
	End            uint32
	ArrayPositions []uint32
}

// Locations indexes the term locations of a row.
type Locations struct {
	all []Location
}

// NewLocations creates an index over locs, keeping their order.
func NewLocations(locs []Location) *Locations {
	return &Locations{all: slices.Clone(locs)}
}

// All returns every location.
func (l *Locations) All() []Location { return slices.Clone(l.all) }

// Get returns the locations of term in field.
func (l *Locations) Get(field, term string) ([]Location, error) {
	var out []Location
	for _, loc := range l.all {
		if loc.Field == field && loc.Term == term {
			out = append(out, loc)
		}
	}
	if out == nil {
		return nil, fmt.Errorf("%w: %w: location %s/%s", domain.ErrLookupNotFound, domain.ErrInvalidArgument, field, term)
	}
	return out, nil
}

// Fields returns the distinct fields in sorted order.
func (l *Locations) Fields() []string {
	out := make([]string, 0, len(l.all))
	for _, loc := range l.all {
		out = append(out, loc.Field)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// Terms returns the distinct terms found in field in sorted order.
func (l *Locations) Terms(field string) []string {
	var out []string
	for _, loc := range l.all {
		if loc.Field == field {
			out = append(out, loc.Term)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
