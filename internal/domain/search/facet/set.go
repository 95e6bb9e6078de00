package facet

import (
	"fmt"
	"maps"
	"slices"

	"github.com/kailas-cloud/fts/internal/domain"
)

// Set is the name -> facet mapping of a request.
type Set struct {
	facets map[string]Facet
}

// NewSet creates an empty facet set.
func NewSet() *Set {
	return &Set{facets: make(map[string]Facet)}
}

// Add registers f under name. Numeric and date facets must carry at least
// one range. Registering an existing name replaces it.
func (s *Set) Add(name string, f Facet) error {
	if name == "" {
		return domain.NewMissingField("facet name")
	}
	if f == nil {
		return domain.InvalidArgument("facet %q is nil", name)
	}
	if err := f.Validate(); err != nil {
		return fmt.Errorf("facet %q: %w", name, err)
	}
	if s.facets == nil {
		s.facets = make(map[string]Facet)
	}
	s.facets[name] = f
	return nil
}

// Get returns the facet registered under name.
func (s *Set) Get(name string) (Facet, bool) {
	f, ok := s.facets[name]
	return f, ok
}

// Len returns the number of registered facets.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.facets)
}

// Names returns the registered names in sorted order.
func (s *Set) Names() []string {
	return slices.Sorted(maps.Keys(s.facets))
}

// Clone returns a copy of the set. Facets themselves are shared.
func (s *Set) Clone() *Set {
	return &Set{facets: maps.Clone(s.facets)}
}

// Encodable returns the name -> JSON-ready facet mapping.
func (s *Set) Encodable() map[string]map[string]any {
	out := make(map[string]map[string]any, len(s.facets))
	for name, f := range s.facets {
		out[name] = f.Encodable()
	}
	return out
}
