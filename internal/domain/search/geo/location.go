// Package geo holds the geographic value types shared by geo queries and geo sorts.
package geo

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strings"
)

// Location is a point on the globe. It encodes as [lon, lat].
type Location struct {
	Lon float64
	Lat float64
}

// Point creates a Location from longitude and latitude.
func Point(lon, lat float64) *Location {
	return &Location{Lon: lon, Lat: lat}
}

// Validate checks that the coordinates are finite and within range.
func (l Location) Validate() error {
	if math.IsNaN(l.Lon) || math.IsNaN(l.Lat) {
		return fmt.Errorf("coordinates must be numbers")
	}
	if l.Lon < -180 || l.Lon > 180 {
		return fmt.Errorf("longitude %v out of range [-180, 180]", l.Lon)
	}
	if l.Lat < -90 || l.Lat > 90 {
		return fmt.Errorf("latitude %v out of range [-90, 90]", l.Lat)
	}
	return nil
}

// Encodable returns the wire form [lon, lat].
func (l Location) Encodable() []float64 {
	return []float64{l.Lon, l.Lat}
}

// MarshalJSON implements json.Marshaler.
func (l Location) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.Encodable()) //nolint:wrapcheck // plain slice
}

// Units accepted in distances and geo sorts.
var Units = []string{"mm", "cm", "m", "km", "in", "ft", "yd", "mi", "nm"}

var distanceRegex = regexp.MustCompile(`^([0-9]+(?:\.[0-9]+)?)([a-z]+)$`)

// ValidateDistance checks a distance string such as "10mi" or "3.5km".
func ValidateDistance(d string) error {
	m := distanceRegex.FindStringSubmatch(strings.TrimSpace(d))
	if m == nil {
		return fmt.Errorf("distance %q must be a number followed by a unit", d)
	}
	if !IsUnit(m[2]) {
		return fmt.Errorf("distance %q has unknown unit %q", d, m[2])
	}
	return nil
}

// IsUnit reports whether u is a supported distance unit.
func IsUnit(u string) bool {
	for _, known := range Units {
		if u == known {
			return true
		}
	}
	return false
}
