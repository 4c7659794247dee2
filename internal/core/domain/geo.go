package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Coordinate represents a geographic coordinate (WGS 84).
type Coordinate struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

// LatLngBounds is the visible rectangle of a map, identified by its corners.
type LatLngBounds struct {
	NorthEast Coordinate `json:"ne"`
	SouthWest Coordinate `json:"sw"`
}

// Contains reports whether c lies inside the bounds. Edges are inclusive.
// A south-west longitude greater than the north-east one means the bounds
// cross the antimeridian.
func (b LatLngBounds) Contains(c Coordinate) bool {
	if c.Latitude < b.SouthWest.Latitude || c.Latitude > b.NorthEast.Latitude {
		return false
	}
	west, east := b.SouthWest.Longitude, b.NorthEast.Longitude
	if west <= east {
		return c.Longitude >= west && c.Longitude <= east
	}
	return c.Longitude >= west || c.Longitude <= east
}

// IsZero reports whether no bounds have been reported yet.
func (b LatLngBounds) IsZero() bool {
	return b == LatLngBounds{}
}

// BoundingBox is the four-number box sent to the weather provider.
type BoundingBox [4]float64

// BBoxFromBounds flattens map bounds into the provider's bbox order:
// [ne.lng, sw.lat, sw.lng, ne.lat]. The order is part of the wire format.
func BBoxFromBounds(b LatLngBounds) BoundingBox {
	return BoundingBox{
		b.NorthEast.Longitude,
		b.SouthWest.Latitude,
		b.SouthWest.Longitude,
		b.NorthEast.Latitude,
	}
}

// String joins the four numbers with commas using the shortest exact
// decimal form of each.
func (bb BoundingBox) String() string {
	parts := make([]string, len(bb))
	for i, v := range bb {
		parts[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strings.Join(parts, ",")
}

// ParseBoundingBox parses "a,b,c,d" into a BoundingBox.
func ParseBoundingBox(s string) (BoundingBox, error) {
	var bb BoundingBox
	parts := strings.Split(s, ",")
	if len(parts) != len(bb) {
		return bb, fmt.Errorf("%w: expected 4 comma-separated numbers, got %d", ErrInvalidBBox, len(parts))
	}
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return bb, fmt.Errorf("%w: %q is not a number", ErrInvalidBBox, p)
		}
		bb[i] = v
	}
	return bb, nil
}
