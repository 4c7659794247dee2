package domain_test

import (
	"errors"
	"testing"

	"github.com/samirrijal/weathermap/internal/core/domain"
)

func TestBBoxFromBounds_Order(t *testing.T) {
	b := domain.LatLngBounds{
		NorthEast: domain.Coordinate{Latitude: 10, Longitude: 20},
		SouthWest: domain.Coordinate{Latitude: -5, Longitude: -15},
	}
	got := domain.BBoxFromBounds(b)
	want := domain.BoundingBox{20, -5, -15, 10}
	if got != want {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if s := got.String(); s != "20,-5,-15,10" {
		t.Errorf("expected 20,-5,-15,10, got %s", s)
	}
}

func TestBoundingBox_StringKeepsPrecision(t *testing.T) {
	bb := domain.BoundingBox{12.52859, 32.06329, 0.5, -0.25}
	if s := bb.String(); s != "12.52859,32.06329,0.5,-0.25" {
		t.Errorf("unexpected bbox string %s", s)
	}
}

func TestParseBoundingBox(t *testing.T) {
	bb, err := domain.ParseBoundingBox("12, 32,15.5,37")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bb != (domain.BoundingBox{12, 32, 15.5, 37}) {
		t.Errorf("unexpected bbox %v", bb)
	}

	for _, in := range []string{"", "1,2,3", "1,2,3,4,5", "a,2,3,4", "NaN,1,2,3"} {
		if _, err := domain.ParseBoundingBox(in); !errors.Is(err, domain.ErrInvalidBBox) {
			t.Errorf("%q: expected ErrInvalidBBox, got %v", in, err)
		}
	}
}

func TestLatLngBounds_Contains(t *testing.T) {
	b := domain.LatLngBounds{
		NorthEast: domain.Coordinate{Latitude: 10, Longitude: 20},
		SouthWest: domain.Coordinate{Latitude: -5, Longitude: -15},
	}
	tests := []struct {
		name string
		c    domain.Coordinate
		want bool
	}{
		{"inside", domain.Coordinate{Latitude: 0, Longitude: 0}, true},
		{"corner", domain.Coordinate{Latitude: 10, Longitude: 20}, true},
		{"north", domain.Coordinate{Latitude: 11, Longitude: 0}, false},
		{"west", domain.Coordinate{Latitude: 0, Longitude: -16}, false},
	}
	for _, tt := range tests {
		if got := b.Contains(tt.c); got != tt.want {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, got)
		}
	}
}

func TestLatLngBounds_ContainsAcrossAntimeridian(t *testing.T) {
	b := domain.LatLngBounds{
		NorthEast: domain.Coordinate{Latitude: 10, Longitude: -170},
		SouthWest: domain.Coordinate{Latitude: -10, Longitude: 170},
	}
	if !b.Contains(domain.Coordinate{Latitude: 0, Longitude: 179}) {
		t.Error("expected 179 to be inside")
	}
	if !b.Contains(domain.Coordinate{Latitude: 0, Longitude: -175}) {
		t.Error("expected -175 to be inside")
	}
	if b.Contains(domain.Coordinate{Latitude: 0, Longitude: 0}) {
		t.Error("expected 0 to be outside")
	}
}

func TestIconURL(t *testing.T) {
	if got := domain.IconURL("10d"); got != "http://openweathermap.org/img/wn/10d@2x.png" {
		t.Errorf("unexpected icon url %s", got)
	}
	if got := domain.IconURL(""); got != "http://openweathermap.org/img/wn/undefined@2x.png" {
		t.Errorf("unexpected icon url for missing code %s", got)
	}
}
