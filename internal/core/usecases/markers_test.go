package usecases_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/samirrijal/weathermap/internal/core/domain"
	"github.com/samirrijal/weathermap/internal/core/usecases"
)

func TestCreateMarkers(t *testing.T) {
	fm := newFakeMap(bilbaoBounds)
	obs := []domain.Observation{observation("Bilbao", 43.26, -2.93), observation("Getxo", 43.35, -3.01)}

	markers, err := usecases.CreateMarkers(context.Background(), fm, obs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(markers) != 2 {
		t.Fatalf("expected 2 markers, got %d", len(markers))
	}
	if len(fm.Visible()) != 2 {
		t.Errorf("expected markers added to map, got %d visible", len(fm.Visible()))
	}

	m := markers[0]
	if m.Title != "Bilbao, light rain" {
		t.Errorf("unexpected title %q", m.Title)
	}
	if m.Icon != "http://openweathermap.org/img/wn/10d@2x.png" {
		t.Errorf("unexpected icon %q", m.Icon)
	}
	if m.Position != obs[0].Coord {
		t.Errorf("expected marker at observation coordinate, got %+v", m.Position)
	}
	if m.Observation.Name != "Bilbao" {
		t.Error("expected marker to carry its observation")
	}
	if markers[0].ID == markers[1].ID || m.ID == "" {
		t.Error("expected unique marker ids")
	}
}

func TestCreateMarkers_NoCondition(t *testing.T) {
	fm := newFakeMap(bilbaoBounds)
	obs := observation("Yafran", 32.06, 12.52)
	obs.Weather = []domain.Condition{}

	markers, err := usecases.CreateMarkers(context.Background(), fm, []domain.Observation{obs})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasSuffix(markers[0].Title, ", N/A") {
		t.Errorf("expected title to end with N/A, got %q", markers[0].Title)
	}
	if markers[0].Icon != "http://openweathermap.org/img/wn/undefined@2x.png" {
		t.Errorf("unexpected icon %q", markers[0].Icon)
	}
}

func TestCreateMarkers_AddFailure(t *testing.T) {
	fm := newFakeMap(bilbaoBounds)
	fm.addErr = errors.New("socket closed")

	markers, err := usecases.CreateMarkers(context.Background(), fm,
		[]domain.Observation{observation("Bilbao", 43.26, -2.93)})
	if err == nil || !strings.Contains(err.Error(), "socket closed") {
		t.Fatalf("expected joined add error, got %v", err)
	}
	if len(markers) != 1 {
		t.Errorf("expected marker returned despite failure, got %d", len(markers))
	}
}
