package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/oklog/ulid/v2"

	"github.com/samirrijal/weathermap/internal/core/domain"
	"github.com/samirrijal/weathermap/internal/core/ports"
)

// CreateMarkers builds one marker per observation and adds each to m as it
// is created. Markers whose AddMarker call failed are still returned; the
// failures are joined into the error.
func CreateMarkers(ctx context.Context, m ports.Map, observations []domain.Observation) ([]*domain.Marker, error) {
	markers := make([]*domain.Marker, 0, len(observations))
	var errs []error

	for _, obs := range observations {
		mk := NewMarker(obs)
		if err := m.AddMarker(ctx, mk); err != nil {
			errs = append(errs, fmt.Errorf("add marker %s: %w", mk.ID, err))
		}
		markers = append(markers, mk)
	}

	return markers, errors.Join(errs...)
}

// NewMarker describes the marker for a single observation.
func NewMarker(obs domain.Observation) *domain.Marker {
	description := "N/A"
	var icon string
	if cond, ok := obs.PrimaryCondition(); ok {
		icon = cond.Icon
		if cond.Description != "" {
			description = cond.Description
		}
	}

	return &domain.Marker{
		ID:          ulid.Make().String(),
		Position:    obs.Coord,
		Title:       fmt.Sprintf("%s, %s", obs.Name, description),
		Icon:        domain.IconURL(icon),
		Observation: obs,
	}
}
