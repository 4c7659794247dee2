package ports

import (
	"context"

	"github.com/samirrijal/weathermap/internal/core/domain"
)

// Unsubscribe removes a previously registered event handler.
// Calling it more than once is a no-op.
type Unsubscribe func()

// Map is the map widget a session draws on.
type Map interface {
	// Bounds returns the currently visible rectangle.
	Bounds() domain.LatLngBounds
	// AddMarker renders a marker.
	AddMarker(ctx context.Context, m *domain.Marker) error
	// RemoveMarker takes a marker off the map.
	RemoveMarker(ctx context.Context, id string) error
	// OnBoundsChanged registers a handler for viewport changes.
	OnBoundsChanged(handler func()) Unsubscribe
	// OnMarkerClick registers a click handler for one marker.
	OnMarkerClick(markerID string, handler func()) Unsubscribe
	// NewInfoWindow creates a popup overlay bound to this map.
	NewInfoWindow() InfoWindow
}

// InfoWindow is a popup anchored to a marker.
type InfoWindow interface {
	SetContent(html string)
	Open(ctx context.Context, markerID string) error
	Close(ctx context.Context) error
}

// MapFactory creates a map centered on a coordinate.
type MapFactory interface {
	NewMap(ctx context.Context, center domain.Coordinate, zoom int) (Map, error)
}

// Geolocator reports the user's current position.
type Geolocator interface {
	CurrentPosition(ctx context.Context) (domain.Coordinate, error)
}

// Notifier shows a blocking alert to the user.
type Notifier interface {
	Alert(ctx context.Context, message string) error
}
