package mapws

import (
	"github.com/invopop/jsonschema"

	"github.com/samirrijal/weathermap/internal/core/domain"
)

// Client → server message types.
const (
	TypePosition      = "position"
	TypePositionError = "position_error"
	TypeBoundsChanged = "bounds_changed"
	TypeMarkerClick   = "marker_click"
)

// Server → client message types.
const (
	TypeLocate          = "locate"
	TypeMapInit         = "map_init"
	TypeMarkerAdd       = "marker_add"
	TypeMarkerRemove    = "marker_remove"
	TypeInfoWindow      = "info_window"
	TypeInfoWindowClose = "info_window_close"
	TypeAlert           = "alert"
	TypeError           = "error"
)

// ClientMessage is sent by the browser renderer.
type ClientMessage struct {
	Type     string               `json:"type" jsonschema:"enum=position,enum=position_error,enum=bounds_changed,enum=marker_click"`
	Position *domain.Coordinate   `json:"position,omitempty" jsonschema:"description=User position for type position"`
	Bounds   *domain.LatLngBounds `json:"bounds,omitempty" jsonschema:"description=Visible map rectangle for type bounds_changed"`
	MarkerID string               `json:"marker_id,omitempty"`
	Error    string               `json:"error,omitempty" jsonschema:"description=Geolocation failure reason for type position_error"`
}

// ServerMessage is sent to the browser renderer.
type ServerMessage struct {
	Type     string             `json:"type" jsonschema:"enum=locate,enum=map_init,enum=marker_add,enum=marker_remove,enum=info_window,enum=info_window_close,enum=alert,enum=error"`
	Center   *domain.Coordinate `json:"center,omitempty"`
	Zoom     int                `json:"zoom,omitempty"`
	Marker   *domain.Marker     `json:"marker,omitempty"`
	MarkerID string             `json:"marker_id,omitempty"`
	Content  string             `json:"content,omitempty" jsonschema:"description=HTML fragment for the info window"`
	Message  string             `json:"message,omitempty"`
}

// ProtocolSchema describes both directions of the map protocol.
type ProtocolSchema struct {
	Client *jsonschema.Schema `json:"client"`
	Server *jsonschema.Schema `json:"server"`
}

// Schema reflects the JSON Schema of the protocol messages.
func Schema() ProtocolSchema {
	r := &jsonschema.Reflector{}
	return ProtocolSchema{
		Client: r.Reflect(&ClientMessage{}),
		Server: r.Reflect(&ServerMessage{}),
	}
}
