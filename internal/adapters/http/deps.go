package http

import (
	"context"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/weathermap/internal/core/ports"
	"github.com/samirrijal/weathermap/internal/core/usecases"
)

// Pinger is a backing service that can report its own connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Weather *usecases.WeatherService
	Session usecases.SessionOptions
	Events  ports.EventPublisher // optional
	NATS    *nats.Conn           // optional, feeds the refresh relay
	Cache   Pinger               // optional

	// APIKeySet reports whether a provider key is configured.
	APIKeySet bool
}
