package ports

import (
	"context"

	"github.com/samirrijal/weathermap/internal/core/domain"
)

// WeatherProvider fetches observations inside a bounding box.
type WeatherProvider interface {
	Name() string
	BoxCity(ctx context.Context, bbox domain.BoundingBox) ([]domain.Observation, error)
}

// EventPublisher publishes session events to a message broker.
type EventPublisher interface {
	PublishRefresh(ctx context.Context, ev *domain.RefreshEvent) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
