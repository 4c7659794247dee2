package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/goccy/go-json"

	"github.com/samirrijal/weathermap/internal/core/domain"
	"github.com/samirrijal/weathermap/internal/core/ports"
	"github.com/samirrijal/weathermap/internal/pkg/geospatial"
	"github.com/samirrijal/weathermap/internal/pkg/metrics"
)

// WeatherService fetches observations for bounding boxes.
type WeatherService struct {
	provider ports.WeatherProvider
	cache    ports.CacheService
	cacheTTL int
}

// NewWeatherService creates a new WeatherService. cache may be nil; a
// cacheTTL of zero or less disables caching.
func NewWeatherService(provider ports.WeatherProvider, cache ports.CacheService, cacheTTL int) *WeatherService {
	return &WeatherService{provider: provider, cache: cache, cacheTTL: cacheTTL}
}

// ProviderName returns the name of the underlying provider.
func (s *WeatherService) ProviderName() string {
	return s.provider.Name()
}

// Fetch returns the observations inside bbox.
func (s *WeatherService) Fetch(ctx context.Context, bbox domain.BoundingBox) ([]domain.Observation, error) {
	caching := s.cache != nil && s.cacheTTL > 0
	cacheKey := "weather:box:" + bbox.String()

	if caching {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var list []domain.Observation
			if err := json.Unmarshal(data, &list); err == nil {
				metrics.CacheHits.WithLabelValues("box_city").Inc()
				return list, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("box_city").Inc()
	}

	list, err := s.provider.BoxCity(ctx, bbox)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []domain.Observation{}
	}

	if caching {
		if data, err := json.Marshal(list); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, s.cacheTTL)
		}
	}

	return list, nil
}

// Near returns the observations within radiusMeters of center, closest
// first. It queries the square enclosing the circle.
func (s *WeatherService) Near(ctx context.Context, center domain.Coordinate, radiusMeters float64) ([]domain.NearbyObservation, error) {
	south, west, north, east := geospatial.Square(center.Latitude, center.Longitude, radiusMeters)
	bounds := domain.LatLngBounds{
		NorthEast: domain.Coordinate{Latitude: north, Longitude: east},
		SouthWest: domain.Coordinate{Latitude: south, Longitude: west},
	}

	list, err := s.Fetch(ctx, domain.BBoxFromBounds(bounds))
	if err != nil {
		return nil, err
	}

	near := make([]domain.NearbyObservation, 0, len(list))
	for _, obs := range list {
		d := geospatial.Haversine(center.Latitude, center.Longitude, obs.Coord.Latitude, obs.Coord.Longitude)
		if d <= radiusMeters {
			near = append(near, domain.NearbyObservation{Observation: obs, Distance: d})
		}
	}
	sort.SliceStable(near, func(i, j int) bool { return near[i].Distance < near[j].Distance })
	return near, nil
}

// Observations is Fetch for map sessions. It never fails: any error is
// shown to the user through notifier and an empty list is returned.
func (s *WeatherService) Observations(ctx context.Context, bbox domain.BoundingBox, notifier ports.Notifier) []domain.Observation {
	list, err := s.Fetch(ctx, bbox)
	if err == nil {
		return list
	}

	slog.WarnContext(ctx, "weather fetch failed", "bbox", bbox.String(), "error", err)

	reason := err.Error()
	var perr *domain.ProviderError
	if errors.As(err, &perr) {
		reason = perr.Message
	}
	if notifier != nil {
		if aerr := notifier.Alert(ctx, FailureAlert(reason)); aerr != nil {
			slog.WarnContext(ctx, "alert delivery failed", "error", aerr)
		} else {
			metrics.AlertsSent.Inc()
		}
	}
	return []domain.Observation{}
}

// FailureAlert formats the alert text shown when a fetch fails.
func FailureAlert(reason string) string {
	return fmt.Sprintf("Failed to fetch weather data.\nReason: %s", reason)
}
