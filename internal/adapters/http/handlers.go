package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/weathermap/internal/adapters/mapws"
	"github.com/samirrijal/weathermap/internal/core/domain"
)

// BoxResponse mirrors the provider's box/city body.
type BoxResponse struct {
	List []domain.Observation `json:"list"`
}

// WeatherBoxHandler returns observations inside ?bbox=w,s,e,n.
func WeatherBoxHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Query("bbox")
		if raw == "" {
			return errBadRequest(c, "bbox query parameter is required")
		}
		bbox, err := domain.ParseBoundingBox(raw)
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		obs, err := deps.Weather.Fetch(c.UserContext(), bbox)
		if err != nil {
			LoggerFromCtx(c.UserContext()).Warn("weather fetch failed",
				"bbox", bbox.String(), "error", err)
			return providerFailure(c, err)
		}

		c.Set("Cache-Control", "public, max-age=60")
		return c.JSON(BoxResponse{List: obs})
	}
}

// maxNearRadius caps /v1/weather/near at 50 km.
const maxNearRadius = 50000.0

// NearbyResponse lists observations closest first.
type NearbyResponse struct {
	List []domain.NearbyObservation `json:"list"`
}

// WeatherNearHandler returns observations within ?radius meters (default
// 10000) of ?lat and ?lng, closest first.
func WeatherNearHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Query("lat") == "" || c.Query("lng") == "" {
			return errBadRequest(c, "lat and lng are required")
		}
		lat := c.QueryFloat("lat", 0)
		lng := c.QueryFloat("lng", 0)
		radius := c.QueryFloat("radius", 10000)

		if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
			return errBadRequest(c, "lat must be within [-90, 90] and lng within [-180, 180]")
		}
		if radius <= 0 || radius > maxNearRadius {
			return errBadRequest(c, "radius must be between 1 and 50000 meters")
		}

		center := domain.Coordinate{Latitude: lat, Longitude: lng}
		near, err := deps.Weather.Near(c.UserContext(), center, radius)
		if err != nil {
			LoggerFromCtx(c.UserContext()).Warn("weather fetch failed",
				"lat", lat, "lng", lng, "radius", radius, "error", err)
			return providerFailure(c, err)
		}

		c.Set("Cache-Control", "public, max-age=60")
		return c.JSON(NearbyResponse{List: near})
	}
}

// providerFailure maps a fetch error to a 502 carrying the provider's message.
func providerFailure(c *fiber.Ctx, err error) error {
	var perr *domain.ProviderError
	if errors.As(err, &perr) {
		return errBadGateway(c, perr.Message)
	}
	return errBadGateway(c, err.Error())
}

// ProtocolSchemaHandler returns the JSON Schema of the map websocket protocol.
func ProtocolSchemaHandler() fiber.Handler {
	schema := mapws.Schema()
	return func(c *fiber.Ctx) error {
		c.Set("Cache-Control", "public, max-age=3600")
		return c.JSON(schema)
	}
}
