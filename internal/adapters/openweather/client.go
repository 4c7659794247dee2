package openweather

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samirrijal/weathermap/internal/core/domain"
	"github.com/samirrijal/weathermap/internal/core/ports"
	"github.com/samirrijal/weathermap/internal/pkg/metrics"
	"github.com/samirrijal/weathermap/internal/pkg/telemetry"
)

// DefaultBaseURL is the OpenWeatherMap API host.
const DefaultBaseURL = "http://api.openweathermap.org"

const boxCityPath = "/data/2.5/box/city"

// Client implements ports.WeatherProvider against the OpenWeatherMap API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

var _ ports.WeatherProvider = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API host (used by tests).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a new OpenWeatherMap client.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Name returns the provider name
func (c *Client) Name() string {
	return "OpenWeatherMap"
}

// boxCityResponse is the body of a box/city reply. Error replies carry
// only cod and message.
type boxCityResponse struct {
	List    []cityObservation `json:"list"`
	Message string            `json:"message"`
}

type cityObservation struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Coord struct {
		Lon float64 `json:"Lon"`
		Lat float64 `json:"Lat"`
	} `json:"coord"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		TempMin   float64 `json:"temp_min"`
		TempMax   float64 `json:"temp_max"`
		Pressure  float64 `json:"pressure"`
		SeaLevel  float64 `json:"sea_level"`
		GrndLevel float64 `json:"grnd_level"`
		Humidity  float64 `json:"humidity"`
	} `json:"main"`
	Dt   int64 `json:"dt"`
	Wind struct {
		Speed float64 `json:"speed"`
		Deg   float64 `json:"deg"`
	} `json:"wind"`
	Rain *struct {
		OneHour   float64 `json:"1h"`
		ThreeHour float64 `json:"3h"`
	} `json:"rain"`
	Clouds *struct {
		All int `json:"all"`
	} `json:"clouds"`
	Weather []struct {
		ID          int    `json:"id"`
		Main        string `json:"main"`
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
}

// BoxCityURL builds the box/city request URL. The bbox is written with plain
// commas, the way the provider documents it.
func (c *Client) BoxCityURL(bbox domain.BoundingBox) string {
	return fmt.Sprintf("%s%s?appid=%s&bbox=%s",
		c.baseURL, boxCityPath, url.QueryEscape(c.apiKey), bbox.String())
}

// BoxCity fetches current observations for every city inside bbox.
func (c *Client) BoxCity(ctx context.Context, bbox domain.BoundingBox) (list []domain.Observation, err error) {
	ctx, span := telemetry.Tracer().Start(ctx, "openweather.box_city")
	span.SetAttributes(attribute.String("weather.bbox", bbox.String()))
	start := time.Now()
	defer func() {
		result := "ok"
		if err != nil {
			result = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		metrics.WeatherFetches.WithLabelValues(c.Name(), result).Inc()
		metrics.WeatherFetchDuration.WithLabelValues(c.Name()).Observe(time.Since(start).Seconds())
		span.End()
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BoxCityURL(bbox), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var parsed boxCityResponse
	parseErr := json.Unmarshal(body, &parsed)

	if resp.StatusCode != http.StatusOK {
		msg := parsed.Message
		if parseErr != nil || msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, &domain.ProviderError{Status: resp.StatusCode, Message: msg}
	}
	// box/city answers 200 with an empty body when nothing is in the box.
	if parseErr != nil && len(strings.TrimSpace(string(body))) > 0 {
		return nil, fmt.Errorf("failed to parse response: %w", parseErr)
	}

	list = make([]domain.Observation, 0, len(parsed.List))
	for _, o := range parsed.List {
		list = append(list, o.toDomain())
	}
	span.SetAttributes(attribute.Int("weather.observations", len(list)))
	return list, nil
}

func (o cityObservation) toDomain() domain.Observation {
	obs := domain.Observation{
		ID:   o.ID,
		Name: o.Name,
		Coord: domain.Coordinate{
			Latitude:  o.Coord.Lat,
			Longitude: o.Coord.Lon,
		},
		Main: domain.MainConditions{
			Temp:      o.Main.Temp,
			FeelsLike: o.Main.FeelsLike,
			TempMin:   o.Main.TempMin,
			TempMax:   o.Main.TempMax,
			Pressure:  o.Main.Pressure,
			SeaLevel:  o.Main.SeaLevel,
			GrndLevel: o.Main.GrndLevel,
			Humidity:  o.Main.Humidity,
		},
		Wind: domain.Wind{Speed: o.Wind.Speed, Deg: o.Wind.Deg},
		Dt:   o.Dt,
	}
	if o.Rain != nil {
		obs.Rain = &domain.Precipitation{OneHour: o.Rain.OneHour, ThreeHour: o.Rain.ThreeHour}
	}
	if o.Clouds != nil {
		obs.Clouds = &domain.Clouds{All: o.Clouds.All}
	}
	for _, w := range o.Weather {
		obs.Weather = append(obs.Weather, domain.Condition{
			ID:          w.ID,
			Main:        w.Main,
			Description: w.Description,
			Icon:        w.Icon,
		})
	}
	return obs
}
