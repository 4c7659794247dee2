package openweather_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/samirrijal/weathermap/internal/adapters/openweather"
	"github.com/samirrijal/weathermap/internal/core/domain"
)

const sampleBody = `{
  "cod": 200,
  "calctime": 0.3107,
  "cnt": 2,
  "list": [
    {
      "id": 2208791,
      "name": "Yafran",
      "coord": {"Lon": 12.52859, "Lat": 32.06329},
      "main": {"temp": 9.68, "temp_min": 9.681, "temp_max": 9.681, "pressure": 961.02, "sea_level": 1036.82, "grnd_level": 961.02, "humidity": 85},
      "dt": 1485784982,
      "wind": {"speed": 3.96, "deg": 356.5},
      "rain": {"3h": 0.255},
      "clouds": {"all": 88},
      "weather": [{"id": 500, "main": "Rain", "description": "light rain", "icon": "10d"}]
    },
    {
      "id": 2217362,
      "name": "Gharyan",
      "coord": {"Lon": 13.02028, "Lat": 32.17222},
      "main": {"temp": 8.5, "humidity": 89},
      "dt": 1485784982,
      "wind": {"speed": 5, "deg": 10},
      "weather": []
    }
  ]
}`

func newServer(t *testing.T, status int, body string, check func(r *http.Request)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			check(r)
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestBoxCity_Success(t *testing.T) {
	bbox := domain.BoundingBox{12, 32, 15, 37}
	srv := newServer(t, 200, sampleBody, func(r *http.Request) {
		if r.URL.Path != "/data/2.5/box/city" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("appid"); got != "secret" {
			t.Errorf("expected appid=secret, got %q", got)
		}
		if !strings.Contains(r.URL.RawQuery, "bbox=12,32,15,37") {
			t.Errorf("expected raw comma-joined bbox, got %q", r.URL.RawQuery)
		}
	})

	c := openweather.New("secret", openweather.WithBaseURL(srv.URL))
	list, err := c.BoxCity(context.Background(), bbox)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 observations, got %d", len(list))
	}

	first := list[0]
	if first.Name != "Yafran" || first.ID != 2208791 {
		t.Errorf("unexpected first observation %+v", first)
	}
	if first.Coord.Latitude != 32.06329 || first.Coord.Longitude != 12.52859 {
		t.Errorf("unexpected coordinate %+v", first.Coord)
	}
	if first.Main.Humidity != 85 || first.Wind.Speed != 3.96 {
		t.Errorf("unexpected measurements %+v %+v", first.Main, first.Wind)
	}
	if first.Rain == nil || first.Rain.ThreeHour != 0.255 {
		t.Errorf("expected rain 3h 0.255, got %+v", first.Rain)
	}
	if cond, ok := first.PrimaryCondition(); !ok || cond.Icon != "10d" {
		t.Errorf("unexpected condition %+v", cond)
	}
	if _, ok := list[1].PrimaryCondition(); ok {
		t.Error("expected no condition for second observation")
	}
}

func TestBoxCity_MissingList(t *testing.T) {
	srv := newServer(t, 200, `{}`, nil)
	c := openweather.New("k", openweather.WithBaseURL(srv.URL))

	list, err := c.BoxCity(context.Background(), domain.BoundingBox{1, 2, 3, 4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if list == nil || len(list) != 0 {
		t.Fatalf("expected empty non-nil list, got %v", list)
	}
}

func TestBoxCity_EmptyBody(t *testing.T) {
	srv := newServer(t, 200, ``, nil)
	c := openweather.New("k", openweather.WithBaseURL(srv.URL))

	list, err := c.BoxCity(context.Background(), domain.BoundingBox{1, 2, 3, 4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected empty list, got %v", list)
	}
}

func TestBoxCity_ProviderError(t *testing.T) {
	srv := newServer(t, 404, `{"cod":"404","message":"bad key"}`, nil)
	c := openweather.New("k", openweather.WithBaseURL(srv.URL))

	_, err := c.BoxCity(context.Background(), domain.BoundingBox{1, 2, 3, 4})
	var perr *domain.ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if perr.Status != 404 || perr.Message != "bad key" {
		t.Errorf("unexpected provider error %+v", perr)
	}
}

func TestBoxCity_ProviderErrorWithoutJSON(t *testing.T) {
	srv := newServer(t, 502, `<html>bad gateway</html>`, nil)
	c := openweather.New("k", openweather.WithBaseURL(srv.URL))

	_, err := c.BoxCity(context.Background(), domain.BoundingBox{1, 2, 3, 4})
	var perr *domain.ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if perr.Message != "Bad Gateway" {
		t.Errorf("expected status text fallback, got %q", perr.Message)
	}
}

func TestBoxCity_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := openweather.New("k", openweather.WithBaseURL(url))
	_, err := c.BoxCity(context.Background(), domain.BoundingBox{1, 2, 3, 4})
	if err == nil {
		t.Fatal("expected network error")
	}
	var perr *domain.ProviderError
	if errors.As(err, &perr) {
		t.Error("network failure must not be reported as a provider reply")
	}
}

func TestBoxCityURL(t *testing.T) {
	c := openweather.New("a b")
	got := c.BoxCityURL(domain.BoundingBox{20, -5, -15, 10})
	want := "http://api.openweathermap.org/data/2.5/box/city?appid=a+b&bbox=20,-5,-15,10"
	if got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}
