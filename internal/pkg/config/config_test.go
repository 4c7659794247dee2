package config_test

import (
	"strings"
	"testing"

	"github.com/samirrijal/weathermap/internal/pkg/config"
)

func TestLoad_DefaultsWithAPIKey(t *testing.T) {
	t.Setenv("WEATHERMAP_WEATHER_API_KEY", "test-key")

	cfg, err := config.Load("weathermap-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Weather.APIKey != "test-key" {
		t.Errorf("expected api key from env, got %q", cfg.Weather.APIKey)
	}
	if cfg.Session.Zoom != 10 {
		t.Errorf("expected default zoom 10, got %d", cfg.Session.Zoom)
	}
	if cfg.Session.DebounceWindow().Milliseconds() != 1000 {
		t.Errorf("expected 1000ms debounce, got %s", cfg.Session.DebounceWindow())
	}
	if !cfg.Session.RemoveStaleMarkers || !cfg.Session.DiscardStaleResults {
		t.Error("expected marker cleanup and stale discard on by default")
	}
	if cfg.Telemetry.ServiceName != "weathermap-test" {
		t.Errorf("expected service name default, got %q", cfg.Telemetry.ServiceName)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("WEATHERMAP_WEATHER_API_KEY", "k")
	t.Setenv("WEATHERMAP_SESSION_DEBOUNCE_MS", "250")
	t.Setenv("WEATHERMAP_SESSION_REMOVE_STALE_MARKERS", "false")

	cfg, err := config.Load("weathermap-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Session.DebounceMS != 250 {
		t.Errorf("expected 250, got %d", cfg.Session.DebounceMS)
	}
	if cfg.Session.RemoveStaleMarkers {
		t.Error("expected remove_stale_markers=false from env")
	}
}

func TestValidate_AggregatesErrors(t *testing.T) {
	cfg := &config.Config{}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"server.port", "weather.api_key", "weather.base_url"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %q in error, got %v", want, err)
		}
	}
}
