package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpadapter "github.com/samirrijal/weathermap/internal/adapters/http"
	natsadapter "github.com/samirrijal/weathermap/internal/adapters/nats"
	"github.com/samirrijal/weathermap/internal/adapters/openweather"
	"github.com/samirrijal/weathermap/internal/adapters/valkey"
	"github.com/samirrijal/weathermap/internal/core/ports"
	"github.com/samirrijal/weathermap/internal/core/usecases"
	"github.com/samirrijal/weathermap/internal/pkg/config"
	"github.com/samirrijal/weathermap/internal/pkg/logging"
	"github.com/samirrijal/weathermap/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("weathermap-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Cache
	var cache ports.CacheService
	var cachePinger httpadapter.Pinger
	if vc, err := valkey.New(cfg.Valkey.Addr); err != nil {
		slog.Warn("valkey unavailable, response cache disabled", "error", err)
	} else {
		defer vc.Close()
		cache, cachePinger = vc, vc
	}

	// NATS
	var events ports.EventPublisher
	if pub, err := natsadapter.NewPublisher(cfg.NATS.URL); err != nil {
		slog.Warn("nats unavailable, refresh events disabled", "error", err)
	} else {
		defer pub.Close()
		events = pub
	}

	// Raw NATS connection for WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	} else {
		defer natsConn.Close()
	}

	// Weather provider
	provider := openweather.New(cfg.Weather.APIKey,
		openweather.WithBaseURL(cfg.Weather.BaseURL),
		openweather.WithHTTPClient(&http.Client{
			Timeout: time.Duration(cfg.Weather.TimeoutSeconds) * time.Second,
		}),
	)
	weatherSvc := usecases.NewWeatherService(provider, cache, cfg.Cache.TTLSeconds)

	deps := &httpadapter.Dependencies{
		Weather: weatherSvc,
		Session: usecases.SessionOptions{
			Zoom:                cfg.Session.Zoom,
			DebounceWindow:      cfg.Session.DebounceWindow(),
			RemoveStaleMarkers:  cfg.Session.RemoveStaleMarkers,
			DiscardStaleResults: cfg.Session.DiscardStaleResults,
		},
		Events:    events,
		NATS:      natsConn,
		Cache:     cachePinger,
		APIKeySet: cfg.Weather.APIKey != "",
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "Weather Map API",
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173",
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	httpadapter.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "provider", provider.Name())
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
