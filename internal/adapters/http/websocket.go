package http

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/weathermap/internal/adapters/mapws"
	natsadapter "github.com/samirrijal/weathermap/internal/adapters/nats"
	"github.com/samirrijal/weathermap/internal/core/usecases"
	"github.com/samirrijal/weathermap/internal/pkg/metrics"
)

const pingInterval = 30 * time.Second

// MapSessionHandler returns a handler that runs one map session per
// WebSocket connection. The browser renders; the session decides.
func MapSessionHandler(deps *Dependencies) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		id := uuid.NewString()
		logger := slog.Default().With("session_id", id, "remote_addr", c.RemoteAddr().String())
		logger.Info("map session connected")
		metrics.ActiveSessions.Inc()
		defer metrics.ActiveSessions.Dec()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		remote := mapws.NewRemote(c, logger)
		session := usecases.NewMapSession(id, usecases.SessionDeps{
			Weather:  deps.Weather,
			Maps:     remote,
			Geo:      remote,
			Notifier: remote,
			Events:   deps.Events,
		}, deps.Session)

		// The connection is recycled once this handler returns, so every
		// goroutine touching it must be done by then.
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			remote.KeepAlive(ctx, pingInterval)
		}()

		// Init waits on the browser's position reply, which only Serve reads.
		go func() {
			defer wg.Done()
			if err := session.Init(ctx); err != nil {
				if ctx.Err() != nil {
					return
				}
				logger.Warn("map session init failed", "error", err)
				_ = remote.Alert(ctx, "Could not determine your location: "+err.Error())
				cancel()
				_ = c.Close()
			}
		}()

		if err := remote.Serve(ctx); err != nil && ctx.Err() == nil {
			logger.Debug("map session read loop ended", "error", err)
		}
		cancel()
		wg.Wait()
		session.Close()
		logger.Info("map session disconnected", "markers", len(session.Markers()))
	}
}

// relayMessage is sent from client to narrow the refresh relay to one session.
type relayMessage struct {
	Action    string `json:"action"`     // "subscribe" | "unsubscribe"
	SessionID string `json:"session_id"` // "" = all sessions
}

// RefreshRelayHandler returns a handler that upgrades to WebSocket and
// relays refresh events from NATS to connected dashboards.
// Clients send JSON: {"action":"subscribe","session_id":"..."}
// All sessions are relayed until the client narrows the subscription.
func RefreshRelayHandler(nc *nats.Conn) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		remoteAddr := c.RemoteAddr().String()
		slog.Info("relay client connected", "remote_addr", remoteAddr)
		metrics.ActiveRelayClients.Inc()
		defer metrics.ActiveRelayClients.Dec()

		var mu sync.Mutex
		subs := make(map[string]*nats.Subscription) // subject -> subscription

		// Helper: thread-safe write
		writeJSON := func(v any) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}

		if nc == nil {
			_ = writeJSON(map[string]string{"error": "event stream not configured"})
			return
		}

		relay := func(msg *nats.Msg) {
			_ = writeJSON(json.RawMessage(msg.Data))
		}

		sub, err := nc.Subscribe(natsadapter.RefreshSubjects, relay)
		if err != nil {
			slog.Warn("relay default subscribe failed", "error", err)
			return
		}
		subs[natsadapter.RefreshSubjects] = sub

		// Keep-alive ping
		done := make(chan struct{})
		go func() {
			ticker := time.NewTicker(pingInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}

			var m relayMessage
			if err := json.Unmarshal(msg, &m); err != nil {
				_ = writeJSON(map[string]string{"error": "invalid JSON"})
				continue
			}

			subject := natsadapter.RefreshSubjects
			if m.SessionID != "" {
				subject = natsadapter.RefreshSubject(m.SessionID)
			}

			switch m.Action {
			case "subscribe":
				if _, exists := subs[subject]; exists {
					_ = writeJSON(map[string]string{"status": "already subscribed", "subject": subject})
					continue
				}
				s, err := nc.Subscribe(subject, relay)
				if err != nil {
					_ = writeJSON(map[string]string{"error": "subscribe failed: " + err.Error()})
					continue
				}
				subs[subject] = s
				_ = writeJSON(map[string]string{"status": "subscribed", "subject": subject})

			case "unsubscribe":
				if s, exists := subs[subject]; exists {
					_ = s.Unsubscribe()
					delete(subs, subject)
					_ = writeJSON(map[string]string{"status": "unsubscribed", "subject": subject})
				} else {
					_ = writeJSON(map[string]string{"error": "not subscribed to " + subject})
				}

			default:
				_ = writeJSON(map[string]string{"error": "unknown action: " + m.Action})
			}
		}

		// Cleanup
		close(done)
		for _, s := range subs {
			_ = s.Unsubscribe()
		}
		slog.Info("relay client disconnected", "remote_addr", remoteAddr)
	}
}
