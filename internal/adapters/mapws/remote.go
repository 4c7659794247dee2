// Package mapws drives a browser-rendered map over a websocket.
//
// The browser owns the map widget and the geolocation API; the server owns
// everything else. Remote forwards widget calls to the browser as messages
// and turns the browser's messages back into widget events, dispatched
// one at a time on the goroutine running Serve.
package mapws

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/weathermap/internal/core/domain"
	"github.com/samirrijal/weathermap/internal/core/ports"
)

// Conn is the part of a websocket connection Remote needs.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
}

type locateResult struct {
	pos domain.Coordinate
	err error
}

// Remote implements the map widget, geolocation and alert collaborators
// of a map session on top of one connection.
type Remote struct {
	conn Conn
	log  *slog.Logger

	writeMu sync.Mutex

	mu             sync.Mutex
	ready          bool
	pending        bool // bounds reported while nobody was listening
	bounds         domain.LatLngBounds
	nextSub        uint64
	boundsHandlers map[uint64]func()
	clickHandlers  map[string]map[uint64]func()
	locating       chan locateResult
}

var (
	_ ports.MapFactory = (*Remote)(nil)
	_ ports.Map        = (*Remote)(nil)
	_ ports.Geolocator = (*Remote)(nil)
	_ ports.Notifier   = (*Remote)(nil)
)

// NewRemote wraps conn. logger may be nil.
func NewRemote(conn Conn, logger *slog.Logger) *Remote {
	if logger == nil {
		logger = slog.Default()
	}
	return &Remote{
		conn:           conn,
		log:            logger,
		boundsHandlers: make(map[uint64]func()),
		clickHandlers:  make(map[string]map[uint64]func()),
	}
}

func (r *Remote) send(ctx context.Context, msg ServerMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode %s: %w", msg.Type, err)
	}
	r.writeMu.Lock()
	defer r.writeMu.Unlock()
	if err := r.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("write %s: %w", msg.Type, err)
	}
	return nil
}

// CurrentPosition asks the browser for the user's position and waits for
// the answer.
func (r *Remote) CurrentPosition(ctx context.Context) (domain.Coordinate, error) {
	ch := make(chan locateResult, 1)
	r.mu.Lock()
	if r.locating != nil {
		r.mu.Unlock()
		return domain.Coordinate{}, errors.New("position request already pending")
	}
	r.locating = ch
	r.mu.Unlock()

	release := func() {
		r.mu.Lock()
		if r.locating == ch {
			r.locating = nil
		}
		r.mu.Unlock()
	}

	if err := r.send(ctx, ServerMessage{Type: TypeLocate}); err != nil {
		release()
		return domain.Coordinate{}, err
	}

	select {
	case res := <-ch:
		return res.pos, res.err
	case <-ctx.Done():
		release()
		return domain.Coordinate{}, ctx.Err()
	}
}

// NewMap tells the browser to create its map. Bounds-changed events are
// only dispatched once the map exists.
func (r *Remote) NewMap(ctx context.Context, center domain.Coordinate, zoom int) (ports.Map, error) {
	r.mu.Lock()
	r.ready = true
	r.mu.Unlock()
	if err := r.send(ctx, ServerMessage{Type: TypeMapInit, Center: &center, Zoom: zoom}); err != nil {
		r.mu.Lock()
		r.ready = false
		r.mu.Unlock()
		return nil, err
	}
	return r, nil
}

// Bounds returns the rectangle from the browser's last bounds_changed.
func (r *Remote) Bounds() domain.LatLngBounds {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.bounds
}

func (r *Remote) AddMarker(ctx context.Context, m *domain.Marker) error {
	return r.send(ctx, ServerMessage{Type: TypeMarkerAdd, Marker: m})
}

func (r *Remote) RemoveMarker(ctx context.Context, id string) error {
	return r.send(ctx, ServerMessage{Type: TypeMarkerRemove, MarkerID: id})
}

// OnBoundsChanged subscribes handler to viewport changes. If the browser
// reported bounds before anyone subscribed, handler is run once for them on
// its own goroutine.
func (r *Remote) OnBoundsChanged(handler func()) ports.Unsubscribe {
	r.mu.Lock()
	id := r.nextSub
	r.nextSub++
	r.boundsHandlers[id] = handler
	replay := r.pending
	r.pending = false
	r.mu.Unlock()

	if replay {
		go handler()
	}

	return func() {
		r.mu.Lock()
		delete(r.boundsHandlers, id)
		r.mu.Unlock()
	}
}

func (r *Remote) OnMarkerClick(markerID string, handler func()) ports.Unsubscribe {
	r.mu.Lock()
	id := r.nextSub
	r.nextSub++
	hs := r.clickHandlers[markerID]
	if hs == nil {
		hs = make(map[uint64]func())
		r.clickHandlers[markerID] = hs
	}
	hs[id] = handler
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		if hs, ok := r.clickHandlers[markerID]; ok {
			delete(hs, id)
			if len(hs) == 0 {
				delete(r.clickHandlers, markerID)
			}
		}
		r.mu.Unlock()
	}
}

func (r *Remote) NewInfoWindow() ports.InfoWindow {
	return &infoWindow{remote: r}
}

// Alert shows a blocking alert in the browser.
func (r *Remote) Alert(ctx context.Context, message string) error {
	return r.send(ctx, ServerMessage{Type: TypeAlert, Message: message})
}

// Serve reads browser messages until the connection fails or ctx is done.
func (r *Remote) Serve(ctx context.Context) error {
	defer r.failLocate(fmt.Errorf("%w: connection closed", domain.ErrNotLocated))

	for {
		_, data, err := r.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			_ = r.send(ctx, ServerMessage{Type: TypeError, Message: "invalid JSON"})
			continue
		}
		if err := r.dispatch(msg); err != nil {
			_ = r.send(ctx, ServerMessage{Type: TypeError, Message: err.Error()})
		}
	}
}

func (r *Remote) dispatch(msg ClientMessage) error {
	switch msg.Type {
	case TypePosition:
		if msg.Position == nil {
			return errors.New("position is required")
		}
		r.resolveLocate(locateResult{pos: *msg.Position})

	case TypePositionError:
		reason := msg.Error
		if reason == "" {
			reason = "unknown error"
		}
		r.resolveLocate(locateResult{err: fmt.Errorf("%w: %s", domain.ErrNotLocated, reason)})

	case TypeBoundsChanged:
		if msg.Bounds == nil {
			return errors.New("bounds are required")
		}
		r.mu.Lock()
		r.bounds = *msg.Bounds
		if !r.ready {
			r.mu.Unlock()
			return nil
		}
		hs := make([]func(), 0, len(r.boundsHandlers))
		for _, h := range r.boundsHandlers {
			hs = append(hs, h)
		}
		r.pending = len(hs) == 0
		r.mu.Unlock()
		for _, h := range hs {
			h()
		}

	case TypeMarkerClick:
		r.mu.Lock()
		hs := make([]func(), 0, len(r.clickHandlers[msg.MarkerID]))
		for _, h := range r.clickHandlers[msg.MarkerID] {
			hs = append(hs, h)
		}
		r.mu.Unlock()
		for _, h := range hs {
			h()
		}

	default:
		return fmt.Errorf("unknown message type: %s", msg.Type)
	}
	return nil
}

func (r *Remote) resolveLocate(res locateResult) {
	r.mu.Lock()
	ch := r.locating
	r.locating = nil
	r.mu.Unlock()
	if ch == nil {
		r.log.Debug("unsolicited position message")
		return
	}
	ch <- res
}

func (r *Remote) failLocate(err error) {
	r.resolveLocate(locateResult{err: err})
}

// KeepAlive pings the browser every interval until ctx is done or a ping
// fails.
func (r *Remote) KeepAlive(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			r.writeMu.Lock()
			err := r.conn.WriteMessage(websocket.PingMessage, nil)
			r.writeMu.Unlock()
			if err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

type infoWindow struct {
	remote *Remote

	mu      sync.Mutex
	content string
}

func (w *infoWindow) SetContent(html string) {
	w.mu.Lock()
	w.content = html
	w.mu.Unlock()
}

func (w *infoWindow) Open(ctx context.Context, markerID string) error {
	w.mu.Lock()
	content := w.content
	w.mu.Unlock()
	return w.remote.send(ctx, ServerMessage{Type: TypeInfoWindow, MarkerID: markerID, Content: content})
}

func (w *infoWindow) Close(ctx context.Context) error {
	return w.remote.send(ctx, ServerMessage{Type: TypeInfoWindowClose})
}
