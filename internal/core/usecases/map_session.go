package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/facebookgo/clock"

	"github.com/samirrijal/weathermap/internal/core/domain"
	"github.com/samirrijal/weathermap/internal/core/ports"
	"github.com/samirrijal/weathermap/internal/pkg/debounce"
	"github.com/samirrijal/weathermap/internal/pkg/metrics"
)

// SessionOptions tunes a map session.
type SessionOptions struct {
	// Zoom is the initial zoom level of the map.
	Zoom int
	// DebounceWindow is the minimum time between two refresh cycles.
	DebounceWindow time.Duration
	// RemoveStaleMarkers takes every marker of the previous cycle off the
	// map before new ones are added. When false, previous markers that are
	// still inside the view stay rendered next to their replacements.
	RemoveStaleMarkers bool
	// DiscardStaleResults drops the results of a cycle that was overtaken
	// by a newer one. When false, the last cycle to resolve wins.
	DiscardStaleResults bool
	// Clock times the debounce window. Nil means the wall clock.
	Clock clock.Clock
}

// DefaultSessionOptions returns the options used when nothing is configured.
func DefaultSessionOptions() SessionOptions {
	return SessionOptions{
		Zoom:                10,
		DebounceWindow:      time.Second,
		RemoveStaleMarkers:  true,
		DiscardStaleResults: true,
	}
}

// SessionDeps are the collaborators of a map session.
type SessionDeps struct {
	Weather  *WeatherService
	Maps     ports.MapFactory
	Geo      ports.Geolocator
	Notifier ports.Notifier
	Events   ports.EventPublisher // optional
}

// MapSession shows weather markers for whatever part of a map is visible
// and refreshes them as the view changes.
type MapSession struct {
	id   string
	deps SessionDeps
	opts SessionOptions
	log  *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu          sync.Mutex
	m           ports.Map
	info        ports.InfoWindow
	markers     []*domain.Marker
	clicks      map[string]ports.Unsubscribe
	unsubscribe ports.Unsubscribe
	seq         uint64
	closed      bool
}

// NewMapSession creates an idle session. Call Init to show the map.
func NewMapSession(id string, deps SessionDeps, opts SessionOptions) *MapSession {
	return &MapSession{
		id:     id,
		deps:   deps,
		opts:   opts,
		log:    slog.Default().With("session_id", id),
		clicks: make(map[string]ports.Unsubscribe),
	}
}

// ID returns the session identifier.
func (s *MapSession) ID() string { return s.id }

// Init locates the user, creates the map centered on them and starts
// listening for viewport changes. A geolocation failure aborts Init.
func (s *MapSession) Init(ctx context.Context) error {
	s.mu.Lock()
	switch {
	case s.closed:
		s.mu.Unlock()
		return domain.ErrSessionClosed
	case s.m != nil:
		s.mu.Unlock()
		return errors.New("map session already initialized")
	}
	s.mu.Unlock()

	pos, err := s.deps.Geo.CurrentPosition(ctx)
	if err != nil {
		return fmt.Errorf("locate user: %w", err)
	}

	m, err := s.deps.Maps.NewMap(ctx, pos, s.opts.Zoom)
	if err != nil {
		return fmt.Errorf("create map: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.ErrSessionClosed
	}

	s.ctx, s.cancel = context.WithCancel(ctx)
	s.m = m
	s.info = m.NewInfoWindow()

	var dopts []debounce.Option
	if s.opts.Clock != nil {
		dopts = append(dopts, debounce.WithClock(s.opts.Clock))
	}
	s.unsubscribe = m.OnBoundsChanged(debounce.Wrap(s.refresh, s.opts.DebounceWindow, dopts...))

	s.log.Info("map session started", "lat", pos.Latitude, "lng", pos.Longitude, "zoom", s.opts.Zoom)
	return nil
}

// refresh starts a refresh cycle. Offscreen markers are removed right away;
// the fetch and the marker rebuild continue in the background.
func (s *MapSession) refresh() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}

	bounds := s.m.Bounds()
	bbox := domain.BBoxFromBounds(bounds)

	removed := 0
	for _, mk := range s.markers {
		if !mk.Removed && !bounds.Contains(mk.Position) {
			s.removeMarker(mk)
			removed++
		}
	}

	s.seq++
	seq := s.seq
	s.wg.Add(1)
	s.mu.Unlock()

	go s.complete(seq, bbox, removed, time.Now())
}

func (s *MapSession) complete(seq uint64, bbox domain.BoundingBox, removed int, started time.Time) {
	defer s.wg.Done()

	observations := s.deps.Weather.Observations(s.ctx, bbox, s.deps.Notifier)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}

	stale := s.opts.DiscardStaleResults && seq != s.seq
	rendered := 0
	if stale {
		s.log.Debug("dropping overtaken refresh", "sequence", seq, "latest", s.seq)
	} else {
		if s.opts.RemoveStaleMarkers {
			removed += s.clearMarkers()
		}

		markers, err := CreateMarkers(s.ctx, s.m, observations)
		if err != nil {
			s.log.Warn("some markers could not be rendered", "error", err)
		}
		for _, mk := range markers {
			s.clicks[mk.ID] = s.m.OnMarkerClick(mk.ID, s.clickHandler(mk))
		}
		s.markers = markers
		rendered = len(markers)
	}
	s.mu.Unlock()

	outcome := "applied"
	if stale {
		outcome = "stale"
	}
	metrics.RefreshCycles.WithLabelValues(outcome).Inc()
	metrics.RefreshDuration.Observe(time.Since(started).Seconds())
	metrics.MarkersRendered.Add(float64(rendered))

	s.publish(&domain.RefreshEvent{
		SessionID:    s.id,
		Sequence:     seq,
		BBox:         bbox,
		Observations: len(observations),
		Markers:      rendered,
		Removed:      removed,
		Stale:        stale,
		Duration:     time.Since(started),
		Timestamp:    time.Now().UTC(),
	})
}

// clickHandler fills the shared info window for mk and opens it on mk.
func (s *MapSession) clickHandler(mk *domain.Marker) func() {
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed {
			return
		}
		s.info.SetContent(InfoWindowContent(mk.Observation))
		if err := s.info.Open(s.ctx, mk.ID); err != nil {
			s.log.Warn("open info window", "marker_id", mk.ID, "error", err)
		}
	}
}

// removeMarker must be called with s.mu held.
func (s *MapSession) removeMarker(mk *domain.Marker) {
	if err := s.m.RemoveMarker(s.ctx, mk.ID); err != nil {
		s.log.Warn("remove marker", "marker_id", mk.ID, "error", err)
	}
	mk.Removed = true
}

// clearMarkers removes every tracked marker and its click handler.
// It must be called with s.mu held.
func (s *MapSession) clearMarkers() int {
	n := 0
	for _, mk := range s.markers {
		if !mk.Removed {
			s.removeMarker(mk)
			n++
		}
		if unsub, ok := s.clicks[mk.ID]; ok {
			unsub()
			delete(s.clicks, mk.ID)
		}
	}
	s.markers = nil
	return n
}

func (s *MapSession) publish(ev *domain.RefreshEvent) {
	if s.deps.Events == nil {
		return
	}
	if err := s.deps.Events.PublishRefresh(s.ctx, ev); err != nil {
		s.log.Debug("publish refresh event", "error", err)
	}
}

// Markers returns the markers of the latest applied cycle.
func (s *MapSession) Markers() []*domain.Marker {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.Marker, len(s.markers))
	copy(out, s.markers)
	return out
}

// Wait blocks until every started refresh cycle has finished.
func (s *MapSession) Wait() {
	s.wg.Wait()
}

// Close stops listening for events, cancels in-flight fetches and waits
// for them to return.
func (s *MapSession) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	for id, unsub := range s.clicks {
		unsub()
		delete(s.clicks, id)
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()

	s.wg.Wait()
	s.log.Info("map session closed")
}
