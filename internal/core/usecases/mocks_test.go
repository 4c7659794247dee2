package usecases_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/samirrijal/weathermap/internal/core/domain"
	"github.com/samirrijal/weathermap/internal/core/ports"
)

// --- Mock WeatherProvider ---

type mockProvider struct {
	boxCityFn func(ctx context.Context, call int, bbox domain.BoundingBox) ([]domain.Observation, error)
	calls     atomic.Int32
}

func (m *mockProvider) Name() string { return "mock" }

func (m *mockProvider) BoxCity(ctx context.Context, bbox domain.BoundingBox) ([]domain.Observation, error) {
	n := int(m.calls.Add(1))
	if m.boxCityFn != nil {
		return m.boxCityFn(ctx, n, bbox)
	}
	return nil, nil
}

// --- Mock CacheService ---

type mockCache struct {
	mu   sync.Mutex
	data map[string][]byte
	ttls map[string]int
}

func newMockCache() *mockCache {
	return &mockCache{data: map[string][]byte{}, ttls: map[string]int{}}
}

func (c *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return nil, errors.New("miss")
	}
	return v, nil
}

func (c *mockCache) Set(ctx context.Context, key string, value []byte, ttl int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	c.ttls[key] = ttl
	return nil
}

func (c *mockCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

// --- Mock Notifier ---

type mockNotifier struct {
	mu     sync.Mutex
	alerts []string
}

func (n *mockNotifier) Alert(ctx context.Context, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.alerts = append(n.alerts, message)
	return nil
}

func (n *mockNotifier) Alerts() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.alerts...)
}

// --- Mock Geolocator ---

type mockGeo struct {
	pos domain.Coordinate
	err error
}

func (g *mockGeo) CurrentPosition(ctx context.Context) (domain.Coordinate, error) {
	return g.pos, g.err
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	events chan *domain.RefreshEvent
}

func newMockPublisher() *mockPublisher {
	return &mockPublisher{events: make(chan *domain.RefreshEvent, 16)}
}

func (p *mockPublisher) PublishRefresh(ctx context.Context, ev *domain.RefreshEvent) error {
	p.events <- ev
	return nil
}

// --- Fake map widget ---

type fakeMap struct {
	mu      sync.Mutex
	bounds  domain.LatLngBounds
	visible map[string]*domain.Marker
	removed []string
	addErr  error

	nextSub        int
	boundsHandlers map[int]func()
	clickHandlers  map[string]map[int]func()

	info *fakeInfoWindow
}

func newFakeMap(bounds domain.LatLngBounds) *fakeMap {
	return &fakeMap{
		bounds:         bounds,
		visible:        map[string]*domain.Marker{},
		boundsHandlers: map[int]func(){},
		clickHandlers:  map[string]map[int]func(){},
		info:           &fakeInfoWindow{},
	}
}

func (f *fakeMap) Bounds() domain.LatLngBounds {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bounds
}

func (f *fakeMap) SetBounds(b domain.LatLngBounds) {
	f.mu.Lock()
	f.bounds = b
	f.mu.Unlock()
}

func (f *fakeMap) AddMarker(ctx context.Context, m *domain.Marker) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.addErr != nil {
		return f.addErr
	}
	f.visible[m.ID] = m
	return nil
}

func (f *fakeMap) RemoveMarker(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.visible, id)
	f.removed = append(f.removed, id)
	return nil
}

func (f *fakeMap) OnBoundsChanged(handler func()) ports.Unsubscribe {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextSub
	f.nextSub++
	f.boundsHandlers[id] = handler
	return func() {
		f.mu.Lock()
		delete(f.boundsHandlers, id)
		f.mu.Unlock()
	}
}

func (f *fakeMap) OnMarkerClick(markerID string, handler func()) ports.Unsubscribe {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextSub
	f.nextSub++
	if f.clickHandlers[markerID] == nil {
		f.clickHandlers[markerID] = map[int]func(){}
	}
	f.clickHandlers[markerID][id] = handler
	return func() {
		f.mu.Lock()
		delete(f.clickHandlers[markerID], id)
		f.mu.Unlock()
	}
}

func (f *fakeMap) NewInfoWindow() ports.InfoWindow { return f.info }

// FireBoundsChanged invokes every bounds handler, like the widget would.
func (f *fakeMap) FireBoundsChanged() {
	f.mu.Lock()
	var hs []func()
	for _, h := range f.boundsHandlers {
		hs = append(hs, h)
	}
	f.mu.Unlock()
	for _, h := range hs {
		h()
	}
}

func (f *fakeMap) Click(markerID string) {
	f.mu.Lock()
	var hs []func()
	for _, h := range f.clickHandlers[markerID] {
		hs = append(hs, h)
	}
	f.mu.Unlock()
	for _, h := range hs {
		h()
	}
}

func (f *fakeMap) Visible() []*domain.Marker {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*domain.Marker, 0, len(f.visible))
	for _, m := range f.visible {
		out = append(out, m)
	}
	return out
}

func (f *fakeMap) BoundsHandlers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.boundsHandlers)
}

type fakeInfoWindow struct {
	mu      sync.Mutex
	content string
	openOn  string
}

func (w *fakeInfoWindow) SetContent(html string) {
	w.mu.Lock()
	w.content = html
	w.mu.Unlock()
}

func (w *fakeInfoWindow) Open(ctx context.Context, markerID string) error {
	w.mu.Lock()
	w.openOn = markerID
	w.mu.Unlock()
	return nil
}

func (w *fakeInfoWindow) Close(ctx context.Context) error {
	w.mu.Lock()
	w.openOn = ""
	w.mu.Unlock()
	return nil
}

type fakeFactory struct {
	m      *fakeMap
	calls  int
	center domain.Coordinate
	zoom   int
}

func (f *fakeFactory) NewMap(ctx context.Context, center domain.Coordinate, zoom int) (ports.Map, error) {
	f.calls++
	f.center = center
	f.zoom = zoom
	return f.m, nil
}

// --- Fixtures ---

func observation(name string, lat, lng float64) domain.Observation {
	return domain.Observation{
		ID:    int64(len(name)),
		Name:  name,
		Coord: domain.Coordinate{Latitude: lat, Longitude: lng},
		Main:  domain.MainConditions{Temp: 9.68, Humidity: 85},
		Wind:  domain.Wind{Speed: 5},
		Weather: []domain.Condition{
			{ID: 500, Main: "Rain", Description: "light rain", Icon: "10d"},
		},
	}
}

var bilbaoBounds = domain.LatLngBounds{
	NorthEast: domain.Coordinate{Latitude: 43.4, Longitude: -2.8},
	SouthWest: domain.Coordinate{Latitude: 43.1, Longitude: -3.1},
}
