package domain

import "time"

// Marker is a rendered map marker bound to one observation.
type Marker struct {
	ID       string     `json:"id"`
	Position Coordinate `json:"position"`
	Title    string     `json:"title"`
	Icon     string     `json:"icon"`

	// Observation is the full record shown when the marker is clicked.
	Observation Observation `json:"-"`
	// Removed is set once the marker has been taken off the map.
	Removed bool `json:"-"`
}

// RefreshEvent summarizes one completed refresh cycle of a map session.
type RefreshEvent struct {
	SessionID    string        `json:"session_id"`
	Sequence     uint64        `json:"sequence"`
	BBox         BoundingBox   `json:"bbox"`
	Observations int           `json:"observations"`
	Markers      int           `json:"markers"`
	Removed      int           `json:"removed"`
	Stale        bool          `json:"stale"`
	Duration     time.Duration `json:"duration_ns"`
	Timestamp    time.Time     `json:"timestamp"`
}
