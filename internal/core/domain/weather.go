package domain

import (
	"fmt"
	"time"
)

const iconBaseURL = "http://openweathermap.org/img/wn/"

// missingIcon is the icon segment used when an observation has no weather
// condition. The renderer has always received it this way.
const missingIcon = "undefined"

// Observation is one weather record for a city, as returned by the provider.
type Observation struct {
	ID      int64          `json:"id"`
	Name    string         `json:"name"`
	Coord   Coordinate     `json:"coord"`
	Main    MainConditions `json:"main"`
	Wind    Wind           `json:"wind"`
	Rain    *Precipitation `json:"rain,omitempty"`
	Clouds  *Clouds        `json:"clouds,omitempty"`
	Dt      int64          `json:"dt"`
	Weather []Condition    `json:"weather"`
}

// MainConditions holds the core measurements of an observation.
type MainConditions struct {
	Temp      float64 `json:"temp"`
	FeelsLike float64 `json:"feels_like,omitempty"`
	TempMin   float64 `json:"temp_min"`
	TempMax   float64 `json:"temp_max"`
	Pressure  float64 `json:"pressure"`
	SeaLevel  float64 `json:"sea_level,omitempty"`
	GrndLevel float64 `json:"grnd_level,omitempty"`
	Humidity  float64 `json:"humidity"`
}

// Wind speed is in meters per second, direction in degrees.
type Wind struct {
	Speed float64 `json:"speed"`
	Deg   float64 `json:"deg"`
}

// Precipitation volume in millimeters.
type Precipitation struct {
	OneHour   float64 `json:"1h,omitempty"`
	ThreeHour float64 `json:"3h,omitempty"`
}

type Clouds struct {
	All int `json:"all"`
}

// Condition is one weather condition entry (e.g. "light rain").
type Condition struct {
	ID          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// PrimaryCondition returns the first condition entry, if any.
func (o Observation) PrimaryCondition() (Condition, bool) {
	if len(o.Weather) == 0 {
		return Condition{}, false
	}
	return o.Weather[0], true
}

// Time returns the observation timestamp.
func (o Observation) Time() time.Time {
	return time.Unix(o.Dt, 0).UTC()
}

// IconURL returns the 2x icon URL for a condition icon code.
// An empty code yields the "undefined" segment.
func IconURL(code string) string {
	if code == "" {
		code = missingIcon
	}
	return fmt.Sprintf("%s%s@2x.png", iconBaseURL, code)
}

// NearbyObservation is an observation with its distance from a query point.
type NearbyObservation struct {
	Observation
	Distance float64 `json:"distance_m"`
}
