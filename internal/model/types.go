// Package model defines the canonical data types used throughout atmosense.
// These types are the single source of truth for weather entities and the
// result envelope that every command returns.
package model

import (
	"strings"
	"time"
)

// ─── Unit System ──────────────────────────────────────────────────────────────

// Units is the measurement system a query is issued in. The provider returns
// values already converted, so nothing is converted locally.
type Units string

const (
	Metric   Units = "metric"
	Imperial Units = "imperial"
)

// ParseUnits accepts metric|imperial (and the c/f shorthands).
// Returns false for anything else.
func ParseUnits(s string) (Units, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "metric", "c", "celsius":
		return Metric, true
	case "imperial", "f", "fahrenheit":
		return Imperial, true
	}
	return "", false
}

// Toggle returns the other unit system.
func (u Units) Toggle() Units {
	if u == Imperial {
		return Metric
	}
	return Imperial
}

// TempSymbol returns "°C" or "°F".
func (u Units) TempSymbol() string {
	if u == Imperial {
		return "°F"
	}
	return "°C"
}

// SpeedSymbol returns the wind speed unit the provider uses for u.
func (u Units) SpeedSymbol() string {
	if u == Imperial {
		return "mph"
	}
	return "m/s"
}

// ─── Theme ────────────────────────────────────────────────────────────────────

// Theme is pure presentation; it never affects data.
type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"
)

// ParseTheme accepts light|dark.
func ParseTheme(s string) (Theme, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "light":
		return Light, true
	case "dark":
		return Dark, true
	}
	return "", false
}

// Toggle returns the other theme.
func (t Theme) Toggle() Theme {
	if t == Dark {
		return Light
	}
	return Dark
}

// Glyph is the toggle button label: the moon offers dark mode, the sun light.
func (t Theme) Glyph() string {
	if t == Dark {
		return "☀️"
	}
	return "🌙"
}

// ─── Weather Entity Types ─────────────────────────────────────────────────────

// Condition is one weather condition descriptor.
type Condition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// Measurements holds the numeric block of a current-weather reading.
// Values are in the unit system of the owning snapshot.
type Measurements struct {
	Temp       float64 `json:"temp"`
	FeelsLike  float64 `json:"feels_like"`
	TempMin    float64 `json:"temp_min"`
	TempMax    float64 `json:"temp_max"`
	Pressure   float64 `json:"pressure"`
	Humidity   float64 `json:"humidity"`
	WindSpeed  float64 `json:"wind_speed"`
	WindDeg    float64 `json:"wind_deg"`
	Clouds     float64 `json:"clouds"`
	Visibility float64 `json:"visibility"`
	ObservedAt int64   `json:"dt"`
}

// WeatherSnapshot is the immutable result of one successful query.
// Conditions is never empty; the first entry is the primary condition.
type WeatherSnapshot struct {
	Name         string       `json:"name"`
	Country      string       `json:"country"`
	Sunrise      int64        `json:"sunrise"`
	Sunset       int64        `json:"sunset"`
	Conditions   []Condition  `json:"conditions"`
	Measurements Measurements `json:"measurements"`
	Units        Units        `json:"units"`
	FetchedAt    time.Time    `json:"fetched_at,omitempty"`
}

// Primary returns the first condition descriptor.
func (s *WeatherSnapshot) Primary() Condition {
	if len(s.Conditions) == 0 {
		return Condition{}
	}
	return s.Conditions[0]
}

// Location returns "Name, CC".
func (s *WeatherSnapshot) Location() string {
	if s.Country == "" {
		return s.Name
	}
	return s.Name + ", " + s.Country
}

// ─── Forecast / Air Quality ───────────────────────────────────────────────────

// ForecastDay is one day of a daily forecast. No query populates it yet.
type ForecastDay struct {
	Dt   int64 `json:"dt"`
	Temp struct {
		Day float64 `json:"day"`
		Min float64 `json:"min"`
		Max float64 `json:"max"`
	} `json:"temp"`
	Weather []Condition `json:"weather"`
}

// AirQuality mirrors the provider's air pollution reading.
// AQI is the 1..5 ordinal index.
type AirQuality struct {
	Main struct {
		AQI int `json:"aqi"`
	} `json:"main"`
	Components struct {
		PM25 float64 `json:"pm2_5"`
		PM10 float64 `json:"pm10"`
		NO2  float64 `json:"no2"`
	} `json:"components"`
}

// ─── Result Envelope ─────────────────────────────────────────────────────────

// ResultStats carries timing metadata for a command result.
type ResultStats struct {
	DurationMs int64 `json:"duration_ms"`
	Items      int   `json:"items"`
}

// Result is the uniform envelope returned by every command.
// The Data field holds the typed payload; Kind identifies what is in it.
// Renderers switch on Kind to format output appropriately.
type Result struct {
	Kind        string      `json:"kind"`
	GeneratedAt time.Time   `json:"generated_at"`
	Command     string      `json:"command"`
	Data        interface{} `json:"data"`
	Warnings    []string    `json:"warnings,omitempty"`
	Stats       ResultStats `json:"stats"`
}

// Kind constants for Result.Kind.
const (
	KindWeather   = "weather"
	KindLocations = "locations"
)

// LocationList is a named list of city names (recent searches, favorites).
type LocationList struct {
	Name  string   `json:"name"`
	Items []string `json:"items"`
}
