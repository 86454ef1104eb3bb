package render

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/derickschaefer/atmosense/internal/model"
)

func paris() *model.WeatherSnapshot {
	return &model.WeatherSnapshot{
		Name:       "Paris",
		Country:    "FR",
		Sunrise:    1700000000,
		Sunset:     1700030000,
		Conditions: []model.Condition{{Main: "Clear", Description: "clear sky", Icon: "01d"}},
		Measurements: model.Measurements{
			Temp: 18, FeelsLike: 17, TempMin: 15, TempMax: 20,
			Pressure: 1012, Humidity: 60, WindSpeed: 3.1, WindDeg: 200,
			Clouds: 0, Visibility: 10000, ObservedAt: 1700010000,
		},
		Units: model.Metric,
	}
}

func weatherResult(s *model.WeatherSnapshot) *model.Result {
	return &model.Result{Kind: model.KindWeather, GeneratedAt: time.Now(), Command: "weather", Data: s}
}

// ─── Helpers ──────────────────────────────────────────────────────────────────

func TestWeatherIcon(t *testing.T) {
	cases := map[string]string{
		"light rain":             IconRain,
		"scattered clouds":       IconCloud,
		"clear sky":              IconClear,
		"thunderstorm with rain": IconThunder,
		"light snow":             IconSnow,
		"mist":                   IconMist,
		"fog":                    IconMist,
		"Heavy Rain":             IconRain,
		"":                       IconClear,
		"rain and snow":          IconRain,
		"snow clouds":            IconCloud,
	}
	for desc, want := range cases {
		if got := WeatherIcon(desc); got != want {
			t.Errorf("WeatherIcon(%q): got %s want %s", desc, got, want)
		}
	}
}

func TestAirQualityLabel(t *testing.T) {
	cases := map[int]string{
		-1: "Unknown", 0: "Unknown", 1: "Good", 2: "Fair",
		3: "Moderate", 4: "Poor", 5: "Very Poor", 6: "Unknown",
	}
	for aqi, want := range cases {
		if got := AirQualityLabel(aqi); got != want {
			t.Errorf("AirQualityLabel(%d): got %q want %q", aqi, got, want)
		}
	}
}

func TestTimeOfDay(t *testing.T) {
	at := func(h int) time.Time { return time.Date(2026, 1, 1, h, 30, 0, 0, time.UTC) }
	cases := map[int]string{0: "morning", 11: "morning", 12: "afternoon", 16: "afternoon", 17: "evening", 23: "evening"}
	for h, want := range cases {
		if got := TimeOfDay(at(h)); got != want {
			t.Errorf("TimeOfDay(%02d:30): got %q want %q", h, got, want)
		}
	}
}

func TestFormatClock(t *testing.T) {
	if got := FormatClock(1700000000, time.UTC); got != "22:13" {
		t.Errorf("FormatClock: got %q want 22:13", got)
	}
}

func TestFormatTemp(t *testing.T) {
	cases := []struct {
		v     float64
		units model.Units
		want  string
	}{
		{18, model.Metric, "18°C"},
		{17.5, model.Metric, "18°C"},
		{17.49, model.Metric, "17°C"},
		{64.4, model.Imperial, "64°F"},
		{-2.5, model.Metric, "-2°C"},
	}
	for _, c := range cases {
		if got := FormatTemp(c.v, c.units); got != c.want {
			t.Errorf("FormatTemp(%v, %s): got %q want %q", c.v, c.units, got, c.want)
		}
	}
}

func TestFormatMeasurements(t *testing.T) {
	if got := FormatWind(3.1, model.Metric); got != "3.1 m/s" {
		t.Errorf("FormatWind metric: %q", got)
	}
	if got := FormatWind(7, model.Imperial); got != "7 mph" {
		t.Errorf("FormatWind imperial: %q", got)
	}
	if got := FormatVisibility(10000); got != "10.0 km" {
		t.Errorf("FormatVisibility: %q", got)
	}
	if got := FormatPercent(60); got != "60%" {
		t.Errorf("FormatPercent: %q", got)
	}
}

func TestHeatAlert(t *testing.T) {
	s := paris()
	if _, ok := HeatAlert(s); ok {
		t.Error("18°C should not alert")
	}
	s.Measurements.Temp = 31
	if _, ok := HeatAlert(s); !ok {
		t.Error("31°C should alert")
	}
	s.Units = model.Imperial
	if _, ok := HeatAlert(s); ok {
		t.Error("imperial readings never alert")
	}
}

// ─── Render dispatcher ────────────────────────────────────────────────────────

func TestRenderWeatherTable(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, weatherResult(paris()), FormatTable); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Paris, FR", "18°C", "17°C", "Clear Sky", "60%", "3.1 m/s", "1012 hPa", "10.0 km"} {
		if !strings.Contains(out, want) {
			t.Errorf("table output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderWeatherJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, weatherResult(paris()), FormatJSON); err != nil {
		t.Fatalf("Render: %v", err)
	}
	var got struct {
		Kind string                `json:"kind"`
		Data model.WeatherSnapshot `json:"data"`
	}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if got.Kind != model.KindWeather || got.Data.Name != "Paris" || got.Data.Measurements.Temp != 18 {
		t.Errorf("unexpected JSON payload: %+v", got)
	}
}

func TestRenderWeatherCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, weatherResult(paris()), FormatCSV); err != nil {
		t.Fatalf("Render: %v", err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not CSV: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header + 1 row, got %d rows", len(rows))
	}
	if rows[0][0] != "name" || rows[1][0] != "Paris" || rows[1][6] != "18" {
		t.Errorf("unexpected CSV rows: %v", rows)
	}
}

func TestRenderLocationsFormats(t *testing.T) {
	res := &model.Result{
		Kind: model.KindLocations,
		Data: &model.LocationList{Name: "recent searches", Items: []string{"Paris", "Oslo"}},
	}

	var buf bytes.Buffer
	if err := Render(&buf, res, FormatJSONL); err != nil {
		t.Fatalf("jsonl: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 || !strings.Contains(lines[0], `"city":"Paris"`) {
		t.Errorf("jsonl lines: %q", lines)
	}

	buf.Reset()
	if err := Render(&buf, res, FormatMD); err != nil {
		t.Fatalf("md: %v", err)
	}
	if !strings.Contains(buf.String(), "| 2 | Oslo |") {
		t.Errorf("markdown output:\n%s", buf.String())
	}

	buf.Reset()
	empty := &model.Result{Kind: model.KindLocations, Data: &model.LocationList{Name: "favorite locations"}}
	if err := Render(&buf, empty, FormatTable); err != nil {
		t.Fatalf("table: %v", err)
	}
	if !strings.Contains(buf.String(), "No favorite locations.") {
		t.Errorf("empty list output: %q", buf.String())
	}
}

func TestValidFormat(t *testing.T) {
	for _, f := range Formats {
		if !ValidFormat(f) {
			t.Errorf("%s should be valid", f)
		}
	}
	if ValidFormat("xml") {
		t.Error("xml should be invalid")
	}
}

// ─── Screen cards ─────────────────────────────────────────────────────────────

func TestCurrentCardShowsTemperatureAndLocation(t *testing.T) {
	var buf bytes.Buffer
	CurrentCard(&buf, paris(), model.Light)
	out := buf.String()
	for _, want := range []string{"Paris, FR", "18°C", "Feels like 17°C", IconClear} {
		if !strings.Contains(out, want) {
			t.Errorf("current card missing %q:\n%s", want, out)
		}
	}
}

func TestForecastPanelEmptyState(t *testing.T) {
	var buf bytes.Buffer
	ForecastPanel(&buf, nil, model.Dark)
	if !strings.Contains(buf.String(), "No forecast data available yet.") {
		t.Errorf("empty forecast: %q", buf.String())
	}
}

func TestAirQualityCard(t *testing.T) {
	var buf bytes.Buffer
	AirQualityCard(&buf, nil, model.Light)
	if buf.Len() != 0 {
		t.Errorf("nil air quality should draw nothing, got %q", buf.String())
	}
	aq := &model.AirQuality{}
	aq.Main.AQI = 2
	aq.Components.PM25 = 7.6
	AirQualityCard(&buf, aq, model.Light)
	if !strings.Contains(buf.String(), "Fair") || !strings.Contains(buf.String(), "8 µg/m³") {
		t.Errorf("air quality card:\n%s", buf.String())
	}
}

func TestChipsAndBanners(t *testing.T) {
	var buf bytes.Buffer
	Chips(&buf, "Recent Searches", "⏱️", nil)
	ErrorBanner(&buf, "")
	if buf.Len() != 0 {
		t.Errorf("empty chips and banner should draw nothing, got %q", buf.String())
	}
	Chips(&buf, "Recent Searches", "⏱️", []string{"Paris", "Oslo"})
	ErrorBanner(&buf, "City not found. Please check the spelling and try again.")
	out := buf.String()
	if !strings.Contains(out, "1:⏱️ Paris") || !strings.Contains(out, "2:⏱️ Oslo") {
		t.Errorf("chips: %q", out)
	}
	if !strings.Contains(out, "City not found. Please check the spelling and try again.") {
		t.Errorf("banner: %q", out)
	}
}
