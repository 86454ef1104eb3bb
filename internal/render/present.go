package render

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/derickschaefer/atmosense/internal/model"
)

// Condition icons.
const (
	IconRain    = "🌧️"
	IconCloud   = "☁️"
	IconSnow    = "❄️"
	IconThunder = "⛈️"
	IconMist    = "🌫️"
	IconClear   = "☀️"
)

// iconRules is checked in order; the first keyword found in the description
// wins. Thunder leads so that "thunderstorm with rain" reads as a storm.
var iconRules = []struct {
	keywords []string
	icon     string
}{
	{[]string{"thunder"}, IconThunder},
	{[]string{"rain"}, IconRain},
	{[]string{"cloud"}, IconCloud},
	{[]string{"snow"}, IconSnow},
	{[]string{"mist", "fog"}, IconMist},
}

// WeatherIcon picks an icon by keyword match on a condition description.
func WeatherIcon(description string) string {
	d := strings.ToLower(description)
	for _, r := range iconRules {
		for _, kw := range r.keywords {
			if strings.Contains(d, kw) {
				return r.icon
			}
		}
	}
	return IconClear
}

// TimeOfDay returns morning, afternoon or evening for t's wall-clock hour.
func TimeOfDay(t time.Time) string {
	switch h := t.Hour(); {
	case h < 12:
		return "morning"
	case h < 17:
		return "afternoon"
	default:
		return "evening"
	}
}

// Greeting is the header line under the title.
func Greeting(t time.Time) string {
	return fmt.Sprintf("Good %s! Experience weather with intelligence.", TimeOfDay(t))
}

// FormatClock renders a UNIX timestamp as HH:MM in loc.
func FormatClock(unix int64, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return time.Unix(unix, 0).In(loc).Format("15:04")
}

var airQualityLevels = []string{"Good", "Fair", "Moderate", "Poor", "Very Poor"}

// AirQualityLabel maps the 1..5 AQI ordinal to its label.
func AirQualityLabel(aqi int) string {
	if aqi < 1 || aqi > len(airQualityLevels) {
		return "Unknown"
	}
	return airQualityLevels[aqi-1]
}

// roundHalfUp rounds .5 toward positive infinity.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

// FormatTemp renders a rounded temperature with its unit, e.g. "18°C".
func FormatTemp(v float64, u model.Units) string {
	return fmt.Sprintf("%d%s", roundHalfUp(v), u.TempSymbol())
}

// FormatDegrees renders a rounded value with a bare degree sign, e.g. "20°".
func FormatDegrees(v float64) string {
	return fmt.Sprintf("%d°", roundHalfUp(v))
}

// FormatWind renders speed in the unit system's speed unit, e.g. "3.1 m/s".
func FormatWind(speed float64, u model.Units) string {
	return number(speed) + " " + u.SpeedSymbol()
}

// FormatVisibility renders metres as kilometres with one decimal.
func FormatVisibility(metres float64) string {
	return fmt.Sprintf("%.1f km", metres/1000)
}

// FormatPercent renders v followed by a percent sign.
func FormatPercent(v float64) string {
	return number(v) + "%"
}

// FormatPressure renders hectopascals.
func FormatPressure(v float64) string {
	return number(v) + " hPa"
}

// HeatAlert returns the high-temperature advisory for hot metric readings.
func HeatAlert(s *model.WeatherSnapshot) (string, bool) {
	if s == nil || s.Units != model.Metric || s.Measurements.Temp <= 30 {
		return "", false
	}
	return "🌡️ High temperature alert! Stay hydrated and avoid prolonged sun exposure.", true
}

// number prints v without trailing zeros.
func number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// capitalize upper-cases the first letter of each word.
func capitalize(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		words[i] = strings.ToUpper(string(r[0])) + string(r[1:])
	}
	return strings.Join(words, " ")
}
