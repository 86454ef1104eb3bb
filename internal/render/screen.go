package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/derickschaefer/atmosense/internal/model"
)

const (
	appName = "Atmosense"
	tagline = "Your Intelligent Weather Companion"
)

// Screen tabs.
const (
	TabCurrent  = "current"
	TabForecast = "forecast"
	TabDetails  = "details"
)

// Tabs lists the screen tabs in display order.
var Tabs = []string{TabCurrent, TabForecast, TabDetails}

var tabTitles = map[string]string{
	TabCurrent:  "Current",
	TabForecast: "5-Day Forecast",
	TabDetails:  "Details",
}

// headerColor is the tablewriter header style for a theme.
func headerColor(theme model.Theme) tablewriter.Colors {
	if theme == model.Dark {
		return tablewriter.Colors{tablewriter.Bold, tablewriter.FgHiWhiteColor}
	}
	return tablewriter.Colors{tablewriter.Bold, tablewriter.FgBlueColor}
}

// card returns a bordered two-or-more column table styled for theme.
func card(w io.Writer, theme model.Theme, headers ...string) *tablewriter.Table {
	tw := tablewriter.NewWriter(w)
	tw.SetAutoFormatHeaders(false)
	tw.SetHeader(headers)
	tw.SetBorder(true)
	tw.SetRowLine(false)
	tw.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	tw.SetAlignment(tablewriter.ALIGN_LEFT)
	tw.SetAutoWrapText(false)
	colors := make([]tablewriter.Colors, len(headers))
	for i := range colors {
		colors[i] = headerColor(theme)
	}
	tw.SetHeaderColor(colors...)
	return tw
}

// Splash draws the welcome screen.
func Splash(w io.Writer) {
	fmt.Fprintf(w, "\n    %s\n    %s\n\n", appName, tagline)
}

// Header draws the title, greeting and the two toggle buttons.
func Header(w io.Writer, now time.Time, units model.Units, theme model.Theme) {
	fmt.Fprintf(w, "%s\n%s\n", appName, Greeting(now))
	fmt.Fprintf(w, "[%s] [%s]\n\n", units.TempSymbol(), theme.Glyph())
}

// SearchBar draws the input line with its submit state.
func SearchBar(w io.Writer, input string, loading bool) {
	button := "Search"
	if loading {
		button = "Loading..."
	}
	if input == "" {
		input = "Search for a city..."
	}
	fmt.Fprintf(w, "🔍 %s  [%s]\n\n", input, button)
}

// Chips draws a titled row of numbered chips. Nothing is drawn for an empty list.
func Chips(w io.Writer, title, glyph string, items []string) {
	if len(items) == 0 {
		return
	}
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = fmt.Sprintf("%d:%s %s", i+1, glyph, it)
	}
	fmt.Fprintf(w, "%s\n  %s\n\n", title, strings.Join(parts, "  "))
}

// TabBar draws the tab strip with the selected tab bracketed.
func TabBar(w io.Writer, selected string) {
	parts := make([]string, len(Tabs))
	for i, t := range Tabs {
		if t == selected {
			parts[i] = "[" + tabTitles[t] + "]"
		} else {
			parts[i] = " " + tabTitles[t] + " "
		}
	}
	fmt.Fprintln(w, strings.Join(parts, " | "))
}

// CurrentCard draws the main conditions card.
func CurrentCard(w io.Writer, s *model.WeatherSnapshot, theme model.Theme) {
	m := s.Measurements
	p := s.Primary()
	fmt.Fprintf(w, "%s  %s\n%s\n", WeatherIcon(p.Description), s.Location(), capitalize(p.Description))

	tw := card(w, theme, "🌡️ "+FormatTemp(m.Temp, s.Units), "Feels like "+FormatTemp(m.FeelsLike, s.Units))
	tw.Append([]string{"💨 Wind", FormatWind(m.WindSpeed, s.Units) + " " + number(m.WindDeg) + "°"})
	tw.Append([]string{"💧 Humidity", FormatPercent(m.Humidity)})
	tw.Append([]string{"🌅 Sunrise", FormatClock(s.Sunrise, time.Local)})
	tw.Append([]string{"🌇 Sunset", FormatClock(s.Sunset, time.Local)})
	tw.Render()
}

// DetailsCard draws atmospheric and wind details.
func DetailsCard(w io.Writer, s *model.WeatherSnapshot, theme model.Theme) {
	m := s.Measurements
	tw := card(w, theme, "Atmospheric Conditions", "")
	tw.Append([]string{"Pressure", FormatPressure(m.Pressure)})
	tw.Append([]string{"Visibility", FormatVisibility(m.Visibility)})
	tw.Append([]string{"Cloud Cover", FormatPercent(m.Clouds)})
	tw.Render()

	tw = card(w, theme, "Wind Information", "")
	tw.Append([]string{"Direction", number(m.WindDeg) + "°"})
	tw.Append([]string{"Speed", FormatWind(m.WindSpeed, s.Units)})
	tw.Render()
}

// ForecastPanel draws one column per day, or the empty state.
func ForecastPanel(w io.Writer, days []model.ForecastDay, theme model.Theme) {
	if len(days) == 0 {
		fmt.Fprintln(w, "No forecast data available yet.")
		return
	}
	headers := make([]string, len(days))
	icons := make([]string, len(days))
	temps := make([]string, len(days))
	for i, d := range days {
		headers[i] = time.Unix(d.Dt, 0).Local().Format("Mon")
		desc := ""
		if len(d.Weather) > 0 {
			desc = d.Weather[0].Description
		}
		icons[i] = WeatherIcon(desc)
		temps[i] = FormatDegrees(d.Temp.Max) + " " + FormatDegrees(d.Temp.Min)
	}
	tw := card(w, theme, headers...)
	tw.Append(icons)
	tw.Append(temps)
	tw.Render()
}

// AirQualityCard draws the air-quality panel. Nothing is drawn for nil.
func AirQualityCard(w io.Writer, aq *model.AirQuality, theme model.Theme) {
	if aq == nil {
		return
	}
	tw := card(w, theme, "Air Quality", "")
	tw.Append([]string{"Status", AirQualityLabel(aq.Main.AQI)})
	tw.Append([]string{"PM2.5", fmt.Sprintf("%d µg/m³", roundHalfUp(aq.Components.PM25))})
	tw.Append([]string{"PM10", fmt.Sprintf("%d µg/m³", roundHalfUp(aq.Components.PM10))})
	tw.Render()
}

// AlertBanner prints the heat advisory when it applies.
func AlertBanner(w io.Writer, s *model.WeatherSnapshot) {
	if msg, ok := HeatAlert(s); ok {
		fmt.Fprintln(w, msg)
	}
}

// ErrorBanner prints msg as an inline error. Nothing is drawn for "".
func ErrorBanner(w io.Writer, msg string) {
	if msg == "" {
		return
	}
	fmt.Fprintf(w, "⚠  %s\n", msg)
}

// Footer draws the copyright line.
func Footer(w io.Writer, now time.Time) {
	fmt.Fprintf(w, "\n© %d %s. All rights reserved.\n", now.Year(), appName)
}
