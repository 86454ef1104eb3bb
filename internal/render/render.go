// Package render converts Result values into human-readable or machine-parseable
// output, and draws the cards of the interactive screen. Each format is a
// separate function; the top-level Render dispatcher selects based on the
// format string.
package render

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/derickschaefer/atmosense/internal/model"
)

// Format constants matching --format flag values.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatJSONL = "jsonl"
	FormatCSV   = "csv"
	FormatTSV   = "tsv"
	FormatMD    = "md"
)

// Formats lists every accepted --format value.
var Formats = []string{FormatTable, FormatJSON, FormatJSONL, FormatCSV, FormatTSV, FormatMD}

// ValidFormat reports whether f is an accepted --format value.
func ValidFormat(f string) bool {
	for _, v := range Formats {
		if v == f {
			return true
		}
	}
	return false
}

// Render writes result to w in the specified format.
func Render(w io.Writer, result *model.Result, format string) error {
	switch format {
	case FormatJSON:
		return renderJSON(w, result)
	case FormatJSONL:
		return renderJSONL(w, result)
	case FormatCSV:
		return renderDelimited(w, result, ',')
	case FormatTSV:
		return renderDelimited(w, result, '\t')
	case FormatMD:
		return renderMarkdown(w, result)
	default:
		return renderTable(w, result)
	}
}

// RenderTo writes to stdout by default; if path is non-empty, writes to file.
func RenderTo(path string, result *model.Result, format string) error {
	if path == "" {
		return Render(os.Stdout, result, format)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer f.Close()
	return Render(f, result, format)
}

// ─── JSON ─────────────────────────────────────────────────────────────────────

func renderJSON(w io.Writer, result *model.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// ─── JSONL ────────────────────────────────────────────────────────────────────

func renderJSONL(w io.Writer, result *model.Result) error {
	enc := json.NewEncoder(w)
	if list, ok := result.Data.(*model.LocationList); ok {
		for i, item := range list.Items {
			row := struct {
				List  string `json:"list"`
				Index int    `json:"index"`
				City  string `json:"city"`
			}{list.Name, i + 1, item}
			if err := enc.Encode(row); err != nil {
				return err
			}
		}
		return nil
	}
	return enc.Encode(result.Data)
}

// ─── Table ────────────────────────────────────────────────────────────────────

func renderTable(w io.Writer, result *model.Result) error {
	switch result.Kind {
	case model.KindWeather:
		snap, ok := result.Data.(*model.WeatherSnapshot)
		if !ok {
			return fmt.Errorf("unexpected data type for weather")
		}
		return renderWeatherTable(w, snap)
	case model.KindLocations:
		list, ok := result.Data.(*model.LocationList)
		if !ok {
			return fmt.Errorf("unexpected data type for locations")
		}
		return renderLocationTable(w, list)
	default:
		return renderJSON(w, result)
	}
}

// weatherRows is the shared field/value layout for table, csv and markdown.
func weatherRows(s *model.WeatherSnapshot) [][]string {
	m := s.Measurements
	p := s.Primary()
	return [][]string{
		{"Location", s.Location()},
		{"Conditions", WeatherIcon(p.Description) + " " + capitalize(p.Description)},
		{"Temperature", FormatTemp(m.Temp, s.Units)},
		{"Feels Like", FormatTemp(m.FeelsLike, s.Units)},
		{"Min / Max", FormatTemp(m.TempMin, s.Units) + " / " + FormatTemp(m.TempMax, s.Units)},
		{"Humidity", FormatPercent(m.Humidity)},
		{"Wind", FormatWind(m.WindSpeed, s.Units) + " @ " + number(m.WindDeg) + "°"},
		{"Pressure", FormatPressure(m.Pressure)},
		{"Visibility", FormatVisibility(m.Visibility)},
		{"Cloud Cover", FormatPercent(m.Clouds)},
		{"Sunrise", FormatClock(s.Sunrise, time.Local)},
		{"Sunset", FormatClock(s.Sunset, time.Local)},
		{"Observed", time.Unix(m.ObservedAt, 0).Local().Format("2006-01-02 15:04")},
	}
}

func renderWeatherTable(w io.Writer, s *model.WeatherSnapshot) error {
	tw := tablewriter.NewWriter(w)
	tw.SetHeader([]string{"FIELD", "VALUE"})
	tw.SetBorder(true)
	tw.SetRowLine(false)
	tw.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	tw.SetAlignment(tablewriter.ALIGN_LEFT)
	tw.SetAutoWrapText(false)
	for _, r := range weatherRows(s) {
		tw.Append(r)
	}
	tw.Render()
	if msg, ok := HeatAlert(s); ok {
		fmt.Fprintln(w, msg)
	}
	return nil
}

func renderLocationTable(w io.Writer, list *model.LocationList) error {
	if len(list.Items) == 0 {
		fmt.Fprintf(w, "No %s.\n", list.Name)
		return nil
	}
	tw := tablewriter.NewWriter(w)
	tw.SetHeader([]string{"#", strings.ToUpper(list.Name)})
	tw.SetBorder(true)
	tw.SetRowLine(false)
	tw.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	tw.SetAlignment(tablewriter.ALIGN_LEFT)
	tw.SetAutoWrapText(false)
	for i, item := range list.Items {
		tw.Append([]string{fmt.Sprintf("%d", i+1), item})
	}
	tw.Render()
	return nil
}

// ─── CSV / TSV ────────────────────────────────────────────────────────────────

func renderDelimited(w io.Writer, result *model.Result, sep rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = sep

	switch data := result.Data.(type) {
	case *model.WeatherSnapshot:
		m := data.Measurements
		p := data.Primary()
		_ = cw.Write([]string{
			"name", "country", "description", "main", "icon", "units",
			"temp", "feels_like", "temp_min", "temp_max", "pressure", "humidity",
			"wind_speed", "wind_deg", "clouds", "visibility", "sunrise", "sunset", "dt",
		})
		_ = cw.Write([]string{
			data.Name, data.Country, p.Description, p.Main, p.Icon, string(data.Units),
			number(m.Temp), number(m.FeelsLike), number(m.TempMin), number(m.TempMax),
			number(m.Pressure), number(m.Humidity), number(m.WindSpeed), number(m.WindDeg),
			number(m.Clouds), number(m.Visibility),
			fmt.Sprintf("%d", data.Sunrise), fmt.Sprintf("%d", data.Sunset), fmt.Sprintf("%d", m.ObservedAt),
		})
	case *model.LocationList:
		_ = cw.Write([]string{"list", "index", "city"})
		for i, item := range data.Items {
			_ = cw.Write([]string{data.Name, fmt.Sprintf("%d", i+1), item})
		}
	default:
		// Fallback: serialize as JSON on a single line
		b, _ := json.Marshal(result.Data)
		_ = cw.Write([]string{string(b)})
	}

	cw.Flush()
	return cw.Error()
}

// ─── Markdown ─────────────────────────────────────────────────────────────────

func renderMarkdown(w io.Writer, result *model.Result) error {
	switch data := result.Data.(type) {
	case *model.WeatherSnapshot:
		fmt.Fprintf(w, "| FIELD | VALUE |\n|-------|-------|\n")
		for _, r := range weatherRows(data) {
			fmt.Fprintf(w, "| %s | %s |\n", r[0], mdEscape(r[1]))
		}
		return nil
	case *model.LocationList:
		fmt.Fprintf(w, "| # | %s |\n|---|----|\n", strings.ToUpper(data.Name))
		for i, item := range data.Items {
			fmt.Fprintf(w, "| %d | %s |\n", i+1, mdEscape(item))
		}
		return nil
	default:
		return renderJSON(w, result)
	}
}

// ─── Warnings / Stats Footer ─────────────────────────────────────────────────

// PrintFooter writes warnings and stats to w when verbose mode is on.
func PrintFooter(w io.Writer, result *model.Result, verbose bool) {
	for _, warn := range result.Warnings {
		fmt.Fprintf(w, "⚠  %s\n", warn)
	}
	if verbose {
		fmt.Fprintf(w, "\n[%s • %d items • %dms]\n",
			result.GeneratedAt.Format(time.RFC3339),
			result.Stats.Items,
			result.Stats.DurationMs,
		)
	}
}

func mdEscape(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}
