package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/derickschaefer/atmosense/internal/app"
	"github.com/derickschaefer/atmosense/internal/model"
	"github.com/derickschaefer/atmosense/internal/render"
	"github.com/derickschaefer/atmosense/internal/view"
)

// resolveFormat returns the effective format string, falling back to "table".
func resolveFormat(cfgFormat string) string {
	if globalFlags.Format != "" {
		return globalFlags.Format
	}
	if cfgFormat != "" {
		return cfgFormat
	}
	return render.FormatTable
}

// checkFormat rejects unknown --format values before any request is made.
func checkFormat(format string) error {
	if !render.ValidFormat(format) {
		return fmt.Errorf("unknown format %q (want one of: %s)", format, strings.Join(render.Formats, ", "))
	}
	return nil
}

// outputWriter returns def, or the --out file when one is set. The returned
// close function must always be called.
func outputWriter(def io.Writer) (io.Writer, func() error, error) {
	if globalFlags.Out == "" {
		return def, func() error { return nil }, nil
	}
	f, err := os.Create(globalFlags.Out)
	if err != nil {
		return nil, nil, fmt.Errorf("creating output file: %w", err)
	}
	return f, f.Close, nil
}

// printSimpleTable renders a simple table with headers using tablewriter.
// The add callback is called with row values as variadic strings.
func printSimpleTable(w io.Writer, headers []string, fill func(add func(...string))) {
	tw := tablewriter.NewWriter(w)
	tw.SetHeader(headers)
	tw.SetBorder(true)
	tw.SetRowLine(false)
	tw.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	tw.SetAlignment(tablewriter.ALIGN_LEFT)
	tw.SetAutoWrapText(false)

	fill(func(cols ...string) {
		tw.Append(cols)
	})
	tw.Render()
}

// printKVTable renders a two-column key/value listing using aligned columns.
func printKVTable(w io.Writer, rows [][]string) {
	maxKey := 0
	for _, r := range rows {
		if len(r[0]) > maxKey {
			maxKey = len(r[0])
		}
	}
	for _, r := range rows {
		padding := strings.Repeat(" ", maxKey-len(r[0]))
		fmt.Fprintf(w, "  %s%s  %s\n", r[0], padding, r[1])
	}
}

// parseIndex parses a 1-based chip number as typed by the user and returns
// the 0-based index.
func parseIndex(s, label string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid %s %q: expected a number starting at 1", label, s)
	}
	return n - 1, nil
}

// newView builds a View over deps. The store is optional: when it cannot be
// opened the screen still works with in-memory lists.
func newView(deps *app.Deps, opts view.Options) *view.View {
	var st view.Storage
	if err := deps.RequireStore(); err != nil {
		slog.Warn("local storage unavailable; recent searches will not persist", "err", err)
	} else {
		st = deps.Store
	}
	if opts.Units == "" {
		opts.Units = deps.Config.Units
	}
	if opts.Theme == "" {
		opts.Theme = deps.Config.Theme
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return view.New(deps.Client, st, opts)
}

// buildWeatherResult wraps a snapshot in a Result envelope.
func buildWeatherResult(command string, snap *model.WeatherSnapshot, started time.Time) *model.Result {
	return &model.Result{
		Kind:        model.KindWeather,
		GeneratedAt: time.Now(),
		Command:     command,
		Data:        snap,
		Stats: model.ResultStats{
			DurationMs: time.Since(started).Milliseconds(),
			Items:      1,
		},
	}
}

// buildLocationsResult wraps a named city list in a Result envelope.
func buildLocationsResult(command, name string, items []string) *model.Result {
	return &model.Result{
		Kind:        model.KindLocations,
		GeneratedAt: time.Now(),
		Command:     command,
		Data:        &model.LocationList{Name: name, Items: items},
		Stats:       model.ResultStats{Items: len(items)},
	}
}

// humanBytes formats a byte count for display.
func humanBytes(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
