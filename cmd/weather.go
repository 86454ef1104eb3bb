package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/derickschaefer/atmosense/internal/render"
	"github.com/derickschaefer/atmosense/internal/view"
)

var weatherFlags struct {
	Lat  float64
	Lon  float64
	Here bool
}

var weatherCmd = &cobra.Command{
	Use:   "weather [CITY...]",
	Short: "Show current conditions for a city or a position",
	Long: `Show current conditions for a city, a latitude/longitude pair, or the
position reported by the configured geolocation source.

Successful city lookups are added to the recent-search list, exactly as a
search on the interactive screen would be.`,
	Example: `  atmosense weather Paris
  atmosense weather New York --units imperial
  atmosense weather --lat 48.85 --lon 2.35 --format json
  atmosense weather --here`,
	RunE: func(cmd *cobra.Command, args []string) error {
		city := strings.TrimSpace(strings.Join(args, " "))
		hasCoords := cmd.Flags().Changed("lat") || cmd.Flags().Changed("lon")

		subjects := 0
		for _, set := range []bool{city != "", hasCoords, weatherFlags.Here} {
			if set {
				subjects++
			}
		}
		if subjects != 1 {
			return errors.New("give exactly one of: a city name, --lat/--lon, or --here")
		}
		if hasCoords && !(cmd.Flags().Changed("lat") && cmd.Flags().Changed("lon")) {
			return errors.New("--lat and --lon must be given together")
		}

		deps, err := buildQueryDeps()
		if err != nil {
			return err
		}
		defer deps.Close()

		format := resolveFormat(deps.Config.Format)
		if err := checkFormat(format); err != nil {
			return err
		}

		ctx := cmd.Context()
		started := time.Now()
		v := newView(deps, view.Options{})

		switch {
		case city != "":
			v.Submit(ctx, city)
		case hasCoords:
			v.SubmitCoordinates(ctx, weatherFlags.Lat, weatherFlags.Lon)
		default:
			pos, err := deps.Locator.Locate(ctx)
			if err != nil {
				return fmt.Errorf("locating you: %w", err)
			}
			v.SubmitCoordinates(ctx, pos.Lat, pos.Lon)
		}

		st := v.State()
		if st.Status == view.Failed {
			return errors.New(st.Err)
		}

		result := buildWeatherResult("weather", st.Snapshot, started)
		if err := render.RenderTo(globalFlags.Out, result, format); err != nil {
			return err
		}
		if !deps.Config.Quiet {
			render.PrintFooter(cmd.ErrOrStderr(), result, deps.Config.Verbose)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(weatherCmd)

	f := weatherCmd.Flags()
	f.Float64Var(&weatherFlags.Lat, "lat", 0, "latitude in degrees (-90..90)")
	f.Float64Var(&weatherFlags.Lon, "lon", 0, "longitude in degrees (-180..180)")
	f.BoolVar(&weatherFlags.Here, "here", false, "use the configured geolocation source")
}
