package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/derickschaefer/atmosense/internal/config"
	"github.com/derickschaefer/atmosense/internal/render"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage atmosense configuration",
	Long:  `Read and write atmosense configuration stored in config.json.`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a template config.json in the current directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.DefaultConfigFile
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config.json already exists at %s (delete it first to re-initialise)", path)
		}
		if err := config.WriteFile(path, config.Template()); err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "✓ Created %s\n", path)
		fmt.Fprintln(out, "  Edit it and set your api_key to get started.")
		fmt.Fprintln(out, "  Get a free key at: https://home.openweathermap.org/api_keys")
		return nil
	},
}

var configGetShowSecrets bool

// configOut is the structured form of `config get`.
type configOut struct {
	APIKey      string  `json:"api_key"`
	Format      string  `json:"default_format"`
	Units       string  `json:"units"`
	Theme       string  `json:"theme"`
	Timeout     string  `json:"timeout"`
	Rate        float64 `json:"rate"`
	BaseURL     string  `json:"base_url"`
	DBPath      string  `json:"db_path"`
	Geolocation string  `json:"geolocation"`
	Position    string  `json:"position,omitempty"`
	Splash      string  `json:"splash"`
	ConfigFile  string  `json:"config_file"`
}

var configGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the current resolved configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		apiKey := cfg.RedactedAPIKey()
		if configGetShowSecrets {
			apiKey = cfg.APIKey
		}
		if cfg.APIKey == "" {
			apiKey = "(not set)"
		}

		src := "(not found)"
		if cfg.ConfigPath != "" {
			src = cfg.ConfigPath
		}

		geoSource := cfg.Geolocation
		position := ""
		switch cfg.Geolocation {
		case "static":
			position = fmt.Sprintf("%g,%g", cfg.Latitude, cfg.Longitude)
		case "ip":
			geoSource += " (" + cfg.GeoURL + ")"
		}

		out := configOut{
			APIKey:      apiKey,
			Format:      cfg.Format,
			Units:       string(cfg.Units),
			Theme:       string(cfg.Theme),
			Timeout:     cfg.Timeout.String(),
			Rate:        cfg.Rate,
			BaseURL:     cfg.BaseURL,
			DBPath:      cfg.DBPath,
			Geolocation: geoSource,
			Position:    position,
			Splash:      cfg.Splash.String(),
			ConfigFile:  src,
		}

		if resolveFormat(cfg.Format) == render.FormatJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		}

		rows := [][]string{
			{"api_key", out.APIKey},
			{"default_format", out.Format},
			{"units", out.Units},
			{"theme", out.Theme},
			{"timeout", out.Timeout},
			{"rate", fmt.Sprintf("%.1f req/s", out.Rate)},
			{"base_url", out.BaseURL},
			{"db_path", out.DBPath},
			{"geolocation", out.Geolocation},
		}
		if out.Position != "" {
			rows = append(rows, []string{"position", out.Position})
		}
		rows = append(rows,
			[]string{"splash", out.Splash},
			[]string{"config_file", out.ConfigFile},
		)
		printKVTable(cmd.OutOrStdout(), rows)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value in config.json",
	Long: `Set a configuration value in config.json, creating the file from the
template if it does not exist.

Valid keys: ` + strings.Join(config.Keys(), ", "),
	Example: `  atmosense config set api_key YOUR_KEY
  atmosense config set units imperial
  atmosense config set geolocation static
  atmosense config set latitude 48.85`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := strings.ToLower(args[0])

		// Load existing file or start from template
		var f config.File
		existing, path, err := config.LoadFile()
		switch {
		case err == nil:
			f = *existing
		case errors.Is(err, os.ErrNotExist):
			path = config.DefaultConfigFile
			f = config.Template()
		default:
			return err
		}

		if err := f.Set(key, args[1]); err != nil {
			return err
		}
		if err := config.WriteFile(path, f); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Set %s in %s\n", key, path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)

	configGetCmd.Flags().BoolVar(&configGetShowSecrets, "show-secrets", false, "show API key in plain text")
}
