// Package config handles loading and resolving atmosense configuration.
// Resolution order (first non-empty value wins):
//  1. CLI flags (--api-key and friends, applied by the command layer)
//  2. Environment variables OPENWEATHER_API_KEY, ATMOSENSE_DB_PATH
//     (a .env file in the working directory is read into the environment
//     first, never replacing variables that are already set)
//  3. config.json in the current working directory
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/derickschaefer/atmosense/internal/model"
)

const (
	DefaultConfigFile  = "config.json"
	DefaultEnvFile     = ".env"
	DefaultFormat      = "table"
	DefaultTimeout     = 30 * time.Second
	DefaultRate        = 5.0
	DefaultSplash      = 2 * time.Second
	DefaultBaseURL     = "https://api.openweathermap.org/data/2.5/"
	DefaultGeolocation = "ip"
	DefaultGeoURL      = "http://ip-api.com/json"
	EnvAPIKey          = "OPENWEATHER_API_KEY"
	EnvDBPath          = "ATMOSENSE_DB_PATH"
)

var validate = validator.New()

// File is the on-disk representation of config.json.
type File struct {
	APIKey        string  `json:"api_key"`
	DefaultFormat string  `json:"default_format"`
	Units         string  `json:"units"`
	Theme         string  `json:"theme"`
	Timeout       string  `json:"timeout"`
	Rate          float64 `json:"rate"`
	BaseURL       string  `json:"base_url"`
	DBPath        string  `json:"db_path"`
	Geolocation   string  `json:"geolocation"`
	Latitude      float64 `json:"latitude,omitempty"`
	Longitude     float64 `json:"longitude,omitempty"`
	GeoURL        string  `json:"geo_url,omitempty"`
	Splash        string  `json:"splash"`
}

// Config is the fully-resolved runtime configuration.
// All callers use this struct; the File is only read during loading.
type Config struct {
	APIKey      string
	Format      string
	Units       model.Units
	Theme       model.Theme
	Timeout     time.Duration
	Rate        float64
	BaseURL     string
	DBPath      string
	Geolocation string
	Latitude    float64
	Longitude   float64
	GeoURL      string
	Splash      time.Duration
	ConfigPath  string // path of the config.json that was loaded (empty if none found)

	// Runtime overrides set from CLI flags after Load()
	Quiet   bool
	Verbose bool
	Debug   bool
}

// Load resolves configuration from all sources.
// flagAPIKey is the value of --api-key (empty string if not set).
func Load(flagAPIKey string) (*Config, error) {
	cfg := &Config{
		Format:      DefaultFormat,
		Units:       model.Metric,
		Theme:       model.Light,
		Timeout:     DefaultTimeout,
		Rate:        DefaultRate,
		BaseURL:     DefaultBaseURL,
		Geolocation: DefaultGeolocation,
		GeoURL:      DefaultGeoURL,
		Splash:      DefaultSplash,
	}

	// Layer 1: config.json (lowest priority)
	f, path, err := LoadFile()
	switch {
	case err == nil:
		applyFile(cfg, f, path)
	case !errors.Is(err, os.ErrNotExist):
		return nil, err
	}

	// Layer 2: environment, seeded from .env
	if err := godotenv.Load(DefaultEnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading %s: %w", DefaultEnvFile, err)
	}
	if v := os.Getenv(EnvAPIKey); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv(EnvDBPath); v != "" {
		cfg.DBPath = v
	}

	// Layer 3: CLI flag (highest priority)
	if flagAPIKey != "" {
		cfg.APIKey = flagAPIKey
	}

	// Set default DB path if still unset
	if cfg.DBPath == "" {
		home, err := os.UserHomeDir()
		if err == nil {
			cfg.DBPath = filepath.Join(home, ".atmosense", "atmosense.db")
		}
	}

	return cfg, nil
}

// Validate returns an error if required fields are missing or a setting is
// out of range.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return errors.New(
			"API key not found.\n\n" +
				"Set it one of these ways:\n" +
				"  1. CLI flag:        atmosense --api-key YOUR_KEY ...\n" +
				"  2. Environment:     export OPENWEATHER_API_KEY=YOUR_KEY (or put it in .env)\n" +
				"  3. config.json:     {\"api_key\": \"YOUR_KEY\"}\n\n" +
				"Get a free key at https://home.openweathermap.org/api_keys",
		)
	}
	return c.ValidateSettings()
}

// ValidateSettings checks everything except the API key.
func (c *Config) ValidateSettings() error {
	if _, ok := model.ParseUnits(string(c.Units)); !ok {
		return fmt.Errorf("invalid units %q (want metric or imperial)", c.Units)
	}
	if _, ok := model.ParseTheme(string(c.Theme)); !ok {
		return fmt.Errorf("invalid theme %q (want light or dark)", c.Theme)
	}
	if err := validate.Var(c.Geolocation, "oneof=ip static off"); err != nil {
		return fmt.Errorf("invalid geolocation %q (want ip, static or off)", c.Geolocation)
	}
	if c.Geolocation == "static" {
		if err := validate.Var(c.Latitude, "latitude"); err != nil {
			return fmt.Errorf("invalid latitude %g", c.Latitude)
		}
		if err := validate.Var(c.Longitude, "longitude"); err != nil {
			return fmt.Errorf("invalid longitude %g", c.Longitude)
		}
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.Rate < 0 {
		return fmt.Errorf("rate must not be negative, got %g", c.Rate)
	}
	return nil
}

// RedactedAPIKey returns the API key with most characters replaced by asterisks.
// Safe for logging and display.
func (c *Config) RedactedAPIKey() string {
	if len(c.APIKey) <= 4 {
		return "****"
	}
	return c.APIKey[:2] + "****" + c.APIKey[len(c.APIKey)-2:]
}

// LoadFile reads config.json from the current working directory.
// A missing file yields an error matching os.ErrNotExist.
func LoadFile() (*File, string, error) {
	path, err := filepath.Abs(DefaultConfigFile)
	if err != nil {
		return nil, "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", fmt.Errorf("config.json not found at %s: %w", path, os.ErrNotExist)
		}
		return nil, "", fmt.Errorf("reading config.json: %w", err)
	}
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, "", fmt.Errorf("parsing config.json: %w", err)
	}
	return &f, path, nil
}

// applyFile copies values from a parsed File into cfg,
// skipping any fields that are zero/empty.
func applyFile(cfg *Config, f *File, path string) {
	cfg.ConfigPath = path
	if f.APIKey != "" {
		cfg.APIKey = f.APIKey
	}
	if f.DefaultFormat != "" {
		cfg.Format = f.DefaultFormat
	}
	if u, ok := model.ParseUnits(f.Units); ok {
		cfg.Units = u
	}
	if th, ok := model.ParseTheme(f.Theme); ok {
		cfg.Theme = th
	}
	if f.Timeout != "" {
		if d, err := time.ParseDuration(f.Timeout); err == nil {
			cfg.Timeout = d
		}
	}
	if f.Rate > 0 {
		cfg.Rate = f.Rate
	}
	if f.BaseURL != "" {
		cfg.BaseURL = f.BaseURL
	}
	if f.DBPath != "" {
		cfg.DBPath = f.DBPath
	}
	if f.Geolocation != "" {
		cfg.Geolocation = strings.ToLower(f.Geolocation)
	}
	if f.Latitude != 0 || f.Longitude != 0 {
		cfg.Latitude = f.Latitude
		cfg.Longitude = f.Longitude
	}
	if f.GeoURL != "" {
		cfg.GeoURL = f.GeoURL
	}
	if f.Splash != "" {
		if d, err := time.ParseDuration(f.Splash); err == nil && d >= 0 {
			cfg.Splash = d
		}
	}
}

// Template returns a File populated with sensible defaults, suitable for
// writing an initial config.json via `atmosense config init`.
func Template() File {
	return File{
		APIKey:        "",
		DefaultFormat: DefaultFormat,
		Units:         string(model.Metric),
		Theme:         string(model.Light),
		Timeout:       "30s",
		Rate:          DefaultRate,
		BaseURL:       DefaultBaseURL,
		Geolocation:   DefaultGeolocation,
		Splash:        "2s",
	}
}

// setters maps each settable key to a function that parses and stores it.
var setters = map[string]func(f *File, val string) error{
	"api_key": func(f *File, v string) error { f.APIKey = v; return nil },
	"default_format": func(f *File, v string) error {
		if err := validate.Var(v, "oneof=table json jsonl csv tsv md"); err != nil {
			return fmt.Errorf("default_format must be one of table, json, jsonl, csv, tsv, md")
		}
		f.DefaultFormat = v
		return nil
	},
	"units": func(f *File, v string) error {
		u, ok := model.ParseUnits(v)
		if !ok {
			return fmt.Errorf("units must be metric or imperial")
		}
		f.Units = string(u)
		return nil
	},
	"theme": func(f *File, v string) error {
		th, ok := model.ParseTheme(v)
		if !ok {
			return fmt.Errorf("theme must be light or dark")
		}
		f.Theme = string(th)
		return nil
	},
	"timeout": func(f *File, v string) error {
		if d, err := time.ParseDuration(v); err != nil || d <= 0 {
			return fmt.Errorf("timeout must be a positive duration such as 30s")
		}
		f.Timeout = v
		return nil
	},
	"rate": func(f *File, v string) error {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil || r < 0 {
			return fmt.Errorf("rate must be a non-negative number")
		}
		f.Rate = r
		return nil
	},
	"base_url": func(f *File, v string) error {
		if err := validate.Var(v, "url"); err != nil {
			return fmt.Errorf("base_url must be a URL")
		}
		f.BaseURL = v
		return nil
	},
	"db_path": func(f *File, v string) error { f.DBPath = v; return nil },
	"geolocation": func(f *File, v string) error {
		v = strings.ToLower(v)
		if err := validate.Var(v, "oneof=ip static off"); err != nil {
			return fmt.Errorf("geolocation must be ip, static or off")
		}
		f.Geolocation = v
		return nil
	},
	"latitude": func(f *File, v string) error {
		lat, err := strconv.ParseFloat(v, 64)
		if err != nil || validate.Var(lat, "latitude") != nil {
			return fmt.Errorf("latitude must be a number between -90 and 90")
		}
		f.Latitude = lat
		return nil
	},
	"longitude": func(f *File, v string) error {
		lon, err := strconv.ParseFloat(v, 64)
		if err != nil || validate.Var(lon, "longitude") != nil {
			return fmt.Errorf("longitude must be a number between -180 and 180")
		}
		f.Longitude = lon
		return nil
	},
	"geo_url": func(f *File, v string) error {
		if err := validate.Var(v, "url"); err != nil {
			return fmt.Errorf("geo_url must be a URL")
		}
		f.GeoURL = v
		return nil
	},
	"splash": func(f *File, v string) error {
		if d, err := time.ParseDuration(v); err != nil || d < 0 {
			return fmt.Errorf("splash must be a duration such as 2s")
		}
		f.Splash = v
		return nil
	},
}

// Keys lists the settable config.json keys in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Set parses val and stores it under key. "format" is accepted as an alias
// for default_format.
func (f *File) Set(key, val string) error {
	key = strings.ToLower(key)
	if key == "format" {
		key = "default_format"
	}
	set, ok := setters[key]
	if !ok {
		return fmt.Errorf("unknown config key: %q\n\nValid keys: %s", key, strings.Join(Keys(), ", "))
	}
	return set(f, val)
}

// WriteFile serialises a File to the given path.
func WriteFile(path string, f File) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0600)
}
