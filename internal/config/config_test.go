package config_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/derickschaefer/atmosense/internal/config"
	"github.com/derickschaefer/atmosense/internal/model"
)

// ─── Helpers ──────────────────────────────────────────────────────────────────

// chdir changes the working directory to dir for the duration of the test.
func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(orig) })
}

// writeConfig writes a config.json into dir and changes the working directory
// to dir for the duration of the test.
func writeConfig(t *testing.T, dir string, f config.File) {
	t.Helper()
	path := filepath.Join(dir, "config.json")
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	chdir(t, dir)
}

// clearEnv blanks OPENWEATHER_API_KEY and ATMOSENSE_DB_PATH for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv(config.EnvAPIKey, "")
	t.Setenv(config.EnvDBPath, "")
}

// unsetEnv removes key entirely (restored on cleanup) so a .env file may supply it.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	if err := os.Unsetenv(key); err != nil {
		t.Fatalf("unsetenv: %v", err)
	}
}

// ─── Defaults ─────────────────────────────────────────────────────────────────

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Format != config.DefaultFormat {
		t.Errorf("Format: expected %q, got %q", config.DefaultFormat, cfg.Format)
	}
	if cfg.Units != model.Metric {
		t.Errorf("Units: expected metric, got %q", cfg.Units)
	}
	if cfg.Theme != model.Light {
		t.Errorf("Theme: expected light, got %q", cfg.Theme)
	}
	if cfg.Timeout != config.DefaultTimeout {
		t.Errorf("Timeout: expected %v, got %v", config.DefaultTimeout, cfg.Timeout)
	}
	if cfg.Rate != config.DefaultRate {
		t.Errorf("Rate: expected %g, got %g", config.DefaultRate, cfg.Rate)
	}
	if cfg.Splash != config.DefaultSplash {
		t.Errorf("Splash: expected %v, got %v", config.DefaultSplash, cfg.Splash)
	}
	if cfg.BaseURL != config.DefaultBaseURL {
		t.Errorf("BaseURL: expected %q, got %q", config.DefaultBaseURL, cfg.BaseURL)
	}
	if cfg.Geolocation != "ip" {
		t.Errorf("Geolocation: expected ip, got %q", cfg.Geolocation)
	}
	if !strings.HasSuffix(cfg.DBPath, filepath.Join(".atmosense", "atmosense.db")) {
		t.Errorf("DBPath should default under ~/.atmosense, got %q", cfg.DBPath)
	}
}

// ─── Config file loading ──────────────────────────────────────────────────────

func TestLoadFromFile(t *testing.T) {
	clearEnv(t)
	writeConfig(t, t.TempDir(), config.File{
		APIKey:        "filekey123",
		DefaultFormat: "json",
		Units:         "imperial",
		Theme:         "dark",
		Timeout:       "60s",
		Rate:          2.5,
		BaseURL:       "https://custom.example.com/",
		DBPath:        "/tmp/test.db",
		Geolocation:   "static",
		Latitude:      59.91,
		Longitude:     10.75,
		Splash:        "500ms",
	})

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.APIKey != "filekey123" {
		t.Errorf("APIKey: expected filekey123, got %q", cfg.APIKey)
	}
	if cfg.Format != "json" {
		t.Errorf("Format: expected json, got %q", cfg.Format)
	}
	if cfg.Units != model.Imperial || cfg.Theme != model.Dark {
		t.Errorf("Units/Theme: got %q/%q", cfg.Units, cfg.Theme)
	}
	if cfg.Timeout.String() != "1m0s" {
		t.Errorf("Timeout: expected 1m0s, got %q", cfg.Timeout.String())
	}
	if cfg.Rate != 2.5 {
		t.Errorf("Rate: expected 2.5, got %g", cfg.Rate)
	}
	if cfg.BaseURL != "https://custom.example.com/" {
		t.Errorf("BaseURL: expected custom URL, got %q", cfg.BaseURL)
	}
	if cfg.DBPath != "/tmp/test.db" {
		t.Errorf("DBPath: expected /tmp/test.db, got %q", cfg.DBPath)
	}
	if cfg.Geolocation != "static" || cfg.Latitude != 59.91 || cfg.Longitude != 10.75 {
		t.Errorf("geolocation: got %q %g,%g", cfg.Geolocation, cfg.Latitude, cfg.Longitude)
	}
	if cfg.Splash.String() != "500ms" {
		t.Errorf("Splash: expected 500ms, got %v", cfg.Splash)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoadConfigPathRecorded(t *testing.T) {
	clearEnv(t)
	writeConfig(t, t.TempDir(), config.File{APIKey: "k"})

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !strings.Contains(cfg.ConfigPath, "config.json") {
		t.Errorf("ConfigPath should contain config.json, got %q", cfg.ConfigPath)
	}
}

func TestLoadNoConfigFile(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load without config.json should not error: %v", err)
	}
	if cfg.ConfigPath != "" {
		t.Errorf("ConfigPath should be empty when no file found, got %q", cfg.ConfigPath)
	}
}

func TestLoadMalformedConfigFails(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}
	chdir(t, dir)
	if _, err := config.Load(""); err == nil {
		t.Error("malformed config.json should be reported")
	}
}

func TestLoadInvalidValuesIgnored(t *testing.T) {
	clearEnv(t)
	writeConfig(t, t.TempDir(), config.File{
		APIKey:  "k",
		Timeout: "not-a-duration",
		Units:   "kelvin",
		Theme:   "sepia",
	})

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Timeout != config.DefaultTimeout {
		t.Errorf("invalid timeout should use default %v, got %v", config.DefaultTimeout, cfg.Timeout)
	}
	if cfg.Units != model.Metric || cfg.Theme != model.Light {
		t.Errorf("invalid units/theme should use defaults, got %q/%q", cfg.Units, cfg.Theme)
	}
}

// ─── Environment variable priority ───────────────────────────────────────────

func TestLoadEnvAPIKeyOverridesFile(t *testing.T) {
	writeConfig(t, t.TempDir(), config.File{APIKey: "filekey"})
	t.Setenv(config.EnvAPIKey, "envkey")
	t.Setenv(config.EnvDBPath, "")

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIKey != "envkey" {
		t.Errorf("env OPENWEATHER_API_KEY should override file: expected envkey, got %q", cfg.APIKey)
	}
}

func TestLoadEnvDBPath(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())
	t.Setenv(config.EnvDBPath, "/custom/path/atmosense.db")

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DBPath != "/custom/path/atmosense.db" {
		t.Errorf("ATMOSENSE_DB_PATH: expected /custom/path/atmosense.db, got %q", cfg.DBPath)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, config.File{APIKey: "filekey"})
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("OPENWEATHER_API_KEY=dotenvkey\n"), 0600); err != nil {
		t.Fatal(err)
	}
	unsetEnv(t, config.EnvAPIKey)
	t.Setenv(config.EnvDBPath, "")

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIKey != "dotenvkey" {
		t.Errorf(".env should override config.json: expected dotenvkey, got %q", cfg.APIKey)
	}
}

func TestLoadDotEnvNeverOverridesEnvironment(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("OPENWEATHER_API_KEY=dotenvkey\n"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(config.EnvAPIKey, "realkey")
	t.Setenv(config.EnvDBPath, "")

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIKey != "realkey" {
		t.Errorf("real environment should win over .env: got %q", cfg.APIKey)
	}
}

// ─── CLI flag priority ────────────────────────────────────────────────────────

func TestLoadFlagAPIKeyOverridesEnvAndFile(t *testing.T) {
	writeConfig(t, t.TempDir(), config.File{APIKey: "filekey"})
	t.Setenv(config.EnvAPIKey, "envkey")
	t.Setenv(config.EnvDBPath, "")

	cfg, err := config.Load("flagkey")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIKey != "flagkey" {
		t.Errorf("flag --api-key should override env and file: expected flagkey, got %q", cfg.APIKey)
	}
}

func TestLoadFlagEmptyDoesNotOverride(t *testing.T) {
	clearEnv(t)
	writeConfig(t, t.TempDir(), config.File{APIKey: "filekey"})

	cfg, err := config.Load("") // empty flag = not set
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIKey != "filekey" {
		t.Errorf("empty flag should not override file value: expected filekey, got %q", cfg.APIKey)
	}
}

// ─── Validate ─────────────────────────────────────────────────────────────────

func validConfig() *config.Config {
	return &config.Config{
		APIKey:      "somekey",
		Units:       model.Metric,
		Theme:       model.Light,
		Timeout:     config.DefaultTimeout,
		Rate:        config.DefaultRate,
		Geolocation: "ip",
	}
}

func TestValidateWithAPIKey(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Errorf("Validate with API key should not error: %v", err)
	}
}

func TestValidateErrorMentionsAPIKey(t *testing.T) {
	cfg := validConfig()
	cfg.APIKey = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "API key") || !strings.Contains(err.Error(), config.EnvAPIKey) {
		t.Errorf("error should explain how to set the API key, got: %v", err)
	}
}

func TestValidateSettings(t *testing.T) {
	cases := map[string]func(c *config.Config){
		"units":            func(c *config.Config) { c.Units = "kelvin" },
		"theme":            func(c *config.Config) { c.Theme = "" },
		"geolocation":      func(c *config.Config) { c.Geolocation = "gps" },
		"static latitude":  func(c *config.Config) { c.Geolocation = "static"; c.Latitude = 91 },
		"static longitude": func(c *config.Config) { c.Geolocation = "static"; c.Longitude = -181 },
		"timeout":          func(c *config.Config) { c.Timeout = 0 },
		"rate":             func(c *config.Config) { c.Rate = -1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := validConfig()
			mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}

// ─── RedactedAPIKey ───────────────────────────────────────────────────────────

func TestRedactedAPIKeyNormal(t *testing.T) {
	cfg := &config.Config{APIKey: "abcdefghij"}
	if got := cfg.RedactedAPIKey(); got != "ab****ij" {
		t.Errorf("redacted key: expected ab****ij, got %q", got)
	}
}

func TestRedactedAPIKeyShort(t *testing.T) {
	// Keys <= 4 chars should return "****"
	for _, key := range []string{"", "a", "ab", "abc", "abcd"} {
		cfg := &config.Config{APIKey: key}
		if cfg.RedactedAPIKey() != "****" {
			t.Errorf("short key %q should redact to '****', got %q", key, cfg.RedactedAPIKey())
		}
	}
}

// ─── Set ──────────────────────────────────────────────────────────────────────

func TestFileSet(t *testing.T) {
	f := config.Template()
	good := map[string]string{
		"api_key":     "k123",
		"format":      "csv",
		"units":       "F",
		"theme":       "DARK",
		"timeout":     "10s",
		"rate":        "1.5",
		"base_url":    "http://localhost:8080/",
		"geolocation": "Static",
		"latitude":    "48.85",
		"longitude":   "2.35",
		"splash":      "0s",
	}
	for k, v := range good {
		if err := f.Set(k, v); err != nil {
			t.Errorf("Set(%s, %s): %v", k, v, err)
		}
	}
	if f.DefaultFormat != "csv" || f.Units != "imperial" || f.Theme != "dark" || f.Geolocation != "static" {
		t.Errorf("normalised values: %+v", f)
	}
	if f.Rate != 1.5 || f.Latitude != 48.85 || f.Longitude != 2.35 {
		t.Errorf("numeric values: %+v", f)
	}
}

func TestFileSetRejects(t *testing.T) {
	bad := map[string]string{
		"units":       "kelvin",
		"theme":       "sepia",
		"timeout":     "-1s",
		"rate":        "fast",
		"latitude":    "95",
		"longitude":   "abc",
		"geolocation": "gps",
		"base_url":    "not a url",
		"format":      "xml",
		"nonsense":    "x",
	}
	for k, v := range bad {
		f := config.Template()
		if err := f.Set(k, v); err == nil {
			t.Errorf("Set(%s, %s) should fail", k, v)
		}
	}
}

// ─── WriteFile / Template ─────────────────────────────────────────────────────

func TestWriteFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	f := config.Template()
	f.APIKey = "testkey"
	f.Units = "imperial"

	if err := config.WriteFile(path, f); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	var got config.File
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("json.Unmarshal: %v", err)
	}
	if got != f {
		t.Errorf("round trip: expected %+v, got %+v", f, got)
	}
}

func TestWriteFilePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	if err := config.WriteFile(path, config.File{APIKey: "k"}); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	// Should be 0600: owner read/write only
	if info.Mode().Perm() != 0600 {
		t.Errorf("file permissions: expected 0600, got %04o", info.Mode().Perm())
	}
}

func TestTemplateDefaults(t *testing.T) {
	tmpl := config.Template()
	if tmpl.DefaultFormat != "table" || tmpl.Units != "metric" || tmpl.Theme != "light" {
		t.Errorf("Template presentation defaults: %+v", tmpl)
	}
	if tmpl.Timeout != "30s" || tmpl.Splash != "2s" {
		t.Errorf("Template durations: %+v", tmpl)
	}
	if tmpl.Rate != config.DefaultRate {
		t.Errorf("Template.Rate: expected %g, got %g", config.DefaultRate, tmpl.Rate)
	}
	if tmpl.APIKey != "" {
		t.Error("Template.APIKey should be empty")
	}
}
