// Package geo provides the one-shot "where am I" capability used at startup.
package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
)

// DefaultIPURL is the IP geolocation endpoint used when none is configured.
const DefaultIPURL = "http://ip-api.com/json"

// ErrUnavailable is returned when geolocation is switched off.
var ErrUnavailable = errors.New("geolocation unavailable")

var validate = validator.New()

// Position is a latitude/longitude pair.
type Position struct {
	Lat float64 `json:"lat" validate:"latitude"`
	Lon float64 `json:"lon" validate:"longitude"`
}

// Locator yields the current position once, or an error.
type Locator interface {
	Locate(ctx context.Context) (Position, error)
}

// ─── Static ───────────────────────────────────────────────────────────────────

// Static always reports the configured position.
type Static Position

// Locate validates and returns the configured position.
func (s Static) Locate(ctx context.Context) (Position, error) {
	p := Position(s)
	if err := validate.Struct(p); err != nil {
		return Position{}, fmt.Errorf("configured position: %w", err)
	}
	return p, nil
}

// ─── Disabled ─────────────────────────────────────────────────────────────────

// Disabled never locates.
type Disabled struct{}

func (Disabled) Locate(ctx context.Context) (Position, error) {
	return Position{}, ErrUnavailable
}

// ─── IP lookup ────────────────────────────────────────────────────────────────

// IPLocator resolves the caller's approximate position from its public IP.
type IPLocator struct {
	url        string
	httpClient *http.Client
}

// NewIPLocator returns an IPLocator for url (DefaultIPURL when empty).
func NewIPLocator(url string, timeout time.Duration) *IPLocator {
	if url == "" {
		url = DefaultIPURL
	}
	return &IPLocator{url: url, httpClient: &http.Client{Timeout: timeout}}
}

// Locate performs a single GET to the lookup endpoint.
func (l *IPLocator) Locate(ctx context.Context) (Position, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return Position{}, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return Position{}, fmt.Errorf("http: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Position{}, fmt.Errorf("reading body: %w", err)
	}
	slog.Debug("geo response", "status", resp.StatusCode, "bytes", len(body))
	if resp.StatusCode != http.StatusOK {
		return Position{}, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	var raw struct {
		Status  string   `json:"status"`
		Message string   `json:"message"`
		Lat     *float64 `json:"lat" validate:"required,latitude"`
		Lon     *float64 `json:"lon" validate:"required,longitude"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return Position{}, fmt.Errorf("decoding response: %w", err)
	}
	if raw.Status != "" && raw.Status != "success" {
		return Position{}, fmt.Errorf("lookup failed: %s", raw.Message)
	}
	if err := validate.Struct(raw); err != nil {
		return Position{}, fmt.Errorf("unexpected response shape: %w", err)
	}
	return Position{Lat: *raw.Lat, Lon: *raw.Lon}, nil
}

// ─── Selection ────────────────────────────────────────────────────────────────

// Mode names accepted by New.
const (
	ModeIP     = "ip"
	ModeStatic = "static"
	ModeOff    = "off"
)

// New builds the Locator for mode. Unknown modes are an error.
func New(mode, ipURL string, lat, lon float64, timeout time.Duration) (Locator, error) {
	switch mode {
	case "", ModeIP:
		return NewIPLocator(ipURL, timeout), nil
	case ModeStatic:
		return Static{Lat: lat, Lon: lon}, nil
	case ModeOff:
		return Disabled{}, nil
	default:
		return nil, fmt.Errorf("unknown geolocation mode %q (want ip|static|off)", mode)
	}
}
