// Package owm implements the HTTP client for the OpenWeatherMap "current
// weather" endpoint. Every call issues exactly one GET: there is no retry and
// no cache. Failures come back as *QueryError so callers can show
// Message directly.
package owm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/derickschaefer/atmosense/internal/model"
)

const (
	defaultBaseURL = "https://api.openweathermap.org/data/2.5/"
	userAgent      = "atmosense-cli/1.0"

	// consecutive transport failures before the circuit opens
	tripAfter = 5
)

var validate = validator.New()

// Client is the OpenWeatherMap API HTTP client.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	debug      bool
}

// NewClient creates a Client with the given API key and timeout.
// ratePerSec <= 0 disables client-side pacing.
func NewClient(apiKey, baseURL string, timeout time.Duration, ratePerSec float64, debug bool) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	limit := rate.Inf
	burst := 1
	if ratePerSec > 0 {
		limit = rate.Limit(ratePerSec)
		if int(ratePerSec) > burst {
			burst = int(ratePerSec)
		}
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: rate.NewLimiter(limit, burst),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "openweathermap",
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= tripAfter
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				slog.Warn("circuit breaker state change", "name", name, "from", from.String(), "to", to.String())
			},
		}),
		debug: debug,
	}
}

// ─── Current Weather ──────────────────────────────────────────────────────────

// FetchByCity returns current conditions for a city name.
// A non-success status is reported as KindNotFound with MsgCityNotFound.
func (c *Client) FetchByCity(ctx context.Context, name string, units model.Units) (*model.WeatherSnapshot, error) {
	name = strings.TrimSpace(name)
	if err := validate.Var(name, "required"); err != nil {
		return nil, unknown("Please enter a city name.", err)
	}

	params := url.Values{}
	params.Set("q", name)
	return c.current(ctx, params, units, MsgCityNotFound)
}

// FetchByCoordinates returns current conditions at lat/lon.
// A non-success status is reported as KindNotFound with MsgLocationNotFound.
func (c *Client) FetchByCoordinates(ctx context.Context, lat, lon float64, units model.Units) (*model.WeatherSnapshot, error) {
	if err := validate.Var(lat, "latitude"); err != nil {
		return nil, unknown("Invalid latitude.", err)
	}
	if err := validate.Var(lon, "longitude"); err != nil {
		return nil, unknown("Invalid longitude.", err)
	}

	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	return c.current(ctx, params, units, MsgLocationNotFound)
}

// ─── Low-level HTTP ───────────────────────────────────────────────────────────

// response is what crosses the circuit breaker: only transport errors count
// as breaker failures, HTTP status codes never do.
type response struct {
	status int
	body   []byte
}

// current performs the single GET to the weather endpoint and decodes it.
func (c *Client) current(ctx context.Context, params url.Values, units model.Units, notFoundMsg string) (*model.WeatherSnapshot, error) {
	if units == "" {
		units = model.Metric
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, networkFailure(err)
	}

	params.Set("appid", c.apiKey)
	params.Set("units", string(units))
	reqURL := c.baseURL + "weather?" + params.Encode()

	if c.debug {
		safe := reqURL
		if c.apiKey != "" {
			safe = strings.Replace(reqURL, url.QueryEscape(c.apiKey), "REDACTED", 1)
		}
		slog.Debug("owm request", "url", safe)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, unknown("", fmt.Errorf("building request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	out, err := c.breaker.Execute(func() (interface{}, error) {
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("http: %w", err)
		}
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("reading body: %w", err)
		}
		return response{status: resp.StatusCode, body: body}, nil
	})
	if err != nil {
		return nil, networkFailure(err)
	}
	r := out.(response)

	if c.debug {
		slog.Debug("owm response", "status", r.status, "bytes", len(r.body))
	}

	if r.status < 200 || r.status > 299 {
		return nil, notFound(notFoundMsg)
	}

	var raw rawCurrent
	if err := json.Unmarshal(r.body, &raw); err != nil {
		return nil, unknown("", fmt.Errorf("decoding response: %w", err))
	}
	if err := validate.Struct(&raw); err != nil {
		return nil, unknown("", fmt.Errorf("unexpected response shape: %w", err))
	}
	return normalizeCurrent(raw, units), nil
}

// ─── Internal helpers ─────────────────────────────────────────────────────────

// rawCurrent is the strict wire schema. Every field the renderer reads is a
// pointer so that an absent field is distinguishable from a zero value.
type rawCurrent struct {
	Name       *string        `json:"name" validate:"required"`
	Sys        *rawSys        `json:"sys" validate:"required"`
	Weather    []rawCondition `json:"weather" validate:"required,min=1,dive"`
	Main       *rawMain       `json:"main" validate:"required"`
	Wind       *rawWind       `json:"wind" validate:"required"`
	Clouds     *rawClouds     `json:"clouds" validate:"required"`
	Visibility *float64       `json:"visibility" validate:"required"`
	Dt         *int64         `json:"dt" validate:"required"`
}

type rawSys struct {
	Country *string `json:"country" validate:"required"`
	Sunrise *int64  `json:"sunrise" validate:"required"`
	Sunset  *int64  `json:"sunset" validate:"required"`
}

type rawCondition struct {
	Main        string `json:"main" validate:"required"`
	Description string `json:"description" validate:"required"`
	Icon        string `json:"icon"`
}

type rawMain struct {
	Temp      *float64 `json:"temp" validate:"required"`
	FeelsLike *float64 `json:"feels_like" validate:"required"`
	TempMin   *float64 `json:"temp_min" validate:"required"`
	TempMax   *float64 `json:"temp_max" validate:"required"`
	Pressure  *float64 `json:"pressure" validate:"required"`
	Humidity  *float64 `json:"humidity" validate:"required"`
}

type rawWind struct {
	Speed *float64 `json:"speed" validate:"required"`
	Deg   *float64 `json:"deg" validate:"required"`
}

type rawClouds struct {
	All *float64 `json:"all" validate:"required"`
}

// normalizeCurrent assumes raw has passed validation.
func normalizeCurrent(r rawCurrent, units model.Units) *model.WeatherSnapshot {
	conds := make([]model.Condition, len(r.Weather))
	for i, w := range r.Weather {
		conds[i] = model.Condition{Main: w.Main, Description: w.Description, Icon: w.Icon}
	}
	return &model.WeatherSnapshot{
		Name:       *r.Name,
		Country:    *r.Sys.Country,
		Sunrise:    *r.Sys.Sunrise,
		Sunset:     *r.Sys.Sunset,
		Conditions: conds,
		Measurements: model.Measurements{
			Temp:       *r.Main.Temp,
			FeelsLike:  *r.Main.FeelsLike,
			TempMin:    *r.Main.TempMin,
			TempMax:    *r.Main.TempMax,
			Pressure:   *r.Main.Pressure,
			Humidity:   *r.Main.Humidity,
			WindSpeed:  *r.Wind.Speed,
			WindDeg:    *r.Wind.Deg,
			Clouds:     *r.Clouds.All,
			Visibility: *r.Visibility,
			ObservedAt: *r.Dt,
		},
		Units:     units,
		FetchedAt: time.Now().UTC(),
	}
}
