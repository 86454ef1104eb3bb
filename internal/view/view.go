// Package view holds the interactive weather screen: its transient state,
// the transitions driven by user actions, and the startup flow.
//
// Every query carries a sequence number. Only the completion of the most
// recently issued query is applied; earlier ones are dropped. Queries run
// without holding the View's lock, so a slow provider never blocks State or
// Render.
package view

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/derickschaefer/atmosense/internal/geo"
	"github.com/derickschaefer/atmosense/internal/model"
	"github.com/derickschaefer/atmosense/internal/owm"
	"github.com/derickschaefer/atmosense/internal/render"
	"github.com/derickschaefer/atmosense/internal/store"
)

// MaxRecent caps the recent-search list.
const MaxRecent = 5

// DefaultSplash is how long the welcome screen stays up.
const DefaultSplash = 2 * time.Second

// Querier is the weather query service. *owm.Client satisfies it.
type Querier interface {
	FetchByCity(ctx context.Context, name string, units model.Units) (*model.WeatherSnapshot, error)
	FetchByCoordinates(ctx context.Context, lat, lon float64, units model.Units) (*model.WeatherSnapshot, error)
}

// Storage persists the recent and favorite lists. *store.Store satisfies it.
type Storage interface {
	LoadList(key string) ([]string, error)
	SaveList(key string, items []string) error
}

// Status is the request state of the screen.
type Status int

const (
	Idle Status = iota
	Loading
	Success
	Failed
)

func (s Status) String() string {
	switch s {
	case Loading:
		return "loading"
	case Success:
		return "success"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

// State is a point-in-time copy of everything the screen shows.
// Err and Snapshot are independent: a failure keeps the last snapshot.
type State struct {
	Input     string
	Status    Status
	Loading   bool
	Err       string
	Snapshot  *model.WeatherSnapshot
	Units     model.Units
	Theme     model.Theme
	Recents   []string
	Favorites []string
	Tab       string
	Welcome   bool
	Forecast  []model.ForecastDay
	Air       *model.AirQuality
}

// Options configures a View. Zero values pick the defaults.
type Options struct {
	Units   model.Units
	Theme   model.Theme
	Locator geo.Locator
	Splash  time.Duration
	Logger  *slog.Logger
	Now     func() time.Time

	// OnChange, when set, receives a copy of the state after every transition.
	// It is called without the View's lock held.
	OnChange func(State)
}

// subject is what a query asks about: a city name or a coordinate pair.
type subject struct {
	city     string
	lat, lon float64
	coords   bool
}

func (s subject) String() string {
	if s.coords {
		return fmt.Sprintf("%g,%g", s.lat, s.lon)
	}
	return s.city
}

// View is safe for concurrent use.
type View struct {
	q       Querier
	st      Storage
	locator geo.Locator
	splash  time.Duration
	log     *slog.Logger
	now     func() time.Time
	changed func(State)

	mu    sync.Mutex
	state State
	last  *subject
	seq   uint64
}

// New builds a View and loads the persisted lists from st. A nil st keeps
// the lists in memory only.
func New(q Querier, st Storage, opts Options) *View {
	v := &View{
		q:       q,
		st:      st,
		locator: opts.Locator,
		splash:  opts.Splash,
		log:     opts.Logger,
		now:     opts.Now,
		changed: opts.OnChange,
	}
	if v.log == nil {
		v.log = slog.Default()
	}
	if v.now == nil {
		v.now = time.Now
	}
	if v.splash <= 0 {
		v.splash = DefaultSplash
	}

	v.state = State{
		Units: opts.Units,
		Theme: opts.Theme,
		Tab:   render.TabCurrent,
	}
	if v.state.Units == "" {
		v.state.Units = model.Metric
	}
	if v.state.Theme == "" {
		v.state.Theme = model.Light
	}
	v.state.Recents = v.loadList(store.KeyRecentSearches)
	v.state.Favorites = v.loadList(store.KeyFavoriteLocations)
	return v
}

func (v *View) loadList(key string) []string {
	if v.st == nil {
		return []string{}
	}
	items, err := v.st.LoadList(key)
	if err != nil {
		v.log.Warn("loading list", "key", key, "err", err)
		return []string{}
	}
	return items
}

// State returns a copy of the current state.
func (v *View) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.copyLocked()
}

func (v *View) copyLocked() State {
	s := v.state
	s.Recents = append([]string(nil), v.state.Recents...)
	s.Favorites = append([]string(nil), v.state.Favorites...)
	s.Forecast = append([]model.ForecastDay(nil), v.state.Forecast...)
	return s
}

func (v *View) notify(s State) {
	if v.changed != nil {
		v.changed(s)
	}
}

// ─── User actions ─────────────────────────────────────────────────────────────

// Submit searches for the city in input. Blank input does nothing.
// It returns once the query has completed.
func (v *View) Submit(ctx context.Context, input string) {
	city := strings.TrimSpace(input)
	if city == "" {
		return
	}
	v.mu.Lock()
	v.state.Input = input
	v.mu.Unlock()
	v.query(ctx, subject{city: city})
}

// SubmitCoordinates queries a latitude/longitude pair. Coordinate queries
// never enter the recent list.
func (v *View) SubmitCoordinates(ctx context.Context, lat, lon float64) {
	v.query(ctx, subject{lat: lat, lon: lon, coords: true})
}

// SelectRecent searches for the i-th recent city. Out-of-range i does nothing.
func (v *View) SelectRecent(ctx context.Context, i int) {
	v.selectChip(ctx, i, func(s *State) []string { return s.Recents })
}

// SelectFavorite searches for the i-th favorite city. Out-of-range i does nothing.
func (v *View) SelectFavorite(ctx context.Context, i int) {
	v.selectChip(ctx, i, func(s *State) []string { return s.Favorites })
}

func (v *View) selectChip(ctx context.Context, i int, list func(*State) []string) {
	v.mu.Lock()
	items := list(&v.state)
	if i < 0 || i >= len(items) {
		v.mu.Unlock()
		return
	}
	city := items[i]
	v.state.Input = city
	v.mu.Unlock()
	v.query(ctx, subject{city: city})
}

// ToggleUnits flips the unit system. When a snapshot is on screen the last
// successful subject is queried again in the new units.
func (v *View) ToggleUnits(ctx context.Context) {
	v.mu.Lock()
	v.state.Units = v.state.Units.Toggle()
	var again *subject
	if v.state.Snapshot != nil && v.last != nil {
		s := *v.last
		again = &s
	}
	st := v.copyLocked()
	v.mu.Unlock()
	v.notify(st)

	if again != nil {
		v.query(ctx, *again)
	}
}

// ToggleTheme flips between light and dark.
func (v *View) ToggleTheme() {
	v.mu.Lock()
	v.state.Theme = v.state.Theme.Toggle()
	st := v.copyLocked()
	v.mu.Unlock()
	v.notify(st)
}

// SelectTab switches the visible tab.
func (v *View) SelectTab(name string) error {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, t := range render.Tabs {
		if t == name {
			v.mu.Lock()
			v.state.Tab = name
			st := v.copyLocked()
			v.mu.Unlock()
			v.notify(st)
			return nil
		}
	}
	return fmt.Errorf("unknown tab %q (want one of: %s)", name, strings.Join(render.Tabs, ", "))
}

// Refresh re-queries the last successful subject without touching the
// recent list. It reports false when there is nothing to refresh.
func (v *View) Refresh(ctx context.Context) bool {
	v.mu.Lock()
	if v.last == nil {
		v.mu.Unlock()
		return false
	}
	s := *v.last
	v.mu.Unlock()
	v.queryWith(ctx, s, false)
	return true
}

// ─── Startup ──────────────────────────────────────────────────────────────────

// Startup exposes the two halves of the startup flow.
type Startup struct {
	// Ready is closed when the welcome screen is dismissed.
	Ready <-chan struct{}
	// Located is closed when the geolocation attempt, and any query it
	// triggered, has finished.
	Located <-chan struct{}
}

// Start shows the welcome screen for the splash duration and, concurrently,
// asks the locator for a position. A position triggers a coordinate query;
// a failure is logged and otherwise ignored.
func (v *View) Start(ctx context.Context) Startup {
	ready := make(chan struct{})
	located := make(chan struct{})

	v.mu.Lock()
	v.state.Welcome = true
	st := v.copyLocked()
	v.mu.Unlock()
	v.notify(st)

	time.AfterFunc(v.splash, func() {
		v.mu.Lock()
		v.state.Welcome = false
		st := v.copyLocked()
		v.mu.Unlock()
		v.notify(st)
		close(ready)
	})

	go func() {
		defer close(located)
		if v.locator == nil {
			return
		}
		pos, err := v.locator.Locate(ctx)
		if err != nil {
			v.log.Warn("geolocation unavailable", "err", err)
			return
		}
		v.log.Debug("geolocated", "lat", pos.Lat, "lon", pos.Lon)
		v.query(ctx, subject{lat: pos.Lat, lon: pos.Lon, coords: true})
	}()

	return Startup{Ready: ready, Located: located}
}

// ─── Query lifecycle ──────────────────────────────────────────────────────────

func (v *View) query(ctx context.Context, s subject) {
	v.queryWith(ctx, s, !s.coords)
}

func (v *View) queryWith(ctx context.Context, s subject, remember bool) {
	v.mu.Lock()
	v.seq++
	id := v.seq
	units := v.state.Units
	v.state.Status = Loading
	v.state.Loading = true
	st := v.copyLocked()
	v.mu.Unlock()
	v.notify(st)

	v.log.Debug("query", "seq", id, "subject", s.String(), "units", units)
	var (
		snap *model.WeatherSnapshot
		err  error
	)
	if s.coords {
		snap, err = v.q.FetchByCoordinates(ctx, s.lat, s.lon, units)
	} else {
		snap, err = v.q.FetchByCity(ctx, s.city, units)
	}

	v.mu.Lock()
	if id != v.seq {
		latest := v.seq
		v.mu.Unlock()
		v.log.Debug("discarding stale response", "seq", id, "latest", latest)
		return
	}
	v.state.Loading = false
	var recents []string
	if err != nil {
		v.state.Status = Failed
		v.state.Err = owm.UserMessage(err)
	} else {
		v.state.Status = Success
		v.state.Err = ""
		v.state.Snapshot = snap
		v.last = &s
		if remember && v.addRecentLocked(s.city) {
			recents = append([]string(nil), v.state.Recents...)
		}
	}
	st = v.copyLocked()
	v.mu.Unlock()

	if err != nil {
		v.log.Debug("query failed", "seq", id, "err", err)
	}
	if recents != nil {
		v.saveList(store.KeyRecentSearches, recents)
	}
	v.notify(st)
}

// addRecentLocked puts city at the front of the recent list unless it is
// already present. It reports whether the list changed.
func (v *View) addRecentLocked(city string) bool {
	for _, r := range v.state.Recents {
		if r == city {
			return false
		}
	}
	next := append([]string{city}, v.state.Recents...)
	if len(next) > MaxRecent {
		next = next[:MaxRecent]
	}
	v.state.Recents = next
	return true
}

// saveList never fails the screen; storage trouble is logged.
func (v *View) saveList(key string, items []string) {
	if v.st == nil {
		return
	}
	if err := v.st.SaveList(key, items); err != nil {
		v.log.Warn("saving list", "key", key, "err", err)
	}
}
