// Package app wires together configuration, the API client, local storage and
// the geolocation source into a single Deps struct that commands receive at
// runtime.
package app

import (
	"fmt"
	"time"

	"github.com/derickschaefer/atmosense/internal/config"
	"github.com/derickschaefer/atmosense/internal/geo"
	"github.com/derickschaefer/atmosense/internal/owm"
	"github.com/derickschaefer/atmosense/internal/store"
)

// geoTimeout bounds the one-shot geolocation lookup.
const geoTimeout = 5 * time.Second

// Deps holds all runtime dependencies injected into command Run functions.
// Store is nil until RequireStore succeeds.
type Deps struct {
	Config  *config.Config
	Client  *owm.Client
	Store   *store.Store
	Locator geo.Locator
}

// New builds a Deps from resolved config.
func New(cfg *config.Config) (*Deps, error) {
	client := owm.NewClient(
		cfg.APIKey,
		cfg.BaseURL,
		cfg.Timeout,
		cfg.Rate,
		cfg.Debug,
	)
	locator, err := geo.New(cfg.Geolocation, cfg.GeoURL, cfg.Latitude, cfg.Longitude, geoTimeout)
	if err != nil {
		return nil, err
	}
	return &Deps{
		Config:  cfg,
		Client:  client,
		Locator: locator,
	}, nil
}

// RequireStore opens the bbolt database on first use.
func (d *Deps) RequireStore() error {
	if d.Store != nil {
		return nil
	}
	s, err := store.Open(d.Config.DBPath)
	if err != nil {
		return fmt.Errorf("opening store at %s: %w", d.Config.DBPath, err)
	}
	d.Store = s
	return nil
}

// Close releases the store if it was opened.
func (d *Deps) Close() error {
	if d.Store == nil {
		return nil
	}
	err := d.Store.Close()
	d.Store = nil
	return err
}
