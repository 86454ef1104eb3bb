package view

import (
	"io"

	"github.com/derickschaefer/atmosense/internal/render"
)

// Render draws the whole screen for the current state.
func (v *View) Render(w io.Writer) {
	s := v.State()
	if s.Welcome {
		render.Splash(w)
		return
	}

	now := v.now()
	render.Header(w, now, s.Units, s.Theme)
	render.SearchBar(w, s.Input, s.Loading)
	render.ErrorBanner(w, s.Err)
	render.Chips(w, "Recent Searches", "⏱️", s.Recents)
	render.Chips(w, "Favorite Locations", "⭐", s.Favorites)

	if snap := s.Snapshot; snap != nil {
		render.AlertBanner(w, snap)
		render.TabBar(w, s.Tab)
		switch s.Tab {
		case render.TabForecast:
			render.ForecastPanel(w, s.Forecast, s.Theme)
		case render.TabDetails:
			render.DetailsCard(w, snap, s.Theme)
		default:
			render.CurrentCard(w, snap, s.Theme)
			render.AirQualityCard(w, s.Air, s.Theme)
		}
	}

	render.Footer(w, now)
}
