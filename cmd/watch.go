package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/derickschaefer/atmosense/internal/schedule"
	"github.com/derickschaefer/atmosense/internal/view"
)

// minWatchInterval bounds how often watch may query the provider.
const minWatchInterval = 10 * time.Second

var watchEvery time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch <CITY...>",
	Short: "Keep a city's conditions on screen, refreshed on an interval",
	Long: `Search for a city once, then re-query it on a fixed interval and redraw the
screen after every refresh. A failed refresh shows its error above the last
good reading. Stop with Ctrl-C.`,
	Example: `  atmosense watch Paris
  atmosense watch Oslo --every 2m --units imperial`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if watchEvery < minWatchInterval {
			return fmt.Errorf("--every must be at least %s", minWatchInterval)
		}
		city := strings.TrimSpace(strings.Join(args, " "))

		deps, err := buildQueryDeps()
		if err != nil {
			return err
		}
		defer deps.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		v := newView(deps, view.Options{})
		return watch(ctx, v, city, schedule.New(watchEvery, nil), cmd.OutOrStdout())
	},
}

// watch draws city once and then on every tick until ctx is done.
// The first lookup must succeed; later failures stay on screen.
func watch(ctx context.Context, v *view.View, city string, t *schedule.Ticker, out io.Writer) error {
	v.Submit(ctx, city)
	if st := v.State(); st.Status == view.Failed {
		return errors.New(st.Err)
	}
	v.Render(out)

	return t.Run(ctx, func(ctx context.Context) {
		v.Refresh(ctx)
		v.Render(out)
	})
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().DurationVar(&watchEvery, "every", 10*time.Minute, "refresh interval (minimum 10s)")
}
