package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/derickschaefer/atmosense/internal/view"
)

const prompt = "> "

const sessionHelp = `Type a city name and press Enter to search.

  :u, :units      toggle °C / °F (re-queries the city on screen)
  :t, :theme      toggle light / dark
  :tab NAME       current | forecast | details
  :r N            search recent chip N
  :f N            search favorite chip N
  :h, :help       this help
  :q, :quit       leave
`

var interactiveCmd = &cobra.Command{
	Use:     "interactive",
	Aliases: []string{"i", "ui"},
	Short:   "Open the interactive weather screen",
	Long: `Open the interactive weather screen.

A welcome screen is shown first while your position is looked up with the
configured geolocation source. When a position is found its conditions are
shown automatically; otherwise the screen simply waits for a search.`,
	Example: `  atmosense interactive
  atmosense interactive --theme dark --units imperial`,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildQueryDeps()
		if err != nil {
			return err
		}
		defer deps.Close()

		splash := deps.Config.Splash
		if splash <= 0 {
			splash = time.Millisecond
		}
		v := newView(deps, view.Options{
			Locator: deps.Locator,
			Splash:  splash,
		})
		ctx := cmd.Context()
		return runSession(ctx, v, v.Start(ctx), cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

// session draws the screen and applies one command per input line.
// Drawing is serialised because the startup query can finish at any time.
type session struct {
	v   *view.View
	out io.Writer
	mu  sync.Mutex
}

func (s *session) draw() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.v.Render(s.out)
	fmt.Fprint(s.out, prompt)
}

func (s *session) note(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, format, args...)
}

// handle applies one input line and reports whether the session should end.
func (s *session) handle(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, ":") {
		s.v.Submit(ctx, line)
		return false
	}

	verb, arg, _ := strings.Cut(line[1:], " ")
	arg = strings.TrimSpace(arg)
	switch strings.ToLower(verb) {
	case "q", "quit", "exit":
		return true
	case "h", "help":
		s.note("%s\n", sessionHelp)
	case "u", "units":
		s.v.ToggleUnits(ctx)
	case "t", "theme":
		s.v.ToggleTheme()
	case "tab":
		if err := s.v.SelectTab(arg); err != nil {
			s.note("⚠  %v\n", err)
		}
	case "r", "recent":
		i, err := parseIndex(arg, "recent chip")
		if err != nil {
			s.note("⚠  %v\n", err)
			break
		}
		s.v.SelectRecent(ctx, i)
	case "f", "favorite":
		i, err := parseIndex(arg, "favorite chip")
		if err != nil {
			s.note("⚠  %v\n", err)
			break
		}
		s.v.SelectFavorite(ctx, i)
	default:
		s.note("⚠  unknown command %q (:help lists commands)\n", line)
	}
	return false
}

// runSession drives the screen until :quit, end of input or ctx is done.
func runSession(ctx context.Context, v *view.View, start view.Startup, in io.Reader, out io.Writer) error {
	s := &session{v: v, out: out}

	s.mu.Lock()
	v.Render(out)
	s.mu.Unlock()
	select {
	case <-start.Ready:
	case <-ctx.Done():
		return ctx.Err()
	}
	s.draw()

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		select {
		case <-start.Located:
			s.draw()
		case <-done:
		}
	}()
	defer func() {
		close(done)
		wg.Wait()
	}()

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if s.handle(ctx, scanner.Text()) {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.draw()
	}
	return scanner.Err()
}

func init() {
	rootCmd.AddCommand(interactiveCmd)
}
