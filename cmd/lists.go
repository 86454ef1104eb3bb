package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/derickschaefer/atmosense/internal/render"
	"github.com/derickschaefer/atmosense/internal/store"
)

// ─── recent ───────────────────────────────────────────────────────────────────

var recentCmd = &cobra.Command{
	Use:   "recent",
	Short: "Inspect the recent-search list",
	Long: `The recent-search list holds the last five cities searched successfully,
most recent first. It is shown as chips on the interactive screen.`,
}

var recentListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List recent searches",
	Example: `  atmosense recent list --format json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return listLocations("recent list", "recent searches", store.KeyRecentSearches)
	},
}

var recentClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget all recent searches",
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		if err := deps.RequireStore(); err != nil {
			return err
		}
		defer deps.Close()

		if err := deps.Store.SaveList(store.KeyRecentSearches, []string{}); err != nil {
			return fmt.Errorf("clearing recent searches: %w", err)
		}
		if !deps.Config.Quiet {
			fmt.Fprintln(cmd.OutOrStdout(), "✓ Cleared recent searches")
		}
		return nil
	},
}

// ─── favorite ─────────────────────────────────────────────────────────────────

var favoriteCmd = &cobra.Command{
	Use:     "favorite",
	Aliases: []string{"fav"},
	Short:   "Manage favorite locations",
	Long: `Favorite locations are shown as chips on the interactive screen. The screen
only reads them; use these commands to change the list.`,
}

var favoriteListCmd = &cobra.Command{
	Use:   "list",
	Short: "List favorite locations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return listLocations("favorite list", "favorite locations", store.KeyFavoriteLocations)
	},
}

var favoriteAddCmd = &cobra.Command{
	Use:     "add <CITY...>",
	Short:   "Add a city to the favorites",
	Example: `  atmosense favorite add San Francisco`,
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		city := strings.TrimSpace(strings.Join(args, " "))
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		if err := deps.RequireStore(); err != nil {
			return err
		}
		defer deps.Close()

		added, err := deps.Store.AddToList(store.KeyFavoriteLocations, city)
		if err != nil {
			return fmt.Errorf("saving favorite: %w", err)
		}
		if deps.Config.Quiet {
			return nil
		}
		if added {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Added %q to favorites\n", city)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "%q is already a favorite\n", city)
		}
		return nil
	},
}

var favoriteRemoveCmd = &cobra.Command{
	Use:     "remove <CITY...>",
	Aliases: []string{"rm"},
	Short:   "Remove a city from the favorites",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		city := strings.TrimSpace(strings.Join(args, " "))
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		if err := deps.RequireStore(); err != nil {
			return err
		}
		defer deps.Close()

		removed, err := deps.Store.RemoveFromList(store.KeyFavoriteLocations, city)
		if err != nil {
			return fmt.Errorf("removing favorite: %w", err)
		}
		if !removed {
			return fmt.Errorf("%q is not a favorite", city)
		}
		if !deps.Config.Quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Removed %q from favorites\n", city)
		}
		return nil
	},
}

// listLocations renders one stored list in the requested format.
func listLocations(command, name, key string) error {
	deps, err := buildDeps()
	if err != nil {
		return err
	}
	if err := deps.RequireStore(); err != nil {
		return err
	}
	defer deps.Close()

	format := resolveFormat(deps.Config.Format)
	if err := checkFormat(format); err != nil {
		return err
	}
	items, err := deps.Store.LoadList(key)
	if err != nil {
		return fmt.Errorf("reading %s: %w", name, err)
	}
	return render.RenderTo(globalFlags.Out, buildLocationsResult(command, name, items), format)
}

func init() {
	rootCmd.AddCommand(recentCmd)
	recentCmd.AddCommand(recentListCmd)
	recentCmd.AddCommand(recentClearCmd)

	rootCmd.AddCommand(favoriteCmd)
	favoriteCmd.AddCommand(favoriteListCmd)
	favoriteCmd.AddCommand(favoriteAddCmd)
	favoriteCmd.AddCommand(favoriteRemoveCmd)
}
