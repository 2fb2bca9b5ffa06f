package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load and cross-check all content",
	Long: `Loads terrain, maps, items, behaviors, presets, and scenarios, checks every
scenario can be built, and prints what was found.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer a.close(context.Background())

		out := cmd.OutOrStdout()
		c := a.content.Counts()
		fmt.Fprintf(out, "terrain:   %d\n", c.Terrain)
		fmt.Fprintf(out, "maps:      %d\n", c.Maps)
		fmt.Fprintf(out, "weapons:   %d\n", c.Weapons)
		fmt.Fprintf(out, "armor:     %d\n", c.Armor)
		fmt.Fprintf(out, "shields:   %d\n", c.Shields)
		fmt.Fprintf(out, "behaviors: %d\n", c.Behaviors)
		fmt.Fprintf(out, "presets:   %d\n", c.Presets)
		fmt.Fprintf(out, "scenarios: %d\n", c.Scenarios)
		for _, id := range a.content.ScenarioIDs() {
			s, _ := a.content.Scenario(id)
			fmt.Fprintf(out, "  %-12s %s (%s, %d creatures)\n", id, s.Name, s.Map, len(s.Placements))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
