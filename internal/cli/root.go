package cli

import (
	"github.com/harborops/stevedore/internal/cli/plan"
	"github.com/harborops/stevedore/internal/version"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:     "stevedore",
	Short:   "Operations console for container destuffing plans",
	Long:    `Stevedore manages destuffing plans at the terminal: assign containers from a forwarder's pool, keep plan schedules, and drive plans through their execution lifecycle.`,
	Version: version.Version,
}

func init() {
	rootCmd.AddCommand(plan.PlanCmd)
	rootCmd.AddCommand(plansCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
