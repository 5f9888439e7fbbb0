package cli

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/harborops/stevedore/internal/backend"
	"github.com/harborops/stevedore/internal/config"
	"github.com/harborops/stevedore/internal/plan"
	"github.com/spf13/cobra"
)

var plansCmd = &cobra.Command{
	Use:   "plans",
	Short: "List destuffing plans",
	Long:  `List all destuffing plans visible to the operator, with their status and planned window.`,
	RunE:  runPlans,
}

func runPlans(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	client := backend.New(cfg.APIBaseURL, cfg.OperatorID, cfg.RequestTimeout)

	plans, err := client.ListPlans(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list plans: %w", err)
	}

	if len(plans) == 0 {
		fmt.Println("No plans.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tPLANNED START\tPLANNED END\tCONTAINERS\tREADY")

	for i := range plans {
		p := &plans[i]
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
			p.ID,
			p.Status,
			formatWindow(p.PlannedStart),
			formatWindow(p.PlannedEnd),
			len(p.Containers),
			formatReady(p),
		)
	}

	return w.Flush()
}

// formatWindow renders a planned window edge, or a dash for the zero time.
func formatWindow(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

// formatReady summarizes whether the plan could enter execution right now.
func formatReady(p *plan.Plan) string {
	decision := plan.CanEnterExecution(p, 0)
	if decision.Allowed {
		return "yes"
	}
	return "no: " + decision.Reason
}
