package plan

import (
	"fmt"

	"github.com/harborops/stevedore/internal/plan"
	"github.com/spf13/cobra"
)

var startCmd = &cobra.Command{
	Use:   "start <plan-id>",
	Short: "Begin executing a plan",
	Long:  `Move a SCHEDULED plan to IN_PROGRESS. Requires booked equipment, a confirmed appointment, clear container guards, and no other plan in progress.`,
	Args:  cobra.ExactArgs(1),
	RunE:  changeStatus(plan.StatusInProgress),
}

var finishCmd = &cobra.Command{
	Use:   "finish <plan-id>",
	Short: "Mark a plan's execution as done",
	Args:  cobra.ExactArgs(1),
	RunE:  changeStatus(plan.StatusDone),
}

var suspendCmd = &cobra.Command{
	Use:   "suspend <plan-id>",
	Short: "Suspend an in-progress plan",
	Long:  `Move an IN_PROGRESS plan to PENDING. The plan keeps its execution start and can be resumed later.`,
	Args:  cobra.ExactArgs(1),
	RunE:  changeStatus(plan.StatusPending),
}

var resumeCmd = &cobra.Command{
	Use:   "resume <plan-id>",
	Short: "Resume a suspended plan",
	Long:  `Move a PENDING plan back to IN_PROGRESS. The execution prerequisites are re-checked.`,
	Args:  cobra.ExactArgs(1),
	RunE:  changeStatus(plan.StatusInProgress),
}

var cancelCmd = &cobra.Command{
	Use:   "cancel <plan-id>",
	Short: "Cancel an in-progress execution",
	Long:  `Move an IN_PROGRESS plan back to SCHEDULED, abandoning the current execution.`,
	Args:  cobra.ExactArgs(1),
	RunE:  changeStatus(plan.StatusScheduled),
}

// changeStatus builds a RunE that validates the transition against fresh
// backend state before requesting it.
func changeStatus(to plan.Status) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		client, audit, err := newClient()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		p, err := client.FetchPlan(ctx, args[0])
		if err != nil {
			return err
		}

		// Entering IN_PROGRESS needs the live count of plans already being
		// executed. The check is advisory: another console can win the race
		// between this read and the write below.
		active := 0
		if to == plan.StatusInProgress {
			plans, err := client.ListPlans(ctx)
			if err != nil {
				return fmt.Errorf("failed to check active plans: %w", err)
			}
			active = plan.CountInProgress(plans)
		}

		if err := plan.ValidateTransition(p, to, active); err != nil {
			return err
		}

		from := p.Status
		updated, err := client.UpdatePlanStatus(ctx, p.ID, to)
		if err != nil {
			return err
		}
		audit.StatusChanged(updated.ID, string(from), string(updated.Status))

		fmt.Printf("Plan %s is now %s.\n", updated.ID, updated.Status)
		return nil
	}
}
