package plan

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/harborops/stevedore/internal/plan"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <plan-id>",
	Short: "Show a plan's schedule, containers and readiness",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	client, _, err := newClient()
	if err != nil {
		return err
	}

	p, err := client.FetchPlan(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Plan %s\n", p.ID)
	fmt.Printf("  Status:      %s\n", p.Status)
	fmt.Printf("  Planned:     %s to %s\n", formatTime(p.PlannedStart), formatTime(p.PlannedEnd))
	if p.ExecutionStart != nil {
		end := "ongoing"
		if p.ExecutionEnd != nil {
			end = formatTime(*p.ExecutionEnd)
		}
		fmt.Printf("  Execution:   %s to %s\n", formatTime(*p.ExecutionStart), end)
	}
	fmt.Printf("  Equipment:   %s\n", yesNo(p.EquipmentBooked))
	fmt.Printf("  Appointment: %s\n", yesNo(p.AppointmentConfirmed))

	guards := plan.EvaluateGuards(p)
	if guards.Blocked() {
		fmt.Printf("  Blocked:     %s\n", guards.Explain())
	} else {
		fmt.Printf("  Blocked:     no\n")
	}

	if len(p.Containers) == 0 {
		fmt.Println("\nNo containers assigned.")
		return nil
	}

	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CONTAINER\tUNITS\tDESTUFFING\tCARGO RELEASE")
	for i := range p.Containers {
		pc := &p.Containers[i]
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n",
			pc.Label(),
			len(pc.CargoUnits),
			allowedMark(pc.OrderContainer.AllowStuffingOrDestuffing),
			releaseMark(pc.OrderContainer.CargoReleaseStatus),
		)
	}
	return w.Flush()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func allowedMark(allowed bool) string {
	if allowed {
		return "allowed"
	}
	return "blocked"
}

func releaseMark(status string) string {
	normalized := plan.NormalizeReleaseStatus(status)
	if normalized == plan.ReleaseApproved {
		return "approved"
	}
	if normalized == "" {
		return "unknown"
	}
	return strings.ToLower(normalized)
}
