// Package plan holds the plan subcommands of the stevedore CLI.
package plan

import (
	"github.com/harborops/stevedore/internal/backend"
	"github.com/harborops/stevedore/internal/config"
	"github.com/harborops/stevedore/internal/session"
	"github.com/spf13/cobra"
)

// PlanCmd is the parent command for plan-related subcommands.
var PlanCmd = &cobra.Command{
	Use:   "plan",
	Short: "Inspect and drive individual plans",
	Long:  `Commands for inspecting a destuffing plan and moving it through its lifecycle.`,
}

func init() {
	PlanCmd.AddCommand(showCmd)
	PlanCmd.AddCommand(startCmd)
	PlanCmd.AddCommand(finishCmd)
	PlanCmd.AddCommand(suspendCmd)
	PlanCmd.AddCommand(resumeCmd)
	PlanCmd.AddCommand(cancelCmd)
}

// newClient builds the backend client and audit log from configuration.
func newClient() (*backend.Client, *session.AuditLog, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	client := backend.New(cfg.APIBaseURL, cfg.OperatorID, cfg.RequestTimeout)
	return client, session.NewAuditLog(cfg.AuditLogPath()), nil
}
