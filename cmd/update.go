package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"agvfaults/internal/bootstrap"
	"agvfaults/internal/bootstrap/logging"
	"agvfaults/internal/errs"
	"agvfaults/internal/usecase/faults"
)

var updateCmd = &cobra.Command{
	Use:   "update <fault-id>",
	Short: "Update mutable fields of a fault report",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *faults.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		faultID, err := parseFaultIDArg(cmd.Flags().Args())
		if err != nil {
			return err
		}

		assignments, _ := cmd.Flags().GetStringArray("set")
		fields, err := parseUpdateAssignments(assignments)
		if err != nil {
			return err
		}

		if status, _ := cmd.Flags().GetString("status"); strings.TrimSpace(status) != "" {
			fields["status"] = status
		}
		if solution, _ := cmd.Flags().GetString("solution"); solution != "" {
			fields["solution"] = solution
		}
		if note, _ := cmd.Flags().GetString("note"); note != "" {
			fields["resolution_log"] = note
		}

		item, err := svc.UpdateFaultFields(ctx, faultID, fields)
		if err != nil {
			logging.Error(ctx, "update fault failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "update fault")
		}

		logging.Info(ctx, "fault updated", slog.Uint64("fault_id", item.FaultID), slog.String("status", item.Status))
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "fault #%d updated (%s)\n", item.FaultID, item.StatusLabel); err != nil {
			return errs.Wrap(err, "write update output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(updateCmd)

	updateCmd.Flags().StringArray("set", nil, "Field assignment field=value, repeatable")
	updateCmd.Flags().String("status", "", "New status (pending|in-progress|resolved or 待修复|处理中|已修复)")
	updateCmd.Flags().String("solution", "", "Replace the solution text")
	updateCmd.Flags().String("note", "", "Append a resolution log entry")
}

func parseUpdateAssignments(assignments []string) (map[string]string, error) {
	fields := make(map[string]string, len(assignments))
	for _, assignment := range assignments {
		name, value, found := strings.Cut(assignment, "=")
		name = strings.TrimSpace(name)
		if !found || name == "" {
			return nil, fmt.Errorf("invalid --set value %q: expected field=value", assignment)
		}
		fields[name] = value
	}
	return fields, nil
}
