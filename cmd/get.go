package cmd

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"agvfaults/internal/bootstrap"
	"agvfaults/internal/bootstrap/logging"
	"agvfaults/internal/errs"
	"agvfaults/internal/usecase/faults"
)

var getCmd = &cobra.Command{
	Use:   "get <fault-id>",
	Short: "Show a single fault report",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *faults.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		faultID, err := parseFaultIDArg(cmd.Flags().Args())
		if err != nil {
			return err
		}

		item, err := svc.GetFault(ctx, faultID)
		if err != nil {
			logging.Error(ctx, "get fault failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "get fault")
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "ID:          %d\n", item.FaultID)
		fmt.Fprintf(out, "Reporter:    %s\n", item.ReporterName)
		fmt.Fprintf(out, "Fault time:  %s\n", item.FaultTime)
		fmt.Fprintf(out, "Vehicle:     %s\n", item.VehicleID)
		fmt.Fprintf(out, "Category:    %s\n", item.Category)
		fmt.Fprintf(out, "Status:      %s (%s)\n", item.Status, item.StatusLabel)
		fmt.Fprintf(out, "Description: %s\n", item.Description)
		fmt.Fprintf(out, "Solution:    %s\n", dashWhenEmpty(item.Solution))
		fmt.Fprintf(out, "Responsible: %s\n", item.ResponsiblePerson)
		fmt.Fprintf(out, "Created:     %s\n", item.CreatedAt)
		if item.ResolutionLog != "" {
			fmt.Fprintln(out, "Resolution log:")
			for _, line := range strings.Split(item.ResolutionLog, "\n") {
				fmt.Fprintf(out, "  %s\n", line)
			}
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(getCmd)
}

func parseFaultIDArg(args []string) (uint64, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("expected exactly one fault id argument, got %d", len(args))
	}
	faultID, err := strconv.ParseUint(strings.TrimSpace(args[0]), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid fault id %q: expected a positive integer", args[0])
	}
	return faultID, nil
}

func dashWhenEmpty(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}
