package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"agvfaults/internal/bootstrap"
	"agvfaults/internal/bootstrap/logging"
	"agvfaults/internal/errs"
	"agvfaults/internal/usecase/faults"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Create a fault report",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *faults.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		reporter, _ := cmd.Flags().GetString("reporter")
		faultTime, _ := cmd.Flags().GetString("time")
		vehicleID, _ := cmd.Flags().GetString("vehicle")
		category, _ := cmd.Flags().GetString("category")
		description, _ := cmd.Flags().GetString("description")
		solution, _ := cmd.Flags().GetString("solution")
		responsible, _ := cmd.Flags().GetString("responsible")

		item, err := svc.ReportFault(ctx, faults.ReportFaultInput{
			ReporterName:      reporter,
			FaultTime:         faultTime,
			VehicleID:         vehicleID,
			Category:          category,
			Description:       description,
			Solution:          solution,
			ResponsiblePerson: responsible,
		})
		if err != nil {
			logging.Error(ctx, "create fault report failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "create fault report")
		}

		logging.Info(ctx, "fault report created", slog.Uint64("fault_id", item.FaultID), slog.String("category", item.Category))
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "fault #%d created (%s, %s)\n", item.FaultID, item.Category, item.StatusLabel); err != nil {
			return errs.Wrap(err, "write report output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().String("reporter", "", "Reporter name")
	reportCmd.Flags().String("time", "", "Fault time, for example 2026-03-01T08:00 or 2026年3月1日08:00")
	reportCmd.Flags().String("vehicle", "", "Vehicle identifier")
	reportCmd.Flags().String("category", "", "Fault category")
	reportCmd.Flags().String("description", "", "Alarm description")
	reportCmd.Flags().String("solution", "", "Optional solution")
	reportCmd.Flags().String("responsible", "", "Responsible person")
	_ = reportCmd.MarkFlagRequired("reporter")
	_ = reportCmd.MarkFlagRequired("time")
	_ = reportCmd.MarkFlagRequired("vehicle")
	_ = reportCmd.MarkFlagRequired("category")
	_ = reportCmd.MarkFlagRequired("description")
	_ = reportCmd.MarkFlagRequired("responsible")
}
