package cmd

import (
	"fmt"
	"log/slog"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"agvfaults/internal/bootstrap"
	"agvfaults/internal/bootstrap/logging"
	"agvfaults/internal/errs"
	"agvfaults/internal/usecase/faults"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List fault reports",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *faults.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		reporter, _ := cmd.Flags().GetString("reporter")
		responsible, _ := cmd.Flags().GetString("responsible")
		vehicleID, _ := cmd.Flags().GetString("vehicle")
		status, _ := cmd.Flags().GetString("status")
		from, _ := cmd.Flags().GetString("from")
		to, _ := cmd.Flags().GetString("to")
		page, _ := cmd.Flags().GetInt("page")
		perPage, _ := cmd.Flags().GetInt("per-page")

		result, err := svc.ListFaults(ctx, faults.ListFaultsInput{
			Reporter:    reporter,
			Responsible: responsible,
			VehicleID:   vehicleID,
			Status:      status,
			From:        from,
			To:          to,
			Page:        page,
			PerPage:     perPage,
		})
		if err != nil {
			logging.Error(ctx, "list faults failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "list faults")
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		if _, err := fmt.Fprintln(w, "id\tfault_time\tvehicle\tcategory\tstatus\treporter\tresponsible\tdescription"); err != nil {
			return errs.Wrap(err, "write list header")
		}
		for _, item := range result.Items {
			if _, err := fmt.Fprintf(
				w,
				"%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				item.FaultID,
				item.FaultTime,
				item.VehicleID,
				item.Category,
				item.StatusLabel,
				item.ReporterName,
				item.ResponsiblePerson,
				item.Description,
			); err != nil {
				return errs.Wrap(err, "write list row")
			}
		}
		if err := w.Flush(); err != nil {
			return errs.Wrap(err, "flush list output")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "page %d/%d, %d total\n", result.Page, result.TotalPages, result.TotalCount); err != nil {
			return errs.Wrap(err, "write list summary")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().String("reporter", "", "Filter by reporter name substring")
	listCmd.Flags().String("responsible", "", "Filter by responsible person substring")
	listCmd.Flags().String("vehicle", "", "Filter by vehicle id substring")
	listCmd.Flags().String("status", "", "Filter by status (pending|in-progress|resolved)")
	listCmd.Flags().String("from", "", "Fault time window start (RFC3339 or 2006-01-02)")
	listCmd.Flags().String("to", "", "Fault time window end (RFC3339 or 2006-01-02)")
	listCmd.Flags().Int("page", 1, "Page number")
	listCmd.Flags().Int("per-page", 0, "Page size (4|5|10|20|50, default 20)")
}
