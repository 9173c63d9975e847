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

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show fault counts grouped by a dimension",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *faults.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		groupBy, _ := cmd.Flags().GetString("group-by")
		from, _ := cmd.Flags().GetString("from")
		to, _ := cmd.Flags().GetString("to")

		result, err := svc.FaultStats(ctx, faults.StatsInput{
			GroupBy: groupBy,
			From:    from,
			To:      to,
		})
		if err != nil {
			logging.Error(ctx, "fault stats failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "fault stats")
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		if _, err := fmt.Fprintf(w, "%s\tcount\n", result.GroupBy); err != nil {
			return errs.Wrap(err, "write stats header")
		}
		for _, row := range result.Rows {
			if _, err := fmt.Fprintf(w, "%s\t%d\n", dashWhenEmpty(row.Key), row.Count); err != nil {
				return errs.Wrap(err, "write stats row")
			}
		}
		if _, err := fmt.Fprintf(w, "total\t%d\n", result.Total); err != nil {
			return errs.Wrap(err, "write stats total")
		}
		if err := w.Flush(); err != nil {
			return errs.Wrap(err, "flush stats output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().String("group-by", "category", "Dimension: category|status|vehicle_id|reporter_name|responsible_person|date")
	statsCmd.Flags().String("from", "", "Fault time window start (RFC3339 or 2006-01-02)")
	statsCmd.Flags().String("to", "", "Fault time window end (RFC3339 or 2006-01-02)")
}
