package cmd

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"agvfaults/internal/bootstrap"
	"agvfaults/internal/bootstrap/logging"
	"agvfaults/internal/errs"
	"agvfaults/internal/usecase/faults"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export fault reports as CSV",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *faults.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		from, _ := cmd.Flags().GetString("from")
		to, _ := cmd.Flags().GetString("to")
		outPath, _ := cmd.Flags().GetString("out")
		bom, _ := cmd.Flags().GetBool("bom")

		writer, closeFn, err := resolveExportWriter(cmd, outPath)
		if err != nil {
			return err
		}

		if err := svc.ExportCSV(ctx, faults.ExportInput{From: from, To: to, BOM: bom}, writer); err != nil {
			_ = closeFn()
			logging.Error(ctx, "export faults failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "export faults")
		}
		if err := closeFn(); err != nil {
			return errs.Wrap(err, "close export output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().String("from", "", "Fault time window start (RFC3339 or 2006-01-02)")
	exportCmd.Flags().String("to", "", "Fault time window end (RFC3339 or 2006-01-02)")
	exportCmd.Flags().String("out", "", "Output file path (default: stdout)")
	exportCmd.Flags().Bool("bom", true, "Prepend a UTF-8 byte order mark")
}

func resolveExportWriter(cmd *cobra.Command, outPath string) (io.Writer, func() error, error) {
	trimmed := strings.TrimSpace(outPath)
	if trimmed == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}

	f, err := os.Create(trimmed)
	if err != nil {
		return nil, nil, errs.Wrapf(err, "open output file %q", trimmed)
	}
	return f, f.Close, nil
}
