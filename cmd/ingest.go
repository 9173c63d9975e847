package cmd

import (
	"fmt"
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

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Parse a labelled quick report and store it",
	Long:  "Reads a quick report (发现人员/时间/车辆信息/报警描述/解决办法/责任人 lines) from --file or stdin.",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *faults.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		filePath, _ := cmd.Flags().GetString("file")
		rawText, err := readIngestInput(cmd, filePath)
		if err != nil {
			return err
		}

		item, err := svc.IngestQuickReport(ctx, rawText)
		if err != nil {
			logging.Error(ctx, "ingest quick report failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "ingest quick report")
		}

		logging.Info(ctx, "quick report ingested", slog.Uint64("fault_id", item.FaultID), slog.String("category", item.Category))
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "fault #%d created (%s, %s)\n", item.FaultID, item.Category, item.StatusLabel); err != nil {
			return errs.Wrap(err, "write ingest output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().String("file", "", "Quick report file path (default: stdin)")
}

func readIngestInput(cmd *cobra.Command, filePath string) (string, error) {
	trimmed := strings.TrimSpace(filePath)
	if trimmed == "" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", errs.Wrap(err, "read quick report from stdin")
		}
		return string(data), nil
	}

	data, err := os.ReadFile(trimmed)
	if err != nil {
		return "", errs.Wrapf(err, "read quick report file %q", trimmed)
	}
	return string(data), nil
}
