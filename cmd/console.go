package cmd

import (
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"agvfaults/internal/bootstrap"
	"agvfaults/internal/bootstrap/logging"
	"agvfaults/internal/errs"
	"agvfaults/internal/usecase/faultconsole"
	"agvfaults/internal/usecase/faults"
)

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Start the interactive fault console",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *faults.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		status, _ := cmd.Flags().GetString("status")
		vehicle, _ := cmd.Flags().GetString("vehicle")
		refreshInterval, _ := cmd.Flags().GetDuration("refresh-interval")
		if refreshInterval <= 0 {
			refreshInterval = 5 * time.Second
		}

		model := faultconsole.NewConsoleModel(ctx, svc, faultconsole.Options{
			StatusFilter:    status,
			VehicleFilter:   vehicle,
			RefreshInterval: refreshInterval,
		})

		program := tea.NewProgram(model, tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return errs.Wrap(err, "run fault console")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(consoleCmd)

	consoleCmd.Flags().String("status", "", "Optional status filter (pending|in-progress|resolved)")
	consoleCmd.Flags().String("vehicle", "", "Optional vehicle id filter")
	consoleCmd.Flags().Duration("refresh-interval", 5*time.Second, "Auto refresh interval")
}
