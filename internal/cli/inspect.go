package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lawvn/lawfetch/internal/ledger"
	"github.com/lawvn/lawfetch/internal/report"
)

func newShowFailedCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show-failed",
		Short: "List the recorded download failures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			led, err := a.openLedger()
			if err != nil {
				return err
			}
			defer led.Close()

			report.RenderFailures(cmd.OutOrStdout(), led.Snapshot())
			return nil
		},
	}
}

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize progress and failure breakdowns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			led, err := a.openLedger()
			if err != nil {
				return err
			}
			defer led.Close()

			report.RenderStats(cmd.OutOrStdout(), led.Stats())
			return nil
		},
	}
}

func newSaveReportCmd(a *app) *cobra.Command {
	var workbookPath string

	cmd := &cobra.Command{
		Use:   "save-report [path]",
		Short: "Write the detailed error report to a file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			led, err := a.openLedger()
			if err != nil {
				return err
			}
			defer led.Close()

			path := report.DefaultReportPath
			if len(args) == 1 {
				path = args[0]
			}
			if err := report.SaveErrorReport(path, led.Snapshot(), led.Stats()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Error report saved to %s\n", path)

			if workbookPath != "" {
				if err := report.WriteFailureWorkbook(workbookPath, led.Snapshot()); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Failure workbook saved to %s\n", workbookPath)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&workbookPath, "workbook", "", "also write the failures as an .xlsx workbook at this path")
	return cmd
}

func (a *app) openLedger() (*ledger.Ledger, error) {
	return ledger.Open(a.settings.ProgressPath, a.settings.FailuresPath)
}
