package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/lawvn/lawfetch/internal/config"
	"github.com/lawvn/lawfetch/internal/fetch"
	"github.com/lawvn/lawfetch/internal/ledger"
	"github.com/lawvn/lawfetch/internal/model"
	"github.com/lawvn/lawfetch/internal/pipeline"
	"github.com/lawvn/lawfetch/internal/report"
	"github.com/lawvn/lawfetch/internal/session"
	"github.com/lawvn/lawfetch/internal/storage"
	"github.com/lawvn/lawfetch/internal/worklist"
)

func newCrawlCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "crawl [list-file]",
		Short: "Retrieve every document on the work list",
		Long: `Crawl walks the work list top to bottom, skipping documents that are
already done or already recorded as failed, and downloads the rest.
Interrupt with Ctrl-C at any time; the next crawl resumes from the
journal.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := worklist.Load(listArg(args, a.settings.WorklistPath))
			if err != nil {
				return err
			}
			if err := storage.EnsureDir(a.settings.OutputDir); err != nil {
				return err
			}

			stack, err := a.buildStack(cmd)
			if err != nil {
				return err
			}
			defer stack.Close()

			summary := stack.runner.Run(cmd.Context(), items)
			report.RenderSummary(cmd.OutOrStdout(), summary)
			saveFailureWorkbook(cmd, stack.ledger)
			if summary.Failed > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "\nRun 'lawfetch retry-failed' to retry, or 'lawfetch show-failed' for details.\n")
			}
			return nil
		},
	}
}

func newRetryFailedCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "retry-failed [list-file]",
		Short: "Give every recorded failure one fresh attempt",
		Long: `Retry-failed re-attempts every document in the failed set. The work
list is optional: when present it supplies batch metadata, otherwise
the entries are rebuilt from the failure records alone. Documents that
fail again keep their records with an incremented retry count.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var items []model.WorkItem
			path := listArg(args, a.settings.WorklistPath)
			if storage.FileExists(path) {
				var err error
				items, err = worklist.Load(path)
				if err != nil {
					return err
				}
			}
			if err := storage.EnsureDir(a.settings.OutputDir); err != nil {
				return err
			}

			stack, err := a.buildStack(cmd)
			if err != nil {
				return err
			}
			defer stack.Close()

			summary, err := stack.runner.RetryFailed(cmd.Context(), items)
			if err != nil {
				return err
			}
			report.RenderSummary(cmd.OutOrStdout(), summary)
			saveFailureWorkbook(cmd, stack.ledger)
			return nil
		},
	}
}

// saveFailureWorkbook mirrors the current failure set into the .xlsx error
// log after a run, so the records can be sorted and filtered in a
// spreadsheet. A write problem is worth a warning, not a failed run.
func saveFailureWorkbook(cmd *cobra.Command, led *ledger.Ledger) {
	entries := led.Snapshot()
	if len(entries) == 0 {
		return
	}
	if err := report.WriteFailureWorkbook(report.DefaultWorkbookPath, entries); err != nil {
		slog.Warn("save failure workbook", "error", err)
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Failure workbook saved to %s\n", report.DefaultWorkbookPath)
}

// stack bundles the wired retrieval collaborators behind one Close.
type stack struct {
	ledger *ledger.Ledger
	runner *pipeline.Runner
}

func (s *stack) Close() {
	if err := s.ledger.Close(); err != nil {
		slog.Warn("close ledger", "error", err)
	}
}

// buildStack assembles the retrieval pipeline: cookie-jar transport,
// form-login session manager, verifying retriever and ledger. Missing
// credentials are prompted for before any request goes out.
func (a *app) buildStack(cmd *cobra.Command) (*stack, error) {
	creds := config.LoadCredentials()
	if !creds.Complete() {
		var err error
		creds, err = promptCredentials(cmd, creds)
		if err != nil {
			return nil, err
		}
	}

	transport, err := session.NewTransport(a.settings.UserAgent, a.settings.BaseURL+"/")
	if err != nil {
		return nil, err
	}
	driver := session.NewFormDriver(transport, a.settings.BaseURL, a.settings.PageTimeout)
	auth := session.NewManager(driver, creds, a.settings.IndicatorWait)

	led, err := ledger.Open(a.settings.ProgressPath, a.settings.FailuresPath)
	if err != nil {
		return nil, err
	}

	runner := pipeline.NewRunner(transport, auth, fetch.NewService(transport, a.settings), led, a.settings)
	return &stack{ledger: led, runner: runner}, nil
}
