// Package cli wires the operator commands: crawl, retry-failed,
// discover, split, show-failed, stats and save-report. Commands return
// an error only for process failures (unreadable config, missing work
// list, aborted session probe); per-document download failures are
// recorded in the ledger and never affect the exit code.
package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lawvn/lawfetch/internal/config"
)

// app carries the flag values and the loaded settings shared by every
// subcommand.
type app struct {
	configPath string
	verbose    bool
	logJSON    bool

	settings config.Settings
}

// Execute runs the root command under a signal-aware context. An
// interrupt cancels the run between work items, so the ledger stays
// consistent and a later invocation resumes where this one stopped.
func Execute(version string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd(version).ExecuteContext(ctx); err != nil {
		return 1
	}
	return 0
}

// NewRootCmd builds the full command tree.
func NewRootCmd(version string) *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "lawfetch",
		Short: "Bulk document retriever for luatvietnam.vn",
		Long: `lawfetch walks a work list of document pages, logs in when a page
hides its files behind authentication, downloads the PDF or Word
artifact and verifies it before keeping it. Progress is journaled so an
interrupted run resumes without re-downloading anything.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.setupLogging()
			settings, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			a.settings = settings
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", config.DefaultConfigPath, "path to the YAML config file")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().BoolVar(&a.logJSON, "log-json", false, "emit logs as JSON instead of text")

	root.AddCommand(
		newCrawlCmd(a),
		newRetryFailedCmd(a),
		newDiscoverCmd(a),
		newSplitCmd(a),
		newShowFailedCmd(a),
		newStatsCmd(a),
		newSaveReportCmd(a),
	)
	return root
}

func (a *app) setupLogging() {
	level := slog.LevelInfo
	if a.verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if a.logJSON {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// listArg resolves the optional positional work-list argument, falling
// back to the configured path.
func listArg(args []string, fallback string) string {
	if len(args) == 1 && args[0] != "" {
		return args[0]
	}
	return fallback
}
