// Package report renders ledger state for operators: the plain-text error
// report, the failure-log workbook, and the console summaries printed by
// the stats and show-failed commands.
package report

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lawvn/lawfetch/internal/model"
)

// DefaultReportPath is where save-report writes unless told otherwise.
const DefaultReportPath = "error_report.txt"

const timeLayout = "2006-01-02 15:04:05"

// File size formatting constants
const (
	FileSizeUnit  = 1024
	FileSizeUnits = "KMGTPE"
)

// RunID returns a time-ordered unique ID stamped on summaries and reports.
func RunID() string {
	// UUID v7 embeds a timestamp, so report IDs sort chronologically
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Sprintf("run-%d", time.Now().UnixNano())
	}
	return id.String()
}

// SaveErrorReport writes the detailed error report to path.
func SaveErrorReport(path string, entries []model.FailureEntry, stats model.LedgerStats) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report %s: %w", path, err)
	}
	RenderErrorReport(f, entries, stats, time.Now())
	if err := f.Close(); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}
	return nil
}

// RenderErrorReport writes the full error report: summary, kind breakdown,
// retry histogram, time range, then one block per failure in recording
// order.
func RenderErrorReport(w io.Writer, entries []model.FailureEntry, stats model.LedgerStats, now time.Time) {
	fmt.Fprintln(w, "DOWNLOAD ERROR REPORT")
	fmt.Fprintln(w, strings.Repeat("=", 50))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "SUMMARY")
	fmt.Fprintf(w, "Total failures: %d\n", stats.Failed)
	fmt.Fprintf(w, "Generated: %s\n", now.Format(timeLayout))
	fmt.Fprintf(w, "Report ID: %s\n", RunID())
	fmt.Fprintln(w)

	fmt.Fprintln(w, "ERROR TYPE BREAKDOWN")
	for _, kind := range sortedKinds(stats.ByErrorKind) {
		count := stats.ByErrorKind[kind]
		percentage := float64(count) / float64(stats.Failed) * 100
		fmt.Fprintf(w, "  %s: %d (%.1f%%)\n", kind, count, percentage)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "RETRY STATISTICS")
	for _, retries := range sortedRetries(stats.RetryHistogram) {
		fmt.Fprintf(w, "  %d retries: %d documents\n", retries, stats.RetryHistogram[retries])
	}
	fmt.Fprintln(w)

	if !stats.Oldest.IsZero() {
		fmt.Fprintln(w, "TIME RANGE")
		fmt.Fprintf(w, "  First failure: %s\n", stats.Oldest.Format(timeLayout))
		fmt.Fprintf(w, "  Last failure: %s\n", stats.Newest.Format(timeLayout))
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "DETAILED FAILURES")
	fmt.Fprintln(w, strings.Repeat("-", 50))
	for i, entry := range entries {
		fmt.Fprintf(w, "\n%3d. %s\n", i+1, entry.Title)
		fmt.Fprintf(w, "     URL: %s\n", entry.SourceURL)
		if entry.ArtifactURL != "" {
			fmt.Fprintf(w, "     Artifact URL: %s\n", entry.ArtifactURL)
		}
		fmt.Fprintf(w, "     Error type: %s\n", entry.ErrorKind)
		fmt.Fprintf(w, "     Error message: %s\n", entry.ErrorMessage)
		fmt.Fprintf(w, "     Retry count: %d\n", entry.RetryCount)
		if entry.Step != "" {
			fmt.Fprintf(w, "     Step: %s\n", entry.Step)
		}
		fmt.Fprintf(w, "     Last attempt: %s\n", entry.LastAttemptAt.Format(timeLayout))
	}
}

// RenderFailures writes the compact show-failed listing.
func RenderFailures(w io.Writer, entries []model.FailureEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No failed downloads recorded.")
		return
	}

	fmt.Fprintf(w, "%d failed downloads:\n\n", len(entries))
	for i, entry := range entries {
		fmt.Fprintf(w, "%3d. [%s] %s\n", i+1, entry.ErrorKind, entry.Title)
		fmt.Fprintf(w, "     %s\n", entry.SourceURL)
		fmt.Fprintf(w, "     %s (retries: %d)\n", entry.ErrorMessage, entry.RetryCount)
	}
}

// RenderStats writes the stats command output.
func RenderStats(w io.Writer, stats model.LedgerStats) {
	fmt.Fprintf(w, "Completed: %d\n", stats.Completed)
	fmt.Fprintf(w, "Failed: %d\n", stats.Failed)
	if stats.Failed == 0 {
		return
	}

	fmt.Fprintln(w, "Failures by error type:")
	for _, kind := range sortedKinds(stats.ByErrorKind) {
		fmt.Fprintf(w, "  %s: %d\n", kind, stats.ByErrorKind[kind])
	}
	fmt.Fprintln(w, "Retry histogram:")
	for _, retries := range sortedRetries(stats.RetryHistogram) {
		fmt.Fprintf(w, "  %d retries: %d\n", retries, stats.RetryHistogram[retries])
	}
	if !stats.Oldest.IsZero() {
		fmt.Fprintf(w, "Time range: %s to %s\n",
			stats.Oldest.Format(timeLayout), stats.Newest.Format(timeLayout))
	}
}

// RenderSummary writes the end-of-run summary.
func RenderSummary(w io.Writer, s model.RunSummary) {
	fmt.Fprintln(w, "Run complete.")
	fmt.Fprintf(w, "  Run ID: %s\n", s.RunID)
	fmt.Fprintf(w, "  Succeeded: %d\n", s.Succeeded)
	fmt.Fprintf(w, "  Failed: %d\n", s.Failed)
	fmt.Fprintf(w, "  Skipped: %d\n", s.Skipped)
	fmt.Fprintf(w, "  Stored: %s\n", FormatSize(s.BytesStored))
	fmt.Fprintf(w, "  Elapsed: %s\n", s.Elapsed().Round(time.Second))
}

// FormatSize formats a byte count to human readable form.
func FormatSize(bytes int64) string {
	if bytes < FileSizeUnit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(FileSizeUnit), 0
	for n := bytes / FileSizeUnit; n >= FileSizeUnit; n /= FileSizeUnit {
		div *= FileSizeUnit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), FileSizeUnits[exp])
}

// sortedKinds orders kinds by descending count, then name, so report output
// is deterministic.
func sortedKinds(byKind map[model.ErrorKind]int) []model.ErrorKind {
	kinds := make([]model.ErrorKind, 0, len(byKind))
	for kind := range byKind {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool {
		if byKind[kinds[i]] != byKind[kinds[j]] {
			return byKind[kinds[i]] > byKind[kinds[j]]
		}
		return kinds[i] < kinds[j]
	})
	return kinds
}

func sortedRetries(histogram map[int]int) []int {
	retries := make([]int, 0, len(histogram))
	for r := range histogram {
		retries = append(retries, r)
	}
	sort.Ints(retries)
	return retries
}
