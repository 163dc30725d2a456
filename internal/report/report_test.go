package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/lawvn/lawfetch/internal/model"
)

func testEntries() []model.FailureEntry {
	return []model.FailureEntry{
		{
			Title:         "Luật Giao Thông 2023",
			SourceURL:     "https://luatvietnam.vn/giao-thong/luat-giao-thong-2023.html",
			ArtifactURL:   "https://luatvietnam.vn/uploaded/luat-giao-thong.pdf",
			ErrorKind:     model.ErrKindDownloadFailed,
			ErrorMessage:  "downloaded file contains HTML content (likely error page)",
			RetryCount:    2,
			LastAttemptAt: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
			Step:          model.StepVerify,
		},
		{
			Title:         "Nghị Định 15/2024",
			SourceURL:     "https://luatvietnam.vn/thue/nghi-dinh-15.html",
			ErrorKind:     model.ErrKindTimeout,
			ErrorMessage:  "download timeout (60 seconds exceeded)",
			RetryCount:    0,
			LastAttemptAt: time.Date(2024, 3, 2, 11, 30, 0, 0, time.UTC),
			Step:          model.StepDownload,
		},
		{
			Title:         "Thông Tư 22/2023",
			SourceURL:     "https://luatvietnam.vn/y-te/thong-tu-22.html",
			ErrorKind:     model.ErrKindDownloadFailed,
			ErrorMessage:  "downloaded file does not appear to be a valid document",
			RetryCount:    1,
			LastAttemptAt: time.Date(2024, 3, 3, 9, 15, 0, 0, time.UTC),
			Step:          model.StepVerify,
		},
	}
}

func testStats() model.LedgerStats {
	return model.LedgerStats{
		Completed: 40,
		Failed:    3,
		ByErrorKind: map[model.ErrorKind]int{
			model.ErrKindDownloadFailed: 2,
			model.ErrKindTimeout:        1,
		},
		RetryHistogram: map[int]int{0: 1, 1: 1, 2: 1},
		Oldest:         time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		Newest:         time.Date(2024, 3, 3, 9, 15, 0, 0, time.UTC),
	}
}

func TestRenderErrorReport(t *testing.T) {
	var buf strings.Builder
	now := time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)
	RenderErrorReport(&buf, testEntries(), testStats(), now)
	out := buf.String()

	sections := []string{
		"DOWNLOAD ERROR REPORT",
		"SUMMARY",
		"Total failures: 3",
		"Generated: 2024-03-04 08:00:00",
		"Report ID: ",
		"ERROR TYPE BREAKDOWN",
		"  DownloadFailed: 2 (66.7%)",
		"  TimeoutError: 1 (33.3%)",
		"RETRY STATISTICS",
		"  0 retries: 1 documents",
		"  2 retries: 1 documents",
		"TIME RANGE",
		"  First failure: 2024-03-01 10:00:00",
		"  Last failure: 2024-03-03 09:15:00",
		"DETAILED FAILURES",
		"  1. Luật Giao Thông 2023",
		"     URL: https://luatvietnam.vn/giao-thong/luat-giao-thong-2023.html",
		"     Artifact URL: https://luatvietnam.vn/uploaded/luat-giao-thong.pdf",
		"     Error type: DownloadFailed",
		"     Retry count: 2",
		"     Step: verify",
		"  2. Nghị Định 15/2024",
		"  3. Thông Tư 22/2023",
	}
	for _, want := range sections {
		if !strings.Contains(out, want) {
			t.Errorf("Expected report to contain %q, got:\n%s", want, out)
		}
	}

	// The most common kind is listed first.
	if strings.Index(out, "DownloadFailed: 2") > strings.Index(out, "TimeoutError: 1") {
		t.Error("Expected DownloadFailed breakdown line before TimeoutError")
	}
	// Entries keep recording order.
	if strings.Index(out, "Luật Giao Thông 2023") > strings.Index(out, "Nghị Định 15/2024") {
		t.Error("Expected detailed failures in recording order")
	}
}

func TestRenderErrorReport_OmitsArtifactURLWhenEmpty(t *testing.T) {
	var buf strings.Builder
	entries := testEntries()[1:2]
	RenderErrorReport(&buf, entries, testStats(), time.Now())

	if strings.Contains(buf.String(), "Artifact URL:") {
		t.Errorf("Expected no artifact URL line for entry without one, got:\n%s", buf.String())
	}
}

func TestRenderErrorReport_SkipsTimeRangeWhenEmpty(t *testing.T) {
	var buf strings.Builder
	RenderErrorReport(&buf, nil, model.LedgerStats{}, time.Now())

	if strings.Contains(buf.String(), "TIME RANGE") {
		t.Errorf("Expected no time range section for empty stats, got:\n%s", buf.String())
	}
}

func TestSaveErrorReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "error_report.txt")
	if err := SaveErrorReport(path, testEntries(), testStats()); err != nil {
		t.Fatalf("Failed to save report: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read report back: %v", err)
	}
	if !strings.Contains(string(data), "DOWNLOAD ERROR REPORT") {
		t.Errorf("Expected saved report header, got:\n%s", data)
	}
}

func TestRenderFailures_Empty(t *testing.T) {
	var buf strings.Builder
	RenderFailures(&buf, nil)

	if buf.String() != "No failed downloads recorded.\n" {
		t.Errorf("Expected empty-store message, got %q", buf.String())
	}
}

func TestRenderFailures(t *testing.T) {
	var buf strings.Builder
	RenderFailures(&buf, testEntries())
	out := buf.String()

	if !strings.Contains(out, "3 failed downloads:") {
		t.Errorf("Expected failure count header, got:\n%s", out)
	}
	if !strings.Contains(out, "[DownloadFailed] Luật Giao Thông 2023") {
		t.Errorf("Expected kind-tagged title line, got:\n%s", out)
	}
	if !strings.Contains(out, "(retries: 2)") {
		t.Errorf("Expected retry count suffix, got:\n%s", out)
	}
}

func TestRenderStats(t *testing.T) {
	var buf strings.Builder
	RenderStats(&buf, testStats())
	out := buf.String()

	for _, want := range []string{
		"Completed: 40",
		"Failed: 3",
		"  DownloadFailed: 2",
		"  1 retries: 1",
		"Time range: 2024-03-01 10:00:00 to 2024-03-03 09:15:00",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected stats output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestRenderStats_NoFailures(t *testing.T) {
	var buf strings.Builder
	RenderStats(&buf, model.LedgerStats{Completed: 12})
	out := buf.String()

	if !strings.Contains(out, "Completed: 12") {
		t.Errorf("Expected completed count, got:\n%s", out)
	}
	if strings.Contains(out, "Failures by error type") {
		t.Errorf("Expected no breakdown without failures, got:\n%s", out)
	}
}

func TestRenderSummary(t *testing.T) {
	var buf strings.Builder
	started := time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)
	RenderSummary(&buf, model.RunSummary{
		RunID:       "run-test",
		Total:       50,
		Succeeded:   45,
		Failed:      3,
		Skipped:     2,
		BytesStored: 5 * 1024 * 1024,
		StartedAt:   started,
		FinishedAt:  started.Add(90 * time.Second),
	})
	out := buf.String()

	for _, want := range []string{
		"Run complete.",
		"Run ID: run-test",
		"Succeeded: 45",
		"Failed: 3",
		"Skipped: 2",
		"Stored: 5.0 MB",
		"Elapsed: 1m30s",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected summary to contain %q, got:\n%s", want, out)
		}
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		bytes    int64
		expected string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1048576, "1.0 MB"},
		{5242880, "5.0 MB"},
		{1073741824, "1.0 GB"},
	}

	for _, test := range tests {
		result := FormatSize(test.bytes)
		if result != test.expected {
			t.Errorf("FormatSize(%d): expected %s, got %s", test.bytes, test.expected, result)
		}
	}
}

func TestRunID(t *testing.T) {
	first := RunID()
	second := RunID()

	if first == "" {
		t.Fatal("Expected non-empty run ID")
	}
	if first == second {
		t.Errorf("Expected distinct run IDs, got %s twice", first)
	}
}

func TestWriteFailureWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "failed_downloads_log.xlsx")
	entries := testEntries()
	if err := WriteFailureWorkbook(path, entries); err != nil {
		t.Fatalf("Failed to write workbook: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("Failed to open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetList()[0])
	if err != nil {
		t.Fatalf("Failed to read workbook rows: %v", err)
	}
	if len(rows) != len(entries)+1 {
		t.Fatalf("Expected %d rows, got %d", len(entries)+1, len(rows))
	}

	if rows[0][0] != "timestamp" || rows[0][4] != "error_type" {
		t.Errorf("Unexpected header row: %v", rows[0])
	}

	first := rows[1]
	if first[0] != "2024-03-01 10:00:00" {
		t.Errorf("Expected timestamp column, got %s", first[0])
	}
	if first[1] != "Luật Giao Thông 2023" {
		t.Errorf("Expected title column, got %s", first[1])
	}
	if first[4] != "DownloadFailed" {
		t.Errorf("Expected error type column, got %s", first[4])
	}
	if first[6] != "2" {
		t.Errorf("Expected retry count column, got %s", first[6])
	}
	if first[7] != "verify" {
		t.Errorf("Expected step column, got %s", first[7])
	}
}

func TestWriteFailureWorkbook_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	if err := WriteFailureWorkbook(path, nil); err != nil {
		t.Fatalf("Failed to write empty workbook: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("Failed to open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetList()[0])
	if err != nil {
		t.Fatalf("Failed to read workbook rows: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("Expected header-only workbook, got %d rows", len(rows))
	}
}
