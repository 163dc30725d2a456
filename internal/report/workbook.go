package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/lawvn/lawfetch/internal/model"
)

// DefaultWorkbookPath is where the failure workbook is written unless told
// otherwise.
const DefaultWorkbookPath = "failed_downloads_log.xlsx"

// Failure workbook column headers, one column per FailureEntry field.
var workbookHeader = []interface{}{
	"timestamp",
	"title",
	"url",
	"artifact_url",
	"error_type",
	"error_message",
	"retry_count",
	"step",
}

// WriteFailureWorkbook writes the failure store as a single-sheet Excel
// workbook so failures can be filtered and sorted in a spreadsheet. Entries
// keep their recording order.
func WriteFailureWorkbook(path string, entries []model.FailureEntry) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetList()[0]
	if err := f.SetSheetRow(sheet, "A1", &workbookHeader); err != nil {
		return err
	}
	for i, entry := range entries {
		cellRef, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			entry.LastAttemptAt.Format(timeLayout),
			entry.Title,
			entry.SourceURL,
			entry.ArtifactURL,
			entry.ErrorKind.String(),
			entry.ErrorMessage,
			entry.RetryCount,
			entry.Step,
		}
		if err := f.SetSheetRow(sheet, cellRef, &row); err != nil {
			return err
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save failure workbook %s: %w", path, err)
	}
	return nil
}
