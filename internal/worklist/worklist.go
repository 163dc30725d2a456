// Package worklist loads, saves, and splits the tabular document lists that
// seed a run. Lists are .xlsx workbooks or .csv files with a header row;
// `title` and `url` columns are required, batch metadata is optional and
// passed through for reporting.
package worklist

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/lawvn/lawfetch/internal/model"
)

// Column header names.
const (
	ColTitle        = "title"
	ColURL          = "url"
	ColBatchNumber  = "batch_number"
	ColTotalBatches = "total_batches"
)

// DefaultBatchSize is how many items one split batch holds.
const DefaultBatchSize = 3000

// Load reads a work list, dispatching on the file extension.
func Load(path string) ([]model.WorkItem, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return LoadXLSX(path)
	case ".csv":
		return LoadCSV(path)
	default:
		return nil, fmt.Errorf("unsupported work list format: %s", path)
	}
}

// LoadCSV reads a comma-separated work list.
func LoadCSV(path string) ([]model.WorkItem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open work list: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse work list %s: %w", path, err)
	}
	return itemsFromRows(path, records)
}

// LoadXLSX reads the first sheet of an Excel workbook.
func LoadXLSX(path string) ([]model.WorkItem, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open work list: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("work list %s has no sheets", path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read work list %s: %w", path, err)
	}
	return itemsFromRows(path, rows)
}

// itemsFromRows converts a header row plus data rows into work items,
// enforcing the source-URL uniqueness that item identity depends on.
func itemsFromRows(path string, rows [][]string) ([]model.WorkItem, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("work list %s is empty", path)
	}

	cols := columnIndex(rows[0])
	titleCol, ok := cols[ColTitle]
	if !ok {
		return nil, fmt.Errorf("work list %s is missing the %q column", path, ColTitle)
	}
	urlCol, ok := cols[ColURL]
	if !ok {
		return nil, fmt.Errorf("work list %s is missing the %q column", path, ColURL)
	}
	batchCol, hasBatch := cols[ColBatchNumber]
	totalCol, hasTotal := cols[ColTotalBatches]

	items := make([]model.WorkItem, 0, len(rows)-1)
	seen := make(map[string]int, len(rows)-1)

	for i, row := range rows[1:] {
		url := strings.TrimSpace(cell(row, urlCol))
		if url == "" {
			continue
		}
		if prev, dup := seen[url]; dup {
			return nil, fmt.Errorf("work list %s: duplicate url %s (rows %d and %d)", path, url, prev, i+2)
		}
		seen[url] = i + 2

		item := model.WorkItem{
			ID:        len(items) + 1,
			Title:     strings.TrimSpace(cell(row, titleCol)),
			SourceURL: url,
		}
		if hasBatch {
			item.BatchNumber, _ = strconv.Atoi(strings.TrimSpace(cell(row, batchCol)))
		}
		if hasTotal {
			item.TotalBatches, _ = strconv.Atoi(strings.TrimSpace(cell(row, totalCol)))
		}
		items = append(items, item)
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("work list %s has no data rows", path)
	}
	return items, nil
}

func columnIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return cols
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

// Save writes a work list, dispatching on the file extension.
func Save(path string, items []model.WorkItem) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return SaveXLSX(path, items)
	case ".csv":
		return SaveCSV(path, items)
	default:
		return fmt.Errorf("unsupported work list format: %s", path)
	}
}

// SaveCSV writes items as a comma-separated work list.
func SaveCSV(path string, items []model.WorkItem) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create work list: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{ColTitle, ColURL, ColBatchNumber, ColTotalBatches}); err != nil {
		return err
	}
	for _, item := range items {
		rec := []string{
			item.Title,
			item.SourceURL,
			strconv.Itoa(item.BatchNumber),
			strconv.Itoa(item.TotalBatches),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write work list %s: %w", path, err)
	}
	return f.Close()
}

// SaveXLSX writes items as a single-sheet Excel workbook.
func SaveXLSX(path string, items []model.WorkItem) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetList()[0]
	header := []interface{}{ColTitle, ColURL, ColBatchNumber, ColTotalBatches}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, item := range items {
		cellRef, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{item.Title, item.SourceURL, item.BatchNumber, item.TotalBatches}
		if err := f.SetSheetRow(sheet, cellRef, &row); err != nil {
			return err
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save work list %s: %w", path, err)
	}
	return nil
}
