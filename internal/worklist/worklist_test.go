package worklist

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lawvn/lawfetch/internal/model"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "list.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadCSV(t *testing.T) {
	path := writeCSV(t, "title,url\nLuật Giao Thông,https://x/a\nNghị định 100,https://x/b\n")

	items, err := LoadCSV(path)
	if err != nil {
		t.Fatalf("LoadCSV failed: %v", err)
	}

	if len(items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(items))
	}
	if items[0].Title != "Luật Giao Thông" {
		t.Errorf("Expected title preserved, got %q", items[0].Title)
	}
	if items[0].SourceURL != "https://x/a" {
		t.Errorf("Expected url https://x/a, got %s", items[0].SourceURL)
	}
	if items[0].ID != 1 || items[1].ID != 2 {
		t.Errorf("Expected sequential IDs, got %d and %d", items[0].ID, items[1].ID)
	}
}

func TestLoadCSV_ColumnOrderIrrelevant(t *testing.T) {
	path := writeCSV(t, "url,batch_number,title,total_batches\nhttps://x/a,2,Doc A,5\n")

	items, err := LoadCSV(path)
	if err != nil {
		t.Fatalf("LoadCSV failed: %v", err)
	}

	if items[0].Title != "Doc A" {
		t.Errorf("Expected title 'Doc A', got %q", items[0].Title)
	}
	if items[0].BatchNumber != 2 || items[0].TotalBatches != 5 {
		t.Errorf("Expected batch 2/5, got %d/%d", items[0].BatchNumber, items[0].TotalBatches)
	}
}

func TestLoadCSV_DuplicateURLRejected(t *testing.T) {
	path := writeCSV(t, "title,url\nA,https://x/a\nB,https://x/a\n")

	_, err := LoadCSV(path)
	if err == nil {
		t.Fatal("Expected error for duplicate url")
	}
	if !strings.Contains(err.Error(), "duplicate url") {
		t.Errorf("Expected duplicate url error, got %v", err)
	}
}

func TestLoadCSV_MissingColumn(t *testing.T) {
	path := writeCSV(t, "name,link\nA,https://x/a\n")

	if _, err := LoadCSV(path); err == nil {
		t.Error("Expected error for missing title/url columns")
	}
}

func TestLoadCSV_SkipsBlankURLRows(t *testing.T) {
	path := writeCSV(t, "title,url\nA,https://x/a\nblank,\nB,https://x/b\n")

	items, err := LoadCSV(path)
	if err != nil {
		t.Fatalf("LoadCSV failed: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("Expected blank-url row skipped, got %d items", len(items))
	}
}

func TestLoad_UnsupportedFormat(t *testing.T) {
	if _, err := Load("list.json"); err == nil {
		t.Error("Expected error for unsupported format")
	}
}

func TestSaveAndLoadCSV_RoundTrip(t *testing.T) {
	items := []model.WorkItem{
		{ID: 1, Title: "Luật Giao Thông 2023", SourceURL: "https://x/a", BatchNumber: 1, TotalBatches: 2},
		{ID: 2, Title: "Thông tư 32", SourceURL: "https://x/b", BatchNumber: 2, TotalBatches: 2},
	}
	path := filepath.Join(t.TempDir(), "out.csv")

	if err := SaveCSV(path, items); err != nil {
		t.Fatalf("SaveCSV failed: %v", err)
	}
	loaded, err := LoadCSV(path)
	if err != nil {
		t.Fatalf("LoadCSV failed: %v", err)
	}

	if len(loaded) != len(items) {
		t.Fatalf("Expected %d items, got %d", len(items), len(loaded))
	}
	for i := range items {
		if loaded[i].Title != items[i].Title || loaded[i].SourceURL != items[i].SourceURL {
			t.Errorf("Item %d: expected %+v, got %+v", i, items[i], loaded[i])
		}
		if loaded[i].BatchNumber != items[i].BatchNumber {
			t.Errorf("Item %d: expected batch %d, got %d", i, items[i].BatchNumber, loaded[i].BatchNumber)
		}
	}
}

func TestSaveAndLoadXLSX_RoundTrip(t *testing.T) {
	items := []model.WorkItem{
		{ID: 1, Title: "Nghị định 100/2019", SourceURL: "https://x/a"},
		{ID: 2, Title: "Văn bản hợp nhất", SourceURL: "https://x/b"},
	}
	path := filepath.Join(t.TempDir(), "out.xlsx")

	if err := SaveXLSX(path, items); err != nil {
		t.Fatalf("SaveXLSX failed: %v", err)
	}
	loaded, err := LoadXLSX(path)
	if err != nil {
		t.Fatalf("LoadXLSX failed: %v", err)
	}

	if len(loaded) != len(items) {
		t.Fatalf("Expected %d items, got %d", len(items), len(loaded))
	}
	for i := range items {
		if loaded[i].Title != items[i].Title || loaded[i].SourceURL != items[i].SourceURL {
			t.Errorf("Item %d: expected %+v, got %+v", i, items[i], loaded[i])
		}
	}
}

func TestSplit(t *testing.T) {
	items := make([]model.WorkItem, 7)
	for i := range items {
		items[i] = model.WorkItem{ID: i + 1, Title: "Doc", SourceURL: "https://x/" + string(rune('a'+i))}
	}

	batches := Split(items, 3)

	if len(batches) != 3 {
		t.Fatalf("Expected 3 batches, got %d", len(batches))
	}
	if len(batches[0]) != 3 || len(batches[1]) != 3 || len(batches[2]) != 1 {
		t.Errorf("Expected sizes 3/3/1, got %d/%d/%d", len(batches[0]), len(batches[1]), len(batches[2]))
	}
	for bi, batch := range batches {
		for _, item := range batch {
			if item.BatchNumber != bi+1 {
				t.Errorf("Expected batch number %d, got %d", bi+1, item.BatchNumber)
			}
			if item.TotalBatches != 3 {
				t.Errorf("Expected total batches 3, got %d", item.TotalBatches)
			}
		}
	}
	// Order is preserved across the split.
	if batches[2][0].SourceURL != "https://x/g" {
		t.Errorf("Expected last item in last batch, got %s", batches[2][0].SourceURL)
	}
	// Source slice is not mutated.
	if items[0].BatchNumber != 0 {
		t.Error("Split should not mutate its input")
	}
}

func TestSplit_Empty(t *testing.T) {
	if batches := Split(nil, 3); batches != nil {
		t.Errorf("Expected nil for empty input, got %v", batches)
	}
}

func TestSplitToFiles(t *testing.T) {
	items := make([]model.WorkItem, 5)
	for i := range items {
		items[i] = model.WorkItem{ID: i + 1, Title: "Doc", SourceURL: "https://x/" + string(rune('a'+i))}
	}
	dir := t.TempDir()

	paths, err := SplitToFiles(items, 2, dir, "batch")
	if err != nil {
		t.Fatalf("SplitToFiles failed: %v", err)
	}

	expected := []string{
		"batch_01_of_03_1_to_2.xlsx",
		"batch_02_of_03_3_to_4.xlsx",
		"batch_03_of_03_5_to_5.xlsx",
	}
	if len(paths) != len(expected) {
		t.Fatalf("Expected %d files, got %d", len(expected), len(paths))
	}
	for i, want := range expected {
		if filepath.Base(paths[i]) != want {
			t.Errorf("File %d: expected %s, got %s", i, want, filepath.Base(paths[i]))
		}
	}

	// Each written batch loads back with its stamp.
	loaded, err := LoadXLSX(paths[1])
	if err != nil {
		t.Fatalf("LoadXLSX failed: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("Expected 2 items in middle batch, got %d", len(loaded))
	}
	if loaded[0].BatchNumber != 2 || loaded[0].TotalBatches != 3 {
		t.Errorf("Expected batch stamp 2/3, got %d/%d", loaded[0].BatchNumber, loaded[0].TotalBatches)
	}
}
