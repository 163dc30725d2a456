package worklist

import (
	"fmt"
	"path/filepath"

	"github.com/lawvn/lawfetch/internal/model"
)

// Split partitions items into batches of at most batchSize, stamping each
// item with its one-based batch number and the batch total. Item order is
// preserved across batch boundaries.
func Split(items []model.WorkItem, batchSize int) [][]model.WorkItem {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if len(items) == 0 {
		return nil
	}

	total := (len(items) + batchSize - 1) / batchSize
	batches := make([][]model.WorkItem, 0, total)

	for start := 0; start < len(items); start += batchSize {
		end := start + batchSize
		if end > len(items) {
			end = len(items)
		}
		batch := make([]model.WorkItem, end-start)
		copy(batch, items[start:end])
		for i := range batch {
			batch[i].BatchNumber = len(batches) + 1
			batch[i].TotalBatches = total
		}
		batches = append(batches, batch)
	}
	return batches
}

// SplitToFiles splits items and writes each batch as an .xlsx workbook named
// <prefix>_NN_of_MM_<first>_to_<last>.xlsx under outDir, where first/last are
// one-based positions in the source list. Returns the paths written.
func SplitToFiles(items []model.WorkItem, batchSize int, outDir, prefix string) ([]string, error) {
	if prefix == "" {
		prefix = "batch"
	}
	batches := Split(items, batchSize)
	if len(batches) == 0 {
		return nil, fmt.Errorf("nothing to split")
	}

	paths := make([]string, 0, len(batches))
	pos := 1
	for i, batch := range batches {
		first := pos
		last := pos + len(batch) - 1
		pos = last + 1

		name := fmt.Sprintf("%s_%02d_of_%02d_%d_to_%d.xlsx", prefix, i+1, len(batches), first, last)
		path := filepath.Join(outDir, name)
		if err := SaveXLSX(path, batch); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
