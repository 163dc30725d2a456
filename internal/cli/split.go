package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lawvn/lawfetch/internal/storage"
	"github.com/lawvn/lawfetch/internal/worklist"
)

func newSplitCmd(a *app) *cobra.Command {
	var (
		batchSize int
		outDir    string
	)

	cmd := &cobra.Command{
		Use:   "split [list-file]",
		Short: "Split a work list into numbered batch files",
		Long: `Split divides a large work list into fixed-size batch files so several
operators (or several machines) can crawl disjoint slices. Each row in
a batch file keeps its batch number and the batch total.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := listArg(args, a.settings.WorklistPath)
			items, err := worklist.Load(path)
			if err != nil {
				return err
			}

			if err := storage.EnsureDir(outDir); err != nil {
				return err
			}
			prefix := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			files, err := worklist.SplitToFiles(items, batchSize, outDir, prefix)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Split %d documents into %d batch files\n", len(items), len(files))
			for _, f := range files {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", f)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&batchSize, "batch-size", worklist.DefaultBatchSize, "documents per batch file")
	cmd.Flags().StringVar(&outDir, "out-dir", ".", "directory the batch files are written to")
	return cmd
}
