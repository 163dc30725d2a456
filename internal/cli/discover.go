package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lawvn/lawfetch/internal/discover"
	"github.com/lawvn/lawfetch/internal/session"
	"github.com/lawvn/lawfetch/internal/worklist"
)

func newDiscoverCmd(a *app) *cobra.Command {
	var (
		patterns []string
		keywords []string
		noFilter bool
		outPath  string
	)

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Scan listing pages and build a work list",
		Long: `Discover walks paginated listing pages, collects document links whose
titles match the keyword filter, and saves them as a work list ready
for crawl. Without flags it scans the traffic-law listings with the
built-in traffic vocabulary.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			transport, err := session.NewTransport(a.settings.UserAgent, a.settings.BaseURL+"/")
			if err != nil {
				return err
			}
			scanner := discover.NewScanner(transport, a.settings)

			kw := keywords
			if noFilter {
				kw = nil
			} else if len(kw) == 0 {
				kw = discover.DefaultKeywords()
			}

			items, err := scanner.Scan(cmd.Context(), patterns, kw)
			if err != nil {
				return err
			}

			out := outPath
			if out == "" {
				out = a.settings.WorklistPath
			}
			if err := worklist.Save(out, items); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Discovered %d documents, saved to %s\n", len(items), out)
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&patterns, "pattern", nil, "listing URL to scan (repeatable); defaults to the traffic-law listings")
	cmd.Flags().StringArrayVar(&keywords, "keyword", nil, "keep only titles containing this keyword (repeatable)")
	cmd.Flags().BoolVar(&noFilter, "no-filter", false, "keep every discovered title regardless of keywords")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output work list (.xlsx or .csv); defaults to the configured path")
	return cmd
}
