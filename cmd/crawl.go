package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rolehounds/jobscrawler/internal/crawler"
	"github.com/rolehounds/jobscrawler/internal/engine"
	"github.com/rolehounds/jobscrawler/internal/metrics"
)

// newCrawlCmd creates the 'crawl' subcommand, which runs one full crawl
// cycle and exits.
func newCrawlCmd() *cobra.Command {
	var (
		testFlag   bool
		familyFlag string
	)

	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Runs one crawl cycle across all strategy families",
		Long: `Crawls every enabled source once. The three strategy families (rss,
api, html) run concurrently; pass --family to run just one of them. With
--test the smaller test source set is crawled into the test table.`,

		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}

			if a.cfg.Metrics.Enabled {
				metrics.Serve(a.cfg.Metrics.Addr, a.logger)
			}

			eng := a.newEngine(testFlag)
			if familyFlag != "" {
				family, err := parseFamily(familyFlag)
				if err != nil {
					return err
				}
				return eng.Run(cmd.Context(), family)
			}

			return engine.NewOrchestrator(eng, a.logger).RunAll(cmd.Context())
		},
	}

	cmd.Flags().BoolVar(&testFlag, "test", false, "crawl the test source set into the test table")
	cmd.Flags().StringVar(&familyFlag, "family", "", "run only one strategy family (rss, api or html)")

	return cmd
}

func parseFamily(s string) (crawler.Family, error) {
	for _, f := range crawler.Families() {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown family %q, expected rss, api or html", s)
}
