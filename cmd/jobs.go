package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rolehounds/jobscrawler/internal/store"
)

// newJobsCmd creates the 'jobs' subcommand group for the review workflow.
func newJobsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Review stored job postings",
	}
	cmd.AddCommand(newJobsNextCmd())
	cmd.AddCommand(newJobsUpdateCmd())
	return cmd
}

func newJobsNextCmd() *cobra.Command {
	var (
		testFlag     bool
		linkLike     string
		includeTitle []string
		excludeTitle []string
		includeDesc  []string
		limit        int
	)

	cmd := &cobra.Command{
		Use:   "next",
		Short: "Shows the next unreviewed postings, newest first",

		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}

			table := store.Table(a.cfg.Crawler.Test || testFlag)
			jobs, err := a.store.NextJobs(cmd.Context(), table, store.NextFilter{
				LinkLike:            linkLike,
				TitleIncludes:       includeTitle,
				TitleExcludes:       excludeTitle,
				DescriptionIncludes: includeDesc,
				Limit:               limit,
			})
			if err != nil {
				return err
			}
			if len(jobs) == 0 {
				fmt.Println("No unreviewed postings match the filter.")
				return nil
			}

			for _, job := range jobs {
				fmt.Printf("[%d] %s\n", job.ID, job.Title)
				fmt.Printf("    link:     %s\n", job.Link)
				if job.Location.Valid {
					fmt.Printf("    location: %s\n", job.Location.String)
				}
				if job.LocationTags.Valid {
					fmt.Printf("    tags:     %s\n", job.LocationTags.String)
				}
				fmt.Printf("    stored:   %s\n", job.Timestamp)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&testFlag, "test", false, "read from the test table")
	cmd.Flags().StringVar(&linkLike, "link-like", "", "only postings whose link contains this substring")
	cmd.Flags().StringSliceVar(&includeTitle, "include-title", nil, "only postings whose title contains every given keyword")
	cmd.Flags().StringSliceVar(&excludeTitle, "exclude-title", nil, "drop postings whose title contains any given keyword")
	cmd.Flags().StringSliceVar(&includeDesc, "include-description", nil, "only postings whose description contains every given keyword")
	cmd.Flags().IntVar(&limit, "limit", 1, "maximum number of postings to show")

	return cmd
}

func newJobsUpdateCmd() *cobra.Command {
	var (
		testFlag bool
		id       int64
		link     string
		status   string
		notes    string
	)

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Sets the review status of one posting",

		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			if status == "" {
				return fmt.Errorf("--status is required")
			}

			table := store.Table(a.cfg.Crawler.Test || testFlag)
			affected, err := a.store.UpdateStatus(cmd.Context(), table, id, link, status, notes)
			if err != nil {
				return err
			}
			if affected == 0 {
				fmt.Println("No posting matched.")
				return nil
			}
			fmt.Printf("Updated %d posting(s).\n", affected)
			return nil
		},
	}

	cmd.Flags().BoolVar(&testFlag, "test", false, "update the test table")
	cmd.Flags().Int64Var(&id, "id", 0, "posting id")
	cmd.Flags().StringVar(&link, "link", "", "posting link (used when --id is absent)")
	cmd.Flags().StringVar(&status, "status", "", "new status, e.g. applied, skipped")
	cmd.Flags().StringVar(&notes, "notes", "", "optional review notes")

	return cmd
}
