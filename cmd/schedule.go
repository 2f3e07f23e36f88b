package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rolehounds/jobscrawler/internal/engine"
	"github.com/rolehounds/jobscrawler/internal/metrics"
)

// newScheduleCmd creates the 'schedule' subcommand, which keeps the
// process alive and crawls on a fixed interval.
func newScheduleCmd() *cobra.Command {
	var testFlag bool

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Crawls on a fixed interval until interrupted",
		Long: `Runs a crawl cycle immediately, then again every schedule.every_hours
hours until the process receives SIGINT or SIGTERM.`,

		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}

			if a.cfg.Metrics.Enabled {
				metrics.Serve(a.cfg.Metrics.Addr, a.logger)
			}

			orch := engine.NewOrchestrator(a.newEngine(testFlag), a.logger)
			runCycle := func() {
				if err := orch.RunAll(cmd.Context()); err != nil {
					a.logger.Error("Scheduled crawl cycle had failures", zap.Error(err))
				}
			}

			runCycle()

			c := cron.New()
			spec := fmt.Sprintf("@every %dh", a.cfg.Schedule.EveryHours)
			if _, err := c.AddFunc(spec, runCycle); err != nil {
				return fmt.Errorf("register schedule %q: %w", spec, err)
			}
			c.Start()
			a.logger.Info("Crawl schedule started", zap.String("spec", spec))

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			sig := <-quit

			a.logger.Info("Shutting down", zap.String("signal", sig.String()))
			<-c.Stop().Done()
			return nil
		},
	}

	cmd.Flags().BoolVar(&testFlag, "test", false, "crawl the test source set into the test table")

	return cmd
}
