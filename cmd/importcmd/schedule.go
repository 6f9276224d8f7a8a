package importcmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"

	"github.com/dertown/eventscrape/internal/importer"
	"github.com/dertown/eventscrape/internal/logger"
)

// runScheduled runs imports on a cron schedule until interrupted. Runs
// never overlap: a tick that fires while the previous run is still going
// is skipped.
func runScheduled(
	ctx context.Context,
	imp *importer.Importer,
	opts importer.Options,
	cronSpec string,
	log logger.Interface,
) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DiscardLogger),
	))

	_, err := scheduler.AddFunc(cronSpec, func() {
		summary, runErr := imp.Run(ctx, opts)
		if runErr != nil {
			log.Error("Scheduled import failed", "error", runErr)
			return
		}
		log.Info("Scheduled import completed",
			"processed", summary.Processed,
			"succeeded", summary.Succeeded,
			"skipped", summary.Skipped,
			"failed", summary.Failed,
			"created", summary.Created,
			"updated", summary.Updated)
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", cronSpec, err)
	}

	log.Info("Starting scheduled imports", "schedule", cronSpec)
	scheduler.Start()

	<-ctx.Done()
	log.Info("Shutdown signal received")

	// Wait for an in-flight run to finish before exiting.
	<-scheduler.Stop().Done()
	log.Info("Scheduler stopped")
	return nil
}
