package cmd

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shelfdata/subjectwatch/internal/batch"
	"github.com/shelfdata/subjectwatch/internal/config"
	"github.com/shelfdata/subjectwatch/internal/fetch"
	"github.com/shelfdata/subjectwatch/internal/progress"
	"github.com/shelfdata/subjectwatch/internal/progress/sinks"
	"github.com/shelfdata/subjectwatch/internal/snapstore"
)

// newScrapeCmd creates the 'scrape' subcommand: one full batch run over the
// configured category pages, persisted as a snapshot.
func newScrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Scrape every configured category page into a snapshot",
		Long: `Fetches each configured category page in order with jittered pacing,
segments it into notes and code/label entries, validates the result, and
writes the accumulated snapshot to the snapshot store. A page that fails
fetching or validation is reported and skipped; the batch never aborts.`,
		RunE: runScrapeCommand,
	}
	return cmd
}

func runScrapeCommand(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if len(cfg.Source.CategoryURLs) == 0 {
		return errors.New("no category urls configured (source.category_urls)")
	}

	driver, closeDriver, err := buildDriver(cfg)
	if err != nil {
		return fmt.Errorf("init page driver: %w", err)
	}
	defer closeDriver()

	emitter, err := buildEmitter(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = emitter.Close(cmd.Context()) }()

	controller, err := fetch.NewController(driver, fetch.Options{
		MaxAttempts: cfg.Fetch.MaxAttempts,
		Timeout:     cfg.FetchTimeout(),
		RetryDelay:  cfg.RetryDelay(),
	}, emitter, logger)
	if err != nil {
		return fmt.Errorf("init fetch controller: %w", err)
	}

	minDelay, maxDelay := cfg.DelayWindow()
	runner, err := batch.NewRunner(controller, batch.Options{
		MinDelay: minDelay,
		MaxDelay: maxDelay,
	}, emitter, nil, logger)
	if err != nil {
		return fmt.Errorf("init batch runner: %w", err)
	}

	result, runErr := runner.Run(cmd.Context(), cfg.Source.CategoryURLs)
	for _, failure := range result.Failures {
		logger.Warn("page contributed nothing to the snapshot",
			zap.String("url", failure.URL),
			zap.Error(failure.Err),
		)
	}
	if runErr != nil {
		return fmt.Errorf("run aborted: %w", runErr)
	}
	if len(result.Snapshot.Categories) == 0 {
		return errors.New("no category page survived; refusing to persist an empty snapshot")
	}

	store, err := snapstore.New(cfg.Snapshots.Dir)
	if err != nil {
		return fmt.Errorf("init snapshot store: %w", err)
	}
	path, err := store.Save(cfg.Snapshots.Name, result.Snapshot)
	if err != nil {
		return fmt.Errorf("persist snapshot: %w", err)
	}

	logger.Info("snapshot written",
		zap.String("path", path),
		zap.Int("categories", len(result.Snapshot.Categories)),
		zap.Int("failed_urls", len(result.Failures)),
	)
	return nil
}

func buildDriver(cfg config.Config) (fetch.PageDriver, func(), error) {
	switch cfg.Source.Driver {
	case config.DriverStatic:
		driver, err := fetch.NewCollyDriver(fetch.CollyConfig{
			UserAgent:       cfg.Source.UserAgent,
			RequestTimeout:  cfg.FetchTimeout(),
			HeadingSelector: cfg.Source.HeadingSelector,
			BlockSelector:   cfg.Source.BlockSelector,
		})
		if err != nil {
			return nil, nil, err
		}
		return driver, func() {}, nil
	default:
		driver, err := fetch.NewChromedpDriver(fetch.ChromedpConfig{
			UserAgent:       cfg.Source.UserAgent,
			HeadingSelector: cfg.Source.HeadingSelector,
			BlockSelector:   cfg.Source.BlockSelector,
		})
		if err != nil {
			return nil, nil, err
		}
		return driver, driver.Close, nil
	}
}

func buildEmitter(cfg config.Config, logger *zap.Logger) (*progress.Fanout, error) {
	sinkList := []progress.Sink{sinks.NewLogSink(logger)}
	if cfg.Metrics.Enabled {
		promSink, err := sinks.NewPrometheusSink(prometheus.DefaultRegisterer)
		if err != nil {
			return nil, fmt.Errorf("init metrics sink: %w", err)
		}
		sinkList = append(sinkList, promSink)
	}
	return progress.NewFanout(logger, sinkList...), nil
}
