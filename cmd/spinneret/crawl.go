package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spinneret/spinneret/internal/client"
	"github.com/spinneret/spinneret/internal/config"
	"github.com/spinneret/spinneret/internal/crawl"
	"github.com/spinneret/spinneret/internal/logging"
	"github.com/spinneret/spinneret/internal/server"
	"github.com/spinneret/spinneret/internal/spider"
)

var crawlCmd = &cobra.Command{
	Use:   "crawl [seed-url ...]",
	Short: "Crawl from the given seed URLs",
	Long: `Crawl starts a worker pool over the seed URLs given as arguments
plus any configured under crawler.seeds. The run ends when the queue
drains or on SIGINT/SIGTERM, which aborts outstanding work.`,
	RunE: runCrawl,
}

func runCrawl(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	seeds := append(append([]string{}, cfg.Crawler.Seeds...), args...)
	if len(seeds) == 0 {
		return fmt.Errorf("no seed URLs: pass them as arguments or set crawler.seeds")
	}

	cli, err := client.New(client.Config{
		WorkingDir:   cfg.Crawler.WorkingDir,
		UserAgent:    cfg.Crawler.UserAgent,
		RequestDelay: cfg.RequestDelay(),
		Timeout:      cfg.HTTPTimeout(),
	}, logger)
	if err != nil {
		return fmt.Errorf("build client: %w", err)
	}

	c := crawl.New(crawl.Config{
		Workers: cfg.Crawler.Workers,
		Client:  cli,
		Logger:  logger,
	})

	c.Filter(crawl.SchemeFilter())
	if len(cfg.Crawler.AllowedHosts) > 0 {
		c.Filter(crawl.AllowHosts(cfg.Crawler.AllowedHosts...))
	}
	c.Filter(crawl.NewSeenFilter())

	if err := c.Handle(`.*`, 0, spider.NewLinkHandler(logger)); err != nil {
		return fmt.Errorf("register link handler: %w", err)
	}

	if cfg.Ops.Enabled {
		ops := server.New(cfg.Ops.Addr, c, logger)
		ops.Start()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := ops.Shutdown(ctx); err != nil {
				logger.Warn("ops server shutdown", zap.Error(err))
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting crawl",
		zap.Int("workers", cfg.Crawler.Workers),
		zap.Strings("seeds", seeds),
	)

	status := c.Start(ctx, seeds...)

	stats := c.Stats()
	logger.Info("crawl finished",
		zap.String("status", status.String()),
		zap.Int("processed", stats.Processed),
		zap.Int("errors", stats.Errors),
	)
	for _, te := range c.Errors() {
		logger.Warn("task failed", zap.String("url", te.URL), zap.Error(te.Err))
	}

	if status.ExitCode() != 0 {
		return fmt.Errorf("crawl %s", status)
	}
	return nil
}
