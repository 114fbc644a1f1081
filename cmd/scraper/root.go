package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/user/site-scraper/internal/config"
	"github.com/user/site-scraper/internal/domain"
	"github.com/user/site-scraper/internal/monitoring"
	"github.com/user/site-scraper/internal/output"
	"go.uber.org/zap"
)

// NewRootCmd creates the root command, which scrapes one site and writes
// its JSON artifacts.
func NewRootCmd() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "scraper --url <site>",
		Short: "Scrape a website's content into JSON artifacts",
		Long: `scraper crawls a site breadth-first from its root and extracts titles, headings,
meta tags, structured data, brand images and service areas.

In auto mode it first fetches plain HTML and only falls back to a headless
Chrome when the static pass finds no title, H1 or H2 on any page.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScrape(cmd, configFile)
		},
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is .env in the working directory)")
	config.RegisterCrawlFlags(cmd.PersistentFlags())
	cmd.Flags().StringP("url", "u", "", "root URL of the site to scrape (required)")

	cmd.AddCommand(NewServeCmd(&configFile))

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runScrape(cmd *cobra.Command, configFile string) error {
	cfg, err := config.Load(cmd.Flags(), configFile)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	mode, err := domain.ParseMode(cfg.Mode)
	if err != nil {
		return err
	}
	job, err := domain.NewJob(cfg.URL, mode, cfg.MaxPages, cfg.UserAgent)
	if err != nil {
		logger.Error("invalid job", zap.Error(err))
		return err
	}

	metrics := monitoring.NewMetrics(prometheus.NewRegistry())
	controller, err := buildController(cfg, logger, metrics)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := controller.Run(ctx, job)
	if err != nil {
		metrics.IncJobs(monitoring.JobFailed)
		logger.Error("scrape failed", zap.String("url", job.SourceURL), zap.Error(err))
		return err
	}

	if err := output.NewWriter(cfg.Output, logger).Write(result); err != nil {
		logger.Error("failed to write artifacts", zap.String("dir", cfg.Output), zap.Error(err))
		return err
	}
	metrics.IncJobs(monitoring.JobStatus(result.Success))

	fmt.Fprintf(cmd.OutOrStdout(), "Scraped %d pages, %d images, %d service areas using the %s tier (success=%t). Output: %s\n",
		len(result.Pages), len(result.Images), len(result.ServiceAreas), result.Tier, result.Success, cfg.Output)
	return nil
}
