package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/psrec/psrec/internal/crawler"
	"github.com/psrec/psrec/internal/database"
	"github.com/psrec/psrec/internal/solvedac"
	"github.com/psrec/psrec/internal/tag"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var crawlFlags struct {
	pages       int
	perPage     int
	maxPage     int
	interval    time.Duration
	concurrency int
}

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Fetch problems and solve histories from solved.ac",
}

var crawlProblemsCmd = &cobra.Command{
	Use:   "problems",
	Short: "Store every problem with its tags",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCrawl(cmd, (*crawler.Crawler).CrawlProblems)
	},
}

var crawlUsersCmd = &cobra.Command{
	Use:   "users",
	Short: "Sample ranked users and store their solved problems",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCrawl(cmd, (*crawler.Crawler).CrawlUsers)
	},
}

func runCrawl(cmd *cobra.Command, run func(*crawler.Crawler, context.Context) (crawler.Result, error)) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	flags := cmd.Flags()
	if flags.Changed("pages") {
		cfg.CrawlPages = crawlFlags.pages
	}
	if flags.Changed("per-page") {
		cfg.CrawlPerPage = crawlFlags.perPage
	}
	if flags.Changed("max-page") {
		cfg.CrawlMaxPage = crawlFlags.maxPage
	}
	if flags.Changed("interval") {
		cfg.CrawlInterval = crawlFlags.interval
	}
	if flags.Changed("concurrency") {
		cfg.CrawlConcurrency = crawlFlags.concurrency
	}

	st, err := openStores(ctx, cfg, log, database.DefaultCLIOptions())
	if err != nil {
		return err
	}
	defer st.Close()
	if st.db == nil {
		log.Warn("crawl results are kept in memory only and discarded on exit")
	}

	api := solvedac.New(cfg.SolvedACBaseURL,
		solvedac.WithHTTPClient(&http.Client{Timeout: cfg.SolvedACTimeout}),
		solvedac.WithThrottle(solvedac.NewThrottle(cfg.CrawlInterval)))

	opts := crawler.DefaultOptions()
	opts.Concurrency = cfg.CrawlConcurrency
	opts.Pages = cfg.CrawlPages
	opts.PerPage = cfg.CrawlPerPage
	opts.MaxPage = cfg.CrawlMaxPage

	c := crawler.New(api, st.problems, tag.NewService(st.tags), log, crawler.NewReporter(log), opts)
	res, err := run(c, ctx)
	log.Info("crawl finished",
		zap.String("mode", cmd.Name()),
		zap.Int("handles", res.Handles),
		zap.Int("failed", res.Failed),
		zap.Int("problems", res.Problems),
		zap.Int("solves", res.Solves),
		zap.Int("tags", res.Tags))
	return err
}

func init() {
	f := crawlCmd.PersistentFlags()
	f.IntVar(&crawlFlags.pages, "pages", 5, "ranking pages to sample handles from")
	f.IntVar(&crawlFlags.perPage, "per-page", 5, "handles sampled per ranking page")
	f.IntVar(&crawlFlags.maxPage, "max-page", 249, "exclusive bound on solved-problem pages per handle")
	f.DurationVar(&crawlFlags.interval, "interval", 500*time.Millisecond, "minimum gap between solved.ac requests")
	f.IntVar(&crawlFlags.concurrency, "concurrency", 4, "handles crawled in parallel")

	crawlCmd.AddCommand(crawlProblemsCmd, crawlUsersCmd)
	rootCmd.AddCommand(crawlCmd)
}
