package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/abraham-mv/huon-test/internal/crawler"
	"github.com/abraham-mv/huon-test/internal/ioformats"
	"github.com/abraham-mv/huon-test/internal/models"
	"github.com/abraham-mv/huon-test/internal/runner"
	"github.com/abraham-mv/huon-test/internal/sites"
	"github.com/abraham-mv/huon-test/internal/store"
	"github.com/abraham-mv/huon-test/internal/traverse"
	"github.com/abraham-mv/huon-test/pkg/logger"
)

type crawlFlags struct {
	site       string
	runtime    string
	from       string
	to         string
	windowDays int
	pageStart  int
	db         string
	output     string
}

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	var f crawlFlags
	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Crawl a registry and write its records as NDJSON",
		Long: fmt.Sprintf(`Crawl one registry until its runtime mode is exhausted.

Runtimes:
  date  posting date window, split by --window-days (fd, sk)
  hist  full history, newest listing first (ns, sk)
  idx   listing index paging (ns)

Known sites: %v`, sites.IDs()),
		Example: `  lobbyreg crawl --site fd --runtime date --from 2024-01-01 --to 2024-01-31
  lobbyreg crawl --site ns --runtime hist --db crawl.db --output ns.ndjson`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCrawl(cmd, f)
		},
	}

	cmd.Flags().StringVarP(&f.site, "site", "s", "", "Registry to crawl")
	cmd.Flags().StringVarP(&f.runtime, "runtime", "r", string(traverse.RuntimeDate), "Runtime mode: date, hist or idx")
	cmd.Flags().StringVar(&f.from, "from", "", "First posting date, YYYY-MM-DD (date runtime, default the registry's earliest)")
	cmd.Flags().StringVar(&f.to, "to", "", "Last posting date, YYYY-MM-DD (date runtime, default today)")
	cmd.Flags().IntVar(&f.windowDays, "window-days", 0, "Split the date range into windows of this many days")
	cmd.Flags().IntVar(&f.pageStart, "page-start", 1, "First listing page to request")
	cmd.Flags().StringVar(&f.db, "db", "", "SQLite file for visited state and records")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "Output NDJSON file (default stdout)")
	_ = cmd.MarkFlagRequired("site")

	return cmd
}

func (f crawlFlags) request(now time.Time) (runner.CrawlRequest, error) {
	if !sites.Known(f.site) {
		return runner.CrawlRequest{}, fmt.Errorf("%w: %q (known: %v)", sites.ErrUnknownSite, f.site, sites.IDs())
	}
	rt, err := traverse.ParseRuntime(f.runtime)
	if err != nil {
		return runner.CrawlRequest{}, err
	}
	req := runner.CrawlRequest{Site: f.site, Runtime: rt, WindowDays: f.windowDays, PageStart: f.pageStart}
	if rt != traverse.RuntimeDate {
		return req, nil
	}
	earliest, _ := sites.EarliestDate(f.site)
	switch {
	case f.from != "":
		if req.From, err = time.Parse(time.DateOnly, f.from); err != nil {
			return runner.CrawlRequest{}, fmt.Errorf("invalid --from: %w", err)
		}
		if req.From.Before(earliest) {
			req.From = earliest
		}
	case earliest.IsZero():
		return runner.CrawlRequest{}, errors.New("--from is required for the date runtime")
	default:
		req.From = earliest
	}
	req.To = now.UTC()
	if f.to != "" {
		if req.To, err = time.Parse(time.DateOnly, f.to); err != nil {
			return runner.CrawlRequest{}, fmt.Errorf("invalid --to: %w", err)
		}
	}
	return req, nil
}

func runCrawl(cmd *cobra.Command, f crawlFlags) error {
	req, err := f.request(time.Now())
	if err != nil {
		return err
	}
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var st runner.Store
	if f.db != "" {
		db, err := store.Open(f.db)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer db.Close()
		st = db
	}

	w, closeOut, err := openOutput(cmd, f.output)
	if err != nil {
		return fmt.Errorf("open output: %w", err)
	}
	defer func() { _ = closeOut() }()
	out := ioformats.NewRecordWriter(w)

	stats, err := runner.New(cfg, log, st).Crawl(ctx, req, func(_ context.Context, rec models.Record) error {
		return out.Write(rec)
	})
	logStats(log, stats)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Warn("crawl interrupted")
		}
		return fmt.Errorf("crawl %s: %w", req.Site, err)
	}
	return closeOut()
}

func logStats(log *logger.Logger, s crawler.Stats) {
	log.Info("crawl finished",
		"seeds", s.Seeds,
		"pages", s.Pages,
		"records", s.Records,
		"skipped", s.Skipped,
		"failed", s.Failed,
	)
}
