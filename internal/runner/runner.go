// Package runner wires configuration, transport, engine and storage into
// the crawl and extract operations the command line and server expose.
package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/abraham-mv/huon-test/internal/classifier"
	"github.com/abraham-mv/huon-test/internal/config"
	"github.com/abraham-mv/huon-test/internal/crawler"
	"github.com/abraham-mv/huon-test/internal/ioformats"
	"github.com/abraham-mv/huon-test/internal/models"
	"github.com/abraham-mv/huon-test/internal/sites"
	"github.com/abraham-mv/huon-test/internal/traverse"
	"github.com/abraham-mv/huon-test/pkg/logger"
)

// ErrUnclassified means a saved page named no site and matched none.
var ErrUnclassified = errors.New("cannot determine site")

// Store persists crawl state and records.
type Store interface {
	crawler.Visited
	SaveRecord(ctx context.Context, rec models.Record) error
}

// CrawlRequest selects what one crawl covers. From and To apply to the date
// runtime; WindowDays splits that range.
type CrawlRequest struct {
	Site       string
	Runtime    traverse.Runtime
	From       time.Time
	To         time.Time
	WindowDays int
	PageStart  int
}

type Runner struct {
	cfg   *config.Config
	log   *logger.Logger
	store Store
	cl    *classifier.Classifier
	now   func() time.Time
}

// New builds a runner. store may be nil, in which case visited state lasts
// for one crawl and records are only emitted.
func New(cfg *config.Config, log *logger.Logger, store Store) *Runner {
	if log == nil {
		log = logger.NewNop()
	}
	return &Runner{cfg: cfg, log: log, store: store, cl: classifier.New(), now: time.Now}
}

func (r *Runner) site(id string) (sites.Site, config.Site, error) {
	sc, err := r.cfg.Site(id)
	if err != nil {
		return nil, config.Site{}, err
	}
	site, err := sites.New(id, sc.Options)
	if err != nil {
		return nil, config.Site{}, err
	}
	return site, sc, nil
}

// Crawl runs req to exhaustion, passing every record to emit and, when a
// store is configured, saving it.
func (r *Runner) Crawl(ctx context.Context, req CrawlRequest, emit crawler.Emit) (crawler.Stats, error) {
	site, sc, err := r.site(req.Site)
	if err != nil {
		return crawler.Stats{}, err
	}
	client := crawler.NewHTTPClient(crawler.ClientOptions{
		Timeout:             r.cfg.HTTP.Timeout,
		DialTimeout:         r.cfg.HTTP.DialTimeout,
		SizeCap:             r.cfg.HTTP.SizeCap,
		UserAgent:           r.cfg.HTTP.UserAgent,
		LegacyRenegotiation: sc.LegacyRenegotiation,
	})
	opts := []crawler.Option{
		crawler.WithLogger(r.log),
		crawler.WithConcurrency(r.cfg.Crawl.Concurrency),
	}
	if r.store != nil {
		opts = append(opts, crawler.WithVisited(r.store))
		next := emit
		emit = func(ctx context.Context, rec models.Record) error {
			if err := r.store.SaveRecord(ctx, rec); err != nil {
				return err
			}
			return next(ctx, rec)
		}
	}
	engine := crawler.NewEngine(client, opts...)
	r.log.Info("crawl started", "site", req.Site, "runtime", string(req.Runtime), "crawl_id", engine.CrawlID())

	if req.Runtime != traverse.RuntimeDate {
		return engine.Run(ctx, site, traverse.NewState(req.Runtime, req.PageStart, traverse.Calendar{}), emit)
	}

	windows := traverse.Windows(req.From, req.To, req.WindowDays)
	if len(windows) == 0 {
		return crawler.Stats{}, fmt.Errorf("empty date range %s to %s", req.From.Format(time.DateOnly), req.To.Format(time.DateOnly))
	}
	var total crawler.Stats
	st := traverse.NewState(req.Runtime, req.PageStart, windows[0])
	for i, w := range windows {
		if i > 0 {
			st.ResetWindow(w)
		}
		r.log.Debug("window", "from", w.From.Format(time.DateOnly), "to", w.To.Format(time.DateOnly))
		stats, err := engine.Run(ctx, site, st, emit)
		total = add(total, stats)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func add(a, b crawler.Stats) crawler.Stats {
	return crawler.Stats{
		Seeds:   a.Seeds + b.Seeds,
		Pages:   a.Pages + b.Pages,
		Records: a.Records + b.Records,
		Skipped: a.Skipped + b.Skipped,
		Failed:  a.Failed + b.Failed,
	}
}

// Extract builds a record from saved pages. A line without a site is
// classified from its first page; a single unlabeled page takes the
// classified terminal label.
func (r *Runner) Extract(line ioformats.BagLine) (models.Record, error) {
	if line.Site == "" || hasUnlabeled(line) {
		g, ok := r.classify(line)
		if !ok {
			return models.Record{}, ErrUnclassified
		}
		if line.Site == "" {
			line.Site = g.Site
		}
		if markup, ok := line.Pages[""]; ok {
			pages := map[string]string{g.Label: markup}
			for k, v := range line.Pages {
				if k != "" {
					pages[k] = v
				}
			}
			line.Pages = pages
		}
	}
	site, _, err := r.site(line.Site)
	if err != nil {
		return models.Record{}, err
	}
	return site.Extract(line.Bag(r.now().UTC(), "")), nil
}

func hasUnlabeled(line ioformats.BagLine) bool {
	_, ok := line.Pages[""]
	return ok
}

func (r *Runner) classify(line ioformats.BagLine) (classifier.Guess, bool) {
	for _, markup := range line.Pages {
		if g, ok := r.cl.Classify([]byte(markup)); ok {
			r.log.Debug("classified page", "site", g.Site, "label", g.Label)
			return g, true
		}
	}
	return classifier.Guess{}, false
}
