package crawler

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/abraham-mv/huon-test/internal/models"
	"github.com/abraham-mv/huon-test/internal/parser"
	"github.com/abraham-mv/huon-test/internal/sites"
	"github.com/abraham-mv/huon-test/internal/traverse"
	"github.com/abraham-mv/huon-test/pkg/logger"
)

const DefaultConcurrency = 4

// Fetcher executes one request template.
type Fetcher interface {
	Do(ctx context.Context, r models.Request) (*Response, error)
}

// Visited remembers detail requests already crawled, so a repeated crawl
// skips them.
type Visited interface {
	Seen(ctx context.Context, key string) (bool, error)
	MarkSeen(ctx context.Context, key string) error
}

// Emit receives each extracted record. The engine never calls it
// concurrently.
type Emit func(ctx context.Context, rec models.Record) error

// Stats counts what one Run did.
type Stats struct {
	Seeds   int
	Pages   int64
	Records int64
	Skipped int64
	Failed  int64
}

type Engine struct {
	fetcher     Fetcher
	log         *logger.Logger
	visited     Visited
	concurrency int
	crawlID     string
	parser      *parser.Parser
	now         func() time.Time

	emitMu sync.Mutex
}

type Option func(*Engine)

func WithLogger(l *logger.Logger) Option { return func(e *Engine) { e.log = l } }

func WithVisited(v Visited) Option { return func(e *Engine) { e.visited = v } }

func WithConcurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

func WithCrawlID(id string) Option { return func(e *Engine) { e.crawlID = id } }

func withClock(now func() time.Time) Option { return func(e *Engine) { e.now = now } }

func NewEngine(f Fetcher, opts ...Option) *Engine {
	e := &Engine{
		fetcher:     f,
		log:         logger.NewNop(),
		visited:     NewMemoryVisited(),
		concurrency: DefaultConcurrency,
		crawlID:     uuid.NewString(),
		parser:      parser.New(),
		now:         time.Now,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// CrawlID identifies the pages and records of this engine's crawls.
func (e *Engine) CrawlID() string { return e.crawlID }

// fatal reports whether err means the site and the page disagree, which
// aborts the crawl instead of skipping one record.
func fatal(err error) bool {
	return errors.Is(err, traverse.ErrUnrecognizedLabel) ||
		errors.Is(err, traverse.ErrNoDetailLink) ||
		errors.Is(err, traverse.ErrUnsupportedRuntime) ||
		errors.Is(err, traverse.ErrMalformedPage) ||
		errors.Is(err, traverse.ErrMissingTemplate) ||
		errors.Is(err, context.Canceled)
}

// Run seeds site until its runtime mode is exhausted. Each listing is
// sectioned on the calling goroutine; its result rows are walked
// concurrently, and every terminal page yields one record built from the
// pages on its path.
func (e *Engine) Run(ctx context.Context, site sites.Site, st *traverse.State, emit Emit) (Stats, error) {
	var stats Stats
	log := e.log.With("site", site.ID(), "runtime", string(st.Runtime), "crawl_id", e.crawlID)

	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		edge, err := site.Seed(st)
		if err != nil {
			log.Error("seed failed", "error", err)
			return stats, err
		}
		if edge == nil {
			log.Info("runtime exhausted", "seeds", stats.Seeds, "records", stats.Records)
			return stats, nil
		}
		stats.Seeds++
		log.Debug("seed issued", "page", st.Indexer.Page, "url", edge.Req.URL)

		listing, err := e.fetch(ctx, *edge)
		if err != nil {
			return stats, fmt.Errorf("fetch listing page %d: %w", st.Indexer.Page, err)
		}
		atomic.AddInt64(&stats.Pages, 1)
		secs, err := site.Sections(listing, st)
		if err != nil {
			log.Error("sectioning listing failed", "error", err)
			return stats, err
		}
		st.Advance(site.PageSize())
		log.Info("listing sectioned", "rows", len(secs), "total", st.Total)

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(e.concurrency)
		for _, sec := range secs {
			g.Go(func() error {
				scratch := &traverse.State{Runtime: st.Runtime}
				return e.walk(gctx, site, scratch, sec, edge.ParentRID, edge.ParentRDate, nil, emit, &stats, log)
			})
		}
		if err := g.Wait(); err != nil {
			return stats, err
		}
	}
}

// walk parses page and follows its edges depth first. chain holds the
// ancestors of page below the listing.
func (e *Engine) walk(
	ctx context.Context,
	site sites.Site,
	st *traverse.State,
	page models.Page,
	parentRID string,
	parentRDate time.Time,
	chain []models.Page,
	emit Emit,
	stats *Stats,
	log *logger.Logger,
) error {
	rid, rdate, edges, err := site.Parse(page, parentRID, parentRDate)
	if err != nil {
		log.Error("parse failed", "label", page.Label, "error", err)
		return err
	}
	page.RID, page.RDate = rid, rdate
	chain = append(slices.Clone(chain), page)

	if len(edges) == 0 {
		rec := site.Extract(models.NewBag(rid, rdate, chain...))
		e.emitMu.Lock()
		defer e.emitMu.Unlock()
		if err := emit(ctx, rec); err != nil {
			return fmt.Errorf("emit %s: %w", rid, err)
		}
		atomic.AddInt64(&stats.Records, 1)
		log.Debug("record emitted", "rid", rid)
		return nil
	}

	for _, edge := range edges {
		key := visitKey(site.ID(), edge.Req)
		seen, err := e.visited.Seen(ctx, key)
		if err != nil {
			return fmt.Errorf("visited lookup: %w", err)
		}
		if seen {
			atomic.AddInt64(&stats.Skipped, 1)
			log.Debug("already crawled", "rid", edge.ParentRID, "url", edge.Req.URL)
			continue
		}

		child, err := e.fetch(ctx, edge)
		if err != nil {
			if fatal(err) {
				return err
			}
			atomic.AddInt64(&stats.Failed, 1)
			log.Warn("detail fetch failed", "rid", edge.ParentRID, "url", edge.Req.URL, "error", err)
			continue
		}
		atomic.AddInt64(&stats.Pages, 1)

		subs, err := site.Sections(child, st)
		if err != nil {
			log.Error("sectioning failed", "label", child.Label, "error", err)
			return err
		}
		for _, sub := range subs {
			if err := e.walk(ctx, site, st, sub, edge.ParentRID, edge.ParentRDate, chain, emit, stats, log); err != nil {
				return err
			}
		}
		if err := e.visited.MarkSeen(ctx, key); err != nil {
			return fmt.Errorf("mark visited: %w", err)
		}
	}
	return nil
}

func (e *Engine) fetch(ctx context.Context, edge models.Edge) (models.Page, error) {
	resp, err := e.fetcher.Do(ctx, edge.Req)
	if err != nil {
		return models.Page{}, err
	}
	if s := e.parser.Summarize(resp.Body); s.Title != "" {
		e.log.Debug("fetched", "label", edge.Label, "title", s.Title, "links", s.Links, "elapsed", resp.Elapsed)
	}
	return models.Page{
		Label:     edge.Label,
		Content:   resp.Body,
		URL:       resp.URL,
		RID:       edge.ParentRID,
		RDate:     edge.ParentRDate,
		Retrieved: e.now().UTC(),
		CrawlID:   e.crawlID,
	}, nil
}

// visitKey identifies a request by site, method and URL. Bodies are not
// part of the key; detail requests are plain GETs.
func visitKey(site string, r models.Request) string {
	method := r.Method
	if method == "" {
		method = "GET"
	}
	return site + " " + method + " " + r.URL
}

// MemoryVisited is a Visited that lasts for the life of the process.
type MemoryVisited struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func NewMemoryVisited() *MemoryVisited {
	return &MemoryVisited{seen: map[string]struct{}{}}
}

func (m *MemoryVisited) Seen(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.seen[key]
	return ok, nil
}

func (m *MemoryVisited) MarkSeen(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seen[key] = struct{}{}
	return nil
}
