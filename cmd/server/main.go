package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/abraham-mv/huon-test/internal/classifier"
	"github.com/abraham-mv/huon-test/internal/config"
	"github.com/abraham-mv/huon-test/internal/crawler"
	"github.com/abraham-mv/huon-test/internal/ioformats"
	"github.com/abraham-mv/huon-test/internal/models"
	"github.com/abraham-mv/huon-test/internal/runner"
	"github.com/abraham-mv/huon-test/internal/sites"
	"github.com/abraham-mv/huon-test/internal/store"
	"github.com/abraham-mv/huon-test/internal/traverse"
	"github.com/abraham-mv/huon-test/pkg/logger"
)

type crawlReq struct {
	Site       string `json:"site"`
	Runtime    string `json:"runtime"`
	From       string `json:"from"`
	To         string `json:"to"`
	WindowDays int    `json:"window_days"`
	PageStart  int    `json:"page_start"`
}

// recordLister reads back records saved by earlier crawls.
type recordLister interface {
	Records(ctx context.Context, site string) ([]models.Record, error)
}

type crawlResp struct {
	Stats   crawler.Stats   `json:"stats"`
	Records []models.Record `json:"records"`
	Error   string          `json:"error,omitempty"`
}

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	cfgPath := flag.String("config", "", "YAML config file overlaying the built-in defaults")
	dbPath := flag.String("db", "", "SQLite file for visited state and records")
	flag.Parse()

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	l, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "create logger:", err)
		os.Exit(2)
	}
	defer func() { _ = l.Sync() }()

	var (
		st   runner.Store
		recs recordLister
	)
	if *dbPath != "" {
		db, err := store.Open(*dbPath)
		if err != nil {
			l.Errorf("open store: %v", err)
			os.Exit(1)
		}
		defer db.Close()
		st, recs = db, db
	}

	srv := &http.Server{
		Addr:         *addr,
		Handler:      logRequest(l, newMux(runner.New(cfg, l, st), recs, l)),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		l.Infof("server listening on %s", *addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			l.Errorf("server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	l.Infof("shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	l.Infof("bye")
}

func loadConfig(path string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.Default()
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newMux builds the routes. recs may be nil when no store is configured.
func newMux(r *runner.Runner, recs recordLister, l *logger.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	classifiable := classifier.New().Sites()

	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":       "ok",
			"sites":        sites.IDs(),
			"classifiable": classifiable,
			"store":        recs != nil,
		})
	})

	// GET /records?site=ns
	mux.HandleFunc("/records", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
			return
		}
		if recs == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "no record store configured"})
			return
		}
		site := req.URL.Query().Get("site")
		if site != "" && !sites.Known(site) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("%v: %q", sites.ErrUnknownSite, site)})
			return
		}
		out, err := recs.Records(req.Context(), site)
		if err != nil {
			l.Error("list records failed", "site", site, "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		if out == nil {
			out = []models.Record{}
		}
		writeJSON(w, http.StatusOK, out)
	})

	// POST /extract  { "site": "fd", "rid": "...", "pages": {"regpage": "<html>..."} }
	mux.HandleFunc("/extract", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
			return
		}
		var line ioformats.BagLine
		if err := json.NewDecoder(req.Body).Decode(&line); err != nil || len(line.Pages) == 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
			return
		}
		rec, err := r.Extract(line)
		switch {
		case errors.Is(err, sites.ErrUnknownSite):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		case errors.Is(err, runner.ErrUnclassified):
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		case err != nil:
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		default:
			writeJSON(w, http.StatusOK, rec)
		}
	})

	// POST /crawl  { "site": "fd", "runtime": "date", "from": "2024-01-01", "to": "2024-01-07" }
	mux.HandleFunc("/crawl", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
			return
		}
		var body crawlReq
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
			return
		}
		cr, err := body.request()
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}

		recs := []models.Record{}
		stats, err := r.Crawl(req.Context(), cr, func(_ context.Context, rec models.Record) error {
			recs = append(recs, rec)
			return nil
		})
		resp := crawlResp{Stats: stats, Records: recs}
		if err != nil {
			l.Warn("crawl failed", "site", cr.Site, "error", err)
			resp.Error = err.Error()
			writeJSON(w, http.StatusBadGateway, resp)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	})

	return mux
}

func (c crawlReq) request() (runner.CrawlRequest, error) {
	if !sites.Known(c.Site) {
		return runner.CrawlRequest{}, fmt.Errorf("%w: %q", sites.ErrUnknownSite, c.Site)
	}
	if c.Runtime == "" {
		c.Runtime = string(traverse.RuntimeDate)
	}
	rt, err := traverse.ParseRuntime(c.Runtime)
	if err != nil {
		return runner.CrawlRequest{}, err
	}
	out := runner.CrawlRequest{Site: c.Site, Runtime: rt, WindowDays: c.WindowDays, PageStart: c.PageStart}
	if rt != traverse.RuntimeDate {
		return out, nil
	}
	earliest, _ := sites.EarliestDate(c.Site)
	if c.From == "" && !earliest.IsZero() {
		out.From = earliest
	} else if out.From, err = time.Parse(time.DateOnly, c.From); err != nil {
		return runner.CrawlRequest{}, fmt.Errorf("invalid from: %w", err)
	}
	if out.From.Before(earliest) {
		out.From = earliest
	}
	if out.To, err = time.Parse(time.DateOnly, c.To); err != nil {
		return runner.CrawlRequest{}, fmt.Errorf("invalid to: %w", err)
	}
	return out, nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func logRequest(l *logger.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		l.Infof("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}
