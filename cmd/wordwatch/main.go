package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-shiori/go-readability"

	"wordwatch/pkg/config"
	"wordwatch/pkg/extract"
	"wordwatch/pkg/lookup"
	"wordwatch/pkg/pipeline"
	"wordwatch/pkg/source"
	"wordwatch/pkg/stats"
	"wordwatch/pkg/store"
	"wordwatch/pkg/verify"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	dbFlag := flag.String("db", cfg.DBPath, "Path to SQLite database")
	watchFlag := flag.String("watch", "", "File to watch for text changes")
	urlFlag := flag.String("url", "", "URL to fetch and ingest once")
	exportFlag := flag.Bool("export", false, "Print the word list and exit")
	starredFlag := flag.Bool("starred", false, "Restrict -export to starred words")
	listFlag := flag.Bool("list", false, "Print all records and exit")
	searchFlag := flag.String("search", "", "Print records matching the query and exit")
	statsFlag := flag.Bool("stats", false, "Print hourly statistics and exit")
	starFlag := flag.String("star", "", "Word to set the star rank for")
	rankFlag := flag.Int("rank", 0, "Star rank for -star (0-5)")
	removeFlag := flag.String("remove", "", "Word to delete")
	resetFlag := flag.Bool("reset", false, "Delete every stored word")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	st, err := store.Open(*dbFlag)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer st.Close()

	switch {
	case *exportFlag:
		text, err := st.ExportList(ctx, *starredFlag)
		if err != nil {
			log.Fatalf("Failed to export: %v", err)
		}
		fmt.Println(text)
		return

	case *listFlag, *searchFlag != "":
		records, err := st.Search(ctx, *searchFlag)
		if err != nil {
			log.Fatalf("Failed to list words: %v", err)
		}
		for _, rec := range records {
			fmt.Printf("%-20s count=%-4d stars=%d last seen %s\n",
				rec.Text, rec.Count, rec.Stars, rec.UpdatedAt.Format("2006-01-02 15:04"))
		}
		return

	case *statsFlag:
		printStats(ctx, st, cfg.WindowHours)
		return

	case *starFlag != "":
		if err := st.SetStars(ctx, *starFlag, *rankFlag); err != nil {
			log.Fatalf("Failed to set stars: %v", err)
		}
		return

	case *removeFlag != "":
		if err := st.Remove(ctx, *removeFlag); err != nil {
			log.Fatalf("Failed to remove word: %v", err)
		}
		return

	case *resetFlag:
		if err := st.RemoveAll(ctx); err != nil {
			log.Fatalf("Failed to reset store: %v", err)
		}
		return
	}

	p := buildPipeline(cfg, st, logger)

	if *urlFlag != "" {
		text, err := fetchArticle(ctx, *urlFlag)
		if err != nil {
			log.Fatalf("Failed to fetch article: %v", err)
		}
		if err := p.Process(ctx, text); err != nil {
			log.Fatalf("Ingestion failed: %v", err)
		}
		total, err := st.Count(ctx)
		if err != nil {
			log.Fatalf("Failed to count words: %v", err)
		}
		fmt.Printf("Processing complete. Store now holds %d words.\n", total)
		return
	}

	// Watch mode: collect continuously, report statistics periodically.
	var src source.Source
	if *watchFlag != "" {
		src = &source.FileSource{Path: *watchFlag, Interval: cfg.PollInterval, Logger: logger}
		logger.Info("watching file", "path", *watchFlag, "interval", cfg.PollInterval)
	} else {
		src = source.NewStdin()
		logger.Info("reading text from stdin")
	}

	agg := stats.New(st)
	agg.Logger = logger
	go func() {
		for buckets := range agg.Watch(ctx, cfg.StatsInterval, cfg.WindowHours) {
			total := 0
			for _, b := range buckets {
				total += b.Count
			}
			logger.Info("rolling window", "hours", cfg.WindowHours, "updates", total)
		}
	}()
	go func() {
		for ev := range p.Events() {
			if len(ev.Stored) > 0 {
				logger.Info("stored words", "words", ev.Stored)
			}
		}
	}()

	if err := p.Run(ctx, src); err != nil && ctx.Err() == nil {
		log.Fatalf("Pipeline stopped: %v", err)
	}
}

func buildPipeline(cfg config.Config, st *store.Store, logger *slog.Logger) *pipeline.Pipeline {
	analyzer, err := extract.NewEnglishAnalyzer()
	if err != nil {
		log.Fatalf("Failed to load analyzer: %v", err)
	}
	ex := extract.New(analyzer)
	ex.MaxTextLen = cfg.MaxTextLen
	ex.Logger = logger

	httpLookup := lookup.NewHTTPLookup()
	if cfg.LookupURL != "" {
		httpLookup.BaseURL = cfg.LookupURL
	}
	cached, err := lookup.NewCached(httpLookup, cfg.LookupCacheSize)
	if err != nil {
		log.Fatalf("Failed to build lookup cache: %v", err)
	}

	v := verify.New(cached)
	v.Workers = cfg.LookupWorkers
	v.Timeout = cfg.LookupTimeout
	v.Logger = logger

	p := pipeline.New(ex, v, st)
	p.Logger = logger
	return p
}

func printStats(ctx context.Context, st *store.Store, windowHours int) {
	agg := stats.New(st)
	buckets, err := agg.HourlyBuckets(ctx, windowHours, time.Now())
	if err != nil {
		log.Fatalf("Failed to compute statistics: %v", err)
	}
	for _, b := range buckets {
		fmt.Printf("%s  %d\n", b.HourStart.Format("2006-01-02 15:00"), b.Count)
	}
	total, err := st.Count(ctx)
	if err != nil {
		log.Fatalf("Failed to count words: %v", err)
	}
	if first, ok, err := st.OldestCreatedAt(ctx); err == nil && ok {
		fmt.Printf("%d words collected since %s\n", total, first.Format("2006-01-02"))
	} else {
		fmt.Printf("%d words collected\n", total)
	}
}

const maxBodySize = 10 * 1024 * 1024 // 10 MB limit for HTML content

// fetchArticle downloads a page and extracts its readable text.
func fetchArticle(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	// Some hosts refuse requests without a browser user agent.
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", err
	}
	if len(body) >= maxBodySize {
		return "", fmt.Errorf("response body exceeded %d bytes", maxBodySize)
	}

	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		return "", err
	}
	article, err := readability.FromReader(bytes.NewReader(body), parsedURL)
	if err != nil {
		return "", err
	}
	return article.TextContent, nil
}
