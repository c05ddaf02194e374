package main

import (
	"context"
	"flag"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"cinescout/internal/config"
	"cinescout/internal/fetch"
	"cinescout/internal/imdb"
	"cinescout/internal/monitoring"
	"cinescout/internal/pathe"
	"cinescout/internal/pipeline"
	"cinescout/internal/report"
	"cinescout/internal/translate"
)

func main() {
	configPath := flag.String("config", "", "config file (default .env)")
	flag.Parse()

	// Initialize structured logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("could not load config", zap.Error(err))
	}

	metrics := monitoring.NewMetrics()
	if cfg.MetricsAddr != "" {
		// One-shot job, but long enough that a scrape endpoint is useful.
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				logger.Warn("metrics listener stopped", zap.Error(err))
			}
		}()
	}

	translator := translate.New(language.Dutch, language.English, logger)

	siteFetcher := fetch.NewClient(fetch.Options{
		Timeout:    time.Duration(cfg.HTTPTimeout) * time.Second,
		MaxRetries: cfg.MaxRetries,
		Backoff:    time.Duration(cfg.RetryBackoffMS) * time.Millisecond,
	}, logger)
	imdbFetcher := fetch.NewClient(fetch.Options{
		Timeout:    time.Duration(cfg.HTTPTimeout) * time.Second,
		MaxRetries: cfg.MaxRetries,
		Backoff:    time.Duration(cfg.RetryBackoffMS) * time.Millisecond,
		Headers:    map[string]string{"Accept-Language": "en-US,en"},
	}, logger)

	site := pathe.NewClient(cfg.PatheBaseURL, siteFetcher)
	rater := imdb.NewClient(cfg.IMDBBaseURL, imdbFetcher, translator, logger)

	p := pipeline.New(pipeline.Config{
		ListingWorkers:  cfg.ListingWorkers,
		DetailWorkers:   cfg.DetailWorkers,
		RatingThreshold: cfg.RatingThreshold,
	}, site, rater, translator, metrics, logger, time.Now())

	records, err := p.Run(context.Background())
	if err != nil {
		logger.Fatal("crawl failed", zap.Error(err))
	}

	if len(records) == 0 {
		logger.Info("no movies above the threshold, nothing to report")
		return
	}
	if !cfg.MailConfigured() {
		logger.Info("mail not configured, printing report")
		for _, r := range records {
			logger.Info("result",
				zap.Float64("rating", r.Rating),
				zap.String("movie", r.MovieURL),
				zap.String("imdb", r.RatingURL))
		}
		return
	}
	if err := report.Send(report.Options{
		From:     cfg.MailFrom,
		To:       cfg.MailTo,
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
	}, records); err != nil {
		logger.Fatal("could not send report", zap.Error(err))
	}
	logger.Info("report sent", zap.Int("records", len(records)), zap.String("to", cfg.MailTo))
}
