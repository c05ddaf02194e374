// Package pipeline drives the two-stage crawl: listing workers discover
// detail-page URLs, detail workers extract and filter movies.
package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"cinescout/internal/domain"
	"cinescout/internal/fetch"
	"cinescout/internal/imdb"
	"cinescout/internal/monitoring"
	"cinescout/internal/pathe"
)

// Config sizes the pools and sets the filter threshold. Listing pages are
// few and detail pages are many, so the pools are sized independently.
type Config struct {
	ListingWorkers  int
	DetailWorkers   int
	RatingThreshold float64
}

// Pipeline wires the worker pools, queues and result sink.
type Pipeline struct {
	cfg        Config
	site       *pathe.Client
	imdb       *imdb.Client
	translator pathe.Translator
	metrics    *monitoring.Metrics
	logger     *zap.Logger
	today      time.Time
}

// New builds a pipeline. today is injected so the whole run normalizes
// dates against one fixed calendar day.
func New(cfg Config, site *pathe.Client, rater *imdb.Client, tr pathe.Translator, m *monitoring.Metrics, logger *zap.Logger, today time.Time) *Pipeline {
	if cfg.ListingWorkers <= 0 {
		cfg.ListingWorkers = 1
	}
	if cfg.DetailWorkers <= 0 {
		cfg.DetailWorkers = 1
	}
	return &Pipeline{
		cfg:        cfg,
		site:       site,
		imdb:       rater,
		translator: tr,
		metrics:    m,
		logger:     logger,
		today:      today,
	}
}

// Run executes one crawl and returns the qualifying records. Individual
// page failures are skipped with a diagnostic; only the preliminary
// pagination fetch is fatal, since without it there is nothing to seed.
func (p *Pipeline) Run(ctx context.Context) ([]domain.ResultRecord, error) {
	doc, err := p.site.FetchDocument(ctx, p.site.ListingURL(1))
	if err != nil {
		return nil, err
	}
	pages, err := pathe.PageCount(doc)
	if err != nil {
		return nil, err
	}
	p.logger.Info("seeding listing pages", zap.Int("pages", pages))

	listingQ := NewQueue[domain.ListingPage]()
	detailQ := NewQueue[string]()
	results := NewResults()

	for page := 1; page <= pages; page++ {
		listingQ.Push(domain.ListingPage{Number: page, URL: p.site.ListingURL(page)})
	}

	var listingWG, detailWG sync.WaitGroup
	for i := 0; i < p.cfg.ListingWorkers; i++ {
		listingWG.Add(1)
		go func() {
			defer listingWG.Done()
			p.listingWorker(ctx, listingQ, detailQ)
		}()
	}
	for i := 0; i < p.cfg.DetailWorkers; i++ {
		detailWG.Add(1)
		go func() {
			defer detailWG.Done()
			p.detailWorker(ctx, detailQ, results)
		}()
	}

	// Two-phase shutdown: drain the listing stage completely before its
	// workers stop, so every detail URL a late listing worker discovers
	// still reaches the (still running) detail workers. Then the same for
	// the detail stage.
	listingQ.Join()
	for i := 0; i < p.cfg.ListingWorkers; i++ {
		listingQ.PushStop()
	}
	listingWG.Wait()

	detailQ.Join()
	for i := 0; i < p.cfg.DetailWorkers; i++ {
		detailQ.PushStop()
	}
	detailWG.Wait()

	p.logger.Info("crawl finished", zap.Int("records", len(results.List())))
	return results.List(), nil
}

func (p *Pipeline) listingWorker(ctx context.Context, listingQ *Queue[domain.ListingPage], detailQ *Queue[string]) {
	for {
		page, ok := listingQ.Pop()
		if !ok {
			return
		}
		p.processListing(ctx, page, detailQ)
		listingQ.Done()
	}
}

func (p *Pipeline) processListing(ctx context.Context, page domain.ListingPage, detailQ *Queue[string]) {
	doc, err := p.site.FetchDocument(ctx, page.URL)
	if err != nil {
		p.logger.Warn("skipping listing page",
			zap.Int("page", page.Number), zap.String("url", page.URL), zap.Error(err))
		p.metrics.IncErrorsTotal("listing_fetch_failed")
		return
	}
	p.metrics.IncPagesFetched("listing")

	for _, candidate := range pathe.ParseCandidates(doc, p.site.BaseURL()) {
		if !pathe.StatusAllowed(candidate.Status) {
			p.logger.Debug("candidate filtered by status",
				zap.String("url", candidate.URL), zap.String("status", candidate.Status))
			continue
		}
		if pathe.Excluded(candidate.URL) {
			p.logger.Info("candidate on deny-list", zap.String("url", candidate.URL))
			continue
		}
		detailQ.Push(candidate.URL)
	}
}

func (p *Pipeline) detailWorker(ctx context.Context, detailQ *Queue[string], results *Results) {
	for {
		url, ok := detailQ.Pop()
		if !ok {
			return
		}
		p.processDetail(ctx, url, results)
		detailQ.Done()
	}
}

func (p *Pipeline) processDetail(ctx context.Context, url string, results *Results) {
	doc, err := p.site.FetchDocument(ctx, url)
	if err != nil {
		p.logger.Warn("skipping detail page", zap.String("url", url), zap.Error(err))
		p.metrics.IncErrorsTotal("detail_fetch_failed")
		return
	}
	p.metrics.IncPagesFetched("detail")

	// Special statuses (opera broadcasts etc.) are exempt from rating
	// filtering; check first so we do no further work for them.
	if special := pathe.ExtractSpecial(doc); domain.IsSkipSpecial(special) {
		p.logger.Debug("skipping special movie",
			zap.String("url", url), zap.String("special", special))
		p.metrics.IncSkipped("special")
		return
	}

	title := pathe.ExtractTitle(doc)
	if title == "" {
		p.logger.Warn("detail page without a title", zap.String("url", url))
		p.metrics.IncErrorsTotal("detail_parse_failed")
		return
	}

	rating, err := p.imdb.Resolve(ctx, imdb.ByTitle(title))
	if err != nil {
		switch {
		case errors.Is(err, imdb.ErrNotFound):
			p.logger.Debug("title not on imdb", zap.String("title", title))
			p.metrics.IncSkipped("not_found")
		case fetch.IsTransportError(err):
			p.logger.Warn("imdb lookup failed", zap.String("title", title), zap.Error(err))
			p.metrics.IncErrorsTotal("imdb_fetch_failed")
		default:
			p.logger.Warn("imdb result unusable", zap.String("title", title), zap.Error(err))
			p.metrics.IncErrorsTotal("imdb_parse_failed")
		}
		return
	}
	if !rating.HasRating || rating.Rating <= p.cfg.RatingThreshold {
		p.metrics.IncSkipped("below_threshold")
		return
	}

	// The movie qualifies; pull the full record for the log trail. A
	// malformed sidebar only costs us the enrichment, not the record.
	detail, derr := pathe.ParseDetail(ctx, doc, p.translator)
	if derr != nil {
		p.logger.Warn("qualifying movie has malformed detail markup",
			zap.String("url", url), zap.Error(derr))
		p.metrics.IncErrorsTotal("detail_parse_failed")
		detail = domain.MovieDetail{Title: title}
	}
	showtimes := pathe.ParseAllShowtimes(doc, p.today, p.logger)
	shows := 0
	for _, sts := range showtimes {
		shows += len(sts)
	}

	p.logger.Info("movie qualifies",
		zap.String("title", detail.Title),
		zap.Float64("imdb_rating", rating.Rating),
		zap.Strings("genres", detail.Genres),
		zap.Int("cinemas", len(showtimes)),
		zap.Int("showtimes", shows),
		zap.String("url", url))
	p.metrics.IncRecordsTotal()

	results.Append(domain.ResultRecord{
		MovieURL:  url,
		RatingURL: p.imdb.TitleURL(rating.ID),
		Rating:    rating.Rating,
	})
}
