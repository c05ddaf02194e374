package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"cinescout/internal/domain"
	"cinescout/internal/fetch"
	"cinescout/internal/imdb"
	"cinescout/internal/monitoring"
	"cinescout/internal/pathe"
	"cinescout/internal/translate"
)

const listingPage1 = `<html><body>
<section class="poster-carousel">
	<div class="poster"><a href="/film/101/great-film"></a><span class="poster-status">Nu te zien</span></div>
	<div class="poster"><a href="/film/103/opera-live"></a><span class="poster-status">Verwacht</span></div>
	<div class="poster"><a href="/film/105/gone-movie"></a><span class="poster-status">Uitverkocht</span></div>
</section>
<ul class="pagination"><li><a>&laquo;</a></li><li><a>1</a></li><li><a>2</a></li><li><a>&raquo;</a></li></ul>
</body></html>`

const listingPage2 = `<html><body>
<section class="poster-carousel">
	<div class="poster"><a href="/film/102/mediocre-movie"></a><span class="poster-status">Nu te zien</span></div>
	<div class="poster"><a href="/film/104/borderline-movie"></a><span class="poster-status">Nu te zien</span></div>
	<div class="poster"><a href="/film/106/unknown-movie"></a><span class="poster-status">Nu te zien</span></div>
</section>
</body></html>`

func detailPage(title, special, schedule string) string {
	specialRow := ""
	if special != "" {
		specialRow = fmt.Sprintf("<li><span>Special:</span> %s</li>", special)
	}
	return fmt.Sprintf(`<html><body>
<h1 itemprop="name">%s</h1>
<div class="moviedetail-side"><ul>
	%s
	<li><span>Genre:</span> Drama</li>
	<li><span>Duur:</span> 110 minuten</li>
</ul></div>
%s
</body></html>`, title, specialRow, schedule)
}

const greatFilmSchedule = `<section id="ScheduleContainer">
<table id="Schedule_arena">
<tr><th>vandaag</th></tr>
<tr><td><a href="/tickets/start/55501"><span>20:00</span></a></td></tr>
</table>
</section>`

// fakeSite serves the listing pages plus the detail pages and records
// every path it was asked for.
type fakeSite struct {
	mu      sync.Mutex
	fetched map[string]int
}

func (f *fakeSite) record(path string) {
	f.mu.Lock()
	f.fetched[path]++
	f.mu.Unlock()
}

func (f *fakeSite) count(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetched[path]
}

func (f *fakeSite) handler() http.Handler {
	pages := map[string]string{
		"/film/101/great-film":       detailPage("Great Film", "", greatFilmSchedule),
		"/film/102/mediocre-movie":   detailPage("Mediocre Movie", "", ""),
		"/film/103/opera-live":       detailPage("Opera Live", "PathéOpera", ""),
		"/film/104/borderline-movie": detailPage("Borderline Movie", "", ""),
		"/film/105/gone-movie":       detailPage("Gone Movie", "", ""),
		"/film/106/unknown-movie":    detailPage("Unknown Movie", "", ""),
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.record(r.URL.Path)
		if r.URL.Path == "/films" {
			if r.URL.Query().Get("page") == "2" {
				fmt.Fprint(w, listingPage2)
			} else {
				fmt.Fprint(w, listingPage1)
			}
			return
		}
		page, ok := pages[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprint(w, page)
	})
}

func fakeIMDBHandler(titles map[string]int, ratings map[int]string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/find", func(w http.ResponseWriter, r *http.Request) {
		id, ok := titles[r.URL.Query().Get("q")]
		if !ok {
			fmt.Fprint(w, `<div class="findSection"><h3 class="findSectionHeader">Names</h3></div>`)
			return
		}
		fmt.Fprintf(w, `<div class="findSection"><h3 class="findSectionHeader">Titles</h3><table>
<tr class="findResult odd"><td class="result_text"><a href="/title/tt%d/?ref_=fn_ft_tt_1">x</a></td></tr>
</table></div>`, id)
	})
	mux.HandleFunc("/title/", func(w http.ResponseWriter, r *http.Request) {
		var id int
		if _, err := fmt.Sscanf(r.URL.Path, "/title/tt%d", &id); err != nil {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprintf(w, `<span itemprop="ratingValue">%s</span>`, ratings[id])
	})
	return mux
}

func TestPipelineEndToEnd(t *testing.T) {
	site := &fakeSite{fetched: make(map[string]int)}
	siteSrv := httptest.NewServer(site.handler())
	defer siteSrv.Close()

	imdbSrv := httptest.NewServer(fakeIMDBHandler(
		map[string]int{
			"Great Film":       101101,
			"Mediocre Movie":   102102,
			"Borderline Movie": 104104,
		},
		map[int]string{
			101101: "8,6",
			102102: "8.0", // exactly at the threshold: excluded
			104104: "8.1",
		},
	))
	defer imdbSrv.Close()

	logger := zap.NewNop()
	fetcher := fetch.NewClient(fetch.Options{Timeout: 5 * time.Second}, logger)
	siteClient := pathe.NewClient(siteSrv.URL, fetcher)
	rater := imdb.NewClient(imdbSrv.URL, fetcher, translate.Noop{}, logger)
	metrics := monitoring.NewMetricsWith(prometheus.NewRegistry())

	p := New(Config{
		ListingWorkers:  2,
		DetailWorkers:   4,
		RatingThreshold: 8.0,
	}, siteClient, rater, translate.Noop{}, metrics, logger, time.Date(2024, time.July, 10, 0, 0, 0, 0, time.UTC))

	records, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.ElementsMatch(t, []domain.ResultRecord{
		{MovieURL: siteSrv.URL + "/film/101/great-film", RatingURL: imdbSrv.URL + "/title/tt101101", Rating: 8.6},
		{MovieURL: siteSrv.URL + "/film/104/borderline-movie", RatingURL: imdbSrv.URL + "/title/tt104104", Rating: 8.1},
	}, records)

	// The sold-out candidate never reaches the detail queue.
	assert.Zero(t, site.count("/film/105/gone-movie"))
	// The special-status movie is fetched once and short-circuited.
	assert.Equal(t, 1, site.count("/film/103/opera-live"))
	// Both listing pages were crawled (page 1 once for pagination, once
	// as a queued work item).
	assert.Equal(t, 3, site.count("/films"))
}

func TestPipelineSurvivesBrokenDetailPage(t *testing.T) {
	// One detail URL 404s; the crawl still reports the movies that work.
	mux := http.NewServeMux()
	mux.HandleFunc("/films", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<section class="poster-carousel">
<div class="poster"><a href="/film/201/broken"></a><span class="poster-status">Nu te zien</span></div>
<div class="poster"><a href="/film/202/fine"></a><span class="poster-status">Nu te zien</span></div>
</section>`)
	})
	mux.HandleFunc("/film/202/fine", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, detailPage("Fine Film", "", ""))
	})
	siteSrv := httptest.NewServer(mux)
	defer siteSrv.Close()

	imdbSrv := httptest.NewServer(fakeIMDBHandler(
		map[string]int{"Fine Film": 3},
		map[int]string{3: "9.0"},
	))
	defer imdbSrv.Close()

	logger := zap.NewNop()
	fetcher := fetch.NewClient(fetch.Options{Timeout: 5 * time.Second}, logger)
	p := New(Config{
		ListingWorkers:  1,
		DetailWorkers:   2,
		RatingThreshold: 8.0,
	}, pathe.NewClient(siteSrv.URL, fetcher), imdb.NewClient(imdbSrv.URL, fetcher, translate.Noop{}, logger),
		translate.Noop{}, monitoring.NewMetricsWith(prometheus.NewRegistry()), logger,
		time.Date(2024, time.July, 10, 0, 0, 0, 0, time.UTC))

	records, err := p.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, siteSrv.URL+"/film/202/fine", records[0].MovieURL)
}
