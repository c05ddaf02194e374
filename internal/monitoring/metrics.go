package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the crawl.
type Metrics struct {
	PagesFetched *prometheus.CounterVec
	ErrorsTotal  *prometheus.CounterVec
	SkippedTotal *prometheus.CounterVec
	RecordsTotal prometheus.Counter
}

// NewMetrics registers on the default registry.
func NewMetrics() *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer)
}

// NewMetricsWith registers on an explicit registry; tests pass a fresh one
// so repeated construction doesn't collide.
func NewMetricsWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		PagesFetched: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cinescout_pages_fetched_total",
			Help: "Pages fetched and parsed, by pipeline stage",
		}, []string{"stage"}), // 'listing', 'detail'
		ErrorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cinescout_errors_total",
			Help: "Items skipped because of an error, by type",
		}, []string{"type"}), // e.g. 'detail_fetch_failed', 'imdb_parse_failed'
		SkippedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cinescout_skipped_total",
			Help: "Movies filtered out by policy, by reason",
		}, []string{"reason"}), // 'special', 'not_found', 'below_threshold'
		RecordsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "cinescout_records_total",
			Help: "Result records emitted",
		}),
	}
}

func (m *Metrics) IncPagesFetched(stage string) {
	m.PagesFetched.WithLabelValues(stage).Inc()
}

func (m *Metrics) IncErrorsTotal(errorType string) {
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}

func (m *Metrics) IncSkipped(reason string) {
	m.SkippedTotal.WithLabelValues(reason).Inc()
}

func (m *Metrics) IncRecordsTotal() {
	m.RecordsTotal.Inc()
}
