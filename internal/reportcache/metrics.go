package reportcache

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics observes cache effectiveness per report.
type Metrics struct {
	hits     *prometheus.CounterVec
	misses   *prometheus.CounterVec
	failures *prometheus.CounterVec
	build    *prometheus.HistogramVec
}

// NewMetrics registers report cache collectors on reg. Collectors that are
// already registered are reused.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		hits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "erp_report_cache_hits_total",
			Help: "Number of report cache hits.",
		}, []string{"report"}),
		misses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "erp_report_cache_miss_total",
			Help: "Number of report cache misses.",
		}, []string{"report"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "erp_report_cache_errors_total",
			Help: "Number of report cache operations that failed and were bypassed.",
		}, []string{"op"}),
		build: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "erp_report_build_duration_seconds",
			Help:    "Duration required to build a report on cache miss.",
			Buckets: prometheus.DefBuckets,
		}, []string{"report"}),
	}
	var err error
	m.hits, err = registerCounter(reg, m.hits)
	if err != nil {
		return nil, err
	}
	m.misses, err = registerCounter(reg, m.misses)
	if err != nil {
		return nil, err
	}
	m.failures, err = registerCounter(reg, m.failures)
	if err != nil {
		return nil, err
	}
	if err := reg.Register(m.build); err != nil {
		var already prometheus.AlreadyRegisteredError
		if !errors.As(err, &already) {
			return nil, err
		}
		existing, ok := already.ExistingCollector.(*prometheus.HistogramVec)
		if !ok {
			return nil, err
		}
		m.build = existing
	}
	return m, nil
}

func registerCounter(reg prometheus.Registerer, c *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if !errors.As(err, &already) {
			return nil, err
		}
		existing, ok := already.ExistingCollector.(*prometheus.CounterVec)
		if !ok {
			return nil, err
		}
		return existing, nil
	}
	return c, nil
}

func (m *Metrics) hit(report string) {
	if m == nil {
		return
	}
	m.hits.WithLabelValues(report).Inc()
}

func (m *Metrics) miss(report string) {
	if m == nil {
		return
	}
	m.misses.WithLabelValues(report).Inc()
}

func (m *Metrics) failure(op string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(op).Inc()
}

func (m *Metrics) observeBuild(report string, d time.Duration) {
	if m == nil {
		return
	}
	m.build.WithLabelValues(report).Observe(d.Seconds())
}
