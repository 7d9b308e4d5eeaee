// Package metrics собирает счётчики бота в отдельный prometheus-реестр.
//
// Все методы безопасны для nil-получателя: без METRICS_ADDR метрики просто
// не пишутся.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "slots_bot"

// Статусы построения отчёта.
const (
	StatusOK          = "ok"
	StatusUnavailable = "feed_unavailable"
	StatusMalformed   = "feed_malformed"
	StatusError       = "error"
)

type Metrics struct {
	registry      *prometheus.Registry
	reports       *prometheus.CounterVec
	fetchDuration prometheus.Histogram
	droppedEvents prometheus.Counter
	freeRanges    prometheus.Gauge
	updates       *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		reports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_total",
			Help:      "Построенные отчёты о свободных слотах по статусу.",
		}, []string{"status"}),
		fetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "feed_fetch_duration_seconds",
			Help:      "Время загрузки и разбора календарного фида.",
			Buckets:   prometheus.DefBuckets,
		}),
		droppedEvents: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dropped_events_total",
			Help:      "События фида, пропущенные из-за некорректных дат.",
		}),
		freeRanges: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "free_ranges",
			Help:      "Свободные промежутки в последнем отчёте.",
		}),
		updates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "updates_total",
			Help:      "Входящие обновления Telegram по действию.",
		}, []string{"action"}),
	}
	m.registry.MustRegister(m.reports, m.fetchDuration, m.droppedEvents, m.freeRanges, m.updates)
	return m
}

func (m *Metrics) ObserveFetch(d time.Duration) {
	if m == nil {
		return
	}
	m.fetchDuration.Observe(d.Seconds())
}

func (m *Metrics) EventDropped() {
	if m == nil {
		return
	}
	m.droppedEvents.Inc()
}

func (m *Metrics) ReportBuilt(ranges int) {
	if m == nil {
		return
	}
	m.reports.WithLabelValues(StatusOK).Inc()
	m.freeRanges.Set(float64(ranges))
}

func (m *Metrics) ReportFailed(status string) {
	if m == nil {
		return
	}
	m.reports.WithLabelValues(status).Inc()
}

func (m *Metrics) UpdateHandled(action string) {
	if m == nil {
		return
	}
	m.updates.WithLabelValues(action).Inc()
}

// Registry нужен тестам и серверу метрик.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

var errNoMetrics = errors.New("метрики не инициализированы")
