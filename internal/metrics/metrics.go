package metrics

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Метки метрик.
const (
	LabelRoute  = "route"
	LabelMethod = "method"
	LabelCode   = "code"
	LabelResult = "result"
)

const namespace = "ko_tokenizer"

// Metrics хранит коллекторы сервиса и отдельный реестр, через который они публикуются.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	tokenizeTotal    *prometheus.CounterVec
	tokenizeDuration prometheus.Histogram
	tokensEmitted    prometheus.Counter
}

// New создает коллекторы и регистрирует их в собственном реестре.
func New() (*Metrics, error) {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of handled HTTP requests",
			},
			[]string{LabelRoute, LabelMethod, LabelCode},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{LabelRoute},
		),
		tokenizeTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tokenize_total",
				Help:      "Total number of analyzer calls by result",
			},
			[]string{LabelResult},
		),
		tokenizeDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "tokenize_duration_seconds",
				Help:      "Time spent inside the morphological analyzer",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
			},
		),
		tokensEmitted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tokens_emitted_total",
				Help:      "Total number of tokens returned to clients",
			},
		),
	}

	collectorList := []prometheus.Collector{
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requestsTotal,
		m.requestDuration,
		m.tokenizeTotal,
		m.tokenizeDuration,
		m.tokensEmitted,
	}
	for _, collector := range collectorList {
		if err := m.registry.Register(collector); err != nil {
			return nil, fmt.Errorf("failed to register metric: %w", err)
		}
	}

	return m, nil
}

// Handler отдает содержимое реестра в текстовом формате Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveRequest учитывает завершенный HTTP-запрос: маршрут, метод, код ответа и длительность.
func (m *Metrics) ObserveRequest(route, method string, status int, elapsed time.Duration) {
	m.requestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// ObserveTokenize учитывает один вызов анализатора. При ошибке число токенов не учитывается.
func (m *Metrics) ObserveTokenize(elapsed time.Duration, tokens int, err error) {
	m.tokenizeDuration.Observe(elapsed.Seconds())
	if err != nil {
		m.tokenizeTotal.WithLabelValues("error").Inc()
		return
	}
	m.tokenizeTotal.WithLabelValues("ok").Inc()
	m.tokensEmitted.Add(float64(tokens))
}
