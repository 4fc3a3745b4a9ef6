package service

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricsOnce       sync.Once
	payloadsEncoded   *prometheus.CounterVec
	tokenDecodeFails  prometheus.Counter
	renderDuration    *prometheus.HistogramVec
	renderCacheLookup *prometheus.CounterVec
)

func initMetrics() {
	metricsOnce.Do(func() {
		payloadsEncoded = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "qrstudio",
			Subsystem: "qr",
			Name:      "payloads_encoded_total",
			Help:      "Payloads encoded by content kind and capacity level",
		}, []string{"kind", "level"})

		tokenDecodeFails = promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "qrstudio",
			Subsystem: "microsite",
			Name:      "token_decode_failures_total",
			Help:      "Share tokens that could not be decoded",
		})

		renderDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "qrstudio",
			Subsystem: "render",
			Name:      "duration_seconds",
			Help:      "Time spent drawing and exporting QR images",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"format"})

		renderCacheLookup = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "qrstudio",
			Subsystem: "render",
			Name:      "cache_lookups_total",
			Help:      "Render cache lookups by result",
		}, []string{"result"})
	})
}

func observeEncode(kind, level string) {
	initMetrics()
	payloadsEncoded.WithLabelValues(kind, level).Inc()
}

func observeDecodeFailure() {
	initMetrics()
	tokenDecodeFails.Inc()
}

func observeRender(format string, started time.Time) {
	initMetrics()
	renderDuration.WithLabelValues(format).Observe(time.Since(started).Seconds())
}

func observeCacheLookup(hit bool) {
	initMetrics()
	result := "miss"
	if hit {
		result = "hit"
	}
	renderCacheLookup.WithLabelValues(result).Inc()
}
