package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "datamodeler_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "datamodeler_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "datamodeler_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	CatalogOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "datamodeler_catalog_operation_duration_seconds",
			Help:    "Duration of catalog operations against target databases",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "driver", "status"},
	)

	GenerationRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "datamodeler_generation_requests_total",
			Help: "Total number of text generation requests",
		},
		[]string{"status"},
	)

	GenerationRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "datamodeler_generation_request_duration_seconds",
			Help:    "Duration of text generation requests in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 120},
		},
	)

	GenerationTokensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "datamodeler_generation_tokens_total",
			Help: "Total number of tokens used by text generation",
		},
		[]string{"type"},
	)
)

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordCatalogOperation records one catalog call against a target database.
func RecordCatalogOperation(operation, driver string, duration time.Duration, err error) {
	CatalogOperationDuration.WithLabelValues(operation, driver, status(err)).Observe(duration.Seconds())
}

// RecordGeneration records one call to the generation service.
func RecordGeneration(duration time.Duration, err error) {
	GenerationRequestsTotal.WithLabelValues(status(err)).Inc()
	GenerationRequestDuration.Observe(duration.Seconds())
}

// RecordGenerationTokens records token usage reported by the provider.
func RecordGenerationTokens(inputTokens, outputTokens int64) {
	GenerationTokensTotal.WithLabelValues("input").Add(float64(inputTokens))
	GenerationTokensTotal.WithLabelValues("output").Add(float64(outputTokens))
}

// Middleware returns a chi middleware that records HTTP metrics.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		HTTPRequestsInFlight.Inc()
		defer HTTPRequestsInFlight.Dec()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		// Unrouted paths share one label so callers cannot mint series.
		path := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}

		HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(ww.Status())).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}
