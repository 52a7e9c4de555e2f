package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "wanderlust",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wanderlust",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "wanderlust",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	searchQueries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wanderlust",
			Subsystem: "search",
			Name:      "queries_total",
			Help:      "Total number of search queries served.",
		},
		[]string{"hit"},
	)

	searchIndexSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "wanderlust",
			Subsystem: "search",
			Name:      "index_posts",
			Help:      "Number of posts in the current search index.",
		},
	)

	ingestedPosts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wanderlust",
			Subsystem: "ingest",
			Name:      "posts_total",
			Help:      "Total number of posts saved by the ingest pipeline.",
		},
		[]string{"outcome"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		searchQueries,
		searchIndexSize,
		ingestedPosts,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps the provided handler with HTTP metrics collection.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		httpInFlight.Inc()
		defer httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		duration := time.Since(start)
		path := canonicalPath(r.URL.Path)
		method := strings.ToUpper(r.Method)

		httpRequests.WithLabelValues(method, path, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	})
}

// RecordSearchQuery records one served search query.
func RecordSearchQuery(hits int) {
	hit := "false"
	if hits > 0 {
		hit = "true"
	}
	searchQueries.WithLabelValues(hit).Inc()
}

// SetSearchIndexSize records the current search index size.
func SetSearchIndexSize(posts int) {
	searchIndexSize.Set(float64(posts))
}

// RecordIngestedPost records the outcome of one ingest save attempt.
func RecordIngestedPost(success bool) {
	outcome := "error"
	if success {
		outcome = "saved"
	}
	ingestedPosts.WithLabelValues(outcome).Inc()
}

// canonicalPath collapses per-resource path segments so the cardinality
// of the path label stays bounded. /api/posts/<objectid> becomes
// /api/posts/{id} and /api/posts/categories/<name> becomes
// /api/posts/categories/{category}.
func canonicalPath(path string) string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return "/"
	}
	parts := strings.Split(trimmed, "/")

	if len(parts) >= 2 && parts[0] == "api" && parts[1] == "posts" {
		if len(parts) == 3 {
			switch parts[2] {
			case "featured", "latest", "search":
				return path
			default:
				return "/api/posts/{id}"
			}
		}
		if len(parts) == 4 && parts[2] == "categories" {
			return "/api/posts/categories/{category}"
		}
	}

	return path
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}
