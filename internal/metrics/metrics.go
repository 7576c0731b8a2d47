// Package metrics exposes the blog's Prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/felixge/httpsnoop"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "blog"

type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	PostsCreatedTotal     prometheus.Counter
	DuplicatePostsTotal   prometheus.Counter
	WelcomeRedirectsTotal prometheus.Counter
}

// New registers every collector with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		RequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern and status code",
		}, []string{"route", "code"}),
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		PostsCreatedTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "posts_created_total",
			Help:      "Posts successfully published",
		}),
		DuplicatePostsTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duplicate_posts_total",
			Help:      "Post submissions rejected for an existing permalink",
		}),
		WelcomeRedirectsTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "welcome_redirects_total",
			Help:      "Visitors sent to the welcome screen",
		}),
	}
}

// Middleware records the status and latency of every request handled by mux,
// labelled with the pattern that matched.
func (m *Metrics) Middleware(mux *http.ServeMux) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, route := mux.Handler(r)
		if route == "" {
			route = "unmatched"
		}

		snoop := httpsnoop.CaptureMetrics(mux, w, r)

		m.RequestsTotal.WithLabelValues(route, strconv.Itoa(snoop.Code)).Inc()
		m.RequestDuration.WithLabelValues(route).Observe(snoop.Duration.Seconds())
	})
}
