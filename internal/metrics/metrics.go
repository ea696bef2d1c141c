// Package metrics registers the Prometheus instruments exported on /metrics.
//
// Two kinds of instruments live here:
//   - HTTP metrics (request count, latency) recorded by the middleware for
//     every route
//   - domain counters (quotes created, likes toggled, ...) incremented by the
//     handlers at the point the action succeeds
//
// promauto registers everything against the default registry, which is what
// promhttp.Handler() serves.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts HTTP requests by method, route pattern, and
	// status class. Route pattern, not raw path — /api/quotes/{id} stays one
	// series instead of one per quote.
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quoteapp_http_requests_total",
		Help: "HTTP requests processed, by method, route, and status.",
	}, []string{"method", "route", "status"})

	// RequestDuration observes request latency per route.
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "quoteapp_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	// QuotesCreated counts successful quote creations.
	QuotesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quoteapp_quotes_created_total",
		Help: "Quotes created.",
	})

	// LikesToggled counts like toggles (either direction).
	LikesToggled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quoteapp_likes_toggled_total",
		Help: "Like toggles processed.",
	})

	// CommentsAdded counts comments appended.
	CommentsAdded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quoteapp_comments_added_total",
		Help: "Comments added.",
	})

	// FollowsToggled counts follow/unfollow actions.
	FollowsToggled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quoteapp_follows_toggled_total",
		Help: "Follow toggles processed.",
	})

	// RateLimited counts requests rejected by the rate limiter.
	RateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quoteapp_rate_limited_total",
		Help: "Requests rejected with 429.",
	})
)
