package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	ResponseTimeHistogram = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_time_seconds",
			Help:    "Histogram of response times",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	ProfitCreditsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "profit_credits_total",
			Help: "Ledger entries created by the profit distributor",
		},
		[]string{"mode"}, // "user" или "bulk"
	)

	RouletteSpinsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "roulette_spins_total",
			Help: "Successful roulette spins",
		},
	)

	BulkRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "daily_profit_bulk_runs_total",
			Help: "Admin bulk profit runs",
		},
		[]string{"result"}, // "ok" или "locked"
	)
)
