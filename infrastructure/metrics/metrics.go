package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RefreshRuns counts refresh executions by outcome (fresh|empty-result|committed|error).
	RefreshRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shorts_player_refresh_runs_total",
			Help: "Total number of cache refresh executions",
		},
		[]string{"result"},
	)

	// RefreshDuration measures how long stale refreshes take end to end.
	RefreshDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "shorts_player_refresh_duration_seconds",
			Help:    "Duration of cache refreshes that reached the YouTube API",
			Buckets: prometheus.DefBuckets,
		},
	)

	// CachedVideos tracks the size of the last committed generation.
	CachedVideos = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "shorts_player_cached_videos",
			Help: "Number of videos in the last committed generation",
		},
	)

	// ExternalCalls counts YouTube API attempts by endpoint (search|videos) and result (ok|error|refused).
	ExternalCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shorts_player_youtube_calls_total",
			Help: "Total number of YouTube API call attempts",
		},
		[]string{"endpoint", "result"},
	)

	// QuotaUsed is today's tracked YouTube quota usage.
	QuotaUsed = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "shorts_player_youtube_quota_used",
			Help: "YouTube API quota units used today (UTC)",
		},
	)

	// QuotaWarnings counts cost records made while above the warning threshold.
	QuotaWarnings = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "shorts_player_youtube_quota_warnings_total",
			Help: "Number of quota records above the warning threshold",
		},
	)

	// RandomRequests counts random selection requests by status (ok|not_found|error).
	RandomRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shorts_player_random_requests_total",
			Help: "Total number of random video requests",
		},
		[]string{"status"},
	)
)
