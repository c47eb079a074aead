package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ExtractionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "medialog_extractions_total",
		Help: "Total number of metadata extractions by record kind and status",
	}, []string{"kind", "status"})

	FetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "medialog_page_fetch_duration_seconds",
		Help:    "Duration of full page fetches",
		Buckets: prometheus.DefBuckets,
	})

	OEmbedLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "medialog_oembed_lookups_total",
		Help: "Total number of authoritative oEmbed lookups by status",
	}, []string{"status"})

	ViewCountResolved = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "medialog_view_count_resolved_total",
		Help: "Total number of resolved view counts by fallback source",
	}, []string{"source"})

	ActivityRelayed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "medialog_activity_relayed_total",
		Help: "Total number of relayed activity records by status",
	}, []string{"status"})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "medialog_http_requests_total",
		Help: "Total number of API requests by path and status code",
	}, []string{"path", "code"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "medialog_http_request_duration_seconds",
		Help:    "Duration of API requests by path",
		Buckets: prometheus.DefBuckets,
	}, []string{"path"})
)
