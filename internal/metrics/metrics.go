package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ReportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reports_total",
			Help: "Total number of submitted cleanliness reports",
		},
		[]string{"status"},
	)

	ReportScoreHistogram = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "report_score",
			Help:    "Distribution of report scores",
			Buckets: prometheus.LinearBuckets(0, 48, 11),
		},
		[]string{"status"},
	)

	PhotoUploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_uploads_total",
			Help: "Total number of photo uploads",
		},
		[]string{"result"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method", "status"},
	)
)
