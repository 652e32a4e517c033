package submission

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// submissionsTotal counts submissions by the path that produced the result.
	// Labels: path (remote, offline)
	submissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "flowcanvas",
		Subsystem: "submission",
		Name:      "total",
		Help:      "Pipeline submissions by result path",
	}, []string{"path"})

	// submitDuration measures the remote round trip, failed ones included
	submitDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "flowcanvas",
		Subsystem: "submission",
		Name:      "remote_duration_seconds",
		Help:      "Remote validation latency in seconds",
		Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	})
)
